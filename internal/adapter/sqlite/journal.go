// Package sqlite persists session history using SQLite.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/sohfix/prx/internal/domain"
	"github.com/sohfix/prx/internal/port"
)

// Journal implements port.Journal using SQLite
type Journal struct {
	db *sql.DB
}

// Ensure Journal implements port.Journal
var _ port.Journal = (*Journal)(nil)

// Open opens a connection to the journal database
func Open(dbPath string) (*Journal, error) {
	if dir := filepath.Dir(dbPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create journal dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma %s: %w", pragma, err)
		}
	}

	j := &Journal{db: db}
	if err := j.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return j, nil
}

// Close closes the database connection
func (j *Journal) Close() error {
	if j.db != nil {
		return j.db.Close()
	}
	return nil
}

// migrate creates or updates the journal schema
func (j *Journal) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			started_at TIMESTAMP NOT NULL,
			finished_at TIMESTAMP NOT NULL,
			sources INTEGER NOT NULL,
			skipped INTEGER NOT NULL,
			downloaded INTEGER NOT NULL,
			redownloaded INTEGER NOT NULL,
			failed INTEGER NOT NULL,
			cancelled BOOLEAN NOT NULL DEFAULT FALSE
		)`,

		`CREATE TABLE IF NOT EXISTS episode_results (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			source TEXT NOT NULL,
			title TEXT NOT NULL,
			outcome TEXT NOT NULL,
			path TEXT,
			bytes INTEGER NOT NULL DEFAULT 0,
			error TEXT,
			FOREIGN KEY (session_id) REFERENCES sessions(id) ON DELETE CASCADE
		)`,

		`CREATE INDEX IF NOT EXISTS idx_results_session ON episode_results(session_id)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_started ON sessions(started_at DESC)`,
	}

	for _, m := range migrations {
		if _, err := j.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// RecordSession writes the report and its per-episode results in one transaction
func (j *Journal) RecordSession(report *domain.SessionReport) error {
	tx, err := j.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO sessions (id, started_at, finished_at, sources, skipped, downloaded, redownloaded, failed, cancelled)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		report.ID,
		report.StartedAt.UTC().Format(time.RFC3339),
		report.FinishedAt.UTC().Format(time.RFC3339),
		report.Sources,
		report.Count(domain.OutcomeSkipped),
		report.Count(domain.OutcomeDownloaded),
		report.Count(domain.OutcomeRedownloaded),
		report.Count(domain.OutcomeFailed),
		report.Cancelled,
	)
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}

	stmt, err := tx.Prepare(
		`INSERT INTO episode_results (session_id, source, title, outcome, path, bytes, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i := range report.Results {
		r := &report.Results[i]
		errMsg := ""
		if r.Err != nil {
			errMsg = r.Err.Error()
		}
		if _, err := stmt.Exec(report.ID, r.Source, r.Episode.Title, string(r.Outcome), r.Path, r.Bytes, errMsg); err != nil {
			return fmt.Errorf("failed to insert result: %w", err)
		}
	}

	return tx.Commit()
}

// RecentSessions returns up to limit sessions, newest first
func (j *Journal) RecentSessions(limit int) ([]port.SessionSummary, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := j.db.Query(
		`SELECT id, started_at, finished_at, sources, skipped, downloaded, redownloaded, failed, cancelled
		 FROM sessions ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []port.SessionSummary
	for rows.Next() {
		var s port.SessionSummary
		if err := rows.Scan(&s.ID, &s.StartedAt, &s.FinishedAt, &s.Sources,
			&s.Skipped, &s.Downloaded, &s.Redownloaded, &s.Failed, &s.Cancelled); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}
