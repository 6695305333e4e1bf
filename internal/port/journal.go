package port

import "github.com/sohfix/prx/internal/domain"

// SessionSummary is one row of persisted sync history
type SessionSummary struct {
	ID           string
	StartedAt    string
	FinishedAt   string
	Sources      int
	Skipped      int
	Downloaded   int
	Redownloaded int
	Failed       int
	Cancelled    bool
}

// Journal persists session outcomes for later inspection. Journal failures
// are logged by callers, never fatal to a sync.
type Journal interface {
	// RecordSession writes the report and its per-episode results
	RecordSession(report *domain.SessionReport) error

	// RecentSessions returns up to limit sessions, newest first
	RecentSessions(limit int) ([]SessionSummary, error)

	// Close releases the underlying store
	Close() error
}
