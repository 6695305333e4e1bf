package sync

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sohfix/prx/internal/domain"
	"github.com/sohfix/prx/internal/port"
)

// Options are the recognized run options for one sync session.
// "Update all" is Options with every configured source and no filters;
// "update one" restricts Sources; "download" adds user filters. They are
// policy variations of the same orchestration.
type Options struct {
	Sources     []domain.PodcastSource
	OldestFirst bool
	MaxEpisodes int    // 0 means no limit
	SearchTerm  string // case-insensitive title substring filter
}

// Orchestrator drives catalog, classifier and transfer over a batch of
// sources, producing a session report. Episodes are processed strictly
// sequentially: at most one transfer is active at a time.
type Orchestrator struct {
	feeds      port.FeedFetcher
	classifier *Classifier
	transfer   *Transfer
	fs         port.FileSystem
	journal    port.Journal  // optional
	observer   port.Observer // optional
	logger     *zap.Logger
}

// NewOrchestrator creates a new Orchestrator. journal may be nil to
// disable history; observer may be nil to discard events.
func NewOrchestrator(
	feeds port.FeedFetcher,
	classifier *Classifier,
	transfer *Transfer,
	fs port.FileSystem,
	journal port.Journal,
	observer port.Observer,
	logger *zap.Logger,
) *Orchestrator {
	if observer == nil {
		observer = port.NopObserver{}
	}
	return &Orchestrator{
		feeds:      feeds,
		classifier: classifier,
		transfer:   transfer,
		fs:         fs,
		journal:    journal,
		observer:   observer,
		logger:     logger,
	}
}

// Run executes one sync session over the given options. A source-level
// failure (unreachable feed, unusable directory) is recorded and the batch
// continues; cancellation stops the whole session at the next checkpoint.
func (o *Orchestrator) Run(ctx context.Context, opts Options) *domain.SessionReport {
	report := &domain.SessionReport{
		ID:        uuid.NewString(),
		StartedAt: time.Now(),
		Sources:   len(opts.Sources),
	}
	o.observer.SessionStarted(len(opts.Sources))
	o.logger.Info("sync session started",
		zap.String("session", report.ID),
		zap.Int("sources", len(opts.Sources)),
		zap.Bool("oldest_first", opts.OldestFirst),
		zap.Int("max_episodes", opts.MaxEpisodes),
		zap.String("search", opts.SearchTerm))

	for i := range opts.Sources {
		if ctx.Err() != nil {
			report.Cancelled = true
			break
		}
		if stopped := o.syncSource(ctx, &opts.Sources[i], opts, report); stopped {
			report.Cancelled = true
			break
		}
	}

	report.FinishedAt = time.Now()
	o.observer.SessionFinished(report)
	o.logger.Info("sync session finished",
		zap.String("session", report.ID),
		zap.Int("skipped", report.Count(domain.OutcomeSkipped)),
		zap.Int("downloaded", report.Count(domain.OutcomeDownloaded)),
		zap.Int("redownloaded", report.Count(domain.OutcomeRedownloaded)),
		zap.Int("failed", report.Count(domain.OutcomeFailed)),
		zap.Bool("cancelled", report.Cancelled))

	if o.journal != nil {
		if err := o.journal.RecordSession(report); err != nil {
			o.logger.Warn("failed to record session in journal", zap.Error(err))
		}
	}
	return report
}

// syncSource runs the per-source loop. Returns true when the session was
// cancelled and the batch must stop.
func (o *Orchestrator) syncSource(ctx context.Context, source *domain.PodcastSource, opts Options, report *domain.SessionReport) bool {
	if err := o.fs.EnsureDir(source.OutputDir); err != nil {
		o.sourceFailed(report, source, fmt.Errorf("%w: %v", domain.ErrFilesystem, err))
		return false
	}

	unlock, err := lockDir(source.OutputDir)
	if err != nil {
		o.sourceFailed(report, source, err)
		return false
	}
	defer unlock()

	episodes, err := o.feeds.Fetch(ctx, source.FeedURL)
	if err != nil {
		if cancelled(ctx, err) {
			return true
		}
		o.sourceFailed(report, source, err)
		return false
	}
	if len(episodes) == 0 {
		o.sourceFailed(report, source, domain.ErrNoEpisodes)
		return false
	}

	targets := resolveEpisodes(episodes, opts)
	o.observer.SourceStarted(*source, len(targets))
	o.logger.Info("source resolved",
		zap.String("source", source.Name),
		zap.Int("feed_entries", len(episodes)),
		zap.Int("targets", len(targets)))

	for i := range targets {
		if ctx.Err() != nil {
			return true
		}
		episode := &targets[i]
		o.observer.EpisodeStarted(*episode, i+1, len(targets))
		if stopped := o.syncEpisode(ctx, source, episode, report); stopped {
			return true
		}
	}
	return false
}

// syncEpisode classifies one episode and transfers it when needed.
// Returns true when the session was cancelled.
func (o *Orchestrator) syncEpisode(ctx context.Context, source *domain.PodcastSource, episode *domain.Episode, report *domain.SessionReport) bool {
	path := filepath.Join(source.OutputDir, domain.EpisodeFilename(episode, source.Format()))

	state := o.classifier.Classify(ctx, episode, path)
	if state == domain.StateComplete {
		o.record(report, domain.EpisodeResult{
			Source:  source.Name,
			Episode: *episode,
			Outcome: domain.OutcomeSkipped,
			Path:    path,
		})
		return false
	}

	if state == domain.StateDamaged {
		// The stale artifact goes away immediately before the replacement
		// transfer begins, never earlier.
		o.logger.Info("removing damaged file",
			zap.String("source", source.Name),
			zap.String("path", path))
		if err := o.fs.Remove(path); err != nil {
			o.record(report, domain.EpisodeResult{
				Source:  source.Name,
				Episode: *episode,
				Outcome: domain.OutcomeFailed,
				Path:    path,
				Err:     fmt.Errorf("%w: %v", domain.ErrFilesystem, err),
			})
			return false
		}
	}

	progress := func(transferred, total int64, elapsed time.Duration) {
		o.observer.EpisodeProgress(*episode, transferred, total, elapsed)
	}
	result := o.transfer.Download(ctx, episode.MediaURL, path, episode.DeclaredSize, progress)

	switch result.Status {
	case TransferSuccess:
		outcome := domain.OutcomeDownloaded
		if state == domain.StateDamaged {
			outcome = domain.OutcomeRedownloaded
		}
		o.record(report, domain.EpisodeResult{
			Source:  source.Name,
			Episode: *episode,
			Outcome: outcome,
			Path:    path,
			Bytes:   result.Bytes,
		})
		return false
	case TransferCancelled:
		// A cancelled transfer is a user-level stop-everything signal;
		// a single failed file is not.
		o.record(report, domain.EpisodeResult{
			Source:  source.Name,
			Episode: *episode,
			Outcome: domain.OutcomeCancelled,
			Path:    path,
			Bytes:   result.Bytes,
			Err:     result.Err,
		})
		return true
	default:
		o.record(report, domain.EpisodeResult{
			Source:  source.Name,
			Episode: *episode,
			Outcome: domain.OutcomeFailed,
			Path:    path,
			Err:     result.Err,
		})
		return false
	}
}

func (o *Orchestrator) record(report *domain.SessionReport, result domain.EpisodeResult) {
	report.Results = append(report.Results, result)
	o.observer.EpisodeFinished(result)
}

func (o *Orchestrator) sourceFailed(report *domain.SessionReport, source *domain.PodcastSource, err error) {
	o.logger.Error("source failed",
		zap.String("source", source.Name),
		zap.Error(err))
	report.SourceFailures = append(report.SourceFailures, domain.SourceFailure{
		Source: *source,
		Err:    domain.NewSourceError(source.Name, err),
	})
	o.observer.SourceFailed(*source, err)
}

// resolveEpisodes applies the search filter, date ordering and count limit.
// Episodes without a publish date sort last in either direction.
func resolveEpisodes(episodes []domain.Episode, opts Options) []domain.Episode {
	targets := make([]domain.Episode, 0, len(episodes))
	term := strings.ToLower(opts.SearchTerm)
	for _, e := range episodes {
		if term != "" && !strings.Contains(strings.ToLower(e.Title), term) {
			continue
		}
		targets = append(targets, e)
	}

	sort.SliceStable(targets, func(i, j int) bool {
		a, b := targets[i].PublishedAt, targets[j].PublishedAt
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		case opts.OldestFirst:
			return a.Before(*b)
		default:
			return a.After(*b)
		}
	})

	if opts.MaxEpisodes > 0 && len(targets) > opts.MaxEpisodes {
		targets = targets[:opts.MaxEpisodes]
	}
	return targets
}
