package domain

import "time"

// Outcome is the per-episode result recorded in a session report
type Outcome string

// Per-episode outcomes
const (
	OutcomeSkipped      Outcome = "skipped"
	OutcomeDownloaded   Outcome = "downloaded"
	OutcomeRedownloaded Outcome = "redownloaded"
	OutcomeFailed       Outcome = "failed"
	OutcomeCancelled    Outcome = "cancelled"
)

// EpisodeResult records the outcome for one episode in a session
type EpisodeResult struct {
	Source  string
	Episode Episode
	Outcome Outcome
	Path    string
	Bytes   int64
	Err     error
}

// SourceFailure records a source-level failure (unreachable feed, unusable
// output directory). The batch continues with the next source.
type SourceFailure struct {
	Source PodcastSource
	Err    error
}

// SessionReport is the summarized outcome of one orchestration run.
// Owned exclusively by the orchestrator while the session is live.
type SessionReport struct {
	ID             string
	StartedAt      time.Time
	FinishedAt     time.Time
	Sources        int
	Results        []EpisodeResult
	SourceFailures []SourceFailure
	Cancelled      bool
}

// Count returns how many episodes finished with the given outcome
func (r *SessionReport) Count(outcome Outcome) int {
	n := 0
	for i := range r.Results {
		if r.Results[i].Outcome == outcome {
			n++
		}
	}
	return n
}

// Failed returns the results for episodes whose transfer exhausted all retries
func (r *SessionReport) Failed() []EpisodeResult {
	var failed []EpisodeResult
	for i := range r.Results {
		if r.Results[i].Outcome == OutcomeFailed {
			failed = append(failed, r.Results[i])
		}
	}
	return failed
}

// Duration returns the wall-clock length of the session
func (r *SessionReport) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
