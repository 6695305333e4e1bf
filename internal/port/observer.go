package port

import (
	"time"

	"github.com/sohfix/prx/internal/domain"
)

// ProgressFunc reports transfer progress: bytes moved so far, the expected
// total (0 when unknown) and the time elapsed since the transfer started.
// Calls arrive with strictly increasing transferred values.
type ProgressFunc func(transferred, total int64, elapsed time.Duration)

// Observer receives session lifecycle events. Implemented by the CLI
// progress renderer; any UI (log file, GUI widget) satisfies the same
// contract. Implementations must not block for long: events are delivered
// from the sync worker.
type Observer interface {
	SessionStarted(sources int)
	SourceStarted(source domain.PodcastSource, episodes int)
	SourceFailed(source domain.PodcastSource, err error)
	EpisodeStarted(episode domain.Episode, index, total int)
	EpisodeProgress(episode domain.Episode, transferred, total int64, elapsed time.Duration)
	EpisodeFinished(result domain.EpisodeResult)
	SessionFinished(report *domain.SessionReport)
}

// NopObserver discards every event
type NopObserver struct{}

func (NopObserver) SessionStarted(int)                                          {}
func (NopObserver) SourceStarted(domain.PodcastSource, int)                     {}
func (NopObserver) SourceFailed(domain.PodcastSource, error)                    {}
func (NopObserver) EpisodeStarted(domain.Episode, int, int)                     {}
func (NopObserver) EpisodeProgress(domain.Episode, int64, int64, time.Duration) {}
func (NopObserver) EpisodeFinished(domain.EpisodeResult)                        {}
func (NopObserver) SessionFinished(*domain.SessionReport)                       {}
