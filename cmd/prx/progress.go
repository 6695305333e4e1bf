package main

import (
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v3"

	"github.com/sohfix/prx/internal/domain"
	"github.com/sohfix/prx/internal/port"
)

// consoleObserver renders session progress on stdout: one progress bar per
// transfer, one summary line per episode.
type consoleObserver struct {
	verbose bool
	bar     *progressbar.ProgressBar
}

var _ port.Observer = (*consoleObserver)(nil)

func newConsoleObserver(verbose bool) *consoleObserver {
	return &consoleObserver{verbose: verbose}
}

func (o *consoleObserver) SessionStarted(sources int) {
	if sources > 1 {
		fmt.Printf("Syncing %d sources\n", sources)
	}
}

func (o *consoleObserver) SourceStarted(source domain.PodcastSource, episodes int) {
	fmt.Printf("%s: %d episode(s) to check\n", source.Name, episodes)
}

func (o *consoleObserver) SourceFailed(source domain.PodcastSource, err error) {
	fmt.Fprintf(os.Stderr, "%s: %v\n", source.Name, err)
}

func (o *consoleObserver) EpisodeStarted(episode domain.Episode, index, total int) {
	o.finishBar()
	if o.verbose {
		fmt.Printf("[%d/%d] %s\n", index, total, episode.Title)
	}
}

func (o *consoleObserver) EpisodeProgress(episode domain.Episode, transferred, total int64, elapsed time.Duration) {
	if o.bar == nil {
		o.bar = progressbar.NewOptions64(total,
			progressbar.OptionSetDescription(truncate(episode.Title, 40)),
			progressbar.OptionShowBytes(true),
			progressbar.OptionSetWidth(20),
			progressbar.OptionClearOnFinish(),
		)
	}
	_ = o.bar.Set64(transferred)
}

func (o *consoleObserver) EpisodeFinished(result domain.EpisodeResult) {
	o.finishBar()
	switch result.Outcome {
	case domain.OutcomeSkipped:
		if o.verbose {
			fmt.Printf("  skipped: %s\n", result.Episode.Title)
		}
	case domain.OutcomeDownloaded:
		fmt.Printf("  downloaded: %s (%s)\n", result.Episode.Title, humanize.Bytes(uint64(result.Bytes)))
	case domain.OutcomeRedownloaded:
		fmt.Printf("  re-downloaded: %s (%s)\n", result.Episode.Title, humanize.Bytes(uint64(result.Bytes)))
	case domain.OutcomeCancelled:
		fmt.Printf("  cancelled: %s\n", result.Episode.Title)
	case domain.OutcomeFailed:
		fmt.Fprintf(os.Stderr, "  failed: %s: %v\n", result.Episode.Title, result.Err)
	}
}

func (o *consoleObserver) SessionFinished(report *domain.SessionReport) {
	o.finishBar()
	fmt.Printf("\n%d skipped, %d downloaded, %d re-downloaded, %d failed (%s)\n",
		report.Count(domain.OutcomeSkipped),
		report.Count(domain.OutcomeDownloaded),
		report.Count(domain.OutcomeRedownloaded),
		report.Count(domain.OutcomeFailed),
		report.Duration().Round(time.Second))
	for _, f := range report.Failed() {
		fmt.Fprintf(os.Stderr, "  failed: %s: %v\n", f.Episode.Title, f.Err)
	}
	for _, sf := range report.SourceFailures {
		fmt.Fprintf(os.Stderr, "  source failed: %v\n", sf.Err)
	}
	if report.Cancelled {
		fmt.Println("Session cancelled.")
	}
}

func (o *consoleObserver) finishBar() {
	if o.bar != nil {
		_ = o.bar.Finish()
		o.bar = nil
	}
}

// truncate shortens s to at most max runes, never splitting a
// multi-byte character
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
