package port

import (
	"context"

	"github.com/sohfix/prx/internal/domain"
)

// FeedFetcher converts one feed URL into an ordered sequence of episodes.
// Every call re-fetches the feed; the caller decides fetch frequency.
type FeedFetcher interface {
	// Fetch returns the feed's episodes in feed order. Entries without a
	// retrievable media URL are dropped. A fetch or parse failure returns
	// an error wrapping domain.ErrFeedUnreachable.
	Fetch(ctx context.Context, feedURL string) ([]domain.Episode, error)
}
