// Package feed implements the episode catalog over RSS/Atom feeds.
package feed

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"

	"github.com/sohfix/prx/internal/domain"
	"github.com/sohfix/prx/internal/port"
)

// Fetcher parses a feed URL into an ordered sequence of episodes
type Fetcher struct {
	parser *gofeed.Parser
	logger *zap.Logger
}

// Ensure Fetcher implements port.FeedFetcher
var _ port.FeedFetcher = (*Fetcher)(nil)

// NewFetcher creates a new feed fetcher. The client's timeout bounds the
// whole fetch; pass nil to use a 10 second default.
func NewFetcher(client *http.Client, userAgent string, logger *zap.Logger) *Fetcher {
	parser := gofeed.NewParser()
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	parser.Client = client
	if userAgent != "" {
		parser.UserAgent = userAgent
	}
	return &Fetcher{parser: parser, logger: logger}
}

// Fetch returns the feed's episodes in feed order. Entries without any
// enclosure URL are dropped with a debug log; a malformed enclosure length
// yields an unknown declared size, never an error.
func (f *Fetcher) Fetch(ctx context.Context, feedURL string) ([]domain.Episode, error) {
	parsed, err := f.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrFeedUnreachable, feedURL, err)
	}

	episodes := make([]domain.Episode, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		enclosure := firstEnclosure(item)
		if enclosure == nil {
			f.logger.Debug("dropping entry without media url",
				zap.String("feed", feedURL),
				zap.String("title", item.Title))
			continue
		}
		episodes = append(episodes, domain.Episode{
			Title:        item.Title,
			MediaURL:     enclosure.URL,
			DeclaredSize: parseLength(enclosure.Length),
			PublishedAt:  publishedAt(item),
		})
	}
	return episodes, nil
}

// firstEnclosure returns the first enclosure carrying a URL, or nil
func firstEnclosure(item *gofeed.Item) *gofeed.Enclosure {
	for _, enc := range item.Enclosures {
		if enc != nil && enc.URL != "" {
			return enc
		}
	}
	return nil
}

// parseLength converts the enclosure length attribute to bytes.
// Anything unparseable or non-positive means unknown.
func parseLength(s string) int64 {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return 0
	}
	return n
}

// publishedAt prefers the published date, falling back to updated
func publishedAt(item *gofeed.Item) *time.Time {
	if item.PublishedParsed != nil {
		return item.PublishedParsed
	}
	return item.UpdatedParsed
}
