package port

import (
	"context"
	"io"
)

// MediaInfo is the result of a header-only probe against a media URL
type MediaInfo struct {
	ContentLength int64 // -1 or 0 when the server does not report a length
	ContentType   string
	AcceptRanges  string
	Server        string
}

// MediaClient performs HTTP GET/HEAD requests against media URLs
type MediaClient interface {
	// Probe issues a header-only request and returns the reported metadata
	Probe(ctx context.Context, url string) (*MediaInfo, error)

	// Get opens the media stream for reading
	// Returns: body, content length (0 when unknown), error
	Get(ctx context.Context, url string) (io.ReadCloser, int64, error)
}
