// Package media implements HTTP GET/HEAD access to episode enclosures.
package media

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sohfix/prx/internal/port"
)

// Client performs HTTP requests against media URLs. Probes use a bounded
// timeout; streaming downloads only bound the response headers, since a
// large episode can legitimately take minutes to transfer.
type Client struct {
	probeClient    *http.Client
	downloadClient *http.Client
	userAgent      string
}

// Ensure Client implements port.MediaClient
var _ port.MediaClient = (*Client)(nil)

// Config contains optional client configuration
type Config struct {
	Timeout       time.Duration // probe/header timeout (default 10s)
	SkipTLSVerify bool
	UserAgent     string
}

// NewClient creates a new media client
func NewClient(cfg *Config) *Client {
	timeout := 10 * time.Second
	skipTLS := false
	userAgent := ""
	if cfg != nil {
		if cfg.Timeout > 0 {
			timeout = cfg.Timeout
		}
		skipTLS = cfg.SkipTLSVerify
		userAgent = cfg.UserAgent
	}

	transport := &http.Transport{
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: skipTLS,
		},
		MaxIdleConns:      10,
		IdleConnTimeout:   90 * time.Second,
		ForceAttemptHTTP2: true,
	}

	downloadTransport := &http.Transport{
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: skipTLS,
		},
		MaxIdleConns:    10,
		IdleConnTimeout: 90 * time.Second,

		// Disable compression for audio payloads
		DisableCompression: true,

		ForceAttemptHTTP2: true,

		// Bounds only the wait for headers, not the body
		ResponseHeaderTimeout: timeout,
	}

	return &Client{
		probeClient: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
		downloadClient: &http.Client{
			Transport: downloadTransport,
			Timeout:   0, // no total timeout for downloads
		},
		userAgent: userAgent,
	}
}

// Probe issues a HEAD request and returns the reported metadata
func (c *Client) Probe(ctx context.Context, url string) (*port.MediaInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build probe request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.probeClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("probe failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("probe failed: unexpected status %s", resp.Status)
	}

	return &port.MediaInfo{
		ContentLength: resp.ContentLength,
		ContentType:   resp.Header.Get("Content-Type"),
		AcceptRanges:  resp.Header.Get("Accept-Ranges"),
		Server:        resp.Header.Get("Server"),
	}, nil
}

// Get opens the media stream for reading. The returned length is 0 when
// the server does not report one.
func (c *Client) Get(ctx context.Context, url string) (io.ReadCloser, int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.downloadClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("request failed: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, 0, fmt.Errorf("unexpected status %s", resp.Status)
	}

	length := resp.ContentLength
	if length < 0 {
		length = 0
	}
	return resp.Body, length, nil
}
