package sync

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sohfix/prx/internal/domain"
	"github.com/sohfix/prx/internal/port"
)

// TransferStatus is the terminal state of one transfer
type TransferStatus int

const (
	// TransferSuccess means the artifact was fully written and promoted
	TransferSuccess TransferStatus = iota
	// TransferCancelled means the caller stopped the transfer mid-stream
	TransferCancelled
	// TransferFailed means every retry attempt was exhausted
	TransferFailed
)

// TransferResult describes the outcome of one transfer
type TransferResult struct {
	Status   TransferStatus
	Bytes    int64
	Attempts int
	Elapsed  time.Duration
	Err      error
}

// TransferConfig contains transfer settings
type TransferConfig struct {
	MaxRetries     int
	InitialBackoff time.Duration
	ChunkSize      int
	HTTPSOnly      bool
}

// DefaultTransferConfig returns default transfer settings
func DefaultTransferConfig() *TransferConfig {
	return &TransferConfig{
		MaxRetries:     3,
		InitialBackoff: 2 * time.Second,
		ChunkSize:      32 * 1024,
	}
}

// Transfer streams one remote resource to disk with retry, backoff,
// progress callbacks and cooperative cancellation. Bytes go to a temp file
// that is renamed into place only on success, so the destination path never
// holds a partial artifact.
type Transfer struct {
	media  port.MediaClient
	fs     port.FileSystem
	config *TransferConfig
	logger *zap.Logger
}

// NewTransfer creates a new Transfer
func NewTransfer(media port.MediaClient, fs port.FileSystem, cfg *TransferConfig, logger *zap.Logger) *Transfer {
	if cfg == nil {
		cfg = DefaultTransferConfig()
	}
	if cfg.MaxRetries < 1 {
		cfg.MaxRetries = 1
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 32 * 1024
	}
	return &Transfer{media: media, fs: fs, config: cfg, logger: logger}
}

// Download moves url to destPath. expectedSize may be 0 (unknown) and is
// used only as a progress total when the response reports no content
// length. The progress callback is invoked once per chunk with strictly
// increasing byte counts. Every retry restarts from byte zero and
// truncates the temp file.
func (t *Transfer) Download(ctx context.Context, url, destPath string, expectedSize int64, progress port.ProgressFunc) TransferResult {
	start := time.Now()

	if t.config.HTTPSOnly && !strings.HasPrefix(strings.ToLower(url), "https://") {
		// Policy failure, not a transient one: retrying cannot help.
		return TransferResult{
			Status:  TransferFailed,
			Elapsed: time.Since(start),
			Err:     fmt.Errorf("%w: %s", domain.ErrHTTPSRequired, url),
		}
	}

	var lastErr error
	for attempt := 1; attempt <= t.config.MaxRetries; attempt++ {
		written, err := t.attempt(ctx, url, destPath, expectedSize, progress)
		if err == nil {
			return TransferResult{
				Status:   TransferSuccess,
				Bytes:    written,
				Attempts: attempt,
				Elapsed:  time.Since(start),
			}
		}
		if cancelled(ctx, err) {
			t.logger.Info("transfer cancelled",
				zap.String("url", url),
				zap.Int64("bytes", written))
			return TransferResult{
				Status:   TransferCancelled,
				Bytes:    written,
				Attempts: attempt,
				Elapsed:  time.Since(start),
				Err:      domain.ErrCancelled,
			}
		}

		lastErr = err
		t.logger.Warn("transfer attempt failed",
			zap.String("url", url),
			zap.Int("attempt", attempt),
			zap.Int("max_retries", t.config.MaxRetries),
			zap.Error(err))

		if attempt < t.config.MaxRetries {
			backoff := t.config.InitialBackoff << (attempt - 1)
			if !wait(ctx, backoff) {
				return TransferResult{
					Status:   TransferCancelled,
					Attempts: attempt,
					Elapsed:  time.Since(start),
					Err:      domain.ErrCancelled,
				}
			}
		}
	}

	return TransferResult{
		Status:   TransferFailed,
		Attempts: t.config.MaxRetries,
		Elapsed:  time.Since(start),
		Err: &domain.TransferError{
			URL:      url,
			Attempts: t.config.MaxRetries,
			Err:      lastErr,
		},
	}
}

// attempt performs one full download attempt from byte zero
func (t *Transfer) attempt(ctx context.Context, url, destPath string, expectedSize int64, progress port.ProgressFunc) (int64, error) {
	body, length, err := t.media.Get(ctx, url)
	if err != nil {
		return 0, err
	}
	defer body.Close()

	// The response's own length drives the progress total; the feed's
	// declared size is only a fallback for rendering, never a success
	// criterion, since feeds over- and under-declare routinely.
	total := length
	if total == 0 {
		total = expectedSize
	}

	w, tempPath, err := t.fs.CreateTemp(destPath)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrFilesystem, err)
	}

	written, err := t.stream(ctx, body, w, total, progress)
	if cerr := w.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("%w: %v", domain.ErrFilesystem, cerr)
	}
	if err == nil && length > 0 && written < length {
		err = fmt.Errorf("short body: got %d of %d bytes", written, length)
	}
	if err != nil {
		// Leave no partial bytes behind for the next attempt or run.
		if rerr := t.fs.RemoveTemp(tempPath); rerr != nil {
			t.logger.Warn("failed to remove partial temp file",
				zap.String("temp", tempPath), zap.Error(rerr))
		}
		return written, err
	}

	if err := t.fs.Promote(tempPath, destPath); err != nil {
		return written, fmt.Errorf("%w: %v", domain.ErrFilesystem, err)
	}
	return written, nil
}

// stream copies body to w in fixed chunks, checking cancellation and
// reporting progress at every chunk boundary
func (t *Transfer) stream(ctx context.Context, body io.Reader, w io.Writer, total int64, progress port.ProgressFunc) (int64, error) {
	start := time.Now()
	buf := make([]byte, t.config.ChunkSize)
	var written int64

	for {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		n, rerr := body.Read(buf)
		if n > 0 {
			if _, werr := w.Write(buf[:n]); werr != nil {
				return written, fmt.Errorf("%w: %v", domain.ErrFilesystem, werr)
			}
			written += int64(n)
			if progress != nil {
				progress(written, total, time.Since(start))
			}
		}
		if rerr == io.EOF {
			return written, nil
		}
		if rerr != nil {
			return written, rerr
		}
	}
}

// cancelled reports whether the attempt ended because the caller stopped
// it. A request timeout also unwraps to a context error, so the caller's
// context is consulted rather than the error alone.
func cancelled(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return true
	}
	return errors.Is(err, context.Canceled)
}

// wait sleeps for d unless the context is cancelled first.
// Returns false on cancellation.
func wait(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
