package sync

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/sohfix/prx/internal/adapter/filesystem"
	"github.com/sohfix/prx/internal/domain"
)

func newTestTransfer(media *mockMediaClient, cfg *TransferConfig) *Transfer {
	return NewTransfer(media, filesystem.NewManager(), cfg, zap.NewNop())
}

func fastConfig() *TransferConfig {
	return &TransferConfig{
		MaxRetries:     3,
		InitialBackoff: 20 * time.Millisecond,
		ChunkSize:      8 * 1024,
	}
}

func TestDownloadSuccess(t *testing.T) {
	payload := bytes.Repeat([]byte("abc"), 10_000)
	media := &mockMediaClient{
		getFn: func(ctx context.Context, url string) (io.ReadCloser, int64, error) {
			return io.NopCloser(bytes.NewReader(payload)), int64(len(payload)), nil
		},
	}
	tr := newTestTransfer(media, fastConfig())

	dest := filepath.Join(t.TempDir(), "ep.mp3")
	result := tr.Download(context.Background(), "https://example.com/ep.mp3", dest, 0, nil)

	if result.Status != TransferSuccess {
		t.Fatalf("Status = %v, want success (err: %v)", result.Status, result.Err)
	}
	if result.Bytes != int64(len(payload)) {
		t.Errorf("Bytes = %d, want %d", result.Bytes, len(payload))
	}
	if result.Attempts != 1 {
		t.Errorf("Attempts = %d, want 1", result.Attempts)
	}

	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("destination not written: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Error("destination content differs from payload")
	}
	if _, err := os.Stat(dest + ".part"); !os.IsNotExist(err) {
		t.Error("temp file left behind after success")
	}
}

func TestDownloadProgressMonotonic(t *testing.T) {
	payload := make([]byte, 50_000)
	media := &mockMediaClient{
		getFn: func(ctx context.Context, url string) (io.ReadCloser, int64, error) {
			return io.NopCloser(bytes.NewReader(payload)), int64(len(payload)), nil
		},
	}
	tr := newTestTransfer(media, fastConfig())

	var reported []int64
	var totals []int64
	progress := func(transferred, total int64, elapsed time.Duration) {
		reported = append(reported, transferred)
		totals = append(totals, total)
	}

	dest := filepath.Join(t.TempDir(), "ep.mp3")
	result := tr.Download(context.Background(), "https://example.com/ep.mp3", dest, 0, progress)
	if result.Status != TransferSuccess {
		t.Fatalf("Status = %v, want success", result.Status)
	}

	if len(reported) == 0 {
		t.Fatal("progress never invoked")
	}
	for i := 1; i < len(reported); i++ {
		if reported[i] <= reported[i-1] {
			t.Fatalf("progress not strictly increasing: %d then %d", reported[i-1], reported[i])
		}
	}
	if reported[len(reported)-1] != int64(len(payload)) {
		t.Errorf("final progress = %d, want %d", reported[len(reported)-1], len(payload))
	}
	for _, total := range totals {
		if total != int64(len(payload)) {
			t.Errorf("total = %d, want %d", total, len(payload))
		}
	}
}

func TestDownloadProgressUnknownTotal(t *testing.T) {
	media := &mockMediaClient{
		getFn: func(ctx context.Context, url string) (io.ReadCloser, int64, error) {
			// Server reports no content length.
			return io.NopCloser(strings.NewReader("some audio bytes")), 0, nil
		},
	}
	tr := newTestTransfer(media, fastConfig())

	var sawProgress bool
	progress := func(transferred, total int64, elapsed time.Duration) {
		sawProgress = true
		if total != 0 {
			t.Errorf("total = %d, want 0 for unknown size", total)
		}
		if transferred <= 0 {
			t.Errorf("transferred = %d, want positive", transferred)
		}
	}

	dest := filepath.Join(t.TempDir(), "ep.mp3")
	if result := tr.Download(context.Background(), "https://example.com/ep.mp3", dest, 0, progress); result.Status != TransferSuccess {
		t.Fatalf("Status = %v, want success", result.Status)
	}
	if !sawProgress {
		t.Error("progress never invoked for unknown-size transfer")
	}
}

func TestDownloadRetriesWithBackoff(t *testing.T) {
	payload := []byte("eventually fine")
	calls := 0
	media := &mockMediaClient{}
	media.getFn = func(ctx context.Context, url string) (io.ReadCloser, int64, error) {
		calls++
		if calls < 3 {
			return nil, 0, errors.New("connection reset")
		}
		return io.NopCloser(bytes.NewReader(payload)), int64(len(payload)), nil
	}
	tr := newTestTransfer(media, fastConfig())

	dest := filepath.Join(t.TempDir(), "ep.mp3")
	result := tr.Download(context.Background(), "https://example.com/ep.mp3", dest, 0, nil)

	if result.Status != TransferSuccess {
		t.Fatalf("Status = %v, want success after retries", result.Status)
	}
	if result.Attempts != 3 {
		t.Errorf("Attempts = %d, want 3", result.Attempts)
	}

	// Delays between attempts double: ~20ms then ~40ms. Assert monotonic
	// growth rather than exact timing.
	if len(media.getTimes) != 3 {
		t.Fatalf("got %d attempts, want 3", len(media.getTimes))
	}
	gap1 := media.getTimes[1].Sub(media.getTimes[0])
	gap2 := media.getTimes[2].Sub(media.getTimes[1])
	if gap1 < 20*time.Millisecond {
		t.Errorf("first backoff %v, want >= 20ms", gap1)
	}
	if gap2 <= gap1 {
		t.Errorf("backoff not increasing: %v then %v", gap1, gap2)
	}
}

func TestDownloadFailedAfterRetryExhaustion(t *testing.T) {
	media := &mockMediaClient{
		getFn: func(ctx context.Context, url string) (io.ReadCloser, int64, error) {
			return nil, 0, errors.New("connection reset")
		},
	}
	tr := newTestTransfer(media, fastConfig())

	dest := filepath.Join(t.TempDir(), "ep.mp3")
	result := tr.Download(context.Background(), "https://example.com/ep.mp3", dest, 0, nil)

	if result.Status != TransferFailed {
		t.Fatalf("Status = %v, want failed", result.Status)
	}
	if len(media.getTimes) != 3 {
		t.Errorf("attempted %d times, want exactly 3", len(media.getTimes))
	}

	var terr *domain.TransferError
	if !errors.As(result.Err, &terr) {
		t.Fatalf("Err = %T, want *domain.TransferError", result.Err)
	}
	if terr.Attempts != 3 {
		t.Errorf("TransferError.Attempts = %d, want 3", terr.Attempts)
	}
	if _, err := os.Stat(dest); !os.IsNotExist(err) {
		t.Error("destination exists after a failed transfer")
	}
}

func TestDownloadOverdeclaredFeedSize(t *testing.T) {
	// The feed declares one byte more than the server actually delivers.
	// A complete response must still succeed: only the response's own
	// content length decides completeness.
	payload := bytes.Repeat([]byte("x"), 50)
	media := &mockMediaClient{
		getFn: func(ctx context.Context, url string) (io.ReadCloser, int64, error) {
			return io.NopCloser(bytes.NewReader(payload)), int64(len(payload)), nil
		},
	}
	tr := newTestTransfer(media, fastConfig())

	dest := filepath.Join(t.TempDir(), "ep.mp3")
	result := tr.Download(context.Background(), "https://example.com/ep.mp3", dest, int64(len(payload)+1), nil)

	if result.Status != TransferSuccess {
		t.Fatalf("Status = %v, want success (err: %v)", result.Status, result.Err)
	}
	if result.Attempts != 1 {
		t.Errorf("Attempts = %d, want 1", result.Attempts)
	}
	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("destination not written: %v", err)
	}
	if len(got) != len(payload) {
		t.Errorf("wrote %d bytes, want %d", len(got), len(payload))
	}
}

func TestDownloadDeclaredSizeAsProgressFallback(t *testing.T) {
	media := &mockMediaClient{
		getFn: func(ctx context.Context, url string) (io.ReadCloser, int64, error) {
			// Server reports no content length.
			return io.NopCloser(strings.NewReader("some audio bytes")), 0, nil
		},
	}
	tr := newTestTransfer(media, fastConfig())

	var totals []int64
	progress := func(transferred, total int64, elapsed time.Duration) {
		totals = append(totals, total)
	}

	dest := filepath.Join(t.TempDir(), "ep.mp3")
	if result := tr.Download(context.Background(), "https://example.com/ep.mp3", dest, 999, progress); result.Status != TransferSuccess {
		t.Fatalf("Status = %v, want success (err: %v)", result.Status, result.Err)
	}
	if len(totals) == 0 {
		t.Fatal("progress never invoked")
	}
	for _, total := range totals {
		if total != 999 {
			t.Errorf("total = %d, want declared 999 when the response has none", total)
		}
	}
}

func TestDownloadShortBodyRetried(t *testing.T) {
	media := &mockMediaClient{
		getFn: func(ctx context.Context, url string) (io.ReadCloser, int64, error) {
			// Server promises 100 bytes but the connection drops early.
			return io.NopCloser(strings.NewReader("short")), 100, nil
		},
	}
	tr := newTestTransfer(media, fastConfig())

	dest := filepath.Join(t.TempDir(), "ep.mp3")
	result := tr.Download(context.Background(), "https://example.com/ep.mp3", dest, 0, nil)

	if result.Status != TransferFailed {
		t.Fatalf("Status = %v, want failed", result.Status)
	}
	if len(media.getTimes) != 3 {
		t.Errorf("attempted %d times, want 3", len(media.getTimes))
	}
	if _, err := os.Stat(dest + ".part"); !os.IsNotExist(err) {
		t.Error("partial temp file left behind")
	}
}

func TestDownloadCancelledMidStream(t *testing.T) {
	payload := make([]byte, 128*1024)
	media := &mockMediaClient{
		getFn: func(ctx context.Context, url string) (io.ReadCloser, int64, error) {
			return io.NopCloser(bytes.NewReader(payload)), int64(len(payload)), nil
		},
	}
	tr := newTestTransfer(media, fastConfig())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	progress := func(transferred, total int64, elapsed time.Duration) {
		if transferred >= 8*1024 {
			cancel()
		}
	}

	dest := filepath.Join(t.TempDir(), "ep.mp3")
	result := tr.Download(ctx, "https://example.com/ep.mp3", dest, 0, progress)

	if result.Status != TransferCancelled {
		t.Fatalf("Status = %v, want cancelled", result.Status)
	}
	if !errors.Is(result.Err, domain.ErrCancelled) {
		t.Errorf("Err = %v, want ErrCancelled", result.Err)
	}
	if len(media.getTimes) != 1 {
		t.Errorf("cancellation triggered %d attempts, want 1", len(media.getTimes))
	}
	if _, err := os.Stat(dest); !os.IsNotExist(err) {
		t.Error("destination exists after cancellation")
	}
	if _, err := os.Stat(dest + ".part"); !os.IsNotExist(err) {
		t.Error("partial temp file left behind after cancellation")
	}
}

func TestDownloadHTTPSOnly(t *testing.T) {
	media := &mockMediaClient{}
	cfg := fastConfig()
	cfg.HTTPSOnly = true
	tr := newTestTransfer(media, cfg)

	dest := filepath.Join(t.TempDir(), "ep.mp3")
	result := tr.Download(context.Background(), "http://example.com/ep.mp3", dest, 0, nil)

	if result.Status != TransferFailed {
		t.Fatalf("Status = %v, want failed", result.Status)
	}
	if !errors.Is(result.Err, domain.ErrHTTPSRequired) {
		t.Errorf("Err = %v, want ErrHTTPSRequired", result.Err)
	}
	if len(media.getTimes) != 0 {
		t.Errorf("network touched %d times in https-only refusal, want 0", len(media.getTimes))
	}
}
