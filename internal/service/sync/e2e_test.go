package sync

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/sohfix/prx/internal/adapter/feed"
	"github.com/sohfix/prx/internal/adapter/filesystem"
	"github.com/sohfix/prx/internal/adapter/media"
	"github.com/sohfix/prx/internal/domain"
)

// TestSyncEndToEnd runs a full session against a local HTTP server: feed
// parsing, classification, transfer and reporting with the real adapters.
func TestSyncEndToEnd(t *testing.T) {
	payload := bytes.Repeat([]byte("audio"), 4000)

	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	feedXML := fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Test Show</title>
    <item>
      <title>No Media Here</title>
      <pubDate>Wed, 01 Mar 2023 08:00:00 GMT</pubDate>
    </item>
    <item>
      <title>Already Present</title>
      <pubDate>Wed, 15 Feb 2023 08:00:00 GMT</pubDate>
      <enclosure url="%s/present.mp3" length="%d" type="audio/mpeg"/>
    </item>
    <item>
      <title>Not Yet Here</title>
      <pubDate>Wed, 01 Feb 2023 08:00:00 GMT</pubDate>
      <enclosure url="%s/absent.mp3" length="%d" type="audio/mpeg"/>
    </item>
  </channel>
</rss>`, server.URL, len(payload), server.URL, len(payload))

	mux.HandleFunc("/feed.xml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(feedXML))
	})
	serveMedia := func(w http.ResponseWriter, r *http.Request) {
		w.Write(payload)
	}
	mux.HandleFunc("/present.mp3", serveMedia)
	mux.HandleFunc("/absent.mp3", serveMedia)

	dir := t.TempDir()
	writeBytes(t, filepath.Join(dir, "Already Present.mp3"), len(payload))

	fs := filesystem.NewManager()
	mediaClient := media.NewClient(nil)
	feeds := feed.NewFetcher(server.Client(), "prx-test/1.0", zap.NewNop())
	classifier := NewClassifier(mediaClient, fs, 5_000_000, 1_000_000, zap.NewNop())
	transfer := NewTransfer(mediaClient, fs, fastConfig(), zap.NewNop())
	orch := NewOrchestrator(feeds, classifier, transfer, fs, nil, nil, zap.NewNop())

	source := domain.PodcastSource{Name: "show", FeedURL: server.URL + "/feed.xml", OutputDir: dir}
	report := orch.Run(context.Background(), Options{Sources: []domain.PodcastSource{source}})

	if got := report.Count(domain.OutcomeSkipped); got != 1 {
		t.Errorf("skipped = %d, want 1", got)
	}
	if got := report.Count(domain.OutcomeDownloaded); got != 1 {
		t.Errorf("downloaded = %d, want 1", got)
	}
	if got := report.Count(domain.OutcomeFailed); got != 0 {
		t.Errorf("failed = %d, want 0", got)
	}
	// The entry without media never reaches any outcome list.
	for _, r := range report.Results {
		if r.Episode.Title == "No Media Here" {
			t.Errorf("dropped entry surfaced with outcome %s", r.Outcome)
		}
	}

	data, err := os.ReadFile(filepath.Join(dir, "Not Yet Here.mp3"))
	if err != nil {
		t.Fatalf("downloaded file missing: %v", err)
	}
	if !bytes.Equal(data, payload) {
		t.Error("downloaded content does not match served payload")
	}

	// A second run with nothing changed transfers nothing.
	report = orch.Run(context.Background(), Options{Sources: []domain.PodcastSource{source}})
	if got := report.Count(domain.OutcomeSkipped); got != 2 {
		t.Errorf("second run skipped = %d, want 2", got)
	}
	if got := report.Count(domain.OutcomeDownloaded) + report.Count(domain.OutcomeRedownloaded); got != 0 {
		t.Errorf("second run transferred %d episodes, want 0", got)
	}
}
