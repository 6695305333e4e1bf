package main

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/sohfix/prx/internal/adapter/feed"
	"github.com/sohfix/prx/internal/adapter/filesystem"
	"github.com/sohfix/prx/internal/adapter/media"
	"github.com/sohfix/prx/internal/adapter/sqlite"
	"github.com/sohfix/prx/internal/config"
	"github.com/sohfix/prx/internal/logger"
	"github.com/sohfix/prx/internal/port"
	"github.com/sohfix/prx/internal/service/sync"
)

// commandContext carries lazily initialized state shared by subcommands
type commandContext struct {
	configPath *string
	verbose    bool
	quiet      bool

	cfg *config.Config
	log *zap.Logger
}

func newCommandContext(configPath *string) *commandContext {
	return &commandContext{configPath: configPath}
}

// setup loads configuration and builds the logger
func (c *commandContext) setup() error {
	if c.cfg != nil {
		return nil
	}
	cfg, err := config.Load(*c.configPath)
	if err != nil {
		return fmt.Errorf("load config %s: %w", *c.configPath, err)
	}

	level := cfg.Logging.Level
	if c.verbose {
		level = "debug"
	}
	log, err := logger.New(level, cfg.Logging.Format)
	if err != nil {
		return err
	}

	c.cfg = cfg
	c.log = log
	return nil
}

// engine wires the adapters and services into an orchestrator.
// The returned cleanup func closes the journal.
func (c *commandContext) engine() (*sync.Orchestrator, func(), error) {
	if err := c.setup(); err != nil {
		return nil, nil, err
	}

	mediaClient := media.NewClient(&media.Config{
		Timeout:       c.cfg.HTTP.GetTimeout(),
		SkipTLSVerify: c.cfg.HTTP.SkipTLSVerify,
		UserAgent:     c.cfg.HTTP.UserAgent,
	})
	feedClient := &http.Client{Timeout: c.cfg.HTTP.GetTimeout()}
	feeds := feed.NewFetcher(feedClient, c.cfg.HTTP.UserAgent, c.log)
	fs := filesystem.NewManager()

	classifier := sync.NewClassifier(mediaClient, fs,
		c.cfg.Sync.GetTolerance(), c.cfg.Sync.GetProbeTolerance(), c.log)
	transfer := sync.NewTransfer(mediaClient, fs, &sync.TransferConfig{
		MaxRetries:     c.cfg.Sync.MaxRetries,
		InitialBackoff: c.cfg.Sync.GetInitialBackoff(),
		ChunkSize:      c.cfg.Sync.GetChunkSize(),
		HTTPSOnly:      c.cfg.Sync.HTTPSOnly,
	}, c.log)

	cleanup := func() { _ = c.log.Sync() }
	var journal port.Journal
	if c.cfg.Journal.Path != "" {
		j, err := sqlite.Open(c.cfg.Journal.Path)
		if err != nil {
			// History is best-effort; a broken journal must not stop a sync.
			c.log.Warn("journal unavailable", zap.Error(err))
		} else {
			journal = j
			cleanup = func() {
				_ = j.Close()
				_ = c.log.Sync()
			}
		}
	}

	var observer port.Observer
	if c.quiet {
		observer = port.NopObserver{}
	} else {
		observer = newConsoleObserver(c.verbose)
	}

	orch := sync.NewOrchestrator(feeds, classifier, transfer, fs, journal, observer, c.log)
	return orch, cleanup, nil
}

// inspector wires just enough of the engine for dry-run classification
func (c *commandContext) inspector() (port.FeedFetcher, *sync.Classifier, error) {
	if err := c.setup(); err != nil {
		return nil, nil, err
	}
	mediaClient := media.NewClient(&media.Config{
		Timeout:       c.cfg.HTTP.GetTimeout(),
		SkipTLSVerify: c.cfg.HTTP.SkipTLSVerify,
		UserAgent:     c.cfg.HTTP.UserAgent,
	})
	feedClient := &http.Client{Timeout: c.cfg.HTTP.GetTimeout()}
	feeds := feed.NewFetcher(feedClient, c.cfg.HTTP.UserAgent, c.log)
	classifier := sync.NewClassifier(mediaClient, filesystem.NewManager(),
		c.cfg.Sync.GetTolerance(), c.cfg.Sync.GetProbeTolerance(), c.log)
	return feeds, classifier, nil
}

// openJournal opens the configured journal for read-only commands
func (c *commandContext) openJournal() (port.Journal, error) {
	if err := c.setup(); err != nil {
		return nil, err
	}
	if c.cfg.Journal.Path == "" {
		return nil, fmt.Errorf("journal.path is not configured")
	}
	return sqlite.Open(c.cfg.Journal.Path)
}
