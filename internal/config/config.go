package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/sohfix/prx/internal/domain"
)

// Config represents the entire application configuration
type Config struct {
	Sources []SourceConfig `mapstructure:"sources"`
	Sync    SyncConfig     `mapstructure:"sync"`
	HTTP    HTTPConfig     `mapstructure:"http"`
	Journal JournalConfig  `mapstructure:"journal"`
	Logging LoggingConfig  `mapstructure:"logging"`
}

// SourceConfig identifies one configured podcast feed
type SourceConfig struct {
	Name           string `mapstructure:"name"`
	FeedURL        string `mapstructure:"feed_url"`
	OutputDir      string `mapstructure:"output_dir"`
	FilenameFormat string `mapstructure:"filename_format"`
}

// SyncConfig contains synchronization settings
type SyncConfig struct {
	ToleranceMB      int    `mapstructure:"tolerance_mb"`
	ProbeToleranceMB int    `mapstructure:"probe_tolerance_mb"`
	MaxRetries       int    `mapstructure:"max_retries"`
	InitialBackoff   string `mapstructure:"initial_backoff"`
	ChunkSizeKB      int    `mapstructure:"chunk_size_kb"`
	HTTPSOnly        bool   `mapstructure:"https_only"`
}

// HTTPConfig contains HTTP client settings
type HTTPConfig struct {
	Timeout       string `mapstructure:"timeout"` // feed fetch and HEAD probe timeout
	SkipTLSVerify bool   `mapstructure:"skip_tls_verify"`
	UserAgent     string `mapstructure:"user_agent"`
}

// JournalConfig contains session history settings
type JournalConfig struct {
	Path string `mapstructure:"path"` // empty disables the journal
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load loads configuration from the specified file path
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	// Set defaults
	v.SetDefault("sync.tolerance_mb", 5)
	v.SetDefault("sync.probe_tolerance_mb", 1)
	v.SetDefault("sync.max_retries", 3)
	v.SetDefault("sync.initial_backoff", "2s")
	v.SetDefault("sync.chunk_size_kb", 32)
	v.SetDefault("sync.https_only", false)
	v.SetDefault("http.timeout", "10s")
	v.SetDefault("http.skip_tls_verify", false)
	v.SetDefault("http.user_agent", "prx/3.0")
	v.SetDefault("journal.path", "")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	seen := make(map[string]bool, len(c.Sources))
	for i, s := range c.Sources {
		if s.Name == "" {
			return fmt.Errorf("sources[%d].name is required", i)
		}
		if seen[s.Name] {
			return fmt.Errorf("duplicate source name: %s", s.Name)
		}
		seen[s.Name] = true
		if s.FeedURL == "" {
			return fmt.Errorf("source %s: feed_url is required", s.Name)
		}
		if s.OutputDir == "" {
			return fmt.Errorf("source %s: output_dir is required", s.Name)
		}
		switch s.FilenameFormat {
		case "", domain.FormatDefault, domain.FormatDaily:
		default:
			return fmt.Errorf("source %s: invalid filename_format: %s", s.Name, s.FilenameFormat)
		}
	}

	if c.Sync.ToleranceMB < 0 {
		return fmt.Errorf("sync.tolerance_mb must not be negative")
	}
	if c.Sync.ProbeToleranceMB < 0 {
		return fmt.Errorf("sync.probe_tolerance_mb must not be negative")
	}
	if c.Sync.MaxRetries < 1 {
		return fmt.Errorf("sync.max_retries must be at least 1")
	}
	if _, err := time.ParseDuration(c.Sync.InitialBackoff); err != nil {
		return fmt.Errorf("invalid sync.initial_backoff: %w", err)
	}
	if c.Sync.ChunkSizeKB <= 0 {
		return fmt.Errorf("sync.chunk_size_kb must be positive")
	}
	if _, err := time.ParseDuration(c.HTTP.Timeout); err != nil {
		return fmt.Errorf("invalid http.timeout: %w", err)
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		// Valid levels
	default:
		return fmt.Errorf("invalid logging.level: %s", c.Logging.Level)
	}

	switch c.Logging.Format {
	case "json", "text":
		// Valid formats
	default:
		return fmt.Errorf("invalid logging.format: %s", c.Logging.Format)
	}

	return nil
}

// GetTolerance returns the damage-check tolerance in bytes
func (c *SyncConfig) GetTolerance() int64 {
	return int64(c.ToleranceMB) * 1024 * 1024
}

// GetProbeTolerance returns the probe-path tolerance in bytes
func (c *SyncConfig) GetProbeTolerance() int64 {
	return int64(c.ProbeToleranceMB) * 1024 * 1024
}

// GetInitialBackoff returns the first retry delay as time.Duration
func (c *SyncConfig) GetInitialBackoff() time.Duration {
	d, _ := time.ParseDuration(c.InitialBackoff)
	if d == 0 {
		return 2 * time.Second
	}
	return d
}

// GetChunkSize returns the transfer chunk size in bytes
func (c *SyncConfig) GetChunkSize() int {
	if c.ChunkSizeKB <= 0 {
		return 32 * 1024
	}
	return c.ChunkSizeKB * 1024
}

// GetTimeout returns the HTTP timeout as time.Duration
func (c *HTTPConfig) GetTimeout() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	if d == 0 {
		return 10 * time.Second
	}
	return d
}

// FindSource returns the configured source with the given name
func (c *Config) FindSource(name string) (domain.PodcastSource, bool) {
	for _, s := range c.Sources {
		if s.Name == name {
			return s.ToDomain(), true
		}
	}
	return domain.PodcastSource{}, false
}

// AllSources converts every configured source to its domain form
func (c *Config) AllSources() []domain.PodcastSource {
	sources := make([]domain.PodcastSource, 0, len(c.Sources))
	for _, s := range c.Sources {
		sources = append(sources, s.ToDomain())
	}
	return sources
}

// ToDomain converts a source config entry to the engine's read-only form
func (s *SourceConfig) ToDomain() domain.PodcastSource {
	return domain.PodcastSource{
		Name:           s.Name,
		FeedURL:        s.FeedURL,
		OutputDir:      s.OutputDir,
		FilenameFormat: s.FilenameFormat,
	}
}
