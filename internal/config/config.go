package config

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/BurntSushi/toml"
)

// Config holds all application configuration. The pipeline receives a
// resolved Config and never reads environment state directly.
type Config struct {
	Feeds     FeedsConfig     `toml:"feeds"`
	Output    OutputConfig    `toml:"output"`
	Archive   ArchiveConfig   `toml:"archive"`
	Reactions ReactionsConfig `toml:"reactions"`
}

// FeedsConfig holds feed ingestion settings.
type FeedsConfig struct {
	// SourcesFile points at the feed source registry (JSON or YAML).
	SourcesFile string `toml:"sources_file"`

	// MaxItems bounds the manifest size. A maxItems value in the sources
	// file overrides this.
	MaxItems int `toml:"max_items"`

	TimeoutSeconds int `toml:"timeout_seconds"`
	MaxConcurrent  int `toml:"max_concurrent"`

	// DedupPolicy is "first" (first occurrence wins) or "newest"
	// (most recent publish date wins).
	DedupPolicy string `toml:"dedup_policy"`

	// Mode is "replace" (manifest rebuilt from scratch) or "merge"
	// (previous manifest entries are unioned with fresh items).
	Mode string `toml:"mode"`

	// FillMissingSummaries fetches the article body for items whose feed
	// carries no description and extracts an excerpt.
	FillMissingSummaries bool `toml:"fill_missing_summaries"`
}

// OutputConfig holds static site output settings.
type OutputConfig struct {
	Dir        string `toml:"dir"`
	PagesDir   string `toml:"pages_dir"`
	CleanStale bool   `toml:"clean_stale"`
}

// ArchiveConfig holds the SQLite post archive settings.
type ArchiveConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// ReactionsConfig holds the optional reaction synthesizer settings.
type ReactionsConfig struct {
	Enabled    bool   `toml:"enabled"`
	Provider   string `toml:"provider"` // "anthropic" or "openai"
	APIKey     string `toml:"api_key"`
	Model      string `toml:"model"`
	MaxThreads int    `toml:"max_threads"`
	Note       string `toml:"note"`
}

// DefaultNote is the disclaimer attached to every thread manifest.
const DefaultNote = "All reactions on this page are fictitious commentary generated from the news item; none reproduce real forum posts."

// Load reads and parses the TOML config from the given path. A missing
// file is not an error: all defaults apply, so a bare invocation works
// with just a feeds.json next to it. Environment variables override the
// reactions API key with highest priority.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		md, derr := toml.Decode(string(data), &cfg)
		if derr != nil {
			return nil, fmt.Errorf("parsing config file: %w", derr)
		}
		if verr := validateExplicit(&cfg, md); verr != nil {
			return nil, fmt.Errorf("validating config: %w", verr)
		}
	case os.IsNotExist(err):
		slog.Info("no config file, using defaults", "path", path)
	default:
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// validateExplicit checks values that were explicitly set in the TOML
// file. This catches cases like "max_items = 0" which would otherwise be
// silently replaced by the default value.
func validateExplicit(cfg *Config, md toml.MetaData) error {
	if md.IsDefined("feeds", "max_items") && cfg.Feeds.MaxItems < 1 {
		return fmt.Errorf("invalid feeds.max_items %d: must be >= 1", cfg.Feeds.MaxItems)
	}
	if md.IsDefined("feeds", "timeout_seconds") && cfg.Feeds.TimeoutSeconds < 1 {
		return fmt.Errorf("invalid feeds.timeout_seconds %d: must be >= 1", cfg.Feeds.TimeoutSeconds)
	}
	if md.IsDefined("feeds", "max_concurrent") && cfg.Feeds.MaxConcurrent < 1 {
		return fmt.Errorf("invalid feeds.max_concurrent %d: must be >= 1", cfg.Feeds.MaxConcurrent)
	}
	if md.IsDefined("reactions", "max_threads") && cfg.Reactions.MaxThreads < 1 {
		return fmt.Errorf("invalid reactions.max_threads %d: must be >= 1", cfg.Reactions.MaxThreads)
	}
	return nil
}

// applyDefaults sets default values for any zero-valued fields.
func applyDefaults(cfg *Config) {
	if cfg.Feeds.SourcesFile == "" {
		cfg.Feeds.SourcesFile = "feeds.json"
	}
	if cfg.Feeds.MaxItems == 0 {
		cfg.Feeds.MaxItems = 80
	}
	if cfg.Feeds.TimeoutSeconds == 0 {
		cfg.Feeds.TimeoutSeconds = 20
	}
	if cfg.Feeds.MaxConcurrent == 0 {
		cfg.Feeds.MaxConcurrent = 8
	}
	if cfg.Feeds.DedupPolicy == "" {
		cfg.Feeds.DedupPolicy = "first"
	}
	if cfg.Feeds.Mode == "" {
		cfg.Feeds.Mode = "replace"
	}
	if cfg.Output.Dir == "" {
		cfg.Output.Dir = "./site"
	}
	if cfg.Output.PagesDir == "" {
		cfg.Output.PagesDir = "pages"
	}
	if cfg.Archive.Path == "" {
		cfg.Archive.Path = "./data/kiji.db"
	}
	if cfg.Reactions.Provider == "" {
		cfg.Reactions.Provider = "openai"
	}
	if cfg.Reactions.Model == "" {
		switch cfg.Reactions.Provider {
		case "anthropic":
			cfg.Reactions.Model = "claude-haiku-4-5"
		default:
			cfg.Reactions.Model = "gpt-4.1-mini"
		}
	}
	if cfg.Reactions.MaxThreads == 0 {
		cfg.Reactions.MaxThreads = 8
	}
	if cfg.Reactions.Note == "" {
		cfg.Reactions.Note = DefaultNote
	}
}

// applyEnvOverrides applies environment variable overrides. Environment
// variables take highest priority over config file values.
//
// Priority for reactions.api_key:
//  1. REACTIONS_API_KEY (generic, highest)
//  2. ANTHROPIC_API_KEY (when provider is "anthropic")
//  3. OPENAI_API_KEY (when provider is "openai")
func applyEnvOverrides(cfg *Config) {
	switch cfg.Reactions.Provider {
	case "anthropic":
		if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
			cfg.Reactions.APIKey = v
		}
	case "openai":
		if v := os.Getenv("OPENAI_API_KEY"); v != "" {
			cfg.Reactions.APIKey = v
		}
	}

	if v := os.Getenv("REACTIONS_API_KEY"); v != "" {
		cfg.Reactions.APIKey = v
	}
}

// validate checks that configuration values are within acceptable ranges.
func validate(cfg *Config) error {
	switch cfg.Feeds.DedupPolicy {
	case "first", "newest":
	default:
		return fmt.Errorf("invalid feeds.dedup_policy %q: must be \"first\" or \"newest\"", cfg.Feeds.DedupPolicy)
	}

	switch cfg.Feeds.Mode {
	case "replace", "merge":
	default:
		return fmt.Errorf("invalid feeds.mode %q: must be \"replace\" or \"merge\"", cfg.Feeds.Mode)
	}

	switch cfg.Reactions.Provider {
	case "anthropic", "openai":
	default:
		return fmt.Errorf("invalid reactions.provider %q: must be \"anthropic\" or \"openai\"", cfg.Reactions.Provider)
	}

	if cfg.Reactions.Enabled && cfg.Reactions.APIKey == "" {
		slog.Warn("reactions enabled but no api key set; threads will use fallback content only")
	}

	return nil
}
