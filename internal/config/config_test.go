package config

import (
	"os"
	"path/filepath"
	"testing"
)

// writeTestConfig writes a TOML config file to a temp directory and
// returns its path.
func writeTestConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing test config: %v", err)
	}
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	content := `
[feeds]
sources_file = "myfeeds.yaml"
max_items = 120
timeout_seconds = 10
max_concurrent = 4
dedup_policy = "newest"
mode = "merge"
fill_missing_summaries = true

[output]
dir = "./public"
pages_dir = "articles"
clean_stale = true

[archive]
enabled = true
path = "./db/posts.db"

[reactions]
enabled = true
provider = "anthropic"
api_key = "sk-test-key-123"
max_threads = 5
`
	cfg, err := Load(writeTestConfig(t, content))
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}

	if cfg.Feeds.SourcesFile != "myfeeds.yaml" {
		t.Errorf("Feeds.SourcesFile = %q, want %q", cfg.Feeds.SourcesFile, "myfeeds.yaml")
	}
	if cfg.Feeds.MaxItems != 120 {
		t.Errorf("Feeds.MaxItems = %d, want %d", cfg.Feeds.MaxItems, 120)
	}
	if cfg.Feeds.TimeoutSeconds != 10 {
		t.Errorf("Feeds.TimeoutSeconds = %d, want %d", cfg.Feeds.TimeoutSeconds, 10)
	}
	if cfg.Feeds.DedupPolicy != "newest" {
		t.Errorf("Feeds.DedupPolicy = %q, want %q", cfg.Feeds.DedupPolicy, "newest")
	}
	if cfg.Feeds.Mode != "merge" {
		t.Errorf("Feeds.Mode = %q, want %q", cfg.Feeds.Mode, "merge")
	}
	if !cfg.Feeds.FillMissingSummaries {
		t.Error("Feeds.FillMissingSummaries = false, want true")
	}
	if cfg.Output.Dir != "./public" {
		t.Errorf("Output.Dir = %q, want %q", cfg.Output.Dir, "./public")
	}
	if cfg.Output.PagesDir != "articles" {
		t.Errorf("Output.PagesDir = %q, want %q", cfg.Output.PagesDir, "articles")
	}
	if !cfg.Archive.Enabled {
		t.Error("Archive.Enabled = false, want true")
	}
	if cfg.Reactions.Provider != "anthropic" {
		t.Errorf("Reactions.Provider = %q, want %q", cfg.Reactions.Provider, "anthropic")
	}
	if cfg.Reactions.MaxThreads != 5 {
		t.Errorf("Reactions.MaxThreads = %d, want %d", cfg.Reactions.MaxThreads, 5)
	}
	// Model should default per provider.
	if cfg.Reactions.Model != "claude-haiku-4-5" {
		t.Errorf("Reactions.Model = %q, want %q", cfg.Reactions.Model, "claude-haiku-4-5")
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load(%q) unexpected error: %v", path, err)
	}

	if cfg.Feeds.SourcesFile != "feeds.json" {
		t.Errorf("Feeds.SourcesFile = %q, want %q", cfg.Feeds.SourcesFile, "feeds.json")
	}
	if cfg.Feeds.MaxItems != 80 {
		t.Errorf("Feeds.MaxItems = %d, want %d", cfg.Feeds.MaxItems, 80)
	}
	if cfg.Feeds.TimeoutSeconds != 20 {
		t.Errorf("Feeds.TimeoutSeconds = %d, want %d", cfg.Feeds.TimeoutSeconds, 20)
	}
	if cfg.Feeds.MaxConcurrent != 8 {
		t.Errorf("Feeds.MaxConcurrent = %d, want %d", cfg.Feeds.MaxConcurrent, 8)
	}
	if cfg.Feeds.DedupPolicy != "first" {
		t.Errorf("Feeds.DedupPolicy = %q, want %q", cfg.Feeds.DedupPolicy, "first")
	}
	if cfg.Feeds.Mode != "replace" {
		t.Errorf("Feeds.Mode = %q, want %q", cfg.Feeds.Mode, "replace")
	}
	if cfg.Output.Dir != "./site" {
		t.Errorf("Output.Dir = %q, want %q", cfg.Output.Dir, "./site")
	}
	if cfg.Output.PagesDir != "pages" {
		t.Errorf("Output.PagesDir = %q, want %q", cfg.Output.PagesDir, "pages")
	}
	if cfg.Reactions.Provider != "openai" {
		t.Errorf("Reactions.Provider = %q, want %q", cfg.Reactions.Provider, "openai")
	}
	if cfg.Reactions.Note == "" {
		t.Error("Reactions.Note should have a default disclaimer")
	}
}

func TestLoad_ExplicitZeroRejected(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "max_items zero", content: "[feeds]\nmax_items = 0\n"},
		{name: "timeout zero", content: "[feeds]\ntimeout_seconds = 0\n"},
		{name: "max_concurrent negative", content: "[feeds]\nmax_concurrent = -1\n"},
		{name: "max_threads zero", content: "[reactions]\nmax_threads = 0\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeTestConfig(t, tt.content)); err == nil {
				t.Error("Load() expected error, got nil")
			}
		})
	}
}

func TestLoad_InvalidEnums(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "bad dedup policy", content: "[feeds]\ndedup_policy = \"latest\"\n"},
		{name: "bad mode", content: "[feeds]\nmode = \"append\"\n"},
		{name: "bad provider", content: "[reactions]\nprovider = \"gemini\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeTestConfig(t, tt.content)); err == nil {
				t.Error("Load() expected error, got nil")
			}
		})
	}
}

func TestLoad_MalformedTOML(t *testing.T) {
	if _, err := Load(writeTestConfig(t, "[feeds\nmax_items = ")); err == nil {
		t.Error("Load() expected error for malformed TOML, got nil")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	content := `
[reactions]
provider = "openai"
api_key = "from-file"
`

	t.Run("provider env var", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "from-openai-env")
		t.Setenv("REACTIONS_API_KEY", "")
		t.Setenv("ANTHROPIC_API_KEY", "ignored")

		cfg, err := Load(writeTestConfig(t, content))
		if err != nil {
			t.Fatalf("Load() unexpected error: %v", err)
		}
		if cfg.Reactions.APIKey != "from-openai-env" {
			t.Errorf("APIKey = %q, want %q", cfg.Reactions.APIKey, "from-openai-env")
		}
	})

	t.Run("generic env var wins", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "from-openai-env")
		t.Setenv("REACTIONS_API_KEY", "from-generic-env")

		cfg, err := Load(writeTestConfig(t, content))
		if err != nil {
			t.Fatalf("Load() unexpected error: %v", err)
		}
		if cfg.Reactions.APIKey != "from-generic-env" {
			t.Errorf("APIKey = %q, want %q", cfg.Reactions.APIKey, "from-generic-env")
		}
	})
}
