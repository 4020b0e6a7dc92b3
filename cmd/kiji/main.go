// Command kiji runs the feed aggregation batch: it polls the configured
// RSS/Atom feeds, renders a static page per article, writes the
// posts.json manifest, and optionally synthesizes reaction threads.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kijinews/kiji/internal/config"
	"github.com/kijinews/kiji/internal/feeds"
	"github.com/kijinews/kiji/internal/pipeline"
	"github.com/kijinews/kiji/internal/preview"
	"github.com/kijinews/kiji/internal/reactions"
	"github.com/kijinews/kiji/internal/storage"
)

func main() {
	configPath := flag.String("config", "config.toml", "path to config file")
	sourcesPath := flag.String("sources", "", "path to feed sources file (overrides config)")
	outDir := flag.String("out", "", "output directory (overrides config)")
	serve := flag.Bool("serve", false, "serve the generated site locally after the run")
	servePort := flag.Int("port", 8080, "preview server port (with -serve)")
	flag.Parse()

	// The run can be aborted at any point; partially written output is
	// fine since the next run regenerates it.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if *sourcesPath != "" {
		cfg.Feeds.SourcesFile = *sourcesPath
	}
	if *outDir != "" {
		cfg.Output.Dir = *outDir
	}

	// Sources must be usable before any network activity.
	sources, err := config.LoadSources(cfg.Feeds.SourcesFile)
	if err != nil {
		slog.Error("failed to load feed sources", "error", err)
		os.Exit(1)
	}

	pl := &pipeline.Pipeline{
		Config:  cfg,
		Sources: sources,
		Fetcher: feeds.NewFetcher(time.Duration(cfg.Feeds.TimeoutSeconds) * time.Second),
	}

	if cfg.Archive.Enabled {
		db, err := storage.OpenDatabase(cfg.Archive.Path)
		if err != nil {
			slog.Error("failed to open archive", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := storage.RunMigrations(db); err != nil {
			slog.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}
		pl.Archive = storage.NewArchive(db)
	}

	if cfg.Reactions.Enabled && cfg.Reactions.APIKey != "" {
		provider, err := reactions.NewProvider(reactions.ProviderConfig{
			Provider: cfg.Reactions.Provider,
			APIKey:   cfg.Reactions.APIKey,
			Model:    cfg.Reactions.Model,
		})
		if err != nil {
			slog.Error("failed to create reactions provider", "error", err)
			os.Exit(1)
		}
		pl.Provider = provider
		slog.Info("reactions provider configured", "provider", cfg.Reactions.Provider, "model", cfg.Reactions.Model)
	}

	summary, err := pl.Run(ctx)
	if err != nil {
		slog.Error("run failed", "error", err)
		os.Exit(1)
	}

	slog.Info("run complete",
		"posts", summary.PostsRetained,
		"new", summary.NewPosts,
		"feeds_failed", summary.FeedsFailed,
	)

	// An empty manifest is a valid result as long as at least one feed
	// answered; only a total fetch blackout is treated as failure.
	if summary.AllFeedsFailed {
		slog.Error("every configured feed failed to fetch")
		os.Exit(1)
	}

	if *serve {
		if err := preview.Serve(ctx, cfg.Output.Dir, *servePort); err != nil {
			slog.Error("preview failed", "error", err)
			os.Exit(1)
		}
	}
}
