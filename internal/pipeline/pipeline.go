// Package pipeline wires one batch run: fetch, aggregate, render,
// archive, and optionally synthesize reaction threads.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/kijinews/kiji/internal/aggregate"
	"github.com/kijinews/kiji/internal/config"
	"github.com/kijinews/kiji/internal/feeds"
	"github.com/kijinews/kiji/internal/models"
	"github.com/kijinews/kiji/internal/reactions"
	"github.com/kijinews/kiji/internal/render"
	"github.com/kijinews/kiji/internal/storage"
)

// ThreadsFile is the thread manifest's filename inside the output
// directory.
const ThreadsFile = "threads.json"

// Pipeline holds the collaborators for one run. Archive and Provider are
// optional; a nil Archive skips persistence and a nil Provider makes the
// synthesizer fall back to defaults.
type Pipeline struct {
	Config   *config.Config
	Sources  *config.SourceList
	Fetcher  *feeds.Fetcher
	Archive  *storage.Archive
	Provider reactions.Provider
}

// Summary reports what a run produced. NewPosts counts manifest posts
// the archive had never seen before; it stays zero without an archive.
type Summary struct {
	PostsRetained  int
	NewPosts       int
	FeedsFailed    int
	AllFeedsFailed bool
}

// Run executes the batch once. Per-feed and per-item failures are logged
// and skipped; only output-writing failures (or cancellation) surface as
// errors. Whether an all-feeds-failed run should be fatal is the caller's
// policy decision, via Summary.AllFeedsFailed.
func (pl *Pipeline) Run(ctx context.Context) (*Summary, error) {
	cfg := pl.Config
	started := time.Now()

	result, err := pl.Fetcher.FetchAll(ctx, pl.Sources.Feeds, feeds.Options{
		Timeout:       time.Duration(cfg.Feeds.TimeoutSeconds) * time.Second,
		MaxConcurrent: cfg.Feeds.MaxConcurrent,
	})
	if err != nil {
		return nil, fmt.Errorf("fetching feeds: %w", err)
	}

	if cfg.Feeds.FillMissingSummaries {
		result.Posts = pl.Fetcher.FillSummaries(ctx, result.Posts,
			time.Duration(cfg.Feeds.TimeoutSeconds)*time.Second)
	}

	maxItems := cfg.Feeds.MaxItems
	if pl.Sources.MaxItems > 0 {
		maxItems = pl.Sources.MaxItems
	}

	previous, err := pl.previousPosts(ctx, maxItems)
	if err != nil {
		return nil, err
	}

	posts := aggregate.Build(result.Posts, previous, aggregate.Options{
		MaxItems:    maxItems,
		DedupPolicy: cfg.Feeds.DedupPolicy,
		PagesDir:    cfg.Output.PagesDir,
	})

	manifest := models.Manifest{
		UpdatedAt: time.Now().UTC(),
		Posts:     posts,
	}

	renderer, err := render.New(cfg.Output.Dir, cfg.Output.PagesDir)
	if err != nil {
		return nil, err
	}
	if err := renderer.WriteSite(manifest); err != nil {
		return nil, err
	}
	if err := render.WriteManifest(pl.ManifestPath(), manifest); err != nil {
		return nil, err
	}
	if cfg.Output.CleanStale {
		renderer.CleanStalePages(manifest)
	}

	newPosts := 0
	if pl.Archive != nil {
		for _, p := range posts {
			firstSeen, err := pl.Archive.FirstSeenAt(ctx, p.URL)
			if err != nil {
				return nil, fmt.Errorf("checking archive: %w", err)
			}
			if firstSeen.IsZero() {
				newPosts++
			}
		}
		if err := pl.Archive.UpsertPosts(ctx, posts); err != nil {
			return nil, fmt.Errorf("archiving posts: %w", err)
		}
		if err := pl.Archive.RecordRun(ctx, storage.RunStats{
			StartedAt:      started,
			SourcesTotal:   len(pl.Sources.Feeds),
			FeedsFailed:    len(result.Failed),
			ItemsExtracted: len(result.Posts),
			PostsRetained:  len(posts),
		}); err != nil {
			return nil, fmt.Errorf("recording run: %w", err)
		}
		slog.Info("archive updated", "posts", len(posts), "new", newPosts)
	}

	if cfg.Reactions.Enabled {
		synth := reactions.NewSynthesizer(pl.Provider, cfg.Reactions.Note, cfg.Reactions.MaxThreads)
		tm := synth.BuildThreads(ctx, posts)
		if err := reactions.WriteThreads(filepath.Join(cfg.Output.Dir, ThreadsFile), tm); err != nil {
			return nil, err
		}
		slog.Info("threads written", "count", len(tm.Threads))
	}

	return &Summary{
		PostsRetained:  len(posts),
		NewPosts:       newPosts,
		FeedsFailed:    len(result.Failed),
		AllFeedsFailed: result.AllFailed(len(pl.Sources.Feeds)),
	}, nil
}

// ManifestPath returns the manifest location inside the output directory.
func (pl *Pipeline) ManifestPath() string {
	return filepath.Join(pl.Config.Output.Dir, render.ManifestFile)
}

// previousPosts loads the posts to union with fresh ones in merge mode.
// A missing manifest file falls back to the archive; anything else
// missing yields an empty set.
func (pl *Pipeline) previousPosts(ctx context.Context, maxItems int) ([]models.Post, error) {
	if pl.Config.Feeds.Mode != "merge" {
		return nil, nil
	}

	m, err := render.LoadManifest(pl.ManifestPath())
	if err == nil {
		return m.Posts, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("previous manifest unreadable, ignoring", "error", err)
		return nil, nil
	}

	if pl.Archive == nil {
		return nil, nil
	}
	posts, err := pl.Archive.RecentPosts(ctx, maxItems)
	if err != nil {
		return nil, fmt.Errorf("loading archived posts: %w", err)
	}
	return posts, nil
}
