package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kijinews/kiji/internal/models"
)

// UpsertPosts records every manifest post in the archive. A post already
// present (same URL) keeps its first_seen_at and has its metadata and
// last_seen_at refreshed.
func (a *Archive) UpsertPosts(ctx context.Context, posts []models.Post) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO posts (id, url, title, source, category, published_at, image, summary, page_path)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(url) DO UPDATE SET
			title        = excluded.title,
			source       = excluded.source,
			category     = excluded.category,
			published_at = excluded.published_at,
			image        = excluded.image,
			summary      = excluded.summary,
			page_path    = excluded.page_path,
			last_seen_at = datetime('now')`)
	if err != nil {
		return fmt.Errorf("preparing upsert: %w", err)
	}
	defer stmt.Close()

	for _, p := range posts {
		if _, err := stmt.ExecContext(ctx,
			p.ID, p.URL, p.Title, p.SourceName, p.Category,
			p.PublishedAt.UTC().Format(timeLayout), p.Image, p.Summary, p.PagePath,
		); err != nil {
			return fmt.Errorf("upserting post %q: %w", p.URL, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing posts: %w", err)
	}
	return nil
}

// RecentPosts returns up to limit archived posts, most recently published
// first. Merge mode uses this to seed the union when no previous manifest
// file exists.
func (a *Archive) RecentPosts(ctx context.Context, limit int) ([]models.Post, error) {
	rows, err := a.db.QueryContext(ctx,
		`SELECT id, url, title, source, category, published_at, image, summary, page_path
		 FROM posts
		 ORDER BY published_at DESC
		 LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying recent posts: %w", err)
	}
	defer rows.Close()

	var posts []models.Post
	for rows.Next() {
		var (
			p           models.Post
			publishedAt string
		)
		if err := rows.Scan(&p.ID, &p.URL, &p.Title, &p.SourceName, &p.Category,
			&publishedAt, &p.Image, &p.Summary, &p.PagePath); err != nil {
			return nil, fmt.Errorf("scanning post: %w", err)
		}
		p.PublishedAt = parseTime(publishedAt)
		posts = append(posts, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating posts: %w", err)
	}
	return posts, nil
}

// FirstSeenAt returns when the archive first recorded the given URL.
// The zero time means the URL is unknown.
func (a *Archive) FirstSeenAt(ctx context.Context, url string) (time.Time, error) {
	var s string
	err := a.db.QueryRowContext(ctx,
		`SELECT first_seen_at FROM posts WHERE url = ?`, url).Scan(&s)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, nil
		}
		return time.Time{}, fmt.Errorf("querying first_seen_at: %w", err)
	}
	return parseTime(s), nil
}

// RunStats summarizes one pipeline run for the run log.
type RunStats struct {
	StartedAt      time.Time
	SourcesTotal   int
	FeedsFailed    int
	ItemsExtracted int
	PostsRetained  int
}

// RecordRun appends one entry to the run log.
func (a *Archive) RecordRun(ctx context.Context, stats RunStats) error {
	_, err := a.db.ExecContext(ctx,
		`INSERT INTO runs (started_at, sources_total, feeds_failed, items_extracted, posts_retained)
		 VALUES (?, ?, ?, ?, ?)`,
		stats.StartedAt.UTC().Format(timeLayout),
		stats.SourcesTotal, stats.FeedsFailed, stats.ItemsExtracted, stats.PostsRetained,
	)
	if err != nil {
		return fmt.Errorf("recording run: %w", err)
	}
	return nil
}
