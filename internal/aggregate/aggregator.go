// Package aggregate merges posts across feeds into the final manifest
// order: classify, deduplicate by URL, sort by recency, truncate.
package aggregate

import (
	"path"
	"sort"

	"github.com/kijinews/kiji/internal/models"
)

// Dedup precedence policies. The source material is inconsistent about
// which duplicate survives, so the choice is explicit configuration.
const (
	PolicyFirst  = "first"  // first occurrence wins
	PolicyNewest = "newest" // most recent publishedAt wins, ties keep the incumbent
)

// Options controls one aggregation pass.
type Options struct {
	MaxItems    int
	DedupPolicy string // PolicyFirst or PolicyNewest

	// PagesDir is the manifest-relative directory for per-post pages,
	// recorded in each post's PagePath.
	PagesDir string
}

// Build produces the final ordered post list. Fresh posts are considered
// before previous (merge-mode) posts, so under PolicyFirst a freshly
// fetched article keeps its newest metadata. The result is sorted by
// PublishedAt descending with insertion order breaking ties, and bounded
// by MaxItems.
func Build(fresh, previous []models.Post, opts Options) []models.Post {
	combined := make([]models.Post, 0, len(fresh)+len(previous))
	combined = append(combined, fresh...)
	combined = append(combined, previous...)

	out := make([]models.Post, 0, len(combined))
	byURL := make(map[string]int, len(combined))

	for _, p := range combined {
		p.Category = Classify(p)
		p.PagePath = PagePath(opts.PagesDir, p.ID)

		i, seen := byURL[p.URL]
		if !seen {
			byURL[p.URL] = len(out)
			out = append(out, p)
			continue
		}
		if opts.DedupPolicy == PolicyNewest && p.PublishedAt.After(out[i].PublishedAt) {
			out[i] = p
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PublishedAt.After(out[j].PublishedAt)
	})

	if opts.MaxItems > 0 && len(out) > opts.MaxItems {
		out = out[:opts.MaxItems]
	}
	return out
}

// PagePath returns the manifest-relative path of the rendered page for a
// post ID.
func PagePath(pagesDir, id string) string {
	return path.Join(pagesDir, id+".html")
}
