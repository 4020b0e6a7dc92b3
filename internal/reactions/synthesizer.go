package reactions

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kijinews/kiji/internal/models"
)

const (
	commentCount    = 3
	maxCommentRunes = 60
	fillerComment   = "first"
	titlePrefix     = "[reactions] "
)

// Synthesizer turns the top manifest posts into a thread manifest,
// substituting deterministic defaults whenever the provider is missing,
// unreachable, or returns partial output. It never returns an error: the
// external service failing must not fail the run.
type Synthesizer struct {
	provider   Provider // nil means defaults-only
	note       string
	maxThreads int
}

// NewSynthesizer creates a Synthesizer. provider may be nil, in which
// case every thread is built entirely from defaults.
func NewSynthesizer(provider Provider, note string, maxThreads int) *Synthesizer {
	return &Synthesizer{
		provider:   provider,
		note:       note,
		maxThreads: maxThreads,
	}
}

// BuildThreads synthesizes threads for the first maxThreads posts.
func (s *Synthesizer) BuildThreads(ctx context.Context, posts []models.Post) models.ThreadManifest {
	n := min(s.maxThreads, len(posts))

	threads := make([]models.Thread, 0, n)
	for _, p := range posts[:n] {
		var reply *ThreadReply
		if s.provider != nil {
			var err error
			reply, err = s.provider.Synthesize(ctx, p.Title, p.Category)
			if err != nil {
				slog.Warn("reaction synthesis failed, using defaults", "url", p.URL, "error", err)
				reply = nil
			}
		}
		threads = append(threads, normalizeThread(p, reply))
	}

	return models.ThreadManifest{
		UpdatedAt: time.Now().UTC(),
		Note:      s.note,
		Threads:   threads,
	}
}

// normalizeThread builds a complete Thread from a possibly-nil,
// possibly-partial reply. Popularity is clamped to [0,100], the board
// defaults to the post category, and the comment list is padded to
// exactly three entries. Fallback numbers derive from the post ID so
// repeated runs produce identical output.
func normalizeThread(p models.Post, reply *ThreadReply) models.Thread {
	seed := postSeed(p.ID)

	board := p.Category
	popularity := int(40 + seed%41)
	var comments []models.Comment

	if reply != nil {
		if b := strings.TrimSpace(reply.Board); b != "" {
			board = b
		}
		if reply.Popularity != nil {
			popularity = clamp(*reply.Popularity, 0, 100)
		}
		for i, c := range reply.Comments {
			if i == commentCount {
				break
			}
			likes := int((seed >> (uint(i) * 8)) % 20)
			if c.Likes != nil {
				likes = clamp(*c.Likes, 0, 1<<20)
			}
			text := shorten(strings.TrimSpace(c.Text), maxCommentRunes)
			if text == "" {
				text = fillerComment
			}
			comments = append(comments, models.Comment{
				No:    len(comments) + 1,
				Text:  text,
				Likes: likes,
			})
		}
	}

	for len(comments) < commentCount {
		i := len(comments)
		comments = append(comments, models.Comment{
			No:    i + 1,
			Text:  fillerComment,
			Likes: int((seed >> (uint(i) * 8)) % 20),
		})
	}

	return models.Thread{
		Title:      titlePrefix + p.Title,
		URL:        p.URL,
		Board:      board,
		Date:       p.PublishedAt,
		Popularity: popularity,
		Comments:   comments,
	}
}

// WriteThreads writes the thread manifest JSON to path.
func WriteThreads(path string, tm models.ThreadManifest) error {
	data, err := json.MarshalIndent(tm, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding thread manifest: %w", err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating thread manifest directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing thread manifest: %w", err)
	}
	return nil
}

// postSeed hashes a post ID into a stable seed for fallback values.
func postSeed(id string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(id))
	return h.Sum64()
}

// shorten truncates s to n runes, appending an ellipsis when cut.
func shorten(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
