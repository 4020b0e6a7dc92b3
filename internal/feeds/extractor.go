package feeds

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	readability "github.com/go-shiori/go-readability"

	"github.com/kijinews/kiji/internal/models"
)

// browserHeaders sets browser-like request headers so sites that check
// Accept or User-Agent don't reject the request with 406.
func browserHeaders(r *http.Request) {
	r.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	r.Header.Set("User-Agent", "Mozilla/5.0 (compatible; kiji/1.0; +https://github.com/kijinews/kiji)")
}

// FillSummaries backfills the summary of posts whose feed carried no
// description by fetching the article and extracting its readable text.
// Extraction failures are logged per post and leave the summary empty;
// they never fail the batch. Cancellation stops the remaining backfills.
func (f *Fetcher) FillSummaries(ctx context.Context, posts []models.Post, timeout time.Duration) []models.Post {
	for i := range posts {
		if posts[i].Summary != "" {
			continue
		}
		if ctx.Err() != nil {
			break
		}

		excerpt, err := f.extractExcerpt(posts[i].URL, timeout)
		if err != nil {
			slog.Warn("summary backfill failed", "url", posts[i].URL, "error", err)
			continue
		}
		posts[i].Summary = excerpt
	}
	return posts
}

// extractExcerpt fetches the page at articleURL and returns a summary-
// sized excerpt of its main readable content.
func (f *Fetcher) extractExcerpt(articleURL string, timeout time.Duration) (string, error) {
	f.waitForRateLimit(extractDomain(articleURL))

	article, err := readability.FromURL(articleURL, timeout, browserHeaders)
	if err != nil {
		return "", fmt.Errorf("readability extraction: %w", err)
	}

	text := article.Excerpt
	if text == "" {
		text = article.TextContent
	}
	return Summarize(text), nil
}
