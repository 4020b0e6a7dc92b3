package feeds

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/mmcdole/gofeed"
	"golang.org/x/sync/errgroup"

	"github.com/kijinews/kiji/internal/models"
)

const rateLimitDelay = 1 * time.Second

// Options controls a fetch batch.
type Options struct {
	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration

	// MaxConcurrent bounds the number of feeds fetched in parallel.
	MaxConcurrent int
}

// FailedFeed records a feed that could not be fetched or parsed.
type FailedFeed struct {
	URL   string `json:"url"`
	Error string `json:"error"`
}

// Result contains the normalized posts from all reachable feeds and the
// feeds that failed. A failed feed contributes zero posts; it never aborts
// the batch.
type Result struct {
	Posts  []models.Post
	Failed []FailedFeed
}

// AllFailed reports whether every configured feed failed to fetch.
func (r *Result) AllFailed(total int) bool {
	return total > 0 && len(r.Failed) == total
}

// Fetcher retrieves RSS/Atom feeds with per-domain rate limiting and
// bounded concurrency.
type Fetcher struct {
	client      *http.Client
	rateLimiter map[string]time.Time // per-domain last request time
	mu          sync.Mutex           // protects rateLimiter
}

// NewFetcher creates a Fetcher whose HTTP client enforces the given
// timeout on every request and sends a browser-like User-Agent.
func NewFetcher(timeout time.Duration) *Fetcher {
	return &Fetcher{
		client: &http.Client{
			Timeout: timeout,
			Transport: &userAgentTransport{
				base: http.DefaultTransport,
			},
		},
		rateLimiter: make(map[string]time.Time),
	}
}

// userAgentTransport wraps an http.RoundTripper to inject a custom
// User-Agent header on every request.
type userAgentTransport struct {
	base http.RoundTripper
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	// Use a browser-like User-Agent to avoid bot detection on some sites.
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36")
	req.Header.Set("Accept", "application/rss+xml,application/atom+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9,ja;q=0.8")
	return t.base.RoundTrip(req)
}

// FetchAll fetches every source concurrently, bounded by
// opts.MaxConcurrent goroutines. Individual feed failures are logged and
// collected in Result.Failed rather than failing the batch; a context
// cancellation stops outstanding fetches.
func (f *Fetcher) FetchAll(ctx context.Context, sources []models.FeedSource, opts Options) (*Result, error) {
	var (
		result Result
		mu     sync.Mutex
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.MaxConcurrent)

	for _, src := range sources {
		g.Go(func() error {
			posts, err := f.fetchSingleFeed(ctx, src)
			if err != nil {
				slog.Warn("failed to fetch feed",
					"url", src.URL,
					"error", err,
				)

				mu.Lock()
				result.Failed = append(result.Failed, FailedFeed{
					URL:   src.URL,
					Error: err.Error(),
				})
				mu.Unlock()

				return nil // skip failures, don't fail the batch
			}

			mu.Lock()
			result.Posts = append(result.Posts, posts...)
			mu.Unlock()

			slog.Info("fetched feed",
				"url", src.URL,
				"items", len(posts),
			)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("fetching feeds: %w", err)
	}

	return &result, nil
}

// fetchSingleFeed retrieves and parses one feed, returning its normalized
// posts.
func (f *Fetcher) fetchSingleFeed(ctx context.Context, source models.FeedSource) ([]models.Post, error) {
	domain := extractDomain(source.URL)
	f.waitForRateLimit(domain)

	fp := gofeed.NewParser()
	fp.Client = f.client

	feed, err := fp.ParseURLWithContext(source.URL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parsing feed %q: %w", source.URL, err)
	}

	return parseFeedItems(source, feed, time.Now()), nil
}

// waitForRateLimit enforces a minimum delay of 1 second between requests
// to the same domain. It blocks until the delay has elapsed.
func (f *Fetcher) waitForRateLimit(domain string) {
	f.mu.Lock()
	lastReq, ok := f.rateLimiter[domain]
	if ok {
		elapsed := time.Since(lastReq)
		if elapsed < rateLimitDelay {
			f.mu.Unlock()
			time.Sleep(rateLimitDelay - elapsed)
			f.mu.Lock()
		}
	}
	f.rateLimiter[domain] = time.Now()
	f.mu.Unlock()
}

// extractDomain parses a URL and returns its hostname. If parsing fails,
// it returns the raw URL as a fallback key.
func extractDomain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return u.Hostname()
}
