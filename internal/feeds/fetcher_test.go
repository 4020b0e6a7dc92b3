package feeds

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kijinews/kiji/internal/models"
)

const rssDocument = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
  <title>%s</title>
  <link>https://example.com/</link>
  <item>
    <title>First article</title>
    <link>https://example.com/first</link>
    <pubDate>Tue, 02 Jan 2024 10:00:00 GMT</pubDate>
    <description>Something happened.</description>
  </item>
  <item>
    <title>Second article</title>
    <link>https://example.com/second</link>
    <pubDate>Wed, 03 Jan 2024 10:00:00 GMT</pubDate>
  </item>
</channel>
</rss>`

func TestFetchAll_CollectsPostsAndFailures(t *testing.T) {
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprintf(w, rssDocument, "Good Feed")
	}))
	defer good.Close()

	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer bad.Close()

	sources := []models.FeedSource{
		{URL: good.URL + "/rss"},
		{URL: bad.URL + "/rss"},
	}

	f := NewFetcher(5 * time.Second)
	result, err := f.FetchAll(context.Background(), sources, Options{
		Timeout:       5 * time.Second,
		MaxConcurrent: 2,
	})
	if err != nil {
		t.Fatalf("FetchAll() unexpected error: %v", err)
	}

	if len(result.Posts) != 2 {
		t.Errorf("got %d posts, want 2", len(result.Posts))
	}
	if len(result.Failed) != 1 {
		t.Fatalf("got %d failed feeds, want 1", len(result.Failed))
	}
	if result.Failed[0].URL != bad.URL+"/rss" {
		t.Errorf("Failed[0].URL = %q, want %q", result.Failed[0].URL, bad.URL+"/rss")
	}
	if result.AllFailed(len(sources)) {
		t.Error("AllFailed() = true with one successful feed")
	}

	for _, p := range result.Posts {
		if p.SourceName != "Good Feed" {
			t.Errorf("SourceName = %q, want %q", p.SourceName, "Good Feed")
		}
		if p.ID == "" || p.PublishedAt.IsZero() {
			t.Errorf("post %q missing derived fields", p.URL)
		}
	}
}

func TestFetchAll_AllFeedsFailed(t *testing.T) {
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer bad.Close()

	sources := []models.FeedSource{
		{URL: bad.URL + "/one"},
		{URL: bad.URL + "/two"},
	}

	f := NewFetcher(5 * time.Second)
	result, err := f.FetchAll(context.Background(), sources, Options{
		Timeout:       5 * time.Second,
		MaxConcurrent: 2,
	})
	if err != nil {
		t.Fatalf("FetchAll() unexpected error: %v", err)
	}

	if len(result.Posts) != 0 {
		t.Errorf("got %d posts, want 0", len(result.Posts))
	}
	if !result.AllFailed(len(sources)) {
		t.Error("AllFailed() = false, want true")
	}
}

func TestFetchAll_NoSources(t *testing.T) {
	f := NewFetcher(time.Second)
	result, err := f.FetchAll(context.Background(), nil, Options{Timeout: time.Second, MaxConcurrent: 1})
	if err != nil {
		t.Fatalf("FetchAll() unexpected error: %v", err)
	}
	if result.AllFailed(0) {
		t.Error("AllFailed(0) must be false: zero sources is a config problem, not a fetch blackout")
	}
}
