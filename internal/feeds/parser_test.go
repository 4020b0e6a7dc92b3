package feeds

import (
	"strings"
	"testing"
	"time"

	"github.com/mmcdole/gofeed"
	ext "github.com/mmcdole/gofeed/extensions"

	"github.com/kijinews/kiji/internal/models"
)

func mediaExt(name, url string) ext.Extensions {
	return ext.Extensions{
		"media": {
			name: []ext.Extension{{Name: name, Attrs: map[string]string{"url": url}}},
		},
	}
}

func TestParseFeedItems_SkipRules(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	pub := now.Add(-24 * time.Hour)

	tests := []struct {
		name      string
		items     []*gofeed.Item
		wantCount int
	}{
		{
			name: "valid item survives",
			items: []*gofeed.Item{
				{Title: "Headline", Link: "https://example.com/a", PublishedParsed: &pub},
			},
			wantCount: 1,
		},
		{
			name: "empty title is dropped",
			items: []*gofeed.Item{
				{Title: "", Link: "https://example.com/a", PublishedParsed: &pub},
			},
			wantCount: 0,
		},
		{
			name: "whitespace title is dropped",
			items: []*gofeed.Item{
				{Title: "   ", Link: "https://example.com/a", PublishedParsed: &pub},
			},
			wantCount: 0,
		},
		{
			name: "empty link is dropped",
			items: []*gofeed.Item{
				{Title: "Headline", Link: "", PublishedParsed: &pub},
			},
			wantCount: 0,
		},
		{
			name: "mixed items filter correctly",
			items: []*gofeed.Item{
				{Title: "Good", Link: "https://example.com/good", PublishedParsed: &pub},
				{Title: "", Link: "https://example.com/notitle"},
				{Title: "No Link", Link: ""},
				{Title: "No Date", Link: "https://example.com/nodate"},
			},
			wantCount: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			feed := &gofeed.Feed{Items: tt.items}
			posts := parseFeedItems(models.FeedSource{URL: "https://example.com/rss"}, feed, now)

			if got := len(posts); got != tt.wantCount {
				t.Errorf("got %d posts, want %d", got, tt.wantCount)
			}
		})
	}
}

func TestParseFeedItems_DateFallback(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	pub := time.Date(2024, 5, 20, 8, 0, 0, 0, time.UTC)
	upd := time.Date(2024, 5, 25, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		item *gofeed.Item
		want time.Time
	}{
		{
			name: "published date used",
			item: &gofeed.Item{Title: "A", Link: "https://example.com/a", PublishedParsed: &pub, UpdatedParsed: &upd},
			want: pub,
		},
		{
			name: "updated date when no published",
			item: &gofeed.Item{Title: "A", Link: "https://example.com/a", UpdatedParsed: &upd},
			want: upd,
		},
		{
			name: "wall clock when neither parses",
			item: &gofeed.Item{Title: "A", Link: "https://example.com/a", Published: "not a date"},
			want: now,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			feed := &gofeed.Feed{Items: []*gofeed.Item{tt.item}}
			posts := parseFeedItems(models.FeedSource{}, feed, now)
			if len(posts) != 1 {
				t.Fatalf("expected 1 post, got %d", len(posts))
			}
			if !posts[0].PublishedAt.Equal(tt.want) {
				t.Errorf("PublishedAt = %v, want %v", posts[0].PublishedAt, tt.want)
			}
			if posts[0].PublishedAt.IsZero() {
				t.Error("PublishedAt must never be zero")
			}
		})
	}
}

func TestParseFeedItems_SourceName(t *testing.T) {
	now := time.Now()
	item := &gofeed.Item{Title: "A", Link: "https://example.com/a"}

	tests := []struct {
		name      string
		feedTitle string
		source    models.FeedSource
		want      string
	}{
		{
			name:      "feed title wins",
			feedTitle: "Example News",
			source:    models.FeedSource{URL: "https://example.com/rss", Name: "Configured"},
			want:      "Example News",
		},
		{
			name:   "configured name when feed has none",
			source: models.FeedSource{URL: "https://example.com/rss", Name: "Configured"},
			want:   "Configured",
		},
		{
			name:   "hostname fallback",
			source: models.FeedSource{URL: "https://feeds.example.com/rss"},
			want:   "feeds.example.com",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			feed := &gofeed.Feed{Title: tt.feedTitle, Items: []*gofeed.Item{item}}
			posts := parseFeedItems(tt.source, feed, now)
			if posts[0].SourceName != tt.want {
				t.Errorf("SourceName = %q, want %q", posts[0].SourceName, tt.want)
			}
		})
	}
}

func TestResolveImage_Precedence(t *testing.T) {
	const bodyWithImg = `<p>text</p><img src="https://example.com/body.jpg" alt="">`

	tests := []struct {
		name string
		item *gofeed.Item
		want string
	}{
		{
			name: "media content beats everything",
			item: &gofeed.Item{
				Extensions:  mediaExt("content", "https://example.com/media.jpg"),
				Enclosures:  []*gofeed.Enclosure{{URL: "https://example.com/enc.jpg", Type: "image/jpeg"}},
				Description: bodyWithImg,
			},
			want: "https://example.com/media.jpg",
		},
		{
			name: "media thumbnail beats enclosure",
			item: &gofeed.Item{
				Extensions: mediaExt("thumbnail", "https://example.com/thumb.jpg"),
				Enclosures: []*gofeed.Enclosure{{URL: "https://example.com/enc.jpg", Type: "image/jpeg"}},
			},
			want: "https://example.com/thumb.jpg",
		},
		{
			name: "enclosure beats body img",
			item: &gofeed.Item{
				Enclosures:  []*gofeed.Enclosure{{URL: "https://example.com/enc.jpg", Type: "image/jpeg"}},
				Description: bodyWithImg,
			},
			want: "https://example.com/enc.jpg",
		},
		{
			name: "body img as last resort",
			item: &gofeed.Item{
				Description: bodyWithImg,
			},
			want: "https://example.com/body.jpg",
		},
		{
			name: "content preferred over description for body scan",
			item: &gofeed.Item{
				Content:     `<img src="https://example.com/content.jpg">`,
				Description: bodyWithImg,
			},
			want: "https://example.com/content.jpg",
		},
		{
			name: "relative media url falls through to absolute body img",
			item: &gofeed.Item{
				Extensions:  mediaExt("content", "/relative/media.jpg"),
				Description: bodyWithImg,
			},
			want: "https://example.com/body.jpg",
		},
		{
			name: "audio enclosure falls through to body img",
			item: &gofeed.Item{
				Enclosures:  []*gofeed.Enclosure{{URL: "https://example.com/episode.mp3", Type: "audio/mpeg"}},
				Description: bodyWithImg,
			},
			want: "https://example.com/body.jpg",
		},
		{
			name: "typeless enclosure with image extension accepted",
			item: &gofeed.Item{
				Enclosures: []*gofeed.Enclosure{{URL: "https://example.com/pic.png?w=640"}},
			},
			want: "https://example.com/pic.png?w=640",
		},
		{
			name: "image enclosure after audio enclosure wins",
			item: &gofeed.Item{
				Enclosures: []*gofeed.Enclosure{
					{URL: "https://example.com/episode.mp3", Type: "audio/mpeg"},
					{URL: "https://example.com/photo.jpg", Type: "image/jpeg"},
				},
			},
			want: "https://example.com/photo.jpg",
		},
		{
			name: "no candidates yields empty",
			item: &gofeed.Item{Description: "<p>plain text only</p>"},
			want: "",
		},
		{
			name: "non-http scheme rejected",
			item: &gofeed.Item{Description: `<img src="data:image/png;base64,AAAA">`},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := resolveImage(tt.item); got != tt.want {
				t.Errorf("resolveImage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPostID(t *testing.T) {
	id := PostID("https://example.com/article")

	if len(id) != 16 {
		t.Errorf("PostID length = %d, want 16", len(id))
	}
	if id != PostID("https://example.com/article") {
		t.Error("PostID not deterministic")
	}
	if id == PostID("https://example.com/other") {
		t.Error("different URLs should produce different IDs")
	}
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "strips tags and entities",
			input: "<p>Tom &amp; Jerry <b>return</b></p>",
			want:  "Tom & Jerry return",
		},
		{
			name:  "collapses whitespace",
			input: "line one\n\n   line two",
			want:  "line one line two",
		},
		{
			name:  "empty input",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Summarize(tt.input); got != tt.want {
				t.Errorf("Summarize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSummarize_Truncates(t *testing.T) {
	long := strings.Repeat("あ", 500)
	got := Summarize(long)

	runes := []rune(got)
	if len(runes) != maxSummaryRunes {
		t.Errorf("truncated length = %d runes, want %d", len(runes), maxSummaryRunes)
	}
	if runes[len(runes)-1] != '…' {
		t.Errorf("truncated summary should end with ellipsis, got %q", string(runes[len(runes)-5:]))
	}
}
