package feeds

import (
	"crypto/sha256"
	"encoding/hex"
	"html"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/kijinews/kiji/internal/models"
)

// maxSummaryRunes caps the plain-text excerpt stored on a post.
const maxSummaryRunes = 220

var (
	htmlTagPattern  = regexp.MustCompile("<[^>]*>")
	imgSrcPattern   = regexp.MustCompile(`(?i)<img[^>]+src=["']([^"']+)["']`)
	imageExtPattern = regexp.MustCompile(`(?i)\.(jpe?g|png|gif|webp|avif)($|[?#])`)
)

// parseFeedItems converts gofeed items into Post models. Items with an
// empty title or link are dropped silently. An unparsable or missing
// publish date falls back to now, so ordering is never blocked by bad
// input. The source-level category is carried through; empty categories
// are classified later by the aggregator.
func parseFeedItems(source models.FeedSource, feed *gofeed.Feed, now time.Time) []models.Post {
	sourceName := strings.TrimSpace(feed.Title)
	if sourceName == "" {
		sourceName = source.Name
	}
	if sourceName == "" {
		sourceName = hostnameOf(source.URL)
	}

	var posts []models.Post
	for _, item := range feed.Items {
		title := strings.TrimSpace(item.Title)
		if title == "" || item.Link == "" {
			continue
		}

		publishedAt := now
		if item.PublishedParsed != nil {
			publishedAt = *item.PublishedParsed
		} else if item.UpdatedParsed != nil {
			publishedAt = *item.UpdatedParsed
		}

		posts = append(posts, models.Post{
			ID:          PostID(item.Link),
			Title:       title,
			URL:         item.Link,
			SourceName:  sourceName,
			PublishedAt: publishedAt,
			Image:       resolveImage(item),
			Summary:     Summarize(itemBody(item)),
			Category:    source.Category,
		})
	}

	return posts
}

// PostID returns the stable identifier for an article URL: the first 16
// hex characters of its SHA-256 digest. Same URL, same ID, every run.
func PostID(articleURL string) string {
	h := sha256.Sum256([]byte(articleURL))
	return hex.EncodeToString(h[:])[:16]
}

// resolveImage picks a representative image URL for an item. Candidates
// are considered in precedence order: media:content, media:thumbnail,
// enclosure, first <img> in the body HTML. The first absolute http(s)
// candidate wins; if none qualify the image is absent and the renderer
// substitutes a placeholder.
func resolveImage(item *gofeed.Item) string {
	var candidates []string

	if u := mediaExtensionURL(item, "content"); u != "" {
		candidates = append(candidates, u)
	}
	if u := mediaExtensionURL(item, "thumbnail"); u != "" {
		candidates = append(candidates, u)
	}
	for _, enc := range item.Enclosures {
		if enc != nil && enc.URL != "" && isImageEnclosure(enc) {
			candidates = append(candidates, enc.URL)
			break
		}
	}
	if m := imgSrcPattern.FindStringSubmatch(itemBody(item)); m != nil {
		candidates = append(candidates, m[1])
	}

	for _, u := range candidates {
		if isHTTPURL(u) {
			return u
		}
	}
	return ""
}

// isImageEnclosure reports whether an enclosure plausibly carries an
// image: an image/* MIME type, or an image-extension URL when the type
// is absent or wrong. Podcast audio and video enclosures must not end up
// as a post's hero image.
func isImageEnclosure(enc *gofeed.Enclosure) bool {
	if strings.HasPrefix(strings.ToLower(enc.Type), "image/") {
		return true
	}
	return imageExtPattern.MatchString(enc.URL)
}

// mediaExtensionURL returns the url attribute of the first media-namespace
// element with the given name (e.g. "content", "thumbnail").
func mediaExtensionURL(item *gofeed.Item, name string) string {
	media, ok := item.Extensions["media"]
	if !ok {
		return ""
	}
	for _, e := range media[name] {
		if u := e.Attrs["url"]; u != "" {
			return u
		}
	}
	return ""
}

// itemBody returns the richest HTML body available for an item: full
// content when present, else the description.
func itemBody(item *gofeed.Item) string {
	if item.Content != "" {
		return item.Content
	}
	return item.Description
}

// Summarize strips HTML from s, collapses whitespace, and truncates the
// result to the summary budget, appending an ellipsis when cut.
func Summarize(s string) string {
	clean := stripHTML(s)
	clean = strings.Join(strings.Fields(clean), " ")

	runes := []rune(clean)
	if len(runes) <= maxSummaryRunes {
		return clean
	}
	return string(runes[:maxSummaryRunes-1]) + "…"
}

// stripHTML removes HTML tags from s and unescapes HTML entities.
func stripHTML(s string) string {
	clean := htmlTagPattern.ReplaceAllString(s, "")
	return html.UnescapeString(clean)
}

func isHTTPURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func hostnameOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return rawURL
	}
	return u.Hostname()
}
