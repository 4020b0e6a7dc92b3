// Package render writes the static site: one self-contained HTML page per
// post, an index page, and the posts.json manifest.
package render

import (
	"fmt"
	"html/template"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/kijinews/kiji/internal/models"
)

// Renderer writes post pages and the index into the output directory.
// All interpolated text goes through html/template contextual escaping;
// feed titles and summaries are untrusted input.
type Renderer struct {
	outDir    string
	pagesDir  string
	indexHref string
	postTmpl  *template.Template
	idxTmpl   *template.Template
}

// New creates a Renderer for the given output directory. pagesDir is the
// subdirectory (relative to outDir) that receives per-post pages and must
// match the PagePath values recorded on the posts.
func New(outDir, pagesDir string) (*Renderer, error) {
	postTmpl, err := template.New("post").Parse(postPageTemplate)
	if err != nil {
		return nil, fmt.Errorf("parsing post template: %w", err)
	}
	idxTmpl, err := template.New("index").Parse(indexPageTemplate)
	if err != nil {
		return nil, fmt.Errorf("parsing index template: %w", err)
	}
	return &Renderer{
		outDir:    outDir,
		pagesDir:  pagesDir,
		indexHref: indexHref(pagesDir),
		postTmpl:  postTmpl,
		idxTmpl:   idxTmpl,
	}, nil
}

// indexHref returns the relative link from a page under pagesDir back to
// the site index, one "../" per path level.
func indexHref(pagesDir string) string {
	clean := path.Clean(filepath.ToSlash(pagesDir))
	if clean == "." || clean == "/" {
		return "index.html"
	}
	depth := strings.Count(clean, "/") + 1
	return strings.Repeat("../", depth) + "index.html"
}

// postPage is the template context for one post page.
type postPage struct {
	models.Post
	Published string
	IndexHref string
}

// indexPage is the template context for the index page.
type indexPage struct {
	UpdatedAt string
	Posts     []postPage
}

// WriteSite renders one page per post plus the index page. Pages are
// regenerated unconditionally; a failed page write aborts the run since
// the output directory itself is broken at that point.
func (r *Renderer) WriteSite(m models.Manifest) error {
	pagesPath := filepath.Join(r.outDir, r.pagesDir)
	if err := os.MkdirAll(pagesPath, 0o755); err != nil {
		return fmt.Errorf("creating pages directory: %w", err)
	}

	for _, p := range m.Posts {
		if err := r.writePage(p); err != nil {
			return fmt.Errorf("rendering page for %q: %w", p.URL, err)
		}
	}

	if err := r.writeIndex(m); err != nil {
		return fmt.Errorf("rendering index: %w", err)
	}

	slog.Info("site rendered", "dir", r.outDir, "pages", len(m.Posts))
	return nil
}

func (r *Renderer) writePage(p models.Post) error {
	var sb strings.Builder
	ctx := postPage{
		Post:      p,
		Published: p.PublishedAt.Format("2006-01-02 15:04"),
		IndexHref: r.indexHref,
	}
	if err := r.postTmpl.Execute(&sb, ctx); err != nil {
		return fmt.Errorf("executing post template: %w", err)
	}

	dest := filepath.Join(r.outDir, filepath.FromSlash(p.PagePath))
	if err := os.WriteFile(dest, []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("writing page file: %w", err)
	}
	return nil
}

func (r *Renderer) writeIndex(m models.Manifest) error {
	ctx := indexPage{UpdatedAt: m.UpdatedAt.Format("2006-01-02 15:04")}
	for _, p := range m.Posts {
		ctx.Posts = append(ctx.Posts, postPage{
			Post:      p,
			Published: p.PublishedAt.Format("2006-01-02 15:04"),
		})
	}

	var sb strings.Builder
	if err := r.idxTmpl.Execute(&sb, ctx); err != nil {
		return fmt.Errorf("executing index template: %w", err)
	}

	dest := filepath.Join(r.outDir, "index.html")
	if err := os.WriteFile(dest, []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("writing index file: %w", err)
	}
	return nil
}

// CleanStalePages removes page files whose post fell out of the manifest.
// Eviction from the manifest never requires deletion; this is optional
// housekeeping and failures are logged, not fatal.
func (r *Renderer) CleanStalePages(m models.Manifest) {
	keep := make(map[string]bool, len(m.Posts))
	for _, p := range m.Posts {
		keep[p.ID+".html"] = true
	}

	pagesPath := filepath.Join(r.outDir, r.pagesDir)
	entries, err := os.ReadDir(pagesPath)
	if err != nil {
		slog.Warn("stale page cleanup skipped", "error", err)
		return
	}

	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".html") || keep[e.Name()] {
			continue
		}
		if err := os.Remove(filepath.Join(pagesPath, e.Name())); err != nil {
			slog.Warn("failed to remove stale page", "file", e.Name(), "error", err)
			continue
		}
		slog.Debug("removed stale page", "file", e.Name())
	}
}
