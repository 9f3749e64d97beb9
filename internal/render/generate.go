package render

import (
	"context"
	"strings"

	"github.com/jcdickinson/ferrisdoc/internal/config"
	"github.com/jcdickinson/ferrisdoc/internal/markdown"
	"github.com/jcdickinson/ferrisdoc/internal/output"
	"github.com/jcdickinson/ferrisdoc/internal/rustdoc"
)

// Generate renders crate into cfg.OutputDir. Indexing and template errors
// are returned before the output directory is touched; per-file failures
// after that are recorded in the summary.
func Generate(ctx context.Context, crate *rustdoc.Crate, cfg *config.Config) (*Summary, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	c, err := NewContext(crate, cfg)
	if err != nil {
		return nil, err
	}

	w, err := output.New(cfg.OutputDir)
	if err != nil {
		return nil, err
	}

	summary, err := c.RenderPages(ctx, w)
	if err != nil {
		return summary, err
	}

	css, err := c.highlighter.CSS()
	if err == nil {
		err = w.WriteAssets(css)
	}
	if err != nil {
		summary.Failures = append(summary.Failures, PageFailure{File: output.SyntaxFile, Err: err})
	}
	if err := w.WriteSearchIndex(c.SearchEntries()); err != nil {
		summary.Failures = append(summary.Failures, PageFailure{File: output.SearchIndexFile, Err: err})
	}
	return summary, nil
}

// SearchEntries lists every page for the search index.
func (c *Context) SearchEntries() []output.SearchEntry {
	entries := make([]output.SearchEntry, 0, len(c.pages))
	for _, p := range c.pages {
		entries = append(entries, output.SearchEntry{
			Name:    p.Path[len(p.Path)-1],
			Path:    strings.Join(p.Path, "::"),
			Kind:    p.Kind.String(),
			URL:     p.File,
			Summary: strings.Join(strings.Fields(markdown.FirstParagraph(p.Item.DocString())), " "),
		})
	}
	return entries
}
