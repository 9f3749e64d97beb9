// Package markdown renders rustdoc doc comments to HTML.
package markdown

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

// ErrConversion indicates markdown conversion failed.
var ErrConversion = errors.New("markdown conversion failed")

// Renderer converts doc comments to HTML. It is safe for concurrent use.
type Renderer struct {
	md goldmark.Markdown
}

func New(hl Highlighter) *Renderer {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Footnote,
		),
		goldmark.WithParserOptions(
			parser.WithASTTransformers(util.Prioritized(linkTransformer{}, 100)),
		),
		goldmark.WithRendererOptions(
			html.WithUnsafe(), // doc comments may embed raw HTML
			renderer.WithNodeRenderers(util.Prioritized(&codeBlockRenderer{hl: hl}, 100)),
		),
	)
	return &Renderer{md: md}
}

// Render converts a doc string to HTML, resolving intra-doc links with links.
func (r *Renderer) Render(src string, links Links) (string, error) {
	if strings.TrimSpace(src) == "" {
		return "", nil
	}

	src = PreprocessShortcutLinks(src, links.Known)
	src = RewriteLinks(src, links.Known)

	pctx := parser.NewContext()
	pctx.Set(linksKey, &links)

	var buf bytes.Buffer
	if err := r.md.Convert([]byte(src), &buf, parser.WithContext(pctx)); err != nil {
		return "", fmt.Errorf("%w: %v", ErrConversion, err)
	}
	return buf.String(), nil
}

// FirstParagraph returns the first paragraph of a doc string, used as the
// short description in listings.
func FirstParagraph(src string) string {
	var para []string
	for _, line := range strings.Split(src, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			if len(para) > 0 {
				break
			}
			continue
		}
		if len(para) == 0 && (strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~")) {
			break
		}
		if strings.HasPrefix(trimmed, "#") {
			if len(para) > 0 {
				break
			}
			continue
		}
		para = append(para, line)
	}
	return strings.Join(para, "\n")
}
