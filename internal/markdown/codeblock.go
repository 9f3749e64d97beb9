package markdown

import (
	"strings"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"
)

// Highlighter renders code for a code block.
type Highlighter interface {
	Highlight(code, lang string) string
	Language(info string) string
}

// codeBlockRenderer renders fenced and indented code blocks through a
// Highlighter, replacing goldmark's default code block output.
type codeBlockRenderer struct {
	hl Highlighter
}

func (r *codeBlockRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindFencedCodeBlock, r.renderFencedCodeBlock)
	reg.Register(ast.KindCodeBlock, r.renderCodeBlock)
}

func (r *codeBlockRenderer) renderFencedCodeBlock(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*ast.FencedCodeBlock)
	var info string
	if n.Info != nil {
		info = string(n.Info.Segment.Value(source))
	}
	r.write(w, blockText(n, source), r.hl.Language(info))
	return ast.WalkSkipChildren, nil
}

func (r *codeBlockRenderer) renderCodeBlock(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	r.write(w, blockText(node, source), r.hl.Language(""))
	return ast.WalkSkipChildren, nil
}

func (r *codeBlockRenderer) write(w util.BufWriter, code, lang string) {
	if lang == "rust" {
		code = stripHiddenLines(code)
	}
	_, _ = w.WriteString(`<pre class="highlight"><code class="language-`)
	_, _ = w.Write(util.EscapeHTML([]byte(lang)))
	_, _ = w.WriteString(`">`)
	_, _ = w.WriteString(r.hl.Highlight(code, lang))
	_, _ = w.WriteString("</code></pre>\n")
}

func blockText(n ast.Node, source []byte) string {
	var b strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(source))
	}
	return b.String()
}

// stripHiddenLines drops doctest setup lines ("# use foo;") and unescapes
// "##" to a literal "#".
func stripHiddenLines(code string) string {
	lines := strings.SplitAfter(code, "\n")
	var b strings.Builder
	for _, line := range lines {
		trimmed := strings.TrimLeft(line, " \t")
		body := strings.TrimRight(trimmed, "\r\n")
		switch {
		case body == "#" || strings.HasPrefix(body, "# "):
			continue
		case strings.HasPrefix(trimmed, "##"):
			indent := line[:len(line)-len(trimmed)]
			b.WriteString(indent + trimmed[1:])
		default:
			b.WriteString(line)
		}
	}
	return b.String()
}
