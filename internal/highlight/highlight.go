// Package highlight turns source code into HTML spans for code blocks.
package highlight

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

const (
	DefaultStyle    = "github"
	DefaultLanguage = "rust"
)

var escaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
)

// Escape escapes text for inclusion in HTML element content.
func Escape(s string) string {
	return escaper.Replace(s)
}

// Highlighter renders code as class-annotated HTML. It holds no mutable
// state after construction and is safe for concurrent use.
type Highlighter struct {
	style   *chroma.Style
	primary string
}

// Option configures a Highlighter.
type Option func(*Highlighter)

// WithStyle selects the chroma style used by CSS. Unknown names fall back
// to chroma's default style.
func WithStyle(name string) Option {
	return func(h *Highlighter) {
		if name != "" {
			h.style = styles.Get(name)
		}
	}
}

// WithPrimaryLanguage sets the language used for unlabeled code blocks.
func WithPrimaryLanguage(lang string) Option {
	return func(h *Highlighter) {
		if lang != "" {
			h.primary = lang
		}
	}
}

func New(opts ...Option) *Highlighter {
	h := &Highlighter{
		style:   styles.Get(DefaultStyle),
		primary: DefaultLanguage,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Highlight returns code as HTML. It never fails: unknown languages and
// tokenizer errors produce escaped plain text.
func (h *Highlighter) Highlight(code, lang string) (out string) {
	lang = h.Language(lang)
	if isPlainText(lang) {
		return Escape(code)
	}

	lexer := lexers.Get(lang)
	if lexer == nil {
		return Escape(code)
	}

	defer func() {
		if r := recover(); r != nil {
			slog.Warn("highlighter panicked, falling back to plain text", "lang", lang, "panic", r)
			out = Escape(code)
		}
	}()

	html, err := h.format(chroma.Coalesce(lexer), code)
	if err != nil {
		slog.Debug("highlighting failed, falling back to plain text", "lang", lang, "error", err)
		return Escape(code)
	}
	return html
}

func (h *Highlighter) format(lexer chroma.Lexer, code string) (string, error) {
	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return "", fmt.Errorf("tokenising: %w", err)
	}
	formatter := chromahtml.New(
		chromahtml.WithClasses(true),
		chromahtml.PreventSurroundingPre(true),
	)
	var b strings.Builder
	if err := formatter.Format(&b, h.style, iterator); err != nil {
		return "", fmt.Errorf("formatting: %w", err)
	}
	return b.String(), nil
}

// CSS returns the stylesheet for the configured style's token classes.
func (h *Highlighter) CSS() (string, error) {
	formatter := chromahtml.New(chromahtml.WithClasses(true))
	var b strings.Builder
	if err := formatter.WriteCSS(&b, h.style); err != nil {
		return "", fmt.Errorf("writing syntax CSS: %w", err)
	}
	return b.String(), nil
}

// Language normalizes a code fence info string to a language name. Rustdoc
// attributes such as "ignore" or "edition2021" imply the primary language.
func (h *Highlighter) Language(info string) string {
	var lang string
	for _, tok := range strings.FieldsFunc(info, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	}) {
		tok = strings.ToLower(strings.TrimSpace(tok))
		if tok == "" || isRustdocAttribute(tok) {
			continue
		}
		lang = tok
		break
	}
	if lang == "" {
		return h.primary
	}
	return lang
}

func isPlainText(lang string) bool {
	switch lang {
	case "text", "plain", "plaintext", "txt":
		return true
	}
	return false
}

func isRustdocAttribute(tok string) bool {
	switch tok {
	case "ignore", "no_run", "should_panic", "compile_fail", "test_harness", "standalone_crate":
		return true
	}
	return strings.HasPrefix(tok, "edition") || strings.HasPrefix(tok, "ignore-")
}
