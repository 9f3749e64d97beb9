package markdown

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/jcdickinson/ferrisdoc/internal/rustdoc"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// Links carries per-page link resolution for one doc string.
type Links struct {
	// Known maps link destinations rustdoc already resolved to URLs.
	Known map[string]string
	// Resolve resolves any other Rust path. want is KindOther when the
	// link carries no disambiguator.
	Resolve func(path string, want rustdoc.Kind) (string, bool)
}

var linksKey = parser.NewContextKey()

var disambiguators = []struct {
	prefix string
	kind   rustdoc.Kind
}{
	{"struct@", rustdoc.KindStruct},
	{"enum@", rustdoc.KindEnum},
	{"trait@", rustdoc.KindTrait},
	{"union@", rustdoc.KindUnion},
	{"mod@", rustdoc.KindModule},
	{"module@", rustdoc.KindModule},
	{"fn@", rustdoc.KindFunction},
	{"function@", rustdoc.KindFunction},
	{"method@", rustdoc.KindFunction},
	{"const@", rustdoc.KindConstant},
	{"constant@", rustdoc.KindConstant},
	{"static@", rustdoc.KindStatic},
	{"type@", rustdoc.KindTypeAlias},
	{"macro@", rustdoc.KindMacro},
}

// StripDisambiguator removes a rustdoc kind prefix ("struct@") or suffix
// ("()" for functions, "!" for macros). want is KindOther when none is present.
func StripDisambiguator(s string) (want rustdoc.Kind, path string) {
	for _, d := range disambiguators {
		if rest, ok := strings.CutPrefix(s, d.prefix); ok {
			return d.kind, rest
		}
	}
	if rest, ok := strings.CutSuffix(s, "()"); ok {
		return rustdoc.KindFunction, rest
	}
	if rest, ok := strings.CutSuffix(s, "!"); ok {
		return rustdoc.KindMacro, rest
	}
	return rustdoc.KindOther, s
}

// IsRustPath reports whether a link destination looks like a Rust item
// path rather than a URL.
func IsRustPath(s string) bool {
	if strings.ContainsAny(s, "/#") || strings.TrimSpace(s) == "" {
		return false
	}
	switch s {
	case "self", "true", "false", "None", "Some":
		return false
	}
	_, path := StripDisambiguator(s)
	if path == "" {
		return false
	}
	first := path[0]
	if !isIdentStart(first) && first != ':' {
		return false
	}
	for i := 0; i < len(path); i++ {
		c := path[i]
		if !isIdentStart(c) && !(c >= '0' && c <= '9') && c != ':' {
			return false
		}
	}
	return true
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

var (
	refDefRe   = regexp.MustCompile("(?m)^\\s*\\[`?([^\\]`]+)`?\\]:\\s*")
	shortcutRe = regexp.MustCompile("\\[`((?:[a-z]+@)?[A-Za-z_][A-Za-z0-9_]*(?:::[A-Za-z_][A-Za-z0-9_]*)*(?:\\(\\)|!)?)`\\]")
	plainRe    = regexp.MustCompile(`\[([^\]\[\n` + "`" + `]+)\]`)
)

// PreprocessShortcutLinks turns rustdoc shortcut links such as [`Foo`]
// into explicit links [`Foo`](Foo). Labels that already have a reference
// definition, are followed by a destination, or sit inside a fenced code
// block are left alone. Plain [Foo] shortcuts are expanded only when
// known lists them.
func PreprocessShortcutLinks(src string, known map[string]string) string {
	defined := make(map[string]bool)
	for _, m := range refDefRe.FindAllStringSubmatch(src, -1) {
		defined[m[1]] = true
	}

	lines := strings.Split(src, "\n")
	var fence string
	for i, line := range lines {
		trimmed := strings.TrimLeft(line, " ")
		if fence != "" {
			if strings.HasPrefix(trimmed, fence) {
				fence = ""
			}
			continue
		}
		if f := fenceMarker(trimmed); f != "" {
			fence = f
			continue
		}
		line = expand(line, shortcutRe, func(label string) (string, bool) {
			if defined[label] {
				return "", false
			}
			return "[`" + label + "`](" + label + ")", true
		})
		if len(known) > 0 {
			line = expand(line, plainRe, func(label string) (string, bool) {
				if defined[label] {
					return "", false
				}
				if _, ok := known[label]; !ok {
					return "", false
				}
				return "[" + label + "](" + label + ")", true
			})
		}
		lines[i] = line
	}
	return strings.Join(lines, "\n")
}

func fenceMarker(trimmed string) string {
	for _, f := range []string{"```", "~~~"} {
		if strings.HasPrefix(trimmed, f) {
			return f
		}
	}
	return ""
}

// expand rewrites each regex match whose next character does not make it
// part of a longer link construct.
func expand(line string, re *regexp.Regexp, replace func(label string) (string, bool)) string {
	matches := re.FindAllStringSubmatchIndex(line, -1)
	if len(matches) == 0 {
		return line
	}
	var b strings.Builder
	last := 0
	for _, m := range matches {
		start, end := m[0], m[1]
		label := line[m[2]:m[3]]
		b.WriteString(line[last:start])
		last = end

		if end < len(line) && strings.ContainsRune("([:", rune(line[end])) {
			b.WriteString(line[start:end])
			continue
		}
		if start > 0 && line[start-1] == ']' {
			// second half of a [text][ref] pair
			b.WriteString(line[start:end])
			continue
		}
		if repl, ok := replace(label); ok {
			b.WriteString(repl)
		} else {
			b.WriteString(line[start:end])
		}
	}
	b.WriteString(line[last:])
	return b.String()
}

// linkTransformer resolves Rust-path link destinations left after known
// links were rewritten, and unlinks the ones that cannot be resolved.
type linkTransformer struct{}

func (linkTransformer) Transform(doc *ast.Document, reader text.Reader, pc parser.Context) {
	links, _ := pc.Get(linksKey).(*Links)

	var pending []*ast.Link
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if link, ok := n.(*ast.Link); ok && entering {
			if IsRustPath(string(link.Destination)) {
				pending = append(pending, link)
			}
		}
		return ast.WalkContinue, nil
	})

	for _, link := range pending {
		dest := string(link.Destination)
		if links != nil && links.Resolve != nil {
			want, path := StripDisambiguator(dest)
			if url, ok := links.Resolve(path, want); ok {
				link.Destination = []byte(url)
				continue
			}
		}
		slog.Warn("unresolved intra-doc link", "dest", dest)
		unlink(link)
	}
}

// unlink replaces a link node with its children.
func unlink(link *ast.Link) {
	parent := link.Parent()
	if parent == nil {
		return
	}
	for c := link.FirstChild(); c != nil; {
		next := c.NextSibling()
		link.RemoveChild(link, c)
		parent.InsertBefore(parent, link, c)
		c = next
	}
	parent.RemoveChild(parent, link)
}
