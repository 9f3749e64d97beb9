package markdown

import (
	"strings"

	gm "github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/ast"
	gmparser "github.com/gomarkdown/markdown/parser"
)

// RewriteLinks replaces the destinations of links whose target rustdoc
// already resolved. known is keyed the way rustdoc keys an item's links
// table, with or without surrounding backticks. Only inline destinations
// and reference definitions outside fenced code are touched; the rest of
// the source is returned byte for byte.
func RewriteLinks(src string, known map[string]string) string {
	if len(known) == 0 {
		return src
	}

	targets := linkTargets(src, known)
	if len(targets) == 0 {
		return src
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
		if def, ok := rewriteRefDef(line, targets); ok {
			lines[i] = def
			continue
		}
		lines[i] = rewriteInline(line, targets)
	}
	return strings.Join(lines, "\n")
}

// linkTargets parses src and returns the link destinations present in it
// that known can resolve, mapped to their new URL.
func linkTargets(src string, known map[string]string) map[string]string {
	doc := gm.Parse([]byte(src), gmparser.NewWithExtensions(
		gmparser.CommonExtensions|gmparser.Autolink,
	))

	targets := make(map[string]string)
	ast.WalkFunc(doc, func(node ast.Node, entering bool) ast.WalkStatus {
		if !entering {
			return ast.GoToNext
		}
		link, ok := node.(*ast.Link)
		if !ok {
			return ast.GoToNext
		}
		dest := string(link.Destination)
		if _, done := targets[dest]; done {
			return ast.GoToNext
		}
		if url, ok := lookupDest(known, dest); ok {
			targets[dest] = url
		}
		return ast.GoToNext
	})
	return targets
}

// rewriteInline replaces "](dest)", "](<dest>)" and "](dest "title")"
// occurrences on one line.
func rewriteInline(line string, targets map[string]string) string {
	if !strings.Contains(line, "](") {
		return line
	}
	for dest, url := range targets {
		line = strings.ReplaceAll(line, "]("+dest+")", "]("+url+")")
		line = strings.ReplaceAll(line, "](<"+dest+">)", "]("+url+")")
		line = strings.ReplaceAll(line, "]("+dest+" \"", "]("+url+" \"")
	}
	return line
}

// rewriteRefDef rewrites a reference definition "[label]: dest" whose
// destination is a target. A trailing title is kept.
func rewriteRefDef(line string, targets map[string]string) (string, bool) {
	trimmed := strings.TrimLeft(line, " ")
	if !strings.HasPrefix(trimmed, "[") {
		return line, false
	}
	end := strings.Index(trimmed, "]:")
	if end < 0 {
		return line, false
	}
	indent := line[:len(line)-len(trimmed)]
	head := trimmed[:end+2]
	rest := strings.TrimLeft(trimmed[end+2:], " \t")

	dest, title, _ := strings.Cut(rest, " ")
	dest = strings.TrimSuffix(strings.TrimPrefix(dest, "<"), ">")
	url, ok := targets[dest]
	if !ok {
		return line, false
	}
	out := indent + head + " " + url
	if title != "" {
		out += " " + title
	}
	return out, true
}

// lookupDest matches a destination against rustdoc's link keys, which
// keep the backticks of code-span labels.
func lookupDest(known map[string]string, dest string) (string, bool) {
	if v, ok := known[dest]; ok {
		return v, true
	}
	v, ok := known["`"+dest+"`"]
	return v, ok
}
