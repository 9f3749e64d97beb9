package render

import (
	"regexp"
	"slices"
	"strings"

	"github.com/jcdickinson/ferrisdoc/internal/markdown"
	"github.com/jcdickinson/ferrisdoc/internal/rustdoc"
)

// filePrefix maps a page kind to its file name prefix.
func filePrefix(kind rustdoc.Kind) (string, bool) {
	switch kind {
	case rustdoc.KindModule:
		return "", true
	case rustdoc.KindStruct:
		return "struct.", true
	case rustdoc.KindUnion:
		return "union.", true
	case rustdoc.KindEnum:
		return "enum.", true
	case rustdoc.KindTrait:
		return "trait.", true
	case rustdoc.KindFunction:
		return "fn.", true
	case rustdoc.KindTypeAlias:
		return "type.", true
	case rustdoc.KindConstant:
		return "constant.", true
	case rustdoc.KindStatic:
		return "static.", true
	case rustdoc.KindMacro:
		return "macro.", true
	default:
		return "", false
	}
}

// ItemURL builds the URL of an item's page from its canonical path, as
// seen from a page depth directories below the output root. Modules map
// to <path>/index.html, other items to <parent dirs>/<prefix><name>.html.
// It reports false for kinds that have no page.
func ItemURL(path []string, kind rustdoc.Kind, depth int) (string, bool) {
	prefix, ok := filePrefix(kind)
	if !ok || len(path) == 0 {
		return "", false
	}

	var b strings.Builder
	b.WriteString(PathToRoot(depth))
	if kind == rustdoc.KindModule {
		b.WriteString(strings.Join(path, "/"))
		b.WriteString("/index.html")
		return b.String(), true
	}
	for _, dir := range path[:len(path)-1] {
		b.WriteString(dir)
		b.WriteString("/")
	}
	b.WriteString(prefix)
	b.WriteString(path[len(path)-1])
	b.WriteString(".html")
	return b.String(), true
}

// ResolveItemURL returns the relative URL of a local item's page, or of
// the anchor documenting it on its parent's page. It reports false for
// foreign items and for local items that have no page in this render.
func (c *Context) ResolveItemURL(id rustdoc.ID, depth int) (string, bool) {
	if entry, ok := c.Paths.Lookup(id); ok {
		if entry.Foreign {
			return "", false
		}
		if entry.Kind == rustdoc.KindVariant {
			return c.variantURL(entry, depth)
		}
		if file, ok := ItemURL(entry.Path, entry.Kind, 0); ok && c.pageFiles[file] {
			return PathToRoot(depth) + file, true
		}
	}
	if ref, ok := c.anchors[id]; ok && ref.owner != id {
		if base, ok := c.ResolveItemURL(ref.owner, depth); ok {
			base, _, _ = strings.Cut(base, "#")
			return base + "#" + ref.anchor, true
		}
	}
	return "", false
}

// variantURL links a variant to its enum's page.
func (c *Context) variantURL(entry rustdoc.PathEntry, depth int) (string, bool) {
	if len(entry.Path) < 2 {
		return "", false
	}
	file, ok := ItemURL(entry.Path[:len(entry.Path)-1], rustdoc.KindEnum, 0)
	if !ok || (!entry.Foreign && !c.pageFiles[file]) {
		return "", false
	}
	return PathToRoot(depth) + file + "#variant." + entry.Name(), true
}

// stdCrates are documented on doc.rust-lang.org rather than docs.rs.
var stdCrates = map[string]bool{
	"std": true, "core": true, "alloc": true, "proc_macro": true, "test": true,
}

// docsRsCrateNameRe extracts the package name from a docs.rs html_root_url,
// e.g. "https://docs.rs/tracing-core/0.1.36/" gives "tracing-core".
var docsRsCrateNameRe = regexp.MustCompile(`^https?://docs\.rs/([^/]+)/`)

// ExternalCrateName returns the package name of a dependency, preferring
// the one in its docs.rs html_root_url over the lib name.
func (c *Context) ExternalCrateName(crateID uint32) string {
	ext, ok := c.Crate.ExternalCrates[crateID]
	if !ok {
		return ""
	}
	if m := docsRsCrateNameRe.FindStringSubmatch(ext.HTMLRootURL); len(m) == 2 {
		return m[1]
	}
	return ext.Name
}

// externalRoot returns the base URL under which a foreign crate's pages
// live, ending in "/".
func (c *Context) externalRoot(crateID uint32) string {
	ext, ok := c.Crate.ExternalCrates[crateID]
	if ok && ext.HTMLRootURL != "" {
		root := ext.HTMLRootURL
		if !strings.HasSuffix(root, "/") {
			root += "/"
		}
		return root
	}
	name := c.ExternalCrateName(crateID)
	if name == "" {
		return ""
	}
	if stdCrates[name] {
		return "https://doc.rust-lang.org/stable/"
	}
	return strings.TrimSuffix(c.Config.ExternalBaseURL, "/") + "/" + name + "/latest/"
}

// ExternalURL returns the absolute URL of a foreign item's documentation.
func (c *Context) ExternalURL(id rustdoc.ID) (string, bool) {
	entry, ok := c.Paths.Lookup(id)
	if !ok || !entry.Foreign {
		return "", false
	}
	root := c.externalRoot(entry.CrateID)
	if root == "" {
		return "", false
	}
	if entry.Kind == rustdoc.KindVariant && len(entry.Path) >= 2 {
		file, ok := ItemURL(entry.Path[:len(entry.Path)-1], rustdoc.KindEnum, 0)
		if !ok {
			return "", false
		}
		return root + file + "#variant." + entry.Name(), true
	}
	file, ok := ItemURL(entry.Path, entry.Kind, 0)
	if !ok {
		return "", false
	}
	return root + file, true
}

// LinkFor returns the URL to use when linking to id from a page at depth:
// a relative URL for local items, an absolute one for foreign items, or ""
// when the reference should render as plain text.
func (c *Context) LinkFor(id rustdoc.ID, depth int) string {
	if url, ok := c.ResolveItemURL(id, depth); ok {
		return url
	}
	if url, ok := c.ExternalURL(id); ok {
		return url
	}
	return ""
}

// docLinks builds intra-doc link resolution for an item's docs rendered on
// a page at depth inside module modPath.
func (c *Context) docLinks(item *rustdoc.Item, depth int, modPath []string) markdown.Links {
	known := make(map[string]string, len(item.Links))
	for text, id := range item.Links {
		if url := c.LinkFor(id, depth); url != "" {
			known[text] = url
		}
	}
	return markdown.Links{
		Known: known,
		Resolve: func(path string, want rustdoc.Kind) (string, bool) {
			return c.ResolvePath(path, want, depth, modPath)
		},
	}
}

// ResolvePath resolves a Rust path written in docs, relative to module
// modPath, to a URL from a page at depth. want restricts the kind unless
// it is KindOther.
func (c *Context) ResolvePath(path string, want rustdoc.Kind, depth int, modPath []string) (string, bool) {
	id, ok := c.resolveID(path, want, modPath)
	if !ok {
		return "", false
	}
	return c.LinkFor(id, depth), true
}

// resolveID finds the item a doc path refers to. Only items that can be
// linked to are considered.
func (c *Context) resolveID(path string, want rustdoc.Kind, modPath []string) (rustdoc.ID, bool) {
	for _, candidate := range c.candidates(path, modPath) {
		if id, ok := c.lookupPath(candidate, want); ok {
			return id, true
		}
	}

	// Type::member
	if parent, member, ok := cutLast(path); ok {
		for _, candidate := range c.candidates(parent, modPath) {
			if id, ok := c.lookupMember(candidate, member); ok {
				return id, true
			}
		}
	}

	if !strings.Contains(path, "::") {
		for _, id := range c.byName[path] {
			if kindMatches(c.Paths[id].Kind, want) && c.LinkFor(id, 0) != "" {
				return id, true
			}
		}
	}
	return 0, false
}

// Resolution describes where an item path is documented.
type Resolution struct {
	ID       rustdoc.ID `json:"id"`
	Path     string     `json:"path"`
	Kind     string     `json:"kind"`
	URL      string     `json:"url"`
	External bool       `json:"external"`
}

// Resolve looks up a path such as "demo::shapes::Circle", "Point::new" or
// "struct@Point" from the crate root. URLs are relative to the output root.
func (c *Context) Resolve(path string) (Resolution, bool) {
	want, p := markdown.StripDisambiguator(path)
	id, ok := c.resolveID(p, want, []string{c.CrateName()})
	if !ok {
		return Resolution{}, false
	}
	res := Resolution{ID: id, URL: c.LinkFor(id, 0)}
	if e, ok := c.Paths.Lookup(id); ok {
		res.Path = e.Joined()
		res.Kind = e.Kind.String()
		res.External = e.Foreign
	} else if item, ok := c.Crate.Index[id]; ok {
		res.Path = p
		res.Kind = item.Kind().String()
	}
	return res, true
}

func cutLast(path string) (string, string, bool) {
	i := strings.LastIndex(path, "::")
	if i <= 0 {
		return "", "", false
	}
	return path[:i], path[i+2:], true
}

// candidates lists the fully qualified paths a doc path may refer to, in
// lookup order.
func (c *Context) candidates(path string, modPath []string) []string {
	crate := c.CrateName()
	mod := strings.Join(modPath, "::")

	switch {
	case strings.HasPrefix(path, "crate::"):
		return []string{crate + "::" + strings.TrimPrefix(path, "crate::")}
	case strings.HasPrefix(path, "::"):
		return []string{strings.TrimPrefix(path, "::"), crate + path}
	case strings.HasPrefix(path, "self::"):
		return []string{mod + "::" + strings.TrimPrefix(path, "self::")}
	case strings.HasPrefix(path, "super::"):
		rest := path
		parent := slices.Clone(modPath)
		for strings.HasPrefix(rest, "super::") && len(parent) > 1 {
			rest = strings.TrimPrefix(rest, "super::")
			parent = parent[:len(parent)-1]
		}
		return []string{strings.Join(parent, "::") + "::" + rest}
	}

	var out []string
	if mod != "" {
		out = append(out, mod+"::"+path)
	}
	out = append(out, crate+"::"+path, path)
	if rest, ok := strings.CutPrefix(path, "std::"); ok {
		out = append(out, "core::"+rest, "alloc::"+rest)
	}
	return out
}

func (c *Context) lookupPath(path string, want rustdoc.Kind) (rustdoc.ID, bool) {
	for _, id := range c.byPath[path] {
		if kindMatches(c.Paths[id].Kind, want) && c.LinkFor(id, 0) != "" {
			return id, true
		}
	}
	return 0, false
}

// lookupMember resolves Type::member to a variant, field, or associated
// item documented on the type's page.
func (c *Context) lookupMember(typePath, member string) (rustdoc.ID, bool) {
	for _, owner := range c.byPath[typePath] {
		var found []rustdoc.ID
		for id, ref := range c.anchors {
			if ref.owner != owner {
				continue
			}
			if item, ok := c.Crate.Index[id]; ok && item.DisplayName() == member {
				found = append(found, id)
			}
		}
		slices.Sort(found)
		for _, id := range found {
			if _, ok := c.ResolveItemURL(id, 0); ok {
				return id, true
			}
		}
	}
	return 0, false
}

func kindMatches(have, want rustdoc.Kind) bool {
	if want == rustdoc.KindOther {
		return true
	}
	if want == rustdoc.KindStruct && have == rustdoc.KindUnion {
		return false
	}
	return have == want
}
