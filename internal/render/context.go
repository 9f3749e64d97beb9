// Package render turns a loaded crate into HTML pages.
package render

import (
	"log/slog"
	"slices"
	"strings"

	"github.com/jcdickinson/ferrisdoc/internal/config"
	"github.com/jcdickinson/ferrisdoc/internal/highlight"
	"github.com/jcdickinson/ferrisdoc/internal/markdown"
	"github.com/jcdickinson/ferrisdoc/internal/rustdoc"
)

// Context holds everything page renderers need. It is built once and only
// read afterwards, so pages can be rendered concurrently.
type Context struct {
	Crate  *rustdoc.Crate
	Config *config.Config
	Paths  rustdoc.PathIndex
	Impls  rustdoc.ImplIndex
	Tree   *rustdoc.ModuleTree

	templates   *templateSet
	highlighter *highlight.Highlighter
	markdown    *markdown.Renderer

	pages     []Page
	pageFiles map[string]bool
	byPath    map[string][]rustdoc.ID
	byName    map[string][]rustdoc.ID
	anchors   map[rustdoc.ID]anchorRef
}

// anchorRef locates an item that is documented on another item's page.
type anchorRef struct {
	owner  rustdoc.ID
	anchor string
}

// NewContext indexes the crate and prepares templates. It fails when the
// module tree cannot be built or the templates cannot be parsed.
func NewContext(crate *rustdoc.Crate, cfg *config.Config) (*Context, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	paths := rustdoc.BuildPathIndex(crate)
	tree, err := rustdoc.BuildModuleTree(crate, paths, rustdoc.TreeOptions{
		IncludePrivate: cfg.IncludePrivate,
	})
	if err != nil {
		return nil, err
	}
	templates, err := loadTemplates()
	if err != nil {
		return nil, err
	}

	hl := highlight.New(
		highlight.WithStyle(cfg.Highlight.Style),
		highlight.WithPrimaryLanguage(cfg.Highlight.PrimaryLanguage),
	)

	c := &Context{
		Crate:       crate,
		Config:      cfg,
		Paths:       paths,
		Impls:       rustdoc.BuildImplIndex(crate, paths, cfg.IncludeForeignImpls),
		Tree:        tree,
		templates:   templates,
		highlighter: hl,
		markdown:    markdown.New(hl),
	}
	c.indexPaths()
	c.indexAnchors()
	c.collectPages()
	return c, nil
}

// CrateName returns the documented crate's name.
func (c *Context) CrateName() string {
	return c.Tree.Name
}

// CrateVersion returns the configured version, falling back to the one
// recorded by rustdoc.
func (c *Context) CrateVersion() string {
	if c.Config.CrateVersion != "" {
		return c.Config.CrateVersion
	}
	return c.Crate.Version()
}

// Highlighter returns the highlighter used for code blocks.
func (c *Context) Highlighter() *highlight.Highlighter {
	return c.highlighter
}

// Pages returns every page the crate produces, in tree order.
func (c *Context) Pages() []Page {
	return c.pages
}

func (c *Context) indexPaths() {
	c.byPath = make(map[string][]rustdoc.ID, len(c.Paths))
	c.byName = make(map[string][]rustdoc.ID)
	for id, e := range c.Paths {
		c.byPath[e.Joined()] = append(c.byPath[e.Joined()], id)
		c.byName[e.Name()] = append(c.byName[e.Name()], id)
	}
	order := func(a, b rustdoc.ID) int {
		ea, eb := c.Paths[a], c.Paths[b]
		if ea.Foreign != eb.Foreign {
			if !ea.Foreign {
				return -1
			}
			return 1
		}
		return int(a) - int(b)
	}
	for _, ids := range c.byPath {
		slices.SortFunc(ids, order)
	}
	for _, ids := range c.byName {
		slices.SortFunc(ids, order)
	}
}

// indexAnchors records which page and anchor documents each variant,
// field, and associated item.
func (c *Context) indexAnchors() {
	c.anchors = make(map[rustdoc.ID]anchorRef)

	ids := make([]rustdoc.ID, 0, len(c.Crate.Index))
	for id := range c.Crate.Index {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	add := func(owner, id rustdoc.ID) {
		if _, ok := c.anchors[id]; ok {
			return
		}
		item, ok := c.Crate.Index[id]
		if !ok {
			return
		}
		if a := anchorFor(item); a != "" {
			c.anchors[id] = anchorRef{owner: owner, anchor: a}
		}
	}

	for _, id := range ids {
		item := c.Crate.Index[id]
		in := item.Inner
		switch {
		case in.Enum != nil:
			for _, v := range in.Enum.Variants {
				add(id, v)
			}
		case in.Struct != nil && in.Struct.Kind.Plain != nil:
			for _, f := range in.Struct.Kind.Plain.Fields {
				add(id, f)
			}
		case in.Union != nil:
			for _, f := range in.Union.Fields {
				add(id, f)
			}
		case in.Trait != nil:
			for _, ai := range in.Trait.Items {
				add(id, ai)
			}
		case in.Impl != nil:
			target, ok := rustdoc.ResolvedPathID(in.Impl.For)
			if !ok {
				continue
			}
			for _, ai := range in.Impl.Items {
				add(target, ai)
			}
		}
	}
}

// anchorFor returns the in-page anchor for items documented on their
// parent's page.
func anchorFor(item *rustdoc.Item) string {
	name := item.DisplayName()
	if name == "" {
		return ""
	}
	switch {
	case item.Inner.Variant != nil:
		return "variant." + name
	case item.Inner.StructField != nil:
		return "structfield." + name
	case item.Inner.Function != nil:
		return "method." + name
	case item.Inner.AssocConst != nil:
		return "associatedconstant." + name
	case item.Inner.AssocType != nil:
		return "associatedtype." + name
	}
	return ""
}

// Page is one output file.
type Page struct {
	ID     rustdoc.ID
	Item   *rustdoc.Item
	Kind   rustdoc.Kind
	Path   []string
	File   string // relative to the output directory
	Depth  int
	Module *rustdoc.ModuleTree // set for module pages
}

// ModulePath returns the path of the module the page belongs to: the
// module itself for module pages, the parent module otherwise.
func (p Page) ModulePath() []string {
	if p.Kind == rustdoc.KindModule {
		return p.Path
	}
	return p.Path[:len(p.Path)-1]
}

// collectPages walks the module tree and assigns each pageable item exactly
// one page, located by its canonical path.
func (c *Context) collectPages() {
	c.pageFiles = make(map[string]bool)
	seen := make(map[rustdoc.ID]bool)

	add := func(id rustdoc.ID, item *rustdoc.Item, module *rustdoc.ModuleTree) {
		if seen[id] {
			return
		}
		seen[id] = true
		entry, ok := c.Paths.Local(id)
		if !ok || len(entry.Path) == 0 {
			slog.Warn("item has no canonical path, skipping page", "id", id, "name", item.DisplayName())
			return
		}
		kind := entry.Kind
		if module != nil {
			kind = rustdoc.KindModule
		}
		file, ok := ItemURL(entry.Path, kind, 0)
		if !ok {
			return
		}
		if c.pageFiles[file] {
			slog.Warn("duplicate page path, keeping first", "file", file, "id", id)
			return
		}
		c.pageFiles[file] = true
		c.pages = append(c.pages, Page{
			ID:     id,
			Item:   item,
			Kind:   kind,
			Path:   entry.Path,
			File:   file,
			Depth:  Depth(entry.Path, kind),
			Module: module,
		})
	}

	c.Tree.Walk(func(m *rustdoc.ModuleTree) {
		add(m.ID, m.Module, m)
		for _, ti := range m.Items {
			if ti.Item == nil || ti.Foreign || !ti.Kind.HasPage() || ti.Kind == rustdoc.KindModule {
				continue
			}
			add(ti.ID, ti.Item, nil)
		}
	})
}

// Depth returns how many directories deep an item's page is.
func Depth(path []string, kind rustdoc.Kind) int {
	if kind == rustdoc.KindModule {
		return len(path)
	}
	return len(path) - 1
}

// PathToRoot returns the relative prefix from a page at depth to the
// output root.
func PathToRoot(depth int) string {
	return strings.Repeat("../", depth)
}

func (c *Context) showField(field *rustdoc.Item) bool {
	return c.Config.IncludePrivate || field.IsPublic()
}
