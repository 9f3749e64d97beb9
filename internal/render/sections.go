package render

import (
	"fmt"
	"html/template"
	"log/slog"
	"strings"

	"github.com/jcdickinson/ferrisdoc/internal/markdown"
	"github.com/jcdickinson/ferrisdoc/internal/rustdoc"
)

// member is a field, variant, or associated item documented in place.
type member struct {
	Anchor      string
	Class       string
	Sig         template.HTML
	Deprecation *deprecation
	Docs        template.HTML
}

type deprecation struct {
	Since string
	Note  string
}

func deprecationOf(item *rustdoc.Item) *deprecation {
	if item.Deprecation == nil {
		return nil
	}
	d := &deprecation{}
	if item.Deprecation.Since != nil {
		d.Since = *item.Deprecation.Since
	}
	if item.Deprecation.Note != nil {
		d.Note = *item.Deprecation.Note
	}
	return d
}

type implBlock struct {
	Anchor string
	Header template.HTML
	Docs   template.HTML
	Items  []member
}

type implGroup struct {
	ID    string
	Title string
	Impls []implBlock
}

type traitSection struct {
	ID      string
	Title   string
	Members []member
}

// pageRenderer renders the pieces of one page. It is created per page and
// never shared between goroutines.
type pageRenderer struct {
	c       *Context
	page    Page
	w       typeWriter
	anchors map[string]int
}

func (c *Context) newPageRenderer(p Page) *pageRenderer {
	return &pageRenderer{
		c:       c,
		page:    p,
		w:       typeWriter{c: c, depth: p.Depth},
		anchors: make(map[string]int),
	}
}

// anchor returns a page-unique anchor, suffixing repeats with -1, -2, ...
func (r *pageRenderer) anchor(base string) string {
	n := r.anchors[base]
	r.anchors[base] = n + 1
	if n == 0 {
		return base
	}
	return fmt.Sprintf("%s-%d", base, n)
}

// docs renders an item's documentation with links resolved relative to
// the current page.
func (r *pageRenderer) docs(item *rustdoc.Item) (template.HTML, error) {
	src := item.DocString()
	if src == "" {
		return "", nil
	}
	out, err := r.c.markdown.Render(src, r.links(item))
	if err != nil {
		return "", fmt.Errorf("rendering docs for %s: %w", item.DisplayName(), err)
	}
	return template.HTML(out), nil
}

// summary renders the first paragraph of an item's docs without the
// enclosing paragraph element.
func (r *pageRenderer) summary(item *rustdoc.Item) template.HTML {
	first := markdown.FirstParagraph(item.DocString())
	if first == "" {
		return ""
	}
	out, err := r.c.markdown.Render(first, r.links(item))
	if err != nil {
		slog.Warn("rendering summary failed", "item", item.DisplayName(), "error", err)
		return template.HTML(esc(first))
	}
	out = strings.TrimSpace(out)
	if strings.HasPrefix(out, "<p>") && strings.HasSuffix(out, "</p>") && strings.Count(out, "<p>") == 1 {
		out = strings.TrimSuffix(strings.TrimPrefix(out, "<p>"), "</p>")
	}
	return template.HTML(out)
}

func (r *pageRenderer) links(item *rustdoc.Item) markdown.Links {
	return r.c.docLinks(item, r.page.Depth, r.page.ModulePath())
}

func (r *pageRenderer) member(item *rustdoc.Item, anchor, class string, sig string) (member, error) {
	docs, err := r.docs(item)
	if err != nil {
		return member{}, err
	}
	return member{
		Anchor:      r.anchor(anchor),
		Class:       class,
		Sig:         template.HTML(sig),
		Deprecation: deprecationOf(item),
		Docs:        docs,
	}, nil
}

// fields lists the visible named fields of a struct or union.
func (r *pageRenderer) fields(ids []rustdoc.ID) ([]member, error) {
	var out []member
	for _, id := range ids {
		field, ok := r.c.Crate.Index[id]
		if !ok || !r.c.showField(field) {
			continue
		}
		sig := esc(field.DisplayName()) + ": " + r.w.typ(field.Inner.StructField)
		m, err := r.member(field, "structfield."+field.DisplayName(), "structfield", sig)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

// tupleFields lists the visible positional fields of a tuple struct.
func (r *pageRenderer) tupleFields(ids []*rustdoc.ID) ([]member, error) {
	var out []member
	for i, id := range ids {
		if id == nil {
			continue
		}
		field, ok := r.c.Crate.Index[*id]
		if !ok || !r.c.showField(field) {
			continue
		}
		sig := fmt.Sprintf("%d: %s", i, r.w.typ(field.Inner.StructField))
		m, err := r.member(field, fmt.Sprintf("structfield.%d", i), "structfield", sig)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func (r *pageRenderer) variants(e *rustdoc.Enum) ([]member, error) {
	var out []member
	for _, id := range e.Variants {
		v, ok := r.c.Crate.Index[id]
		if !ok {
			continue
		}
		m, err := r.member(v, "variant."+v.DisplayName(), "variant", r.w.variantSig(v))
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

// assocMember renders an associated item of a trait or impl.
func (r *pageRenderer) assocMember(item *rustdoc.Item, inTrait bool) (member, error) {
	sig := r.w.assocSig(item)
	if inTrait {
		sig = strings.TrimPrefix(sig, "pub ")
	}
	var anchor, class string
	switch {
	case item.Inner.Function != nil:
		anchor, class = "method."+item.DisplayName(), "method"
	case item.Inner.AssocConst != nil:
		anchor, class = "associatedconstant."+item.DisplayName(), "associatedconstant"
	case item.Inner.AssocType != nil:
		anchor, class = "associatedtype."+item.DisplayName(), "associatedtype"
	default:
		anchor, class = item.DisplayName(), "item"
	}
	return r.member(item, anchor, class, sig)
}

// implGroups splits the impls of typeID into inherent, trait, and
// auto/blanket groups, keeping index order within each.
func (r *pageRenderer) implGroups(typeID rustdoc.ID) ([]implGroup, error) {
	inherent := implGroup{ID: "implementations", Title: "Implementations"}
	traits := implGroup{ID: "trait-implementations", Title: "Trait Implementations"}
	auto := implGroup{ID: "synthetic-implementations", Title: "Auto Trait Implementations"}
	blanket := implGroup{ID: "blanket-implementations", Title: "Blanket Implementations"}

	for _, id := range r.c.Impls.Impls(typeID) {
		item, ok := r.c.Crate.Index[id]
		if !ok || item.Inner.Impl == nil {
			continue
		}
		im := item.Inner.Impl
		block, err := r.implBlock(item, im)
		if err != nil {
			return nil, err
		}
		switch {
		case im.Trait == nil:
			inherent.Impls = append(inherent.Impls, block)
		case im.IsSynthetic || im.IsNegative:
			auto.Impls = append(auto.Impls, block)
		case im.IsBlanket():
			blanket.Impls = append(blanket.Impls, block)
		default:
			traits.Impls = append(traits.Impls, block)
		}
	}

	var out []implGroup
	for _, g := range []implGroup{inherent, traits, auto, blanket} {
		if len(g.Impls) > 0 {
			out = append(out, g)
		}
	}
	return out, nil
}

func (r *pageRenderer) implBlock(item *rustdoc.Item, im *rustdoc.Impl) (implBlock, error) {
	header := r.w.implHeader(im)
	anchor := "impl"
	if im.Trait != nil {
		anchor = "impl-" + sanitizeAnchor(im.Trait.Display())
	}
	docs, err := r.docs(item)
	if err != nil {
		return implBlock{}, err
	}
	block := implBlock{
		Anchor: r.anchor(anchor),
		Header: template.HTML(header),
		Docs:   docs,
	}
	for _, id := range im.Items {
		ai, ok := r.c.Crate.Index[id]
		if !ok {
			continue
		}
		if im.Trait == nil && !r.c.Config.IncludePrivate && !ai.IsPublic() {
			continue
		}
		m, err := r.assocMember(ai, im.Trait != nil)
		if err != nil {
			return implBlock{}, err
		}
		block.Items = append(block.Items, m)
	}
	return block, nil
}

func sanitizeAnchor(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		}
		return '-'
	}, s)
}

// traitSections lists a trait's associated items, required first.
func (r *pageRenderer) traitSections(t *rustdoc.Trait) ([]traitSection, error) {
	types := traitSection{ID: "associated-types", Title: "Associated Types"}
	consts := traitSection{ID: "associated-constants", Title: "Associated Constants"}
	required := traitSection{ID: "required-methods", Title: "Required Methods"}
	provided := traitSection{ID: "provided-methods", Title: "Provided Methods"}

	for _, id := range t.Items {
		ai, ok := r.c.Crate.Index[id]
		if !ok {
			continue
		}
		m, err := r.assocMember(ai, true)
		if err != nil {
			return nil, err
		}
		switch {
		case ai.Inner.AssocType != nil:
			types.Members = append(types.Members, m)
		case ai.Inner.AssocConst != nil:
			consts.Members = append(consts.Members, m)
		case ai.Inner.Function != nil && ai.Inner.Function.HasBody:
			provided.Members = append(provided.Members, m)
		default:
			required.Members = append(required.Members, m)
		}
	}

	var out []traitSection
	for _, s := range []traitSection{types, consts, required, provided} {
		if len(s.Members) > 0 {
			out = append(out, s)
		}
	}
	return out, nil
}

// implementors lists the impls of a trait, headers only.
func (r *pageRenderer) implementors(traitID rustdoc.ID) []implGroup {
	g := implGroup{ID: "implementors", Title: "Implementors"}
	for _, id := range r.c.Impls.Implementors(traitID) {
		item, ok := r.c.Crate.Index[id]
		if !ok || item.Inner.Impl == nil || item.Inner.Impl.IsSynthetic {
			continue
		}
		g.Impls = append(g.Impls, implBlock{
			Anchor: r.anchor("impl-" + sanitizeAnchor(r.c.typeName(item.Inner.Impl))),
			Header: template.HTML(r.w.implHeader(item.Inner.Impl)),
		})
	}
	if len(g.Impls) == 0 {
		return nil
	}
	return []implGroup{g}
}

// typeName returns the plain name of an impl's self type.
func (c *Context) typeName(im *rustdoc.Impl) string {
	id, ok := rustdoc.ResolvedPathID(im.For)
	if !ok {
		return "type"
	}
	if e, ok := c.Paths.Lookup(id); ok {
		return e.Name()
	}
	if item, ok := c.Crate.Index[id]; ok {
		return item.DisplayName()
	}
	return "type"
}

type moduleData struct {
	Reexports []reexportEntry
	Groups    []listGroup
}

type reexportEntry struct {
	Source string
	URL    string
	Glob   bool
}

type listGroup struct {
	ID      string
	Title   string
	Entries []listEntry
}

type listEntry struct {
	Name       string
	URL        string
	Class      string
	Summary    template.HTML
	Deprecated bool
}

var groupTitles = map[rustdoc.Kind]struct{ id, title string }{
	rustdoc.KindModule:    {"modules", "Modules"},
	rustdoc.KindMacro:     {"macros", "Macros"},
	rustdoc.KindStruct:    {"structs", "Structs"},
	rustdoc.KindUnion:     {"unions", "Unions"},
	rustdoc.KindEnum:      {"enums", "Enums"},
	rustdoc.KindTrait:     {"traits", "Traits"},
	rustdoc.KindFunction:  {"functions", "Functions"},
	rustdoc.KindTypeAlias: {"types", "Type Aliases"},
	rustdoc.KindConstant:  {"constants", "Constants"},
	rustdoc.KindStatic:    {"statics", "Statics"},
}

// moduleListing groups a module's children by kind. Foreign and glob
// re-exports are listed separately since they have no local page.
func (r *pageRenderer) moduleListing(m *rustdoc.ModuleTree) *moduleData {
	data := &moduleData{}
	var groups []listGroup
	index := make(map[rustdoc.Kind]int)

	add := func(kind rustdoc.Kind, e listEntry) {
		t, ok := groupTitles[kind]
		if !ok {
			return
		}
		i, ok := index[kind]
		if !ok {
			i = len(groups)
			index[kind] = i
			groups = append(groups, listGroup{ID: t.id, Title: t.title})
		}
		groups[i].Entries = append(groups[i].Entries, e)
	}

	for _, sub := range m.Modules {
		url, ok := r.c.ResolveItemURL(sub.ID, r.page.Depth)
		if !ok {
			continue
		}
		add(rustdoc.KindModule, listEntry{
			Name:       sub.Name,
			URL:        url,
			Class:      "mod",
			Summary:    r.summary(sub.Module),
			Deprecated: sub.Module.Deprecation != nil,
		})
	}

	for _, ti := range m.Items {
		if ti.Foreign || ti.Item == nil {
			data.Reexports = append(data.Reexports, reexportEntry{
				Source: ti.Source,
				URL:    r.c.LinkFor(ti.ID, r.page.Depth),
			})
			continue
		}
		url, ok := r.c.ResolveItemURL(ti.ID, r.page.Depth)
		if !ok {
			slog.Debug("listed item has no page", "module", m.PathString(), "item", ti.Name)
			continue
		}
		add(ti.Kind, listEntry{
			Name:       ti.Name,
			URL:        url,
			Class:      ti.Kind.String(),
			Summary:    r.summary(ti.Item),
			Deprecated: ti.Item.Deprecation != nil,
		})
	}

	for _, g := range m.Globs {
		e := reexportEntry{Source: g.Source, Glob: true}
		if g.Target != nil {
			e.URL = r.c.LinkFor(*g.Target, r.page.Depth)
		}
		data.Reexports = append(data.Reexports, e)
	}

	// Modules come first, then the tree's kind order.
	data.Groups = groups
	return data
}
