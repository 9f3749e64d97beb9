package render

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/jcdickinson/ferrisdoc/internal/rustdoc"
)

type breadcrumb struct {
	Name string
	URL  string
}

// pageData is the value every page template executes against.
type pageData struct {
	Template    string
	Title       string
	CrateName   string
	Version     string
	Root        string
	KindLabel   string
	KindClass   string
	Name        string
	Breadcrumbs []breadcrumb
	Sidebar     sidebarData
	Decl        template.HTML
	Deprecation *deprecation
	Docs        template.HTML

	Module        *moduleData
	Fields        []member
	Variants      []member
	TraitSections []traitSection
	ImplGroups    []implGroup
	Helpers       []string
}

// RenderPage renders one page to HTML.
func (c *Context) RenderPage(p Page) (string, error) {
	r := c.newPageRenderer(p)
	data := &pageData{
		Title:       c.pageTitle(p),
		CrateName:   c.CrateName(),
		Root:        PathToRoot(p.Depth),
		Name:        p.Path[len(p.Path)-1],
		Breadcrumbs: c.breadcrumbs(p),
		Sidebar:     c.sidebar(p),
		Deprecation: deprecationOf(p.Item),
	}

	docs, err := r.docs(p.Item)
	if err != nil {
		return "", err
	}
	data.Docs = docs

	if err := r.fill(data); err != nil {
		return "", fmt.Errorf("rendering %s: %w", p.File, err)
	}
	return c.templates.render(data.Template, data)
}

// fill sets the kind-specific parts of the page.
func (r *pageRenderer) fill(data *pageData) error {
	p := r.page
	in := p.Item.Inner
	var err error

	switch p.Kind {
	case rustdoc.KindModule:
		data.Template, data.KindClass = "module", "mod"
		data.KindLabel = "Module"
		if p.ID == r.c.Tree.ID {
			data.KindLabel = "Crate"
			data.Version = r.c.CrateVersion()
		}
		if p.Module != nil {
			data.Module = r.moduleListing(p.Module)
		}

	case rustdoc.KindStruct, rustdoc.KindUnion:
		data.Template, data.KindClass = "struct", p.Kind.String()
		switch {
		case in.Struct != nil:
			data.KindLabel = "Struct"
			data.Decl = template.HTML(r.w.structDecl(p.Item, in.Struct))
			switch {
			case in.Struct.Kind.Plain != nil:
				data.Fields, err = r.fields(in.Struct.Kind.Plain.Fields)
			case in.Struct.Kind.Tuple != nil:
				data.Fields, err = r.tupleFields(in.Struct.Kind.Tuple)
			}
		case in.Union != nil:
			data.KindLabel = "Union"
			data.Decl = template.HTML(r.w.unionDecl(p.Item, in.Union))
			data.Fields, err = r.fields(in.Union.Fields)
		default:
			return r.mismatch()
		}
		if err != nil {
			return err
		}
		data.ImplGroups, err = r.implGroups(p.ID)

	case rustdoc.KindEnum:
		if in.Enum == nil {
			return r.mismatch()
		}
		data.Template, data.KindClass, data.KindLabel = "enum", "enum", "Enum"
		data.Decl = template.HTML(r.w.enumDecl(p.Item, in.Enum))
		if data.Variants, err = r.variants(in.Enum); err != nil {
			return err
		}
		data.ImplGroups, err = r.implGroups(p.ID)

	case rustdoc.KindTrait:
		if in.Trait == nil {
			return r.mismatch()
		}
		data.Template, data.KindClass, data.KindLabel = "trait", "trait", "Trait"
		data.Decl = template.HTML(r.w.traitDecl(p.Item, in.Trait))
		if data.TraitSections, err = r.traitSections(in.Trait); err != nil {
			return err
		}
		data.ImplGroups = r.implementors(p.ID)

	case rustdoc.KindFunction:
		if in.Function == nil {
			return r.mismatch()
		}
		data.Template, data.KindClass, data.KindLabel = "function", "fn", "Function"
		data.Decl = template.HTML(r.w.fnSig(p.Item, in.Function, p.Item.DisplayName()))

	case rustdoc.KindTypeAlias:
		if in.TypeAlias == nil {
			return r.mismatch()
		}
		data.Template, data.KindClass, data.KindLabel = "type_alias", "type", "Type Alias"
		data.Decl = template.HTML(r.w.typeAliasDecl(p.Item, in.TypeAlias))
		data.ImplGroups, err = r.implGroups(p.ID)

	case rustdoc.KindConstant, rustdoc.KindStatic:
		data.Template = "constant"
		switch {
		case in.Constant != nil:
			data.KindClass, data.KindLabel = "constant", "Constant"
			data.Decl = template.HTML(r.w.constantDecl(p.Item, in.Constant))
		case in.Static != nil:
			data.KindClass, data.KindLabel = "static", "Static"
			data.Decl = template.HTML(r.w.staticDecl(p.Item, in.Static))
		default:
			return r.mismatch()
		}

	case rustdoc.KindMacro:
		data.Template, data.KindClass, data.KindLabel = "macro", "macro", "Macro"
		switch {
		case in.Macro != nil:
			data.Decl = template.HTML(r.c.highlighter.Highlight(*in.Macro, "rust"))
		case in.ProcMacro != nil:
			data.KindLabel, data.Decl = procMacroDecl(p.Item.DisplayName(), in.ProcMacro)
			data.Helpers = in.ProcMacro.Helpers
		default:
			return r.mismatch()
		}

	case rustdoc.KindOther, rustdoc.KindVariant, rustdoc.KindStructField, rustdoc.KindImpl, rustdoc.KindUse:
		return fmt.Errorf("%s items have no page", p.Kind)
	}
	return err
}

func (r *pageRenderer) mismatch() error {
	return &rustdoc.StructureError{
		ID:     r.page.ID,
		Reason: fmt.Sprintf("path kind %s does not match item payload", r.page.Kind),
	}
}

func procMacroDecl(name string, pm *rustdoc.ProcMacro) (string, template.HTML) {
	n := esc(name)
	switch pm.Kind {
	case "attr":
		return "Attribute Macro", template.HTML("#[" + n + "]")
	case "derive":
		return "Derive Macro", template.HTML("#[derive(" + n + ")]")
	default:
		return "Macro", template.HTML(n + "!() { <span class=\"comment\">/* proc-macro */</span> }")
	}
}

// pageTitle is "Name in module::path", or the crate name on the root page.
func (c *Context) pageTitle(p Page) string {
	if p.ID == c.Tree.ID {
		return c.CrateName()
	}
	name := p.Path[len(p.Path)-1]
	parent := p.Path[:len(p.Path)-1]
	if len(parent) == 0 {
		return name
	}
	return name + " in " + strings.Join(parent, "::")
}

// breadcrumbs links every ancestor module that has a page; the last
// segment is the page itself.
func (c *Context) breadcrumbs(p Page) []breadcrumb {
	crumbs := make([]breadcrumb, 0, len(p.Path))
	for i, seg := range p.Path {
		crumb := breadcrumb{Name: seg}
		if i < len(p.Path)-1 {
			if file, ok := ItemURL(p.Path[:i+1], rustdoc.KindModule, 0); ok && c.pageFiles[file] {
				crumb.URL = PathToRoot(p.Depth) + file
			}
		}
		crumbs = append(crumbs, crumb)
	}
	return crumbs
}
