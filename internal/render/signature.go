package render

import (
	"encoding/json"
	"strings"

	"github.com/jcdickinson/ferrisdoc/internal/rustdoc"
)

func visPrefix(item *rustdoc.Item) string {
	switch item.Visibility {
	case rustdoc.VisibilityPublic:
		return "pub "
	case rustdoc.VisibilityCrate:
		return "pub(crate) "
	case rustdoc.VisibilityRestricted:
		return "pub(restricted) "
	}
	return ""
}

// fnSig renders a function signature, e.g.
// "pub const fn new<T: Clone>(x: T, y: &amp;str) -&gt; Self".
func (w typeWriter) fnSig(item *rustdoc.Item, fn *rustdoc.Function, name string) string {
	var b strings.Builder
	b.WriteString(visPrefix(item))
	b.WriteString(headerQualifiers(fn.Header))
	b.WriteString("fn ")
	b.WriteString(`<span class="fn">` + esc(name) + `</span>`)
	b.WriteString(w.generics(fn.Generics))

	b.WriteString("(")
	params := make([]string, 0, len(fn.Sig.Inputs))
	for _, in := range fn.Sig.Inputs {
		if in.Name == "self" {
			params = append(params, w.selfShorthand(in.Type))
			continue
		}
		params = append(params, esc(in.Name)+": "+w.typ(in.Type))
	}
	if fn.Sig.IsCVariadic {
		params = append(params, "...")
	}
	b.WriteString(strings.Join(params, ", "))
	b.WriteString(")")

	if ret := w.typ(fn.Sig.Output); ret != "" && ret != "()" {
		b.WriteString(" -&gt; ")
		b.WriteString(ret)
	}
	b.WriteString(w.whereClause(fn.Generics))
	return b.String()
}

// selfShorthand converts a rustdoc self-parameter type to Rust shorthand.
// {"generic": "Self"} → "self", {"borrowed_ref": {is_mutable: false, type: {generic: Self}}} → "&self", etc.
// Explicit types such as self: Box<Self> are kept.
func (w typeWriter) selfShorthand(typeJSON json.RawMessage) string {
	var outer map[string]json.RawMessage
	if err := json.Unmarshal(typeJSON, &outer); err != nil {
		return "self"
	}
	if g, ok := outer["generic"]; ok && unquote(g) == "Self" {
		return "self"
	}
	if br, ok := outer["borrowed_ref"]; ok {
		var r struct {
			Lifetime  *string         `json:"lifetime"`
			IsMutable bool            `json:"is_mutable"`
			Type      json.RawMessage `json:"type"`
		}
		_ = json.Unmarshal(br, &r)
		var inner map[string]json.RawMessage
		if json.Unmarshal(r.Type, &inner) == nil {
			if g, ok := inner["generic"]; ok && unquote(g) == "Self" {
				prefix := "&amp;"
				if r.Lifetime != nil && *r.Lifetime != "" {
					prefix += esc(*r.Lifetime) + " "
				}
				if r.IsMutable {
					prefix += "mut "
				}
				return prefix + "self"
			}
		}
	}
	return "self: " + w.typ(typeJSON)
}

// fieldList renders named fields in a declaration body. Hidden fields are
// summarized by a single comment line.
func (w typeWriter) fieldList(ids []rustdoc.ID, stripped bool) string {
	var b strings.Builder
	hidden := stripped
	for _, id := range ids {
		field, ok := w.c.Crate.Index[id]
		if !ok || !w.c.showField(field) {
			hidden = true
			continue
		}
		b.WriteString("    " + visPrefix(field) + esc(field.DisplayName()) + ": " + w.typ(field.Inner.StructField) + ",\n")
	}
	if hidden {
		b.WriteString("    <span class=\"comment\">/* private fields */</span>\n")
	}
	return b.String()
}

// tupleFields renders "(pub u8, _)" for tuple structs and variants.
func (w typeWriter) tupleFields(ids []*rustdoc.ID, withVis bool) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == nil {
			parts = append(parts, "_")
			continue
		}
		field, ok := w.c.Crate.Index[*id]
		if !ok || (withVis && !w.c.showField(field)) {
			parts = append(parts, "_")
			continue
		}
		prefix := ""
		if withVis {
			prefix = visPrefix(field)
		}
		parts = append(parts, prefix+w.typ(field.Inner.StructField))
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func (w typeWriter) structDecl(item *rustdoc.Item, s *rustdoc.Struct) string {
	var b strings.Builder
	b.WriteString(visPrefix(item) + "struct " + esc(item.DisplayName()) + w.generics(s.Generics))
	switch {
	case s.Kind.Plain != nil:
		b.WriteString(w.whereClause(s.Generics))
		b.WriteString(" {\n")
		b.WriteString(w.fieldList(s.Kind.Plain.Fields, s.Kind.Plain.HasStrippedFields))
		b.WriteString("}")
	case s.Kind.Tuple != nil:
		b.WriteString(w.tupleFields(s.Kind.Tuple, true))
		b.WriteString(w.whereClause(s.Generics))
		b.WriteString(";")
	default:
		b.WriteString(w.whereClause(s.Generics))
		b.WriteString(";")
	}
	return b.String()
}

func (w typeWriter) unionDecl(item *rustdoc.Item, u *rustdoc.Union) string {
	var b strings.Builder
	b.WriteString(visPrefix(item) + "union " + esc(item.DisplayName()) + w.generics(u.Generics))
	b.WriteString(w.whereClause(u.Generics))
	b.WriteString(" {\n")
	b.WriteString(w.fieldList(u.Fields, u.HasStrippedFields))
	b.WriteString("}")
	return b.String()
}

// variantSig renders a variant as it appears inside an enum body.
func (w typeWriter) variantSig(v *rustdoc.Item) string {
	out := esc(v.DisplayName())
	vk := v.Inner.Variant
	if vk == nil {
		return out
	}
	switch {
	case vk.Kind.Tuple != nil:
		out += w.tupleFields(vk.Kind.Tuple, false)
	case vk.Kind.Struct != nil:
		var fields []string
		for _, id := range vk.Kind.Struct.Fields {
			if f, ok := w.c.Crate.Index[id]; ok {
				fields = append(fields, esc(f.DisplayName())+": "+w.typ(f.Inner.StructField))
			}
		}
		out += " { " + strings.Join(fields, ", ") + " }"
	}
	if vk.Discriminant != nil {
		out += " = " + esc(vk.Discriminant.Expr)
	}
	return out
}

func (w typeWriter) enumDecl(item *rustdoc.Item, e *rustdoc.Enum) string {
	var b strings.Builder
	b.WriteString(visPrefix(item) + "enum " + esc(item.DisplayName()) + w.generics(e.Generics))
	b.WriteString(w.whereClause(e.Generics))
	b.WriteString(" {\n")
	for _, id := range e.Variants {
		if v, ok := w.c.Crate.Index[id]; ok {
			b.WriteString("    " + w.variantSig(v) + ",\n")
		}
	}
	if e.HasStrippedVariants {
		b.WriteString("    <span class=\"comment\">// some variants omitted</span>\n")
	}
	b.WriteString("}")
	return b.String()
}

// assocSig renders a trait or impl associated item on one line.
func (w typeWriter) assocSig(item *rustdoc.Item) string {
	name := item.DisplayName()
	switch {
	case item.Inner.Function != nil:
		return w.fnSig(item, item.Inner.Function, name)
	case item.Inner.AssocConst != nil:
		ac := item.Inner.AssocConst
		out := "const " + esc(name) + ": " + w.typ(ac.Type)
		if v := ac.Value; v != nil {
			out += " = " + esc(*v)
		} else if d := ac.Default; d != nil {
			out += " = " + esc(*d)
		}
		return out
	case item.Inner.AssocType != nil:
		at := item.Inner.AssocType
		out := "type " + esc(name) + w.generics(at.Generics)
		if len(at.Bounds) > 0 {
			out += ": " + w.bounds(at.Bounds)
		}
		ty := at.Type
		if len(ty) == 0 || string(ty) == "null" {
			ty = at.Default
		}
		if t := w.typ(ty); t != "" {
			out += " = " + t
		}
		return out
	}
	return esc(name)
}

func (w typeWriter) traitDecl(item *rustdoc.Item, t *rustdoc.Trait) string {
	var b strings.Builder
	b.WriteString(visPrefix(item))
	if t.IsUnsafe {
		b.WriteString("unsafe ")
	}
	if t.IsAuto {
		b.WriteString("auto ")
	}
	b.WriteString("trait " + esc(item.DisplayName()) + w.generics(t.Generics))
	if len(t.Bounds) > 0 {
		b.WriteString(": " + w.bounds(t.Bounds))
	}
	b.WriteString(w.whereClause(t.Generics))
	if len(t.Items) == 0 {
		b.WriteString(" { }")
		return b.String()
	}
	b.WriteString(" {\n")
	for _, id := range t.Items {
		ai, ok := w.c.Crate.Index[id]
		if !ok {
			continue
		}
		sig := w.assocSig(ai)
		// assoc items inside a trait are written without visibility
		sig = strings.TrimPrefix(sig, "pub ")
		if ai.Inner.Function != nil && ai.Inner.Function.HasBody {
			b.WriteString("    " + sig + " { ... }\n")
		} else {
			b.WriteString("    " + sig + ";\n")
		}
	}
	b.WriteString("}")
	return b.String()
}

func (w typeWriter) typeAliasDecl(item *rustdoc.Item, ta *rustdoc.TypeAlias) string {
	return visPrefix(item) + "type " + esc(item.DisplayName()) + w.generics(ta.Generics) +
		w.whereClause(ta.Generics) + " = " + w.typ(ta.Type) + ";"
}

func (w typeWriter) constantDecl(item *rustdoc.Item, c *rustdoc.Constant) string {
	out := visPrefix(item) + "const " + esc(item.DisplayName()) + ": " + w.typ(c.Type)
	if expr := c.Expression(); expr != "" && expr != "_" {
		out += " = " + esc(expr)
	}
	return out + ";"
}

func (w typeWriter) staticDecl(item *rustdoc.Item, s *rustdoc.Static) string {
	out := visPrefix(item)
	if s.IsUnsafe {
		out += "unsafe "
	}
	out += "static "
	if s.IsMutable {
		out += "mut "
	}
	out += esc(item.DisplayName()) + ": " + w.typ(s.Type)
	if s.Expr != "" && s.Expr != "_" {
		out += " = " + esc(s.Expr)
	}
	return out + ";"
}

// implHeader renders "impl<T> Trait for Type where ...".
func (w typeWriter) implHeader(im *rustdoc.Impl) string {
	var b strings.Builder
	if im.IsUnsafe {
		b.WriteString("unsafe ")
	}
	b.WriteString("impl")
	b.WriteString(w.generics(im.Generics))
	b.WriteString(" ")
	if im.Trait != nil {
		if im.IsNegative {
			b.WriteString("!")
		}
		b.WriteString(w.path(im.Trait))
		b.WriteString(" for ")
	}
	b.WriteString(w.typ(im.For))
	b.WriteString(w.whereClause(im.Generics))
	return b.String()
}
