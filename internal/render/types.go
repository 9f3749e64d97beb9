package render

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jcdickinson/ferrisdoc/internal/highlight"
	"github.com/jcdickinson/ferrisdoc/internal/rustdoc"
)

var esc = highlight.Escape

// typeWriter formats rustdoc types as HTML. Paths that resolve become links
// relative to a page at depth; everything else is escaped text.
type typeWriter struct {
	c     *Context
	depth int
}

// typ renders a rustdoc Type.
func (w typeWriter) typ(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		// unit variants, e.g. "infer"
		if s == "infer" {
			return "_"
		}
		return esc(s)
	}

	var outer map[string]json.RawMessage
	if err := json.Unmarshal(raw, &outer); err != nil {
		return ""
	}

	if v, ok := outer["resolved_path"]; ok {
		return w.resolvedPath(v)
	}
	if v, ok := outer["primitive"]; ok {
		return esc(unquote(v))
	}
	if v, ok := outer["generic"]; ok {
		return esc(unquote(v))
	}
	if v, ok := outer["dyn_trait"]; ok {
		return w.dynTrait(v)
	}
	if v, ok := outer["borrowed_ref"]; ok {
		return w.borrowedRef(v)
	}
	if v, ok := outer["raw_pointer"]; ok {
		return w.rawPointer(v)
	}
	if v, ok := outer["slice"]; ok {
		return "[" + w.typ(v) + "]"
	}
	if v, ok := outer["array"]; ok {
		var a struct {
			Type json.RawMessage `json:"type"`
			Len  string          `json:"len"`
		}
		if json.Unmarshal(v, &a) != nil {
			return ""
		}
		return "[" + w.typ(a.Type) + "; " + esc(a.Len) + "]"
	}
	if v, ok := outer["tuple"]; ok {
		return w.tuple(v)
	}
	if v, ok := outer["impl_trait"]; ok {
		var bounds []json.RawMessage
		if json.Unmarshal(v, &bounds) != nil {
			return ""
		}
		return "impl " + w.bounds(bounds)
	}
	if v, ok := outer["function_pointer"]; ok {
		return w.fnPointer(v)
	}
	if v, ok := outer["qualified_path"]; ok {
		return w.qualifiedPath(v)
	}
	if v, ok := outer["pat"]; ok {
		var p struct {
			Type json.RawMessage `json:"type"`
		}
		if json.Unmarshal(v, &p) == nil {
			return w.typ(p.Type)
		}
	}
	return ""
}

func unquote(raw json.RawMessage) string {
	var s string
	_ = json.Unmarshal(raw, &s)
	return s
}

// link wraps text in an anchor to id when the id resolves.
func (w typeWriter) link(id rustdoc.ID, text string) string {
	url := w.c.LinkFor(id, w.depth)
	if url == "" {
		return esc(text)
	}
	class := "type"
	if e, ok := w.c.Paths.Lookup(id); ok {
		class = e.Kind.String()
	}
	return fmt.Sprintf(`<a class="%s" href="%s">%s</a>`, class, esc(url), esc(text))
}

// path renders a rustdoc Path (trait or type reference) with its args.
func (w typeWriter) path(p *rustdoc.Path) string {
	name := p.Display()
	if name == "" {
		if e, ok := w.c.Paths.Lookup(p.ID); ok {
			name = e.Name()
		}
	}
	if name == "" {
		return ""
	}
	return w.link(p.ID, name) + w.genericArgs(p.Args)
}

func (w typeWriter) resolvedPath(raw json.RawMessage) string {
	var p rustdoc.Path
	if err := json.Unmarshal(raw, &p); err != nil {
		return ""
	}
	return w.path(&p)
}

func (w typeWriter) genericArgs(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var args struct {
		AngleBracketed *struct {
			Args        []json.RawMessage `json:"args"`
			Constraints []json.RawMessage `json:"constraints"`
			Bindings    []json.RawMessage `json:"bindings"`
		} `json:"angle_bracketed"`
		Parenthesized *struct {
			Inputs []json.RawMessage `json:"inputs"`
			Output json.RawMessage   `json:"output"`
		} `json:"parenthesized"`
	}
	if err := json.Unmarshal(raw, &args); err != nil {
		return ""
	}

	if p := args.Parenthesized; p != nil {
		parts := make([]string, 0, len(p.Inputs))
		for _, in := range p.Inputs {
			parts = append(parts, w.typ(in))
		}
		out := "(" + strings.Join(parts, ", ") + ")"
		if ret := w.typ(p.Output); ret != "" {
			out += " -&gt; " + ret
		}
		return out
	}

	ab := args.AngleBracketed
	if ab == nil {
		return ""
	}
	var parts []string
	for _, arg := range ab.Args {
		if s := w.genericArg(arg); s != "" {
			parts = append(parts, s)
		}
	}
	for _, c := range append(ab.Constraints, ab.Bindings...) {
		if s := w.constraint(c); s != "" {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return "&lt;" + strings.Join(parts, ", ") + "&gt;"
}

func (w typeWriter) genericArg(raw json.RawMessage) string {
	if unquote(raw) == "infer" {
		return "_"
	}
	var a map[string]json.RawMessage
	if err := json.Unmarshal(raw, &a); err != nil {
		return ""
	}
	if t, ok := a["type"]; ok {
		return w.typ(t)
	}
	if lt, ok := a["lifetime"]; ok {
		return esc(unquote(lt))
	}
	if c, ok := a["const"]; ok {
		return w.constant(c)
	}
	return ""
}

func (w typeWriter) constant(raw json.RawMessage) string {
	var c struct {
		Expr  string  `json:"expr"`
		Value *string `json:"value"`
	}
	if err := json.Unmarshal(raw, &c); err != nil {
		return ""
	}
	if c.Value != nil {
		return esc(*c.Value)
	}
	return esc(c.Expr)
}

func (w typeWriter) term(raw json.RawMessage) string {
	var t map[string]json.RawMessage
	if err := json.Unmarshal(raw, &t); err != nil {
		return ""
	}
	if ty, ok := t["type"]; ok {
		return w.typ(ty)
	}
	if c, ok := t["constant"]; ok {
		return w.constant(c)
	}
	return ""
}

func (w typeWriter) constraint(raw json.RawMessage) string {
	var c struct {
		Name    string          `json:"name"`
		Args    json.RawMessage `json:"args"`
		Binding struct {
			Equality   json.RawMessage   `json:"equality"`
			Constraint []json.RawMessage `json:"constraint"`
		} `json:"binding"`
	}
	if err := json.Unmarshal(raw, &c); err != nil {
		return ""
	}
	out := esc(c.Name) + w.genericArgs(c.Args)
	switch {
	case len(c.Binding.Equality) > 0:
		out += " = " + w.term(c.Binding.Equality)
	case len(c.Binding.Constraint) > 0:
		out += ": " + w.bounds(c.Binding.Constraint)
	}
	return out
}

func (w typeWriter) dynTrait(raw json.RawMessage) string {
	var d struct {
		Traits []struct {
			Trait         rustdoc.Path      `json:"trait"`
			GenericParams []json.RawMessage `json:"generic_params"`
		} `json:"traits"`
		Lifetime *string `json:"lifetime"`
	}
	if err := json.Unmarshal(raw, &d); err != nil || len(d.Traits) == 0 {
		return ""
	}

	parts := make([]string, 0, len(d.Traits)+1)
	for _, t := range d.Traits {
		s := w.path(&t.Trait)
		if hrtb := w.forParams(t.GenericParams); hrtb != "" {
			s = hrtb + s
		}
		parts = append(parts, s)
	}
	if d.Lifetime != nil && *d.Lifetime != "" {
		parts = append(parts, esc(*d.Lifetime))
	}
	return "dyn " + strings.Join(parts, " + ")
}

func (w typeWriter) borrowedRef(raw json.RawMessage) string {
	var r struct {
		Lifetime  *string         `json:"lifetime"`
		IsMutable bool            `json:"is_mutable"`
		Type      json.RawMessage `json:"type"`
	}
	if err := json.Unmarshal(raw, &r); err != nil {
		return ""
	}
	prefix := "&amp;"
	if r.Lifetime != nil && *r.Lifetime != "" {
		prefix += esc(*r.Lifetime) + " "
	}
	if r.IsMutable {
		prefix += "mut "
	}
	return prefix + w.typ(r.Type)
}

func (w typeWriter) rawPointer(raw json.RawMessage) string {
	var r struct {
		IsMutable bool            `json:"is_mutable"`
		Type      json.RawMessage `json:"type"`
	}
	if err := json.Unmarshal(raw, &r); err != nil {
		return ""
	}
	if r.IsMutable {
		return "*mut " + w.typ(r.Type)
	}
	return "*const " + w.typ(r.Type)
}

func (w typeWriter) tuple(raw json.RawMessage) string {
	var types []json.RawMessage
	if err := json.Unmarshal(raw, &types); err != nil {
		return ""
	}
	parts := make([]string, 0, len(types))
	for _, t := range types {
		parts = append(parts, w.typ(t))
	}
	if len(parts) == 1 {
		return "(" + parts[0] + ",)"
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func (w typeWriter) qualifiedPath(raw json.RawMessage) string {
	var q struct {
		Name     string          `json:"name"`
		Args     json.RawMessage `json:"args"`
		SelfType json.RawMessage `json:"self_type"`
		Trait    *rustdoc.Path   `json:"trait"`
	}
	if err := json.Unmarshal(raw, &q); err != nil {
		return ""
	}
	selfType := w.typ(q.SelfType)
	if q.Trait != nil && q.Trait.Display() != "" {
		return "&lt;" + selfType + " as " + w.path(q.Trait) + "&gt;::" + esc(q.Name) + w.genericArgs(q.Args)
	}
	return selfType + "::" + esc(q.Name) + w.genericArgs(q.Args)
}

func (w typeWriter) fnPointer(raw json.RawMessage) string {
	var fp struct {
		Sig           rustdoc.FnSig     `json:"sig"`
		GenericParams []json.RawMessage `json:"generic_params"`
		Header        rustdoc.FnHeader  `json:"header"`
	}
	if err := json.Unmarshal(raw, &fp); err != nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(w.forParams(fp.GenericParams))
	b.WriteString(headerQualifiers(fp.Header))
	b.WriteString("fn(")
	for i, in := range fp.Sig.Inputs {
		if i > 0 {
			b.WriteString(", ")
		}
		if in.Name != "" && in.Name != "_" {
			b.WriteString(esc(in.Name) + ": ")
		}
		b.WriteString(w.typ(in.Type))
	}
	b.WriteString(")")
	if ret := w.typ(fp.Sig.Output); ret != "" {
		b.WriteString(" -&gt; " + ret)
	}
	return b.String()
}

// bounds renders a list of generic bounds joined with " + ".
func (w typeWriter) bounds(raw []json.RawMessage) string {
	parts := make([]string, 0, len(raw))
	for _, b := range raw {
		if s := w.bound(b); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " + ")
}

func (w typeWriter) bound(raw json.RawMessage) string {
	var b struct {
		TraitBound *struct {
			Trait         rustdoc.Path      `json:"trait"`
			GenericParams []json.RawMessage `json:"generic_params"`
			Modifier      string            `json:"modifier"`
		} `json:"trait_bound"`
		Outlives *string           `json:"outlives"`
		Use      []json.RawMessage `json:"use"`
	}
	if err := json.Unmarshal(raw, &b); err != nil {
		return ""
	}
	switch {
	case b.TraitBound != nil:
		var prefix string
		switch b.TraitBound.Modifier {
		case "maybe":
			prefix = "?"
		case "maybe_const":
			prefix = "~const "
		}
		return w.forParams(b.TraitBound.GenericParams) + prefix + w.path(&b.TraitBound.Trait)
	case b.Outlives != nil:
		return esc(*b.Outlives)
	case b.Use != nil:
		args := make([]string, 0, len(b.Use))
		for _, a := range b.Use {
			var s string
			if json.Unmarshal(a, &s) == nil {
				args = append(args, esc(s))
				continue
			}
			var m map[string]string
			if json.Unmarshal(a, &m) == nil {
				for _, v := range m {
					args = append(args, esc(v))
				}
			}
		}
		return "use&lt;" + strings.Join(args, ", ") + "&gt;"
	}
	return ""
}

// forParams renders a higher-ranked "for<'a> " prefix.
func (w typeWriter) forParams(params []json.RawMessage) string {
	if len(params) == 0 {
		return ""
	}
	parts := make([]string, 0, len(params))
	for _, p := range params {
		var gp rustdoc.GenericParam
		if json.Unmarshal(p, &gp) == nil {
			parts = append(parts, w.genericParam(gp))
		}
	}
	return "for&lt;" + strings.Join(parts, ", ") + "&gt; "
}

// genericParam renders one parameter definition with bounds and default.
func (w typeWriter) genericParam(p rustdoc.GenericParam) string {
	var kind struct {
		Lifetime *struct {
			Outlives []string `json:"outlives"`
		} `json:"lifetime"`
		Type *struct {
			Bounds      []json.RawMessage `json:"bounds"`
			Default     json.RawMessage   `json:"default"`
			IsSynthetic bool              `json:"is_synthetic"`
		} `json:"type"`
		Const *struct {
			Type    json.RawMessage `json:"type"`
			Default *string         `json:"default"`
		} `json:"const"`
	}
	_ = json.Unmarshal(p.Kind, &kind)

	out := esc(p.Name)
	switch {
	case kind.Lifetime != nil:
		if len(kind.Lifetime.Outlives) > 0 {
			out += ": " + esc(strings.Join(kind.Lifetime.Outlives, " + "))
		}
	case kind.Type != nil:
		if len(kind.Type.Bounds) > 0 {
			out += ": " + w.bounds(kind.Type.Bounds)
		}
		if def := w.typ(kind.Type.Default); def != "" {
			out += " = " + def
		}
	case kind.Const != nil:
		out = "const " + out + ": " + w.typ(kind.Const.Type)
		if kind.Const.Default != nil {
			out += " = " + esc(*kind.Const.Default)
		}
	}
	return out
}

// isSynthetic reports whether a generic param was introduced by
// argument-position impl Trait and should not be shown.
func isSynthetic(p rustdoc.GenericParam) bool {
	var kind struct {
		Type *struct {
			IsSynthetic bool `json:"is_synthetic"`
		} `json:"type"`
	}
	return json.Unmarshal(p.Kind, &kind) == nil && kind.Type != nil && kind.Type.IsSynthetic
}

// generics renders "<T: Bound, 'a>" or "".
func (w typeWriter) generics(g rustdoc.Generics) string {
	var parts []string
	for _, p := range g.Params {
		if isSynthetic(p) {
			continue
		}
		parts = append(parts, w.genericParam(p))
	}
	if len(parts) == 0 {
		return ""
	}
	return "&lt;" + strings.Join(parts, ", ") + "&gt;"
}

// whereClause renders a multi-line where clause, or "".
func (w typeWriter) whereClause(g rustdoc.Generics) string {
	var preds []string
	for _, raw := range g.WherePredicates {
		if s := w.wherePredicate(raw); s != "" {
			preds = append(preds, s)
		}
	}
	if len(preds) == 0 {
		return ""
	}
	return "\nwhere\n    " + strings.Join(preds, ",\n    ")
}

func (w typeWriter) wherePredicate(raw json.RawMessage) string {
	var p struct {
		BoundPredicate *struct {
			Type          json.RawMessage   `json:"type"`
			Bounds        []json.RawMessage `json:"bounds"`
			GenericParams []json.RawMessage `json:"generic_params"`
		} `json:"bound_predicate"`
		LifetimePredicate *struct {
			Lifetime string   `json:"lifetime"`
			Outlives []string `json:"outlives"`
		} `json:"lifetime_predicate"`
		EqPredicate *struct {
			LHS json.RawMessage `json:"lhs"`
			RHS json.RawMessage `json:"rhs"`
		} `json:"eq_predicate"`
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		return ""
	}
	switch {
	case p.BoundPredicate != nil:
		bp := p.BoundPredicate
		return w.forParams(bp.GenericParams) + w.typ(bp.Type) + ": " + w.bounds(bp.Bounds)
	case p.LifetimePredicate != nil:
		lp := p.LifetimePredicate
		return esc(lp.Lifetime) + ": " + esc(strings.Join(lp.Outlives, " + "))
	case p.EqPredicate != nil:
		return w.typ(p.EqPredicate.LHS) + " = " + w.term(p.EqPredicate.RHS)
	}
	return ""
}

// headerQualifiers renders "const async unsafe extern "C" " as needed.
func headerQualifiers(h rustdoc.FnHeader) string {
	var b strings.Builder
	if h.IsConst {
		b.WriteString("const ")
	}
	if h.IsAsync {
		b.WriteString("async ")
	}
	if h.IsUnsafe {
		b.WriteString("unsafe ")
	}
	if abi := abiName(h.ABI); abi != "" && abi != "Rust" {
		b.WriteString(`extern &quot;` + esc(abi) + `&quot; `)
	}
	return b.String()
}

// abiName extracts the ABI from "Rust" or {"C": {"unwind": false}}.
func abiName(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	var m map[string]json.RawMessage
	if json.Unmarshal(raw, &m) == nil {
		for k := range m {
			if k == "Other" {
				return unquote(m[k])
			}
			return k
		}
	}
	return ""
}
