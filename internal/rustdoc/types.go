package rustdoc

import (
	"encoding/json"
	"fmt"
)

// ID identifies an item within a single rustdoc JSON document.
type ID uint32

// Crate is the top-level structure of rustdoc JSON output.
type Crate struct {
	Root           ID                       `json:"root"`
	CrateVersion   *string                  `json:"crate_version"`
	Index          map[ID]*Item             `json:"index"`
	Paths          map[ID]Summary           `json:"paths"`
	ExternalCrates map[uint32]ExternalCrate `json:"external_crates"`
	FormatVersion  int                      `json:"format_version"`
}

// Name returns the crate name, taken from the root module.
func (c *Crate) Name() string {
	if root, ok := c.Index[c.Root]; ok && root.Name != nil {
		return *root.Name
	}
	return "crate"
}

// Version returns the crate version recorded by rustdoc, or "".
func (c *Crate) Version() string {
	if c.CrateVersion == nil {
		return ""
	}
	return *c.CrateVersion
}

// ExternalCrate identifies a dependency crate by name.
type ExternalCrate struct {
	Name        string `json:"name"`
	HTMLRootURL string `json:"html_root_url"`
}

// Summary provides the path and kind for an item.
type Summary struct {
	CrateID uint32   `json:"crate_id"`
	Path    []string `json:"path"`
	Kind    string   `json:"kind"`
}

// Item is a single item in the rustdoc index.
type Item struct {
	ID          ID            `json:"id"`
	CrateID     uint32        `json:"crate_id"`
	Name        *string       `json:"name"`
	Visibility  Visibility    `json:"visibility"`
	Docs        *string       `json:"docs"`
	Links       map[string]ID `json:"links"` // markdown link text → item ID
	Deprecation *Deprecation  `json:"deprecation"`
	Inner       Inner         `json:"inner"`
}

// DisplayName returns the item's name. Use items report the name they
// introduce, which rustdoc stores in the payload rather than on the item.
func (it *Item) DisplayName() string {
	if it.Inner.Use != nil {
		return it.Inner.Use.Name
	}
	if it.Name != nil {
		return *it.Name
	}
	return ""
}

// Kind reports the item's kind, derived from its payload.
func (it *Item) Kind() Kind {
	return it.Inner.Kind
}

// IsPublic reports whether the item is declared pub.
func (it *Item) IsPublic() bool {
	return it.Visibility == VisibilityPublic
}

// DocString returns the item's documentation, or "".
func (it *Item) DocString() string {
	if it.Docs == nil {
		return ""
	}
	return *it.Docs
}

// Deprecation carries #[deprecated] metadata.
type Deprecation struct {
	Since *string `json:"since"`
	Note  *string `json:"note"`
}

// Visibility is the declared visibility of an item. Restricted visibility
// (pub(in path)) collapses to VisibilityRestricted.
type Visibility string

const (
	VisibilityPublic     Visibility = "public"
	VisibilityDefault    Visibility = "default"
	VisibilityCrate      Visibility = "crate"
	VisibilityRestricted Visibility = "restricted"
)

func (v *Visibility) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = Visibility(s)
		return nil
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("decoding visibility: %w", err)
	}
	for k := range obj {
		*v = Visibility(k)
	}
	return nil
}

// Inner is the kind-specific payload of an item. Exactly one payload field
// is set for a known kind; Kind is KindOther for anything unrecognized.
type Inner struct {
	Kind Kind
	Tag  string

	Module      *Module
	Struct      *Struct
	Union       *Union
	Enum        *Enum
	Variant     *Variant
	StructField json.RawMessage
	Trait       *Trait
	Function    *Function
	TypeAlias   *TypeAlias
	Constant    *Constant
	Static      *Static
	Macro       *string
	ProcMacro   *ProcMacro
	Impl        *Impl
	Use         *Use
	AssocConst  *AssocConst
	AssocType   *AssocType
}

func (in *Inner) UnmarshalJSON(data []byte) error {
	// Unit variants serialize as a bare string, e.g. "extern_type".
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &in.Tag); err != nil {
			return err
		}
		in.Kind = KindOther
		return nil
	}

	var outer map[string]json.RawMessage
	if err := json.Unmarshal(data, &outer); err != nil {
		return fmt.Errorf("decoding item inner: %w", err)
	}
	for tag, payload := range outer {
		in.Tag = tag
		in.Kind = ParseKind(tag)
		if err := in.decode(tag, payload); err != nil {
			return fmt.Errorf("decoding %s payload: %w", tag, err)
		}
	}
	return nil
}

func (in *Inner) decode(tag string, payload json.RawMessage) error {
	var target any
	switch tag {
	case "module":
		in.Module = new(Module)
		target = in.Module
	case "struct":
		in.Struct = new(Struct)
		target = in.Struct
	case "union":
		in.Union = new(Union)
		target = in.Union
	case "enum":
		in.Enum = new(Enum)
		target = in.Enum
	case "variant":
		in.Variant = new(Variant)
		target = in.Variant
	case "struct_field":
		in.StructField = payload
		return nil
	case "trait":
		in.Trait = new(Trait)
		target = in.Trait
	case "function", "method":
		in.Function = new(Function)
		target = in.Function
	case "type_alias", "typedef":
		in.TypeAlias = new(TypeAlias)
		target = in.TypeAlias
	case "constant":
		in.Constant = new(Constant)
		target = in.Constant
	case "static":
		in.Static = new(Static)
		target = in.Static
	case "macro":
		in.Macro = new(string)
		target = in.Macro
	case "proc_macro":
		in.ProcMacro = new(ProcMacro)
		target = in.ProcMacro
	case "impl":
		in.Impl = new(Impl)
		target = in.Impl
	case "use", "import":
		in.Use = new(Use)
		target = in.Use
	case "assoc_const":
		in.AssocConst = new(AssocConst)
		target = in.AssocConst
	case "assoc_type":
		in.AssocType = new(AssocType)
		target = in.AssocType
	default:
		return nil
	}
	return json.Unmarshal(payload, target)
}

// Module is the payload of a module item.
type Module struct {
	IsCrate    bool `json:"is_crate"`
	Items      []ID `json:"items"`
	IsStripped bool `json:"is_stripped"`
}

// Generics holds generic parameters and where predicates. Bounds and
// predicates stay raw; they are formatted on demand.
type Generics struct {
	Params          []GenericParam    `json:"params"`
	WherePredicates []json.RawMessage `json:"where_predicates"`
}

// GenericParam is a single generic parameter definition.
type GenericParam struct {
	Name string          `json:"name"`
	Kind json.RawMessage `json:"kind"`
}

// Struct is the payload of a struct item.
type Struct struct {
	Kind     StructKind `json:"kind"`
	Generics Generics   `json:"generics"`
	Impls    []ID       `json:"impls"`
}

// StructKind is unit, tuple, or plain (named fields).
type StructKind struct {
	Unit  bool
	Tuple []*ID
	Plain *FieldList
}

// FieldList lists named fields.
type FieldList struct {
	Fields            []ID `json:"fields"`
	HasStrippedFields bool `json:"has_stripped_fields"`
}

func (k *StructKind) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		k.Unit = true
		return nil
	}
	var outer struct {
		Tuple []*ID      `json:"tuple"`
		Plain *FieldList `json:"plain"`
	}
	if err := json.Unmarshal(data, &outer); err != nil {
		return err
	}
	k.Tuple = outer.Tuple
	k.Plain = outer.Plain
	if k.Plain == nil && k.Tuple == nil {
		k.Unit = true
	}
	return nil
}

// Union is the payload of a union item.
type Union struct {
	Generics          Generics `json:"generics"`
	HasStrippedFields bool     `json:"has_stripped_fields"`
	Fields            []ID     `json:"fields"`
	Impls             []ID     `json:"impls"`
}

// Enum is the payload of an enum item.
type Enum struct {
	Generics            Generics `json:"generics"`
	HasStrippedVariants bool     `json:"has_stripped_variants"`
	Variants            []ID     `json:"variants"`
	Impls               []ID     `json:"impls"`
}

// Variant is the payload of an enum variant.
type Variant struct {
	Kind         VariantKind `json:"kind"`
	Discriminant *struct {
		Expr  string `json:"expr"`
		Value string `json:"value"`
	} `json:"discriminant"`
}

// VariantKind is plain, tuple, or struct-like.
type VariantKind struct {
	Plain  bool
	Tuple  []*ID
	Struct *FieldList
}

func (k *VariantKind) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		k.Plain = true
		return nil
	}
	var outer struct {
		Tuple  []*ID      `json:"tuple"`
		Struct *FieldList `json:"struct"`
	}
	if err := json.Unmarshal(data, &outer); err != nil {
		return err
	}
	k.Tuple = outer.Tuple
	k.Struct = outer.Struct
	if k.Struct == nil && k.Tuple == nil {
		k.Plain = true
	}
	return nil
}

// Trait is the payload of a trait item.
type Trait struct {
	IsAuto          bool              `json:"is_auto"`
	IsUnsafe        bool              `json:"is_unsafe"`
	Items           []ID              `json:"items"`
	Generics        Generics          `json:"generics"`
	Bounds          []json.RawMessage `json:"bounds"`
	Implementations []ID              `json:"implementations"`
}

// Function is the payload of a function or method item.
type Function struct {
	Sig      FnSig    `json:"sig"`
	Generics Generics `json:"generics"`
	Header   FnHeader `json:"header"`
	HasBody  bool     `json:"has_body"`
}

// FnSig is a function's inputs and output.
type FnSig struct {
	Inputs      []FnInput       `json:"inputs"`
	Output      json.RawMessage `json:"output"`
	IsCVariadic bool            `json:"is_c_variadic"`
}

// FnInput is one (name, type) parameter pair.
type FnInput struct {
	Name string
	Type json.RawMessage
}

func (p *FnInput) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("function input: expected [name, type], got %d elements", len(pair))
	}
	if err := json.Unmarshal(pair[0], &p.Name); err != nil {
		return err
	}
	p.Type = pair[1]
	return nil
}

// FnHeader holds function qualifiers.
type FnHeader struct {
	IsConst  bool            `json:"is_const"`
	IsUnsafe bool            `json:"is_unsafe"`
	IsAsync  bool            `json:"is_async"`
	ABI      json.RawMessage `json:"abi"`
}

// TypeAlias is the payload of a type alias item.
type TypeAlias struct {
	Type     json.RawMessage `json:"type"`
	Generics Generics        `json:"generics"`
}

// Constant is the payload of a constant item. Newer formats nest the
// expression under "const"; older ones inline it.
type Constant struct {
	Type  json.RawMessage `json:"type"`
	Const *struct {
		Expr  string  `json:"expr"`
		Value *string `json:"value"`
	} `json:"const"`
	Expr  string  `json:"expr"`
	Value *string `json:"value"`
}

// Expression returns the constant's source expression.
func (c *Constant) Expression() string {
	if c.Const != nil {
		return c.Const.Expr
	}
	return c.Expr
}

// Static is the payload of a static item.
type Static struct {
	Type      json.RawMessage `json:"type"`
	IsMutable bool            `json:"is_mutable"`
	IsUnsafe  bool            `json:"is_unsafe"`
	Expr      string          `json:"expr"`
}

// ProcMacro is the payload of a procedural macro.
type ProcMacro struct {
	Kind    string   `json:"kind"` // bang, attr, derive
	Helpers []string `json:"helpers"`
}

// Impl is the payload of an implementation block.
type Impl struct {
	IsUnsafe             bool            `json:"is_unsafe"`
	Generics             Generics        `json:"generics"`
	ProvidedTraitMethods []string        `json:"provided_trait_methods"`
	Trait                *Path           `json:"trait"`
	For                  json.RawMessage `json:"for"`
	Items                []ID            `json:"items"`
	IsNegative           bool            `json:"is_negative"`
	IsSynthetic          bool            `json:"is_synthetic"`
	BlanketImpl          json.RawMessage `json:"blanket_impl"`
}

// IsBlanket reports whether the impl is a blanket impl (impl<T> Trait for T).
func (im *Impl) IsBlanket() bool {
	return len(im.BlanketImpl) > 0 && string(im.BlanketImpl) != "null"
}

// Path is a resolved path to an item, with optional generic args.
// Format versions before 41 call the path "name".
type Path struct {
	Path string          `json:"path"`
	Name string          `json:"name"`
	ID   ID              `json:"id"`
	Args json.RawMessage `json:"args"`
}

// Display returns the path as written in source.
func (p *Path) Display() string {
	if p.Path != "" {
		return p.Path
	}
	return p.Name
}

// Use is the payload of a use (re-export) item.
type Use struct {
	Source string `json:"source"`
	Name   string `json:"name"`
	ID     *ID    `json:"id"`
	IsGlob bool   `json:"is_glob"`
}

// AssocConst is an associated constant in a trait or impl.
type AssocConst struct {
	Type    json.RawMessage `json:"type"`
	Value   *string         `json:"value"`
	Default *string         `json:"default"`
}

// AssocType is an associated type in a trait or impl.
type AssocType struct {
	Generics Generics          `json:"generics"`
	Bounds   []json.RawMessage `json:"bounds"`
	Type     json.RawMessage   `json:"type"`
	Default  json.RawMessage   `json:"default"`
}

// ResolvedPathID extracts the target ID of a {"resolved_path": ...} type.
func ResolvedPathID(typeJSON json.RawMessage) (ID, bool) {
	if len(typeJSON) == 0 {
		return 0, false
	}
	var outer struct {
		ResolvedPath *Path `json:"resolved_path"`
	}
	if err := json.Unmarshal(typeJSON, &outer); err != nil || outer.ResolvedPath == nil {
		return 0, false
	}
	return outer.ResolvedPath.ID, true
}
