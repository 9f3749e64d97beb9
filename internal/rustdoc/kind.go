package rustdoc

// Kind is the closed set of item kinds the renderer distinguishes.
type Kind int

const (
	KindOther Kind = iota
	KindModule
	KindStruct
	KindUnion
	KindEnum
	KindVariant
	KindStructField
	KindTrait
	KindFunction
	KindTypeAlias
	KindConstant
	KindStatic
	KindMacro
	KindImpl
	KindUse
)

var kindNames = [...]string{
	KindOther:       "other",
	KindModule:      "module",
	KindStruct:      "struct",
	KindUnion:       "union",
	KindEnum:        "enum",
	KindVariant:     "variant",
	KindStructField: "struct_field",
	KindTrait:       "trait",
	KindFunction:    "function",
	KindTypeAlias:   "type_alias",
	KindConstant:    "constant",
	KindStatic:      "static",
	KindMacro:       "macro",
	KindImpl:        "impl",
	KindUse:         "use",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "other"
	}
	return kindNames[k]
}

// ParseKind maps a rustdoc kind tag (from an item's inner payload or from
// the paths table) to a Kind. Unknown tags map to KindOther.
func ParseKind(tag string) Kind {
	switch tag {
	case "module":
		return KindModule
	case "struct":
		return KindStruct
	case "union":
		return KindUnion
	case "enum":
		return KindEnum
	case "variant":
		return KindVariant
	case "struct_field":
		return KindStructField
	case "trait":
		return KindTrait
	case "function", "method":
		return KindFunction
	case "type_alias", "typedef":
		return KindTypeAlias
	case "constant":
		return KindConstant
	case "static":
		return KindStatic
	case "macro", "proc_macro", "proc_attribute", "proc_derive":
		return KindMacro
	case "impl":
		return KindImpl
	case "use", "import":
		return KindUse
	default:
		return KindOther
	}
}

// sortOrder controls the order of items within a module listing.
func (k Kind) sortOrder() int {
	switch k {
	case KindModule:
		return 0
	case KindMacro:
		return 1
	case KindStruct:
		return 2
	case KindUnion:
		return 3
	case KindEnum:
		return 4
	case KindTrait:
		return 5
	case KindFunction:
		return 6
	case KindTypeAlias:
		return 7
	case KindConstant:
		return 8
	case KindStatic:
		return 9
	default:
		return 10
	}
}

// HasPage reports whether items of this kind get their own HTML page.
func (k Kind) HasPage() bool {
	switch k {
	case KindModule, KindStruct, KindUnion, KindEnum, KindTrait, KindFunction,
		KindTypeAlias, KindConstant, KindStatic, KindMacro:
		return true
	default:
		return false
	}
}
