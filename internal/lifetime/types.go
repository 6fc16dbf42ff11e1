package lifetime

// TypeTag is a minimal, closed subset of the language's type system: just
// enough to hold the defensive defaults the builder assigns to certain
// node kinds (spec.md §4.1) plus the two wrapper shapes InnerType needs to
// unwrap. Full inference is an external collaborator (spec.md §1); this
// core never produces anything richer than these defaults.
type TypeTag int

const (
	TypeUnknown TypeTag = iota
	TypeVoid
	TypeAny
	TypeBool
	TypeF64
	TypeText
	TypeArray
	TypeObject
	TypeVec4
	TypeLink
	TypeSecretBool
	TypeSecretF64
	TypeOption
	TypeResult
)

// Type is a defensive type value. Option and Result carry the wrapped
// type in Inner; every other tag leaves Inner nil.
type Type struct {
	Tag   TypeTag
	Inner *Type
}

func (t Type) String() string {
	switch t.Tag {
	case TypeOption:
		return "Option(" + t.innerString() + ")"
	case TypeResult:
		return "Result(" + t.innerString() + ")"
	case TypeVoid:
		return "void"
	case TypeAny:
		return "any"
	case TypeBool:
		return "bool"
	case TypeF64:
		return "f64"
	case TypeText:
		return "text"
	case TypeArray:
		return "array"
	case TypeObject:
		return "object"
	case TypeVec4:
		return "vec4"
	case TypeLink:
		return "link"
	case TypeSecretBool:
		return "secret(bool)"
	case TypeSecretF64:
		return "secret(f64)"
	default:
		return "unknown"
	}
}

func (t Type) innerString() string {
	if t.Inner == nil {
		return "unknown"
	}

	return t.Inner.String()
}

func ArrayType() Type      { return Type{Tag: TypeArray} }
func ObjectType() Type     { return Type{Tag: TypeObject} }
func Vec4Type() Type       { return Type{Tag: TypeVec4} }
func F64Type() Type        { return Type{Tag: TypeF64} }
func LinkType() Type       { return Type{Tag: TypeLink} }
func VoidType() Type       { return Type{Tag: TypeVoid} }
func AnyType() Type        { return Type{Tag: TypeAny} }
func BoolType() Type       { return Type{Tag: TypeBool} }
func TextType() Type       { return Type{Tag: TypeText} }
func SecretBoolType() Type { return Type{Tag: TypeSecretBool} }
func SecretF64Type() Type  { return Type{Tag: TypeSecretF64} }
