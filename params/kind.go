package params

import "fmt"

// Type is a primitive type marker used as the value of a bare declaration,
// e.g. D("my_int", Int).
type Type int

// Primitive type markers.
const (
	// Int coerces values to int64.
	Int Type = iota + 1
	// Float coerces values to float64.
	Float
	// String requires a string value and normalizes it to Unicode NFC.
	String
	// Bool coerces values by truthiness (or strictly, see WithStrictBool).
	Bool
)

// String returns the declaration name of the type.
func (t Type) String() string {
	switch t {
	case Int:
		return "int"
	case Float:
		return "float"
	case String:
		return "str"
	case Bool:
		return "bool"
	default:
		return fmt.Sprintf("Type(%d)", int(t))
	}
}

// valid reports whether t is one of the declared markers.
func (t Type) valid() bool {
	return t >= Int && t <= Bool
}

// Kind is the closed set of validation strategies a Spec can use:
// ScalarKind, EnumKind or LookupKind.
type Kind interface {
	isKind()
	// Name returns a short, human-readable description of the kind.
	Name() string
}

// ScalarKind validates a value of a primitive Type.
type ScalarKind struct {
	Type Type
}

func (ScalarKind) isKind() {}

// Name implements Kind.
func (k ScalarKind) Name() string { return k.Type.String() }

// EnumKind validates that a value is one of a fixed set of options.
type EnumKind struct {
	Options []any
}

func (EnumKind) isKind() {}

// Name implements Kind.
func (k EnumKind) Name() string { return fmt.Sprintf("one of %v", k.Options) }

// LookupKind resolves a value into a record from a model store.
type LookupKind struct {
	// Model is the injected store descriptor.
	Model Model
	// Field is the lookup field. Defaults to "id".
	Field string
	// Deferred asks the store for a minimal projection. Defaults to true.
	Deferred bool
}

func (LookupKind) isKind() {}

// Name implements Kind.
func (k LookupKind) Name() string { return "model " + k.Model.Name }

// Compile-time checks that the variants implement Kind.
var (
	_ Kind = ScalarKind{}
	_ Kind = EnumKind{}
	_ Kind = LookupKind{}
)

// numericScalar reports whether k bounds the value itself.
func numericScalar(k Kind) bool {
	s, ok := k.(ScalarKind)
	return ok && (s.Type == Int || s.Type == Float)
}

// textScalar reports whether k bounds the value's length.
func textScalar(k Kind) bool {
	s, ok := k.(ScalarKind)
	return ok && s.Type == String
}
