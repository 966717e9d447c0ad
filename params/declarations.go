package params

// Declaration is a single keyword of the flat declaration grammar.
//
// Key is either a bare parameter name ("my_int"), whose Value declares the
// parameter's type, or a name followed by modifiers ("my_int__lt",
// "my_str__length__gte"), whose Value configures that modifier. Only the last
// modifier segment is significant.
type Declaration struct {
	Key   string
	Value any
}

// Declarations is an ordered list of declarations. Order is preserved so
// that parameters are validated, and rejected, in declaration order.
type Declarations []Declaration

// D is shorthand for constructing a Declaration.
func D(key string, value any) Declaration {
	return Declaration{Key: key, Value: value}
}

// Options is an explicit set of allowed values for an enumeration:
//
//	params.D("color", params.Options{"red", "green"})
//
// Plain []any, []string, []int and []float64 values are accepted as well.
//
// Numeric options match by value, so a query string "2" (or "2.0", or a
// JSON body 2) selects option 2 and is passed to the handler unchanged.
// String and bool options match only values of the same type.
type Options []any

// modifierSeparator separates the base name from its modifiers.
const modifierSeparator = "__"
