package params

import "net/http"

// MethodSet is the set of request data sources a parameter may be read from.
type MethodSet uint8

// Request data sources.
const (
	// MethodGET reads the parameter from the query string.
	MethodGET MethodSet = 1 << iota
	// MethodPOST reads the parameter from the request body.
	MethodPOST
)

// Has reports whether s contains m.
func (s MethodSet) Has(m MethodSet) bool {
	return s&m != 0
}

// String returns a readable form such as "GET|POST".
func (s MethodSet) String() string {
	switch s {
	case 0:
		return "default"
	case MethodGET:
		return http.MethodGet
	case MethodPOST:
		return http.MethodPost
	case MethodGET | MethodPOST:
		return http.MethodGet + "|" + http.MethodPost
	default:
		return "invalid"
	}
}

// defaultMethods returns the implicit source for a request method: POST
// data for POST and PUT requests, the query string otherwise.
func defaultMethods(requestMethod string) MethodSet {
	if requestMethod == http.MethodPost || requestMethod == http.MethodPut {
		return MethodPOST
	}
	return MethodGET
}

// Bounds holds the optional comparison bounds of a parameter. For numeric
// parameters they apply to the value, for string parameters to its length.
type Bounds struct {
	Eq  *float64
	Lt  *float64
	Lte *float64
	Gt  *float64
	Gte *float64
}

// IsZero reports whether no bound is set.
func (b Bounds) IsZero() bool {
	return b.Eq == nil && b.Lt == nil && b.Lte == nil && b.Gt == nil && b.Gte == nil
}

// exactBounds keeps integer-declared bounds unrounded so integer values
// above 2^53 compare exactly.
type exactBounds struct {
	Eq, Lt, Lte, Gt, Gte *int64
}

// Spec is the compiled validation rule set for one parameter.
// A Spec is immutable once Compile returns it.
type Spec struct {
	// CodeName is the key under which the validated value is passed to the handler.
	CodeName string

	// RequestName is the key looked up in request data. Defaults to CodeName.
	RequestName string

	// Kind is the validation strategy.
	Kind Kind

	// Methods restricts the request data sources. Zero means the
	// per-request default (see defaultMethods).
	Methods MethodSet

	// Bounds are the eq/lt/lte/gt/gte constraints.
	Bounds Bounds
	exact  exactBounds

	// Optional allows the parameter to be absent.
	Optional bool

	// Default is bound when an optional parameter is absent.
	Default any

	// HasDefault reports whether Default was declared.
	HasDefault bool

	// Many accepts a sequence of values instead of one.
	Many bool
}

// SpecSet is the ordered, read-only collection of specs compiled from a
// set of declarations. It is safe for concurrent use.
type SpecSet struct {
	specs []*Spec
	index map[string]*Spec
}

// Len returns the number of parameters.
func (s *SpecSet) Len() int {
	return len(s.specs)
}

// Get returns the spec for a code name.
func (s *SpecSet) Get(codeName string) (*Spec, bool) {
	spec, ok := s.index[codeName]
	return spec, ok
}

// Specs returns the specs in declaration order. The returned slice is a copy;
// the specs themselves must not be modified.
func (s *SpecSet) Specs() []*Spec {
	out := make([]*Spec, len(s.specs))
	copy(out, s.specs)
	return out
}

// Names returns the code names in declaration order.
func (s *SpecSet) Names() []string {
	names := make([]string, len(s.specs))
	for i, spec := range s.specs {
		names[i] = spec.CodeName
	}
	return names
}
