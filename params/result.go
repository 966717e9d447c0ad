package params

import (
	"github.com/erraggy/restparams/paramerrors"
)

// Args holds validated parameter values keyed by code name.
type Args map[string]any

// Value returns the raw validated value for name.
func (a Args) Value(name string) (any, bool) {
	v, ok := a[name]
	return v, ok
}

// Int returns the value of an Int parameter, or of a declared default of
// any Go integer kind. It returns 0 when the parameter is absent or not an
// integer (e.g. an unset optional).
func (a Args) Int(name string) int64 {
	i, _ := toInt64(a[name])
	return i
}

// Float returns the value of a Float parameter. Integer defaults are
// widened to float64.
func (a Args) Float(name string) float64 {
	f, _ := toFloat(a[name])
	return f
}

// String returns the value of a String parameter.
func (a Args) String(name string) string {
	s, _ := a[name].(string)
	return s
}

// Bool returns the value of a Bool parameter.
func (a Args) Bool(name string) bool {
	b, _ := a[name].(bool)
	return b
}

// Slice returns the values of a Many parameter.
func (a Args) Slice(name string) []any {
	s, _ := a[name].([]any)
	return s
}

// merge returns a new Args holding extra overlaid by a.
func (a Args) merge(extra Args) Args {
	out := make(Args, len(a)+len(extra))
	for k, v := range extra {
		out[k] = v
	}
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Rejection is the single validation failure reported for a request.
type Rejection struct {
	// Param is the request-facing parameter name.
	Param string
	// Cause is the underlying paramerrors error.
	Cause error
}

// Error returns the message used in the 400 response body:
//
//	Invalid param "my_int": Param is missing
func (r *Rejection) Error() string {
	cause := "<nil>"
	if r.Cause != nil {
		cause = r.Cause.Error()
	}
	return `Invalid param "` + r.Param + `": ` + cause
}

// Unwrap returns the underlying cause for error chaining.
func (r *Rejection) Unwrap() error {
	return r.Cause
}

// Reason returns the short category label of the cause (e.g. "missing").
func (r *Rejection) Reason() string {
	return paramerrors.Reason(r.Cause)
}

// Result contains the outcome of validating one request.
type Result struct {
	// Valid is true if every parameter was accepted.
	Valid bool

	// Args contains the validated values for every declared parameter.
	// It is nil when Valid is false.
	Args Args

	// Rejection is the first failure encountered. Nil when Valid is true.
	Rejection *Rejection
}
