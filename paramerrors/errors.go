// Package paramerrors provides structured error types for restparams.
//
// These error types enable programmatic error handling via errors.Is() and
// errors.As(), allowing callers to distinguish a broken declaration from a
// request that simply failed validation.
//
// # Error Categories
//
//   - ConfigError: malformed declarations, raised while compiling (never at request time)
//   - MissingParameterError: a required parameter is absent from the request
//   - TypeCoercionError: a value cannot be converted to the declared type
//   - InvalidOptionError: a value is not one of the declared options
//   - LookupNotFoundError: a model lookup matched no record
//   - ConstraintViolationError: an eq/lt/lte/gt/gte bound failed
//
// # Usage with errors.Is
//
//	p, err := params.New(decls)
//	if errors.Is(err, paramerrors.ErrConfig) {
//	    log.Fatal(err)
//	}
package paramerrors

import (
	"errors"
	"fmt"
)

// Sentinel errors for use with errors.Is().
var (
	// ErrConfig indicates an invalid parameter declaration.
	ErrConfig = errors.New("configuration error")

	// ErrMissingParameter indicates a required parameter was not supplied.
	ErrMissingParameter = errors.New("missing parameter")

	// ErrTypeCoercion indicates a value could not be coerced to its declared type.
	ErrTypeCoercion = errors.New("type coercion error")

	// ErrInvalidOption indicates a value outside a declared set of options.
	ErrInvalidOption = errors.New("invalid option")

	// ErrLookupNotFound indicates a model lookup found no matching record.
	ErrLookupNotFound = errors.New("lookup not found")

	// ErrConstraintViolation indicates a value or length bound failed.
	ErrConstraintViolation = errors.New("constraint violation")

	// ErrRecordNotFound is returned (or wrapped) by model stores when no
	// record matches a lookup. The validator normalizes it to a
	// LookupNotFoundError.
	ErrRecordNotFound = errors.New("record not found")
)

// ConfigError represents an invalid parameter declaration.
type ConfigError struct {
	// Key is the full declaration key (e.g., "my_str__length__lt")
	Key string
	// Value is the invalid value that was provided (may be nil)
	Value any
	// Message describes the configuration error
	Message string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *ConfigError) Error() string {
	msg := "configuration error"
	if e.Key != "" {
		msg += " for " + e.Key
	}
	if e.Value != nil {
		msg += fmt.Sprintf(" (value: %v)", e.Value)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *ConfigError) Is(target error) bool {
	return target == ErrConfig
}

// MissingParameterError represents a required parameter absent from the request.
type MissingParameterError struct {
	// Param is the request-facing parameter name
	Param string
}

// Error returns a human-readable error message.
func (e *MissingParameterError) Error() string {
	return "Param is missing"
}

// Is reports whether target matches this error type.
func (e *MissingParameterError) Is(target error) bool {
	return target == ErrMissingParameter
}

// TypeCoercionError represents a value that could not be converted to its
// declared type.
type TypeCoercionError struct {
	// Type is the declared type name (e.g., "int")
	Type string
	// Value is the raw value that failed coercion
	Value any
	// Cause is the underlying parse error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *TypeCoercionError) Error() string {
	msg := fmt.Sprintf("invalid %s value %q", e.Type, fmt.Sprint(e.Value))
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *TypeCoercionError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *TypeCoercionError) Is(target error) bool {
	return target == ErrTypeCoercion
}

// InvalidOptionError represents a value that is not a member of the declared options.
type InvalidOptionError struct {
	// Value is the rejected value
	Value any
	// Options are the allowed values, in declaration order
	Options []any
}

// Error returns a human-readable error message.
func (e *InvalidOptionError) Error() string {
	return fmt.Sprintf("invalid option %q: Must be one of: %v", fmt.Sprint(e.Value), e.Options)
}

// Is reports whether target matches this error type.
func (e *InvalidOptionError) Is(target error) bool {
	return target == ErrInvalidOption
}

// LookupNotFoundError represents a model lookup that matched no record.
type LookupNotFoundError struct {
	// Model is the model descriptor name (e.g., "User")
	Model string
	// Field is the lookup field
	Field string
	// Value is the sought value
	Value any
	// Cause is the store's not-found error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *LookupNotFoundError) Error() string {
	msg := "no"
	if e.Model != "" {
		msg += " " + e.Model
	}
	return fmt.Sprintf("%s record with %s=%q", msg, e.Field, fmt.Sprint(e.Value))
}

// Unwrap returns the underlying cause for error chaining.
func (e *LookupNotFoundError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *LookupNotFoundError) Is(target error) bool {
	return target == ErrLookupNotFound
}

// ConstraintViolationError represents a failed comparison bound.
type ConstraintViolationError struct {
	// Subject is "Value" for numeric bounds or "Length" for text length bounds
	Subject string
	// Op is the bound that failed: "eq", "lt", "lte", "gt" or "gte"
	Op string
	// Bound is the configured bound value
	Bound float64
	// Actual is the value (or length) that was compared
	Actual float64
}

// Error returns a human-readable error message.
func (e *ConstraintViolationError) Error() string {
	return fmt.Sprintf("%s must be %s %s", e.Subject, opPhrase(e.Op), formatBound(e.Bound))
}

// Is reports whether target matches this error type.
func (e *ConstraintViolationError) Is(target error) bool {
	return target == ErrConstraintViolation
}

func opPhrase(op string) string {
	switch op {
	case "eq":
		return "equal to"
	case "lt":
		return "less than"
	case "lte":
		return "less than or equal to"
	case "gt":
		return "greater than"
	case "gte":
		return "greater than or equal to"
	default:
		return op
	}
}

// formatBound prints integral bounds without a trailing ".0".
func formatBound(f float64) string {
	return fmt.Sprintf("%v", f)
}

// Reason returns a short label for the category of a request-time error.
// It returns "internal" for errors outside the taxonomy.
func Reason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMissingParameter):
		return "missing"
	case errors.Is(err, ErrTypeCoercion):
		return "type"
	case errors.Is(err, ErrInvalidOption):
		return "option"
	case errors.Is(err, ErrLookupNotFound):
		return "lookup"
	case errors.Is(err, ErrConstraintViolation):
		return "constraint"
	case errors.Is(err, ErrConfig):
		return "config"
	default:
		return "internal"
	}
}
