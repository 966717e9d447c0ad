package params

import (
	"cmp"
	"unicode/utf8"

	"github.com/erraggy/restparams/paramerrors"
)

// checkBounds enforces the spec's bounds on one coerced value. Numeric
// kinds are bounded by value, strings by length in characters. Other kinds
// are not checked.
//
// When eq is set it is the only bound evaluated. Otherwise lt, lte, gt and
// gte are evaluated in that order and the first failure is reported.
func checkBounds(spec *Spec, value any) error {
	if spec.Bounds.IsZero() {
		return nil
	}

	var (
		actual  float64
		whole   int64
		isWhole bool
		subject string
	)
	switch {
	case numericScalar(spec.Kind):
		f, ok := toFloat(value)
		if !ok {
			return nil
		}
		actual, subject = f, "Value"
		whole, isWhole = toInt64(value)
	case textScalar(spec.Kind):
		s, ok := value.(string)
		if !ok {
			return nil
		}
		n := utf8.RuneCountInString(s)
		actual, subject = float64(n), "Length"
		whole, isWhole = int64(n), true
	default:
		return nil
	}

	b, e := spec.Bounds, spec.exact
	// compare orders the value against a bound, exactly when both are integers.
	compare := func(bound *float64, exact *int64) int {
		if isWhole && exact != nil {
			return cmp.Compare(whole, *exact)
		}
		return cmp.Compare(actual, *bound)
	}
	violation := func(op string, bound float64) error {
		return &paramerrors.ConstraintViolationError{Subject: subject, Op: op, Bound: bound, Actual: actual}
	}

	if b.Eq != nil {
		if compare(b.Eq, e.Eq) != 0 {
			return violation("eq", *b.Eq)
		}
		return nil
	}
	if b.Lt != nil && compare(b.Lt, e.Lt) >= 0 {
		return violation("lt", *b.Lt)
	}
	if b.Lte != nil && compare(b.Lte, e.Lte) > 0 {
		return violation("lte", *b.Lte)
	}
	if b.Gt != nil && compare(b.Gt, e.Gt) <= 0 {
		return violation("gt", *b.Gt)
	}
	if b.Gte != nil && compare(b.Gte, e.Gte) < 0 {
		return violation("gte", *b.Gte)
	}
	return nil
}
