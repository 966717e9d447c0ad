package params

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/erraggy/restparams/paramerrors"
)

// coerce converts one raw request value to the spec's declared kind.
// It does not take Spec.Many into account.
func (v *Validator) coerce(ctx context.Context, spec *Spec, raw any) (any, error) {
	switch k := spec.Kind.(type) {
	case EnumKind:
		for _, opt := range k.Options {
			if optionEqual(opt, raw) {
				return raw, nil
			}
		}
		return nil, &paramerrors.InvalidOptionError{Value: raw, Options: k.Options}

	case ScalarKind:
		switch k.Type {
		case Int:
			return coerceInt(raw)
		case Float:
			return coerceFloat(raw)
		case String:
			return coerceString(raw)
		case Bool:
			if v.strictBool {
				return coerceStrictBool(raw)
			}
			return truthy(raw), nil
		}

	case LookupKind:
		return v.lookup(ctx, k, raw)
	}

	return nil, &paramerrors.ConfigError{Key: spec.CodeName, Message: fmt.Sprintf("Invalid param type: %v", spec.Kind)}
}

// lookup resolves raw into a record through the model store.
func (v *Validator) lookup(ctx context.Context, k LookupKind, raw any) (any, error) {
	q := LookupQuery{Field: k.Field, Value: raw, Deferred: k.Deferred}
	record, err := k.Model.Store.Get(ctx, q)
	if err != nil {
		if k.Model.notFound(err) {
			return nil, &paramerrors.LookupNotFoundError{Model: k.Model.Name, Field: k.Field, Value: raw, Cause: err}
		}
		return nil, fmt.Errorf("lookup %s by %s: %w", k.Model.Name, k.Field, err)
	}
	if record == nil {
		return nil, &paramerrors.LookupNotFoundError{Model: k.Model.Name, Field: k.Field, Value: raw}
	}
	return record, nil
}

func coerceInt(raw any) (any, error) {
	fail := func(cause error) error {
		return &paramerrors.TypeCoercionError{Type: Int.String(), Value: raw, Cause: cause}
	}

	switch n := raw.(type) {
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		if err != nil {
			return nil, fail(unwrapNumError(err))
		}
		return i, nil
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, nil
		}
		f, err := n.Float64()
		if err != nil {
			return nil, fail(unwrapNumError(err))
		}
		return integralFloat(f, fail)
	case float32:
		return integralFloat(float64(n), fail)
	case float64:
		return integralFloat(n, fail)
	case uint, uint64:
		u, _ := toUint64(n)
		if u > math.MaxInt64 {
			return nil, fail(strconv.ErrRange)
		}
		return int64(u), nil
	}

	if i, ok := toInt64(raw); ok {
		return i, nil
	}
	return nil, fail(nil)
}

func integralFloat(f float64, fail func(error) error) (any, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return nil, fail(fmt.Errorf("%v is not an integer", f))
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return nil, fail(strconv.ErrRange)
	}
	return int64(f), nil
}

func coerceFloat(raw any) (any, error) {
	switch n := raw.(type) {
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return nil, &paramerrors.TypeCoercionError{Type: Float.String(), Value: raw, Cause: unwrapNumError(err)}
		}
		return f, nil
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return nil, &paramerrors.TypeCoercionError{Type: Float.String(), Value: raw, Cause: unwrapNumError(err)}
		}
		return f, nil
	}

	if f, ok := toFloat(raw); ok {
		return f, nil
	}
	return nil, &paramerrors.TypeCoercionError{Type: Float.String(), Value: raw}
}

// coerceString requires a string-like value and returns its NFC form, so
// that composed and decomposed spellings of the same text compare equal.
func coerceString(raw any) (any, error) {
	switch s := raw.(type) {
	case string:
		return norm.NFC.String(s), nil
	case []byte:
		return norm.NFC.String(string(s)), nil
	}
	return nil, &paramerrors.TypeCoercionError{Type: String.String(), Value: raw}
}

func coerceStrictBool(raw any) (any, error) {
	switch b := raw.(type) {
	case bool:
		return b, nil
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(b))
		if err != nil {
			return nil, &paramerrors.TypeCoercionError{Type: Bool.String(), Value: raw, Cause: unwrapNumError(err)}
		}
		return parsed, nil
	}
	return nil, &paramerrors.TypeCoercionError{Type: Bool.String(), Value: raw}
}

// truthy reports the truthiness of a raw value: nil, false, empty strings,
// empty collections and numeric zero are false; everything else is true.
// In particular the string "false" is true.
func truthy(raw any) bool {
	switch v := raw.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	case json.Number:
		f, err := v.Float64()
		return err != nil || f != 0
	case []any:
		return len(v) > 0
	case []string:
		return len(v) > 0
	case map[string]any:
		return len(v) > 0
	}
	if f, ok := toFloat(raw); ok {
		return f != 0
	}
	return true
}

// optionEqual compares an enumeration option with a raw request value.
// Numbers compare numerically, so the query string value "2" matches the
// option 2.
func optionEqual(opt, raw any) bool {
	if of, ok := toFloat(opt); ok {
		rf, ok := numericValue(raw)
		return ok && rf == of
	}
	switch o := opt.(type) {
	case string:
		s, ok := raw.(string)
		return ok && s == o
	case bool:
		b, ok := raw.(bool)
		return ok && b == o
	}
	return opt == raw
}

// numericValue interprets a raw request value as a number, accepting
// numeric strings and json.Number.
func numericValue(raw any) (float64, bool) {
	switch v := raw.(type) {
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	}
	return toFloat(raw)
}

// toFloat converts Go numeric kinds (not bool, not strings) to float64.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	if i, ok := toInt64(v); ok {
		return float64(i), true
	}
	return 0, false
}

// toInt64 converts signed integers and the small unsigned kinds to int64.
func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	}
	return 0, false
}

func toUint64(v any) (uint64, bool) {
	switch n := v.(type) {
	case uint:
		return uint64(n), true
	case uint64:
		return n, true
	}
	return 0, false
}

// unwrapNumError strips the *strconv.NumError wrapper, whose message
// repeats the input that the coercion error already reports.
func unwrapNumError(err error) error {
	if ne, ok := err.(*strconv.NumError); ok { //nolint:errorlint // strconv returns the concrete type
		return ne.Err
	}
	return err
}
