package params

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/erraggy/restparams/internal/metrics"
	"github.com/erraggy/restparams/paramerrors"
)

// Validator validates requests against a compiled SpecSet. It holds no
// per-request state and is safe for concurrent use.
type Validator struct {
	specs       *SpecSet
	logger      Logger
	metrics     *metrics.Metrics
	handlerName   string
	strictBool    bool
	zeroIsPresent bool
}

// NewValidator creates a Validator for specs.
//
// Returns an error if specs is nil or an option is invalid.
func NewValidator(specs *SpecSet, opts ...Option) (*Validator, error) {
	if specs == nil {
		return nil, fmt.Errorf("restparams: spec set cannot be nil")
	}
	cfg, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}
	return newValidator(specs, cfg), nil
}

func newValidator(specs *SpecSet, cfg *config) *Validator {
	var m *metrics.Metrics
	if cfg.registerer != nil {
		m = metrics.New(cfg.registerer)
	}
	return &Validator{
		specs:       specs,
		logger:      cfg.logger.With("handler", cfg.handlerName),
		metrics:     m,
		handlerName:   cfg.handlerName,
		strictBool:    cfg.strictBool,
		zeroIsPresent: cfg.zeroIsPresent,
	}
}

// Specs returns the validator's spec set.
func (v *Validator) Specs() *SpecSet {
	return v.specs
}

// Validate validates req against every spec, in declaration order.
//
// Validation stops at the first parameter that fails; that failure is
// reported in Result.Rejection and no other parameter is examined. On
// success Result.Args holds a value for every declared parameter.
//
// The error return is reserved for internal failures, such as a model store
// error other than "not found"; validation failures are captured in the result.
func (v *Validator) Validate(ctx context.Context, req *Request) (*Result, error) {
	if req == nil {
		return nil, fmt.Errorf("restparams: request cannot be nil")
	}

	args := make(Args, v.specs.Len())
	for _, spec := range v.specs.specs {
		value, err := v.validateParam(ctx, spec, req)
		if err != nil {
			if !isRejection(err) {
				v.logger.Error("parameter validation failed", "param", spec.RequestName, "error", err)
				v.metrics.Failed(v.handlerName)
				return nil, fmt.Errorf("restparams: param %q: %w", spec.RequestName, err)
			}

			rejection := &Rejection{Param: spec.RequestName, Cause: err}
			v.logger.Debug("rejected request",
				"method", req.Method,
				"param", spec.RequestName,
				"reason", rejection.Reason(),
				"error", err.Error(),
			)
			v.metrics.Rejected(v.handlerName, spec.RequestName, rejection.Reason())
			return &Result{Rejection: rejection}, nil
		}
		args[spec.CodeName] = value
	}

	v.metrics.Accepted(v.handlerName)
	return &Result{Valid: true, Args: args}, nil
}

// isRejection reports whether err is a request-time validation failure.
func isRejection(err error) bool {
	return errors.Is(err, paramerrors.ErrMissingParameter) ||
		errors.Is(err, paramerrors.ErrTypeCoercion) ||
		errors.Is(err, paramerrors.ErrInvalidOption) ||
		errors.Is(err, paramerrors.ErrLookupNotFound) ||
		errors.Is(err, paramerrors.ErrConstraintViolation)
}

// validateParam finds, coerces and bound-checks one parameter.
func (v *Validator) validateParam(ctx context.Context, spec *Spec, req *Request) (any, error) {
	raw, source := v.findValue(spec, req)
	if source == 0 {
		if !spec.Optional {
			return nil, &paramerrors.MissingParameterError{Param: spec.RequestName}
		}
		return spec.Default, nil
	}

	if !spec.Many {
		if list, ok := raw.([]string); ok {
			// Repeated query or form key: the last value wins.
			raw = list[len(list)-1]
		}
		value, err := v.coerce(ctx, spec, raw)
		if err != nil {
			return nil, err
		}
		if err := checkBounds(spec, value); err != nil {
			return nil, err
		}
		return value, nil
	}

	items := splitMany(raw, source)
	values := make([]any, len(items))
	for i, item := range items {
		value, err := v.coerce(ctx, spec, item)
		if err != nil {
			return nil, err
		}
		values[i] = value
	}
	for _, value := range values {
		if err := checkBounds(spec, value); err != nil {
			return nil, err
		}
	}
	return values, nil
}

// findValue looks the parameter up in POST data, then GET data, honoring the
// allowed methods. It returns the source that supplied the value, or 0 when
// the parameter is absent.
func (v *Validator) findValue(spec *Spec, req *Request) (any, MethodSet) {
	allowed := spec.Methods
	if allowed == 0 {
		allowed = defaultMethods(req.Method)
	}

	if allowed.Has(MethodPOST) {
		if raw, ok := req.POST[spec.RequestName]; ok && !v.isAbsent(raw) {
			return raw, MethodPOST
		}
	}
	if allowed.Has(MethodGET) {
		if raw, ok := req.GET[spec.RequestName]; ok && !v.isAbsent(raw) {
			return raw, MethodGET
		}
	}
	return nil, 0
}

// isAbsent reports whether a present key carries no value: nil, an empty
// string, list or object, and unless zeroIsPresent is set, false and
// numeric zero.
func (v *Validator) isAbsent(raw any) bool {
	switch r := raw.(type) {
	case nil:
		return true
	case string:
		return r == ""
	case []any:
		return len(r) == 0
	case []string:
		return len(r) == 0
	case map[string]any:
		return len(r) == 0
	}
	if v.zeroIsPresent {
		return false
	}
	switch r := raw.(type) {
	case bool:
		return !r
	case json.Number:
		f, err := r.Float64()
		return err == nil && f == 0
	}
	if f, ok := toFloat(raw); ok {
		return f == 0
	}
	return false
}

// splitMany turns a Many parameter's raw value into its elements. Query
// string values are comma-separated text; body values are used as-is when
// they are lists and wrapped otherwise.
func splitMany(raw any, source MethodSet) []any {
	if source == MethodGET {
		var text string
		if list, ok := raw.([]string); ok {
			text = strings.Join(list, ",")
		} else {
			text = fmt.Sprint(raw)
		}
		parts := strings.Split(text, ",")
		items := make([]any, len(parts))
		for i, p := range parts {
			items[i] = p
		}
		return items
	}

	switch list := raw.(type) {
	case []any:
		return list
	case []string:
		items := make([]any, len(list))
		for i, s := range list {
			items[i] = s
		}
		return items
	}
	return []any{raw}
}
