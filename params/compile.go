package params

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/erraggy/restparams/paramerrors"
)

// specBuilder accumulates the declarations of one parameter.
type specBuilder struct {
	spec     *Spec
	typeKey  string
	field    string
	deferred bool
}

// Compile builds a SpecSet from declarations.
//
// Compilation runs in two passes. The first pass creates an empty spec for
// every distinct base name, in order of first appearance. The second pass
// applies each declaration to its spec. Any malformed declaration fails with
// a *paramerrors.ConfigError; compilation never touches a request.
func Compile(decls Declarations) (*SpecSet, error) {
	builders := make(map[string]*specBuilder, len(decls))
	order := make([]string, 0, len(decls))

	for _, d := range decls {
		base, _, _ := strings.Cut(d.Key, modifierSeparator)
		if base == "" {
			return nil, &paramerrors.ConfigError{Key: d.Key, Message: "declaration key has no parameter name"}
		}
		if _, ok := builders[base]; ok {
			continue
		}
		builders[base] = &specBuilder{
			spec:     &Spec{CodeName: base, RequestName: base},
			field:    DefaultLookupField,
			deferred: true,
		}
		order = append(order, base)
	}

	for _, d := range decls {
		parts := strings.Split(d.Key, modifierSeparator)
		b := builders[parts[0]]

		var err error
		if len(parts) == 1 {
			err = b.setKind(d)
		} else {
			// Only the last segment matters; intermediate segments such as
			// "length" in "my_str__length__lt" are documentation.
			err = b.applyModifier(parts[len(parts)-1], d)
		}
		if err != nil {
			return nil, err
		}
	}

	set := &SpecSet{
		specs: make([]*Spec, 0, len(order)),
		index: make(map[string]*Spec, len(order)),
	}
	for _, name := range order {
		spec, err := builders[name].build()
		if err != nil {
			return nil, err
		}
		set.specs = append(set.specs, spec)
		set.index[name] = spec
	}
	return set, nil
}

// MustCompile is like Compile but panics on error. It is intended for
// package-level declarations where a broken declaration must abort startup.
func MustCompile(decls Declarations) *SpecSet {
	set, err := Compile(decls)
	if err != nil {
		panic(err)
	}
	return set
}

// setKind applies a bare declaration, whose value is the parameter type.
func (b *specBuilder) setKind(d Declaration) error {
	if b.typeKey != "" {
		return &paramerrors.ConfigError{Key: d.Key, Message: "type already declared by " + b.typeKey}
	}

	kind, err := kindOf(d)
	if err != nil {
		return err
	}
	b.spec.Kind = kind
	b.typeKey = d.Key
	return nil
}

// kindOf interprets the value of a bare declaration.
func kindOf(d Declaration) (Kind, error) {
	switch v := d.Value.(type) {
	case Type:
		if !v.valid() {
			break
		}
		return ScalarKind{Type: v}, nil
	case Model:
		if v.Store == nil {
			return nil, &paramerrors.ConfigError{Key: d.Key, Message: "model " + v.Name + " has no store"}
		}
		return LookupKind{Model: v}, nil
	case *Model:
		if v == nil || v.Store == nil {
			return nil, &paramerrors.ConfigError{Key: d.Key, Message: "model has no store"}
		}
		return LookupKind{Model: *v}, nil
	}

	options, ok := optionsOf(d.Value)
	if !ok {
		return nil, &paramerrors.ConfigError{
			Key:     d.Key,
			Value:   d.Value,
			Message: fmt.Sprintf("Invalid type for %s: %v is not a valid type", d.Key, d.Value),
		}
	}
	if len(options) == 0 {
		return nil, &paramerrors.ConfigError{Key: d.Key, Message: "option set is empty"}
	}
	return EnumKind{Options: options}, nil
}

// optionsOf converts the accepted collection types to an option list.
func optionsOf(v any) ([]any, bool) {
	switch c := v.(type) {
	case Options:
		return append([]any(nil), c...), true
	case []any:
		return append([]any(nil), c...), true
	case []string:
		out := make([]any, len(c))
		for i, s := range c {
			out[i] = s
		}
		return out, true
	case []int:
		out := make([]any, len(c))
		for i, n := range c {
			out[i] = n
		}
		return out, true
	case []float64:
		out := make([]any, len(c))
		for i, f := range c {
			out[i] = f
		}
		return out, true
	default:
		return nil, false
	}
}

// applyModifier applies a modifier declaration to the spec.
func (b *specBuilder) applyModifier(modifier string, d Declaration) error {
	spec := b.spec

	switch modifier {
	case "method":
		methods, err := parseMethods(d)
		if err != nil {
			return err
		}
		spec.Methods |= methods

	case "name":
		name, ok := d.Value.(string)
		if !ok || name == "" {
			return &paramerrors.ConfigError{Key: d.Key, Value: d.Value, Message: "__name must be a non-empty string"}
		}
		spec.RequestName = name

	case "deferred", "optional", "many":
		flag, ok := d.Value.(bool)
		if !ok {
			return &paramerrors.ConfigError{Key: d.Key, Value: d.Value, Message: "__" + modifier + " must be a bool"}
		}
		switch modifier {
		case "deferred":
			b.deferred = flag
		case "optional":
			spec.Optional = flag
		case "many":
			spec.Many = flag
		}

	case "gt", "gte", "lt", "lte", "eq":
		n, ok := toFloat(d.Value)
		if !ok {
			return &paramerrors.ConfigError{Key: d.Key, Value: d.Value, Message: "__" + modifier + " must be a number"}
		}
		bound := &n
		var exact *int64
		if i, ok := toInt64(d.Value); ok {
			exact = &i
		}
		switch modifier {
		case "gt":
			spec.Bounds.Gt, spec.exact.Gt = bound, exact
		case "gte":
			spec.Bounds.Gte, spec.exact.Gte = bound, exact
		case "lt":
			spec.Bounds.Lt, spec.exact.Lt = bound, exact
		case "lte":
			spec.Bounds.Lte, spec.exact.Lte = bound, exact
		case "eq":
			spec.Bounds.Eq, spec.exact.Eq = bound, exact
		}

	case "default":
		spec.Default = d.Value
		spec.HasDefault = true
		spec.Optional = true

	case "field":
		field, ok := d.Value.(string)
		if !ok || field == "" {
			return &paramerrors.ConfigError{Key: d.Key, Value: d.Value, Message: "__field must be a non-empty string"}
		}
		b.field = field

	default:
		return &paramerrors.ConfigError{
			Key:     d.Key,
			Message: fmt.Sprintf("invalid option: '__%s' in param '%s'", modifier, d.Key),
		}
	}
	return nil
}

// parseMethods interprets a __method value: "GET", "POST", or a collection
// containing one or both.
func parseMethods(d Declaration) (MethodSet, error) {
	var names []string
	switch v := d.Value.(type) {
	case string:
		names = []string{v}
	case []string:
		names = v
	case []any:
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return 0, invalidMethod(d, item)
			}
			names = append(names, s)
		}
	default:
		return 0, invalidMethod(d, d.Value)
	}

	var set MethodSet
	for _, name := range names {
		switch name {
		case http.MethodGet:
			set |= MethodGET
		case http.MethodPost:
			set |= MethodPOST
		default:
			return 0, invalidMethod(d, name)
		}
	}
	if set == 0 {
		return 0, invalidMethod(d, d.Value)
	}
	return set, nil
}

func invalidMethod(d Declaration, v any) error {
	return &paramerrors.ConfigError{
		Key:     d.Key,
		Value:   v,
		Message: fmt.Sprintf("Invalid value for __method: %q", fmt.Sprint(v)),
	}
}

// build finalizes the spec and checks cross-declaration invariants.
func (b *specBuilder) build() (*Spec, error) {
	spec := b.spec
	if spec.Kind == nil {
		return nil, &paramerrors.ConfigError{Key: spec.CodeName, Message: "no type declared for param '" + spec.CodeName + "'"}
	}
	if lk, ok := spec.Kind.(LookupKind); ok {
		lk.Field = b.field
		lk.Deferred = b.deferred
		spec.Kind = lk
	}
	if spec.HasDefault {
		spec.Optional = true
	}
	return spec, nil
}
