package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/erraggy/restparams/params"
)

type describeInput struct {
	Declarations declInput `json:"declarations" jsonschema:"The parameter declarations to compile"`
}

type paramSummary struct {
	Name        string             `json:"name"`
	RequestName string             `json:"request_name"`
	Kind        string             `json:"kind"`
	Methods     string             `json:"methods"`
	Optional    bool               `json:"optional"`
	Default     any                `json:"default,omitempty"`
	Many        bool               `json:"many,omitempty"`
	Bounds      map[string]float64 `json:"bounds,omitempty"`
	Options     []any              `json:"options,omitempty"`
	Model       string             `json:"model,omitempty"`
	Field       string             `json:"field,omitempty"`
	Deferred    bool               `json:"deferred,omitempty"`
}

type describeOutput struct {
	Count  int            `json:"count"`
	Params []paramSummary `json:"params,omitempty"`
}

func handleDescribe(ctx context.Context, _ *mcp.CallToolRequest, input describeInput) (*mcp.CallToolResult, describeOutput, error) {
	decls, err := input.Declarations.resolve(ctx, nil)
	if err != nil {
		return errResult(err), describeOutput{}, nil
	}
	set, err := params.Compile(decls)
	if err != nil {
		return errResult(err), describeOutput{}, nil
	}

	output := describeOutput{Count: set.Len()}
	for _, spec := range set.Specs() {
		output.Params = append(output.Params, summarize(spec))
	}
	return nil, output, nil
}

func summarize(spec *params.Spec) paramSummary {
	s := paramSummary{
		Name:        spec.CodeName,
		RequestName: spec.RequestName,
		Kind:        spec.Kind.Name(),
		Methods:     spec.Methods.String(),
		Optional:    spec.Optional,
		Default:     spec.Default,
		Many:        spec.Many,
		Bounds:      boundsMap(spec.Bounds),
	}
	switch k := spec.Kind.(type) {
	case params.EnumKind:
		s.Options = k.Options
	case params.LookupKind:
		s.Model = k.Model.Name
		s.Field = k.Field
		s.Deferred = k.Deferred
	}
	return s
}

func boundsMap(b params.Bounds) map[string]float64 {
	if b.IsZero() {
		return nil
	}
	m := make(map[string]float64)
	for op, v := range map[string]*float64{"eq": b.Eq, "lt": b.Lt, "lte": b.Lte, "gt": b.Gt, "gte": b.Gte} {
		if v != nil {
			m[op] = *v
		}
	}
	return m
}
