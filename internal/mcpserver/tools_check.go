package mcpserver

import (
	"context"
	"net/http"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/erraggy/restparams/params"
)

type checkInput struct {
	Declarations declInput                   `json:"declarations"          jsonschema:"The parameter declarations to check against"`
	Method       string                      `json:"method,omitempty"      jsonschema:"HTTP method of the request (default GET). POST and PUT read undeclared-method params from post, others from get."`
	Get          map[string]any              `json:"get,omitempty"         jsonschema:"Query string values. Comma-separated strings feed __many params."`
	Post         map[string]any              `json:"post,omitempty"        jsonschema:"Body values, as decoded from a JSON request body"`
	Records      map[string][]map[string]any `json:"records,omitempty"     jsonschema:"Seed records for {model: Name} params, keyed by model name"`
	StrictBool   *bool                       `json:"strict_bool,omitempty" jsonschema:"Parse bool params strictly ('false' is false). Default from RESTPARAMS_STRICT_BOOL."`
}

type checkOutput struct {
	Valid  bool           `json:"valid"`
	Status int            `json:"status"`
	Args   map[string]any `json:"args,omitempty"`
	Error  string         `json:"error,omitempty"`
	Param  string         `json:"param,omitempty"`
	Reason string         `json:"reason,omitempty"`
}

func handleCheck(ctx context.Context, _ *mcp.CallToolRequest, input checkInput) (*mcp.CallToolResult, checkOutput, error) {
	strict := cfg.StrictBool
	if input.StrictBool != nil {
		strict = *input.StrictBool
	}

	decls, err := input.Declarations.resolve(ctx, input.Records)
	if err != nil {
		return errResult(err), checkOutput{}, nil
	}
	p, err := params.New(decls, params.WithStrictBool(strict), params.WithHandlerName("check_params"))
	if err != nil {
		return errResult(err), checkOutput{}, nil
	}

	method := strings.ToUpper(input.Method)
	if method == "" {
		method = http.MethodGet
	}

	result, err := p.Validate(ctx, params.NewRequest(method, input.Get, input.Post))
	if err != nil {
		return errResult(err), checkOutput{}, nil
	}
	if !result.Valid {
		return nil, checkOutput{
			Status: http.StatusBadRequest,
			Error:  result.Rejection.Error(),
			Param:  result.Rejection.Param,
			Reason: result.Rejection.Reason(),
		}, nil
	}
	return nil, checkOutput{Valid: true, Status: http.StatusOK, Args: result.Args}, nil
}
