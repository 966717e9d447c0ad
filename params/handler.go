package params

import (
	"context"
	"net/http"
)

// Response is a handler's result: a status code and a body to serialize.
type Response struct {
	Status int
	Body   any
}

// ErrorBody is the body of a rejected request:
//
//	{"error": "Invalid param \"my_int\": Param is missing"}
type ErrorBody struct {
	Error string `json:"error"`
}

// errorResponse builds the envelope returned in place of the handler.
func errorResponse(status int, msg string) *Response {
	return &Response{Status: status, Body: ErrorBody{Error: msg}}
}

// HandlerFunc is a request handler that receives validated parameters.
// args holds the caller's arguments merged with the validated values.
type HandlerFunc func(ctx context.Context, req *Request, args Args) *Response

// Params is the compiled form of a handler's parameter declarations. It is
// built once, when the handler is declared, and shared by every request.
type Params struct {
	validator   *Validator
	maxBodySize int64
}

// New compiles decls and returns Params ready to wrap handlers.
//
// Returns a *paramerrors.ConfigError if a declaration is malformed.
func New(decls Declarations, opts ...Option) (*Params, error) {
	cfg, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}
	specs, err := Compile(decls)
	if err != nil {
		return nil, err
	}
	return &Params{
		validator:   newValidator(specs, cfg),
		maxBodySize: cfg.maxBodySize,
	}, nil
}

// Must is like New but panics on error, so that a broken declaration aborts
// process startup:
//
//	var getUsers = params.Must(params.Declarations{
//	    params.D("user_ids", params.Int),
//	    params.D("user_ids__many", true),
//	})
func Must(decls Declarations, opts ...Option) *Params {
	p, err := New(decls, opts...)
	if err != nil {
		panic(err)
	}
	return p
}

// Validator returns the underlying validator.
func (p *Params) Validator() *Validator {
	return p.validator
}

// Validate validates req. See Validator.Validate.
func (p *Params) Validate(ctx context.Context, req *Request) (*Result, error) {
	return p.validator.Validate(ctx, req)
}

// Wrap returns a HandlerFunc that validates the request before calling h.
//
// When a parameter is rejected, h is not called and a 400 response with an
// ErrorBody is returned. When validation fails internally (a model store
// error), a 500 response is returned. Otherwise h is called with the caller's
// args merged with the validated values, and its response is returned
// unchanged.
func (p *Params) Wrap(h HandlerFunc) HandlerFunc {
	return func(ctx context.Context, req *Request, args Args) *Response {
		result, err := p.validator.Validate(ctx, req)
		if err != nil {
			return errorResponse(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		}
		if !result.Valid {
			return errorResponse(http.StatusBadRequest, result.Rejection.Error())
		}
		return h(ctx, req, result.Args.merge(args))
	}
}

// MethodFunc is a handler declared as a method expression, e.g.
// (*UserService).Get, whose first argument is the receiver.
type MethodFunc[R any] func(recv R, ctx context.Context, req *Request, args Args) *Response

// WrapMethod wraps a handler whose first argument is a receiver. The request
// is always the argument after the receiver, so no guessing is involved:
//
//	var getUser = params.WrapMethod(userParams, (*UserService).Get)
//	resp := getUser(svc, ctx, req, nil)
func WrapMethod[R any](p *Params, fn MethodFunc[R]) MethodFunc[R] {
	return func(recv R, ctx context.Context, req *Request, args Args) *Response {
		bound := p.Wrap(func(ctx context.Context, req *Request, args Args) *Response {
			return fn(recv, ctx, req, args)
		})
		return bound(ctx, req, args)
	}
}
