package params

import (
	"context"
	"errors"
	"net/http"

	json "github.com/goccy/go-json"
)

// ctxKeyArgs is the context key under which Middleware stores Args.
type ctxKeyArgs struct{}

// ContextWithArgs attaches validated Args to ctx.
func ContextWithArgs(ctx context.Context, args Args) context.Context {
	return context.WithValue(ctx, ctxKeyArgs{}, args)
}

// ArgsFromContext retrieves the Args stored by Middleware.
func ArgsFromContext(ctx context.Context) (Args, bool) {
	args, ok := ctx.Value(ctxKeyArgs{}).(Args)
	return args, ok
}

// Middleware validates requests before they reach next:
//
//	mux.Handle("/users", getUsers.Middleware(http.HandlerFunc(listUsers)))
//
// Rejected requests receive a 400 JSON error body and next is not called.
// Accepted requests reach next with the validated Args in the request
// context (see ArgsFromContext).
func (p *Params) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, result, resp := p.validateHTTP(r)
		if resp != nil {
			WriteResponse(w, resp)
			return
		}
		next.ServeHTTP(w, r.WithContext(ContextWithArgs(r.Context(), result.Args)))
	})
}

// HTTPHandler adapts a HandlerFunc to net/http. The handler's Response is
// written as JSON; a nil Response writes 204 No Content.
func (p *Params) HTTPHandler(h HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req, result, resp := p.validateHTTP(r)
		if resp == nil {
			resp = h(r.Context(), req, result.Args)
		}
		WriteResponse(w, resp)
	})
}

// validateHTTP validates r and returns either the accepted request and
// result or the error response to send.
func (p *Params) validateHTTP(r *http.Request) (*Request, *Result, *Response) {
	req, err := RequestFromHTTP(r, p.maxBodySize)
	if err != nil {
		if errors.Is(err, ErrInvalidBody) {
			return nil, nil, errorResponse(http.StatusBadRequest, err.Error())
		}
		return nil, nil, errorResponse(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
	}

	result, err := p.validator.Validate(r.Context(), req)
	if err != nil {
		return nil, nil, errorResponse(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
	}
	if !result.Valid {
		return nil, nil, errorResponse(http.StatusBadRequest, result.Rejection.Error())
	}
	return req, result, nil
}

// WriteResponse writes resp as JSON. A nil resp writes 204 No Content.
func WriteResponse(w http.ResponseWriter, resp *Response) {
	if resp == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	status := resp.Status
	if status == 0 {
		status = http.StatusOK
	}

	body, err := json.Marshal(resp.Body)
	if err != nil {
		status = http.StatusInternalServerError
		body, _ = json.Marshal(ErrorBody{Error: "encoding response: " + err.Error()})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}
