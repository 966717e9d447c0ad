package params

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"

	json "github.com/goccy/go-json"
)

// DefaultMaxBodySize is the request body limit used by RequestFromHTTP when
// no explicit limit is configured.
const DefaultMaxBodySize int64 = 10 << 20 // 10 MiB

// ErrInvalidBody indicates that the request body could not be decoded into
// POST data. It is a client error.
var ErrInvalidBody = errors.New("invalid request body")

// Request is the transport-independent view of an HTTP request that the
// validator consumes: the method plus already-demultiplexed GET (query
// string) and POST (body) data.
//
// Values are typically strings, json.Number, bool, []any (JSON arrays) or
// []string (repeated query or form keys).
type Request struct {
	Method string
	GET    map[string]any
	POST   map[string]any
}

// NewRequest builds a Request from explicit maps. Nil maps are replaced by
// empty ones.
func NewRequest(method string, get, post map[string]any) *Request {
	if get == nil {
		get = map[string]any{}
	}
	if post == nil {
		post = map[string]any{}
	}
	return &Request{Method: method, GET: get, POST: post}
}

// RequestFromHTTP extracts GET and POST data from an *http.Request.
//
// The query string becomes GET data. A JSON object body becomes POST data
// (numbers are kept as json.Number), as do urlencoded and multipart form
// bodies. Other bodies yield empty POST data. JSON bodies are buffered and
// restored on r so that the downstream handler can read them again.
//
// maxBodySize <= 0 selects DefaultMaxBodySize.
func RequestFromHTTP(r *http.Request, maxBodySize int64) (*Request, error) {
	if maxBodySize <= 0 {
		maxBodySize = DefaultMaxBodySize
	}

	req := NewRequest(r.Method, valuesToMap(r.URL.Query()), nil)
	if r.Body == nil || r.Body == http.NoBody {
		return req, nil
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/json":
		data, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize+1))
		_ = r.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("restparams: reading request body: %w", err)
		}
		if int64(len(data)) > maxBodySize {
			return nil, fmt.Errorf("%w: body exceeds %d bytes", ErrInvalidBody, maxBodySize)
		}
		r.Body = io.NopCloser(bytes.NewReader(data))
		if len(bytes.TrimSpace(data)) == 0 {
			return req, nil
		}

		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		var post map[string]any
		if err := dec.Decode(&post); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidBody, err)
		}
		if post != nil {
			req.POST = post
		}

	case "application/x-www-form-urlencoded", "multipart/form-data":
		r.Body = http.MaxBytesReader(nil, r.Body, maxBodySize)
		var err error
		if mediaType == "multipart/form-data" {
			err = r.ParseMultipartForm(maxBodySize)
		} else {
			err = r.ParseForm()
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidBody, err)
		}
		req.POST = valuesToMap(r.PostForm)
	}

	return req, nil
}

// valuesToMap flattens url.Values: single values become strings, repeated
// keys become []string.
func valuesToMap(values url.Values) map[string]any {
	out := make(map[string]any, len(values))
	for key, vs := range values {
		switch len(vs) {
		case 0:
		case 1:
			out[key] = vs[0]
		default:
			out[key] = append([]string(nil), vs...)
		}
	}
	return out
}
