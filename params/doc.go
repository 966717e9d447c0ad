// Package params validates HTTP request parameters against declarations made
// alongside a handler, and passes the coerced values to it.
//
// A handler declares its parameters with a flat, ordered list of keywords.
// A bare key declares a parameter and its type; keys with a "__modifier"
// suffix configure it:
//
//	var listUsers = params.Must(params.Declarations{
//	    params.D("user_ids", params.Int),
//	    params.D("user_ids__many", true),
//	    params.D("user_ids__gt", 0),
//	    params.D("sort", params.Options{"name", "created"}),
//	    params.D("sort__default", "name"),
//	    params.D("q", params.String),
//	    params.D("q__length__lt", 64),
//	    params.D("q__optional", true),
//	})
//
// Declarations are compiled once. Malformed declarations fail with a
// *paramerrors.ConfigError, and Must panics so that startup aborts.
//
// # Types
//
//   - Int, Float, String, Bool: primitive types
//   - Options (or []any, []string, []int, []float64): a fixed set of allowed values
//   - Model: a record looked up in a ModelStore
//
// # Modifiers
//
// Only the last "__" segment of a key is significant, so "q__length__lt" and
// "q__lt" are equivalent.
//
//   - method: "GET", "POST" or []string{"GET", "POST"}
//   - name: the key to read from the request, when it differs from the code name
//   - optional, many, deferred: bool
//   - gt, gte, lt, lte, eq: numeric bounds (on the value, or on a string's length)
//   - default: value used when absent; implies optional
//   - field: the lookup field for Model parameters (default "id")
//
// # Sources
//
// A parameter without a method modifier is read from the body for POST and
// PUT requests and from the query string otherwise. With "many", query string
// values are split on commas, while body values may be JSON arrays.
//
// # Validation
//
// Parameters are validated in declaration order. The first failure rejects
// the request with a 400 response:
//
//	{"error": "Invalid param \"user_ids\": Value must be greater than 0"}
//
// and the handler is not called.
//
// # Handlers
//
// Wrap and WrapMethod decorate transport-independent HandlerFunc values;
// Middleware and HTTPHandler plug into net/http:
//
//	mux.Handle("/users", listUsers.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
//	    args, _ := params.ArgsFromContext(r.Context())
//	    ids := args.Slice("user_ids")
//	    ...
//	})))
package params
