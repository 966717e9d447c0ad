// Package restparams validates and coerces HTTP request parameters from
// declarations made next to the handler that consumes them.
//
// # Overview
//
// The library lives in two packages:
//
//   - params: declaration grammar, compiler, validator and handler adapters
//   - paramerrors: sentinel and typed errors shared by everything above
//
// The restparams command (cmd/restparams) checks single requests from the
// shell, serves endpoints described in a YAML file, and runs an MCP server
// exposing the validator as tools.
//
// # Quick Start
//
//	getUsers := params.Must(params.Declarations{
//	    params.D("user_ids", params.Int),
//	    params.D("user_ids__many", true),
//	    params.D("limit", params.Int),
//	    params.D("limit__lte", 100),
//	    params.D("limit__default", 20),
//	})
//
//	http.Handle("/users", getUsers.Middleware(http.HandlerFunc(listUsers)))
//
// A request for /users?user_ids=1,2,3 reaches listUsers with user_ids bound
// to []any{int64(1), int64(2), int64(3)} and limit bound to 20. A request
// for /users?user_ids=1,x is answered with
//
//	400 {"error":"Invalid param \"user_ids\": invalid int value \"x\": invalid syntax"}
//
// See the params package for the full declaration grammar.
package restparams
