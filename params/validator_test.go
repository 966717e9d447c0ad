package params

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erraggy/restparams/paramerrors"
)

func newTestValidator(t *testing.T, decls Declarations, opts ...Option) *Validator {
	t.Helper()
	set, err := Compile(decls)
	require.NoError(t, err)
	v, err := NewValidator(set, opts...)
	require.NoError(t, err)
	return v
}

func validate(t *testing.T, v *Validator, req *Request) *Result {
	t.Helper()
	result, err := v.Validate(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, result)
	return result
}

func TestNewValidator_Errors(t *testing.T) {
	_, err := NewValidator(nil)
	assert.Error(t, err)

	_, err = NewValidator(MustCompile(Declarations{D("p", Int)}), WithHandlerName(""))
	assert.Error(t, err)
}

func TestValidate_NilRequest(t *testing.T) {
	v := newTestValidator(t, Declarations{D("p", Int)})
	_, err := v.Validate(context.Background(), nil)
	assert.Error(t, err)
}

func TestValidate_Int(t *testing.T) {
	v := newTestValidator(t, Declarations{D("my_int", Int)})

	result := validate(t, v, NewRequest("GET", nil, nil))
	require.False(t, result.Valid)
	assert.Nil(t, result.Args)
	assert.Equal(t, `Invalid param "my_int": Param is missing`, result.Rejection.Error())
	assert.Equal(t, "missing", result.Rejection.Reason())

	result = validate(t, v, NewRequest("GET", map[string]any{"my_int": "100"}, nil))
	require.True(t, result.Valid)
	assert.Nil(t, result.Rejection)
	assert.Equal(t, int64(100), result.Args.Int("my_int"))

	result = validate(t, v, NewRequest("GET", map[string]any{"my_int": "not an int"}, nil))
	require.False(t, result.Valid)
	assert.Equal(t, "type", result.Rejection.Reason())
	assert.True(t, errors.Is(result.Rejection, paramerrors.ErrTypeCoercion))
}

func TestValidate_FalsyIsAbsent(t *testing.T) {
	v := newTestValidator(t, Declarations{D("n", Int)})

	for name, raw := range map[string]any{
		"int zero":         0,
		"float zero":       0.0,
		"json number zero": json.Number("0"),
		"false":            false,
		"empty string":     "",
	} {
		t.Run(name, func(t *testing.T) {
			result := validate(t, v, NewRequest("POST", nil, map[string]any{"n": raw}))
			require.False(t, result.Valid)
			assert.Equal(t, `Invalid param "n": Param is missing`, result.Rejection.Error())
		})
	}

	// The string "0" carries a value.
	result := validate(t, v, NewRequest("GET", map[string]any{"n": "0"}, nil))
	require.True(t, result.Valid)
	assert.Equal(t, int64(0), result.Args.Int("n"))

	// A zero POST value falls through to GET.
	v = newTestValidator(t, Declarations{D("n", Int), D("n__method", []string{"POST", "GET"})})
	result = validate(t, v, NewRequest("POST", map[string]any{"n": "7"}, map[string]any{"n": 0}))
	require.True(t, result.Valid)
	assert.Equal(t, int64(7), result.Args.Int("n"))

	v = newTestValidator(t, Declarations{
		D("flag", Bool), D("flag__optional", true), D("flag__default", true),
	})
	result = validate(t, v, NewRequest("GET", map[string]any{"flag": false}, nil))
	require.True(t, result.Valid)
	assert.True(t, result.Args.Bool("flag"))
}

func TestValidate_ZeroIsPresentOption(t *testing.T) {
	v := newTestValidator(t,
		Declarations{D("n", Int), D("flag", Bool), D("flag__optional", true)},
		WithZeroIsPresent(true),
	)

	result := validate(t, v, NewRequest("POST", nil, map[string]any{"n": 0, "flag": false}))
	require.True(t, result.Valid)
	assert.Equal(t, int64(0), result.Args["n"])
	assert.Equal(t, false, result.Args["flag"])

	result = validate(t, v, NewRequest("POST", nil, map[string]any{"n": ""}))
	require.False(t, result.Valid)
	assert.Equal(t, "missing", result.Rejection.Reason())
}

func TestValidate_Float(t *testing.T) {
	v := newTestValidator(t, Declarations{D("my_float", Float)})

	result := validate(t, v, NewRequest("GET", map[string]any{"my_float": 100}, nil))
	require.True(t, result.Valid)
	assert.Equal(t, float64(100), result.Args["my_float"])
}

func TestValidate_Enum(t *testing.T) {
	v := newTestValidator(t, Declarations{D("color", Options{"red", "green"})})

	for _, color := range []string{"red", "green"} {
		result := validate(t, v, NewRequest("GET", map[string]any{"color": color}, nil))
		require.True(t, result.Valid)
		assert.Equal(t, color, result.Args["color"])
	}

	result := validate(t, v, NewRequest("GET", map[string]any{"color": "orange"}, nil))
	require.False(t, result.Valid)
	assert.Equal(t, `Invalid param "color": invalid option "orange": Must be one of: [red green]`, result.Rejection.Error())

	result = validate(t, v, NewRequest("GET", nil, nil))
	assert.False(t, result.Valid)
}

func TestValidate_Bounds(t *testing.T) {
	v := newTestValidator(t, Declarations{D("my_int", Int), D("my_int__gt", 10)})

	result := validate(t, v, NewRequest("GET", map[string]any{"my_int": "10"}, nil))
	require.False(t, result.Valid)
	assert.True(t, errors.Is(result.Rejection, paramerrors.ErrConstraintViolation))
	assert.Equal(t, `Invalid param "my_int": Value must be greater than 10`, result.Rejection.Error())

	result = validate(t, v, NewRequest("GET", map[string]any{"my_int": "11"}, nil))
	assert.True(t, result.Valid)
}

func TestValidate_StringLength(t *testing.T) {
	v := newTestValidator(t, Declarations{
		D("my_str", String),
		D("my_str__length__lt", 5),
		D("my_str__length__gte", 2),
	})

	result := validate(t, v, NewRequest("GET", map[string]any{"my_str": "THIS STRING IS WAY TOO LONG"}, nil))
	require.False(t, result.Valid)
	assert.Equal(t, `Invalid param "my_str": Length must be less than 5`, result.Rejection.Error())

	result = validate(t, v, NewRequest("GET", map[string]any{"my_str": "GOOD"}, nil))
	assert.True(t, result.Valid)
}

func TestValidate_OptionalAndDefault(t *testing.T) {
	v := newTestValidator(t, Declarations{
		D("opt", Int),
		D("opt__optional", true),
		D("page", Int),
		D("page__optional", true),
		D("page__default", 100),
	})

	result := validate(t, v, NewRequest("GET", nil, nil))
	require.True(t, result.Valid)

	opt, ok := result.Args.Value("opt")
	assert.True(t, ok, "optional params are always bound")
	assert.Nil(t, opt)
	assert.Equal(t, 100, result.Args["page"])
}

func TestValidate_Name(t *testing.T) {
	v := newTestValidator(t, Declarations{D("my_int", Int), D("my_int__name", "my_int_param")})

	result := validate(t, v, NewRequest("GET", map[string]any{"my_int_param": "100"}, nil))
	require.True(t, result.Valid)
	assert.Equal(t, int64(100), result.Args["my_int"])

	result = validate(t, v, NewRequest("GET", map[string]any{"my_int": "100"}, nil))
	require.False(t, result.Valid)
	assert.Equal(t, "my_int_param", result.Rejection.Param)
	assert.Equal(t, "missing", result.Rejection.Reason())
}

func TestValidate_Methods(t *testing.T) {
	value := map[string]any{"my_int": "100"}

	tests := []struct {
		name      string
		method    any
		reqMethod string
		get, post map[string]any
		wantValid bool
	}{
		{"default GET reads query", nil, "GET", value, nil, true},
		{"default GET ignores body", nil, "GET", nil, value, false},
		{"default POST reads body", nil, "POST", nil, value, true},
		{"default POST ignores query", nil, "POST", value, nil, false},
		{"default PUT reads body", nil, "PUT", nil, value, true},
		{"default DELETE reads query", nil, "DELETE", value, nil, true},
		{"GET on POST request from query", "GET", "POST", value, nil, true},
		{"GET on POST request from body", "GET", "POST", nil, value, false},
		{"POST from query", "POST", "POST", value, nil, false},
		{"POST from body", "POST", "POST", nil, value, true},
		{"any from query", []string{"GET", "POST"}, "POST", value, nil, true},
		{"any from body", []string{"GET", "POST"}, "POST", nil, value, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decls := Declarations{D("my_int", Int)}
			if tt.method != nil {
				decls = append(decls, D("my_int__method", tt.method))
			}
			v := newTestValidator(t, decls)
			result := validate(t, v, NewRequest(tt.reqMethod, tt.get, tt.post))
			assert.Equal(t, tt.wantValid, result.Valid)
		})
	}
}

func TestValidate_PostWinsOverGet(t *testing.T) {
	v := newTestValidator(t, Declarations{D("n", Int), D("n__method", []string{"GET", "POST"})})

	result := validate(t, v, NewRequest("POST", map[string]any{"n": "1"}, map[string]any{"n": "2"}))
	require.True(t, result.Valid)
	assert.Equal(t, int64(2), result.Args["n"])

	// An empty body value falls through to the query string.
	result = validate(t, v, NewRequest("POST", map[string]any{"n": "1"}, map[string]any{"n": ""}))
	require.True(t, result.Valid)
	assert.Equal(t, int64(1), result.Args["n"])
}

func TestValidate_Many(t *testing.T) {
	v := newTestValidator(t, Declarations{D("user_ids", Int), D("user_ids__many", true)})

	tests := []struct {
		name string
		req  *Request
		want []any
	}{
		{"GET single", NewRequest("GET", map[string]any{"user_ids": "100"}, nil), []any{int64(100)}},
		{"GET scalar", NewRequest("GET", map[string]any{"user_ids": 100}, nil), []any{int64(100)}},
		{"GET csv", NewRequest("GET", map[string]any{"user_ids": "98,99,100"}, nil), []any{int64(98), int64(99), int64(100)}},
		{"GET repeated", NewRequest("GET", map[string]any{"user_ids": []string{"1", "2,3"}}, nil), []any{int64(1), int64(2), int64(3)}},
		{"POST single", NewRequest("POST", nil, map[string]any{"user_ids": 100}), []any{int64(100)}},
		{"POST list", NewRequest("POST", nil, map[string]any{"user_ids": []any{87, 97, 100}}), []any{int64(87), int64(97), int64(100)}},
		{"POST form list", NewRequest("POST", nil, map[string]any{"user_ids": []string{"5", "6"}}), []any{int64(5), int64(6)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := validate(t, v, tt.req)
			require.True(t, result.Valid, "%v", result.Rejection)
			assert.Equal(t, tt.want, result.Args.Slice("user_ids"))
		})
	}

	result := validate(t, v, NewRequest("GET", map[string]any{"user_ids": "1,x,3"}, nil))
	require.False(t, result.Valid)
	assert.Equal(t, "type", result.Rejection.Reason())
}

func TestValidate_ManyCoercesBeforeBounds(t *testing.T) {
	v := newTestValidator(t, Declarations{D("ids", Int), D("ids__many", true), D("ids__lt", 10)})

	// 50 violates the bound, but "x" fails coercion and coercion runs first.
	result := validate(t, v, NewRequest("GET", map[string]any{"ids": "50,x"}, nil))
	require.False(t, result.Valid)
	assert.Equal(t, "type", result.Rejection.Reason())

	result = validate(t, v, NewRequest("GET", map[string]any{"ids": "1,50"}, nil))
	require.False(t, result.Valid)
	assert.Equal(t, "constraint", result.Rejection.Reason())
}

func TestValidate_RepeatedKeyLastWins(t *testing.T) {
	v := newTestValidator(t, Declarations{D("n", Int)})
	result := validate(t, v, NewRequest("GET", map[string]any{"n": []string{"1", "2"}}, nil))
	require.True(t, result.Valid)
	assert.Equal(t, int64(2), result.Args["n"])
}

func TestValidate_Lookup(t *testing.T) {
	users := NewMemoryStore()
	user := users.Create(map[string]any{"name": "Cam Saul", "email": "Myfakeemail@toucan.farm"})
	v := newTestValidator(t, Declarations{D("user", Model{Name: "User", Store: users})})

	result := validate(t, v, NewRequest("GET", nil, nil))
	assert.False(t, result.Valid)

	result = validate(t, v, NewRequest("GET", map[string]any{"user": "Not a User ID"}, nil))
	require.False(t, result.Valid)
	assert.Equal(t, "lookup", result.Rejection.Reason())

	for _, id := range []any{user["id"], "1"} {
		result = validate(t, v, NewRequest("GET", map[string]any{"user": id}, nil))
		require.True(t, result.Valid)
		assert.Equal(t, "Cam Saul", result.Args["user"].(map[string]any)["name"])
	}
}

func TestValidate_LookupField(t *testing.T) {
	users := NewMemoryStore(
		map[string]any{"name": "Cam Saul", "email": "rasta@toucan.farm"},
		map[string]any{"name": "Caf\u00e9"},
	)
	v := newTestValidator(t, Declarations{
		D("user", Model{Name: "User", Store: users}),
		D("user__field", "name"),
		D("user__deferred", false),
	})

	result := validate(t, v, NewRequest("GET", map[string]any{"user": "Cam"}, nil))
	require.False(t, result.Valid)
	assert.Equal(t, `Invalid param "user": no User record with name="Cam"`, result.Rejection.Error())

	result = validate(t, v, NewRequest("GET", map[string]any{"user": "Cam Saul"}, nil))
	require.True(t, result.Valid)
	assert.Equal(t, "rasta@toucan.farm", result.Args["user"].(map[string]any)["email"])

	// Decomposed input matches the composed stored name.
	result = validate(t, v, NewRequest("GET", map[string]any{"user": "Cafe\u0301"}, nil))
	require.True(t, result.Valid)
	assert.Equal(t, "Caf\u00e9", result.Args["user"].(map[string]any)["name"])
}

func TestValidate_StoreFailureIsInternal(t *testing.T) {
	errDown := errors.New("connection refused")
	store := ModelStoreFunc(func(context.Context, LookupQuery) (any, error) { return nil, errDown })
	v := newTestValidator(t, Declarations{D("user", Model{Name: "User", Store: store})})

	result, err := v.Validate(context.Background(), NewRequest("GET", map[string]any{"user": "1"}, nil))
	require.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, errors.Is(err, errDown))
	assert.Contains(t, err.Error(), `param "user"`)
}

func TestValidate_ShortCircuit(t *testing.T) {
	calls := 0
	store := ModelStoreFunc(func(context.Context, LookupQuery) (any, error) {
		calls++
		return "record", nil
	})
	v := newTestValidator(t, Declarations{
		D("a", Int),
		D("b", Int),
		D("user", Model{Name: "User", Store: store}),
	})

	result := validate(t, v, NewRequest("GET", map[string]any{"a": "x", "user": "1"}, nil))
	require.False(t, result.Valid)
	assert.Equal(t, "a", result.Rejection.Param)
	assert.Equal(t, 0, calls, "later params are not examined")

	result = validate(t, v, NewRequest("GET", map[string]any{"a": "1", "user": "1"}, nil))
	require.False(t, result.Valid)
	assert.Equal(t, "b", result.Rejection.Param)
	assert.Equal(t, 0, calls)
}

func TestValidate_StrictBool(t *testing.T) {
	decls := Declarations{D("flag", Bool)}
	req := NewRequest("GET", map[string]any{"flag": "false"}, nil)

	result := validate(t, newTestValidator(t, decls), req)
	require.True(t, result.Valid)
	assert.True(t, result.Args.Bool("flag"))

	result = validate(t, newTestValidator(t, decls, WithStrictBool(true)), req)
	require.True(t, result.Valid)
	assert.False(t, result.Args.Bool("flag"))
}

func TestValidate_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	v := newTestValidator(t, Declarations{D("n", Int)}, WithRegisterer(reg), WithHandlerName("list_users"))

	validate(t, v, NewRequest("GET", map[string]any{"n": "1"}, nil))
	validate(t, v, NewRequest("GET", map[string]any{"n": "2"}, nil))
	validate(t, v, NewRequest("GET", map[string]any{"n": "x"}, nil))

	expected := `
# HELP restparams_requests_total Total number of requests validated, by handler and outcome.
# TYPE restparams_requests_total counter
restparams_requests_total{handler="list_users",outcome="accepted"} 2
restparams_requests_total{handler="list_users",outcome="rejected"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, bytes.NewBufferString(expected), "restparams_requests_total"))

	expected = `
# HELP restparams_rejections_total Total number of rejected requests, by handler, parameter and reason.
# TYPE restparams_rejections_total counter
restparams_rejections_total{handler="list_users",param="n",reason="type"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, bytes.NewBufferString(expected), "restparams_rejections_total"))
}

func TestValidate_Logging(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	v := newTestValidator(t, Declarations{D("n", Int)}, WithLogger(NewSlogAdapter(logger)), WithHandlerName("h"))

	validate(t, v, NewRequest("GET", nil, nil))

	out := buf.String()
	assert.Contains(t, out, "rejected request")
	assert.Contains(t, out, "handler=h")
	assert.Contains(t, out, "param=n")
	assert.Contains(t, out, "reason=missing")
}

func TestValidate_Concurrent(t *testing.T) {
	v := newTestValidator(t, Declarations{D("n", Int), D("n__lt", 1000)})

	done := make(chan struct{})
	for i := range 8 {
		go func(i int) {
			defer func() { done <- struct{}{} }()
			for j := range 50 {
				n := i*100 + j
				result, err := v.Validate(context.Background(), NewRequest("GET", map[string]any{"n": n}, nil))
				if assert.NoError(t, err) && assert.True(t, result.Valid) {
					assert.Equal(t, int64(n), result.Args.Int("n"))
				}
			}
		}(i)
	}
	for range 8 {
		<-done
	}
}
