package params

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erraggy/restparams/paramerrors"
)

func TestMemoryStore_Create(t *testing.T) {
	s := NewMemoryStore(map[string]any{"name": "a"}, map[string]any{"id": 10, "name": "b"})
	assert.Equal(t, 2, s.Len())

	c := s.Create(map[string]any{"name": "c"})
	assert.Equal(t, int64(11), c["id"], "ids continue after the highest explicit id")

	fields := map[string]any{"name": "d"}
	d := s.Create(fields)
	_, hasID := fields["id"]
	assert.False(t, hasID, "input map is not modified")
	d["name"] = "mutated"

	got, err := s.Get(context.Background(), LookupQuery{Field: "id", Value: "12"})
	require.NoError(t, err)
	assert.Equal(t, "d", got.(map[string]any)["name"])

	empty := s.Create(nil)
	assert.Equal(t, int64(13), empty["id"])
}

func TestMemoryStore_Get(t *testing.T) {
	s := NewMemoryStore(
		map[string]any{"name": "Cam Saul", "email": "rasta@toucan.farm", "age": 30},
		map[string]any{"name": "Caf\u00e9"},
	)
	ctx := context.Background()

	tests := []struct {
		name     string
		q        LookupQuery
		wantName string
	}{
		{"id int", LookupQuery{Field: "id", Value: 1}, "Cam Saul"},
		{"id string", LookupQuery{Field: "id", Value: "2"}, "Caf\u00e9"},
		{"pk", LookupQuery{Field: "pk", Value: int64(1)}, "Cam Saul"},
		{"string field", LookupQuery{Field: "email", Value: "rasta@toucan.farm"}, "Cam Saul"},
		{"decomposed string", LookupQuery{Field: "name", Value: "Cafe\u0301"}, "Caf\u00e9"},
		{"numeric field", LookupQuery{Field: "age", Value: "30"}, "Cam Saul"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Get(ctx, tt.q)
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, got.(map[string]any)["name"])
		})
	}

	misses := []LookupQuery{
		{Field: "id", Value: "Not a User ID"},
		{Field: "id", Value: 99},
		{Field: "name", Value: "Cam"},
		{Field: "name", Value: 3},
		{Field: "missing", Value: "x"},
	}
	for _, q := range misses {
		_, err := s.Get(ctx, q)
		require.Error(t, err, "query %+v", q)
		assert.True(t, errors.Is(err, paramerrors.ErrRecordNotFound), "query %+v", q)
	}
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	s := NewMemoryStore(map[string]any{"name": "a"})
	got, err := s.Get(context.Background(), LookupQuery{Field: "id", Value: 1})
	require.NoError(t, err)
	got.(map[string]any)["name"] = "changed"

	got, err = s.Get(context.Background(), LookupQuery{Field: "id", Value: 1})
	require.NoError(t, err)
	assert.Equal(t, "a", got.(map[string]any)["name"])
}

func TestMemoryStore_CanceledContext(t *testing.T) {
	s := NewMemoryStore(map[string]any{"name": "a"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Get(ctx, LookupQuery{Field: "id", Value: 1})
	assert.True(t, errors.Is(err, context.Canceled))
	assert.False(t, errors.Is(err, paramerrors.ErrRecordNotFound))
}
