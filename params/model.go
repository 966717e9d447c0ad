package params

import (
	"context"
	"errors"

	"github.com/erraggy/restparams/paramerrors"
)

// DefaultLookupField is the lookup field used when a declaration has no __field modifier.
const DefaultLookupField = "id"

// LookupQuery describes a single-record lookup against a model store.
type LookupQuery struct {
	// Field is the record field to match.
	Field string
	// Value is the raw request value sought.
	Value any
	// Deferred asks the store to fetch only a minimal projection.
	Deferred bool
}

// ModelStore resolves a single record by field match.
//
// Implementations must signal "no such record" by returning an error that
// matches paramerrors.ErrRecordNotFound (or by configuring Model.IsNotFound).
// Any other error is treated as an internal failure and aborts validation.
type ModelStore interface {
	Get(ctx context.Context, q LookupQuery) (any, error)
}

// ModelStoreFunc adapts an ordinary function to the ModelStore interface.
type ModelStoreFunc func(ctx context.Context, q LookupQuery) (any, error)

// Get implements ModelStore.
func (f ModelStoreFunc) Get(ctx context.Context, q LookupQuery) (any, error) {
	return f(ctx, q)
}

// Model is the descriptor passed as the value of a bare declaration to
// request ForeignLookup validation:
//
//	params.D("user", params.Model{Name: "User", Store: users})
type Model struct {
	// Name identifies the model in error messages.
	Name string
	// Store performs the lookup.
	Store ModelStore
	// IsNotFound optionally recognizes store-specific not-found errors
	// (e.g. sql.ErrNoRows) in addition to paramerrors.ErrRecordNotFound.
	IsNotFound func(error) bool
}

// notFound reports whether err is a not-found signal for this model.
func (m Model) notFound(err error) bool {
	if errors.Is(err, paramerrors.ErrRecordNotFound) {
		return true
	}
	return m.IsNotFound != nil && m.IsNotFound(err)
}
