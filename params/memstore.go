package params

import (
	"context"
	"fmt"
	"maps"
	"sync"

	"golang.org/x/text/unicode/norm"

	"github.com/erraggy/restparams/paramerrors"
)

// MemoryStore is an in-memory ModelStore holding records as field maps.
// It is intended for tests, examples and the CLI.
//
// Lookups by "id" or "pk" compare numerically, so "7" finds the record with
// id 7. Other fields compare by equality, with strings compared in NFC form.
// The Deferred hint is accepted and ignored: records are always returned in
// full.
type MemoryStore struct {
	mu      sync.RWMutex
	records []map[string]any
	nextID  int64
}

// NewMemoryStore creates a store seeded with records. Records without an
// "id" field are assigned one.
func NewMemoryStore(records ...map[string]any) *MemoryStore {
	s := &MemoryStore{nextID: 1}
	for _, r := range records {
		s.Create(r)
	}
	return s
}

// Create stores a copy of fields, assigning the next id when "id" is not
// set, and returns the stored record.
func (s *MemoryStore) Create(fields map[string]any) map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()

	record := maps.Clone(fields)
	if record == nil {
		record = map[string]any{}
	}
	if id, ok := numericValue(record["id"]); ok {
		if next := int64(id) + 1; next > s.nextID {
			s.nextID = next
		}
	} else {
		record["id"] = s.nextID
		s.nextID++
	}
	s.records = append(s.records, record)
	return maps.Clone(record)
}

// Len returns the number of stored records.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Get implements ModelStore.
func (s *MemoryStore) Get(ctx context.Context, q LookupQuery) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, record := range s.records {
		if matchField(record, q) {
			return maps.Clone(record), nil
		}
	}
	return nil, fmt.Errorf("%w: %s=%v", paramerrors.ErrRecordNotFound, q.Field, q.Value)
}

func matchField(record map[string]any, q LookupQuery) bool {
	if q.Field == "id" || q.Field == "pk" {
		want, ok := numericValue(q.Value)
		if !ok {
			return false
		}
		got, ok := numericValue(record["id"])
		return ok && got == want
	}

	got, ok := record[q.Field]
	if !ok {
		return false
	}
	if gs, ok := got.(string); ok {
		ws, ok := q.Value.(string)
		return ok && norm.NFC.String(gs) == norm.NFC.String(ws)
	}
	return optionEqual(got, q.Value)
}

var _ ModelStore = (*MemoryStore)(nil)
