package base

import (
	"sort"

	"github.com/google/uuid"
)

// Row is a partial storage row: column name to value. Domain repositories
// build Rows from their update/create params so that partial updates only
// touch the columns actually supplied.
type Row map[string]any

// Clone returns a shallow copy of the row.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// sortedKeys returns the row's column names in deterministic order, so the
// generated SQL is stable across calls.
func (r Row) sortedKeys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ensureID returns the row's id, generating and storing a fresh one when
// the caller did not supply it.
func (r Row) ensureID() uuid.UUID {
	if id, ok := r["id"].(uuid.UUID); ok && id != uuid.Nil {
		return id
	}
	id := uuid.New()
	r["id"] = id
	return id
}

// immutableColumns are never writable through Update: the id is the row's
// identity and created_at records its birth.
var immutableColumns = []string{"id", "created_at"}

// sanitized returns a copy of the row with immutable columns removed.
func (r Row) sanitized() Row {
	out := r.Clone()
	for _, col := range immutableColumns {
		delete(out, col)
	}
	return out
}
