// Package store abstracts the backing document database: collections of
// id-keyed documents with equality-filter queries, partial-merge updates,
// atomic counter increments and atomic multi-operation batches.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a requested document does not exist.
var ErrNotFound = errors.New("document not found")

// Document is a flat field map as stored by the backend.
type Document = map[string]any

// Filter is an equality condition on a single field.
type Filter struct {
	Field string
	Value any
}

// Query selects documents from one collection, optionally ordered by a
// single field and limited.
type Query struct {
	Collection string
	Filters    []Filter
	OrderBy    string
	Desc       bool
	Limit      int
}

// Snapshot is one query result.
type Snapshot struct {
	ID   string
	Data Document
}

// Batch stages writes that Commit applies atomically. Operations are
// applied in the order they were staged.
type Batch interface {
	Set(collection, id string, doc Document)
	Update(collection, id string, fields Document)
	Delete(collection, id string)
	// Len reports the number of staged operations; an empty batch commits
	// as a no-op.
	Len() int
	Commit(ctx context.Context) error
}

// Store is the adapter every repository and the fan-out engine write
// through.
type Store interface {
	// Get fetches one document, ErrNotFound if absent.
	Get(ctx context.Context, collection, id string) (Document, error)
	// Query runs an equality-filtered, optionally ordered query.
	Query(ctx context.Context, q Query) ([]Snapshot, error)
	// Add creates a document under a generated id and returns the id.
	Add(ctx context.Context, collection string, doc Document) (string, error)
	// Set writes a document under a caller-chosen id, replacing any
	// existing content.
	Set(ctx context.Context, collection, id string, doc Document) error
	// Update merges fields into an existing document, ErrNotFound if the
	// document is absent. Values produced by Increment are applied
	// atomically by the backend.
	Update(ctx context.Context, collection, id string, fields Document) error
	// Delete removes a document. Deleting an absent document is not an
	// error.
	Delete(ctx context.Context, collection, id string) error
	// Batch starts an atomic multi-operation write.
	Batch() Batch
}

type increment struct {
	Delta int64
}

// Increment returns a field value that Update applies as an atomic
// server-side increment rather than a plain write.
func Increment(delta int64) any {
	return increment{Delta: delta}
}

// IncrementDelta reports whether v is an Increment value and its delta.
func IncrementDelta(v any) (int64, bool) {
	inc, ok := v.(increment)
	if !ok {
		return 0, false
	}
	return inc.Delta, true
}
