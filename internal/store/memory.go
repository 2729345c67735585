package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-process Store used by tests and local development.
// Batches commit atomically: staged operations apply to a copy first and
// the copy is swapped in only when every operation succeeds.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]Document
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string]map[string]Document)}
}

func (s *MemoryStore) Get(_ context.Context, collection, id string) (Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.collections[collection][id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneDoc(doc), nil
}

func (s *MemoryStore) Query(_ context.Context, q Query) ([]Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []Snapshot
	for id, doc := range s.collections[q.Collection] {
		if matches(doc, q.Filters) {
			results = append(results, Snapshot{ID: id, Data: cloneDoc(doc)})
		}
	}
	if q.OrderBy != "" {
		sort.SliceStable(results, func(i, j int) bool {
			less := lessValue(results[i].Data[q.OrderBy], results[j].Data[q.OrderBy])
			if q.Desc {
				return !less && !equalValue(results[i].Data[q.OrderBy], results[j].Data[q.OrderBy])
			}
			return less
		})
	}
	if q.Limit > 0 && len(results) > q.Limit {
		results = results[:q.Limit]
	}
	return results, nil
}

func (s *MemoryStore) Add(_ context.Context, collection string, doc Document) (string, error) {
	id := uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.put(collection, id, doc)
	return id, nil
}

func (s *MemoryStore) Set(_ context.Context, collection, id string, doc Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.put(collection, id, doc)
	return nil
}

func (s *MemoryStore) Update(_ context.Context, collection, id string, fields Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.collections[collection][id]
	if !ok {
		return ErrNotFound
	}
	applyFields(doc, fields)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.collections[collection], id)
	return nil
}

func (s *MemoryStore) Batch() Batch {
	return &memoryBatch{store: s}
}

func (s *MemoryStore) put(collection, id string, doc Document) {
	if s.collections[collection] == nil {
		s.collections[collection] = make(map[string]Document)
	}
	s.collections[collection][id] = cloneDoc(doc)
}

type memoryOp struct {
	kind       string
	collection string
	id         string
	doc        Document
}

type memoryBatch struct {
	store *MemoryStore
	ops   []memoryOp
}

func (b *memoryBatch) Set(collection, id string, doc Document) {
	b.ops = append(b.ops, memoryOp{kind: "set", collection: collection, id: id, doc: cloneDoc(doc)})
}

func (b *memoryBatch) Update(collection, id string, fields Document) {
	b.ops = append(b.ops, memoryOp{kind: "update", collection: collection, id: id, doc: cloneDoc(fields)})
}

func (b *memoryBatch) Delete(collection, id string) {
	b.ops = append(b.ops, memoryOp{kind: "delete", collection: collection, id: id})
}

func (b *memoryBatch) Len() int { return len(b.ops) }

func (b *memoryBatch) Commit(_ context.Context) error {
	if len(b.ops) == 0 {
		return nil
	}
	b.store.mu.Lock()
	defer b.store.mu.Unlock()

	staged := make(map[string]map[string]Document, len(b.store.collections))
	for name, coll := range b.store.collections {
		c := make(map[string]Document, len(coll))
		for id, doc := range coll {
			c[id] = cloneDoc(doc)
		}
		staged[name] = c
	}

	for _, op := range b.ops {
		switch op.kind {
		case "set":
			if staged[op.collection] == nil {
				staged[op.collection] = make(map[string]Document)
			}
			staged[op.collection][op.id] = cloneDoc(op.doc)
		case "update":
			doc, ok := staged[op.collection][op.id]
			if !ok {
				return fmt.Errorf("batch update %s/%s: %w", op.collection, op.id, ErrNotFound)
			}
			applyFields(doc, op.doc)
		case "delete":
			delete(staged[op.collection], op.id)
		}
	}

	b.store.collections = staged
	return nil
}

func applyFields(doc Document, fields Document) {
	for k, v := range fields {
		if delta, ok := IncrementDelta(v); ok {
			doc[k] = numeric(doc[k]) + delta
			continue
		}
		doc[k] = v
	}
}

func cloneDoc(doc Document) Document {
	out := make(Document, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	return out
}

func matches(doc Document, filters []Filter) bool {
	for _, f := range filters {
		if !equalValue(doc[f.Field], f.Value) {
			return false
		}
	}
	return true
}

func equalValue(a, b any) bool {
	if at, ok := a.(time.Time); ok {
		bt, ok := b.(time.Time)
		return ok && at.Equal(bt)
	}
	return a == b
}

func lessValue(a, b any) bool {
	switch av := a.(type) {
	case time.Time:
		bv, ok := b.(time.Time)
		return ok && av.Before(bv)
	case string:
		bv, ok := b.(string)
		return ok && av < bv
	default:
		return numeric(a) < numeric(b)
	}
}

func numeric(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case int32:
		return int64(n)
	case float64:
		return int64(n)
	default:
		return 0
	}
}
