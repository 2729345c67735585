package store

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/aviary-social/backend/internal/events"
)

// EventedStore decorates a Store so every successful write publishes a
// change event to the feed. Update and delete events carry the prior
// document, read back before the write, mirroring the before/after
// snapshots document-store triggers provide.
type EventedStore struct {
	inner Store
	feed  events.Publisher
}

func NewEventedStore(inner Store, feed events.Publisher) *EventedStore {
	return &EventedStore{inner: inner, feed: feed}
}

func (s *EventedStore) Get(ctx context.Context, collection, id string) (Document, error) {
	return s.inner.Get(ctx, collection, id)
}

func (s *EventedStore) Query(ctx context.Context, q Query) ([]Snapshot, error) {
	return s.inner.Query(ctx, q)
}

func (s *EventedStore) Add(ctx context.Context, collection string, doc Document) (string, error) {
	id, err := s.inner.Add(ctx, collection, doc)
	if err != nil {
		return "", err
	}
	s.publish(ctx, events.Event{
		Collection: collection, ID: id, Kind: events.KindCreated, After: doc,
	})
	return id, nil
}

func (s *EventedStore) Set(ctx context.Context, collection, id string, doc Document) error {
	before, err := s.inner.Get(ctx, collection, id)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	if err := s.inner.Set(ctx, collection, id, doc); err != nil {
		return err
	}
	kind := events.KindCreated
	if before != nil {
		kind = events.KindUpdated
	}
	s.publish(ctx, events.Event{
		Collection: collection, ID: id, Kind: kind, Before: before, After: doc,
	})
	return nil
}

func (s *EventedStore) Update(ctx context.Context, collection, id string, fields Document) error {
	before, err := s.inner.Get(ctx, collection, id)
	if err != nil {
		return err
	}
	if err := s.inner.Update(ctx, collection, id, fields); err != nil {
		return err
	}
	after, err := s.inner.Get(ctx, collection, id)
	if err != nil {
		return err
	}
	s.publish(ctx, events.Event{
		Collection: collection, ID: id, Kind: events.KindUpdated, Before: before, After: after,
	})
	return nil
}

func (s *EventedStore) Delete(ctx context.Context, collection, id string) error {
	before, err := s.inner.Get(ctx, collection, id)
	if errors.Is(err, ErrNotFound) {
		// Deleting an absent document stays a no-op and fires no event.
		return s.inner.Delete(ctx, collection, id)
	}
	if err != nil {
		return err
	}
	if err := s.inner.Delete(ctx, collection, id); err != nil {
		return err
	}
	s.publish(ctx, events.Event{
		Collection: collection, ID: id, Kind: events.KindDeleted, Before: before,
	})
	return nil
}

func (s *EventedStore) Batch() Batch {
	return &eventedBatch{store: s, inner: s.inner.Batch()}
}

func (s *EventedStore) publish(ctx context.Context, event events.Event) {
	if err := s.feed.Publish(ctx, event); err != nil {
		log.Error().Err(err).
			Str("collection", event.Collection).
			Str("id", event.ID).
			Str("kind", string(event.Kind)).
			Msg("failed to publish change event")
	}
}

type batchOp struct {
	kind       events.Kind
	collection string
	id         string
	doc        Document
}

type eventedBatch struct {
	store *EventedStore
	inner Batch
	ops   []batchOp
}

func (b *eventedBatch) Set(collection, id string, doc Document) {
	b.inner.Set(collection, id, doc)
	b.ops = append(b.ops, batchOp{kind: events.KindCreated, collection: collection, id: id, doc: doc})
}

func (b *eventedBatch) Update(collection, id string, fields Document) {
	b.inner.Update(collection, id, fields)
	b.ops = append(b.ops, batchOp{kind: events.KindUpdated, collection: collection, id: id, doc: fields})
}

func (b *eventedBatch) Delete(collection, id string) {
	b.inner.Delete(collection, id)
	b.ops = append(b.ops, batchOp{kind: events.KindDeleted, collection: collection, id: id})
}

func (b *eventedBatch) Len() int { return b.inner.Len() }

func (b *eventedBatch) Commit(ctx context.Context) error {
	// Prior documents are captured before the commit so delete and update
	// events can carry them afterwards.
	befores := make([]Document, len(b.ops))
	for i, op := range b.ops {
		if op.kind == events.KindCreated {
			continue
		}
		doc, err := b.store.inner.Get(ctx, op.collection, op.id)
		if err == nil {
			befores[i] = doc
		}
	}

	if err := b.inner.Commit(ctx); err != nil {
		return err
	}

	for i, op := range b.ops {
		event := events.Event{Collection: op.collection, ID: op.id, Kind: op.kind, Before: befores[i]}
		switch op.kind {
		case events.KindCreated:
			event.After = op.doc
		case events.KindUpdated:
			after, err := b.store.inner.Get(ctx, op.collection, op.id)
			if err == nil {
				event.After = after
			}
		}
		b.store.publish(ctx, event)
	}
	return nil
}
