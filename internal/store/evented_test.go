package store

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aviary-social/backend/internal/events"
)

type capturePublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *capturePublisher) Publish(_ context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *capturePublisher) all() []events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.Event, len(p.events))
	copy(out, p.events)
	return out
}

func TestEventedStorePublishesCreate(t *testing.T) {
	pub := &capturePublisher{}
	s := NewEventedStore(NewMemoryStore(), pub)
	ctx := context.Background()

	id, err := s.Add(ctx, "likes", Document{"postId": "p1", "userHandle": "alice"})
	require.NoError(t, err)

	got := pub.all()
	require.Len(t, got, 1)
	assert.Equal(t, events.KindCreated, got[0].Kind)
	assert.Equal(t, "likes", got[0].Collection)
	assert.Equal(t, id, got[0].ID)
	assert.Equal(t, "p1", got[0].After["postId"])
}

func TestEventedStoreUpdateCarriesBeforeAndAfter(t *testing.T) {
	pub := &capturePublisher{}
	s := NewEventedStore(NewMemoryStore(), pub)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "users", "alice", Document{"imageUrl": "old.png", "handle": "alice"}))
	require.NoError(t, s.Update(ctx, "users", "alice", Document{"imageUrl": "new.png"}))

	got := pub.all()
	require.Len(t, got, 2)
	update := got[1]
	assert.Equal(t, events.KindUpdated, update.Kind)
	assert.Equal(t, "old.png", update.Before["imageUrl"])
	assert.Equal(t, "new.png", update.After["imageUrl"])
	assert.Equal(t, "alice", update.After["handle"])
}

func TestEventedStoreDeleteAbsentPublishesNothing(t *testing.T) {
	pub := &capturePublisher{}
	s := NewEventedStore(NewMemoryStore(), pub)

	require.NoError(t, s.Delete(context.Background(), "posts", "missing"))
	assert.Empty(t, pub.all())
}

func TestEventedStoreDeleteCarriesPriorDocument(t *testing.T) {
	pub := &capturePublisher{}
	s := NewEventedStore(NewMemoryStore(), pub)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "posts", "p1", Document{"userHandle": "alice"}))
	require.NoError(t, s.Delete(ctx, "posts", "p1"))

	got := pub.all()
	require.Len(t, got, 2)
	assert.Equal(t, events.KindDeleted, got[1].Kind)
	assert.Equal(t, "alice", got[1].Before["userHandle"])
	assert.Nil(t, got[1].After)
}

func TestEventedBatchPublishesAfterCommit(t *testing.T) {
	pub := &capturePublisher{}
	s := NewEventedStore(NewMemoryStore(), pub)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "comments", "c1", Document{"postId": "p1"}))
	require.NoError(t, s.Set(ctx, "likes", "l1", Document{"postId": "p1"}))
	before := len(pub.all())

	batch := s.Batch()
	batch.Delete("comments", "c1")
	batch.Delete("likes", "l1")
	require.NoError(t, batch.Commit(ctx))

	got := pub.all()[before:]
	require.Len(t, got, 2)
	for _, event := range got {
		assert.Equal(t, events.KindDeleted, event.Kind)
		assert.Equal(t, "p1", event.Before["postId"])
	}
}
