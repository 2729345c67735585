package fanout

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aviary-social/backend/internal/events"
	"github.com/aviary-social/backend/internal/models"
	"github.com/aviary-social/backend/internal/store"
)

func newEngine(t *testing.T) (*Engine, *store.MemoryStore) {
	t.Helper()
	s := store.NewMemoryStore()
	return NewEngine(s), s
}

func seedPost(t *testing.T, s *store.MemoryStore, id, owner string) {
	t.Helper()
	require.NoError(t, s.Set(context.Background(), models.CollectionPosts, id, store.Document{
		"userHandle":   owner,
		"userImage":    "owner.png",
		"content":      "hello",
		"createdAt":    time.Now().UTC(),
		"likeCount":    int64(0),
		"commentCount": int64(0),
	}))
}

func TestLikeCreatedNotifiesPostOwner(t *testing.T) {
	engine, s := newEngine(t)
	ctx := context.Background()
	seedPost(t, s, "p1", "alice")

	engine.Handle(ctx, events.Event{
		Collection: models.CollectionLikes,
		ID:         "like-1",
		Kind:       events.KindCreated,
		After:      store.Document{"postId": "p1", "userHandle": "bob"},
	})

	doc, err := s.Get(ctx, models.CollectionNotifications, "like-1")
	require.NoError(t, err)
	notification := models.NotificationFromDoc("like-1", doc)
	assert.Equal(t, "alice", notification.Recipient)
	assert.Equal(t, "bob", notification.Sender)
	assert.Equal(t, models.NotificationTypeLike, notification.Type)
	assert.Equal(t, "p1", notification.PostID)
	assert.False(t, notification.Read)
}

func TestSelfLikeDoesNotNotify(t *testing.T) {
	engine, s := newEngine(t)
	ctx := context.Background()
	seedPost(t, s, "p1", "alice")

	engine.Handle(ctx, events.Event{
		Collection: models.CollectionLikes,
		ID:         "like-1",
		Kind:       events.KindCreated,
		After:      store.Document{"postId": "p1", "userHandle": "alice"},
	})

	_, err := s.Get(ctx, models.CollectionNotifications, "like-1")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestLikeOnMissingPostDoesNotNotify(t *testing.T) {
	engine, s := newEngine(t)
	ctx := context.Background()

	engine.Handle(ctx, events.Event{
		Collection: models.CollectionLikes,
		ID:         "like-1",
		Kind:       events.KindCreated,
		After:      store.Document{"postId": "gone", "userHandle": "bob"},
	})

	_, err := s.Get(ctx, models.CollectionNotifications, "like-1")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestLikeDeletedRemovesNotification(t *testing.T) {
	engine, s := newEngine(t)
	ctx := context.Background()
	require.NoError(t, s.Set(ctx, models.CollectionNotifications, "like-1", store.Document{"recipient": "alice"}))

	event := events.Event{
		Collection: models.CollectionLikes,
		ID:         "like-1",
		Kind:       events.KindDeleted,
		Before:     store.Document{"postId": "p1", "userHandle": "bob"},
	}
	engine.Handle(ctx, event)

	_, err := s.Get(ctx, models.CollectionNotifications, "like-1")
	assert.ErrorIs(t, err, store.ErrNotFound)

	// Redelivery of the delete is harmless.
	engine.Handle(ctx, event)
}

func TestCommentCreatedNotifiesWithCommentType(t *testing.T) {
	engine, s := newEngine(t)
	ctx := context.Background()
	seedPost(t, s, "p1", "alice")

	engine.Handle(ctx, events.Event{
		Collection: models.CollectionComments,
		ID:         "comment-1",
		Kind:       events.KindCreated,
		After:      store.Document{"postId": "p1", "userHandle": "bob", "body": "nice"},
	})

	doc, err := s.Get(ctx, models.CollectionNotifications, "comment-1")
	require.NoError(t, err)
	assert.Equal(t, models.NotificationTypeComment, doc["type"])
}

func TestImageChangePropagatesToOwnPostsOnly(t *testing.T) {
	engine, s := newEngine(t)
	ctx := context.Background()
	seedPost(t, s, "p1", "alice")
	seedPost(t, s, "p2", "alice")
	seedPost(t, s, "p3", "bob")

	engine.Handle(ctx, events.Event{
		Collection: models.CollectionUsers,
		ID:         "alice",
		Kind:       events.KindUpdated,
		Before:     store.Document{"handle": "alice", "imageUrl": "old.png"},
		After:      store.Document{"handle": "alice", "imageUrl": "new.png"},
	})

	for _, id := range []string{"p1", "p2"} {
		doc, err := s.Get(ctx, models.CollectionPosts, id)
		require.NoError(t, err)
		assert.Equal(t, "new.png", doc["userImage"], id)
	}
	doc, err := s.Get(ctx, models.CollectionPosts, "p3")
	require.NoError(t, err)
	assert.Equal(t, "owner.png", doc["userImage"])
}

func TestUserUpdateWithoutImageChangeIsNoOp(t *testing.T) {
	engine, s := newEngine(t)
	ctx := context.Background()
	seedPost(t, s, "p1", "alice")

	engine.Handle(ctx, events.Event{
		Collection: models.CollectionUsers,
		ID:         "alice",
		Kind:       events.KindUpdated,
		Before:     store.Document{"handle": "alice", "imageUrl": "same.png", "bio": ""},
		After:      store.Document{"handle": "alice", "imageUrl": "same.png", "bio": "hey"},
	})

	doc, err := s.Get(ctx, models.CollectionPosts, "p1")
	require.NoError(t, err)
	assert.Equal(t, "owner.png", doc["userImage"])
}

func TestPostDeletedCascadesToDependents(t *testing.T) {
	engine, s := newEngine(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, models.CollectionComments, "c1", store.Document{"postId": "p1"}))
	require.NoError(t, s.Set(ctx, models.CollectionComments, "c2", store.Document{"postId": "p1"}))
	require.NoError(t, s.Set(ctx, models.CollectionLikes, "l1", store.Document{"postId": "p1"}))
	require.NoError(t, s.Set(ctx, models.CollectionNotifications, "l1", store.Document{"postId": "p1"}))
	// Dependents of another post stay untouched.
	require.NoError(t, s.Set(ctx, models.CollectionComments, "c3", store.Document{"postId": "p2"}))

	engine.Handle(ctx, events.Event{
		Collection: models.CollectionPosts,
		ID:         "p1",
		Kind:       events.KindDeleted,
		Before:     store.Document{"userHandle": "alice"},
	})

	for _, collection := range []string{models.CollectionComments, models.CollectionLikes, models.CollectionNotifications} {
		snaps, err := s.Query(ctx, store.Query{
			Collection: collection,
			Filters:    []store.Filter{{Field: "postId", Value: "p1"}},
		})
		require.NoError(t, err)
		assert.Empty(t, snaps, collection)
	}

	_, err := s.Get(ctx, models.CollectionComments, "c3")
	assert.NoError(t, err)
}

func TestPostDeletedWithNoDependents(t *testing.T) {
	engine, _ := newEngine(t)

	// Nothing to delete; the empty batch must not error or log a failure.
	engine.Handle(context.Background(), events.Event{
		Collection: models.CollectionPosts,
		ID:         "lonely",
		Kind:       events.KindDeleted,
	})
}
