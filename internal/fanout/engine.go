// Package fanout reacts to document change events: it creates and removes
// notifications, propagates profile image changes and cascade-deletes the
// dependents of removed posts. Every reaction is best-effort; failures are
// logged and swallowed, never retried and never surfaced to a request.
package fanout

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/aviary-social/backend/internal/events"
	"github.com/aviary-social/backend/internal/models"
	"github.com/aviary-social/backend/internal/store"
)

// Engine subscribes to the change feed and applies the fan-out rules.
type Engine struct {
	store store.Store
	log   zerolog.Logger
}

func NewEngine(s store.Store) *Engine {
	return &Engine{
		store: s,
		log:   log.With().Str("component", "fanout").Logger(),
	}
}

// Subscribe attaches the engine to a feed.
func (e *Engine) Subscribe(ctx context.Context, feed events.Feed) error {
	return feed.Subscribe(ctx, e.Handle)
}

// Handle dispatches one change event. Handlers are idempotent where the
// data model allows: notifications are keyed by the triggering document's
// id, so redelivery overwrites rather than duplicates.
func (e *Engine) Handle(ctx context.Context, event events.Event) {
	switch {
	case event.Collection == models.CollectionLikes && event.Kind == events.KindCreated:
		e.notify(ctx, event, models.NotificationTypeLike)
	case event.Collection == models.CollectionLikes && event.Kind == events.KindDeleted:
		e.removeNotification(ctx, event.ID)
	case event.Collection == models.CollectionComments && event.Kind == events.KindCreated:
		e.notify(ctx, event, models.NotificationTypeComment)
	case event.Collection == models.CollectionUsers && event.Kind == events.KindUpdated:
		e.propagateImageChange(ctx, event)
	case event.Collection == models.CollectionPosts && event.Kind == events.KindDeleted:
		e.cascadeDelete(ctx, event.ID)
	}
}

// notify creates a notification for the post owner, keyed by the
// triggering like or comment id. Self-likes and self-comments never
// notify.
func (e *Engine) notify(ctx context.Context, event events.Event, typ string) {
	postID := getString(event.After, "postId")
	sender := getString(event.After, "userHandle")

	doc, err := e.store.Get(ctx, models.CollectionPosts, postID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			e.log.Error().Err(err).Str("postId", postID).Msg("notify: failed to read post")
		}
		return
	}
	post := models.PostFromDoc(postID, doc)
	if post.UserHandle == sender {
		return
	}

	notification := models.Notification{
		Recipient: post.UserHandle,
		Sender:    sender,
		Type:      typ,
		Read:      false,
		PostID:    postID,
		CreatedAt: time.Now().UTC(),
	}
	if err := e.store.Set(ctx, models.CollectionNotifications, event.ID, notification.ToDoc()); err != nil {
		e.log.Error().Err(err).Str("id", event.ID).Str("type", typ).Msg("notify: failed to create notification")
	}
}

// removeNotification deletes the notification keyed by a removed like.
// A missing notification is not an error.
func (e *Engine) removeNotification(ctx context.Context, id string) {
	if err := e.store.Delete(ctx, models.CollectionNotifications, id); err != nil {
		e.log.Error().Err(err).Str("id", id).Msg("failed to delete notification")
	}
}

// propagateImageChange updates the denormalized userImage on every post
// the user owns, in one atomic batch. No-op when the image is unchanged.
func (e *Engine) propagateImageChange(ctx context.Context, event events.Event) {
	oldImage := getString(event.Before, "imageUrl")
	newImage := getString(event.After, "imageUrl")
	if oldImage == newImage {
		return
	}
	handle := getString(event.After, "handle")
	if handle == "" {
		handle = event.ID
	}

	snaps, err := e.store.Query(ctx, store.Query{
		Collection: models.CollectionPosts,
		Filters:    []store.Filter{{Field: "userHandle", Value: handle}},
	})
	if err != nil {
		e.log.Error().Err(err).Str("handle", handle).Msg("image change: failed to query posts")
		return
	}

	batch := e.store.Batch()
	for _, snap := range snaps {
		batch.Update(models.CollectionPosts, snap.ID, store.Document{"userImage": newImage})
	}
	if err := batch.Commit(ctx); err != nil {
		e.log.Error().Err(err).Str("handle", handle).Msg("image change: batch commit failed")
	}
}

// cascadeDelete removes every comment, like and notification referencing
// a deleted post, accumulated into a single atomic batch.
func (e *Engine) cascadeDelete(ctx context.Context, postID string) {
	batch := e.store.Batch()
	for _, collection := range []string{
		models.CollectionComments,
		models.CollectionLikes,
		models.CollectionNotifications,
	} {
		snaps, err := e.store.Query(ctx, store.Query{
			Collection: collection,
			Filters:    []store.Filter{{Field: "postId", Value: postID}},
		})
		if err != nil {
			e.log.Error().Err(err).Str("postId", postID).Str("collection", collection).
				Msg("cascade: failed to query dependents")
			return
		}
		for _, snap := range snaps {
			batch.Delete(collection, snap.ID)
		}
	}
	if err := batch.Commit(ctx); err != nil {
		e.log.Error().Err(err).Str("postId", postID).Msg("cascade: batch commit failed")
	}
}

func getString(doc map[string]any, key string) string {
	s, _ := doc[key].(string)
	return s
}
