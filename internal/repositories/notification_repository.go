package repositories

import (
	"context"

	"github.com/aviary-social/backend/internal/models"
	"github.com/aviary-social/backend/internal/store"
)

// NotificationRepository defines the interface for notification data
// operations.
type NotificationRepository interface {
	// GetByRecipient returns a user's notifications, newest first.
	GetByRecipient(ctx context.Context, handle string) ([]models.Notification, error)
	// MarkRead flags the given notifications read in one atomic batch.
	MarkRead(ctx context.Context, ids []string) error
}

// StoreNotificationRepository implements NotificationRepository over the
// document store. Notification documents are only created by the fan-out
// engine.
type StoreNotificationRepository struct {
	store store.Store
}

func NewStoreNotificationRepository(s store.Store) *StoreNotificationRepository {
	return &StoreNotificationRepository{store: s}
}

func (r *StoreNotificationRepository) GetByRecipient(ctx context.Context, handle string) ([]models.Notification, error) {
	snaps, err := r.store.Query(ctx, store.Query{
		Collection: models.CollectionNotifications,
		Filters:    []store.Filter{{Field: "recipient", Value: handle}},
		OrderBy:    "createdAt",
		Desc:       true,
	})
	if err != nil {
		return nil, err
	}
	notifications := make([]models.Notification, 0, len(snaps))
	for _, snap := range snaps {
		notifications = append(notifications, models.NotificationFromDoc(snap.ID, snap.Data))
	}
	return notifications, nil
}

func (r *StoreNotificationRepository) MarkRead(ctx context.Context, ids []string) error {
	batch := r.store.Batch()
	for _, id := range ids {
		batch.Update(models.CollectionNotifications, id, store.Document{"read": true})
	}
	return batch.Commit(ctx)
}
