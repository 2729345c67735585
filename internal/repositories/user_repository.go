package repositories

import (
	"context"

	"github.com/aviary-social/backend/internal/models"
	"github.com/aviary-social/backend/internal/store"
)

// UserRepository defines the interface for user data operations.
type UserRepository interface {
	CreateUser(ctx context.Context, user models.User) error
	GetUserByHandle(ctx context.Context, handle string) (*models.User, error)
	// GetUserByProviderUID resolves an identity-provider subject id to the
	// user document. Exactly one match is expected; with duplicates the
	// first match wins.
	GetUserByProviderUID(ctx context.Context, uid string) (*models.User, error)
	UpdateDetails(ctx context.Context, handle string, details store.Document) error
	UpdateImageURL(ctx context.Context, handle, imageURL string) error
}

// StoreUserRepository implements UserRepository over the document store.
// User documents are keyed by handle.
type StoreUserRepository struct {
	store store.Store
}

func NewStoreUserRepository(s store.Store) *StoreUserRepository {
	return &StoreUserRepository{store: s}
}

func (r *StoreUserRepository) CreateUser(ctx context.Context, user models.User) error {
	return r.store.Set(ctx, models.CollectionUsers, user.Handle, user.ToDoc())
}

func (r *StoreUserRepository) GetUserByHandle(ctx context.Context, handle string) (*models.User, error) {
	doc, err := r.store.Get(ctx, models.CollectionUsers, handle)
	if err != nil {
		return nil, err
	}
	user := models.UserFromDoc(doc)
	user.Handle = handle
	return &user, nil
}

func (r *StoreUserRepository) GetUserByProviderUID(ctx context.Context, uid string) (*models.User, error) {
	snaps, err := r.store.Query(ctx, store.Query{
		Collection: models.CollectionUsers,
		Filters:    []store.Filter{{Field: "userId", Value: uid}},
		Limit:      1,
	})
	if err != nil {
		return nil, err
	}
	if len(snaps) == 0 {
		return nil, store.ErrNotFound
	}
	user := models.UserFromDoc(snaps[0].Data)
	user.Handle = snaps[0].ID
	return &user, nil
}

func (r *StoreUserRepository) UpdateDetails(ctx context.Context, handle string, details store.Document) error {
	if len(details) == 0 {
		return nil
	}
	return r.store.Update(ctx, models.CollectionUsers, handle, details)
}

func (r *StoreUserRepository) UpdateImageURL(ctx context.Context, handle, imageURL string) error {
	return r.store.Update(ctx, models.CollectionUsers, handle, store.Document{"imageUrl": imageURL})
}
