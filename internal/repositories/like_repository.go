package repositories

import (
	"context"

	"github.com/aviary-social/backend/internal/models"
	"github.com/aviary-social/backend/internal/store"
)

// LikeRepository defines the interface for like data operations.
type LikeRepository interface {
	CreateLike(ctx context.Context, like *models.Like) error
	// GetLikeByUserAndPost returns the like for (handle, postId), or
	// store.ErrNotFound. This pre-check is how at-most-one-like is
	// enforced; it is a query, not a unique constraint.
	GetLikeByUserAndPost(ctx context.Context, handle, postID string) (*models.Like, error)
	GetLikesByHandle(ctx context.Context, handle string) ([]models.Like, error)
	DeleteLike(ctx context.Context, id string) error
}

// StoreLikeRepository implements LikeRepository over the document store.
type StoreLikeRepository struct {
	store store.Store
}

func NewStoreLikeRepository(s store.Store) *StoreLikeRepository {
	return &StoreLikeRepository{store: s}
}

func (r *StoreLikeRepository) CreateLike(ctx context.Context, like *models.Like) error {
	id, err := r.store.Add(ctx, models.CollectionLikes, like.ToDoc())
	if err != nil {
		return err
	}
	like.ID = id
	return nil
}

func (r *StoreLikeRepository) GetLikeByUserAndPost(ctx context.Context, handle, postID string) (*models.Like, error) {
	snaps, err := r.store.Query(ctx, store.Query{
		Collection: models.CollectionLikes,
		Filters: []store.Filter{
			{Field: "userHandle", Value: handle},
			{Field: "postId", Value: postID},
		},
		Limit: 1,
	})
	if err != nil {
		return nil, err
	}
	if len(snaps) == 0 {
		return nil, store.ErrNotFound
	}
	like := models.LikeFromDoc(snaps[0].ID, snaps[0].Data)
	return &like, nil
}

func (r *StoreLikeRepository) GetLikesByHandle(ctx context.Context, handle string) ([]models.Like, error) {
	snaps, err := r.store.Query(ctx, store.Query{
		Collection: models.CollectionLikes,
		Filters:    []store.Filter{{Field: "userHandle", Value: handle}},
	})
	if err != nil {
		return nil, err
	}
	likes := make([]models.Like, 0, len(snaps))
	for _, snap := range snaps {
		likes = append(likes, models.LikeFromDoc(snap.ID, snap.Data))
	}
	return likes, nil
}

func (r *StoreLikeRepository) DeleteLike(ctx context.Context, id string) error {
	return r.store.Delete(ctx, models.CollectionLikes, id)
}
