package repositories

import (
	"context"

	"github.com/aviary-social/backend/internal/models"
	"github.com/aviary-social/backend/internal/store"
)

// CommentRepository defines the interface for comment data operations.
type CommentRepository interface {
	CreateComment(ctx context.Context, comment *models.Comment) error
	// GetCommentsByPostID returns a post's comments, newest first.
	GetCommentsByPostID(ctx context.Context, postID string) ([]models.Comment, error)
}

// StoreCommentRepository implements CommentRepository over the document
// store.
type StoreCommentRepository struct {
	store store.Store
}

func NewStoreCommentRepository(s store.Store) *StoreCommentRepository {
	return &StoreCommentRepository{store: s}
}

func (r *StoreCommentRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	id, err := r.store.Add(ctx, models.CollectionComments, comment.ToDoc())
	if err != nil {
		return err
	}
	comment.ID = id
	return nil
}

func (r *StoreCommentRepository) GetCommentsByPostID(ctx context.Context, postID string) ([]models.Comment, error) {
	snaps, err := r.store.Query(ctx, store.Query{
		Collection: models.CollectionComments,
		Filters:    []store.Filter{{Field: "postId", Value: postID}},
		OrderBy:    "createdAt",
		Desc:       true,
	})
	if err != nil {
		return nil, err
	}
	comments := make([]models.Comment, 0, len(snaps))
	for _, snap := range snaps {
		comments = append(comments, models.CommentFromDoc(snap.ID, snap.Data))
	}
	return comments, nil
}
