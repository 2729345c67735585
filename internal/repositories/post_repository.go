package repositories

import (
	"context"

	"github.com/aviary-social/backend/internal/models"
	"github.com/aviary-social/backend/internal/store"
)

// PostRepository defines the interface for post data operations.
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id string) (*models.Post, error)
	// GetAllPosts returns every post, newest first.
	GetAllPosts(ctx context.Context) ([]models.Post, error)
	GetPostsByHandle(ctx context.Context, handle string) ([]models.Post, error)
	DeletePost(ctx context.Context, id string) error
	// IncrementLikeCount adjusts the denormalized like counter with a
	// store-atomic increment; delta may be negative.
	IncrementLikeCount(ctx context.Context, id string, delta int64) error
	IncrementCommentCount(ctx context.Context, id string, delta int64) error
}

// StorePostRepository implements PostRepository over the document store.
type StorePostRepository struct {
	store store.Store
}

func NewStorePostRepository(s store.Store) *StorePostRepository {
	return &StorePostRepository{store: s}
}

func (r *StorePostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	id, err := r.store.Add(ctx, models.CollectionPosts, post.ToDoc())
	if err != nil {
		return err
	}
	post.ID = id
	return nil
}

func (r *StorePostRepository) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	doc, err := r.store.Get(ctx, models.CollectionPosts, id)
	if err != nil {
		return nil, err
	}
	post := models.PostFromDoc(id, doc)
	return &post, nil
}

func (r *StorePostRepository) GetAllPosts(ctx context.Context) ([]models.Post, error) {
	return r.queryPosts(ctx, nil)
}

func (r *StorePostRepository) GetPostsByHandle(ctx context.Context, handle string) ([]models.Post, error) {
	return r.queryPosts(ctx, []store.Filter{{Field: "userHandle", Value: handle}})
}

func (r *StorePostRepository) DeletePost(ctx context.Context, id string) error {
	return r.store.Delete(ctx, models.CollectionPosts, id)
}

func (r *StorePostRepository) IncrementLikeCount(ctx context.Context, id string, delta int64) error {
	return r.store.Update(ctx, models.CollectionPosts, id, store.Document{"likeCount": store.Increment(delta)})
}

func (r *StorePostRepository) IncrementCommentCount(ctx context.Context, id string, delta int64) error {
	return r.store.Update(ctx, models.CollectionPosts, id, store.Document{"commentCount": store.Increment(delta)})
}

func (r *StorePostRepository) queryPosts(ctx context.Context, filters []store.Filter) ([]models.Post, error) {
	snaps, err := r.store.Query(ctx, store.Query{
		Collection: models.CollectionPosts,
		Filters:    filters,
		OrderBy:    "createdAt",
		Desc:       true,
	})
	if err != nil {
		return nil, err
	}
	posts := make([]models.Post, 0, len(snaps))
	for _, snap := range snaps {
		posts = append(posts, models.PostFromDoc(snap.ID, snap.Data))
	}
	return posts, nil
}
