package handlers_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aviary-social/backend/internal/models"
	"github.com/aviary-social/backend/internal/store"
	"github.com/aviary-social/backend/internal/testutil"
)

func TestCreatePostDenormalizesAuthor(t *testing.T) {
	env := testutil.NewEnv()
	token := signup(t, env, "alice")

	post := createPost(t, env, token, "first post")
	assert.Equal(t, "alice", post.UserHandle)
	assert.Contains(t, post.UserImage, "no-image.jpg")
	assert.Equal(t, "first post", post.Content)
	assert.Zero(t, post.LikeCount)
	assert.Zero(t, post.CommentCount)
}

func TestCreatePostRejectsEmptyContent(t *testing.T) {
	env := testutil.NewEnv()
	token := signup(t, env, "alice")

	for _, content := range []string{"", "   ", "\n\t"} {
		rec := doJSON(t, env, "POST", "/posts", token, map[string]string{"content": content})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		var body map[string]string
		decodeBody(t, rec, &body)
		assert.Equal(t, "Your post must have contain words.", body["body"])
	}
}

func TestListPostsNewestFirst(t *testing.T) {
	env := testutil.NewEnv()
	token := signup(t, env, "alice")

	first := createPost(t, env, token, "one")
	second := createPost(t, env, token, "two")

	rec := doJSON(t, env, "GET", "/posts", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var posts []models.Post
	decodeBody(t, rec, &posts)
	require.Len(t, posts, 2)
	assert.Equal(t, second.ID, posts[0].ID)
	assert.Equal(t, first.ID, posts[1].ID)
}

func TestGetPostIncludesComments(t *testing.T) {
	env := testutil.NewEnv()
	token := signup(t, env, "alice")
	post := createPost(t, env, token, "hello")

	rec := doJSON(t, env, "POST", "/posts/"+post.ID+"/comment", token, map[string]string{"body": "nice"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(t, env, "GET", "/posts/"+post.ID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var got models.PostWithComments
	decodeBody(t, rec, &got)
	assert.Equal(t, post.ID, got.ID)
	require.Len(t, got.Comments, 1)
	assert.Equal(t, "nice", got.Comments[0].Body)
}

func TestGetPostNotFound(t *testing.T) {
	env := testutil.NewEnv()

	rec := doJSON(t, env, "GET", "/posts/missing", "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	var body map[string]string
	decodeBody(t, rec, &body)
	assert.Equal(t, "Post not found", body["error"])
}

func TestDeletePostRequiresOwnership(t *testing.T) {
	env := testutil.NewEnv()
	alice := signup(t, env, "alice")
	bob := signup(t, env, "bob")
	post := createPost(t, env, alice, "mine")

	rec := doJSON(t, env, "DELETE", "/posts/"+post.ID, bob, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
	var body map[string]string
	decodeBody(t, rec, &body)
	assert.Equal(t, "Unauthorised", body["error"])

	// Still there.
	rec = doJSON(t, env, "GET", "/posts/"+post.ID, "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDeletePostCascadesToDependents(t *testing.T) {
	env := testutil.NewEnv()
	alice := signup(t, env, "alice")
	bob := signup(t, env, "bob")
	post := createPost(t, env, alice, "short lived")

	rec := doJSON(t, env, "GET", "/posts/"+post.ID+"/like", bob, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = doJSON(t, env, "POST", "/posts/"+post.ID+"/comment", bob, map[string]string{"body": "hi"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	env.Settle()

	rec = doJSON(t, env, "DELETE", "/posts/"+post.ID, alice, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	env.Settle()

	ctx := context.Background()
	for _, collection := range []string{
		models.CollectionComments,
		models.CollectionLikes,
		models.CollectionNotifications,
	} {
		snaps, err := env.Memory.Query(ctx, store.Query{
			Collection: collection,
			Filters:    []store.Filter{{Field: "postId", Value: post.ID}},
		})
		require.NoError(t, err)
		assert.Empty(t, snaps, collection)
	}

	rec = doJSON(t, env, "GET", "/posts/"+post.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
