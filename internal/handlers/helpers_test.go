package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aviary-social/backend/internal/models"
	"github.com/aviary-social/backend/internal/testutil"
)

func doJSON(t *testing.T, env *testutil.Env, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.App.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out), rec.Body.String())
}

// signup registers a user and returns their bearer token.
func signup(t *testing.T, env *testutil.Env, handle string) string {
	t.Helper()
	email := fmt.Sprintf("%s@example.com", handle)
	rec := doJSON(t, env, "POST", "/signup", "", map[string]string{
		"handle":       handle,
		"email":        email,
		"password":     "password123",
		"confirm_pass": "password123",
	})
	require.Equal(t, 201, rec.Code, rec.Body.String())
	return testutil.Token(email)
}

func createPost(t *testing.T, env *testutil.Env, token, content string) models.Post {
	t.Helper()
	rec := doJSON(t, env, "POST", "/posts", token, map[string]string{"content": content})
	require.Equal(t, 201, rec.Code, rec.Body.String())
	var post models.Post
	decodeBody(t, rec, &post)
	require.NotEmpty(t, post.ID)
	return post
}
