package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aviary-social/backend/internal/testutil"
)

func TestSignupCreatesUserAndReturnsToken(t *testing.T) {
	env := testutil.NewEnv()

	rec := doJSON(t, env, "POST", "/signup", "", map[string]string{
		"handle":       "alice",
		"email":        "a@x.com",
		"password":     "password123",
		"confirm_pass": "password123",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var body map[string]string
	decodeBody(t, rec, &body)
	assert.NotEmpty(t, body["token"])

	// The profile document is keyed by handle with the default image.
	rec = doJSON(t, env, "GET", "/user/alice", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var profile struct {
		User struct {
			Handle   string `json:"handle"`
			ImageURL string `json:"imageUrl"`
		} `json:"user"`
	}
	decodeBody(t, rec, &profile)
	assert.Equal(t, "alice", profile.User.Handle)
	assert.Contains(t, profile.User.ImageURL, "no-image.jpg")
}

func TestSignupRejectsTakenHandle(t *testing.T) {
	env := testutil.NewEnv()
	signup(t, env, "alice")

	rec := doJSON(t, env, "POST", "/signup", "", map[string]string{
		"handle":       "alice",
		"email":        "other@x.com",
		"password":     "password123",
		"confirm_pass": "password123",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]string
	decodeBody(t, rec, &body)
	assert.Equal(t, "Handle is already taken.", body["handle"])
}

func TestSignupRejectsTakenEmail(t *testing.T) {
	env := testutil.NewEnv()
	signup(t, env, "alice")

	rec := doJSON(t, env, "POST", "/signup", "", map[string]string{
		"handle":       "alice2",
		"email":        "alice@example.com",
		"password":     "password123",
		"confirm_pass": "password123",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]string
	decodeBody(t, rec, &body)
	assert.Equal(t, "Email is already taken.", body["email"])
}

func TestSignupValidatesFields(t *testing.T) {
	env := testutil.NewEnv()

	tests := []struct {
		name    string
		payload map[string]string
		field   string
	}{
		{
			name:    "missing email",
			payload: map[string]string{"handle": "bob", "password": "pw", "confirm_pass": "pw"},
			field:   "email",
		},
		{
			name:    "malformed email",
			payload: map[string]string{"handle": "bob", "email": "not-an-email", "password": "pw", "confirm_pass": "pw"},
			field:   "email",
		},
		{
			name:    "missing handle",
			payload: map[string]string{"email": "b@x.com", "password": "pw", "confirm_pass": "pw"},
			field:   "handle",
		},
		{
			name:    "password mismatch",
			payload: map[string]string{"handle": "bob", "email": "b@x.com", "password": "pw", "confirm_pass": "other"},
			field:   "confirm_pass",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, env, "POST", "/signup", "", tt.payload)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			var body map[string]string
			decodeBody(t, rec, &body)
			assert.NotEmpty(t, body[tt.field], rec.Body.String())
		})
	}
}

func TestLogin(t *testing.T) {
	env := testutil.NewEnv()
	signup(t, env, "alice")

	rec := doJSON(t, env, "POST", "/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	decodeBody(t, rec, &body)
	assert.Equal(t, testutil.Token("alice@example.com"), body["token"])
}

func TestLoginWrongCredentials(t *testing.T) {
	env := testutil.NewEnv()
	signup(t, env, "alice")

	rec := doJSON(t, env, "POST", "/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "wrong",
	})
	require.Equal(t, http.StatusForbidden, rec.Code)
	var body map[string]string
	decodeBody(t, rec, &body)
	assert.Equal(t, "Wrong credentials, please try again.", body["general"])
}

func TestProtectedRouteWithoutToken(t *testing.T) {
	env := testutil.NewEnv()

	rec := doJSON(t, env, "POST", "/posts", "", map[string]string{"content": "hi"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestProtectedRouteWithBadToken(t *testing.T) {
	env := testutil.NewEnv()

	rec := doJSON(t, env, "POST", "/posts", "forged", map[string]string{"content": "hi"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	var body map[string]string
	decodeBody(t, rec, &body)
	// Generic body, no provider detail.
	assert.Equal(t, "Unauthorised", body["error"])
}
