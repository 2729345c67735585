package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aviary-social/backend/internal/handlers"
	"github.com/aviary-social/backend/internal/middleware"
	"github.com/aviary-social/backend/internal/models"
	"github.com/aviary-social/backend/internal/repositories"
	"github.com/aviary-social/backend/internal/store"
	"github.com/aviary-social/backend/internal/testutil"
)

func newAuthedEcho(t *testing.T) (*echo.Echo, *testutil.FakeIdentity) {
	t.Helper()
	memory := store.NewMemoryStore()
	users := repositories.NewStoreUserRepository(memory)
	provider := testutil.NewFakeIdentity()

	_, _, err := provider.CreateAccount(context.Background(), "alice@example.com", "pw")
	require.NoError(t, err)
	require.NoError(t, users.CreateUser(context.Background(), models.User{
		Handle:    "alice",
		Email:     "alice@example.com",
		ImageURL:  "alice.png",
		UserID:    testutil.UID("alice@example.com"),
		CreatedAt: time.Now().UTC(),
	}))

	e := echo.New()
	e.HTTPErrorHandler = handlers.ErrorHandler
	e.GET("/whoami", func(c echo.Context) error {
		user := middleware.AuthUserFromContext(c)
		return c.JSON(http.StatusOK, echo.Map{
			"uid":    user.UID,
			"handle": user.Handle,
			"image":  user.ImageURL,
		})
	}, middleware.Auth(provider, users))
	return e, provider
}

func whoami(e *echo.Echo, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", "/whoami", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestAuthAcceptsTokenWithAndWithoutBearerPrefix(t *testing.T) {
	e, _ := newAuthedEcho(t)
	token := testutil.Token("alice@example.com")

	for _, header := range []string{token, "Bearer " + token, "bearer " + token} {
		rec := whoami(e, header)
		assert.Equal(t, http.StatusOK, rec.Code, header)
		assert.Contains(t, rec.Body.String(), `"handle":"alice"`)
		assert.Contains(t, rec.Body.String(), `"image":"alice.png"`)
	}
}

func TestAuthRejectsMissingHeader(t *testing.T) {
	e, _ := newAuthedEcho(t)

	rec := whoami(e, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAuthRejectsUnknownToken(t *testing.T) {
	e, _ := newAuthedEcho(t)

	rec := whoami(e, "Bearer forged")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAuthRejectsTokenWithoutProfile(t *testing.T) {
	e, provider := newAuthedEcho(t)

	// Valid token whose subject has no user document.
	_, _, err := provider.CreateAccount(context.Background(), "ghost@example.com", "pw")
	require.NoError(t, err)

	rec := whoami(e, "Bearer "+testutil.Token("ghost@example.com"))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
