// Package identity wraps the managed identity provider that issues and
// verifies bearer tokens. Password handling never happens in-process.
package identity

import (
	"context"
	"errors"
)

var (
	// ErrEmailTaken is returned by CreateAccount when the email already
	// has an account.
	ErrEmailTaken = errors.New("email is already in use")
	// ErrWrongCredentials is returned by SignIn for any bad email or
	// password, deliberately not distinguishing the two.
	ErrWrongCredentials = errors.New("wrong credentials")
	// ErrInvalidToken is returned by VerifyToken for expired, malformed
	// or forged tokens.
	ErrInvalidToken = errors.New("invalid token")
)

// Provider is the contract with the identity service.
type Provider interface {
	// CreateAccount registers an email/password account and returns the
	// provider subject id plus a freshly issued token.
	CreateAccount(ctx context.Context, email, password string) (uid, token string, err error)
	// SignIn exchanges credentials for a token.
	SignIn(ctx context.Context, email, password string) (token string, err error)
	// VerifyToken validates a bearer token and returns its subject id.
	VerifyToken(ctx context.Context, token string) (uid string, err error)
}
