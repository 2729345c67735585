// Package testutil provides the in-process environment handler and
// fan-out tests run against: memory store, in-process change bus, fake
// identity provider and memory blob storage.
package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/labstack/echo/v4"

	"github.com/aviary-social/backend/internal/events"
	"github.com/aviary-social/backend/internal/fanout"
	"github.com/aviary-social/backend/internal/identity"
	"github.com/aviary-social/backend/internal/objectstorage"
	"github.com/aviary-social/backend/internal/router"
	"github.com/aviary-social/backend/internal/store"
	"github.com/aviary-social/backend/validators"
)

// FakeIdentity is an in-memory identity.Provider. Tokens are derived
// deterministically from the email so tests can authenticate without
// round-tripping the signup response.
type FakeIdentity struct {
	mu       sync.Mutex
	accounts map[string]string // email -> password
}

func NewFakeIdentity() *FakeIdentity {
	return &FakeIdentity{accounts: make(map[string]string)}
}

func (f *FakeIdentity) CreateAccount(_ context.Context, email, password string) (string, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.accounts[email]; ok {
		return "", "", identity.ErrEmailTaken
	}
	f.accounts[email] = password
	return UID(email), Token(email), nil
}

func (f *FakeIdentity) SignIn(_ context.Context, email, password string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.accounts[email]
	if !ok || stored != password {
		return "", identity.ErrWrongCredentials
	}
	return Token(email), nil
}

func (f *FakeIdentity) VerifyToken(_ context.Context, token string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for email := range f.accounts {
		if Token(email) == token {
			return UID(email), nil
		}
	}
	return "", identity.ErrInvalidToken
}

// UID returns the deterministic subject id for an email.
func UID(email string) string { return "uid-" + email }

// Token returns the deterministic bearer token for an email.
func Token(email string) string { return "token-" + email }

// Env is a fully wired in-process backend.
type Env struct {
	App      *echo.Echo
	Memory   *store.MemoryStore
	Store    store.Store
	Bus      *events.Bus
	Identity *FakeIdentity
	Storage  *objectstorage.Memory
	Engine   *fanout.Engine
}

// NewEnv builds the backend against the memory store and in-process bus,
// with the fan-out engine subscribed the same way main wires it.
func NewEnv() *Env {
	memory := store.NewMemoryStore()
	bus := events.NewBus()
	evented := store.NewEventedStore(memory, bus)

	engine := fanout.NewEngine(evented)
	if err := engine.Subscribe(context.Background(), bus); err != nil {
		panic(fmt.Sprintf("subscribe fan-out engine: %v", err))
	}

	provider := NewFakeIdentity()
	storage := objectstorage.NewMemory("test-bucket")

	e := echo.New()
	e.Validator = validators.NewValidator()
	router.SetupMiddleware(e)
	router.SetupRoutes(e, evented, provider, storage)

	return &Env{
		App:      e,
		Memory:   memory,
		Store:    evented,
		Bus:      bus,
		Identity: provider,
		Storage:  storage,
		Engine:   engine,
	}
}

// Settle waits for all in-flight fan-out handlers to finish.
func (env *Env) Settle() {
	env.Bus.Wait()
}
