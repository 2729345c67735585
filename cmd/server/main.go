package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/aviary-social/backend/internal/events"
	"github.com/aviary-social/backend/internal/fanout"
	"github.com/aviary-social/backend/internal/identity"
	"github.com/aviary-social/backend/internal/objectstorage"
	"github.com/aviary-social/backend/internal/router"
	"github.com/aviary-social/backend/internal/store"
	"github.com/aviary-social/backend/pkg/config"
	"github.com/aviary-social/backend/pkg/firebase"
	"github.com/aviary-social/backend/validators"
)

func init() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
}

func main() {
	cfg := config.Load()
	ctx := context.Background()

	firebaseApp, err := firebase.Init(ctx, cfg.FirebaseCredentialsPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize firebase")
	}
	defer firebaseApp.Close()

	backing, cleanup, err := newStore(ctx, cfg, firebaseApp)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize document store")
	}
	if cleanup != nil {
		defer cleanup()
	}

	feed, err := newFeed(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize change feed")
	}

	// Every write goes through the evented store so the fan-out engine
	// sees a complete change feed.
	evented := store.NewEventedStore(backing, feed)

	engine := fanout.NewEngine(evented)
	if err := engine.Subscribe(ctx, feed); err != nil {
		log.Fatal().Err(err).Msg("failed to subscribe fan-out engine")
	}

	provider := identity.NewFirebaseProvider(firebaseApp.AuthClient, cfg.FirebaseAPIKey)
	storage := objectstorage.NewGCS(firebaseApp.Storage, cfg.StorageBucket)

	e := echo.New()
	e.HideBanner = true
	e.Validator = validators.NewValidator()
	router.SetupMiddleware(e)
	router.SetupRoutes(e, evented, provider, storage)

	log.Info().Str("port", cfg.Port).Str("store", cfg.StoreBackend).Msg("starting server")
	if err := e.Start(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func newStore(ctx context.Context, cfg *config.Config, app *firebase.App) (store.Store, func(), error) {
	switch cfg.StoreBackend {
	case "firestore":
		return store.NewFirestoreStore(app.Firestore), nil, nil
	case "mongo":
		client, err := connectMongo(ctx, cfg.MongoURI)
		if err != nil {
			return nil, nil, err
		}
		cleanup := func() {
			disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := client.Disconnect(disconnectCtx); err != nil {
				log.Error().Err(err).Msg("error closing mongo connection")
			}
		}
		return store.NewMongoStore(client.Database(cfg.MongoDatabase)), cleanup, nil
	case "memory":
		return store.NewMemoryStore(), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

func connectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	if uri == "" {
		return nil, fmt.Errorf("MONGO_URI environment variable not set")
	}
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		return nil, err
	}
	log.Info().Msg("connected to mongodb")
	return client, nil
}

func newFeed(cfg *config.Config) (events.Feed, error) {
	if cfg.RedisAddr == "" {
		return events.NewBus(), nil
	}
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	log.Info().Str("addr", cfg.RedisAddr).Msg("using redis change feed")
	return events.NewRedisFeed(rdb), nil
}
