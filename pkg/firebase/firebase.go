package firebase

import (
	"context"
	"fmt"
	"os"

	"cloud.google.com/go/firestore"
	gcs "cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"
)

// App holds the explicitly constructed Google clients the process uses:
// auth for token verification, Firestore as the primary document store
// and Cloud Storage for profile image blobs.
type App struct {
	FirebaseApp *firebase.App
	AuthClient  *auth.Client
	Firestore   *firestore.Client
	Storage     *gcs.Client
}

// Init builds the Firebase app and its clients from a credentials file.
func Init(ctx context.Context, credentialsPath string) (*App, error) {
	if credentialsPath == "" {
		return nil, fmt.Errorf("firebase credentials path not provided")
	}
	if _, err := os.Stat(credentialsPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("firebase credentials file not found at %s", credentialsPath)
	}

	opt := option.WithCredentialsFile(credentialsPath)

	firebaseApp, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase app: %w", err)
	}

	authClient, err := firebaseApp.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting firebase auth client: %w", err)
	}

	firestoreClient, err := firebaseApp.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting firestore client: %w", err)
	}

	storageClient, err := gcs.NewClient(ctx, opt)
	if err != nil {
		return nil, fmt.Errorf("error getting storage client: %w", err)
	}

	log.Info().Msg("firebase app and clients initialized")
	return &App{
		FirebaseApp: firebaseApp,
		AuthClient:  authClient,
		Firestore:   firestoreClient,
		Storage:     storageClient,
	}, nil
}

// Close releases the clients that hold connections.
func (a *App) Close() {
	if a.Firestore != nil {
		if err := a.Firestore.Close(); err != nil {
			log.Error().Err(err).Msg("error closing firestore client")
		}
	}
	if a.Storage != nil {
		if err := a.Storage.Close(); err != nil {
			log.Error().Err(err).Msg("error closing storage client")
		}
	}
}
