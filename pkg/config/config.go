package config

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config holds all process configuration, loaded once at startup.
type Config struct {
	Port                    string
	Env                     string
	FirebaseCredentialsPath string
	FirebaseAPIKey          string
	StorageBucket           string
	StoreBackend            string // firestore, mongo or memory
	MongoURI                string
	MongoDatabase           string
	RedisAddr               string // empty means the in-process change bus
}

// Load reads configuration from the environment, picking up a local .env
// file when present.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found, using environment variables")
	}

	return &Config{
		Port:                    getEnv("PORT", "8080"),
		Env:                     getEnv("ENV", "development"),
		FirebaseCredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", "./firebase_credentials.json"),
		FirebaseAPIKey:          getEnv("FIREBASE_API_KEY", ""),
		StorageBucket:           getEnv("STORAGE_BUCKET", ""),
		StoreBackend:            getEnv("STORE_BACKEND", "firestore"),
		MongoURI:                getEnv("MONGO_URI", ""),
		MongoDatabase:           getEnv("MONGO_DATABASE", "aviary"),
		RedisAddr:               getEnv("REDIS_ADDR", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
