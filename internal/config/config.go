package config

import (
	"errors"
	"os"
	"strconv"
)

// Config holds the application configuration.
type Config struct {
	ServerPort   int
	DatabasePath string
	AvatarsDir   string // Final location of ingested avatar images
	UploadsDir   string // Scratch space for in-flight multipart uploads
	JWTSecret    []byte
}

// Load loads configuration from environment variables or sets defaults.
// The JWT secret is read exactly once here and handed to the components
// that need it; nothing else touches the environment at request time.
func Load() (*Config, error) {
	portStr := getEnv("PORT", "8080")
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, err
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, errors.New("JWT_SECRET must be set")
	}

	return &Config{
		ServerPort:   port,
		DatabasePath: getEnv("DATABASE_PATH", "./accounts.db"),
		AvatarsDir:   getEnv("AVATARS_DIR", "./public/avatars"),
		UploadsDir:   getEnv("UPLOADS_DIR", "./tmp/uploads"),
		JWTSecret:    []byte(secret),
	}, nil
}

// Helper to get an environment variable with a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
