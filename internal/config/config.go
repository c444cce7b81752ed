package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Config holds the runtime settings shared by both services. Values come
// from the environment, with a .env file loaded first when present.
type Config struct {
	// Port the HTTP server listens on.
	Port string

	// AuthSecret signs service tokens. Empty disables authentication.
	AuthSecret string

	// LogLevel selects the zap level: debug, info, warn, or error.
	LogLevel string
}

// Load reads the service configuration from the environment. defaultPort is
// used when PORT is unset.
func Load(defaultPort string) *Config {
	// Missing .env is fine; the environment may be set by the runtime.
	_ = godotenv.Load()

	return &Config{
		Port:       getEnv("PORT", defaultPort),
		AuthSecret: os.Getenv("AUTH_SECRET"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
