package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	Port              int
	TranscribeURL     string        // base URL of the transcription service
	TranscribeTimeout time.Duration // per-upload deadline
	DevMode           bool
}

// Load reads configuration from the environment, after loading a local
// .env file when one exists.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:              getEnvInt("PORT", 8080),
		TranscribeURL:     getEnv("TRANSCRIBE_URL", "http://localhost:5000"),
		TranscribeTimeout: time.Duration(getEnvInt("TRANSCRIBE_TIMEOUT_SECONDS", 180)) * time.Second,
		DevMode:           getEnv("DEV_MODE", "false") == "true",
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}
