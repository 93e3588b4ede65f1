package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Port string

	// Database configuration
	DBType            string // sqlite, mysql, postgres, sqlserver
	DBHost            string
	DBPort            string
	DBDatabase        string // file path when DBType is sqlite
	DBUser            string
	DBPassword        string
	DBConnectionLimit int

	// Video search provider
	YouTubeAPIKey   string
	SearchRateLimit int // searches per client per minute

	// External downloader
	DownloaderBin string
}

// Load loads configuration from the environment, with a best-effort .env file.
func Load() (*Config, error) {
	// Missing .env is fine; the environment may already be populated.
	_ = godotenv.Load()

	cfg := &Config{
		Port:              getEnv("PORT", "3001"),
		DBType:            getEnv("DB_TYPE", "sqlite"),
		DBHost:            getEnv("DB_HOST", "localhost"),
		DBPort:            getEnv("DB_PORT", "3306"),
		DBDatabase:        getEnv("DB_DATABASE", "data/crowdqueue.db"),
		DBUser:            getEnv("DB_USER", ""),
		DBPassword:        getEnv("DB_PASSWORD", ""),
		DBConnectionLimit: getEnvAsInt("DB_CONNECTION_LIMIT", 5),
		YouTubeAPIKey:     getEnv("YOUTUBE_API_KEY", ""),
		SearchRateLimit:   getEnvAsInt("SEARCH_RATE_LIMIT", 10),
		DownloaderBin:     getEnv("DOWNLOADER_BIN", "yt-dlp"),
	}

	return cfg, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
