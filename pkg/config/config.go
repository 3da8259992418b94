package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	GitHub   GitHubConfig
	Auth     AuthConfig
}

type ServerConfig struct {
	Port         string
	Mode         string
	ReadTimeout  int
	WriteTimeout int
}

type DatabaseConfig struct {
	Path string
}

type GitHubConfig struct {
	// RequestsPerMinute is the client-side budget applied before every
	// upstream call, independent of GitHub's own limits.
	RequestsPerMinute int
	// SearchMaxRetries bounds how many times a throttled search call is
	// retried before giving up.
	SearchMaxRetries int
	// SearchMaxWaitSeconds caps a single wait computed from the
	// rate-limit reset header.
	SearchMaxWaitSeconds int
}

type AuthConfig struct {
	// JWTSecret signs session tokens.
	JWTSecret string
	// TokenTTLSeconds is the session token lifetime.
	TokenTTLSeconds int
	// EncryptionKey encrypts personal access tokens at rest. Must be
	// 16, 24 or 32 bytes.
	EncryptionKey string
}

var AppConfig *Config

// Load loads configuration from .env file and environment variables
func Load() error {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	AppConfig = &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			Mode:         getEnv("GIN_MODE", "release"),
			ReadTimeout:  getEnvAsInt("READ_TIMEOUT", 15),
			WriteTimeout: getEnvAsInt("WRITE_TIMEOUT", 60),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "./octostats.db"),
		},
		GitHub: GitHubConfig{
			RequestsPerMinute:    getEnvAsInt("GITHUB_REQUESTS_PER_MINUTE", 300),
			SearchMaxRetries:     getEnvAsInt("GITHUB_SEARCH_MAX_RETRIES", 3),
			SearchMaxWaitSeconds: getEnvAsInt("GITHUB_SEARCH_MAX_WAIT", 120),
		},
		Auth: AuthConfig{
			JWTSecret:       getEnv("JWT_SECRET", "default-secret-key"),
			TokenTTLSeconds: getEnvAsInt("TOKEN_TTL", 3600),
			EncryptionKey:   getEnv("ENCRYPTION_KEY", "0123456789abcdef0123456789abcdef"),
		},
	}

	return nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
