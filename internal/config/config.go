package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	_ "github.com/joho/godotenv/autoload"
)

// Database holds the connection settings for the relational store.
type Database struct {
	Driver     string // "postgres" or "sqlite"
	Host       string
	Port       string
	Username   string
	Password   string
	Name       string
	Schema     string
	SQLitePath string
	LogLevel   string
}

type Config struct {
	Port          int
	Database      Database
	JWTSecret     string
	TokenTTL      time.Duration
	SignupEnabled bool
	CORSOrigins   []string
	RedisURL      string
}

// Load reads the configuration from the environment. A .env file in the
// working directory is picked up by godotenv before Load runs.
func Load() Config {
	return Config{
		Port: getenvPort("PORT", 8080),
		Database: Database{
			Driver:     strings.ToLower(getenv("DB_DRIVER", "postgres")),
			Host:       getenv("BLUEPRINT_DB_HOST", "localhost"),
			Port:       getenv("BLUEPRINT_DB_PORT", "5432"),
			Username:   os.Getenv("BLUEPRINT_DB_USERNAME"),
			Password:   os.Getenv("BLUEPRINT_DB_PASSWORD"),
			Name:       os.Getenv("BLUEPRINT_DB_DATABASE"),
			Schema:     os.Getenv("BLUEPRINT_DB_SCHEMA"),
			SQLitePath: getenv("SQLITE_PATH", "doit.db"),
			LogLevel:   strings.ToLower(getenv("DB_LOG_LEVEL", "warn")),
		},
		JWTSecret:     getenv("JWT_SECRET", "doit-dev-secret-change-me"),
		TokenTTL:      time.Duration(getenvInt("TOKEN_TTL_HOURS", 24*7)) * time.Hour,
		SignupEnabled: os.Getenv("SIGNUP_ENABLED") != "false",
		CORSOrigins:   splitOrigins(getenv("CORS_ORIGIN", "http://localhost:5173")),
		RedisURL:      os.Getenv("REDIS_URL"),
	}
}

func getenv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed <= 0 {
		log.Printf("Warning: invalid %s value %q, using %d", key, value, fallback)
		return fallback
	}
	return parsed
}

func getenvPort(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	port, err := strconv.Atoi(value)
	if err != nil || port <= 0 || port > 65535 {
		log.Printf("Warning: Invalid %s environment variable '%s'. Using default %d.", key, value, fallback)
		return fallback
	}
	return port
}

// splitOrigins turns a comma separated list into cors origins. "*" allows
// any http(s) origin.
func splitOrigins(raw string) []string {
	if strings.TrimSpace(raw) == "*" {
		return []string{"https://*", "http://*"}
	}
	var origins []string
	for _, part := range strings.Split(raw, ",") {
		if origin := strings.TrimRight(strings.TrimSpace(part), "/"); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}
