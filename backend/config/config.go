package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Режимы хранения профилей
const (
	ProfileStoreDatabase = "database"
	ProfileStoreRemote   = "remote"
	ProfileStoreMemory   = "memory"
)

type Config struct {
	ServerPort string
	Env        string
	LogFormat  string // json, console

	DBType     string // postgres, sqlite
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	SQLitePath string

	JWTSecret string

	ProfileStore      string
	ProfileAPIURL     string
	ProfileAPITimeout time.Duration
	AdminEmails       []string

	RedisAddr    string
	RedisChannel string
}

func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Println("Error loading .env file, using environment variables")
	}

	timeout, err := time.ParseDuration(getEnv("PROFILE_API_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("PROFILE_API_TIMEOUT: %w", err)
	}

	cfg := &Config{
		ServerPort: getEnv("SERVER_PORT", "8080"),
		Env:        getEnv("ENV", "development"),
		LogFormat:  getEnv("LOG_FORMAT", ""),

		DBType:     getEnv("DB_TYPE", "postgres"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "radev"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),
		SQLitePath: getEnv("SQLITE_PATH", "./data/radev.db"),

		JWTSecret: getEnv("JWT_SECRET", "secret"),

		ProfileStore:      strings.ToLower(getEnv("PROFILE_STORE", ProfileStoreDatabase)),
		ProfileAPIURL:     getEnv("PROFILE_API_URL", "http://localhost:5000/api"),
		ProfileAPITimeout: timeout,
		AdminEmails:       splitList(getEnv("ADMIN_EMAILS", "")),

		RedisAddr:    getEnv("REDIS_ADDR", ""),
		RedisChannel: getEnv("REDIS_CHANNEL", "achievements"),
	}

	switch cfg.ProfileStore {
	case ProfileStoreDatabase, ProfileStoreRemote, ProfileStoreMemory:
	default:
		return nil, fmt.Errorf("PROFILE_STORE: unsupported value %q", cfg.ProfileStore)
	}

	return cfg, nil
}

// DSN собирает строку подключения для выбранного драйвера.
func (c *Config) DSN() string {
	if c.DBType == "sqlite" {
		return c.SQLitePath
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, strings.ToLower(part))
		}
	}
	return out
}
