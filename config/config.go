package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port    string
	LogMode string

	APIBaseURL    string
	MediaBaseURL  string
	APIAuthScheme string // "Token" or "Bearer"
	APITimeout    time.Duration
	APIRetryCount int

	JWTKey     string
	SessionTTL time.Duration

	DBDriver   string // sqlite, postgres or mysql
	DBName     string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string

	ModulePollInterval time.Duration
	NotificationTTL    time.Duration
	ViewIdleTimeout    time.Duration

	RedisAddr       string // empty disables rate limiting
	EnrollRateLimit int    // requests per minute per client IP
}

// AppConfig is a global variable to access configuration
var AppConfig *Config

// LoadConfig initializes configuration from environment variables or defaults
func LoadConfig() *Config {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found. Using system environment variables.")
	}

	apiBase := strings.TrimRight(getEnv("API_BASE_URL", "http://127.0.0.1:8000"), "/")

	AppConfig = &Config{
		Port:    getEnv("PORT", "3000"),
		LogMode: getEnv("LOG_MODE", "development"),

		APIBaseURL:    apiBase,
		MediaBaseURL:  strings.TrimRight(getEnv("MEDIA_BASE_URL", apiBase), "/"),
		APIAuthScheme: getEnv("API_AUTH_SCHEME", "Token"),
		APITimeout:    getEnvDuration("API_TIMEOUT", 10*time.Second),
		APIRetryCount: getEnvInt("API_RETRY_COUNT", 0),

		JWTKey:     getEnv("JWT_SECRET_KEY", "defaultSecret"),
		SessionTTL: getEnvDuration("SESSION_TTL", 24*time.Hour),

		DBDriver:   strings.ToLower(getEnv("DB_DRIVER", "sqlite")),
		DBName:     getEnv("DB_NAME", "learnfront.db"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", ""),
		DBPassword: getEnv("DB_PASSWORD", ""),

		ModulePollInterval: getEnvDuration("MODULE_POLL_INTERVAL", 5*time.Second),
		NotificationTTL:    getEnvDuration("NOTIFICATION_TTL", 3*time.Second),
		ViewIdleTimeout:    getEnvDuration("VIEW_IDLE_TIMEOUT", 15*time.Minute),

		RedisAddr:       getEnv("REDIS_ADDR", ""),
		EnrollRateLimit: getEnvInt("ENROLL_RATE_LIMIT", 5),
	}

	// Validate critical configuration
	if AppConfig.JWTKey == "defaultSecret" {
		log.Println("Warning: Using default JWT_SECRET_KEY. Update it in your environment.")
	}
	if AppConfig.DBName == "learnfront.db" {
		log.Println("Warning: Using default DBName. Update it in your environment.")
	}

	return AppConfig
}

// Validate reports configuration that the server cannot start with
func (c *Config) Validate() error {
	if c.APIBaseURL == "" {
		return errors.New("API_BASE_URL is required")
	}
	switch c.DBDriver {
	case "sqlite", "postgres", "mysql":
	default:
		return errors.New("DB_DRIVER must be one of sqlite, postgres, mysql")
	}
	if c.APITimeout <= 0 {
		return errors.New("API_TIMEOUT must be positive")
	}
	if c.SessionTTL <= 0 {
		return errors.New("SESSION_TTL must be positive")
	}
	if c.ModulePollInterval <= 0 {
		return errors.New("MODULE_POLL_INTERVAL must be positive")
	}
	if c.NotificationTTL <= 0 {
		return errors.New("NOTIFICATION_TTL must be positive")
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt retrieves an environment variable as an integer or returns the default integer value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to int: %v", key, err)
		return defaultValue
	}
	return intValue
}

// getEnvDuration accepts Go durations ("5s") or a bare number of milliseconds
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if ms, err := strconv.Atoi(value); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to duration: %v", key, err)
		return defaultValue
	}
	return d
}
