package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Backend kinds
const (
	BackendSupabase = "supabase"
	BackendSQL      = "sql"
)

// Config holds application configuration
type Config struct {
	ServerPort string
	Backend    string

	// Hosted backend
	SupabaseURL            string
	SupabaseAnonKey        string
	SupabaseServiceRoleKey string
	SupabaseJWTSecret      string
	SupabaseTimeout        time.Duration

	// Self-hosted backend
	DatabaseType    string
	DatabasePath    string
	DatabaseURL     string
	JWTSecret       string
	SessionDuration time.Duration

	CSRFSecret string

	AIServiceURL     string
	AIServiceTimeout time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	TempGoalsTTL  time.Duration

	GoogleClientID       string
	GoogleClientSecret   string
	OAuthRedirectBaseURL string

	AWSRegion    string
	SESFromEmail string
	SESFromName  string
	AppBaseURL   string

	LogMode string
	Debug   bool
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file in the working directory is loaded first when present.
func Load() *Config {
	_ = godotenv.Load()

	appBaseURL := getEnv("APP_BASE_URL", "http://localhost:8080")

	return &Config{
		ServerPort: getEnv("PORT", "8080"),
		Backend:    strings.ToLower(getEnv("BACKEND", BackendSQL)),

		SupabaseURL:            strings.TrimRight(getEnv("SUPABASE_URL", ""), "/"),
		SupabaseAnonKey:        getEnv("SUPABASE_ANON_KEY", ""),
		SupabaseServiceRoleKey: getEnv("SUPABASE_SERVICE_ROLE_KEY", ""),
		SupabaseJWTSecret:      getEnv("SUPABASE_JWT_SECRET", ""),
		SupabaseTimeout:        getEnvDuration("SUPABASE_TIMEOUT", 10*time.Second),

		DatabaseType:    getEnv("DB_TYPE", "sqlite"),
		DatabasePath:    getEnv("DB_PATH", "./aitutor.db"),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		JWTSecret:       getEnv("JWT_SECRET", "dev-jwt-secret-change-me"),
		SessionDuration: getEnvDuration("SESSION_DURATION", 24*time.Hour),

		CSRFSecret: getEnv("CSRF_SECRET", "dev-csrf-secret-change-me"),

		AIServiceURL:     strings.TrimRight(getEnv("AI_SERVICE_URL", "http://localhost:8000"), "/"),
		AIServiceTimeout: getEnvDuration("AI_SERVICE_TIMEOUT", 10*time.Second),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		TempGoalsTTL:  getEnvDuration("TEMP_GOALS_TTL", 7*24*time.Hour),

		GoogleClientID:       getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret:   getEnv("GOOGLE_CLIENT_SECRET", ""),
		OAuthRedirectBaseURL: getEnv("OAUTH_REDIRECT_BASE_URL", appBaseURL),

		AWSRegion:    getEnv("AWS_REGION", "us-east-1"),
		SESFromEmail: getEnv("SES_FROM_EMAIL", ""),
		SESFromName:  getEnv("SES_FROM_NAME", "AI Tutor"),
		AppBaseURL:   appBaseURL,

		LogMode: getEnv("LOG_MODE", "dev"),
		Debug:   getEnvBool("DEBUG", false),
	}
}

// UsesSupabase reports whether the hosted backend is selected
func (c *Config) UsesSupabase() bool {
	return c.Backend == BackendSupabase
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
