package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port        string
	Environment string
	CORSOrigins string
	TablePrefix string

	// Postgres
	DatabaseURL string

	// Redis (engagement dashboard cache)
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Auth
	JWKSURL        string
	AuthAdminURL   string // identity provider base URL, seed tool only
	AuthServiceKey string // service role key, seed tool only

	// HubSpot CRM
	HubSpotBaseURL       string
	HubSpotAccessToken   string
	HubSpotWebhookSecret string
	HubSpotRateLimit     float64 // requests per second

	// Google Vision OCR
	VisionAPIKey   string
	VisionEndpoint string

	// Anthropic (bid assist)
	AnthropicAPIKey string
	AnthropicModel  string

	// Worker
	EmailRelayURL     string // HTTP relay for the email channel
	DispatchInterval  time.Duration
	DispatchBatchSize int
	SyncSchedule      string // cron spec, HubSpot outbound sync
	RecomputeSchedule string // cron spec, engagement score recompute

	// Logging
	LogDir      string // empty disables file logging
	LogMaxFiles int

	// Debug flags
	Debug bool
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")

	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: env,
		CORSOrigins: getEnv("CORS_ORIGINS", "http://localhost:3000"),
		TablePrefix: getTablePrefix(env),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		JWKSURL:        getEnv("JWKS_URL", ""),
		AuthAdminURL:   getEnv("AUTH_ADMIN_URL", ""),
		AuthServiceKey: getEnv("AUTH_SERVICE_KEY", ""),

		HubSpotBaseURL:       getEnv("HUBSPOT_BASE_URL", "https://api.hubapi.com"),
		HubSpotAccessToken:   getEnv("HUBSPOT_ACCESS_TOKEN", ""),
		HubSpotWebhookSecret: getEnv("HUBSPOT_WEBHOOK_SECRET", ""),
		HubSpotRateLimit:     getEnvFloat("HUBSPOT_RATE_LIMIT", 9),

		VisionAPIKey:   getEnv("VISION_API_KEY", ""),
		VisionEndpoint: getEnv("VISION_ENDPOINT", "https://vision.googleapis.com/v1/images:annotate"),

		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		AnthropicModel:  getEnv("ANTHROPIC_MODEL", "claude-haiku-4-5-20251001"),

		EmailRelayURL:     getEnv("EMAIL_RELAY_URL", ""),
		DispatchInterval:  getEnvDuration("DISPATCH_INTERVAL", 15*time.Second),
		DispatchBatchSize: getEnvInt("DISPATCH_BATCH_SIZE", 50),
		SyncSchedule:      getEnv("HUBSPOT_SYNC_SCHEDULE", "@every 10m"),
		RecomputeSchedule: getEnv("ENGAGEMENT_RECOMPUTE_SCHEDULE", "15 2 * * *"),

		LogDir:      getEnv("LOG_DIR", ""),
		LogMaxFiles: getEnvInt("LOG_MAX_FILES", 10),

		Debug: getEnv("DEBUG", getDefaultDebug(env)) == "true",
	}
}

// getDefaultDebug returns the default debug setting based on environment
func getDefaultDebug(env string) string {
	if env == "prod" {
		return "false"
	}
	return "true"
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
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

func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}
	return f
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}
