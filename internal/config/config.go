package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Environment
	Env string // "development", "production", etc.

	// Server
	ServerAddr string

	// Database
	DatabaseURL string

	// TikAPI credentials and endpoint
	TikAPIKey        string
	TikAPIAccountKey string
	TikAPIBaseURL    string
	TikAPITimeout    time.Duration

	// Discovery
	FanOutLimit       int           // Max room ids expanded through recommendations per run
	FanOutConcurrency int           // Max recommendation lookups in flight per run
	SearchTimeout     time.Duration // Per-run deadline; abandons in-flight recommendations on expiry

	// Scheduled scraping
	SearchQueries   []string
	ScrapeInterval  time.Duration
	EnableScheduler bool

	// Rate limiting
	RedisURL           string // Optional; limiter uses in-memory storage when empty
	RateLimitPerMinute int

	// CORS
	CORSOrigins string // Comma-separated allowed origins

	// Logging
	LogLevel  string
	LogFormat string
	LogFile   string // Optional rotated log file, in addition to stdout
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file in the working directory is loaded first when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Env:                getEnv("ENV", "development"),
		ServerAddr:         getEnv("SERVER_ADDR", ":8000"),
		DatabaseURL:        getEnv("DATABASE_URL", "postgres://localhost:5432/livescan?sslmode=disable"),
		TikAPIKey:          getEnv("TIKAPI_KEY", ""),
		TikAPIAccountKey:   getEnv("TIKAPI_ACCOUNT_KEY", ""),
		TikAPIBaseURL:      getEnv("TIKAPI_BASE_URL", "https://api.tikapi.io"),
		TikAPITimeout:      time.Duration(getEnvInt("TIKAPI_TIMEOUT_SECONDS", 30)) * time.Second,
		FanOutLimit:        getEnvInt("RECOMMEND_FANOUT_LIMIT", 5),
		FanOutConcurrency:  getEnvInt("RECOMMEND_CONCURRENCY", 5),
		SearchTimeout:      time.Duration(getEnvInt("SEARCH_TIMEOUT_SECONDS", 60)) * time.Second,
		SearchQueries:      SplitQueries(getEnv("SEARCH_QUERIES", "gaming,music,cooking")),
		ScrapeInterval:     time.Duration(getEnvInt("SCRAPE_INTERVAL_MINUTES", 5)) * time.Minute,
		EnableScheduler:    getEnvBool("ENABLE_SCHEDULER", false),
		RedisURL:           getEnv("REDIS_URL", ""),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 100),
		CORSOrigins:        getEnv("CORS_ORIGINS", "*"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFormat:          getEnv("LOG_FORMAT", "text"),
		LogFile:            getEnv("LOG_FILE", ""),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if s := os.Getenv(key); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if s := os.Getenv(key); s != "" {
		if b, err := strconv.ParseBool(s); err == nil {
			return b
		}
	}
	return fallback
}

// SplitQueries splits a comma-separated query list, trimming blanks and empties.
func SplitQueries(raw string) []string {
	var queries []string
	for _, q := range strings.Split(raw, ",") {
		if q = strings.TrimSpace(q); q != "" {
			queries = append(queries, q)
		}
	}
	return queries
}

// IsDev returns true if the environment is set to development.
func (c *Config) IsDev() bool {
	return c.Env == "development" || c.Env == "dev"
}

// HasTikAPICredentials reports whether both halves of the TikAPI key pair are set.
func (c *Config) HasTikAPICredentials() bool {
	return c.TikAPIKey != "" && c.TikAPIAccountKey != ""
}

// ApplyYAML overrides scheduling settings with values from the YAML file.
// A nil file leaves the config untouched.
func (c *Config) ApplyYAML(y *YAMLConfig) {
	if y == nil {
		return
	}
	if len(y.Queries) > 0 {
		c.SearchQueries = y.Queries
	}
	if y.Scheduler.IntervalMinutes > 0 {
		c.ScrapeInterval = time.Duration(y.Scheduler.IntervalMinutes) * time.Minute
	}
	if y.Scheduler.Enabled != nil {
		c.EnableScheduler = *y.Scheduler.Enabled
	}
	if y.Discovery.FanOutLimit > 0 {
		c.FanOutLimit = y.Discovery.FanOutLimit
	}
	if y.Discovery.Concurrency > 0 {
		c.FanOutConcurrency = y.Discovery.Concurrency
	}
}
