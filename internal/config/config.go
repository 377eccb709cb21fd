// Package config loads the single process-wide Config struct from the
// environment. No component reads an environment variable directly; every
// tunable flows in through this struct.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the one configuration object passed explicitly to every
// component that needs it — no ambient globals.
type Config struct {
	Env string

	DatabaseURL string

	WeatherAPIKey        string
	WeatherAPIBaseURL    string
	WeatherHTMLFallback  string
	WeatherFetchTimeout  time.Duration
	WeatherRetryAttempts int

	OpenAIAPIKey string
	OpenAIModel  string
	AICacheTTL   time.Duration
	AITimeout    time.Duration

	SchedulerInterval time.Duration
	SchedulerMaxBatch int

	RedisAddr     string
	RedisPassword string

	FCMCredentialsPath string

	AllowedOrigins []string
	APIKey         string

	RateLimitRPS   float64
	RateLimitBurst int

	LogLevel string

	HTTPPort    string
	MetricsPort string
}

// Load reads configuration from the environment (optionally via a .env
// file) and validates the keys that are fatal when missing.
func Load() (*Config, error) {
	_ = godotenv.Load()

	env := getEnv("ENV", "development")

	origins := splitCSV(getEnv("ALLOWED_ORIGINS", ""))
	if env == "production" && len(origins) == 0 {
		return nil, fmt.Errorf("ALLOWED_ORIGINS must be configured in production")
	}

	cfg := &Config{
		Env: env,

		DatabaseURL: getEnv("DATABASE_URL", "sqlite://weatherops.db"),

		WeatherAPIKey:        getEnv("WEATHER_API_KEY", ""),
		WeatherAPIBaseURL:    getEnv("WEATHER_API_BASE_URL", ""),
		WeatherHTMLFallback:  getEnv("WEATHER_HTML_FALLBACK_URL", ""),
		WeatherFetchTimeout:  getEnvDuration("WEATHER_FETCH_TIMEOUT", 5*time.Second),
		WeatherRetryAttempts: getEnvInt("WEATHER_RETRY_ATTEMPTS", 3),

		OpenAIAPIKey: getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:  getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		AICacheTTL:   time.Duration(getEnvInt("AI_CACHE_TTL_HOURS", 6)) * time.Hour,
		AITimeout:    getEnvDuration("AI_TIMEOUT", 15*time.Second),

		SchedulerInterval: time.Duration(getEnvInt("SCHEDULER_INTERVAL_SECONDS", 300)) * time.Second,
		SchedulerMaxBatch: getEnvInt("SCHEDULER_MAX_BATCH", 500),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		FCMCredentialsPath: getEnv("FCM_CREDENTIALS_PATH", ""),

		AllowedOrigins: origins,
		APIKey:         getEnv("API_KEY", ""),

		RateLimitRPS:   getEnvFloat("RATE_LIMIT_RPS", 5.0),
		RateLimitBurst: getEnvInt("RATE_LIMIT_BURST", 10),

		LogLevel: getEnv("LOG_LEVEL", "info"),

		HTTPPort:    getEnv("PORT", "8080"),
		MetricsPort: getEnv("METRICS_PORT", "9090"),
	}

	if cfg.APIKey == "" && env == "production" {
		return nil, fmt.Errorf("API_KEY is required in production")
	}

	return cfg, nil
}

func splitCSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

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

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
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
