package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv string
	Port   string

	CatalogPath string

	ComposerBaseURL  string
	ComposerUsername string
	ComposerPassword string
	ComposerTimeout  time.Duration

	RecipientList string

	BreakerFailureThreshold int
	BreakerResetTimeout     time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	ThumbnailDir  string

	AllowedOrigins   []string
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	RateLimitPerMin  int
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:                  getEnv("APP_ENV", "development"),
		Port:                    getEnv("PORT", "8080"),
		CatalogPath:             os.Getenv("CATALOG_PATH"),
		ComposerBaseURL:         os.Getenv("COMPOSER_BASE_URL"),
		ComposerUsername:        os.Getenv("COMPOSER_USERNAME"),
		ComposerPassword:        os.Getenv("COMPOSER_PASSWORD"),
		ComposerTimeout:         time.Second * time.Duration(getEnvInt("COMPOSER_TIMEOUT_SECONDS", 25)),
		RecipientList:           getEnv("COMPOSER_RECIPIENT_LIST", "DefaultRecipientList"),
		BreakerFailureThreshold: getEnvInt("BREAKER_FAILURE_THRESHOLD", 5),
		BreakerResetTimeout:     time.Second * time.Duration(getEnvInt("BREAKER_RESET_TIMEOUT_SECONDS", 30)),
		RedisAddr:               os.Getenv("REDIS_ADDR"),
		RedisPassword:           os.Getenv("REDIS_PASSWORD"),
		RedisDB:                 getEnvInt("REDIS_DB", 0),
		ThumbnailDir:            os.Getenv("THUMBNAIL_DIR"),
		AllowedOrigins:          splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		HTTPReadTimeout:         time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:        time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 30)),
		HTTPIdleTimeout:         time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:         getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
	}

	if cfg.ComposerBaseURL == "" {
		return nil, fmt.Errorf("COMPOSER_BASE_URL is required")
	}

	if cfg.ComposerUsername == "" || cfg.ComposerPassword == "" {
		return nil, fmt.Errorf("COMPOSER_USERNAME and COMPOSER_PASSWORD are required")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
