package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/chakravarthigit/prompt-frontend/internal/logger"
)

type Config struct {
	AppPort string

	// Remote PromptWizard backend.
	APIBaseURL string

	// Connectivity probing.
	ProbeURL      string
	ProbeInterval time.Duration

	// Route guard re-check cadence.
	GuardInterval time.Duration

	// Persistent session tier: "file" or "redis".
	SessionStoreDriver string
	SessionFilePath    string

	RedisAddr     string
	RedisPassword string

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string

	GitHubClientID     string
	GitHubClientSecret string
	GitHubRedirectURL  string
}

func Load() Config {
	if err := godotenv.Load(); err != nil {
		logger.Info("no .env file, using system environment", nil)
	}

	cfg := Config{
		AppPort: getEnv("APP_PORT", "3000"),

		APIBaseURL: getEnv("API_BASE_URL", "https://prompt-backend-03rd.onrender.com"),

		ProbeURL:      os.Getenv("PROBE_URL"),
		ProbeInterval: getDuration("PROBE_INTERVAL_SECONDS", 10*time.Second),

		GuardInterval: getDuration("GUARD_INTERVAL_SECONDS", 2*time.Second),

		SessionStoreDriver: getEnv("SESSION_STORE_DRIVER", "file"),
		SessionFilePath:    getEnv("SESSION_FILE_PATH", "session.json"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		GoogleRedirectURL:  os.Getenv("GOOGLE_REDIRECT_URL"),

		GitHubClientID:     os.Getenv("GITHUB_CLIENT_ID"),
		GitHubClientSecret: os.Getenv("GITHUB_CLIENT_SECRET"),
		GitHubRedirectURL:  os.Getenv("GITHUB_REDIRECT_URL"),
	}

	if cfg.ProbeURL == "" {
		cfg.ProbeURL = cfg.APIBaseURL + "/favicon.ico"
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs <= 0 {
		logger.Warn("invalid duration env, using default", map[string]any{
			"key":   key,
			"value": v,
		})
		return fallback
	}
	return time.Duration(secs) * time.Second
}
