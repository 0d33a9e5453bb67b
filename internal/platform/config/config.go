package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName string
	HTTPPort    string
	PostgresDSN string

	BaseURL     string
	ContextPath string

	EligibilityEnabled bool
	EligibilityBaseURL string
	EligibilityTimeout time.Duration

	ClosureMaxAttempts    int
	ClosureInitialBackoff time.Duration
	ClosureMaxBackoff     time.Duration

	ReconcilerSchedule string
}

func Load() (Config, error) {
	// A local .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	service := os.Getenv("SERVICE_NAME")
	if service == "" {
		service = "coopvotes"
	}

	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = "8080"
	}

	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:" + port
	}

	return Config{
		ServiceName: service,
		HTTPPort:    port,
		PostgresDSN: os.Getenv("POSTGRES_DSN"),

		BaseURL:     baseURL,
		ContextPath: os.Getenv("CONTEXT_PATH"),

		EligibilityEnabled: envBool("ELIGIBILITY_ENABLED", false),
		EligibilityBaseURL: os.Getenv("ELIGIBILITY_BASE_URL"),
		EligibilityTimeout: envDuration("ELIGIBILITY_TIMEOUT", 5*time.Second),

		ClosureMaxAttempts:    envInt("CLOSURE_MAX_ATTEMPTS", 4),
		ClosureInitialBackoff: envDuration("CLOSURE_INITIAL_BACKOFF", time.Second),
		ClosureMaxBackoff:     envDuration("CLOSURE_MAX_BACKOFF", 10*time.Second),

		ReconcilerSchedule: envString("RECONCILER_SCHEDULE", "@every 30s"),
	}, nil
}

func envString(name string, fallback string) string {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return fallback
	}
	return value
}

func envBool(name string, fallback bool) bool {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return fallback
	}
	switch raw {
	case "1", "true", "t", "yes", "y", "on":
		return true
	case "0", "false", "f", "no", "n", "off":
		return false
	default:
		return fallback
	}
}

func envInt(name string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func envDuration(name string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return value
}
