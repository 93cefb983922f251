package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/kbchat-core/internal/core/domain"
)

// Config holds the full runtime configuration, read from the environment
// with an optional .env file for development.
type Config struct {
	// OpenAIAPIKey authenticates against the hosted assistant service
	OpenAIAPIKey string

	// OpenAIBaseURL overrides the service endpoint (tests, proxies)
	OpenAIBaseURL string

	// Model is the requested chat model; validated against the allow-list
	// at startup
	Model string

	// AdminPassword is the plaintext admin password; empty disables the
	// admin role
	AdminPassword string

	// GateSecret signs gate tokens
	GateSecret string

	// Host and Port bind the HTTP server
	Host string
	Port int

	// RedisURL selects the Redis quota backend when set
	RedisURL string

	// DatabaseURL selects the Postgres quota backend when Redis is not set
	DatabaseURL string

	// PollInterval is the run status poll cadence
	PollInterval time.Duration

	// PollMaxWait bounds one run's total wait; zero waits indefinitely
	PollMaxWait time.Duration

	// CacheTTL bounds how long collection and document listings are reused
	CacheTTL time.Duration

	// OverridesFile points at an optional YAML attribute-overrides file
	OverridesFile string
}

// Load reads configuration from the environment. A .env file in the working
// directory is merged in first when present.
func Load() (*Config, error) {
	// Development convenience only; missing file is fine.
	_ = godotenv.Load()

	cfg := &Config{
		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", ""),
		Model:         getEnv("OPENAI_MODEL", ""),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),
		GateSecret:    getEnv("GATE_SECRET", "development-secret-change-in-production"),
		Host:          getEnv("HOST", "0.0.0.0"),
		Port:          getEnvInt("PORT", 8080),
		RedisURL:      getEnv("REDIS_URL", ""),
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		PollInterval:  getEnvDuration("POLL_INTERVAL", 500*time.Millisecond),
		PollMaxWait:   getEnvDuration("POLL_MAX_WAIT", 2*time.Minute),
		CacheTTL:      getEnvDuration("CACHE_TTL", time.Minute),
		OverridesFile: getEnv("ATTRIBUTE_OVERRIDES_FILE", ""),
	}

	if cfg.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}

	return cfg, nil
}

// LoadOverrides reads an attribute-overrides YAML file. An empty path yields
// nil overrides, which Apply treats as a no-op.
func LoadOverrides(path string) (*domain.AttributeOverrides, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read overrides file: %w", err)
	}

	var overrides domain.AttributeOverrides
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("failed to parse overrides file: %w", err)
	}
	return &overrides, nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
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
