package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds all configuration for Pollhub
type Config struct {
	// Storage configuration
	StorageBackend string // memory, redis or postgres
	RedisURL       string
	PostgresDSN    string

	// Server configuration
	APIPort     int
	MetricsPort string

	// Logging configuration
	LogLevel string

	// Poll configuration
	AdminAddress  string
	FreePollLimit int
	LevelXPSpan   int // XP per level past the threshold table; 0 keeps the default

	// Chain configuration
	ChainRPCEndpoints []string
	ChainPackageID    string
	SurveyLimitID     string
	ProfileRegistryID string
	BadgeStatsID      string
	AdminCapID        string
}

// Storage backends.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Load reads configuration from environment variables and validates it
func Load() (Config, error) {
	cfg := Config{
		StorageBackend:    getEnv("STORAGE_BACKEND", BackendMemory),
		RedisURL:          getEnv("REDIS_URL", "redis://localhost:6379"),
		PostgresDSN:       getEnv("POSTGRES_DSN", ""),
		MetricsPort:       getEnv("METRICS_PORT", "9100"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		AdminAddress:      getEnv("ADMIN_ADDRESS", ""),
		ChainPackageID:    getEnv("CHAIN_PACKAGE_ID", ""),
		SurveyLimitID:     getEnv("CHAIN_SURVEY_LIMIT_ID", ""),
		ProfileRegistryID: getEnv("CHAIN_PROFILE_REGISTRY_ID", ""),
		BadgeStatsID:      getEnv("CHAIN_BADGE_STATS_ID", ""),
		AdminCapID:        getEnv("CHAIN_ADMIN_CAP_ID", ""),
	}

	// Parse chain RPC endpoints (optional; the store runs without a chain)
	endpointsStr := getEnv("CHAIN_RPC_ENDPOINTS", "")
	if endpointsStr != "" {
		cfg.ChainRPCEndpoints = strings.Split(endpointsStr, ",")
		for i, endpoint := range cfg.ChainRPCEndpoints {
			cfg.ChainRPCEndpoints[i] = strings.TrimSpace(endpoint)
		}
	}

	var err error
	cfg.APIPort, err = parseIntEnv("API_PORT", 8080)
	if err != nil {
		return cfg, fmt.Errorf("invalid API_PORT: %w", err)
	}

	cfg.FreePollLimit, err = parseIntEnv("FREE_POLL_LIMIT", 1)
	if err != nil {
		return cfg, fmt.Errorf("invalid FREE_POLL_LIMIT: %w", err)
	}

	cfg.LevelXPSpan, err = parseIntEnv("LEVEL_XP_SPAN", 0)
	if err != nil {
		return cfg, fmt.Errorf("invalid LEVEL_XP_SPAN: %w", err)
	}

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return cfg, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks that the configuration is valid
func (c Config) validate() error {
	switch c.StorageBackend {
	case BackendMemory:
	case BackendRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required for the redis backend")
		}
	case BackendPostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("POSTGRES_DSN is required for the postgres backend")
		}
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.StorageBackend)
	}

	if c.APIPort < 1 || c.APIPort > 65535 {
		return fmt.Errorf("API_PORT must be between 1 and 65535")
	}

	if c.FreePollLimit < 0 {
		return fmt.Errorf("FREE_POLL_LIMIT must not be negative")
	}

	if c.LevelXPSpan < 0 {
		return fmt.Errorf("LEVEL_XP_SPAN must not be negative")
	}

	if len(c.ChainRPCEndpoints) > 0 && c.ChainPackageID == "" {
		return fmt.Errorf("CHAIN_PACKAGE_ID is required when chain RPC endpoints are set")
	}

	return nil
}

// ChainEnabled reports whether on-chain reads are configured.
func (c Config) ChainEnabled() bool {
	return len(c.ChainRPCEndpoints) > 0
}

// getEnv returns the value of an environment variable or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// parseIntEnv parses an integer environment variable with a default
func parseIntEnv(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	return strconv.Atoi(value)
}
