package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	// Save original env vars
	originalVars := map[string]string{
		"STORAGE_BACKEND":     os.Getenv("STORAGE_BACKEND"),
		"REDIS_URL":           os.Getenv("REDIS_URL"),
		"POSTGRES_DSN":        os.Getenv("POSTGRES_DSN"),
		"API_PORT":            os.Getenv("API_PORT"),
		"METRICS_PORT":        os.Getenv("METRICS_PORT"),
		"LOG_LEVEL":           os.Getenv("LOG_LEVEL"),
		"ADMIN_ADDRESS":       os.Getenv("ADMIN_ADDRESS"),
		"FREE_POLL_LIMIT":     os.Getenv("FREE_POLL_LIMIT"),
		"LEVEL_XP_SPAN":       os.Getenv("LEVEL_XP_SPAN"),
		"CHAIN_RPC_ENDPOINTS": os.Getenv("CHAIN_RPC_ENDPOINTS"),
		"CHAIN_PACKAGE_ID":    os.Getenv("CHAIN_PACKAGE_ID"),
	}

	// Restore env vars after test
	defer func() {
		for key, value := range originalVars {
			if value == "" {
				os.Unsetenv(key)
			} else {
				os.Setenv(key, value)
			}
		}
	}()

	clearAll := func() {
		for key := range originalVars {
			os.Unsetenv(key)
		}
	}

	t.Run("defaults with no env set", func(t *testing.T) {
		clearAll()

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, BackendMemory, cfg.StorageBackend)
		assert.Equal(t, "redis://localhost:6379", cfg.RedisURL)
		assert.Equal(t, 8080, cfg.APIPort)
		assert.Equal(t, "9100", cfg.MetricsPort)
		assert.Equal(t, "info", cfg.LogLevel)
		assert.Equal(t, 1, cfg.FreePollLimit)
		assert.False(t, cfg.ChainEnabled())
	})

	t.Run("successful load with all vars", func(t *testing.T) {
		clearAll()
		os.Setenv("STORAGE_BACKEND", "redis")
		os.Setenv("REDIS_URL", "redis://localhost:6380")
		os.Setenv("API_PORT", "9000")
		os.Setenv("METRICS_PORT", "9090")
		os.Setenv("LOG_LEVEL", "debug")
		os.Setenv("ADMIN_ADDRESS", "0xadmin")
		os.Setenv("FREE_POLL_LIMIT", "3")
		os.Setenv("LEVEL_XP_SPAN", "500")
		os.Setenv("CHAIN_RPC_ENDPOINTS", "https://fullnode.testnet.example.io, https://rpc.example.org")
		os.Setenv("CHAIN_PACKAGE_ID", "0xabc")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, BackendRedis, cfg.StorageBackend)
		assert.Equal(t, "redis://localhost:6380", cfg.RedisURL)
		assert.Equal(t, 9000, cfg.APIPort)
		assert.Equal(t, "9090", cfg.MetricsPort)
		assert.Equal(t, "debug", cfg.LogLevel)
		assert.Equal(t, "0xadmin", cfg.AdminAddress)
		assert.Equal(t, 3, cfg.FreePollLimit)
		assert.Equal(t, 500, cfg.LevelXPSpan)
		assert.Equal(t, []string{"https://fullnode.testnet.example.io", "https://rpc.example.org"}, cfg.ChainRPCEndpoints)
		assert.True(t, cfg.ChainEnabled())
	})

	t.Run("unknown storage backend", func(t *testing.T) {
		clearAll()
		os.Setenv("STORAGE_BACKEND", "etcd")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "STORAGE_BACKEND")
	})

	t.Run("postgres backend requires DSN", func(t *testing.T) {
		clearAll()
		os.Setenv("STORAGE_BACKEND", "postgres")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "POSTGRES_DSN")
	})

	t.Run("invalid API_PORT", func(t *testing.T) {
		clearAll()
		os.Setenv("API_PORT", "not-a-number")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "API_PORT")
	})

	t.Run("negative FREE_POLL_LIMIT", func(t *testing.T) {
		clearAll()
		os.Setenv("FREE_POLL_LIMIT", "-1")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "FREE_POLL_LIMIT")
	})

	t.Run("chain endpoints require package id", func(t *testing.T) {
		clearAll()
		os.Setenv("CHAIN_RPC_ENDPOINTS", "https://rpc.example.org")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "CHAIN_PACKAGE_ID")
	})
}
