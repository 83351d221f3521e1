package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "prompt-1", cfg.WorkerID)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, "prompt.render", cfg.StreamKey)
	assert.Equal(t, "prompt-workers", cfg.ConsumerGroup)
	assert.Equal(t, "prompt.rendered", cfg.ResultStream)
	assert.Equal(t, time.Second, cfg.BlockTime)
	assert.Equal(t, "prompt:block:", cfg.BlockKeyPrefix)
	assert.Zero(t, cfg.BlockTTL)
	assert.Equal(t, "cl100k_base", cfg.TokenizerEncoding)
	assert.Equal(t, 8083, cfg.HealthPort)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("WORKER_ID", "prompt-7")
	t.Setenv("REDIS_ADDR", "redis:6380")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("BLOCK_TTL", "24h")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "prompt-7", cfg.WorkerID)
	assert.Equal(t, "redis:6380", cfg.RedisAddr)
	assert.Equal(t, 2, cfg.RedisDB)
	assert.Equal(t, 24*time.Hour, cfg.BlockTTL)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"log level", "LOG_LEVEL", "verbose"},
		{"health port", "HEALTH_PORT", "70000"},
		{"block time", "BLOCK_TIME", "0s"},
		{"negative ttl", "BLOCK_TTL", "-1s"},
		{"unparsable db", "REDIS_DB", "one"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestConfig_StringHidesPassword(t *testing.T) {
	t.Setenv("REDIS_PASS", "hunter2")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "hunter2", cfg.RedisPassword)
	assert.False(t, strings.Contains(cfg.String(), "hunter2"))
}

func TestIsValidLogLevel(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		assert.True(t, IsValidLogLevel(level), level)
	}
	assert.False(t, IsValidLogLevel("trace"))
	assert.False(t, IsValidLogLevel(""))
}
