package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIntOr(t *testing.T) {
	t.Run("unset falls back to default", func(t *testing.T) {
		assert.Equal(t, 10, intOr("TEST_INT_OR_UNSET", 10))
	})
	t.Run("set value wins", func(t *testing.T) {
		t.Setenv("TEST_INT_OR_SET", "25")
		assert.Equal(t, 25, intOr("TEST_INT_OR_SET", 10))
	})
	t.Run("empty string falls back", func(t *testing.T) {
		t.Setenv("TEST_INT_OR_EMPTY", "")
		assert.Equal(t, 7, intOr("TEST_INT_OR_EMPTY", 7))
	})
}

func TestLoadRateLimitConfigDefaults(t *testing.T) {
	cfg := LoadRateLimitConfig()
	assert.True(t, cfg.Enabled)
	assert.Equal(t, 60, cfg.Capacity)
	assert.Equal(t, 1, cfg.RefillTokens)
	assert.Equal(t, time.Second, cfg.RefillInterval)
	assert.GreaterOrEqual(t, cfg.TTL, 5*cfg.RefillInterval)
}

func TestLoadRateLimitConfigClampsTTL(t *testing.T) {
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "5m")
	t.Setenv("RATE_LIMIT_TTL", "1m")
	cfg := LoadRateLimitConfig()
	assert.Equal(t, 25*time.Minute, cfg.TTL)
}

func TestLoadCacheConfig(t *testing.T) {
	t.Setenv("CACHE_METHODS", "get, head")
	cfg := LoadCacheConfig()
	assert.True(t, cfg.Enabled)
	assert.True(t, cfg.Methods["GET"])
	assert.True(t, cfg.Methods["HEAD"])
	assert.False(t, cfg.Methods["POST"])
	assert.Equal(t, 30*time.Second, cfg.TTL)
}
