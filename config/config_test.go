package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadEnvDefaults(t *testing.T) {
	cfg := LoadEnv()

	assert.Equal(t, ":8080", cfg.Server.HTTPPort)
	assert.False(t, cfg.Redis.Enabled)
	assert.False(t, cfg.Kafka.Enabled)
	assert.Equal(t, "groupby", cfg.Analytics.Mode)
	assert.Equal(t, 5*time.Minute, cfg.Analytics.CacheTTL)
	assert.Equal(t, 10*time.Second, cfg.Order.LockTTL)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("PAYMENT_GATEWAY_SEED", "42")
	t.Setenv("ANALYTICS_CACHE_TTL", "90s")
	t.Setenv("ORDER_LOCK_TTL", "not-a-duration")

	cfg := LoadEnv()

	assert.Equal(t, "9000", cfg.Server.HTTPPort)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, uint64(42), cfg.Payment.GatewaySeed)
	assert.Equal(t, 90*time.Second, cfg.Analytics.CacheTTL)
	assert.Equal(t, 10*time.Second, cfg.Order.LockTTL)
}
