package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadEnvDefaults(t *testing.T) {
	for _, key := range []string{"DB_DRIVER", "REDIS_ADDR", "KAFKA_BROKERS", "SHOPIFY_SHOP_DOMAIN", "SYNC_INTERVAL_SECONDS"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg := LoadEnv()
	assert.Equal(t, "sqlite3", cfg.Database.Driver)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.Equal(t, 0, cfg.Sync.IntervalSeconds)
	assert.Equal(t, "2024-10", cfg.Shopify.APIVersion)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "pgx")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("SYNC_INTERVAL_SECONDS", "300")
	t.Setenv("REDIS_DB", "not-a-number")
	t.Setenv("LOGGER_DISABLE_CALLER", "true")

	cfg := LoadEnv()
	assert.Equal(t, "pgx", cfg.Database.Driver)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 300, cfg.Sync.IntervalSeconds)
	assert.Equal(t, 0, cfg.Redis.DB)
	assert.True(t, cfg.Logger.DisableCaller)
}
