package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"APP_ENV", "NLU_URL", "NLU_VERSION", "NLU_TIMEOUT", "CACHE_TTL", "CACHE_LRU_SIZE", "VALKEY_TLS"} {
		t.Setenv(key, "")
	}
	// t.Setenv cannot unset, so blank values exercise the parsing fallbacks
	cfg := Load()

	assert.Equal(t, "", cfg.NLU.URL)
	assert.False(t, cfg.NLU.Enabled())
	assert.Equal(t, 24*time.Hour, cfg.Cache.TTL)
	assert.Equal(t, 1024, cfg.Cache.LRUSize)
	assert.False(t, cfg.Cache.ValkeyTLS)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("NLU_URL", "https://nlu.example.com/")
	t.Setenv("NLU_VERSION", "2022-04-07")
	t.Setenv("CACHE_TTL", "90m")
	t.Setenv("CACHE_LRU_SIZE", "16")
	t.Setenv("VALKEY_TLS", "true")
	t.Setenv("DB_USER", "u")
	t.Setenv("DB_PASSWORD", "p")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("DB_NAME", "nlu")

	cfg := Load()

	assert.Equal(t, "https://nlu.example.com", cfg.NLU.URL)
	assert.True(t, cfg.NLU.Enabled())
	assert.Equal(t, "2022-04-07", cfg.NLU.Version)
	assert.Equal(t, 90*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, 16, cfg.Cache.LRUSize)
	assert.True(t, cfg.Cache.ValkeyTLS)
	assert.Equal(t, "postgres://u:p@db:6543/nlu?sslmode=disable", cfg.Postgres.DSN())
}

func TestLoad_ProductionTimeout(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("NLU_TIMEOUT", "not-a-duration")

	assert.Equal(t, 10*time.Second, Load().NLU.Timeout)
}
