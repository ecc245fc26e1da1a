package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"DATA_FILE", "STORE_DRIVER", "DATABASE_URL", "REDIS_ADDR", "REDIS_DB",
		"VERIFICATION_CODE_LENGTH", "VERIFICATION_CODE_TTL_SECONDS", "NATS_URL", "LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, "data.json", cfg.DataFile)
	assert.Equal(t, DriverFile, cfg.StoreDriver)
	assert.Equal(t, 0, cfg.RedisDB)
	assert.Equal(t, 6, cfg.CodeLength)
	assert.Equal(t, time.Duration(0), cfg.CodeTTL())
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Empty(t, cfg.NATSURL)
}

func TestDatabaseURLSelectsPostgres(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("DATABASE_URL", "postgres://market@localhost/market")

	assert.Equal(t, DriverPostgres, Load().StoreDriver)
}

func TestStoreDriverFallsBackToFile(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	t.Setenv("STORE_DRIVER", " Memory ")
	assert.Equal(t, DriverMemory, Load().StoreDriver)

	t.Setenv("STORE_DRIVER", "postgres")
	assert.Equal(t, DriverFile, Load().StoreDriver)
}

func TestCodeSettingsAreClamped(t *testing.T) {
	t.Setenv("VERIFICATION_CODE_LENGTH", "2")
	t.Setenv("VERIFICATION_CODE_TTL_SECONDS", "-5")
	cfg := Load()
	assert.Equal(t, 4, cfg.CodeLength)
	assert.Equal(t, 0, cfg.CodeTTLSeconds)

	t.Setenv("VERIFICATION_CODE_LENGTH", "12")
	t.Setenv("VERIFICATION_CODE_TTL_SECONDS", "300")
	cfg = Load()
	assert.Equal(t, 10, cfg.CodeLength)
	assert.Equal(t, 5*time.Minute, cfg.CodeTTL())
}
