package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DriverFile     = "file"
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
)

type Config struct {
	DataFile    string
	StoreDriver string
	DatabaseURL string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	CodeLength     int
	CodeTTLSeconds int

	NATSURL string

	LogLevel  string
	LogFormat string
}

func Load() Config {
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	codeLength, err := strconv.Atoi(getEnv("VERIFICATION_CODE_LENGTH", "6"))
	if err != nil {
		codeLength = 6
	}
	codeLength = min(max(codeLength, 4), 10)
	codeTTL, err := strconv.Atoi(getEnv("VERIFICATION_CODE_TTL_SECONDS", "0"))
	if err != nil || codeTTL < 0 {
		codeTTL = 0
	}

	cfg := Config{
		DataFile:       getEnv("DATA_FILE", "data.json"),
		DatabaseURL:    strings.TrimSpace(os.Getenv("DATABASE_URL")),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		RedisDB:        redisDB,
		CodeLength:     codeLength,
		CodeTTLSeconds: codeTTL,
		NATSURL:        strings.TrimSpace(os.Getenv("NATS_URL")),
		LogLevel:       strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat:      strings.ToLower(getEnv("LOG_FORMAT", "text")),
	}
	cfg.StoreDriver = resolveDriver(getEnv("STORE_DRIVER", DriverFile), cfg.DatabaseURL)

	return cfg
}

// CodeTTL is zero when codes never expire.
func (c Config) CodeTTL() time.Duration {
	return time.Duration(c.CodeTTLSeconds) * time.Second
}

// resolveDriver lets DATABASE_URL win over the configured driver so a set
// database is never silently ignored.
func resolveDriver(driver string, databaseURL string) string {
	if databaseURL != "" {
		return DriverPostgres
	}
	switch driver = strings.ToLower(strings.TrimSpace(driver)); driver {
	case DriverMemory:
		return DriverMemory
	default:
		return DriverFile
	}
}

func getEnv(key string, fallback string) string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	return val
}
