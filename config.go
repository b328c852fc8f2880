package main

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// Config collects everything the tool reads from the environment. The
// station name itself comes from the command line; these are the knobs that
// only matter when the archive moves or a run needs tuning.
type Config struct {
	BaseURL string

	Cache struct {
		Dir string
		TTL time.Duration
	}

	Directory struct {
		Path       string
		SweepStart int
	}

	Fetch struct {
		Workers        int
		Timeout        time.Duration
		MaxRetries     int
		RetryDelay     time.Duration
		Multiplier     float64
		BreakerTimeout time.Duration
	}

	Language string
}

func loadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		zap.L().Debug("no .env file found, using environment variables")
	}

	cfg := &Config{}
	cfg.BaseURL = getEnv("ARHIV_BASE_URL", "https://meteo.arso.gov.si/webmet/archive")

	cfg.Cache.Dir = getEnv("ARHIV_CACHE_DIR", "cache")
	cfg.Cache.TTL = parseDuration(getEnv("ARHIV_CACHE_TTL", "24h"))

	cfg.Directory.Path = getEnv("ARHIV_LOCATIONS_FILE", "locations_all.json")
	cfg.Directory.SweepStart = parseInt(getEnv("ARHIV_SWEEP_START_YEAR", strconv.Itoa(archiveStartYear)))

	cfg.Fetch.Workers = parseInt(getEnv("ARHIV_WORKERS", "8"))
	cfg.Fetch.Timeout = parseDuration(getEnv("ARHIV_HTTP_TIMEOUT", "30s"))
	cfg.Fetch.MaxRetries = parseInt(getEnv("ARHIV_MAX_RETRIES", "2"))
	cfg.Fetch.RetryDelay = parseDuration(getEnv("ARHIV_RETRY_DELAY", "1s"))
	cfg.Fetch.Multiplier = parseFloat(getEnv("ARHIV_RETRY_MULTIPLIER", "2"))
	cfg.Fetch.BreakerTimeout = parseDuration(getEnv("ARHIV_BREAKER_TIMEOUT", "30s"))

	cfg.Language = getEnv("ARHIV_LANG", "si")

	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(value string) time.Duration {
	duration, err := time.ParseDuration(value)
	if err != nil {
		zap.L().Warn("failed to parse duration", zap.String("value", value), zap.Error(err))
		return 0
	}
	return duration
}

func parseInt(value string) int {
	intValue, err := strconv.Atoi(value)
	if err != nil {
		zap.L().Warn("failed to parse int", zap.String("value", value), zap.Error(err))
		return 0
	}
	return intValue
}

func parseFloat(value string) float64 {
	floatValue, err := strconv.ParseFloat(value, 64)
	if err != nil {
		zap.L().Warn("failed to parse float", zap.String("value", value), zap.Error(err))
		return 0
	}
	return floatValue
}
