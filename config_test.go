package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig_defaults(t *testing.T) {
	cfg := loadConfig()

	assert.Equal(t, "https://meteo.arso.gov.si/webmet/archive", cfg.BaseURL)
	assert.Equal(t, 24*time.Hour, cfg.Cache.TTL)
	assert.Equal(t, "locations_all.json", cfg.Directory.Path)
	assert.Equal(t, archiveStartYear, cfg.Directory.SweepStart)
	assert.Equal(t, 8, cfg.Fetch.Workers)
	assert.Equal(t, "si", cfg.Language)
}

func TestLoadConfig_environmentOverrides(t *testing.T) {
	t.Setenv("ARHIV_BASE_URL", "http://localhost:8080/archive")
	t.Setenv("ARHIV_WORKERS", "2")
	t.Setenv("ARHIV_CACHE_TTL", "1h")
	t.Setenv("ARHIV_LANG", "en")

	cfg := loadConfig()

	assert.Equal(t, "http://localhost:8080/archive", cfg.BaseURL)
	assert.Equal(t, 2, cfg.Fetch.Workers)
	assert.Equal(t, time.Hour, cfg.Cache.TTL)
	assert.Equal(t, "en", cfg.Language)
}
