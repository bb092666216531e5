package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 5*time.Minute, cfg.Server.CacheTTL)
	assert.Equal(t, 30*time.Minute, cfg.Server.SessionTTL)
	assert.Equal(t, "/postnl/deliveryOptions/getNearestLocations", cfg.Upstream.Paths.Locations)
	assert.True(t, cfg.Options.AllowTimeframes)
	assert.True(t, cfg.Options.AllowPG)
	assert.True(t, cfg.Options.AllowPA)
	assert.False(t, cfg.Options.AllowPGE)
	assert.Equal(t, "NL", cfg.Options.Country)
	assert.Equal(t, 14, cfg.Map.NearestZoomThreshold)
	assert.Equal(t, "flat", cfg.Carrier.RateType)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.True(t, cfg.Audit.Enabled)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9000
  session_ttl_minutes: 5
upstream:
  base_url: "https://shop.example.com"
  paths:
    timeframes: "/custom/timeframes"
options:
  allow_pge: true
  allow_pa: false
  evening_fee: 1.95
map:
  nearest_zoom_threshold: 12
database:
  driver: sqlite
  dsn: "file::memory:"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 5*time.Minute, cfg.Server.SessionTTL)
	assert.Equal(t, "https://shop.example.com", cfg.Upstream.BaseURL)
	assert.Equal(t, "/custom/timeframes", cfg.Upstream.Paths.Timeframes)
	assert.Equal(t, "/postnl/deliveryOptions/saveSelectedOption", cfg.Upstream.Paths.SaveOption)
	assert.True(t, cfg.Options.AllowPG, "unset switches keep their default")
	assert.True(t, cfg.Options.AllowPGE)
	assert.False(t, cfg.Options.AllowPA)
	assert.Equal(t, 1.95, cfg.Options.EveningFee)
	assert.Equal(t, 12, cfg.Map.NearestZoomThreshold)
	assert.Equal(t, 13, cfg.Map.MinSearchZoom)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
}

func TestLoad_Example(t *testing.T) {
	cfg, err := Load("config.yaml")
	require.NoError(t, err)
	assert.Equal(t, 2.5, cfg.Options.ExpressFee)
	assert.Equal(t, 128, cfg.Audit.QueueSize)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "server: [not, a, map]"))
	assert.Error(t, err)
}
