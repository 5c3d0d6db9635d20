package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "Jerusalem", cfg.Reference.Name)
	assert.Equal(t, 31.7780, cfg.Reference.Lat)
	assert.Equal(t, 35.2354, cfg.Reference.Lng)
	assert.Equal(t, 5000.0, cfg.Display.LineLength)
	assert.Equal(t, 1609.344, cfg.Display.CircleRadius)
	assert.Equal(t, "great-circle", cfg.Display.Mode)
	assert.Equal(t, 10*time.Second, cfg.Geocoder.Timeout)
	assert.Equal(t, "0.0.0.0:8080", cfg.ServerAddr())
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "geobearing.yaml")
	content := `
display:
  mode: rhumb
  line_length: 50000
geocoder:
  provider: gazetteer
  gazetteer_file: /tmp/places.gob
locator:
  provider: static
  lat: 40.6782
  lng: -73.9442
cache:
  ttl: 1h
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "rhumb", cfg.Display.Mode)
	assert.Equal(t, 50000.0, cfg.Display.LineLength)
	assert.Equal(t, "gazetteer", cfg.Geocoder.Provider)
	assert.Equal(t, 40.6782, cfg.Locator.Lat)
	assert.Equal(t, time.Hour, cfg.Cache.TTL)
	// untouched keys keep defaults
	assert.Equal(t, 1609.344, cfg.Display.CircleRadius)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("GEOBEARING_DISPLAY_LINE_LENGTH", "12345")
	t.Setenv("GEOBEARING_LOG_LEVEL", "debug")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 12345.0, cfg.Display.LineLength)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	cfg.Display.Mode = "zigzag"
	cfg.Display.LineLength = -1
	cfg.Geocoder.Provider = "carrier-pigeon"
	cfg.Server.Port = 0

	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "display.mode")
	assert.Contains(t, err.Error(), "display.line_length")
	assert.Contains(t, err.Error(), "geocoder.provider")
	assert.Contains(t, err.Error(), "server.port")
}
