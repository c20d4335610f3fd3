package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/wildfire-price-dashboard/internal/domain"
)

const (
	defaultBroker   = "localhost:9092"
	testMapboxToken = "pk.test-token"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)

	assert.Equal(t, "data/CA_counties.csv", cfg.CountyCSV)
	assert.Equal(t, "data/ZILLOW_DATA_CITIES.csv", cfg.CityCSV)
	assert.Equal(t, "data/FILTERED_COUNTY_LINES.json", cfg.CountyGeoJSON)
	assert.Equal(t, "data/CA_CITIES.json", cfg.CityGeoJSON)
	assert.Equal(t, "data/FILTERED_BIG_FIRES.json", cfg.FireGeoJSON)
	assert.Equal(t, domain.MissingDrop, cfg.MissingPolicy)

	assert.Equal(t, 960, cfg.ViewportWidth)
	assert.Equal(t, 600, cfg.ViewportHeight)
	assert.Equal(t, 300, cfg.SidebarOffset)
	assert.Equal(t, 750*time.Millisecond, cfg.ZoomDuration)
	assert.Empty(t, cfg.ChartStyleFile)
	assert.Equal(t, 1000, cfg.SessionCacheSize)
	assert.Equal(t, 5, cfg.SuggestionLimit)
	assert.Equal(t, 2020, cfg.DefaultYear)

	assert.False(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{defaultBroker}, cfg.KafkaBrokers)
	assert.Equal(t, "dashboard-interactions", cfg.KafkaTopic)
	assert.Equal(t, 50, cfg.BatchSize)
	assert.Equal(t, 500*time.Millisecond, cfg.BatchFlushInterval)

	assert.False(t, cfg.MapboxEnabled)
	assert.Empty(t, cfg.MapboxToken)
	assert.Equal(t, 5*time.Second, cfg.MapboxTimeout)
	assert.Equal(t, 1000, cfg.MapboxCacheSize)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("CORS_ORIGINS", "https://fires.example.org,http://localhost:3000")
	t.Setenv("COUNTY_CSV", "https://example.org/counties.csv")
	t.Setenv("MISSING_POLICY", "zero")
	t.Setenv("VIEWPORT_WIDTH", "1280")
	t.Setenv("VIEWPORT_HEIGHT", "800")
	t.Setenv("SIDEBAR_OFFSET", "400")
	t.Setenv("ZOOM_DURATION", "1s")
	t.Setenv("CHART_STYLE_FILE", "style.yaml")
	t.Setenv("SESSION_CACHE_SIZE", "10")
	t.Setenv("SUGGESTION_LIMIT", "8")
	t.Setenv("DEFAULT_YEAR", "2018")
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_TOPIC", "clicks")
	t.Setenv("BATCH_SIZE", "100")
	t.Setenv("BATCH_FLUSH_INTERVAL", "1s")
	t.Setenv("MAPBOX_TOKEN", testMapboxToken)
	t.Setenv("MAPBOX_TIMEOUT", "10s")
	t.Setenv("MAPBOX_CACHE_SIZE", "500")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, []string{"https://fires.example.org", "http://localhost:3000"}, cfg.CORSOrigins)
	assert.Equal(t, "https://example.org/counties.csv", cfg.CountyCSV)
	assert.Equal(t, domain.MissingZero, cfg.MissingPolicy)
	assert.Equal(t, 1280, cfg.ViewportWidth)
	assert.Equal(t, 800, cfg.ViewportHeight)
	assert.Equal(t, 400, cfg.SidebarOffset)
	assert.Equal(t, time.Second, cfg.ZoomDuration)
	assert.Equal(t, "style.yaml", cfg.ChartStyleFile)
	assert.Equal(t, 10, cfg.SessionCacheSize)
	assert.Equal(t, 8, cfg.SuggestionLimit)
	assert.Equal(t, 2018, cfg.DefaultYear)
	assert.True(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "clicks", cfg.KafkaTopic)
	assert.Equal(t, 100, cfg.BatchSize)
	assert.Equal(t, 1*time.Second, cfg.BatchFlushInterval)
	assert.True(t, cfg.MapboxEnabled)
	assert.Equal(t, testMapboxToken, cfg.MapboxToken)
	assert.Equal(t, 10*time.Second, cfg.MapboxTimeout)
	assert.Equal(t, 500, cfg.MapboxCacheSize)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"SHUTDOWN_TIMEOUT", "not-a-duration"},
		{"SHUTDOWN_TIMEOUT", "-1s"},
		{"BATCH_SIZE", "0"},
		{"BATCH_SIZE", "9999"},
		{"BATCH_FLUSH_INTERVAL", "not-a-duration"},
		{"MAPBOX_TIMEOUT", "bad"},
		{"ZOOM_DURATION", "0s"},
		{"MISSING_POLICY", "interpolate"},
		{"VIEWPORT_WIDTH", "wide"},
		{"SESSION_CACHE_SIZE", "-3"},
		{"SUGGESTION_LIMIT", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

func TestLoad_SidebarWiderThanViewport(t *testing.T) {
	t.Setenv("VIEWPORT_WIDTH", "300")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SIDEBAR_OFFSET")
}

func TestLoad_MapboxEnabledWithoutToken(t *testing.T) {
	t.Setenv("MAPBOX_ENABLED", "true")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MAPBOX_TOKEN")
}

func TestLoad_MapboxTokenImpliesEnabled(t *testing.T) {
	t.Setenv("MAPBOX_TOKEN", testMapboxToken)
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.MapboxEnabled)
}

func TestLoad_MapboxExplicitlyDisabled(t *testing.T) {
	t.Setenv("MAPBOX_TOKEN", testMapboxToken)
	t.Setenv("MAPBOX_ENABLED", "false")
	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.MapboxEnabled)
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("SUGGESTION_LIMIT=7\nHTTP_ADDR=:7000\n"), 0o600))
	t.Setenv("HTTP_ADDR", ":9999")
	t.Setenv("SUGGESTION_LIMIT", "")
	require.NoError(t, os.Unsetenv("SUGGESTION_LIMIT"))

	require.NoError(t, LoadDotEnv(path))
	t.Cleanup(func() { _ = os.Unsetenv("SUGGESTION_LIMIT") })

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.SuggestionLimit)
	assert.Equal(t, ":9999", cfg.HTTPAddr, "existing variables win")
}

func TestLoadDotEnv_MissingFileIsFine(t *testing.T) {
	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "absent.env")))
}
