package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/joho/godotenv"

	"github.com/couchcryptid/wildfire-price-dashboard/internal/domain"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
	CORSOrigins     []string

	// Input files: local paths or http(s) URLs.
	CountyCSV     string
	CityCSV       string
	CountyGeoJSON string
	CityGeoJSON   string
	FireGeoJSON   string
	MissingPolicy domain.MissingPolicy

	// Map viewport and interaction.
	ViewportWidth    int
	ViewportHeight   int
	SidebarOffset    int
	ZoomDuration     time.Duration
	ChartStyleFile   string
	SessionCacheSize int
	SuggestionLimit  int
	DefaultYear      int

	// Interaction event publishing.
	KafkaEnabled       bool
	KafkaBrokers       []string
	KafkaTopic         string
	BatchSize          int
	BatchFlushInterval time.Duration

	// Mapbox place search fallback.
	MapboxToken     string
	MapboxEnabled   bool
	MapboxTimeout   time.Duration
	MapboxCacheSize int
}

// LoadDotEnv seeds the environment from a .env file. Variables already set
// win, and a missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	flushInterval, err := sharedcfg.ParseBatchFlushInterval()
	if err != nil {
		return nil, err
	}

	zoomDuration, err := parseDuration("ZOOM_DURATION", "750ms")
	if err != nil {
		return nil, err
	}

	mapboxTimeout, err := parseDuration("MAPBOX_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}

	missing, err := domain.ParseMissingPolicy(sharedcfg.EnvOrDefault("MISSING_POLICY", "drop"))
	if err != nil {
		return nil, fmt.Errorf("invalid MISSING_POLICY: %w", err)
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
		CORSOrigins:     sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("CORS_ORIGINS", "*")),

		CountyCSV:     sharedcfg.EnvOrDefault("COUNTY_CSV", "data/CA_counties.csv"),
		CityCSV:       sharedcfg.EnvOrDefault("CITY_CSV", "data/ZILLOW_DATA_CITIES.csv"),
		CountyGeoJSON: sharedcfg.EnvOrDefault("COUNTY_GEOJSON", "data/FILTERED_COUNTY_LINES.json"),
		CityGeoJSON:   sharedcfg.EnvOrDefault("CITY_GEOJSON", "data/CA_CITIES.json"),
		FireGeoJSON:   sharedcfg.EnvOrDefault("FIRE_GEOJSON", "data/FILTERED_BIG_FIRES.json"),
		MissingPolicy: missing,

		ZoomDuration:   zoomDuration,
		ChartStyleFile: os.Getenv("CHART_STYLE_FILE"),

		KafkaEnabled:       os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers:       sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:         sharedcfg.EnvOrDefault("KAFKA_TOPIC", "dashboard-interactions"),
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,

		MapboxToken:   os.Getenv("MAPBOX_TOKEN"),
		MapboxTimeout: mapboxTimeout,
	}
	for _, v := range []struct {
		key string
		def int
		dst *int
	}{
		{"VIEWPORT_WIDTH", 960, &cfg.ViewportWidth},
		{"VIEWPORT_HEIGHT", 600, &cfg.ViewportHeight},
		{"SIDEBAR_OFFSET", 300, &cfg.SidebarOffset},
		{"SESSION_CACHE_SIZE", 1000, &cfg.SessionCacheSize},
		{"SUGGESTION_LIMIT", 5, &cfg.SuggestionLimit},
		{"DEFAULT_YEAR", 2020, &cfg.DefaultYear},
		{"MAPBOX_CACHE_SIZE", 1000, &cfg.MapboxCacheSize},
	} {
		n, err := parsePositiveInt(v.key, v.def)
		if err != nil {
			return nil, err
		}
		*v.dst = n
	}

	cfg.MapboxEnabled = cfg.MapboxToken != ""
	if v := os.Getenv("MAPBOX_ENABLED"); v != "" {
		cfg.MapboxEnabled = v == "true"
	}

	if cfg.SidebarOffset >= cfg.ViewportWidth {
		return nil, errors.New("SIDEBAR_OFFSET must be smaller than VIEWPORT_WIDTH")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required when KAFKA_ENABLED is true")
	}
	if cfg.KafkaEnabled && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_TOPIC is required when KAFKA_ENABLED is true")
	}
	if cfg.MapboxEnabled && cfg.MapboxToken == "" {
		return nil, errors.New("MAPBOX_ENABLED is true but MAPBOX_TOKEN is not set")
	}

	return cfg, nil
}

func parseDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parsePositiveInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive integer", key)
	}
	return n, nil
}
