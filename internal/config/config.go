package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"

	"github.com/couchcryptid/quakesense-service/internal/domain"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Data resources. Relative file names resolve against DataDir.
	DataDir          string
	EventsFile       string
	StationsFile     string
	DescriptionsFile string
	SignalFile       string
	SignalDir        string
	MapDir           string

	// Signal analysis.
	SignalSampleRate   float64
	SignalMaxSamples   int
	ResponseModel      domain.ResponseModel
	AriasNormalization domain.AriasNormalization

	// Mapbox geocoding configuration.
	MapboxToken     string
	MapboxEnabled   bool
	MapboxTimeout   time.Duration
	MapboxCacheSize int

	// Summary publishing.
	KafkaBrokers   []string
	KafkaSinkTopic string
	BatchSize      int
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	mapboxTimeoutStr := sharedcfg.EnvOrDefault("MAPBOX_TIMEOUT", "5s")
	mapboxTimeout, err := time.ParseDuration(mapboxTimeoutStr)
	if err != nil || mapboxTimeout <= 0 {
		return nil, errors.New("invalid MAPBOX_TIMEOUT")
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	sampleRate, err := strconv.ParseFloat(sharedcfg.EnvOrDefault("SIGNAL_SAMPLE_RATE", "100"), 64)
	if err != nil || sampleRate <= 0 {
		return nil, errors.New("invalid SIGNAL_SAMPLE_RATE: must be a positive number of Hz")
	}

	maxSamples, err := strconv.Atoi(sharedcfg.EnvOrDefault("SIGNAL_MAX_SAMPLES", "10500"))
	if err != nil || maxSamples < 0 {
		return nil, errors.New("invalid SIGNAL_MAX_SAMPLES: must be a non-negative integer")
	}

	responseModel, err := domain.ParseResponseModel(sharedcfg.EnvOrDefault("RESPONSE_MODEL", string(domain.ResponseIllustrative)))
	if err != nil {
		return nil, fmt.Errorf("invalid RESPONSE_MODEL: %w", err)
	}

	arias, err := domain.ParseAriasNormalization(sharedcfg.EnvOrDefault("ARIAS_NORMALIZATION", string(domain.AriasRaw)))
	if err != nil {
		return nil, fmt.Errorf("invalid ARIAS_NORMALIZATION: %w", err)
	}

	mapboxCacheSize := parseMapboxCacheSize()

	mapboxToken := os.Getenv("MAPBOX_TOKEN")
	mapboxEnabled := mapboxToken != ""
	if v := os.Getenv("MAPBOX_ENABLED"); v != "" {
		mapboxEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		DataDir:          sharedcfg.EnvOrDefault("DATA_DIR", "."),
		EventsFile:       sharedcfg.EnvOrDefault("EVENTS_FILE", "events.csv"),
		StationsFile:     sharedcfg.EnvOrDefault("STATIONS_FILE", "stations.csv"),
		DescriptionsFile: sharedcfg.EnvOrDefault("DESCRIPTIONS_FILE", "descriptions.txt"),
		SignalFile:       sharedcfg.EnvOrDefault("SIGNAL_FILE", "20250423094910_3416_ap_RawAcc_N.asc"),
		SignalDir:        sharedcfg.EnvOrDefault("SIGNAL_DIR", "signals"),
		MapDir:           sharedcfg.EnvOrDefault("MAP_DIR", "maps"),

		SignalSampleRate:   sampleRate,
		SignalMaxSamples:   maxSamples,
		ResponseModel:      responseModel,
		AriasNormalization: arias,

		MapboxToken:     mapboxToken,
		MapboxEnabled:   mapboxEnabled,
		MapboxTimeout:   mapboxTimeout,
		MapboxCacheSize: mapboxCacheSize,

		KafkaBrokers:   sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSinkTopic: sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "earthquake-feature-summaries"),
		BatchSize:      batchSize,
	}

	if len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required")
	}
	if cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_TOPIC is required")
	}
	if cfg.MapboxEnabled && cfg.MapboxToken == "" {
		return nil, errors.New("MAPBOX_ENABLED is true but MAPBOX_TOKEN is not set")
	}

	return cfg, nil
}

// Resolve returns name unchanged when absolute, otherwise joined to DataDir.
func (c *Config) Resolve(name string) string {
	if name == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.DataDir, name)
}

func parseMapboxCacheSize() int {
	if s := os.Getenv("MAPBOX_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 1000
}
