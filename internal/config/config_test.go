package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/quakesense-service/internal/domain"
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

	assert.Equal(t, ".", cfg.DataDir)
	assert.Equal(t, "events.csv", cfg.EventsFile)
	assert.Equal(t, "stations.csv", cfg.StationsFile)
	assert.Equal(t, "descriptions.txt", cfg.DescriptionsFile)
	assert.Equal(t, "20250423094910_3416_ap_RawAcc_N.asc", cfg.SignalFile)
	assert.Equal(t, "signals", cfg.SignalDir)
	assert.Equal(t, "maps", cfg.MapDir)

	assert.Equal(t, 100.0, cfg.SignalSampleRate)
	assert.Equal(t, 10500, cfg.SignalMaxSamples)
	assert.Equal(t, domain.ResponseIllustrative, cfg.ResponseModel)
	assert.Equal(t, domain.AriasRaw, cfg.AriasNormalization)

	assert.False(t, cfg.MapboxEnabled)
	assert.Empty(t, cfg.MapboxToken)
	assert.Equal(t, 5*time.Second, cfg.MapboxTimeout)
	assert.Equal(t, 1000, cfg.MapboxCacheSize)

	assert.Equal(t, []string{defaultBroker}, cfg.KafkaBrokers)
	assert.Equal(t, "earthquake-feature-summaries", cfg.KafkaSinkTopic)
	assert.Equal(t, 50, cfg.BatchSize)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("DATA_DIR", "/data")
	t.Setenv("EVENTS_FILE", "afad_events.csv")
	t.Setenv("SIGNAL_DIR", "/records")
	t.Setenv("SIGNAL_SAMPLE_RATE", "200")
	t.Setenv("SIGNAL_MAX_SAMPLES", "0")
	t.Setenv("RESPONSE_MODEL", "sdof")
	t.Setenv("ARIAS_NORMALIZATION", "standard")
	t.Setenv("MAPBOX_TOKEN", testMapboxToken)
	t.Setenv("MAPBOX_TIMEOUT", "10s")
	t.Setenv("MAPBOX_CACHE_SIZE", "500")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_SINK_TOPIC", "custom-sink")
	t.Setenv("BATCH_SIZE", "100")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "/data", cfg.DataDir)
	assert.Equal(t, "afad_events.csv", cfg.EventsFile)
	assert.Equal(t, 200.0, cfg.SignalSampleRate)
	assert.Equal(t, 0, cfg.SignalMaxSamples)
	assert.Equal(t, domain.ResponseSDOF, cfg.ResponseModel)
	assert.Equal(t, domain.AriasStandard, cfg.AriasNormalization)
	assert.True(t, cfg.MapboxEnabled)
	assert.Equal(t, testMapboxToken, cfg.MapboxToken)
	assert.Equal(t, 10*time.Second, cfg.MapboxTimeout)
	assert.Equal(t, 500, cfg.MapboxCacheSize)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "custom-sink", cfg.KafkaSinkTopic)
	assert.Equal(t, 100, cfg.BatchSize)

	assert.Equal(t, filepath.Join("/data", "afad_events.csv"), cfg.Resolve(cfg.EventsFile))
	assert.Equal(t, "/records", cfg.Resolve(cfg.SignalDir))
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		env   string
		value string
	}{
		{"SHUTDOWN_TIMEOUT", "not-a-duration"},
		{"SHUTDOWN_TIMEOUT", "-1s"},
		{"BATCH_SIZE", "0"},
		{"BATCH_SIZE", "9999"},
		{"MAPBOX_TIMEOUT", "bad"},
		{"SIGNAL_SAMPLE_RATE", "0"},
		{"SIGNAL_SAMPLE_RATE", "fast"},
		{"SIGNAL_MAX_SAMPLES", "-5"},
		{"RESPONSE_MODEL", "newmark"},
		{"ARIAS_NORMALIZATION", "si"},
	}
	for _, tt := range tests {
		t.Run(tt.env+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.env, tt.value)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.env)
		})
	}
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

func TestResolve(t *testing.T) {
	cfg := &Config{DataDir: "data"}
	assert.Equal(t, filepath.Join("data", "events.csv"), cfg.Resolve("events.csv"))
	assert.Equal(t, "/abs/events.csv", cfg.Resolve("/abs/events.csv"))
	assert.Empty(t, cfg.Resolve(""))
}
