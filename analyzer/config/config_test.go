package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaron8/netperf-analyzer/telemetrics"
)

func writeSettings(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestNewConfig_Defaults(t *testing.T) {
	t.Setenv("REDIS_HOST", "")
	t.Setenv("REDIS_PORT", "")
	t.Setenv("ANALYZER_PORT", "")
	t.Setenv("ANALYZER_LOG_DIR", "")

	cfg := NewConfig()

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "text", cfg.Format)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr())
	assert.Equal(t, 24*time.Hour, cfg.Redis.TTL)
	assert.NoError(t, cfg.Validate())
}

func TestNewConfig_EnvOverrides(t *testing.T) {
	t.Setenv("REDIS_HOST", "redis")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("ANALYZER_PORT", "9090")
	t.Setenv("ANALYZER_LOG_DIR", "/tmp/analyzer")

	cfg := NewConfig()

	assert.Equal(t, "redis:6380", cfg.RedisAddr())
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "/tmp/analyzer", cfg.Log.Dir)
}

func TestLoad(t *testing.T) {
	t.Setenv("REDIS_HOST", "")
	t.Setenv("REDIS_PORT", "")

	path := writeSettings(t, `
format: json
tolerances:
  rx_packets: 10
  tx_bytes: 0
redis:
  host: store
  ttl: 1h
log:
  level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, "store:6379", cfg.RedisAddr())
	assert.Equal(t, time.Hour, cfg.Redis.TTL)

	tols, err := cfg.MetricTolerances()
	require.NoError(t, err)
	assert.Equal(t, map[telemetrics.Metric]float64{
		telemetrics.RxPackets: 10,
		telemetrics.TxBytes:   0,
	}, tols)

	level, err := cfg.LogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoad_EnvBeatsFile(t *testing.T) {
	t.Setenv("REDIS_HOST", "from-env")

	cfg, err := Load(writeSettings(t, "redis:\n  host: from-file\n"))
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Redis.Host)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad yaml", "format: [json"},
		{"unknown format", "format: xml"},
		{"unknown metric", "tolerances:\n  rx_errors: 1\n"},
		{"negative tolerance", "tolerances:\n  rx_packets: -1\n"},
		{"bad log level", "log:\n  level: loud\n"},
		{"bad port", "port: 70000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeSettings(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
