package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yaron8/netperf-analyzer/telemetrics"
)

type Config struct {
	Port   int    `yaml:"port"`   // summary API port
	Format string `yaml:"format"` // text | json
	// Tolerances overrides the noise threshold of a metric, keyed by
	// metric name (rx_packets, tx_bytes, ...).
	Tolerances map[string]float64 `yaml:"tolerances"`
	Redis      RedisConfig        `yaml:"redis"`
	Log        LogConfig          `yaml:"log"`
}

type RedisConfig struct {
	Host string        `yaml:"host"`
	Port int           `yaml:"port"`
	TTL  time.Duration `yaml:"ttl"`
}

type LogConfig struct {
	Dir   string `yaml:"dir"`
	Level string `yaml:"level"` // debug | info | warn | error
}

// NewConfig returns the defaults with environment overrides applied
func NewConfig() *Config {
	cfg := &Config{
		Port:   8080,
		Format: "text",
		Redis: RedisConfig{
			Host: "localhost",
			Port: 6379,
			TTL:  24 * time.Hour,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
	cfg.applyEnv()
	return cfg
}

// Load reads the YAML settings file at path on top of the defaults.
// Environment variables still take precedence over the file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file: %w", err)
	}

	cfg := NewConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

func (c *Config) applyEnv() {
	if redisHost := os.Getenv("REDIS_HOST"); redisHost != "" {
		c.Redis.Host = redisHost
	}

	if redisPortStr := os.Getenv("REDIS_PORT"); redisPortStr != "" {
		if port, err := strconv.Atoi(redisPortStr); err == nil {
			c.Redis.Port = port
		}
	}

	if portStr := os.Getenv("ANALYZER_PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil {
			c.Port = port
		}
	}

	if logDir := os.Getenv("ANALYZER_LOG_DIR"); logDir != "" {
		c.Log.Dir = logDir
	}
}

// Validate checks the settings that cannot be defaulted
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	switch c.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown format %q", c.Format)
	}
	if _, err := c.MetricTolerances(); err != nil {
		return err
	}
	if c.Redis.TTL < 0 {
		return fmt.Errorf("redis.ttl must not be negative")
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	return nil
}

// MetricTolerances converts the configured overrides to typed metrics.
func (c *Config) MetricTolerances() (map[telemetrics.Metric]float64, error) {
	out := make(map[telemetrics.Metric]float64, len(c.Tolerances))
	for name, tol := range c.Tolerances {
		m, err := telemetrics.ParseMetric(name)
		if err != nil {
			return nil, fmt.Errorf("tolerances: %w", err)
		}
		if tol < 0 {
			return nil, fmt.Errorf("tolerances: %s must not be negative", name)
		}
		out[m] = tol
	}
	return out, nil
}

// LogLevel parses Log.Level
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if c.Log.Level == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}

// RedisAddr returns host:port of the summary store
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}
