package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port       int           `yaml:"port"`       // live /counters endpoint, 0 disables it
	Interfaces []string      `yaml:"interfaces"` // empty records every interface
	Duration   time.Duration `yaml:"duration"`   // 0 records until interrupted
	Output     string        `yaml:"output"`     // results CSV path
	LogDir     string        `yaml:"log_dir"`
}

func NewConfig() *Config {
	return &Config{
		Port:   0,
		Output: "results.csv",
		LogDir: os.Getenv("COLLECTOR_LOG_DIR"),
	}
}

// Load reads the YAML settings file at path on top of the defaults
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file: %w", err)
	}

	cfg := NewConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.Duration < 0 {
		return fmt.Errorf("duration must not be negative")
	}
	if c.Output == "" {
		return fmt.Errorf("output is required")
	}
	return nil
}
