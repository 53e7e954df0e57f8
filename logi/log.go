package logi

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

var (
	logger *slog.Logger
	once   sync.Once
)

// Config holds the logging configuration
type Config struct {
	// LogDir is the directory where log files will be stored
	// Default: /var/log/netperf-analyzer (or ./logs if not writable)
	LogDir string
	// LogFileName is the name of the log file
	// Default: app.log
	LogFileName string
	// Writer, when set, receives the log records instead of a file.
	// LogDir and LogFileName are ignored.
	Writer io.Writer
	// Level is the minimum log level to write
	// Default: slog.LevelInfo
	Level slog.Level
}

// NewLog creates or returns the singleton logger instance.
// The first call wins; later calls return the logger built by the first one.
// Records are JSON so a run's log can be filtered with jq.
func NewLog(cfg *Config) (*slog.Logger, error) {
	var initErr error

	once.Do(func() {
		if cfg == nil {
			cfg = &Config{}
		}

		out := cfg.Writer
		logPath := "writer"
		if out == nil {
			if cfg.LogDir == "" {
				cfg.LogDir = "/var/log/netperf-analyzer"
				if !isDirWritable(cfg.LogDir) {
					cfg.LogDir = "./logs"
				}
			}

			if cfg.LogFileName == "" {
				cfg.LogFileName = "app.log"
			}

			if err := os.MkdirAll(cfg.LogDir, 0755); err != nil {
				initErr = fmt.Errorf("failed to create log directory %s: %w", cfg.LogDir, err)
				return
			}

			logPath = filepath.Join(cfg.LogDir, cfg.LogFileName)

			file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
			if err != nil {
				initErr = fmt.Errorf("failed to open log file %s: %w", logPath, err)
				return
			}
			out = file
		}

		level := cfg.Level
		if level == 0 {
			level = slog.LevelInfo
		}

		opts := &slog.HandlerOptions{
			Level:     level,
			AddSource: false,
		}

		logger = slog.New(slog.NewJSONHandler(out, opts))

		logger.Info("logger initialized",
			"log_path", logPath,
			"level", level.String(),
		)
	})

	if initErr != nil {
		return nil, initErr
	}

	return logger, nil
}

// GetLogger returns the existing logger instance.
// Panics if NewLog hasn't been called yet - call NewLog once at startup.
func GetLogger() *slog.Logger {
	if logger == nil {
		panic("logger not initialized - call NewLog first")
	}
	return logger
}

// isDirWritable checks if a directory is writable
func isDirWritable(path string) bool {
	if err := os.MkdirAll(path, 0755); err != nil {
		return false
	}

	testFile := filepath.Join(path, ".write_test")
	file, err := os.OpenFile(testFile, os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return false
	}
	file.Close()
	os.Remove(testFile)
	return true
}
