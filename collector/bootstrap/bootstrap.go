package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/yaron8/netperf-analyzer/collector/config"
	"github.com/yaron8/netperf-analyzer/collector/metrics"
	"github.com/yaron8/netperf-analyzer/collector/service"
	"github.com/yaron8/netperf-analyzer/logi"
)

type Bootstrap struct {
	config    *config.Config
	interval  time.Duration
	recorder  *metrics.CSVRecorder
	apiServer *service.APIServer
	logger    *slog.Logger
}

// NewBootstrap wires a collector sampling source every sampleRate
// microseconds.
func NewBootstrap(cfg *config.Config, sampleRate int, source metrics.CounterSource) (*Bootstrap, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be a positive integer, got %d", sampleRate)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	logger, err := logi.NewLog(&logi.Config{LogDir: cfg.LogDir, LogFileName: "collector.log"})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	recorder := metrics.NewCSVRecorder(source, cfg.Interfaces)

	b := &Bootstrap{
		config:   cfg,
		interval: time.Duration(sampleRate) * time.Microsecond,
		recorder: recorder,
		logger:   logger,
	}
	if cfg.Port > 0 {
		b.apiServer = service.NewAPIServer(cfg, recorder)
	}
	return b, nil
}

// Start records until ctx is done or the configured duration elapses,
// then writes the results file.
func (b *Bootstrap) Start(ctx context.Context) error {
	if b.apiServer != nil {
		go func() {
			if err := b.apiServer.Start(); err != nil {
				b.logger.Error("Collector APIServer stopped", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := b.apiServer.Shutdown(shutdownCtx); err != nil {
				b.logger.Error("Error stopping collector APIServer", "error", err)
			}
		}()
	}

	b.logger.Info("Collector starting",
		"interval", b.interval,
		"duration", b.config.Duration,
		"interfaces", b.config.Interfaces,
		"output", b.config.Output)

	runErr := b.recorder.Run(ctx, b.interval, b.config.Duration)

	// keep what was recorded even if sampling failed midway
	if err := b.writeOutput(); err != nil {
		return err
	}

	b.logger.Info("Collector finished", "rows", b.recorder.Rows(), "output", b.config.Output)
	return runErr
}

func (b *Bootstrap) writeOutput() error {
	f, err := os.Create(b.config.Output)
	if err != nil {
		return fmt.Errorf("failed to create results file: %w", err)
	}

	if _, err := b.recorder.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write results file: %w", err)
	}
	return f.Close()
}
