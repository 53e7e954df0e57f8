package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/redis/go-redis/v9"

	"github.com/yaron8/netperf-analyzer/analyzer/config"
	"github.com/yaron8/netperf-analyzer/analyzer/dao"
	"github.com/yaron8/netperf-analyzer/analyzer/engine"
	"github.com/yaron8/netperf-analyzer/analyzer/etl"
	"github.com/yaron8/netperf-analyzer/analyzer/measure"
	"github.com/yaron8/netperf-analyzer/analyzer/report"
	"github.com/yaron8/netperf-analyzer/analyzer/service"
	"github.com/yaron8/netperf-analyzer/logi"
)

// Options carries the command line of one analyzer invocation
type Options struct {
	SettingsPath string // optional YAML settings file
	Format       string // overrides the configured format when set
	Store        bool   // save summaries to Redis
	Serve        bool   // serve stored summaries until the context ends

	MeasurePath string
	ResultsPath string
	SampleRate  int // microseconds per sample

	Stdout io.Writer
	Stderr io.Writer
}

type Bootstrap struct {
	config      *config.Config
	opts        Options
	format      report.Format
	logger      *slog.Logger
	redisClient *redis.Client
	summaries   *dao.DAOSummaries
	apiServer   *service.APIServer
}

func NewBootstrap(opts Options) (*Bootstrap, error) {
	cfg := config.NewConfig()
	if opts.SettingsPath != "" {
		loaded, err := config.Load(opts.SettingsPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if opts.Format != "" {
		cfg.Format = opts.Format
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	format, err := report.ParseFormat(cfg.Format)
	if err != nil {
		return nil, err
	}

	if opts.SampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be a positive integer, got %d", opts.SampleRate)
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}

	level, err := cfg.LogLevel()
	if err != nil {
		return nil, err
	}
	logger, err := logi.NewLog(&logi.Config{LogDir: cfg.Log.Dir, LogFileName: "analyzer.log", Level: level})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	b := &Bootstrap{
		config: cfg,
		opts:   opts,
		format: format,
		logger: logger,
	}

	if opts.Store || opts.Serve {
		b.redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr(),
			Password: "", // no password set
			DB:       0,  // use default DB
			Protocol: 2,
		})
		b.summaries = dao.NewDAOSummaries(b.redisClient, cfg.Redis.TTL)
		b.apiServer = service.NewAPIServer(cfg, b.summaries)
	}

	return b, nil
}

// Start analyzes the run and, when serving, blocks until ctx is done
func (b *Bootstrap) Start(ctx context.Context) error {
	defer b.Close()

	if _, err := b.Run(ctx); err != nil {
		return err
	}

	if !b.opts.Serve {
		return nil
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- b.apiServer.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := b.apiServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}
	return <-errCh
}

// Run loads the inputs, runs the engine, prints the report and stores
// the summaries when requested.
func (b *Bootstrap) Run(ctx context.Context) ([]engine.Result, error) {
	keys, err := measure.Load(b.opts.MeasurePath)
	if err != nil {
		var merr *multierror.Error
		if !errors.As(err, &merr) {
			return nil, err
		}
		b.warn(merr.Errors...)
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("no valid interface/metric pairs in %s", b.opts.MeasurePath)
	}

	tolerances, err := b.config.MetricTolerances()
	if err != nil {
		return nil, err
	}

	eng, err := engine.NewEngine(keys, engine.Options{
		SampleRate: b.opts.SampleRate,
		Tolerances: tolerances,
	})
	if err != nil {
		return nil, err
	}

	stats, err := etl.NewETL(eng).LoadFile(b.opts.ResultsPath)
	if err != nil {
		return nil, err
	}
	if stats.RowErrors != nil {
		b.warn(stats.RowErrors.Errors...)
	}

	results := eng.Run()

	if err := report.Write(b.opts.Stdout, b.format, results); err != nil {
		return results, err
	}

	if b.opts.Store {
		runID, err := b.store(ctx, results)
		if err != nil {
			return results, err
		}
		fmt.Fprintf(b.opts.Stderr, "stored run %s\n", runID)
	}

	return results, nil
}

func (b *Bootstrap) store(ctx context.Context, results []engine.Result) (string, error) {
	runID := uuid.NewString()

	stored := 0
	for _, r := range results {
		if r.Summary == nil {
			continue
		}
		if err := b.summaries.Store(ctx, runID, *r.Summary); err != nil {
			return "", err
		}
		stored++
	}

	if err := b.summaries.SetLastRun(ctx, runID); err != nil {
		return "", fmt.Errorf("failed to set last run: %w", err)
	}

	b.logger.Info("Run stored", "run", runID, "summaries", stored)
	return runID, nil
}

func (b *Bootstrap) warn(errs ...error) {
	for _, err := range errs {
		fmt.Fprintf(b.opts.Stderr, "warning: %v\n", err)
	}
}

// Close releases the Redis connection, if any
func (b *Bootstrap) Close() error {
	if b.redisClient == nil {
		return nil
	}
	return b.redisClient.Close()
}
