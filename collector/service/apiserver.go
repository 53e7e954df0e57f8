package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/yaron8/netperf-analyzer/collector/config"
	"github.com/yaron8/netperf-analyzer/collector/metrics"
	"github.com/yaron8/netperf-analyzer/logi"
)

type APIServer struct {
	csvMetrics *metrics.CSVRecorder
	config     *config.Config
	server     *http.Server
	logger     *slog.Logger
}

func NewAPIServer(config *config.Config, csvMetrics *metrics.CSVRecorder) *APIServer {
	api := &APIServer{
		config:     config,
		csvMetrics: csvMetrics,
		logger:     logi.GetLogger(),
	}

	api.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", config.Port),
		Handler:      api.Handler(),
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return api
}

// Handler returns the routes wrapped with the logging middleware
func (api *APIServer) Handler() http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			api.logger.Error("Error writing health check response", "error", err)
		}
	})

	mux.HandleFunc("/counters", api.countersHandler)

	return api.middleware(mux)
}

// Start serves the live counters until Shutdown is called
func (api *APIServer) Start() error {
	api.logger.Info("Collector APIServer starting", "port", api.config.Port)

	if err := api.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

func (api *APIServer) Shutdown(ctx context.Context) error {
	return api.server.Shutdown(ctx)
}
