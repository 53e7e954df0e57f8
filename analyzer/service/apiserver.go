package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/yaron8/netperf-analyzer/analyzer/config"
	"github.com/yaron8/netperf-analyzer/logi"
	"github.com/yaron8/netperf-analyzer/telemetrics"
)

// SummaryStore is the read side of the summary DAO
type SummaryStore interface {
	LastRun(ctx context.Context) (string, error)
	Get(ctx context.Context, runID, iface, metric string) (*telemetrics.Summary, error)
	GetAll(ctx context.Context, runID string) ([]telemetrics.Summary, error)
}

type APIServer struct {
	config *config.Config
	server *http.Server
	store  SummaryStore
	logger *slog.Logger
}

func NewAPIServer(config *config.Config, store SummaryStore) *APIServer {
	api := &APIServer{
		config: config,
		store:  store,
		logger: logi.GetLogger(),
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

// Handler returns the routes of the API
func (api *APIServer) Handler() http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			api.logger.Error("Error writing health check response", "error", err)
		}
	})

	// Telemetry endpoints
	mux.HandleFunc("/telemetry/ListSummaries", api.ListSummariesHandler)
	mux.HandleFunc("/telemetry/GetSummary", api.GetSummaryHandler)

	return mux
}

// Start serves the API until Shutdown is called
func (api *APIServer) Start() error {
	api.logger.Info("Analyzer APIServer starting", "port", api.config.Port)

	if err := api.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		api.logger.Error("Server failed to start", "error", err, "port", api.config.Port)
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown stops the server. Start returns nil once it has been called,
// even if it is called first.
func (api *APIServer) Shutdown(ctx context.Context) error {
	return api.server.Shutdown(ctx)
}

// runID returns the run query parameter, defaulting to the last stored run
func (api *APIServer) runID(r *http.Request) (string, error) {
	if runID := r.URL.Query().Get("run"); runID != "" {
		return runID, nil
	}
	return api.store.LastRun(r.Context())
}
