package service

import (
	"encoding/json"
	"net/http"

	"github.com/yaron8/netperf-analyzer/telemetrics"
)

type listSummariesResponse struct {
	Run       string                `json:"run"`
	Summaries []telemetrics.Summary `json:"summaries"`
}

func (api *APIServer) ListSummariesHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	api.logger.Info("ListSummariesHandler called")

	runID, err := api.runID(r)
	if err != nil {
		api.logger.Error("Error resolving run", "error", err)
		writeLookupError(w, "run", err)
		return
	}

	summaries, err := api.store.GetAll(ctx, runID)
	if err != nil {
		api.logger.Error("Error retrieving summaries", "run", runID, "error", err)
		writeLookupError(w, "summaries", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	// Can't send an error response after WriteHeader, just log it
	if err := json.NewEncoder(w).Encode(listSummariesResponse{Run: runID, Summaries: summaries}); err != nil {
		api.logger.Error("Error encoding summaries to JSON", "error", err)
	}
}
