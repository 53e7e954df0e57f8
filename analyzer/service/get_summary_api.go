package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/yaron8/netperf-analyzer/analyzer/dao"
)

func (api *APIServer) GetSummaryHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	iface := r.URL.Query().Get("interface")
	if iface == "" {
		http.Error(w, "Missing interface parameter", http.StatusBadRequest)
		return
	}

	metricName := r.URL.Query().Get("metric")
	if metricName == "" {
		http.Error(w, "Missing metric parameter", http.StatusBadRequest)
		return
	}

	runID, err := api.runID(r)
	if err != nil {
		writeLookupError(w, "run", err)
		return
	}

	summary, err := api.store.Get(ctx, runID, iface, metricName)
	if err != nil {
		writeLookupError(w, "summary", err)
		return
	}

	jsonData, err := json.Marshal(summary)
	if err != nil {
		http.Error(w, fmt.Sprintf("Error encoding summary to JSON: %v", err),
			http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(jsonData); err != nil {
		api.logger.Error("Error writing summary response", "error", err)
	}
}

func writeLookupError(w http.ResponseWriter, what string, err error) {
	if errors.Is(err, dao.ErrNotFound) {
		http.Error(w, fmt.Sprintf("No %s found", what), http.StatusNotFound)
		return
	}
	http.Error(w, fmt.Sprintf("Error retrieving %s: %v", what, err),
		http.StatusInternalServerError)
}
