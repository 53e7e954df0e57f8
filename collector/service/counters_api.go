package service

import (
	"fmt"
	"net/http"
)

// countersHandler returns the results CSV recorded so far
func (api *APIServer) countersHandler(w http.ResponseWriter, r *http.Request) {
	csvData, err := api.csvMetrics.GetCSVMetrics()
	if err != nil {
		http.Error(w, fmt.Sprintf("Error reading recorded counters: %v", err),
			http.StatusInternalServerError)
		return
	}

	if csvData == "" {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, csvData)
}
