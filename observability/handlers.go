package observability

import (
	"encoding/json"
	"net/http"
)

// StatsHandler serves GetLatest as JSON.
func StatsHandler(monitoring *MonitoringManager, sessions SessionCounter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(monitoring.GetLatest(sessions)); err != nil {
			monitoring.log.Warn("Failed to write stats", "error", err)
		}
	}
}

// HealthHandler answers 200 as long as the process serves HTTP.
func HealthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
