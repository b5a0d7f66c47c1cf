package main

import (
	"action-relay/observability"
	"net/http"
)

// newMux routes the relay endpoint next to the operational endpoints.
func newMux(endpointPath string, relay http.Handler,
	monitoring *observability.MonitoringManager, sessions observability.SessionCounter) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle(endpointPath, relay)
	mux.HandleFunc("/health", observability.HealthHandler)
	mux.Handle("/stats", observability.StatsHandler(monitoring, sessions))
	return mux
}
