package handlers

import (
	"context"
	"log/slog"
	"net/http"
)

// ReadyProbe reports whether the cluster API server can be reached.
type ReadyProbe func(ctx context.Context) error

func ReadyHandler(probe ReadyProbe) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if probe != nil {
			if err := probe(r.Context()); err != nil {
				slog.Warn("readiness probe failed", "error", err)
				http.Error(w, "not ready", http.StatusServiceUnavailable)
				return
			}
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	}
}

func HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}
