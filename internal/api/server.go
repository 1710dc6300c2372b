package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// ReadinessChecker reports whether the upstream is believed reachable.
type ReadinessChecker interface {
	Ready() bool
}

// NewServer creates an HTTP server with all routes configured. readiness and
// metrics are optional.
func NewServer(port string, handler *Handler, readiness ReadinessChecker, metrics http.Handler) *http.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		if readiness != nil && !readiness.Ready() {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "upstream unreachable"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if metrics != nil {
		mux.Handle("GET /metrics", metrics)
	}

	mux.HandleFunc("GET /accounts", handler.ListAccounts)
	mux.HandleFunc("GET /valuations/latest", handler.ListLatestValuations)
	mux.HandleFunc("GET /valuations/history", handler.ListHistory)
	mux.HandleFunc("GET /assets", handler.ListAssets)
	mux.HandleFunc("GET /holdings", handler.ListHoldings)
	mux.HandleFunc("GET /holdings/item", handler.GetHoldingItem)
	mux.HandleFunc("GET /portfolio", handler.GetPortfolio)
	mux.HandleFunc("GET /portfolio/export.xlsx", handler.ExportPortfolio)
	mux.HandleFunc("POST /sync", handler.Sync)

	return &http.Server{
		Addr:         ":" + port,
		Handler:      withRequestLog(mux),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// withRequestLog tags every request with an X-Request-ID and logs its outcome.
func withRequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)

		slog.Info("http request",
			"requestId", id,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}
