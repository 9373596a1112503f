package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/deusflow/newsdigest/internal/app"
	"github.com/deusflow/newsdigest/internal/config"
	"github.com/deusflow/newsdigest/internal/logger"
	"github.com/deusflow/newsdigest/internal/metrics"
)

func main() {
	log := logger.Init("newsdigest")

	if err := run(log); err != nil {
		log.Error("run failed", slog.Any("err", err))
		os.Exit(1)
	}
}

func run(log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Check if we should start HTTP server for monitoring
	if cfg.EnableHTTPMonitoring {
		srv := newMonitoringServer(":"+cfg.MonitoringPort, metrics.Global)
		go startMonitoringServer(srv, log)
		defer shutdownMonitoringServer(srv, log)
	}

	return app.Run(ctx, cfg, log, os.Stdout)
}

func newMonitoringServer(addr string, m *metrics.Metrics) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           newRouter(m),
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func newRouter(m *metrics.Metrics) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", healthHandler(m))
	r.Get("/metrics", metricsHandler(m))
	return r
}

func startMonitoringServer(srv *http.Server, log *slog.Logger) {
	log.Info("starting monitoring server", slog.String("addr", srv.Addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("monitoring server error", slog.Any("err", err))
	}
}

func shutdownMonitoringServer(srv *http.Server, log *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Warn("monitoring server shutdown", slog.Any("err", err))
	}
}

func healthHandler(m *metrics.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats := m.GetStats()

		status := "ok"
		code := http.StatusOK
		if !m.Healthy() {
			status = "error"
			code = http.StatusServiceUnavailable
		}

		response := map[string]interface{}{
			"status":     status,
			"last_run":   stats["last_run_time"],
			"last_error": stats["last_error"],
		}

		writeJSON(w, code, response)
	}
}

func metricsHandler(m *metrics.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, m.GetStats())
	}
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
