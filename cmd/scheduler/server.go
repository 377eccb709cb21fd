package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/flightschool/weatherops/internal/health"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// MetricsServer serves /metrics and /healthz for a process that has no
// echo router of its own.
type MetricsServer struct {
	server        *http.Server
	logger        *zap.Logger
	healthChecker *health.Checker
}

func NewMetricsServer(port string, healthChecker *health.Checker, logger *zap.Logger) *MetricsServer {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	if healthChecker != nil {
		mux.HandleFunc("/healthz", healthChecker.Handler())
	}
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		fmt.Fprintf(w, "weatherops scheduler\nendpoints:\n  /healthz\n  /metrics\n")
	})

	return &MetricsServer{
		server: &http.Server{
			Addr:         ":" + port,
			Handler:      mux,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger:        logger,
		healthChecker: healthChecker,
	}
}

func (ms *MetricsServer) Start() error {
	ms.logger.Info("starting scheduler metrics server", zap.String("address", ms.server.Addr))
	if err := ms.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("metrics server error: %w", err)
	}
	return nil
}

func (ms *MetricsServer) Shutdown(ctx context.Context) error {
	if err := ms.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("metrics server shutdown error: %w", err)
	}
	return nil
}
