package exporter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mikey/postfix-stats/internal/core"
	"github.com/mikey/postfix-stats/internal/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// StatusResponse is the body of the health endpoint
type StatusResponse struct {
	Status string `json:"status"`
	Uptime string `json:"uptime"`
}

// ErrorResponse is the body of a failed request
type ErrorResponse struct {
	Error string `json:"error"`
}

// NewRouter builds the exporter's HTTP routes
func NewRouter(
	prober ports.Prober,
	gatherer prometheus.Gatherer,
	metricsPath string,
	probeTimeout time.Duration,
	logger *zap.Logger,
) http.Handler {
	startTime := time.Now()

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, logger, http.StatusOK, StatusResponse{
			Status: "ok",
			Uptime: time.Since(startTime).String(),
		})
	})

	r.Method(http.MethodGet, metricsPath, promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Get("/probe/{mode}", func(w http.ResponseWriter, r *http.Request) {
		mode, err := core.ParseMode(chi.URLParam(r, "mode"))
		if err != nil {
			writeJSON(w, logger, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			return
		}

		ctx := r.Context()
		if probeTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, probeTimeout)
			defer cancel()
		}

		result, err := prober.Probe(ctx, mode)
		if err != nil {
			logger.Warn("On-demand probe failed",
				zap.String("mode", string(mode)),
				zap.String("remote_addr", r.RemoteAddr),
				zap.Error(err))
			status := http.StatusInternalServerError
			if errors.Is(err, context.DeadlineExceeded) {
				status = http.StatusGatewayTimeout
			}
			writeJSON(w, logger, status, ErrorResponse{Error: err.Error()})
			return
		}

		writeJSON(w, logger, http.StatusOK, result)
	})

	return r
}

func writeJSON(w http.ResponseWriter, logger *zap.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Debug("Failed to write response", zap.Int("status", status), zap.Error(err))
	}
}
