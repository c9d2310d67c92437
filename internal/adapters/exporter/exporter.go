package exporter

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/mikey/postfix-stats/internal/core"
	"github.com/mikey/postfix-stats/internal/ports"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

// Exporter periodically probes the configured modes, so that their gauges
// stay current, and serves the metrics over HTTP
type Exporter struct {
	prober       ports.Prober
	logger       *zap.Logger
	listenAddr   string
	handler      http.Handler
	modes        []core.Mode
	interval     time.Duration
	probeTimeout time.Duration

	server *http.Server
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewExporter creates a new exporter frontend
func NewExporter(
	prober ports.Prober,
	logger *zap.Logger,
	listenAddr string,
	handler http.Handler,
	modes []core.Mode,
	interval time.Duration,
	probeTimeout time.Duration,
) *Exporter {
	return &Exporter{
		prober:       prober,
		logger:       logger,
		listenAddr:   listenAddr,
		handler:      handler,
		modes:        modes,
		interval:     interval,
		probeTimeout: probeTimeout,
	}
}

// Start starts the HTTP server and the polling loop
func (e *Exporter) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	e.server = &http.Server{
		Addr:              e.listenAddr,
		Handler:           e.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	e.logger.Info("Exporter starting",
		zap.String("address", e.listenAddr),
		zap.Duration("interval", e.interval))

	go func() {
		if err := e.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			e.logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	e.wg.Add(1)
	go e.poll(ctx)

	return nil
}

// Stop stops polling and shuts the HTTP server down
func (e *Exporter) Stop() error {
	if e.server == nil {
		return nil
	}
	e.cancel()
	e.wg.Wait()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.server.Shutdown(ctx)
}

func (e *Exporter) poll(ctx context.Context) {
	defer e.wg.Done()

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	e.probeAll(ctx)
	for {
		select {
		case <-ticker.C:
			e.probeAll(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// probeAll runs one probe per mode. Failures are recorded by the stats
// service, so they are only logged here.
func (e *Exporter) probeAll(ctx context.Context) {
	for _, mode := range e.modes {
		if ctx.Err() != nil {
			return
		}

		probeCtx, cancel := ctx, context.CancelFunc(func() {})
		if e.probeTimeout > 0 {
			probeCtx, cancel = context.WithTimeout(ctx, e.probeTimeout)
		}
		if _, err := e.prober.Probe(probeCtx, mode); err != nil {
			e.logger.Debug("Scheduled probe failed", zap.String("mode", string(mode)), zap.Error(err))
		}
		cancel()
	}
}
