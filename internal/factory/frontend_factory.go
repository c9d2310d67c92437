package factory

import (
	"fmt"
	"io"

	"github.com/mikey/postfix-stats/internal/adapters/check"
	"github.com/mikey/postfix-stats/internal/adapters/exporter"
	"github.com/mikey/postfix-stats/internal/config"
	"github.com/mikey/postfix-stats/internal/core"
	"github.com/mikey/postfix-stats/internal/ports"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// FrontendFactory creates the frontends exposing the stats service
type FrontendFactory struct {
	cfg          *config.Config
	logger       *zap.Logger
	statsService *core.StatsService
}

// NewFrontendFactory creates a new frontend factory
func NewFrontendFactory(cfg *config.Config, logger *zap.Logger, statsService *core.StatsService) *FrontendFactory {
	return &FrontendFactory{
		cfg:          cfg,
		logger:       logger,
		statsService: statsService,
	}
}

// CreateExporter creates the metrics exporter serving the metrics of gatherer
func (f *FrontendFactory) CreateExporter(gatherer prometheus.Gatherer) (ports.Frontend, error) {
	exporterCfg, err := f.cfg.GetExporter()
	if err != nil {
		return nil, fmt.Errorf("invalid exporter configuration: %w", err)
	}

	router := exporter.NewRouter(
		f.statsService,
		gatherer,
		exporterCfg.MetricsPath,
		exporterCfg.ProbeTimeout,
		f.logger,
	)

	return exporter.NewExporter(
		f.statsService,
		f.logger,
		exporterCfg.ListenAddress,
		router,
		exporterCfg.Modes,
		exporterCfg.Interval,
		exporterCfg.ProbeTimeout,
	), nil
}

// CreateCheck creates the Nagios check writing its report to out
func (f *FrontendFactory) CreateCheck(out io.Writer) (*check.NagiosCheck, error) {
	checkCfg, err := f.cfg.GetCheck()
	if err != nil {
		return nil, fmt.Errorf("invalid check configuration: %w", err)
	}

	return check.NewNagiosCheck(
		f.statsService,
		f.logger,
		checkCfg.Mode,
		checkCfg.Warning,
		checkCfg.Critical,
		checkCfg.Timeout,
		out,
	)
}
