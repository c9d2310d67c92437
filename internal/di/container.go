package di

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/postfix-stats/internal/config"
	"github.com/mikey/postfix-stats/internal/core"
	"github.com/mikey/postfix-stats/internal/factory"
	"github.com/mikey/postfix-stats/internal/logging"
	"github.com/mikey/postfix-stats/internal/metrics"
	"github.com/mikey/postfix-stats/internal/ports"
)

// BuildContainer creates and configures a dependency injection container for
// the exporter. An empty configFile searches the default config locations.
func BuildContainer(configFile string) (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(func() (*config.Config, error) {
		if configFile != "" {
			return config.NewFromFile(configFile)
		}
		return config.New()
	}); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	// Register metrics registry and collector
	if err := container.Provide(func() *prometheus.Registry {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		return reg
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(reg *prometheus.Registry) core.MetricsCollector {
		return metrics.NewPrometheusCollector(reg)
	}); err != nil {
		return nil, err
	}

	// Register factories
	if err := container.Provide(factory.NewCacheFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewCounterFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewFrontendFactory); err != nil {
		return nil, err
	}

	// Register bounds cache
	if err := container.Provide(func(f *factory.CacheFactory) (core.BoundsCache, error) {
		return f.CreateBoundsCache()
	}); err != nil {
		return nil, err
	}

	// Register window counter
	if err := container.Provide(func(f *factory.CounterFactory, cf *factory.CacheFactory, cache core.BoundsCache) (core.WindowCounter, error) {
		ttl, err := cf.GetCacheTTL()
		if err != nil {
			return nil, err
		}
		return f.CreateWindowCounter(cache, cf.IsCacheEnabled(), ttl)
	}); err != nil {
		return nil, err
	}

	// Register stats service
	if err := container.Provide(newStatsService); err != nil {
		return nil, err
	}

	// Register exporter frontend
	if err := container.Provide(func(f *factory.FrontendFactory, reg *prometheus.Registry) (ports.Frontend, error) {
		return f.CreateExporter(reg)
	}); err != nil {
		return nil, err
	}

	return container, nil
}

func newStatsService(
	counter core.WindowCounter,
	collector core.MetricsCollector,
	logger *zap.Logger,
	cfg *config.Config,
) *core.StatsService {
	logFile := cfg.GetLog().File
	logger.Info("Reading mail log", zap.String("file", logFile))
	return core.NewStatsService(counter, collector, logger, logFile)
}
