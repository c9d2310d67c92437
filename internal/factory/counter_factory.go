package factory

import (
	"fmt"
	"time"

	"github.com/mikey/postfix-stats/internal/config"
	"github.com/mikey/postfix-stats/internal/core"
	"github.com/mikey/postfix-stats/internal/maillog"
	"go.uber.org/zap"
)

// CounterFactory creates window counters based on configuration
type CounterFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewCounterFactory creates a new counter factory
func NewCounterFactory(cfg *config.Config, logger *zap.Logger) *CounterFactory {
	return &CounterFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateWindowCounter creates a log scanner reading the configured mail log
func (f *CounterFactory) CreateWindowCounter(cache core.BoundsCache, cacheEnabled bool, cacheTTL time.Duration) (core.WindowCounter, error) {
	logCfg := f.cfg.GetLog()

	loc, err := time.LoadLocation(logCfg.Location)
	if err != nil {
		return nil, fmt.Errorf("invalid log.location %q: %w", logCfg.Location, err)
	}

	f.logger.Debug("Creating log scanner",
		zap.String("file", logCfg.File),
		zap.String("rotated_suffix", logCfg.RotatedSuffix),
		zap.String("location", loc.String()),
		zap.Bool("cache_enabled", cacheEnabled))

	return maillog.NewScanner(
		maillog.NewTimestampParser(loc, nil),
		cache,
		cacheEnabled,
		cacheTTL,
		logCfg.RotatedSuffix,
		f.logger,
	), nil
}
