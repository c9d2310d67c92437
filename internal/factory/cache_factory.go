package factory

import (
	"fmt"
	"time"

	"github.com/mikey/postfix-stats/internal/adapters/cache"
	"github.com/mikey/postfix-stats/internal/config"
	"github.com/mikey/postfix-stats/internal/core"
	"go.uber.org/zap"
)

// CacheFactory creates bounds caches based on configuration
type CacheFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewCacheFactory creates a new cache factory
func NewCacheFactory(cfg *config.Config, logger *zap.Logger) *CacheFactory {
	return &CacheFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateBoundsCache creates a bounds cache based on the configuration. The
// "none" type yields a nil cache, which disables caching.
func (f *CacheFactory) CreateBoundsCache() (core.BoundsCache, error) {
	cacheCfg, err := f.cfg.GetCache()
	if err != nil {
		return nil, fmt.Errorf("invalid cache configuration: %w", err)
	}

	switch cacheCfg.Type {
	case "memory":
		return cache.NewMemoryCache(f.logger, cacheCfg.CleanupFrequency), nil
	case "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported cache type: %s", cacheCfg.Type)
	}
}

// GetCacheTTL returns the configured cache TTL
func (f *CacheFactory) GetCacheTTL() (time.Duration, error) {
	return f.cfg.GetDuration("cache.ttl")
}

// IsCacheEnabled returns whether caching is enabled
func (f *CacheFactory) IsCacheEnabled() bool {
	return f.cfg.GetBool("cache.enabled") && f.cfg.GetString("cache.type") != "none"
}
