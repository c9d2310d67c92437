package factory

import (
	"bytes"
	"testing"

	"github.com/mikey/postfix-stats/internal/adapters/cache"
	"github.com/mikey/postfix-stats/internal/config"
	"github.com/mikey/postfix-stats/internal/core"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap/zaptest"
)

func newConfig(settings map[string]any) *config.Config {
	v := config.NewEmptyViper()
	for k, val := range settings {
		v.Set(k, val)
	}
	return config.NewFromViper(v)
}

func TestCreateBoundsCache(t *testing.T) {
	tests := []struct {
		cacheType string
		wantNil   bool
		wantErr   bool
	}{
		{"memory", false, false},
		{"none", true, false},
		{"sqlite", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.cacheType, func(t *testing.T) {
			f := NewCacheFactory(newConfig(map[string]any{"cache.type": tt.cacheType}), zaptest.NewLogger(t))
			c, err := f.CreateBoundsCache()
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if (c == nil) != tt.wantNil {
				t.Errorf("cache = %v, wantNil %v", c, tt.wantNil)
			}
			if mc, ok := c.(*cache.MemoryCache); ok {
				mc.Stop()
			}
		})
	}
}

func TestIsCacheEnabled(t *testing.T) {
	logger := zaptest.NewLogger(t)
	if !NewCacheFactory(newConfig(nil), logger).IsCacheEnabled() {
		t.Error("cache should be enabled by default")
	}
	if NewCacheFactory(newConfig(map[string]any{"cache.enabled": false}), logger).IsCacheEnabled() {
		t.Error("cache.enabled=false should disable the cache")
	}
	if NewCacheFactory(newConfig(map[string]any{"cache.type": "none"}), logger).IsCacheEnabled() {
		t.Error("cache.type=none should disable the cache")
	}
}

func TestCreateWindowCounter(t *testing.T) {
	f := NewCounterFactory(newConfig(map[string]any{"log.location": "UTC"}), zaptest.NewLogger(t))
	counter, err := f.CreateWindowCounter(nil, false, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var _ core.WindowCounter = counter

	f = NewCounterFactory(newConfig(map[string]any{"log.location": "Mars/Olympus_Mons"}), zaptest.NewLogger(t))
	if _, err := f.CreateWindowCounter(nil, false, 0); err == nil {
		t.Error("expected error for unknown location")
	}
}

func TestCreateFrontends(t *testing.T) {
	logger := zaptest.NewLogger(t)
	service := core.NewStatsService(nil, nil, logger, "/var/log/mail.log")

	f := NewFrontendFactory(newConfig(nil), logger, service)
	if _, err := f.CreateExporter(prometheus.NewRegistry()); err != nil {
		t.Errorf("unexpected exporter error: %v", err)
	}
	if _, err := f.CreateCheck(&bytes.Buffer{}); err != nil {
		t.Errorf("unexpected check error: %v", err)
	}

	bad := NewFrontendFactory(newConfig(map[string]any{"exporter.interval": "0s", "check.warning": "x"}), logger, service)
	if _, err := bad.CreateExporter(prometheus.NewRegistry()); err == nil {
		t.Error("expected error for zero interval")
	}
	if _, err := bad.CreateCheck(&bytes.Buffer{}); err == nil {
		t.Error("expected error for invalid warning range")
	}
}
