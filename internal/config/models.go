package config

import (
	"fmt"
	"time"

	"github.com/mikey/postfix-stats/internal/core"
)

// LogConfig describes the mail log being read
type LogConfig struct {
	File          string
	RotatedSuffix string
	Location      string
}

// CheckConfig represents the configuration of the Nagios check
type CheckConfig struct {
	Mode     core.Mode
	Warning  string
	Critical string
	Timeout  time.Duration
}

// ExporterConfig represents the configuration of the metrics exporter
type ExporterConfig struct {
	ListenAddress string
	MetricsPath   string
	Interval      time.Duration
	Modes         []core.Mode
	ProbeTimeout  time.Duration
}

// CacheConfig represents the configuration of the log bounds cache
type CacheConfig struct {
	Enabled          bool
	Type             string
	TTL              time.Duration
	CleanupFrequency time.Duration
}

// GetLog returns the log file configuration
func (c *Config) GetLog() LogConfig {
	return LogConfig{
		File:          c.GetString("log.file"),
		RotatedSuffix: c.GetString("log.rotated_suffix"),
		Location:      c.GetString("log.location"),
	}
}

// GetCheck returns the check configuration
func (c *Config) GetCheck() (CheckConfig, error) {
	mode, err := core.ParseMode(c.GetString("check.mode"))
	if err != nil {
		return CheckConfig{}, err
	}
	timeout, err := c.GetDuration("check.timeout")
	if err != nil {
		return CheckConfig{}, err
	}
	return CheckConfig{
		Mode:     mode,
		Warning:  c.GetString("check.warning"),
		Critical: c.GetString("check.critical"),
		Timeout:  timeout,
	}, nil
}

// GetExporter returns the exporter configuration
func (c *Config) GetExporter() (ExporterConfig, error) {
	interval, err := c.GetDuration("exporter.interval")
	if err != nil {
		return ExporterConfig{}, err
	}
	if interval <= 0 {
		return ExporterConfig{}, fmt.Errorf("exporter.interval must be positive, got %s", interval)
	}
	probeTimeout, err := c.GetDuration("exporter.probe_timeout")
	if err != nil {
		return ExporterConfig{}, err
	}

	var modes []core.Mode
	for _, name := range c.GetStringSlice("exporter.modes") {
		mode, err := core.ParseMode(name)
		if err != nil {
			return ExporterConfig{}, fmt.Errorf("invalid exporter.modes: %w", err)
		}
		modes = append(modes, mode)
	}

	return ExporterConfig{
		ListenAddress: c.GetString("exporter.listen_address"),
		MetricsPath:   c.GetString("exporter.metrics_path"),
		Interval:      interval,
		Modes:         modes,
		ProbeTimeout:  probeTimeout,
	}, nil
}

// GetCache returns the cache configuration
func (c *Config) GetCache() (CacheConfig, error) {
	ttl, err := c.GetDuration("cache.ttl")
	if err != nil {
		return CacheConfig{}, err
	}
	cleanup, err := c.GetDuration("cache.cleanup_frequency")
	if err != nil {
		return CacheConfig{}, err
	}
	return CacheConfig{
		Enabled:          c.GetBool("cache.enabled"),
		Type:             c.GetString("cache.type"),
		TTL:              ttl,
		CleanupFrequency: cleanup,
	}, nil
}
