// Package metrics provides implementations of core.MetricsCollector for
// recording probe outcomes.
package metrics

import "github.com/mikey/postfix-stats/internal/core"

var (
	_ core.MetricsCollector = (*PrometheusCollector)(nil)
	_ core.MetricsCollector = (*NoopCollector)(nil)
)
