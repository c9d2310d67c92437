package metrics

import (
	"time"

	"github.com/mikey/postfix-stats/internal/core"
)

// NoopCollector is a no-op implementation of the MetricsCollector interface.
type NoopCollector struct{}

// ProbeCompleted is a no-op.
func (n *NoopCollector) ProbeCompleted(mode core.Mode, counts core.WindowCounts, incomplete bool, duration time.Duration) {
}

// ProbeFailed is a no-op.
func (n *NoopCollector) ProbeFailed(mode core.Mode, reason string) {}
