package metrics

import (
	"time"

	"github.com/mikey/postfix-stats/internal/core"
	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusCollector implements the MetricsCollector interface using Prometheus metrics.
type PrometheusCollector struct {
	// Window metrics, as of the last successful probe per mode
	windowMessages   *prometheus.GaugeVec
	windowIncomplete *prometheus.GaugeVec

	// Probe metrics
	probeDuration *prometheus.HistogramVec
	probeErrors   *prometheus.CounterVec
	lastProbeTime *prometheus.GaugeVec
}

// NewPrometheusCollector creates a new PrometheusCollector with all metrics registered.
func NewPrometheusCollector(reg prometheus.Registerer) *PrometheusCollector {
	c := &PrometheusCollector{
		windowMessages: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "postfix_stats_window_messages",
			Help: "Messages logged during the trailing window, by mode and kind.",
		}, []string{"mode", "kind"}),
		windowIncomplete: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "postfix_stats_window_incomplete",
			Help: "1 when the window starts before the oldest available log data.",
		}, []string{"mode"}),

		probeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "postfix_stats_probe_duration_seconds",
			Help:    "Time spent scanning the mail log.",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60},
		}, []string{"mode"}),
		probeErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "postfix_stats_probe_errors_total",
			Help: "Total number of failed probes.",
		}, []string{"mode", "reason"}),
		lastProbeTime: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "postfix_stats_last_probe_timestamp_seconds",
			Help: "Unix time of the last successful probe.",
		}, []string{"mode"}),
	}

	reg.MustRegister(
		c.windowMessages,
		c.windowIncomplete,
		c.probeDuration,
		c.probeErrors,
		c.lastProbeTime,
	)

	return c
}

// ProbeCompleted records the counters of a successful probe.
func (c *PrometheusCollector) ProbeCompleted(mode core.Mode, counts core.WindowCounts, incomplete bool, duration time.Duration) {
	m := string(mode)
	c.windowMessages.WithLabelValues(m, "sent").Set(float64(counts.Sent))
	c.windowMessages.WithLabelValues(m, "received").Set(float64(counts.Received))
	c.windowMessages.WithLabelValues(m, "greylisted").Set(float64(counts.Greylisted))
	c.windowMessages.WithLabelValues(m, "rejected").Set(float64(counts.Rejected))

	if incomplete {
		c.windowIncomplete.WithLabelValues(m).Set(1)
	} else {
		c.windowIncomplete.WithLabelValues(m).Set(0)
	}

	c.probeDuration.WithLabelValues(m).Observe(duration.Seconds())
	c.lastProbeTime.WithLabelValues(m).SetToCurrentTime()
}

// ProbeFailed records a failed probe.
func (c *PrometheusCollector) ProbeFailed(mode core.Mode, reason string) {
	c.probeErrors.WithLabelValues(string(mode), reason).Inc()
}
