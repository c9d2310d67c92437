package check

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mikey/postfix-stats/internal/core"
	"github.com/mikey/postfix-stats/internal/ports"
	"go.uber.org/zap"
)

// Status is a Nagios plugin state, which doubles as the process exit code
type Status int

const (
	StatusOK Status = iota
	StatusWarning
	StatusCritical
	StatusUnknown
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusWarning:
		return "WARNING"
	case StatusCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// NagiosCheck runs a window probe and reports it in the Nagios plugin format
type NagiosCheck struct {
	prober   ports.Prober
	logger   *zap.Logger
	mode     core.Mode
	warning  *Range
	critical *Range
	timeout  time.Duration
	out      io.Writer
}

// NewNagiosCheck creates a new Nagios check. The warning and critical
// ranges use the Nagios range syntax and may be empty.
func NewNagiosCheck(
	prober ports.Prober,
	logger *zap.Logger,
	mode core.Mode,
	warning string,
	critical string,
	timeout time.Duration,
	out io.Writer,
) (*NagiosCheck, error) {
	w, err := ParseRange(warning)
	if err != nil {
		return nil, fmt.Errorf("invalid warning threshold: %w", err)
	}
	c, err := ParseRange(critical)
	if err != nil {
		return nil, fmt.Errorf("invalid critical threshold: %w", err)
	}

	return &NagiosCheck{
		prober:   prober,
		logger:   logger,
		mode:     mode,
		warning:  w,
		critical: c,
		timeout:  timeout,
		out:      out,
	}, nil
}

// Run executes the check, writes the plugin output and returns the state
func (c *NagiosCheck) Run(ctx context.Context) Status {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	result, err := c.prober.Probe(ctx, c.mode)
	if err != nil {
		c.logger.Debug("Probe failed", zap.Error(err))
		if errors.Is(err, context.DeadlineExceeded) {
			fmt.Fprintf(c.out, "POSTFIX UNKNOWN - Timeout: check execution aborted after %s\n", c.timeout)
		} else {
			fmt.Fprintf(c.out, "POSTFIX UNKNOWN - %v\n", err)
		}
		return StatusUnknown
	}

	status := c.Evaluate(result.Counts)
	fmt.Fprint(c.out, c.Format(status, result))
	return status
}

// Evaluate returns the worst state of the four counters against the thresholds
func (c *NagiosCheck) Evaluate(counts core.WindowCounts) Status {
	status := StatusOK
	for _, m := range metricsOf(counts) {
		v := float64(m.value)
		switch {
		case c.critical.Alert(v):
			return StatusCritical
		case c.warning.Alert(v):
			status = StatusWarning
		}
	}
	return status
}

// Format renders the status line, the performance data and, when the
// counts are incomplete, a long output line
func (c *NagiosCheck) Format(status Status, result *core.ProbeResult) string {
	counts := result.Counts

	var b strings.Builder
	fmt.Fprintf(&b, "POSTFIX %s - messages per %s: %d sent, %d received, %d greylisted, %d rejected",
		status, result.Mode, counts.Sent, counts.Received, counts.Greylisted, counts.Rejected)

	b.WriteString(" |")
	for _, m := range metricsOf(counts) {
		fmt.Fprintf(&b, " %s=%d;%s;%s;0", m.name, m.value, c.warning, c.critical)
	}
	b.WriteString("\n")

	if result.Incomplete {
		b.WriteString("stats incomplete\n")
	}
	return b.String()
}

type metric struct {
	name  string
	value int64
}

func metricsOf(counts core.WindowCounts) []metric {
	return []metric{
		{"sent", counts.Sent},
		{"received", counts.Received},
		{"greylisted", counts.Greylisted},
		{"rejected", counts.Rejected},
	}
}
