package ports

import (
	"context"

	"github.com/mikey/postfix-stats/internal/core"
)

// Prober defines the interface for computing the counters of a trailing window
type Prober interface {
	// Probe counts the mail events of the window selected by mode
	Probe(ctx context.Context, mode core.Mode) (*core.ProbeResult, error)
}
