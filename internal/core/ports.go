package core

import (
	"context"
	"time"
)

// WindowCounter defines the interface for counting mail events in a log window
type WindowCounter interface {
	// CountWindow counts the events logged in path from start until the end of the log
	CountWindow(ctx context.Context, path string, start time.Time) (*ScanResult, error)
}

// BoundsCache defines the interface for caching log file bounds
type BoundsCache interface {
	// Get retrieves the cached bounds for a file identity key
	Get(ctx context.Context, key string) (*BoundsEntry, error)

	// Set stores a bounds entry
	Set(ctx context.Context, entry *BoundsEntry) error

	// Delete removes a bounds entry
	Delete(ctx context.Context, key string) error

	// Cleanup removes expired entries
	Cleanup(ctx context.Context) error
}

// MetricsCollector records probe outcomes
type MetricsCollector interface {
	ProbeCompleted(mode Mode, counts WindowCounts, incomplete bool, duration time.Duration)
	ProbeFailed(mode Mode, reason string)
}
