package core

import (
	"fmt"
	"strings"
	"time"
)

// Mode selects the length of the trailing window a probe covers
type Mode string

const (
	ModeMinute Mode = "minute"
	ModeHour   Mode = "hour"
	ModeDay    Mode = "day"
	ModeWeek   Mode = "week"
)

// Modes lists every supported mode, shortest window first
var Modes = []Mode{ModeMinute, ModeHour, ModeDay, ModeWeek}

// ParseMode converts a mode name into a Mode
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	switch m {
	case ModeMinute, ModeHour, ModeDay, ModeWeek:
		return m, nil
	default:
		return "", fmt.Errorf("unsupported mode: %q (expected minute, hour, day or week)", s)
	}
}

// Duration returns the window length for the mode
func (m Mode) Duration() time.Duration {
	switch m {
	case ModeMinute:
		return time.Minute
	case ModeHour:
		return time.Hour
	case ModeDay:
		return 24 * time.Hour
	case ModeWeek:
		return 7 * 24 * time.Hour
	default:
		return 0
	}
}

// LogLine is a parsed view of a single mail log line. Raw aliases the read
// buffer and is only valid until the next line is read.
type LogLine struct {
	Timestamp time.Time
	Raw       []byte
}

// ScanWindow is the time range a probe covers. End is always "now".
type ScanWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// WindowCounts holds the message counters for a window
type WindowCounts struct {
	Sent       int64 `json:"sent"`
	Received   int64 `json:"received"`
	Greylisted int64 `json:"greylisted"`
	Rejected   int64 `json:"rejected"`
}

// Add sums other into c element-wise
func (c *WindowCounts) Add(other WindowCounts) {
	c.Sent += other.Sent
	c.Received += other.Received
	c.Greylisted += other.Greylisted
	c.Rejected += other.Rejected
}

// Record increments the counter matching a classified line
func (c *WindowCounts) Record(cl Classification) {
	switch cl.Kind {
	case KindSent:
		c.Sent++
	case KindReceived:
		c.Received++
	case KindRejected:
		if cl.Greylisted {
			c.Greylisted++
		} else {
			c.Rejected++
		}
	}
}

// Kind identifies which class of mail event a log line records
type Kind int

const (
	KindUnclassified Kind = iota
	KindSent
	KindReceived
	KindRejected
)

func (k Kind) String() string {
	switch k {
	case KindSent:
		return "sent"
	case KindReceived:
		return "received"
	case KindRejected:
		return "rejected"
	default:
		return "unclassified"
	}
}

// Classification is the outcome of matching a line against the classification rules.
// Greylisted is only meaningful for KindRejected.
type Classification struct {
	Kind       Kind
	Greylisted bool
}

// ScanResult is what a window scan over the active log (and possibly its
// rotated predecessor) produced
type ScanResult struct {
	Counts WindowCounts
	// Incomplete is set when the window starts before the oldest log data available
	Incomplete bool
	Files      []string
}

// ProbeResult represents the result of one metrics probe
type ProbeResult struct {
	ID         string        `json:"id"`
	Mode       Mode          `json:"mode"`
	Window     ScanWindow    `json:"window"`
	Counts     WindowCounts  `json:"counts"`
	Incomplete bool          `json:"incomplete"`
	Files      []string      `json:"files"`
	Duration   time.Duration `json:"duration_ns"`
}

// BoundsEntry caches the first and last line timestamps of a log file
type BoundsEntry struct {
	Key       string
	First     time.Time
	Last      time.Time
	ExpiresAt time.Time
}
