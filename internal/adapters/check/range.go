package check

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Range is a Nagios threshold range. A value outside [Start, End] raises an
// alert, or inside it when Inverted.
type Range struct {
	Start    float64
	End      float64
	Inverted bool
	raw      string
}

// ParseRange parses the Nagios range syntax: "10", "10:", "~:10", "10:20"
// and "@10:20". An empty string yields a nil range that never alerts.
func ParseRange(s string) (*Range, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	r := &Range{Start: 0, End: math.Inf(1), raw: s}
	body := s
	if strings.HasPrefix(body, "@") {
		r.Inverted = true
		body = body[1:]
	}

	startStr, endStr, hasColon := strings.Cut(body, ":")
	if !hasColon {
		startStr, endStr = "", body
	}

	switch startStr {
	case "":
	case "~":
		r.Start = math.Inf(-1)
	default:
		v, err := strconv.ParseFloat(startStr, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid range %q: bad start: %w", s, err)
		}
		r.Start = v
	}

	if endStr != "" {
		v, err := strconv.ParseFloat(endStr, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid range %q: bad end: %w", s, err)
		}
		r.End = v
	} else if !hasColon {
		return nil, fmt.Errorf("invalid range %q", s)
	}

	if r.Start > r.End {
		return nil, fmt.Errorf("invalid range %q: start is greater than end", s)
	}
	return r, nil
}

// Alert reports whether v violates the range
func (r *Range) Alert(v float64) bool {
	if r == nil {
		return false
	}
	inside := v >= r.Start && v <= r.End
	if r.Inverted {
		return inside
	}
	return !inside
}

// String returns the range as it was given
func (r *Range) String() string {
	if r == nil {
		return ""
	}
	return r.raw
}
