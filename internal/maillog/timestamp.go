package maillog

import (
	"bytes"
	"fmt"
	"time"

	"github.com/mikey/postfix-stats/internal/core"
)

const (
	// syslogLayout is the classic BSD syslog stamp, e.g. "Jul 22 19:06:42"
	syslogLayout = "Jan _2 15:04:05"
	syslogWidth  = len(syslogLayout)
)

// TimestampParser extracts the timestamp prefix of a mail log line.
//
// Classic syslog stamps carry no year: the year is taken from the clock and
// moved back by one when the result would lie more than a day in the future,
// which happens when December lines are read in January. Lines starting with a
// digit are read as RFC 3339 stamps, the format rsyslog writes by default on
// newer distributions.
type TimestampParser struct {
	loc *time.Location
	now func() time.Time
}

// NewTimestampParser creates a parser interpreting zone-less stamps in loc
func NewTimestampParser(loc *time.Location, now func() time.Time) *TimestampParser {
	if loc == nil {
		loc = time.Local
	}
	if now == nil {
		now = time.Now
	}
	return &TimestampParser{loc: loc, now: now}
}

// Parse returns the timestamp at the start of line
func (p *TimestampParser) Parse(line []byte) (time.Time, error) {
	if len(line) > 0 && line[0] >= '0' && line[0] <= '9' {
		return p.parseRFC3339(line)
	}
	return p.parseSyslog(line)
}

// ParseLine returns the parsed view of line
func (p *TimestampParser) ParseLine(line []byte) (core.LogLine, error) {
	t, err := p.Parse(line)
	if err != nil {
		return core.LogLine{}, err
	}
	return core.LogLine{Timestamp: t, Raw: line}, nil
}

// foldShift returns by how much the wall clock went back when line carries a
// zone-less stamp whose wall clock time occurs twice in the parser's location,
// as it does during the hour repeated at a daylight saving fall-back. It
// returns 0 for every other line.
func (p *TimestampParser) foldShift(line []byte, t time.Time) time.Duration {
	if len(line) > 0 && line[0] >= '0' && line[0] <= '9' {
		return 0
	}
	t = t.In(p.loc)
	_, offset := t.Zone()
	start, end := t.ZoneBounds()

	// t falls right after a fall-back
	if !start.IsZero() {
		_, before := start.Add(-time.Second).Zone()
		if shift := time.Duration(before-offset) * time.Second; shift > 0 && t.Sub(start) < shift {
			return shift
		}
	}
	// t falls right before a fall-back
	if !end.IsZero() {
		_, after := end.Zone()
		if shift := time.Duration(offset-after) * time.Second; shift > 0 && end.Sub(t) <= shift {
			return shift
		}
	}
	return 0
}

// ordered reports whether a line stamped t may follow a line stamped prev.
// A step back is only accepted within the hour repeated at a fall-back.
func (p *TimestampParser) ordered(line []byte, prev, t time.Time) bool {
	if !t.Before(prev) {
		return true
	}
	return prev.Sub(t) <= p.foldShift(line, t)
}

func (p *TimestampParser) parseSyslog(line []byte) (time.Time, error) {
	if len(line) < syslogWidth {
		return time.Time{}, fmt.Errorf("%w: line shorter than %d bytes", core.ErrMalformedTimestamp, syslogWidth)
	}
	t, err := time.ParseInLocation(syslogLayout, string(line[:syslogWidth]), p.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", core.ErrMalformedTimestamp, err)
	}

	now := p.now().In(p.loc)
	t = time.Date(now.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, p.loc)
	if t.After(now.Add(24 * time.Hour)) {
		t = t.AddDate(-1, 0, 0)
	}
	return t, nil
}

func (p *TimestampParser) parseRFC3339(line []byte) (time.Time, error) {
	field := line
	if i := bytes.IndexByte(line, ' '); i >= 0 {
		field = line[:i]
	}
	t, err := time.Parse(time.RFC3339Nano, string(field))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", core.ErrMalformedTimestamp, err)
	}
	return t, nil
}
