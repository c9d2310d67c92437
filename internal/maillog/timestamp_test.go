package maillog

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/mikey/postfix-stats/internal/core"
)

func TestTimestampParserSyslog(t *testing.T) {
	p := newTestParser()

	tests := []struct {
		name string
		line string
		want time.Time
	}{
		{
			name: "two digit day",
			line: "Oct 19 10:02:03 mail postfix/smtpd[1]: connect from x",
			want: at(10, 2, 3),
		},
		{
			name: "padded single digit day",
			line: "Oct  5 23:59:59 mail postfix/qmgr[2]: removed",
			want: time.Date(2026, time.October, 5, 23, 59, 59, 0, time.Local),
		},
		{
			name: "tomorrow stays in the current year",
			line: "Oct 20 08:00:00 mail postfix/smtpd[1]: x",
			want: time.Date(2026, time.October, 20, 8, 0, 0, 0, time.Local),
		},
		{
			name: "far future rolls back a year",
			line: "Dec 31 23:59:59 mail postfix/smtpd[1]: x",
			want: time.Date(2025, time.December, 31, 23, 59, 59, 0, time.Local),
		},
		{
			name: "prefix only",
			line: "Oct 19 10:02:03",
			want: at(10, 2, 3),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.Parse([]byte(tt.line))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("Parse(%q) = %v, want %v", tt.line, got, tt.want)
			}
		})
	}
}

func TestTimestampParserYearRolloverInJanuary(t *testing.T) {
	jan := time.Date(2027, time.January, 1, 0, 5, 0, 0, time.Local)
	p := NewTimestampParser(time.Local, func() time.Time { return jan })

	dec, err := p.Parse([]byte("Dec 31 23:59:58 mail postfix/smtpd[1]: x"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	newYear, err := p.Parse([]byte("Jan  1 00:00:01 mail postfix/smtpd[1]: x"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dec.Year() != 2026 || newYear.Year() != 2027 {
		t.Fatalf("got years %d and %d, want 2026 and 2027", dec.Year(), newYear.Year())
	}
	if !dec.Before(newYear) {
		t.Error("expected December line to sort before January line")
	}
}

func TestTimestampParserRFC3339(t *testing.T) {
	p := newTestParser()

	got, err := p.Parse([]byte("2026-10-19T10:02:03.123456+02:00 mail postfix/smtp[1]: x"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2026, time.October, 19, 8, 2, 3, 123456000, time.UTC)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestTimestampParserMalformed(t *testing.T) {
	p := newTestParser()

	lines := []string{
		"",
		"Oct 19",
		"garbage line without any timestamp",
		"Foo 19 10:02:03 mail postfix/smtpd[1]: x",
		"Oct 19 25:02:03 mail postfix/smtpd[1]: x",
		"2026-13-19T10:02:03Z mail postfix/smtpd[1]: x",
	}
	for _, line := range lines {
		_, err := p.Parse([]byte(line))
		if !errors.Is(err, core.ErrMalformedTimestamp) {
			t.Errorf("Parse(%q) error = %v, want ErrMalformedTimestamp", line, err)
		}
	}
}

func TestTimestampParserParseLine(t *testing.T) {
	raw := []byte(sentLineAt(at(10, 0, 0)))

	ll, err := newTestParser().ParseLine(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ll.Timestamp.Equal(at(10, 0, 0)) {
		t.Errorf("timestamp = %v", ll.Timestamp)
	}
	if !bytes.Equal(ll.Raw, raw) {
		t.Errorf("raw = %q", ll.Raw)
	}

	if _, err := newTestParser().ParseLine([]byte("garbage")); !errors.Is(err, core.ErrMalformedTimestamp) {
		t.Errorf("expected ErrMalformedTimestamp, got %v", err)
	}
}
