package check

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/mikey/postfix-stats/internal/core"
	"github.com/mikey/postfix-stats/internal/ports"
	"go.uber.org/zap/zaptest"
)

type stubProber struct {
	result *core.ProbeResult
	err    error
	block  bool
}

func (p *stubProber) Probe(ctx context.Context, mode core.Mode) (*core.ProbeResult, error) {
	if p.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if p.err != nil {
		return nil, p.err
	}
	res := *p.result
	res.Mode = mode
	return &res, nil
}

func newCheck(t *testing.T, p ports.Prober, warning, critical string, out *bytes.Buffer) *NagiosCheck {
	t.Helper()
	c, err := NewNagiosCheck(p, zaptest.NewLogger(t), core.ModeMinute, warning, critical, time.Second, out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return c
}

func TestNagiosCheckOK(t *testing.T) {
	var out bytes.Buffer
	p := &stubProber{result: &core.ProbeResult{Counts: core.WindowCounts{Sent: 1, Rejected: 1}}}

	status := newCheck(t, p, "", "", &out).Run(context.Background())
	if status != StatusOK {
		t.Fatalf("status = %v, want OK", status)
	}

	want := "POSTFIX OK - messages per minute: 1 sent, 0 received, 0 greylisted, 1 rejected" +
		" | sent=1;;;0 received=0;;;0 greylisted=0;;;0 rejected=1;;;0\n"
	if out.String() != want {
		t.Errorf("output:\n%q\nwant:\n%q", out.String(), want)
	}
}

func TestNagiosCheckThresholds(t *testing.T) {
	tests := []struct {
		name     string
		counts   core.WindowCounts
		warning  string
		critical string
		want     Status
	}{
		{"below warning", core.WindowCounts{Sent: 5}, "10", "20", StatusOK},
		{"warning", core.WindowCounts{Sent: 15}, "10", "20", StatusWarning},
		{"critical", core.WindowCounts{Sent: 25}, "10", "20", StatusCritical},
		{"worst counter wins", core.WindowCounts{Sent: 15, Rejected: 30}, "10", "20", StatusCritical},
		{"minimum", core.WindowCounts{}, "1:", "", StatusWarning},
		{"inverted", core.WindowCounts{Greylisted: 3}, "", "@1:5", StatusCritical},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			p := &stubProber{result: &core.ProbeResult{Counts: tt.counts}}
			status := newCheck(t, p, tt.warning, tt.critical, &out).Run(context.Background())
			if status != tt.want {
				t.Errorf("status = %v, want %v", status, tt.want)
			}
			if !strings.HasPrefix(out.String(), "POSTFIX "+tt.want.String()+" - ") {
				t.Errorf("unexpected output %q", out.String())
			}
		})
	}
}

func TestNagiosCheckPerfdataThresholds(t *testing.T) {
	var out bytes.Buffer
	p := &stubProber{result: &core.ProbeResult{Counts: core.WindowCounts{Received: 2}}}
	newCheck(t, p, "10", "~:20", &out).Run(context.Background())

	if !strings.Contains(out.String(), " received=2;10;~:20;0 ") {
		t.Errorf("perfdata missing thresholds: %q", out.String())
	}
}

func TestNagiosCheckIncomplete(t *testing.T) {
	var out bytes.Buffer
	p := &stubProber{result: &core.ProbeResult{Incomplete: true}}
	newCheck(t, p, "", "", &out).Run(context.Background())

	lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	if len(lines) != 2 || lines[1] != "stats incomplete" {
		t.Errorf("expected incomplete long output, got %q", out.String())
	}
}

func TestNagiosCheckError(t *testing.T) {
	var out bytes.Buffer
	p := &stubProber{err: errors.New("failed to open log file /nope")}

	status := newCheck(t, p, "", "", &out).Run(context.Background())
	if status != StatusUnknown {
		t.Fatalf("status = %v, want UNKNOWN", status)
	}
	if out.String() != "POSTFIX UNKNOWN - failed to open log file /nope\n" {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestNagiosCheckTimeout(t *testing.T) {
	var out bytes.Buffer
	c, err := NewNagiosCheck(&stubProber{block: true}, zaptest.NewLogger(t), core.ModeDay, "", "", 10*time.Millisecond, &out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if status := c.Run(context.Background()); status != StatusUnknown {
		t.Fatalf("status = %v, want UNKNOWN", status)
	}
	if !strings.Contains(out.String(), "Timeout") {
		t.Errorf("expected timeout message, got %q", out.String())
	}
}

func TestNewNagiosCheckInvalidRange(t *testing.T) {
	if _, err := NewNagiosCheck(&stubProber{}, zaptest.NewLogger(t), core.ModeMinute, "x", "", 0, &bytes.Buffer{}); err == nil {
		t.Error("expected error for invalid warning range")
	}
	if _, err := NewNagiosCheck(&stubProber{}, zaptest.NewLogger(t), core.ModeMinute, "", "5:1", 0, &bytes.Buffer{}); err == nil {
		t.Error("expected error for invalid critical range")
	}
}
