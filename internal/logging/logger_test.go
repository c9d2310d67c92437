package logging

import (
	"testing"

	"github.com/mikey/postfix-stats/internal/config"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"INFO", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"warning", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"", zapcore.InfoLevel},
		{"chatty", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestInitLogger(t *testing.T) {
	v := config.NewEmptyViper()
	v.Set("logging.level", "debug")
	v.Set("logging.format", "console")

	logger, err := InitLogger(config.NewFromViper(v))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !logger.Core().Enabled(zapcore.DebugLevel) {
		t.Error("expected debug level to be enabled")
	}
}

func TestInitConsoleLogger(t *testing.T) {
	quiet, err := InitConsoleLogger(false, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if quiet.Core().Enabled(zapcore.InfoLevel) {
		t.Error("non-verbose console logger should only report warnings")
	}

	verbose, err := InitConsoleLogger(true, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !verbose.Core().Enabled(zapcore.DebugLevel) {
		t.Error("verbose console logger should report debug messages")
	}
}
