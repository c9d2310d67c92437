package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StatsService is the core service computing mail statistics for a trailing window
type StatsService struct {
	counter WindowCounter
	metrics MetricsCollector
	logger  *zap.Logger
	logFile string
	now     func() time.Time
}

// NewStatsService creates a new stats service
func NewStatsService(
	counter WindowCounter,
	metrics MetricsCollector,
	logger *zap.Logger,
	logFile string,
) *StatsService {
	return &StatsService{
		counter: counter,
		metrics: metrics,
		logger:  logger,
		logFile: logFile,
		now:     time.Now,
	}
}

// WithClock replaces the clock used to derive window bounds
func (s *StatsService) WithClock(now func() time.Time) *StatsService {
	s.now = now
	return s
}

// LogFile returns the active log file the service reads
func (s *StatsService) LogFile() string {
	return s.logFile
}

// Window returns the scan window for a mode, ending now
func (s *StatsService) Window(mode Mode) ScanWindow {
	end := s.now().Truncate(time.Second)
	return ScanWindow{Start: end.Add(-mode.Duration()), End: end}
}

// Probe counts the mail events of the trailing window selected by mode
func (s *StatsService) Probe(ctx context.Context, mode Mode) (*ProbeResult, error) {
	if mode.Duration() == 0 {
		return nil, fmt.Errorf("unsupported mode: %q", mode)
	}

	window := s.Window(mode)
	probeID := uuid.New().String()
	logger := s.logger.With(
		zap.String("probe_id", probeID),
		zap.String("mode", string(mode)),
		zap.String("file", s.logFile),
		zap.Time("window_start", window.Start),
	)

	logger.Debug("Starting probe")
	startTime := time.Now()
	res, err := s.counter.CountWindow(ctx, s.logFile, window.Start)
	duration := time.Since(startTime)
	if err != nil {
		reason := failureReason(err)
		s.metrics.ProbeFailed(mode, reason)
		logger.Error("Probe failed", zap.String("reason", reason), zap.Error(err))
		return nil, err
	}

	s.metrics.ProbeCompleted(mode, res.Counts, res.Incomplete, duration)
	if res.Incomplete {
		logger.Warn("Couldn't find all logs, stats are incomplete", zap.Strings("files", res.Files))
	}
	logger.Debug("Probe completed",
		zap.Int64("sent", res.Counts.Sent),
		zap.Int64("received", res.Counts.Received),
		zap.Int64("greylisted", res.Counts.Greylisted),
		zap.Int64("rejected", res.Counts.Rejected),
		zap.Duration("duration", duration))

	return &ProbeResult{
		ID:         probeID,
		Mode:       mode,
		Window:     window,
		Counts:     res.Counts,
		Incomplete: res.Incomplete,
		Files:      res.Files,
		Duration:   duration,
	}, nil
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, ErrOutOfOrder):
		return "out_of_order"
	case errors.Is(err, ErrMalformedTimestamp):
		return "malformed_timestamp"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "io"
	}
}
