package maillog

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/mikey/postfix-stats/internal/core"
	"go.uber.org/zap"
)

const (
	// ctxCheckLines is how many lines the linear scan reads between context checks
	ctxCheckLines = 4096
	maxLineSize   = 1024 * 1024
	tailChunkSize = 4096
)

// Scanner counts mail events in a postfix log from a window start to the end
// of the log. It falls back to the rotated predecessor of the log, at most one
// level deep, when the window starts before the active log does.
type Scanner struct {
	parser        *TimestampParser
	locator       *Locator
	cache         core.BoundsCache
	cacheEnabled  bool
	cacheTTL      time.Duration
	rotatedSuffix string
	logger        *zap.Logger
}

// NewScanner creates a new log scanner
func NewScanner(
	parser *TimestampParser,
	cache core.BoundsCache,
	cacheEnabled bool,
	cacheTTL time.Duration,
	rotatedSuffix string,
	logger *zap.Logger,
) *Scanner {
	if rotatedSuffix == "" {
		rotatedSuffix = ".1"
	}
	return &Scanner{
		parser:        parser,
		locator:       NewLocator(parser),
		cache:         cache,
		cacheEnabled:  cacheEnabled && cache != nil,
		cacheTTL:      cacheTTL,
		rotatedSuffix: rotatedSuffix,
		logger:        logger,
	}
}

// CountWindow counts the events logged in path at or after start
func (s *Scanner) CountWindow(ctx context.Context, path string, start time.Time) (*core.ScanResult, error) {
	return s.countWindow(ctx, path, start, true)
}

func (s *Scanner) countWindow(ctx context.Context, path string, start time.Time, allowFallback bool) (*core.ScanResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat log file %s: %w", path, err)
	}

	res := &core.ScanResult{Files: []string{path}}

	bounds, err := s.bounds(ctx, path, f, fi)
	if err != nil {
		return nil, err
	}

	// An empty log has no coverage at all, which is the same as starting after the window
	if bounds == nil || start.Before(bounds.First) {
		s.logger.Debug("Window starts before log file, scanning whole file",
			zap.String("file", path),
			zap.Time("window_start", start))

		res.Counts, err = s.scanFrom(ctx, path, f, 0, start)
		if err != nil {
			return nil, err
		}
		res.Incomplete = true

		if allowFallback {
			prev, err := s.countPredecessor(ctx, path, start)
			if err != nil {
				return nil, err
			}
			if prev != nil {
				res.Counts.Add(prev.Counts)
				res.Incomplete = prev.Incomplete
				res.Files = append(res.Files, prev.Files...)
			}
		}
		return res, nil
	}

	if start.After(bounds.Last) {
		s.logger.Debug("Window starts after last log line",
			zap.String("file", path),
			zap.Time("last_line", bounds.Last))
		return res, nil
	}

	offset, err := s.locator.Locate(ctx, f, start)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("Located window start", zap.String("file", path), zap.Int64("offset", offset))

	res.Counts, err = s.scanFrom(ctx, path, f, offset, start)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// countPredecessor scans the rotated predecessor of path, if there is one
func (s *Scanner) countPredecessor(ctx context.Context, path string, start time.Time) (*core.ScanResult, error) {
	rotated := path + s.rotatedSuffix
	ok, err := isFile(rotated)
	if err != nil {
		return nil, err
	}
	if ok {
		return s.countWindow(ctx, rotated, start, false)
	}

	for _, c := range compressors {
		compressed := rotated + c.ext
		ok, err := isFile(compressed)
		if err != nil {
			return nil, err
		}
		if ok {
			return s.countCompressed(ctx, compressed, c.open, start)
		}
	}

	s.logger.Debug("No rotated log file found", zap.String("file", rotated))
	return nil, nil
}

// countCompressed scans a compressed predecessor. Compressed files cannot be
// searched, so every line is read and filtered by its timestamp.
func (s *Scanner) countCompressed(ctx context.Context, path string, open decompressor, start time.Time) (*core.ScanResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}
	defer f.Close()

	zr, err := open(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read compressed log file %s: %w", path, err)
	}
	defer zr.Close()

	st, err := s.scanLines(ctx, path, zr, 0, false, start)
	if err != nil {
		return nil, err
	}

	return &core.ScanResult{
		Counts:     st.counts,
		Incomplete: st.first.IsZero() || start.Before(st.first),
		Files:      []string{path},
	}, nil
}

// bounds returns the first and last line timestamps of f, or nil when f is empty
func (s *Scanner) bounds(ctx context.Context, path string, f *os.File, fi os.FileInfo) (*core.BoundsEntry, error) {
	if fi.Size() == 0 {
		return nil, nil
	}

	key := fileKey(path, fi)
	if s.cacheEnabled {
		if entry, err := s.cache.Get(ctx, key); err == nil {
			s.logger.Debug("Cache hit for log bounds", zap.String("file", path))
			return entry, nil
		}
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to seek %s: %w", path, err)
	}
	first, err := bufio.NewReader(f).ReadBytes('\n')
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to read first line of %s: %w", path, err)
	}
	first = trimEOL(first)
	tFirst, err := s.parser.Parse(first)
	if err != nil {
		return nil, newTimestampError(path, 0, first, err)
	}

	last, lastOffset, err := readLastLine(f, fi.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to read last line of %s: %w", path, err)
	}
	tLast, err := s.parser.Parse(last)
	if err != nil {
		return nil, newTimestampError(path, lastOffset, last, err)
	}
	if !s.parser.ordered(last, tFirst, tLast) {
		return nil, newTimestampError(path, lastOffset, last, core.ErrOutOfOrder)
	}

	entry := &core.BoundsEntry{
		Key:       key,
		First:     tFirst,
		Last:      tLast,
		ExpiresAt: time.Now().Add(s.cacheTTL),
	}
	if s.cacheEnabled {
		if err := s.cache.Set(ctx, entry); err != nil {
			s.logger.Error("Failed to update bounds cache", zap.Error(err))
		}
	}
	return entry, nil
}

func (s *Scanner) scanFrom(ctx context.Context, path string, f io.ReadSeeker, offset int64, start time.Time) (core.WindowCounts, error) {
	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return core.WindowCounts{}, fmt.Errorf("failed to seek %s: %w", path, err)
	}
	st, err := s.scanLines(ctx, path, f, offset, offset != 0, start)
	if err != nil {
		return core.WindowCounts{}, err
	}
	return st.counts, nil
}

type decompressor func(io.Reader) (io.ReadCloser, error)

// compressors lists the compressed predecessor variants, in lookup order
var compressors = []struct {
	ext  string
	open decompressor
}{
	{".gz", func(r io.Reader) (io.ReadCloser, error) { return gzip.NewReader(r) }},
	{".zst", func(r io.Reader) (io.ReadCloser, error) {
		d, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		return d.IOReadCloser(), nil
	}},
}

type scanStats struct {
	counts core.WindowCounts
	first  time.Time
}

// scanLines classifies every line of r stamped at or after start. When realign
// is set the first, possibly partial, line is discarded.
func (s *Scanner) scanLines(ctx context.Context, path string, r io.Reader, base int64, realign bool, start time.Time) (scanStats, error) {
	var st scanStats

	// consumed is the raw length of the last line, terminator included
	var consumed int
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineSize)
	sc.Split(func(data []byte, atEOF bool) (int, []byte, error) {
		advance, token, err := bufio.ScanLines(data, atEOF)
		if token != nil {
			consumed = advance
		}
		return advance, token, err
	})

	pos := base
	if realign && sc.Scan() {
		pos += int64(consumed)
	}

	var prev time.Time
	var n int
	for sc.Scan() {
		line := sc.Bytes()
		lineStart := pos
		pos += int64(consumed)

		n++
		if n%ctxCheckLines == 0 {
			if err := ctx.Err(); err != nil {
				return st, err
			}
		}

		ll, err := s.parser.ParseLine(line)
		if err != nil {
			return st, newTimestampError(path, lineStart, line, err)
		}
		if !s.parser.ordered(line, prev, ll.Timestamp) {
			return st, newTimestampError(path, lineStart, line, core.ErrOutOfOrder)
		}
		if ll.Timestamp.After(prev) {
			prev = ll.Timestamp
		}
		if st.first.IsZero() {
			st.first = ll.Timestamp
		}

		if ll.Timestamp.Before(start) {
			continue
		}
		st.counts.Record(Classify(ll.Raw))
	}
	if err := sc.Err(); err != nil {
		return st, fmt.Errorf("failed to read log file %s: %w", path, err)
	}
	return st, nil
}

// readLastLine returns the last non-empty line of f and its offset
func readLastLine(f io.ReadSeeker, size int64) ([]byte, int64, error) {
	var tail []byte
	pos := size
	for pos > 0 {
		n := int64(tailChunkSize)
		if n > pos {
			n = pos
		}
		pos -= n

		chunk := make([]byte, n, n+int64(len(tail)))
		if _, err := f.Seek(pos, io.SeekStart); err != nil {
			return nil, 0, err
		}
		if _, err := io.ReadFull(f, chunk); err != nil {
			return nil, 0, err
		}
		tail = append(chunk, tail...)

		trimmed := bytes.TrimRight(tail, "\r\n")
		if i := bytes.LastIndexByte(trimmed, '\n'); i >= 0 {
			return trimmed[i+1:], pos + int64(i) + 1, nil
		}
	}
	return bytes.TrimRight(tail, "\r\n"), 0, nil
}

func isFile(path string) (bool, error) {
	fi, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	return fi.Mode().IsRegular(), nil
}
