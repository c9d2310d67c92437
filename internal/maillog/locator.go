package maillog

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"time"
)

// Locator finds the position of a point in time inside a chronologically
// ordered log by binary searching over byte offsets.
//
// The returned offset is approximate. A scan that starts there, discarding the
// line fragment at the offset unless it is 0, reaches the first line at or after
// the target within one line. When the target matches a timestamp exactly the
// search stops at the first hit, so earlier lines sharing that second may be
// skipped.
type Locator struct {
	parser *TimestampParser
}

// NewLocator creates a locator parsing timestamps with parser
func NewLocator(parser *TimestampParser) *Locator {
	return &Locator{parser: parser}
}

// Locate returns the offset of target in f. f must be non-empty and sorted by time.
func (l *Locator) Locate(ctx context.Context, f io.ReadSeeker, target time.Time) (int64, error) {
	size, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, fmt.Errorf("failed to seek %s: %w", nameOf(f), err)
	}

	br := bufio.NewReader(f)
	var mid int64
	left, right := int64(0), size-1
	for left < right {
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		mid = (left + right) / 2
		line, start, err := lineAfter(f, br, mid)
		if err != nil {
			return 0, fmt.Errorf("failed to read %s: %w", nameOf(f), err)
		}
		if line == nil {
			// mid fell inside the last line; nothing after it can match earlier
			right = mid - 1
			continue
		}

		t, err := l.parser.Parse(line)
		if err != nil {
			return 0, newTimestampError(nameOf(f), start, line, err)
		}

		switch {
		case t.Equal(target):
			return mid, nil
		case target.After(t):
			left = mid + 1
		default:
			right = mid - 1
		}
	}

	return mid, nil
}

// lineAfter reads the first full line starting after pos, or at pos when pos is 0.
// A nil line means end of file.
func lineAfter(f io.ReadSeeker, br *bufio.Reader, pos int64) ([]byte, int64, error) {
	if _, err := f.Seek(pos, io.SeekStart); err != nil {
		return nil, 0, err
	}
	br.Reset(f)

	start := pos
	if pos != 0 {
		skipped, err := br.ReadBytes('\n')
		start += int64(len(skipped))
		if err == io.EOF {
			return nil, start, nil
		}
		if err != nil {
			return nil, 0, err
		}
	}

	line, err := br.ReadBytes('\n')
	if err != nil && err != io.EOF {
		return nil, 0, err
	}
	if len(line) == 0 {
		return nil, start, nil
	}
	return trimEOL(line), start, nil
}

func trimEOL(line []byte) []byte {
	n := len(line)
	if n > 0 && line[n-1] == '\n' {
		n--
		if n > 0 && line[n-1] == '\r' {
			n--
		}
	}
	return line[:n]
}

func nameOf(r any) string {
	if n, ok := r.(interface{ Name() string }); ok {
		return n.Name()
	}
	return "log"
}
