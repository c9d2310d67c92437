package maillog

import (
	"fmt"
)

// maxQuotedLine bounds how much of an offending line ends up in error messages
const maxQuotedLine = 200

// TimestampError reports a line whose timestamp could not be used
type TimestampError struct {
	Path   string
	Offset int64
	Line   string
	Err    error
}

func newTimestampError(path string, offset int64, line []byte, err error) *TimestampError {
	quoted := string(line)
	if len(quoted) > maxQuotedLine {
		quoted = quoted[:maxQuotedLine] + "..."
	}
	return &TimestampError{Path: path, Offset: offset, Line: quoted, Err: err}
}

func (e *TimestampError) Error() string {
	return fmt.Sprintf("unable to get time from line at %s:%d: %q: %v", e.Path, e.Offset, e.Line, e.Err)
}

func (e *TimestampError) Unwrap() error {
	return e.Err
}
