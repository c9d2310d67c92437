package core

import "errors"

var (
	// ErrMalformedTimestamp is returned when a log line does not start with a parseable timestamp
	ErrMalformedTimestamp = errors.New("malformed log timestamp")
	// ErrOutOfOrder is returned when a log line is older than the line before it.
	// It belongs to the malformed timestamp class: errors.Is(err, ErrMalformedTimestamp) holds.
	ErrOutOfOrder = &outOfOrderError{}
)

type outOfOrderError struct{}

func (e *outOfOrderError) Error() string { return "log timestamps out of order" }

func (e *outOfOrderError) Is(target error) bool { return target == ErrMalformedTimestamp }
