package queue

import "errors"

// Sentinel kinds for queue errors.
var (
	ErrFull   = errors.New("attempt queue full")
	ErrClosed = errors.New("attempt queue closed")
)
