package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrBackpressure    = errors.New("attempt queue is full")
	ErrInvalidInput    = errors.New("invalid input")
	ErrNotStarted      = errors.New("service not started")
	ErrAttemptsPending = errors.New("attempts pending")
)
