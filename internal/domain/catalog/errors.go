package catalog

import "errors"

// Sentinel kinds for catalog lookups.
var (
	ErrPoseNotFound    = errors.New("pose not found")
	ErrRoutineNotFound = errors.New("routine not found")
)
