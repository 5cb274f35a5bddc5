package scoring

import "errors"

// Sentinel kinds for scoring input validation.
var (
	ErrNegativeDuration  = errors.New("duration must not be negative")
	ErrInvalidDuration   = errors.New("duration must be a finite number")
	ErrInvalidBodyWeight = errors.New("body weight must be a positive finite number")
	ErrInvalidMET        = errors.New("MET value must be a non-negative finite number")
	ErrDegenerateAngle   = errors.New("angle is undefined for coincident or non-finite points")
)
