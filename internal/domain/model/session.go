package model

import "time"

// Attempt is one scored pose attempt inside a practice session.
type Attempt struct {
	ID        string    `json:"id"`
	PoseID    string    `json:"pose_id"`
	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at"`
	Duration  float64   `json:"duration"` // seconds
	Accuracy  float64   `json:"accuracy"`
	Feedback  []string  `json:"feedback"`
}

// Session is a user's practice run through a routine.
type Session struct {
	ID         string     `json:"id"`
	UserID     string     `json:"user_id"`
	RoutineID  string     `json:"routine_id"`
	StartedAt  time.Time  `json:"started_at"`
	EndedAt    *time.Time `json:"ended_at,omitempty"`
	Attempts   []Attempt  `json:"attempts"`
	TotalScore float64    `json:"total_score"`
	Calories   int        `json:"calories"`
	Completed  bool       `json:"completed"`
}

// Minutes returns the elapsed practice time of a finished session, or zero.
func (s *Session) Minutes() float64 {
	if s.EndedAt == nil {
		return 0
	}
	return s.EndedAt.Sub(s.StartedAt).Minutes()
}

// Completion carries the values written when a session is closed. The
// total score is derived by the store from the attempts it holds.
type Completion struct {
	EndedAt  time.Time
	Calories int
}

// AttemptJob is the unit of work flowing through the attempt queue.
type AttemptJob struct {
	AttemptID string    // idempotency key
	SessionID string    // owning practice session
	PoseID    string    // catalog pose, may be empty when PoseName is set
	PoseName  string    // ad-hoc pose name used when PoseID is empty
	Landmarks Landmarks // frame captured at the end of the attempt
	StartedAt time.Time
	EndedAt   time.Time
}
