package progress

import (
	"time"

	"github.com/okian/poseflow/internal/domain/model"
)

// Achievement categories.
const (
	CategorySession = "session"
	CategoryStreak  = "streak"
	CategoryPose    = "pose"
	CategoryTime    = "time"
)

const (
	perfectScore   = 95
	centuryMinutes = 100
	weekStreakDays = 7
)

// Achievement is a milestone and whether the user has reached it.
type Achievement struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	Unlocked    bool       `json:"unlocked"`
	UnlockedAt  *time.Time `json:"unlocked_at,omitempty"`
}

// tally is the running state replayed over a user's history.
type tally struct {
	sessions  int
	minutes   float64
	bestScore float64
	streak    int
	lastDay   time.Time
}

type rule struct {
	Achievement
	reached func(t tally) bool
}

func rules() []rule {
	return []rule{
		{
			Achievement: Achievement{ID: "first-session", Name: "First Steps", Description: "Complete your first yoga session", Category: CategorySession},
			reached:     func(t tally) bool { return t.sessions >= 1 },
		},
		{
			Achievement: Achievement{ID: "week-streak", Name: "Week Warrior", Description: "Practice yoga for 7 days in a row", Category: CategoryStreak},
			reached:     func(t tally) bool { return t.streak >= weekStreakDays },
		},
		{
			Achievement: Achievement{ID: "perfect-pose", Name: "Perfect Form", Description: "Achieve 95% accuracy in a pose", Category: CategoryPose},
			reached:     func(t tally) bool { return t.bestScore >= perfectScore },
		},
		{
			Achievement: Achievement{ID: "hundred-minutes", Name: "Century Club", Description: "Practice for 100 minutes total", Category: CategoryTime},
			reached:     func(t tally) bool { return t.minutes >= centuryMinutes },
		},
	}
}

// Achievements replays completed sessions in order and stamps each
// achievement with the end time of the session that first unlocked it.
func Achievements(sessions []model.Session) []Achievement {
	rs := rules()
	out := make([]Achievement, len(rs))
	for i, r := range rs {
		out[i] = r.Achievement
	}

	var t tally
	for _, s := range completed(sessions) {
		t.sessions++
		t.minutes += s.Minutes()
		t.bestScore = max(t.bestScore, s.TotalScore)

		u := s.StartedAt.UTC()
		d := time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
		switch {
		case t.streak == 0:
			t.streak = 1
		case d.Sub(t.lastDay) == day:
			t.streak++
		case !d.After(t.lastDay):
		default:
			t.streak = 1
		}
		if d.After(t.lastDay) {
			t.lastDay = d
		}

		for i, r := range rs {
			if out[i].Unlocked || !r.reached(t) {
				continue
			}
			at := *s.EndedAt
			out[i].Unlocked = true
			out[i].UnlockedAt = &at
		}
	}
	return out
}
