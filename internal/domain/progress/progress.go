// Package progress aggregates completed practice sessions into user-facing
// statistics, weekly rollups, streaks and achievements.
package progress

import (
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/okian/poseflow/internal/domain/model"
)

const (
	day        = 24 * time.Hour
	weekLayout = "2006-01-02"
)

// Summary holds lifetime totals for a user.
type Summary struct {
	TotalSessions  int `json:"total_sessions"`
	TotalMinutes   int `json:"total_minutes"`
	AvgAccuracy    int `json:"avg_accuracy"`
	CaloriesBurned int `json:"calories_burned"`
}

// Week is the rollup of one calendar week (Sunday start, UTC).
type Week struct {
	Week        string  `json:"week"`
	Sessions    int     `json:"sessions"`
	Minutes     float64 `json:"minutes"`
	Calories    int     `json:"calories"`
	AvgAccuracy float64 `json:"avg_accuracy"`
}

// Streak holds consecutive practice-day counts.
type Streak struct {
	Current int `json:"current"`
	Longest int `json:"longest"`
}

// completed returns finished sessions ordered by end time.
func completed(sessions []model.Session) []model.Session {
	out := make([]model.Session, 0, len(sessions))
	for _, s := range sessions {
		if s.Completed && s.EndedAt != nil {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].EndedAt.Before(*out[j].EndedAt)
	})
	return out
}

// SessionScore is the rounded mean accuracy of a session's attempts, or 0
// without any.
func SessionScore(attempts []model.Attempt) float64 {
	if len(attempts) == 0 {
		return 0
	}
	acc := make([]float64, len(attempts))
	for i, a := range attempts {
		acc[i] = a.Accuracy
	}
	return math.Round(stat.Mean(acc, nil))
}

// Summarize totals the completed sessions.
func Summarize(sessions []model.Session) Summary {
	done := completed(sessions)
	if len(done) == 0 {
		return Summary{}
	}

	var minutes float64
	calories := 0
	scores := make([]float64, len(done))
	for i, s := range done {
		minutes += s.Minutes()
		calories += s.Calories
		scores[i] = s.TotalScore
	}
	return Summary{
		TotalSessions:  len(done),
		TotalMinutes:   int(math.Round(minutes)),
		AvgAccuracy:    int(math.Round(stat.Mean(scores, nil))),
		CaloriesBurned: calories,
	}
}

// WeekStart returns midnight UTC of the Sunday starting t's week.
func WeekStart(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day()-int(u.Weekday()), 0, 0, 0, 0, time.UTC)
}

// Weekly rolls completed sessions up by the week they started in, oldest first.
func Weekly(sessions []model.Session) []Week {
	byWeek := make(map[string]*Week)
	scores := make(map[string][]float64)
	for _, s := range completed(sessions) {
		key := WeekStart(s.StartedAt).Format(weekLayout)
		w, ok := byWeek[key]
		if !ok {
			w = &Week{Week: key}
			byWeek[key] = w
		}
		w.Sessions++
		w.Minutes += s.Minutes()
		w.Calories += s.Calories
		scores[key] = append(scores[key], s.TotalScore)
	}

	out := make([]Week, 0, len(byWeek))
	for key, w := range byWeek {
		w.AvgAccuracy = stat.Mean(scores[key], nil)
		out = append(out, *w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Week < out[j].Week })
	return out
}

// CurrentWeek returns the rollup for the week containing now, zero-valued
// when nothing was practiced.
func CurrentWeek(now time.Time, sessions []model.Session) Week {
	key := WeekStart(now).Format(weekLayout)
	for _, w := range Weekly(sessions) {
		if w.Week == key {
			return w
		}
	}
	return Week{Week: key}
}

// practiceDays returns the distinct UTC days with a completed session, ascending.
func practiceDays(sessions []model.Session) []time.Time {
	seen := make(map[time.Time]struct{})
	days := make([]time.Time, 0, len(sessions))
	for _, s := range completed(sessions) {
		u := s.StartedAt.UTC()
		d := time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days
}

// Streaks counts consecutive practice days. The current streak survives
// until a full day passes without practice.
func Streaks(now time.Time, sessions []model.Session) Streak {
	days := practiceDays(sessions)
	if len(days) == 0 {
		return Streak{}
	}

	var st Streak
	run := 0
	for i, d := range days {
		if i > 0 && d.Sub(days[i-1]) == day {
			run++
		} else {
			run = 1
		}
		st.Longest = max(st.Longest, run)
	}

	u := now.UTC()
	today := time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
	last := days[len(days)-1]
	if today.Sub(last) <= day {
		st.Current = run
	}
	return st
}
