// Package simulate drives a running poseflow service with synthetic users,
// sessions and landmark frames.
package simulate

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/okian/poseflow/internal/domain/model"
	"github.com/okian/poseflow/pkg/logger"
)

const (
	replayEvery = 10
	minQuality  = 0.4
)

// ErrNoRoutines is returned when the service lists no routines.
var ErrNoRoutines = errors.New("service has no routines")

// Config holds configuration for a simulation run.
type Config struct {
	BaseURL  string        // Base URL of the service
	Users    int           // Number of simulated users, one session each
	Attempts int           // Attempts submitted per session
	Workers  int           // Concurrent submitters
	Timeout  time.Duration // HTTP request timeout
	Seed     int64         // Landmark generator seed
	Verbose  bool
}

// Stats holds run statistics.
type Stats struct {
	Sessions          int
	AttemptsSubmitted int
	AttemptsAccepted  int
	AttemptsDuplicate int
	AttemptsFailed    int
	AttemptsScored    int
	SessionsCompleted int
	AverageScore      float64
	Calories          int
	Duration          time.Duration
}

type userRun struct {
	userID  string
	routine RoutineDetail
	session model.Session
}

type job struct {
	run     *userRun
	attempt Attempt
}

// Run executes a complete simulation against cfg.BaseURL.
func Run(ctx context.Context, cfg Config) (*Stats, error) {
	log := logger.Get().Named("simulate")
	started := time.Now()
	stats := &Stats{}

	log.Info(ctx, "starting simulation",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("users", cfg.Users),
		logger.Int("attempts", cfg.Attempts),
		logger.Int("workers", cfg.Workers),
		logger.Duration("timeout", cfg.Timeout),
	)

	client := NewClient(cfg.BaseURL, cfg.Timeout)
	if err := client.Health(ctx); err != nil {
		return nil, fmt.Errorf("service health check failed: %w", err)
	}

	runs, err := startSessions(ctx, client, cfg.Users)
	if err != nil {
		return nil, err
	}
	stats.Sessions = len(runs)

	submit(ctx, client, cfg, runs, stats, log)

	// Completion waits for the session's accepted attempts to be recorded.
	var scoreSum float64
	for _, r := range runs {
		end := r.session.StartedAt.Add(time.Duration(r.routine.DurationMinutes) * time.Minute)
		done, err := client.CompleteSession(ctx, r.session.ID, end)
		if err != nil {
			log.Warn(ctx, "complete session failed", logger.String("session_id", r.session.ID), logger.Error(err))
			continue
		}
		stats.SessionsCompleted++
		stats.AttemptsScored += len(done.Attempts)
		stats.Calories += done.Calories
		scoreSum += done.TotalScore

		if cfg.Verbose {
			us, err := client.UserStats(ctx, r.userID)
			if err != nil {
				log.Warn(ctx, "user stats failed", logger.String("user_id", r.userID), logger.Error(err))
				continue
			}
			log.Info(ctx, "user stats",
				logger.String("user_id", r.userID),
				logger.Int("sessions", us.TotalSessions),
				logger.Int("avgAccuracy", us.AvgAccuracy),
				logger.Int("calories", us.CaloriesBurned),
				logger.Int("streak", us.Streak.Current),
			)
		}
	}
	if stats.SessionsCompleted > 0 {
		stats.AverageScore = scoreSum / float64(stats.SessionsCompleted)
	}
	stats.Duration = time.Since(started)

	log.Info(ctx, "final statistics",
		logger.Int("sessions", stats.Sessions),
		logger.Int("attemptsSubmitted", stats.AttemptsSubmitted),
		logger.Int("attemptsAccepted", stats.AttemptsAccepted),
		logger.Int("attemptsDuplicate", stats.AttemptsDuplicate),
		logger.Int("attemptsFailed", stats.AttemptsFailed),
		logger.Int("attemptsScored", stats.AttemptsScored),
		logger.Int("sessionsCompleted", stats.SessionsCompleted),
		logger.Float64("averageScore", stats.AverageScore),
		logger.Int("calories", stats.Calories),
		logger.Duration("duration", stats.Duration),
	)
	return stats, nil
}

// startSessions opens one session per user, spreading users over routines.
func startSessions(ctx context.Context, client *Client, users int) ([]*userRun, error) {
	routines, err := client.Routines(ctx)
	if err != nil {
		return nil, fmt.Errorf("list routines: %w", err)
	}
	if len(routines) == 0 {
		return nil, ErrNoRoutines
	}
	details := make(map[string]RoutineDetail, len(routines))
	for _, rt := range routines {
		d, err := client.Routine(ctx, rt.ID)
		if err != nil {
			return nil, fmt.Errorf("get routine %s: %w", rt.ID, err)
		}
		details[rt.ID] = d
	}

	runs := make([]*userRun, 0, users)
	for i := 0; i < users; i++ {
		rt := details[routines[i%len(routines)].ID]
		userID := "sim-" + uuid.NewString()
		sess, err := client.StartSession(ctx, userID, rt.ID)
		if err != nil {
			return nil, fmt.Errorf("start session for %s: %w", userID, err)
		}
		runs = append(runs, &userRun{userID: userID, routine: rt, session: sess})
	}
	return runs, nil
}

// submit posts every attempt through a worker pool. Every replayEvery-th
// attempt is sent twice to exercise idempotency.
func submit(ctx context.Context, client *Client, cfg Config, runs []*userRun, stats *Stats, log logger.Logger) {
	gen := NewGenerator(cfg.Seed)
	workers := max(cfg.Workers, 1)
	jobs := make(chan job, workers*2)

	var submitted, accepted, duplicate, failed atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				submitted.Add(1)
				ack, err := client.SubmitAttempt(ctx, j.run.session.ID, j.attempt)
				switch {
				case err != nil:
					failed.Add(1)
					if cfg.Verbose {
						log.Warn(ctx, "attempt failed", logger.String("attempt_id", j.attempt.AttemptID), logger.Error(err))
					}
				case ack.Status == "duplicate":
					duplicate.Add(1)
				default:
					accepted.Add(1)
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, r := range runs {
			poses := r.routine.Poses
			if len(poses) == 0 {
				continue
			}
			for n := 0; n < cfg.Attempts; n++ {
				pose := poses[n%len(poses)]
				end := time.Now().UTC()
				a := Attempt{
					AttemptID: uuid.NewString(),
					PoseID:    pose.ID,
					Landmarks: gen.Frame(pose.Family, gen.Quality(minQuality, 1)),
					StartedAt: end.Add(-time.Duration(pose.HoldSeconds) * time.Second),
					EndedAt:   end,
				}
				copies := 1
				if n%replayEvery == replayEvery-1 {
					copies = 2
				}
				for c := 0; c < copies; c++ {
					select {
					case <-ctx.Done():
						return
					case jobs <- job{run: r, attempt: a}:
					}
				}
			}
		}
	}()

	wg.Wait()

	stats.AttemptsSubmitted = int(submitted.Load())
	stats.AttemptsAccepted = int(accepted.Load())
	stats.AttemptsDuplicate = int(duplicate.Load())
	stats.AttemptsFailed = int(failed.Load())
}
