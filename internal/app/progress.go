package service

import (
	"context"

	"github.com/okian/poseflow/internal/domain/progress"
)

// UserStats is the dashboard view of a user's practice.
type UserStats struct {
	progress.Summary
	Streak   progress.Streak `json:"streak"`
	ThisWeek progress.Week   `json:"this_week"`
}

func (s *Service) UserStats(ctx context.Context, userID string) (UserStats, error) {
	sessions, err := s.UserSessions(ctx, userID)
	if err != nil {
		return UserStats{}, err
	}
	now := s.now()
	return UserStats{
		Summary:  progress.Summarize(sessions),
		Streak:   progress.Streaks(now, sessions),
		ThisWeek: progress.CurrentWeek(now, sessions),
	}, nil
}

// UserProgress returns weekly rollups, oldest first.
func (s *Service) UserProgress(ctx context.Context, userID string) ([]progress.Week, error) {
	sessions, err := s.UserSessions(ctx, userID)
	if err != nil {
		return nil, err
	}
	return progress.Weekly(sessions), nil
}

func (s *Service) UserAchievements(ctx context.Context, userID string) ([]progress.Achievement, error) {
	sessions, err := s.UserSessions(ctx, userID)
	if err != nil {
		return nil, err
	}
	return progress.Achievements(sessions), nil
}
