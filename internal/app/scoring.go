package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/okian/poseflow/internal/domain/model"
	"github.com/okian/poseflow/internal/domain/scoring"
)

// RoutineDetail is a routine with its poses resolved in order.
type RoutineDetail struct {
	model.Routine
	Poses []model.Pose `json:"poses"`
}

// ScoreRequest scores one frame against a catalog pose or an ad-hoc pose name.
type ScoreRequest struct {
	PoseID    string          `json:"pose_id,omitempty"`
	PoseName  string          `json:"pose_name,omitempty"`
	Landmarks model.Landmarks `json:"landmarks"`
}

// CaloriesRequest estimates calories for holding a pose.
type CaloriesRequest struct {
	PoseID          string  `json:"pose_id"`
	DurationMinutes float64 `json:"duration_minutes"`
	BodyWeightKg    float64 `json:"body_weight_kg,omitempty"`
}

func (s *Service) Poses(ctx context.Context, difficulty model.Difficulty) []model.Pose {
	return s.catalog.Poses(ctx, difficulty)
}

func (s *Service) Pose(ctx context.Context, id string) (model.Pose, error) {
	return s.catalog.Pose(ctx, id)
}

func (s *Service) Routines(ctx context.Context, difficulty model.Difficulty, category string) []model.Routine {
	return s.catalog.Routines(ctx, difficulty, category)
}

// Routine returns a routine together with its poses.
func (s *Service) Routine(ctx context.Context, id string) (RoutineDetail, error) {
	r, err := s.catalog.Routine(ctx, id)
	if err != nil {
		return RoutineDetail{}, err
	}
	poses, err := s.catalog.RoutinePoses(ctx, id)
	if err != nil {
		return RoutineDetail{}, err
	}
	return RoutineDetail{Routine: r, Poses: poses}, nil
}

// ResolvePose picks the pose a job is scored against: the catalog pose when
// an ID is given, otherwise an ad-hoc pose classified by name.
func (s *Service) ResolvePose(ctx context.Context, job model.AttemptJob) (model.Pose, error) {
	return s.resolve(ctx, job.PoseID, job.PoseName)
}

func (s *Service) resolve(ctx context.Context, id, name string) (model.Pose, error) {
	if id != "" {
		return s.catalog.Pose(ctx, id)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Pose{}, fmt.Errorf("%w: pose_id or pose_name is required", ErrInvalidInput)
	}
	return model.Pose{Name: name, Family: scoring.Classify(name)}, nil
}

// Categories lists the distinct routine categories.
func (s *Service) Categories(ctx context.Context) []string {
	return s.catalog.Categories(ctx)
}

// Score scores one frame synchronously.
func (s *Service) Score(ctx context.Context, req ScoreRequest) (scoring.Result, error) {
	pose, err := s.resolve(ctx, req.PoseID, req.PoseName)
	if err != nil {
		return scoring.Result{}, err
	}
	return s.scorer.Score(ctx, scoring.Input{Pose: pose, Landmarks: req.Landmarks})
}

// Calories estimates calories for a catalog pose. A zero body weight uses
// the configured default.
func (s *Service) Calories(ctx context.Context, req CaloriesRequest) (int, error) {
	pose, err := s.catalog.Pose(ctx, req.PoseID)
	if err != nil {
		return 0, err
	}
	var cal int
	if req.BodyWeightKg == 0 {
		cal, err = s.scorer.Calories(ctx, pose, req.DurationMinutes)
	} else {
		cal, err = scoring.EstimateCalories(pose, req.DurationMinutes, req.BodyWeightKg)
	}
	if err != nil && ctx.Err() == nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return cal, err
}
