// Package scoring computes pose accuracy, feedback and calorie estimates
// from body landmark frames.
package scoring

import (
	"context"
	"fmt"

	"github.com/okian/poseflow/internal/domain/model"
)

// Option applies a configuration option to the HeuristicScorer.
type Option func(*HeuristicScorer)

// WithBodyWeight sets the body weight used for calorie estimates.
func WithBodyWeight(kg float64) Option {
	return func(s *HeuristicScorer) {
		if kg > 0 {
			s.bodyWeightKg = kg
		}
	}
}

// Input is one pose attempt to score.
type Input struct {
	Pose      model.Pose
	Landmarks model.Landmarks
}

// Result contains the accuracy of an attempt and the feedback shown for it.
type Result struct {
	PoseID           string       `json:"pose_id,omitempty"`
	Family           model.Family `json:"family"`
	Accuracy         float64      `json:"accuracy"`
	BaseScore        float64      `json:"base_score"`
	Multiplier       float64      `json:"multiplier"`
	VisibleLandmarks int          `json:"visible_landmarks"`
	Feedback         []string     `json:"feedback"`
}

// Scorer scores pose attempts and estimates energy expenditure.
type Scorer interface {
	// Score computes accuracy and feedback, honoring ctx for cancellation.
	Score(ctx context.Context, in Input) (Result, error)
	// Calories estimates calories burned holding pose for minutes.
	Calories(ctx context.Context, pose model.Pose, minutes float64) (int, error)
}

// HeuristicScorer implements Scorer with the per-family geometric heuristics.
// It holds no mutable state and is safe for concurrent use.
type HeuristicScorer struct {
	bodyWeightKg float64
}

// NewHeuristicScorer creates a scorer with configuration options.
func NewHeuristicScorer(opts ...Option) *HeuristicScorer {
	s := &HeuristicScorer{bodyWeightKg: DefaultBodyWeightKg}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// BodyWeight returns the configured body weight in kilograms.
func (s *HeuristicScorer) BodyWeight() float64 {
	return s.bodyWeightKg
}

// Score computes the accuracy result for an attempt.
func (s *HeuristicScorer) Score(ctx context.Context, in Input) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, fmt.Errorf("context cancelled: %w", err)
	}
	family := FamilyOf(in.Pose)
	ev := evaluate(in.Landmarks, family)
	return Result{
		PoseID:           in.Pose.ID,
		Family:           family,
		Accuracy:         ev.score,
		BaseScore:        ev.base,
		Multiplier:       ev.multiplier,
		VisibleLandmarks: ev.visible,
		Feedback:         FeedbackFor(ev.score, family),
	}, nil
}

// Calories estimates calories for pose held over minutes at the configured weight.
func (s *HeuristicScorer) Calories(ctx context.Context, pose model.Pose, minutes float64) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("context cancelled: %w", err)
	}
	return EstimateCalories(pose, minutes, s.bodyWeightKg)
}
