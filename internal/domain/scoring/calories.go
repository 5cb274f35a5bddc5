package scoring

import (
	"math"

	"github.com/okian/poseflow/internal/domain/model"
)

// DefaultBodyWeightKg is used when the caller has no body weight on file.
const DefaultBodyWeightKg = 70.0

// EstimateCalories returns round(MET x weight(kg) x hours) for a pose held
// for durationMinutes.
func EstimateCalories(pose model.Pose, durationMinutes, bodyWeightKg float64) (int, error) {
	switch {
	case math.IsNaN(durationMinutes) || math.IsInf(durationMinutes, 0):
		return 0, ErrInvalidDuration
	case durationMinutes < 0:
		return 0, ErrNegativeDuration
	case !(bodyWeightKg > 0) || math.IsInf(bodyWeightKg, 0):
		return 0, ErrInvalidBodyWeight
	case !(pose.MET >= 0) || math.IsInf(pose.MET, 0):
		return 0, ErrInvalidMET
	}
	hours := durationMinutes / 60
	return int(math.Round(pose.MET * bodyWeightKg * hours)), nil
}
