package scoring

import (
	"math"

	"github.com/okian/poseflow/internal/domain/model"
)

const (
	visibilityThreshold = 0.5
	maxScore            = 100
	neutralMultiplier   = 1.0
)

// keyLandmarks are the joints that contribute to the base score.
var keyLandmarks = [...]int{
	model.LeftShoulder, model.RightShoulder,
	model.LeftElbow, model.RightElbow,
	model.LeftWrist, model.RightWrist,
	model.LeftHip, model.RightHip,
	model.LeftKnee, model.RightKnee,
	model.LeftAnkle, model.RightAnkle,
}

// evaluation holds the intermediate values of one accuracy computation.
type evaluation struct {
	base       float64
	multiplier float64
	visible    int
	score      float64
}

// ComputeAccuracy scores how well a landmark frame matches the target pose,
// in [0, 100]. Empty frames and frames with no confidently visible key
// joint score 0.
func ComputeAccuracy(landmarks model.Landmarks, pose model.Pose) float64 {
	return evaluate(landmarks, FamilyOf(pose)).score
}

func evaluate(landmarks model.Landmarks, family model.Family) evaluation {
	ev := evaluation{multiplier: neutralMultiplier}
	if landmarks.Empty() {
		return ev
	}

	var total float64
	for _, idx := range keyLandmarks {
		p, ok := landmarks.At(idx)
		if !ok || !(p.Visibility > visibilityThreshold) {
			continue
		}
		ev.visible++
		total += p.Visibility * 100
	}
	if ev.visible == 0 {
		return ev
	}

	// Divided by every key joint, not just the visible ones: occluded joints
	// lower the base score.
	ev.base = total / float64(len(keyLandmarks))
	ev.multiplier = multiplier(family, landmarks)
	ev.score = clampScore(ev.base * ev.multiplier)
	return ev
}

// clampScore bounds a score to [0, 100], mapping NaN to 0.
func clampScore(score float64) float64 {
	if math.IsNaN(score) {
		return 0
	}
	return math.Max(0, math.Min(maxScore, score))
}

// multiplier dispatches to the family heuristic. Results that are not a
// finite number >= 1 fall back to neutral.
func multiplier(family model.Family, landmarks model.Landmarks) float64 {
	var m float64
	switch family {
	case model.FamilyMountain:
		m = mountainMultiplier(landmarks)
	case model.FamilyTree:
		m = treeMultiplier(landmarks)
	case model.FamilyWarrior:
		m = warriorMultiplier(landmarks)
	case model.FamilyDownwardDog:
		m = downwardDogMultiplier(landmarks)
	case model.FamilyTriangle:
		m = triangleMultiplier(landmarks)
	default:
		return neutralMultiplier
	}
	if math.IsNaN(m) || math.IsInf(m, 0) || m < neutralMultiplier {
		return neutralMultiplier
	}
	return m
}

// points returns the landmarks at the given indices, or false if any is absent.
func points(landmarks model.Landmarks, indices ...int) ([]model.Landmark, bool) {
	out := make([]model.Landmark, len(indices))
	for i, idx := range indices {
		p, ok := landmarks.At(idx)
		if !ok {
			return nil, false
		}
		out[i] = p
	}
	return out, true
}

// mountainMultiplier rewards level shoulders and level hips.
func mountainMultiplier(landmarks model.Landmarks) float64 {
	p, ok := points(landmarks, model.LeftShoulder, model.RightShoulder, model.LeftHip, model.RightHip)
	if !ok {
		return neutralMultiplier
	}
	shoulderTilt := math.Abs(p[0].Y - p[1].Y)
	shoulderScore := 1 + (1-math.Min(shoulderTilt*10, 1))*0.3

	hipTilt := math.Abs(p[2].Y - p[3].Y)
	hipScore := 1 + (1-math.Min(hipTilt*10, 1))*0.2

	return (shoulderScore + hipScore) / 2
}

// treeMultiplier rewards one foot raised above the other.
func treeMultiplier(landmarks model.Landmarks) float64 {
	p, ok := points(landmarks, model.LeftAnkle, model.RightAnkle, model.LeftKnee, model.RightKnee)
	if !ok {
		return neutralMultiplier
	}
	ankleGap := math.Abs(p[0].Y - p[1].Y)
	return 1 + math.Min(ankleGap*2, 1)*0.5
}

// warriorMultiplier rewards one knee bent more than the other, saturating
// at a 45 degree difference.
func warriorMultiplier(landmarks model.Landmarks) float64 {
	p, ok := points(landmarks,
		model.LeftHip, model.LeftKnee, model.LeftAnkle,
		model.RightHip, model.RightKnee, model.RightAnkle,
	)
	if !ok {
		return neutralMultiplier
	}
	left, err := Angle(p[0], p[1], p[2])
	if err != nil {
		return neutralMultiplier
	}
	right, err := Angle(p[3], p[4], p[5])
	if err != nil {
		return neutralMultiplier
	}
	return 1 + math.Min(math.Abs(left-right)/45, 1)*0.4
}

// downwardDogMultiplier rewards hips held above the shoulders.
func downwardDogMultiplier(landmarks model.Landmarks) float64 {
	p, ok := points(landmarks,
		model.LeftShoulder, model.RightShoulder,
		model.LeftHip, model.RightHip,
		model.LeftWrist, model.RightWrist,
	)
	if !ok {
		return neutralMultiplier
	}
	shoulderY := (p[0].Y + p[1].Y) / 2
	hipY := (p[2].Y + p[3].Y) / 2
	// Image y grows downwards.
	if hipY < shoulderY {
		return 1.3
	}
	return neutralMultiplier
}

// triangleMultiplier rewards arms spread well beyond shoulder width.
func triangleMultiplier(landmarks model.Landmarks) float64 {
	p, ok := points(landmarks, model.LeftShoulder, model.RightShoulder, model.LeftWrist, model.RightWrist)
	if !ok {
		return neutralMultiplier
	}
	shoulderSpan := math.Abs(p[0].X - p[1].X)
	wristSpan := math.Abs(p[2].X - p[3].X)
	if wristSpan > shoulderSpan*1.5 {
		return 1.3
	}
	return neutralMultiplier
}
