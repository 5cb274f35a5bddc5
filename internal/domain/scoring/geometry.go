package scoring

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/okian/poseflow/internal/domain/model"
)

const radToDeg = 180 / math.Pi

// distance is the planar Euclidean distance between two landmarks.
func distance(p, q model.Landmark) float64 {
	return floats.Distance([]float64{p.X, p.Y}, []float64{q.X, q.Y}, 2)
}

// Angle returns the angle in degrees at vertex b of the triangle a-b-c,
// using the law of cosines. The cosine is clamped to [-1, 1] so collinear
// points resolve to 0 or 180 degrees. Coincident or non-finite points
// return ErrDegenerateAngle.
func Angle(a, b, c model.Landmark) (float64, error) {
	sideA := distance(b, c)
	sideB := distance(a, c)
	sideC := distance(a, b)

	for _, side := range []float64{sideA, sideB, sideC} {
		if math.IsNaN(side) || math.IsInf(side, 0) {
			return 0, ErrDegenerateAngle
		}
	}
	if sideA == 0 || sideC == 0 {
		return 0, ErrDegenerateAngle
	}

	cos := (sideA*sideA + sideC*sideC - sideB*sideB) / (2 * sideA * sideC)
	cos = math.Max(-1, math.Min(1, cos))
	return math.Acos(cos) * radToDeg, nil
}
