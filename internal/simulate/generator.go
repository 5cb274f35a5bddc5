package simulate

import (
	"math"
	"math/rand"
	"sync"

	"github.com/okian/poseflow/internal/domain/model"
)

const (
	maxVisibility = 0.95
	minVisibility = 0.3
	maxJitter     = 0.06
	maxDropRate   = 0.35
)

// Generator produces synthetic 33-point landmark frames. It is safe for
// concurrent use; frames are reproducible for a given seed and call order.
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewGenerator creates a generator seeded with seed.
func NewGenerator(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed))} //nolint:gosec // synthetic data
}

// Frame builds a frame for family. Quality in [0,1] controls fidelity:
// 1 yields the family's ideal geometry at full visibility, lower values add
// positional jitter, drop landmarks and lower visibility.
func (g *Generator) Frame(family model.Family, quality float64) model.Landmarks {
	quality = math.Max(0, math.Min(1, quality))
	base := skeleton(family)

	g.mu.Lock()
	defer g.mu.Unlock()

	jitter := (1 - quality) * maxJitter
	drop := (1 - quality) * maxDropRate
	vis := minVisibility + (maxVisibility-minVisibility)*quality

	out := make(model.Landmarks, model.NumLandmarks)
	for i, p := range base {
		if drop > 0 && g.rng.Float64() < drop {
			continue
		}
		lm := p
		if jitter > 0 {
			lm.X += (g.rng.Float64()*2 - 1) * jitter
			lm.Y += (g.rng.Float64()*2 - 1) * jitter
			lm.Z += (g.rng.Float64()*2 - 1) * jitter
			lm.Visibility = math.Max(0, math.Min(1, vis+(g.rng.Float64()*2-1)*jitter))
		} else {
			lm.Visibility = vis
		}
		out[i] = &lm
	}
	return out
}

// Quality draws a frame quality in [lo, hi].
func (g *Generator) Quality(lo, hi float64) float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return lo + g.rng.Float64()*(hi-lo)
}

// skeleton returns the ideal geometry of a family, starting from an upright
// standing figure. Image y grows downwards.
func skeleton(family model.Family) [model.NumLandmarks]model.Landmark {
	var s [model.NumLandmarks]model.Landmark
	for i := range s {
		// Face and hand points cluster around the head and wrists.
		s[i] = model.Landmark{X: 0.5, Y: 0.12}
	}
	set := func(i int, x, y float64) { s[i] = model.Landmark{X: x, Y: y} }

	set(model.Nose, 0.5, 0.1)
	set(model.LeftShoulder, 0.42, 0.25)
	set(model.RightShoulder, 0.58, 0.25)
	set(model.LeftElbow, 0.4, 0.38)
	set(model.RightElbow, 0.6, 0.38)
	set(model.LeftWrist, 0.39, 0.5)
	set(model.RightWrist, 0.61, 0.5)
	set(model.LeftHip, 0.45, 0.55)
	set(model.RightHip, 0.55, 0.55)
	set(model.LeftKnee, 0.45, 0.75)
	set(model.RightKnee, 0.55, 0.75)
	set(model.LeftAnkle, 0.45, 0.95)
	set(model.RightAnkle, 0.55, 0.95)

	switch family {
	case model.FamilyTree:
		// Left foot drawn up to the standing knee.
		set(model.LeftKnee, 0.35, 0.62)
		set(model.LeftAnkle, 0.5, 0.45)
	case model.FamilyWarrior:
		// Front knee bent, back leg straight.
		set(model.LeftKnee, 0.25, 0.72)
		set(model.LeftAnkle, 0.3, 0.92)
		set(model.LeftWrist, 0.42, 0.02)
		set(model.RightWrist, 0.58, 0.02)
	case model.FamilyDownwardDog:
		// Hips high, hands and feet on the floor.
		set(model.LeftShoulder, 0.32, 0.6)
		set(model.RightShoulder, 0.36, 0.6)
		set(model.LeftElbow, 0.26, 0.72)
		set(model.RightElbow, 0.3, 0.72)
		set(model.LeftWrist, 0.2, 0.85)
		set(model.RightWrist, 0.24, 0.85)
		set(model.LeftHip, 0.5, 0.3)
		set(model.RightHip, 0.54, 0.3)
		set(model.LeftKnee, 0.62, 0.58)
		set(model.RightKnee, 0.66, 0.58)
		set(model.LeftAnkle, 0.74, 0.85)
		set(model.RightAnkle, 0.78, 0.85)
	case model.FamilyTriangle:
		// Arms spread wide, feet apart.
		set(model.LeftWrist, 0.1, 0.25)
		set(model.RightWrist, 0.9, 0.25)
		set(model.LeftElbow, 0.26, 0.25)
		set(model.RightElbow, 0.74, 0.25)
		set(model.LeftAnkle, 0.3, 0.95)
		set(model.RightAnkle, 0.7, 0.95)
	}
	return s
}
