// Package model contains domain models passed between layers.
package model

// Body keypoint indices of the 33-point pose convention. The numbering is an
// external contract with the landmark producer and must not change.
const (
	Nose          = 0
	LeftShoulder  = 11
	RightShoulder = 12
	LeftElbow     = 13
	RightElbow    = 14
	LeftWrist     = 15
	RightWrist    = 16
	LeftHip       = 23
	RightHip      = 24
	LeftKnee      = 25
	RightKnee     = 26
	LeftAnkle     = 27
	RightAnkle    = 28

	// NumLandmarks is the size of a full frame.
	NumLandmarks = 33
)

// Landmark is a detected body keypoint in normalized image coordinates.
type Landmark struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Z          float64 `json:"z"`
	Visibility float64 `json:"visibility"`
}

// Landmarks is a sparse frame indexed by keypoint. Nil entries are absent
// and the slice may be shorter than NumLandmarks.
type Landmarks []*Landmark

// At returns the landmark at index i and whether it is present.
func (l Landmarks) At(i int) (Landmark, bool) {
	if i < 0 || i >= len(l) || l[i] == nil {
		return Landmark{}, false
	}
	return *l[i], true
}

// Empty reports whether the frame carries no landmarks at all.
func (l Landmarks) Empty() bool {
	for _, p := range l {
		if p != nil {
			return false
		}
	}
	return true
}
