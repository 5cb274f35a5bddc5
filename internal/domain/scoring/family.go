package scoring

import (
	"strings"

	"github.com/okian/poseflow/internal/domain/model"
)

// familyKeywords is ordered by match priority: a name containing several
// keywords resolves to the first one listed.
var familyKeywords = []struct {
	keyword string
	family  model.Family
}{
	{"mountain", model.FamilyMountain},
	{"tree", model.FamilyTree},
	{"warrior", model.FamilyWarrior},
	{"downward", model.FamilyDownwardDog},
	{"triangle", model.FamilyTriangle},
}

// Classify maps a free-form pose name to a family using case-insensitive
// keyword matching. Unmatched names yield model.FamilyNone.
func Classify(name string) model.Family {
	lower := strings.ToLower(name)
	for _, fk := range familyKeywords {
		if strings.Contains(lower, fk.keyword) {
			return fk.family
		}
	}
	return model.FamilyNone
}

// FamilyOf returns the explicit family of a pose, classifying its name only
// when none was assigned.
func FamilyOf(pose model.Pose) model.Family {
	if pose.Family != model.FamilyNone {
		return pose.Family
	}
	return Classify(pose.Name)
}
