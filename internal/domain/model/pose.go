package model

import (
	"fmt"
	"strings"
)

// Difficulty grades catalog content.
type Difficulty string

const (
	Beginner     Difficulty = "beginner"
	Intermediate Difficulty = "intermediate"
	Advanced     Difficulty = "advanced"
)

// Family selects the accuracy heuristic applied to a pose.
type Family int

const (
	FamilyNone Family = iota
	FamilyMountain
	FamilyTree
	FamilyWarrior
	FamilyDownwardDog
	FamilyTriangle
)

var familyNames = map[Family]string{
	FamilyNone:        "none",
	FamilyMountain:    "mountain",
	FamilyTree:        "tree",
	FamilyWarrior:     "warrior",
	FamilyDownwardDog: "downward-dog",
	FamilyTriangle:    "triangle",
}

func (f Family) String() string {
	if name, ok := familyNames[f]; ok {
		return name
	}
	return fmt.Sprintf("family(%d)", int(f))
}

// MarshalText encodes the family by name.
func (f Family) MarshalText() ([]byte, error) {
	name, ok := familyNames[f]
	if !ok {
		return nil, fmt.Errorf("unknown pose family %d", int(f))
	}
	return []byte(name), nil
}

// UnmarshalText decodes a family name. An empty value decodes to FamilyNone.
func (f *Family) UnmarshalText(b []byte) error {
	s := strings.ToLower(strings.TrimSpace(string(b)))
	if s == "" {
		*f = FamilyNone
		return nil
	}
	for fam, name := range familyNames {
		if name == s {
			*f = fam
			return nil
		}
	}
	return fmt.Errorf("unknown pose family %q", s)
}

// Pose is an immutable description of a target pose.
type Pose struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Family        Family     `json:"family"`
	Instructions  []string   `json:"instructions"`
	Benefits      []string   `json:"benefits"`
	Difficulty    Difficulty `json:"difficulty"`
	TargetMuscles []string   `json:"target_muscles"`
	ImageURL      string     `json:"image_url"`
	HoldSeconds   int        `json:"hold_seconds"`
	MET           float64    `json:"met"`
}

// Routine is a named sequence of catalog poses.
type Routine struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Description     string     `json:"description"`
	Difficulty      Difficulty `json:"difficulty"`
	DurationMinutes int        `json:"duration_minutes"`
	PoseIDs         []string   `json:"pose_ids"`
	ImageURL        string     `json:"image_url"`
	Category        string     `json:"category"`
}
