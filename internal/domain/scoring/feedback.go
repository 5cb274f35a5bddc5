package scoring

import "github.com/okian/poseflow/internal/domain/model"

const (
	maxSuggestions    = 3
	lowAccuracy       = 50
	fairAccuracy      = 75
	tipsBelowAccuracy = 80
)

var familyTips = map[model.Family][]string{
	model.FamilyMountain: {
		"Keep your shoulders level and relaxed",
		"Stand tall with feet hip-width apart",
	},
	model.FamilyTree: {
		"Find a focal point to help with balance",
		"Press your foot firmly into your standing leg",
	},
	model.FamilyWarrior: {
		"Keep your front knee over your ankle",
		"Extend your arms strongly",
	},
}

// GenerateFeedback returns up to three suggestions for an accuracy score,
// generic guidance first and pose-specific tips after.
func GenerateFeedback(accuracy float64, poseName string) []string {
	return FeedbackFor(accuracy, Classify(poseName))
}

// FeedbackFor is GenerateFeedback for an already resolved family.
func FeedbackFor(accuracy float64, family model.Family) []string {
	suggestions := make([]string, 0, maxSuggestions+1)
	switch {
	case accuracy < lowAccuracy:
		suggestions = append(suggestions,
			"Check your pose alignment with the instructions",
			"Make sure you're clearly visible in the camera",
		)
	case accuracy < fairAccuracy:
		suggestions = append(suggestions, "Almost there! Fine-tune your position")
	default:
		suggestions = append(suggestions, "Great pose! Hold it steady")
	}

	if accuracy < tipsBelowAccuracy {
		suggestions = append(suggestions, familyTips[family]...)
	}

	if len(suggestions) > maxSuggestions {
		suggestions = suggestions[:maxSuggestions]
	}
	return suggestions
}
