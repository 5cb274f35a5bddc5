package catalog

import "github.com/okian/poseflow/internal/domain/model"

func defaultPoses() []model.Pose {
	return []model.Pose{
		{
			ID:     "mountain-pose",
			Name:   "Mountain Pose (Tadasana)",
			Family: model.FamilyMountain,
			Instructions: []string{
				"Stand tall with feet hip-width apart",
				"Keep your shoulders relaxed and arms at sides",
				"Engage your core and lift the crown of your head",
				"Breathe deeply and hold for 30-60 seconds",
			},
			Benefits:      []string{"Improves posture", "Strengthens legs and core", "Increases body awareness", "Calms the mind"},
			Difficulty:    model.Beginner,
			TargetMuscles: []string{"Core", "Legs", "Posture muscles"},
			ImageURL:      "https://images.unsplash.com/photo-1506629905607-d2fa7e6ec180?w=400",
			HoldSeconds:   60,
			MET:           2.5,
		},
		{
			ID:     "tree-pose",
			Name:   "Tree Pose (Vrksasana)",
			Family: model.FamilyTree,
			Instructions: []string{
				"Stand on one leg with the other foot placed on inner thigh",
				"Keep hands in prayer position at heart center",
				"Focus on a point ahead to maintain balance",
				"Hold for 30-60 seconds, then switch sides",
			},
			Benefits:      []string{"Improves balance and stability", "Strengthens legs and core", "Increases concentration", "Opens hips"},
			Difficulty:    model.Beginner,
			TargetMuscles: []string{"Core", "Legs", "Hips"},
			ImageURL:      "https://images.unsplash.com/photo-1573688574741-6635af8de27a?w=400",
			HoldSeconds:   60,
			MET:           3.0,
		},
		{
			ID:     "downward-dog",
			Name:   "Downward-Facing Dog (Adho Mukha Svanasana)",
			Family: model.FamilyDownwardDog,
			Instructions: []string{
				"Start on hands and knees",
				"Tuck toes under and lift hips up and back",
				"Straighten legs and press hands into the ground",
				"Keep head between arms and breathe deeply",
			},
			Benefits:      []string{"Stretches hamstrings and calves", "Strengthens arms and shoulders", "Improves circulation", "Energizes the body"},
			Difficulty:    model.Beginner,
			TargetMuscles: []string{"Arms", "Shoulders", "Hamstrings", "Calves"},
			ImageURL:      "https://images.unsplash.com/photo-1544367567-0f2fcb009e0b?w=400",
			HoldSeconds:   60,
			MET:           3.5,
		},
		{
			ID:     "warrior-1",
			Name:   "Warrior I (Virabhadrasana I)",
			Family: model.FamilyWarrior,
			Instructions: []string{
				"Step one foot forward into a lunge",
				"Turn back foot out at 45-degree angle",
				"Raise arms overhead with palms facing each other",
				"Keep front knee over ankle and hold",
			},
			Benefits:      []string{"Strengthens legs and glutes", "Opens chest and shoulders", "Improves balance", "Builds confidence"},
			Difficulty:    model.Intermediate,
			TargetMuscles: []string{"Legs", "Glutes", "Core", "Shoulders"},
			ImageURL:      "https://images.unsplash.com/photo-1506629905607-d2fa7e6ec180?w=400",
			HoldSeconds:   60,
			MET:           4.0,
		},
		{
			ID:     "triangle-pose",
			Name:   "Triangle Pose (Trikonasana)",
			Family: model.FamilyTriangle,
			Instructions: []string{
				"Stand with feet wide apart",
				"Turn right foot out 90 degrees",
				"Reach right hand toward floor, left hand toward ceiling",
				"Keep both legs straight and hold",
			},
			Benefits:      []string{"Stretches legs and spine", "Strengthens core", "Improves balance", "Opens chest and shoulders"},
			Difficulty:    model.Intermediate,
			TargetMuscles: []string{"Legs", "Core", "Spine"},
			ImageURL:      "https://images.unsplash.com/photo-1599901860904-17e6ed7083a0?w=400",
			HoldSeconds:   60,
			MET:           3.5,
		},
		{
			ID:   "child-pose",
			Name: "Child's Pose (Balasana)",
			Instructions: []string{
				"Kneel on the floor with big toes touching",
				"Sit back on your heels",
				"Fold forward with arms extended or at sides",
				"Rest forehead on the ground and breathe deeply",
			},
			Benefits:      []string{"Relieves stress and anxiety", "Stretches hips and spine", "Calms the nervous system", "Helps with digestion"},
			Difficulty:    model.Beginner,
			TargetMuscles: []string{"Hips", "Spine"},
			ImageURL:      "https://images.unsplash.com/photo-1506629905607-d2fa7e6ec180?w=400",
			HoldSeconds:   60,
			MET:           2.0,
		},
		{
			ID:   "cobra-pose",
			Name: "Cobra Pose (Bhujangasana)",
			Instructions: []string{
				"Lie face down with palms under shoulders",
				"Press palms down and lift chest off the ground",
				"Keep shoulders away from ears",
				"Look forward and breathe deeply",
			},
			Benefits:      []string{"Strengthens spine and arms", "Opens chest and shoulders", "Improves posture", "Energizes the body"},
			Difficulty:    model.Beginner,
			TargetMuscles: []string{"Back", "Arms", "Chest"},
			ImageURL:      "https://images.unsplash.com/photo-1588286840104-8957b019727f?w=400",
			HoldSeconds:   45,
			MET:           3.0,
		},
		{
			ID:   "plank-pose",
			Name: "Plank Pose (Phalakasana)",
			Instructions: []string{
				"Start in push-up position",
				"Keep body in straight line from head to heels",
				"Engage core and hold strong",
				"Breathe steadily while holding",
			},
			Benefits:      []string{"Strengthens core and arms", "Improves posture", "Builds endurance", "Tones entire body"},
			Difficulty:    model.Intermediate,
			TargetMuscles: []string{"Core", "Arms", "Shoulders"},
			ImageURL:      "https://images.unsplash.com/photo-1571019613914-85f342c6a11e?w=400",
			HoldSeconds:   30,
			MET:           4.5,
		},
	}
}

func defaultRoutines() []model.Routine {
	return []model.Routine{
		{
			ID:              "morning-flow",
			Name:            "Morning Energy Flow",
			Description:     "A gentle sequence to wake up your body and mind",
			Difficulty:      model.Beginner,
			DurationMinutes: 15,
			PoseIDs:         []string{"mountain-pose", "downward-dog", "cobra-pose", "child-pose"},
			ImageURL:        "https://images.unsplash.com/photo-1506629905607-d2fa7e6ec180?w=600",
			Category:        "Morning",
		},
		{
			ID:              "strength-builder",
			Name:            "Strength Builder",
			Description:     "Build strength and stability with these powerful poses",
			Difficulty:      model.Intermediate,
			DurationMinutes: 25,
			PoseIDs:         []string{"warrior-1", "plank-pose", "triangle-pose", "tree-pose"},
			ImageURL:        "https://images.unsplash.com/photo-1544367567-0f2fcb009e0b?w=600",
			Category:        "Strength",
		},
		{
			ID:              "relaxation-flow",
			Name:            "Evening Relaxation",
			Description:     "Unwind and prepare for restful sleep",
			Difficulty:      model.Beginner,
			DurationMinutes: 20,
			PoseIDs:         []string{"child-pose", "mountain-pose", "cobra-pose", "child-pose"},
			ImageURL:        "https://images.unsplash.com/photo-1573688574741-6635af8de27a?w=600",
			Category:        "Relaxation",
		},
		{
			ID:              "balance-focus",
			Name:            "Balance & Focus",
			Description:     "Improve balance, concentration, and mindfulness",
			Difficulty:      model.Intermediate,
			DurationMinutes: 18,
			PoseIDs:         []string{"tree-pose", "triangle-pose", "warrior-1", "mountain-pose"},
			ImageURL:        "https://images.unsplash.com/photo-1599901860904-17e6ed7083a0?w=600",
			Category:        "Balance",
		},
		{
			ID:              "quick-stretch",
			Name:            "Quick Desk Break",
			Description:     "Perfect for a quick stretch during work breaks",
			Difficulty:      model.Beginner,
			DurationMinutes: 10,
			PoseIDs:         []string{"mountain-pose", "cobra-pose", "child-pose"},
			ImageURL:        "https://images.unsplash.com/photo-1588286840104-8957b019727f?w=600",
			Category:        "Quick",
		},
	}
}
