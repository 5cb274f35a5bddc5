package scoring_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/okian/poseflow/internal/domain/model"
	scoring "github.com/okian/poseflow/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

// standingFrame returns a full 33-point frame of a person standing square to
// the camera, with every key joint at the given visibility.
func standingFrame(visibility float64) model.Landmarks {
	frame := make(model.Landmarks, model.NumLandmarks)
	set := func(idx int, x, y float64) {
		frame[idx] = &model.Landmark{X: x, Y: y, Visibility: visibility}
	}
	set(model.LeftShoulder, 0.45, 0.30)
	set(model.RightShoulder, 0.55, 0.30)
	set(model.LeftElbow, 0.43, 0.45)
	set(model.RightElbow, 0.57, 0.45)
	set(model.LeftWrist, 0.44, 0.60)
	set(model.RightWrist, 0.56, 0.60)
	set(model.LeftHip, 0.47, 0.60)
	set(model.RightHip, 0.53, 0.60)
	set(model.LeftKnee, 0.47, 0.75)
	set(model.RightKnee, 0.53, 0.75)
	set(model.LeftAnkle, 0.47, 0.90)
	set(model.RightAnkle, 0.53, 0.90)
	return frame
}

func score(pose model.Pose, frame model.Landmarks) scoring.Result {
	res, err := scoring.NewHeuristicScorer().Score(context.Background(), scoring.Input{Pose: pose, Landmarks: frame})
	So(err, ShouldBeNil)
	return res
}

func TestComputeAccuracy_BaseScore(t *testing.T) {
	Convey("Given the accuracy scorer", t, func() {
		cobra := model.Pose{ID: "cobra-pose", Name: "Cobra Pose (Bhujangasana)"}

		Convey("When the frame is nil or empty", func() {
			Convey("Then the score is zero", func() {
				So(scoring.ComputeAccuracy(nil, cobra), ShouldEqual, 0)
				So(scoring.ComputeAccuracy(model.Landmarks{}, cobra), ShouldEqual, 0)
				So(scoring.ComputeAccuracy(make(model.Landmarks, model.NumLandmarks), cobra), ShouldEqual, 0)
			})

			Convey("Then a frame of absent points is neutral", func() {
				tree := model.Pose{ID: "tree-pose", Name: "Tree Pose"}
				res := score(tree, make(model.Landmarks, model.NumLandmarks))
				So(res.Accuracy, ShouldEqual, 0)
				So(res.VisibleLandmarks, ShouldEqual, 0)
				So(res.Multiplier, ShouldEqual, 1)
			})
		})

		Convey("When no key joint is visible above the threshold", func() {
			frame := standingFrame(0.5)
			frame[model.LeftKnee].Visibility = 0.2
			frame[model.Nose] = &model.Landmark{X: 0.5, Y: 0.1, Visibility: 1}

			Convey("Then the score is exactly zero", func() {
				So(scoring.ComputeAccuracy(frame, cobra), ShouldEqual, 0)
				res := score(cobra, frame)
				So(res.VisibleLandmarks, ShouldEqual, 0)
				So(res.Multiplier, ShouldEqual, 1)
			})
		})

		Convey("When every key joint is fully visible for an unmatched pose", func() {
			Convey("Then the multiplier is neutral and the score is 100", func() {
				res := score(cobra, standingFrame(1))
				So(res.Family, ShouldEqual, model.FamilyNone)
				So(res.Multiplier, ShouldEqual, 1)
				So(res.VisibleLandmarks, ShouldEqual, 12)
				So(res.Accuracy, ShouldAlmostEqual, 100)
			})
		})

		Convey("When only half of the key joints are visible", func() {
			frame := standingFrame(0.9)
			for _, idx := range []int{model.LeftHip, model.RightHip, model.LeftKnee, model.RightKnee, model.LeftAnkle} {
				frame[idx] = nil
			}
			frame[model.RightAnkle].Visibility = 0.3

			Convey("Then the total is divided by all twelve key joints", func() {
				res := score(cobra, frame)
				So(res.VisibleLandmarks, ShouldEqual, 6)
				So(res.BaseScore, ShouldAlmostEqual, 45)
				So(res.Accuracy, ShouldAlmostEqual, 45)
			})
		})

		Convey("When the frame is shorter than 33 points", func() {
			frame := standingFrame(1)[:15]

			Convey("Then missing indices are treated as absent", func() {
				So(func() { scoring.ComputeAccuracy(frame, cobra) }, ShouldNotPanic)
				So(scoring.ComputeAccuracy(frame, cobra), ShouldAlmostEqual, 100.0*4/12)
			})
		})

		Convey("When visibility values are out of range", func() {
			frame := standingFrame(5)
			frame[model.LeftWrist].Visibility = math.NaN()

			Convey("Then the score is still clamped to [0, 100]", func() {
				acc := scoring.ComputeAccuracy(frame, model.Pose{Name: "Mountain Pose"})
				So(acc, ShouldBeBetweenOrEqual, 0, 100)
				So(acc, ShouldEqual, 100)
			})
		})
	})
}

func TestComputeAccuracy_Families(t *testing.T) {
	Convey("Given a standing frame at visibility 0.6", t, func() {
		frame := standingFrame(0.6)

		Convey("When scoring a mountain pose with level shoulders and hips", func() {
			res := score(model.Pose{Name: "Mountain Pose (Tadasana)"}, frame)

			Convey("Then both sub-scores are at their maximum", func() {
				So(res.Family, ShouldEqual, model.FamilyMountain)
				So(res.Multiplier, ShouldAlmostEqual, 1.25)
				So(res.BaseScore, ShouldAlmostEqual, 60)
				So(res.Accuracy, ShouldAlmostEqual, 75)
			})
		})

		Convey("When the mountain pose has tilted shoulders", func() {
			frame[model.RightShoulder].Y = 0.45
			res := score(model.Pose{Name: "mountain"}, frame)

			Convey("Then only the hip sub-score contributes", func() {
				So(res.Multiplier, ShouldAlmostEqual, 1.1)
			})
		})

		Convey("When the mountain pose is missing a hip", func() {
			frame[model.LeftHip] = nil
			res := score(model.Pose{Name: "mountain"}, frame)

			Convey("Then the multiplier is neutral", func() {
				So(res.Multiplier, ShouldEqual, 1)
			})
		})

		Convey("When scoring a tree pose with one foot raised", func() {
			frame[model.RightAnkle].Y = 0.4
			res := score(model.Pose{Name: "Tree Pose"}, frame)

			Convey("Then the balance bonus saturates at 1.5", func() {
				So(res.Family, ShouldEqual, model.FamilyTree)
				So(res.Multiplier, ShouldAlmostEqual, 1.5)
			})
		})

		Convey("When scoring a tree pose with feet level", func() {
			res := score(model.Pose{Name: "Tree Pose"}, frame)
			So(res.Multiplier, ShouldAlmostEqual, 1)
		})

		Convey("When scoring a tree pose without knees", func() {
			frame[model.LeftKnee] = nil
			frame[model.RightAnkle].Y = 0.4
			res := score(model.Pose{Name: "Tree Pose"}, frame)
			So(res.Multiplier, ShouldEqual, 1)
		})

		Convey("When scoring a warrior pose with identical legs", func() {
			res := score(model.Pose{Name: "Warrior I"}, frame)

			Convey("Then the multiplier is exactly 1", func() {
				So(res.Family, ShouldEqual, model.FamilyWarrior)
				So(res.Multiplier, ShouldAlmostEqual, 1)
			})
		})

		Convey("When scoring a warrior pose with one knee bent 90 degrees", func() {
			frame[model.RightAnkle].X = 0.73
			frame[model.RightAnkle].Y = 0.75
			res := score(model.Pose{Name: "Warrior I"}, frame)

			Convey("Then the multiplier is clamped at 1.4", func() {
				So(res.Multiplier, ShouldAlmostEqual, 1.4)
			})
		})

		Convey("When scoring a warrior pose with coincident hip and knee", func() {
			frame[model.LeftKnee].X = frame[model.LeftHip].X
			frame[model.LeftKnee].Y = frame[model.LeftHip].Y
			res := score(model.Pose{Name: "Warrior II"}, frame)

			Convey("Then the undefined angle yields a neutral multiplier", func() {
				So(res.Multiplier, ShouldEqual, 1)
				So(math.IsNaN(res.Accuracy), ShouldBeFalse)
			})
		})

		Convey("When scoring a downward dog with hips above shoulders", func() {
			frame[model.LeftHip].Y = 0.2
			frame[model.RightHip].Y = 0.2
			res := score(model.Pose{Name: "Downward-Facing Dog"}, frame)

			Convey("Then the inversion bonus applies", func() {
				So(res.Family, ShouldEqual, model.FamilyDownwardDog)
				So(res.Multiplier, ShouldAlmostEqual, 1.3)
			})
		})

		Convey("When scoring a downward dog standing upright", func() {
			res := score(model.Pose{Name: "Downward-Facing Dog"}, frame)
			So(res.Multiplier, ShouldEqual, 1)
		})

		Convey("When scoring a triangle pose with arms extended", func() {
			frame[model.LeftWrist].X = 0.2
			frame[model.RightWrist].X = 0.8
			res := score(model.Pose{Name: "Triangle Pose"}, frame)

			Convey("Then the extension bonus applies", func() {
				So(res.Family, ShouldEqual, model.FamilyTriangle)
				So(res.Multiplier, ShouldAlmostEqual, 1.3)
			})
		})

		Convey("When scoring a triangle pose with arms at the sides", func() {
			res := score(model.Pose{Name: "Triangle Pose"}, frame)
			So(res.Multiplier, ShouldEqual, 1)
		})

		Convey("When the pose carries an explicit family", func() {
			frame[model.RightAnkle].Y = 0.4
			res := score(model.Pose{Name: "Vrksasana", Family: model.FamilyTree}, frame)

			Convey("Then the family wins over name matching", func() {
				So(res.Family, ShouldEqual, model.FamilyTree)
				So(res.Multiplier, ShouldAlmostEqual, 1.5)
			})
		})
	})
}

func TestClassify(t *testing.T) {
	Convey("Given pose names", t, func() {
		So(scoring.Classify("Mountain Pose (Tadasana)"), ShouldEqual, model.FamilyMountain)
		So(scoring.Classify("TREE"), ShouldEqual, model.FamilyTree)
		So(scoring.Classify("Warrior I (Virabhadrasana I)"), ShouldEqual, model.FamilyWarrior)
		So(scoring.Classify("Downward-Facing Dog"), ShouldEqual, model.FamilyDownwardDog)
		So(scoring.Classify("Triangle Pose"), ShouldEqual, model.FamilyTriangle)
		So(scoring.Classify("Child's Pose"), ShouldEqual, model.FamilyNone)
		So(scoring.Classify(""), ShouldEqual, model.FamilyNone)

		Convey("Names matching several keywords resolve by priority", func() {
			So(scoring.Classify("Warrior on a mountain"), ShouldEqual, model.FamilyMountain)
			So(scoring.Classify("triangle tree"), ShouldEqual, model.FamilyTree)
		})
	})
}

func TestAngle(t *testing.T) {
	Convey("Given three points", t, func() {
		pt := func(x, y float64) model.Landmark { return model.Landmark{X: x, Y: y} }

		Convey("When they form a right angle", func() {
			angle, err := scoring.Angle(pt(0, 1), pt(0, 0), pt(1, 0))
			So(err, ShouldBeNil)
			So(angle, ShouldAlmostEqual, 90)
		})

		Convey("When they are collinear with the vertex in the middle", func() {
			angle, err := scoring.Angle(pt(0, 0), pt(1, 0), pt(2, 0))
			So(err, ShouldBeNil)
			So(angle, ShouldAlmostEqual, 180)
		})

		Convey("When they are collinear with the vertex at one end", func() {
			angle, err := scoring.Angle(pt(0, 0), pt(1, 0), pt(0.5, 0))
			So(err, ShouldBeNil)
			So(angle, ShouldAlmostEqual, 0)
		})

		Convey("When rounding pushes the cosine out of range", func() {
			angle, err := scoring.Angle(pt(0.1, 0.1), pt(0.2, 0.2), pt(0.3, 0.3))
			So(err, ShouldBeNil)
			So(math.IsNaN(angle), ShouldBeFalse)
			So(angle, ShouldAlmostEqual, 180, 1e-6)
		})

		Convey("When two points coincide", func() {
			_, err := scoring.Angle(pt(0, 0), pt(0, 0), pt(1, 1))
			So(err, ShouldEqual, scoring.ErrDegenerateAngle)
		})

		Convey("When a coordinate is not finite", func() {
			_, err := scoring.Angle(pt(math.NaN(), 0), pt(0, 0), pt(1, 1))
			So(err, ShouldEqual, scoring.ErrDegenerateAngle)
		})
	})
}

func TestEstimateCalories(t *testing.T) {
	Convey("Given a pose with MET 3.5", t, func() {
		pose := model.Pose{ID: "downward-dog", MET: 3.5}

		Convey("When held for 30 minutes at 70kg", func() {
			cal, err := scoring.EstimateCalories(pose, 30, scoring.DefaultBodyWeightKg)
			So(err, ShouldBeNil)
			So(cal, ShouldEqual, 123)
		})

		Convey("When held for zero minutes", func() {
			cal, err := scoring.EstimateCalories(pose, 0, 70)
			So(err, ShouldBeNil)
			So(cal, ShouldEqual, 0)
		})

		Convey("When the duration is negative", func() {
			_, err := scoring.EstimateCalories(pose, -5, 70)
			So(err, ShouldEqual, scoring.ErrNegativeDuration)
		})

		Convey("When the duration is not finite", func() {
			_, err := scoring.EstimateCalories(pose, math.NaN(), 70)
			So(err, ShouldEqual, scoring.ErrInvalidDuration)
			_, err = scoring.EstimateCalories(pose, math.Inf(1), 70)
			So(err, ShouldEqual, scoring.ErrInvalidDuration)
		})

		Convey("When the body weight is not positive", func() {
			_, err := scoring.EstimateCalories(pose, 10, 0)
			So(err, ShouldEqual, scoring.ErrInvalidBodyWeight)
		})

		Convey("When the MET value is negative", func() {
			_, err := scoring.EstimateCalories(model.Pose{MET: -1}, 10, 70)
			So(err, ShouldEqual, scoring.ErrInvalidMET)
		})
	})
}

func TestGenerateFeedback(t *testing.T) {
	Convey("Given accuracy scores and pose names", t, func() {
		Convey("When a mountain pose scores 40", func() {
			fb := scoring.GenerateFeedback(40, "Mountain Pose")

			Convey("Then two generic messages precede the first mountain tip", func() {
				So(fb, ShouldResemble, []string{
					"Check your pose alignment with the instructions",
					"Make sure you're clearly visible in the camera",
					"Keep your shoulders level and relaxed",
				})
			})
		})

		Convey("When a tree pose scores 60", func() {
			fb := scoring.GenerateFeedback(60, "Tree Pose (Vrksasana)")
			So(fb, ShouldResemble, []string{
				"Almost there! Fine-tune your position",
				"Find a focal point to help with balance",
				"Press your foot firmly into your standing leg",
			})
		})

		Convey("When a warrior pose scores 78", func() {
			fb := scoring.GenerateFeedback(78, "Warrior I")
			So(fb, ShouldResemble, []string{
				"Great pose! Hold it steady",
				"Keep your front knee over your ankle",
				"Extend your arms strongly",
			})
		})

		Convey("When a mountain pose scores 80 or more", func() {
			So(scoring.GenerateFeedback(80, "Mountain Pose"), ShouldResemble, []string{"Great pose! Hold it steady"})
		})

		Convey("When a pose without tips scores low", func() {
			fb := scoring.GenerateFeedback(10, "Downward-Facing Dog")
			So(fb, ShouldHaveLength, 2)
		})

		Convey("When scores sit on band boundaries", func() {
			So(scoring.GenerateFeedback(50, "Cobra")[0], ShouldEqual, "Almost there! Fine-tune your position")
			So(scoring.GenerateFeedback(75, "Cobra")[0], ShouldEqual, "Great pose! Hold it steady")
		})
	})
}

func TestHeuristicScorer(t *testing.T) {
	Convey("Given a heuristic scorer with a custom body weight", t, func() {
		scorer := scoring.NewHeuristicScorer(scoring.WithBodyWeight(80))
		So(scorer.BodyWeight(), ShouldEqual, 80)

		Convey("When estimating calories", func() {
			cal, err := scorer.Calories(context.Background(), model.Pose{MET: 3}, 60)
			So(err, ShouldBeNil)
			So(cal, ShouldEqual, 240)
		})

		Convey("When the context is cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			_, err := scorer.Score(ctx, scoring.Input{Pose: model.Pose{Name: "Tree"}, Landmarks: standingFrame(1)})
			So(err, ShouldNotBeNil)
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
		})

		Convey("When the result is returned", func() {
			res, err := scorer.Score(context.Background(), scoring.Input{
				Pose:      model.Pose{ID: "mountain-pose", Name: "Mountain Pose"},
				Landmarks: standingFrame(0.4),
			})
			So(err, ShouldBeNil)
			So(res.PoseID, ShouldEqual, "mountain-pose")
			So(res.Accuracy, ShouldEqual, 0)
			So(res.Feedback, ShouldHaveLength, 3)
		})
	})

	Convey("Given an invalid body weight option", t, func() {
		scorer := scoring.NewHeuristicScorer(scoring.WithBodyWeight(-3))
		So(scorer.BodyWeight(), ShouldEqual, scoring.DefaultBodyWeightKg)
	})
}
