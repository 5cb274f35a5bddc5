package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/okian/poseflow/internal/adapters/repository"
	service "github.com/okian/poseflow/internal/app"
	"github.com/okian/poseflow/internal/domain/catalog"
	"github.com/okian/poseflow/internal/domain/model"
	"github.com/okian/poseflow/internal/domain/progress"
	"github.com/okian/poseflow/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

var start = time.Date(2026, 3, 2, 7, 30, 0, 0, time.UTC)

// frame returns a full 33-point frame with every landmark visible.
func frame() model.Landmarks {
	lm := make(model.Landmarks, model.NumLandmarks)
	for i := range lm {
		lm[i] = &model.Landmark{X: 0.5, Y: float64(i) / model.NumLandmarks, Visibility: 0.9}
	}
	return lm
}

func newStarted(opts ...service.Option) *service.Service {
	opts = append([]service.Option{
		service.WithWorkerCount(2),
		service.WithClock(func() time.Time { return start }),
	}, opts...)
	svc := service.New(opts...)
	So(svc.Start(context.Background()), ShouldBeNil)
	return svc
}

func waitForAttempts(svc *service.Service, sessionID string, n int) model.Session {
	deadline := time.Now().Add(5 * time.Second)
	for {
		sess, err := svc.Session(context.Background(), sessionID)
		So(err, ShouldBeNil)
		if len(sess.Attempts) >= n || time.Now().After(deadline) {
			return sess
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestService_Lifecycle(t *testing.T) {
	Convey("Given a new service", t, func() {
		svc := service.New(service.WithWorkerCount(3), service.WithQueueSize(50), service.WithDedupeSize(10), service.WithShardCount(2))

		Convey("Then it reports itself stopped", func() {
			stats := svc.GetStats()
			So(stats["started"], ShouldEqual, false)
			So(stats["workerCount"], ShouldEqual, 3)
			So(stats["poses"], ShouldEqual, 8)
		})

		Convey("When it is started", func() {
			So(svc.Start(context.Background()), ShouldBeNil)
			So(svc.Start(context.Background()), ShouldBeNil)
			stats := svc.GetStats()

			Convey("Then the pipeline is reported", func() {
				So(stats["started"], ShouldEqual, true)
				So(stats["queueLength"], ShouldEqual, 0)
				So(stats["sessions"], ShouldEqual, 0)
			})

			Convey("And stopped", func() {
				svc.Stop()
				svc.Stop()
				So(svc.GetStats()["started"], ShouldEqual, false)
			})
		})

		Convey("When started with a cancelled context", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			err := svc.Start(ctx)

			Convey("Then it stays stopped", func() {
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
				So(svc.GetStats()["started"], ShouldEqual, false)
			})
		})

		Convey("When submitting before start", func() {
			_, err := svc.SubmitAttempt(context.Background(), "s-1", model.AttemptJob{PoseID: "tree-pose"})
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
		})
	})
}

func TestService_Sessions(t *testing.T) {
	Convey("Given a started service", t, func() {
		ctx := context.Background()
		svc := newStarted()
		defer svc.Stop()

		Convey("When starting a session with bad input", func() {
			_, err := svc.StartSession(ctx, " ", "morning-flow")
			So(errors.Is(err, service.ErrInvalidInput), ShouldBeTrue)

			_, err = svc.StartSession(ctx, "ana", "midnight-flow")
			So(errors.Is(err, catalog.ErrRoutineNotFound), ShouldBeTrue)
		})

		Convey("When a session is started", func() {
			sess, err := svc.StartSession(ctx, "ana", "morning-flow")
			So(err, ShouldBeNil)
			So(sess.ID, ShouldNotBeEmpty)
			So(sess.StartedAt, ShouldEqual, start)

			Convey("And attempts are submitted", func() {
				first, err := svc.SubmitAttempt(ctx, sess.ID, model.AttemptJob{AttemptID: "a-1", PoseID: "mountain-pose", Landmarks: frame()})
				So(err, ShouldBeNil)
				So(first.Duplicate, ShouldBeFalse)

				second, err := svc.SubmitAttempt(ctx, sess.ID, model.AttemptJob{PoseName: "Cobra Pose", Landmarks: frame()})
				So(err, ShouldBeNil)
				So(second.AttemptID, ShouldNotBeEmpty)

				again, err := svc.SubmitAttempt(ctx, sess.ID, model.AttemptJob{AttemptID: "a-1", PoseID: "mountain-pose", Landmarks: frame()})
				So(err, ShouldBeNil)
				So(again.Duplicate, ShouldBeTrue)

				got := waitForAttempts(svc, sess.ID, 2)

				Convey("Then each unique attempt is scored once", func() {
					So(got.Attempts, ShouldHaveLength, 2)
					for _, a := range got.Attempts {
						So(a.Accuracy, ShouldBeBetweenOrEqual, 0, 100)
						So(a.Feedback, ShouldNotBeEmpty)
					}
				})

				Convey("Then completing derives score and calories", func() {
					done, err := svc.CompleteSession(ctx, sess.ID, start.Add(20*time.Minute))
					So(err, ShouldBeNil)
					So(done.Completed, ShouldBeTrue)
					So(done.TotalScore, ShouldEqual, progress.SessionScore(got.Attempts))
					// mean MET of morning-flow is 2.75; 2.75 * 70 * 20/60 = 64.2
					So(done.Calories, ShouldEqual, 64)

					_, err = svc.CompleteSession(ctx, sess.ID, start.Add(time.Hour))
					So(errors.Is(err, repository.ErrSessionCompleted), ShouldBeTrue)

					_, err = svc.SubmitAttempt(ctx, sess.ID, model.AttemptJob{PoseID: "tree-pose"})
					So(errors.Is(err, repository.ErrSessionCompleted), ShouldBeTrue)

					Convey("And the user's progress reflects it", func() {
						stats, err := svc.UserStats(ctx, "ana")
						So(err, ShouldBeNil)
						So(stats.TotalSessions, ShouldEqual, 1)
						So(stats.TotalMinutes, ShouldEqual, 20)
						So(stats.CaloriesBurned, ShouldEqual, 64)
						So(stats.Streak.Current, ShouldEqual, 1)
						So(stats.ThisWeek.Sessions, ShouldEqual, 1)

						weeks, err := svc.UserProgress(ctx, "ana")
						So(err, ShouldBeNil)
						So(weeks, ShouldHaveLength, 1)
						So(weeks[0].Week, ShouldEqual, "2026-03-01")

						achievements, err := svc.UserAchievements(ctx, "ana")
						So(err, ShouldBeNil)
						So(achievements[0].ID, ShouldEqual, "first-session")
						So(achievements[0].Unlocked, ShouldBeTrue)
					})
				})
			})

			Convey("And attempts are invalid", func() {
				_, err := svc.SubmitAttempt(ctx, sess.ID, model.AttemptJob{PoseID: "handstand"})
				So(errors.Is(err, catalog.ErrPoseNotFound), ShouldBeTrue)

				_, err = svc.SubmitAttempt(ctx, sess.ID, model.AttemptJob{})
				So(errors.Is(err, service.ErrInvalidInput), ShouldBeTrue)

				_, err = svc.SubmitAttempt(ctx, "missing", model.AttemptJob{PoseID: "tree-pose"})
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})

			Convey("And it is completed without attempts", func() {
				done, err := svc.CompleteSession(ctx, sess.ID, time.Time{})
				So(err, ShouldBeNil)
				So(done.TotalScore, ShouldEqual, 0)
				So(done.Calories, ShouldEqual, 0)
			})

			Convey("And it is completed before it started", func() {
				_, err := svc.CompleteSession(ctx, sess.ID, start.Add(-time.Minute))
				So(errors.Is(err, service.ErrInvalidInput), ShouldBeTrue)
				So(errors.Is(err, scoring.ErrNegativeDuration), ShouldBeTrue)
			})
		})

		Convey("When a user has no history", func() {
			list, err := svc.UserSessions(ctx, "nobody")
			So(err, ShouldBeNil)
			So(list, ShouldBeEmpty)

			stats, err := svc.UserStats(ctx, "nobody")
			So(err, ShouldBeNil)
			So(stats.TotalSessions, ShouldEqual, 0)
		})
	})
}

// gatedStore blocks AppendAttempt until release is closed.
type gatedStore struct {
	*repository.MemoryStore
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (g *gatedStore) AppendAttempt(ctx context.Context, id string, a model.Attempt) error {
	g.once.Do(func() { close(g.entered) })
	<-g.release
	return g.MemoryStore.AppendAttempt(ctx, id, a)
}

func TestService_Backpressure(t *testing.T) {
	Convey("Given a single busy worker and a queue of one", t, func() {
		ctx := context.Background()
		store := &gatedStore{
			MemoryStore: repository.NewMemoryStore(),
			entered:     make(chan struct{}),
			release:     make(chan struct{}),
		}
		svc := newStarted(service.WithWorkerCount(1), service.WithQueueSize(1), service.WithStore(store))
		defer svc.Stop()
		defer close(store.release)

		sess, err := svc.StartSession(ctx, "ben", "quick-stretch")
		So(err, ShouldBeNil)

		_, err = svc.SubmitAttempt(ctx, sess.ID, model.AttemptJob{AttemptID: "a-1", PoseID: "mountain-pose"})
		So(err, ShouldBeNil)
		<-store.entered
		_, err = svc.SubmitAttempt(ctx, sess.ID, model.AttemptJob{AttemptID: "a-2", PoseID: "mountain-pose"})
		So(err, ShouldBeNil)

		Convey("When the next attempt arrives", func() {
			_, err := svc.SubmitAttempt(ctx, sess.ID, model.AttemptJob{AttemptID: "a-3", PoseID: "mountain-pose"})

			Convey("Then it is rejected and can be retried later", func() {
				So(errors.Is(err, service.ErrBackpressure), ShouldBeTrue)
				retry, err := svc.SubmitAttempt(ctx, sess.ID, model.AttemptJob{AttemptID: "a-3", PoseID: "mountain-pose"})
				So(errors.Is(err, service.ErrBackpressure), ShouldBeTrue)
				So(retry.Duplicate, ShouldBeFalse)
			})
		})
	})
}

func TestService_CompleteWaitsForAttempts(t *testing.T) {
	Convey("Given a service with one worker", t, func() {
		ctx := context.Background()
		svc := newStarted(service.WithWorkerCount(1))
		defer svc.Stop()

		Convey("When sessions are completed right after their attempts are accepted", func() {
			for i := 0; i < 50; i++ {
				sess, err := svc.StartSession(ctx, "cai", "quick-stretch")
				So(err, ShouldBeNil)
				for _, id := range []string{"a-1", "a-2", "a-3"} {
					_, err := svc.SubmitAttempt(ctx, sess.ID, model.AttemptJob{AttemptID: id, PoseID: "mountain-pose", Landmarks: frame()})
					So(err, ShouldBeNil)
				}

				done, err := svc.CompleteSession(ctx, sess.ID, start.Add(10*time.Minute))

				So(err, ShouldBeNil)
				So(done.Attempts, ShouldHaveLength, 3)
				So(done.TotalScore, ShouldEqual, progress.SessionScore(done.Attempts))
			}

			Convey("Then nothing is left pending", func() {
				So(svc.GetStats()["attemptsPending"], ShouldEqual, 0)
			})
		})
	})

	Convey("Given a worker stuck recording an attempt", t, func() {
		ctx := context.Background()
		store := &gatedStore{
			MemoryStore: repository.NewMemoryStore(),
			entered:     make(chan struct{}),
			release:     make(chan struct{}),
		}
		svc := newStarted(service.WithWorkerCount(1), service.WithStore(store), service.WithDrainTimeout(250*time.Millisecond))
		defer svc.Stop()

		sess, err := svc.StartSession(ctx, "dee", "quick-stretch")
		So(err, ShouldBeNil)
		_, err = svc.SubmitAttempt(ctx, sess.ID, model.AttemptJob{AttemptID: "a-1", PoseID: "mountain-pose", Landmarks: frame()})
		So(err, ShouldBeNil)
		<-store.entered

		Convey("When the session is completed before the attempt lands", func() {
			_, err := svc.CompleteSession(ctx, sess.ID, start.Add(5*time.Minute))

			Convey("Then completion reports pending attempts and leaves the session open", func() {
				So(errors.Is(err, service.ErrAttemptsPending), ShouldBeTrue)
				So(errors.Is(err, context.DeadlineExceeded), ShouldBeTrue)

				open, err := svc.Session(ctx, sess.ID)
				So(err, ShouldBeNil)
				So(open.Completed, ShouldBeFalse)

				Convey("And a retry after the worker finishes includes the attempt", func() {
					close(store.release)
					done, err := svc.CompleteSession(ctx, sess.ID, start.Add(5*time.Minute))
					So(err, ShouldBeNil)
					So(done.Attempts, ShouldHaveLength, 1)
					So(done.Attempts[0].ID, ShouldEqual, "a-1")
					So(done.TotalScore, ShouldEqual, progress.SessionScore(done.Attempts))
				})
			})
		})
	})
}

func TestService_Scoring(t *testing.T) {
	Convey("Given a service", t, func() {
		ctx := context.Background()
		svc := service.New(service.WithBodyWeight(80))

		Convey("When scoring an ad-hoc pose name", func() {
			res, err := svc.Score(ctx, service.ScoreRequest{PoseName: "Half Tree Pose", Landmarks: frame()})
			So(err, ShouldBeNil)
			So(res.Family, ShouldEqual, model.FamilyTree)
			So(res.VisibleLandmarks, ShouldEqual, 12)
		})

		Convey("When scoring without a pose", func() {
			_, err := svc.Score(ctx, service.ScoreRequest{Landmarks: frame()})
			So(errors.Is(err, service.ErrInvalidInput), ShouldBeTrue)
		})

		Convey("When estimating calories", func() {
			cal, err := svc.Calories(ctx, service.CaloriesRequest{PoseID: "plank-pose", DurationMinutes: 10})
			So(err, ShouldBeNil)
			// 4.5 * 80 * 10/60 = 60
			So(cal, ShouldEqual, 60)

			cal, err = svc.Calories(ctx, service.CaloriesRequest{PoseID: "plank-pose", DurationMinutes: 10, BodyWeightKg: 60})
			So(err, ShouldBeNil)
			So(cal, ShouldEqual, 45)

			_, err = svc.Calories(ctx, service.CaloriesRequest{PoseID: "plank-pose", DurationMinutes: -1})
			So(errors.Is(err, service.ErrInvalidInput), ShouldBeTrue)
			So(errors.Is(err, scoring.ErrNegativeDuration), ShouldBeTrue)

			_, err = svc.Calories(ctx, service.CaloriesRequest{PoseID: "nope", DurationMinutes: 1})
			So(errors.Is(err, catalog.ErrPoseNotFound), ShouldBeTrue)
		})

		Convey("When reading a routine", func() {
			r, err := svc.Routine(ctx, "quick-stretch")
			So(err, ShouldBeNil)
			So(r.Poses, ShouldHaveLength, 3)
			So(r.Poses[0].ID, ShouldEqual, "mountain-pose")
		})
	})
}
