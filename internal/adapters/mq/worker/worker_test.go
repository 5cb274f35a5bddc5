package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/okian/poseflow/internal/adapters/mq/queue"
	"github.com/okian/poseflow/internal/adapters/mq/worker"
	"github.com/okian/poseflow/internal/domain/model"
	"github.com/okian/poseflow/internal/domain/scoring"
	"github.com/smartystreets/goconvey/convey"
)

type stubPoses struct {
	missing string
}

func (s stubPoses) ResolvePose(_ context.Context, job model.AttemptJob) (model.Pose, error) {
	if job.PoseID == s.missing {
		return model.Pose{}, errors.New("unknown pose")
	}
	return model.Pose{ID: job.PoseID, Name: job.PoseID, Family: model.FamilyTree}, nil
}

type stubScorer struct {
	fail string
}

func (s stubScorer) Score(_ context.Context, in scoring.Input) (scoring.Result, error) {
	if in.Pose.ID == s.fail {
		return scoring.Result{}, errors.New("scoring failed")
	}
	return scoring.Result{PoseID: in.Pose.ID, Family: in.Pose.Family, Accuracy: 88, Feedback: []string{"Good form!"}}, nil
}

type memRecorder struct {
	mu       sync.Mutex
	attempts map[string][]model.Attempt
}

func (m *memRecorder) AppendAttempt(_ context.Context, sessionID string, a model.Attempt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.attempts == nil {
		m.attempts = make(map[string][]model.Attempt)
	}
	m.attempts[sessionID] = append(m.attempts[sessionID], a)
	return nil
}

func (m *memRecorder) count(sessionID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.attempts[sessionID])
}

func TestPool(t *testing.T) {
	convey.Convey("Given a pool reading from a queue", t, func() {
		ctx := context.Background()
		q := queue.NewInMemoryQueue(queue.WithCapacity(16))
		rec := &memRecorder{}
		p := worker.NewPool(q, stubPoses{missing: "ghost"}, stubScorer{fail: "broken"}, rec, worker.WithWorkers(3))
		convey.So(p.Size(), convey.ShouldEqual, 3)
		p.Start(ctx)

		convey.Convey("When attempts are queued and the queue is closed", func() {
			for _, id := range []string{"a-1", "a-2", "a-3", "a-4"} {
				convey.So(q.Enqueue(ctx, model.AttemptJob{AttemptID: id, SessionID: "s-1", PoseID: "tree"}), convey.ShouldBeNil)
			}
			convey.So(q.Enqueue(ctx, model.AttemptJob{AttemptID: "x-1", SessionID: "s-1", PoseID: "ghost"}), convey.ShouldBeNil)
			convey.So(q.Enqueue(ctx, model.AttemptJob{AttemptID: "x-2", SessionID: "s-1", PoseID: "broken"}), convey.ShouldBeNil)
			convey.So(q.Close(), convey.ShouldBeNil)

			sctx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			err := p.Shutdown(sctx)

			convey.Convey("Then every scorable attempt is recorded before shutdown returns", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(rec.count("s-1"), convey.ShouldEqual, 4)
			})
		})
	})

	convey.Convey("Given a pool with a processed hook", t, func() {
		ctx := context.Background()
		q := queue.NewInMemoryQueue(queue.WithCapacity(4))
		var (
			mu     sync.Mutex
			failed = map[string]bool{}
		)
		p := worker.NewPool(q, stubPoses{missing: "ghost"}, stubScorer{}, &memRecorder{},
			worker.WithWorkers(2),
			worker.WithOnProcessed(func(job model.AttemptJob, err error) {
				mu.Lock()
				defer mu.Unlock()
				failed[job.AttemptID] = err != nil
			}),
		)
		p.Start(ctx)

		convey.Convey("When one job records and one fails", func() {
			convey.So(q.Enqueue(ctx, model.AttemptJob{AttemptID: "ok", SessionID: "s-1", PoseID: "tree"}), convey.ShouldBeNil)
			convey.So(q.Enqueue(ctx, model.AttemptJob{AttemptID: "bad", SessionID: "s-1", PoseID: "ghost"}), convey.ShouldBeNil)
			convey.So(q.Close(), convey.ShouldBeNil)

			sctx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			convey.So(p.Shutdown(sctx), convey.ShouldBeNil)

			convey.Convey("Then the hook saw both with their outcome", func() {
				mu.Lock()
				defer mu.Unlock()
				convey.So(failed, convey.ShouldResemble, map[string]bool{"ok": false, "bad": true})
			})
		})
	})

	convey.Convey("Given workers that never see the source close", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(1))
		p := worker.NewPool(q, stubPoses{}, stubScorer{}, &memRecorder{}, worker.WithWorkers(1))
		p.Start(context.Background())

		convey.Convey("When shutdown expires", func() {
			sctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
			defer cancel()
			err := p.Shutdown(sctx)

			convey.Convey("Then it reports a timeout", func() {
				convey.So(errors.Is(err, worker.ErrShutdownTimeout), convey.ShouldBeTrue)
			})
		})
	})
}

func TestNewAttempt(t *testing.T) {
	convey.Convey("Given a scored job", t, func() {
		now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
		pose := model.Pose{ID: "tree"}
		res := scoring.Result{Accuracy: 91.5, Feedback: []string{"Excellent form! Keep it up!"}}

		convey.Convey("When both timestamps are set", func() {
			job := model.AttemptJob{AttemptID: "a-1", StartedAt: now.Add(-30 * time.Second), EndedAt: now}
			a := worker.NewAttempt(job, pose, res, now.Add(time.Hour))

			convey.So(a.ID, convey.ShouldEqual, "a-1")
			convey.So(a.PoseID, convey.ShouldEqual, "tree")
			convey.So(a.Duration, convey.ShouldEqual, 30.0)
			convey.So(a.Accuracy, convey.ShouldEqual, 91.5)
			convey.So(a.Feedback, convey.ShouldResemble, res.Feedback)
		})

		convey.Convey("When timestamps are missing", func() {
			a := worker.NewAttempt(model.AttemptJob{AttemptID: "a-2"}, pose, res, now)

			convey.So(a.EndedAt, convey.ShouldEqual, now)
			convey.So(a.StartedAt, convey.ShouldEqual, now)
			convey.So(a.Duration, convey.ShouldEqual, 0.0)
		})

		convey.Convey("When the start is after the end", func() {
			a := worker.NewAttempt(model.AttemptJob{StartedAt: now.Add(time.Minute), EndedAt: now}, pose, res, now)
			convey.So(a.Duration, convey.ShouldEqual, 0.0)
		})
	})
}
