package simulate_test

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/poseflow/internal/adapters/http/api"
	app "github.com/okian/poseflow/internal/app"
	"github.com/okian/poseflow/internal/simulate"
)

func TestRun(t *testing.T) {
	Convey("Given a running service", t, func() {
		ctx := context.Background()
		svc := app.New(app.WithWorkerCount(4))
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		r := mux.NewRouter()
		api.NewServer(svc, nil).Register(ctx, r)
		srv := httptest.NewServer(r)
		defer srv.Close()

		Convey("When a simulation runs against it", func() {
			stats, err := simulate.Run(ctx, simulate.Config{
				BaseURL:  srv.URL,
				Users:    3,
				Attempts: 10,
				Workers:  4,
				Timeout:  5 * time.Second,
				Seed:     1,
			})
			So(err, ShouldBeNil)

			Convey("Then every unique attempt is scored once and replays are deduplicated", func() {
				So(stats.Sessions, ShouldEqual, 3)
				So(stats.AttemptsSubmitted, ShouldEqual, 33)
				So(stats.AttemptsAccepted, ShouldEqual, 30)
				So(stats.AttemptsDuplicate, ShouldEqual, 3)
				So(stats.AttemptsFailed, ShouldEqual, 0)
				So(stats.AttemptsScored, ShouldEqual, 30)
				So(stats.SessionsCompleted, ShouldEqual, 3)
				So(stats.AverageScore, ShouldBeBetweenOrEqual, 0, 100)
				So(stats.Calories, ShouldBeGreaterThan, 0)
			})
		})

		Convey("When the service is unreachable", func() {
			_, err := simulate.Run(ctx, simulate.Config{BaseURL: "http://127.0.0.1:1", Users: 1, Timeout: time.Second})
			So(err, ShouldNotBeNil)
		})
	})
}
