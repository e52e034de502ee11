package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	service "github.com/okian/vectordraw/internal/app"
	"github.com/okian/vectordraw/internal/domain/check"
	"github.com/okian/vectordraw/internal/domain/exercise"
	"github.com/okian/vectordraw/internal/domain/geometry"
	"github.com/okian/vectordraw/internal/domain/grader"
	"github.com/okian/vectordraw/internal/domain/model"
	"github.com/okian/vectordraw/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

const inclinedPlaneYAML = `
id: inclined-plane
title: Forces on an inclined plane
success_message: Both forces are drawn correctly.
expected_result:
  N:
    tail: [2, 2]
    tail_tolerance: 0.5
    angle: 45
  mg:
    tail: [2, 2]
    angle: 270
`

func inclinedPlane() exercise.Exercise {
	e, err := exercise.Parse([]byte(inclinedPlaneYAML))
	if err != nil {
		panic(err)
	}
	return e
}

func board(nTip []float64) model.Answer {
	return model.Answer{
		Vectors: map[string]model.VectorState{
			"N":  {Tail: []float64{2, 2}, Tip: nTip},
			"mg": {Tail: []float64{2, 2}, Tip: []float64{2, -2}},
		},
		Points: map[string][]float64{},
	}
}

func started(opts ...service.Option) *service.Service {
	svc := service.New(append([]service.Option{
		service.WithWorkerCount(2),
		service.WithQueueSize(100),
		service.WithExercises(inclinedPlane()),
	}, opts...)...)
	So(svc.Start(context.Background()), ShouldBeNil)
	return svc
}

func TestService_Lifecycle(t *testing.T) {
	Convey("Given a new service", t, func() {
		svc := service.New(service.WithWorkerCount(1), service.WithShardCount(2))

		Convey("Then calls fail before Start", func() {
			_, err := svc.Grade(context.Background(), board([]float64{4, 4}))
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			So(svc.GetStats()["started"], ShouldEqual, false)
		})

		Convey("When started and stopped twice", func() {
			So(svc.Start(context.Background()), ShouldBeNil)
			So(svc.Start(context.Background()), ShouldBeNil)
			stats := svc.GetStats()

			Convey("Then stats report the running components", func() {
				So(stats["started"], ShouldEqual, true)
				So(stats["workerCount"], ShouldEqual, 1)
				So(stats["shardCount"], ShouldEqual, 2)
				So(stats["queueLength"], ShouldEqual, 0)
			})

			svc.Stop()
			svc.Stop()
			So(svc.GetStats()["started"], ShouldEqual, false)
		})
	})

	Convey("Given a service started on a context that is later cancelled", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		svc := service.New(service.WithWorkerCount(1), service.WithExercises(inclinedPlane()))
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()
		cancel()

		Convey("When a board is submitted afterwards", func() {
			rec, _, err := svc.Submit(context.Background(), model.Submission{
				ID:         "after-cancel",
				ExerciseID: "inclined-plane",
				StudentID:  "carol",
				Answer:     board([]float64{4, 4}),
			})
			So(err, ShouldBeNil)
			So(rec.Status, ShouldEqual, model.StatusPending)

			Convey("Then the workers are still running and grade it", func() {
				graded, ok := waitForStatus(svc, "after-cancel", model.StatusGraded)
				So(ok, ShouldBeTrue)
				So(graded.Result.Correct, ShouldBeTrue)
			})
		})
	})

	Convey("Given an invalid exercise", t, func() {
		svc := service.New(service.WithExercises(exercise.Exercise{}))
		So(errors.Is(svc.Start(context.Background()), exercise.ErrInvalidExercise), ShouldBeTrue)
	})
}

func TestService_Grade(t *testing.T) {
	ctx := context.Background()

	Convey("Given a started service", t, func() {
		svc := started(service.WithSuccessMessage("Nice."))
		defer svc.Stop()

		Convey("When a raw answer passes its checks", func() {
			a := board([]float64{4, 4})
			a.Checks = []check.Check{{Kind: check.Presence, Vector: "N"}}
			res, err := svc.Grade(ctx, a)
			So(err, ShouldBeNil)
			So(res, ShouldResemble, model.Result{Correct: true, Msg: "Nice."})
		})

		Convey("When the raw answer has no check list", func() {
			_, err := svc.Grade(ctx, board([]float64{4, 4}))
			So(errors.Is(err, exercise.ErrInvalidAnswer), ShouldBeTrue)
		})

		Convey("When the raw answer uses an unknown check", func() {
			a := board([]float64{4, 4})
			a.Checks = []check.Check{{Kind: "curvature", Vector: "N"}}
			_, err := svc.Grade(ctx, a)
			So(errors.Is(err, grader.ErrUnknownCheck), ShouldBeTrue)
		})
	})
}

func TestService_Check(t *testing.T) {
	ctx := context.Background()

	Convey("Given a started service with the inclined plane exercise", t, func() {
		svc := started()
		defer svc.Stop()

		Convey("Then the exercise is listed without its answer", func() {
			list := svc.Exercises(ctx)
			So(list, ShouldHaveLength, 1)
			So(list[0].ID, ShouldEqual, "inclined-plane")
			So(list[0].Vectors, ShouldResemble, []string{"N", "mg"})
		})

		Convey("When a student draws both forces correctly", func() {
			attempt, err := svc.Check(ctx, "inclined-plane", "alice", board([]float64{4, 4}))

			Convey("Then the exercise success message and full score are returned", func() {
				So(err, ShouldBeNil)
				So(attempt.Result, ShouldResemble, model.Result{Correct: true, Msg: "Both forces are drawn correctly."})
				So(attempt.Score, ShouldEqual, 1.0)
				So(attempt.MaxScore, ShouldEqual, model.MaxScore)
			})

			Convey("Then it becomes the latest attempt", func() {
				latest, err := svc.LatestAttempt(ctx, "inclined-plane", "alice")
				So(err, ShouldBeNil)
				So(latest.Answer.Vectors["N"].Tip, ShouldResemble, []float64{4, 4})
				So(latest.Answer.Checks, ShouldBeNil)
			})
		})

		Convey("When the normal force points the wrong way", func() {
			attempt, err := svc.Check(ctx, "inclined-plane", "bob", board([]float64{4, 0}))
			So(err, ShouldBeNil)
			So(attempt.Result.Correct, ShouldBeFalse)
			So(attempt.Result.Msg, ShouldEqual, "The angle of N is incorrect. Your angle: 315.0")
			So(attempt.Score, ShouldEqual, 0.0)
		})

		Convey("When the client sends its own checks", func() {
			a := board([]float64{4, 0})
			a.Checks = []check.Check{}
			attempt, err := svc.Check(ctx, "inclined-plane", "carol", a)

			Convey("Then they are ignored", func() {
				So(err, ShouldBeNil)
				So(attempt.Result.Correct, ShouldBeFalse)
			})
		})

		Convey("When the exercise is unknown", func() {
			_, err := svc.Check(ctx, "nope", "alice", board([]float64{4, 4}))
			So(errors.Is(err, service.ErrUnknownExercise), ShouldBeTrue)
		})

		Convey("When the board is malformed", func() {
			a := board([]float64{4})
			_, err := svc.Check(ctx, "inclined-plane", "alice", a)
			So(errors.Is(err, exercise.ErrInvalidAnswer), ShouldBeTrue)
		})

		Convey("When no attempt exists", func() {
			_, err := svc.LatestAttempt(ctx, "inclined-plane", "dave")
			So(err, ShouldNotBeNil)
		})
	})
}

func TestService_AddExercise(t *testing.T) {
	Convey("Given a running service with a custom check", t, func() {
		horizontal := func(c check.Check, vectors map[string]geometry.Vector, _ map[string]geometry.Point) error {
			if v := vectors[c.Vector]; v.Tail.Y != v.Tip.Y {
				return check.Fail(c, "not horizontal")
			}
			return nil
		}
		svc := started(service.WithCustomCheck("horizontal", horizontal))
		defer svc.Stop()

		Convey("When an exercise using it is added", func() {
			err := svc.AddExercise(exercise.Exercise{
				ID:     "flat",
				Checks: []check.Check{{Kind: "horizontal", Vector: "N"}},
			})
			So(err, ShouldBeNil)

			Convey("Then answers are graded with it", func() {
				attempt, err := svc.Check(context.Background(), "flat", "", board([]float64{4, 4}))
				So(err, ShouldBeNil)
				So(attempt.Result.Msg, ShouldEqual, "not horizontal")
				So(svc.Exercises(context.Background()), ShouldHaveLength, 2)
			})
		})
	})
}

func waitForStatus(svc *service.Service, id string, status model.SubmissionStatus) (model.SubmissionRecord, bool) {
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		rec, err := svc.SubmissionResult(context.Background(), id)
		if err == nil && rec.Status == status {
			return rec, true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return model.SubmissionRecord{}, false
}
