package grader_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/okian/vectordraw/internal/domain/check"
	"github.com/okian/vectordraw/internal/domain/geometry"
	"github.com/okian/vectordraw/internal/domain/grader"
	"github.com/okian/vectordraw/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func tol(v float64) *float64 { return &v }

func boardN() model.Answer {
	return model.Answer{
		Vectors: map[string]model.VectorState{
			"N": {Tail: []float64{2, 2}, Tip: []float64{4, 4}},
		},
		Points: map[string][]float64{},
	}
}

func TestGrade(t *testing.T) {
	ctx := context.Background()

	Convey("Given a default grader and vector N from (2, 2) to (4, 4)", t, func() {
		g := grader.New()
		answer := boardN()

		Convey("When every check passes", func() {
			answer.Checks = []check.Check{
				{Kind: check.Presence, Vector: "N"},
				{Kind: check.Tail, Vector: "N", Expected: check.NewExpected([]any{2.0, 2.0})},
				{Kind: check.Angle, Vector: "N", Expected: check.NewExpected(45.0)},
			}
			res, err := g.Grade(ctx, answer)

			Convey("Then the answer is correct with the success message", func() {
				So(err, ShouldBeNil)
				So(res, ShouldResemble, model.Result{Correct: true, Msg: "Test passed"})
			})
		})

		Convey("When there are no checks", func() {
			res, err := g.Grade(ctx, answer)
			So(err, ShouldBeNil)
			So(res.Correct, ShouldBeTrue)
		})

		Convey("When several checks fail", func() {
			answer.Checks = []check.Check{
				{Kind: check.Presence, Vector: "N"},
				{Kind: check.Tail, Vector: "N", Expected: check.NewExpected([]any{0.0, 0.0}), Errmsg: "first"},
				{Kind: check.Tip, Vector: "N", Expected: check.NewExpected([]any{0.0, 0.0}), Errmsg: "second"},
			}
			res, err := g.Grade(ctx, answer)

			Convey("Then only the first failure is reported", func() {
				So(err, ShouldBeNil)
				So(res, ShouldResemble, model.Result{Correct: false, Msg: "first"})
			})

			Convey("Then swapping the order changes the reported message", func() {
				answer.Checks[1], answer.Checks[2] = answer.Checks[2], answer.Checks[1]
				res, err := g.Grade(ctx, answer)
				So(err, ShouldBeNil)
				So(res.Msg, ShouldEqual, "second")
			})
		})

		Convey("When a required vector is missing", func() {
			answer.Checks = []check.Check{{Kind: check.Presence, Vector: "M"}}
			res, err := g.Grade(ctx, answer)
			So(err, ShouldBeNil)
			So(res.Msg, ShouldEqual, "You need to use the M vector.")
		})

		Convey("When a check names an unregistered kind", func() {
			answer.Checks = []check.Check{
				{Kind: check.Tail, Vector: "N", Expected: check.NewExpected([]any{0.0, 0.0})},
				{Kind: "curvature", Vector: "N"},
			}

			Convey("Then grading stops at the failing check before reaching it", func() {
				res, err := g.Grade(ctx, answer)
				So(err, ShouldBeNil)
				So(res.Correct, ShouldBeFalse)
			})

			Convey("Then a reachable unknown kind is a configuration error", func() {
				answer.Checks = answer.Checks[1:]
				_, err := g.Grade(ctx, answer)
				So(errors.Is(err, grader.ErrUnknownCheck), ShouldBeTrue)
			})
		})

		Convey("When the board has malformed coordinates", func() {
			answer.Vectors["M"] = model.VectorState{Tail: []float64{1}, Tip: []float64{2, 2}}
			_, err := g.Grade(ctx, answer)
			So(errors.Is(err, grader.ErrInvalidBoard), ShouldBeTrue)
			So(errors.Is(err, geometry.ErrMalformedCoords), ShouldBeTrue)
		})

		Convey("When a check targets an absent vector", func() {
			answer.Checks = []check.Check{{Kind: check.Length, Vector: "M", Expected: check.NewExpected(2.0)}}
			_, err := g.Grade(ctx, answer)
			So(errors.Is(err, check.ErrMissingTarget), ShouldBeTrue)
		})

		Convey("When the context is cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			answer.Checks = []check.Check{{Kind: check.Presence, Vector: "N"}}
			_, err := g.Grade(cctx, answer)
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
		})
	})
}

func TestGradeIdempotent(t *testing.T) {
	Convey("Given the same answer graded many times concurrently", t, func() {
		g := grader.New()
		answer := boardN()
		answer.Checks = []check.Check{
			{Kind: check.Length, Vector: "N", Expected: check.NewExpected(3.0), Tolerance: tol(0.1)},
		}
		want, err := g.Grade(context.Background(), answer)
		So(err, ShouldBeNil)

		var wg sync.WaitGroup
		results := make([]model.Result, 32)
		for i := range results {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				results[i], _ = g.Grade(context.Background(), answer)
			}(i)
		}
		wg.Wait()

		Convey("Then every result is identical", func() {
			for _, r := range results {
				So(r, ShouldResemble, want)
			}
			So(want.Msg, ShouldEqual, "The length of N is incorrect. Your length: 2.8")
		})
	})
}

func TestOptions(t *testing.T) {
	ctx := context.Background()

	Convey("Given a custom success message", t, func() {
		g := grader.New(grader.WithSuccessMessage("Well drawn!"))
		res, err := g.Grade(ctx, boardN())
		So(err, ShouldBeNil)
		So(res.Msg, ShouldEqual, "Well drawn!")
		So(g.SuccessMessage(), ShouldEqual, "Well drawn!")
	})

	Convey("Given an empty success message", t, func() {
		g := grader.New(grader.WithSuccessMessage(""))
		So(g.SuccessMessage(), ShouldEqual, grader.DefaultSuccessMessage)
	})

	Convey("Given a custom check", t, func() {
		horizontal := func(c check.Check, vectors map[string]geometry.Vector, _ map[string]geometry.Point) error {
			v := vectors[c.Vector]
			if v.Tail.Y != v.Tip.Y {
				return check.Fail(c, "Vector "+v.Name+" is not horizontal.")
			}
			return nil
		}
		g := grader.New(grader.WithCustomCheck("horizontal", horizontal))
		answer := boardN()
		answer.Checks = []check.Check{{Kind: "horizontal", Vector: "N"}}

		Convey("Then it is registered next to the built-ins", func() {
			So(g.Kinds(), ShouldContain, check.Kind("horizontal"))
			So(len(g.Kinds()), ShouldEqual, len(check.BuiltinKinds())+1)
		})

		Convey("Then it is used for grading", func() {
			res, err := g.Grade(ctx, answer)
			So(err, ShouldBeNil)
			So(res, ShouldResemble, model.Result{Correct: false, Msg: "Vector N is not horizontal."})
		})

		Convey("Then other graders are unaffected", func() {
			_, err := grader.New().Grade(ctx, answer)
			So(errors.Is(err, grader.ErrUnknownCheck), ShouldBeTrue)
		})
	})

	Convey("Given a custom check overriding a built-in", t, func() {
		always := func(check.Check, map[string]geometry.Vector, map[string]geometry.Point) error { return nil }
		g := grader.New(grader.WithCustomChecks(map[check.Kind]check.Func{check.Tail: always}))
		answer := boardN()
		answer.Checks = []check.Check{{Kind: check.Tail, Vector: "N", Expected: check.NewExpected([]any{9.0, 9.0})}}

		res, err := g.Grade(ctx, answer)
		So(err, ShouldBeNil)
		So(res.Correct, ShouldBeTrue)
		So(len(g.Kinds()), ShouldEqual, len(check.BuiltinKinds()))
	})
}

func TestPointCoords(t *testing.T) {
	Convey("Given a board with point P at (1, 1)", t, func() {
		g := grader.New()
		answer := model.Answer{
			Vectors: map[string]model.VectorState{},
			Points:  map[string][]float64{"P": {1, 1}},
			Checks: []check.Check{
				{Kind: check.PointCoords, Point: "P", Expected: check.NewExpected([]any{3.0, 3.0})},
				{Kind: check.Presence, Vector: "N", Errmsg: "unreachable"},
			},
		}

		Convey("Then a misplaced point fails like every other check", func() {
			res, err := g.Grade(context.Background(), answer)
			So(err, ShouldBeNil)
			So(res, ShouldResemble, model.Result{Correct: false, Msg: "Point P is not at the correct location."})
		})
	})
}

func TestEvaluate(t *testing.T) {
	Convey("Given an answer rejected by its second check", t, func() {
		answer := boardN()
		answer.Checks = []check.Check{
			{Kind: check.Presence, Vector: "N"},
			{Kind: check.Tip, Vector: "N", Expected: check.NewExpected([]any{0.0, 0.0})},
		}
		out, err := grader.New().Evaluate(context.Background(), answer)

		Convey("Then the failing check is reported", func() {
			So(err, ShouldBeNil)
			So(out.Result.Correct, ShouldBeFalse)
			So(out.Failed, ShouldNotBeNil)
			So(out.Failed.Kind, ShouldEqual, check.Tip)
			So(out.Failed.Target, ShouldEqual, "N")
			So(out.Result.Msg, ShouldEqual, "Vector N does not end at correct point.")
		})
	})

	Convey("Given a correct answer", t, func() {
		out, err := grader.New().Evaluate(context.Background(), boardN())
		So(err, ShouldBeNil)
		So(out.Failed, ShouldBeNil)
	})
}
