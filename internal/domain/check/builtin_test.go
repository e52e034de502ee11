package check_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/okian/vectordraw/internal/domain/check"
	"github.com/okian/vectordraw/internal/domain/geometry"
	. "github.com/smartystreets/goconvey/convey"
)

func tol(v float64) *float64 { return &v }

func decode(raw string) check.Check {
	var c check.Check
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		panic(err)
	}
	return c
}

func board(vs ...geometry.Vector) map[string]geometry.Vector {
	out := make(map[string]geometry.Vector, len(vs))
	for _, v := range vs {
		out[v.Name] = v
	}
	return out
}

func run(c check.Check, vectors map[string]geometry.Vector, points map[string]geometry.Point) error {
	fn, ok := check.Builtins()[c.Kind]
	if !ok {
		panic("no builtin for " + c.Kind)
	}
	return fn(c, vectors, points)
}

func failureMessage(err error) string {
	ve, ok := check.AsValidation(err)
	So(ok, ShouldBeTrue)
	return ve.Msg
}

func TestBuiltinCatalogue(t *testing.T) {
	Convey("Given the built-in catalogue", t, func() {
		fns := check.Builtins()

		Convey("Then every built-in kind has a function", func() {
			So(len(fns), ShouldEqual, len(check.BuiltinKinds()))
			for _, k := range check.BuiltinKinds() {
				So(fns[k], ShouldNotBeNil)
				So(k.IsBuiltin(), ShouldBeTrue)
			}
			So(check.Kind("slope").IsBuiltin(), ShouldBeFalse)
		})

		Convey("Then the returned map is a copy", func() {
			delete(fns, check.Presence)
			So(check.Builtins()[check.Presence], ShouldNotBeNil)
		})
	})
}

func TestPresence(t *testing.T) {
	Convey("Given a board holding only N", t, func() {
		vectors := board(geometry.NewVector("N", 2, 2, 6, 6))

		Convey("When checking for M", func() {
			err := run(check.Check{Kind: check.Presence, Vector: "M"}, vectors, nil)

			Convey("Then it fails with the default message", func() {
				So(failureMessage(err), ShouldEqual, "You need to use the M vector.")
			})
		})

		Convey("When checking for N", func() {
			So(run(check.Check{Kind: check.Presence, Vector: "N"}, vectors, nil), ShouldBeNil)
		})

		Convey("When the author overrides the message", func() {
			err := run(check.Check{Kind: check.Presence, Vector: "M", Errmsg: "Where is {name}?"}, vectors, nil)
			So(failureMessage(err), ShouldEqual, "Where is M?")
		})
	})
}

func TestEndpoints(t *testing.T) {
	Convey("Given vector N from (5, 6) to (6, 6)", t, func() {
		vectors := board(geometry.NewVector("N", 5, 6, 6, 6))

		Convey("When the tail is exactly at tolerance distance", func() {
			c := check.Check{Kind: check.Tail, Vector: "N", Expected: check.NewExpected([]any{2.0, 2.0}), Tolerance: tol(5)}
			So(run(c, vectors, nil), ShouldBeNil)
		})

		Convey("When the tail exceeds the tolerance by a hair", func() {
			c := check.Check{Kind: check.Tail, Vector: "N", Expected: check.NewExpected([]any{2.0, 2.0}), Tolerance: tol(4.999999)}
			err := run(c, vectors, nil)
			So(failureMessage(err), ShouldEqual, "Vector N does not start at correct point.")
		})

		Convey("When the tip is within the default tolerance", func() {
			c := decode(`{"check":"tip","vector":"N","expected":[6.5,6.5]}`)
			So(run(c, vectors, nil), ShouldBeNil)
		})

		Convey("When the tip is off", func() {
			c := decode(`{"check":"tip","vector":"N","expected":[1,1]}`)
			So(failureMessage(run(c, vectors, nil)), ShouldEqual, "Vector N does not end at correct point.")
		})

		Convey("When single coordinates are checked", func() {
			So(run(decode(`{"check":"tail_x","vector":"N","expected":5.9}`), vectors, nil), ShouldBeNil)
			So(run(decode(`{"check":"tail_y","vector":"N","expected":7}`), vectors, nil), ShouldBeNil)
			So(run(decode(`{"check":"tip_x","vector":"N","expected":6}`), vectors, nil), ShouldBeNil)

			err := run(decode(`{"check":"tip_y","vector":"N","expected":8,"tolerance":1.5}`), vectors, nil)
			So(failureMessage(err), ShouldEqual, "Vector N does not end at correct point.")

			err = run(decode(`{"check":"tail_x","vector":"N","expected":0,"errmsg":"Tail x is {tail_x}"}`), vectors, nil)
			So(failureMessage(err), ShouldEqual, "Tail x is 5.0")
		})

		Convey("When the targeted vector is missing", func() {
			err := run(decode(`{"check":"tail","vector":"Q","expected":[0,0]}`), vectors, nil)
			So(errors.Is(err, check.ErrMissingTarget), ShouldBeTrue)
			_, isValidation := check.AsValidation(err)
			So(isValidation, ShouldBeFalse)
		})

		Convey("When the expected value has the wrong shape", func() {
			err := run(decode(`{"check":"tail","vector":"N","expected":3}`), vectors, nil)
			So(errors.Is(err, check.ErrMalformedExpected), ShouldBeTrue)
		})
	})
}

func TestCoords(t *testing.T) {
	Convey("Given vector V from (3, 5) to (10, 8)", t, func() {
		vectors := board(geometry.NewVector("V", 3, 5, 10, 8))
		wild := decode(`{"check":"coords","vector":"V","expected":[["_",5],[10,"_"]]}`)

		Convey("When wildcards cover the differing axes", func() {
			So(run(wild, vectors, nil), ShouldBeNil)
		})

		Convey("When only wildcard components change", func() {
			moved := board(geometry.NewVector("V", -40, 5, 10, 99))
			So(run(wild, moved, nil), ShouldBeNil)
		})

		Convey("When a non-wildcard component changes", func() {
			moved := board(geometry.NewVector("V", 3, 7, 10, 8))
			So(failureMessage(run(wild, moved, nil)), ShouldEqual, "Vector V coordinates are not correct.")

			moved = board(geometry.NewVector("V", 3, 5, 12, 8))
			So(failureMessage(run(wild, moved, nil)), ShouldEqual, "Vector V coordinates are not correct.")
		})

		Convey("When the vector is reversed", func() {
			reversed := board(geometry.NewVector("V", 10, 8, 3, 5))
			exact := decode(`{"check":"coords","vector":"V","expected":[[3,5],[10,8]]}`)
			So(failureMessage(run(exact, reversed, nil)), ShouldEqual, "Vector V coordinates are not correct.")

			Convey("Then the segment check accepts either orientation", func() {
				segment := decode(`{"check":"segment_coords","vector":"V","expected":[[3,5],[10,8]]}`)
				So(run(segment, reversed, nil), ShouldBeNil)
				So(run(segment, vectors, nil), ShouldBeNil)
			})
		})

		Convey("When the segment is elsewhere", func() {
			segment := decode(`{"check":"segment_coords","vector":"V","expected":[[0,0],[1,1]]}`)
			So(failureMessage(run(segment, vectors, nil)), ShouldEqual, "Segment V coordinates are not correct.")
		})

		Convey("When the expected coords are malformed", func() {
			err := run(decode(`{"check":"coords","vector":"V","expected":[["x",5],[10,8]]}`), vectors, nil)
			So(errors.Is(err, check.ErrMalformedExpected), ShouldBeTrue)
		})
	})
}

func TestLengthAndAngle(t *testing.T) {
	Convey("Given vector N from (2, 2) to (6, 6)", t, func() {
		vectors := board(geometry.NewVector("N", 2, 2, 6, 6))

		Convey("When the length matches", func() {
			So(run(decode(`{"check":"length","vector":"N","expected":5.5}`), vectors, nil), ShouldBeNil)
		})

		Convey("When the length is wrong", func() {
			err := run(decode(`{"check":"length","vector":"N","expected":3}`), vectors, nil)
			So(failureMessage(err), ShouldEqual, "The length of N is incorrect. Your length: 5.7")
		})

		Convey("When the expected angle is 45", func() {
			So(run(decode(`{"check":"angle","vector":"N","expected":45}`), vectors, nil), ShouldBeNil)
		})

		Convey("When the expected angle is 110", func() {
			err := run(decode(`{"check":"angle","vector":"N","expected":110}`), vectors, nil)
			msg := failureMessage(err)
			So(msg, ShouldContainSubstring, "The angle of N is incorrect.")
			So(msg, ShouldEqual, "The angle of N is incorrect. Your angle: 45.0")
		})

		Convey("When the angle is just within a custom tolerance", func() {
			So(run(decode(`{"check":"angle","vector":"N","expected":50,"tolerance":5.5}`), vectors, nil), ShouldBeNil)
			So(run(decode(`{"check":"angle","vector":"N","expected":50,"tolerance":4.5}`), vectors, nil), ShouldNotBeNil)
		})

		Convey("When the expected angle points the other way", func() {
			opposite := decode(`{"check":"angle","vector":"N","expected":225}`)
			So(run(opposite, vectors, nil), ShouldNotBeNil)

			Convey("Then the segment angle accepts it", func() {
				segment := decode(`{"check":"segment_angle","vector":"N","expected":225}`)
				So(run(segment, vectors, nil), ShouldBeNil)
			})
		})

		Convey("When a segment angle is wrong both ways", func() {
			err := run(decode(`{"check":"segment_angle","vector":"N","expected":100}`), vectors, nil)
			So(failureMessage(err), ShouldStartWith, "The angle of N is incorrect.")
		})

		Convey("When the vector has zero length", func() {
			dot := board(geometry.NewVector("N", 1, 1, 1, 1))
			So(run(decode(`{"check":"angle","vector":"N","expected":0}`), dot, nil), ShouldNotBeNil)
		})
	})
}

func TestPointsOnLine(t *testing.T) {
	Convey("Given the x-axis as line L", t, func() {
		vectors := board(geometry.NewVector("L", 0, 0, 10, 0))

		Convey("When the point is half a unit away", func() {
			So(run(decode(`{"check":"points_on_line","vector":"L","expected":[[5,0.5]],"tolerance":1.0}`), vectors, nil), ShouldBeNil)
		})

		Convey("When the point is two units away", func() {
			err := run(decode(`{"check":"points_on_line","vector":"L","expected":[[5,2]],"tolerance":1.0}`), vectors, nil)
			So(failureMessage(err), ShouldEqual, "The line L does not pass through the correct points.")
		})

		Convey("When every point must lie on the line", func() {
			err := run(decode(`{"check":"points_on_line","vector":"L","expected":[[-30,0],[100,0.2],[4,-3]]}`), vectors, nil)
			So(err, ShouldNotBeNil)
			So(run(decode(`{"check":"points_on_line","vector":"L","expected":[[-30,0],[100,0.2]]}`), vectors, nil), ShouldBeNil)
		})
	})
}

func TestPointCoords(t *testing.T) {
	Convey("Given point P at (1, 2)", t, func() {
		points := map[string]geometry.Point{"P": geometry.NewPoint(1, 2)}

		Convey("When the point is close enough", func() {
			So(run(decode(`{"check":"point_coords","point":"P","expected":[1.5,2.5]}`), nil, points), ShouldBeNil)
		})

		Convey("When the point is misplaced", func() {
			err := run(decode(`{"check":"point_coords","point":"P","expected":[4,4]}`), nil, points)

			Convey("Then it fails like every other check", func() {
				ve, ok := check.AsValidation(err)
				So(ok, ShouldBeTrue)
				So(ve.Kind, ShouldEqual, check.PointCoords)
				So(ve.Target, ShouldEqual, "P")
				So(ve.Msg, ShouldEqual, "Point P is not at the correct location.")
			})
		})

		Convey("When the author message uses point fields", func() {
			err := run(decode(`{"check":"point_coords","point":"P","expected":[4,4],"errmsg":"{name} is at ({x}, {y})"}`), nil, points)
			So(failureMessage(err), ShouldEqual, "P is at (1.0, 2.0)")
		})

		Convey("When the point is not on the board", func() {
			err := run(decode(`{"check":"point_coords","point":"Q","expected":[4,4]}`), nil, points)
			So(errors.Is(err, check.ErrMissingTarget), ShouldBeTrue)
		})
	})
}
