package check

import (
	"fmt"
	"maps"
	"math"

	"github.com/okian/vectordraw/internal/domain/geometry"
)

// Default failure messages.
const (
	msgPresence      = "You need to use the {name} vector."
	msgTail          = "Vector {name} does not start at correct point."
	msgTip           = "Vector {name} does not end at correct point."
	msgCoords        = "Vector {name} coordinates are not correct."
	msgSegmentCoords = "Segment {name} coordinates are not correct."
	msgLength        = "The length of {name} is incorrect. Your length: {length:.1f}"
	msgAngle         = "The angle of {name} is incorrect. Your angle: {angle:.1f}"
	msgPointsOnLine  = "The line {name} does not pass through the correct points."
	msgPointCoords   = "Point {name} is not at the correct location."
)

var builtins = map[Kind]Func{
	Presence:      checkPresence,
	Tail:          endpointCheck(func(v geometry.Vector) geometry.Point { return v.Tail }, msgTail),
	Tip:           endpointCheck(func(v geometry.Vector) geometry.Point { return v.Tip }, msgTip),
	TailX:         coordinateCheck(func(v geometry.Vector) float64 { return v.Tail.X }, msgTail),
	TailY:         coordinateCheck(func(v geometry.Vector) float64 { return v.Tail.Y }, msgTail),
	TipX:          coordinateCheck(func(v geometry.Vector) float64 { return v.Tip.X }, msgTip),
	TipY:          coordinateCheck(func(v geometry.Vector) float64 { return v.Tip.Y }, msgTip),
	Coords:        checkCoords,
	SegmentCoords: checkSegmentCoords,
	Length:        checkLength,
	Angle:         checkAngle,
	SegmentAngle:  checkSegmentAngle,
	PointsOnLine:  checkPointsOnLine,
	PointCoords:   checkPointCoords,
}

// Builtins returns a fresh copy of the built-in catalogue.
func Builtins() map[Kind]Func {
	return maps.Clone(builtins)
}

func vectorOf(c Check, vectors map[string]geometry.Vector) (geometry.Vector, error) {
	v, ok := vectors[c.Vector]
	if !ok {
		return geometry.Vector{}, fmt.Errorf("%w: %s check on vector %q", ErrMissingTarget, c.Kind, c.Vector)
	}
	return v, nil
}

func failVector(c Check, def string, v geometry.Vector) error {
	return Fail(c, Format(c.template(def), VectorFields(v)))
}

func checkPresence(c Check, vectors map[string]geometry.Vector, _ map[string]geometry.Point) error {
	if _, ok := vectors[c.Vector]; ok {
		return nil
	}
	return Fail(c, Format(c.template(msgPresence), Fields{"name": c.Vector}))
}

func endpointCheck(endpoint func(geometry.Vector) geometry.Point, def string) Func {
	return func(c Check, vectors map[string]geometry.Vector, _ map[string]geometry.Point) error {
		v, err := vectorOf(c, vectors)
		if err != nil {
			return err
		}
		want, err := c.Expected.Pair()
		if err != nil {
			return err
		}
		if endpoint(v).DistanceTo(want) > c.ToleranceOr(DefaultTolerance) {
			return failVector(c, def, v)
		}
		return nil
	}
}

func coordinateCheck(coord func(geometry.Vector) float64, def string) Func {
	return func(c Check, vectors map[string]geometry.Vector, _ map[string]geometry.Point) error {
		v, err := vectorOf(c, vectors)
		if err != nil {
			return err
		}
		want, err := c.Expected.Scalar()
		if err != nil {
			return err
		}
		if math.Abs(want-coord(v)) > c.ToleranceOr(DefaultTolerance) {
			return failVector(c, def, v)
		}
		return nil
	}
}

// coordsWithinTolerance reports whether both endpoints of v lie within tol
// of the expected ones.
func coordsWithinTolerance(v geometry.Vector, want [2][2]Coord, tol float64) bool {
	for i, p := range [2]geometry.Point{v.Tail, v.Tip} {
		dx := want[i][0].delta(p.X)
		dy := want[i][1].delta(p.Y)
		if math.Hypot(dx, dy) > tol {
			return false
		}
	}
	return true
}

func checkCoords(c Check, vectors map[string]geometry.Vector, _ map[string]geometry.Point) error {
	v, err := vectorOf(c, vectors)
	if err != nil {
		return err
	}
	want, err := c.Expected.CoordPair()
	if err != nil {
		return err
	}
	if !coordsWithinTolerance(v, want, c.ToleranceOr(DefaultTolerance)) {
		return failVector(c, msgCoords, v)
	}
	return nil
}

func checkSegmentCoords(c Check, vectors map[string]geometry.Vector, _ map[string]geometry.Point) error {
	v, err := vectorOf(c, vectors)
	if err != nil {
		return err
	}
	want, err := c.Expected.CoordPair()
	if err != nil {
		return err
	}
	tol := c.ToleranceOr(DefaultTolerance)
	if !coordsWithinTolerance(v, want, tol) && !coordsWithinTolerance(v.Opposite(), want, tol) {
		return failVector(c, msgSegmentCoords, v)
	}
	return nil
}

func checkLength(c Check, vectors map[string]geometry.Vector, _ map[string]geometry.Point) error {
	v, err := vectorOf(c, vectors)
	if err != nil {
		return err
	}
	want, err := c.Expected.Scalar()
	if err != nil {
		return err
	}
	if math.Abs(v.Length-want) > c.ToleranceOr(DefaultTolerance) {
		return failVector(c, msgLength, v)
	}
	return nil
}

// angleWithinTolerance is false for zero-length vectors, which have no direction.
func angleWithinTolerance(v geometry.Vector, wantRad, tol float64) bool {
	return v.AngleTo(wantRad) <= tol
}

func expectedRadians(c Check) (float64, error) {
	deg, err := c.Expected.Scalar()
	if err != nil {
		return 0, err
	}
	return deg * geometry.DegToRad, nil
}

func checkAngle(c Check, vectors map[string]geometry.Vector, _ map[string]geometry.Point) error {
	v, err := vectorOf(c, vectors)
	if err != nil {
		return err
	}
	want, err := expectedRadians(c)
	if err != nil {
		return err
	}
	if !angleWithinTolerance(v, want, c.ToleranceOr(DefaultAngleTolerance)) {
		return failVector(c, msgAngle, v)
	}
	return nil
}

func checkSegmentAngle(c Check, vectors map[string]geometry.Vector, _ map[string]geometry.Point) error {
	v, err := vectorOf(c, vectors)
	if err != nil {
		return err
	}
	want, err := expectedRadians(c)
	if err != nil {
		return err
	}
	tol := c.ToleranceOr(DefaultAngleTolerance)
	if !angleWithinTolerance(v, want, tol) && !angleWithinTolerance(v.Opposite(), want, tol) {
		return failVector(c, msgAngle, v)
	}
	return nil
}

func checkPointsOnLine(c Check, vectors map[string]geometry.Vector, _ map[string]geometry.Point) error {
	line, err := vectorOf(c, vectors)
	if err != nil {
		return err
	}
	points, err := c.Expected.Pairs()
	if err != nil {
		return err
	}
	tol := c.ToleranceOr(DefaultTolerance)
	for _, p := range points {
		if line.DistanceToLine(p) > tol {
			return failVector(c, msgPointsOnLine, line)
		}
	}
	return nil
}

func checkPointCoords(c Check, _ map[string]geometry.Vector, points map[string]geometry.Point) error {
	p, ok := points[c.Point]
	if !ok {
		return fmt.Errorf("%w: %s check on point %q", ErrMissingTarget, c.Kind, c.Point)
	}
	want, err := c.Expected.Pair()
	if err != nil {
		return err
	}
	if p.DistanceTo(want) > c.ToleranceOr(DefaultTolerance) {
		return Fail(c, Format(c.template(msgPointCoords), PointFields(c.Point, p)))
	}
	return nil
}
