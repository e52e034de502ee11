// Package geometry contains the board primitives graded by the check library.
package geometry

import (
	"fmt"
	"math"
)

// Constants for angle normalization.
const (
	fullTurnDegrees = 360
	coordsLen       = 2

	// RadToDeg and DegToRad convert between radians and degrees.
	RadToDeg = 180 / math.Pi
	DegToRad = math.Pi / 180
)

// Point is a single location on the drawing board.
type Point struct {
	X float64
	Y float64
}

// NewPoint creates a point from its coordinates.
func NewPoint(x, y float64) Point {
	return Point{X: x, Y: y}
}

// PointFrom builds a point from a 2-element coordinate pair.
func PointFrom(coords []float64) (Point, error) {
	if len(coords) != coordsLen {
		return Point{}, fmt.Errorf("%w: got %d values", ErrMalformedCoords, len(coords))
	}
	return Point{X: coords[0], Y: coords[1]}, nil
}

// DistanceTo returns the euclidean distance between p and q.
func (p Point) DistanceTo(q Point) float64 {
	return math.Hypot(q.X-p.X, q.Y-p.Y)
}

// Vector is a named, directed segment from Tail to Tip.
// Length and Angle are derived once at construction.
type Vector struct {
	Name   string
	Tail   Point
	Tip    Point
	Length float64
	// Angle is the direction in degrees, in [0, 360).
	Angle float64
}

// NewVector creates a vector from tail (x1, y1) to tip (x2, y2).
func NewVector(name string, x1, y1, x2, y2 float64) Vector {
	dx, dy := x2-x1, y2-y1
	angle := math.Atan2(dy, dx) * RadToDeg
	if angle < 0 {
		angle += fullTurnDegrees
	}
	// atan2 of a tiny negative dy can round up to exactly 360 after the shift.
	if angle >= fullTurnDegrees {
		angle -= fullTurnDegrees
	}
	// A -0 dy yields -0 from atan2.
	if angle == 0 {
		angle = 0
	}
	return Vector{
		Name:   name,
		Tail:   Point{X: x1, Y: y1},
		Tip:    Point{X: x2, Y: y2},
		Length: math.Hypot(dx, dy),
		Angle:  angle,
	}
}

// VectorFrom builds a vector from tail and tip coordinate pairs.
func VectorFrom(name string, tail, tip []float64) (Vector, error) {
	t, err := PointFrom(tail)
	if err != nil {
		return Vector{}, fmt.Errorf("vector %s tail: %w", name, err)
	}
	h, err := PointFrom(tip)
	if err != nil {
		return Vector{}, fmt.Errorf("vector %s tip: %w", name, err)
	}
	return NewVector(name, t.X, t.Y, h.X, h.Y), nil
}

// Opposite returns a new vector with tail and tip swapped.
// Direction-agnostic checks test both orientations through it.
func (v Vector) Opposite() Vector {
	return NewVector(v.Name, v.Tip.X, v.Tip.Y, v.Tail.X, v.Tail.Y)
}

// Delta returns the components of the vector.
func (v Vector) Delta() (dx, dy float64) {
	return v.Tip.X - v.Tail.X, v.Tip.Y - v.Tail.Y
}

// DistanceToLine returns the perpendicular distance from p to the infinite
// line through v. A zero-length vector degenerates to the distance to its tail.
func (v Vector) DistanceToLine(p Point) float64 {
	dx, dy := v.Delta()
	norm := math.Hypot(dx, dy)
	if norm == 0 {
		return v.Tail.DistanceTo(p)
	}
	determinant := (p.X-v.Tail.X)*dy - (p.Y-v.Tail.Y)*dx
	return math.Abs(determinant) / norm
}

// AngleTo returns the angle in degrees between v and a unit vector pointing
// at expectedRad radians. The result is in [0, 180]; a zero-length vector
// has no direction and yields NaN.
func (v Vector) AngleTo(expectedRad float64) float64 {
	if v.Length == 0 {
		return math.NaN()
	}
	dx, dy := v.Delta()
	cos := (dx*math.Cos(expectedRad) + dy*math.Sin(expectedRad)) / v.Length
	// Rounding can push the cosine just outside [-1, 1].
	cos = math.Max(-1, math.Min(1, cos))
	return math.Acos(cos) * RadToDeg
}
