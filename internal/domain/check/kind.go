// Package check implements the catalogue of geometric checks used to grade
// vector drawing answers.
//
// Every check shares the Func signature. A check passes by returning nil
// and fails by returning a *ValidationError whose message is shown to the
// student. Any other error means the check or the answer is malformed.
package check

import "slices"

// Kind names a check. The built-in kinds form a closed set; custom kinds are
// plain values registered explicitly with a grader.
type Kind string

// Built-in check kinds.
const (
	Presence      Kind = "presence"
	Tail          Kind = "tail"
	Tip           Kind = "tip"
	TailX         Kind = "tail_x"
	TailY         Kind = "tail_y"
	TipX          Kind = "tip_x"
	TipY          Kind = "tip_y"
	Coords        Kind = "coords"
	SegmentCoords Kind = "segment_coords"
	Length        Kind = "length"
	Angle         Kind = "angle"
	SegmentAngle  Kind = "segment_angle"
	PointsOnLine  Kind = "points_on_line"
	PointCoords   Kind = "point_coords"
)

var builtinKinds = []Kind{
	Presence,
	Tail,
	Tip,
	TailX,
	TailY,
	TipX,
	TipY,
	Coords,
	SegmentCoords,
	Length,
	Angle,
	SegmentAngle,
	PointsOnLine,
	PointCoords,
}

// BuiltinKinds returns the built-in kinds in catalogue order.
func BuiltinKinds() []Kind {
	return slices.Clone(builtinKinds)
}

// IsBuiltin reports whether k belongs to the built-in catalogue.
func (k Kind) IsBuiltin() bool {
	return slices.Contains(builtinKinds, k)
}

// TargetsPoint reports whether checks of kind k address a point rather than
// a vector.
func (k Kind) TargetsPoint() bool {
	return k == PointCoords
}

func (k Kind) String() string { return string(k) }
