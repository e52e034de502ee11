package check

import (
	"encoding/json"
	"fmt"

	"github.com/okian/vectordraw/internal/domain/geometry"
)

// Default tolerances applied when a check does not carry its own.
const (
	DefaultTolerance      = 1.0
	DefaultAngleTolerance = 2.0
)

// Wildcard in an expected coordinate disables the comparison on that axis.
const Wildcard = "_"

// Func evaluates one check against the board. Unused arguments are ignored.
type Func func(c Check, vectors map[string]geometry.Vector, points map[string]geometry.Point) error

// Check is a single author-defined validation rule.
type Check struct {
	Kind      Kind     `json:"check" yaml:"check"`
	Vector    string   `json:"vector,omitempty" yaml:"vector,omitempty"`
	Point     string   `json:"point,omitempty" yaml:"point,omitempty"`
	Expected  Expected `json:"expected,omitzero" yaml:"expected,omitempty"`
	Tolerance *float64 `json:"tolerance,omitempty" yaml:"tolerance,omitempty"`
	// Errmsg overrides the default failure message; empty means default.
	Errmsg string `json:"errmsg,omitempty" yaml:"errmsg,omitempty"`
}

// Target returns the name of the element the check addresses.
func (c Check) Target() string {
	if c.Kind.TargetsPoint() || (c.Vector == "" && c.Point != "") {
		return c.Point
	}
	return c.Vector
}

// ToleranceOr returns the check tolerance, or def when none was set.
func (c Check) ToleranceOr(def float64) float64 {
	if c.Tolerance == nil {
		return def
	}
	return *c.Tolerance
}

// template returns the author override or def.
func (c Check) template(def string) string {
	if c.Errmsg != "" {
		return c.Errmsg
	}
	return def
}

// Coord is one expected coordinate, possibly a wildcard.
type Coord struct {
	Value    float64
	Wildcard bool
}

// delta returns expected minus actual, or 0 for a wildcard.
func (c Coord) delta(actual float64) float64 {
	if c.Wildcard {
		return 0
	}
	return c.Value - actual
}

// Expected holds the decoded expected value of a check. Its shape depends
// on the check kind and is interpreted through the typed accessors.
type Expected struct {
	raw any
}

// NewExpected wraps a decoded JSON or YAML value.
func NewExpected(v any) Expected {
	return Expected{raw: v}
}

// IsZero reports whether no expected value was supplied.
func (e Expected) IsZero() bool { return e.raw == nil }

// Raw returns the underlying decoded value.
func (e Expected) Raw() any { return e.raw }

// MarshalJSON implements json.Marshaler.
func (e Expected) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.raw)
}

// UnmarshalJSON implements json.Unmarshaler.
func (e *Expected) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	e.raw = v
	return nil
}

// UnmarshalYAML decodes the value with the YAML decoder in use.
func (e *Expected) UnmarshalYAML(unmarshal func(any) error) error {
	var v any
	if err := unmarshal(&v); err != nil {
		return err
	}
	e.raw = v
	return nil
}

// MarshalYAML emits the underlying value.
func (e Expected) MarshalYAML() (any, error) {
	return e.raw, nil
}

// Scalar interprets the value as a single number.
func (e Expected) Scalar() (float64, error) {
	f, ok := toFloat(e.raw)
	if !ok {
		return 0, fmt.Errorf("%w: want number, got %v", ErrMalformedExpected, e.raw)
	}
	return f, nil
}

// Pair interprets the value as an [x, y] pair.
func (e Expected) Pair() (geometry.Point, error) {
	return pairOf(e.raw)
}

// CoordPair interprets the value as [[tail_x, tail_y], [tip_x, tip_y]] where
// any coordinate may be the wildcard.
func (e Expected) CoordPair() ([2][2]Coord, error) {
	var out [2][2]Coord
	outer, ok := toSlice(e.raw)
	if !ok || len(outer) != 2 {
		return out, fmt.Errorf("%w: want [[x, y], [x, y]], got %v", ErrMalformedExpected, e.raw)
	}
	for i, item := range outer {
		inner, ok := toSlice(item)
		if !ok || len(inner) != 2 {
			return out, fmt.Errorf("%w: want [x, y], got %v", ErrMalformedExpected, item)
		}
		for j, v := range inner {
			if s, isStr := v.(string); isStr && s == Wildcard {
				out[i][j] = Coord{Wildcard: true}
				continue
			}
			f, ok := toFloat(v)
			if !ok {
				return out, fmt.Errorf("%w: coordinate %v", ErrMalformedExpected, v)
			}
			out[i][j] = Coord{Value: f}
		}
	}
	return out, nil
}

// Pairs interprets the value as a list of [x, y] pairs.
func (e Expected) Pairs() ([]geometry.Point, error) {
	items, ok := toSlice(e.raw)
	if !ok {
		return nil, fmt.Errorf("%w: want list of [x, y], got %v", ErrMalformedExpected, e.raw)
	}
	points := make([]geometry.Point, 0, len(items))
	for _, item := range items {
		p, err := pairOf(item)
		if err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, nil
}

func pairOf(v any) (geometry.Point, error) {
	items, ok := toSlice(v)
	if !ok || len(items) != 2 {
		return geometry.Point{}, fmt.Errorf("%w: want [x, y], got %v", ErrMalformedExpected, v)
	}
	x, okX := toFloat(items[0])
	y, okY := toFloat(items[1])
	if !okX || !okY {
		return geometry.Point{}, fmt.Errorf("%w: want [x, y], got %v", ErrMalformedExpected, v)
	}
	return geometry.NewPoint(x, y), nil
}

func toSlice(v any) ([]any, bool) {
	switch s := v.(type) {
	case []any:
		return s, true
	case []float64:
		out := make([]any, len(s))
		for i := range s {
			out[i] = s[i]
		}
		return out, true
	case [][]float64:
		out := make([]any, len(s))
		for i := range s {
			out[i] = s[i]
		}
		return out, true
	default:
		return nil, false
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
