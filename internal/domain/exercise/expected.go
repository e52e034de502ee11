package exercise

import (
	"fmt"

	"go.yaml.in/yaml/v3"

	"github.com/okian/vectordraw/internal/domain/check"
)

// propOrder is the order in which expected-result properties become checks.
var propOrder = []check.Kind{
	check.Tail, check.TailX, check.TailY,
	check.Tip, check.TipX, check.TipY,
	check.Coords, check.Length, check.Angle, check.SegmentAngle,
	check.SegmentCoords, check.PointsOnLine,
}

// VectorExpectation holds the author's expected properties for one vector.
// Props keys are check kinds plus optional "<kind>_tolerance" and
// "<kind>_errmsg" overrides, and "presence_errmsg".
type VectorExpectation struct {
	Name  string
	Props map[string]any
}

// ExpectedResult is the ordered list of vector expectations of an exercise.
type ExpectedResult []VectorExpectation

// UnmarshalYAML decodes a mapping of vector name to properties, keeping
// the author's key order. Names are taken as written, so N or y stay
// vector names rather than YAML 1.1 booleans.
func (e *ExpectedResult) UnmarshalYAML(node *yaml.Node) error {
	out := make(ExpectedResult, 0, len(node.Content)/2)
	switch {
	case isNull(node):
		*e = out
		return nil
	case node.Kind != yaml.MappingNode:
		return fmt.Errorf("line %d: expected_result must map vector names to properties", node.Line)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		if key.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: vector name must be a scalar", key.Line)
		}
		props, err := toProps(value)
		if err != nil {
			return fmt.Errorf("vector %s: %w", key.Value, err)
		}
		out = append(out, VectorExpectation{Name: key.Value, Props: props})
	}
	*e = out
	return nil
}

// MarshalYAML encodes the expectations back into an ordered mapping.
func (e ExpectedResult) MarshalYAML() (any, error) {
	root := &yaml.Node{Kind: yaml.MappingNode}
	for _, v := range e {
		props := &yaml.Node{Kind: yaml.MappingNode}
		for _, key := range sortedKeys(v.Props) {
			value := new(yaml.Node)
			if err := value.Encode(v.Props[key]); err != nil {
				return nil, fmt.Errorf("vector %s: %s: %w", v.Name, key, err)
			}
			props.Content = append(props.Content, strNode(key), value)
		}
		root.Content = append(root.Content, strNode(v.Name), props)
	}
	return root, nil
}

// Names returns the vector names in author order.
func (e ExpectedResult) Names() []string {
	names := make([]string, len(e))
	for i, v := range e {
		names[i] = v.Name
	}
	return names
}

func toProps(node *yaml.Node) (map[string]any, error) {
	props := make(map[string]any)
	if isNull(node) {
		return props, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: properties must be a mapping", node.Line)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		if key.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("line %d: property name must be a scalar", key.Line)
		}
		var v any
		if err := value.Decode(&v); err != nil {
			return nil, fmt.Errorf("%s: %w", key.Value, err)
		}
		props[key.Value] = normalize(v)
	}
	return props, nil
}

func isNull(node *yaml.Node) bool {
	return node.Kind == 0 || (node.Kind == yaml.ScalarNode && node.ShortTag() == "!!null")
}

func strNode(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}

// normalize turns nested YAML values into JSON-compatible ones.
func normalize(v any) any {
	switch t := v.(type) {
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = normalize(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = normalize(e)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[fmt.Sprint(k)] = normalize(e)
		}
		return out
	default:
		return v
	}
}

// checksFor expands one vector expectation: a presence check followed by
// one check per property, in propOrder.
func (v VectorExpectation) checksFor() ([]check.Check, error) {
	checks := []check.Check{{
		Kind:   check.Presence,
		Vector: v.Name,
		Errmsg: stringProp(v.Props, "presence_errmsg"),
	}}
	for _, kind := range propOrder {
		expected, ok := v.Props[string(kind)]
		if !ok {
			continue
		}
		c := check.Check{
			Kind:     kind,
			Vector:   v.Name,
			Expected: check.NewExpected(expected),
			Errmsg:   stringProp(v.Props, string(kind)+"_errmsg"),
		}
		if raw, ok := v.Props[string(kind)+"_tolerance"]; ok {
			tol, err := check.NewExpected(raw).Scalar()
			if err != nil {
				return nil, fmt.Errorf("%w: vector %s: %s_tolerance: %w", ErrInvalidExercise, v.Name, kind, err)
			}
			c.Tolerance = &tol
		}
		checks = append(checks, c)
	}
	return checks, nil
}

func stringProp(props map[string]any, key string) string {
	s, _ := props[key].(string)
	return s
}
