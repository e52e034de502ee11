package geometry

import "errors"

// Sentinel kinds for geometry errors.
var (
	ErrMalformedCoords = errors.New("coordinates must be a pair of numbers")
)
