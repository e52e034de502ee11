package check

import (
	"errors"
)

// Sentinel kinds for malformed checks. These are caller contract violations,
// never grading outcomes.
var (
	ErrMissingTarget     = errors.New("check target not on board")
	ErrMalformedExpected = errors.New("malformed expected value")
)

// ValidationError is the failure of a single check: the answer is wrong and
// Msg explains why.
type ValidationError struct {
	Kind   Kind
	Target string
	Msg    string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

// Fail returns a *ValidationError for check c.
func Fail(c Check, msg string) error {
	return &ValidationError{Kind: c.Kind, Target: c.Target(), Msg: msg}
}

// AsValidation reports whether err is a check failure and returns it.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
