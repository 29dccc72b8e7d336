// Package floor defines the Floor type and its range validation. Every
// external entry point into the controller validates floors through here.
package floor

import (
	"errors"
	"fmt"
)

// Floor is an integer floor index. Floors may be negative.
type Floor int

// ErrInvalidFloor is returned when a floor is outside the configured bounds.
var ErrInvalidFloor = errors.New("invalid floor")

// Range is an inclusive floor interval.
type Range struct {
	Min Floor
	Max Floor
}

// Contains reports whether f lies within the range.
func (r Range) Contains(f Floor) bool {
	return f >= r.Min && f <= r.Max
}

// Validate returns ErrInvalidFloor (wrapped with context) when f is outside
// the range.
func (r Range) Validate(f Floor) error {
	if !r.Contains(f) {
		return fmt.Errorf("%w: %d not in [%d, %d]", ErrInvalidFloor, f, r.Min, r.Max)
	}
	return nil
}

// ValidatePtr validates an optional floor; nil is always valid.
func (r Range) ValidatePtr(f *Floor) error {
	if f == nil {
		return nil
	}
	return r.Validate(*f)
}

// Abs returns the absolute distance between two floors in floor steps.
func Abs(a, b Floor) int {
	d := int(a) - int(b)
	if d < 0 {
		return -d
	}
	return d
}
