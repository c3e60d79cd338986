package body

import (
	"errors"
	"fmt"
)

// Validation errors returned by New.
var (
	ErrNoBodies          = errors.New("body: no bodies supplied")
	ErrNonPositiveMass   = errors.New("body: mass must be positive")
	ErrNonFiniteMass     = errors.New("body: mass is NaN or Inf")
	ErrNonFinitePosition = errors.New("body: position is NaN or Inf")
	ErrNonFiniteVelocity = errors.New("body: velocity is NaN or Inf")
	ErrBadPermutation    = errors.New("body: invalid permutation")
)

// SpecError reports which input spec failed validation.
type SpecError struct {
	Index   int
	Spec    Spec
	Wrapped error
}

func (e *SpecError) Error() string {
	return fmt.Sprintf("body %d: %v (mass=%g pos=(%g,%g) vel=(%g,%g))",
		e.Index, e.Wrapped, e.Spec.Mass,
		e.Spec.Position.X, e.Spec.Position.Y,
		e.Spec.Velocity.X, e.Spec.Velocity.Y)
}

func (e *SpecError) Unwrap() error {
	return e.Wrapped
}
