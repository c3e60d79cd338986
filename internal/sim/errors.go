package sim

import (
	"errors"
	"fmt"
)

var (
	// ErrNotInitialized is returned by Step and Run before Initialize.
	ErrNotInitialized = errors.New("sim: no bodies, call Initialize first")

	// ErrInvalidDt is returned by Step for a dt that is not positive and finite.
	ErrInvalidDt = errors.New("sim: dt must be positive and finite")

	// ErrNonFinite marks a state holding NaN or Inf.
	ErrNonFinite = errors.New("sim: non-finite body state (NaN or Inf)")
)

// StepError records where a run went wrong.
type StepError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
