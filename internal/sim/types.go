package sim

import "github.com/san-kum/nbodysim/internal/body"

// Integrator advances positions from the velocities already in the store.
type Integrator interface {
	Step(st *body.Store, dt float64)
}

type Metric interface {
	Name() string
	Observe(bodies []body.State, t float64)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(bodies []body.State, t float64)
}

type RunConfig struct {
	// SampleEvery records a frame every n steps. Zero records only the
	// first and last frame.
	SampleEvery     int
	StopOnNonFinite bool
}

func DefaultRunConfig() RunConfig {
	return RunConfig{
		SampleEvery:     1,
		StopOnNonFinite: false,
	}
}

// Frame is every body's state at one instant.
type Frame struct {
	Step   int
	Time   float64
	Bodies []body.State
}

type Result struct {
	Frames     []Frame
	Metrics    map[string]float64
	StepsTaken int
	Errors     []error
}

// Finite reports whether every body in bodies is finite.
func Finite(bodies []body.State) bool {
	for _, b := range bodies {
		if !b.Finite() {
			return false
		}
	}
	return true
}

// Track pulls one body's state out of each frame. Frames where the body is
// missing are skipped.
func Track(frames []Frame, id body.ID) ([]float64, []body.State) {
	times := make([]float64, 0, len(frames))
	states := make([]body.State, 0, len(frames))
	for _, f := range frames {
		for _, b := range f.Bodies {
			if b.ID == id {
				times = append(times, f.Time)
				states = append(states, b)
				break
			}
		}
	}
	return times, states
}
