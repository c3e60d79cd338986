package body

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// ID identifies a body for the lifetime of a store. IDs start at 1.
type ID uint32

// Spec is the initial condition of one body.
type Spec struct {
	Position r2.Vec
	Velocity r2.Vec
	Mass     float64
}

// Validate reports the first problem with s, or nil.
func (s Spec) Validate() error {
	switch {
	case math.IsNaN(s.Mass) || math.IsInf(s.Mass, 0):
		return ErrNonFiniteMass
	case s.Mass <= 0:
		return ErrNonPositiveMass
	case !finite(s.Position):
		return ErrNonFinitePosition
	case !finite(s.Velocity):
		return ErrNonFiniteVelocity
	}
	return nil
}

// State is a read-only copy of one body.
type State struct {
	ID       ID
	Position r2.Vec
	Velocity r2.Vec
	Mass     float64
}

// Finite reports whether position and velocity hold no NaN or Inf.
func (s State) Finite() bool {
	return finite(s.Position) && finite(s.Velocity)
}

// Snapshot is an immutable copy of identifiers, positions and masses,
// in storage order at the moment it was taken.
type Snapshot struct {
	IDs       []ID
	Positions []r2.Vec
	Masses    []float64
}

func (s Snapshot) Len() int { return len(s.IDs) }

// SnapshotOf rebuilds a snapshot from exported states.
func SnapshotOf(states []State) Snapshot {
	snap := Snapshot{
		IDs:       make([]ID, len(states)),
		Positions: make([]r2.Vec, len(states)),
		Masses:    make([]float64, len(states)),
	}
	for i, s := range states {
		snap.IDs[i] = s.ID
		snap.Positions[i] = s.Position
		snap.Masses[i] = s.Mass
	}
	return snap
}

func finite(v r2.Vec) bool {
	return !math.IsNaN(v.X) && !math.IsInf(v.X, 0) &&
		!math.IsNaN(v.Y) && !math.IsInf(v.Y, 0)
}
