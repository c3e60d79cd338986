package body

import (
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/spatial/r2"
)

// MutFunc mutates the body stored at index i.
type MutFunc func(i int, id ID, vel, pos *r2.Vec)

type Store struct {
	ids        []ID
	positions  []r2.Vec
	velocities []r2.Vec
	masses     []float64
}

// New validates specs and builds a store. IDs are assigned 1..n in input
// order.
func New(specs []Spec) (*Store, error) {
	if len(specs) == 0 {
		return nil, ErrNoBodies
	}

	n := len(specs)
	s := &Store{
		ids:        make([]ID, n),
		positions:  make([]r2.Vec, n),
		velocities: make([]r2.Vec, n),
		masses:     make([]float64, n),
	}

	for i, spec := range specs {
		if err := spec.Validate(); err != nil {
			return nil, &SpecError{Index: i, Spec: spec, Wrapped: err}
		}
		s.ids[i] = ID(i + 1)
		s.positions[i] = spec.Position
		s.velocities[i] = spec.Velocity
		s.masses[i] = spec.Mass
	}

	return s, nil
}

func (s *Store) Len() int { return len(s.ids) }

// Snapshot copies identifiers, positions and masses.
func (s *Store) Snapshot() Snapshot {
	snap := Snapshot{
		IDs:       make([]ID, len(s.ids)),
		Positions: make([]r2.Vec, len(s.positions)),
		Masses:    make([]float64, len(s.masses)),
	}
	copy(snap.IDs, s.ids)
	copy(snap.Positions, s.positions)
	copy(snap.Masses, s.masses)
	return snap
}

// State copies every body for export.
func (s *Store) State() []State {
	out := make([]State, len(s.ids))
	for i := range s.ids {
		out[i] = State{
			ID:       s.ids[i],
			Position: s.positions[i],
			Velocity: s.velocities[i],
			Mass:     s.masses[i],
		}
	}
	return out
}

// ForEachMut applies fn to every body in storage order.
func (s *Store) ForEachMut(fn MutFunc) {
	for i := range s.ids {
		fn(i, s.ids[i], &s.velocities[i], &s.positions[i])
	}
}

// ForEachMutParallel applies fn to every body using up to workers
// goroutines over disjoint index ranges. It returns once every body has been
// visited. fn must only touch the body it is handed.
func (s *Store) ForEachMutParallel(workers int, fn MutFunc) {
	n := len(s.ids)
	if workers <= 1 || n < 2 {
		s.ForEachMut(fn)
		return
	}
	if workers > n {
		workers = n
	}

	chunk := (n + workers - 1) / workers

	var g errgroup.Group
	for start := 0; start < n; start += chunk {
		end := min(start+chunk, n)
		g.Go(func() error {
			for i := start; i < end; i++ {
				fn(i, s.ids[i], &s.velocities[i], &s.positions[i])
			}
			return nil
		})
	}
	// workers never fail; Wait is only the join
	_ = g.Wait()
}

// Permute reorders storage so that new index i holds the body previously at
// perm[i]. perm must be a permutation of 0..Len()-1.
func (s *Store) Permute(perm []int) error {
	n := len(s.ids)
	if len(perm) != n {
		return ErrBadPermutation
	}
	seen := make([]bool, n)
	for _, p := range perm {
		if p < 0 || p >= n || seen[p] {
			return ErrBadPermutation
		}
		seen[p] = true
	}

	ids := make([]ID, n)
	pos := make([]r2.Vec, n)
	vel := make([]r2.Vec, n)
	mass := make([]float64, n)
	for i, p := range perm {
		ids[i] = s.ids[p]
		pos[i] = s.positions[p]
		vel[i] = s.velocities[p]
		mass[i] = s.masses[p]
	}
	s.ids, s.positions, s.velocities, s.masses = ids, pos, vel, mass
	return nil
}
