package gravity

import (
	"errors"
	"math"

	"github.com/san-kum/nbodysim/internal/body"
	"gonum.org/v1/gonum/spatial/r2"
)

// DefaultG is the gravitational constant used by the reference scene.
const DefaultG = 1.0

var ErrUnknownMode = errors.New("gravity: unknown mode")

type Kernel struct {
	G             float64
	MinSeparation float64
	Mode          Mode
	Workers       int
}

func New(g float64) *Kernel {
	return &Kernel{G: g, Mode: Impulse}
}

// Apply snapshots st and updates every velocity from that snapshot.
// Positions are not touched.
func (k *Kernel) Apply(st *body.Store, dt float64) {
	snap := st.Snapshot()

	update := func(i int, id body.ID, vel, _ *r2.Vec) {
		*vel = k.accumulate(snap, i, id, *vel, dt)
	}

	if k.Workers > 1 {
		st.ForEachMutParallel(k.Workers, update)
		return
	}
	st.ForEachMut(update)
}

// accumulate folds every pair contribution for the body at snapshot index i
// onto vel, in snapshot order.
func (k *Kernel) accumulate(snap body.Snapshot, i int, id body.ID, vel r2.Vec, dt float64) r2.Vec {
	pos := snap.Positions[i]
	mass := snap.Masses[i]

	for j, other := range snap.IDs {
		if other == id {
			continue
		}

		d := r2.Sub(snap.Positions[j], pos)
		r := r2.Norm(d)
		rm := r
		if k.MinSeparation > 0 {
			if r == 0 {
				continue
			}
			rm = math.Max(r, k.MinSeparation)
		}

		dir := r2.Scale(1/r, d)

		var mag float64
		switch k.Mode {
		case Newtonian:
			mag = k.G * snap.Masses[j] / (rm * rm) * dt
		default:
			mag = k.G * (mass * snap.Masses[j]) / (rm * rm)
		}

		vel = r2.Add(vel, r2.Scale(mag, dir))
	}

	return vel
}

// Potential returns the total pairwise potential energy -G*m_i*m_j/r of
// snap, using the same separation clamp as Apply.
func (k *Kernel) Potential(snap body.Snapshot) float64 {
	pe := 0.0
	n := snap.Len()
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			r := r2.Norm(r2.Sub(snap.Positions[j], snap.Positions[i]))
			if k.MinSeparation > 0 {
				if r == 0 {
					continue
				}
				r = math.Max(r, k.MinSeparation)
			}
			pe -= k.G * snap.Masses[i] * snap.Masses[j] / r
		}
	}
	return pe
}
