package integrators

import (
	"github.com/san-kum/nbodysim/internal/body"
	"gonum.org/v1/gonum/spatial/r2"
)

// Euler advances positions with the velocities already in the store. Run
// after the gravity pass this is semi-implicit (symplectic) Euler.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(st *body.Store, dt float64) {
	st.ForEachMut(func(_ int, _ body.ID, vel, pos *r2.Vec) {
		*pos = r2.Add(*pos, r2.Scale(dt, *vel))
	})
}
