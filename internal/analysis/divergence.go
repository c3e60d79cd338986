package analysis

import (
	"math"

	"github.com/san-kum/nbodysim/internal/body"
	"github.com/san-kum/nbodysim/internal/gravity"
	"github.com/san-kum/nbodysim/internal/integrators"
	"github.com/san-kum/nbodysim/internal/sim"
	"gonum.org/v1/gonum/spatial/r2"
)

// Divergence estimates the largest Lyapunov exponent of an N-body
// configuration by the trajectory separation method: the first body of a
// copy is displaced by perturbation along x, both copies are stepped, and
// the phase-space separation is renormalized back to perturbation whenever
// it exceeds 1.
func Divergence(k *gravity.Kernel, specs []body.Spec, dt float64, steps int, perturbation float64) (float64, error) {
	if perturbation <= 0 || steps <= 0 {
		return 0, nil
	}

	ref := sim.New(k, integrators.NewEuler())
	if err := ref.Initialize(specs); err != nil {
		return 0, err
	}

	shifted := make([]body.Spec, len(specs))
	copy(shifted, specs)
	shifted[0].Position.X += perturbation

	pert := sim.New(k, integrators.NewEuler())
	if err := pert.Initialize(shifted); err != nil {
		return 0, err
	}

	sumLog := 0.0
	last := perturbation
	taken := 0

	for i := 0; i < steps; i++ {
		if err := ref.Step(dt); err != nil {
			return 0, err
		}
		if err := pert.Step(dt); err != nil {
			return 0, err
		}

		a, b := ref.ReadState(), pert.ReadState()
		sep := separation(a, b)
		if math.IsNaN(sep) || math.IsInf(sep, 0) {
			break
		}
		taken++
		last = sep

		// growth since the last renormalization is counted once, here or
		// at the end of the run
		if sep > 1.0 {
			sumLog += math.Log(sep / perturbation)
			last = perturbation
			if err := pert.Initialize(renormalize(a, b, perturbation/sep)); err != nil {
				return 0, err
			}
		}
	}

	if taken == 0 {
		return 0, nil
	}
	if last > 0 {
		sumLog += math.Log(last / perturbation)
	}
	return sumLog / (float64(taken) * dt), nil
}

func separation(a, b []body.State) float64 {
	sum := 0.0
	for i := range a {
		dx := b[i].Position.X - a[i].Position.X
		dy := b[i].Position.Y - a[i].Position.Y
		dvx := b[i].Velocity.X - a[i].Velocity.X
		dvy := b[i].Velocity.Y - a[i].Velocity.Y
		sum += dx*dx + dy*dy + dvx*dvx + dvy*dvy
	}
	return math.Sqrt(sum)
}

// renormalize pulls b towards a so that their separation shrinks by scale.
func renormalize(a, b []body.State, scale float64) []body.Spec {
	specs := make([]body.Spec, len(a))
	for i := range a {
		specs[i] = body.Spec{
			Position: r2.Add(a[i].Position, r2.Scale(scale, r2.Sub(b[i].Position, a[i].Position))),
			Velocity: r2.Add(a[i].Velocity, r2.Scale(scale, r2.Sub(b[i].Velocity, a[i].Velocity))),
			Mass:     a[i].Mass,
		}
	}
	return specs
}
