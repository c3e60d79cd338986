package metrics

import (
	"math"

	"github.com/san-kum/nbodysim/internal/body"
	"github.com/san-kum/nbodysim/internal/gravity"
)

// Energy returns kinetic plus pairwise potential energy under k.
func Energy(k *gravity.Kernel, bodies []body.State) float64 {
	return Kinetic(bodies) + k.Potential(body.SnapshotOf(bodies))
}

func Kinetic(bodies []body.State) float64 {
	ke := 0.0
	for _, b := range bodies {
		v := b.Velocity
		ke += 0.5 * b.Mass * (v.X*v.X + v.Y*v.Y)
	}
	return ke
}

// EnergyDrift reports the largest relative change of total energy from the
// first observation.
type EnergyDrift struct {
	name          string
	initialEnergy float64
	currentEnergy float64
	maxDrift      float64
	samples       int
	kernel        *gravity.Kernel
}

func NewEnergyDrift(k *gravity.Kernel) *EnergyDrift {
	return &EnergyDrift{
		name:   "energy_drift",
		kernel: k,
	}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(bodies []body.State, t float64) {
	energy := Energy(e.kernel, bodies)

	if e.samples == 0 {
		e.initialEnergy = energy
	}

	e.currentEnergy = energy
	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(energy-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

// Current is the energy at the latest observation.
func (e *EnergyDrift) Current() float64 {
	return e.currentEnergy
}

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.currentEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}
