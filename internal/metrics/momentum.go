package metrics

import (
	"math"

	"github.com/san-kum/nbodysim/internal/body"
	"gonum.org/v1/gonum/spatial/r2"
)

func Momentum(bodies []body.State) r2.Vec {
	var p r2.Vec
	for _, b := range bodies {
		p = r2.Add(p, r2.Scale(b.Mass, b.Velocity))
	}
	return p
}

func VelocitySum(bodies []body.State) r2.Vec {
	var v r2.Vec
	for _, b := range bodies {
		v = r2.Add(v, b.Velocity)
	}
	return v
}

// VectorDrift tracks the largest distance of a per-step vector quantity from
// its first observed value.
type VectorDrift struct {
	name     string
	measure  func([]body.State) r2.Vec
	initial  r2.Vec
	maxDrift float64
	samples  int
}

// NewMomentumDrift drifts on total linear momentum sum(m*v).
func NewMomentumDrift() *VectorDrift {
	return &VectorDrift{name: "momentum_drift", measure: Momentum}
}

// NewVelocitySumDrift drifts on sum(v), which the impulse update conserves
// for any masses.
func NewVelocitySumDrift() *VectorDrift {
	return &VectorDrift{name: "velocity_sum_drift", measure: VelocitySum}
}

func (d *VectorDrift) Name() string { return d.name }

func (d *VectorDrift) Observe(bodies []body.State, t float64) {
	v := d.measure(bodies)
	if d.samples == 0 {
		d.initial = v
	}
	d.samples++
	d.maxDrift = math.Max(d.maxDrift, r2.Norm(r2.Sub(v, d.initial)))
}

func (d *VectorDrift) Value() float64 { return d.maxDrift }

func (d *VectorDrift) Reset() {
	d.initial = r2.Vec{}
	d.maxDrift = 0
	d.samples = 0
}
