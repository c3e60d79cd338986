package metrics

import (
	"github.com/san-kum/nbodysim/internal/gravity"
	"github.com/san-kum/nbodysim/internal/sim"
)

// DefaultRadius bounds the stability metric when no scene radius is known.
const DefaultRadius = 1e4

// Defaults returns the metrics recorded for every stored run.
func Defaults(k *gravity.Kernel, radius float64) []sim.Metric {
	if radius <= 0 {
		radius = DefaultRadius
	}
	return []sim.Metric{
		NewEnergyDrift(k),
		NewMomentumDrift(),
		NewVelocitySumDrift(),
		NewStability(radius),
		NewNonFinite(),
		NewMeanSpeed(),
	}
}
