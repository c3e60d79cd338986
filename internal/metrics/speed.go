package metrics

import (
	"github.com/san-kum/nbodysim/internal/body"
	"gonum.org/v1/gonum/spatial/r2"
)

// MeanSpeed averages |v| over every body and observation.
type MeanSpeed struct {
	name    string
	sum     float64
	samples int
}

func NewMeanSpeed() *MeanSpeed {
	return &MeanSpeed{
		name: "mean_speed",
	}
}

func (m *MeanSpeed) Name() string {
	return m.name
}

func (m *MeanSpeed) Observe(bodies []body.State, t float64) {
	for _, b := range bodies {
		m.sum += r2.Norm(b.Velocity)
		m.samples++
	}
}

func (m *MeanSpeed) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

func (m *MeanSpeed) Reset() {
	m.sum = 0
	m.samples = 0
}
