package metrics

import (
	"github.com/san-kum/nbodysim/internal/body"
	"gonum.org/v1/gonum/spatial/r2"
)

// Stability is the fraction of observations in which every body is finite
// and within radius of the origin.
type Stability struct {
	name       string
	radius     float64
	violations int
	samples    int
}

func NewStability(radius float64) *Stability {
	return &Stability{
		name:   "stability",
		radius: radius,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(bodies []body.State, t float64) {
	s.samples++
	for _, b := range bodies {
		if !b.Finite() || r2.Norm(b.Position) > s.radius {
			s.violations++
			break
		}
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}

// NonFinite counts observations holding any NaN or Inf.
type NonFinite struct {
	count int
}

func NewNonFinite() *NonFinite { return &NonFinite{} }

func (n *NonFinite) Name() string { return "non_finite_steps" }

func (n *NonFinite) Observe(bodies []body.State, t float64) {
	for _, b := range bodies {
		if !b.Finite() {
			n.count++
			return
		}
	}
}

func (n *NonFinite) Value() float64 { return float64(n.count) }
func (n *NonFinite) Reset()         { n.count = 0 }
