package analysis

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/nbodysim/internal/body"
	"github.com/san-kum/nbodysim/internal/gravity"
	"gonum.org/v1/gonum/spatial/r2"
)

func sine(n int, freq, rate float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 3 + math.Sin(2*math.Pi*freq*float64(i)/rate)
	}
	return out
}

func TestDominantFrequency(t *testing.T) {
	tests := []struct {
		name string
		n    int
		freq float64
		rate float64
	}{
		{"power of two", 256, 4, 64},
		{"odd length", 300, 5, 60},
		{"slow orbit", 600, 0.5, 60},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DominantFrequency(sine(tt.n, tt.freq, tt.rate), tt.rate)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			binWidth := tt.rate / float64(tt.n)
			if math.Abs(got-tt.freq) > binWidth {
				t.Errorf("expected %v within %v, got %v", tt.freq, binWidth, got)
			}
		})
	}
}

func TestDominantFrequency_Errors(t *testing.T) {
	if _, err := DominantFrequency([]float64{1, 2}, 60); !errors.Is(err, ErrShortSeries) {
		t.Errorf("expected ErrShortSeries, got %v", err)
	}
	if _, err := DominantFrequency(sine(64, 1, 8), 0); err == nil {
		t.Error("expected error for zero sample rate")
	}
}

func TestPowerSpectrum(t *testing.T) {
	if ps := PowerSpectrum(nil); len(ps) != 0 {
		t.Errorf("expected empty spectrum, got %v", ps)
	}

	ps := PowerSpectrum(sine(128, 8, 128))
	if len(ps) != 64 {
		t.Fatalf("expected 64 bins, got %d", len(ps))
	}
	peak := 0
	for i := range ps {
		if ps[i] > ps[peak] {
			peak = i
		}
	}
	if peak != 8 {
		t.Errorf("expected peak at bin 8, got %d", peak)
	}
}

func TestDivergence(t *testing.T) {
	k := gravity.New(gravity.DefaultG)

	t.Run("single body is not chaotic", func(t *testing.T) {
		specs := []body.Spec{{Velocity: r2.Vec{X: 1}, Mass: 1}}
		rate, err := Divergence(k, specs, 1.0/60, 120, 1e-6)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if math.Abs(rate) > 1e-6 {
			t.Errorf("expected zero rate, got %v", rate)
		}
	})

	t.Run("invalid specs", func(t *testing.T) {
		_, err := Divergence(k, []body.Spec{{Mass: 0}}, 1.0/60, 10, 1e-6)
		if !errors.Is(err, body.ErrNonPositiveMass) {
			t.Errorf("expected ErrNonPositiveMass, got %v", err)
		}
	})

	t.Run("no perturbation", func(t *testing.T) {
		rate, err := Divergence(k, []body.Spec{{Mass: 1}}, 1.0/60, 10, 0)
		if err != nil || rate != 0 {
			t.Errorf("expected 0, nil; got %v, %v", rate, err)
		}
	})

	t.Run("regular orbit does not grow with run length", func(t *testing.T) {
		nk := gravity.New(gravity.DefaultG)
		nk.Mode = gravity.Newtonian
		specs := []body.Spec{
			{Position: r2.Vec{X: -1}, Velocity: r2.Vec{Y: -0.5}, Mass: 1},
			{Position: r2.Vec{X: 1}, Velocity: r2.Vec{Y: 0.5}, Mass: 1},
		}

		short, err := Divergence(nk, specs, 0.01, 2000, 1e-6)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		long, err := Divergence(nk, specs, 0.01, 20000, 1e-6)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if long > short+1e-3 {
			t.Errorf("rate grew with run length: %v -> %v", short, long)
		}
		if long > 0.05 {
			t.Errorf("expected a near-zero rate for a circular pair, got %v", long)
		}
	})

	t.Run("ring is finite", func(t *testing.T) {
		specs := make([]body.Spec, 6)
		for i := range specs {
			a := 2 * math.Pi * float64(i) / 6
			specs[i] = body.Spec{
				Position: r2.Vec{X: 100 * math.Cos(a), Y: 100 * math.Sin(a)},
				Velocity: r2.Vec{X: -math.Sin(a), Y: math.Cos(a)},
				Mass:     5,
			}
		}
		rate, err := Divergence(k, specs, 1.0/60, 300, 1e-8)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if math.IsNaN(rate) || math.IsInf(rate, 0) {
			t.Errorf("expected finite rate, got %v", rate)
		}
	})
}
