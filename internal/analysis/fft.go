package analysis

import (
	"errors"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

var ErrShortSeries = errors.New("analysis: series too short")

// PowerSpectrum returns the magnitude of the first half of the spectrum of a
// Hann-windowed, mean-removed copy of data.
func PowerSpectrum(data []float64) []float64 {
	n := len(data)
	if n < 2 {
		return []float64{}
	}

	mean := 0.0
	for _, v := range data {
		mean += v
	}
	mean /= float64(n)

	windowed := make([]float64, n)
	for i, v := range data {
		w := 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
		windowed[i] = (v - mean) * w
	}

	spectrum := fft.FFTReal(windowed)
	ps := make([]float64, n/2)
	for i := range ps {
		ps[i] = cmplx.Abs(spectrum[i])
	}
	return ps
}

// DominantFrequency returns the frequency, in cycles per unit time, of the
// largest non-DC bin of data sampled at sampleRate.
func DominantFrequency(data []float64, sampleRate float64) (float64, error) {
	if len(data) < 4 {
		return 0, ErrShortSeries
	}
	if sampleRate <= 0 {
		return 0, errors.New("analysis: sample rate must be positive")
	}

	ps := PowerSpectrum(data)
	best := 1
	for i := 2; i < len(ps); i++ {
		if ps[i] > ps[best] {
			best = i
		}
	}
	return float64(best) * sampleRate / float64(len(data)), nil
}
