// Package analysis characterizes recorded and live N-body runs.
//
//   - [PowerSpectrum]: windowed magnitude spectrum of a sampled series
//   - [DominantFrequency]: strongest non-DC frequency, e.g. an orbital period
//   - [Divergence]: largest Lyapunov-style exponent from two nearby runs
//
// A positive divergence rate indicates sensitivity to initial conditions:
//
//	rate, err := analysis.Divergence(kernel, specs, dt, 600, 1e-8)
//	if rate > 0 {
//	    // nearby configurations separate exponentially
//	}
package analysis
