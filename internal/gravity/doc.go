// Package gravity implements the all-pairs inverse-square velocity update.
//
// For every body A and every other body B (compared by [body.ID]), the
// kernel adds
//
//	normalize(B.pos - A.pos) * G * m_A * m_B / r^2
//
// directly to A's velocity, one pair at a time in snapshot order. In the
// default [Impulse] mode there is no dt factor: the update is tied to the
// caller's fixed step cadence. [Newtonian] mode integrates the true
// acceleration G * m_B / r^2 over dt instead.
//
// Coincident bodies are a singularity. With MinSeparation == 0 the division
// by zero is left alone and NaN/Inf propagate into later steps. A positive
// MinSeparation clamps r for the magnitude and drops pairs at exactly r == 0.
//
// The work is O(n^2) per step. Setting Workers > 1 fans the outer loop out
// over goroutines; each body's sum still runs sequentially over the
// snapshot, so results are bit-identical to the single-goroutine path.
package gravity
