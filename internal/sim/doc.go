// Package sim orchestrates the per-step ordering of an N-body run.
//
// A [Simulator] owns one [body.Store]. Each [Simulator.Step] takes a
// snapshot, lets the gravity kernel update every velocity from that
// snapshot, then lets the integrator move every body with its new velocity.
// Nothing else may write to the store.
//
//	s := sim.New(gravity.New(gravity.DefaultG), integrators.NewEuler())
//	if err := s.Initialize(specs); err != nil {
//	    return err
//	}
//	res, err := s.Run(ctx, tick.Fixed{Rate: 60, Steps: 600}, sim.DefaultRunConfig())
//
// # Thread Safety
//
// Simulator instances are NOT thread-safe. Drive each one from a single
// goroutine; the kernel's own worker fan-out is internal to a step.
package sim
