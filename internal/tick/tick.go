// Package tick drives a simulation at a fixed cadence.
//
// A [Source] calls its callback once per tick with the tick's dt. [Fixed]
// emits ticks back to back for headless runs; [Realtime] paces them with a
// wall-clock ticker. Both stop early when the callback returns an error or
// the context is cancelled.
package tick

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"
)

// DefaultRate is the reference cadence in steps per second.
const DefaultRate = 60.0

// ErrStop may be returned by a callback to end a run without error.
var ErrStop = errors.New("tick: stop")

type Func func(dt float64) error

type Source interface {
	Run(ctx context.Context, fn Func) error
}

// Fixed emits Steps ticks of 1/Rate seconds without sleeping.
type Fixed struct {
	Rate  float64
	Steps int
}

func (f Fixed) Run(ctx context.Context, fn Func) error {
	if err := checkRate(f.Rate); err != nil {
		return err
	}
	dt := 1 / f.Rate

	for i := 0; i < f.Steps; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := fn(dt); err != nil {
			if errors.Is(err, ErrStop) {
				return nil
			}
			return err
		}
	}
	return nil
}

// Realtime emits ticks of 1/Rate seconds paced by the wall clock. Steps == 0
// runs until the context is cancelled.
//
// dt is always the nominal interval, not the measured one, so a slow
// callback slows the simulation down instead of changing its physics.
type Realtime struct {
	Rate  float64
	Steps int
}

func (r Realtime) Run(ctx context.Context, fn Func) error {
	if err := checkRate(r.Rate); err != nil {
		return err
	}
	dt := 1 / r.Rate

	ticker := time.NewTicker(Interval(r.Rate))
	defer ticker.Stop()

	for i := 0; r.Steps == 0 || i < r.Steps; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		if err := fn(dt); err != nil {
			if errors.Is(err, ErrStop) {
				return nil
			}
			return err
		}
	}
	return nil
}

// Interval converts a rate in steps per second to a tick period. Rates
// above one tick per nanosecond are paced at one nanosecond.
func Interval(rate float64) time.Duration {
	d := time.Duration(float64(time.Second) / rate)
	if d < time.Nanosecond {
		return time.Nanosecond
	}
	return d
}

func checkRate(rate float64) error {
	if !(rate > 0) || math.IsInf(rate, 0) {
		return fmt.Errorf("tick: rate must be positive, got %f", rate)
	}
	return nil
}
