package sim

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/nbodysim/internal/body"
	"github.com/san-kum/nbodysim/internal/gravity"
	"github.com/san-kum/nbodysim/internal/integrators"
	"github.com/san-kum/nbodysim/internal/tick"
	"gonum.org/v1/gonum/spatial/r2"
)

func referencePair() []body.Spec {
	return []body.Spec{
		{Position: r2.Vec{X: -5}, Mass: 10},
		{Position: r2.Vec{X: 5}, Mass: 10},
	}
}

func newSim() *Simulator {
	return New(gravity.New(gravity.DefaultG), integrators.NewEuler())
}

func TestSimulatorStep_ReferencePair(t *testing.T) {
	s := newSim()
	if err := s.Initialize(referencePair()); err != nil {
		t.Fatalf("initialize failed: %v", err)
	}

	dt := 1.0 / 60
	if err := s.Step(dt); err != nil {
		t.Fatalf("step failed: %v", err)
	}

	state := s.ReadState()
	if math.Abs(state[0].Velocity.X-1) > 1e-12 || state[0].Velocity.Y != 0 {
		t.Errorf("body 1 velocity %v, want (1,0)", state[0].Velocity)
	}
	if math.Abs(state[1].Velocity.X+1) > 1e-12 || state[1].Velocity.Y != 0 {
		t.Errorf("body 2 velocity %v, want (-1,0)", state[1].Velocity)
	}

	// positions move with the already-updated velocity
	if math.Abs(state[0].Position.X-(-5+dt)) > 1e-12 {
		t.Errorf("body 1 x = %v, want %v", state[0].Position.X, -5+dt)
	}
	if math.Abs(state[1].Position.X-(5-dt)) > 1e-12 {
		t.Errorf("body 2 x = %v, want %v", state[1].Position.X, 5-dt)
	}

	if s.Steps() != 1 || math.Abs(s.Time()-dt) > 1e-15 {
		t.Errorf("clock not advanced: steps=%d t=%v", s.Steps(), s.Time())
	}
}

func TestSimulatorStep_Errors(t *testing.T) {
	s := newSim()
	if err := s.Step(0.1); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("expected ErrNotInitialized, got %v", err)
	}
	if s.ReadState() != nil {
		t.Error("expected nil state before initialize")
	}

	if err := s.Initialize(referencePair()); err != nil {
		t.Fatalf("initialize failed: %v", err)
	}

	tests := []struct {
		name string
		dt   float64
	}{
		{"zero dt", 0},
		{"negative dt", -0.1},
		{"NaN dt", math.NaN()},
		{"Inf dt", math.Inf(1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := s.Step(tt.dt); !errors.Is(err, ErrInvalidDt) {
				t.Errorf("expected ErrInvalidDt, got %v", err)
			}
		})
	}

	if s.Steps() != 0 {
		t.Errorf("rejected steps must not advance the clock, got %d", s.Steps())
	}
}

func TestSimulatorInitialize_Rejects(t *testing.T) {
	s := newSim()
	if err := s.Initialize(referencePair()); err != nil {
		t.Fatalf("initialize failed: %v", err)
	}

	err := s.Initialize([]body.Spec{{Mass: -3}})
	if !errors.Is(err, body.ErrNonPositiveMass) {
		t.Fatalf("expected ErrNonPositiveMass, got %v", err)
	}

	if len(s.ReadState()) != 2 {
		t.Error("failed initialize replaced the existing bodies")
	}
}

func TestSimulatorReadState_IsCopy(t *testing.T) {
	s := newSim()
	_ = s.Initialize(referencePair())

	state := s.ReadState()
	state[0].Velocity = r2.Vec{X: 100}
	state[0].Position = r2.Vec{X: 100}

	got := s.ReadState()[0]
	if got.Velocity != (r2.Vec{}) || got.Position.X != -5 {
		t.Errorf("ReadState leaked a mutable reference: %+v", got)
	}
}

type countMetric struct {
	count int
}

func (c *countMetric) Name() string                       { return "count" }
func (c *countMetric) Observe(_ []body.State, _ float64) { c.count++ }
func (c *countMetric) Value() float64                     { return float64(c.count) }
func (c *countMetric) Reset()                             { c.count = 0 }

type recordObserver struct {
	times []float64
}

func (r *recordObserver) OnStep(_ []body.State, t float64) { r.times = append(r.times, t) }

func TestSimulatorRun(t *testing.T) {
	s := newSim()
	_ = s.Initialize(referencePair())

	metric := &countMetric{}
	obs := &recordObserver{}
	s.AddMetric(metric)
	s.AddObserver(obs)

	cfg := RunConfig{SampleEvery: 4}
	result, err := s.Run(context.Background(), tick.Fixed{Rate: 60, Steps: 10}, cfg)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if result.StepsTaken != 10 {
		t.Errorf("expected 10 steps, got %d", result.StepsTaken)
	}

	// initial, step 4, step 8, final step 10
	wantSteps := []int{0, 4, 8, 10}
	if len(result.Frames) != len(wantSteps) {
		t.Fatalf("expected %d frames, got %d", len(wantSteps), len(result.Frames))
	}
	for i, f := range result.Frames {
		if f.Step != wantSteps[i] {
			t.Errorf("frame %d: expected step %d, got %d", i, wantSteps[i], f.Step)
		}
		if len(f.Bodies) != 2 {
			t.Errorf("frame %d: expected 2 bodies, got %d", i, len(f.Bodies))
		}
	}

	if result.Metrics["count"] != 11 {
		t.Errorf("expected 11 observations, got %v", result.Metrics["count"])
	}
	if len(obs.times) != 11 {
		t.Errorf("expected 11 observer calls, got %d", len(obs.times))
	}
}

func TestSimulatorRun_NotInitialized(t *testing.T) {
	_, err := newSim().Run(context.Background(), tick.Fixed{Rate: 60, Steps: 1}, DefaultRunConfig())
	if !errors.Is(err, ErrNotInitialized) {
		t.Errorf("expected ErrNotInitialized, got %v", err)
	}
}

func TestSimulatorRun_StopOnNonFinite(t *testing.T) {
	s := newSim()
	_ = s.Initialize([]body.Spec{
		{Position: r2.Vec{X: 1}, Mass: 1},
		{Position: r2.Vec{X: 1}, Mass: 1},
	})

	cfg := RunConfig{SampleEvery: 0, StopOnNonFinite: true}
	result, err := s.Run(context.Background(), tick.Fixed{Rate: 60, Steps: 50}, cfg)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if result.StepsTaken != 1 {
		t.Errorf("expected run to stop after 1 step, got %d", result.StepsTaken)
	}
	if len(result.Errors) != 1 || !errors.Is(result.Errors[0], ErrNonFinite) {
		t.Fatalf("expected one ErrNonFinite, got %v", result.Errors)
	}

	var se *StepError
	if !errors.As(result.Errors[0], &se) || se.Step != 1 {
		t.Errorf("expected StepError at step 1, got %v", result.Errors[0])
	}
	if len(result.Frames) != 2 {
		t.Errorf("expected initial and final frame, got %d", len(result.Frames))
	}
}

func TestSimulatorRun_Canceled(t *testing.T) {
	s := newSim()
	_ = s.Initialize(referencePair())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := s.Run(ctx, tick.Fixed{Rate: 60, Steps: 10}, DefaultRunConfig())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if result == nil || result.StepsTaken != 0 {
		t.Errorf("expected partial result with 0 steps, got %+v", result)
	}
}

func TestStepError(t *testing.T) {
	err := &StepError{Step: 150, Time: 2.5, Wrapped: ErrNonFinite}
	want := "step 150 (t=2.5000): sim: non-finite body state (NaN or Inf)"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestReorder(t *testing.T) {
	s := newSim()
	if err := s.Reorder([]int{0}); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("expected ErrNotInitialized, got %v", err)
	}

	_ = s.Initialize(referencePair())
	if err := s.Reorder([]int{1, 0}); err != nil {
		t.Fatalf("reorder failed: %v", err)
	}
	if s.ReadState()[0].ID != 2 {
		t.Error("reorder did not change storage order")
	}
}

func TestTrack(t *testing.T) {
	frames := []Frame{
		{Time: 0, Bodies: []body.State{{ID: 1}, {ID: 2, Mass: 2}}},
		{Time: 1, Bodies: []body.State{{ID: 1}}},
		{Time: 2, Bodies: []body.State{{ID: 2, Mass: 3}, {ID: 1}}},
	}

	times, states := Track(frames, 2)
	if len(times) != 2 || times[0] != 0 || times[1] != 2 {
		t.Fatalf("unexpected times %v", times)
	}
	if states[1].Mass != 3 {
		t.Errorf("expected mass 3, got %v", states[1].Mass)
	}

	if times, _ := Track(frames, 9); len(times) != 0 {
		t.Errorf("expected no samples for unknown id, got %v", times)
	}
}
