package sim

import (
	"context"
	"fmt"
	"io"
	"math"

	"github.com/charmbracelet/log"
	"github.com/san-kum/nbodysim/internal/body"
	"github.com/san-kum/nbodysim/internal/gravity"
	"github.com/san-kum/nbodysim/internal/tick"
)

type Simulator struct {
	kernel     *gravity.Kernel
	integrator Integrator
	store      *body.Store
	metrics    []Metric
	observers  []Observer
	logger     *log.Logger
	t          float64
	steps      int
}

func New(kernel *gravity.Kernel, integrator Integrator) *Simulator {
	return &Simulator{
		kernel:     kernel,
		integrator: integrator,
		metrics:    make([]Metric, 0),
		observers:  make([]Observer, 0),
		logger:     log.New(io.Discard),
	}
}

func (s *Simulator) AddMetric(m Metric)      { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer)  { s.observers = append(s.observers, o) }
func (s *Simulator) SetLogger(l *log.Logger) { s.logger = l }

func (s *Simulator) Kernel() *gravity.Kernel { return s.kernel }
func (s *Simulator) Time() float64           { return s.t }
func (s *Simulator) Steps() int              { return s.steps }

// Initialize replaces the body set and resets the clock. Invalid specs are
// rejected and leave the previous body set in place.
func (s *Simulator) Initialize(specs []body.Spec) error {
	st, err := body.New(specs)
	if err != nil {
		return fmt.Errorf("initialize: %w", err)
	}

	s.store = st
	s.t = 0
	s.steps = 0

	s.logger.Debug("initialized",
		"bodies", st.Len(),
		"g", s.kernel.G,
		"mode", s.kernel.Mode,
		"min_separation", s.kernel.MinSeparation,
		"workers", s.kernel.Workers,
	)
	return nil
}

// Step runs one gravity pass followed by one integration pass. Numerical
// degeneracy is not an error: NaN and Inf are carried into later steps.
func (s *Simulator) Step(dt float64) error {
	if s.store == nil {
		return ErrNotInitialized
	}
	if dt <= 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
		return fmt.Errorf("%w: got %v", ErrInvalidDt, dt)
	}

	s.kernel.Apply(s.store, dt)
	s.integrator.Step(s.store, dt)

	s.t += dt
	s.steps++
	return nil
}

// ReadState returns a copy of every body; nil before Initialize.
func (s *Simulator) ReadState() []body.State {
	if s.store == nil {
		return nil
	}
	return s.store.State()
}

// Reorder permutes internal storage order. Results of later steps do not
// depend on it beyond floating-point summation order.
func (s *Simulator) Reorder(perm []int) error {
	if s.store == nil {
		return ErrNotInitialized
	}
	return s.store.Permute(perm)
}

// Run steps the simulator once per tick from src until src stops, the
// context is cancelled, or cfg.StopOnNonFinite trips.
func (s *Simulator) Run(ctx context.Context, src tick.Source, cfg RunConfig) (*Result, error) {
	if s.store == nil {
		return nil, ErrNotInitialized
	}

	result := &Result{
		Frames:  make([]Frame, 0),
		Metrics: make(map[string]float64),
		Errors:  make([]error, 0),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	bodies := s.ReadState()
	s.observe(bodies)
	result.Frames = append(result.Frames, Frame{Step: s.steps, Time: s.t, Bodies: bodies})
	lastSampled := s.steps

	s.logger.Info("run started", "bodies", len(bodies), "t", s.t)

	err := src.Run(ctx, func(dt float64) error {
		if err := s.Step(dt); err != nil {
			return err
		}
		result.StepsTaken++

		bodies := s.ReadState()
		s.observe(bodies)

		if cfg.SampleEvery > 0 && result.StepsTaken%cfg.SampleEvery == 0 {
			result.Frames = append(result.Frames, Frame{Step: s.steps, Time: s.t, Bodies: bodies})
			lastSampled = s.steps
		}

		if cfg.StopOnNonFinite && !Finite(bodies) {
			stepErr := &StepError{Step: s.steps, Time: s.t, Wrapped: ErrNonFinite}
			result.Errors = append(result.Errors, stepErr)
			s.logger.Warn("stopping on non-finite state", "step", s.steps, "t", s.t)
			if lastSampled != s.steps {
				result.Frames = append(result.Frames, Frame{Step: s.steps, Time: s.t, Bodies: bodies})
				lastSampled = s.steps
			}
			return tick.ErrStop
		}
		return nil
	})

	if lastSampled != s.steps {
		result.Frames = append(result.Frames, Frame{Step: s.steps, Time: s.t, Bodies: s.ReadState()})
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	s.logger.Info("run finished", "steps", result.StepsTaken, "t", s.t, "frames", len(result.Frames))

	return result, err
}

func (s *Simulator) observe(bodies []body.State) {
	for _, m := range s.metrics {
		m.Observe(bodies, s.t)
	}
	for _, o := range s.observers {
		o.OnStep(bodies, s.t)
	}
}
