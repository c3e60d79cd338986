package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"os/signal"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/log"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/nbodysim/internal/analysis"
	"github.com/san-kum/nbodysim/internal/body"
	"github.com/san-kum/nbodysim/internal/config"
	"github.com/san-kum/nbodysim/internal/export"
	"github.com/san-kum/nbodysim/internal/integrators"
	"github.com/san-kum/nbodysim/internal/metrics"
	"github.com/san-kum/nbodysim/internal/scene"
	"github.com/san-kum/nbodysim/internal/sim"
	"github.com/san-kum/nbodysim/internal/storage"
	"github.com/san-kum/nbodysim/internal/tick"
	"github.com/san-kum/nbodysim/internal/viz"
	"github.com/spf13/cobra"
)

// newSimulator builds the kernel and initial bodies described by cfg.
func newSimulator(cfg *config.Config) (*sim.Simulator, []body.Spec, error) {
	specs, err := cfg.Specs(scene.NewRegistry())
	if err != nil {
		return nil, nil, err
	}
	k, err := cfg.Kernel()
	if err != nil {
		return nil, nil, err
	}

	s := sim.New(k, integrators.NewEuler())
	s.SetLogger(logger)
	if err := s.Initialize(specs); err != nil {
		return nil, nil, err
	}
	return s, specs, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	s, specs, err := newSimulator(cfg)
	if err != nil {
		return err
	}
	for _, m := range metrics.Defaults(s.Kernel(), metrics.DefaultRadius) {
		s.AddMetric(m)
	}
	s.AddObserver(newProgress(logger, cfg.Steps))

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	var src tick.Source = cfg.TickSource()
	if realtime {
		src = tick.Realtime{Rate: cfg.Rate, Steps: cfg.Steps}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger.Info("running", "scene", cfg.Scene, "bodies", len(specs), "steps", cfg.Steps, "mode", cfg.Gravity.Mode)
	start := time.Now()

	result, err := s.Run(ctx, src, sim.RunConfig{
		SampleEvery:     cfg.SampleEvery,
		StopOnNonFinite: cfg.StopOnNonFinite,
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	if err != nil {
		logger.Warn("interrupted, saving partial run", "steps", result.StepsTaken)
	}

	elapsed := time.Since(start)

	runID, err := st.Save(cfg, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", result.StepsTaken)
	fmt.Printf("frames: %d\n", len(result.Frames))
	for _, e := range result.Errors {
		fmt.Printf("error: %v\n", e)
	}
	fmt.Println("\nmetrics:")
	for _, name := range sortedKeys(result.Metrics) {
		fmt.Printf("  %s: %.6g\n", name, result.Metrics[name])
	}

	return nil
}

// progress logs at debug level roughly ten times per run, and every
// progressFallback steps when the run is unbounded.
type progress struct {
	logger *log.Logger
	every  int
	seen   int
}

const progressFallback = 1000

func newProgress(l *log.Logger, steps int) *progress {
	every := steps / 10
	if steps == 0 {
		every = progressFallback
	}
	return &progress{logger: l, every: max(every, 1)}
}

func (p *progress) OnStep(bodies []body.State, t float64) {
	p.seen++
	// the first call is the initial state, not a step
	if step := p.seen - 1; step > 0 && step%p.every == 0 {
		p.logger.Debug("progress", "step", step, "t", t, "finite", sim.Finite(bodies))
	}
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	s, specs, err := newSimulator(cfg)
	if err != nil {
		return err
	}
	// the TUI owns the terminal
	s.SetLogger(log.New(io.Discard))

	m, err := viz.NewModel(s, specs, cfg.Rate, cfg.Scene)
	if err != nil {
		return err
	}
	m.UseTheme(themeName)
	return viz.Run(m)
}

func benchScene(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	n := cfg.Steps
	if n == 0 {
		n = config.DefaultSteps
	}

	specs, err := cfg.Specs(scene.NewRegistry())
	if err != nil {
		return err
	}

	fmt.Printf("benchmarking %s: %d bodies, %d steps\n\n", cfg.Scene, len(specs), n)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "WORKERS\tTIME\tSTEPS/SEC\tPAIRS/SEC")

	for _, wk := range []int{1, 2, 4, 8} {
		k, err := cfg.Kernel()
		if err != nil {
			return err
		}
		k.Workers = wk

		s := sim.New(k, integrators.NewEuler())
		if err := s.Initialize(specs); err != nil {
			return err
		}

		start := time.Now()
		for i := 0; i < n; i++ {
			if err := s.Step(cfg.Dt()); err != nil {
				return err
			}
		}
		elapsed := time.Since(start)

		stepsPerSec := float64(n) / elapsed.Seconds()
		pairs := float64(len(specs) * (len(specs) - 1))
		fmt.Fprintf(w, "%d\t%v\t%.0f\t%.3g\n", wk, elapsed, stepsPerSec, stepsPerSec*pairs)
	}

	return w.Flush()
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCENE\tTIME\tBODIES\tSTEPS\tDT\tMODE")

	for _, run := range runs {
		mode := "-"
		if run.Config != nil {
			mode = run.Config.Gravity.Mode
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%.4fs\t%s\n",
			run.ID,
			run.Scene,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Bodies,
			run.Steps,
			run.Dt,
			mode,
		)
	}

	return w.Flush()
}

func loadRun(runID string) (*storage.RunMetadata, []sim.Frame, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	frames, err := st.LoadFrames(runID)
	if err != nil {
		return nil, nil, err
	}
	if len(frames) == 0 {
		return nil, nil, fmt.Errorf("run %s has no frames", runID)
	}
	return meta, frames, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, frames, err := loadRun(args[0])
	if err != nil {
		return err
	}

	id := body.ID(trackBody)
	_, states := sim.Track(frames, id)
	if len(states) == 0 {
		return fmt.Errorf("body %d not found in run %s", id, meta.ID)
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("scene: %s\n", meta.Scene)
	fmt.Printf("frames: %d\n\n", len(frames))

	xs := make([]float64, 0, len(states))
	ys := make([]float64, 0, len(states))
	for _, b := range states {
		if b.Finite() {
			xs = append(xs, b.Position.X)
			ys = append(ys, b.Position.Y)
		}
	}

	series := []struct {
		caption string
		data    []float64
	}{
		{fmt.Sprintf("body %d x vs time", id), xs},
		{fmt.Sprintf("body %d y vs time", id), ys},
	}

	if meta.Config != nil {
		if k, err := meta.Config.Kernel(); err == nil {
			energy := make([]float64, 0, len(frames))
			for _, f := range frames {
				if e := metrics.Energy(k, f.Bodies); !math.IsNaN(e) && !math.IsInf(e, 0) {
					energy = append(energy, e)
				}
			}
			series = append(series, struct {
				caption string
				data    []float64
			}{"total energy", energy})
		}
	}

	for _, s := range series {
		if len(s.data) < 2 {
			continue
		}
		graph := asciigraph.Plot(s.data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(s.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	meta, frames, err := loadRun(args[0])
	if err != nil {
		return err
	}

	write := func(w io.Writer) error {
		switch exportFmt {
		case "json":
			return storage.ExportJSON(w, meta, frames)
		case "svg":
			return export.TrajectoriesSVG(w, frames, viz.GetTheme(themeName), 800, 800)
		default:
			return fmt.Errorf("unknown format: %s (json, svg)", exportFmt)
		}
	}

	if outFile == "" {
		return write(os.Stdout)
	}

	f, err := os.Create(outFile)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := write(f); err != nil {
		return err
	}
	logger.Info("exported", "run", meta.ID, "format", exportFmt, "frames", len(frames), "path", outFile)
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	meta, frames, err := loadRun(args[0])
	if err != nil {
		return err
	}

	id := body.ID(trackBody)
	times, states := sim.Track(frames, id)
	times, states = evenlySpaced(times, states)
	if len(states) < 4 {
		return fmt.Errorf("not enough frames for body %d", id)
	}

	data := make([]float64, len(states))
	for i, b := range states {
		data[i] = b.Position.X
	}
	sampleRate := float64(len(times)-1) / (times[len(times)-1] - times[0])

	fmt.Printf("frequency analysis: %s\n", meta.ID)
	fmt.Printf("scene: %s, body %d, %d samples at %.3g/s\n\n", meta.Scene, id, len(data), sampleRate)

	ps := analysis.PowerSpectrum(data)
	if len(ps) > 1 {
		graph := asciigraph.Plot(ps,
			asciigraph.Height(15),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("power spectrum (body %d x)", id)),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	freq, err := analysis.DominantFrequency(data, sampleRate)
	if err != nil {
		return err
	}
	fmt.Printf("dominant frequency: %.4f per time unit\n", freq)
	if freq > 0 {
		fmt.Printf("period: %.3f time units\n", 1.0/freq)
	}

	if divergence && meta.Config != nil {
		k, err := meta.Config.Kernel()
		if err != nil {
			return err
		}
		specs := make([]body.Spec, len(frames[0].Bodies))
		for i, b := range frames[0].Bodies {
			specs[i] = body.Spec{Position: b.Position, Velocity: b.Velocity, Mass: b.Mass}
		}
		rate, err := analysis.Divergence(k, specs, meta.Dt, meta.Steps, 1e-8)
		if err != nil {
			return err
		}
		fmt.Printf("divergence rate: %.4g per time unit\n", rate)
	}

	return nil
}

// evenlySpaced drops trailing samples whose spacing differs from the first
// interval, such as a final frame recorded off the sampling grid.
func evenlySpaced(times []float64, states []body.State) ([]float64, []body.State) {
	if len(times) < 3 {
		return times, states
	}
	step := times[1] - times[0]
	n := len(times)
	for n > 2 && math.Abs((times[n-1]-times[n-2])-step) > step*1e-6 {
		n--
	}
	return times[:n], states[:n]
}
