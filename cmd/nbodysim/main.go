package main

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/log"
	"github.com/san-kum/nbodysim/internal/config"
	"github.com/san-kum/nbodysim/internal/scene"
	"github.com/spf13/cobra"
)

var (
	dataDir     string
	logLevel    string
	configFile  string
	preset      string
	numBodies   int
	rate        float64
	steps       int
	gravG       float64
	mode        string
	minSep      float64
	workers     int
	seed        uint64
	sampleEvery int
	stopNaN     bool
	realtime    bool
	trackBody   uint32
	outFile     string
	exportFmt   string
	themeName   string
	divergence  bool
)

var logger = log.NewWithOptions(os.Stderr, log.Options{
	ReportTimestamp: true,
	TimeFormat:      time.Kitchen,
	Prefix:          "nbodysim",
})

// main registers commands and flags and executes the root command. It exits
// with status 1 if the command returns an error.
func main() {
	rootCmd := &cobra.Command{
		Use:           "nbodysim",
		Short:         "2D N-body gravity simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := log.ParseLevel(logLevel)
			if err != nil {
				return err
			}
			logger.SetLevel(level)
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".nbodysim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run [scene]",
		Short: "run a headless simulation and store the result",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addSimFlags(runCmd)
	runCmd.Flags().BoolVar(&stopNaN, "stop-on-nonfinite", false, "stop once any body goes NaN or Inf")
	runCmd.Flags().BoolVar(&realtime, "realtime", false, "pace steps at the wall-clock rate")

	liveCmd := &cobra.Command{
		Use:   "live [scene]",
		Short: "run a simulation with live visualization",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addSimFlags(liveCmd)
	liveCmd.Flags().StringVar(&themeName, "theme", "cyberpunk", "colour theme")

	benchCmd := &cobra.Command{
		Use:   "bench [scene]",
		Short: "measure step throughput across worker counts",
		Args:  cobra.MaximumNArgs(1),
		RunE:  benchScene,
	}
	addSimFlags(benchCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a body's trajectory and the total energy",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().Uint32Var(&trackBody, "body", 1, "body id")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a run as JSON frames or an SVG of trajectories",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")
	exportCmd.Flags().StringVar(&exportFmt, "format", "json", "output format: json or svg")
	exportCmd.Flags().StringVar(&themeName, "theme", "cyberpunk", "colour theme for svg output")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency analysis of a body's motion",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().Uint32Var(&trackBody, "body", 1, "body id")
	analyzeCmd.Flags().BoolVar(&divergence, "divergence", false, "also estimate the divergence rate of the initial bodies")

	presetsCmd := &cobra.Command{
		Use:   "presets [scene]",
		Short: "list available presets for a scene",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			presets := config.ListPresets(args[0])
			if len(presets) == 0 {
				fmt.Printf("no presets for scene: %s\n", args[0])
				return nil
			}
			fmt.Printf("presets for %s:\n", args[0])
			for _, p := range presets {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	scenesCmd := &cobra.Command{
		Use:   "scenes",
		Short: "list scenes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := scene.NewRegistry()
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tSIZE\tDESCRIPTION")
			for _, name := range reg.Names() {
				sc, _ := reg.Get(name)
				size := fmt.Sprint(sc.DefaultN)
				if sc.Fixed {
					size += " (fixed)"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", sc.Name, size, sc.Description)
			}
			return w.Flush()
		},
	}

	rootCmd.AddCommand(runCmd, liveCmd, benchCmd, listCmd, plotCmd, exportCmd, analyzeCmd, presetsCmd, scenesCmd)

	if err := rootCmd.Execute(); err != nil {
		logger.Error(err)
		os.Exit(1)
	}
}

func addSimFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "config file path (yaml)")
	f.StringVar(&preset, "preset", "", "use preset configuration")
	f.IntVar(&numBodies, "bodies", 0, "scene size (0 = scene default)")
	f.Float64Var(&rate, "rate", 60, "steps per second; dt = 1/rate")
	f.IntVar(&steps, "steps", config.DefaultSteps, "number of steps (0 with --realtime runs until interrupted)")
	f.Float64Var(&gravG, "g", 1, "gravitational constant")
	f.StringVar(&mode, "mode", "impulse", "velocity update: impulse or newtonian")
	f.Float64Var(&minSep, "min-separation", 0, "clamp pair distance (0 = off)")
	f.IntVar(&workers, "workers", 1, "parallel workers for the gravity pass")
	f.Uint64Var(&seed, "seed", 0, "scene random seed")
	f.IntVar(&sampleEvery, "sample-every", config.DefaultSampleEvery, "record a frame every n steps")
}

// resolveConfig layers defaults, preset, config file and explicitly set
// flags, in that order.
func resolveConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if len(args) > 0 {
		cfg.Scene = args[0]
	}

	if preset != "" {
		p := config.GetPreset(cfg.Scene, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(cfg.Scene))
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.LoadInto(configFile, cfg)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		if len(args) > 0 {
			loaded.Scene = args[0]
		}
		cfg = loaded
	}

	f := cmd.Flags()
	set := func(name string, apply func()) {
		if f.Changed(name) {
			apply()
		}
	}
	set("bodies", func() { cfg.NumBodies = numBodies })
	set("rate", func() { cfg.Rate = rate })
	set("steps", func() { cfg.Steps = steps })
	set("g", func() { cfg.Gravity.G = gravG })
	set("mode", func() { cfg.Gravity.Mode = mode })
	set("min-separation", func() { cfg.Gravity.MinSeparation = minSep })
	set("workers", func() { cfg.Gravity.Workers = workers })
	set("seed", func() { cfg.Seed = seed })
	set("sample-every", func() { cfg.SampleEvery = sampleEvery })
	set("stop-on-nonfinite", func() { cfg.StopOnNonFinite = stopNaN })

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
