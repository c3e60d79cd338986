package config

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/san-kum/nbodysim/internal/body"
	"github.com/san-kum/nbodysim/internal/gravity"
	"github.com/san-kum/nbodysim/internal/scene"
	"github.com/san-kum/nbodysim/internal/tick"
	"gonum.org/v1/gonum/spatial/r2"
	"gopkg.in/yaml.v3"
)

const (
	DefaultScene       = "grid"
	DefaultSteps       = 600
	DefaultSampleEvery = 6
)

var ErrInvalid = errors.New("config: invalid")

type Config struct {
	Scene           string        `yaml:"scene"`
	Seed            uint64        `yaml:"seed"`
	NumBodies       int           `yaml:"num_bodies"`
	Rate            float64       `yaml:"rate"`
	Steps           int           `yaml:"steps"`
	SampleEvery     int           `yaml:"sample_every"`
	StopOnNonFinite bool          `yaml:"stop_on_non_finite"`
	Gravity         GravityConfig `yaml:"gravity"`
	Bodies          []BodyConfig  `yaml:"bodies,omitempty"`
}

type GravityConfig struct {
	G             float64 `yaml:"g"`
	Mode          string  `yaml:"mode"`
	MinSeparation float64 `yaml:"min_separation"`
	Workers       int     `yaml:"workers"`
}

// BodyConfig lists one body explicitly. When any are present they replace
// the scene generator.
type BodyConfig struct {
	Position []float64 `yaml:"position"`
	Velocity []float64 `yaml:"velocity"`
	Mass     float64   `yaml:"mass"`
}

func DefaultConfig() *Config {
	return &Config{
		Scene:       DefaultScene,
		Rate:        tick.DefaultRate,
		Steps:       DefaultSteps,
		SampleEvery: DefaultSampleEvery,
		Gravity: GravityConfig{
			G:    gravity.DefaultG,
			Mode: gravity.Impulse.String(),
		},
	}
}

func Load(path string) (*Config, error) {
	return LoadInto(path, DefaultConfig())
}

// LoadInto decodes the file over a copy of base. Fields the file leaves out
// keep their base values.
func LoadInto(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := base.Clone()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	cp := *c
	if c.Bodies != nil {
		cp.Bodies = make([]BodyConfig, len(c.Bodies))
		for i, b := range c.Bodies {
			cp.Bodies[i] = BodyConfig{
				Position: append([]float64(nil), b.Position...),
				Velocity: append([]float64(nil), b.Velocity...),
				Mass:     b.Mass,
			}
		}
	}
	return &cp
}

// Validate checks run parameters. Body masses and coordinates are checked
// later, by the body store.
func (c *Config) Validate() error {
	if c.Rate <= 0 || math.IsInf(c.Rate, 0) || math.IsNaN(c.Rate) {
		return fmt.Errorf("%w: rate must be positive, got %v", ErrInvalid, c.Rate)
	}
	if c.Steps < 0 {
		return fmt.Errorf("%w: steps must not be negative, got %d", ErrInvalid, c.Steps)
	}
	if c.SampleEvery < 0 {
		return fmt.Errorf("%w: sample_every must not be negative, got %d", ErrInvalid, c.SampleEvery)
	}
	if c.NumBodies < 0 {
		return fmt.Errorf("%w: num_bodies must not be negative, got %d", ErrInvalid, c.NumBodies)
	}
	if math.IsNaN(c.Gravity.G) || math.IsInf(c.Gravity.G, 0) {
		return fmt.Errorf("%w: g must be finite, got %v", ErrInvalid, c.Gravity.G)
	}
	if math.IsNaN(c.Gravity.MinSeparation) || math.IsInf(c.Gravity.MinSeparation, 0) {
		return fmt.Errorf("%w: min_separation must be finite, got %v", ErrInvalid, c.Gravity.MinSeparation)
	}
	if c.Gravity.MinSeparation < 0 {
		return fmt.Errorf("%w: min_separation must not be negative, got %v", ErrInvalid, c.Gravity.MinSeparation)
	}
	if c.Gravity.Workers < 0 {
		return fmt.Errorf("%w: workers must not be negative, got %d", ErrInvalid, c.Gravity.Workers)
	}
	if _, err := gravity.ParseMode(c.Gravity.Mode); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	for i, b := range c.Bodies {
		if len(b.Position) != 2 && len(b.Position) != 0 {
			return fmt.Errorf("%w: body %d position needs 2 components", ErrInvalid, i)
		}
		if len(b.Velocity) != 2 && len(b.Velocity) != 0 {
			return fmt.Errorf("%w: body %d velocity needs 2 components", ErrInvalid, i)
		}
	}
	if len(c.Bodies) == 0 && c.Scene == "" {
		return fmt.Errorf("%w: no scene and no bodies", ErrInvalid)
	}
	return nil
}

// Dt is the fixed step implied by Rate.
func (c *Config) Dt() float64 {
	return 1 / c.Rate
}

func (c *Config) Kernel() (*gravity.Kernel, error) {
	mode, err := gravity.ParseMode(c.Gravity.Mode)
	if err != nil {
		return nil, err
	}
	k := gravity.New(c.Gravity.G)
	k.Mode = mode
	k.MinSeparation = c.Gravity.MinSeparation
	k.Workers = c.Gravity.Workers
	return k, nil
}

func (c *Config) TickSource() tick.Fixed {
	return tick.Fixed{Rate: c.Rate, Steps: c.Steps}
}

// Specs returns the explicit bodies if any, otherwise the generated scene.
func (c *Config) Specs(reg *scene.Registry) ([]body.Spec, error) {
	if len(c.Bodies) > 0 {
		specs := make([]body.Spec, len(c.Bodies))
		for i, b := range c.Bodies {
			specs[i] = body.Spec{
				Position: vec(b.Position),
				Velocity: vec(b.Velocity),
				Mass:     b.Mass,
			}
		}
		return specs, nil
	}

	sc, err := reg.Get(c.Scene)
	if err != nil {
		return nil, err
	}
	return sc.Generate(scene.Params{N: c.NumBodies, Seed: c.Seed})
}

func vec(v []float64) r2.Vec {
	if len(v) < 2 {
		return r2.Vec{}
	}
	return r2.Vec{X: v[0], Y: v[1]}
}
