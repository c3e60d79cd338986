// Package scene builds initial body sets by name.
package scene

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/nbodysim/internal/body"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/spatial/r2"
)

var (
	ErrUnknownScene = errors.New("scene: unknown scene")
	ErrBadSize      = errors.New("scene: unsupported body count")
)

// Params tunes a generator. Zero N means the scene's default size. Fixed
// scenes accept only their default size.
type Params struct {
	N    int
	Seed uint64
}

type Scene struct {
	Name        string
	Description string
	DefaultN    int
	Fixed       bool
	generate    func(n int, rng *rand.Rand) []body.Spec
}

// Generate builds the scene's bodies. Generators are deterministic for a
// given seed.
func (s Scene) Generate(p Params) ([]body.Spec, error) {
	n := p.N
	if n == 0 {
		n = s.DefaultN
	}
	if n < 0 {
		return nil, fmt.Errorf("%w: %d", ErrBadSize, n)
	}
	if s.Fixed && n != s.DefaultN {
		return nil, fmt.Errorf("%w: %s always has %d bodies, got %d", ErrBadSize, s.Name, s.DefaultN, n)
	}
	rng := rand.New(rand.NewSource(p.Seed))
	return s.generate(n, rng), nil
}

type Registry struct {
	scenes map[string]Scene
}

func NewRegistry() *Registry {
	r := &Registry{scenes: make(map[string]Scene)}

	r.Register(Scene{Name: "grid", Description: "lattice of random masses with sinusoidal drift", DefaultN: 20, generate: grid})
	r.Register(Scene{Name: "binary", Description: "two equal masses at rest, 10 apart", DefaultN: 2, Fixed: true, generate: binary})
	r.Register(Scene{Name: "mirror", Description: "two equal masses mirrored about the origin", DefaultN: 2, Fixed: true, generate: mirror})
	r.Register(Scene{Name: "single", Description: "one body coasting", DefaultN: 1, Fixed: true, generate: single})
	r.Register(Scene{Name: "ring", Description: "equal masses on a circle moving tangentially", DefaultN: 12, generate: ring})
	r.Register(Scene{Name: "random", Description: "uniform positions, normal velocities", DefaultN: 100, generate: random})

	return r
}

func (r *Registry) Register(s Scene) {
	r.scenes[s.Name] = s
}

func (r *Registry) Get(name string) (Scene, error) {
	s, ok := r.scenes[name]
	if !ok {
		return Scene{}, fmt.Errorf("%w: %s", ErrUnknownScene, name)
	}
	return s, nil
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.scenes))
	for name := range r.scenes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// positiveMass draws from (0, limit].
func positiveMass(rng *rand.Rand, limit float64) float64 {
	return (1 - rng.Float64()) * limit
}

// grid lays out an n x n lattice with spacing 30 centred on the origin. For
// n = 20 indices run over -10..9 on both axes.
func grid(n int, rng *rand.Rand) []body.Spec {
	const spacing = 30.0
	specs := make([]body.Spec, 0, n*n)
	lo := -n / 2
	for i := lo; i < lo+n; i++ {
		for j := lo; j < lo+n; j++ {
			specs = append(specs, body.Spec{
				Position: r2.Vec{X: float64(i) * spacing, Y: float64(j) * spacing},
				Velocity: r2.Vec{
					X: math.Sin(float64(i) * 2 * math.Pi / 100),
					Y: math.Cos(float64(j) * 2 * math.Pi / 100),
				},
				Mass: positiveMass(rng, 100),
			})
		}
	}
	return specs
}

func binary(_ int, _ *rand.Rand) []body.Spec {
	return []body.Spec{
		{Position: r2.Vec{X: -5}, Mass: 10},
		{Position: r2.Vec{X: 5}, Mass: 10},
	}
}

func mirror(_ int, _ *rand.Rand) []body.Spec {
	return []body.Spec{
		{Position: r2.Vec{X: -40, Y: 10}, Velocity: r2.Vec{X: 0.25, Y: 0.5}, Mass: 10},
		{Position: r2.Vec{X: 40, Y: -10}, Velocity: r2.Vec{X: -0.25, Y: -0.5}, Mass: 10},
	}
}

func single(_ int, _ *rand.Rand) []body.Spec {
	return []body.Spec{
		{Velocity: r2.Vec{X: 3, Y: 1.5}, Mass: 10},
	}
}

func ring(n int, _ *rand.Rand) []body.Spec {
	const (
		radius = 100.0
		mass   = 5.0
		speed  = 1.0
	)
	specs := make([]body.Spec, n)
	for i := range specs {
		angle := float64(i) * 2 * math.Pi / float64(n)
		sin, cos := math.Sincos(angle)
		specs[i] = body.Spec{
			Position: r2.Vec{X: radius * cos, Y: radius * sin},
			Velocity: r2.Vec{X: -speed * sin, Y: speed * cos},
			Mass:     mass,
		}
	}
	return specs
}

func random(n int, rng *rand.Rand) []body.Spec {
	const half = 300.0
	specs := make([]body.Spec, n)
	for i := range specs {
		specs[i] = body.Spec{
			Position: r2.Vec{X: (rng.Float64()*2 - 1) * half, Y: (rng.Float64()*2 - 1) * half},
			Velocity: r2.Vec{X: rng.NormFloat64(), Y: rng.NormFloat64()},
			Mass:     positiveMass(rng, 100),
		}
	}
	return specs
}
