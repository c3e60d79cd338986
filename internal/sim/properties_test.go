package sim_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/nbodysim/internal/body"
	"github.com/san-kum/nbodysim/internal/gravity"
	"github.com/san-kum/nbodysim/internal/integrators"
	"github.com/san-kum/nbodysim/internal/sim"
	"gonum.org/v1/gonum/spatial/r2"
)

const dt = 1.0 / 60

func build(mode gravity.Mode, specs []body.Spec) *sim.Simulator {
	k := gravity.New(gravity.DefaultG)
	k.Mode = mode
	s := sim.New(k, integrators.NewEuler())
	Expect(s.Initialize(specs)).To(Succeed())
	return s
}

func stepN(s *sim.Simulator, n int) {
	for i := 0; i < n; i++ {
		Expect(s.Step(dt)).To(Succeed())
	}
}

func momentum(bodies []body.State) r2.Vec {
	var p r2.Vec
	for _, b := range bodies {
		p = r2.Add(p, r2.Scale(b.Mass, b.Velocity))
	}
	return p
}

func velocitySum(bodies []body.State) r2.Vec {
	var v r2.Vec
	for _, b := range bodies {
		v = r2.Add(v, b.Velocity)
	}
	return v
}

func byID(bodies []body.State) map[body.ID]body.State {
	m := make(map[body.ID]body.State, len(bodies))
	for _, b := range bodies {
		m[b.ID] = b
	}
	return m
}

var _ = Describe("Simulator", func() {
	Describe("the reference pair", func() {
		It("pulls both bodies together with unit speed after one step", func() {
			s := build(gravity.Impulse, []body.Spec{
				{Position: r2.Vec{X: -5}, Mass: 10},
				{Position: r2.Vec{X: 5}, Mass: 10},
			})
			stepN(s, 1)

			state := s.ReadState()
			Expect(state[0].Velocity.X).To(BeNumerically("~", 1, 1e-12))
			Expect(state[1].Velocity.X).To(BeNumerically("~", -1, 1e-12))
			Expect(state[0].Velocity.Y).To(BeZero())
			Expect(state[1].Velocity.Y).To(BeZero())
			Expect(state[0].Position.X).To(BeNumerically("~", -5+dt, 1e-12))
			Expect(state[1].Position.X).To(BeNumerically("~", 5-dt, 1e-12))
		})
	})

	Describe("pair symmetry", func() {
		specs := []body.Spec{
			{Position: r2.Vec{X: 1, Y: 2}, Mass: 3},
			{Position: r2.Vec{X: 4, Y: -2}, Mass: 12},
		}

		It("gives both bodies equal and opposite impulses", func() {
			s := build(gravity.Impulse, specs)
			stepN(s, 1)

			state := s.ReadState()
			Expect(r2.Norm(state[0].Velocity)).To(BeNumerically("~", r2.Norm(state[1].Velocity), 1e-12))
			sum := velocitySum(state)
			Expect(sum.X).To(BeNumerically("~", 0, 1e-12))
			Expect(sum.Y).To(BeNumerically("~", 0, 1e-12))
		})

		It("satisfies the third law in newtonian mode", func() {
			s := build(gravity.Newtonian, specs)
			stepN(s, 1)

			state := s.ReadState()
			fA := state[0].Mass * r2.Norm(state[0].Velocity)
			fB := state[1].Mass * r2.Norm(state[1].Velocity)
			Expect(fA).To(BeNumerically("~", fB, 1e-12))
		})
	})

	Describe("two-body conservation", func() {
		It("conserves momentum for equal masses in impulse mode", func() {
			s := build(gravity.Impulse, []body.Spec{
				{Position: r2.Vec{X: -20}, Velocity: r2.Vec{Y: 1.5}, Mass: 10},
				{Position: r2.Vec{X: 20}, Velocity: r2.Vec{Y: -0.5}, Mass: 10},
			})
			p0 := momentum(s.ReadState())
			stepN(s, 60)
			p1 := momentum(s.ReadState())

			Expect(p1.X).To(BeNumerically("~", p0.X, 1e-9))
			Expect(p1.Y).To(BeNumerically("~", p0.Y, 1e-9))
		})

		It("conserves the velocity sum for unequal masses in impulse mode", func() {
			s := build(gravity.Impulse, []body.Spec{
				{Position: r2.Vec{X: -20}, Mass: 2},
				{Position: r2.Vec{X: 20, Y: 5}, Velocity: r2.Vec{X: 0.3}, Mass: 9},
			})
			v0 := velocitySum(s.ReadState())
			stepN(s, 120)
			v1 := velocitySum(s.ReadState())

			Expect(v1.X).To(BeNumerically("~", v0.X, 1e-9))
			Expect(v1.Y).To(BeNumerically("~", v0.Y, 1e-9))
		})

		It("conserves momentum for unequal masses in newtonian mode", func() {
			s := build(gravity.Newtonian, []body.Spec{
				{Position: r2.Vec{X: -20}, Mass: 2},
				{Position: r2.Vec{X: 20, Y: 5}, Velocity: r2.Vec{X: 0.3}, Mass: 9},
			})
			p0 := momentum(s.ReadState())
			stepN(s, 240)
			p1 := momentum(s.ReadState())

			Expect(p1.X).To(BeNumerically("~", p0.X, 1e-9))
			Expect(p1.Y).To(BeNumerically("~", p0.Y, 1e-9))
		})
	})

	Describe("mirror symmetry", func() {
		It("keeps mirrored equal masses mirrored", func() {
			s := build(gravity.Impulse, []body.Spec{
				{Position: r2.Vec{X: -30, Y: 4}, Velocity: r2.Vec{X: 0.2, Y: 1}, Mass: 5},
				{Position: r2.Vec{X: 30, Y: -4}, Velocity: r2.Vec{X: -0.2, Y: -1}, Mass: 5},
			})

			for i := 0; i < 10; i++ {
				stepN(s, 30)
				a, b := s.ReadState()[0], s.ReadState()[1]
				Expect(a.Position.X).To(BeNumerically("~", -b.Position.X, 1e-9))
				Expect(a.Position.Y).To(BeNumerically("~", -b.Position.Y, 1e-9))
				Expect(a.Velocity.X).To(BeNumerically("~", -b.Velocity.X, 1e-9))
				Expect(a.Velocity.Y).To(BeNumerically("~", -b.Velocity.Y, 1e-9))
			}
		})
	})

	Describe("a single body", func() {
		It("moves in a straight line at constant velocity", func() {
			v := r2.Vec{X: 2, Y: -1}
			s := build(gravity.Impulse, []body.Spec{
				{Position: r2.Vec{X: 7, Y: 7}, Velocity: v, Mass: 1000},
			})
			stepN(s, 120)

			state := s.ReadState()[0]
			Expect(state.Velocity).To(Equal(v))
			Expect(state.Position.X).To(BeNumerically("~", 7+2*120*dt, 1e-9))
			Expect(state.Position.Y).To(BeNumerically("~", 7-1*120*dt, 1e-9))
		})
	})

	Describe("storage order", func() {
		specs := []body.Spec{
			{Position: r2.Vec{X: 0, Y: 0}, Velocity: r2.Vec{X: 0.1}, Mass: 4},
			{Position: r2.Vec{X: 30, Y: 5}, Velocity: r2.Vec{Y: -0.4}, Mass: 0.5},
			{Position: r2.Vec{X: -12, Y: 22}, Mass: 1.7},
			{Position: r2.Vec{X: 8, Y: -31}, Velocity: r2.Vec{X: -1, Y: 1}, Mass: 6},
		}

		It("does not change per-body results", func() {
			plain := build(gravity.Impulse, specs)
			shuffled := build(gravity.Impulse, specs)
			Expect(shuffled.Reorder([]int{3, 1, 0, 2})).To(Succeed())

			stepN(plain, 20)
			stepN(shuffled, 20)

			want := byID(plain.ReadState())
			got := byID(shuffled.ReadState())
			Expect(got).To(HaveLen(len(want)))
			for id, w := range want {
				g := got[id]
				Expect(g.Position.X).To(BeNumerically("~", w.Position.X, 1e-9))
				Expect(g.Position.Y).To(BeNumerically("~", w.Position.Y, 1e-9))
				Expect(g.Velocity.X).To(BeNumerically("~", w.Velocity.X, 1e-9))
				Expect(g.Velocity.Y).To(BeNumerically("~", w.Velocity.Y, 1e-9))
			}
		})
	})

	Describe("determinism", func() {
		It("reproduces trajectories bit for bit with and without workers", func() {
			specs := make([]body.Spec, 0, 64)
			for i := 0; i < 8; i++ {
				for j := 0; j < 8; j++ {
					specs = append(specs, body.Spec{
						Position: r2.Vec{X: float64(i * 30), Y: float64(j * 30)},
						Velocity: r2.Vec{X: math.Sin(float64(i)), Y: math.Cos(float64(j))},
						Mass:     float64(1 + (i*8+j)%3),
					})
				}
			}

			serial := build(gravity.Impulse, specs)
			k := gravity.New(gravity.DefaultG)
			k.Workers = 4
			parallel := sim.New(k, integrators.NewEuler())
			Expect(parallel.Initialize(specs)).To(Succeed())

			stepN(serial, 30)
			stepN(parallel, 30)

			Expect(parallel.ReadState()).To(Equal(serial.ReadState()))
		})
	})

	Describe("coincident bodies", func() {
		specs := []body.Spec{
			{Position: r2.Vec{X: 3, Y: 3}, Mass: 1},
			{Position: r2.Vec{X: 3, Y: 3}, Mass: 1},
			{Position: r2.Vec{X: 50}, Mass: 1},
		}

		It("propagates NaN without a clamp", func() {
			s := build(gravity.Impulse, specs)
			stepN(s, 2)
			Expect(sim.Finite(s.ReadState())).To(BeFalse())
		})

		It("stays finite with a clamp", func() {
			k := gravity.New(gravity.DefaultG)
			k.MinSeparation = 1
			s := sim.New(k, integrators.NewEuler())
			Expect(s.Initialize(specs)).To(Succeed())
			stepN(s, 2)
			Expect(sim.Finite(s.ReadState())).To(BeTrue())
		})
	})
})
