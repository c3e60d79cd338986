package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/nbodysim/internal/body"
	"github.com/san-kum/nbodysim/internal/metrics"
	"github.com/san-kum/nbodysim/internal/sim"
	"github.com/san-kum/nbodysim/internal/tick"
	"gonum.org/v1/gonum/spatial/r2"
)

const (
	width           = 80
	height          = 24
	historyCapacity = 600
	trailCapacity   = 4000
	statsWidth      = 48
)

type TickMsg time.Time

// Model drives a simulator at a fixed rate and draws it on a braille canvas.
type Model struct {
	sim       *sim.Simulator
	specs     []body.Spec
	title     string
	dt        float64
	interval  time.Duration
	canvas    *Canvas
	camera    Camera
	autoFit   bool
	running   bool
	theme     int
	palette   Palette
	showVel   bool
	showTrail bool
	trail     []r2.Vec
	drift     *metrics.EnergyDrift
	energy    []float64
	err       error
}

// NewModel initializes s with specs and returns a model stepping it rate
// times per second with dt = 1/rate.
func NewModel(s *sim.Simulator, specs []body.Spec, rate float64, title string) (Model, error) {
	if rate <= 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
		return Model{}, fmt.Errorf("viz: rate must be positive, got %v", rate)
	}
	if err := s.Initialize(specs); err != nil {
		return Model{}, err
	}

	m := Model{
		sim:       s,
		specs:     specs,
		title:     title,
		dt:        1 / rate,
		interval:  tick.Interval(rate),
		canvas:    NewCanvas(width, height),
		autoFit:   true,
		running:   true,
		showTrail: len(specs) <= 64,
		trail:     make([]r2.Vec, 0, trailCapacity),
		drift:     metrics.NewEnergyDrift(s.Kernel()),
		energy:    make([]float64, 0, historyCapacity),
	}
	m.setTheme(0)
	m.record()
	m.draw()
	return m, nil
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.reset()
		case "+", "=":
			m.autoFit = false
			m.camera.ZoomIn()
		case "-", "_":
			m.autoFit = false
			m.camera.ZoomOut()
		case "left", "h":
			m.pan(-1, 0)
		case "right", "l":
			m.pan(1, 0)
		case "up", "k":
			m.pan(0, -1)
		case "down", "j":
			m.pan(0, 1)
		case "f":
			m.autoFit = true
		case "v":
			m.showVel = !m.showVel
		case "p":
			m.showTrail = !m.showTrail
			m.trail = m.trail[:0]
		case "t":
			m.setTheme((m.theme + 1) % len(Themes))
		}
		m.draw()
	case tea.WindowSizeMsg:
		w := max(10, msg.Width-statsWidth-6)
		h := max(5, msg.Height-4)
		m.canvas = NewCanvas(w, h)
		m.draw()
	case TickMsg:
		if m.running && m.err == nil {
			m.step()
		}
		m.draw()
		return m, m.tick()
	}
	return m, nil
}

func (m *Model) pan(dx, dy int) {
	m.autoFit = false
	m.camera.Pan(dx, dy, m.canvas.DotWidth(), m.canvas.DotHeight())
}

// UseTheme switches to the named theme, falling back to the first one.
func (m *Model) UseTheme(name string) {
	m.setTheme(themeIndex(name))
}

func (m *Model) setTheme(i int) {
	m.theme = i
	masses := make([]float64, len(m.specs))
	for j, s := range m.specs {
		masses[j] = s.Mass
	}
	m.palette = NewPalette(Themes[i], masses)
}

func (m *Model) step() {
	if err := m.sim.Step(m.dt); err != nil {
		m.err = err
		m.running = false
		return
	}
	m.record()
}

// record appends the current energy and trail points.
func (m *Model) record() {
	state := m.sim.ReadState()

	m.drift.Observe(state, m.sim.Time())
	if e := m.drift.Current(); !math.IsNaN(e) && !math.IsInf(e, 0) {
		m.energy = append(m.energy, e)
		if len(m.energy) > historyCapacity {
			m.energy = m.energy[1:]
		}
	}

	if m.showTrail {
		for _, b := range state {
			if b.Finite() {
				m.trail = append(m.trail, b.Position)
			}
		}
		if over := len(m.trail) - trailCapacity; over > 0 {
			m.trail = m.trail[over:]
		}
	}
}

// reset restores the initial bodies and clears history.
func (m *Model) reset() {
	if err := m.sim.Initialize(m.specs); err != nil {
		m.err = err
		return
	}
	m.err = nil
	m.trail = m.trail[:0]
	m.drift.Reset()
	m.energy = m.energy[:0]
	m.autoFit = true
	m.record()
}

func (m *Model) draw() {
	state := m.sim.ReadState()
	w, h := m.canvas.DotWidth(), m.canvas.DotHeight()
	if m.autoFit {
		m.camera.Fit(state, w, h)
	}

	m.canvas.Clear()
	theme := Themes[m.theme]

	if m.showTrail {
		for _, p := range m.trail {
			x, y := m.camera.Project(p, w, h)
			m.canvas.Set(x, y, theme.Muted)
		}
	}

	for _, b := range state {
		if !b.Finite() {
			continue
		}
		x, y := m.camera.Project(b.Position, w, h)
		color := m.palette.Color(b.Mass)
		m.canvas.Disc(x, y, GlyphRadius(b.Mass)*m.camera.Scale, color)
		if m.showVel {
			// one second of travel
			tx, ty := m.camera.Project(r2.Add(b.Position, b.Velocity), w, h)
			m.canvas.DrawLine(x, y, tx, ty, theme.Accent)
		}
	}
}

// View renders the TUI interface.
func (m Model) View() string {
	theme := Themes[m.theme]
	state := m.sim.ReadState()
	degenerate := !sim.Finite(state)

	status := "RUNNING"
	switch {
	case m.err != nil:
		status = "STOPPED"
	case degenerate:
		status = "NON-FINITE"
	case !m.running:
		status = "PAUSED"
	}

	var s strings.Builder
	s.WriteString(GradientText(strings.ToUpper(m.title), theme.Primary, theme.Accent) + "\n")
	s.WriteString(statusStyle(theme, m.running, degenerate || m.err != nil).Render(status) + "\n\n")

	if len(m.energy) > 1 {
		chart := asciigraph.Plot(m.energy, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Energy"))
		s.WriteString(lipgloss.NewStyle().Foreground(theme.Primary).Render(chart) + "\n\n")
	}

	row := func(label, value string) {
		s.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	k := m.sim.Kernel()
	row("Time", fmt.Sprintf("%.2f", m.sim.Time()))
	row("Steps", fmt.Sprintf("%d", m.sim.Steps()))
	row("Bodies", fmt.Sprintf("%d", len(state)))
	row("G", fmt.Sprintf("%g", k.G))
	row("Mode", k.Mode.String())
	if k.MinSeparation > 0 {
		row("Clamp", fmt.Sprintf("%g", k.MinSeparation))
	}
	if len(m.energy) > 0 {
		row("Energy", fmt.Sprintf("%.4g", m.energy[len(m.energy)-1]))
		row("Drift", fmt.Sprintf("%.3g", m.drift.Value()))
	}
	p := metrics.Momentum(state)
	row("Momentum", fmt.Sprintf("(%.3g, %.3g)", p.X, p.Y))
	row("Zoom", fmt.Sprintf("%.3g", m.camera.Scale))
	row("Theme", theme.Name)
	if m.err != nil {
		s.WriteString(lipgloss.NewStyle().Foreground(theme.Error).Render(m.err.Error()) + "\n")
	}

	s.WriteString(keyHint.Render("SP:Pause R:Reset Q:Quit T:Theme\n+/-:Zoom ←↑↓→:Pan F:Fit\nV:Velocity P:Trails"))

	return lipgloss.JoinHorizontal(lipgloss.Top,
		canvasStyle.Render(m.canvas.Render()),
		statsStyle.Render(s.String()),
	)
}

// Run starts the interactive view and blocks until the user quits.
func Run(m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
