package viz

import (
	"math"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

// Palette maps body mass onto a colour between a theme's Light and Heavy
// ends, blended in HCL so the midpoints stay saturated.
type Palette struct {
	light, heavy colorful.Color
	lo, hi       float64
}

func NewPalette(t Theme, masses []float64) Palette {
	p := Palette{
		light: parseColor(t.Light),
		heavy: parseColor(t.Heavy),
		lo:    math.Inf(1),
		hi:    math.Inf(-1),
	}
	for _, m := range masses {
		p.lo = math.Min(p.lo, m)
		p.hi = math.Max(p.hi, m)
	}
	if len(masses) == 0 {
		p.lo, p.hi = 0, 0
	}
	return p
}

func (p Palette) Color(mass float64) lipgloss.Color {
	f := 0.5
	if p.hi > p.lo {
		f = (mass - p.lo) / (p.hi - p.lo)
	}
	f = math.Max(0, math.Min(1, f))
	return lipgloss.Color(p.light.BlendHcl(p.heavy, f).Clamped().Hex())
}

func parseColor(c lipgloss.Color) colorful.Color {
	col, err := colorful.Hex(string(c))
	if err != nil {
		return colorful.Color{R: 1, G: 1, B: 1}
	}
	return col
}

// GlyphRadius is the drawn radius of a body in world units.
func GlyphRadius(mass float64) float64 {
	return math.Sqrt(mass / math.Pi)
}
