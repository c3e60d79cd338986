package viz

import (
	"math"

	"github.com/san-kum/nbodysim/internal/body"
	"gonum.org/v1/gonum/spatial/r2"
)

const (
	fitMargin  = 0.9
	zoomFactor = 1.25
	panFrac    = 0.1
)

// Camera maps world coordinates onto canvas dots. Scale is dots per world
// unit; y grows upward in the world and downward on the canvas.
type Camera struct {
	Center r2.Vec
	Scale  float64
}

// Fit centres the camera on the finite bodies and scales so that all of them,
// glyphs included, fit in w x h dots.
func (c *Camera) Fit(bodies []body.State, w, h int) {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, b := range bodies {
		if !b.Finite() {
			continue
		}
		r := GlyphRadius(b.Mass)
		minX = math.Min(minX, b.Position.X-r)
		maxX = math.Max(maxX, b.Position.X+r)
		minY = math.Min(minY, b.Position.Y-r)
		maxY = math.Max(maxY, b.Position.Y+r)
	}
	if math.IsInf(minX, 1) {
		c.Center = r2.Vec{}
		c.Scale = 1
		return
	}

	c.Center = r2.Vec{X: (minX + maxX) / 2, Y: (minY + maxY) / 2}
	spanX, spanY := maxX-minX, maxY-minY
	scale := math.Inf(1)
	if spanX > 0 {
		scale = float64(w) / spanX
	}
	if spanY > 0 {
		scale = math.Min(scale, float64(h)/spanY)
	}
	if math.IsInf(scale, 1) {
		scale = 1
	}
	c.Scale = scale * fitMargin
}

// Project returns the dot for world point p on a w x h canvas.
func (c Camera) Project(p r2.Vec, w, h int) (int, int) {
	x := float64(w)/2 + (p.X-c.Center.X)*c.Scale
	y := float64(h)/2 - (p.Y-c.Center.Y)*c.Scale
	return int(math.Floor(x)), int(math.Floor(y))
}

func (c *Camera) ZoomIn()  { c.Scale *= zoomFactor }
func (c *Camera) ZoomOut() { c.Scale /= zoomFactor }

// Pan moves the view by a fraction of its width or height; dx and dy are
// -1, 0 or 1 in screen directions.
func (c *Camera) Pan(dx, dy int, w, h int) {
	if c.Scale == 0 {
		return
	}
	c.Center.X += float64(dx) * panFrac * float64(w) / c.Scale
	c.Center.Y -= float64(dy) * panFrac * float64(h) / c.Scale
}
