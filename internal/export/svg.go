// Package export renders stored runs as standalone SVG images.
package export

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/san-kum/nbodysim/internal/body"
	"github.com/san-kum/nbodysim/internal/sim"
	"github.com/san-kum/nbodysim/internal/viz"
	"gonum.org/v1/gonum/spatial/r2"
)

const padding = 0.1

type bounds struct {
	minX, minY, maxX, maxY float64
}

func (b *bounds) add(p r2.Vec, r float64) {
	b.minX = math.Min(b.minX, p.X-r)
	b.maxX = math.Max(b.maxX, p.X+r)
	b.minY = math.Min(b.minY, p.Y-r)
	b.maxY = math.Max(b.maxY, p.Y+r)
}

// TrajectoriesSVG draws every body's path through frames, coloured by mass,
// with a disc of radius sqrt(mass/pi) at its last finite position.
// Non-finite samples break the path.
func TrajectoriesSVG(w io.Writer, frames []sim.Frame, theme viz.Theme, width, height int) error {
	if len(frames) == 0 {
		return fmt.Errorf("export: no frames")
	}

	paths := make(map[body.ID][]r2.Vec)
	last := make(map[body.ID]body.State)
	order := make([]body.ID, 0, len(frames[0].Bodies))
	b := bounds{math.Inf(1), math.Inf(1), math.Inf(-1), math.Inf(-1)}

	for _, f := range frames {
		for _, s := range f.Bodies {
			if _, seen := paths[s.ID]; !seen {
				order = append(order, s.ID)
				paths[s.ID] = nil
			}
			if !s.Finite() {
				// a NaN point splits the polyline
				paths[s.ID] = append(paths[s.ID], r2.Vec{X: math.NaN()})
				continue
			}
			paths[s.ID] = append(paths[s.ID], s.Position)
			last[s.ID] = s
			b.add(s.Position, viz.GlyphRadius(s.Mass))
		}
	}

	if math.IsInf(b.minX, 1) {
		b = bounds{-1, -1, 1, 1}
	}
	rangeX := math.Max(b.maxX-b.minX, 1e-9)
	rangeY := math.Max(b.maxY-b.minY, 1e-9)
	b.minX -= rangeX * padding
	b.minY -= rangeY * padding
	rangeX *= 1 + 2*padding
	rangeY *= 1 + 2*padding
	scale := math.Min(float64(width)/rangeX, float64(height)/rangeY)

	project := func(p r2.Vec) (float64, float64) {
		return (p.X - b.minX) * scale, float64(height) - (p.Y-b.minY)*scale
	}

	masses := make([]float64, 0, len(last))
	for _, s := range last {
		masses = append(masses, s.Mass)
	}
	palette := viz.NewPalette(theme, masses)

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height)

	for _, id := range order {
		s, ok := last[id]
		if !ok {
			continue
		}
		color := string(palette.Color(s.Mass))

		if d := pathData(paths[id], project); d != "" {
			fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-opacity="0.6" stroke-width="1" d="%s"/>
`, color, d)
		}
		cx, cy := project(s.Position)
		r := math.Max(viz.GlyphRadius(s.Mass)*scale, 1)
		fmt.Fprintf(&sb, `<circle id="body-%d" cx="%.2f" cy="%.2f" r="%.2f" fill="%s"/>
`, id, cx, cy, r, color)
	}

	sb.WriteString("</svg>\n")
	_, err := io.WriteString(w, sb.String())
	return err
}

func pathData(points []r2.Vec, project func(r2.Vec) (float64, float64)) string {
	var sb strings.Builder
	pen := false
	segments := 0
	for _, p := range points {
		if math.IsNaN(p.X) {
			pen = false
			continue
		}
		x, y := project(p)
		if pen {
			fmt.Fprintf(&sb, " L%.2f,%.2f", x, y)
			segments++
		} else {
			fmt.Fprintf(&sb, " M%.2f,%.2f", x, y)
			pen = true
		}
	}
	if segments == 0 {
		return ""
	}
	return strings.TrimSpace(sb.String())
}
