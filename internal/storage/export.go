package storage

import (
	"encoding/json"
	"io"
	"math"

	"github.com/san-kum/nbodysim/internal/sim"
)

type ExportBody struct {
	ID       uint32     `json:"id"`
	Position [2]float64 `json:"position"`
	Velocity [2]float64 `json:"velocity"`
	Mass     float64    `json:"mass"`
	Finite   bool       `json:"finite"`
}

type ExportFrame struct {
	Step   int          `json:"step"`
	Time   float64      `json:"time"`
	Bodies []ExportBody `json:"bodies"`
}

type ExportData struct {
	Run    RunMetadata   `json:"run"`
	Frames []ExportFrame `json:"frames"`
}

// ExportJSON writes a run and its frames as one JSON document. JSON has no
// NaN or Inf, so such bodies are flagged with finite=false and their
// coordinates clamped to representable values.
func ExportJSON(w io.Writer, meta *RunMetadata, frames []sim.Frame) error {
	data := ExportData{
		Run:    *meta,
		Frames: make([]ExportFrame, len(frames)),
	}

	for i, f := range frames {
		ef := ExportFrame{
			Step:   f.Step,
			Time:   f.Time,
			Bodies: make([]ExportBody, len(f.Bodies)),
		}
		for j, b := range f.Bodies {
			ef.Bodies[j] = ExportBody{
				ID:       uint32(b.ID),
				Position: [2]float64{clampFinite(b.Position.X), clampFinite(b.Position.Y)},
				Velocity: [2]float64{clampFinite(b.Velocity.X), clampFinite(b.Velocity.Y)},
				Mass:     b.Mass,
				Finite:   b.Finite(),
			}
		}
		data.Frames[i] = ef
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func clampFinite(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return 0
	case math.IsInf(v, 1):
		return math.MaxFloat64
	case math.IsInf(v, -1):
		return -math.MaxFloat64
	}
	return v
}
