package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/nbodysim/internal/body"
	"github.com/san-kum/nbodysim/internal/config"
	"github.com/san-kum/nbodysim/internal/sim"
)

const (
	metadataFile = "metadata.json"
	framesFile   = "frames.csv"
)

var (
	ErrNotFound  = errors.New("storage: run not found")
	ErrBadFrames = errors.New("storage: malformed frames file")
)

var framesHeader = []string{"time", "id", "x", "y", "vx", "vy", "mass"}

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID         string             `json:"id"`
	Scene      string             `json:"scene"`
	Timestamp  time.Time          `json:"timestamp"`
	Bodies     int                `json:"bodies"`
	Steps      int                `json:"steps"`
	Frames     int                `json:"frames"`
	Dt         float64            `json:"dt"`
	Config     *config.Config     `json:"config"`
	Metrics    map[string]float64 `json:"metrics"`
	StepErrors []string           `json:"step_errors,omitempty"`
}

func (s *Store) Save(cfg *config.Config, result *sim.Result) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", cfg.Scene, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        runID,
		Scene:     cfg.Scene,
		Timestamp: now,
		Steps:     result.StepsTaken,
		Frames:    len(result.Frames),
		Dt:        cfg.Dt(),
		Config:    cfg,
		Metrics:   sanitize(result.Metrics),
	}
	if len(result.Frames) > 0 {
		meta.Bodies = len(result.Frames[0].Bodies)
	}
	for _, err := range result.Errors {
		meta.StepErrors = append(meta.StepErrors, err.Error())
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeFrames(filepath.Join(runDir, framesFile), result.Frames); err != nil {
		return "", err
	}
	return runID, nil
}

// sanitize drops NaN and Inf metric values, which encoding/json rejects.
func sanitize(metrics map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(metrics))
	for k, v := range metrics {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		out[k] = v
	}
	return out
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func writeFrames(path string, frames []sim.Frame) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(framesHeader); err != nil {
		return err
	}

	for _, frame := range frames {
		t := formatFloat(frame.Time)
		for _, b := range frame.Bodies {
			row := []string{
				t,
				strconv.FormatUint(uint64(b.ID), 10),
				formatFloat(b.Position.X),
				formatFloat(b.Position.Y),
				formatFloat(b.Velocity.X),
				formatFloat(b.Velocity.Y),
				formatFloat(b.Mass),
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}

	w.Flush()
	return w.Error()
}

// List returns every readable run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadFrames reads frames.csv back into frames. Consecutive rows with the
// same time form one frame; step numbers are recovered from the run's dt.
func (s *Store) LoadFrames(runID string) ([]sim.Frame, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(filepath.Join(s.baseDir, runID, framesFile))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(framesHeader)

	if _, err := r.Read(); err != nil {
		if err == io.EOF {
			return []sim.Frame{}, nil
		}
		return nil, err
	}

	frames := make([]sim.Frame, 0, meta.Frames)
	line := 1
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line++

		t, b, err := parseRow(record)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrBadFrames, line, err)
		}

		if n := len(frames); n == 0 || frames[n-1].Time != t {
			step := 0
			if meta.Dt > 0 {
				step = int(math.Round(t / meta.Dt))
			}
			frames = append(frames, sim.Frame{Step: step, Time: t})
		}
		last := &frames[len(frames)-1]
		last.Bodies = append(last.Bodies, b)
	}

	return frames, nil
}

func parseRow(record []string) (float64, body.State, error) {
	vals := make([]float64, len(record))
	for i, field := range record {
		if i == 1 {
			continue
		}
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return 0, body.State{}, err
		}
		vals[i] = v
	}

	id, err := strconv.ParseUint(record[1], 10, 32)
	if err != nil {
		return 0, body.State{}, err
	}

	b := body.State{
		ID:   body.ID(id),
		Mass: vals[6],
	}
	b.Position.X, b.Position.Y = vals[2], vals[3]
	b.Velocity.X, b.Velocity.Y = vals[4], vals[5]
	return vals[0], b, nil
}
