package export

import (
	"encoding/json"
	"io"

	"github.com/san-kum/lvsim/internal/experiment"
	"github.com/san-kum/lvsim/internal/integrators"
	"github.com/san-kum/lvsim/internal/physics"
)

// Document is the JSON form of a run: the solution samples plus what a
// plotting tool needs to reproduce the figures.
type Document struct {
	Model      string                  `json:"model"`
	Integrator string                  `json:"integrator"`
	Params     map[string]float64      `json:"params"`
	Critical   []physics.CriticalPoint `json:"critical_points"`
	Steps      int                     `json:"steps"`
	Times      []float64               `json:"times"`
	States     [][]float64             `json:"states"`
	Metrics    map[string]float64      `json:"metrics"`
	Stats      integrators.Stats       `json:"stats"`
	Period     float64                 `json:"period"`
	Orbits     [][][]float64           `json:"orbits,omitempty"`
}

func NewDocument(r *experiment.Report) *Document {
	traj := r.Main.Trajectory
	doc := &Document{
		Model:      r.Model,
		Integrator: r.Integrator,
		Params:     r.Params,
		Critical:   r.Critical,
		Steps:      traj.Len(),
		Times:      traj.Times,
		States:     make([][]float64, traj.Len()),
		Metrics:    r.Main.Metrics,
		Stats:      r.Main.Stats,
		Period:     r.Period,
	}
	for i, s := range traj.States {
		doc.States[i] = s
	}
	for _, o := range r.Orbits {
		states := make([][]float64, o.Trajectory.Len())
		for i, s := range o.Trajectory.States {
			states[i] = s
		}
		doc.Orbits = append(doc.Orbits, states)
	}
	return doc
}

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
