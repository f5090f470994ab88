package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/san-kum/lvsim/internal/dynamo"
)

// Columns names the state components of a predator-prey trajectory.
var Columns = []string{"prey", "predator"}

// WriteCSV writes one row per sample: time followed by every state
// component. Values are written with full precision.
func WriteCSV(w io.Writer, traj *dynamo.Trajectory, columns []string) error {
	if traj.Len() == 0 {
		return dynamo.ErrNoTrajectory
	}
	dim := len(traj.States[0])
	if len(columns) != dim {
		return fmt.Errorf("%w: %d column names for %d components", dynamo.ErrDimensionMismatch, len(columns), dim)
	}

	cw := csv.NewWriter(w)
	header := append([]string{"time"}, columns...)
	if err := cw.Write(header); err != nil {
		return err
	}

	row := make([]string, dim+1)
	for i, s := range traj.States {
		row[0] = strconv.FormatFloat(traj.Times[i], 'g', -1, 64)
		for j, v := range s {
			row[j+1] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// ReadCSV parses the output of WriteCSV.
func ReadCSV(r io.Reader) (*dynamo.Trajectory, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, dynamo.ErrNoTrajectory
	}

	traj := &dynamo.Trajectory{
		Times:  make([]float64, 0, len(records)-1),
		States: make([]dynamo.State, 0, len(records)-1),
	}
	for i, rec := range records[1:] {
		if len(rec) < 2 {
			return nil, fmt.Errorf("row %d: %w", i+1, dynamo.ErrDimensionMismatch)
		}
		t, err := strconv.ParseFloat(rec[0], 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		state := make(dynamo.State, len(rec)-1)
		for j, field := range rec[1:] {
			if state[j], err = strconv.ParseFloat(field, 64); err != nil {
				return nil, fmt.Errorf("row %d: %w", i+1, err)
			}
		}
		traj.Times = append(traj.Times, t)
		traj.States = append(traj.States, state)
	}
	return traj, nil
}
