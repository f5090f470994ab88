package analysis

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"

	"github.com/san-kum/lvsim/internal/dynamo"
)

// ErrNoOscillation is returned when a series does not cross its level
// often enough to measure a period.
var ErrNoOscillation = errors.New("analysis: not enough oscillation to estimate a period")

// CrossingTimes records the interpolated times at which component idx
// crosses level going upwards.
func CrossingTimes(traj *dynamo.Trajectory, idx int, level float64) ([]float64, error) {
	if traj.Len() == 0 {
		return nil, dynamo.ErrNoTrajectory
	}
	if idx < 0 || idx >= len(traj.States[0]) {
		return nil, fmt.Errorf("%w: component %d", dynamo.ErrDimensionMismatch, idx)
	}

	var times []float64
	prev := traj.States[0][idx]
	for i := 1; i < traj.Len(); i++ {
		curr := traj.States[i][idx]
		if prev < level && curr >= level {
			frac := (level - prev) / (curr - prev)
			t0, t1 := traj.Times[i-1], traj.Times[i]
			times = append(times, t0+frac*(t1-t0))
		}
		prev = curr
	}
	return times, nil
}

// CrossingPeriod is the mean interval between upward crossings.
func CrossingPeriod(traj *dynamo.Trajectory, idx int, level float64) (float64, error) {
	times, err := CrossingTimes(traj, idx, level)
	if err != nil {
		return 0, err
	}
	if len(times) < 2 {
		return 0, ErrNoOscillation
	}
	return (times[len(times)-1] - times[0]) / float64(len(times)-1), nil
}

// PowerSpectrum returns |X_k| for the non-negative frequencies of the
// mean-removed series, or nil for an empty one.
func PowerSpectrum(data []float64) []float64 {
	if len(data) == 0 {
		return nil
	}
	mean := 0.0
	for _, v := range data {
		mean += v
	}
	mean /= float64(len(data))

	centred := make([]float64, len(data))
	for i, v := range data {
		centred[i] = v - mean
	}

	spectrum := fft.FFTReal(centred)
	ps := make([]float64, len(spectrum)/2)
	for i := range ps {
		ps[i] = cmplx.Abs(spectrum[i])
	}
	return ps
}

// DominantPeriod returns the period of the strongest non-DC frequency of
// a series sampled every dt. The resolution is limited to n*dt/k.
func DominantPeriod(data []float64, dt float64) (float64, error) {
	if len(data) < 4 || !(dt > 0) {
		return 0, ErrNoOscillation
	}
	ps := PowerSpectrum(data)

	best, bestPower := 0, 0.0
	for k := 1; k < len(ps); k++ {
		if ps[k] > bestPower {
			best, bestPower = k, ps[k]
		}
	}
	if best == 0 || bestPower < 1e-12 {
		return 0, ErrNoOscillation
	}
	return float64(len(data)) * dt / float64(best), nil
}

// Stats summarizes one component of a trajectory.
type Stats struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Mean float64 `json:"mean"`
}

// Summary holds per-component statistics in state order.
type Summary struct {
	Components []Stats `json:"components"`
	Samples    int     `json:"samples"`
}

// Summarize computes per-component extrema and time-sample means.
func Summarize(traj *dynamo.Trajectory) (*Summary, error) {
	if traj.Len() == 0 {
		return nil, dynamo.ErrNoTrajectory
	}
	dim := len(traj.States[0])
	s := &Summary{Components: make([]Stats, dim), Samples: traj.Len()}
	for i := 0; i < dim; i++ {
		col := traj.Column(i)
		sum := 0.0
		st := Stats{Min: math.Inf(1), Max: math.Inf(-1)}
		for _, v := range col {
			st.Min = math.Min(st.Min, v)
			st.Max = math.Max(st.Max, v)
			sum += v
		}
		st.Mean = sum / float64(len(col))
		s.Components[i] = st
	}
	return s, nil
}
