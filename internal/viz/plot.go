package viz

import (
	"fmt"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/lvsim/internal/dynamo"
)

// PopulationPlot draws prey and predator against time as a line chart of
// the given character size.
func PopulationPlot(traj *dynamo.Trajectory, width, height int) (string, error) {
	if traj.Len() < 2 {
		return "", dynamo.ErrNoTrajectory
	}
	if len(traj.States[0]) < 2 {
		return "", fmt.Errorf("%w: need prey and predator columns", dynamo.ErrDimensionMismatch)
	}
	caption := fmt.Sprintf("prey (green) / predator (red), t = %.4g..%.4g", traj.Times[0], traj.Times[traj.Len()-1])
	return asciigraph.PlotMany(
		[][]float64{traj.Column(0), traj.Column(1)},
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.SeriesColors(asciigraph.Green, asciigraph.Red),
		asciigraph.Caption(caption),
	), nil
}

// SeriesPlot draws a single series, e.g. an invariant over time.
func SeriesPlot(data []float64, width, height int, caption string) string {
	if len(data) == 0 {
		return ""
	}
	return asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	)
}
