package export

import (
	"fmt"
	"io"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/san-kum/lvsim/internal/dynamo"
	"github.com/san-kum/lvsim/internal/physics"
)

// Format selects the chart encoder.
type Format string

const (
	PNG Format = "png"
	SVG Format = "svg"
)

func (f Format) renderer() (chart.RendererProvider, error) {
	switch f {
	case PNG:
		return chart.PNG, nil
	case SVG:
		return chart.SVG, nil
	default:
		return nil, fmt.Errorf("unsupported chart format %q", f)
	}
}

var (
	preyColor     = drawing.Color{R: 31, G: 119, B: 180, A: 255}
	predatorColor = drawing.Color{R: 255, G: 127, B: 14, A: 255}
)

// TimeSeriesChart plots prey and predator populations against time.
func TimeSeriesChart(w io.Writer, traj *dynamo.Trajectory, format Format) error {
	if traj.Len() < 2 {
		return dynamo.ErrNoTrajectory
	}
	rp, err := format.renderer()
	if err != nil {
		return err
	}

	graph := chart.Chart{
		Title:  "Lotka-Volterra",
		Width:  960,
		Height: 480,
		XAxis:  chart.XAxis{Name: "Time"},
		YAxis:  chart.YAxis{Name: "Population"},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "Prey",
				XValues: traj.Times,
				YValues: traj.Column(0),
				Style:   chart.Style{StrokeColor: preyColor, StrokeWidth: 2},
			},
			chart.ContinuousSeries{
				Name:    "Predator",
				XValues: traj.Times,
				YValues: traj.Column(1),
				Style:   chart.Style{StrokeColor: predatorColor, StrokeWidth: 2},
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	return graph.Render(rp, w)
}

// PhaseChart plots predators against prey for every trajectory and marks
// the given fixed points.
func PhaseChart(w io.Writer, trajs []*dynamo.Trajectory, points []physics.CriticalPoint, format Format) error {
	if len(trajs) == 0 || trajs[0].Len() < 2 {
		return dynamo.ErrNoTrajectory
	}
	rp, err := format.renderer()
	if err != nil {
		return err
	}

	var series []chart.Series
	for i, traj := range trajs {
		name := "Trajectory"
		if i > 0 {
			name = fmt.Sprintf("Orbit %d", i)
		}
		series = append(series, chart.ContinuousSeries{
			Name:    name,
			XValues: traj.Column(0),
			YValues: traj.Column(1),
			Style:   chart.Style{StrokeColor: chart.GetDefaultColor(i), StrokeWidth: 2},
		})
	}
	if len(points) > 0 {
		xs := make([]float64, len(points))
		ys := make([]float64, len(points))
		for i, p := range points {
			xs[i], ys[i] = p.X, p.Y
		}
		series = append(series, chart.ContinuousSeries{
			Name:    "Fixed points",
			XValues: xs,
			YValues: ys,
			Style: chart.Style{
				StrokeWidth: chart.Disabled,
				DotWidth:    5,
				DotColor:    drawing.ColorRed,
			},
		})
	}

	graph := chart.Chart{
		Title:  "Prey vs predator",
		Width:  640,
		Height: 640,
		XAxis:  chart.XAxis{Name: "Prey"},
		YAxis:  chart.YAxis{Name: "Predator"},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	return graph.Render(rp, w)
}
