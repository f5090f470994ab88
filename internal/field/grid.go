package field

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/lvsim/internal/dynamo"
)

// DefaultMargin is the headroom added above the observed trajectory
// maxima when deriving plot bounds.
const DefaultMargin = 0.05

// Bounds is the rectangle [XMin, XMax] x [YMin, YMax] in state space.
type Bounds struct {
	XMin float64 `json:"x_min"`
	XMax float64 `json:"x_max"`
	YMin float64 `json:"y_min"`
	YMax float64 `json:"y_max"`
}

func (b Bounds) validate() error {
	for _, v := range []float64{b.XMin, b.XMax, b.YMin, b.YMax} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: bounds must be finite, got %+v", dynamo.ErrGrid, b)
		}
	}
	if !(b.XMax > b.XMin) || !(b.YMax > b.YMin) {
		return fmt.Errorf("%w: empty bounds %+v", dynamo.ErrGrid, b)
	}
	return nil
}

type boundsOptions struct {
	minX, minY float64
}

type BoundsOption func(*boundsOptions)

// MinExtent replaces a zero trajectory maximum with x (or y) before the
// margin is applied. A trajectory that starts on an axis stays there, so
// without a floor its bounds collapse to a line.
func MinExtent(x, y float64) BoundsOption {
	return func(o *boundsOptions) { o.minX, o.minY = x, y }
}

// BoundsFromTrajectory returns [0, max(x)*(1+margin)] x [0, max(y)*(1+margin)]
// over the prey (index 0) and predator (index 1) columns of traj.
func BoundsFromTrajectory(traj *dynamo.Trajectory, margin float64, opts ...BoundsOption) (Bounds, error) {
	if traj.Len() == 0 {
		return Bounds{}, dynamo.ErrNoTrajectory
	}
	if margin < 0 || math.IsNaN(margin) {
		return Bounds{}, fmt.Errorf("%w: margin must be non-negative, got %g", dynamo.ErrParameter, margin)
	}
	var o boundsOptions
	for _, opt := range opts {
		opt(&o)
	}

	xMax, yMax := traj.Max(0), traj.Max(1)
	if !(xMax > 0) {
		xMax = o.minX
	}
	if !(yMax > 0) {
		yMax = o.minY
	}
	b := Bounds{
		XMax: xMax * (1 + margin),
		YMax: yMax * (1 + margin),
	}
	if err := b.validate(); err != nil {
		return Bounds{}, err
	}
	return b, nil
}

// Grid is a rectangular mesh of sample points. Node (row, col) sits at
// (Xs[col], Ys[row]).
type Grid struct {
	Xs []float64 `json:"xs"`
	Ys []float64 `json:"ys"`
}

type gridOptions struct {
	excludeAxes bool
}

type GridOption func(*gridOptions)

// ExcludeAxes drops the x=XMin and y=YMin edges from the mesh. The
// conserved quantity is undefined on the axes, so contour grids built
// from bounds starting at zero need this.
func ExcludeAxes() GridOption {
	return func(o *gridOptions) { o.excludeAxes = true }
}

// NewGrid builds an n x n mesh over b. With ExcludeAxes the mesh keeps n
// nodes per side but starts one spacing in from the lower edges.
func NewGrid(b Bounds, n int, opts ...GridOption) (*Grid, error) {
	if n < 2 {
		return nil, fmt.Errorf("%w: resolution must be at least 2, got %d", dynamo.ErrGrid, n)
	}
	if err := b.validate(); err != nil {
		return nil, err
	}
	var o gridOptions
	for _, opt := range opts {
		opt(&o)
	}

	xLo, yLo := b.XMin, b.YMin
	if o.excludeAxes {
		xLo += (b.XMax - b.XMin) / float64(n)
		yLo += (b.YMax - b.YMin) / float64(n)
	}

	g := &Grid{Xs: make([]float64, n), Ys: make([]float64, n)}
	floats.Span(g.Xs, xLo, b.XMax)
	floats.Span(g.Ys, yLo, b.YMax)
	return g, nil
}

func (g *Grid) Cols() int { return len(g.Xs) }
func (g *Grid) Rows() int { return len(g.Ys) }

// At returns the coordinates of node (row, col).
func (g *Grid) At(row, col int) (x, y float64) {
	return g.Xs[col], g.Ys[row]
}

func (g *Grid) Bounds() Bounds {
	return Bounds{XMin: g.Xs[0], XMax: g.Xs[len(g.Xs)-1], YMin: g.Ys[0], YMax: g.Ys[len(g.Ys)-1]}
}
