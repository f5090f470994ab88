package viz

import (
	"strings"

	"github.com/san-kum/lvsim/internal/dynamo"
	"github.com/san-kum/lvsim/internal/field"
)

// Braille cells are 2x4 dots:
// 1 4
// 2 5
// 3 6
// 7 8
var pixelMap = [4][2]rune{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const blank rune = 0x2800

// Canvas is a terminal drawing surface with 2x4 sub-pixels per cell.
type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

// Set lights the sub-pixel (x, y). The canvas is Width*2 by Height*4
// sub-pixels with y growing downwards; points outside are ignored.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.Grid[row][col] |= pixelMap[y%4][x%2]
}

// IsSet reports whether the sub-pixel (x, y) is lit.
func (c *Canvas) IsSet(x, y int) bool {
	if x < 0 || y < 0 || x/2 >= c.Width || y/4 >= c.Height {
		return false
	}
	return c.Grid[y/4][x/2]&pixelMap[y%4][x%2] != 0
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = blank
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row))
		b.WriteByte('\n')
	}
	return b.String()
}

// Viewport maps state-space coordinates onto the sub-pixels of a canvas.
type Viewport struct {
	Bounds field.Bounds
	canvas *Canvas
}

func (c *Canvas) Viewport(b field.Bounds) Viewport {
	return Viewport{Bounds: b, canvas: c}
}

// Pixel returns the sub-pixel for the state-space point (x, y). Larger y
// maps to smaller rows.
func (v Viewport) Pixel(x, y float64) (int, int) {
	w := float64(v.canvas.Width*2 - 1)
	h := float64(v.canvas.Height*4 - 1)
	px := (x - v.Bounds.XMin) / (v.Bounds.XMax - v.Bounds.XMin) * w
	py := (v.Bounds.YMax - y) / (v.Bounds.YMax - v.Bounds.YMin) * h
	return int(px + 0.5), int(py + 0.5)
}

// Plot lights the sub-pixel nearest (x, y).
func (v Viewport) Plot(x, y float64) {
	v.canvas.Set(v.Pixel(x, y))
}

// Path joins consecutive samples of the prey/predator projection of traj
// with line segments. Only the first upto samples are drawn; upto < 0
// draws everything.
func (v Viewport) Path(traj *dynamo.Trajectory, upto int) {
	n := traj.Len()
	if upto >= 0 && upto < n {
		n = upto
	}
	if n == 0 {
		return
	}
	px, py := v.Pixel(traj.States[0][0], traj.States[0][1])
	v.canvas.Set(px, py)
	for i := 1; i < n; i++ {
		x, y := v.Pixel(traj.States[i][0], traj.States[i][1])
		v.canvas.DrawLine(px, py, x, y)
		px, py = x, y
	}
}

// Cross marks (x, y) with a small diagonal cross.
func (v Viewport) Cross(x, y float64) {
	px, py := v.Pixel(x, y)
	for d := -1; d <= 1; d++ {
		v.canvas.Set(px+d, py+d)
		v.canvas.Set(px+d, py-d)
	}
}

// Arrows draws every non-zero vector of df as a short tick pointing along
// the flow. Zero nodes become a single dot.
func (v Viewport) Arrows(df *field.DirectionField, length float64) {
	g := df.Grid
	for r := 0; r < g.Rows(); r++ {
		for c := 0; c < g.Cols(); c++ {
			x, y := g.At(r, c)
			px, py := v.Pixel(x, y)
			if df.Magnitude[r][c] == 0 {
				v.canvas.Set(px, py)
				continue
			}
			ex := px + int(df.U[r][c]*length+0.5*sign(df.U[r][c]))
			ey := py - int(df.V[r][c]*length+0.5*sign(df.V[r][c]))
			v.canvas.DrawLine(px, py, ex, ey)
		}
	}
}

// PhaseCanvas draws the prey/predator projection of every trajectory in
// trajs, plus crosses at marks, into a fresh w x h canvas over b.
func PhaseCanvas(b field.Bounds, w, h int, trajs []*dynamo.Trajectory, marks [][2]float64) *Canvas {
	c := NewCanvas(w, h)
	vp := c.Viewport(b)
	for _, tr := range trajs {
		vp.Path(tr, -1)
	}
	for _, m := range marks {
		vp.Cross(m[0], m[1])
	}
	return c
}

func sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
