package analysis

import (
	"fmt"
	"strings"

	"github.com/san-kum/lvsim/internal/dynamo"
)

// Point is a location in a 2D projection of state space.
type Point struct{ X, Y float64 }

// PhasePortrait2D holds data for a 2D phase space plot
type PhasePortrait2D struct {
	XIndex, YIndex int
	Points         []Point
	// Marks are drawn on top of the trajectory, e.g. fixed points.
	Marks []Point
}

// NewPhasePortrait projects traj onto components xIdx and yIdx.
func NewPhasePortrait(traj *dynamo.Trajectory, xIdx, yIdx int) (*PhasePortrait2D, error) {
	if traj.Len() == 0 {
		return nil, dynamo.ErrNoTrajectory
	}
	dim := len(traj.States[0])
	if xIdx < 0 || yIdx < 0 || xIdx >= dim || yIdx >= dim {
		return nil, fmt.Errorf("%w: axes (%d, %d) for %d-dimensional state", dynamo.ErrDimensionMismatch, xIdx, yIdx, dim)
	}

	portrait := &PhasePortrait2D{
		XIndex: xIdx,
		YIndex: yIdx,
		Points: make([]Point, 0, traj.Len()),
	}
	for _, s := range traj.States {
		portrait.Points = append(portrait.Points, Point{X: s[xIdx], Y: s[yIdx]})
	}
	return portrait, nil
}

// PhasePortraitToASCII converts phase portrait to ASCII art
func PhasePortraitToASCII(portrait *PhasePortrait2D, width, height int) string {
	if portrait == nil || len(portrait.Points) == 0 || width < 2 || height < 2 {
		return ""
	}

	// Find bounds
	minX, maxX := portrait.Points[0].X, portrait.Points[0].X
	minY, maxY := portrait.Points[0].Y, portrait.Points[0].Y

	for _, set := range [][]Point{portrait.Points, portrait.Marks} {
		for _, p := range set {
			minX = min(minX, p.X)
			maxX = max(maxX, p.X)
			minY = min(minY, p.Y)
			maxY = max(maxY, p.Y)
		}
	}

	// Add padding
	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	// Create canvas
	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = make([]rune, width)
		for j := range canvas[i] {
			canvas[i][j] = ' '
		}
	}

	cell := func(p Point) (int, int) {
		col := int((p.X - minX) / rangeX * float64(width-1))
		row := height - 1 - int((p.Y-minY)/rangeY*float64(height-1))
		return row, col
	}

	// Draw axes if they cross the visible area
	if minX <= 0 && maxX >= 0 {
		_, col := cell(Point{})
		for row := 0; row < height; row++ {
			canvas[row][col] = '│'
		}
	}
	if minY <= 0 && maxY >= 0 {
		row, _ := cell(Point{})
		for col := 0; col < width; col++ {
			if canvas[row][col] == '│' {
				canvas[row][col] = '┼'
			} else {
				canvas[row][col] = '─'
			}
		}
	}

	// Plot points
	for _, p := range portrait.Points {
		row, col := cell(p)
		if row >= 0 && row < height && col >= 0 && col < width {
			canvas[row][col] = '•'
		}
	}
	for _, p := range portrait.Marks {
		row, col := cell(p)
		if row >= 0 && row < height && col >= 0 && col < width {
			canvas[row][col] = '✕'
		}
	}

	// Convert to string
	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}
