package field

import (
	"math"
)

// Planar is a two-dimensional vector field. Models implement it with the
// same formula they use for time integration.
type Planar interface {
	Rates(x, y float64) (dx, dy float64)
}

// DirectionField holds unit direction vectors and the raw speed at every
// node of Grid. U[row][col] and V[row][col] belong to Grid.At(row, col).
type DirectionField struct {
	Grid      *Grid       `json:"grid"`
	U         [][]float64 `json:"u"`
	V         [][]float64 `json:"v"`
	Magnitude [][]float64 `json:"magnitude"`
}

// Sample evaluates f at every node of g and normalizes each vector by its
// Euclidean norm. Nodes where the field vanishes keep a zero vector.
func Sample(f Planar, g *Grid) *DirectionField {
	rows, cols := g.Rows(), g.Cols()
	df := &DirectionField{
		Grid:      g,
		U:         make([][]float64, rows),
		V:         make([][]float64, rows),
		Magnitude: make([][]float64, rows),
	}

	for r := 0; r < rows; r++ {
		df.U[r] = make([]float64, cols)
		df.V[r] = make([]float64, cols)
		df.Magnitude[r] = make([]float64, cols)
		for c := 0; c < cols; c++ {
			dx, dy := f.Rates(g.At(r, c))
			norm := math.Hypot(dx, dy)
			df.Magnitude[r][c] = norm
			if norm == 0 {
				continue
			}
			df.U[r][c] = dx / norm
			df.V[r][c] = dy / norm
		}
	}
	return df
}

// MaxMagnitude returns the largest raw speed on the grid.
func (df *DirectionField) MaxMagnitude() float64 {
	m := 0.0
	for _, row := range df.Magnitude {
		for _, v := range row {
			m = math.Max(m, v)
		}
	}
	return m
}
