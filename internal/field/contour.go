package field

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// Scalar is a real-valued function of the state that may be undefined
// on part of the plane.
type Scalar interface {
	ConservedAt(x, y float64) (float64, error)
}

// ScalarField holds Values[row][col] at Grid.At(row, col).
type ScalarField struct {
	Grid   *Grid       `json:"grid"`
	Values [][]float64 `json:"values"`
}

// ConservedField evaluates s on every node of g. It fails on the first
// node outside the domain of s instead of storing a NaN.
func ConservedField(s Scalar, g *Grid) (*ScalarField, error) {
	sf := &ScalarField{Grid: g, Values: make([][]float64, g.Rows())}
	for r := range sf.Values {
		sf.Values[r] = make([]float64, g.Cols())
		for c := range sf.Values[r] {
			x, y := g.At(r, c)
			v, err := s.ConservedAt(x, y)
			if err != nil {
				return nil, fmt.Errorf("grid node (%d, %d): %w", r, c, err)
			}
			sf.Values[r][c] = v
		}
	}
	return sf, nil
}

// Range returns the smallest and largest value in the field.
func (sf *ScalarField) Range() (lo, hi float64) {
	lo, hi = sf.Values[0][0], sf.Values[0][0]
	for _, row := range sf.Values {
		lo = min(lo, floats.Min(row))
		hi = max(hi, floats.Max(row))
	}
	return lo, hi
}

// Levels returns n contour levels evenly spaced strictly inside the
// field's range.
func Levels(sf *ScalarField, n int) []float64 {
	if n < 1 {
		return nil
	}
	lo, hi := sf.Range()
	span := make([]float64, n+2)
	floats.Span(span, lo, hi)
	return span[1 : n+1]
}

// Segment is one straight piece of an isoline.
type Segment struct {
	X1, Y1, X2, Y2 float64
}

// Isolines traces the level set sf == level with marching squares and
// returns the unordered line segments, one or two per grid cell.
func Isolines(sf *ScalarField, level float64) []Segment {
	g := sf.Grid
	var segs []Segment

	// Crossing point on the edge between nodes (r0,c0) and (r1,c1).
	cross := func(r0, c0, r1, c1 int) (float64, float64) {
		v0, v1 := sf.Values[r0][c0], sf.Values[r1][c1]
		x0, y0 := g.At(r0, c0)
		x1, y1 := g.At(r1, c1)
		f := 0.5
		if v1 != v0 {
			f = (level - v0) / (v1 - v0)
		}
		return x0 + f*(x1-x0), y0 + f*(y1-y0)
	}

	for r := 0; r+1 < g.Rows(); r++ {
		for c := 0; c+1 < g.Cols(); c++ {
			// Corners counter-clockwise from the lower left.
			idx := 0
			if sf.Values[r][c] > level {
				idx |= 1
			}
			if sf.Values[r][c+1] > level {
				idx |= 2
			}
			if sf.Values[r+1][c+1] > level {
				idx |= 4
			}
			if sf.Values[r+1][c] > level {
				idx |= 8
			}
			if idx == 0 || idx == 15 {
				continue
			}

			// Edge crossings: bottom, right, top, left.
			bx, by := cross(r, c, r, c+1)
			rx, ry := cross(r, c+1, r+1, c+1)
			tx, ty := cross(r+1, c, r+1, c+1)
			lx, ly := cross(r, c, r+1, c)
			add := func(x1, y1, x2, y2 float64) { segs = append(segs, Segment{x1, y1, x2, y2}) }

			switch idx {
			case 1, 14:
				add(lx, ly, bx, by)
			case 2, 13:
				add(bx, by, rx, ry)
			case 3, 12:
				add(lx, ly, rx, ry)
			case 4, 11:
				add(rx, ry, tx, ty)
			case 6, 9:
				add(bx, by, tx, ty)
			case 7, 8:
				add(lx, ly, tx, ty)
			case 5, 10:
				// Saddle cell: resolve with the cell-centre average.
				centre := (sf.Values[r][c] + sf.Values[r][c+1] + sf.Values[r+1][c+1] + sf.Values[r+1][c]) / 4
				if (centre > level) == (idx == 5) {
					add(lx, ly, tx, ty)
					add(bx, by, rx, ry)
				} else {
					add(lx, ly, bx, by)
					add(rx, ry, tx, ty)
				}
			}
		}
	}
	return segs
}
