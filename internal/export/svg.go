package export

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/san-kum/lvsim/internal/dynamo"
	"github.com/san-kum/lvsim/internal/field"
	"github.com/san-kum/lvsim/internal/physics"
)

const (
	svgWidth   = 640
	svgHeight  = 480
	svgPadding = 40
)

// Overlay is drawn on top of a field plot.
type Overlay struct {
	Trajectories []*dynamo.Trajectory
	Points       []physics.CriticalPoint
}

// frame maps state space onto the SVG canvas.
type frame struct {
	b field.Bounds
}

func (f frame) px(x, y float64) (float64, float64) {
	w := float64(svgWidth - 2*svgPadding)
	h := float64(svgHeight - 2*svgPadding)
	sx := svgPadding + (x-f.b.XMin)/(f.b.XMax-f.b.XMin)*w
	sy := float64(svgHeight-svgPadding) - (y-f.b.YMin)/(f.b.YMax-f.b.YMin)*h
	return sx, sy
}

func (f frame) header(sb *strings.Builder) {
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#ffffff"/>
`, svgWidth, svgHeight, svgWidth, svgHeight))

	x0, y0 := f.px(f.b.XMin, f.b.YMin)
	x1, y1 := f.px(f.b.XMax, f.b.YMax)
	sb.WriteString(fmt.Sprintf(`<g stroke="#000000" stroke-width="1" font-family="sans-serif" font-size="12">
<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f"/>
<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f"/>
<text x="%.1f" y="%.1f" stroke="none" text-anchor="middle">Prey</text>
<text x="%.1f" y="%.1f" stroke="none" text-anchor="middle" transform="rotate(-90 %.1f %.1f)">Predator</text>
<text x="%.1f" y="%.1f" stroke="none" text-anchor="end">%.3g</text>
<text x="%.1f" y="%.1f" stroke="none" text-anchor="end">%.3g</text>
</g>
`, x0, y0, x1, y0, x0, y0, x0, y1,
		(x0+x1)/2, float64(svgHeight)-10,
		float64(15), (y0+y1)/2, float64(15), (y0+y1)/2,
		x1, y0+15, f.b.XMax,
		x0-5, y1+4, f.b.YMax))
}

func (f frame) overlay(sb *strings.Builder, ov Overlay) {
	colors := []string{"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd"}
	for i, traj := range ov.Trajectories {
		if traj.Len() < 2 {
			continue
		}
		sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="2" stroke-opacity="0.8" d="M`, colors[i%len(colors)]))
		for k, s := range traj.States {
			x, y := f.px(s[0], s[1])
			if k == 0 {
				sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
			} else {
				sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
			}
		}
		sb.WriteString("\"/>\n")
	}
	for _, p := range ov.Points {
		x, y := f.px(p.X, p.Y)
		sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="4" fill="#d62728"><title>%s (%.4g, %.4g)</title></circle>
`, x, y, p.Kind, p.X, p.Y))
	}
}

// DirectionFieldSVG draws one arrow per grid node of df, shaded by the
// raw speed, with the overlay on top. Arrows keep their unit direction on
// screen regardless of axis scaling.
func DirectionFieldSVG(w io.Writer, df *field.DirectionField, ov Overlay) error {
	if df == nil || df.Grid == nil {
		return fmt.Errorf("%w: no direction field", dynamo.ErrGrid)
	}
	f := frame{b: df.Grid.Bounds()}

	var sb strings.Builder
	f.header(&sb)

	g := df.Grid
	cellW := float64(svgWidth-2*svgPadding) / float64(max(g.Cols()-1, 1))
	cellH := float64(svgHeight-2*svgPadding) / float64(max(g.Rows()-1, 1))
	length := 0.8 * math.Min(cellW, cellH)
	maxMag := df.MaxMagnitude()

	sb.WriteString("<g stroke-width=\"1.2\">\n")
	for r := 0; r < g.Rows(); r++ {
		for c := 0; c < g.Cols(); c++ {
			cx, cy := f.px(g.At(r, c))
			// Darker arrows are faster.
			shade := 0
			if maxMag > 0 {
				shade = int(200 * (1 - df.Magnitude[r][c]/maxMag))
			}
			color := fmt.Sprintf("#%02x%02x%02x", shade, shade, shade)

			u, v := df.U[r][c], -df.V[r][c]
			if u == 0 && v == 0 {
				sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="1.5" fill="%s"/>
`, cx, cy, color))
				continue
			}
			x0, y0 := cx-u*length/2, cy-v*length/2
			x1, y1 := cx+u*length/2, cy+v*length/2
			// Arrow head: two barbs at +-150 degrees from the shaft.
			head := length / 3
			ang := math.Atan2(v, u)
			hx1, hy1 := x1+head*math.Cos(ang+5*math.Pi/6), y1+head*math.Sin(ang+5*math.Pi/6)
			hx2, hy2 := x1+head*math.Cos(ang-5*math.Pi/6), y1+head*math.Sin(ang-5*math.Pi/6)
			sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" d="M%.1f,%.1f L%.1f,%.1f M%.1f,%.1f L%.1f,%.1f L%.1f,%.1f"/>
`, color, x0, y0, x1, y1, hx1, hy1, x1, y1, hx2, hy2))
		}
	}
	sb.WriteString("</g>\n")

	f.overlay(&sb, ov)
	sb.WriteString("</svg>\n")
	_, err := io.WriteString(w, sb.String())
	return err
}

// ContourSVG draws the isolines of sf at every level, coloured from light
// to dark blue in level order, with the overlay on top.
func ContourSVG(w io.Writer, sf *field.ScalarField, levels []float64, ov Overlay) error {
	if sf == nil || sf.Grid == nil {
		return fmt.Errorf("%w: no scalar field", dynamo.ErrGrid)
	}
	f := frame{b: sf.Grid.Bounds()}

	var sb strings.Builder
	f.header(&sb)

	sb.WriteString("<g stroke-width=\"1\" stroke-opacity=\"0.6\">\n")
	for i, level := range levels {
		t := 0.5
		if len(levels) > 1 {
			t = float64(i) / float64(len(levels)-1)
		}
		color := fmt.Sprintf("#%02x%02x%02x", int(200*(1-t)), int(220-150*t), 255)
		for _, seg := range field.Isolines(sf, level) {
			x1, y1 := f.px(seg.X1, seg.Y1)
			x2, y2 := f.px(seg.X2, seg.Y2)
			sb.WriteString(fmt.Sprintf(`<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s"/>
`, x1, y1, x2, y2, color))
		}
	}
	sb.WriteString("</g>\n")

	f.overlay(&sb, ov)
	sb.WriteString("</svg>\n")
	_, err := io.WriteString(w, sb.String())
	return err
}
