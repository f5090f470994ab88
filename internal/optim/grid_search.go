package optim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/lvsim/internal/analysis"
	"github.com/san-kum/lvsim/internal/config"
	"github.com/san-kum/lvsim/internal/dynamo"
	"github.com/san-kum/lvsim/internal/experiment"
)

// ErrNoResult is returned when every point of a search failed.
var ErrNoResult = errors.New("optim: no grid point produced a value")

// Axis is one swept parameter and the values it takes.
type Axis struct {
	Name   string
	Values []float64
}

// ParseAxis reads "name=lo:hi:n" (n evenly spaced values) or
// "name=v1,v2,...".
func ParseAxis(s string) (Axis, error) {
	name, rest, ok := strings.Cut(s, "=")
	if !ok || name == "" || rest == "" {
		return Axis{}, fmt.Errorf("%w: axis %q, want name=lo:hi:n or name=v1,v2", dynamo.ErrParameter, s)
	}
	ax := Axis{Name: strings.TrimSpace(name)}

	if parts := strings.Split(rest, ":"); len(parts) == 3 {
		lo, err1 := strconv.ParseFloat(parts[0], 64)
		hi, err2 := strconv.ParseFloat(parts[1], 64)
		n, err3 := strconv.Atoi(parts[2])
		if err := errors.Join(err1, err2, err3); err != nil {
			return Axis{}, fmt.Errorf("%w: axis %q: %v", dynamo.ErrParameter, s, err)
		}
		grid, err := dynamo.Linspace(lo, hi, n)
		if err != nil {
			return Axis{}, fmt.Errorf("%w: axis %q: %v", dynamo.ErrParameter, s, err)
		}
		ax.Values = grid
		return ax, nil
	}

	for _, p := range strings.Split(rest, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return Axis{}, fmt.Errorf("%w: axis %q: %v", dynamo.ErrParameter, s, err)
		}
		ax.Values = append(ax.Values, v)
	}
	return ax, nil
}

// Objective scores a finished experiment.
type Objective func(r *experiment.Report) (float64, error)

// MetricObjective reads "period" from the report or any named metric of
// the primary run. A run too short to complete a cycle has no period and
// fails with analysis.ErrNoOscillation.
func MetricObjective(name string) Objective {
	return func(r *experiment.Report) (float64, error) {
		if name == "period" {
			if !(r.Period > 0) {
				return 0, analysis.ErrNoOscillation
			}
			return r.Period, nil
		}
		v, ok := r.Main.Metrics[name]
		if !ok {
			return 0, fmt.Errorf("%w: unknown metric %q", dynamo.ErrParameter, name)
		}
		return v, nil
	}
}

// Point is one evaluated combination of parameter values.
type Point struct {
	Params map[string]float64
	Value  float64
	Err    error
}

// GridSearch evaluates an objective over the cartesian product of its
// axes, starting every run from a base configuration.
type GridSearch struct {
	axes     []Axis
	workers  int
	maximize bool
}

func NewGridSearch(axes ...Axis) *GridSearch {
	return &GridSearch{axes: axes, workers: runtime.NumCPU()}
}

// SetWorkers bounds the number of experiments run at once.
func (g *GridSearch) SetWorkers(n int) *GridSearch {
	if n > 0 {
		g.workers = n
	}
	return g
}

// Maximize makes Search pick the largest value instead of the smallest.
func (g *GridSearch) Maximize() *GridSearch {
	g.maximize = true
	return g
}

// Combinations lists every parameter assignment in axis order, the last
// axis varying fastest.
func (g *GridSearch) Combinations() []map[string]float64 {
	var out []map[string]float64
	g.combine(0, map[string]float64{}, &out)
	return out
}

func (g *GridSearch) combine(depth int, current map[string]float64, out *[]map[string]float64) {
	if depth == len(g.axes) {
		*out = append(*out, current)
		return
	}
	ax := g.axes[depth]
	for _, val := range ax.Values {
		next := make(map[string]float64, len(current)+1)
		for k, v := range current {
			next[k] = v
		}
		next[ax.Name] = val
		g.combine(depth+1, next, out)
	}
}

// Search runs one experiment per combination and returns every point in
// Combinations order together with the best one. Points whose run fails
// keep the error and are skipped when choosing the best.
func (g *GridSearch) Search(ctx context.Context, base *config.Config, objective Objective, opts ...experiment.Option) ([]Point, Point, error) {
	for _, ax := range g.axes {
		if err := checkName(ax.Name); err != nil {
			return nil, Point{}, err
		}
	}

	combos := g.Combinations()
	points := make([]Point, len(combos))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.workers)
	for i, params := range combos {
		i, params := i, params
		eg.Go(func() error {
			cfg := base.Clone()
			for name, v := range params {
				apply(cfg, name, v)
			}
			points[i] = Point{Params: params}
			report, err := experiment.New(cfg, opts...).Run(ctx)
			if err == nil {
				points[i].Value, err = objective(report)
			}
			points[i].Err = err
			return ctx.Err()
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, Point{}, err
	}

	best, found := Point{}, false
	for _, p := range points {
		if p.Err != nil || math.IsNaN(p.Value) {
			continue
		}
		if !found || g.better(p.Value, best.Value) {
			best, found = p, true
		}
	}
	if !found {
		return points, Point{}, ErrNoResult
	}
	return points, best, nil
}

func (g *GridSearch) better(v, than float64) bool {
	if g.maximize {
		return v > than
	}
	return v < than
}

var setters = map[string]func(*config.Config, float64){
	"a":       func(c *config.Config, v float64) { c.Params.A = v },
	"b":       func(c *config.Config, v float64) { c.Params.B = v },
	"c":       func(c *config.Config, v float64) { c.Params.C = v },
	"d":       func(c *config.Config, v float64) { c.Params.D = v },
	"k":       func(c *config.Config, v float64) { c.Params.K = v },
	"x0":      func(c *config.Config, v float64) { c.Initial.X0 = v },
	"y0":      func(c *config.Config, v float64) { c.Initial.Y0 = v },
	"horizon": func(c *config.Config, v float64) { c.Horizon = v },
}

// Parameters lists the names an Axis may sweep.
func Parameters() []string {
	names := make([]string, 0, len(setters))
	for k := range setters {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func checkName(name string) error {
	if _, ok := setters[name]; !ok {
		return fmt.Errorf("%w: cannot sweep %q (available: %v)", dynamo.ErrParameter, name, Parameters())
	}
	return nil
}

func apply(cfg *config.Config, name string, v float64) {
	setters[name](cfg, v)
}
