package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/lvsim/internal/config"
	"github.com/san-kum/lvsim/internal/dynamo"
	"github.com/san-kum/lvsim/internal/integrators"
	"github.com/san-kum/lvsim/internal/metrics"
	"github.com/san-kum/lvsim/internal/physics"
)

// Model is a planar predator-prey system the pipeline can drive: it
// integrates, samples on a grid and knows its fixed points.
type Model interface {
	dynamo.System
	dynamo.Configurable
	Rates(x, y float64) (dx, dy float64)
	CriticalPoints() ([]physics.CriticalPoint, error)
}

type Registry struct {
	models      map[string]func(config.ParamsConfig) (Model, error)
	integrators map[string]func() dynamo.Stepper
}

func NewRegistry() *Registry {
	r := &Registry{
		models:      make(map[string]func(config.ParamsConfig) (Model, error)),
		integrators: make(map[string]func() dynamo.Stepper),
	}

	r.models["lotka-volterra"] = func(p config.ParamsConfig) (Model, error) {
		return physics.NewLotkaVolterra(p.Model())
	}
	r.models["logistic"] = func(p config.ParamsConfig) (Model, error) {
		return physics.NewLogistic(p.Model(), p.K)
	}

	r.integrators["euler"] = func() dynamo.Stepper { return integrators.NewEuler() }
	r.integrators["rk4"] = func() dynamo.Stepper { return integrators.NewRK4() }
	r.integrators["rk45"] = func() dynamo.Stepper { return integrators.NewRK45() }

	return r
}

func (r *Registry) GetModel(name string, p config.ParamsConfig) (Model, error) {
	fn, ok := r.models[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown model %q", dynamo.ErrParameter, name)
	}
	return fn(p)
}

func (r *Registry) GetIntegrator(name string) (dynamo.Stepper, error) {
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown integrator %q", dynamo.ErrParameter, name)
	}
	return fn(), nil
}

func (r *Registry) ListModels() []string {
	return sortedKeys(r.models)
}

func (r *Registry) ListIntegrators() []string {
	return sortedKeys(r.integrators)
}

// DefaultMetrics returns fresh metrics for one run of m.
func (r *Registry) DefaultMetrics(m Model) []dynamo.Metric {
	ms := []dynamo.Metric{metrics.NewBoundedness(0)}
	if inv, ok := m.(dynamo.Invariant); ok {
		ms = append(ms, metrics.NewInvariantDrift(inv))
	}
	return append(ms, metrics.Species()...)
}

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
