package config

import (
	"fmt"
	"math"
	"os"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/lvsim/internal/dynamo"
	"github.com/san-kum/lvsim/internal/physics"
)

const (
	DefaultModel      = "lotka-volterra"
	DefaultIntegrator = "rk45"
	DefaultX0         = 40.0
	DefaultY0         = 9.0
	DefaultHorizon    = 200.0
	DefaultTimeSteps  = 800
	DefaultFieldRes   = 25
	DefaultContourRes = 100
	DefaultLevels     = 50
	DefaultK          = 100.0
)

type Config struct {
	Model      string        `yaml:"model"`
	Integrator string        `yaml:"integrator"`
	Params     ParamsConfig  `yaml:"params"`
	Initial    InitialConfig `yaml:"initial"`
	Horizon    float64       `yaml:"horizon"`
	TimeSteps  int           `yaml:"time_steps"`
	Solver     SolverConfig  `yaml:"solver"`
	Field      FieldConfig   `yaml:"field"`
	Contour    ContourConfig `yaml:"contour"`
	// Orbits are extra initial states simulated alongside Initial.
	Orbits []InitialConfig `yaml:"orbits,omitempty"`
}

type ParamsConfig struct {
	A float64 `yaml:"a"`
	B float64 `yaml:"b"`
	C float64 `yaml:"c"`
	D float64 `yaml:"d"`
	// K is the prey carrying capacity, used by the logistic model only.
	K float64 `yaml:"k,omitempty"`
}

type InitialConfig struct {
	X0 float64 `yaml:"x0"`
	Y0 float64 `yaml:"y0"`
}

type SolverConfig struct {
	RTol     float64 `yaml:"rtol"`
	ATol     float64 `yaml:"atol"`
	MaxSteps int     `yaml:"max_steps"`
	// Substeps per grid interval for the fixed-step integrators.
	Substeps int `yaml:"substeps"`
}

type FieldConfig struct {
	Resolution int     `yaml:"resolution"`
	Margin     float64 `yaml:"margin"`
}

type ContourConfig struct {
	Resolution int `yaml:"resolution"`
	Levels     int `yaml:"levels"`
	// Values, when set, replaces the evenly spaced Levels.
	Values []float64 `yaml:"values,omitempty"`
}

func DefaultConfig() *Config {
	p := physics.DefaultParams()
	return &Config{
		Model:      DefaultModel,
		Integrator: DefaultIntegrator,
		Params:     ParamsConfig{A: p.A, B: p.B, C: p.C, D: p.D},
		Initial:    InitialConfig{X0: DefaultX0, Y0: DefaultY0},
		Horizon:    DefaultHorizon,
		TimeSteps:  DefaultTimeSteps,
		Solver: SolverConfig{
			RTol:     1.49012e-8,
			ATol:     1.49012e-8,
			MaxSteps: 100000,
			Substeps: 10,
		},
		Field:   FieldConfig{Resolution: DefaultFieldRes, Margin: 0.05},
		Contour: ContourConfig{Resolution: DefaultContourRes, Levels: DefaultLevels},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	cp := *c
	cp.Orbits = append([]InitialConfig(nil), c.Orbits...)
	cp.Contour.Values = append([]float64(nil), c.Contour.Values...)
	return &cp
}

// Model returns the Lotka-Volterra coefficients. K is not part of them.
func (p ParamsConfig) Model() physics.Params {
	return physics.Params{A: p.A, B: p.B, C: p.C, D: p.D}
}

func (c *Config) InitialState() dynamo.State {
	return dynamo.State{c.Initial.X0, c.Initial.Y0}
}

func (c *Config) OrbitStates() []dynamo.State {
	states := make([]dynamo.State, len(c.Orbits))
	for i, o := range c.Orbits {
		states[i] = dynamo.State{o.X0, o.Y0}
	}
	return states
}

// Grid is the output time grid Linspace(0, Horizon, TimeSteps).
func (c *Config) Grid() (dynamo.TimeGrid, error) {
	return dynamo.Linspace(0, c.Horizon, c.TimeSteps)
}

// Validate reports every invalid field at once. Each reported error
// matches dynamo.ErrParameter. Model and integrator names are checked by
// the registry that resolves them.
func (c *Config) Validate() error {
	var errs error
	bad := func(format string, args ...interface{}) {
		errs = multierr.Append(errs, fmt.Errorf("%w: "+format, append([]interface{}{dynamo.ErrParameter}, args...)...))
	}
	positive := func(name string, v float64) {
		if !(v > 0) || math.IsInf(v, 0) {
			bad("%s must be positive, got %g", name, v)
		}
	}
	nonNegative := func(name string, v float64) {
		if !(v >= 0) || math.IsInf(v, 0) {
			bad("%s must be finite and non-negative, got %g", name, v)
		}
	}

	positive("params.a", c.Params.A)
	positive("params.b", c.Params.B)
	positive("params.c", c.Params.C)
	positive("params.d", c.Params.D)
	if c.Model == "logistic" {
		positive("params.k", c.Params.K)
	}

	nonNegative("initial.x0", c.Initial.X0)
	nonNegative("initial.y0", c.Initial.Y0)
	for i, o := range c.Orbits {
		nonNegative(fmt.Sprintf("orbits[%d].x0", i), o.X0)
		nonNegative(fmt.Sprintf("orbits[%d].y0", i), o.Y0)
	}

	positive("horizon", c.Horizon)
	if c.TimeSteps < 2 {
		bad("time_steps must be at least 2, got %d", c.TimeSteps)
	}

	positive("solver.rtol", c.Solver.RTol)
	if c.Solver.ATol < 0 || math.IsNaN(c.Solver.ATol) {
		bad("solver.atol must be non-negative, got %g", c.Solver.ATol)
	}
	if c.Solver.MaxSteps < 1 {
		bad("solver.max_steps must be positive, got %d", c.Solver.MaxSteps)
	}
	if c.Solver.Substeps < 1 {
		bad("solver.substeps must be positive, got %d", c.Solver.Substeps)
	}

	if c.Field.Resolution < 2 {
		bad("field.resolution must be at least 2, got %d", c.Field.Resolution)
	}
	if c.Field.Margin < 0 || math.IsNaN(c.Field.Margin) {
		bad("field.margin must be non-negative, got %g", c.Field.Margin)
	}
	if c.Contour.Resolution < 2 {
		bad("contour.resolution must be at least 2, got %d", c.Contour.Resolution)
	}
	if c.Contour.Levels < 0 {
		bad("contour.levels must be non-negative, got %d", c.Contour.Levels)
	}

	return errs
}
