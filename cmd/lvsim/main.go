package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"

	"github.com/san-kum/lvsim/internal/config"
	"github.com/san-kum/lvsim/internal/experiment"
	"github.com/san-kum/lvsim/internal/logging"
)

// flags holds every value bound on the command line. Values from a
// preset or config file are only replaced by flags the user set.
type flags struct {
	a, b, c, d, k float64
	x0, y0        float64
	horizon       float64
	steps         int
	integrator    string
	model         string
	configFile    string
	preset        string
	verbose       int
	development   bool
}

func main() {
	if err := newRootCmd(&flags{}).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd(f *flags) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "lvsim",
		Short:         "Lotka-Volterra predator-prey simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	registry := experiment.NewRegistry()
	pf := rootCmd.PersistentFlags()
	pf.Float64VarP(&f.a, "prey-growth", "a", 0.1, "prey growth rate a")
	pf.Float64VarP(&f.b, "predation", "b", 0.02, "predation rate b")
	pf.Float64VarP(&f.c, "predator-death", "c", 0.3, "predator death rate c")
	pf.Float64VarP(&f.d, "conversion", "d", 0.01, "predator conversion rate d")
	pf.Float64Var(&f.k, "k", config.DefaultK, "prey carrying capacity (logistic model)")
	pf.Float64Var(&f.x0, "x0", config.DefaultX0, "initial prey population")
	pf.Float64Var(&f.y0, "y0", config.DefaultY0, "initial predator population")
	pf.Float64Var(&f.horizon, "horizon", config.DefaultHorizon, "simulation end time")
	pf.IntVar(&f.steps, "steps", config.DefaultTimeSteps, "number of output samples")
	pf.StringVar(&f.integrator, "integrator", config.DefaultIntegrator, fmt.Sprintf("integrator %v", registry.ListIntegrators()))
	pf.StringVar(&f.model, "model", config.DefaultModel, fmt.Sprintf("model %v", registry.ListModels()))
	pf.StringVar(&f.configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&f.preset, "preset", "", "start from a named preset")
	pf.CountVarP(&f.verbose, "verbose", "v", "increase log verbosity")
	pf.BoolVar(&f.development, "dev", false, "human-readable development logs")

	rootCmd.AddCommand(
		runCmd(f),
		phaseCmd(f),
		fieldCmd(f),
		contourCmd(f),
		criticalCmd(f),
		compareCmd(f),
		orbitsCmd(f),
		exportCmd(f),
		chartCmd(f),
		watchCmd(f),
		sweepCmd(f),
		presetsCmd(),
		configCmd(f),
	)
	return rootCmd
}

// resolveConfig layers defaults, preset, config file and changed flags,
// in that order.
func resolveConfig(cmd *cobra.Command, f *flags) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if f.preset != "" {
		cfg = config.GetPreset(f.preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", f.preset, config.ListPresets())
		}
	}
	if f.configFile != "" {
		loaded, err := config.Load(f.configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	set := cmd.Flags().Changed
	if set("prey-growth") {
		cfg.Params.A = f.a
	}
	if set("predation") {
		cfg.Params.B = f.b
	}
	if set("predator-death") {
		cfg.Params.C = f.c
	}
	if set("conversion") {
		cfg.Params.D = f.d
	}
	if set("k") {
		cfg.Params.K = f.k
	}
	if set("x0") {
		cfg.Initial.X0 = f.x0
	}
	if set("y0") {
		cfg.Initial.Y0 = f.y0
	}
	if set("horizon") {
		cfg.Horizon = f.horizon
	}
	if set("steps") {
		cfg.TimeSteps = f.steps
	}
	if set("integrator") {
		cfg.Integrator = f.integrator
	}
	if set("model") {
		cfg.Model = f.model
		if cfg.Model == "logistic" && cfg.Params.K == 0 {
			cfg.Params.K = f.k
		}
	}
	return cfg, nil
}

func newLogger(f *flags) (logr.Logger, error) {
	return logging.New(logging.Options{
		Development: f.development,
		Verbosity:   logging.DEFAULT + f.verbose,
	})
}

// runExperiment resolves the configuration and runs it with a logger
// attached to the command context.
func runExperiment(cmd *cobra.Command, f *flags) (*experiment.Report, error) {
	cfg, err := resolveConfig(cmd, f)
	if err != nil {
		return nil, err
	}
	return runConfig(cmd, f, cfg)
}

func runConfig(cmd *cobra.Command, f *flags, cfg *config.Config) (*experiment.Report, error) {
	logger, err := newLogger(f)
	if err != nil {
		return nil, err
	}
	ctx := logging.IntoContext(cmdContext(cmd), logger)

	logger.V(logging.VERBOSE).Info("Running experiment",
		"a", cfg.Params.A, "b", cfg.Params.B, "c", cfg.Params.C, "d", cfg.Params.D,
		"x0", cfg.Initial.X0, "y0", cfg.Initial.Y0, "horizon", cfg.Horizon, "steps", cfg.TimeSteps)
	return experiment.New(cfg, experiment.WithLogger(logger)).Run(ctx)
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// openOutput returns stdout for "" and "-", otherwise a new file.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}

// writeTo opens path, runs write and closes the output, keeping the first
// error.
func writeTo(path string, write func(io.Writer) error) (err error) {
	w, err := openOutput(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := w.Close(); err == nil {
			err = cerr
		}
	}()
	return write(w)
}
