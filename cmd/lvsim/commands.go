package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/lvsim/internal/analysis"
	"github.com/san-kum/lvsim/internal/config"
	"github.com/san-kum/lvsim/internal/experiment"
	"github.com/san-kum/lvsim/internal/export"
	"github.com/san-kum/lvsim/internal/optim"
	"github.com/san-kum/lvsim/internal/viz"
)

func runCmd(f *flags) *cobra.Command {
	var quiet bool
	cmd := &cobra.Command{
		Use:   "run",
		Short: "simulate and print a summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			start := time.Now()
			report, err := runExperiment(cmd, f)
			if err != nil {
				return err
			}
			elapsed := time.Since(start)

			rows := []viz.Row{
				viz.Rowf("model", "%s", report.Model),
				viz.Rowf("integrator", "%s", report.Integrator),
				viz.Rowf("samples", "%d", report.Main.Trajectory.Len()),
				viz.Rowf("steps", "%d (%d rejected)", report.Main.Stats.Steps, report.Main.Stats.Rejected),
				viz.Rowf("evaluations", "%d", report.Main.Stats.Evaluations),
				viz.Rowf("elapsed", "%v", elapsed),
			}
			if report.Period > 0 {
				rows = append(rows, viz.Rowf("period", "%.4f", report.Period))
			}
			traj := report.Main.Trajectory
			if traj.Len() > 1 {
				if spectral, err := analysis.DominantPeriod(traj.Column(0), traj.Times[1]-traj.Times[0]); err == nil {
					rows = append(rows, viz.Rowf("spectral period", "%.4f", spectral))
				}
			}
			fmt.Println(viz.Panel("Run", rows))
			fmt.Println(viz.Panel("Parameters", viz.MapRows(report.Params)))
			fmt.Println(viz.Panel("Metrics", viz.MapRows(report.Main.Metrics)))

			if !quiet {
				plot, err := viz.PopulationPlot(report.Main.Trajectory, 70, 12)
				if err != nil {
					return err
				}
				fmt.Println(plot)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "skip the population plot")
	return cmd
}

func phaseCmd(f *flags) *cobra.Command {
	var width, height int
	var ascii bool
	cmd := &cobra.Command{
		Use:   "phase",
		Short: "draw the prey/predator phase portrait in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := runExperiment(cmd, f)
			if err != nil {
				return err
			}

			if ascii {
				portrait, err := analysis.NewPhasePortrait(report.Main.Trajectory, 0, 1)
				if err != nil {
					return err
				}
				for _, p := range report.Critical {
					portrait.Marks = append(portrait.Marks, analysis.Point{X: p.X, Y: p.Y})
				}
				fmt.Print(analysis.PhasePortraitToASCII(portrait, width, height))
				return nil
			}

			marks := make([][2]float64, 0, len(report.Critical))
			for _, p := range report.Critical {
				marks = append(marks, [2]float64{p.X, p.Y})
			}
			fmt.Print(viz.PhaseCanvas(report.Bounds, width, height, report.Trajectories(), marks))
			fmt.Printf("x: prey [%.1f, %.1f]  y: predator [%.1f, %.1f]\n",
				report.Bounds.XMin, report.Bounds.XMax, report.Bounds.YMin, report.Bounds.YMax)
			return nil
		},
	}
	cmd.Flags().IntVar(&width, "width", 70, "plot width in characters")
	cmd.Flags().IntVar(&height, "height", 24, "plot height in characters")
	cmd.Flags().BoolVar(&ascii, "ascii", false, "plain ASCII instead of braille")
	return cmd
}

func fieldCmd(f *flags) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "field",
		Short: "write the direction field with the trajectory as SVG",
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := runExperiment(cmd, f)
			if err != nil {
				return err
			}
			ov := export.Overlay{Trajectories: report.Trajectories(), Points: report.Critical}
			return writeTo(out, func(w io.Writer) error {
				return export.DirectionFieldSVG(w, report.Direction, ov)
			})
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "field.svg", "output path, - for stdout")
	return cmd
}

func contourCmd(f *flags) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "contour",
		Short: "write level curves of the conserved quantity as SVG",
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := runExperiment(cmd, f)
			if err != nil {
				return err
			}
			if report.Conserved == nil {
				return fmt.Errorf("model %s has no conserved quantity", report.Model)
			}
			ov := export.Overlay{Trajectories: report.Trajectories(), Points: report.Critical}
			return writeTo(out, func(w io.Writer) error {
				return export.ContourSVG(w, report.Conserved, report.Levels, ov)
			})
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "contour.svg", "output path, - for stdout")
	return cmd
}

func criticalCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "critical",
		Short: "list the fixed points of the model",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, f)
			if err != nil {
				return err
			}
			model, err := experiment.NewRegistry().GetModel(cfg.Model, cfg.Params)
			if err != nil {
				return err
			}
			points, err := model.CriticalPoints()
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "PREY\tPREDATOR\tKIND")
			for _, p := range points {
				fmt.Fprintf(w, "%.6g\t%.6g\t%s\n", p.X, p.Y, p.Kind)
			}
			return w.Flush()
		},
	}
}

func compareCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "compare [integrators...]",
		Short: "run the same experiment with several integrators",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				args = []string{"euler", "rk4", "rk45"}
			}
			cfg, err := resolveConfig(cmd, f)
			if err != nil {
				return err
			}

			fmt.Printf("comparing integrators for %s (horizon=%.1f, samples=%d)\n\n", cfg.Model, cfg.Horizon, cfg.TimeSteps)
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "INTEGRATOR\tFINAL_PREY\tFINAL_PREDATOR\tDRIFT\tEVALS\tTIME_MS")
			for _, name := range args {
				if err := cmd.Flags().Set("integrator", name); err != nil {
					return err
				}

				start := time.Now()
				report, err := runExperiment(cmd, f)
				elapsed := time.Since(start)
				if err != nil {
					fmt.Fprintf(w, "%s\terror: %v\n", name, err)
					continue
				}
				final := report.Main.Trajectory.Final()
				fmt.Fprintf(w, "%s\t%.6f\t%.6f\t%.2e\t%d\t%.2f\n",
					name, final[0], final[1], report.Main.Metrics["invariant_drift"],
					report.Main.Stats.Evaluations, float64(elapsed.Microseconds())/1000)
			}
			return w.Flush()
		},
	}
}

func orbitsCmd(f *flags) *cobra.Command {
	var starts []float64
	cmd := &cobra.Command{
		Use:   "orbits",
		Short: "simulate several initial states and report each cycle",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(starts)%2 != 0 {
				return fmt.Errorf("--start takes prey,predator pairs, got %d values", len(starts))
			}
			cfg, err := resolveConfig(cmd, f)
			if err != nil {
				return err
			}
			if len(starts) > 0 {
				cfg.Orbits = nil
				for i := 0; i < len(starts); i += 2 {
					cfg.Orbits = append(cfg.Orbits, config.InitialConfig{X0: starts[i], Y0: starts[i+1]})
				}
			} else if len(cfg.Orbits) == 0 {
				cfg.Orbits = config.GetPreset("orbits").Orbits
			}
			report, err := runConfig(cmd, f, cfg)
			if err != nil {
				return err
			}

			p, hasInterior := report.Interior()
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "PREY0\tPREDATOR0\tPREY_MIN\tPREY_MAX\tPERIOD")
			for _, traj := range report.Trajectories() {
				first := traj.States[0]
				period := 0.0
				if hasInterior {
					if v, err := analysis.CrossingPeriod(traj, 0, p.X); err == nil {
						period = v
					}
				}
				fmt.Fprintf(w, "%.4g\t%.4g\t%.4f\t%.4f\t%.4f\n", first[0], first[1], traj.Min(0), traj.Max(0), period)
			}
			return w.Flush()
		},
	}
	cmd.Flags().Float64SliceVar(&starts, "start", nil, "extra initial states as prey,predator pairs")
	return cmd
}

func exportCmd(f *flags) *cobra.Command {
	var out, format string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "write the trajectory as json or csv",
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := runExperiment(cmd, f)
			if err != nil {
				return err
			}
			return writeTo(out, func(w io.Writer) error {
				switch strings.ToLower(format) {
				case "json":
					return export.WriteJSON(w, export.NewDocument(report))
				case "csv":
					return export.WriteCSV(w, report.Main.Trajectory, export.Columns)
				default:
					return fmt.Errorf("unsupported export format %q", format)
				}
			})
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "-", "output path, - for stdout")
	cmd.Flags().StringVar(&format, "format", "json", "json or csv")
	return cmd
}

func chartCmd(f *flags) *cobra.Command {
	var kind, out, format string
	cmd := &cobra.Command{
		Use:   "chart",
		Short: "render a time series or phase chart as png or svg",
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := runExperiment(cmd, f)
			if err != nil {
				return err
			}
			format := export.Format(strings.ToLower(format))
			return writeTo(out, func(w io.Writer) error {
				switch kind {
				case "time":
					return export.TimeSeriesChart(w, report.Main.Trajectory, format)
				case "phase":
					return export.PhaseChart(w, report.Trajectories(), report.Critical, format)
				default:
					return fmt.Errorf("unknown chart kind %q (time, phase)", kind)
				}
			})
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "time", "time or phase")
	cmd.Flags().StringVarP(&out, "out", "o", "chart.png", "output path, - for stdout")
	cmd.Flags().StringVar(&format, "format", "png", "png or svg")
	return cmd
}

func watchCmd(f *flags) *cobra.Command {
	var opts viz.WatchOptions
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "replay the trajectory in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := runExperiment(cmd, f)
			if err != nil {
				return err
			}
			return viz.RunWatch(report, opts)
		},
	}
	cmd.Flags().IntVar(&opts.Stride, "stride", 2, "samples advanced per frame")
	cmd.Flags().BoolVar(&opts.ShowField, "field", false, "overlay the direction field")
	return cmd
}

func presetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range config.ListPresets() {
				cfg := config.GetPreset(name)
				fmt.Printf("  %-12s %s a=%g b=%g c=%g d=%g x0=%g y0=%g\n", name, cfg.Model,
					cfg.Params.A, cfg.Params.B, cfg.Params.C, cfg.Params.D, cfg.Initial.X0, cfg.Initial.Y0)
			}
		},
	}
}

func configCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "config [path]",
		Short: "print or save the effective configuration",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, f)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if len(args) == 1 {
				return config.Save(args[0], cfg)
			}
			enc := yaml.NewEncoder(os.Stdout)
			enc.SetIndent(2)
			if err := enc.Encode(cfg); err != nil {
				return err
			}
			return enc.Close()
		},
	}
}

func sweepCmd(f *flags) *cobra.Command {
	var axes []string
	var metric string
	var maximize bool
	var workers int
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "evaluate a metric over a grid of parameter values",
		Example: "  lvsim sweep --axis c=0.2:0.4:5 --metric period\n" +
			"  lvsim sweep --axis a=0.05,0.1 --axis y0=5:15:3 --metric prey_max --max",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(axes) == 0 {
				return fmt.Errorf("at least one --axis is required (parameters: %v)", optim.Parameters())
			}
			cfg, err := resolveConfig(cmd, f)
			if err != nil {
				return err
			}
			logger, err := newLogger(f)
			if err != nil {
				return err
			}

			parsed := make([]optim.Axis, 0, len(axes))
			for _, s := range axes {
				ax, err := optim.ParseAxis(s)
				if err != nil {
					return err
				}
				parsed = append(parsed, ax)
			}
			g := optim.NewGridSearch(parsed...).SetWorkers(workers)
			if maximize {
				g.Maximize()
			}

			points, best, err := g.Search(cmdContext(cmd), cfg, optim.MetricObjective(metric), experiment.WithLogger(logger))
			if err != nil && points == nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			header := make([]string, 0, len(parsed)+1)
			for _, ax := range parsed {
				header = append(header, strings.ToUpper(ax.Name))
			}
			fmt.Fprintln(w, strings.Join(append(header, strings.ToUpper(metric)), "\t"))
			for _, p := range points {
				row := make([]string, 0, len(parsed)+1)
				for _, ax := range parsed {
					row = append(row, fmt.Sprintf("%.6g", p.Params[ax.Name]))
				}
				if p.Err != nil {
					row = append(row, "error: "+p.Err.Error())
				} else {
					row = append(row, fmt.Sprintf("%.6g", p.Value))
				}
				fmt.Fprintln(w, strings.Join(row, "\t"))
			}
			if ferr := w.Flush(); ferr != nil {
				return ferr
			}
			if err != nil {
				return err
			}
			fmt.Printf("\nbest %s = %.6g at %v\n", metric, best.Value, best.Params)
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&axes, "axis", nil, "swept parameter as name=lo:hi:n or name=v1,v2 (repeatable)")
	cmd.Flags().StringVar(&metric, "metric", "period", "period or a metric name such as invariant_drift")
	cmd.Flags().BoolVar(&maximize, "max", false, "pick the largest value instead of the smallest")
	cmd.Flags().IntVar(&workers, "workers", 0, "parallel experiments, 0 for one per CPU")
	return cmd
}
