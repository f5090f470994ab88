package experiment_test

import (
	"context"
	"errors"
	"math"

	"github.com/google/go-cmp/cmp"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/san-kum/lvsim/internal/config"
	"github.com/san-kum/lvsim/internal/dynamo"
	"github.com/san-kum/lvsim/internal/experiment"
	"github.com/san-kum/lvsim/internal/field"
	"github.com/san-kum/lvsim/internal/logging"
	"github.com/san-kum/lvsim/internal/physics"
)

var _ = ginkgo.Describe("Experiment", func() {
	var ctx context.Context

	ginkgo.BeforeEach(func() {
		ctx = logging.IntoContext(context.Background(), logging.NewTestLogger())
	})

	ginkgo.When("running the classic configuration", func() {
		var report *experiment.Report

		ginkgo.BeforeEach(func() {
			var err error
			report, err = experiment.New(config.DefaultConfig()).Run(ctx)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
		})

		ginkgo.It("samples the trajectory on the requested grid", func() {
			traj := report.Main.Trajectory
			gomega.Expect(traj.Len()).To(gomega.Equal(800))
			gomega.Expect(traj.Times[0]).To(gomega.Equal(0.0))
			gomega.Expect(traj.Times[799]).To(gomega.Equal(200.0))
			gomega.Expect(traj.States[0]).To(gomega.Equal(dynamo.State{40, 9}))
		})

		ginkgo.It("stays bounded by ten times the initial maximum", func() {
			for _, s := range report.Main.Trajectory.States {
				gomega.Expect(s[0]).To(gomega.BeNumerically(">=", 0))
				gomega.Expect(s[1]).To(gomega.BeNumerically(">=", 0))
				gomega.Expect(s[0]).To(gomega.BeNumerically("<=", 400))
				gomega.Expect(s[1]).To(gomega.BeNumerically("<=", 400))
			}
			gomega.Expect(report.Main.Metrics).To(gomega.HaveKeyWithValue("boundedness", 1.0))
		})

		ginkgo.It("keeps the conserved quantity within solver tolerance", func() {
			gomega.Expect(report.Main.Metrics["invariant_drift"]).To(gomega.BeNumerically("<", 1e-6))
		})

		ginkgo.It("locates both fixed points", func() {
			gomega.Expect(report.Critical).To(gomega.HaveLen(2))
			interior, ok := report.Interior()
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(interior.X).To(gomega.BeNumerically("~", 30, 1e-12))
			gomega.Expect(interior.Y).To(gomega.BeNumerically("~", 5, 1e-12))
		})

		ginkgo.It("derives field bounds from the trajectory maxima", func() {
			traj := report.Main.Trajectory
			gomega.Expect(report.Bounds.XMin).To(gomega.Equal(0.0))
			gomega.Expect(report.Bounds.YMin).To(gomega.Equal(0.0))
			gomega.Expect(report.Bounds.XMax).To(gomega.BeNumerically("~", traj.Max(0)*1.05, 1e-12))
			gomega.Expect(report.Bounds.YMax).To(gomega.BeNumerically("~", traj.Max(1)*1.05, 1e-12))
		})

		ginkgo.It("normalizes every non-zero direction vector", func() {
			df := report.Direction
			gomega.Expect(df.Grid.Cols()).To(gomega.Equal(config.DefaultFieldRes))
			zeros := 0
			for r := range df.U {
				for c := range df.U[r] {
					n := math.Hypot(df.U[r][c], df.V[r][c])
					if df.Magnitude[r][c] == 0 {
						gomega.Expect(n).To(gomega.BeZero())
						zeros++
						continue
					}
					gomega.Expect(n).To(gomega.BeNumerically("~", 1, 1e-12))
				}
			}
			// The origin is a grid node.
			gomega.Expect(zeros).To(gomega.BeNumerically(">=", 1))
		})

		ginkgo.It("builds a contour field off the axes", func() {
			gomega.Expect(report.Conserved).NotTo(gomega.BeNil())
			gomega.Expect(report.Conserved.Grid.Xs[0]).To(gomega.BeNumerically(">", 0))
			gomega.Expect(report.Conserved.Grid.Ys[0]).To(gomega.BeNumerically(">", 0))
			gomega.Expect(report.Levels).To(gomega.HaveLen(config.DefaultLevels))
		})

		ginkgo.It("measures an oscillation period", func() {
			gomega.Expect(report.Period).To(gomega.BeNumerically("~", 37.7, 0.5))
		})
	})

	ginkgo.It("moves the interior fixed point to (30, 7.5) in the prey-boost preset", func() {
		report, err := experiment.New(config.GetPreset("prey-boost")).Run(ctx)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		interior, ok := report.Interior()
		gomega.Expect(ok).To(gomega.BeTrue())
		gomega.Expect(interior.X).To(gomega.BeNumerically("~", 30, 1e-12))
		gomega.Expect(interior.Y).To(gomega.BeNumerically("~", 7.5, 1e-12))
		gomega.Expect(report.Main.Trajectory.States[0]).To(gomega.Equal(dynamo.State{40, 19}))
	})

	ginkgo.It("is deterministic", func() {
		first, err := experiment.New(config.DefaultConfig()).Run(ctx)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		second, err := experiment.New(config.DefaultConfig()).Run(ctx)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		gomega.Expect(cmp.Diff(first.Main.Trajectory, second.Main.Trajectory)).To(gomega.BeEmpty())
	})

	ginkgo.It("simulates extra orbits in order", func() {
		cfg := config.GetPreset("orbits")
		report, err := experiment.New(cfg).Run(ctx)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		gomega.Expect(report.Orbits).To(gomega.HaveLen(len(cfg.Orbits)))
		for i, o := range report.Orbits {
			gomega.Expect(o.Trajectory.States[0]).To(gomega.Equal(dynamo.State{cfg.Orbits[i].X0, cfg.Orbits[i].Y0}))
		}
		gomega.Expect(report.Trajectories()).To(gomega.HaveLen(len(cfg.Orbits) + 1))
		gomega.Expect(report.Levels).To(gomega.Equal(cfg.Contour.Values))
	})

	ginkgo.It("runs the logistic model without a contour field", func() {
		report, err := experiment.New(config.GetPreset("logistic")).Run(ctx)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		gomega.Expect(report.Conserved).To(gomega.BeNil())
		gomega.Expect(report.Levels).To(gomega.BeEmpty())
		gomega.Expect(report.Main.Metrics).NotTo(gomega.HaveKey("invariant_drift"))
		gomega.Expect(report.Critical).To(gomega.HaveLen(3))
	})

	ginkgo.DescribeTable("keeps a species that starts extinct on its axis",
		func(x0, y0, wantXMax, wantYMax float64) {
			cfg := config.DefaultConfig()
			cfg.Initial = config.InitialConfig{X0: x0, Y0: y0}
			report, err := experiment.New(cfg).Run(ctx)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			gomega.Expect(report.Main.Trajectory.Len()).To(gomega.Equal(cfg.TimeSteps))
			gomega.Expect(report.Period).To(gomega.BeZero())
			gomega.Expect(report.Direction).NotTo(gomega.BeNil())
			gomega.Expect(report.Conserved).NotTo(gomega.BeNil())
			if wantXMax > 0 {
				gomega.Expect(report.Bounds.XMax).To(gomega.BeNumerically("~", wantXMax, 1e-9))
			} else {
				gomega.Expect(report.Bounds.XMax).To(gomega.BeNumerically(">", x0*1.05))
			}
			gomega.Expect(report.Bounds.YMax).To(gomega.BeNumerically("~", wantYMax, 1e-9))
			for _, s := range report.Main.Trajectory.States {
				if x0 == 0 {
					gomega.Expect(s[0]).To(gomega.BeZero())
				} else {
					gomega.Expect(s[1]).To(gomega.BeZero())
				}
			}
		},
		// With no prey the floor is c/d = 30 and the predator peaks at y0.
		ginkgo.Entry("no prey", 0.0, 9.0, 31.5, 9.45),
		// With no predators the floor is a/b = 5 and the prey grows.
		ginkgo.Entry("no predators", 40.0, 0.0, 0.0, 5.25),
	)

	ginkgo.DescribeTable("runs every integrator",
		func(name string, tol float64) {
			cfg := config.DefaultConfig()
			cfg.Integrator = name
			report, err := experiment.New(cfg).Run(ctx)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(report.Main.Metrics["invariant_drift"]).To(gomega.BeNumerically("<", tol))
		},
		ginkgo.Entry("rk45", "rk45", 1e-6),
		ginkgo.Entry("rk4", "rk4", 1e-6),
		ginkgo.Entry("euler", "euler", 0.05),
	)

	ginkgo.Describe("rejects bad input before integrating", func() {
		ginkgo.It("reports a parameter error for d = 0", func() {
			cfg := config.DefaultConfig()
			cfg.Params.D = 0
			_, err := experiment.New(cfg).Run(ctx)
			gomega.Expect(err).To(gomega.MatchError(dynamo.ErrParameter))
		})

		ginkgo.DescribeTable("reports a parameter error for a negative initial state",
			func(x0, y0 float64, name string) {
				cfg := config.DefaultConfig()
				cfg.Initial = config.InitialConfig{X0: x0, Y0: y0}
				_, err := experiment.New(cfg).Run(ctx)
				gomega.Expect(err).To(gomega.MatchError(dynamo.ErrParameter))
				gomega.Expect(err).NotTo(gomega.MatchError(dynamo.ErrNumericalFailure))
				gomega.Expect(err.Error()).To(gomega.ContainSubstring(name))
			},
			ginkgo.Entry("prey", -5.0, 9.0, "initial.x0"),
			ginkgo.Entry("predator", 40.0, -1.0, "initial.y0"),
		)

		ginkgo.It("reports a parameter error for a negative orbit", func() {
			cfg := config.GetPreset("orbits")
			cfg.Orbits = append(cfg.Orbits, config.InitialConfig{X0: -1, Y0: 5})
			_, err := experiment.New(cfg).Run(ctx)
			gomega.Expect(err).To(gomega.MatchError(dynamo.ErrParameter))
		})

		ginkgo.It("reports an unknown model", func() {
			cfg := config.DefaultConfig()
			cfg.Model = "sir"
			_, err := experiment.New(cfg).Run(ctx)
			gomega.Expect(err).To(gomega.MatchError(dynamo.ErrParameter))
		})

		ginkgo.It("reports an unknown integrator", func() {
			cfg := config.DefaultConfig()
			cfg.Integrator = "leapfrog"
			_, err := experiment.New(cfg).Run(ctx)
			gomega.Expect(err).To(gomega.MatchError(dynamo.ErrParameter))
		})
	})

	ginkgo.It("surfaces an exhausted step budget as a numerical failure", func() {
		cfg := config.DefaultConfig()
		cfg.Solver.MaxSteps = 10
		_, err := experiment.New(cfg).Run(ctx)
		gomega.Expect(err).To(gomega.MatchError(dynamo.ErrNumericalFailure))

		var simErr *dynamo.SimulationError
		gomega.Expect(errors.As(err, &simErr)).To(gomega.BeTrue())
		gomega.Expect(simErr.Wrapped).To(gomega.MatchError(dynamo.ErrStepBudget))
	})

	ginkgo.It("draws an isoline of the conserved quantity along the trajectory", func() {
		report, err := experiment.New(config.DefaultConfig()).Run(ctx)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		level, err := physics.Conserved(physics.DefaultParams(), 40, 9)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		segs := field.Isolines(report.Conserved, level)
		gomega.Expect(segs).NotTo(gomega.BeEmpty())

		g := report.Conserved.Grid
		cx, cy := g.Xs[1]-g.Xs[0], g.Ys[1]-g.Ys[0]
		states := report.Main.Trajectory.States
		for i := 0; i < len(states); i += 20 {
			best := math.Inf(1)
			for _, seg := range segs {
				d := math.Hypot((seg.X1-states[i][0])/cx, (seg.Y1-states[i][1])/cy)
				best = math.Min(best, d)
			}
			gomega.Expect(best).To(gomega.BeNumerically("<", 2), "sample %d at %v", i, states[i])
		}
	})
})
