package physics_test

import (
	"math"
	"math/rand"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/san-kum/lvsim/internal/dynamo"
	"github.com/san-kum/lvsim/internal/physics"
)

// randomParams draws coefficients spanning a few orders of magnitude.
func randomParams(rng *rand.Rand) physics.Params {
	draw := func() float64 { return math.Pow(10, -3+3*rng.Float64()) }
	return physics.Params{A: draw(), B: draw(), C: draw(), D: draw()}
}

var _ = ginkgo.Describe("LotkaVolterra", func() {
	ginkgo.Describe("vector field", func() {
		ginkgo.It("vanishes at the origin for any valid parameters", func() {
			rng := rand.New(rand.NewSource(1))
			for i := 0; i < 200; i++ {
				dx, dy := physics.Rates(randomParams(rng), 0, 0)
				gomega.Expect(dx).To(gomega.BeZero())
				gomega.Expect(dy).To(gomega.BeZero())
			}
		})

		ginkgo.It("vanishes at (c/d, a/b) for any valid parameters", func() {
			rng := rand.New(rand.NewSource(2))
			for i := 0; i < 200; i++ {
				p := randomParams(rng)
				x, y := p.C/p.D, p.A/p.B
				dx, dy := physics.Rates(p, x, y)
				gomega.Expect(math.Abs(dx)).To(gomega.BeNumerically("<=", 1e-12*p.A*x), "params %+v", p)
				gomega.Expect(math.Abs(dy)).To(gomega.BeNumerically("<=", 1e-12*p.C*y), "params %+v", p)
			}
		})

		ginkgo.It("uses the same formula for integration and grid sampling", func() {
			lv, err := physics.NewLotkaVolterra(physics.DefaultParams())
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			for _, s := range []dynamo.State{{40, 9}, {1, 1}, {-3, 2}, {30, 5}} {
				d := lv.Derive(s, 123)
				dx, dy := lv.Rates(s[0], s[1])
				gomega.Expect(d).To(gomega.Equal(dynamo.State{dx, dy}))
			}
		})

		ginkgo.It("returns negative states as-is", func() {
			dx, dy := physics.Rates(physics.DefaultParams(), -1, -1)
			gomega.Expect(dx).To(gomega.BeNumerically("~", -0.12, 1e-15))
			gomega.Expect(dy).To(gomega.BeNumerically("~", 0.31, 1e-15))
		})
	})

	ginkgo.DescribeTable("rejects invalid parameters",
		func(p physics.Params) {
			_, err := physics.NewLotkaVolterra(p)
			gomega.Expect(err).To(gomega.MatchError(dynamo.ErrParameter))
		},
		ginkgo.Entry("zero a", physics.Params{A: 0, B: 0.02, C: 0.3, D: 0.01}),
		ginkgo.Entry("negative b", physics.Params{A: 0.1, B: -0.02, C: 0.3, D: 0.01}),
		ginkgo.Entry("zero c", physics.Params{A: 0.1, B: 0.02, C: 0, D: 0.01}),
		ginkgo.Entry("zero d", physics.Params{A: 0.1, B: 0.02, C: 0.3, D: 0}),
		ginkgo.Entry("NaN d", physics.Params{A: 0.1, B: 0.02, C: 0.3, D: math.NaN()}),
		ginkgo.Entry("infinite a", physics.Params{A: math.Inf(1), B: 0.02, C: 0.3, D: 0.01}),
	)

	ginkgo.Describe("conserved quantity", func() {
		p := physics.DefaultParams()

		ginkgo.It("matches a*ln(y) - b*y + c*ln(x) - d*x", func() {
			v, err := physics.Conserved(p, 40, 9)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			want := 0.1*math.Log(9) - 0.02*9 + 0.3*math.Log(40) - 0.01*40
			gomega.Expect(v).To(gomega.BeNumerically("~", want, 1e-15))
		})

		ginkgo.DescribeTable("is undefined off the open quadrant",
			func(x, y float64) {
				v, err := physics.Conserved(p, x, y)
				gomega.Expect(err).To(gomega.MatchError(dynamo.ErrDomain))
				gomega.Expect(math.IsNaN(v)).To(gomega.BeTrue())
			},
			ginkgo.Entry("zero prey", 0.0, 9.0),
			ginkgo.Entry("zero predators", 40.0, 0.0),
			ginkgo.Entry("negative prey", -1.0, 9.0),
			ginkgo.Entry("negative predators", 40.0, -0.5),
			ginkgo.Entry("NaN", math.NaN(), 9.0),
		)

		ginkgo.It("peaks at the interior fixed point", func() {
			peak, err := physics.Conserved(p, 30, 5)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			for _, pt := range [][2]float64{{29, 5}, {31, 5}, {30, 4.9}, {30, 5.1}, {40, 9}} {
				v, err := physics.Conserved(p, pt[0], pt[1])
				gomega.Expect(err).NotTo(gomega.HaveOccurred())
				gomega.Expect(v).To(gomega.BeNumerically("<", peak))
			}
		})
	})

	ginkgo.Describe("critical points", func() {
		ginkgo.It("are the origin and (c/d, a/b) for the default parameters", func() {
			points, err := physics.CriticalPoints(physics.DefaultParams())
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(points).To(gomega.HaveLen(2))
			gomega.Expect(points[0]).To(gomega.Equal(physics.CriticalPoint{X: 0, Y: 0, Kind: physics.KindSaddle}))
			gomega.Expect(points[1].X).To(gomega.BeNumerically("~", 30, 1e-12))
			gomega.Expect(points[1].Y).To(gomega.BeNumerically("~", 5, 1e-12))
			gomega.Expect(points[1].Kind).To(gomega.Equal(physics.KindCenter))
		})

		ginkgo.It("moves to (30, 7.5) when prey grow faster", func() {
			lv, err := physics.NewLotkaVolterra(physics.Params{A: 0.15, B: 0.02, C: 0.3, D: 0.01})
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			points, err := lv.CriticalPoints()
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(points[1].X).To(gomega.BeNumerically("~", 30, 1e-12))
			gomega.Expect(points[1].Y).To(gomega.BeNumerically("~", 7.5, 1e-12))
		})

		ginkgo.It("fails with a parameter error when d is zero", func() {
			_, err := physics.CriticalPoints(physics.Params{A: 0.1, B: 0.02, C: 0.3, D: 0})
			gomega.Expect(err).To(gomega.MatchError(dynamo.ErrParameter))
		})

		ginkgo.It("fails with a parameter error when b is zero", func() {
			_, err := physics.CriticalPoints(physics.Params{A: 0.1, B: 0, C: 0.3, D: 0.01})
			gomega.Expect(err).To(gomega.MatchError(dynamo.ErrParameter))
		})
	})
})

var _ = ginkgo.Describe("Logistic", func() {
	p := physics.DefaultParams()

	ginkgo.It("requires a positive carrying capacity", func() {
		_, err := physics.NewLogistic(p, 0)
		gomega.Expect(err).To(gomega.MatchError(dynamo.ErrParameter))
	})

	ginkgo.It("reduces to the classic model for a huge capacity", func() {
		dx, dy := physics.LogisticRates(p, 1e300, 40, 9)
		wx, wy := physics.Rates(p, 40, 9)
		gomega.Expect(dx).To(gomega.BeNumerically("~", wx, 1e-12))
		gomega.Expect(dy).To(gomega.Equal(wy))
	})

	ginkgo.It("has a stable spiral inside the quadrant when K > c/d", func() {
		l, err := physics.NewLogistic(p, 100)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		points, err := l.CriticalPoints()
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(points).To(gomega.HaveLen(3))

		interior := points[2]
		gomega.Expect(interior.X).To(gomega.BeNumerically("~", 30, 1e-12))
		gomega.Expect(interior.Y).To(gomega.BeNumerically("~", 3.5, 1e-12))
		gomega.Expect(interior.Kind).To(gomega.Equal(physics.KindSpiral))

		for _, pt := range points {
			dx, dy := l.Rates(pt.X, pt.Y)
			gomega.Expect(dx).To(gomega.BeNumerically("~", 0, 1e-12))
			gomega.Expect(dy).To(gomega.BeNumerically("~", 0, 1e-12))
		}
	})

	ginkgo.It("drops the interior point when K <= c/d", func() {
		l, err := physics.NewLogistic(p, 20)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		points, err := l.CriticalPoints()
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(points).To(gomega.HaveLen(2))
		gomega.Expect(points[1]).To(gomega.Equal(physics.CriticalPoint{X: 20, Y: 0, Kind: physics.KindNode}))
	})
})
