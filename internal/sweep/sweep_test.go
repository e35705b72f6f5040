package sweep_test

import (
	"context"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/bodysim/internal/bodymass"
	"github.com/san-kum/bodysim/internal/experiment"
	"github.com/san-kum/bodysim/internal/sim"
	"github.com/san-kum/bodysim/internal/sweep"
	"github.com/san-kum/bodysim/internal/viz"
)

var _ = Describe("Config", func() {
	It("generates the default step sizes 0.011 through 0.019", func() {
		steps := sweep.DefaultConfig().Steps()
		Expect(steps).To(HaveLen(9))
		for i, h := range steps {
			Expect(h).To(BeNumerically("~", 0.011+0.001*float64(i), 1e-12))
		}
	})

	It("rejects an empty sweep", func() {
		cfg := sweep.DefaultConfig()
		cfg.Count = 0
		Expect(cfg.Validate()).To(MatchError(sweep.ErrEmptySweep))
	})

	It("rejects a sweep that produces a non-positive step", func() {
		cfg := sweep.DefaultConfig()
		cfg.Base = -0.05
		Expect(cfg.Validate()).To(MatchError(sim.ErrInvalidStep))
	})

	It("rejects a sweep without methods", func() {
		cfg := sweep.DefaultConfig()
		cfg.Methods = nil
		Expect(cfg.Validate()).To(MatchError(sweep.ErrNoMethods))
	})
})

var _ = Describe("Run", func() {
	var (
		model    *bodymass.Model
		registry *experiment.Registry
	)

	BeforeEach(func() {
		var err error
		model, err = bodymass.New(bodymass.Reference())
		Expect(err).NotTo(HaveOccurred())
		registry = experiment.NewRegistry()
	})

	Context("with the reference parameters and default sweep", func() {
		var result *sweep.Result

		BeforeEach(func() {
			var err error
			result, err = sweep.Run(context.Background(), model, registry, sweep.DefaultConfig())
			Expect(err).NotTo(HaveOccurred())
		})

		It("uses the day-365 closed-form value as reference", func() {
			want, _ := model.FinalValue(365)
			Expect(result.Horizon).To(Equal(365))
			Expect(result.Analytical).To(Equal(want))
		})

		It("produces two error series of length 9", func() {
			Expect(result.Series("euler")).To(HaveLen(9))
			Expect(result.Series("rk4")).To(HaveLen(9))
		})

		It("records the absolute difference from the closed form at the end time", func() {
			for _, p := range result.Points {
				Expect(p.EndTime).To(BeNumerically("<=", 365))
				Expect(p.EndTime).To(BeNumerically(">", 365-p.Step))
				Expect(p.Reference).To(Equal(model.MassAt(p.EndTime)))
				for _, m := range []string{"euler", "rk4"} {
					Expect(p.AbsErr[m]).To(Equal(math.Abs(p.Reference - p.Final[m])))
				}
			}
		})

		It("has RK4 strictly more accurate than Euler at every step size", func() {
			euler, rk4 := result.Series("euler"), result.Series("rk4")
			for i := range euler {
				Expect(rk4[i]).To(BeNumerically("<", euler[i]), "index %d", i)
			}
			Expect(result.Dominates("rk4", "euler")).To(BeTrue())
		})

		It("keeps both methods within a small distance of the analytical value", func() {
			for _, p := range result.Points {
				Expect(p.AbsErr["euler"]).To(BeNumerically("<", 1e-3))
				Expect(p.AbsErr["rk4"]).To(BeNumerically("<", 1e-6))
			}
		})

		It("observes first-order convergence for Euler", func() {
			order, err := result.Order("euler")
			Expect(err).NotTo(HaveOccurred())
			Expect(order).To(BeNumerically("~", 1, 0.1))
		})

		It("summarizes each series", func() {
			s := result.Summarize("euler")
			Expect(s.Min).To(BeNumerically("<=", s.Mean))
			Expect(s.Mean).To(BeNumerically("<=", s.Max))
			Expect(s.Max).To(Equal(result.Series("euler")[8]))
		})

		It("builds a log-log scatter of Euler error against RK4 error", func() {
			fig, err := result.Figure("euler", "rk4")
			Expect(err).NotTo(HaveOccurred())
			Expect(fig.XScale).To(Equal(viz.Log))
			Expect(fig.YScale).To(Equal(viz.Log))
			Expect(fig.Series).To(HaveLen(1))
			Expect(fig.Series[0].Kind).To(Equal(viz.Scatter))
			Expect(fig.Series[0].X).To(Equal(result.Series("euler")))
			Expect(fig.Series[0].Y).To(Equal(result.Series("rk4")))

			_, err = result.Figure("euler", "verlet")
			Expect(err).To(HaveOccurred())
		})

		It("plots each method against the step size", func() {
			fig := result.StepFigure()
			Expect(fig.Series).To(HaveLen(2))
			Expect(fig.Series[0].Name).To(Equal("euler"))
			Expect(fig.Series[1].X).To(Equal(result.Steps()))
			Expect(fig.Title).To(ContainSubstring("endpoint"))
		})
	})

	It("is deterministic", func() {
		cfg := sweep.DefaultConfig()
		cfg.Count = 2
		a, err := sweep.Run(context.Background(), model, registry, cfg)
		Expect(err).NotTo(HaveOccurred())
		b, err := sweep.Run(context.Background(), model, registry, cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(a.Series("euler")).To(Equal(b.Series("euler")))
		Expect(a.Series("rk4")).To(Equal(b.Series("rk4")))
	})

	It("honors an explicit horizon", func() {
		cfg := sweep.DefaultConfig()
		cfg.Count = 1
		cfg.Horizon = 100
		result, err := sweep.Run(context.Background(), model, registry, cfg)
		Expect(err).NotTo(HaveOccurred())
		want, _ := model.FinalValue(100)
		Expect(result.Analytical).To(Equal(want))
		Expect(result.Points[0].EndTime).To(BeNumerically("<=", 100))
	})

	Context("against the day-365 value", func() {
		It("stays within a small distance for both methods", func() {
			cfg := sweep.DefaultConfig()
			cfg.Reference = sweep.Horizon
			result, err := sweep.Run(context.Background(), model, registry, cfg)
			Expect(err).NotTo(HaveOccurred())

			for _, p := range result.Points {
				Expect(p.Reference).To(Equal(result.Analytical))
				Expect(p.AbsErr["euler"]).To(BeNumerically("<", 1e-3))
				Expect(p.AbsErr["rk4"]).To(BeNumerically("<", 1e-3))
			}
		})
	})

	It("parses reference names", func() {
		ref, err := sweep.ParseReference("horizon")
		Expect(err).NotTo(HaveOccurred())
		Expect(ref).To(Equal(sweep.Horizon))

		ref, err = sweep.ParseReference("")
		Expect(err).NotTo(HaveOccurred())
		Expect(ref).To(Equal(sweep.Endpoint))

		_, err = sweep.ParseReference("midpoint")
		Expect(err).To(HaveOccurred())
	})

	It("fails on an unknown method before integrating", func() {
		cfg := sweep.DefaultConfig()
		cfg.Methods = []string{"euler", "verlet"}
		_, err := sweep.Run(context.Background(), model, registry, cfg)
		Expect(err).To(MatchError(experiment.ErrUnknownIntegrator))
	})

	It("stops when the context is canceled", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		result, err := sweep.Run(ctx, model, registry, sweep.DefaultConfig())
		Expect(err).To(MatchError(context.Canceled))
		Expect(result.Points).To(BeEmpty())
	})
})
