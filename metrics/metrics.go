// Package metrics instruments the stableswap core's own recovery paths and
// Newton-loop convergence behavior, using the prometheus/client_golang +
// promauto idiom Cosmos SDK modules reach for in their DEX/keeper metrics
// (e.g. paw_dex_swaps_total). It does not build a reporting surface or
// dashboard; that is explicitly out of scope. A nil *Collector is valid
// everywhere so instrumentation stays opt-in.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector groups the stableswap core's prometheus instruments.
type Collector struct {
	arbNoBracket      *prometheus.CounterVec
	arbSolverDiverged prometheus.Counter
	newtonIterations  *prometheus.HistogramVec
}

// NewCollector registers a fresh set of collectors against reg. Pass
// prometheus.NewRegistry() in tests to avoid colliding with the global
// default registry across parallel test binaries.
func NewCollector(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)
	return &Collector{
		arbNoBracket: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stableswap_arb_no_bracket_total",
				Help: "Number of coin pairs for which the arbitrage driver found no profitable bracketed root.",
			},
			[]string{"pair"},
		),
		arbSolverDiverged: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "stableswap_arb_solver_diverged_total",
				Help: "Number of joint arbitrage solves that ended with the least-squares solver diverging.",
			},
		),
		newtonIterations: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stableswap_newton_iterations",
				Help:    "Iteration counts of the invariant Newton loops.",
				Buckets: prometheus.LinearBuckets(1, 8, 32),
			},
			[]string{"loop"},
		),
	}
}

func (c *Collector) ObserveNoBracket(pair string) {
	if c == nil {
		return
	}
	c.arbNoBracket.WithLabelValues(pair).Inc()
}

func (c *Collector) ObserveSolverDiverged() {
	if c == nil {
		return
	}
	c.arbSolverDiverged.Inc()
}

func (c *Collector) ObserveNewtonIterations(loop string, iterations int) {
	if c == nil {
		return
	}
	c.newtonIterations.WithLabelValues(loop).Observe(float64(iterations))
}
