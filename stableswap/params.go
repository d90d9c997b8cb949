package stableswap

import (
	"github.com/curvesim/stableswap/bigmath"
	"github.com/curvesim/stableswap/metrics"
	"github.com/curvesim/stableswap/simconfig"
)

// defaultFee matches the reference's 4*10**6 (parts per 1e10, i.e. 0.04%).
func defaultFee() bigmath.Int { return bigmath.FromInt64(4).Mul(pow10(6)) }

// defaultAdminFee is 0: the reference's documented 50% (5*10**9) default is
// disabled here for simulation stability. Hosts wanting on-chain-matching
// semantics should pass WithAdminFee(5e9).
func defaultAdminFee() bigmath.Int { return bigmath.Zero() }

// config accumulates functional-option state before NewPool validates and
// freezes it into a Pool.
type config struct {
	n          int
	a          bigmath.Int
	aSet       bool
	d          bigmath.Int
	dSet       bool
	balances   []bigmath.Int
	useBalances bool
	p          []bigmath.Int
	tokens     bigmath.Int
	tokensSet  bool
	fee        bigmath.Int
	adminFee   bigmath.Int
	feeMul     *bigmath.Int
	policy     *simconfig.Policy
	metrics    *metrics.Collector
}

// Option configures a Pool at construction time.
type Option func(*config)

// WithN sets the (required) number of coins, n >= 2.
func WithN(n int) Option {
	return func(c *config) { c.n = n }
}

// WithA sets the (required) amplification coefficient.
func WithA(a bigmath.Int) Option {
	return func(c *config) { c.a, c.aSet = a, true }
}

// WithVirtualD seeds the pool with a virtual total D, split equally across
// coins and adjusted by each coin's rate multiplier, matching the
// reference's `D` scalar constructor argument.
func WithVirtualD(d bigmath.Int) Option {
	return func(c *config) { c.d, c.dSet, c.useBalances = d, true, false }
}

// WithBalances seeds the pool with explicit per-coin native balances,
// matching the reference's `D` list-of-int constructor argument.
func WithBalances(balances []bigmath.Int) Option {
	return func(c *config) { c.balances, c.useBalances = cloneInts(balances), true }
}

// WithRateMultipliers sets p; defaults to [1e18]*n ("no adjustment") if
// omitted.
func WithRateMultipliers(p []bigmath.Int) Option {
	return func(c *config) { c.p = cloneInts(p) }
}

// WithTokens sets the initial LP token supply; defaults to D() after
// construction if omitted.
func WithTokens(tokens bigmath.Int) Option {
	return func(c *config) { c.tokens, c.tokensSet = tokens, true }
}

// WithFee sets the trade fee in parts per 1e10; defaults to 4e6.
func WithFee(fee bigmath.Int) Option {
	return func(c *config) { c.fee = fee }
}

// WithAdminFee sets the admin fee share in parts per 1e10; defaults to 0.
func WithAdminFee(adminFee bigmath.Int) Option {
	return func(c *config) { c.adminFee = adminFee }
}

// WithFeeMul enables the dynamic fee schedule; dynamicFee replaces the flat
// fee in swap pricing when set.
func WithFeeMul(feeMul bigmath.Int) Option {
	return func(c *config) { c.feeMul = &feeMul }
}

// WithPolicy overrides the numeric convergence policy (iteration caps,
// tolerances); defaults to simconfig.Default().
func WithPolicy(policy simconfig.Policy) Option {
	return func(c *config) { c.policy = &policy }
}

// WithMetrics installs a Collector that every Newton loop (GetD/GetY/GetYD)
// reports its iteration count to. It is process-wide, not per-pool, since
// the invariant solvers are free functions shared by every Pool and by the
// arb package's direct calls; constructing a second Pool with a different
// collector replaces the first's instrumentation. Omitting it (or passing
// nil) leaves the process-wide collector as it is: disabled unless an
// earlier NewPool or SetMetrics call installed one.
func WithMetrics(c *metrics.Collector) Option {
	return func(cfg *config) { cfg.metrics = c }
}
