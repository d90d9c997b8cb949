// Package arb implements the volume-limited multi-pair arbitrage driver
// (spec component C8): per-pair trade seeding via rootfind.Brent, then a
// joint refinement via leastsq.Solve that may adjust every pair's trade
// size at once to minimize the aggregate pool/market price error.
//
// It is grounded on curvesim's vol_limited_arb trader
// (original_source/curvesim/pipelines/vol_limited_arb/trader.py):
// get_arb_trades and multipair_optimal_arbitrage are transcribed faithfully,
// including their error-recovery behavior (a bad bracket or a diverged
// solve are expected runtime conditions, not program bugs).
package arb

import (
	"context"
	"fmt"
	"math"
	"sort"

	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"
	"github.com/tendermint/tendermint/libs/log"

	"github.com/curvesim/stableswap/bigmath"
	"github.com/curvesim/stableswap/dexerrors"
	"github.com/curvesim/stableswap/leastsq"
	"github.com/curvesim/stableswap/metrics"
	"github.com/curvesim/stableswap/rootfind"
	"github.com/curvesim/stableswap/stableswap"
)

// Pair is an ordered pair of coin indices, i < j as enumerated by Pairs.
type Pair struct{ I, J int }

// TradeSeed is the per-pair output of GetArbTrades: a candidate trade size,
// the direction to execute it in, and the price it targets.
type TradeSeed struct {
	Size        bigmath.Int
	In, Out     int
	PriceTarget float64
}

// Trade is a sized, directed trade ready to execute against a pool.
type Trade struct {
	In, Out int
	Size    bigmath.Int
}

// Report mirrors scipy's OptimizeResult closely enough for a host to log
// convergence diagnostics; it is nil after a recovered failure.
type Report struct {
	Cost      float64
	Converged bool
}

// Driver computes and executes arbitrage trades against a single pool.
type Driver struct {
	logger  log.Logger
	metrics *metrics.Collector
}

// NewDriver constructs a Driver. A nil logger defaults to a no-op logger so
// the package is usable with zero logging configuration; a nil metrics
// collector disables instrumentation.
func NewDriver(logger log.Logger, m *metrics.Collector) *Driver {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Driver{logger: logger.With("module", "stableswap-arb"), metrics: m}
}

// Pairs enumerates the n(n-1)/2 ordered index pairs (i, j) with i < j over
// which per-pair arbitrage trades are seeded.
func Pairs(n int) []Pair {
	pairs := make([]Pair, 0, n*(n-1)/2)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			pairs = append(pairs, Pair{I: i, J: j})
		}
	}
	return pairs
}

// GetArbTrades computes one candidate trade per coin pair, the size and
// direction that would move the pool's post-trade price to prices[k] for
// pair k, matching curvesim's get_arb_trades.
func (d *Driver) GetArbTrades(ctx context.Context, pool *stableswap.Pool, prices []float64) ([]TradeSeed, error) {
	pairs := Pairs(pool.NumCoins())
	if len(prices) != len(pairs) {
		return nil, sdkerrors.Wrapf(dexerrors.ErrInvalidInputs, "len(prices) = %d, want %d", len(prices), len(pairs))
	}

	seeds := make([]TradeSeed, len(pairs))
	for k, pair := range pairs {
		i, j := pair.I, pair.J

		pij, err := pool.Price(i, j, false)
		if err != nil {
			return nil, err
		}
		pji, err := pool.Price(j, i, false)
		if err != nil {
			return nil, err
		}

		var in, out int
		var target float64
		switch {
		case pij-prices[k] > 0:
			in, out, target = i, j, prices[k]
		case pji-1/prices[k] > 0:
			in, out, target = j, i, 1/prices[k]
		default:
			seeds[k] = TradeSeed{Size: bigmath.Zero(), In: i, Out: j, PriceTarget: prices[k]}
			continue
		}

		policy := pool.Policy()

		hi, err := getInAmount(pool, in, out, policy.OutBalancePercent)
		if err != nil {
			return nil, err
		}

		f := func(dx float64) float64 {
			price, err := d.probePrice(pool, in, out, dx, target)
			if err != nil {
				return math.NaN()
			}
			return price
		}

		root, err := rootfind.Brent(ctx, f, 0, hi, policy.RootFinderTolerance, policy.RootFinderMaxIterations)
		if err != nil {
			if sdkerrors.IsOf(err, dexerrors.ErrRootBracketInvalid) {
				d.metrics.ObserveNoBracket(pairKey(in, out))
				d.logger.Error("arb: no root bracket for pair", "in", in, "out", out, "target", target, "err", err)
				seeds[k] = TradeSeed{Size: bigmath.Zero(), In: in, Out: out, PriceTarget: target}
				continue
			}
			return nil, err
		}

		seeds[k] = TradeSeed{Size: bigmath.FromFloat(math.Floor(root)), In: in, Out: out, PriceTarget: target}
	}

	return seeds, nil
}

// probePrice executes trade (in, out, dx) on a snapshot of pool and returns
// the resulting price(in, out, use_fee=true) minus target.
func (d *Driver) probePrice(pool *stableswap.Pool, in, out int, dx, target float64) (float64, error) {
	var result float64
	err := pool.WithSnapshot(func(p *stableswap.Pool) error {
		if dx > 0 {
			if _, _, tErr := p.Exchange(in, out, bigmath.FromFloat(dx)); tErr != nil {
				return tErr
			}
		}
		price, pErr := p.Price(in, out, true)
		if pErr != nil {
			return pErr
		}
		result = price - target
		return nil
	})
	return result, err
}

func pairKey(i, j int) string {
	return fmt.Sprintf("%d-%d", i, j)
}

// getInAmount finds the native-unit dx of coin `in` that would drain coin
// `out` down to outBalancePercent of its current balance, the upper search
// bound get_arb_trades feeds Brent's method. It is derived by asking the
// invariant what x[in] must become for x[out] to sit at the drained target,
// via GetY with the roles of the fixed and solved coordinate swapped
// relative to a normal swap quote.
func getInAmount(pool *stableswap.Pool, in, out int, outBalancePercent float64) (float64, error) {
	xp := pool.Xp()
	p := pool.RateMultipliers()

	drainedOut := bigmath.FromInt64(int64(outBalancePercent * 1e18)).Mul(xp[out]).Quo(bigmath.FromInt64(1e18))
	if drainedOut.IsZero() {
		drainedOut = bigmath.One()
	}

	newIn, err := stableswap.GetY(out, in, drainedOut, xp, pool.AmplificationCoefficient(), pool.Policy().NewtonMaxIterations)
	if err != nil {
		return 0, err
	}

	dxp := newIn.Sub(xp[in])
	if dxp.IsNegative() {
		dxp = bigmath.Zero()
	}
	precision := bigmath.FromInt64(10).Pow(18)
	dx := dxp.Mul(precision).Quo(p[in])
	return dx.Float64(), nil
}

// MultipairOptimalArbitrage computes trades to optimally arbitrage every
// pair at once, constrained by per-pair volume limits (whole-coin units,
// scaled by 1e18 to native units),
// matching curvesim's multipair_optimal_arbitrage.
func (d *Driver) MultipairOptimalArbitrage(ctx context.Context, pool *stableswap.Pool, prices, limits []float64) ([]Trade, []float64, *Report, error) {
	seeds, err := d.GetArbTrades(ctx, pool, prices)
	if err != nil {
		return nil, nil, nil, err
	}
	if len(limits) != len(seeds) {
		return nil, nil, nil, sdkerrors.Wrapf(dexerrors.ErrInvalidInputs, "len(limits) = %d, want %d", len(limits), len(seeds))
	}

	type limited struct {
		size        float64
		in, out     int
		priceTarget float64
		lo, hi      float64
	}

	limitedTrades := make([]limited, len(seeds))
	for k, seed := range seeds {
		limit := limits[k] * 1e18
		size := math.Min(seed.Size.Float64(), limit)
		limitedTrades[k] = limited{size: size, in: seed.In, out: seed.Out, priceTarget: seed.PriceTarget, lo: 0, hi: limit + 1}
	}

	sort.SliceStable(limitedTrades, func(a, b int) bool {
		return limitedTrades[a].size > limitedTrades[b].size
	})

	n := len(limitedTrades)
	sizes := make([]float64, n)
	ins := make([]int, n)
	outs := make([]int, n)
	targets := make([]float64, n)
	lo := make([]float64, n)
	hi := make([]float64, n)
	for k, t := range limitedTrades {
		sizes[k], ins[k], outs[k], targets[k], lo[k], hi[k] = t.size, t.in, t.out, t.priceTarget, t.lo, t.hi
	}

	// residual reports the error itself rather than folding a failed probe
	// into the all-zero vector: an exchange that failed mid-probe (e.g.
	// insufficient liquidity at a trial size) is not the same thing as a
	// probe that happens to land exactly on target, and must not be read by
	// the solver as "converged".
	residual := func(dxs []float64) ([]float64, error) {
		errs := make([]float64, n)
		err := pool.WithSnapshot(func(p *stableswap.Pool) error {
			for k := 0; k < n; k++ {
				dx := dxs[k]
				if math.IsNaN(dx) {
					dx = 0
				}
				if dx > 0 {
					if _, _, tErr := p.Exchange(ins[k], outs[k], bigmath.FromFloat(dx)); tErr != nil {
						return tErr
					}
				}
			}
			for k := 0; k < n; k++ {
				price, pErr := p.Price(ins[k], outs[k], true)
				if pErr != nil {
					return pErr
				}
				errs[k] = price - targets[k]
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		return errs, nil
	}

	policy := pool.Policy()
	result, solveErr := leastsq.Solve(ctx, residual, sizes, leastsq.Options{
		Lo: lo, Hi: hi,
		GradTol:       policy.LeastSquaresGradTol,
		StepTol:       policy.LeastSquaresStepTol,
		MaxIterations: policy.LeastSquaresMaxIterations,
	})

	if solveErr != nil {
		if !sdkerrors.IsOf(solveErr, dexerrors.ErrSolverDiverged) {
			return nil, nil, nil, solveErr
		}

		d.metrics.ObserveSolverDiverged()
		d.logger.Error("arb: joint solve failed", "err", solveErr, "sizes", sizes, "lo", lo, "hi", hi)
		zero := make([]float64, n)
		errsAtZero, zeroErr := residual(zero)
		if zeroErr != nil {
			return nil, nil, nil, zeroErr
		}
		return nil, errsAtZero, nil, nil
	}

	trades := make([]Trade, 0, n)
	for k, dx := range result.X {
		if math.IsNaN(dx) {
			continue
		}
		size := bigmath.FromFloat(dx)
		if size.IsPositive() {
			trades = append(trades, Trade{In: ins[k], Out: outs[k], Size: size})
		}
	}

	return trades, result.Fun, &Report{Cost: result.Cost, Converged: result.Converged}, nil
}
