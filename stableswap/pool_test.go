package stableswap_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/curvesim/stableswap/bigmath"
	"github.com/curvesim/stableswap/stableswap"
)

func e18(n int64) bigmath.Int {
	return bigmath.FromInt64(n).Mul(bigmath.FromInt64(10).Pow(18))
}

func twoCoinPool(t *testing.T, balance int64) *stableswap.Pool {
	t.Helper()
	pool, err := stableswap.NewPool(
		stableswap.WithN(2),
		stableswap.WithA(bigmath.FromInt64(250)),
		stableswap.WithBalances([]bigmath.Int{e18(balance), e18(balance)}),
	)
	require.NoError(t, err)
	return pool
}

func TestDComputation(t *testing.T) {
	pool := twoCoinPool(t, 1_000_000)

	d, err := pool.D()
	require.NoError(t, err)
	require.True(t, d.Equal(e18(2_000_000)), "D() = %s, want %s", d, e18(2_000_000))
}

func TestExchange(t *testing.T) {
	pool, err := stableswap.NewPool(
		stableswap.WithN(2),
		stableswap.WithA(bigmath.FromInt64(250)),
		stableswap.WithVirtualD(e18(1_000_000)),
		stableswap.WithFee(bigmath.Zero()),
	)
	require.NoError(t, err)

	dx := bigmath.FromInt64(150_000_000)
	dy, _, err := pool.Exchange(0, 1, dx)
	require.NoError(t, err)
	// dy = xp[j] - y - 1: the one-unit safety margin leaves dy one below dx
	// on this balanced, fee-free pool.
	require.Equal(t, "149999999", dy.String())

	balances := pool.Balances()
	// WithVirtualD splits D equally, so each coin starts at D/2.
	require.Equal(t, e18(500_000).Add(dx).String(), balances[0].String())
}

func TestAddLiquiditySymmetric(t *testing.T) {
	pool := twoCoinPool(t, 1_000_000)
	dBefore, err := pool.D()
	require.NoError(t, err)
	tokensBefore := pool.Tokens()

	mint, err := pool.AddLiquidity([]bigmath.Int{e18(1_000_000), e18(1_000_000)})
	require.NoError(t, err)

	require.True(t, mint.GT(bigmath.Zero()))
	// Perfectly balanced add charges no imbalance fee, so mint should be
	// very close to doubling supply.
	diff := mint.Sub(tokensBefore).Abs()
	require.True(t, diff.LT(bigmath.FromInt64(1_000_000)), "mint %s should approx equal tokensBefore %s", mint, tokensBefore)

	dAfter, err := pool.D()
	require.NoError(t, err)
	require.True(t, dAfter.GT(dBefore))
}

func TestSingleCoinWithdraw(t *testing.T) {
	pool := twoCoinPool(t, 1_000_000)
	_, err := pool.AddLiquidity([]bigmath.Int{e18(1_000_000), e18(1_000_000)})
	require.NoError(t, err)

	dBefore, err := pool.D()
	require.NoError(t, err)
	half := pool.Tokens().Quo(bigmath.FromInt64(2))

	dy, dyFee, err := pool.RemoveLiquidityOneCoin(half, 0)
	require.NoError(t, err)
	require.True(t, dy.GT(bigmath.Zero()))
	require.True(t, dyFee.GT(bigmath.Zero()))

	dAfter, err := pool.D()
	require.NoError(t, err)
	require.True(t, dAfter.GT(dBefore.Quo(bigmath.FromInt64(2))))
}

func TestFeeMonotonicity(t *testing.T) {
	dx := bigmath.FromInt64(150_000_000)

	lowFeePool, err := stableswap.NewPool(
		stableswap.WithN(2), stableswap.WithA(bigmath.FromInt64(250)),
		stableswap.WithVirtualD(e18(1_000_000)), stableswap.WithFee(bigmath.FromInt64(1_000_000)),
	)
	require.NoError(t, err)
	highFeePool, err := stableswap.NewPool(
		stableswap.WithN(2), stableswap.WithA(bigmath.FromInt64(250)),
		stableswap.WithVirtualD(e18(1_000_000)), stableswap.WithFee(bigmath.FromInt64(50_000_000)),
	)
	require.NoError(t, err)

	dyLow, _, err := lowFeePool.Exchange(0, 1, dx)
	require.NoError(t, err)
	dyHigh, _, err := highFeePool.Exchange(0, 1, dx)
	require.NoError(t, err)

	require.True(t, dyHigh.LTE(dyLow), "higher fee should not increase dy: dyLow=%s dyHigh=%s", dyLow, dyHigh)
}

func TestYInverse(t *testing.T) {
	pool := twoCoinPool(t, 1_000_000)
	xp := pool.Xp()

	y, err := stableswap.GetY(0, 1, xp[0].Add(bigmath.FromInt64(1_000)), xp, pool.AmplificationCoefficient(), 255)
	require.NoError(t, err)

	back, err := stableswap.GetY(1, 0, y, xp, pool.AmplificationCoefficient(), 255)
	require.NoError(t, err)

	diff := back.Sub(xp[0].Add(bigmath.FromInt64(1_000))).Abs()
	require.True(t, diff.LTE(bigmath.One()), "round trip diff = %s", diff)
}

func TestVirtualPriceNonDecreasing(t *testing.T) {
	pool, err := stableswap.NewPool(
		stableswap.WithN(2), stableswap.WithA(bigmath.FromInt64(250)),
		stableswap.WithVirtualD(e18(1_000_000)),
		stableswap.WithAdminFee(bigmath.FromInt64(5_000_000_000)),
	)
	require.NoError(t, err)

	before, err := pool.VirtualPrice()
	require.NoError(t, err)

	_, _, err = pool.Exchange(0, 1, bigmath.FromInt64(150_000_000))
	require.NoError(t, err)

	after, err := pool.VirtualPrice()
	require.NoError(t, err)

	require.True(t, after.GTE(before), "virtual price should not decrease: before=%s after=%s", before, after)
}

func TestSnapshotPurity(t *testing.T) {
	pool := twoCoinPool(t, 1_000_000)
	xBefore := pool.Balances()
	adminBefore := pool.AdminBalances()
	tokensBefore := pool.Tokens()

	err := pool.WithSnapshot(func(p *stableswap.Pool) error {
		_, _, exErr := p.Exchange(0, 1, bigmath.FromInt64(500_000))
		return exErr
	})
	require.NoError(t, err)

	xAfter := pool.Balances()
	for i := range xBefore {
		require.True(t, xBefore[i].Equal(xAfter[i]), "balance %d mutated across snapshot", i)
	}
	for i := range adminBefore {
		require.True(t, adminBefore[i].Equal(pool.AdminBalances()[i]))
	}
	require.True(t, tokensBefore.Equal(pool.Tokens()))
}

func TestSnapshotRestoresOnError(t *testing.T) {
	pool := twoCoinPool(t, 1_000_000)
	xBefore := pool.Balances()

	err := pool.WithSnapshot(func(p *stableswap.Pool) error {
		_, _, _ = p.Exchange(0, 1, bigmath.FromInt64(500_000))
		return stableswapErr()
	})
	require.Error(t, err)

	xAfter := pool.Balances()
	for i := range xBefore {
		require.True(t, xBefore[i].Equal(xAfter[i]))
	}
}

func stableswapErr() error { return errPlaceholder{} }

type errPlaceholder struct{}

func (errPlaceholder) Error() string { return "injected test failure" }

func TestExchangeRejectsBadIndices(t *testing.T) {
	pool := twoCoinPool(t, 1_000_000)
	_, _, err := pool.Exchange(0, 0, bigmath.FromInt64(1))
	require.Error(t, err)
}

func TestNewPoolRequiresAAndN(t *testing.T) {
	_, err := stableswap.NewPool(stableswap.WithN(2))
	require.Error(t, err)

	_, err = stableswap.NewPool(stableswap.WithA(bigmath.FromInt64(250)))
	require.Error(t, err)
}
