package arb_test

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/curvesim/stableswap/arb"
	"github.com/curvesim/stableswap/bigmath"
	"github.com/curvesim/stableswap/stableswap"
)

func e18(n int64) bigmath.Int {
	return bigmath.FromInt64(n).Mul(bigmath.FromInt64(10).Pow(18))
}

func newArbPool(t *testing.T) *stableswap.Pool {
	t.Helper()
	pool, err := stableswap.NewPool(
		stableswap.WithN(2),
		stableswap.WithA(bigmath.FromInt64(250)),
		stableswap.WithBalances([]bigmath.Int{e18(1_000_000), e18(1_000_000)}),
	)
	require.NoError(t, err)
	return pool
}

func TestPairs(t *testing.T) {
	pairs := arb.Pairs(3)
	require.Equal(t, []arb.Pair{{I: 0, J: 1}, {I: 0, J: 2}, {I: 1, J: 2}}, pairs)
}

func TestArbWithHeadroom(t *testing.T) {
	pool := newArbPool(t)
	driver := arb.NewDriver(nil, nil)
	ctx := context.Background()

	seeds, err := driver.GetArbTrades(ctx, pool, []float64{1.01})
	require.NoError(t, err)
	require.Len(t, seeds, 1)
	require.Equal(t, 1, seeds[0].In)
	require.Equal(t, 0, seeds[0].Out)
	require.True(t, seeds[0].Size.GT(bigmath.Zero()))

	trades, errs, report, err := driver.MultipairOptimalArbitrage(ctx, pool, []float64{1.01}, []float64{1_000_000})
	require.NoError(t, err)
	require.NotNil(t, report)
	require.Len(t, trades, 1)
	require.Len(t, errs, 1)
	require.Less(t, math.Abs(errs[0]), 1e-8)
}

func TestArbBlockedByVolume(t *testing.T) {
	pool := newArbPool(t)
	driver := arb.NewDriver(nil, nil)
	ctx := context.Background()

	trades, errs, _, err := driver.MultipairOptimalArbitrage(ctx, pool, []float64{1.01}, []float64{0.00001})
	require.NoError(t, err)
	require.Len(t, errs, 1)

	wantSize := bigmath.FromInt64(int64(0.00001 * 1e18))
	if len(trades) == 1 {
		require.True(t, trades[0].Size.LTE(wantSize))
	}
}

func TestGetArbTradesRejectsMismatchedPrices(t *testing.T) {
	pool := newArbPool(t)
	driver := arb.NewDriver(nil, nil)
	_, err := driver.GetArbTrades(context.Background(), pool, []float64{1.01, 1.02})
	require.Error(t, err)
}
