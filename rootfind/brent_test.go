package rootfind_test

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/curvesim/stableswap/rootfind"
)

func TestBrentFindsRootOfLinear(t *testing.T) {
	f := func(x float64) float64 { return x - 3.5 }
	root, err := rootfind.Brent(context.Background(), f, 0, 10, 1e-9, 100)
	require.NoError(t, err)
	require.InDelta(t, 3.5, root, 1e-6)
}

func TestBrentFindsRootOfCubic(t *testing.T) {
	f := func(x float64) float64 { return x*x*x - x - 2 }
	root, err := rootfind.Brent(context.Background(), f, 1, 2, 1e-9, 100)
	require.NoError(t, err)
	require.InDelta(t, 0, f(root), 1e-6)
}

func TestBrentRejectsBadBracket(t *testing.T) {
	f := func(x float64) float64 { return x*x + 1 }
	_, err := rootfind.Brent(context.Background(), f, -1, 1, 1, 100)
	require.Error(t, err)
}

func TestBrentHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	f := func(x float64) float64 { return x - 3.5 }
	_, err := rootfind.Brent(ctx, f, 0, 10, 1e-12, 1000)
	require.Error(t, err)
}

func TestBrentToleratesExactRootAtEndpoint(t *testing.T) {
	f := func(x float64) float64 { return x - 2 }
	root, err := rootfind.Brent(context.Background(), f, 2, 10, 1, 10)
	require.NoError(t, err)
	require.Equal(t, 0.0, math.Round((root-2)*1e9)/1e9)
}
