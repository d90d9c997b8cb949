package leastsq_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/curvesim/stableswap/leastsq"
)

func TestSolveMinimizesSimpleQuadratic(t *testing.T) {
	target := []float64{3, -2}
	residual := func(x []float64) ([]float64, error) {
		return []float64{x[0] - target[0], x[1] - target[1]}, nil
	}

	result, err := leastsq.Solve(context.Background(), residual, []float64{0, 0}, leastsq.Options{
		Lo:            []float64{-10, -10},
		Hi:            []float64{10, 10},
		GradTol:       1e-12,
		StepTol:       1e-12,
		MaxIterations: 200,
	})
	require.NoError(t, err)
	require.InDelta(t, target[0], result.X[0], 1e-4)
	require.InDelta(t, target[1], result.X[1], 1e-4)
}

func TestSolveRespectsBounds(t *testing.T) {
	residual := func(x []float64) ([]float64, error) {
		return []float64{x[0] - 100}, nil
	}

	result, err := leastsq.Solve(context.Background(), residual, []float64{0}, leastsq.Options{
		Lo:            []float64{0},
		Hi:            []float64{5},
		GradTol:       1e-15,
		StepTol:       1e-15,
		MaxIterations: 200,
	})
	require.NoError(t, err)
	require.LessOrEqual(t, result.X[0], 5.0)
	require.GreaterOrEqual(t, result.X[0], 0.0)
}

func TestSolveHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	residual := func(x []float64) ([]float64, error) { return []float64{x[0] - 1}, nil }

	_, err := leastsq.Solve(ctx, residual, []float64{0}, leastsq.Options{
		Lo: []float64{-1}, Hi: []float64{1}, GradTol: 1e-15, StepTol: 1e-15, MaxIterations: 10,
	})
	require.Error(t, err)
}

func TestSolvePropagatesResidualError(t *testing.T) {
	probeFailed := errors.New("probe failed")
	residual := func(x []float64) ([]float64, error) {
		return nil, probeFailed
	}

	_, err := leastsq.Solve(context.Background(), residual, []float64{0}, leastsq.Options{
		Lo: []float64{-1}, Hi: []float64{1}, GradTol: 1e-15, StepTol: 1e-15, MaxIterations: 10,
	})
	require.ErrorIs(t, err, probeFailed)
}
