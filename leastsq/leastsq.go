// Package leastsq implements the bounded nonlinear least-squares solver
// the joint arbitrage refinement uses (spec component C7), matching
// scipy.optimize.least_squares(..., method="trf", bounds=(lo, hi)).
//
// gonum.org/v1/gonum is reachable only as an indirect dependency of
// parsdao-pars's go.mod; its optimize package has no bounded
// vector-residual least-squares method comparable to trust-region
// reflective, so there is no concrete API available to wire this component
// to. The Levenberg-Marquardt-with-box-projection approach below is
// implemented directly against the standard library; see DESIGN.md.
package leastsq

import (
	"context"
	"math"

	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"

	"github.com/curvesim/stableswap/dexerrors"
)

// ResidualFunc evaluates the residual vector r(x); len(r(x)) need not equal
// len(x). An error aborts the solve immediately and is returned from Solve
// verbatim, rather than being folded into the residual as if it were just a
// poor fit.
type ResidualFunc func(x []float64) ([]float64, error)

// Options bounds and tunes a Solve call.
type Options struct {
	Lo, Hi        []float64
	GradTol       float64
	StepTol       float64
	MaxIterations int
}

// Result reports the solution and why the solver stopped.
type Result struct {
	X         []float64
	Fun       []float64
	Cost      float64
	Converged bool
}

// Solve minimizes 1/2 * ||r(x)||^2 subject to lo <= x <= hi, starting from
// x0, via a projected Levenberg-Marquardt iteration with a forward-
// difference Jacobian. It terminates on gradient inf-norm <= GradTol,
// step-norm <= StepTol, or MaxIterations, returning ErrSolverDiverged in
// the last case. ctx is checked between iterations.
func Solve(ctx context.Context, f ResidualFunc, x0 []float64, opts Options) (Result, error) {
	x := clamp(append([]float64(nil), x0...), opts.Lo, opts.Hi)

	lambda := 1e-3
	const lambdaUp, lambdaDown = 10.0, 0.1

	r, err := f(x)
	if err != nil {
		return Result{}, err
	}
	cost := sumSquares(r) / 2

	for iter := 0; iter < opts.MaxIterations; iter++ {
		if err := ctx.Err(); err != nil {
			return Result{}, sdkerrors.Wrap(dexerrors.ErrCancelled, err.Error())
		}

		J, err := jacobian(f, x, r)
		if err != nil {
			return Result{}, err
		}
		JTJ, JTr := normalEquations(J, r)
		if infNorm(JTr) <= opts.GradTol {
			return Result{X: x, Fun: r, Cost: cost, Converged: true}, nil
		}

		converged := false
		for {
			A := addDiag(JTJ, lambda)
			step, ok := solveLinear(A, negate(JTr))
			if !ok {
				lambda *= lambdaUp
				if lambda > 1e16 {
					return Result{}, sdkerrors.Wrapf(dexerrors.ErrSolverDiverged, "leastsq: singular normal equations after %d iterations", iter)
				}
				continue
			}

			trial := clamp(addVec(x, step), opts.Lo, opts.Hi)
			stepNorm := l2Norm(subVec(trial, x))
			if stepNorm <= opts.StepTol {
				// The projected step cannot move x any further (either a
				// true local optimum or pinned against the box); there is
				// nothing left for a smaller trust radius to find.
				converged = true
				break
			}

			trialR, err := f(trial)
			if err != nil {
				return Result{}, err
			}
			trialCost := sumSquares(trialR) / 2

			if trialCost <= cost {
				x, r, cost = trial, trialR, trialCost
				lambda *= lambdaDown
				break
			}

			lambda *= lambdaUp
			if lambda > 1e16 {
				return Result{}, sdkerrors.Wrapf(dexerrors.ErrSolverDiverged, "leastsq: step rejected at every trust radius after %d iterations", iter)
			}
		}

		if converged {
			return Result{X: x, Fun: r, Cost: cost, Converged: true}, nil
		}
	}

	return Result{}, sdkerrors.Wrapf(dexerrors.ErrSolverDiverged, "leastsq: exceeded %d iterations", opts.MaxIterations)
}

func jacobian(f ResidualFunc, x, r0 []float64) ([][]float64, error) {
	n := len(x)
	m := len(r0)
	J := make([][]float64, m)
	for i := range J {
		J[i] = make([]float64, n)
	}
	const eps = 1e-7
	for j := 0; j < n; j++ {
		h := eps * math.Max(1, math.Abs(x[j]))
		xh := append([]float64(nil), x...)
		xh[j] += h
		rh, err := f(xh)
		if err != nil {
			return nil, err
		}
		for i := 0; i < m; i++ {
			J[i][j] = (rh[i] - r0[i]) / h
		}
	}
	return J, nil
}

// normalEquations returns J^T J (n x n) and J^T r (n).
func normalEquations(J [][]float64, r []float64) ([][]float64, []float64) {
	m := len(J)
	n := 0
	if m > 0 {
		n = len(J[0])
	}
	JTJ := make([][]float64, n)
	for i := range JTJ {
		JTJ[i] = make([]float64, n)
	}
	JTr := make([]float64, n)

	for k := 0; k < m; k++ {
		for i := 0; i < n; i++ {
			JTr[i] += J[k][i] * r[k]
			for j := 0; j < n; j++ {
				JTJ[i][j] += J[k][i] * J[k][j]
			}
		}
	}
	return JTJ, JTr
}

func addDiag(A [][]float64, lambda float64) [][]float64 {
	n := len(A)
	out := make([][]float64, n)
	for i := range A {
		out[i] = append([]float64(nil), A[i]...)
		out[i][i] += lambda * (out[i][i] + 1e-12)
	}
	return out
}

// solveLinear solves Ax = b via Gaussian elimination with partial
// pivoting. It reports ok=false if A is numerically singular.
func solveLinear(A [][]float64, b []float64) ([]float64, bool) {
	n := len(b)
	M := make([][]float64, n)
	for i := range M {
		M[i] = append(append([]float64(nil), A[i]...), b[i])
	}

	for col := 0; col < n; col++ {
		pivot := col
		for row := col + 1; row < n; row++ {
			if math.Abs(M[row][col]) > math.Abs(M[pivot][col]) {
				pivot = row
			}
		}
		M[col], M[pivot] = M[pivot], M[col]
		if math.Abs(M[col][col]) < 1e-300 {
			return nil, false
		}
		for row := col + 1; row < n; row++ {
			factor := M[row][col] / M[col][col]
			for k := col; k <= n; k++ {
				M[row][k] -= factor * M[col][k]
			}
		}
	}

	x := make([]float64, n)
	for row := n - 1; row >= 0; row-- {
		sum := M[row][n]
		for col := row + 1; col < n; col++ {
			sum -= M[row][col] * x[col]
		}
		x[row] = sum / M[row][row]
	}
	return x, true
}

func clamp(x, lo, hi []float64) []float64 {
	for i := range x {
		if lo != nil && x[i] < lo[i] {
			x[i] = lo[i]
		}
		if hi != nil && x[i] > hi[i] {
			x[i] = hi[i]
		}
	}
	return x
}

func addVec(a, b []float64) []float64 {
	out := make([]float64, len(a))
	for i := range a {
		out[i] = a[i] + b[i]
	}
	return out
}

func subVec(a, b []float64) []float64 {
	out := make([]float64, len(a))
	for i := range a {
		out[i] = a[i] - b[i]
	}
	return out
}

func negate(a []float64) []float64 {
	out := make([]float64, len(a))
	for i := range a {
		out[i] = -a[i]
	}
	return out
}

func sumSquares(v []float64) float64 {
	s := 0.0
	for _, x := range v {
		s += x * x
	}
	return s
}

func l2Norm(v []float64) float64 { return math.Sqrt(sumSquares(v)) }

func infNorm(v []float64) float64 {
	m := 0.0
	for _, x := range v {
		if a := math.Abs(x); a > m {
			m = a
		}
	}
	return m
}
