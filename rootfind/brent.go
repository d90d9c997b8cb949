// Package rootfind implements Brent's method, the bracketed 1-D root
// finder the arbitrage driver uses to size a single-pair trade.
// gonum.org/v1/gonum appears only as an indirect dependency of
// parsdao-pars's go.mod (nothing imports it directly), and its optimize
// package exposes no bracketed scalar root finder equivalent to scipy's
// brentq, so there is nothing concrete to wire here. This package is the
// one numerical core component with no library home; see DESIGN.md.
package rootfind

import (
	"context"
	"math"

	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"

	"github.com/curvesim/stableswap/dexerrors"
)

// Func is a scalar real function evaluated during the search.
type Func func(x float64) float64

// Brent finds a root of f in [lo, hi] using Brent's method (a
// bisection/secant/inverse-quadratic-interpolation hybrid), matching
// scipy.optimize.brentq. It requires f(lo) and f(hi) to have opposite
// signs (or one of them to already be zero); ErrRootBracketInvalid is
// returned otherwise, since the caller in that case has no profitable
// trade to find.
//
// absTol bounds the final bracket width; callers sizing integer trades want
// this <= 1 since they round the result to an integer trade size. maxIter caps the
// number of iterations before ErrNumericNotConverged. ctx is checked
// between iterations for cooperative cancellation.
func Brent(ctx context.Context, f Func, lo, hi, absTol float64, maxIter int) (float64, error) {
	a, b := lo, hi
	fa, fb := f(a), f(b)

	if fa == 0 {
		return a, nil
	}
	if fb == 0 {
		return b, nil
	}
	if sameSign(fa, fb) {
		return 0, sdkerrors.Wrapf(dexerrors.ErrRootBracketInvalid, "f(%g)=%g and f(%g)=%g do not bracket a root", a, fa, b, fb)
	}

	if math.Abs(fa) < math.Abs(fb) {
		a, b = b, a
		fa, fb = fb, fa
	}

	c, fc := a, fa
	mflag := true
	var d float64

	for i := 0; i < maxIter; i++ {
		if err := ctx.Err(); err != nil {
			return 0, sdkerrors.Wrap(dexerrors.ErrCancelled, err.Error())
		}

		if fb == 0 || math.Abs(b-a) <= absTol {
			return b, nil
		}

		var s float64
		if fa != fc && fb != fc {
			// Inverse quadratic interpolation.
			s = a*fb*fc/((fa-fb)*(fa-fc)) +
				b*fa*fc/((fb-fa)*(fb-fc)) +
				c*fa*fb/((fc-fa)*(fc-fb))
		} else {
			// Secant method.
			s = b - fb*(b-a)/(fb-fa)
		}

		cond1 := (s-(3*a+b)/4)*(s-b) >= 0
		cond2 := mflag && math.Abs(s-b) >= math.Abs(b-c)/2
		cond3 := !mflag && math.Abs(s-b) >= math.Abs(c-d)/2
		cond4 := mflag && math.Abs(b-c) < absTol
		cond5 := !mflag && math.Abs(c-d) < absTol

		if cond1 || cond2 || cond3 || cond4 || cond5 {
			s = (a + b) / 2
			mflag = true
		} else {
			mflag = false
		}

		fs := f(s)
		d = c
		c, fc = b, fb

		if sameSign(fa, fs) {
			a, fa = s, fs
		} else {
			b, fb = s, fs
		}

		if math.Abs(fa) < math.Abs(fb) {
			a, b = b, a
			fa, fb = fb, fa
		}
	}

	return 0, sdkerrors.Wrapf(dexerrors.ErrNumericNotConverged, "brent: exceeded %d iterations", maxIter)
}

func sameSign(a, b float64) bool {
	return (a > 0 && b > 0) || (a < 0 && b < 0)
}
