package stableswap

import (
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"

	"github.com/curvesim/stableswap/bigmath"
	"github.com/curvesim/stableswap/dexerrors"
	"github.com/curvesim/stableswap/metrics"
)

// newtonMetrics, when non-nil, receives iteration counts from every Newton
// loop run through this package's free functions. Pool wires its own
// collector in via SetMetrics; nil is always a valid, inert default.
var newtonMetrics *metrics.Collector

// SetMetrics installs the package-wide metrics collector used by the
// invariant Newton loops. Passing nil disables instrumentation.
func SetMetrics(c *metrics.Collector) { newtonMetrics = c }

// GetD computes the stableswap invariant D for the given rate-normalized
// balances and amplification coefficient A (A*n^(n-1) in whitepaper
// notation; A times n is computed internally as Ann). It is the direct
// translation of curvesim's get_D: a positive
// Newton root matching
//
//	A n^n sum(x) + D = A n^n D + D^(n+1) / (n^n prod(x))
//
// Every xp_i must be positive; the loop is undefined (and will divide by
// zero) otherwise, matching the reference's documented precondition.
func GetD(xp []bigmath.Int, A bigmath.Int, maxIter int) (bigmath.Int, error) {
	n := len(xp)
	nInt := bigmath.FromInt64(int64(n))
	S := bigmath.Sum(xp)
	if S.IsZero() {
		return bigmath.Zero(), nil
	}

	Ann := A.Mul(nInt)
	D := S
	Dprev := bigmath.Zero()

	iterations := 0
	for i := 0; i < maxIter; i++ {
		iterations = i + 1
		DP := D
		for _, x := range xp {
			DP = DP.Mul(D).Quo(nInt.Mul(x))
		}
		Dprev = D
		numerator := Ann.Mul(S).Add(DP.Mul(nInt)).Mul(D)
		denominator := Ann.Sub(bigmath.One()).Mul(D).Add(nInt.Add(bigmath.One()).Mul(DP))
		D = numerator.Quo(denominator)

		if D.Sub(Dprev).Abs().LTE(bigmath.One()) {
			newtonMetrics.ObserveNewtonIterations("d", iterations)
			return D, nil
		}
	}
	newtonMetrics.ObserveNewtonIterations("d", iterations)
	return bigmath.Zero(), sdkerrors.Wrapf(dexerrors.ErrNumericNotConverged, "get_D: exceeded %d iterations", maxIter)
}

// GetY computes x[j] given x[i] is set to x, holding D fixed at the
// invariant of xp as passed (before x[i] is replaced), matching curvesim's
// get_y.
func GetY(i, j int, x bigmath.Int, xp []bigmath.Int, A bigmath.Int, maxIter int) (bigmath.Int, error) {
	n := len(xp)
	nInt := bigmath.FromInt64(int64(n))

	xx := cloneInts(xp)
	D, err := GetD(xx, A, maxIter)
	if err != nil {
		return bigmath.Zero(), err
	}
	xx[i] = x

	Ann := A.Mul(nInt)
	c := D
	S := bigmath.Zero()
	for k := 0; k < n; k++ {
		if k == j {
			continue
		}
		c = c.Mul(D).Quo(xx[k].Mul(nInt))
		S = S.Add(xx[k])
	}
	c = c.Mul(D).Quo(nInt.Mul(Ann))
	b := S.Add(D.Quo(Ann)).Sub(D)

	yPrev := bigmath.Zero()
	y := D
	iterations := 0
	two := bigmath.FromInt64(2)
	for it := 0; it < maxIter; it++ {
		iterations = it + 1
		yPrev = y
		y = y.Mul(y).Add(c).Quo(two.Mul(y).Add(b))
		if y.Sub(yPrev).Abs().LTE(bigmath.One()) {
			newtonMetrics.ObserveNewtonIterations("y", iterations)
			return y, nil
		}
	}
	newtonMetrics.ObserveNewtonIterations("y", iterations)
	return bigmath.Zero(), sdkerrors.Wrapf(dexerrors.ErrNumericNotConverged, "get_y: exceeded %d iterations", maxIter)
}

// GetYD computes x[i] that would achieve the supplied (reduced) D target
// against the rest of xp, matching curvesim's get_y_D. Unlike GetY, D is
// the caller's argument rather than recomputed from xp, and the b term
// omits the trailing "- D" GetY has.
func GetYD(A bigmath.Int, i int, xp []bigmath.Int, D bigmath.Int, maxIter int) (bigmath.Int, error) {
	n := len(xp)
	nInt := bigmath.FromInt64(int64(n))
	Ann := A.Mul(nInt)

	c := D
	S := bigmath.Zero()
	for k := 0; k < n; k++ {
		if k == i {
			continue
		}
		c = c.Mul(D).Quo(xp[k].Mul(nInt))
		S = S.Add(xp[k])
	}
	c = c.Mul(D).Quo(nInt.Mul(Ann))
	b := S.Add(D.Quo(Ann))

	yPrev := bigmath.Zero()
	y := D
	iterations := 0
	two := bigmath.FromInt64(2)
	for it := 0; it < maxIter; it++ {
		iterations = it + 1
		yPrev = y
		y = y.Mul(y).Add(c).Quo(two.Mul(y).Add(b).Sub(D))
		if y.Sub(yPrev).Abs().LTE(bigmath.One()) {
			newtonMetrics.ObserveNewtonIterations("y_d", iterations)
			return y, nil
		}
	}
	newtonMetrics.ObserveNewtonIterations("y_d", iterations)
	return bigmath.Zero(), sdkerrors.Wrapf(dexerrors.ErrNumericNotConverged, "get_y_D: exceeded %d iterations", maxIter)
}

// D returns the invariant for the pool's current balances.
func (p *Pool) D() (bigmath.Int, error) {
	return GetD(p.Xp(), p.A, p.policy.NewtonMaxIterations)
}

// GetDMem is the convenience wrapper matching curvesim's get_D_mem: it
// accepts native-unit balances and applies the pool's rate multipliers
// before calling GetD, so callers never need to mutate Pool.x to probe a
// hypothetical balance vector.
func (p *Pool) GetDMem(balances []bigmath.Int) (bigmath.Int, error) {
	return GetD(xpOf(balances, p.p), p.A, p.policy.NewtonMaxIterations)
}
