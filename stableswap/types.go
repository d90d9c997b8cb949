// Package stableswap implements the fixed-point invariant solver and pool
// operations for a stableswap constant-sum/constant-product hybrid AMM,
// following curvesim's reference Pool (original_source/curvesim/pool/stableswap/pool.py)
// bit-for-bit: all balance and fee arithmetic runs in bigmath.Int, with the
// same floor-division and fee-rounding order the reference uses.
package stableswap

import (
	"github.com/curvesim/stableswap/bigmath"
	"github.com/curvesim/stableswap/simconfig"
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"

	"github.com/curvesim/stableswap/dexerrors"
)

// precision is the fixed-point unit (1e18) used throughout rate
// normalization and fee math, matching the reference's 10**18.
var precision = pow10(18)

// feeDenominator is the 1e10 unit fee/admin_fee are expressed in parts of.
var feeDenominator = pow10(10)

func pow10(n uint64) bigmath.Int {
	return bigmath.FromInt64(10).Pow(n)
}

// Pool is a stableswap pool: its mutable state is exactly the triple
// (x, admin_balances, tokens) that Snapshot clones; A, p, n, fee, fee_mul,
// and admin_fee are fixed at construction.
type Pool struct {
	n int

	// A is the amplification coefficient, A*n^(n-1) in whitepaper notation.
	A bigmath.Int

	// p holds the n rate multipliers converting native balances to the
	// common invariant unit; unit 1e18 means "no adjustment".
	p []bigmath.Int

	// x holds the n native coin balances.
	x []bigmath.Int

	// tokens is the LP token total supply.
	tokens bigmath.Int

	// fee is the trade fee in parts per 1e10.
	fee bigmath.Int

	// adminFee is the share of fee accrued to admin, in parts per 1e10.
	adminFee bigmath.Int

	// feeMul is the optional dynamic-fee multiplier; nil means flat fee.
	feeMul *bigmath.Int

	// adminBalances holds the n admin-accrued, never-subtracted-from-x balances.
	adminBalances []bigmath.Int

	policy simconfig.Policy
}

// NumCoins returns n.
func (p *Pool) NumCoins() int { return p.n }

// Balances returns a defensive copy of the native coin balances, matching
// the reference's `balances` property.
func (p *Pool) Balances() []bigmath.Int {
	return cloneInts(p.x)
}

// AdminBalances returns a defensive copy of the accrued admin balances.
func (p *Pool) AdminBalances() []bigmath.Int {
	return cloneInts(p.adminBalances)
}

// Tokens returns the LP token total supply.
func (p *Pool) Tokens() bigmath.Int { return p.tokens }

// AmplificationCoefficient returns the amplification coefficient A.
func (p *Pool) AmplificationCoefficient() bigmath.Int { return p.A }

// Fee returns the flat trade fee (parts per 1e10).
func (p *Pool) Fee() bigmath.Int { return p.fee }

// AdminFeeRate returns the admin fee share (parts per 1e10).
func (p *Pool) AdminFeeRate() bigmath.Int { return p.adminFee }

// RateMultipliers returns a defensive copy of p.
func (p *Pool) RateMultipliers() []bigmath.Int { return cloneInts(p.p) }

// Policy returns the numeric convergence policy this pool's Newton loops
// and (via the arb package) its solvers run under.
func (p *Pool) Policy() simconfig.Policy { return p.policy }

// Xp returns the rate-normalized balances, xp_i = x_i * p_i / 1e18.
func (p *Pool) Xp() []bigmath.Int {
	return xpOf(p.x, p.p)
}

func xpOf(x, p []bigmath.Int) []bigmath.Int {
	out := make([]bigmath.Int, len(x))
	for i := range x {
		out[i] = x[i].Mul(p[i]).Quo(precision)
	}
	return out
}

func cloneInts(xs []bigmath.Int) []bigmath.Int {
	out := make([]bigmath.Int, len(xs))
	copy(out, xs)
	return out
}

// wrapInvalid is a small helper matching the sdkerrors.Wrapf(sentinel, ...)
// idiom used throughout the Cosmos SDK's keeper error paths.
func wrapInvalid(format string, args ...interface{}) error {
	return sdkerrors.Wrapf(dexerrors.ErrInvalidInputs, format, args...)
}
