// Package bigmath provides the arbitrary-precision signed integer used by
// the stableswap invariant math. Intermediate products in the Newton loops
// (D*D_P, D^(n+1)) overflow 256 bits for realistic pool balances, so every
// invariant computation is carried out here instead of in a fixed-width
// type.
//
// sdk.Int (the fixed-point integer the Cosmos SDK reaches for elsewhere)
// only exposes Quo, which truncates toward zero like math/big.Int.Quo.
// No available library exposes floor division on arbitrary precision
// integers, so Int wraps math/big.Int directly and implements floor
// division itself; this is the one place in the module where
// standard-library-only is the correct call; see DESIGN.md.
package bigmath

import (
	"fmt"
	"math"
	"math/big"
)

// Int is an immutable arbitrary-precision signed integer. The zero value is
// not valid; use Zero() or one of the From* constructors.
type Int struct {
	i *big.Int
}

// Zero returns the additive identity.
func Zero() Int { return Int{i: big.NewInt(0)} }

// One returns the multiplicative identity.
func One() Int { return Int{i: big.NewInt(1)} }

// FromInt64 constructs an Int from a signed 64-bit integer.
func FromInt64(v int64) Int { return Int{i: big.NewInt(v)} }

// FromUint64 constructs an Int from an unsigned 64-bit integer.
func FromUint64(v uint64) Int { return Int{i: new(big.Int).SetUint64(v)} }

// FromFloat truncates v toward zero and converts it to an Int, matching
// Python's int(v). Unlike routing a solver's float64 trade size through
// int64, this does not overflow for values beyond +-9.2e18: a trade size
// expressed in this module's 1e18 fixed point routinely exceeds that range
// for pools with balances above a few coins. NaN and +-Inf convert to zero,
// since a solver probing a direction that blew up has no sane integer size
// to report.
func FromFloat(v float64) Int {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Zero()
	}
	i, _ := new(big.Float).SetFloat64(v).Int(nil)
	return Int{i: i}
}

// MustFromString parses a base-10 string; it panics on malformed input,
// matching the constructor-time validation idiom used for operations
// performed at program boundaries where the input is already a compile-time
// constant or a host-validated config value.
func MustFromString(s string) Int {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic(fmt.Sprintf("bigmath: invalid integer literal %q", s))
	}
	return Int{i: v}
}

func fromBig(v *big.Int) Int { return Int{i: v} }

// BigInt returns a defensive copy of the underlying math/big.Int.
func (a Int) BigInt() *big.Int { return new(big.Int).Set(a.i) }

func (a Int) String() string { return a.i.String() }

// Int64 converts to a signed 64-bit integer at an API boundary. It panics if
// the value does not fit, since a silently truncated pool balance would be
// a correctness bug, not a recoverable condition.
func (a Int) Int64() int64 {
	if !a.i.IsInt64() {
		panic(fmt.Sprintf("bigmath: %s does not fit in int64", a.i.String()))
	}
	return a.i.Int64()
}

// Uint64 is the unsigned equivalent of Int64.
func (a Int) Uint64() uint64 {
	if !a.i.IsUint64() {
		panic(fmt.Sprintf("bigmath: %s does not fit in uint64", a.i.String()))
	}
	return a.i.Uint64()
}

func (a Int) IsZero() bool     { return a.i.Sign() == 0 }
func (a Int) IsNegative() bool { return a.i.Sign() < 0 }
func (a Int) IsPositive() bool { return a.i.Sign() > 0 }
func (a Int) Sign() int        { return a.i.Sign() }

func (a Int) Add(b Int) Int { return fromBig(new(big.Int).Add(a.i, b.i)) }
func (a Int) Sub(b Int) Int { return fromBig(new(big.Int).Sub(a.i, b.i)) }
func (a Int) Mul(b Int) Int { return fromBig(new(big.Int).Mul(a.i, b.i)) }
func (a Int) Neg() Int      { return fromBig(new(big.Int).Neg(a.i)) }
func (a Int) Abs() Int      { return fromBig(new(big.Int).Abs(a.i)) }

// Quo performs floor division: the quotient rounds toward negative
// infinity, so (-1).Quo(2) == -1, not 0. math/big.Int.Quo truncates toward
// zero, so when signs differ and there is a nonzero remainder we adjust by
// one. Panics on division by zero. stableswap does not guard every divisor
// before reaching here: GetD with a zero balance among nonzero ones, for
// one, divides by zero.
func (a Int) Quo(b Int) Int {
	if b.i.Sign() == 0 {
		panic("bigmath: division by zero")
	}
	q, r := new(big.Int).QuoRem(a.i, b.i, new(big.Int))
	if r.Sign() != 0 && (a.i.Sign() < 0) != (b.i.Sign() < 0) {
		q.Sub(q, big.NewInt(1))
	}
	return fromBig(q)
}

// Pow raises a to a small non-negative integer exponent.
func (a Int) Pow(exp uint64) Int {
	return fromBig(new(big.Int).Exp(a.i, new(big.Int).SetUint64(exp), nil))
}

func (a Int) Cmp(b Int) int { return a.i.Cmp(b.i) }
func (a Int) Equal(b Int) bool { return a.i.Cmp(b.i) == 0 }
func (a Int) LT(b Int) bool  { return a.i.Cmp(b.i) < 0 }
func (a Int) LTE(b Int) bool { return a.i.Cmp(b.i) <= 0 }
func (a Int) GT(b Int) bool  { return a.i.Cmp(b.i) > 0 }
func (a Int) GTE(b Int) bool { return a.i.Cmp(b.i) >= 0 }

// Min and Max are free functions (not methods) to mirror the Cosmos SDK's
// sdk.MinInt/MaxInt usage rather than forcing an arbitrary receiver choice.
func Min(a, b Int) Int {
	if a.LT(b) {
		return a
	}
	return b
}

func Max(a, b Int) Int {
	if a.GT(b) {
		return a
	}
	return b
}

// Sum adds a slice of Ints left to right.
func Sum(xs []Int) Int {
	s := Zero()
	for _, x := range xs {
		s = s.Add(x)
	}
	return s
}

// Product multiplies a slice of Ints left to right.
func Product(xs []Int) Int {
	p := One()
	for _, x := range xs {
		p = p.Mul(x)
	}
	return p
}

// Float64 converts to a float64, losing precision above 2^53. Used only at
// the single float boundary the invariant math allows (dydx/Price).
func (a Int) Float64() float64 {
	f := new(big.Float).SetInt(a.i)
	v, _ := f.Float64()
	return v
}
