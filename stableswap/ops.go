package stableswap

import (
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"

	"github.com/curvesim/stableswap/bigmath"
	"github.com/curvesim/stableswap/dexerrors"
)

// Exchange trades dx of coin i for coin j, matching the reference's
// exchange. It mutates the pool's balances and admin balances and returns
// the amount of coin j paid out (net of fee) and the fee charged, both in
// coin j's native units.
func (p *Pool) Exchange(i, j int, dx bigmath.Int) (dy, fee bigmath.Int, err error) {
	if i == j || i < 0 || j < 0 || i >= p.n || j >= p.n {
		return bigmath.Zero(), bigmath.Zero(), wrapInvalid("invalid coin indices i=%d j=%d", i, j)
	}
	if dx.IsNegative() {
		return bigmath.Zero(), bigmath.Zero(), wrapInvalid("dx must be >= 0, got %s", dx)
	}

	xp := p.Xp()
	x := xp[i].Add(dx.Mul(p.p[i]).Quo(precision))
	y, err := GetY(i, j, x, xp, p.A, p.policy.NewtonMaxIterations)
	if err != nil {
		return bigmath.Zero(), bigmath.Zero(), err
	}
	dyRaw := xp[j].Sub(y).Sub(bigmath.One())

	var feeRaw bigmath.Int
	if p.feeMul == nil {
		feeRaw = dyRaw.Mul(p.fee).Quo(feeDenominator)
	} else {
		two := bigmath.FromInt64(2)
		mid := DynamicFee(xp[i].Add(x).Quo(two), xp[j].Add(y).Quo(two), *p.feeMul, p.fee)
		feeRaw = dyRaw.Mul(mid).Quo(feeDenominator)
	}
	adminFeeRaw := feeRaw.Mul(p.adminFee).Quo(feeDenominator)

	rate := p.p[j]
	dy = dyRaw.Sub(feeRaw).Mul(precision).Quo(rate)
	fee = feeRaw.Mul(precision).Quo(rate)
	adminFee := adminFeeRaw.Mul(precision).Quo(rate)
	if dy.IsNegative() {
		return bigmath.Zero(), bigmath.Zero(), sdkerrors.Wrapf(dexerrors.ErrInsufficientLiquidity, "exchange produced negative dy: %s", dy)
	}

	p.x[i] = p.x[i].Add(dx)
	p.x[j] = p.x[j].Sub(dy.Add(adminFee))
	p.adminBalances[j] = p.adminBalances[j].Add(adminFee)

	return dy, fee, nil
}

// DynamicFee computes the dynamic fee schedule value for a swap midpoint
// between xpi and xpj, matching the reference's dynamic_fee. The result is
// in the same parts-per-1e10 unit as Fee.
func DynamicFee(xpi, xpj, feeMul, fee bigmath.Int) bigmath.Int {
	xps2 := xpi.Add(xpj)
	xps2 = xps2.Mul(xps2)
	numerator := feeMul.Mul(fee)
	four := bigmath.FromInt64(4)
	denominator := feeMul.Sub(feeDenominator).Mul(four).Mul(xpi).Mul(xpj).Quo(xps2).Add(feeDenominator)
	return numerator.Quo(denominator)
}

// AddLiquidity deposits amounts (one per coin, native units) and mints LP
// tokens, matching the reference's add_liquidity.
func (p *Pool) AddLiquidity(amounts []bigmath.Int) (mint bigmath.Int, err error) {
	if len(amounts) != p.n {
		return bigmath.Zero(), wrapInvalid("len(amounts) = %d, want %d", len(amounts), p.n)
	}

	mint, fees, err := p.CalcTokenAmount(amounts, true)
	if err != nil {
		return bigmath.Zero(), err
	}
	p.tokens = p.tokens.Add(mint)

	newBalances := make([]bigmath.Int, p.n)
	for i := range newBalances {
		adminFee := fees[i].Mul(p.adminFee).Quo(feeDenominator)
		newBalances[i] = p.x[i].Add(amounts[i]).Sub(adminFee)
		p.adminBalances[i] = p.adminBalances[i].Add(adminFee)
	}
	p.x = newBalances

	return mint, nil
}

// CalcTokenAmount previews the LP tokens AddLiquidity(amounts) would mint,
// without mutating the pool, matching the reference's calc_token_amount.
// When useFee is true it also returns the per-coin imbalance fee charged.
func (p *Pool) CalcTokenAmount(amounts []bigmath.Int, useFee bool) (mint bigmath.Int, fees []bigmath.Int, err error) {
	if len(amounts) != p.n {
		return bigmath.Zero(), nil, wrapInvalid("len(amounts) = %d, want %d", len(amounts), p.n)
	}

	oldBalances := p.Balances()
	D0, err := p.GetDMem(oldBalances)
	if err != nil {
		return bigmath.Zero(), nil, err
	}

	newBalances := cloneInts(oldBalances)
	for i := range newBalances {
		newBalances[i] = newBalances[i].Add(amounts[i])
	}
	D1, err := p.GetDMem(newBalances)
	if err != nil {
		return bigmath.Zero(), nil, err
	}

	// Bootstrapping an empty pool: D0 is 0, so the D2-D0)/D0 formula below
	// is undefined. The reference mints the raw invariant of the first
	// deposit and charges no imbalance fee, since there is no prior
	// balance to be imbalanced against.
	if p.tokens.IsZero() {
		if useFee {
			fees = make([]bigmath.Int, p.n)
			for i := range fees {
				fees[i] = bigmath.Zero()
			}
		}
		return D1, fees, nil
	}

	mintBalances := cloneInts(newBalances)

	if useFee {
		nInt := bigmath.FromInt64(int64(p.n))
		fee := p.fee.Mul(nInt).Quo(bigmath.FromInt64(4).Mul(nInt.Sub(bigmath.One())))

		fees = make([]bigmath.Int, p.n)
		for i := range fees {
			idealBalance := D1.Mul(oldBalances[i]).Quo(D0)
			difference := idealBalance.Sub(newBalances[i]).Abs()
			fees[i] = fee.Mul(difference).Quo(feeDenominator)
			mintBalances[i] = mintBalances[i].Sub(fees[i])
		}
	}

	D2, err := p.GetDMem(mintBalances)
	if err != nil {
		return bigmath.Zero(), nil, err
	}

	mint = p.tokens.Mul(D2.Sub(D0)).Quo(D0)
	return mint, fees, nil
}

// RemoveLiquidityOneCoin burns tokenAmount LP tokens for a single coin i,
// matching the reference's remove_liquidity_one_coin.
func (p *Pool) RemoveLiquidityOneCoin(tokenAmount bigmath.Int, i int) (dy, dyFee bigmath.Int, err error) {
	dy, dyFee, err = p.CalcWithdrawOneCoin(tokenAmount, i, true)
	if err != nil {
		return bigmath.Zero(), bigmath.Zero(), err
	}

	adminFee := dyFee.Mul(p.adminFee).Quo(feeDenominator)
	p.x[i] = p.x[i].Sub(dy.Add(adminFee))
	p.adminBalances[i] = p.adminBalances[i].Add(adminFee)
	p.tokens = p.tokens.Sub(tokenAmount)

	return dy, dyFee, nil
}

// CalcWithdrawOneCoin previews RemoveLiquidityOneCoin(tokenAmount, i)
// without mutating the pool, matching the reference's
// calc_withdraw_one_coin. When useFee is false, dyFee is always zero.
//
// xpReduced is built as an explicit copy of xp, not an alias, even though
// the reference assigns xp_reduced = xp and then mutates it in place. The
// fee loop only reads the index it writes, but the final dy reads xp[i]
// after the loop; with an alias that read would see the fee-reduced
// balance. The copy keeps every read of xp on the unreduced balances.
func (p *Pool) CalcWithdrawOneCoin(tokenAmount bigmath.Int, i int, useFee bool) (dy, dyFee bigmath.Int, err error) {
	if i < 0 || i >= p.n {
		return bigmath.Zero(), bigmath.Zero(), wrapInvalid("invalid coin index i=%d", i)
	}

	A := p.A
	xp := p.Xp()
	D0, err := p.D()
	if err != nil {
		return bigmath.Zero(), bigmath.Zero(), err
	}
	D1 := D0.Sub(tokenAmount.Mul(D0).Quo(p.tokens))

	newY, err := GetYD(A, i, xp, D1, p.policy.NewtonMaxIterations)
	if err != nil {
		return bigmath.Zero(), bigmath.Zero(), err
	}
	dyBeforeFee := xp[i].Sub(newY).Mul(precision).Quo(p.p[i])

	xpReduced := cloneInts(xp)
	if p.fee.IsPositive() && useFee {
		nInt := bigmath.FromInt64(int64(p.n))
		fee := p.fee.Mul(nInt).Quo(bigmath.FromInt64(4).Mul(nInt.Sub(bigmath.One())))

		for j := 0; j < p.n; j++ {
			var dxExpected bigmath.Int
			if j == i {
				dxExpected = xp[j].Mul(D1).Quo(D0).Sub(newY)
			} else {
				dxExpected = xp[j].Sub(xp[j].Mul(D1).Quo(D0))
			}
			xpReduced[j] = xpReduced[j].Sub(fee.Mul(dxExpected).Quo(feeDenominator))
		}
	}

	yReduced, err := GetYD(A, i, xpReduced, D1, p.policy.NewtonMaxIterations)
	if err != nil {
		return bigmath.Zero(), bigmath.Zero(), err
	}
	dy = xp[i].Sub(yReduced).Sub(bigmath.One()).Mul(precision).Quo(p.p[i])

	if useFee {
		dyFee = dyBeforeFee.Sub(dy)
		return dy, dyFee, nil
	}
	return dy, bigmath.Zero(), nil
}

// VirtualPrice returns D * 1e18 / tokens, matching get_virtual_price.
func (p *Pool) VirtualPrice() (bigmath.Int, error) {
	if p.tokens.IsZero() {
		return bigmath.Zero(), sdkerrors.Wrapf(dexerrors.ErrInsufficientLiquidity, "virtual price undefined for zero token supply")
	}
	d, err := p.D()
	if err != nil {
		return bigmath.Zero(), err
	}
	return d.Mul(precision).Quo(p.tokens), nil
}

// Dydx returns the instantaneous exchange rate dy[j]/dx[i] at the pool's
// current balances, matching the reference's dydx. When useFee is true the
// flat or dynamic fee is subtracted, matching dydxfee.
func (p *Pool) Dydx(i, j int, useFee bool) (float64, error) {
	if i == j || i < 0 || j < 0 || i >= p.n || j >= p.n {
		return 0, wrapInvalid("invalid coin indices i=%d j=%d", i, j)
	}

	xp := p.Xp()
	xi, xj := xp[i], xp[j]
	n := bigmath.FromInt64(int64(p.n))
	D, err := GetD(xp, p.A, p.policy.NewtonMaxIterations)
	if err != nil {
		return 0, err
	}

	dPow := D.Pow(uint64(p.n + 1))
	xProd := bigmath.Product(xp)
	aPow := p.A.Mul(n.Pow(uint64(p.n + 1)))

	num := xj.Mul(xi.Mul(aPow).Mul(xProd).Add(dPow))
	den := xi.Mul(xj.Mul(aPow).Mul(xProd).Add(dPow))
	dydx := num.Float64() / den.Float64()

	feeFactor := 0.0
	if useFee {
		if p.feeMul == nil {
			feeFactor = p.fee.Float64() / feeDenominator.Float64()
		} else {
			feeFactor = DynamicFee(xi, xj, *p.feeMul, p.fee).Float64() / feeDenominator.Float64()
		}
	}

	return dydx * (1 - feeFactor), nil
}

// DydxFee is Dydx(i, j, true), matching the reference's dydxfee.
func (p *Pool) DydxFee(i, j int) (float64, error) {
	return p.Dydx(i, j, true)
}

// Price is an alias for Dydx kept for callers that think in "price" rather
// than "marginal exchange rate" terms; both names appear in spec.md.
func (p *Pool) Price(i, j int, useFee bool) (float64, error) {
	return p.Dydx(i, j, useFee)
}
