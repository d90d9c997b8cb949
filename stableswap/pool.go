package stableswap

import (
	"github.com/curvesim/stableswap/bigmath"
	"github.com/curvesim/stableswap/simconfig"
)

// NewPool constructs a Pool from the recognized options of spec.md §6.
// WithN and WithA are required; WithVirtualD or WithBalances must seed
// initial balances. If both are given, the one applied last is used.
func NewPool(opts ...Option) (*Pool, error) {
	c := &config{
		fee:      defaultFee(),
		adminFee: defaultAdminFee(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.n < 2 {
		return nil, wrapInvalid("n must be >= 2, got %d", c.n)
	}
	if !c.aSet {
		return nil, wrapInvalid("A is required")
	}
	if c.a.LTE(bigmath.Zero()) {
		return nil, wrapInvalid("A must be positive, got %s", c.a)
	}

	p := c.p
	if p == nil {
		p = make([]bigmath.Int, c.n)
		for i := range p {
			p[i] = precision
		}
	}
	if len(p) != c.n {
		return nil, wrapInvalid("len(p) = %d, want %d", len(p), c.n)
	}
	for i, pi := range p {
		if pi.LT(bigmath.One()) {
			return nil, wrapInvalid("p[%d] must be >= 1, got %s", i, pi)
		}
	}

	var x []bigmath.Int
	switch {
	case c.useBalances:
		if len(c.balances) != c.n {
			return nil, wrapInvalid("len(balances) = %d, want %d", len(c.balances), c.n)
		}
		for i, bi := range c.balances {
			if bi.IsNegative() {
				return nil, wrapInvalid("balances[%d] must be >= 0, got %s", i, bi)
			}
		}
		x = cloneInts(c.balances)
	case c.dSet:
		if c.d.LTE(bigmath.Zero()) {
			return nil, wrapInvalid("D must be positive, got %s", c.d)
		}
		// x_i = D // n * 1e18 // p_i, per the reference constructor.
		share := c.d.Quo(bigmath.FromInt64(int64(c.n))).Mul(precision)
		x = make([]bigmath.Int, c.n)
		for i := range x {
			x[i] = share.Quo(p[i])
		}
	default:
		return nil, wrapInvalid("one of WithVirtualD or WithBalances is required")
	}

	if c.fee.IsNegative() {
		return nil, wrapInvalid("fee must be >= 0, got %s", c.fee)
	}
	if c.adminFee.IsNegative() {
		return nil, wrapInvalid("admin_fee must be >= 0, got %s", c.adminFee)
	}

	policy := simconfig.Default()
	if c.policy != nil {
		policy = *c.policy
	}
	if c.metrics != nil {
		SetMetrics(c.metrics)
	}

	pool := &Pool{
		n:             c.n,
		A:             c.a,
		p:             p,
		x:             x,
		fee:           c.fee,
		adminFee:      c.adminFee,
		feeMul:        c.feeMul,
		adminBalances: make([]bigmath.Int, c.n),
		policy:        policy,
	}
	for i := range pool.adminBalances {
		pool.adminBalances[i] = bigmath.Zero()
	}

	if c.tokensSet {
		pool.tokens = c.tokens
	} else {
		d, err := pool.D()
		if err != nil {
			return nil, err
		}
		pool.tokens = d
	}

	return pool, nil
}
