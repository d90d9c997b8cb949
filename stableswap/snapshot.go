package stableswap

import "github.com/curvesim/stableswap/bigmath"

// WithSnapshot runs f against the pool and unconditionally restores the
// pool's mutable state — balances, admin balances, and token supply — to
// what it was before f ran, regardless of whether f returns an error or
// panics. This mirrors the Cosmos SDK's CacheContext idiom (a keeper
// speculatively applies state changes inside a child context and only
// commits them on success); here no call site commits, since its callers
// (the arb package's trade probes and PeekExchange below) only ever want to
// probe a hypothetical trade's effect, never to keep it.
//
// WithSnapshot nests: an inner WithSnapshot restores to the state at its
// own entry, which is whatever the outer WithSnapshot most recently
// restored or the caller most recently mutated.
func (p *Pool) WithSnapshot(f func(*Pool) error) (err error) {
	x := cloneInts(p.x)
	adminBalances := cloneInts(p.adminBalances)
	tokens := p.tokens

	defer func() {
		p.x = x
		p.adminBalances = adminBalances
		p.tokens = tokens
	}()

	return f(p)
}

// PeekExchange reports the (dy, fee) Exchange(i, j, dx) would produce
// without mutating the pool, by running Exchange inside a snapshot.
func (p *Pool) PeekExchange(i, j int, dx bigmath.Int) (dy, fee bigmath.Int, err error) {
	snapErr := p.WithSnapshot(func(pp *Pool) error {
		var e error
		dy, fee, e = pp.Exchange(i, j, dx)
		return e
	})
	return dy, fee, snapErr
}
