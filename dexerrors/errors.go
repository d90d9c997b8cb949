// Package dexerrors registers the sentinel error kinds of the stableswap
// core, following the same errors.Register(codespace, code, msg) idiom used
// throughout Cosmos SDK modules (e.g. x/gamm/types.ErrPoolLocked). Callers
// wrap a sentinel with Wrapf for detail and compare with errors.Is
// downstream.
package dexerrors

import (
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"
)

// Codespace namespaces this module's error codes.
const Codespace = "stableswap"

var (
	// ErrNumericNotConverged is returned when a Newton loop (GetD, GetY,
	// GetYD) exceeds its iteration cap without satisfying the delta-1
	// termination condition. Fatal for the operation; callers must not
	// retry with identical inputs.
	ErrNumericNotConverged = sdkerrors.Register(Codespace, 2, "numeric solver did not converge")

	// ErrInvalidInputs covers non-positive balances, i == j, an
	// out-of-range coin index, an empty amounts vector, or a negative dx.
	ErrInvalidInputs = sdkerrors.Register(Codespace, 3, "invalid inputs")

	// ErrInsufficientLiquidity is returned when an operation would drive a
	// pool balance below zero.
	ErrInsufficientLiquidity = sdkerrors.Register(Codespace, 4, "insufficient liquidity")

	// ErrRootBracketInvalid is returned by the 1-D root finder when
	// f(lo)*f(hi) > 0. The arbitrage driver recovers from this locally.
	ErrRootBracketInvalid = sdkerrors.Register(Codespace, 5, "root bracket invalid")

	// ErrSolverDiverged is returned by the bounded least-squares solver
	// when it exhausts its iteration cap without meeting a termination
	// tolerance. The arbitrage driver recovers from this by reporting the
	// all-zero-trade residual.
	ErrSolverDiverged = sdkerrors.Register(Codespace, 6, "least-squares solver diverged")

	// ErrCancelled is returned when a caller-supplied context is cancelled
	// between iterations of a long-running solve.
	ErrCancelled = sdkerrors.Register(Codespace, 7, "operation cancelled")
)
