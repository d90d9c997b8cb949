// Package simconfig holds the numeric policy knobs that are otherwise fixed
// constants but a host process may legitimately want to override (for
// tests, or for alternate reference implementations with looser/tighter
// convergence requirements). It follows the spf13/viper + spf13/cast idiom
// Cosmos SDK modules use for parameters: keys are bound to a *viper.Viper
// the host already owns, values are coerced with cast, and anything unset
// falls back to Default(). This package owns no file paths, flags, or env
// var names — wiring viper to an actual source is the host's concern; this
// package deliberately stops short of CLI plumbing.
package simconfig

import (
	"fmt"

	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// Policy bundles the iteration caps and tolerances used by the Newton
// invariant loops (C3), the 1-D root finder (C6), and the bounded
// least-squares solver (C7).
type Policy struct {
	// NewtonMaxIterations caps GetD/GetY/GetYD before ErrNumericNotConverged.
	NewtonMaxIterations int

	// RootFinderMaxIterations caps Brent's method before ErrNumericNotConverged.
	RootFinderMaxIterations int

	// RootFinderTolerance is the absolute tolerance on the root (spec
	// requires <= 1 since trade sizes are integers).
	RootFinderTolerance float64

	// LeastSquaresMaxIterations caps the bounded trust-region solve.
	LeastSquaresMaxIterations int

	// LeastSquaresGradTol is the gradient inf-norm termination tolerance.
	LeastSquaresGradTol float64

	// LeastSquaresStepTol is the parameter step norm termination tolerance.
	LeastSquaresStepTol float64

	// OutBalancePercent is the fraction of a coin's balance used to derive
	// the upper trade-size bound in get_in_amount-style seeding (1% in the
	// original).
	OutBalancePercent float64
}

// Default returns the policy implied directly by spec.md: a 255-iteration
// Newton cap, a 200-iteration least-squares cap, and the 1e-15 scipy
// tolerances the original's multipair_optimal_arbitrage uses.
func Default() Policy {
	return Policy{
		NewtonMaxIterations:       255,
		RootFinderMaxIterations:   100,
		RootFinderTolerance:       1.0,
		LeastSquaresMaxIterations: 200,
		LeastSquaresGradTol:       1e-15,
		LeastSquaresStepTol:       1e-15,
		OutBalancePercent:         0.01,
	}
}

// BindKeys registers this package's config keys on v under prefix (e.g.
// "stableswap") so a host can expose them via env/file/flags however it
// likes. It does not read a file or set an env prefix itself.
func BindKeys(v *viper.Viper, prefix string) {
	d := Default()
	v.SetDefault(prefix+".newton_max_iterations", d.NewtonMaxIterations)
	v.SetDefault(prefix+".root_finder_max_iterations", d.RootFinderMaxIterations)
	v.SetDefault(prefix+".root_finder_tolerance", d.RootFinderTolerance)
	v.SetDefault(prefix+".least_squares_max_iterations", d.LeastSquaresMaxIterations)
	v.SetDefault(prefix+".least_squares_grad_tol", d.LeastSquaresGradTol)
	v.SetDefault(prefix+".least_squares_step_tol", d.LeastSquaresStepTol)
	v.SetDefault(prefix+".out_balance_percent", d.OutBalancePercent)
}

// Load reads a Policy from v under prefix, falling back to Default() for
// any key the host hasn't set (BindKeys already arranged for that via
// SetDefault, but Load tolerates a viper instance that never called it).
func Load(v *viper.Viper, prefix string) (Policy, error) {
	d := Default()
	get := func(key string, fallback interface{}) (interface{}, error) {
		if v == nil || !v.IsSet(prefix+"."+key) {
			return fallback, nil
		}
		return v.Get(prefix + "." + key), nil
	}

	p := d
	if raw, err := get("newton_max_iterations", d.NewtonMaxIterations); err == nil {
		n, cerr := cast.ToIntE(raw)
		if cerr != nil {
			return Policy{}, fmt.Errorf("simconfig: newton_max_iterations: %w", cerr)
		}
		p.NewtonMaxIterations = n
	}
	if raw, err := get("root_finder_max_iterations", d.RootFinderMaxIterations); err == nil {
		n, cerr := cast.ToIntE(raw)
		if cerr != nil {
			return Policy{}, fmt.Errorf("simconfig: root_finder_max_iterations: %w", cerr)
		}
		p.RootFinderMaxIterations = n
	}
	if raw, err := get("root_finder_tolerance", d.RootFinderTolerance); err == nil {
		f, cerr := cast.ToFloat64E(raw)
		if cerr != nil {
			return Policy{}, fmt.Errorf("simconfig: root_finder_tolerance: %w", cerr)
		}
		p.RootFinderTolerance = f
	}
	if raw, err := get("least_squares_max_iterations", d.LeastSquaresMaxIterations); err == nil {
		n, cerr := cast.ToIntE(raw)
		if cerr != nil {
			return Policy{}, fmt.Errorf("simconfig: least_squares_max_iterations: %w", cerr)
		}
		p.LeastSquaresMaxIterations = n
	}
	if raw, err := get("least_squares_grad_tol", d.LeastSquaresGradTol); err == nil {
		f, cerr := cast.ToFloat64E(raw)
		if cerr != nil {
			return Policy{}, fmt.Errorf("simconfig: least_squares_grad_tol: %w", cerr)
		}
		p.LeastSquaresGradTol = f
	}
	if raw, err := get("least_squares_step_tol", d.LeastSquaresStepTol); err == nil {
		f, cerr := cast.ToFloat64E(raw)
		if cerr != nil {
			return Policy{}, fmt.Errorf("simconfig: least_squares_step_tol: %w", cerr)
		}
		p.LeastSquaresStepTol = f
	}
	if raw, err := get("out_balance_percent", d.OutBalancePercent); err == nil {
		f, cerr := cast.ToFloat64E(raw)
		if cerr != nil {
			return Policy{}, fmt.Errorf("simconfig: out_balance_percent: %w", cerr)
		}
		p.OutBalancePercent = f
	}
	return p, nil
}
