// Package dfba provides core primitives for dynamic flux-balance analysis.
//
// The package defines the fundamental interfaces and types for time-stepped
// simulation of metabolic community dynamics:
//
//   - [State]: concentration vector (per-organism biomass, then shared
//     extracellular metabolites, g/L)
//   - [System]: interface for the community right-hand-side (dC/dt = f(C, t))
//   - [Integrator]: numerical integrator interface
//   - [Metric]: trajectory metric observed at accepted steps
//
// # Example
//
//	com, x0, _ := cfg.Build()
//	integ := integrators.NewImplicitEuler()
//	s := sim.New(com, integ)
//	result, _ := s.Run(ctx, x0, dfba.DefaultConfig())
//
// # Thread Safety
//
// Simulator instances are NOT thread-safe. A System must be pure in its
// (state, time) arguments; if evaluations are ever parallelized, each
// organism's solver state must be exclusively owned by one evaluation.
package dfba
