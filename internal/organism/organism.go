package organism

import (
	"fmt"

	"dfbasim/internal/dfba"
	"dfbasim/internal/fba"
	"dfbasim/internal/kinetics"
)

// Uptake binds one kinetically-limited exchange reaction to a shared
// extracellular concentration slot. The exchange's lower bound is
// recomputed from that slot on every evaluation.
type Uptake struct {
	Exchange   string
	StateIndex int
	Kinetics   kinetics.Params
}

// Exchange binds an exchange flux to the concentration slot it feeds.
// MolarMass converts mmol/gDW/h flux into g/L/h once scaled by biomass.
type Exchange struct {
	Reaction   string
	StateIndex int
	MolarMass  float64 // g/mmol
}

// Organism is one community member: an immutable model descriptor, a
// solver, and the bindings from its exchanges to the shared state vector.
type Organism struct {
	Name         string
	Model        *fba.Model
	Solver       fba.Solver
	BiomassIndex int
	Uptakes      []Uptake
	Exchanges    []Exchange
}

// maxIndex reports the highest state slot this organism touches.
func (o *Organism) maxIndex() int {
	max := o.BiomassIndex
	for _, u := range o.Uptakes {
		if u.StateIndex > max {
			max = u.StateIndex
		}
	}
	for _, e := range o.Exchanges {
		if e.StateIndex > max {
			max = e.StateIndex
		}
	}
	return max
}

// Contribute performs one single-organism DFBA step: map the current
// concentrations to exchange bounds, solve, and add this organism's terms
// into dx. The bounds live only in a per-call overlay, so the shared model
// descriptor is untouched on every exit path. An infeasible solve
// contributes exactly zero and is not an error; a solver failure
// propagates hard.
func (o *Organism) Contribute(x dfba.State, t float64, dx dfba.State) error {
	if o.maxIndex() >= len(x) {
		return fmt.Errorf("%s: %w", o.Name, dfba.ErrDimensionMismatch)
	}

	overlay := make(fba.Overlay, len(o.Uptakes))
	for _, u := range o.Uptakes {
		overlay[u.Exchange] = kinetics.UptakeBound(x[u.StateIndex], u.Kinetics)
	}

	sol, err := o.Solver.Solve(o.Model, overlay)
	if err != nil {
		return fmt.Errorf("%s: %w: %w", o.Name, dfba.ErrSolverFailure, err)
	}
	if sol.Status != fba.StatusOptimal {
		return nil
	}

	biomass := x[o.BiomassIndex]
	if biomass < 0 {
		// Transient integrator undershoot; a negative population must not
		// flip the sign of every flux term.
		biomass = 0
	}

	// Exponential-growth coupling on the biomass slot, flux*biomass*molar
	// mass on each metabolite slot. Additive so community members stack.
	dx[o.BiomassIndex] += sol.Objective * biomass
	for _, e := range o.Exchanges {
		dx[e.StateIndex] += sol.Flux(e.Reaction) * biomass * e.MolarMass
	}
	return nil
}
