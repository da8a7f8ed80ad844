package fba

import (
	"errors"
	"fmt"
)

// Status classifies a solve outcome. Only two cases are distinguished:
// optimal and infeasible. Infeasibility is an expected physiological
// boundary condition (growth-limiting substrate exhausted), never an error.
type Status int

const (
	StatusOptimal Status = iota
	StatusInfeasible
)

func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "optimal"
	case StatusInfeasible:
		return "infeasible"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// ErrUnknownReaction indicates a bound or flux lookup against a reaction
// the model does not declare. This is a hard failure, not infeasibility.
var ErrUnknownReaction = errors.New("fba: unknown reaction id")

// Overlay is a per-call set of lower-bound overrides on exchange reactions,
// keyed by reaction id. It is rebuilt from the current extracellular state
// on every right-hand-side evaluation and never persisted, so bound updates
// from one organism's step can never leak into another's: the underlying
// Model descriptor is immutable and shared read-only.
type Overlay map[string]float64

// Solution is the outcome of one solve. Created fresh per call and
// discarded after the derivative contribution is extracted.
type Solution struct {
	Status    Status
	Objective float64 // growth rate, 1/h
	fluxes    map[string]float64
}

// Flux returns the flux through reaction id. Valid only for an optimal
// solution; on an infeasible one every flux reads as zero.
func (s *Solution) Flux(id string) float64 {
	return s.fluxes[id]
}

// Solver turns a model descriptor plus a bounds overlay into a solution.
// Solve must be pure: no retained state between calls, no mutation of the
// model. A returned error means the solver itself failed (malformed model,
// numerical breakdown) and propagates as a hard failure.
type Solver interface {
	Solve(m *Model, overlay Overlay) (*Solution, error)
}

// Pathway is one coarse-grained catabolic route: a substrate exchange
// consumed at some flux, the oxygen that flux demands, the products it
// secretes, and the growth it yields. Pathways are tried in declaration
// order, so routes with higher growth yield per unit oxygen go first.
type Pathway struct {
	Name          string
	Substrate     string             // exchange id consumed
	OxygenPerUnit float64            // mmol O2 per mmol substrate (0 = anaerobic route)
	Products      map[string]float64 // exchange id -> mmol secreted per mmol substrate
	GrowthYield   float64            // growth (1/h) per unit substrate flux (mmol/gDW/h)
}

// Model is an immutable descriptor of one organism's metabolic capability.
// Base exchange bounds are fixed at construction; per-step kinetic limits
// arrive as an Overlay, so a shared Model can serve thousands of
// integration steps without any mutation.
type Model struct {
	Name        string
	Biomass     string // reaction id the growth flux is reported under
	Oxygen      string // oxygen exchange id, "" for a strict anaerobe
	Nitrogen    string // nitrogen-source exchange id, "" if not modeled
	NPerGrowth  float64
	Maintenance float64 // non-growth maintenance, 1/h growth-equivalent
	Pathways    []Pathway

	lower map[string]float64
	upper map[string]float64
}

// ModelSpec is the construction-time description of a Model.
type ModelSpec struct {
	Name        string
	Biomass     string
	Oxygen      string
	Nitrogen    string
	NPerGrowth  float64
	Maintenance float64
	Pathways    []Pathway
	LowerBounds map[string]float64
	UpperBounds map[string]float64
}

func NewModel(spec ModelSpec) *Model {
	m := &Model{
		Name:        spec.Name,
		Biomass:     spec.Biomass,
		Oxygen:      spec.Oxygen,
		Nitrogen:    spec.Nitrogen,
		NPerGrowth:  spec.NPerGrowth,
		Maintenance: spec.Maintenance,
		Pathways:    spec.Pathways,
		lower:       make(map[string]float64, len(spec.LowerBounds)),
		upper:       make(map[string]float64, len(spec.UpperBounds)),
	}
	for id, b := range spec.LowerBounds {
		m.lower[id] = b
	}
	for id, b := range spec.UpperBounds {
		m.upper[id] = b
	}
	return m
}

// LowerBound returns the base lower bound of an exchange reaction.
func (m *Model) LowerBound(id string) (float64, bool) {
	b, ok := m.lower[id]
	return b, ok
}

// Bounds returns a copy of all base lower bounds, for isolation checks
// and reporting.
func (m *Model) Bounds() map[string]float64 {
	out := make(map[string]float64, len(m.lower))
	for id, b := range m.lower {
		out[id] = b
	}
	return out
}

// effectiveLower resolves the lower bound of an exchange under an overlay.
func (m *Model) effectiveLower(id string, overlay Overlay) (float64, error) {
	if b, ok := overlay[id]; ok {
		if _, declared := m.lower[id]; !declared {
			return 0, fmt.Errorf("%w: %s (overlay)", ErrUnknownReaction, id)
		}
		return b, nil
	}
	b, ok := m.lower[id]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownReaction, id)
	}
	return b, nil
}
