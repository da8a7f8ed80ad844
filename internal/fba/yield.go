package fba

import "math"

// YieldSolver is the built-in optimizer for coarse-grained pathway models.
// It allocates uptake capacity to pathways greedily in declaration order,
// which is optimal for these models because every route has positive
// growth yield and routes are declared best-first per unit of the shared
// oxygen budget. A full stoichiometric back end would replace this behind
// the Solver interface; the coupling scheme does not change.
type YieldSolver struct{}

func NewYieldSolver() *YieldSolver {
	return &YieldSolver{}
}

func (s *YieldSolver) Solve(m *Model, overlay Overlay) (*Solution, error) {
	// Remaining uptake capacity per substrate; |lower bound| with uptake
	// encoded as a negative bound.
	remaining := make(map[string]float64, len(m.Pathways))
	for _, p := range m.Pathways {
		if _, seen := remaining[p.Substrate]; seen {
			continue
		}
		lb, err := m.effectiveLower(p.Substrate, overlay)
		if err != nil {
			return nil, err
		}
		remaining[p.Substrate] = math.Max(0, -lb)
	}

	oxygen := math.Inf(1)
	if m.Oxygen != "" {
		lb, err := m.effectiveLower(m.Oxygen, overlay)
		if err != nil {
			return nil, err
		}
		oxygen = math.Max(0, -lb)
	}

	fluxes := make(map[string]float64)
	growth := 0.0

	for _, p := range m.Pathways {
		f := remaining[p.Substrate]
		if p.OxygenPerUnit > 0 {
			f = math.Min(f, oxygen/p.OxygenPerUnit)
		}
		if f <= 0 {
			continue
		}

		remaining[p.Substrate] -= f
		fluxes[p.Substrate] -= f
		if p.OxygenPerUnit > 0 {
			oxygen -= p.OxygenPerUnit * f
			fluxes[m.Oxygen] -= p.OxygenPerUnit * f
		}
		for id, coeff := range p.Products {
			fluxes[id] += coeff * f
		}
		growth += p.GrowthYield * f
	}

	growth -= m.Maintenance
	if growth < 0 {
		// Maintenance cannot be covered: the physiological boundary
		// condition, reported as infeasible rather than an error.
		return &Solution{Status: StatusInfeasible}, nil
	}

	if m.Nitrogen != "" && m.NPerGrowth > 0 {
		lb, err := m.effectiveLower(m.Nitrogen, overlay)
		if err != nil {
			return nil, err
		}
		nCap := math.Max(0, -lb)
		growth = math.Min(growth, nCap/m.NPerGrowth)
		fluxes[m.Nitrogen] = -growth * m.NPerGrowth
	}

	fluxes[m.Biomass] = growth
	return &Solution{Status: StatusOptimal, Objective: growth, fluxes: fluxes}, nil
}
