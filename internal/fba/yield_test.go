package fba

import (
	"errors"
	"math"
	"testing"
)

func testModel() *Model {
	return NewModel(ModelSpec{
		Name:        "test",
		Biomass:     "BIOMASS",
		Oxygen:      "EX_o2",
		Maintenance: 0.01,
		Pathways: []Pathway{
			{
				Name:          "respiration",
				Substrate:     "EX_s",
				OxygenPerUnit: 2.0,
				GrowthYield:   0.1,
			},
			{
				Name:        "fermentation",
				Substrate:   "EX_s",
				Products:    map[string]float64{"EX_p": 1.5},
				GrowthYield: 0.02,
			},
		},
		LowerBounds: map[string]float64{
			"EX_s":  -10.0,
			"EX_o2": -4.0,
		},
	})
}

func TestYieldSolverOxygenLimitedSplit(t *testing.T) {
	m := testModel()
	s := NewYieldSolver()

	sol, err := s.Solve(m, Overlay{"EX_s": -10, "EX_o2": -4})
	if err != nil {
		t.Fatalf("solve failed: %v", err)
	}
	if sol.Status != StatusOptimal {
		t.Fatalf("expected optimal, got %v", sol.Status)
	}

	// Respiration limited to 4/2 = 2 units; remaining 8 units ferment.
	wantGrowth := 2*0.1 + 8*0.02 - 0.01
	if math.Abs(sol.Objective-wantGrowth) > 1e-12 {
		t.Errorf("expected growth %g, got %g", wantGrowth, sol.Objective)
	}
	if v := sol.Flux("EX_s"); math.Abs(v+10) > 1e-12 {
		t.Errorf("expected substrate flux -10, got %g", v)
	}
	if v := sol.Flux("EX_o2"); math.Abs(v+4) > 1e-12 {
		t.Errorf("expected oxygen flux -4, got %g", v)
	}
	if v := sol.Flux("EX_p"); math.Abs(v-12) > 1e-12 {
		t.Errorf("expected product flux 12, got %g", v)
	}
	if v := sol.Flux("BIOMASS"); math.Abs(v-wantGrowth) > 1e-12 {
		t.Errorf("expected biomass flux %g, got %g", wantGrowth, v)
	}
}

func TestYieldSolverInfeasibleWhenStarved(t *testing.T) {
	m := testModel()
	s := NewYieldSolver()

	sol, err := s.Solve(m, Overlay{"EX_s": 0, "EX_o2": -4})
	if err != nil {
		t.Fatalf("infeasibility must not be an error: %v", err)
	}
	if sol.Status != StatusInfeasible {
		t.Fatalf("expected infeasible, got %v", sol.Status)
	}
	// Fluxes of an infeasible solution read as zero.
	if v := sol.Flux("EX_s"); v != 0 {
		t.Errorf("expected zero flux from infeasible solution, got %g", v)
	}
}

func TestYieldSolverDoesNotMutateModel(t *testing.T) {
	m := testModel()
	before := m.Bounds()

	s := NewYieldSolver()
	if _, err := s.Solve(m, Overlay{"EX_s": -3, "EX_o2": -1}); err != nil {
		t.Fatalf("solve failed: %v", err)
	}
	if _, err := s.Solve(m, Overlay{"EX_s": 0}); err != nil {
		t.Fatalf("solve failed: %v", err)
	}

	after := m.Bounds()
	if len(before) != len(after) {
		t.Fatalf("bound set changed size: %d vs %d", len(before), len(after))
	}
	for id, b := range before {
		if after[id] != b {
			t.Errorf("bound %s changed: %g -> %g", id, b, after[id])
		}
	}
}

func TestYieldSolverUnknownOverlayReaction(t *testing.T) {
	m := testModel()
	s := NewYieldSolver()

	// Overlay keys for reactions the model does not declare are silently
	// irrelevant unless they shadow a pathway substrate; an undeclared
	// substrate is a hard failure.
	bad := NewModel(ModelSpec{
		Name:    "bad",
		Biomass: "BIOMASS",
		Pathways: []Pathway{
			{Name: "p", Substrate: "EX_missing", GrowthYield: 0.1},
		},
	})
	_, err := s.Solve(bad, Overlay{})
	if !errors.Is(err, ErrUnknownReaction) {
		t.Fatalf("expected ErrUnknownReaction, got %v", err)
	}

	if _, err := s.Solve(m, Overlay{"EX_s": -1}); err != nil {
		t.Fatalf("solve failed: %v", err)
	}
}

func TestYieldSolverNitrogenCap(t *testing.T) {
	m := NewModel(ModelSpec{
		Name:       "ncap",
		Biomass:    "BIOMASS",
		Nitrogen:   "EX_n",
		NPerGrowth: 10.0,
		Pathways: []Pathway{
			{Name: "p", Substrate: "EX_s", GrowthYield: 0.1},
		},
		LowerBounds: map[string]float64{
			"EX_s": -10.0,
			"EX_n": -0.5,
		},
	})
	s := NewYieldSolver()

	sol, err := s.Solve(m, Overlay{})
	if err != nil {
		t.Fatalf("solve failed: %v", err)
	}
	// Uncapped growth would be 1.0; nitrogen allows 0.5/10 = 0.05.
	if math.Abs(sol.Objective-0.05) > 1e-12 {
		t.Errorf("expected nitrogen-capped growth 0.05, got %g", sol.Objective)
	}
	if v := sol.Flux("EX_n"); math.Abs(v+0.5) > 1e-12 {
		t.Errorf("expected nitrogen flux -0.5, got %g", v)
	}
}

func TestBuiltinModelsResolve(t *testing.T) {
	for _, name := range []string{"yeast", "acetobacter"} {
		m, err := Lookup(name)
		if err != nil {
			t.Fatalf("lookup %s: %v", name, err)
		}
		if m.Name != name {
			t.Errorf("expected model name %s, got %s", name, m.Name)
		}
	}
	if _, err := Lookup("ecoli"); err == nil {
		t.Error("expected error for unknown model")
	}
}

func TestCoreYeastGrowsAerobically(t *testing.T) {
	m := CoreYeast()
	s := NewYieldSolver()

	sol, err := s.Solve(m, Overlay{
		ExGlucose: -9.5,
		ExOxygen:  -7.8,
		ExEthanol: 0,
	})
	if err != nil {
		t.Fatalf("solve failed: %v", err)
	}
	if sol.Status != StatusOptimal {
		t.Fatalf("expected optimal, got %v", sol.Status)
	}
	if sol.Objective <= 0 {
		t.Errorf("expected positive growth, got %g", sol.Objective)
	}
	if sol.Flux(ExGlucose) >= 0 {
		t.Errorf("expected glucose consumption, got %g", sol.Flux(ExGlucose))
	}
	if sol.Flux(ExEthanol) <= 0 {
		t.Errorf("expected overflow ethanol secretion, got %g", sol.Flux(ExEthanol))
	}
}
