package config

import "sort"

// Molar masses, g/mmol.
const (
	mwGlucose = 0.18016
	mwOxygen  = 0.032
	mwEthanol = 0.04607
)

func standardMetabolites(oxygenInit float64) []MetaboliteConfig {
	return []MetaboliteConfig{
		{Name: "glucose", Exchange: "EX_glc", Init: 10.0, MolarMass: mwGlucose},
		{Name: "oxygen", Exchange: "EX_o2", Init: oxygenInit, MolarMass: mwOxygen},
		{Name: "ethanol", Exchange: "EX_etoh", Init: 0.0, MolarMass: mwEthanol},
	}
}

func yeastOrganism(initBiomass float64) OrganismConfig {
	return OrganismConfig{
		Name:        "yeast",
		Model:       "yeast",
		InitBiomass: initBiomass,
		Uptakes: []UptakeConfig{
			{Metabolite: "glucose", Vmax: 10.0, Km: 0.5},
			{Metabolite: "oxygen", Vmax: 8.0, Km: 0.2},
			{Metabolite: "ethanol", Vmax: 2.0, Km: 0.5},
		},
	}
}

func acetobacterOrganism(initBiomass float64) OrganismConfig {
	return OrganismConfig{
		Name:        "acetobacter",
		Model:       "acetobacter",
		InitBiomass: initBiomass,
		Uptakes: []UptakeConfig{
			{Metabolite: "ethanol", Vmax: 6.0, Km: 0.5},
			{Metabolite: "oxygen", Vmax: 10.0, Km: 0.2},
		},
	}
}

// Scenarios are the built-in experiment setups.
var Scenarios = map[string]*Config{
	"aerobic-batch": {
		Scenario:    "aerobic-batch",
		Integrator:  "implicit",
		Dt:          0.05,
		Duration:    16.0,
		Adaptive:    true,
		Tolerance:   1e-6,
		Transfer:    &TransferConfig{Metabolite: "oxygen", KLa: DefaultKLa, Saturation: DefaultCSat},
		Metabolites: standardMetabolites(10.0),
		Organisms:   []OrganismConfig{yeastOrganism(0.01)},
	},
	"crossfeed": {
		Scenario:    "crossfeed",
		Integrator:  "implicit",
		Dt:          0.05,
		Duration:    24.0,
		Adaptive:    true,
		Tolerance:   1e-6,
		Transfer:    &TransferConfig{Metabolite: "oxygen", KLa: DefaultKLa, Saturation: DefaultCSat},
		Metabolites: standardMetabolites(10.0),
		Organisms:   []OrganismConfig{
			yeastOrganism(0.01),
			acetobacterOrganism(0.01),
		},
	},
	"microaerobic": {
		Scenario:    "microaerobic",
		Integrator:  "implicit",
		Dt:          0.05,
		Duration:    20.0,
		Adaptive:    true,
		Tolerance:   1e-6,
		Transfer:    &TransferConfig{Metabolite: "oxygen", KLa: 1.0, Saturation: DefaultCSat},
		Metabolites: standardMetabolites(2.0),
		Organisms:   []OrganismConfig{yeastOrganism(0.01)},
	},
}

// GetScenario returns a copy of a built-in scenario, so caller edits
// (CLI flag overrides) never reach the shared preset.
func GetScenario(name string) *Config {
	cfg, ok := Scenarios[name]
	if !ok {
		return nil
	}

	out := *cfg
	out.Metabolites = append([]MetaboliteConfig(nil), cfg.Metabolites...)
	out.Organisms = make([]OrganismConfig, len(cfg.Organisms))
	for i, oc := range cfg.Organisms {
		out.Organisms[i] = oc
		out.Organisms[i].Uptakes = append([]UptakeConfig(nil), oc.Uptakes...)
	}
	if cfg.Transfer != nil {
		tr := *cfg.Transfer
		out.Transfer = &tr
	}
	return &out
}

func ListScenarios() []string {
	names := make([]string, 0, len(Scenarios))
	for name := range Scenarios {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
