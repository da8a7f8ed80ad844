package fba

import "fmt"

// Exchange reaction ids shared by the built-in models. Sign convention:
// a negative lower bound on an exchange permits uptake.
const (
	ExGlucose  = "EX_glc"
	ExOxygen   = "EX_o2"
	ExEthanol  = "EX_etoh"
	ExAmmonium = "EX_nh4"

	BiomassYeast       = "BIOMASS_yeast"
	BiomassAcetobacter = "BIOMASS_acetobacter"
)

// CoreYeast is a coarse-grained S. cerevisiae: respiratory growth on
// glucose while oxygen lasts, overflow fermentation to ethanol beyond
// respiratory capacity, and aerobic ethanol respiration once glucose is
// gone (diauxic shift). Yields are per mmol of substrate flux.
func CoreYeast() *Model {
	return NewModel(ModelSpec{
		Name:        "yeast",
		Biomass:     BiomassYeast,
		Oxygen:      ExOxygen,
		Nitrogen:    ExAmmonium,
		NPerGrowth:  6.0,
		Maintenance: 0.01,
		Pathways: []Pathway{
			{
				Name:          "glucose respiration",
				Substrate:     ExGlucose,
				OxygenPerUnit: 6.0,
				GrowthYield:   0.065,
			},
			{
				Name:        "glucose fermentation",
				Substrate:   ExGlucose,
				Products:    map[string]float64{ExEthanol: 1.7},
				GrowthYield: 0.015,
			},
			{
				Name:          "ethanol respiration",
				Substrate:     ExEthanol,
				OxygenPerUnit: 3.0,
				GrowthYield:   0.02,
			},
		},
		LowerBounds: map[string]float64{
			ExGlucose:  -10.0,
			ExOxygen:   -8.0,
			ExEthanol:  -2.0,
			ExAmmonium: -5.0,
		},
		UpperBounds: map[string]float64{
			ExGlucose:  0.0,
			ExOxygen:   0.0,
			ExEthanol:  1000.0,
			ExAmmonium: 0.0,
		},
	})
}

// CoreAcetobacter is a coarse-grained obligate-aerobe ethanol consumer,
// the cross-feeding partner in the two-species community.
func CoreAcetobacter() *Model {
	return NewModel(ModelSpec{
		Name:        "acetobacter",
		Biomass:     BiomassAcetobacter,
		Oxygen:      ExOxygen,
		Nitrogen:    ExAmmonium,
		NPerGrowth:  6.0,
		Maintenance: 0.005,
		Pathways: []Pathway{
			{
				Name:          "ethanol respiration",
				Substrate:     ExEthanol,
				OxygenPerUnit: 1.5,
				GrowthYield:   0.025,
			},
		},
		LowerBounds: map[string]float64{
			ExOxygen:   -12.0,
			ExEthanol:  -8.0,
			ExAmmonium: -5.0,
		},
		UpperBounds: map[string]float64{
			ExOxygen:   0.0,
			ExEthanol:  0.0,
			ExAmmonium: 0.0,
		},
	})
}

// Lookup resolves a model name from configuration.
func Lookup(name string) (*Model, error) {
	switch name {
	case "yeast":
		return CoreYeast(), nil
	case "acetobacter":
		return CoreAcetobacter(), nil
	default:
		return nil, fmt.Errorf("fba: unknown model %q", name)
	}
}
