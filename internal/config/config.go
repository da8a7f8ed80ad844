package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"dfbasim/internal/community"
	"dfbasim/internal/dfba"
	"dfbasim/internal/fba"
	"dfbasim/internal/kinetics"
	"dfbasim/internal/organism"
)

const (
	DefaultDt        = 0.01
	DefaultDuration  = 16.0
	DefaultTolerance = 1e-6
	DefaultKLa       = 7.5
	DefaultCSat      = 10.0
)

type Config struct {
	Scenario    string             `yaml:"scenario"`
	Integrator  string             `yaml:"integrator"`
	Dt          float64            `yaml:"dt"`
	Duration    float64            `yaml:"duration"`
	Adaptive    bool               `yaml:"adaptive"`
	Tolerance   float64            `yaml:"tolerance"`
	Transfer    *TransferConfig    `yaml:"oxygen_transfer"`
	Organisms   []OrganismConfig   `yaml:"organisms"`
	Metabolites []MetaboliteConfig `yaml:"metabolites"`
}

// MetaboliteConfig declares one shared extracellular pool: its slot name,
// the exchange reaction id organisms trade it through, its initial
// concentration (g/L) and molar mass (g/mmol).
type MetaboliteConfig struct {
	Name      string  `yaml:"name"`
	Exchange  string  `yaml:"exchange"`
	Init      float64 `yaml:"init"`
	MolarMass float64 `yaml:"molar_mass"`
}

type TransferConfig struct {
	Metabolite string  `yaml:"metabolite"`
	KLa        float64 `yaml:"kla"`
	Saturation float64 `yaml:"saturation"`
}

type OrganismConfig struct {
	Name        string         `yaml:"name"`
	Model       string         `yaml:"model"`
	InitBiomass float64        `yaml:"init_biomass"`
	Uptakes     []UptakeConfig `yaml:"uptakes"`
}

type UptakeConfig struct {
	Metabolite string  `yaml:"metabolite"`
	Vmax       float64 `yaml:"vmax"`
	Km         float64 `yaml:"km"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if cfg.Dt == 0 {
		cfg.Dt = DefaultDt
	}
	if cfg.Duration == 0 {
		cfg.Duration = DefaultDuration
	}
	if cfg.Tolerance == 0 {
		cfg.Tolerance = DefaultTolerance
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if c.Dt <= 0 {
		return fmt.Errorf("config: dt must be positive, got %g", c.Dt)
	}
	if c.Duration <= 0 {
		return fmt.Errorf("config: duration must be positive, got %g", c.Duration)
	}
	if len(c.Organisms) == 0 {
		return fmt.Errorf("config: no organisms")
	}
	if len(c.Metabolites) == 0 {
		return fmt.Errorf("config: no metabolites")
	}
	seen := make(map[string]bool)
	for _, m := range c.Metabolites {
		if seen[m.Name] {
			return fmt.Errorf("config: duplicate metabolite %q", m.Name)
		}
		seen[m.Name] = true
	}
	for _, o := range c.Organisms {
		if seen[o.Name] {
			return fmt.Errorf("config: duplicate name %q", o.Name)
		}
		seen[o.Name] = true
	}
	return nil
}

func (c *Config) metaboliteIndex(name string) (int, bool) {
	for j, m := range c.Metabolites {
		if m.Name == name {
			return len(c.Organisms) + j, true
		}
	}
	return 0, false
}

// Build assembles the community right-hand-side and the initial state
// vector. State layout: one biomass slot per organism in declaration
// order, then the shared metabolite slots.
func (c *Config) Build() (*community.Community, dfba.State, error) {
	if err := c.Validate(); err != nil {
		return nil, nil, err
	}

	nOrg := len(c.Organisms)
	labels := make([]string, 0, nOrg+len(c.Metabolites))
	x0 := make(dfba.State, 0, nOrg+len(c.Metabolites))

	orgs := make([]*organism.Organism, 0, nOrg)
	for i, oc := range c.Organisms {
		model, err := fba.Lookup(oc.Model)
		if err != nil {
			return nil, nil, err
		}

		o := &organism.Organism{
			Name:         oc.Name,
			Model:        model,
			Solver:       fba.NewYieldSolver(),
			BiomassIndex: i,
		}

		for _, uc := range oc.Uptakes {
			idx, ok := c.metaboliteIndex(uc.Metabolite)
			if !ok {
				return nil, nil, fmt.Errorf("config: organism %q uptake references unknown metabolite %q", oc.Name, uc.Metabolite)
			}
			var exchange string
			for _, mc := range c.Metabolites {
				if mc.Name == uc.Metabolite {
					exchange = mc.Exchange
				}
			}
			if _, declared := model.LowerBound(exchange); !declared {
				return nil, nil, fmt.Errorf("config: model %q has no exchange %q for metabolite %q", oc.Model, exchange, uc.Metabolite)
			}
			o.Uptakes = append(o.Uptakes, organism.Uptake{
				Exchange:   exchange,
				StateIndex: idx,
				Kinetics:   kinetics.Params{Vmax: uc.Vmax, Km: uc.Km},
			})
		}

		// Every metabolite the model can exchange contributes to its slot,
		// secreted products included.
		for j, mc := range c.Metabolites {
			if _, declared := model.LowerBound(mc.Exchange); !declared {
				continue
			}
			o.Exchanges = append(o.Exchanges, organism.Exchange{
				Reaction:   mc.Exchange,
				StateIndex: nOrg + j,
				MolarMass:  mc.MolarMass,
			})
		}

		orgs = append(orgs, o)
		labels = append(labels, "biomass_"+oc.Name)
		x0 = append(x0, oc.InitBiomass)
	}

	for _, mc := range c.Metabolites {
		labels = append(labels, mc.Name)
		x0 = append(x0, mc.Init)
	}

	var transfer *community.OxygenTransfer
	if c.Transfer != nil {
		idx, ok := c.metaboliteIndex(c.Transfer.Metabolite)
		if !ok {
			return nil, nil, fmt.Errorf("config: oxygen_transfer references unknown metabolite %q", c.Transfer.Metabolite)
		}
		transfer = &community.OxygenTransfer{
			StateIndex: idx,
			Transfer: kinetics.MassTransfer{
				KLa:  c.Transfer.KLa,
				CSat: c.Transfer.Saturation,
			},
		}
	}

	return community.New(labels, transfer, orgs...), x0, nil
}

// SimConfig maps the scenario's integration settings onto the driver config.
func (c *Config) SimConfig() dfba.Config {
	cfg := dfba.DefaultConfig()
	cfg.Dt = c.Dt
	cfg.Duration = c.Duration
	cfg.Adaptive = c.Adaptive
	if c.Tolerance > 0 {
		cfg.Tolerance = c.Tolerance
	}
	return cfg
}
