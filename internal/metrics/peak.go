package metrics

import "dfbasim/internal/dfba"

// Peak tracks the maximum a concentration slot reaches, e.g. the ethanol
// excursion before the cross-feeder catches up.
type Peak struct {
	name  string
	index int
	max   float64
	seen  bool
}

func NewPeak(name string, index int) *Peak {
	return &Peak{name: name, index: index}
}

func (p *Peak) Name() string { return p.name }

func (p *Peak) Observe(x dfba.State, t float64) {
	if p.index >= len(x) {
		return
	}
	if !p.seen || x[p.index] > p.max {
		p.max = x[p.index]
		p.seen = true
	}
}

func (p *Peak) Value() float64 {
	return p.max
}

func (p *Peak) Reset() {
	p.max = 0
	p.seen = false
}

// FinalValue reports the last observed value of a slot, e.g. final biomass.
type FinalValue struct {
	name  string
	index int
	last  float64
}

func NewFinalValue(name string, index int) *FinalValue {
	return &FinalValue{name: name, index: index}
}

func (f *FinalValue) Name() string { return f.name }

func (f *FinalValue) Observe(x dfba.State, t float64) {
	if f.index < len(x) {
		f.last = x[f.index]
	}
}

func (f *FinalValue) Value() float64 {
	return f.last
}

func (f *FinalValue) Reset() {
	f.last = 0
}
