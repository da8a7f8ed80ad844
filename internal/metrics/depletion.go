package metrics

import (
	"math"

	"dfbasim/internal/dfba"
)

// Depletion records the first time a tracked concentration slot falls to
// or below a threshold. Value is +Inf while the slot never depletes.
type Depletion struct {
	name      string
	index     int
	threshold float64
	when      float64
	seen      bool
}

func NewDepletion(name string, index int, threshold float64) *Depletion {
	return &Depletion{
		name:      name,
		index:     index,
		threshold: threshold,
		when:      math.Inf(1),
	}
}

func (d *Depletion) Name() string { return d.name }

func (d *Depletion) Observe(x dfba.State, t float64) {
	if d.seen || d.index >= len(x) {
		return
	}
	if x[d.index] <= d.threshold {
		d.when = t
		d.seen = true
	}
}

func (d *Depletion) Value() float64 {
	return d.when
}

func (d *Depletion) Reset() {
	d.when = math.Inf(1)
	d.seen = false
}
