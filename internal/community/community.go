package community

import (
	"dfbasim/internal/dfba"
	"dfbasim/internal/kinetics"
	"dfbasim/internal/organism"
)

// OxygenTransfer aerates one shared concentration slot. It belongs to the
// liquid phase, not to any organism, and is applied exactly once per
// evaluation regardless of how many members respire.
type OxygenTransfer struct {
	StateIndex int
	Transfer   kinetics.MassTransfer
}

// Community is the combined right-hand-side for a multi-species vessel.
// Every member reads the same input state; each writes its own biomass
// slot and adds (never overwrites) its exchange terms into the shared
// metabolite slots, so member order cannot change the result.
type Community struct {
	organisms []*organism.Organism
	oxygen    *OxygenTransfer
	labels    []string
}

func New(labels []string, oxygen *OxygenTransfer, orgs ...*organism.Organism) *Community {
	return &Community{
		organisms: orgs,
		oxygen:    oxygen,
		labels:    labels,
	}
}

func (c *Community) StateDim() int {
	return len(c.labels)
}

func (c *Community) Labels() []string {
	out := make([]string, len(c.labels))
	copy(out, c.labels)
	return out
}

func (c *Community) Organisms() []*organism.Organism {
	return c.organisms
}

// Derive evaluates dC/dt at (x, t). Pure: the only inputs are the
// arguments, the immutable model descriptors, and the kinetic constants.
func (c *Community) Derive(x dfba.State, t float64) (dfba.State, error) {
	if len(x) != len(c.labels) {
		return nil, dfba.ErrDimensionMismatch
	}

	dx := make(dfba.State, len(x))

	if c.oxygen != nil {
		dx[c.oxygen.StateIndex] += c.oxygen.Transfer.Rate(x[c.oxygen.StateIndex])
	}

	for _, o := range c.organisms {
		if err := o.Contribute(x, t, dx); err != nil {
			return nil, err
		}
	}
	return dx, nil
}
