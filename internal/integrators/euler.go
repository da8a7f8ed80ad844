package integrators

import "dfbasim/internal/dfba"

type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(sys dfba.System, x dfba.State, t float64, dt float64) (dfba.State, error) {
	dx, err := sys.Derive(x, t)
	if err != nil {
		return nil, err
	}
	result := make(dfba.State, len(x))
	for i := range x {
		result[i] = x[i] + dt*dx[i]
	}
	return result, nil
}
