package integrators

import (
	"errors"
	"math"

	"dfbasim/internal/dfba"
)

// ImplicitEuler is a backward-Euler step for stiff right-hand-sides.
// DFBA systems switch flux regimes abruptly (bound saturation, solver
// infeasibility plateaus), which makes explicit methods step-limited; the
// implicit update y = x + dt*f(y) stays stable through the switches.
//
// The nonlinear solve is a damped Newton iteration with a forward-difference
// Jacobian and dense partial-pivot elimination. State dimensions here are
// single digits, so dense linear algebra is the right tool. A step that
// fails to converge is retried as two half steps before reporting
// ErrNewtonDiverged.
type ImplicitEuler struct {
	maxIter     int
	tol         float64
	maxHalvings int
	fdEps       float64
}

func NewImplicitEuler() *ImplicitEuler {
	return &ImplicitEuler{
		maxIter:     25,
		tol:         1e-10,
		maxHalvings: 4,
		fdEps:       1e-7,
	}
}

func (ie *ImplicitEuler) Step(sys dfba.System, x dfba.State, t, dt float64) (dfba.State, error) {
	return ie.step(sys, x, t, dt, 0)
}

func (ie *ImplicitEuler) step(sys dfba.System, x dfba.State, t, dt float64, depth int) (dfba.State, error) {
	y, err := ie.solve(sys, x, t, dt)
	if err == nil {
		return y, nil
	}
	if !errors.Is(err, dfba.ErrNewtonDiverged) || depth >= ie.maxHalvings {
		return nil, err
	}

	mid, err := ie.step(sys, x, t, dt/2, depth+1)
	if err != nil {
		return nil, err
	}
	return ie.step(sys, mid, t+dt/2, dt/2, depth+1)
}

// solve finds y with y - x - dt*f(y, t+dt) = 0.
func (ie *ImplicitEuler) solve(sys dfba.System, x dfba.State, t, dt float64) (dfba.State, error) {
	n := len(x)
	tNew := t + dt

	// Explicit predictor.
	f0, err := sys.Derive(x, t)
	if err != nil {
		return nil, err
	}
	y := make(dfba.State, n)
	for i := 0; i < n; i++ {
		y[i] = x[i] + dt*f0[i]
	}

	g := make([]float64, n)
	jac := make([][]float64, n)
	for i := range jac {
		jac[i] = make([]float64, n)
	}
	yPert := make(dfba.State, n)

	for iter := 0; iter < ie.maxIter; iter++ {
		fy, err := sys.Derive(y, tNew)
		if err != nil {
			return nil, err
		}

		gNorm := 0.0
		for i := 0; i < n; i++ {
			g[i] = y[i] - x[i] - dt*fy[i]
			gNorm += g[i] * g[i]
		}
		if math.Sqrt(gNorm) <= ie.tol*(1+y.Norm()) {
			return y, nil
		}

		// J = I - dt * df/dy, forward differences one column at a time.
		for j := 0; j < n; j++ {
			copy(yPert, y)
			eps := ie.fdEps * (math.Abs(y[j]) + 1)
			yPert[j] += eps
			fp, err := sys.Derive(yPert, tNew)
			if err != nil {
				return nil, err
			}
			for i := 0; i < n; i++ {
				jac[i][j] = -dt * (fp[i] - fy[i]) / eps
				if i == j {
					jac[i][j] += 1
				}
			}
		}

		delta, ok := solveDense(jac, g)
		if !ok {
			return nil, dfba.ErrNewtonDiverged
		}

		// Damped update: back off while the step blows up the state.
		lambda := 1.0
		for k := 0; k < 4; k++ {
			finite := true
			for i := 0; i < n; i++ {
				v := y[i] - lambda*delta[i]
				if math.IsNaN(v) || math.IsInf(v, 0) {
					finite = false
					break
				}
			}
			if finite {
				break
			}
			lambda /= 2
		}
		for i := 0; i < n; i++ {
			y[i] -= lambda * delta[i]
		}
	}

	return nil, dfba.ErrNewtonDiverged
}

// solveDense solves A*x = b in place by Gaussian elimination with partial
// pivoting. A and b are clobbered.
func solveDense(a [][]float64, b []float64) ([]float64, bool) {
	n := len(b)

	for col := 0; col < n; col++ {
		pivot := col
		for row := col + 1; row < n; row++ {
			if math.Abs(a[row][col]) > math.Abs(a[pivot][col]) {
				pivot = row
			}
		}
		if math.Abs(a[pivot][col]) < 1e-14 {
			return nil, false
		}
		a[col], a[pivot] = a[pivot], a[col]
		b[col], b[pivot] = b[pivot], b[col]

		for row := col + 1; row < n; row++ {
			factor := a[row][col] / a[col][col]
			for k := col; k < n; k++ {
				a[row][k] -= factor * a[col][k]
			}
			b[row] -= factor * b[col]
		}
	}

	x := make([]float64, n)
	for row := n - 1; row >= 0; row-- {
		sum := b[row]
		for k := row + 1; k < n; k++ {
			sum -= a[row][k] * x[k]
		}
		x[row] = sum / a[row][row]
	}
	return x, true
}
