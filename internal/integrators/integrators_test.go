package integrators

import (
	"errors"
	"math"
	"testing"

	"dfbasim/internal/dfba"
)

type decay struct {
	k float64
}

func (d decay) Derive(x dfba.State, t float64) (dfba.State, error) {
	return dfba.State{-d.k * x[0]}, nil
}

func (d decay) StateDim() int    { return 1 }
func (d decay) Labels() []string { return []string{"c"} }

type oscillator struct{}

func (oscillator) Derive(x dfba.State, t float64) (dfba.State, error) {
	return dfba.State{x[1], -x[0]}, nil
}

func (oscillator) StateDim() int    { return 2 }
func (oscillator) Labels() []string { return []string{"a", "b"} }

type failing struct{}

func (failing) Derive(x dfba.State, t float64) (dfba.State, error) {
	return nil, errors.New("rhs failure")
}

func (failing) StateDim() int    { return 1 }
func (failing) Labels() []string { return []string{"c"} }

func TestRK4Accuracy(t *testing.T) {
	sys := oscillator{}
	integ := NewRK4()

	x := dfba.State{1.0, 0.0}
	dt := 0.01
	steps := 100

	var err error
	for i := 0; i < steps; i++ {
		x, err = integ.Step(sys, x, float64(i)*dt, dt)
		if err != nil {
			t.Fatalf("step failed: %v", err)
		}
	}

	expectedX := math.Cos(float64(steps) * dt)
	expectedV := -math.Sin(float64(steps) * dt)

	if math.Abs(x[0]-expectedX) > 1e-4 {
		t.Errorf("position error too large: got %.6f, expected %.6f", x[0], expectedX)
	}
	if math.Abs(x[1]-expectedV) > 1e-4 {
		t.Errorf("velocity error too large: got %.6f, expected %.6f", x[1], expectedV)
	}
}

func TestRK45AdaptiveStep(t *testing.T) {
	integ := NewRK45()
	x0 := dfba.State{1.0, 0.0}

	x, newDt, err := integ.StepAdaptive(oscillator{}, x0, 0, 0.1, 1e-8)
	if err != nil {
		t.Fatalf("StepAdaptive returned error: %v", err)
	}
	if !x.IsValid() {
		t.Error("StepAdaptive produced invalid state")
	}
	if newDt <= 0 {
		t.Errorf("StepAdaptive returned invalid dt: %f", newDt)
	}
}

func TestRK45LongRunStaysValid(t *testing.T) {
	integ := NewRK45()
	x := dfba.State{1.0, 0.0}
	dt := 0.01

	var err error
	for i := 0; i < 1000; i++ {
		x, err = integ.Step(oscillator{}, x, float64(i)*dt, dt)
		if err != nil {
			t.Fatalf("step failed: %v", err)
		}
	}
	if !x.IsValid() {
		t.Error("RK45 produced invalid state")
	}
}

func TestImplicitEulerStiffStability(t *testing.T) {
	// dt*k = 50: explicit Euler oscillates with exploding amplitude; the
	// implicit step must decay monotonically.
	sys := decay{k: 1000}
	dt := 0.05

	x := dfba.State{1.0}
	integ := NewImplicitEuler()
	var err error
	for i := 0; i < 20; i++ {
		prev := x[0]
		x, err = integ.Step(sys, x, float64(i)*dt, dt)
		if err != nil {
			t.Fatalf("implicit step failed: %v", err)
		}
		if math.Abs(x[0]) > math.Abs(prev) {
			t.Fatalf("implicit step grew on stiff decay: %g -> %g", prev, x[0])
		}
	}
	if math.Abs(x[0]) > 1e-6 {
		t.Errorf("expected near-zero state after stiff decay, got %g", x[0])
	}

	xe := dfba.State{1.0}
	euler := NewEuler()
	for i := 0; i < 20; i++ {
		xe, err = euler.Step(sys, xe, float64(i)*dt, dt)
		if err != nil {
			t.Fatalf("euler step failed: %v", err)
		}
	}
	if math.Abs(xe[0]) < 1 {
		t.Errorf("expected explicit Euler to diverge at dt*k=50, got %g", xe[0])
	}
}

func TestImplicitEulerAccuracy(t *testing.T) {
	sys := decay{k: 1}
	dt := 0.01

	x := dfba.State{1.0}
	integ := NewImplicitEuler()
	var err error
	for i := 0; i < 100; i++ {
		x, err = integ.Step(sys, x, float64(i)*dt, dt)
		if err != nil {
			t.Fatalf("step failed: %v", err)
		}
	}

	if math.Abs(x[0]-math.Exp(-1)) > 5e-3 {
		t.Errorf("expected ~exp(-1)=%.6f, got %.6f", math.Exp(-1), x[0])
	}
}

func TestStepPropagatesRHSError(t *testing.T) {
	x := dfba.State{1.0}

	steppers := []dfba.Integrator{NewEuler(), NewRK4(), NewRK45(), NewImplicitEuler()}
	for _, integ := range steppers {
		if _, err := integ.Step(failing{}, x, 0, 0.01); err == nil {
			t.Errorf("%T: expected error from failing right-hand-side", integ)
		}
	}
}

func TestSolveDense(t *testing.T) {
	a := [][]float64{
		{2, 1},
		{1, 3},
	}
	b := []float64{5, 10}

	x, ok := solveDense(a, b)
	if !ok {
		t.Fatal("solveDense reported singular matrix")
	}
	if math.Abs(x[0]-1) > 1e-12 || math.Abs(x[1]-3) > 1e-12 {
		t.Errorf("expected [1 3], got %v", x)
	}

	singular := [][]float64{
		{1, 2},
		{2, 4},
	}
	if _, ok := solveDense(singular, []float64{1, 2}); ok {
		t.Error("expected singular matrix to be rejected")
	}
}

func BenchmarkRK4(b *testing.B) {
	sys := oscillator{}
	integ := NewRK4()
	x := dfba.State{1.0, 0.0}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x, _ = integ.Step(sys, x, 0, 0.01)
	}
}

func BenchmarkImplicitEuler(b *testing.B) {
	sys := decay{k: 100}
	integ := NewImplicitEuler()
	x := dfba.State{1.0}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x, _ = integ.Step(sys, x, 0, 0.01)
	}
}
