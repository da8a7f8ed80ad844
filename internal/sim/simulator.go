package sim

import (
	"context"
	"fmt"
	"math"

	"dfbasim/internal/dfba"
)

// Simulator drives a System through time. The right-hand-side is treated
// as pure: during adaptive stepping it may be re-evaluated with rejected,
// non-monotonic (t, x) arguments and must not care.
type Simulator struct {
	sys        dfba.System
	integrator dfba.Integrator
	metrics    []dfba.Metric
}

func New(sys dfba.System, integrator dfba.Integrator) *Simulator {
	return &Simulator{
		sys:        sys,
		integrator: integrator,
		metrics:    make([]dfba.Metric, 0),
	}
}

func (s *Simulator) AddMetric(m dfba.Metric) { s.metrics = append(s.metrics, m) }

func (s *Simulator) Run(ctx context.Context, x0 dfba.State, cfg dfba.Config) (*dfba.Result, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}
	if len(x0) != s.sys.StateDim() {
		return nil, fmt.Errorf("initial state has %d slots, system wants %d: %w",
			len(x0), s.sys.StateDim(), dfba.ErrDimensionMismatch)
	}

	capacity := int(cfg.Duration/cfg.Dt) + 1
	result := &dfba.Result{
		States:  make([]dfba.State, 0, capacity),
		Times:   make([]float64, 0, capacity),
		Metrics: make(map[string]float64),
		Errors:  make([]error, 0),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	x := x0.Clone()
	t := 0.0
	dt := cfg.Dt

	result.States = append(result.States, x.Clone())
	result.Times = append(result.Times, t)
	for _, m := range s.metrics {
		m.Observe(x, t)
	}

	step := 0
	for t < cfg.Duration-1e-12 {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		if t+dt > cfg.Duration {
			dt = cfg.Duration - t
		}

		var (
			newX    dfba.State
			dtUsed  float64
			stepErr error
		)
		if cfg.Adaptive {
			newX, dtUsed, dt, stepErr = s.adaptiveStep(x, t, dt, cfg)
		} else {
			dtUsed = dt
			newX, stepErr = s.integrator.Step(s.sys, x, t, dt)
		}

		if stepErr != nil {
			result.Errors = append(result.Errors, dfba.SimError{
				Time: t, Step: step, Message: stepErr.Error(),
			})
			return result, stepErr
		}

		if cfg.ValidateState && !newX.IsValid() {
			err := dfba.SimError{Time: t, Step: step, Message: "invalid state (NaN/Inf)"}
			result.Errors = append(result.Errors, err)
			return result, err
		}

		x = newX
		t += dtUsed
		step++
		result.StepsTaken++

		result.States = append(result.States, x.Clone())
		result.Times = append(result.Times, t)
		for _, m := range s.metrics {
			m.Observe(x, t)
		}
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	return result, nil
}

func (s *Simulator) validateConfig(cfg dfba.Config) error {
	if cfg.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %f", cfg.Dt)
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %f", cfg.Duration)
	}
	if cfg.Adaptive && cfg.Tolerance <= 0 {
		return fmt.Errorf("tolerance must be positive for adaptive stepping")
	}
	return nil
}

// adaptiveStep takes one accepted step, retrying with smaller dt on error
// estimates above tolerance and on hard right-hand-side failures, down to
// MinDt. It returns the new state, the dt actually used, and the dt to try
// next.
func (s *Simulator) adaptiveStep(x dfba.State, t, dt float64, cfg dfba.Config) (dfba.State, float64, float64, error) {
	adaptive, _ := s.integrator.(dfba.AdaptiveIntegrator)

	for {
		if adaptive != nil {
			newX, dtNext, err := adaptive.StepAdaptive(s.sys, x, t, dt, cfg.Tolerance)
			if err == nil {
				// The embedded estimate shrinks the suggestion below the
				// safety factor only when the error exceeded tolerance.
				if dtNext >= 0.9*dt || dt <= cfg.MinDt {
					return newX, dt, clampDt(dtNext, cfg), nil
				}
				dt = math.Max(dtNext, cfg.MinDt)
				continue
			}
			if dt/2 < cfg.MinDt {
				return nil, 0, 0, fmt.Errorf("%w (dt=%g): %w", dfba.ErrStepTooSmall, dt, err)
			}
			dt /= 2
			continue
		}

		// No embedded estimate: step-doubling comparison.
		x1, err := s.integrator.Step(s.sys, x, t, dt)
		if err != nil {
			if dt/2 < cfg.MinDt {
				return nil, 0, 0, fmt.Errorf("%w (dt=%g): %w", dfba.ErrStepTooSmall, dt, err)
			}
			dt /= 2
			continue
		}
		xHalf, err := s.integrator.Step(s.sys, x, t, dt/2)
		if err == nil {
			var x2 dfba.State
			x2, err = s.integrator.Step(s.sys, xHalf, t+dt/2, dt/2)
			if err == nil {
				stepErr := x1.Sub(x2).Norm()
				if stepErr > cfg.Tolerance && dt/2 >= cfg.MinDt {
					dt /= 2
					continue
				}
				dtNext := dt
				if stepErr < cfg.Tolerance/10 {
					dtNext = math.Min(dt*2, cfg.MaxDt)
				}
				return x2, dt, clampDt(dtNext, cfg), nil
			}
		}
		if dt/2 < cfg.MinDt {
			return nil, 0, 0, fmt.Errorf("%w (dt=%g): %w", dfba.ErrStepTooSmall, dt, err)
		}
		dt /= 2
	}
}

func clampDt(dt float64, cfg dfba.Config) float64 {
	if cfg.MaxDt > 0 && dt > cfg.MaxDt {
		return cfg.MaxDt
	}
	if dt < cfg.MinDt {
		return cfg.MinDt
	}
	return dt
}

// RunWithCallback streams accepted states to the callback instead of
// accumulating a Result. Returning false from the callback stops the run.
func (s *Simulator) RunWithCallback(ctx context.Context, x0 dfba.State, cfg dfba.Config, callback func(dfba.State, float64) bool) error {
	if err := s.validateConfig(cfg); err != nil {
		return err
	}

	x := x0.Clone()
	t := 0.0
	dt := cfg.Dt

	for t < cfg.Duration-1e-12 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if !callback(x, t) {
			return nil
		}

		newX, err := s.integrator.Step(s.sys, x, t, dt)
		if err != nil {
			return err
		}
		x = newX
		t += dt

		if cfg.ValidateState && !x.IsValid() {
			return fmt.Errorf("invalid state at t=%.4f: %w", t, dfba.ErrInvalidState)
		}
	}

	return nil
}
