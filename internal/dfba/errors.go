package dfba

import "errors"

// Domain errors for simulation operations.
var (
	// ErrInvalidState indicates a state vector with invalid dimensions or values.
	ErrInvalidState = errors.New("dfba: invalid state (NaN or Inf detected)")

	// ErrDimensionMismatch indicates mismatched state/system dimensions.
	ErrDimensionMismatch = errors.New("dfba: dimension mismatch between state and system")

	// ErrStepTooSmall indicates adaptive timestep became too small.
	ErrStepTooSmall = errors.New("dfba: adaptive timestep below minimum")

	// ErrSolverFailure indicates the flux solver failed hard (not mere
	// infeasibility, which is handled as a zero-flux contribution).
	ErrSolverFailure = errors.New("dfba: flux solver failure")

	// ErrNewtonDiverged indicates the implicit step's Newton iteration
	// did not converge.
	ErrNewtonDiverged = errors.New("dfba: newton iteration diverged")
)
