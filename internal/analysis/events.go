package analysis

// Trajectory analysis over stored runs: plain slices in, scalar events out.

// DepletionTime returns the first time a column falls to or below the
// threshold. ok is false when the column never depletes.
func DepletionTime(times []float64, states [][]float64, col int, threshold float64) (float64, bool) {
	for i, s := range states {
		if col >= len(s) {
			continue
		}
		if s[col] <= threshold {
			return times[i], true
		}
	}
	return 0, false
}

// PeakTime returns the time and value of a column's maximum.
func PeakTime(times []float64, states [][]float64, col int) (float64, float64, bool) {
	found := false
	bestT, bestV := 0.0, 0.0
	for i, s := range states {
		if col >= len(s) {
			continue
		}
		if !found || s[col] > bestV {
			bestT, bestV = times[i], s[col]
			found = true
		}
	}
	return bestT, bestV, found
}

// DiauxicShift locates the switch from glucose growth to ethanol growth:
// the first time after glucose depletion at which the ethanol pool starts
// a sustained decline. Sustained means two consecutive declining samples,
// so a single-step wiggle does not register. ok is false when glucose
// never depletes or ethanol never declines afterward.
func DiauxicShift(times []float64, states [][]float64, glucoseCol, ethanolCol int) (float64, bool) {
	depleted, ok := DepletionTime(times, states, glucoseCol, 1e-3)
	if !ok {
		return 0, false
	}

	for i := 1; i < len(states)-1; i++ {
		if times[i] < depleted {
			continue
		}
		if ethanolCol >= len(states[i-1]) || ethanolCol >= len(states[i]) || ethanolCol >= len(states[i+1]) {
			continue
		}
		if states[i][ethanolCol] < states[i-1][ethanolCol] && states[i+1][ethanolCol] < states[i][ethanolCol] {
			return times[i], true
		}
	}
	return 0, false
}
