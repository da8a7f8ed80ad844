package kinetics

// Params are Michaelis-Menten constants for one kinetically-limited uptake.
// Immutable after construction; shared by reference across evaluations.
type Params struct {
	Vmax float64 // maximum uptake rate, mmol/gDW/h
	Km   float64 // half-saturation constant, g/L
}

// UptakeBound maps a substrate concentration to the lower bound of the
// matching exchange reaction (negative = uptake permitted). At or below
// zero concentration the bound is exactly 0: no uptake from an absent
// substrate, even when the integrator transiently undershoots.
func UptakeBound(c float64, p Params) float64 {
	if c <= 0 {
		return 0
	}
	return -p.Vmax * c / (p.Km + c)
}

// MassTransfer models gas-liquid transfer into the shared liquid phase.
// Its rate enters the concentration derivative directly; it is a property
// of the reactor, not of any organism's uptake capacity.
type MassTransfer struct {
	KLa  float64 // volumetric transfer coefficient, 1/h
	CSat float64 // saturation concentration, g/L
}

// Rate returns kLa*(Csat - c); zero at saturation, negative above it.
func (m MassTransfer) Rate(c float64) float64 {
	return m.KLa * (m.CSat - c)
}
