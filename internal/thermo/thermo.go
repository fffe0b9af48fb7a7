// Package thermo provides the moist-thermodynamic primitives used by the
// parcel ascent solver: saturation vapor pressure, mixing ratio, dry and
// pseudoadiabatic lapse rates, and the virtual temperature correction.
//
// All functions are stateless. Temperatures are in °C, pressures in hPa,
// mixing ratios in kg/kg. Inputs outside the physically valid range
// (non-positive pressure, vapor pressure at or above total pressure)
// return NaN rather than panicking; callers decide how to surface that.
package thermo

import "math"

const (
	// Rd is the specific gas constant for dry air, J/(kg·K).
	Rd = 287.05
	// Cp is the specific heat of dry air at constant pressure, J/(kg·K).
	Cp = 1005.0
	// Kappa is Rd/Cp, the Poisson exponent.
	Kappa = Rd / Cp
	// Lv is the latent heat of vaporization near 0°C, J/kg.
	Lv = 2.501e6
	// Epsilon is the ratio of water vapor to dry air molar mass.
	Epsilon = 0.622
	// ZeroC converts °C to K.
	ZeroC = 273.15

	// moistStepHPa bounds the pressure step of the pseudoadiabat integration.
	moistStepHPa = 2.0
)

// SaturationVaporPressure returns the saturation vapor pressure in hPa for
// a temperature in °C, using Bolton's (1980) empirical fit.
func SaturationVaporPressure(tempC float64) float64 {
	return 6.112 * math.Exp(17.67*tempC/(tempC+243.5))
}

// MixingRatio returns the mass mixing ratio (kg/kg) for a given vapor
// pressure and total pressure, both in hPa. Returns NaN when the vapor
// pressure reaches or exceeds the total pressure.
func MixingRatio(vaporPressure, pressure float64) float64 {
	if pressure <= 0 || vaporPressure < 0 || vaporPressure >= pressure {
		return math.NaN()
	}
	return Epsilon * vaporPressure / (pressure - vaporPressure)
}

// SaturationMixingRatio returns the saturation mixing ratio (kg/kg) at the
// given temperature (°C) and pressure (hPa).
func SaturationMixingRatio(tempC, pressure float64) float64 {
	return MixingRatio(SaturationVaporPressure(tempC), pressure)
}

// DryAdiabaticTemperature lifts (or lowers) a parcel at tempC from
// fromPressure to toPressure along a dry adiabat using Poisson's equation.
func DryAdiabaticTemperature(tempC, fromPressure, toPressure float64) float64 {
	if fromPressure <= 0 || toPressure <= 0 {
		return math.NaN()
	}
	return (tempC+ZeroC)*math.Pow(toPressure/fromPressure, Kappa) - ZeroC
}

// MoistLapseRate returns dT/dp (K/hPa) along a pseudoadiabat at the given
// temperature (°C) and pressure (hPa). Latent heat release makes this
// smaller than the dry rate Kappa·T/p, converging toward it as the
// saturation mixing ratio vanishes at cold temperatures.
func MoistLapseRate(tempC, pressure float64) float64 {
	if pressure <= 0 {
		return math.NaN()
	}
	tk := tempC + ZeroC
	rs := SaturationMixingRatio(tempC, pressure)
	if math.IsNaN(rs) {
		return math.NaN()
	}
	num := Rd*tk + Lv*rs
	den := Cp + (Lv*Lv*rs*Epsilon)/(Rd*tk*tk)
	return num / (pressure * den)
}

// MoistAdiabaticTemperature integrates the pseudoadiabatic lapse rate from
// (tempC, fromPressure) to toPressure with a bounded-step Heun scheme.
// There is no closed form; the step size is fixed so repeated calls on the
// same inputs are bit-identical.
func MoistAdiabaticTemperature(tempC, fromPressure, toPressure float64) float64 {
	if fromPressure <= 0 || toPressure <= 0 {
		return math.NaN()
	}
	if fromPressure == toPressure {
		return tempC
	}

	steps := int(math.Ceil(math.Abs(toPressure-fromPressure) / moistStepHPa))
	if steps < 1 {
		steps = 1
	}
	dp := (toPressure - fromPressure) / float64(steps)

	t, p := tempC, fromPressure
	for i := 0; i < steps; i++ {
		k1 := MoistLapseRate(t, p)
		k2 := MoistLapseRate(t+k1*dp, p+dp)
		if math.IsNaN(k1) || math.IsNaN(k2) {
			return math.NaN()
		}
		t += 0.5 * (k1 + k2) * dp
		p += dp
	}
	return t
}

// VirtualTemperature returns the virtual temperature in °C for a parcel at
// tempC carrying the given mixing ratio (kg/kg). Water vapor lowers air
// density, so Tv is slightly warmer than T for moist air.
func VirtualTemperature(tempC, mixingRatio float64) float64 {
	if mixingRatio < 0 {
		return math.NaN()
	}
	tk := tempC + ZeroC
	return tk*(1+mixingRatio/Epsilon)/(1+mixingRatio) - ZeroC
}
