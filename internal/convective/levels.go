package convective

import (
	"fmt"
	"math"

	"github.com/Miauneiro/Convective-Risk-Analyzer/internal/sounding"
	"github.com/Miauneiro/Convective-Risk-Analyzer/internal/thermo"
)

const (
	// minSearchPressureHPa bounds the LCL search; a surface parcel that has
	// not condensed by 50 hPa never will within this atmosphere.
	minSearchPressureHPa = 50.0
	lclToleranceHPa      = 0.01
	maxBisectIterations  = 100
)

// Level pairs a pressure (hPa) with a temperature (°C).
type Level struct {
	Pressure    float64 `json:"pressure"`
	Temperature float64 `json:"temperature"`
}

// FindLCL locates the lifting condensation level of the surface parcel by
// bisecting on the pressure at which the dry adiabat's saturation mixing
// ratio falls to the parcel's initial mixing ratio. A parcel that is
// already saturated at the surface condenses immediately, so its LCL is
// the surface itself.
func FindLCL(p *sounding.Profile) (Level, error) {
	sfcP, sfcT, sfcTd := p.Surface()
	if sfcTd >= sfcT {
		return Level{Pressure: sfcP, Temperature: sfcT}, nil
	}

	w0 := thermo.MixingRatio(thermo.SaturationVaporPressure(sfcTd), sfcP)
	if math.IsNaN(w0) {
		return Level{}, fmt.Errorf("lcl: %w: surface mixing ratio undefined", ErrConvergence)
	}

	// excess is positive below the LCL and crosses zero at it: an unsaturated
	// rising parcel cools until its saturation mixing ratio meets w0.
	excess := func(pres float64) float64 {
		t := thermo.DryAdiabaticTemperature(sfcT, sfcP, pres)
		return thermo.SaturationMixingRatio(t, pres) - w0
	}

	lo, hi := minSearchPressureHPa, sfcP
	if excess(lo) > 0 {
		return Level{}, fmt.Errorf("lcl: %w: parcel does not saturate above %.0f hPa", ErrConvergence, minSearchPressureHPa)
	}
	for i := 0; i < maxBisectIterations; i++ {
		mid := 0.5 * (lo + hi)
		if hi-lo < lclToleranceHPa {
			return Level{Pressure: mid, Temperature: thermo.DryAdiabaticTemperature(sfcT, sfcP, mid)}, nil
		}
		if excess(mid) >= 0 {
			hi = mid
		} else {
			lo = mid
		}
	}
	return Level{}, fmt.Errorf("lcl: %w after %d bisection steps", ErrConvergence, maxBisectIterations)
}

// FindLFCEL scans the buoyancy excess (parcel minus environment) above the
// LCL for the level of free convection and the equilibrium level. When the
// parcel is already buoyant at the first level above the LCL, the LFC is
// the LCL itself. The EL is the top of the first buoyant layer; a parcel
// still buoyant at the profile top has no EL. Both are nil when the parcel
// never becomes buoyant.
func FindLFCEL(pressures, envTemps, parcelTemps []float64, lcl Level) (lfc, el *Level) {
	n := len(pressures)
	start := 0
	for start < n && pressures[start] >= lcl.Pressure {
		start++
	}
	if start >= n {
		return nil, nil
	}

	excess := func(i int) float64 { return parcelTemps[i] - envTemps[i] }

	scanFrom := start
	if excess(start) > 0 {
		lfc = &Level{Pressure: lcl.Pressure, Temperature: lcl.Temperature}
	} else {
		for j := start; j+1 < n; j++ {
			if excess(j) <= 0 && excess(j+1) > 0 {
				lfc = crossing(pressures, envTemps, excess(j), excess(j+1), j)
				scanFrom = j + 1
				break
			}
		}
		if lfc == nil {
			return nil, nil
		}
	}

	for j := scanFrom; j+1 < n; j++ {
		if excess(j) > 0 && excess(j+1) <= 0 {
			el = crossing(pressures, envTemps, excess(j), excess(j+1), j)
			break
		}
	}
	return lfc, el
}

// crossing interpolates the zero of the buoyancy excess between levels j
// and j+1, linear in ln(p), and returns it with the environment temperature
// interpolated at the same point.
func crossing(pressures, envTemps []float64, dj, dj1 float64, j int) *Level {
	t := dj / (dj - dj1)
	lnP := math.Log(pressures[j]) + t*(math.Log(pressures[j+1])-math.Log(pressures[j]))
	return &Level{
		Pressure:    math.Exp(lnP),
		Temperature: envTemps[j] + t*(envTemps[j+1]-envTemps[j]),
	}
}
