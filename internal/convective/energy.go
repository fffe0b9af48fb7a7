package convective

import (
	"math"

	"github.com/Miauneiro/Convective-Risk-Analyzer/internal/thermo"
)

// Integrate computes CAPE and CIN (J/kg) by trapezoid integration of the
// buoyancy excess in ln-pressure coordinates: Rd * (Tparcel − Tenv) d(ln p).
// CAPE accumulates between the LFC and the EL, or up to the profile top when
// the EL is absent; with no LFC it is zero. CIN accumulates only the negative
// portions between the surface and the LFC, over the whole column when no
// LFC exists. CAPE is clamped non-negative and CIN non-positive.
func Integrate(pressures, envTemps, parcelTemps []float64, lfc, el *Level) (cape, cin float64) {
	n := len(pressures)
	if n < 2 {
		return 0, 0
	}

	lnP := make([]float64, n)
	excess := make([]float64, n)
	for i := range pressures {
		lnP[i] = math.Log(pressures[i])
		excess[i] = parcelTemps[i] - envTemps[i]
	}

	if lfc != nil {
		lfcLn := math.Log(lfc.Pressure)
		topLn := lnP[n-1]
		elLn := topLn
		if el != nil {
			elLn = math.Log(el.Pressure)
		}
		for i := 0; i+1 < n; i++ {
			a := math.Min(lnP[i], lfcLn)
			b := math.Max(lnP[i+1], elLn)
			if a <= b {
				continue
			}
			da := interpolate(lnP[i], excess[i], lnP[i+1], excess[i+1], a)
			db := interpolate(lnP[i], excess[i], lnP[i+1], excess[i+1], b)
			cape += 0.5 * (da + db) * (a - b)
		}
		cape *= thermo.Rd
		if cape < 0 {
			cape = 0
		}
	}

	cinFloorLn := lnP[n-1]
	if lfc != nil {
		cinFloorLn = math.Log(lfc.Pressure)
	}
	for i := 0; i+1 < n; i++ {
		a := lnP[i]
		b := math.Max(lnP[i+1], cinFloorLn)
		if a <= b {
			continue
		}
		da := interpolate(lnP[i], excess[i], lnP[i+1], excess[i+1], a)
		db := interpolate(lnP[i], excess[i], lnP[i+1], excess[i+1], b)
		cin += negativeArea(a, da, b, db)
	}
	cin *= thermo.Rd
	if cin > 0 {
		cin = 0
	}
	return cape, cin
}

// interpolate evaluates the excess, linear in ln(p), at lnX within the
// segment (lnA, dA)-(lnB, dB).
func interpolate(lnA, dA, lnB, dB, lnX float64) float64 {
	if lnA == lnB {
		return dA
	}
	t := (lnX - lnA) / (lnB - lnA)
	return dA + t*(dB-dA)
}

// negativeArea returns the trapezoid area contributed by the negative part
// of a segment, splitting at the zero crossing when the sign changes.
// a > b in ln(p); the result is <= 0.
func negativeArea(a, da, b, db float64) float64 {
	switch {
	case da <= 0 && db <= 0:
		return 0.5 * (da + db) * (a - b)
	case da <= 0 && db > 0:
		c := a + da/(da-db)*(b-a)
		return 0.5 * da * (a - c)
	case da > 0 && db <= 0:
		c := a + da/(da-db)*(b-a)
		return 0.5 * db * (c - b)
	default:
		return 0
	}
}
