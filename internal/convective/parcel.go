package convective

import (
	"github.com/Miauneiro/Convective-Risk-Analyzer/internal/sounding"
	"github.com/Miauneiro/Convective-Risk-Analyzer/internal/thermo"
)

// Ascend lifts the surface parcel through every profile level and returns
// its temperature at each profile pressure: dry adiabatic up to the LCL,
// pseudoadiabatic above it.
func Ascend(p *sounding.Profile) ([]float64, Level, error) {
	lcl, err := FindLCL(p)
	if err != nil {
		return nil, Level{}, err
	}
	return ascendFrom(p, lcl), lcl, nil
}

// ascendFrom evaluates the parcel curve given an already-computed LCL. The
// moist segment is integrated once, continuing level to level from the LCL,
// rather than restarted for every output pressure.
func ascendFrom(p *sounding.Profile, lcl Level) []float64 {
	pressures := p.Pressures()
	sfcP, sfcT, _ := p.Surface()

	temps := make([]float64, len(pressures))
	moistT, moistP := lcl.Temperature, lcl.Pressure
	for i, pres := range pressures {
		if pres >= lcl.Pressure {
			temps[i] = thermo.DryAdiabaticTemperature(sfcT, sfcP, pres)
			continue
		}
		moistT = thermo.MoistAdiabaticTemperature(moistT, moistP, pres)
		moistP = pres
		temps[i] = moistT
	}
	return temps
}
