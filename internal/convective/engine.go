package convective

import (
	"fmt"

	"github.com/Miauneiro/Convective-Risk-Analyzer/internal/sounding"
	"github.com/Miauneiro/Convective-Risk-Analyzer/internal/thermo"
)

// Indices is the result of one surface-based parcel analysis. CIN is
// reported as a non-positive number; the optional level fields are nil when
// the feature does not exist in the profile.
type Indices struct {
	CAPE               float64   `json:"cape"`
	CIN                float64   `json:"cin"`
	LCLPressure        float64   `json:"lcl_pressure"`
	LCLTemperature     float64   `json:"lcl_temperature"`
	LFCPressure        *float64  `json:"lfc_pressure,omitempty"`
	LFCTemperature     *float64  `json:"lfc_temperature,omitempty"`
	ELPressure         *float64  `json:"el_pressure,omitempty"`
	ELTemperature      *float64  `json:"el_temperature,omitempty"`
	SurfaceTemperature float64   `json:"surface_temperature"`
	SurfaceDewpoint    float64   `json:"surface_dewpoint"`
	ParcelProfile      []float64 `json:"parcel_profile"`
}

// Engine computes surface-based parcel indices from a sounding. The zero
// value matches the plain-temperature reference calculation; set
// UseVirtualTemperature to fold humidity into the buoyancy comparison.
type Engine struct {
	UseVirtualTemperature bool
}

// Compute runs the full analysis: LCL, parcel ascent, LFC/EL detection,
// and the CAPE/CIN integrals.
func (e Engine) Compute(p *sounding.Profile) (*Indices, error) {
	if p.Len() < 2 {
		return nil, fmt.Errorf("%w: %d levels, need at least 2", ErrInsufficientData, p.Len())
	}

	lcl, err := FindLCL(p)
	if err != nil {
		return nil, err
	}
	parcel := ascendFrom(p, lcl)

	envTemps := p.Temperatures()
	buoyEnv, buoyParcel := envTemps, parcel
	if e.UseVirtualTemperature {
		buoyEnv, buoyParcel = virtualCurves(p, parcel, lcl)
	}

	lfc, el := FindLFCEL(p.Pressures(), buoyEnv, buoyParcel, lcl)
	cape, cin := Integrate(p.Pressures(), buoyEnv, buoyParcel, lfc, el)

	_, sfcT, sfcTd := p.Surface()
	idx := &Indices{
		CAPE:               cape,
		CIN:                cin,
		LCLPressure:        lcl.Pressure,
		LCLTemperature:     lcl.Temperature,
		SurfaceTemperature: sfcT,
		SurfaceDewpoint:    sfcTd,
		ParcelProfile:      parcel,
	}
	if lfc != nil {
		idx.LFCPressure = ptr(lfc.Pressure)
		idx.LFCTemperature = ptr(lfc.Temperature)
	}
	if el != nil {
		idx.ELPressure = ptr(el.Pressure)
		idx.ELTemperature = ptr(el.Temperature)
	}
	return idx, nil
}

// virtualCurves maps the environment and parcel temperature curves into
// virtual temperature space. The environment carries the mixing ratio
// implied by its dewpoint; the parcel conserves its surface mixing ratio
// below the LCL and is saturated above it.
func virtualCurves(p *sounding.Profile, parcel []float64, lcl Level) (env, par []float64) {
	pressures := p.Pressures()
	envTemps := p.Temperatures()
	dewpoints := p.Dewpoints()
	sfcP, _, sfcTd := p.Surface()

	w0 := thermo.MixingRatio(thermo.SaturationVaporPressure(sfcTd), sfcP)
	env = make([]float64, len(pressures))
	par = make([]float64, len(pressures))
	for i, pres := range pressures {
		we := thermo.MixingRatio(thermo.SaturationVaporPressure(dewpoints[i]), pres)
		env[i] = thermo.VirtualTemperature(envTemps[i], we)

		wp := w0
		if pres < lcl.Pressure {
			wp = thermo.SaturationMixingRatio(parcel[i], pres)
		}
		par[i] = thermo.VirtualTemperature(parcel[i], wp)
	}
	return env, par
}

func ptr(v float64) *float64 { return &v }
