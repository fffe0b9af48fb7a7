// Package sounding holds the vertical atmospheric profile model and the
// loaders that build it from University of Wyoming text and CSV formats.
package sounding

import (
	"errors"
	"fmt"
)

// ErrDomain marks physically invalid sounding data: non-positive or
// non-monotonic pressure, or dewpoint exceeding temperature.
var ErrDomain = errors.New("physically invalid sounding data")

// supersaturationEpsilon is how far dewpoint may exceed temperature (°C)
// before a level is rejected. Equality is the saturation boundary and valid.
const supersaturationEpsilon = 0.1

// Levels carries the raw per-level arrays used to construct a Profile.
// Pressure, Temperature and Dewpoint are required and must be the same
// length; the rest are optional and may be nil.
type Levels struct {
	Pressure    []float64 `json:"pressure"`             // hPa, surface first, strictly decreasing
	Temperature []float64 `json:"temperature"`          // °C
	Dewpoint    []float64 `json:"dewpoint"`             // °C
	Height      []float64 `json:"height,omitempty"`     // m
	WindDir     []float64 `json:"wind_dir,omitempty"`   // degrees
	WindSpeed   []float64 `json:"wind_speed,omitempty"` // knots
}

// Profile is a validated, ordered vertical sounding. It is immutable after
// construction: New copies its input arrays, and accessors return internal
// slices that callers must not modify.
type Profile struct {
	pressure    []float64
	temperature []float64
	dewpoint    []float64
	height      []float64
	windDir     []float64
	windSpeed   []float64
}

// New validates the raw arrays and constructs an immutable Profile.
// Violations of the pressure/dewpoint invariants return ErrDomain.
func New(data Levels) (*Profile, error) {
	n := len(data.Pressure)
	if n == 0 {
		return nil, fmt.Errorf("%w: no levels", ErrDomain)
	}
	if len(data.Temperature) != n || len(data.Dewpoint) != n {
		return nil, fmt.Errorf("%w: pressure, temperature and dewpoint must have equal length (%d, %d, %d)",
			ErrDomain, n, len(data.Temperature), len(data.Dewpoint))
	}
	for _, opt := range [][]float64{data.Height, data.WindDir, data.WindSpeed} {
		if opt != nil && len(opt) != n {
			return nil, fmt.Errorf("%w: optional array length %d does not match %d levels", ErrDomain, len(opt), n)
		}
	}

	for i := 0; i < n; i++ {
		if data.Pressure[i] <= 0 {
			return nil, fmt.Errorf("%w: non-positive pressure %.1f hPa at level %d", ErrDomain, data.Pressure[i], i)
		}
		if i > 0 && data.Pressure[i] >= data.Pressure[i-1] {
			return nil, fmt.Errorf("%w: pressure not strictly decreasing at level %d (%.1f >= %.1f)",
				ErrDomain, i, data.Pressure[i], data.Pressure[i-1])
		}
		if data.Dewpoint[i] > data.Temperature[i]+supersaturationEpsilon {
			return nil, fmt.Errorf("%w: dewpoint %.1f°C exceeds temperature %.1f°C at level %d",
				ErrDomain, data.Dewpoint[i], data.Temperature[i], i)
		}
	}

	return &Profile{
		pressure:    clone(data.Pressure),
		temperature: clone(data.Temperature),
		dewpoint:    clone(data.Dewpoint),
		height:      clone(data.Height),
		windDir:     clone(data.WindDir),
		windSpeed:   clone(data.WindSpeed),
	}, nil
}

func clone(src []float64) []float64 {
	if src == nil {
		return nil
	}
	dst := make([]float64, len(src))
	copy(dst, src)
	return dst
}

// Data returns the profile's arrays as a Levels value, for serialization.
// The slices are the profile's own; treat them as read-only.
func (p *Profile) Data() Levels {
	return Levels{
		Pressure:    p.pressure,
		Temperature: p.temperature,
		Dewpoint:    p.dewpoint,
		Height:      p.height,
		WindDir:     p.windDir,
		WindSpeed:   p.windSpeed,
	}
}

// Len returns the number of levels.
func (p *Profile) Len() int { return len(p.pressure) }

// Surface returns the level-0 pressure, temperature and dewpoint.
func (p *Profile) Surface() (pressure, temperature, dewpoint float64) {
	return p.pressure[0], p.temperature[0], p.dewpoint[0]
}

// Pressures returns the pressure levels in hPa. Read-only.
func (p *Profile) Pressures() []float64 { return p.pressure }

// Temperatures returns the environmental temperatures in °C. Read-only.
func (p *Profile) Temperatures() []float64 { return p.temperature }

// Dewpoints returns the dewpoint temperatures in °C. Read-only.
func (p *Profile) Dewpoints() []float64 { return p.dewpoint }

// Heights returns the geopotential heights in m, or nil. Read-only.
func (p *Profile) Heights() []float64 { return p.height }

// WindDirections returns wind directions in degrees, or nil. Read-only.
func (p *Profile) WindDirections() []float64 { return p.windDir }

// WindSpeeds returns wind speeds in knots, or nil. Read-only.
func (p *Profile) WindSpeeds() []float64 { return p.windSpeed }
