package sounding

import "fmt"

// Quality thresholds applied at the validation layer. The index engine
// itself only requires two levels; these reflect what makes a sounding
// trustworthy for operational use.
const (
	minQualityLevels    = 10
	recommendedLevels   = 20
	surfacePressureHPa  = 900
	upperPressureHPa    = 300
	dryLayerDepressionC = 30
	saturatedMarginC    = 0.1
)

// Quality summarizes the fitness of a profile for analysis. Errors make
// the profile unusable; warnings only lower the score.
type Quality struct {
	Valid       bool     `json:"valid"`
	Score       int      `json:"quality_score"`
	Levels      int      `json:"n_points"`
	MinPressure float64  `json:"min_pressure"`
	MaxPressure float64  `json:"max_pressure"`
	Warnings    []string `json:"warnings,omitempty"`
	Errors      []string `json:"errors,omitempty"`
}

// Validate inspects a profile and returns quality metrics: level count,
// vertical coverage, inversion layers, dewpoint depression. The 0-100
// score loses 10 per warning and 30 per error.
func Validate(p *Profile) Quality {
	q := Quality{Levels: p.Len()}

	pressures := p.Pressures()
	q.MaxPressure = pressures[0]
	q.MinPressure = pressures[len(pressures)-1]

	if q.Levels < minQualityLevels {
		q.Errors = append(q.Errors, fmt.Sprintf("insufficient data points: %d (minimum %d required)", q.Levels, minQualityLevels))
	} else if q.Levels < recommendedLevels {
		q.Warnings = append(q.Warnings, fmt.Sprintf("limited data points: %d (%d+ recommended)", q.Levels, recommendedLevels))
	}

	if q.MaxPressure < surfacePressureHPa {
		q.Warnings = append(q.Warnings, fmt.Sprintf("missing surface data? max pressure %.0f hPa", q.MaxPressure))
	}
	if q.MinPressure > upperPressureHPa {
		q.Warnings = append(q.Warnings, fmt.Sprintf("limited upper air data? min pressure %.0f hPa", q.MinPressure))
	}

	temps := p.Temperatures()
	inversions := 0
	for i := 1; i < len(temps); i++ {
		if temps[i] > temps[i-1] {
			inversions++
		}
	}
	if inversions > 0 {
		q.Warnings = append(q.Warnings, fmt.Sprintf("temperature inversion detected (%d layers)", inversions))
	}

	dewpoints := p.Dewpoints()
	maxDepression := 0.0
	nearSaturated := false
	for i := range temps {
		depression := temps[i] - dewpoints[i]
		if depression > maxDepression {
			maxDepression = depression
		}
		if depression < saturatedMarginC {
			nearSaturated = true
		}
	}
	if maxDepression > dryLayerDepressionC {
		q.Warnings = append(q.Warnings, fmt.Sprintf("very dry layer detected (depression %.1f°C)", maxDepression))
	}
	if nearSaturated {
		q.Warnings = append(q.Warnings, "near-saturated layer present (cloud/fog)")
	}

	q.Score = 100 - 10*len(q.Warnings) - 30*len(q.Errors)
	if q.Score < 0 {
		q.Score = 0
	}
	q.Valid = len(q.Errors) == 0
	return q
}
