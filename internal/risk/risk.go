// Package risk maps convective indices onto operational risk levels and
// go/no-go guidance for five aviation activities with different tolerances.
// Classification is pure threshold logic; every threshold is an exclusive
// lower bound, so a value lands in the higher bucket only when it strictly
// exceeds the boundary.
package risk

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/Miauneiro/Convective-Risk-Analyzer/internal/convective"
)

// RiskLevel is the ordered classification scale. Higher is worse.
type RiskLevel int

const (
	Minimal RiskLevel = iota + 1
	Low
	Moderate
	High
	Extreme
)

func (r RiskLevel) String() string {
	switch r {
	case Minimal:
		return "MINIMAL"
	case Low:
		return "LOW"
	case Moderate:
		return "MODERATE"
	case High:
		return "HIGH"
	case Extreme:
		return "EXTREME"
	default:
		return fmt.Sprintf("RiskLevel(%d)", int(r))
	}
}

// Score returns the numeric score used for comparisons, 1 through 5.
func (r RiskLevel) Score() int { return int(r) }

// Color returns the presentation color for the level.
func (r RiskLevel) Color() string {
	switch r {
	case Minimal:
		return "#00FF00"
	case Low:
		return "#FFFF00"
	case Moderate:
		return "#FFA500"
	case High:
		return "#FF0000"
	case Extreme:
		return "#8B0000"
	default:
		return "#808080"
	}
}

// MarshalJSON encodes the level as its name.
func (r RiskLevel) MarshalJSON() ([]byte, error) {
	return []byte(`"` + r.String() + `"`), nil
}

// UnmarshalJSON decodes a level name produced by MarshalJSON.
func (r *RiskLevel) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	for lvl := Minimal; lvl <= Extreme; lvl++ {
		if lvl.String() == name {
			*r = lvl
			return nil
		}
	}
	return fmt.Errorf("unknown risk level %q", name)
}

// StakeholderRisk is the assessment for a single activity. Go reports the
// go/no-go decision; Precautions are ordered most important first.
type StakeholderRisk struct {
	Activity    string    `json:"activity"`
	Level       RiskLevel `json:"risk_level"`
	Color       string    `json:"risk_color"`
	Go          bool      `json:"go_no_go"`
	Reasoning   string    `json:"reasoning"`
	Precautions []string  `json:"precautions"`
}

// Assessment is the complete multi-activity risk picture for one sounding.
type Assessment struct {
	GeneralRisk      RiskLevel       `json:"general_risk"`
	GeneralRiskColor string          `json:"general_risk_color"`
	Potential        string          `json:"convective_potential"`
	Paragliding      StakeholderRisk `json:"paragliding"`
	HangGliding      StakeholderRisk `json:"hang_gliding"`
	HotAirBalloon    StakeholderRisk `json:"hot_air_balloon"`
	Gliding          StakeholderRisk `json:"gliding"`
	GeneralAviation  StakeholderRisk `json:"general_aviation"`
}

// Classify maps indices to a full assessment. It is total: any indices
// value, including one with absent LFC/EL, classifies without error. CAPE
// and CIN are consumed as magnitudes regardless of sign convention.
func Classify(indices *convective.Indices) Assessment {
	cape := math.Abs(indices.CAPE)
	cin := math.Abs(indices.CIN)

	pg := assessParagliding(cape, cin)
	return Assessment{
		GeneralRisk:      generalRisk(cape, cin),
		GeneralRiskColor: generalRisk(cape, cin).Color(),
		Potential:        Potential(cape),
		Paragliding:      pg,
		HangGliding:      assessHangGliding(pg),
		HotAirBalloon:    assessHotAirBalloon(cape, cin),
		Gliding:          assessGliding(cape, cin),
		GeneralAviation:  assessGeneralAviation(cape),
	}
}

// Potential returns the coarse convective potential label for a CAPE
// magnitude, independent of any activity's risk level.
func Potential(cape float64) string {
	switch {
	case cape > 2500:
		return "EXTREME"
	case cape > 1000:
		return "STRONG"
	case cape > 300:
		return "MODERATE"
	default:
		return "WEAK"
	}
}

// generalRisk reflects the overall atmosphere: a strong cap suppresses
// convection regardless of CAPE, otherwise CAPE drives the level.
func generalRisk(cape, cin float64) RiskLevel {
	switch {
	case cin > 200:
		return Minimal
	case cin > 100:
		return Low
	}
	switch {
	case cape > 2500:
		return Extreme
	case cape > 1000:
		return High
	case cape > 300:
		return Moderate
	default:
		return Low
	}
}

func assessParagliding(cape, cin float64) StakeholderRisk {
	switch {
	case cin > 200:
		return stakeholder("Paragliding", Minimal, true,
			fmt.Sprintf("Strong cap (CIN: %.0f J/kg) prevents convection. Excellent soaring conditions.", cin),
			"Monitor for cap breakage", "Stay within glide range of landing zones")
	case cin > 50:
		return stakeholder("Paragliding", Low, true,
			fmt.Sprintf("Moderate cap (CIN: %.0f J/kg) limits convection development.", cin),
			"Monitor cloud development", "Land if cumulus develops rapidly", "Avoid areas of convergence")
	case cape > 1000:
		return stakeholder("Paragliding", Extreme, false,
			fmt.Sprintf("DANGEROUS: High CAPE (%.0f J/kg) with weak cap. Thunderstorm development likely.", cape),
			"DO NOT FLY", "Wait for storms to pass", "Check forecast for storm timing")
	case cape > 500:
		return stakeholder("Paragliding", High, false,
			fmt.Sprintf("Moderate CAPE (%.0f J/kg) with no cap. Convection possible.", cape),
			"Fly early morning only", "Land by 11am", "Watch for first cumulus")
	default:
		return stakeholder("Paragliding", Moderate, true,
			fmt.Sprintf("Low CAPE (%.0f J/kg), weak convection expected.", cape),
			"Monitor cloud development", "Avoid overdevelopment areas", "Land if conditions deteriorate")
	}
}

// assessHangGliding derives from paragliding, one level more tolerant:
// higher wing loading handles turbulence better.
func assessHangGliding(pg StakeholderRisk) StakeholderRisk {
	level, decision := pg.Level, pg.Go
	switch pg.Level {
	case High:
		level, decision = Moderate, true
	case Moderate:
		level, decision = Low, true
	}
	s := stakeholder("Hang Gliding", level, decision,
		fmt.Sprintf("Similar to paragliding but higher wing loading provides more stability. %s", pg.Reasoning))
	s.Precautions = pg.Precautions
	return s
}

// assessHotAirBalloon is the most conservative: balloons cannot out-maneuver
// convection, so CAPE alone drives the no-go bands.
func assessHotAirBalloon(cape, cin float64) StakeholderRisk {
	switch {
	case cape > 500:
		return stakeholder("Hot Air Balloon", Extreme, false,
			fmt.Sprintf("CAPE %.0f J/kg too high. Balloons cannot escape convective conditions.", cape),
			"DO NOT FLY", "Sunrise flights only", "Check forecast carefully")
	case cape > 200:
		return stakeholder("Hot Air Balloon", High, false,
			fmt.Sprintf("CAPE %.0f J/kg presents risk. Limited manoeuvrability in convection.", cape),
			"Sunrise only", "Land before 8am", "Avoid afternoon operations")
	case cin > 100:
		return stakeholder("Hot Air Balloon", Minimal, true,
			fmt.Sprintf("Low CAPE (%.0f J/kg) with cap. Good conditions.", cape),
			"Standard operating procedures", "Monitor surface heating")
	default:
		return stakeholder("Hot Air Balloon", Low, true,
			fmt.Sprintf("Low CAPE (%.0f J/kg). Acceptable conditions.", cape),
			"Fly early", "Monitor cumulus development", "Land if thermals strengthen")
	}
}

// assessGliding wants moderate convection: thermals are the fuel, storms
// are the hazard.
func assessGliding(cape, cin float64) StakeholderRisk {
	switch {
	case cape > 2500:
		return stakeholder("Gliding (Sailplanes)", High, false,
			fmt.Sprintf("Extreme CAPE (%.0f J/kg). Storm development likely.", cape),
			"Morning flights only", "Land before convection develops", "Have alternate landing sites")
	case cape > 1000:
		if cin > 100 {
			return stakeholder("Gliding (Sailplanes)", Low, true,
				fmt.Sprintf("Good CAPE (%.0f J/kg) with cap control. Excellent XC conditions.", cape),
				"Monitor cap breakage", "Track storm development", "Land away from storms")
		}
		return stakeholder("Gliding (Sailplanes)", Moderate, true,
			fmt.Sprintf("High CAPE (%.0f J/kg) without cap. Good lift but storm risk.", cape),
			"Fly early", "Land by early afternoon", "Monitor radar", "20km storm clearance")
	case cape > 300:
		return stakeholder("Gliding (Sailplanes)", Low, true,
			fmt.Sprintf("Moderate CAPE (%.0f J/kg). Good thermal conditions.", cape),
			"Standard XC precautions", "Monitor convection development")
	default:
		return stakeholder("Gliding (Sailplanes)", Minimal, true,
			fmt.Sprintf("Low CAPE (%.0f J/kg). Weak thermals, blue day possible.", cape),
			"Expect weak lift", "Plan for lower altitudes", "Ridge/wave soaring may be better")
	}
}

func assessGeneralAviation(cape float64) StakeholderRisk {
	switch {
	case cape > 1500:
		return stakeholder("General Aviation (VFR)", High, false,
			fmt.Sprintf("High CAPE (%.0f J/kg). Embedded thunderstorms likely.", cape),
			"IFR flight plan", "Storm avoidance equipment required", "20nm storm clearance", "Consider delaying flight")
	case cape > 500:
		return stakeholder("General Aviation (VFR)", Moderate, true,
			fmt.Sprintf("Moderate CAPE (%.0f J/kg). Convection possible.", cape),
			"File VFR flight plan", "Monitor weather radar", "Maintain VMC", "Have alternate routes")
	default:
		return stakeholder("General Aviation (VFR)", Low, true,
			fmt.Sprintf("Low CAPE (%.0f J/kg). Good VFR conditions.", cape),
			"Standard VFR operations", "Monitor METAR/TAF")
	}
}

func stakeholder(activity string, level RiskLevel, decision bool, reasoning string, precautions ...string) StakeholderRisk {
	return StakeholderRisk{
		Activity:    activity,
		Level:       level,
		Color:       level.Color(),
		Go:          decision,
		Reasoning:   reasoning,
		Precautions: precautions,
	}
}
