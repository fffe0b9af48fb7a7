package risk

import (
	"encoding/json"
	"testing"

	"github.com/Miauneiro/Convective-Risk-Analyzer/internal/convective"
)

func indices(cape, cin float64) *convective.Indices {
	return &convective.Indices{
		CAPE:               cape,
		CIN:                cin,
		LCLPressure:        900,
		LCLTemperature:     15,
		SurfaceTemperature: 25,
		SurfaceDewpoint:    18,
	}
}

func TestPotential_Boundaries(t *testing.T) {
	tests := []struct {
		cape float64
		want string
	}{
		{0, "WEAK"},
		{300, "WEAK"},
		{300.1, "MODERATE"},
		{1000, "MODERATE"}, // exclusive lower bound: exactly 1000 is not STRONG
		{1000.1, "STRONG"},
		{2500, "STRONG"},
		{2500.1, "EXTREME"},
	}
	for _, tt := range tests {
		if got := Potential(tt.cape); got != tt.want {
			t.Errorf("Potential(%v) = %q, want %q", tt.cape, got, tt.want)
		}
	}
}

func TestClassify_StrongCapScenario(t *testing.T) {
	// Strong cap, minimal energy: safe for everything.
	a := Classify(indices(50, -150))

	if a.GeneralRisk != Low {
		t.Errorf("general risk = %v, want LOW", a.GeneralRisk)
	}
	if !a.Paragliding.Go {
		t.Error("paragliding should be GO under a strong cap")
	}
	if a.Paragliding.Level != Low {
		t.Errorf("paragliding level = %v, want LOW", a.Paragliding.Level)
	}
	if !a.HotAirBalloon.Go {
		t.Error("hot air balloon should be GO with CAPE 50")
	}
}

func TestClassify_HighEnergyScenario(t *testing.T) {
	// CAPE 1800 with no meaningful cap.
	a := Classify(indices(1800, -20))

	if a.GeneralRisk != High {
		t.Errorf("general risk = %v, want HIGH", a.GeneralRisk)
	}
	if a.Potential != "STRONG" {
		t.Errorf("potential = %q, want STRONG", a.Potential)
	}
	if a.HotAirBalloon.Go || a.HotAirBalloon.Level != Extreme {
		t.Errorf("balloon = %v/%v, want EXTREME/NO-GO", a.HotAirBalloon.Level, a.HotAirBalloon.Go)
	}
	if a.GeneralAviation.Go || a.GeneralAviation.Level != High {
		t.Errorf("general aviation = %v/%v, want HIGH/NO-GO", a.GeneralAviation.Level, a.GeneralAviation.Go)
	}
	if a.Paragliding.Go || a.Paragliding.Level != Extreme {
		t.Errorf("paragliding = %v/%v, want EXTREME/NO-GO", a.Paragliding.Level, a.Paragliding.Go)
	}
}

func TestClassify_CINSignAgnostic(t *testing.T) {
	neg := Classify(indices(50, -150))
	pos := Classify(indices(50, 150))
	if neg.GeneralRisk != pos.GeneralRisk || neg.Paragliding.Level != pos.Paragliding.Level {
		t.Errorf("classification depends on CIN sign: %v vs %v", neg.GeneralRisk, pos.GeneralRisk)
	}
}

func TestClassify_GeneralRiskMonotonicInCAPE(t *testing.T) {
	capes := []float64{0, 100, 299, 301, 500, 999, 1001, 1500, 2499, 2501, 4000}
	prev := 0
	for _, cape := range capes {
		score := Classify(indices(cape, -10)).GeneralRisk.Score()
		if score < prev {
			t.Errorf("general risk score decreased at CAPE %v: %d < %d", cape, score, prev)
		}
		prev = score
	}
}

func TestClassify_HangGlidingOneLevelTolerant(t *testing.T) {
	tests := []struct {
		name       string
		cape, cin  float64
		pgLevel    RiskLevel
		hgLevel    RiskLevel
		hgDecision bool
	}{
		{"paragliding HIGH downgrades", 700, 0, High, Moderate, true},
		{"paragliding MODERATE downgrades", 100, 0, Moderate, Low, true},
		{"paragliding EXTREME stays", 1500, 0, Extreme, Extreme, false},
		{"paragliding MINIMAL stays", 50, 250, Minimal, Minimal, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := Classify(indices(tt.cape, tt.cin))
			if a.Paragliding.Level != tt.pgLevel {
				t.Fatalf("paragliding = %v, want %v", a.Paragliding.Level, tt.pgLevel)
			}
			if a.HangGliding.Level != tt.hgLevel {
				t.Errorf("hang gliding = %v, want %v", a.HangGliding.Level, tt.hgLevel)
			}
			if a.HangGliding.Go != tt.hgDecision {
				t.Errorf("hang gliding go = %v, want %v", a.HangGliding.Go, tt.hgDecision)
			}
		})
	}
}

func TestClassify_GlidingCapControl(t *testing.T) {
	capped := Classify(indices(1500, -150))
	if capped.Gliding.Level != Low || !capped.Gliding.Go {
		t.Errorf("capped gliding = %v/%v, want LOW/GO", capped.Gliding.Level, capped.Gliding.Go)
	}
	uncapped := Classify(indices(1500, -10))
	if uncapped.Gliding.Level != Moderate || !uncapped.Gliding.Go {
		t.Errorf("uncapped gliding = %v/%v, want MODERATE/GO", uncapped.Gliding.Level, uncapped.Gliding.Go)
	}
}

func TestRiskLevel(t *testing.T) {
	if Minimal.Score() != 1 || Extreme.Score() != 5 {
		t.Errorf("scores = %d..%d, want 1..5", Minimal.Score(), Extreme.Score())
	}
	if !(Minimal < Low && Low < Moderate && Moderate < High && High < Extreme) {
		t.Error("risk levels are not ordered")
	}
	if Extreme.Color() != "#8B0000" || Minimal.Color() != "#00FF00" {
		t.Errorf("unexpected colors: %s, %s", Extreme.Color(), Minimal.Color())
	}
}

func TestAssessmentJSON(t *testing.T) {
	a := Classify(indices(1800, -20))
	out, err := json.Marshal(a)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded["general_risk"] != "HIGH" {
		t.Errorf("general_risk = %v, want HIGH", decoded["general_risk"])
	}
	pg, ok := decoded["paragliding"].(map[string]any)
	if !ok {
		t.Fatal("paragliding block missing")
	}
	if pg["risk_level"] != "EXTREME" {
		t.Errorf("paragliding risk_level = %v, want EXTREME", pg["risk_level"])
	}
	if pg["go_no_go"] != false {
		t.Errorf("paragliding go_no_go = %v, want false", pg["go_no_go"])
	}

	var roundTrip Assessment
	if err := json.Unmarshal(out, &roundTrip); err != nil {
		t.Fatalf("round trip: %v", err)
	}
	if roundTrip.GeneralRisk != High {
		t.Errorf("round-trip general risk = %v, want HIGH", roundTrip.GeneralRisk)
	}

	var lvl RiskLevel
	if err := json.Unmarshal([]byte(`"SPICY"`), &lvl); err == nil {
		t.Error("unknown level name should fail to decode")
	}
}
