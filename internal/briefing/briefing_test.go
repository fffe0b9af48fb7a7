package briefing

import (
	"strings"
	"testing"
	"time"

	"github.com/Miauneiro/Convective-Risk-Analyzer/internal/convective"
	"github.com/Miauneiro/Convective-Risk-Analyzer/internal/risk"
)

func TestBuildPrompt(t *testing.T) {
	lfc := 850.0
	el := 250.0
	indices := &convective.Indices{
		CAPE:           1800,
		CIN:            -40,
		LCLPressure:    905,
		LCLTemperature: 19.2,
		LFCPressure:    &lfc,
		ELPressure:     &el,
	}
	assessment := risk.Classify(indices)

	observedAt := time.Date(2026, 1, 14, 12, 0, 0, 0, time.UTC)
	prompt := buildPrompt("94866", observedAt, indices, assessment)

	for _, want := range []string{
		"station 94866",
		"2026-01-14 12Z",
		"CAPE: 1800 J/kg",
		"CIN: -40 J/kg",
		"LFC: 850 hPa",
		"EL: 250 hPa",
		"Overall risk: HIGH",
		"potential STRONG",
		"Paragliding: EXTREME (NO-GO)",
		"General aviation: HIGH (NO-GO)",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestBuildPrompt_NoLFC(t *testing.T) {
	indices := &convective.Indices{
		CAPE:        0,
		CIN:         -180,
		LCLPressure: 880,
	}
	assessment := risk.Classify(indices)

	prompt := buildPrompt("94610", time.Now(), indices, assessment)
	if !strings.Contains(prompt, "LFC: none") {
		t.Errorf("prompt should note absent LFC:\n%s", prompt)
	}
	if strings.Contains(prompt, "EL:") {
		t.Errorf("prompt should omit EL when absent:\n%s", prompt)
	}
}

func TestNewGenerator_RequiresAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	if _, err := NewGenerator(); err == nil {
		t.Error("expected error without OPENAI_API_KEY")
	}
}
