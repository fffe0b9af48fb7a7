package ingest

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/Miauneiro/Convective-Risk-Analyzer/internal/convective"
	"github.com/Miauneiro/Convective-Risk-Analyzer/internal/risk"
)

func igraHeaderLine(id string, year, month, day, hour int) string {
	return fmt.Sprintf("#%-11s %4d %02d %02d %02d 2315  3", id, year, month, day, hour)
}

func igraDataLine(press, gph, temp, rh, dpdp, wdir, wspd int) string {
	return fmt.Sprintf("21    -1 %6d %5d %5d %5d %5d %5d %5d", press, gph, temp, rh, dpdp, wdir, wspd)
}

func TestParseIGRA(t *testing.T) {
	lines := []string{
		igraHeaderLine("ASM00094866", 2026, 1, 14, 12),
		igraDataLine(101300, 113, 210, 640, 70, 150, 51),
		igraDataLine(85000, 1570, 94, 760, 40, 185, 93),
		igraDataLine(70000, 3122, -5, 690, 50, 210, 113),
		igraHeaderLine("ASM00094866", 2026, 1, 15, 0),
		igraDataLine(101300, 113, 200, 640, 60, 160, 51),
		igraDataLine(85000, 1570, -9999, 760, 40, 185, 93), // missing temp, dropped
		igraDataLine(70000, 3122, -10, 690, 55, 210, 113),
	}
	input := strings.Join(lines, "\n")

	soundings, err := ParseIGRA(strings.NewReader(input), 0)
	if err != nil {
		t.Fatalf("ParseIGRA: %v", err)
	}
	if len(soundings) != 2 {
		t.Fatalf("len(soundings) = %d, want 2", len(soundings))
	}

	first := soundings[0]
	if first.StationID != "ASM00094866" {
		t.Errorf("StationID = %q, want ASM00094866", first.StationID)
	}
	want := time.Date(2026, 1, 14, 12, 0, 0, 0, time.UTC)
	if !first.ObservedAt.Equal(want) {
		t.Errorf("ObservedAt = %v, want %v", first.ObservedAt, want)
	}
	if first.Profile.Len() != 3 {
		t.Fatalf("first sounding has %d levels, want 3", first.Profile.Len())
	}
	sfcP, sfcT, sfcTd := first.Profile.Surface()
	if sfcP != 1013.0 {
		t.Errorf("surface pressure = %v hPa, want 1013 (converted from Pa)", sfcP)
	}
	if sfcT != 21.0 {
		t.Errorf("surface temperature = %v, want 21.0 (tenths decoded)", sfcT)
	}
	if sfcTd != 14.0 {
		t.Errorf("surface dewpoint = %v, want 14.0 (21.0 - 7.0 depression)", sfcTd)
	}

	second := soundings[1]
	if second.Profile.Len() != 2 {
		t.Errorf("second sounding has %d levels, want 2 after dropping missing temp", second.Profile.Len())
	}
}

func TestParseIGRA_LimitKeepsMostRecent(t *testing.T) {
	lines := []string{
		igraHeaderLine("ASM00094866", 2026, 1, 14, 12),
		igraDataLine(101300, 113, 210, 640, 70, 150, 51),
		igraDataLine(85000, 1570, 94, 760, 40, 185, 93),
		igraHeaderLine("ASM00094866", 2026, 1, 15, 0),
		igraDataLine(101300, 113, 200, 640, 60, 160, 51),
		igraDataLine(85000, 1570, 90, 760, 45, 185, 93),
	}
	soundings, err := ParseIGRA(strings.NewReader(strings.Join(lines, "\n")), 1)
	if err != nil {
		t.Fatalf("ParseIGRA: %v", err)
	}
	if len(soundings) != 1 {
		t.Fatalf("len(soundings) = %d, want 1", len(soundings))
	}
	want := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	if !soundings[0].ObservedAt.Equal(want) {
		t.Errorf("kept %v, want most recent %v", soundings[0].ObservedAt, want)
	}
}

func TestParseIGRA_NoDecodableSoundings(t *testing.T) {
	if _, err := ParseIGRA(strings.NewReader("garbage\nmore garbage\n"), 0); err == nil {
		t.Error("ParseIGRA on garbage should fail")
	}
}

func TestLatestSynopticTime(t *testing.T) {
	tests := []struct {
		now  time.Time
		want time.Time
	}{
		{
			now:  time.Date(2026, 8, 25, 15, 0, 0, 0, time.UTC),
			want: time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC),
		},
		{
			// 12Z launch not yet available one hour later
			now:  time.Date(2026, 8, 25, 13, 0, 0, 0, time.UTC),
			want: time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC),
		},
		{
			now:  time.Date(2026, 8, 25, 1, 0, 0, 0, time.UTC),
			want: time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC),
		},
	}
	for _, tt := range tests {
		if got := LatestSynopticTime(tt.now); !got.Equal(tt.want) {
			t.Errorf("LatestSynopticTime(%v) = %v, want %v", tt.now, got, tt.want)
		}
	}
}

func TestBuildAnalysis(t *testing.T) {
	lfcP, lfcT := 880.0, 16.2
	indices := &convective.Indices{
		CAPE:               1800,
		CIN:                -20,
		LCLPressure:        910,
		LCLTemperature:     18.5,
		LFCPressure:        &lfcP,
		LFCTemperature:     &lfcT,
		SurfaceTemperature: 28,
		SurfaceDewpoint:    22,
	}
	assessment := risk.Classify(indices)

	analysis, err := BuildAnalysis(42, indices, assessment)
	if err != nil {
		t.Fatalf("BuildAnalysis: %v", err)
	}
	if analysis.SoundingID != 42 {
		t.Errorf("SoundingID = %d, want 42", analysis.SoundingID)
	}
	if !analysis.LFCPressure.Valid || analysis.LFCPressure.Float64 != 880 {
		t.Errorf("LFCPressure = %+v, want 880", analysis.LFCPressure)
	}
	if analysis.ELPressure.Valid {
		t.Errorf("ELPressure = %+v, want NULL for absent EL", analysis.ELPressure)
	}
	if analysis.GeneralRisk != "HIGH" {
		t.Errorf("GeneralRisk = %q, want HIGH", analysis.GeneralRisk)
	}
	if !strings.Contains(analysis.AssessmentJSON, `"general_risk":"HIGH"`) {
		t.Errorf("AssessmentJSON missing general_risk: %s", analysis.AssessmentJSON)
	}
}
