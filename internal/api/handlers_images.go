package api

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/Miauneiro/Convective-Risk-Analyzer/internal/convective"
	"github.com/Miauneiro/Convective-Risk-Analyzer/internal/imagegen"
	"github.com/Miauneiro/Convective-Risk-Analyzer/internal/sounding"
)

// handleSkewT renders the latest sounding for a station as a skew-T PNG.
func (s *Server) handleSkewT(w http.ResponseWriter, r *http.Request) {
	stationID := r.URL.Query().Get("station")
	if stationID == "" {
		http.Error(w, "station parameter required", http.StatusBadRequest)
		return
	}

	snd, err := s.store.GetLatestSounding(stationID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if snd == nil {
		http.Error(w, "no sounding for station "+stationID, http.StatusNotFound)
		return
	}

	cacheKey := fmt.Sprintf("%s/%d", stationID, snd.ID)
	if data, ok := s.chartCache.Get(cacheKey); ok {
		servePNG(w, data)
		return
	}

	var levels sounding.Levels
	if err := json.Unmarshal([]byte(snd.LevelsJSON), &levels); err != nil {
		http.Error(w, "decode stored levels: "+err.Error(), http.StatusInternalServerError)
		return
	}
	profile, err := sounding.New(levels)
	if err != nil {
		http.Error(w, "stored levels invalid: "+err.Error(), http.StatusInternalServerError)
		return
	}

	indices, err := s.engine.Compute(profile)
	if err != nil {
		http.Error(w, "analyze sounding: "+err.Error(), http.StatusInternalServerError)
		return
	}

	chart := imagegen.ChartData{
		StationID:   stationID,
		ObservedAt:  snd.ObservedAt,
		Pressures:   profile.Pressures(),
		EnvTemps:    profile.Temperatures(),
		Dewpoints:   profile.Dewpoints(),
		ParcelTemps: indices.ParcelProfile,
		LCL:         convective.Level{Pressure: indices.LCLPressure, Temperature: indices.LCLTemperature},
		CAPE:        indices.CAPE,
		CIN:         indices.CIN,
	}
	if indices.LFCPressure != nil && indices.LFCTemperature != nil {
		chart.LFC = &convective.Level{Pressure: *indices.LFCPressure, Temperature: *indices.LFCTemperature}
	}
	if indices.ELPressure != nil && indices.ELTemperature != nil {
		chart.EL = &convective.Level{Pressure: *indices.ELPressure, Temperature: *indices.ELTemperature}
	}

	data, err := imagegen.RenderChart(chart)
	if err != nil {
		log.Printf("api: render chart %s: %v", stationID, err)
		http.Error(w, "chart rendering failed", http.StatusInternalServerError)
		return
	}
	s.chartCache.Set(cacheKey, data)

	servePNG(w, data)
}

func servePNG(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(data)
}
