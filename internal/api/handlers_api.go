package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Miauneiro/Convective-Risk-Analyzer/internal/convective"
	"github.com/Miauneiro/Convective-Risk-Analyzer/internal/models"
	"github.com/Miauneiro/Convective-Risk-Analyzer/internal/risk"
	"github.com/Miauneiro/Convective-Risk-Analyzer/internal/sounding"
)

const maxAnalyzeBody = 1 << 20

func (s *Server) handleStations(w http.ResponseWriter, r *http.Request) {
	stations, err := s.store.GetActiveStations()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stations)
}

// AnalysisView is the JSON shape for a stored analysis.
type AnalysisView struct {
	StationID          string          `json:"station_id"`
	ObservedAt         time.Time       `json:"observed_at"`
	Source             string          `json:"source"`
	CAPE               float64         `json:"cape"`
	CIN                float64         `json:"cin"`
	LCLPressure        float64         `json:"lcl_pressure"`
	LCLTemperature     float64         `json:"lcl_temperature"`
	LFCPressure        *float64        `json:"lfc_pressure,omitempty"`
	LFCTemperature     *float64        `json:"lfc_temperature,omitempty"`
	ELPressure         *float64        `json:"el_pressure,omitempty"`
	ELTemperature      *float64        `json:"el_temperature,omitempty"`
	SurfaceTemperature float64         `json:"surface_temperature"`
	SurfaceDewpoint    float64         `json:"surface_dewpoint"`
	Assessment         json.RawMessage `json:"assessment"`
}

func analysisView(a *models.Analysis, stationID, source string, observedAt time.Time) AnalysisView {
	v := AnalysisView{
		StationID:          stationID,
		ObservedAt:         observedAt,
		Source:             source,
		CAPE:               a.CAPE,
		CIN:                a.CIN,
		LCLPressure:        a.LCLPressure,
		LCLTemperature:     a.LCLTemperature,
		SurfaceTemperature: a.SurfaceTemperature,
		SurfaceDewpoint:    a.SurfaceDewpoint,
		Assessment:         json.RawMessage(a.AssessmentJSON),
	}
	if a.LFCPressure.Valid {
		v.LFCPressure = &a.LFCPressure.Float64
	}
	if a.LFCTemperature.Valid {
		v.LFCTemperature = &a.LFCTemperature.Float64
	}
	if a.ELPressure.Valid {
		v.ELPressure = &a.ELPressure.Float64
	}
	if a.ELTemperature.Valid {
		v.ELTemperature = &a.ELTemperature.Float64
	}
	return v
}

func (s *Server) handleLatest(w http.ResponseWriter, r *http.Request) {
	stationID := r.URL.Query().Get("station")
	if stationID == "" {
		http.Error(w, "station parameter required", http.StatusBadRequest)
		return
	}

	analysis, err := s.store.GetLatestAnalysis(stationID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if analysis == nil {
		http.Error(w, "no analysis for station "+stationID, http.StatusNotFound)
		return
	}
	snd, err := s.store.GetSounding(analysis.SoundingID)
	if err != nil || snd == nil {
		http.Error(w, "sounding lookup failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(analysisView(analysis, snd.StationID, snd.Source, snd.ObservedAt))
}

// HistoryPoint is one row of /api/history, enough to chart a CAPE trend.
type HistoryPoint struct {
	ObservedAt  time.Time `json:"observed_at"`
	CAPE        float64   `json:"cape"`
	CIN         float64   `json:"cin"`
	GeneralRisk string    `json:"general_risk"`
	Potential   string    `json:"potential"`
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	stationID := r.URL.Query().Get("station")
	if stationID == "" {
		http.Error(w, "station parameter required", http.StatusBadRequest)
		return
	}
	days := 7
	if d := r.URL.Query().Get("days"); d != "" {
		n, err := strconv.Atoi(d)
		if err != nil || n < 1 || n > 365 {
			http.Error(w, "days must be 1-365", http.StatusBadRequest)
			return
		}
		days = n
	}

	end := time.Now().UTC()
	start := end.AddDate(0, 0, -days)
	records, err := s.store.GetAnalysisHistory(stationID, start, end)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	points := make([]HistoryPoint, 0, len(records))
	for _, rec := range records {
		points = append(points, HistoryPoint{
			ObservedAt:  rec.ObservedAt,
			CAPE:        rec.Analysis.CAPE,
			CIN:         rec.Analysis.CIN,
			GeneralRisk: rec.Analysis.GeneralRisk,
			Potential:   rec.Analysis.Potential,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(points)
}

// AnalyzeResponse is returned by POST /api/analyze.
type AnalyzeResponse struct {
	Quality    sounding.Quality    `json:"quality"`
	Indices    *convective.Indices `json:"indices"`
	Assessment risk.Assessment     `json:"assessment"`
}

// handleAnalyze computes indices for a sounding supplied in the request
// body: JSON level arrays when the content type is application/json,
// otherwise raw Wyoming or CSV text.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxAnalyzeBody))
	if err != nil {
		http.Error(w, "read body: "+err.Error(), http.StatusBadRequest)
		return
	}

	var profile *sounding.Profile
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var levels sounding.Levels
		if err := json.Unmarshal(body, &levels); err != nil {
			http.Error(w, "decode levels: "+err.Error(), http.StatusBadRequest)
			return
		}
		profile, err = sounding.New(levels)
	} else {
		profile, err = sounding.Parse(string(body))
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	indices, err := s.engine.Compute(profile)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, convective.ErrInsufficientData) || errors.Is(err, sounding.ErrDomain) {
			status = http.StatusBadRequest
		}
		http.Error(w, err.Error(), status)
		return
	}

	resp := AnalyzeResponse{
		Quality:    sounding.Validate(profile),
		Indices:    indices,
		Assessment: risk.Classify(indices),
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (s *Server) handleBriefing(w http.ResponseWriter, r *http.Request) {
	if s.briefer == nil {
		http.Error(w, "briefing service unavailable", http.StatusServiceUnavailable)
		return
	}
	stationID := r.URL.Query().Get("station")
	if stationID == "" {
		http.Error(w, "station parameter required", http.StatusBadRequest)
		return
	}

	analysis, err := s.store.GetLatestAnalysis(stationID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if analysis == nil {
		http.Error(w, "no analysis for station "+stationID, http.StatusNotFound)
		return
	}
	snd, err := s.store.GetSounding(analysis.SoundingID)
	if err != nil || snd == nil {
		http.Error(w, "sounding lookup failed", http.StatusInternalServerError)
		return
	}

	cacheKey := fmt.Sprintf("%s/%d", stationID, analysis.SoundingID)
	if text, ok := s.briefCache.Get(cacheKey); ok {
		writeBriefing(w, stationID, snd.ObservedAt, string(text))
		return
	}

	var assessment risk.Assessment
	if err := json.Unmarshal([]byte(analysis.AssessmentJSON), &assessment); err != nil {
		http.Error(w, "decode assessment: "+err.Error(), http.StatusInternalServerError)
		return
	}
	indices := indicesFromAnalysis(analysis)

	ctx, cancel := context.WithTimeout(r.Context(), time.Minute)
	defer cancel()

	text, err := s.briefer.Briefing(ctx, stationID, snd.ObservedAt, indices, assessment)
	if err != nil {
		log.Printf("api: briefing %s: %v", stationID, err)
		http.Error(w, "briefing generation failed", http.StatusServiceUnavailable)
		return
	}
	s.briefCache.Set(cacheKey, []byte(text))

	writeBriefing(w, stationID, snd.ObservedAt, text)
}

func writeBriefing(w http.ResponseWriter, stationID string, observedAt time.Time, text string) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"station_id":  stationID,
		"observed_at": observedAt,
		"briefing":    text,
	})
}

func indicesFromAnalysis(a *models.Analysis) *convective.Indices {
	indices := &convective.Indices{
		CAPE:               a.CAPE,
		CIN:                a.CIN,
		LCLPressure:        a.LCLPressure,
		LCLTemperature:     a.LCLTemperature,
		SurfaceTemperature: a.SurfaceTemperature,
		SurfaceDewpoint:    a.SurfaceDewpoint,
	}
	if a.LFCPressure.Valid {
		indices.LFCPressure = &a.LFCPressure.Float64
	}
	if a.LFCTemperature.Valid {
		indices.LFCTemperature = &a.LFCTemperature.Float64
	}
	if a.ELPressure.Valid {
		indices.ELPressure = &a.ELPressure.Float64
	}
	if a.ELTemperature.Valid {
		indices.ELTemperature = &a.ELTemperature.Float64
	}
	return indices
}
