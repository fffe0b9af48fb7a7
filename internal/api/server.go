// Package api serves the analysis results over HTTP.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Miauneiro/Convective-Risk-Analyzer/internal/briefing"
	"github.com/Miauneiro/Convective-Risk-Analyzer/internal/convective"
	"github.com/Miauneiro/Convective-Risk-Analyzer/internal/imagegen"
	"github.com/Miauneiro/Convective-Risk-Analyzer/internal/store"
)

type Server struct {
	store      *store.Store
	port       string
	engine     convective.Engine
	briefer    *briefing.Generator
	chartCache *imagegen.Cache
	briefCache *imagegen.Cache
}

func NewServer(store *store.Store, port string, briefer *briefing.Generator) *Server {
	return &Server{
		store:      store,
		port:       port,
		briefer:    briefer,
		chartCache: imagegen.NewCache(time.Hour),
		briefCache: imagegen.NewCache(time.Hour),
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/stations", s.handleStations)
	mux.HandleFunc("/api/latest", s.handleLatest)
	mux.HandleFunc("/api/history", s.handleHistory)
	mux.HandleFunc("/api/analyze", s.handleAnalyze)
	mux.HandleFunc("/api/briefing", s.handleBriefing)
	mux.HandleFunc("/skewt.png", s.handleSkewT)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func (s *Server) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:    ":" + s.port,
		Handler: s.Handler(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

type HealthStatus struct {
	Status   string          `json:"status"`
	Stations []StationHealth `json:"stations"`
	Ingest   []IngestDay     `json:"ingest,omitempty"`
	Errors   []string        `json:"errors,omitempty"`
}

type StationHealth struct {
	StationID string    `json:"station_id"`
	LastSeen  time.Time `json:"last_seen"`
	AgeHours  int       `json:"age_hours"`
	Stale     bool      `json:"stale"`
}

type IngestDay struct {
	Date        string `json:"date"`
	Source      string `json:"source"`
	TotalRuns   int    `json:"total_runs"`
	SuccessRuns int    `json:"success_runs"`
	FailedRuns  int    `json:"failed_runs"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	stations, err := s.store.GetActiveStations()
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"status": "error", "error": err.Error()})
		return
	}

	health := HealthStatus{
		Status:   "ok",
		Stations: make([]StationHealth, 0, len(stations)),
	}

	// Soundings arrive twice a day, so anything older than a missed
	// launch plus slack is stale.
	staleThreshold := 18 * time.Hour
	now := time.Now()

	for _, st := range stations {
		snd, err := s.store.GetLatestSounding(st.StationID)
		if err != nil {
			health.Errors = append(health.Errors, st.StationID+": "+err.Error())
			continue
		}

		sh := StationHealth{StationID: st.StationID}
		if snd != nil {
			sh.LastSeen = snd.ObservedAt
			sh.AgeHours = int(now.Sub(snd.ObservedAt).Hours())
			sh.Stale = now.Sub(snd.ObservedAt) > staleThreshold
		} else {
			sh.Stale = true
			sh.AgeHours = -1
		}

		if sh.Stale {
			health.Status = "degraded"
		}
		health.Stations = append(health.Stations, sh)
	}

	if summaries, err := s.store.GetIngestHealth(7); err == nil {
		for _, h := range summaries {
			health.Ingest = append(health.Ingest, IngestDay{
				Date:        h.Date,
				Source:      h.Source,
				TotalRuns:   h.TotalRuns,
				SuccessRuns: h.SuccessRuns,
				FailedRuns:  h.FailedRuns,
			})
		}
	}

	if len(health.Errors) > 0 {
		health.Status = "error"
	}

	w.Header().Set("Content-Type", "application/json")
	if health.Status != "ok" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(health)
}
