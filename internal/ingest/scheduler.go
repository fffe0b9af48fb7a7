package ingest

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/Miauneiro/Convective-Risk-Analyzer/internal/convective"
	"github.com/Miauneiro/Convective-Risk-Analyzer/internal/metrics"
	"github.com/Miauneiro/Convective-Risk-Analyzer/internal/models"
	"github.com/Miauneiro/Convective-Risk-Analyzer/internal/risk"
	"github.com/Miauneiro/Convective-Risk-Analyzer/internal/sounding"
	"github.com/Miauneiro/Convective-Risk-Analyzer/internal/store"
)

type Scheduler struct {
	store      *store.Store
	wyoming    *WyomingClient
	igra       *IGRAClient
	engine     convective.Engine
	stationIDs []string
	interval   time.Duration
}

func NewScheduler(st *store.Store, wyoming *WyomingClient, igra *IGRAClient, stationIDs []string) *Scheduler {
	return &Scheduler{
		store:      st,
		wyoming:    wyoming,
		igra:       igra,
		stationIDs: stationIDs,
		interval:   6 * time.Hour, // soundings arrive at 00Z and 12Z
	}
}

func (s *Scheduler) Run(ctx context.Context) {
	s.ingestSoundings()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("scheduler: shutting down")
			return
		case <-ticker.C:
			s.ingestSoundings()
		}
	}
}

// IngestOnce runs a single fetch cycle for all stations.
func (s *Scheduler) IngestOnce() error {
	s.ingestSoundings()
	return nil
}

func (s *Scheduler) ingestSoundings() {
	log.Println("scheduler: ingesting soundings")
	observedAt := LatestSynopticTime(time.Now())

	for _, stationID := range s.stationIDs {
		s.ingestWyoming(stationID, observedAt)
	}
}

func (s *Scheduler) ingestWyoming(stationID string, observedAt time.Time) {
	run, _ := s.store.StartIngestRun("wyoming", &stationID)
	started := time.Now()

	profile, rawText, fetchResult, err := s.wyoming.Fetch(stationID, observedAt)
	metrics.FetchLatency.WithLabelValues("wyoming", stationID).Observe(time.Since(started).Seconds())

	if run != nil {
		run.Success = err == nil
		if fetchResult != nil {
			run.HTTPStatus = sql.NullInt64{Int64: int64(fetchResult.HTTPStatus), Valid: fetchResult.HTTPStatus > 0}
			run.ResponseSizeBytes = sql.NullInt64{Int64: int64(fetchResult.ResponseSize), Valid: fetchResult.ResponseSize > 0}
		}
		if err != nil {
			run.ErrorMessage = sql.NullString{String: err.Error(), Valid: true}
		}
	}

	if err != nil {
		metrics.FetchesTotal.WithLabelValues("wyoming", stationID, "error").Inc()
		log.Printf("scheduler: fetch %s: %v", stationID, err)
		s.store.CompleteIngestRun(run)
		return
	}
	metrics.FetchesTotal.WithLabelValues("wyoming", stationID, "ok").Inc()

	soundingID, err := s.storeSounding(stationID, observedAt, "wyoming", profile, rawText)
	if err != nil {
		log.Printf("scheduler: store %s: %v", stationID, err)
		if run != nil {
			run.Success = false
			run.ErrorMessage = sql.NullString{String: fmt.Sprintf("store: %v", err), Valid: true}
			s.store.CompleteIngestRun(run)
		}
		return
	}
	metrics.SoundingsIngested.WithLabelValues("wyoming", stationID).Inc()

	if run != nil {
		run.SoundingsParsed = sql.NullInt64{Int64: 1, Valid: true}
		run.SoundingsStored = sql.NullInt64{Int64: 1, Valid: true}
		s.store.CompleteIngestRun(run)
	}

	s.analyze(stationID, soundingID, profile)
}

// BackfillIGRA loads the most recent soundings from each station's IGRA
// period-of-record archive, storing and analyzing each.
func (s *Scheduler) BackfillIGRA(igraIDs []string, perStation int) error {
	if s.igra == nil {
		return fmt.Errorf("igra client not configured")
	}
	for _, stationID := range igraIDs {
		run, _ := s.store.StartIngestRun("igra", &stationID)
		started := time.Now()

		soundings, fetchResult, err := s.igra.FetchStation(stationID, perStation)
		metrics.FetchLatency.WithLabelValues("igra", stationID).Observe(time.Since(started).Seconds())

		if run != nil {
			run.Success = err == nil
			if fetchResult != nil {
				run.ResponseSizeBytes = sql.NullInt64{Int64: int64(fetchResult.ResponseSize), Valid: fetchResult.ResponseSize > 0}
			}
			if err != nil {
				run.ErrorMessage = sql.NullString{String: err.Error(), Valid: true}
			}
		}

		if err != nil {
			metrics.FetchesTotal.WithLabelValues("igra", stationID, "error").Inc()
			log.Printf("scheduler: igra %s: %v", stationID, err)
			s.store.CompleteIngestRun(run)
			continue
		}
		metrics.FetchesTotal.WithLabelValues("igra", stationID, "ok").Inc()

		stored := 0
		for _, snd := range soundings {
			soundingID, err := s.storeSounding(stationID, snd.ObservedAt, "igra", snd.Profile, "")
			if err != nil {
				log.Printf("scheduler: igra store %s %s: %v", stationID, snd.ObservedAt.Format("2006-01-02 15Z"), err)
				continue
			}
			stored++
			metrics.SoundingsIngested.WithLabelValues("igra", stationID).Inc()
			s.analyze(stationID, soundingID, snd.Profile)
		}
		log.Printf("scheduler: igra %s: stored %d of %d soundings", stationID, stored, len(soundings))

		if run != nil {
			run.SoundingsParsed = sql.NullInt64{Int64: int64(len(soundings)), Valid: true}
			run.SoundingsStored = sql.NullInt64{Int64: int64(stored), Valid: true}
			s.store.CompleteIngestRun(run)
		}
	}
	return nil
}

func (s *Scheduler) storeSounding(stationID string, observedAt time.Time, source string, profile *sounding.Profile, rawText string) (int64, error) {
	levelsJSON, err := json.Marshal(profile.Data())
	if err != nil {
		return 0, fmt.Errorf("marshal levels: %w", err)
	}

	quality := sounding.Validate(profile)
	snd := models.Sounding{
		StationID:    stationID,
		ObservedAt:   observedAt.UTC(),
		Source:       source,
		LevelsJSON:   string(levelsJSON),
		QualityScore: sql.NullInt64{Int64: int64(quality.Score), Valid: true},
	}
	if rawText != "" {
		snd.RawText = sql.NullString{String: rawText, Valid: true}
	}
	if !quality.Valid {
		log.Printf("scheduler: %s quality errors: %v", stationID, quality.Errors)
	}

	return s.store.InsertSounding(snd)
}

func (s *Scheduler) analyze(stationID string, soundingID int64, profile *sounding.Profile) {
	indices, err := s.engine.Compute(profile)
	if err != nil {
		metrics.AnalysesTotal.WithLabelValues("error").Inc()
		log.Printf("scheduler: analyze %s: %v", stationID, err)
		return
	}
	assessment := risk.Classify(indices)

	analysis, err := BuildAnalysis(soundingID, indices, assessment)
	if err != nil {
		metrics.AnalysesTotal.WithLabelValues("error").Inc()
		log.Printf("scheduler: build analysis %s: %v", stationID, err)
		return
	}
	if _, err := s.store.InsertAnalysis(analysis); err != nil {
		metrics.AnalysesTotal.WithLabelValues("error").Inc()
		log.Printf("scheduler: store analysis %s: %v", stationID, err)
		return
	}

	metrics.AnalysesTotal.WithLabelValues("ok").Inc()
	metrics.AnalysisCAPE.WithLabelValues(stationID).Set(indices.CAPE)
	log.Printf("scheduler: %s: CAPE %.0f J/kg, CIN %.0f J/kg, risk %s",
		stationID, indices.CAPE, indices.CIN, assessment.GeneralRisk)
}

// BuildAnalysis maps an index result and its risk assessment to the storage
// model, serializing the full assessment for later retrieval.
func BuildAnalysis(soundingID int64, indices *convective.Indices, assessment risk.Assessment) (models.Analysis, error) {
	assessmentJSON, err := json.Marshal(assessment)
	if err != nil {
		return models.Analysis{}, fmt.Errorf("marshal assessment: %w", err)
	}

	a := models.Analysis{
		SoundingID:         soundingID,
		CAPE:               indices.CAPE,
		CIN:                indices.CIN,
		LCLPressure:        indices.LCLPressure,
		LCLTemperature:     indices.LCLTemperature,
		SurfaceTemperature: indices.SurfaceTemperature,
		SurfaceDewpoint:    indices.SurfaceDewpoint,
		GeneralRisk:        assessment.GeneralRisk.String(),
		Potential:          assessment.Potential,
		AssessmentJSON:     string(assessmentJSON),
	}
	if indices.LFCPressure != nil {
		a.LFCPressure = sql.NullFloat64{Float64: *indices.LFCPressure, Valid: true}
	}
	if indices.LFCTemperature != nil {
		a.LFCTemperature = sql.NullFloat64{Float64: *indices.LFCTemperature, Valid: true}
	}
	if indices.ELPressure != nil {
		a.ELPressure = sql.NullFloat64{Float64: *indices.ELPressure, Valid: true}
	}
	if indices.ELTemperature != nil {
		a.ELTemperature = sql.NullFloat64{Float64: *indices.ELTemperature, Valid: true}
	}
	return a, nil
}
