package store

import (
	"database/sql"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/Miauneiro/Convective-Risk-Analyzer/internal/models"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	store := New(db)
	if err := store.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return store
}

func testSounding(stationID string, observedAt time.Time) models.Sounding {
	return models.Sounding{
		StationID:    stationID,
		ObservedAt:   observedAt,
		Source:       "wyoming",
		LevelsJSON:   `{"pressure":[1000,850],"temperature":[26,14],"dewpoint":[18,11]}`,
		QualityScore: sql.NullInt64{Int64: 90, Valid: true},
	}
}

func TestUpsertAndGetStation(t *testing.T) {
	store := setupTestStore(t)

	station := models.Station{
		StationID: "94866",
		Name:      "Melbourne Airport",
		Latitude:  -37.67,
		Longitude: 144.83,
		Elevation: 113.0,
		Source:    "wyoming",
		Active:    true,
	}

	if err := store.UpsertStation(station); err != nil {
		t.Fatalf("UpsertStation: %v", err)
	}

	stations, err := store.GetActiveStations()
	if err != nil {
		t.Fatalf("GetActiveStations: %v", err)
	}
	if len(stations) != 1 {
		t.Fatalf("len(stations) = %d, want 1", len(stations))
	}
	if stations[0].StationID != "94866" {
		t.Errorf("StationID = %q, want 94866", stations[0].StationID)
	}
	if stations[0].Name != "Melbourne Airport" {
		t.Errorf("Name = %q, want 'Melbourne Airport'", stations[0].Name)
	}

	got, err := store.GetStation("94866")
	if err != nil {
		t.Fatalf("GetStation: %v", err)
	}
	if got == nil || got.Elevation != 113.0 {
		t.Errorf("GetStation = %+v, want elevation 113", got)
	}
}

func TestUpsertStation_Update(t *testing.T) {
	store := setupTestStore(t)

	station := models.Station{
		StationID: "94866",
		Name:      "Original Name",
		Active:    true,
	}
	if err := store.UpsertStation(station); err != nil {
		t.Fatalf("UpsertStation: %v", err)
	}

	station.Name = "Updated Name"
	if err := store.UpsertStation(station); err != nil {
		t.Fatalf("UpsertStation update: %v", err)
	}

	stations, err := store.GetActiveStations()
	if err != nil {
		t.Fatalf("GetActiveStations: %v", err)
	}
	if len(stations) != 1 {
		t.Fatalf("len(stations) = %d, want 1", len(stations))
	}
	if stations[0].Name != "Updated Name" {
		t.Errorf("Name = %q, want 'Updated Name'", stations[0].Name)
	}
}

func TestGetActiveStations_FilterInactive(t *testing.T) {
	store := setupTestStore(t)

	if err := store.UpsertStation(models.Station{StationID: "ACTIVE", Active: true}); err != nil {
		t.Fatal(err)
	}
	if err := store.UpsertStation(models.Station{StationID: "INACTIVE", Active: false}); err != nil {
		t.Fatal(err)
	}

	stations, err := store.GetActiveStations()
	if err != nil {
		t.Fatalf("GetActiveStations: %v", err)
	}
	if len(stations) != 1 {
		t.Fatalf("len(stations) = %d, want 1", len(stations))
	}
	if stations[0].StationID != "ACTIVE" {
		t.Errorf("StationID = %q, want ACTIVE", stations[0].StationID)
	}
}

func TestInsertSounding_DuplicateReturnsExistingID(t *testing.T) {
	store := setupTestStore(t)

	observedAt := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	first, err := store.InsertSounding(testSounding("94866", observedAt))
	if err != nil {
		t.Fatalf("InsertSounding: %v", err)
	}
	second, err := store.InsertSounding(testSounding("94866", observedAt))
	if err != nil {
		t.Fatalf("InsertSounding duplicate: %v", err)
	}
	if first != second {
		t.Errorf("duplicate insert returned id %d, want existing %d", second, first)
	}

	soundings, err := store.GetSoundings("94866", observedAt.Add(-time.Hour), observedAt.Add(time.Hour))
	if err != nil {
		t.Fatalf("GetSoundings: %v", err)
	}
	if len(soundings) != 1 {
		t.Errorf("len(soundings) = %d, want 1", len(soundings))
	}
}

func TestGetLatestSounding(t *testing.T) {
	store := setupTestStore(t)

	older := time.Date(2026, 1, 14, 12, 0, 0, 0, time.UTC)
	newer := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	if _, err := store.InsertSounding(testSounding("94866", older)); err != nil {
		t.Fatal(err)
	}
	if _, err := store.InsertSounding(testSounding("94866", newer)); err != nil {
		t.Fatal(err)
	}

	latest, err := store.GetLatestSounding("94866")
	if err != nil {
		t.Fatalf("GetLatestSounding: %v", err)
	}
	if latest == nil {
		t.Fatal("GetLatestSounding returned nil")
	}
	if !latest.ObservedAt.Equal(newer) {
		t.Errorf("ObservedAt = %v, want %v", latest.ObservedAt, newer)
	}

	missing, err := store.GetLatestSounding("NOPE")
	if err != nil {
		t.Fatalf("GetLatestSounding missing: %v", err)
	}
	if missing != nil {
		t.Errorf("GetLatestSounding for unknown station = %+v, want nil", missing)
	}
}

func TestInsertAnalysis_ReplacesOnReanalysis(t *testing.T) {
	store := setupTestStore(t)

	observedAt := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	soundingID, err := store.InsertSounding(testSounding("94866", observedAt))
	if err != nil {
		t.Fatal(err)
	}

	analysis := models.Analysis{
		SoundingID:         soundingID,
		CAPE:               1200,
		CIN:                -45,
		LCLPressure:        910,
		LCLTemperature:     18.5,
		LFCPressure:        sql.NullFloat64{Float64: 880, Valid: true},
		LFCTemperature:     sql.NullFloat64{Float64: 16.2, Valid: true},
		SurfaceTemperature: 28,
		SurfaceDewpoint:    22,
		GeneralRisk:        "HIGH",
		Potential:          "STRONG",
		AssessmentJSON:     `{"general_risk":"HIGH"}`,
	}
	if _, err := store.InsertAnalysis(analysis); err != nil {
		t.Fatalf("InsertAnalysis: %v", err)
	}

	analysis.CAPE = 1350
	analysis.GeneralRisk = "HIGH"
	if _, err := store.InsertAnalysis(analysis); err != nil {
		t.Fatalf("InsertAnalysis replace: %v", err)
	}

	got, err := store.GetAnalysisBySounding(soundingID)
	if err != nil {
		t.Fatalf("GetAnalysisBySounding: %v", err)
	}
	if got == nil {
		t.Fatal("analysis not found")
	}
	if got.CAPE != 1350 {
		t.Errorf("CAPE = %v, want replaced value 1350", got.CAPE)
	}
	if got.ELPressure.Valid {
		t.Errorf("ELPressure = %+v, want NULL for absent EL", got.ELPressure)
	}
}

func TestGetLatestAnalysisAndHistory(t *testing.T) {
	store := setupTestStore(t)

	times := []time.Time{
		time.Date(2026, 1, 14, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 1, 14, 12, 0, 0, 0, time.UTC),
		time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
	}
	capes := []float64{200, 800, 1600}
	for i, at := range times {
		id, err := store.InsertSounding(testSounding("94866", at))
		if err != nil {
			t.Fatal(err)
		}
		if _, err := store.InsertAnalysis(models.Analysis{
			SoundingID:     id,
			CAPE:           capes[i],
			GeneralRisk:    "MODERATE",
			Potential:      "MODERATE",
			AssessmentJSON: "{}",
		}); err != nil {
			t.Fatal(err)
		}
	}

	latest, err := store.GetLatestAnalysis("94866")
	if err != nil {
		t.Fatalf("GetLatestAnalysis: %v", err)
	}
	if latest == nil || latest.CAPE != 1600 {
		t.Errorf("latest CAPE = %+v, want 1600", latest)
	}

	history, err := store.GetAnalysisHistory("94866", times[0], times[2])
	if err != nil {
		t.Fatalf("GetAnalysisHistory: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("len(history) = %d, want 3", len(history))
	}
	if history[0].Analysis.CAPE != 200 || !history[0].ObservedAt.Equal(times[0]) {
		t.Errorf("history not ordered oldest first: %+v", history[0])
	}
}

func TestIngestRunLifecycle(t *testing.T) {
	store := setupTestStore(t)

	stationID := "94866"
	run, err := store.StartIngestRun("wyoming", &stationID)
	if err != nil {
		t.Fatalf("StartIngestRun: %v", err)
	}
	if run.ID == 0 {
		t.Fatal("run ID not assigned")
	}

	run.HTTPStatus = sql.NullInt64{Int64: 200, Valid: true}
	run.SoundingsParsed = sql.NullInt64{Int64: 1, Valid: true}
	run.SoundingsStored = sql.NullInt64{Int64: 1, Valid: true}
	run.Success = true
	if err := store.CompleteIngestRun(run); err != nil {
		t.Fatalf("CompleteIngestRun: %v", err)
	}

	failed, err := store.StartIngestRun("igra", nil)
	if err != nil {
		t.Fatal(err)
	}
	failed.ErrorMessage = sql.NullString{String: "connection refused", Valid: true}
	if err := store.CompleteIngestRun(failed); err != nil {
		t.Fatal(err)
	}

	errors, err := store.GetRecentIngestErrors(10)
	if err != nil {
		t.Fatalf("GetRecentIngestErrors: %v", err)
	}
	if len(errors) != 1 {
		t.Fatalf("len(errors) = %d, want 1", len(errors))
	}
	if errors[0].Source != "igra" {
		t.Errorf("failed run source = %q, want igra", errors[0].Source)
	}

	health, err := store.GetIngestHealth(1)
	if err != nil {
		t.Fatalf("GetIngestHealth: %v", err)
	}
	if len(health) != 2 {
		t.Errorf("len(health) = %d, want 2 source rows", len(health))
	}
}

func TestMigrationVersion(t *testing.T) {
	store := setupTestStore(t)

	version, err := store.MigrationVersion()
	if err != nil {
		t.Fatalf("MigrationVersion: %v", err)
	}
	if version != len(migrations) {
		t.Errorf("version = %d, want %d", version, len(migrations))
	}
}
