package store

import (
	"database/sql"
	"time"

	"github.com/Miauneiro/Convective-Risk-Analyzer/internal/models"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) UpsertStation(st models.Station) error {
	_, err := s.db.Exec(`
		INSERT INTO stations (station_id, name, latitude, longitude, elevation, source, active)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(station_id) DO UPDATE SET
			name = excluded.name,
			latitude = excluded.latitude,
			longitude = excluded.longitude,
			elevation = excluded.elevation,
			source = excluded.source,
			active = excluded.active
	`, st.StationID, st.Name, st.Latitude, st.Longitude, st.Elevation, st.Source, st.Active)
	return err
}

func (s *Store) GetStation(stationID string) (*models.Station, error) {
	row := s.db.QueryRow(`
		SELECT station_id, name, latitude, longitude, elevation, source, active
		FROM stations WHERE station_id = ?
	`, stationID)

	var st models.Station
	err := row.Scan(&st.StationID, &st.Name, &st.Latitude, &st.Longitude, &st.Elevation, &st.Source, &st.Active)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &st, nil
}

func (s *Store) GetActiveStations() ([]models.Station, error) {
	rows, err := s.db.Query(`SELECT station_id, name, latitude, longitude, elevation, source, active FROM stations WHERE active = TRUE ORDER BY station_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stations []models.Station
	for rows.Next() {
		var st models.Station
		if err := rows.Scan(&st.StationID, &st.Name, &st.Latitude, &st.Longitude, &st.Elevation, &st.Source, &st.Active); err != nil {
			return nil, err
		}
		stations = append(stations, st)
	}
	return stations, rows.Err()
}

// InsertSounding stores a sounding and returns its row id. A duplicate
// (station, observation time, source) leaves the existing row untouched and
// returns its id.
func (s *Store) InsertSounding(snd models.Sounding) (int64, error) {
	result, err := s.db.Exec(`
		INSERT INTO soundings (station_id, observed_at, source, levels_json, quality_score, raw_text)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(station_id, observed_at, source) DO NOTHING
	`, snd.StationID, snd.ObservedAt, snd.Source, snd.LevelsJSON, snd.QualityScore, snd.RawText)
	if err != nil {
		return 0, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	if affected > 0 {
		return result.LastInsertId()
	}

	var id int64
	err = s.db.QueryRow(`
		SELECT id FROM soundings WHERE station_id = ? AND observed_at = ? AND source = ?
	`, snd.StationID, snd.ObservedAt, snd.Source).Scan(&id)
	return id, err
}

func (s *Store) GetSounding(id int64) (*models.Sounding, error) {
	row := s.db.QueryRow(`
		SELECT id, station_id, observed_at, source, levels_json, quality_score, raw_text, created_at
		FROM soundings WHERE id = ?
	`, id)
	return scanSounding(row)
}

func (s *Store) GetLatestSounding(stationID string) (*models.Sounding, error) {
	row := s.db.QueryRow(`
		SELECT id, station_id, observed_at, source, levels_json, quality_score, raw_text, created_at
		FROM soundings
		WHERE station_id = ?
		ORDER BY observed_at DESC
		LIMIT 1
	`, stationID)
	return scanSounding(row)
}

func scanSounding(row *sql.Row) (*models.Sounding, error) {
	var snd models.Sounding
	err := row.Scan(&snd.ID, &snd.StationID, &snd.ObservedAt, &snd.Source, &snd.LevelsJSON, &snd.QualityScore, &snd.RawText, &snd.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &snd, nil
}

func (s *Store) GetSoundings(stationID string, start, end time.Time) ([]models.Sounding, error) {
	rows, err := s.db.Query(`
		SELECT id, station_id, observed_at, source, levels_json, quality_score, raw_text, created_at
		FROM soundings
		WHERE station_id = ? AND observed_at >= ? AND observed_at <= ?
		ORDER BY observed_at ASC
	`, stationID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var soundings []models.Sounding
	for rows.Next() {
		var snd models.Sounding
		if err := rows.Scan(&snd.ID, &snd.StationID, &snd.ObservedAt, &snd.Source, &snd.LevelsJSON, &snd.QualityScore, &snd.RawText, &snd.CreatedAt); err != nil {
			return nil, err
		}
		soundings = append(soundings, snd)
	}
	return soundings, rows.Err()
}

// InsertAnalysis stores an analysis for a sounding. Re-analyzing the same
// sounding replaces the previous result.
func (s *Store) InsertAnalysis(a models.Analysis) (int64, error) {
	result, err := s.db.Exec(`
		INSERT INTO analyses (sounding_id, cape, cin, lcl_pressure, lcl_temperature,
			lfc_pressure, lfc_temperature, el_pressure, el_temperature,
			surface_temperature, surface_dewpoint, general_risk, convective_potential, assessment_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(sounding_id) DO UPDATE SET
			cape = excluded.cape,
			cin = excluded.cin,
			lcl_pressure = excluded.lcl_pressure,
			lcl_temperature = excluded.lcl_temperature,
			lfc_pressure = excluded.lfc_pressure,
			lfc_temperature = excluded.lfc_temperature,
			el_pressure = excluded.el_pressure,
			el_temperature = excluded.el_temperature,
			surface_temperature = excluded.surface_temperature,
			surface_dewpoint = excluded.surface_dewpoint,
			general_risk = excluded.general_risk,
			convective_potential = excluded.convective_potential,
			assessment_json = excluded.assessment_json
	`, a.SoundingID, a.CAPE, a.CIN, a.LCLPressure, a.LCLTemperature,
		a.LFCPressure, a.LFCTemperature, a.ELPressure, a.ELTemperature,
		a.SurfaceTemperature, a.SurfaceDewpoint, a.GeneralRisk, a.Potential, a.AssessmentJSON)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

func (s *Store) GetAnalysisBySounding(soundingID int64) (*models.Analysis, error) {
	row := s.db.QueryRow(`
		SELECT id, sounding_id, cape, cin, lcl_pressure, lcl_temperature,
			lfc_pressure, lfc_temperature, el_pressure, el_temperature,
			surface_temperature, surface_dewpoint, general_risk, convective_potential, assessment_json, created_at
		FROM analyses WHERE sounding_id = ?
	`, soundingID)
	return scanAnalysis(row)
}

// GetLatestAnalysis returns the analysis of the station's most recent
// analyzed sounding.
func (s *Store) GetLatestAnalysis(stationID string) (*models.Analysis, error) {
	row := s.db.QueryRow(`
		SELECT a.id, a.sounding_id, a.cape, a.cin, a.lcl_pressure, a.lcl_temperature,
			a.lfc_pressure, a.lfc_temperature, a.el_pressure, a.el_temperature,
			a.surface_temperature, a.surface_dewpoint, a.general_risk, a.convective_potential, a.assessment_json, a.created_at
		FROM analyses a
		JOIN soundings s ON s.id = a.sounding_id
		WHERE s.station_id = ?
		ORDER BY s.observed_at DESC
		LIMIT 1
	`, stationID)
	return scanAnalysis(row)
}

func scanAnalysis(row *sql.Row) (*models.Analysis, error) {
	var a models.Analysis
	err := row.Scan(&a.ID, &a.SoundingID, &a.CAPE, &a.CIN, &a.LCLPressure, &a.LCLTemperature,
		&a.LFCPressure, &a.LFCTemperature, &a.ELPressure, &a.ELTemperature,
		&a.SurfaceTemperature, &a.SurfaceDewpoint, &a.GeneralRisk, &a.Potential, &a.AssessmentJSON, &a.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// GetAnalysisHistory returns analyses for a station's soundings within a
// time window, oldest first, paired with the observation time.
type AnalysisRecord struct {
	Analysis   models.Analysis
	ObservedAt time.Time
}

func (s *Store) GetAnalysisHistory(stationID string, start, end time.Time) ([]AnalysisRecord, error) {
	rows, err := s.db.Query(`
		SELECT a.id, a.sounding_id, a.cape, a.cin, a.lcl_pressure, a.lcl_temperature,
			a.lfc_pressure, a.lfc_temperature, a.el_pressure, a.el_temperature,
			a.surface_temperature, a.surface_dewpoint, a.general_risk, a.convective_potential, a.assessment_json, a.created_at,
			s.observed_at
		FROM analyses a
		JOIN soundings s ON s.id = a.sounding_id
		WHERE s.station_id = ? AND s.observed_at >= ? AND s.observed_at <= ?
		ORDER BY s.observed_at ASC
	`, stationID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []AnalysisRecord
	for rows.Next() {
		var r AnalysisRecord
		a := &r.Analysis
		if err := rows.Scan(&a.ID, &a.SoundingID, &a.CAPE, &a.CIN, &a.LCLPressure, &a.LCLTemperature,
			&a.LFCPressure, &a.LFCTemperature, &a.ELPressure, &a.ELTemperature,
			&a.SurfaceTemperature, &a.SurfaceDewpoint, &a.GeneralRisk, &a.Potential, &a.AssessmentJSON, &a.CreatedAt,
			&r.ObservedAt); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
