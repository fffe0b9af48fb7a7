package models

import (
	"database/sql"
	"time"
)

type Station struct {
	StationID string  // WMO number or ICAO/IGRA identifier
	Name      string
	Latitude  float64
	Longitude float64
	Elevation float64
	Source    string // "wyoming" or "igra"
	Active    bool
}

type Sounding struct {
	ID           int64
	StationID    string
	ObservedAt   time.Time
	Source       string // "wyoming", "igra", "upload"
	LevelsJSON   string // serialized sounding.Levels
	QualityScore sql.NullInt64
	RawText      sql.NullString
	CreatedAt    time.Time
}

type Analysis struct {
	ID                 int64
	SoundingID         int64
	CAPE               float64
	CIN                float64
	LCLPressure        float64
	LCLTemperature     float64
	LFCPressure        sql.NullFloat64
	LFCTemperature     sql.NullFloat64
	ELPressure         sql.NullFloat64
	ELTemperature      sql.NullFloat64
	SurfaceTemperature float64
	SurfaceDewpoint    float64
	GeneralRisk        string
	Potential          string
	AssessmentJSON     string // serialized risk.Assessment
	CreatedAt          time.Time
}
