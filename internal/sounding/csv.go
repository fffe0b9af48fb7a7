package sounding

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
)

// CSVColumns names the columns holding each variable. Zero values fall
// back to the conventional names used by the Wyoming-derived exports.
type CSVColumns struct {
	Pressure    string
	Temperature string
	Dewpoint    string
}

func (c CSVColumns) withDefaults() CSVColumns {
	if c.Pressure == "" {
		c.Pressure = "pressure"
	}
	if c.Temperature == "" {
		c.Temperature = "temperature"
	}
	if c.Dewpoint == "" {
		c.Dewpoint = "dewpoint"
	}
	return c
}

// ParseCSV parses a sounding from CSV text with a header row. Optional
// height/direction/speed columns are carried through when present. Rows
// with an unparseable pressure, temperature or dewpoint are dropped.
func ParseCSV(text string, cols CSVColumns) (*Profile, error) {
	cols = cols.withDefaults()

	r := csv.NewReader(strings.NewReader(text))
	r.TrimLeadingSpace = true
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("csv: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("csv: need a header row and at least one data row")
	}

	index := make(map[string]int)
	for i, name := range records[0] {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}

	pCol, okP := index[strings.ToLower(cols.Pressure)]
	tCol, okT := index[strings.ToLower(cols.Temperature)]
	dCol, okD := index[strings.ToLower(cols.Dewpoint)]
	if !okP || !okT || !okD {
		return nil, fmt.Errorf("csv: must contain columns %q, %q, %q", cols.Pressure, cols.Temperature, cols.Dewpoint)
	}
	hCol, hasH := index["height"]
	dirCol, hasDir := index["direction"]
	spdCol, hasSpd := index["speed"]

	var data Levels
	for _, rec := range records[1:] {
		pres, errP := csvFloat(rec, pCol)
		temp, errT := csvFloat(rec, tCol)
		dwpt, errD := csvFloat(rec, dCol)
		if errP != nil || errT != nil || errD != nil {
			continue
		}
		data.Pressure = append(data.Pressure, pres)
		data.Temperature = append(data.Temperature, temp)
		data.Dewpoint = append(data.Dewpoint, dwpt)

		if hasH {
			v, err := csvFloat(rec, hCol)
			if err != nil {
				v = 0
			}
			data.Height = append(data.Height, v)
		}
		if hasDir {
			v, err := csvFloat(rec, dirCol)
			if err != nil {
				v = 0
			}
			data.WindDir = append(data.WindDir, v)
		}
		if hasSpd {
			v, err := csvFloat(rec, spdCol)
			if err != nil {
				v = 0
			}
			data.WindSpeed = append(data.WindSpeed, v)
		}
	}

	if len(data.Pressure) == 0 {
		return nil, fmt.Errorf("csv: no parseable levels")
	}
	profile, err := New(data)
	if err != nil {
		return nil, fmt.Errorf("csv: %w", err)
	}
	return profile, nil
}

func csvFloat(rec []string, col int) (float64, error) {
	if col >= len(rec) {
		return 0, fmt.Errorf("missing column %d", col)
	}
	return strconv.ParseFloat(strings.TrimSpace(rec[col]), 64)
}

// Parse auto-detects the format of a sounding file: CSV when the first
// non-empty line contains a comma, Wyoming fixed-width text otherwise.
func Parse(text string) (*Profile, error) {
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.Contains(trimmed, ",") {
			return ParseCSV(text, CSVColumns{})
		}
		break
	}
	return ParseWyoming(text)
}
