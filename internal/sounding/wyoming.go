package sounding

import (
	"fmt"
	"strconv"
	"strings"
)

// Wyoming TEXT:LIST data rows are eleven 7-character fixed-width columns:
// PRES HGHT TEMP DWPT RELH MIXR DRCT SKNT THTA THTE THTV. Only the first
// four plus wind direction/speed are used, matching the archive layout.
const (
	wyomingFieldWidth = 7
	colPres           = 0
	colHght           = 1
	colTemp           = 2
	colDwpt           = 3
	colDrct           = 6
	colSknt           = 7
)

// ParseWyoming parses a University of Wyoming sounding in TEXT:LIST format.
// Header lines are skipped; rows missing temperature or dewpoint are
// dropped, as are trailing non-data sections (station information, indices).
func ParseWyoming(text string) (*Profile, error) {
	lines := strings.Split(text, "\n")

	dataStart := -1
	for i, line := range lines {
		if strings.Contains(line, "PRES") && strings.Contains(line, "HGHT") {
			// Skip the column header, the units line, and the ruler below them.
			dataStart = i + 1
			for dataStart < len(lines) && !isWyomingDataLine(lines[dataStart]) {
				dataStart++
			}
			break
		}
	}
	if dataStart == -1 {
		// No header found; tolerate bare data blocks.
		for i, line := range lines {
			if isWyomingDataLine(line) {
				dataStart = i
				break
			}
		}
	}
	if dataStart == -1 {
		return nil, fmt.Errorf("wyoming: no data rows found")
	}

	var data Levels
	for _, line := range lines[dataStart:] {
		if !isWyomingDataLine(line) {
			if len(data.Pressure) > 0 {
				break // end of the data block
			}
			continue
		}

		pres, okP := wyomingField(line, colPres)
		temp, okT := wyomingField(line, colTemp)
		dwpt, okD := wyomingField(line, colDwpt)
		if !okP || !okT || !okD {
			continue
		}

		hght, okH := wyomingField(line, colHght)
		drct, okDir := wyomingField(line, colDrct)
		sknt, okSpd := wyomingField(line, colSknt)
		if !okH {
			hght = 0
		}
		if !okDir {
			drct = 0
		}
		if !okSpd {
			sknt = 0
		}

		data.Pressure = append(data.Pressure, pres)
		data.Temperature = append(data.Temperature, temp)
		data.Dewpoint = append(data.Dewpoint, dwpt)
		data.Height = append(data.Height, hght)
		data.WindDir = append(data.WindDir, drct)
		data.WindSpeed = append(data.WindSpeed, sknt)
	}

	if len(data.Pressure) == 0 {
		return nil, fmt.Errorf("wyoming: no parseable levels")
	}
	profile, err := New(data)
	if err != nil {
		return nil, fmt.Errorf("wyoming: %w", err)
	}
	return profile, nil
}

// isWyomingDataLine reports whether a line starts with a numeric pressure
// field, distinguishing data rows from headers and trailing sections.
func isWyomingDataLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return false
	}
	c := trimmed[0]
	return (c >= '0' && c <= '9') || c == '-'
}

func wyomingField(line string, idx int) (float64, bool) {
	start := idx * wyomingFieldWidth
	if start >= len(line) {
		return 0, false
	}
	end := start + wyomingFieldWidth
	if end > len(line) {
		end = len(line)
	}
	s := strings.TrimSpace(line[start:end])
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
