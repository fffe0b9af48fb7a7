package ingest

import (
	"archive/zip"
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/jlaffaye/ftp"

	"github.com/Miauneiro/Convective-Risk-Analyzer/internal/sounding"
)

const (
	igraFTPHost = "ftp.ncei.noaa.gov:21"
	igraDataDir = "/pub/data/igra/data/data-por"

	// IGRA v2 sentinel values for missing data.
	igraMissing = -9999
	igraRemoved = -8888

	metersPerSecondToKnots = 1.94384
)

type IGRAClient struct {
	host string
}

func NewIGRAClient() *IGRAClient {
	return &IGRAClient{host: igraFTPHost}
}

// IGRASounding is one decoded sounding from a station's period-of-record file.
type IGRASounding struct {
	StationID  string
	ObservedAt time.Time
	Profile    *sounding.Profile
}

// FetchStation downloads a station's period-of-record archive and returns
// up to limit of its most recent decodable soundings, oldest first.
func (c *IGRAClient) FetchStation(stationID string, limit int) ([]IGRASounding, *FetchResult, error) {
	conn, err := ftp.Dial(c.host, ftp.DialWithTimeout(30*time.Second))
	if err != nil {
		return nil, nil, fmt.Errorf("ftp dial: %w", err)
	}
	defer conn.Quit()

	if err := conn.Login("anonymous", "anonymous"); err != nil {
		return nil, nil, fmt.Errorf("ftp login: %w", err)
	}

	path := fmt.Sprintf("%s/%s-data.txt.zip", igraDataDir, stationID)
	resp, err := conn.Retr(path)
	if err != nil {
		return nil, nil, fmt.Errorf("ftp retr %s: %w", path, err)
	}
	defer resp.Close()

	body, err := io.ReadAll(resp)
	if err != nil {
		return nil, nil, fmt.Errorf("read body: %w", err)
	}
	result := &FetchResult{ResponseSize: len(body)}

	zr, err := zip.NewReader(bytes.NewReader(body), int64(len(body)))
	if err != nil {
		return nil, result, fmt.Errorf("open zip: %w", err)
	}

	var member io.ReadCloser
	for _, f := range zr.File {
		if strings.HasSuffix(f.Name, ".txt") {
			member, err = f.Open()
			if err != nil {
				return nil, result, fmt.Errorf("open zip member %s: %w", f.Name, err)
			}
			break
		}
	}
	if member == nil {
		return nil, result, fmt.Errorf("no data file in archive for %s", stationID)
	}
	defer member.Close()

	soundings, err := ParseIGRA(member, limit)
	if err != nil {
		return nil, result, err
	}
	return soundings, result, nil
}

// ParseIGRA decodes an IGRA v2 period-of-record data stream, keeping the
// last limit decodable soundings (limit <= 0 keeps all). Soundings whose
// levels fail profile validation are skipped, not fatal: decades-old
// records contain occasional malformed blocks.
func ParseIGRA(r io.Reader, limit int) ([]IGRASounding, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var soundings []IGRASounding
	var header *igraHeader
	var data sounding.Levels

	flush := func() {
		if header == nil {
			return
		}
		if len(data.Pressure) > 0 {
			if p, err := sounding.New(data); err == nil {
				soundings = append(soundings, IGRASounding{
					StationID:  header.stationID,
					ObservedAt: header.observedAt,
					Profile:    p,
				})
				if limit > 0 && len(soundings) > limit {
					soundings = soundings[1:]
				}
			}
		}
		header = nil
		data = sounding.Levels{}
	}

	for scanner.Scan() {
		line := scanner.Text()
		if len(line) == 0 {
			continue
		}
		if line[0] == '#' {
			flush()
			h, err := parseIGRAHeader(line)
			if err != nil {
				continue // unparseable block, skip until the next header
			}
			header = h
			continue
		}
		if header == nil {
			continue
		}
		appendIGRALevel(&data, line)
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("igra scan: %w", err)
	}
	if len(soundings) == 0 {
		return nil, fmt.Errorf("igra: no decodable soundings")
	}
	return soundings, nil
}

type igraHeader struct {
	stationID  string
	observedAt time.Time
}

// Header layout: '#' + station ID (cols 2-12), year 14-17, month 19-20,
// day 22-23, hour 25-26 (99 = missing, treated as 00).
func parseIGRAHeader(line string) (*igraHeader, error) {
	if len(line) < 26 {
		return nil, fmt.Errorf("igra header too short: %d chars", len(line))
	}
	stationID := strings.TrimSpace(line[1:12])
	year, err1 := strconv.Atoi(strings.TrimSpace(line[13:17]))
	month, err2 := strconv.Atoi(strings.TrimSpace(line[18:20]))
	day, err3 := strconv.Atoi(strings.TrimSpace(line[21:23]))
	hour, err4 := strconv.Atoi(strings.TrimSpace(line[24:26]))
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		return nil, fmt.Errorf("igra header fields unparseable: %q", line)
	}
	if hour == 99 {
		hour = 0
	}
	return &igraHeader{
		stationID:  stationID,
		observedAt: time.Date(year, time.Month(month), day, hour, 0, 0, 0, time.UTC),
	}, nil
}

// Data layout: pressure in Pa at cols 10-15, geopotential height 17-21,
// temperature in tenths °C at 23-27, dewpoint depression in tenths at
// 36-40, wind direction 41-45, wind speed in tenths m/s at 47-51.
func appendIGRALevel(data *sounding.Levels, line string) {
	press, okP := igraField(line, 9, 15)
	temp, okT := igraField(line, 22, 27)
	dpdp, okD := igraField(line, 34, 39)
	if !okP || !okT || !okD || press <= 0 {
		return
	}

	tempC := temp / 10.0
	data.Pressure = append(data.Pressure, press/100.0)
	data.Temperature = append(data.Temperature, tempC)
	data.Dewpoint = append(data.Dewpoint, tempC-dpdp/10.0)

	if gph, ok := igraField(line, 16, 21); ok {
		data.Height = append(data.Height, gph)
	} else {
		data.Height = append(data.Height, 0)
	}
	if wdir, ok := igraField(line, 40, 45); ok {
		data.WindDir = append(data.WindDir, wdir)
	} else {
		data.WindDir = append(data.WindDir, 0)
	}
	if wspd, ok := igraField(line, 46, 51); ok {
		data.WindSpeed = append(data.WindSpeed, wspd/10.0*metersPerSecondToKnots)
	} else {
		data.WindSpeed = append(data.WindSpeed, 0)
	}
}

func igraField(line string, start, end int) (float64, bool) {
	if len(line) < end {
		return 0, false
	}
	s := strings.TrimSpace(line[start:end])
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v == igraMissing || v == igraRemoved {
		return 0, false
	}
	return v, true
}
