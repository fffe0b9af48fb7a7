// Package ingest fetches upper-air soundings from the University of Wyoming
// archive and the NOAA IGRA v2 dataset, and drives the periodic
// fetch-analyze-store cycle.
package ingest

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/Miauneiro/Convective-Risk-Analyzer/internal/httputil"
	"github.com/Miauneiro/Convective-Risk-Analyzer/internal/sounding"
)

const wyomingBaseURL = "https://weather.uwyo.edu/cgi-bin/sounding"

// FetchResult carries transport-level details of a fetch for auditing.
type FetchResult struct {
	HTTPStatus   int
	ResponseSize int
}

type WyomingClient struct {
	baseURL string
	client  *http.Client
}

func NewWyomingClient() *WyomingClient {
	return &WyomingClient{
		baseURL: wyomingBaseURL,
		client:  httputil.NewClient(),
	}
}

// Fetch retrieves the sounding for a WMO station at the given synoptic time
// and parses it into a profile. The raw text is returned for archival.
func (w *WyomingClient) Fetch(stationID string, at time.Time) (*sounding.Profile, string, *FetchResult, error) {
	at = at.UTC()
	params := url.Values{}
	params.Set("region", "naconf")
	params.Set("TYPE", "TEXT:LIST")
	params.Set("YEAR", at.Format("2006"))
	params.Set("MONTH", at.Format("01"))
	params.Set("FROM", at.Format("0215"))
	params.Set("TO", at.Format("0215"))
	params.Set("STNM", stationID)

	reqURL := w.baseURL + "?" + params.Encode()
	result := &FetchResult{}

	var body []byte
	operation := func() error {
		resp, err := w.client.Get(reqURL)
		if err != nil {
			return fmt.Errorf("fetch sounding: %w", err)
		}
		defer resp.Body.Close()

		result.HTTPStatus = resp.StatusCode
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return fmt.Errorf("transient: status %d", resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			b, _ := io.ReadAll(resp.Body)
			return backoff.Permanent(fmt.Errorf("fetch sounding: status %d: %s", resp.StatusCode, string(b)))
		}

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("read body: %w", err))
		}
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 2 * time.Minute
	if err := backoff.Retry(operation, bo); err != nil {
		return nil, "", result, err
	}
	result.ResponseSize = len(body)

	profile, err := sounding.ParseWyoming(string(body))
	if err != nil {
		return nil, string(body), result, fmt.Errorf("station %s at %s: %w", stationID, at.Format("2006-01-02 15Z"), err)
	}
	return profile, string(body), result, nil
}

// LatestSynopticTime returns the most recent 00Z or 12Z observation time
// that should be available by now. Radiosonde data typically appears about
// two hours after launch.
func LatestSynopticTime(now time.Time) time.Time {
	now = now.UTC()
	candidate := time.Date(now.Year(), now.Month(), now.Day(), 12, 0, 0, 0, time.UTC)
	const availabilityLag = 2 * time.Hour
	for now.Sub(candidate) < availabilityLag {
		candidate = candidate.Add(-12 * time.Hour)
	}
	return candidate
}
