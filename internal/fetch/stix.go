package fetch

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/signalsfoundry/helioplot/core"
	"github.com/signalsfoundry/helioplot/internal/logging"
	"github.com/signalsfoundry/helioplot/model"
	"github.com/signalsfoundry/helioplot/series"
)

// DefaultSTIXBaseURL is the STIX data center service root.
const DefaultSTIXBaseURL = "https://datacenter.stix.i4ds.net"

// STIXClient fetches SolO/STIX quicklook light curves.
type STIXClient struct {
	*Client
	BaseURL string
}

// NewSTIXClient wraps the shared client with the STIX data center endpoint.
func NewSTIXClient(c *Client, baseURL string) *STIXClient {
	if baseURL == "" {
		baseURL = DefaultSTIXBaseURL
	}
	return &STIXClient{Client: c, BaseURL: baseURL}
}

// stixPayload mirrors the quicklook light-curve response: a start time, a
// sample cadence, one count row per energy bin, and the bin labels.
type stixPayload struct {
	StartUTC   string      `json:"start_utc"`
	Timedel    float64     `json:"timedel"`
	EnergyBins []string    `json:"energy_bins"`
	Counts     [][]float64 `json:"counts"`

	// SunDistanceAU lets the data center report the spacecraft's
	// heliocentric distance for the interval; used for the light travel
	// time correction when present.
	SunDistanceAU float64 `json:"sun_distance_au"`
}

// STIXRequest selects the interval and correction policy for a light-curve
// fetch.
type STIXRequest struct {
	Start, End time.Time

	// LTC shifts timestamps back by the Sun-to-spacecraft light travel
	// time so the curve aligns with near-Sun emission time.
	LTC bool

	// Resample aggregates the count series into buckets of this width.
	Resample time.Duration
}

// FetchLightCurves retrieves the STIX quicklook count series per energy bin.
// Malformed payloads degrade to an empty dataset with the reason logged.
func (s *STIXClient) FetchLightCurves(ctx context.Context, req STIXRequest) (*model.Dataset, error) {
	endpoint := fmt.Sprintf("%s/api/lightcurves?%s", s.BaseURL, url.Values{
		"begin_utc": {req.Start.UTC().Format(time.RFC3339)},
		"end_utc":   {req.End.UTC().Format(time.RFC3339)},
	}.Encode())

	var payload stixPayload
	if err := s.getJSON(ctx, "stix", endpoint, &payload); err != nil {
		return nil, fmt.Errorf("fetch STIX light curves: %w", err)
	}

	frame, dist, err := stixFrame(payload)
	if err != nil {
		s.Log.Warn(ctx, "unable to load STIX data", logging.Err(err))
		return s.emptyDataset(req), nil
	}

	if req.LTC {
		frame = frameWithTimes(frame, core.CorrectTimes(frame.Times(), dist*core.AstronomicalUnitKm))
	}
	frame = frame.Clip(req.Start, req.End)
	if req.Resample > 0 {
		frame = frame.Resample(req.Resample)
	}

	s.Log.Info(ctx, "fetched STIX light curves",
		logging.Int("energy_bins", len(payload.EnergyBins)),
		logging.Time("start", req.Start), logging.Time("end", req.End))

	return &model.Dataset{
		Spacecraft: model.SpacecraftSolO,
		Instrument: model.InstrumentSTIX,
		Meta: model.DatasetMeta{
			Source:    "STIX data center",
			URL:       s.BaseURL,
			LTC:       req.LTC,
			FetchedAt: time.Now().UTC(),
		},
		Frame: frame,
	}, nil
}

func (s *STIXClient) emptyDataset(req STIXRequest) *model.Dataset {
	return &model.Dataset{
		Spacecraft: model.SpacecraftSolO,
		Instrument: model.InstrumentSTIX,
		Meta:       model.DatasetMeta{Source: "STIX data center", URL: s.BaseURL, LTC: req.LTC, FetchedAt: time.Now().UTC()},
		Frame:      series.New(nil),
	}
}

// stixFrame validates the payload shape and lays the count rows out as one
// column per energy bin. It also returns the Sun distance in AU, defaulting
// to 1 when the data center omits it.
func stixFrame(p stixPayload) (*series.Frame, float64, error) {
	start, err := time.Parse(time.RFC3339, normalizeTimeTag(p.StartUTC))
	if err != nil {
		return nil, 0, fmt.Errorf("bad start_utc %q: %w", p.StartUTC, err)
	}
	if p.Timedel <= 0 {
		return nil, 0, fmt.Errorf("non-positive cadence %v", p.Timedel)
	}
	if len(p.Counts) != len(p.EnergyBins) {
		return nil, 0, fmt.Errorf("%d count rows for %d energy bins", len(p.Counts), len(p.EnergyBins))
	}
	if len(p.Counts) == 0 {
		return nil, 0, fmt.Errorf("empty light-curve payload")
	}

	n := len(p.Counts[0])
	cadence := time.Duration(p.Timedel * float64(time.Second))
	times := make([]time.Time, n)
	for i := range times {
		times[i] = start.Add(time.Duration(i) * cadence)
	}

	frame := series.New(times)
	for i, bin := range p.EnergyBins {
		if len(p.Counts[i]) != n {
			return nil, 0, fmt.Errorf("ragged count row for bin %q", bin)
		}
		if err := frame.AddColumn(bin, p.Counts[i]); err != nil {
			return nil, 0, err
		}
	}

	dist := p.SunDistanceAU
	if dist <= 0 {
		dist = 1
	}
	return frame, dist, nil
}

// frameWithTimes rebuilds a frame on a shifted time axis, sharing columns.
func frameWithTimes(f *series.Frame, times []time.Time) *series.Frame {
	out := series.New(times)
	for _, name := range f.ColumnNames() {
		if err := out.AddColumn(name, f.Column(name)); err != nil {
			// Lengths match by construction.
			return f
		}
	}
	return out
}
