package fetch

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/signalsfoundry/helioplot/core"
	"github.com/signalsfoundry/helioplot/internal/logging"
	"github.com/signalsfoundry/helioplot/model"
	"github.com/signalsfoundry/helioplot/series"
)

// DefaultSWPCBaseURL is the NOAA Space Weather Prediction Center service root.
const DefaultSWPCBaseURL = "https://services.swpc.noaa.gov"

// GOES XRS channel labels as they appear in the SWPC energy field, mapped to
// the conventional channel names.
const (
	goesEnergyXRSA = "0.05-0.4nm"
	goesEnergyXRSB = "0.1-0.8nm"
)

// GOESClient fetches GOES/XRS X-ray flux from the SWPC quicklook JSON
// endpoints. SWPC serves fixed rolling windows per spacecraft role
// (primary/secondary); the client picks the smallest window covering the
// request and clips it.
type GOESClient struct {
	*Client
	BaseURL string
}

// NewGOESClient wraps the shared client with the SWPC endpoints.
func NewGOESClient(c *Client, baseURL string) *GOESClient {
	if baseURL == "" {
		baseURL = DefaultSWPCBaseURL
	}
	return &GOESClient{Client: c, BaseURL: baseURL}
}

// goesEntry mirrors one record of the SWPC xrays JSON payloads.
type goesEntry struct {
	TimeTag   string  `json:"time_tag"`
	Satellite int     `json:"satellite"`
	Flux      float64 `json:"flux"`
	Energy    string  `json:"energy"`
}

// GOESRequest selects the interval and satellite policy for an XRS fetch.
type GOESRequest struct {
	Start, End time.Time

	// Satellite pins a GOES satellite number. Zero means pick the largest
	// number with data in the window, matching the quicklook default.
	Satellite int

	// LTC shifts timestamps back by the Sun-to-spacecraft light travel
	// time so the channels line up with LTC-corrected STIX curves.
	LTC bool

	// Ephemeris refines the Sun-to-spacecraft distance used for the
	// correction. Nil falls back to one astronomical unit.
	Ephemeris core.SunDistanceProvider

	// Resample aggregates the channels into buckets of this width.
	// Zero keeps the native cadence.
	Resample time.Duration
}

// FetchXRS retrieves the two XRS channels for the request interval. Missing
// or malformed upstream data degrades to an empty dataset with the reason
// logged; transport errors are returned so callers can distinguish outages
// from genuinely absent data.
func (g *GOESClient) FetchXRS(ctx context.Context, req GOESRequest) (*model.Dataset, error) {
	var entries []goesEntry
	for _, role := range []string{"primary", "secondary"} {
		url := fmt.Sprintf("%s/json/goes/%s/xrays-%s.json", g.BaseURL, role, windowFor(req.Start))
		var part []goesEntry
		if err := g.getJSON(ctx, "goes-xrs", url, &part); err != nil {
			if role == "primary" {
				return nil, fmt.Errorf("fetch GOES XRS: %w", err)
			}
			// A missing secondary feed is routine; the primary alone
			// still satisfies pick-max.
			g.Log.Debug(ctx, "secondary GOES feed unavailable", logging.Err(err))
			continue
		}
		entries = append(entries, part...)
	}

	sat := req.Satellite
	if sat == 0 {
		for _, e := range entries {
			if e.Satellite > sat {
				sat = e.Satellite
			}
		}
	}
	if sat == 0 {
		g.Log.Warn(ctx, "no GOES/XRS data found",
			logging.Time("start", req.Start), logging.Time("end", req.End))
		return g.emptyDataset(req), nil
	}
	g.Log.Info(ctx, "fetched GOES XRS",
		logging.Int("satellite", sat),
		logging.Time("start", req.Start), logging.Time("end", req.End))

	frame, err := goesFrame(entries, sat)
	if err != nil {
		g.Log.Warn(ctx, "discarding malformed GOES payload", logging.Err(err))
		return g.emptyDataset(req), nil
	}

	if req.LTC {
		var eph core.SunDistanceProvider = core.StaticDistance(core.AstronomicalUnitKm)
		if req.Ephemeris != nil {
			eph = req.Ephemeris
		}
		// The geostationary radius moves the distance by well under a
		// light-millisecond over the window, so one reference distance
		// at the midpoint covers the whole frame.
		ref := req.Start.Add(req.End.Sub(req.Start) / 2)
		frame = frameWithTimes(frame, core.CorrectTimes(frame.Times(), eph.SunDistanceKm(ref)))
	}
	frame = frame.Clip(req.Start, req.End)
	if req.Resample > 0 {
		frame = frame.Resample(req.Resample)
	}

	return &model.Dataset{
		Spacecraft: model.SpacecraftL1,
		Instrument: model.InstrumentGOESXRS,
		Meta: model.DatasetMeta{
			Source:    "NOAA SWPC",
			URL:       g.BaseURL,
			Satellite: sat,
			LTC:       req.LTC,
			FetchedAt: time.Now().UTC(),
		},
		Frame: frame,
	}, nil
}

func (g *GOESClient) emptyDataset(req GOESRequest) *model.Dataset {
	return &model.Dataset{
		Spacecraft: model.SpacecraftL1,
		Instrument: model.InstrumentGOESXRS,
		Meta:       model.DatasetMeta{Source: "NOAA SWPC", URL: g.BaseURL, LTC: req.LTC, FetchedAt: time.Now().UTC()},
		Frame:      series.New(nil),
	}
}

// goesFrame splits the per-satellite entries into aligned xrsa/xrsb columns.
// Non-positive flux marks a bad sample and is masked to NaN, as the upstream
// quality flags would be.
func goesFrame(entries []goesEntry, satellite int) (*series.Frame, error) {
	type channels struct{ a, b float64 }

	samples := make(map[time.Time]*channels)
	for _, e := range entries {
		if e.Satellite != satellite {
			continue
		}
		t, err := time.Parse(time.RFC3339, normalizeTimeTag(e.TimeTag))
		if err != nil {
			return nil, fmt.Errorf("bad time_tag %q: %w", e.TimeTag, err)
		}
		ch, ok := samples[t]
		if !ok {
			ch = &channels{a: math.NaN(), b: math.NaN()}
			samples[t] = ch
		}

		flux := e.Flux
		if flux <= 0 {
			flux = math.NaN()
		}
		switch e.Energy {
		case goesEnergyXRSA:
			ch.a = flux
		case goesEnergyXRSB:
			ch.b = flux
		default:
			// Other energy products share the feed; ignore them.
		}
	}

	times := make([]time.Time, 0, len(samples))
	for t := range samples {
		times = append(times, t)
	}
	sort.Slice(times, func(i, j int) bool { return times[i].Before(times[j]) })

	xrsa := make([]float64, len(times))
	xrsb := make([]float64, len(times))
	for i, t := range times {
		xrsa[i] = samples[t].a
		xrsb[i] = samples[t].b
	}

	frame := series.New(times)
	if err := frame.AddColumn("xrsa", xrsa); err != nil {
		return nil, err
	}
	if err := frame.AddColumn("xrsb", xrsb); err != nil {
		return nil, err
	}
	return frame, nil
}

// normalizeTimeTag appends the UTC designator SWPC leaves off.
func normalizeTimeTag(tag string) string {
	if len(tag) > 0 && tag[len(tag)-1] != 'Z' {
		return tag + "Z"
	}
	return tag
}

// windowFor picks the smallest SWPC rolling window reaching back to start.
func windowFor(start time.Time) string {
	age := time.Since(start)
	switch {
	case age <= 6*time.Hour:
		return "6-hour"
	case age <= 24*time.Hour:
		return "1-day"
	case age <= 3*24*time.Hour:
		return "3-day"
	default:
		return "7-day"
	}
}
