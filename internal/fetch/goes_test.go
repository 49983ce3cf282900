package fetch

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/signalsfoundry/helioplot/core"
	"github.com/signalsfoundry/helioplot/model"
)

func goesTestServer(t *testing.T, entries map[string][]goesEntry) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		part, ok := entries[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(part); err != nil {
			t.Errorf("encode response: %v", err)
		}
	}))
}

func TestFetchXRSPicksMaxSatellite(t *testing.T) {
	base := time.Now().UTC().Truncate(time.Minute).Add(-2 * time.Hour)
	tag := func(i int) string { return base.Add(time.Duration(i) * time.Minute).Format(time.RFC3339) }

	srv := goesTestServer(t, map[string][]goesEntry{
		"/json/goes/primary/xrays-6-hour.json": {
			{TimeTag: tag(0), Satellite: 18, Flux: 1e-7, Energy: goesEnergyXRSA},
			{TimeTag: tag(0), Satellite: 18, Flux: 2e-6, Energy: goesEnergyXRSB},
			{TimeTag: tag(1), Satellite: 18, Flux: 1.5e-7, Energy: goesEnergyXRSA},
			{TimeTag: tag(1), Satellite: 18, Flux: 2.5e-6, Energy: goesEnergyXRSB},
		},
		"/json/goes/secondary/xrays-6-hour.json": {
			{TimeTag: tag(0), Satellite: 16, Flux: 9e-8, Energy: goesEnergyXRSA},
		},
	})
	defer srv.Close()

	g := NewGOESClient(NewClient(5*time.Second, nil, nil, nil), srv.URL)
	ds, err := g.FetchXRS(context.Background(), GOESRequest{
		Start: base.Add(-time.Minute),
		End:   base.Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("FetchXRS: %v", err)
	}

	if ds.Meta.Satellite != 18 {
		t.Fatalf("satellite = %d, want 18 (pick max)", ds.Meta.Satellite)
	}
	if ds.Empty() || ds.Frame.Len() != 2 {
		t.Fatalf("dataset has %d samples, want 2", ds.Frame.Len())
	}
	if got := ds.Frame.Column("xrsb")[1]; got != 2.5e-6 {
		t.Fatalf("xrsb[1] = %v, want 2.5e-6", got)
	}
	if ds.Instrument != model.InstrumentGOESXRS {
		t.Fatalf("instrument = %q", ds.Instrument)
	}
}

func TestFetchXRSLightTravelShift(t *testing.T) {
	base := time.Now().UTC().Truncate(time.Minute).Add(-2 * time.Hour)
	tag := base.Format(time.RFC3339)

	srv := goesTestServer(t, map[string][]goesEntry{
		"/json/goes/primary/xrays-6-hour.json": {
			{TimeTag: tag, Satellite: 16, Flux: 3e-6, Energy: goesEnergyXRSB},
		},
		"/json/goes/secondary/xrays-6-hour.json": {},
	})
	defer srv.Close()

	g := NewGOESClient(NewClient(5*time.Second, nil, nil, nil), srv.URL)
	ds, err := g.FetchXRS(context.Background(), GOESRequest{
		// The correction pulls timestamps back by roughly 499 s, so
		// the window opens early enough to keep the shifted sample.
		Start:     base.Add(-10 * time.Minute),
		End:       base.Add(time.Hour),
		LTC:       true,
		Ephemeris: core.StaticDistance(core.AstronomicalUnitKm),
	})
	if err != nil {
		t.Fatalf("FetchXRS: %v", err)
	}
	if ds.Empty() || ds.Frame.Len() != 1 {
		t.Fatalf("dataset has %d samples, want 1", ds.Frame.Len())
	}
	if !ds.Meta.LTC {
		t.Fatalf("dataset meta does not record the correction")
	}

	want := base.Add(-core.LightTravelDelay(core.AstronomicalUnitKm))
	if got := ds.Frame.Times()[0]; !got.Equal(want) {
		t.Fatalf("corrected time = %v, want %v", got, want)
	}
}

func TestFetchXRSPinnedSatelliteAndMasking(t *testing.T) {
	base := time.Now().UTC().Truncate(time.Minute).Add(-2 * time.Hour)
	tag := base.Format(time.RFC3339)

	srv := goesTestServer(t, map[string][]goesEntry{
		"/json/goes/primary/xrays-6-hour.json": {
			{TimeTag: tag, Satellite: 16, Flux: -9.99e5, Energy: goesEnergyXRSA},
			{TimeTag: tag, Satellite: 16, Flux: 3e-6, Energy: goesEnergyXRSB},
			{TimeTag: tag, Satellite: 18, Flux: 1e-7, Energy: goesEnergyXRSA},
		},
		"/json/goes/secondary/xrays-6-hour.json": {},
	})
	defer srv.Close()

	g := NewGOESClient(NewClient(5*time.Second, nil, nil, nil), srv.URL)
	ds, err := g.FetchXRS(context.Background(), GOESRequest{
		Start:     base.Add(-time.Minute),
		End:       base.Add(time.Hour),
		Satellite: 16,
	})
	if err != nil {
		t.Fatalf("FetchXRS: %v", err)
	}

	if ds.Meta.Satellite != 16 {
		t.Fatalf("satellite = %d, want pinned 16", ds.Meta.Satellite)
	}
	// Negative flux is the bad-sample sentinel and must come back as NaN.
	if got := ds.Frame.Column("xrsa")[0]; !math.IsNaN(got) {
		t.Fatalf("xrsa[0] = %v, want NaN", got)
	}
	if got := ds.Frame.Column("xrsb")[0]; got != 3e-6 {
		t.Fatalf("xrsb[0] = %v, want 3e-6", got)
	}
}

func TestFetchXRSEmptyFeedDegrades(t *testing.T) {
	srv := goesTestServer(t, map[string][]goesEntry{
		"/json/goes/primary/xrays-6-hour.json":   {},
		"/json/goes/secondary/xrays-6-hour.json": {},
	})
	defer srv.Close()

	g := NewGOESClient(NewClient(5*time.Second, nil, nil, nil), srv.URL)
	start := time.Now().UTC().Add(-time.Hour)
	ds, err := g.FetchXRS(context.Background(), GOESRequest{Start: start, End: start.Add(time.Hour)})
	if err != nil {
		t.Fatalf("FetchXRS: %v", err)
	}
	if !ds.Empty() {
		t.Fatalf("expected empty dataset for empty feeds")
	}
}

func TestFetchXRSPrimaryTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(5*time.Second, nil, nil, nil)
	c.Retries = 0
	g := NewGOESClient(c, srv.URL)

	start := time.Now().UTC().Add(-time.Hour)
	if _, err := g.FetchXRS(context.Background(), GOESRequest{Start: start, End: start.Add(time.Hour)}); err == nil {
		t.Fatalf("expected transport error from missing primary feed")
	}
}

func TestWindowFor(t *testing.T) {
	cases := []struct {
		age  time.Duration
		want string
	}{
		{time.Hour, "6-hour"},
		{12 * time.Hour, "1-day"},
		{2 * 24 * time.Hour, "3-day"},
		{6 * 24 * time.Hour, "7-day"},
	}
	for _, tc := range cases {
		if got := windowFor(time.Now().Add(-tc.age)); got != tc.want {
			t.Fatalf("windowFor(now-%v) = %q, want %q", tc.age, got, tc.want)
		}
	}
}
