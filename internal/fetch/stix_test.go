package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/signalsfoundry/helioplot/model"
)

func stixTestServer(t *testing.T, payload stixPayload) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/lightcurves" {
			http.NotFound(w, r)
			return
		}
		if r.URL.Query().Get("begin_utc") == "" || r.URL.Query().Get("end_utc") == "" {
			http.Error(w, "missing interval", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			t.Errorf("encode response: %v", err)
		}
	}))
}

func TestFetchLightCurves(t *testing.T) {
	start := time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC)
	srv := stixTestServer(t, stixPayload{
		StartUTC:   start.Format(time.RFC3339),
		Timedel:    4,
		EnergyBins: []string{"4-10 keV", "10-15 keV"},
		Counts: [][]float64{
			{10, 12, 14, 16},
			{1, 2, 3, 4},
		},
	})
	defer srv.Close()

	s := NewSTIXClient(NewClient(5*time.Second, nil, nil, nil), srv.URL)
	ds, err := s.FetchLightCurves(context.Background(), STIXRequest{
		Start: start,
		End:   start.Add(time.Minute),
	})
	if err != nil {
		t.Fatalf("FetchLightCurves: %v", err)
	}

	if ds.Spacecraft != model.SpacecraftSolO || ds.Instrument != model.InstrumentSTIX {
		t.Fatalf("dataset identity = %v/%v", ds.Spacecraft, ds.Instrument)
	}
	if ds.Frame.Len() != 4 {
		t.Fatalf("got %d samples, want 4", ds.Frame.Len())
	}
	if got := ds.Frame.Times()[1]; !got.Equal(start.Add(4 * time.Second)) {
		t.Fatalf("times[1] = %v, want start+4s", got)
	}
	if got := ds.Frame.Column("10-15 keV")[2]; got != 3 {
		t.Fatalf("10-15 keV[2] = %v, want 3", got)
	}
}

func TestFetchLightCurvesLTCShiftsTimes(t *testing.T) {
	start := time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC)
	payload := stixPayload{
		StartUTC:      start.Format(time.RFC3339),
		Timedel:       4,
		EnergyBins:    []string{"4-10 keV"},
		Counts:        [][]float64{{10, 12, 14}},
		SunDistanceAU: 1,
	}
	srv := stixTestServer(t, payload)
	defer srv.Close()

	s := NewSTIXClient(NewClient(5*time.Second, nil, nil, nil), srv.URL)
	// One AU of light travel is about 499 s; widen the clip window so the
	// shifted samples stay inside it.
	ds, err := s.FetchLightCurves(context.Background(), STIXRequest{
		Start: start.Add(-10 * time.Minute),
		End:   start.Add(time.Minute),
		LTC:   true,
	})
	if err != nil {
		t.Fatalf("FetchLightCurves: %v", err)
	}
	if !ds.Meta.LTC {
		t.Fatalf("Meta.LTC not set")
	}
	if ds.Frame.Len() != 3 {
		t.Fatalf("got %d samples, want 3", ds.Frame.Len())
	}

	shift := start.Sub(ds.Frame.Times()[0])
	if shift < 490*time.Second || shift > 510*time.Second {
		t.Fatalf("light travel shift = %v, want ~499s", shift)
	}
}

func TestFetchLightCurvesMalformedPayloadDegrades(t *testing.T) {
	start := time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC)
	srv := stixTestServer(t, stixPayload{
		StartUTC:   start.Format(time.RFC3339),
		Timedel:    4,
		EnergyBins: []string{"4-10 keV", "10-15 keV"},
		Counts:     [][]float64{{10, 12}}, // one row short
	})
	defer srv.Close()

	s := NewSTIXClient(NewClient(5*time.Second, nil, nil, nil), srv.URL)
	ds, err := s.FetchLightCurves(context.Background(), STIXRequest{Start: start, End: start.Add(time.Minute)})
	if err != nil {
		t.Fatalf("FetchLightCurves: %v", err)
	}
	if !ds.Empty() {
		t.Fatalf("expected empty dataset for malformed payload")
	}
}

func TestStixFrameRejectsBadCadence(t *testing.T) {
	_, _, err := stixFrame(stixPayload{
		StartUTC:   "2024-04-01T12:00:00Z",
		Timedel:    0,
		EnergyBins: []string{"4-10 keV"},
		Counts:     [][]float64{{1}},
	})
	if err == nil {
		t.Fatalf("expected error for zero cadence")
	}
}
