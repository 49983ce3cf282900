package main

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/signalsfoundry/helioplot/core"
	"github.com/signalsfoundry/helioplot/figure"
	"github.com/signalsfoundry/helioplot/model"
)

func TestLoadFrameCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mag.csv")
	csv := "time,b,br,bt,bn\n" +
		"2024-04-01T00:00:00Z,5.1,5.0,1.0,0.2\n" +
		"2024-04-01T00:01:00Z,,4.8,1.1,0.3\n" +
		"2024-04-01T00:02:00Z,5.2,4.9,1.2,0.4\n"
	if err := os.WriteFile(path, []byte(csv), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	frame, err := loadFrameCSV(path)
	if err != nil {
		t.Fatalf("loadFrameCSV: %v", err)
	}
	if frame.Len() != 3 {
		t.Fatalf("got %d rows, want 3", frame.Len())
	}
	if got := frame.ColumnNames(); len(got) != 4 || got[0] != "b" || got[3] != "bn" {
		t.Fatalf("columns = %v", got)
	}
	// The blank cell becomes a NaN gap.
	if b := frame.Column("b"); !math.IsNaN(b[1]) || b[0] != 5.1 {
		t.Fatalf("b = %v, want [5.1 NaN 5.2]", b)
	}
	want := time.Date(2024, 4, 1, 0, 1, 0, 0, time.UTC)
	if !frame.Times()[1].Equal(want) {
		t.Fatalf("times[1] = %v, want %v", frame.Times()[1], want)
	}
}

func TestLoadFrameCSVRejectsRaggedRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")
	csv := "time,b\n2024-04-01T00:00:00Z,5.1,extra\n"
	if err := os.WriteFile(path, []byte(csv), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := loadFrameCSV(path); err == nil {
		t.Fatalf("expected error for ragged row")
	}
}

func TestBuildOptionsFromFlags(t *testing.T) {
	opts, err := buildOptions("", "solo", "2024-04-01T00:00:00Z", "2024-04-02T00:00:00Z", 5*time.Minute)
	if err != nil {
		t.Fatalf("buildOptions: %v", err)
	}
	if opts.Spacecraft != model.SpacecraftSolO {
		t.Fatalf("spacecraft = %v, want SolO", opts.Spacecraft)
	}
	if opts.Resample != 5*time.Minute {
		t.Fatalf("resample = %v", opts.Resample)
	}
	if got := opts.End.Sub(opts.Start); got != 24*time.Hour {
		t.Fatalf("range = %v, want 24h", got)
	}

	if _, err := buildOptions("", "nostromo", "", "", 0); err == nil {
		t.Fatalf("expected error for unknown spacecraft")
	}
}

func TestPolarityFrame(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mag.csv")
	csv := "time,b,br,bt,bn\n" +
		"2024-04-01T00:00:00Z,5.0,5.0,0.0,0.0\n" +
		"2024-04-01T00:01:00Z,5.0,0.0,-5.0,0.0\n"
	if err := os.WriteFile(path, []byte(csv), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	mag, err := loadFrameCSV(path)
	if err != nil {
		t.Fatalf("loadFrameCSV: %v", err)
	}

	start := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	opts := figure.DefaultOptions(model.SpacecraftPSP, start, start.Add(time.Hour))
	out, err := polarityFrame(mag, model.State{RadiusAU: 1}, opts)
	if err != nil {
		t.Fatalf("polarityFrame: %v", err)
	}

	// The derived columns follow the source columns in a fixed order so
	// repeated exports lay the file out identically.
	want := []string{"b", "br", "bt", "bn", "alpha", "phi", "polarity", "phi_relative"}
	names := out.ColumnNames()
	if len(names) != len(want) {
		t.Fatalf("columns = %v, want %v", names, want)
	}
	for i, name := range want {
		if names[i] != name {
			t.Fatalf("column[%d] = %q, want %q", i, names[i], name)
		}
	}
	// A purely radial field lies in the toward sector.
	if pol := out.Column("polarity"); pol[0] != 1 {
		t.Fatalf("polarity[0] = %v, want 1", pol[0])
	}
	// A pure radial field has zero azimuth.
	if phi := out.Column("phi"); phi[0] != 0 {
		t.Fatalf("phi[0] = %v, want 0", phi[0])
	}
}

func TestPolarityFrameRequiresComponents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.csv")
	csv := "time,br\n2024-04-01T00:00:00Z,5.0\n"
	if err := os.WriteFile(path, []byte(csv), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	mag, err := loadFrameCSV(path)
	if err != nil {
		t.Fatalf("loadFrameCSV: %v", err)
	}

	start := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	opts := figure.DefaultOptions(model.SpacecraftPSP, start, start.Add(time.Hour))
	if _, err := polarityFrame(mag, model.State{RadiusAU: 1}, opts); err == nil {
		t.Fatalf("expected error for missing field components")
	}
}

func TestLoadGOESEphemeris(t *testing.T) {
	path := filepath.Join(t.TempDir(), "goes16.tle")
	tle := "GOES 16\n" +
		"1 41866U 16071A   21275.50923611 -.00000259  00000-0  00000-0 0  9998\n" +
		"2 41866   0.0361  94.9905 0000788 243.8127 173.0973  1.00271295 17963\n"
	if err := os.WriteFile(path, []byte(tle), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	eph, err := loadGOESEphemeris(path)
	if err != nil {
		t.Fatalf("loadGOESEphemeris: %v", err)
	}
	at := time.Date(2021, time.October, 2, 12, 0, 0, 0, time.UTC)
	got := eph.SunDistanceKm(at)
	// One AU give or take well under a percent.
	if got < 0.99*core.AstronomicalUnitKm || got > 1.01*core.AstronomicalUnitKm {
		t.Fatalf("SunDistanceKm = %v, want about %v", got, core.AstronomicalUnitKm)
	}
}

func TestLoadGOESEphemerisRejectsMissingElements(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.tle")
	if err := os.WriteFile(path, []byte("GOES 16\n"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := loadGOESEphemeris(path); err == nil {
		t.Fatalf("expected error for a file without element lines")
	}
}
