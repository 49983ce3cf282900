// Command helioplot renders a multi-instrument quicklook figure for one
// spacecraft and time range: magnetic field and derived Parker-spiral
// polarity from a local CSV, X-ray light curves fetched from NOAA SWPC and
// the STIX data center.
package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"os"
	"time"

	"gonum.org/v1/plot/vg"

	"github.com/signalsfoundry/helioplot/core"
	"github.com/signalsfoundry/helioplot/export"
	"github.com/signalsfoundry/helioplot/figure"
	"github.com/signalsfoundry/helioplot/internal/fetch"
	"github.com/signalsfoundry/helioplot/internal/logging"
	"github.com/signalsfoundry/helioplot/internal/observability"
	"github.com/signalsfoundry/helioplot/model"
	"github.com/signalsfoundry/helioplot/series"
)

func main() {
	optionsPath := flag.String("options", "", "YAML options file; flags below fill in when absent")
	spacecraft := flag.String("spacecraft", "PSP", "spacecraft selection (PSP, SolO, STEREO-A, STEREO-B, L1)")
	startFlag := flag.String("start", "", "plot range start (RFC3339)")
	endFlag := flag.String("end", "", "plot range end (RFC3339)")
	resample := flag.Duration("resample", time.Minute, "resample cadence, 0 for native")

	magCSV := flag.String("mag-csv", "", "CSV with time,b,br,bt,bn magnetic field samples")
	windCSV := flag.String("wind-csv", "", "CSV with time,vsw,density,temperature[,pdyn] samples")
	radiusAU := flag.Float64("radius-au", 1, "spacecraft heliocentric distance in AU")
	latDeg := flag.Float64("lat", 0, "spacecraft heliographic latitude in degrees")

	goesLTC := flag.Bool("goes-ltc", false, "apply the light travel time correction to GOES timestamps")
	goesTLE := flag.String("goes-tle", "", "GOES TLE file refining the Sun distance used with -goes-ltc")

	out := flag.String("out", "figure.png", "output PNG path")
	wheel := flag.String("wheel", "", "also write the polarity color-wheel legend PNG here")
	parquetOut := flag.String("parquet", "", "also export the assembled mag/polarity frame as parquet")
	cacheDir := flag.String("cache-dir", "", "on-disk payload cache directory, empty to disable")
	flag.Parse()

	log := logging.NewFromEnv()
	ctx := context.Background()

	opts, err := buildOptions(*optionsPath, *spacecraft, *startFlag, *endFlag, *resample)
	if err != nil {
		log.Error(ctx, "invalid options", logging.Err(err))
		os.Exit(1)
	}

	collector, err := observability.NewCollector(nil)
	if err != nil {
		log.Error(ctx, "failed to initialise metrics collector", logging.Err(err))
		os.Exit(1)
	}

	var cache *fetch.Cache
	if *cacheDir != "" {
		cache, err = fetch.OpenCache(*cacheDir)
		if err != nil {
			log.Warn(ctx, "running without payload cache", logging.Err(err))
		} else {
			defer cache.Close()
		}
	}

	client := fetch.NewClient(30*time.Second, log, collector, cache)

	data := figure.Data{
		State: model.State{RadiusAU: *radiusAU, LatDeg: *latDeg},
	}

	if *magCSV != "" {
		data.Mag, err = loadFrameCSV(*magCSV)
		if err != nil {
			log.Error(ctx, "failed to load mag CSV", logging.String("path", *magCSV), logging.Err(err))
			os.Exit(1)
		}
		data.Mag = data.Mag.Clip(opts.Start, opts.End).Resample(opts.Resample)
	}
	if *windCSV != "" {
		data.SolarWind, err = loadFrameCSV(*windCSV)
		if err != nil {
			log.Error(ctx, "failed to load solar wind CSV", logging.String("path", *windCSV), logging.Err(err))
			os.Exit(1)
		}
		data.SolarWind = data.SolarWind.Clip(opts.Start, opts.End).Resample(opts.Resample)
	}

	if opts.Instruments.STIX {
		stix := fetch.NewSTIXClient(client, "")
		data.STIX, err = stix.FetchLightCurves(ctx, fetch.STIXRequest{
			Start:    opts.Start,
			End:      opts.End,
			LTC:      opts.STIXLTC,
			Resample: opts.Resample,
		})
		if err != nil {
			log.Warn(ctx, "continuing without STIX data", logging.Err(err))
		}
	}
	if opts.Instruments.GOES {
		var eph core.SunDistanceProvider
		if *goesTLE != "" {
			eph, err = loadGOESEphemeris(*goesTLE)
			if err != nil {
				log.Error(ctx, "failed to load GOES TLE", logging.String("path", *goesTLE), logging.Err(err))
				os.Exit(1)
			}
		}
		goes := fetch.NewGOESClient(client, "")
		data.GOES, err = goes.FetchXRS(ctx, fetch.GOESRequest{
			Start:     opts.Start,
			End:       opts.End,
			Satellite: opts.GOESSatellite,
			LTC:       *goesLTC,
			Ephemeris: eph,
			Resample:  opts.Resample,
		})
		if err != nil {
			log.Warn(ctx, "continuing without GOES data", logging.Err(err))
		}
	}

	started := time.Now()
	payload, err := figure.Render(opts, data)
	if err != nil {
		log.Error(ctx, "render failed", logging.Err(err))
		os.Exit(1)
	}
	collector.ObserveRender(time.Since(started))

	if err := os.WriteFile(*out, payload, 0o644); err != nil {
		log.Error(ctx, "failed to write figure", logging.String("path", *out), logging.Err(err))
		os.Exit(1)
	}
	log.Info(ctx, "wrote figure",
		logging.String("path", *out),
		logging.String("spacecraft", opts.Spacecraft.String()),
		logging.Duration("elapsed", time.Since(started)),
	)

	if *wheel != "" {
		legend, err := figure.ColorWheelPNG(2 * vg.Inch)
		if err != nil {
			log.Error(ctx, "failed to render color wheel", logging.Err(err))
			os.Exit(1)
		}
		if err := os.WriteFile(*wheel, legend, 0o644); err != nil {
			log.Error(ctx, "failed to write color wheel", logging.String("path", *wheel), logging.Err(err))
			os.Exit(1)
		}
	}

	if *parquetOut != "" {
		frame, err := polarityFrame(data.Mag, data.State, opts)
		if err != nil {
			log.Error(ctx, "nothing to export", logging.Err(err))
			os.Exit(1)
		}
		if err := export.WriteFrameFile(*parquetOut, frame); err != nil {
			log.Error(ctx, "parquet export failed", logging.String("path", *parquetOut), logging.Err(err))
			os.Exit(1)
		}
		log.Info(ctx, "wrote parquet export", logging.String("path", *parquetOut))
	}
}

// buildOptions loads the YAML options file when given, otherwise assembles
// options from the individual flags.
func buildOptions(path, spacecraft, start, end string, resample time.Duration) (figure.Options, error) {
	if path != "" {
		return figure.LoadOptions(path)
	}

	sc, err := model.ParseSpacecraft(spacecraft)
	if err != nil {
		return figure.Options{}, err
	}

	endT := time.Now().UTC()
	if end != "" {
		endT, err = time.Parse(time.RFC3339, end)
		if err != nil {
			return figure.Options{}, fmt.Errorf("bad end time %q: %w", end, err)
		}
	}
	startT := endT.Add(-24 * time.Hour)
	if start != "" {
		startT, err = time.Parse(time.RFC3339, start)
		if err != nil {
			return figure.Options{}, fmt.Errorf("bad start time %q: %w", start, err)
		}
	}

	opts := figure.DefaultOptions(sc, startT, endT)
	opts.Resample = resample
	return opts, opts.Validate()
}

// polarityFrame augments the magnetic field frame with the derived angle and
// polarity series for export.
func polarityFrame(mag *series.Frame, state model.State, opts figure.Options) (*series.Frame, error) {
	if mag == nil || mag.Len() == 0 {
		return nil, fmt.Errorf("no magnetic field data loaded")
	}
	b, br, bt, bn := mag.Column("b"), mag.Column("br"), mag.Column("bt"), mag.Column("bn")
	if br == nil || bt == nil || bn == nil {
		return nil, fmt.Errorf("mag frame missing field components")
	}

	out := series.New(mag.Times())
	for _, name := range mag.ColumnNames() {
		if err := out.AddColumn(name, mag.Column(name)); err != nil {
			return nil, err
		}
	}

	if b == nil {
		b = make([]float64, len(br))
		for i := range b {
			b[i] = math.Sqrt(br[i]*br[i] + bt[i]*bt[i] + bn[i]*bn[i])
		}
	}
	alpha, phi := core.MagAngles(b, br, bt, bn)
	pol, rel := core.ClassifyPolarity(br, bt, bn, state.RadiusAU, state.LatDeg, opts.Polarity)

	derived := []struct {
		name string
		col  []float64
	}{
		{"alpha", alpha},
		{"phi", phi},
		{"polarity", pol},
		{"phi_relative", rel},
	}
	for _, d := range derived {
		if err := out.AddColumn(d.name, d.col); err != nil {
			return nil, err
		}
	}
	return out, nil
}
