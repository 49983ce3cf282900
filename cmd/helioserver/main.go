// Command helioserver serves quicklook figures over HTTP. A background
// controller refreshes the X-ray datasets into an in-memory catalog;
// GET /v1/figure renders the current stack as PNG on demand.
package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/signalsfoundry/helioplot/catalog"
	"github.com/signalsfoundry/helioplot/figure"
	"github.com/signalsfoundry/helioplot/internal/fetch"
	"github.com/signalsfoundry/helioplot/internal/logging"
	"github.com/signalsfoundry/helioplot/internal/observability"
	"github.com/signalsfoundry/helioplot/internal/refresh"
	"github.com/signalsfoundry/helioplot/model"
)

// Config collects the server settings so tests can drive run directly.
type Config struct {
	ListenAddress   string
	Window          time.Duration
	RefreshInterval time.Duration
	Resample        time.Duration
	STIXLTC         bool

	STIXBaseURL string
	SWPCBaseURL string
	CacheDir    string

	LogLevel  string
	LogFormat string
}

func main() {
	cfg := Config{}
	flag.StringVar(&cfg.ListenAddress, "addr", ":8080", "HTTP listen address")
	flag.DurationVar(&cfg.Window, "window", 24*time.Hour, "how far back the refreshed datasets reach")
	flag.DurationVar(&cfg.RefreshInterval, "refresh", 5*time.Minute, "dataset refresh interval")
	flag.DurationVar(&cfg.Resample, "resample", time.Minute, "resample cadence for refreshed datasets")
	flag.BoolVar(&cfg.STIXLTC, "stix-ltc", true, "apply the light travel time correction to STIX")
	flag.StringVar(&cfg.STIXBaseURL, "stix-url", "", "STIX data center base URL, empty for the default")
	flag.StringVar(&cfg.SWPCBaseURL, "swpc-url", "", "NOAA SWPC base URL, empty for the default")
	flag.StringVar(&cfg.CacheDir, "cache-dir", "", "on-disk payload cache directory, empty to disable")
	flag.StringVar(&cfg.LogLevel, "log-level", os.Getenv("LOG_LEVEL"), "log level")
	flag.StringVar(&cfg.LogFormat, "log-format", os.Getenv("LOG_FORMAT"), "log format (text or json)")
	flag.Parse()

	log := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, cfg, log, nil); err != nil {
		log.Error(context.Background(), "server exited", logging.Err(err))
		os.Exit(1)
	}
}

// run wires the catalog, refresh loop, and HTTP surface, then blocks until
// the context is cancelled. A non-nil listener overrides cfg.ListenAddress.
func run(ctx context.Context, cfg Config, log logging.Logger, lis net.Listener) error {
	collector, err := observability.NewCollector(nil)
	if err != nil {
		return fmt.Errorf("initialise metrics: %w", err)
	}

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfigFromEnv(), log)
	if err != nil {
		return fmt.Errorf("initialise tracing: %w", err)
	}
	defer observability.ShutdownWithTimeout(context.Background(), shutdownTracing, log)

	var cache *fetch.Cache
	if cfg.CacheDir != "" {
		cache, err = fetch.OpenCache(cfg.CacheDir)
		if err != nil {
			log.Warn(ctx, "running without payload cache", logging.Err(err))
		} else {
			defer cache.Close()
		}
	}

	client := fetch.NewClient(30*time.Second, log, collector, cache)
	stix := fetch.NewSTIXClient(client, cfg.STIXBaseURL)
	goes := fetch.NewGOESClient(client, cfg.SWPCBaseURL)

	cat := catalog.New()
	cat.Subscribe(func(catalog.Event) { collector.SetDatasetCount(cat.Len()) })

	ctrl := refresh.NewController(cfg.RefreshInterval)
	ctrl.AddListener(func(ctx context.Context, now time.Time) {
		refreshDatasets(ctx, cfg, log, cat, stix, goes, now)
	})
	refreshDone := ctrl.Run(ctx)

	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())
	mux.Handle("/healthz", healthHandler(ctrl))
	mux.Handle("/v1/figure", collector.Middleware("figure", figureHandler(cfg, log, cat)))

	if lis == nil {
		lis, err = net.Listen("tcp", cfg.ListenAddress)
		if err != nil {
			return fmt.Errorf("listen on %s: %w", cfg.ListenAddress, err)
		}
	}

	srv := &http.Server{Handler: mux}
	serveErr := make(chan error, 1)
	go func() {
		if err := srv.Serve(lis); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
	}()
	log.Info(ctx, "serving quicklook figures", logging.String("addr", lis.Addr().String()))

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	log.Info(ctx, "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	<-refreshDone
	return nil
}

// refreshDatasets pulls the X-ray datasets for the trailing window into the
// catalog. Failures log and leave the previous dataset in place.
func refreshDatasets(ctx context.Context, cfg Config, log logging.Logger, cat *catalog.Catalog, stix *fetch.STIXClient, goes *fetch.GOESClient, now time.Time) {
	start := now.Add(-cfg.Window)

	if ds, err := stix.FetchLightCurves(ctx, fetch.STIXRequest{
		Start: start, End: now, LTC: cfg.STIXLTC, Resample: cfg.Resample,
	}); err != nil {
		log.Warn(ctx, "STIX refresh failed", logging.Err(err))
	} else if err := cat.Put(ds); err != nil {
		log.Warn(ctx, "STIX dataset rejected", logging.Err(err))
	}

	if ds, err := goes.FetchXRS(ctx, fetch.GOESRequest{
		Start: start, End: now, Resample: cfg.Resample,
	}); err != nil {
		log.Warn(ctx, "GOES refresh failed", logging.Err(err))
	} else if err := cat.Put(ds); err != nil {
		log.Warn(ctx, "GOES dataset rejected", logging.Err(err))
	}
}

func healthHandler(ctrl *refresh.Controller) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "ok last_refresh=%s\n", ctrl.LastTick().UTC().Format(time.RFC3339))
	})
}

// figureHandler renders the current catalog contents for the requested
// range. Query parameters: start, end (RFC3339, default trailing window),
// resample (duration).
func figureHandler(cfg Config, log logging.Logger, cat *catalog.Catalog) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, reqLog := logging.WithRequestLogger(r.Context(), log)

		opts, err := requestOptions(cfg, r)
		if err != nil {
			reqLog.Warn(ctx, "bad figure request", logging.Err(err))
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		data := figure.Data{
			STIX: cat.Get(model.Key{Spacecraft: model.SpacecraftSolO, Instrument: model.InstrumentSTIX}),
			GOES: cat.Get(model.Key{Spacecraft: model.SpacecraftL1, Instrument: model.InstrumentGOESXRS}),
		}
		// Catalog frames sit at the refresh cadence; a request for a
		// coarser cadence rebuckets them here.
		if opts.Resample != cfg.Resample {
			data.STIX = resampleDataset(data.STIX, opts.Resample)
			data.GOES = resampleDataset(data.GOES, opts.Resample)
		}

		started := time.Now()
		payload, err := figure.Render(opts, data)
		if err != nil {
			reqLog.Error(ctx, "render failed", logging.Err(err))
			http.Error(w, "render failed", http.StatusInternalServerError)
			return
		}
		reqLog.Info(ctx, "rendered figure",
			logging.Time("start", opts.Start),
			logging.Time("end", opts.End),
			logging.Duration("elapsed", time.Since(started)),
		)

		w.Header().Set("Content-Type", "image/png")
		w.Write(payload)
	})
}

// resampleDataset rebuckets a dataset's frame at the requested cadence,
// leaving the catalog's copy untouched. Nil and empty datasets pass through.
func resampleDataset(ds *model.Dataset, width time.Duration) *model.Dataset {
	if ds == nil || ds.Frame == nil || width <= 0 {
		return ds
	}
	out := *ds
	out.Frame = ds.Frame.Resample(width)
	return &out
}

// requestOptions maps the request's query parameters onto figure options.
// The server draws the two X-ray panels; the CLI covers the full stack.
func requestOptions(cfg Config, r *http.Request) (figure.Options, error) {
	q := r.URL.Query()

	end := time.Now().UTC()
	if s := q.Get("end"); s != "" {
		var err error
		end, err = time.Parse(time.RFC3339, s)
		if err != nil {
			return figure.Options{}, fmt.Errorf("bad end %q: %w", s, err)
		}
	}
	start := end.Add(-cfg.Window)
	if s := q.Get("start"); s != "" {
		var err error
		start, err = time.Parse(time.RFC3339, s)
		if err != nil {
			return figure.Options{}, fmt.Errorf("bad start %q: %w", s, err)
		}
	}

	opts := figure.DefaultOptions(model.SpacecraftSolO, start, end)
	opts.Instruments = figure.Instruments{STIX: true, GOES: true}
	opts.STIXLTC = cfg.STIXLTC
	opts.Resample = cfg.Resample
	if s := q.Get("resample"); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil || d < 0 {
			return figure.Options{}, fmt.Errorf("bad resample %q", s)
		}
		opts.Resample = d
	}
	return opts, opts.Validate()
}
