package observability

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector bundles Prometheus metrics for the data fetchers and the figure
// server, and provides helpers to wire them into HTTP handlers.
type Collector struct {
	gatherer prometheus.Gatherer

	FetchRequests *prometheus.CounterVec
	FetchDuration *prometheus.HistogramVec
	FetchBytes    *prometheus.CounterVec

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	DatasetsHeld   prometheus.Gauge
	RenderDuration prometheus.Histogram
}

// NewCollector registers the metrics against the provided registerer,
// defaulting to the global Prometheus registry when nil.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	fetchRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "helioplot_fetch_requests_total",
		Help: "Total dataset fetch attempts, labeled by source and outcome.",
	}, []string{"source", "outcome"})
	fetchRequests, err := registerCounterVec(reg, fetchRequests, "helioplot_fetch_requests_total")
	if err != nil {
		return nil, err
	}

	fetchDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "helioplot_fetch_duration_seconds",
		Help:    "Dataset fetch latency in seconds, labeled by source.",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
	}, []string{"source"})
	fetchDuration, err = registerHistogramVec(reg, fetchDuration, "helioplot_fetch_duration_seconds")
	if err != nil {
		return nil, err
	}

	fetchBytes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "helioplot_fetch_bytes_total",
		Help: "Total payload bytes retrieved, labeled by source.",
	}, []string{"source"})
	fetchBytes, err = registerCounterVec(reg, fetchBytes, "helioplot_fetch_bytes_total")
	if err != nil {
		return nil, err
	}

	httpRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "helioplot_http_requests_total",
		Help: "Total handled HTTP requests, labeled by route and status code.",
	}, []string{"route", "code"})
	httpRequests, err = registerCounterVec(reg, httpRequests, "helioplot_http_requests_total")
	if err != nil {
		return nil, err
	}

	httpDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "helioplot_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds, labeled by route.",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"route"})
	httpDuration, err = registerHistogramVec(reg, httpDuration, "helioplot_http_request_duration_seconds")
	if err != nil {
		return nil, err
	}

	datasetsHeld, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "helioplot_catalog_datasets",
		Help: "Current number of datasets held in the catalog.",
	}), "helioplot_catalog_datasets")
	if err != nil {
		return nil, err
	}

	renderDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "helioplot_render_duration_seconds",
		Help:    "Figure render latency in seconds.",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	})
	if err := reg.Register(renderDuration); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				renderDuration = existing
			} else {
				return nil, fmt.Errorf("collector helioplot_render_duration_seconds already registered with incompatible type")
			}
		} else {
			return nil, err
		}
	}

	return &Collector{
		gatherer:       gatherer,
		FetchRequests:  fetchRequests,
		FetchDuration:  fetchDuration,
		FetchBytes:     fetchBytes,
		HTTPRequests:   httpRequests,
		HTTPDuration:   httpDuration,
		DatasetsHeld:   datasetsHeld,
		RenderDuration: renderDuration,
	}, nil
}

// ObserveFetch records one fetch attempt.
func (c *Collector) ObserveFetch(source, outcome string, bytes int64, elapsed time.Duration) {
	if c == nil {
		return
	}
	if c.FetchRequests != nil {
		c.FetchRequests.WithLabelValues(source, outcome).Inc()
	}
	if c.FetchDuration != nil {
		c.FetchDuration.WithLabelValues(source).Observe(elapsed.Seconds())
	}
	if c.FetchBytes != nil && bytes > 0 {
		c.FetchBytes.WithLabelValues(source).Add(float64(bytes))
	}
}

// SetDatasetCount drives the catalog gauge; the catalog calls it through a
// subscriber installed by the server.
func (c *Collector) SetDatasetCount(n int) {
	if c == nil || c.DatasetsHeld == nil {
		return
	}
	c.DatasetsHeld.Set(float64(n))
}

// ObserveRender records one figure render.
func (c *Collector) ObserveRender(elapsed time.Duration) {
	if c == nil || c.RenderDuration == nil {
		return
	}
	c.RenderDuration.Observe(elapsed.Seconds())
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

// Middleware records request counts and durations for an HTTP route.
func (c *Collector) Middleware(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(rec, r)

		if c == nil {
			return
		}
		if c.HTTPRequests != nil {
			c.HTTPRequests.WithLabelValues(route, fmt.Sprintf("%d", rec.code)).Inc()
		}
		if c.HTTPDuration != nil {
			c.HTTPDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
		}
	})
}

// Handler exposes a ready-to-use /metrics handler.
func (c *Collector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
