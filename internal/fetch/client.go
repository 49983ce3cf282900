// Package fetch retrieves the auxiliary X-ray light-curve datasets: GOES/XRS
// from NOAA SWPC and SolO/STIX from the STIX data center. Fetchers degrade
// to empty datasets on upstream trouble; the figure layer renders whatever
// it gets.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
	jsoniter "github.com/json-iterator/go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/signalsfoundry/helioplot/internal/logging"
	"github.com/signalsfoundry/helioplot/internal/observability"
)

const tracerName = "github.com/signalsfoundry/helioplot/internal/fetch"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Client is the shared HTTP layer underneath the dataset fetchers.
type Client struct {
	HTTP      *http.Client
	UserAgent string
	Retries   int

	Log     logging.Logger
	Metrics *observability.Collector
	Cache   *Cache
}

// NewClient builds a client with the given timeout and optional cache.
// Metrics and cache may be nil; logging defaults to noop.
func NewClient(timeout time.Duration, log logging.Logger, metrics *observability.Collector, cache *Cache) *Client {
	if log == nil {
		log = logging.Noop()
	}
	return &Client{
		HTTP:      &http.Client{Timeout: timeout},
		UserAgent: "helioplot/1.0",
		Retries:   2,
		Log:       log,
		Metrics:   metrics,
		Cache:     cache,
	}
}

// getJSON retrieves url and decodes the payload into v. The raw payload is
// served from and written to the cache when one is configured; source labels
// the metrics and the trace span.
func (c *Client) getJSON(ctx context.Context, source, url string, v any) error {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "fetch."+source)
	defer span.End()
	span.SetAttributes(attribute.String("fetch.url", url))

	start := time.Now()

	if c.Cache != nil {
		if payload, ok := c.Cache.Get(source, url); ok {
			span.SetAttributes(attribute.Bool("fetch.cache_hit", true))
			c.Metrics.ObserveFetch(source, "cache", 0, time.Since(start))
			return json.Unmarshal(payload, v)
		}
	}

	payload, err := c.download(ctx, url)
	if err != nil {
		c.Metrics.ObserveFetch(source, "error", 0, time.Since(start))
		return err
	}

	c.Metrics.ObserveFetch(source, "ok", int64(len(payload)), time.Since(start))
	c.Log.Debug(ctx, "payload retrieved",
		logging.String("source", source),
		logging.String("size", humanize.Bytes(uint64(len(payload)))),
		logging.Duration("elapsed", time.Since(start)),
	)

	if c.Cache != nil {
		if err := c.Cache.Put(source, url, payload); err != nil {
			c.Log.Warn(ctx, "cache write failed", logging.String("source", source), logging.Err(err))
		}
	}

	return json.Unmarshal(payload, v)
}

// download performs the GET with bounded retries on transport errors and
// 5xx responses.
func (c *Client) download(ctx context.Context, url string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.Retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * 500 * time.Millisecond):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("User-Agent", c.UserAgent)
		req.Header.Set("Accept", "application/json")

		resp, err := c.HTTP.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("GET %s: %w", url, err)
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("read %s: %w", url, err)
			continue
		}

		if resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("GET %s: HTTP %d", url, resp.StatusCode)
			continue
		}
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("GET %s: HTTP %d", url, resp.StatusCode)
		}
		return body, nil
	}
	return nil, lastErr
}
