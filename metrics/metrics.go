// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

// Package metrics bundles the Prometheus instruments of the resolution
// pipeline and its HTTP surface.
package metrics

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Geocoding attempt outcomes.
const (
	OutcomeHit   = "hit"
	OutcomeEmpty = "empty"
	OutcomeError = "error"
)

// Collector holds every instrument. A nil *Collector is valid and records
// nothing, so components can be built without metrics in tests and CLIs.
type Collector struct {
	gatherer prometheus.Gatherer

	GeocodeAttempts *prometheus.CounterVec
	GeocodeDuration *prometheus.HistogramVec
	Resolutions     *prometheus.CounterVec
	HTTPRequests    *prometheus.CounterVec
	RegionsLoaded   prometheus.Gauge
}

// NewCollector registers the instruments against reg, defaulting to the
// global Prometheus registry when nil. Registering twice against the same
// registry returns the already registered instruments.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	attempts, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "regionfund_geocode_attempts_total",
		Help: "Geocoding requests issued, labeled by provider, query variant (1-4) and outcome.",
	}, []string{"provider", "variant", "outcome"}))
	if err != nil {
		return nil, err
	}

	duration, err := register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "regionfund_geocode_duration_seconds",
		Help:    "Latency of single geocoding requests in seconds.",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"provider"}))
	if err != nil {
		return nil, err
	}

	resolutions, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "regionfund_resolutions_total",
		Help: "Completed resolution requests, labeled by input kind, region code and outcome.",
	}, []string{"input_kind", "region", "outcome"}))
	if err != nil {
		return nil, err
	}

	requests, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "regionfund_http_requests_total",
		Help: "Handled HTTP requests, labeled by route and status code.",
	}, []string{"route", "code"}))
	if err != nil {
		return nil, err
	}

	loaded, err := register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "regionfund_regions_loaded",
		Help: "Number of regions held by the in-memory index.",
	}))
	if err != nil {
		return nil, err
	}

	return &Collector{
		gatherer:        gatherer,
		GeocodeAttempts: attempts,
		GeocodeDuration: duration,
		Resolutions:     resolutions,
		HTTPRequests:    requests,
		RegionsLoaded:   loaded,
	}, nil
}

// ObserveGeocodeAttempt records one variant request.
func (c *Collector) ObserveGeocodeAttempt(provider string, variant int, outcome string, elapsed time.Duration) {
	if c == nil {
		return
	}

	c.GeocodeAttempts.WithLabelValues(provider, strconv.Itoa(variant), outcome).Inc()
	c.GeocodeDuration.WithLabelValues(provider).Observe(elapsed.Seconds())
}

// ObserveResolution records a finished pipeline run. An empty region means
// the point fell outside every region.
func (c *Collector) ObserveResolution(inputKind, region, outcome string) {
	if c == nil {
		return
	}

	if region == "" {
		region = "none"
	}

	if inputKind == "" {
		inputKind = "unknown"
	}

	c.Resolutions.WithLabelValues(inputKind, region, outcome).Inc()
}

// ObserveHTTPRequest records a handled request.
func (c *Collector) ObserveHTTPRequest(route string, code int) {
	if c == nil {
		return
	}

	if route == "" {
		route = "unmatched"
	}

	c.HTTPRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
}

// SetRegionsLoaded publishes the size of the region index.
func (c *Collector) SetRegionsLoaded(n int) {
	if c == nil {
		return
	}

	c.RegionsLoaded.Set(float64(n))
}

// Handler exposes a ready-to-use /metrics handler.
func (c *Collector) Handler() http.Handler {
	gatherer := prometheus.DefaultGatherer
	if c != nil && c.gatherer != nil {
		gatherer = c.gatherer
	}

	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}

			return c, fmt.Errorf("collector already registered with incompatible type %T", are.ExistingCollector)
		}

		return c, err
	}

	return c, nil
}
