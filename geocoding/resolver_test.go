// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package geocoding

import (
	"context"
	"errors"
	"testing"

	"github.com/jcodagnone/regionfund/metrics"
	"github.com/jcodagnone/regionfund/spatial"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGeocoder answers from a fixed table and records every query.
type fakeGeocoder struct {
	answers map[string]*Candidate
	err     error
	queries []string
}

func (f *fakeGeocoder) Name() string { return "fake" }

func (f *fakeGeocoder) Geocode(_ context.Context, query string) (*Candidate, error) {
	f.queries = append(f.queries, query)

	if c, ok := f.answers[query]; ok {
		return c, nil
	}

	if f.err != nil {
		return nil, f.err
	}

	return nil, notFound("fake", query)
}

func TestQueryVariants(t *testing.T) {
	assert.Equal(t, []string{
		"Main St, Kenora",
		"Main St, Kenora, Ontario, Canada",
		"Main St, Kenora, ON, Canada",
		"Main St Kenora",
	}, QueryVariants("Main St, Kenora"))

	assert.Equal(t, "Kenora", QueryVariants(" Kenora, ")[3])
}

func TestResolveCoordinatesSkipGeocoder(t *testing.T) {
	g := &fakeGeocoder{}
	r := NewResolver(g, nil)

	loc, err := r.Resolve(context.Background(), "43.6532, -79.3832")
	require.NoError(t, err)

	assert.Equal(t, spatial.Point{Lat: 43.6532, Lng: -79.3832}, loc.Point)
	assert.Equal(t, InputCoordinates, loc.InputKind)
	assert.Empty(t, loc.DisplayLabel)
	assert.Empty(t, g.queries)
}

func TestResolveStopsAtFirstHit(t *testing.T) {
	g := &fakeGeocoder{answers: map[string]*Candidate{
		"Main St, Kenora, ON, Canada": {
			Latitude:  49.7670,
			Longitude: -94.4894,
			Address:   Address{Road: "Main Street South", Town: "Kenora"},
		},
	}}

	reg := prometheus.NewRegistry()
	collector, err := metrics.NewCollector(reg)
	require.NoError(t, err)

	r := NewResolver(g, collector)

	loc, err := r.Resolve(context.Background(), "Main St, Kenora")
	require.NoError(t, err)

	assert.Len(t, g.queries, 3)
	assert.Equal(t, InputAddress, loc.InputKind)
	assert.Equal(t, spatial.Point{Lat: 49.7670, Lng: -94.4894}, loc.Point)
	assert.Equal(t, "Main Street South, Kenora", loc.DisplayLabel)

	assert.InDelta(t, 1, testutil.ToFloat64(collector.GeocodeAttempts.WithLabelValues("fake", "1", metrics.OutcomeEmpty)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(collector.GeocodeAttempts.WithLabelValues("fake", "3", metrics.OutcomeHit)), 0)
	assert.Equal(t, 3, testutil.CollectAndCount(collector.GeocodeAttempts))
}

func TestResolveUnresolvable(t *testing.T) {
	g := &fakeGeocoder{}
	r := NewResolver(g, nil)

	loc, err := r.Resolve(context.Background(), "asdkjhqwe")
	assert.Nil(t, loc)
	require.Error(t, err)

	assert.Equal(t, QueryVariants("asdkjhqwe"), g.queries)
	assert.True(t, IsUnresolvable(err))
	assert.Equal(t, UnresolvableMessage, err.Error())

	var unresolvable *UnresolvableError
	require.ErrorAs(t, err, &unresolvable)
	assert.Len(t, unresolvable.Attempts, 4)
	assert.True(t, IsNotFoundError(err))
	assert.Contains(t, unresolvable.Diagnostic(), "variant 4")
}

func TestResolveProviderErrorsMoveOn(t *testing.T) {
	boom := &GeocodingError{Type: ErrorTypeNetworkError, Message: "fake: request failed"}
	g := &fakeGeocoder{
		err: boom,
		answers: map[string]*Candidate{
			"Sudbury, Ontario, Canada": {Latitude: 46.4917, Longitude: -80.993, DisplayName: "Sudbury, Ontario, Canada"},
		},
	}

	loc, err := NewResolver(g, nil).Resolve(context.Background(), "Sudbury")
	require.NoError(t, err)

	assert.Len(t, g.queries, 2)
	assert.Equal(t, "Sudbury", loc.DisplayLabel)
}

func TestResolveRejectsInvalidCandidates(t *testing.T) {
	g := &fakeGeocoder{answers: map[string]*Candidate{
		"Nowhere":                  nil,
		"Nowhere, Ontario, Canada": {Latitude: 123, Longitude: -79},
	}}

	_, err := NewResolver(g, nil).Resolve(context.Background(), "Nowhere")
	require.Error(t, err)

	var geoErr *GeocodingError
	require.ErrorAs(t, err, &geoErr)
	assert.Len(t, g.queries, 4)
}

func TestResolveCanceledContext(t *testing.T) {
	g := &fakeGeocoder{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewResolver(g, nil).Resolve(ctx, "Toronto")
	require.Error(t, err)

	assert.Empty(t, g.queries)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.True(t, IsUnresolvable(err))
}
