// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package resolution

import (
	"context"
	"errors"
	"testing"

	"github.com/jcodagnone/regionfund/funding"
	"github.com/jcodagnone/regionfund/geocoding"
	"github.com/jcodagnone/regionfund/metrics"
	"github.com/jcodagnone/regionfund/regions"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const regionsFile = "../regions/testdata/ontario_regions.geojson"

// stubGeocoder knows a handful of queries and counts every call.
type stubGeocoder struct {
	known map[string]*geocoding.Candidate
	calls int
}

func (s *stubGeocoder) Name() string { return "stub" }

func (s *stubGeocoder) Geocode(_ context.Context, query string) (*geocoding.Candidate, error) {
	s.calls++

	if c, ok := s.known[query]; ok {
		return c, nil
	}

	return nil, &geocoding.GeocodingError{Type: geocoding.ErrorTypeNotFound, Message: "stub: no results"}
}

func newStubGeocoder() *stubGeocoder {
	return &stubGeocoder{known: map[string]*geocoding.Candidate{
		"Sudbury, Ontario": {
			Latitude:    46.4917,
			Longitude:   -80.9930,
			Address:     geocoding.Address{City: "Greater Sudbury"},
			DisplayName: "Greater Sudbury, Sudbury District, Ontario, Canada",
		},
		"Montreal, Ontario, Canada": {
			Latitude:    45.5017,
			Longitude:   -73.5673,
			DisplayName: "Montréal, Québec, Canada",
		},
	}}
}

func newTestService(t *testing.T, g geocoding.Geocoder, collector *metrics.Collector) *Service {
	t.Helper()

	idx, err := regions.Load(regionsFile)
	require.NoError(t, err)

	return NewService(geocoding.NewResolver(g, collector), idx, collector)
}

func TestHandleCoordinatesBusinessInToronto(t *testing.T) {
	g := newStubGeocoder()
	svc := newTestService(t, g, nil)

	res, err := svc.Handle(context.Background(), NewRequest("43.6532, -79.3832", funding.CategoryBusiness, ""))
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.Equal(t, geocoding.InputCoordinates, res.InputType)
	assert.InDelta(t, 43.6532, res.Latitude, 1e-12)
	assert.InDelta(t, -79.3832, res.Longitude, 1e-12)
	require.NotNil(t, res.Region)
	assert.Equal(t, regions.CodeSouth, res.Region.Code)
	assert.Equal(t, "This location is in Southern Ontario.", res.Message)
	assert.Nil(t, res.DisplayAddress)
	assert.Equal(t, 50, res.FundingInfo.FundingPercentage)
	assert.Len(t, res.H3Cell, 15)
	assert.Zero(t, g.calls)
}

func TestHandleAddressIndigenousInSudbury(t *testing.T) {
	g := newStubGeocoder()
	svc := newTestService(t, g, nil)

	res, err := svc.Handle(context.Background(), NewRequest("  Sudbury, Ontario ", funding.CategoryIndigenous, ""))
	require.NoError(t, err)

	assert.Equal(t, geocoding.InputAddress, res.InputType)
	require.NotNil(t, res.Region)
	assert.Equal(t, regions.CodeNorth, res.Region.Code)
	assert.Equal(t, "This location is in Northern Ontario.", res.Message)
	require.NotNil(t, res.DisplayAddress)
	assert.Equal(t, "Greater Sudbury", *res.DisplayAddress)
	assert.Equal(t, 75, res.FundingInfo.FundingPercentage)
	require.NotNil(t, res.FundingInfo.Region)
	assert.Equal(t, regions.CodeNorth, *res.FundingInfo.Region)
	assert.Equal(t, 1, g.calls)
}

func TestHandleOutsideOntario(t *testing.T) {
	g := newStubGeocoder()
	svc := newTestService(t, g, nil)

	res, err := svc.Handle(context.Background(), NewRequest("Montreal", funding.CategoryMunicipality, funding.BracketBelow170k))
	require.NoError(t, err)

	assert.Nil(t, res.Region)
	assert.Equal(t, MsgOutside, res.Message)
	assert.Equal(t, 0, res.FundingInfo.FundingPercentage)
	assert.Nil(t, res.FundingInfo.Region)
	assert.Equal(t, "Montréal, Québec", *res.DisplayAddress)
	assert.Equal(t, 2, g.calls)
}

func TestHandleGibberishIsUnresolvable(t *testing.T) {
	g := newStubGeocoder()

	reg := prometheus.NewRegistry()
	collector, err := metrics.NewCollector(reg)
	require.NoError(t, err)

	svc := newTestService(t, g, collector)

	res, err := svc.Handle(context.Background(), NewRequest("asdkjhqwe zzxq", funding.CategoryBusiness, ""))
	assert.Nil(t, res)

	var unresolvable *geocoding.UnresolvableError
	require.ErrorAs(t, err, &unresolvable)
	assert.Contains(t, err.Error(), "Adding \"Ontario, Canada\" to your address")
	assert.Contains(t, err.Error(), "latitude, longitude")
	assert.Equal(t, 4, g.calls)

	assert.InDelta(t, 1, testutil.ToFloat64(collector.Resolutions.WithLabelValues("address", "none", outcomeUnresolvable)), 0)
}

func TestHandleValidation(t *testing.T) {
	location := func(s string) *string { return &s }

	tests := []struct {
		name string
		req  Request
		want string
	}{
		{"missing location", Request{ApplicantType: funding.CategoryBusiness}, MsgLocationRequired},
		{"blank location", Request{Location: location("   "), ApplicantType: funding.CategoryBusiness}, MsgLocationEmpty},
		{"missing applicant", Request{Location: location("Toronto")}, MsgApplicantRequired},
		{"unknown applicant", Request{Location: location("Toronto"), ApplicantType: "charity"}, MsgApplicantInvalid},
		{
			"municipality without bracket",
			Request{Location: location("Toronto"), ApplicantType: funding.CategoryMunicipality},
			MsgPopulationRequired,
		},
		{
			"municipality with unknown bracket",
			Request{Location: location("Toronto"), ApplicantType: funding.CategoryMunicipality, MunicipalityPopulation: "huge"},
			MsgPopulationInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newStubGeocoder()
			svc := newTestService(t, g, nil)

			_, err := svc.Handle(context.Background(), tt.req)

			var invalid *InvalidInputError
			require.ErrorAs(t, err, &invalid)
			assert.Equal(t, tt.want, invalid.Message)
			assert.True(t, IsInvalidInput(err))
			assert.Zero(t, g.calls)
		})
	}
}

func TestHandleBusinessIgnoresBracket(t *testing.T) {
	svc := newTestService(t, newStubGeocoder(), nil)

	_, err := svc.Handle(context.Background(), NewRequest("43.6532, -79.3832", funding.CategoryBusiness, "huge"))
	assert.NoError(t, err)
}

func TestHandleWithoutRegionData(t *testing.T) {
	g := newStubGeocoder()
	svc := NewService(geocoding.NewResolver(g, nil), nil, nil)

	_, err := svc.Handle(context.Background(), NewRequest("43.6532, -79.3832", funding.CategoryBusiness, ""))
	require.ErrorIs(t, err, regions.ErrUnavailable)
	assert.Zero(t, g.calls)
}

type failingResolver struct{}

func (failingResolver) Resolve(context.Context, string) (*geocoding.ResolvedLocation, error) {
	return nil, errors.New("boom")
}

func TestHandleInternalFailure(t *testing.T) {
	idx, err := regions.Load(regionsFile)
	require.NoError(t, err)

	_, err = NewService(failingResolver{}, idx, nil).Handle(context.Background(), NewRequest("Toronto", funding.CategoryBusiness, ""))
	require.Error(t, err)

	assert.False(t, IsInvalidInput(err))
	assert.False(t, geocoding.IsUnresolvable(err))
	assert.NotErrorIs(t, err, regions.ErrUnavailable)
}
