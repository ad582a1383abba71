// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

// Package geocoding turns free-text locations into points: provider clients,
// the ordered query-variant resolver and display label normalization.
package geocoding

import "context"

// Address holds the structured components a provider may return. Any of
// them can be empty.
type Address struct {
	HouseNumber  string `json:"house_number,omitempty"`
	Road         string `json:"road,omitempty"`
	City         string `json:"city,omitempty"`
	Town         string `json:"town,omitempty"`
	Village      string `json:"village,omitempty"`
	Municipality string `json:"municipality,omitempty"`
}

// Locality returns the first non-empty city-like designation, in the order
// town, city, village, municipality.
func (a Address) Locality() string {
	for _, v := range []string{a.Town, a.City, a.Village, a.Municipality} {
		if v != "" {
			return v
		}
	}

	return ""
}

// Candidate represents the best match returned by a provider for one query.
type Candidate struct {
	Latitude    float64
	Longitude   float64
	Address     Address
	DisplayName string
	Provider    string
}

// Geocoder interface for different geocoding providers.
//
// Geocode returns the single best candidate for query, restricted to the
// provider's configured country. An empty result set is reported as a
// *GeocodingError of type ErrorTypeNotFound.
type Geocoder interface {
	Geocode(ctx context.Context, query string) (*Candidate, error)
	Name() string
}
