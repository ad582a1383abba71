// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/jcodagnone/regionfund/geocoding"
	"github.com/jcodagnone/regionfund/metrics"
	"github.com/jcodagnone/regionfund/regions"
	"github.com/jcodagnone/regionfund/resolution"
	"github.com/spf13/viper"
)

// Geocoding providers accepted by --geocoder.
const (
	providerNominatim = "nominatim"
	providerGoogle    = "google"
)

func loadRegions() (*regions.Index, error) {
	path := viper.GetString("regions-file")

	idx, err := regions.Load(path)
	if err != nil {
		return nil, err
	}

	log.Printf("Loaded %d regions from %s", idx.Len(), path)

	return idx, nil
}

func newGeocoder(ctx context.Context) (geocoding.Geocoder, error) {
	var trace io.Writer
	if viper.GetBool("http-trace") {
		trace = os.Stderr
	}

	timeout := viper.GetDuration("geocode-timeout")

	switch provider := viper.GetString("geocoder"); provider {
	case providerNominatim:
		log.Printf("Geocoding: Nominatim (%s)", viper.GetString("nominatim-url"))

		return geocoding.NewNominatimGeocoder(geocoding.NominatimOptions{
			BaseURL:     viper.GetString("nominatim-url"),
			UserAgent:   viper.GetString("user-agent"),
			Timeout:     timeout,
			TraceWriter: trace,
		}), nil
	case providerGoogle:
		apiKey := viper.GetString("google-maps-api-key")
		if apiKey == "" {
			log.Println("GOOGLE_MAPS_API_KEY is not set. Attempting to retrieve via ADC...")

			var err error

			apiKey, err = geocoding.APIKeyFromADC(ctx, geocoding.DefaultAPIKeyDisplayName)
			if err != nil {
				return nil, fmt.Errorf("GOOGLE_MAPS_API_KEY is not set and ADC failed: %w", err)
			}

			log.Println("Retrieved Google Maps API Key via ADC")
		}

		log.Println("Geocoding: Google Maps")

		return geocoding.NewGoogleMapsGeocoder(geocoding.GoogleMapsOptions{
			APIKey:      apiKey,
			Timeout:     timeout,
			TraceWriter: trace,
		}), nil
	default:
		return nil, fmt.Errorf("unknown geocoder %q, expected %s or %s", provider, providerNominatim, providerGoogle)
	}
}

// newService wires the resolution pipeline from the configuration. collector
// may be nil.
func newService(ctx context.Context, collector *metrics.Collector) (*resolution.Service, *regions.Index, error) {
	idx, err := loadRegions()
	if err != nil {
		return nil, nil, err
	}

	geocoder, err := newGeocoder(ctx)
	if err != nil {
		return nil, nil, err
	}

	resolver := geocoding.NewResolver(geocoder, collector)

	return resolution.NewService(resolver, idx, collector), idx, nil
}
