// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package geocoding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	apikeys "cloud.google.com/go/apikeys/apiv2"
	"cloud.google.com/go/apikeys/apiv2/apikeyspb"
	"github.com/jcodagnone/regionfund/spatial"
	"github.com/jcodagnone/regionfund/utils/httputils"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/iterator"
)

const (
	googleProvider   = "google_maps"
	googleGeocodeURL = "https://maps.googleapis.com/maps/api/geocode/json"

	// DefaultAPIKeyDisplayName is the API key looked up through ADC when no
	// key is configured.
	DefaultAPIKeyDisplayName = "Region Funding Geocoding Key"
)

// GoogleMapsOptions configures GoogleMapsGeocoder.
type GoogleMapsOptions struct {
	APIKey      string
	CountryCode string
	Timeout     time.Duration
	TraceWriter io.Writer
}

// GoogleMapsGeocoder uses Google Maps Geocoding API.
type GoogleMapsGeocoder struct {
	apiKey      string
	countryCode string
	baseURL     string
	httpClient  *http.Client
}

// NewGoogleMapsGeocoder creates a new Google Maps geocoder.
func NewGoogleMapsGeocoder(options GoogleMapsOptions) *GoogleMapsGeocoder {
	if options.CountryCode == "" {
		options.CountryCode = DefaultCountryCode
	}

	if options.Timeout <= 0 {
		options.Timeout = DefaultTimeout
	}

	return &GoogleMapsGeocoder{
		apiKey:      options.APIKey,
		countryCode: strings.ToLower(options.CountryCode),
		baseURL:     googleGeocodeURL,
		httpClient: httputils.NewClient(httputils.ClientOptions{
			Timeout:     options.Timeout,
			TraceWriter: options.TraceWriter,
			TraceBody:   true,
		}),
	}
}

type googleMapsResponse struct {
	Results []struct {
		AddressComponents []struct {
			LongName string   `json:"long_name"`
			Types    []string `json:"types"`
		} `json:"address_components"`
		Geometry struct {
			Location struct {
				Lat *float64 `json:"lat"`
				Lng *float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
		FormattedAddress string `json:"formatted_address"`
	} `json:"results"`
	Status       string `json:"status"` // OK, ZERO_RESULTS, etc.
	ErrorMessage string `json:"error_message"`
}

// Name implements Geocoder.
func (g *GoogleMapsGeocoder) Name() string {
	return googleProvider
}

// Geocode implements Geocoder.
func (g *GoogleMapsGeocoder) Geocode(ctx context.Context, query string) (*Candidate, error) {
	params := url.Values{}
	params.Set("address", query)
	params.Set("key", g.apiKey)
	params.Set("region", g.countryCode)
	params.Set("components", "country:"+strings.ToUpper(g.countryCode))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, &GeocodingError{Type: ErrorTypeInvalidRequest, Message: "building google maps request", Err: err}
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransportError(err, googleProvider)
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, ClassifyHTTPError(resp.StatusCode, googleProvider)
	}

	var gmResp googleMapsResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&gmResp); err != nil {
		return nil, &GeocodingError{Type: ErrorTypeMalformedResponse, Message: "google_maps: decoding response", Err: err}
	}

	switch gmResp.Status {
	case "OK":
	case "ZERO_RESULTS":
		return nil, notFound(googleProvider, query)
	case "OVER_QUERY_LIMIT", "OVER_DAILY_LIMIT":
		return nil, &GeocodingError{Type: ErrorTypeQuotaExceeded, Message: "google maps status: " + gmResp.Status}
	case "REQUEST_DENIED", "INVALID_REQUEST":
		return nil, &GeocodingError{
			Type:    ErrorTypeInvalidRequest,
			Message: fmt.Sprintf("google maps status: %s %s", gmResp.Status, gmResp.ErrorMessage),
		}
	default:
		return nil, &GeocodingError{Type: ErrorTypeUnknown, Message: "google maps status: " + gmResp.Status}
	}

	if len(gmResp.Results) == 0 {
		return nil, notFound(googleProvider, query)
	}

	result := gmResp.Results[0]

	loc := result.Geometry.Location
	if loc.Lat == nil || loc.Lng == nil {
		return nil, malformed(googleProvider, "result without geometry.location")
	}

	if !(spatial.Point{Lat: *loc.Lat, Lng: *loc.Lng}).Valid() {
		return nil, malformed(googleProvider, "coordinates out of range: %f, %f", *loc.Lat, *loc.Lng)
	}

	var address Address

	for _, c := range result.AddressComponents {
		switch {
		case slices.Contains(c.Types, "street_number"):
			address.HouseNumber = c.LongName
		case slices.Contains(c.Types, "route"):
			address.Road = c.LongName
		case slices.Contains(c.Types, "locality"):
			address.City = c.LongName
		case slices.Contains(c.Types, "postal_town"):
			address.Town = c.LongName
		case slices.Contains(c.Types, "administrative_area_level_3"):
			address.Municipality = c.LongName
		}
	}

	return &Candidate{
		Latitude:    *loc.Lat,
		Longitude:   *loc.Lng,
		Address:     address,
		DisplayName: result.FormattedAddress,
		Provider:    googleProvider,
	}, nil
}

// APIKeyFromADC looks up the Maps API key named displayName in the project
// of the Application Default Credentials.
func APIKeyFromADC(ctx context.Context, displayName string) (string, error) {
	creds, err := google.FindDefaultCredentials(ctx, "https://www.googleapis.com/auth/cloud-platform")
	if err != nil {
		return "", fmt.Errorf("finding default credentials: %w", err)
	}

	projectID := creds.ProjectID
	if projectID == "" {
		return "", errors.New("no project ID in default credentials; set GOOGLE_MAPS_API_KEY instead")
	}

	client, err := apikeys.NewClient(ctx)
	if err != nil {
		return "", fmt.Errorf("creating apikeys client: %w", err)
	}
	defer client.Close()

	it := client.ListKeys(ctx, &apikeyspb.ListKeysRequest{
		Parent: fmt.Sprintf("projects/%s/locations/global", projectID),
	})

	for {
		key, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}

		if err != nil {
			return "", fmt.Errorf("listing keys: %w", err)
		}

		if key.DisplayName != displayName {
			continue
		}

		// ListKeys redacts the secret.
		log.Printf("Found key resource '%s', retrieving secret...", key.Name)

		resp, err := client.GetKeyString(ctx, &apikeyspb.GetKeyStringRequest{Name: key.Name})
		if err != nil {
			return "", fmt.Errorf("getting key string: %w", err)
		}

		if resp.KeyString == "" {
			return "", fmt.Errorf("key '%s' found but KeyString is empty", displayName)
		}

		return resp.KeyString, nil
	}

	return "", fmt.Errorf("key with display name '%s' not found in project %s", displayName, projectID)
}
