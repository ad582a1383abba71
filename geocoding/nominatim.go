// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package geocoding

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jcodagnone/regionfund/spatial"
	"github.com/jcodagnone/regionfund/utils/httputils"
	"github.com/tidwall/gjson"
)

// Defaults for the public OpenStreetMap Nominatim instance.
const (
	DefaultNominatimURL = "https://nominatim.openstreetmap.org"
	DefaultUserAgent    = "Ontario-Map-App/1.0"
	DefaultCountryCode  = "ca"
	DefaultTimeout      = 10 * time.Second

	nominatimProvider = "nominatim"
	maxResponseBytes  = 1 << 20
)

// NominatimOptions configures NominatimGeocoder. Zero values take the
// package defaults.
type NominatimOptions struct {
	BaseURL     string
	CountryCode string
	UserAgent   string
	Timeout     time.Duration

	// TraceWriter receives HTTP dumps when set.
	TraceWriter io.Writer
}

// NominatimGeocoder queries the Nominatim /search endpoint.
type NominatimGeocoder struct {
	baseURL     string
	countryCode string
	httpClient  *http.Client
}

// NewNominatimGeocoder creates a new Nominatim geocoder.
func NewNominatimGeocoder(options NominatimOptions) *NominatimGeocoder {
	if options.BaseURL == "" {
		options.BaseURL = DefaultNominatimURL
	}

	if options.CountryCode == "" {
		options.CountryCode = DefaultCountryCode
	}

	if options.UserAgent == "" {
		options.UserAgent = DefaultUserAgent
	}

	if options.Timeout <= 0 {
		options.Timeout = DefaultTimeout
	}

	return &NominatimGeocoder{
		baseURL:     strings.TrimRight(options.BaseURL, "/"),
		countryCode: strings.ToLower(options.CountryCode),
		httpClient: httputils.NewClient(httputils.ClientOptions{
			Timeout:     options.Timeout,
			Headers:     map[string]string{"User-Agent": options.UserAgent},
			TraceWriter: options.TraceWriter,
			TraceBody:   true,
		}),
	}
}

// Name implements Geocoder.
func (g *NominatimGeocoder) Name() string {
	return nominatimProvider
}

// Geocode implements Geocoder. It asks for exactly one result with the
// structured address details.
func (g *NominatimGeocoder) Geocode(ctx context.Context, query string) (*Candidate, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("limit", "1")
	params.Set("countrycodes", g.countryCode)
	params.Set("addressdetails", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, &GeocodingError{Type: ErrorTypeInvalidRequest, Message: "building nominatim request", Err: err}
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransportError(err, nominatimProvider)
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, ClassifyHTTPError(resp.StatusCode, nominatimProvider)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, classifyTransportError(err, nominatimProvider)
	}

	return parseNominatimResponse(body, query)
}

// parseNominatimResponse reads the first element of a /search reply. Nominatim
// encodes lat/lon as strings; plain numbers are accepted too.
func parseNominatimResponse(body []byte, query string) (*Candidate, error) {
	if !gjson.ValidBytes(body) {
		return nil, malformed(nominatimProvider, "response is not valid JSON")
	}

	root := gjson.ParseBytes(body)
	if !root.IsArray() {
		return nil, malformed(nominatimProvider, "expected a JSON array, got %s", root.Type)
	}

	hit := root.Get("0")
	if !hit.Exists() {
		return nil, notFound(nominatimProvider, query)
	}

	lat, err := coordinateField(hit, "lat")
	if err != nil {
		return nil, err
	}

	lng, err := coordinateField(hit, "lon")
	if err != nil {
		return nil, err
	}

	if !(spatial.Point{Lat: lat, Lng: lng}).Valid() {
		return nil, malformed(nominatimProvider, "coordinates out of range: %f, %f", lat, lng)
	}

	address := hit.Get("address")

	return &Candidate{
		Latitude:  lat,
		Longitude: lng,
		Address: Address{
			HouseNumber:  address.Get("house_number").String(),
			Road:         address.Get("road").String(),
			City:         address.Get("city").String(),
			Town:         address.Get("town").String(),
			Village:      address.Get("village").String(),
			Municipality: address.Get("municipality").String(),
		},
		DisplayName: hit.Get("display_name").String(),
		Provider:    nominatimProvider,
	}, nil
}

func coordinateField(hit gjson.Result, name string) (float64, error) {
	field := hit.Get(name)

	switch field.Type {
	case gjson.Number:
		return field.Num, nil
	case gjson.String:
		v, err := strconv.ParseFloat(strings.TrimSpace(field.Str), 64)
		if err != nil {
			return 0, &GeocodingError{
				Type:    ErrorTypeMalformedResponse,
				Message: fmt.Sprintf("%s: invalid %s %q", nominatimProvider, name, field.Str),
				Err:     err,
			}
		}

		return v, nil
	case gjson.Null:
		if !field.Exists() {
			return 0, malformed(nominatimProvider, "missing field %s", name)
		}

		return 0, malformed(nominatimProvider, "null field %s", name)
	default:
		return 0, malformed(nominatimProvider, "unexpected type %s for field %s", field.Type, name)
	}
}
