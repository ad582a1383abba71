// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package geocoding

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/jcodagnone/regionfund/metrics"
	"github.com/jcodagnone/regionfund/spatial"
)

// InputKind tells how a location was resolved.
type InputKind string

// Input kinds.
const (
	InputCoordinates InputKind = "coordinates"
	InputAddress     InputKind = "address"
)

// UnresolvableMessage is returned to callers when every variant failed.
const UnresolvableMessage = "Could not geocode the provided location. Please try:\n" +
	"• Adding \"Ontario, Canada\" to your address\n" +
	"• Using a more specific address (e.g., \"123 Main Street, Toronto, ON\")\n" +
	"• Checking the spelling of your address\n" +
	"• Using coordinates in the format \"latitude, longitude\""

// ResolvedLocation is the outcome of a successful resolution. DisplayLabel is
// empty for coordinate input.
type ResolvedLocation struct {
	Point        spatial.Point
	InputKind    InputKind
	DisplayLabel string
}

// UnresolvableError reports that no query variant produced a result. Its
// message is safe to show to end users; the per-variant causes are kept
// for operator logs.
type UnresolvableError struct {
	Input    string
	Attempts []error
}

func (e *UnresolvableError) Error() string {
	return UnresolvableMessage
}

func (e *UnresolvableError) Unwrap() []error {
	return e.Attempts
}

// Diagnostic joins the per-variant causes into one line.
func (e *UnresolvableError) Diagnostic() string {
	causes := make([]string, 0, len(e.Attempts))
	for _, err := range e.Attempts {
		causes = append(causes, err.Error())
	}

	return fmt.Sprintf("%q: %s", e.Input, strings.Join(causes, "; "))
}

// QueryVariants returns the rewritten forms of an address, in the order they
// are tried.
func QueryVariants(raw string) []string {
	return []string{
		raw,
		raw + ", Ontario, Canada",
		raw + ", ON, Canada",
		strings.TrimSpace(strings.ReplaceAll(raw, ",", "")),
	}
}

// Resolver turns user input into a point: literal coordinates first, then
// the geocoder over QueryVariants.
type Resolver struct {
	geocoder Geocoder
	metrics  *metrics.Collector
}

// NewResolver creates a resolver. collector may be nil.
func NewResolver(geocoder Geocoder, collector *metrics.Collector) *Resolver {
	return &Resolver{geocoder: geocoder, metrics: collector}
}

// Resolve parses raw as coordinates, or geocodes it trying each variant in
// order and stopping at the first one that yields a candidate. Any variant
// failure moves on to the next one; when all of them fail the error is an
// *UnresolvableError.
func (r *Resolver) Resolve(ctx context.Context, raw string) (*ResolvedLocation, error) {
	if p, ok := spatial.ParseCoordinates(raw); ok {
		return &ResolvedLocation{Point: p, InputKind: InputCoordinates}, nil
	}

	log.Printf("Attempting to geocode address: %q", raw)

	variants := QueryVariants(raw)
	attempts := make([]error, 0, len(variants))

	for i, query := range variants {
		variant := i + 1

		if err := ctx.Err(); err != nil {
			attempts = append(attempts, fmt.Errorf("variant %d: %w", variant, err))

			break
		}

		start := time.Now()
		candidate, err := r.geocode(ctx, query)
		r.metrics.ObserveGeocodeAttempt(r.geocoder.Name(), variant, outcome(err), time.Since(start))

		if err != nil {
			log.Printf("Geocoding variation %d (%q) failed: %v", variant, query, err)
			attempts = append(attempts, fmt.Errorf("variant %d %q: %w", variant, query, err))

			continue
		}

		loc := &ResolvedLocation{
			Point:        spatial.Point{Lat: candidate.Latitude, Lng: candidate.Longitude},
			InputKind:    InputAddress,
			DisplayLabel: DisplayLabel(candidate, raw),
		}
		log.Printf("Geocoded variation %d to %s as %q", variant, loc.Point, loc.DisplayLabel)

		return loc, nil
	}

	log.Printf("All geocoding variations failed for %q", raw)

	return nil, &UnresolvableError{Input: raw, Attempts: attempts}
}

func (r *Resolver) geocode(ctx context.Context, query string) (*Candidate, error) {
	candidate, err := r.geocoder.Geocode(ctx, query)
	if err != nil {
		return nil, err
	}

	if candidate == nil {
		return nil, notFound(r.geocoder.Name(), query)
	}

	if !(spatial.Point{Lat: candidate.Latitude, Lng: candidate.Longitude}).Valid() {
		return nil, malformed(r.geocoder.Name(), "coordinates out of range: %f, %f", candidate.Latitude, candidate.Longitude)
	}

	return candidate, nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeHit
	case IsNotFoundError(err):
		return metrics.OutcomeEmpty
	default:
		return metrics.OutcomeError
	}
}

// IsUnresolvable reports whether err means the location could not be found.
func IsUnresolvable(err error) bool {
	var unresolvable *UnresolvableError

	return errors.As(err, &unresolvable)
}
