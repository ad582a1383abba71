// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

// Package resolution composes location resolution, region classification and
// the funding rules into a single request/response use case.
package resolution

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/jcodagnone/regionfund/funding"
	"github.com/jcodagnone/regionfund/geocoding"
	"github.com/jcodagnone/regionfund/metrics"
	"github.com/jcodagnone/regionfund/regions"
	"github.com/jcodagnone/regionfund/spatial"
)

// Validation messages, returned verbatim to callers.
const (
	MsgLocationRequired   = "Location parameter is required"
	MsgLocationEmpty      = "Location cannot be empty"
	MsgApplicantRequired  = "Applicant type is required"
	MsgApplicantInvalid   = "Invalid applicant type"
	MsgPopulationRequired = "Municipality population is required for municipality applicants"
	MsgPopulationInvalid  = "Invalid municipality population size"
)

// MsgOutside is the result message for points outside every region.
const MsgOutside = "This location is outside of Ontario or in an unmapped area."

// outcomes reported to metrics.
const (
	outcomeResolved     = "resolved"
	outcomeInvalid      = "invalid_input"
	outcomeUnresolvable = "unresolvable"
	outcomeUnavailable  = "unavailable"
	outcomeError        = "error"
)

// InvalidInputError is a request that fails validation. Message is meant for
// the caller.
type InvalidInputError struct {
	Message string
}

func (e *InvalidInputError) Error() string {
	return e.Message
}

// IsInvalidInput reports whether err is a validation failure.
func IsInvalidInput(err error) bool {
	var invalid *InvalidInputError

	return errors.As(err, &invalid)
}

// Request is one resolution request. A nil Location means the field was
// not provided at all.
type Request struct {
	Location               *string          `json:"location"`
	ApplicantType          funding.Category `json:"applicant_type"`
	MunicipalityPopulation funding.Bracket  `json:"municipality_population"`
}

// NewRequest is a convenience constructor for callers that always have a
// location string.
func NewRequest(location string, category funding.Category, bracket funding.Bracket) Request {
	return Request{Location: &location, ApplicantType: category, MunicipalityPopulation: bracket}
}

// Result is the outcome of a successful request. Region and DisplayAddress
// are nil when not applicable.
type Result struct {
	Success        bool                `json:"success"`
	Latitude       float64             `json:"latitude"`
	Longitude      float64             `json:"longitude"`
	Region         *regions.Region     `json:"region"`
	InputType      geocoding.InputKind `json:"input_type"`
	DisplayAddress *string             `json:"display_address"`
	Message        string              `json:"message"`
	FundingInfo    funding.Eligibility `json:"funding_info"`
	H3Cell         string              `json:"h3_cell,omitempty"`
}

// Resolver turns user input into a point.
type Resolver interface {
	Resolve(ctx context.Context, raw string) (*geocoding.ResolvedLocation, error)
}

// Service handles resolution requests. It holds no per-request state and
// is safe for concurrent use.
type Service struct {
	resolver Resolver
	index    *regions.Index
	metrics  *metrics.Collector
}

// NewService creates a service. A nil index makes every request fail with
// regions.ErrUnavailable; collector may be nil.
func NewService(resolver Resolver, index *regions.Index, collector *metrics.Collector) *Service {
	if index != nil {
		collector.SetRegionsLoaded(index.Len())
	}

	return &Service{resolver: resolver, index: index, metrics: collector}
}

// Validate checks the request fields without doing any work.
func (req Request) Validate() error {
	if req.Location == nil {
		return &InvalidInputError{Message: MsgLocationRequired}
	}

	if strings.TrimSpace(*req.Location) == "" {
		return &InvalidInputError{Message: MsgLocationEmpty}
	}

	if req.ApplicantType == "" {
		return &InvalidInputError{Message: MsgApplicantRequired}
	}

	if !req.ApplicantType.Valid() {
		return &InvalidInputError{Message: MsgApplicantInvalid}
	}

	if req.ApplicantType == funding.CategoryMunicipality {
		if req.MunicipalityPopulation == "" {
			return &InvalidInputError{Message: MsgPopulationRequired}
		}

		if !req.MunicipalityPopulation.Valid() {
			return &InvalidInputError{Message: MsgPopulationInvalid}
		}
	}

	return nil
}

// Handle validates req, resolves its location, classifies the point and
// evaluates the funding rules.
//
// Errors are *InvalidInputError, *geocoding.UnresolvableError, or wrap
// regions.ErrUnavailable; anything else is an internal failure whose
// detail must not reach end users.
func (s *Service) Handle(ctx context.Context, req Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		s.metrics.ObserveResolution("", "", outcomeInvalid)

		return nil, err
	}

	if s.index == nil {
		s.metrics.ObserveResolution("", "", outcomeUnavailable)

		return nil, fmt.Errorf("%w: no region index loaded", regions.ErrUnavailable)
	}

	raw := strings.TrimSpace(*req.Location)

	loc, err := s.resolver.Resolve(ctx, raw)
	if err != nil {
		if geocoding.IsUnresolvable(err) {
			s.metrics.ObserveResolution(string(geocoding.InputAddress), "", outcomeUnresolvable)

			return nil, err
		}

		s.metrics.ObserveResolution("", "", outcomeError)

		return nil, fmt.Errorf("resolving %q: %w", raw, err)
	}

	region := s.index.Classify(loc.Point)

	code := ""
	message := MsgOutside

	if region != nil {
		code = region.Code
		message = fmt.Sprintf("This location is in %s.", region.Name)
	}

	result := &Result{
		Success:     true,
		Latitude:    loc.Point.Lat,
		Longitude:   loc.Point.Lng,
		Region:      region,
		InputType:   loc.InputKind,
		Message:     message,
		FundingInfo: funding.Evaluate(req.ApplicantType, req.MunicipalityPopulation, code),
	}

	if loc.InputKind == geocoding.InputAddress {
		label := loc.DisplayLabel
		result.DisplayAddress = &label
	}

	if cell, err := loc.Point.H3Cell(spatial.DefaultH3Resolution); err != nil {
		log.Printf("Computing H3 cell for %s: %v", loc.Point, err)
	} else {
		result.H3Cell = cell
	}

	s.metrics.ObserveResolution(string(loc.InputKind), code, outcomeResolved)

	return result, nil
}
