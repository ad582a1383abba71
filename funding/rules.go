// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

// Package funding holds the eligibility rule table of the program.
package funding

import "github.com/jcodagnone/regionfund/regions"

// Category is the kind of applicant.
type Category string

// Applicant categories.
const (
	CategoryIndigenous   Category = "indigenous"
	CategoryMunicipality Category = "municipality"
	CategoryBusiness     Category = "business"
)

// Bracket is the population size of a municipality applicant.
type Bracket string

// Population brackets.
const (
	BracketBelow170k Bracket = "below-170k"
	BracketAbove170k Bracket = "above-170k"
)

var categoryLabels = map[Category]string{
	CategoryIndigenous:   "Indigenous community or business",
	CategoryMunicipality: "Municipalities",
	CategoryBusiness:     "Businesses, not for profit corporations, and broader public sector",
}

var bracketLabels = map[Bracket]string{
	BracketBelow170k: "Below 170,000",
	BracketAbove170k: "Above 170,000",
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	_, ok := categoryLabels[c]

	return ok
}

// Label is the human readable name of c. Unknown values are their own label.
func (c Category) Label() string {
	if label, ok := categoryLabels[c]; ok {
		return label
	}

	return string(c)
}

// Valid reports whether b is one of the known brackets.
func (b Bracket) Valid() bool {
	_, ok := bracketLabels[b]

	return ok
}

// Label is the human readable name of b. Unknown values are their own label.
func (b Bracket) Label() string {
	if label, ok := bracketLabels[b]; ok {
		return label
	}

	return string(b)
}

// Eligibility is the outcome of Evaluate. MunicipalityPopulation and Region
// are nil when absent.
type Eligibility struct {
	ApplicantType                 Category `json:"applicant_type"`
	ApplicantTypeDisplay          string   `json:"applicant_type_display"`
	MunicipalityPopulation        *Bracket `json:"municipality_population"`
	MunicipalityPopulationDisplay string   `json:"municipality_population_display"`
	FundingPercentage             int      `json:"funding_percentage"`
	Region                        *string  `json:"region"`
}

// Evaluate applies the rule table. region is a region code, empty when the
// point is outside every region. Rules are checked top to bottom:
//
//	north                               75
//	south, indigenous                   75
//	south, municipality, below-170k     75
//	south, municipality, above-170k     50
//	south, business                     50
//	anything else                        0
//
// Evaluate never fails: inputs are not validated here.
func Evaluate(category Category, bracket Bracket, region string) Eligibility {
	e := Eligibility{
		ApplicantType:        category,
		ApplicantTypeDisplay: category.Label(),
		FundingPercentage:    percentage(category, bracket, region),
	}

	if bracket != "" {
		e.MunicipalityPopulation = &bracket
		e.MunicipalityPopulationDisplay = bracket.Label()
	}

	if region != "" {
		e.Region = &region
	}

	return e
}

func percentage(category Category, bracket Bracket, region string) int {
	switch region {
	case regions.CodeNorth:
		return 75
	case regions.CodeSouth:
		switch category {
		case CategoryIndigenous:
			return 75
		case CategoryMunicipality:
			switch bracket {
			case BracketBelow170k:
				return 75
			case BracketAbove170k:
				return 50
			}
		case CategoryBusiness:
			return 50
		}
	}

	return 0
}
