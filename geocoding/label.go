// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package geocoding

import (
	"strings"

	"github.com/jcodagnone/regionfund/utils/textutils"
)

// Display-name shortening limits: at most maxScannedSegments raw segments
// are inspected and at most maxKeptSegments survive.
const (
	maxScannedSegments = 4
	maxKeptSegments    = 2
)

// segments that name the province or country rather than the place.
var excludedSegments = map[string]bool{
	"ontario": true,
	"canada":  true,
	"on":      true,
}

// DisplayLabel builds the short, human-presentable label of a candidate.
//
// Structured components win: "{house number} {road}" (or the road alone)
// followed by the locality. Without any of them the provider's display
// string is shortened with ShortenDisplayName; fallback replaces a missing
// display string.
func DisplayLabel(c *Candidate, fallback string) string {
	parts := make([]string, 0, 2)

	switch {
	case c.Address.HouseNumber != "" && c.Address.Road != "":
		parts = append(parts, c.Address.HouseNumber+" "+c.Address.Road)
	case c.Address.Road != "":
		parts = append(parts, c.Address.Road)
	}

	if locality := c.Address.Locality(); locality != "" {
		parts = append(parts, locality)
	}

	if len(parts) > 0 {
		return strings.Join(parts, ", ")
	}

	display := c.DisplayName
	if display == "" {
		display = fallback
	}

	return ShortenDisplayName(display)
}

// ShortenDisplayName keeps the first two meaningful segments of a
// comma-separated provider address, skipping province and country names.
// This is a heuristic: "Toronto, Golden Horseshoe, Ontario, Canada" becomes
// "Toronto, Golden Horseshoe". Names with two segments or fewer, and names
// where nothing survives, are returned unchanged.
func ShortenDisplayName(display string) string {
	segments := strings.Split(display, ", ")
	if len(segments) <= maxKeptSegments {
		return display
	}

	kept := make([]string, 0, maxKeptSegments)

	for _, segment := range segments[:min(maxScannedSegments, len(segments))] {
		if !excludedSegments[textutils.LowerASCIIFolding(segment)] {
			kept = append(kept, segment)
		}

		if len(kept) >= maxKeptSegments {
			break
		}
	}

	if len(kept) == 0 {
		return display
	}

	return strings.Join(kept, ", ")
}
