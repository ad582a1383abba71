// Copyright 2025 The ChapaUY Authors
//
// SPDX-License-Identifier: Apache-2.0

package spatial

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// anything that can't be part of a signed decimal becomes a token boundary.
var nonNumeric = regexp.MustCompile(`[^\d.\-]`)

// ParseCoordinates detects a literal "lat, lon" input.
//
// Every character other than digits, '.' and '-' is treated as a separator,
// so "43.65, -79.38", "43.65 -79.38" and "43.65°, -79.38°" all parse. The
// input must leave exactly two numeric tokens, latitude first, both inside
// the valid ranges. Compass suffixes are not understood: "43.6N 79.4W"
// parses as (43.6, 79.4), with a positive longitude.
//
// The boolean is false when the input is not a coordinate pair; that is not
// an error, the caller is expected to try it as an address.
func ParseCoordinates(raw string) (Point, bool) {
	cleaned := nonNumeric.ReplaceAllString(strings.TrimSpace(raw), " ")

	parts := strings.Fields(cleaned)
	if len(parts) != 2 {
		return Point{}, false
	}

	lat, err := parseFinite(parts[0])
	if err != nil {
		return Point{}, false
	}

	lng, err := parseFinite(parts[1])
	if err != nil {
		return Point{}, false
	}

	p := Point{Lat: lat, Lng: lng}
	if !p.Valid() {
		return Point{}, false
	}

	return p, true
}

func parseFinite(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}

	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, strconv.ErrRange
	}

	return v, nil
}
