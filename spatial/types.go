// Copyright 2025 The ChapaUY Authors
//
// SPDX-License-Identifier: Apache-2.0

// Package spatial holds the coordinate value shared by the resolver, the
// region index and the HTTP surface.
package spatial

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/uber/h3-go/v4"
)

// Valid coordinate ranges, in degrees.
const (
	MinLat = -90.0
	MaxLat = 90.0
	MinLng = -180.0
	MaxLng = 180.0
)

// DefaultH3Resolution is the cell size reported alongside resolved points
// (roughly 5 km² per cell).
const DefaultH3Resolution = 7

// Point represents a geographical point with latitude and longitude.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// String returns a WKT representation of the Point, longitude first.
func (p Point) String() string {
	return fmt.Sprintf("POINT(%f %f)", p.Lng, p.Lat)
}

// Valid reports whether both components are inside the WGS84 ranges.
func (p Point) Valid() bool {
	return p.Lat >= MinLat && p.Lat <= MaxLat && p.Lng >= MinLng && p.Lng <= MaxLng
}

// Orb returns the planar point used for geometry tests. The axis order is
// (x=longitude, y=latitude); swapping it misclassifies every point.
func (p Point) Orb() orb.Point {
	return orb.Point{p.Lng, p.Lat}
}

// H3Cell returns the hexagonal cell index containing the point at the given
// resolution.
func (p Point) H3Cell(res int) (string, error) {
	cell, err := h3.LatLngToCell(h3.NewLatLng(p.Lat, p.Lng), res)
	if err != nil {
		return "", fmt.Errorf("error converting to h3 cell at res %d: %w", res, err)
	}

	return cell.String(), nil
}
