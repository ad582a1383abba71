// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

// Package regions loads the funding regions from a GeoJSON document and
// classifies points against them.
package regions

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/dhconnelly/rtreego"
	"github.com/jcodagnone/regionfund/spatial"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
)

// Region codes present in the bundled data.
const (
	CodeNorth = "north"
	CodeSouth = "south"
)

const (
	dimensions  = 2
	minChildren = 2
	maxChildren = 8

	// half side, in degrees, of the query rectangle built around a point.
	pointTolerance = 1e-9
)

// ErrUnavailable is wrapped by every error caused by a missing or malformed
// region document.
var ErrUnavailable = errors.New("region data unavailable")

// Region is one labeled funding area.
type Region struct {
	Code        string       `json:"region"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Geometry    orb.Geometry `json:"-"`
}

// Vertices counts the points of every ring of the boundary.
func (r *Region) Vertices() int {
	n := 0

	switch g := r.Geometry.(type) {
	case orb.Polygon:
		for _, ring := range g {
			n += len(ring)
		}
	case orb.MultiPolygon:
		for _, p := range g {
			for _, ring := range p {
				n += len(ring)
			}
		}
	}

	return n
}

func (r *Region) contains(p orb.Point) bool {
	switch g := r.Geometry.(type) {
	case orb.Polygon:
		return planar.PolygonContains(g, p)
	case orb.MultiPolygon:
		return planar.MultiPolygonContains(g, p)
	default:
		return false
	}
}

// indexedRegion wraps a region position for R-Tree indexing.
type indexedRegion struct {
	pos  int
	rect *rtreego.Rect
}

func (ir *indexedRegion) Bounds() *rtreego.Rect {
	return ir.rect
}

// Index is the immutable set of regions, in document order. It is safe for
// concurrent use: nothing mutates it after Parse returns.
type Index struct {
	regions  []*Region
	tree     *rtreego.Rtree
	document []byte
}

// Load reads and parses the GeoJSON document at path.
func Load(path string) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %w", ErrUnavailable, path, err)
	}

	idx, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return idx, nil
}

// Parse builds an index from a GeoJSON FeatureCollection. Every feature
// needs a Polygon or MultiPolygon geometry and the "region" and "name"
// properties; "description" is optional.
func Parse(data []byte) (*Index, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("%w: decoding GeoJSON: %w", ErrUnavailable, err)
	}

	if len(fc.Features) == 0 {
		return nil, fmt.Errorf("%w: document has no regions", ErrUnavailable)
	}

	idx := &Index{
		regions:  make([]*Region, 0, len(fc.Features)),
		tree:     rtreego.NewTree(dimensions, minChildren, maxChildren),
		document: slices.Clone(data),
	}

	for i, f := range fc.Features {
		region, err := newRegion(f)
		if err != nil {
			return nil, fmt.Errorf("%w: feature %d: %w", ErrUnavailable, i, err)
		}

		rect, err := boundsRect(region.Geometry.Bound())
		if err != nil {
			return nil, fmt.Errorf("%w: feature %d (%s): %w", ErrUnavailable, i, region.Code, err)
		}

		idx.regions = append(idx.regions, region)
		idx.tree.Insert(&indexedRegion{pos: i, rect: rect})
	}

	return idx, nil
}

func newRegion(f *geojson.Feature) (*Region, error) {
	if f.Geometry == nil {
		return nil, errors.New("missing geometry")
	}

	switch g := f.Geometry.(type) {
	case orb.Polygon:
		if len(g) == 0 || len(g[0]) < 4 {
			return nil, errors.New("polygon without a closed outer ring")
		}
	case orb.MultiPolygon:
		if len(g) == 0 {
			return nil, errors.New("empty multipolygon")
		}
	default:
		return nil, fmt.Errorf("unsupported geometry %s", f.Geometry.GeoJSONType())
	}

	code := f.Properties.MustString("region", "")
	if code == "" {
		return nil, errors.New(`missing "region" property`)
	}

	name := f.Properties.MustString("name", "")
	if name == "" {
		return nil, errors.New(`missing "name" property`)
	}

	return &Region{
		Code:        code,
		Name:        name,
		Description: f.Properties.MustString("description", ""),
		Geometry:    f.Geometry,
	}, nil
}

// boundsRect converts an orb bound into an R-Tree rectangle in (lng, lat)
// space.
func boundsRect(b orb.Bound) (*rtreego.Rect, error) {
	width, height := b.Max.X()-b.Min.X(), b.Max.Y()-b.Min.Y()
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("degenerate bounds %v", b)
	}

	return rtreego.NewRect(rtreego.Point{b.Min.X(), b.Min.Y()}, []float64{width, height})
}

// Classify returns the first region, in document order, whose boundary
// contains p, or nil when p lies outside every region.
//
// Containment follows orb/planar: a point on an outer ring edge is inside,
// a point on a hole edge is outside.
func (idx *Index) Classify(p spatial.Point) *Region {
	pt := p.Orb()

	hits := idx.tree.SearchIntersect(rtreego.Point{pt.X(), pt.Y()}.ToRect(pointTolerance))
	if len(hits) == 0 {
		return nil
	}

	positions := make([]int, 0, len(hits))
	for _, hit := range hits {
		positions = append(positions, hit.(*indexedRegion).pos)
	}

	slices.Sort(positions)

	for _, pos := range positions {
		if r := idx.regions[pos]; r.contains(pt) {
			return r
		}
	}

	return nil
}

// Regions returns the loaded regions in document order.
func (idx *Index) Regions() []*Region {
	return slices.Clone(idx.regions)
}

// Len returns the number of loaded regions.
func (idx *Index) Len() int {
	return len(idx.regions)
}

// Document returns the raw GeoJSON the index was built from.
func (idx *Index) Document() []byte {
	return idx.document
}
