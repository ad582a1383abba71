// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package spatial

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPointString(t *testing.T) {
	p := Point{Lat: 43.6532, Lng: -79.3832}
	assert.Equal(t, "POINT(-79.383200 43.653200)", p.String())
}

func TestPointOrbAxisOrder(t *testing.T) {
	p := Point{Lat: 43.6532, Lng: -79.3832}
	assert.Equal(t, orb.Point{-79.3832, 43.6532}, p.Orb())
	assert.InDelta(t, -79.3832, p.Orb().X(), 1e-12)
	assert.InDelta(t, 43.6532, p.Orb().Y(), 1e-12)
}

func TestPointValid(t *testing.T) {
	assert.True(t, Point{Lat: 0, Lng: 0}.Valid())
	assert.True(t, Point{Lat: 90, Lng: -180}.Valid())
	assert.False(t, Point{Lat: 90.0001, Lng: 0}.Valid())
	assert.False(t, Point{Lat: 0, Lng: 180.0001}.Valid())
}

func TestPointH3Cell(t *testing.T) {
	p := Point{Lat: 43.6532, Lng: -79.3832}

	cell, err := p.H3Cell(DefaultH3Resolution)
	require.NoError(t, err)
	assert.Len(t, cell, 15)

	again, err := p.H3Cell(DefaultH3Resolution)
	require.NoError(t, err)
	assert.Equal(t, cell, again)

	coarse, err := p.H3Cell(1)
	require.NoError(t, err)
	assert.NotEqual(t, cell, coarse)

	_, err = p.H3Cell(16)
	assert.Error(t, err)
}
