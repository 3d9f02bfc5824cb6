package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siteiq/siteiq/internal/model"
)

var austin = model.GeoPoint{Latitude: 30.2672, Longitude: -97.7431}

func TestNew(t *testing.T) {
	g, err := New(austin, 3000, 16)
	require.NoError(t, err)

	assert.Equal(t, 4, g.Side)
	assert.Len(t, g.Tiles, 16)

	// Tile centroids stay inside the circumscribing box.
	dLat := 3000.0 / metersPerDegreeLat
	for _, tile := range g.Tiles {
		assert.Greater(t, tile.Centroid.Latitude, austin.Latitude-dLat)
		assert.Less(t, tile.Centroid.Latitude, austin.Latitude+dLat)
	}

	// The center point falls in exactly one tile.
	g.Assign([]model.Place{{Latitude: austin.Latitude, Longitude: austin.Longitude}})
	total := 0
	for _, tile := range g.Tiles {
		total += tile.Count
	}
	assert.Equal(t, 1, total)
}

func TestNew_RoundsToSquare(t *testing.T) {
	g, err := New(austin, 3000, 10)
	require.NoError(t, err)
	assert.Equal(t, 3, g.Side)
	assert.Len(t, g.Tiles, 9)
}

func TestNew_Invalid(t *testing.T) {
	_, err := New(austin, 0, 16)
	assert.Error(t, err)

	_, err = New(austin, 3000, 0)
	assert.Error(t, err)
}

func TestAssignAndOccupancy(t *testing.T) {
	g, err := New(austin, 3000, 4)
	require.NoError(t, err)

	// Two places in the same quadrant, one far outside the grid.
	g.Assign([]model.Place{
		{Latitude: austin.Latitude + 0.01, Longitude: austin.Longitude + 0.01},
		{Latitude: austin.Latitude + 0.012, Longitude: austin.Longitude + 0.012},
		{Latitude: 40.0, Longitude: -74.0},
	})

	assert.InDelta(t, 0.25, g.Occupancy(), 0.001)
}

func TestOccupancy_Empty(t *testing.T) {
	g, err := New(austin, 3000, 4)
	require.NoError(t, err)
	assert.Zero(t, g.Occupancy())
}
