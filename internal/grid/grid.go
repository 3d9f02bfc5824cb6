// Package grid partitions the area around a study point into square
// tiles. Analyzers use the tiles to judge how evenly places spread
// across a trade area instead of treating the radius as one blob.
package grid

import (
	"math"

	"github.com/rotisserie/eris"
	geom "github.com/twpayne/go-geom"

	"github.com/siteiq/siteiq/internal/model"
)

const metersPerDegreeLat = 111320.0

// Tile is one square cell of the study grid.
type Tile struct {
	Index    int
	Bounds   *geom.Bounds
	Centroid model.GeoPoint
	Count    int
}

// Grid is a square tiling of the box circumscribing the study radius.
type Grid struct {
	Center model.GeoPoint
	Side   int
	Tiles  []Tile
}

// New builds a tiles-by-tiles grid covering the square that circumscribes
// the circle of radiusMeters around center. tiles is rounded down to the
// nearest perfect square so the grid stays square.
func New(center model.GeoPoint, radiusMeters float64, tiles int) (*Grid, error) {
	if radiusMeters <= 0 {
		return nil, eris.New("grid: radius must be positive")
	}
	if tiles < 1 {
		return nil, eris.New("grid: need at least one tile")
	}

	side := int(math.Sqrt(float64(tiles)))
	dLat := radiusMeters / metersPerDegreeLat
	dLon := radiusMeters / (metersPerDegreeLat * math.Cos(center.Latitude*math.Pi/180))

	minLon := center.Longitude - dLon
	minLat := center.Latitude - dLat
	stepLon := 2 * dLon / float64(side)
	stepLat := 2 * dLat / float64(side)

	g := &Grid{Center: center, Side: side, Tiles: make([]Tile, 0, side*side)}
	for row := 0; row < side; row++ {
		for col := 0; col < side; col++ {
			lon0 := minLon + float64(col)*stepLon
			lat0 := minLat + float64(row)*stepLat
			bounds := geom.NewBounds(geom.XY)
			bounds.Set(lon0, lat0, lon0+stepLon, lat0+stepLat)
			g.Tiles = append(g.Tiles, Tile{
				Index:  row*side + col,
				Bounds: bounds,
				Centroid: model.GeoPoint{
					Latitude:  lat0 + stepLat/2,
					Longitude: lon0 + stepLon/2,
				},
			})
		}
	}
	return g, nil
}

// Assign increments the count of the tile containing each place. Places
// outside the grid are ignored.
func (g *Grid) Assign(places []model.Place) {
	for _, p := range places {
		for i := range g.Tiles {
			if g.Tiles[i].Bounds.OverlapsPoint(geom.XY, geom.Coord{p.Longitude, p.Latitude}) {
				g.Tiles[i].Count++
				break
			}
		}
	}
}

// Occupancy returns the fraction of tiles holding at least one place.
// A low occupancy with a non-trivial place count means the places bunch
// up instead of covering the trade area.
func (g *Grid) Occupancy() float64 {
	if len(g.Tiles) == 0 {
		return 0
	}
	occupied := 0
	for _, t := range g.Tiles {
		if t.Count > 0 {
			occupied++
		}
	}
	return float64(occupied) / float64(len(g.Tiles))
}
