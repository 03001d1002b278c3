package grids

import (
	"github.com/go-spatial/geom"
)

const (
	featureType           = "Feature"
	featureCollectionType = "FeatureCollection"
	polygonType           = "Polygon"
)

// Geometry is a GeoJSON geometry. Only polygons are emitted here;
// geom.Polygon already has the [rings][vertices][x,y] shape GeoJSON
// expects, so it marshals directly.
type Geometry struct {
	Type        string         `json:"type"`
	Coordinates [][][2]float64 `json:"coordinates"`
}

// Feature is a GeoJSON feature.
type Feature struct {
	Type       string                 `json:"type"`
	Geometry   Geometry               `json:"geometry"`
	Properties map[string]interface{} `json:"properties"`
}

// FeatureCollection is a GeoJSON feature collection.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// GeoJSONOptions control a full-grid GeoJSON export.
type GeoJSONOptions struct {
	// Rows restricts the export to a subset of rows; nil means all
	// rows within the grid limits. Same for Cols.
	Rows []int
	Cols []int
	// SkipInvalid silently drops requested indices that fall outside
	// the grid limits instead of failing the export.
	SkipInvalid bool
}

// GeoJSON materializes the whole grid (or the requested subset) as a
// feature collection with one polygon feature per tile, in row-major
// order. Geometries are in the grid CRS. This is a full, non-lazy
// materialization; for a grid with thousands of tiles the result is
// large.
func (g *TileGrid) GeoJSON(opts GeoJSONOptions) (FeatureCollection, error) {
	rows := opts.Rows
	if rows == nil {
		rows = g.Rows()
	}
	cols := opts.Cols
	if cols == nil {
		cols = g.Cols()
	}

	collection := FeatureCollection{
		Type:     featureCollectionType,
		Features: make([]Feature, 0, len(rows)*len(cols)),
	}
	for _, row := range rows {
		for _, col := range cols {
			tile, err := g.TileAt(row, col)
			if err != nil {
				if opts.SkipInvalid {
					continue
				}
				return FeatureCollection{}, err
			}
			collection.Features = append(collection.Features, tile.GeoJSON())
		}
	}
	return collection, nil
}

// closeRings returns the polygon's rings with the first vertex repeated
// at the end of each ring, as GeoJSON requires.
func closeRings(polygon geom.Polygon) [][][2]float64 {
	rings := make([][][2]float64, 0, len(polygon))
	for _, ring := range polygon.LinearRings() {
		closed := make([][2]float64, 0, len(ring)+1)
		closed = append(closed, ring...)
		if len(ring) > 0 && ring[0] != ring[len(ring)-1] {
			closed = append(closed, ring[0])
		}
		rings = append(rings, closed)
	}
	return rings
}
