package grids

import "github.com/go-spatial/geom"

// Tile is one cell of a TileGrid. It is a lightweight immutable view
// computed from the parent grid and a (row, col) index; it carries no
// grid-level state beyond its own derived geometry.
type Tile struct {
	// Index is the (row, col) position of this tile in its grid.
	Index TileIndex
	// CRS is inherited from the parent grid.
	CRS CRS
	// Bounds is the tile extent in grid CRS units.
	Bounds geom.Extent
	// Res is the parent grid's pixel resolution.
	Res [2]float64
	// Size is the parent grid's tile size in pixels.
	Size [2]int
}

// Vertical returns the row index.
func (t Tile) Vertical() int {
	return t.Index[0]
}

// Horizontal returns the column index.
func (t Tile) Horizontal() int {
	return t.Index[1]
}

// Width returns the number of pixel columns in the tile.
func (t Tile) Width() int {
	return t.Size[0]
}

// Height returns the number of pixel rows in the tile.
func (t Tile) Height() int {
	return t.Size[1]
}

// Transform returns the forward affine transform of the tile: pixel
// (0, 0) maps to the tile's upper-left corner.
func (t Tile) Transform() Affine {
	return NorthUpTransform(t.Res[0], t.Res[1], t.Bounds.MinX(), t.Bounds.MaxY())
}

// BBox returns the tile bounds as a closed single-ring polygon, vertices
// in counterclockwise order starting at the lower-left corner.
func (t Tile) BBox() geom.Polygon {
	return geom.Polygon{{
		{t.Bounds.MinX(), t.Bounds.MinY()},
		{t.Bounds.MaxX(), t.Bounds.MinY()},
		{t.Bounds.MaxX(), t.Bounds.MaxY()},
		{t.Bounds.MinX(), t.Bounds.MaxY()},
	}}
}

// Coords returns the y and x pixel coordinates of the tile. With center
// set, coordinates are pixel centers; otherwise they are the upper-left
// pixel edges.
func (t Tile) Coords(center bool) (ys, xs []float64) {
	transform := t.Transform()
	offset := 0.0
	if center {
		offset = 0.5
	}
	xs = make([]float64, t.Width())
	for col := range xs {
		xs[col], _ = transform.Apply(float64(col)+offset, 0)
	}
	ys = make([]float64, t.Height())
	for row := range ys {
		_, ys[row] = transform.Apply(0, float64(row)+offset)
	}
	return ys, xs
}

// GeoJSON returns the tile as a GeoJSON feature in the grid CRS, with
// the index and bounds as properties.
func (t Tile) GeoJSON() Feature {
	return Feature{
		Type: featureType,
		Geometry: Geometry{
			Type:        polygonType,
			Coordinates: closeRings(t.BBox()),
		},
		Properties: map[string]interface{}{
			"vertical":   t.Vertical(),
			"horizontal": t.Horizontal(),
			"bounds":     []float64{t.Bounds.MinX(), t.Bounds.MinY(), t.Bounds.MaxX(), t.Bounds.MaxY()},
		},
	}
}
