// Package grids creates and works with geospatial tiling schemes.
//
// A tile grid partitions a planar coordinate space into a regular matrix
// of rectangular tiles. The grid pins the upper-left corner of tile
// (0, 0) to a coordinate, fixes the per-pixel resolution and the pixel
// size of every tile, and bounds the valid tile indices with half-open
// row/column limits. Given that, any coordinate, bounding box or region
// of interest can be resolved to the tiles that contain it.
package grids

import (
	"fmt"
	"math"

	"github.com/go-spatial/geom"
	"go.uber.org/zap"

	"github.com/spatialgrid/gridtiles/geomhelp"
	"github.com/spatialgrid/gridtiles/log"
)

// TileGrid is a named tile grid specification. All fields are fixed at
// construction; every method is a pure function of them, so a TileGrid
// is safe for concurrent use.
type TileGrid struct {
	// Name identifies the grid, e.g. "LANDSAT_ARD_CU".
	Name string
	// CRS is the coordinate reference system of all grid coordinates.
	CRS CRS
	// UL is the X/Y coordinate of the upper-left corner of tile (0, 0).
	UL [2]float64
	// Res is the X/Y ground distance covered by one pixel. Both values
	// are positive magnitudes; rows grow southward from UL.
	Res [2]float64
	// Size is the width/height of each tile in pixels.
	Size [2]int
	// Limits bounds the valid tile indices as half-open ranges,
	// [[rowStart, rowStop], [colStart, colStop]].
	Limits [2][2]int
}

// TileIndex is a (row, col) tile position. Row 0 is the northernmost
// row, column 0 the westernmost column.
type TileIndex [2]int

func (i TileIndex) Row() int { return i[0] }
func (i TileIndex) Col() int { return i[1] }

func (i TileIndex) String() string {
	return fmt.Sprintf("(%d, %d)", i[0], i[1])
}

// NewTileGrid builds and validates a TileGrid. An empty name defaults to
// DefaultGridName.
func NewTileGrid(name string, crs CRS, ul, res [2]float64, size [2]int, limits [2][2]int) (*TileGrid, error) {
	if name == "" {
		name = DefaultGridName
	}
	grid := &TileGrid{Name: name, CRS: crs, UL: ul, Res: res, Size: size, Limits: limits}
	if err := grid.validate(); err != nil {
		return nil, err
	}
	return grid, nil
}

func (g *TileGrid) validate() error {
	if g.CRS.IsZero() {
		return fmt.Errorf(`%w: grid %q: missing "crs"`, ErrInvalidGrid, g.Name)
	}
	for ax, label := range [2]string{"x", "y"} {
		if g.Res[ax] <= 0 {
			return fmt.Errorf("%w: grid %q: %s resolution %v is not positive",
				ErrInvalidGrid, g.Name, label, g.Res[ax])
		}
		if g.Size[ax] <= 0 {
			return fmt.Errorf("%w: grid %q: %s tile size %v is not positive",
				ErrInvalidGrid, g.Name, label, g.Size[ax])
		}
	}
	for ax, label := range [2]string{"row", "col"} {
		if g.Limits[ax][1] < g.Limits[ax][0] {
			return fmt.Errorf("%w: grid %q: inverted %s limits %v",
				ErrInvalidGrid, g.Name, label, g.Limits[ax])
		}
	}
	return nil
}

// Rows returns the valid row indices in ascending order.
func (g *TileGrid) Rows() []int {
	return spanIndices(g.Limits[0])
}

// Cols returns the valid column indices in ascending order.
func (g *TileGrid) Cols() []int {
	return spanIndices(g.Limits[1])
}

func spanIndices(limit [2]int) []int {
	indices := make([]int, 0, limit[1]-limit[0])
	for i := limit[0]; i < limit[1]; i++ {
		indices = append(indices, i)
	}
	return indices
}

// NRow returns the number of valid rows.
func (g *TileGrid) NRow() int {
	return g.Limits[0][1] - g.Limits[0][0]
}

// NCol returns the number of valid columns.
func (g *TileGrid) NCol() int {
	return g.Limits[1][1] - g.Limits[1][0]
}

// Len returns the number of tiles in the grid.
func (g *TileGrid) Len() int {
	return g.NRow() * g.NCol()
}

// Transform returns the forward affine transform of the grid: pixel
// (0, 0) maps to UL.
func (g *TileGrid) Transform() Affine {
	return NorthUpTransform(g.Res[0], g.Res[1], g.UL[0], g.UL[1])
}

// tileSpan returns the ground distance covered by one tile along x and y.
func (g *TileGrid) tileSpan() (x, y float64) {
	return float64(g.Size[0]) * g.Res[0], float64(g.Size[1]) * g.Res[1]
}

// Contains reports whether (row, col) falls within the grid limits.
func (g *TileGrid) Contains(row, col int) bool {
	return row >= g.Limits[0][0] && row < g.Limits[0][1] &&
		col >= g.Limits[1][0] && col < g.Limits[1][1]
}

// TileAt returns the tile at (row, col), or ErrTileIndex if the index is
// outside the grid limits. Tiles are computed on demand and never cached.
func (g *TileGrid) TileAt(row, col int) (Tile, error) {
	if !g.Contains(row, col) {
		return Tile{}, fmt.Errorf("%w: tile %v is outside of %q limits %v",
			ErrTileIndex, TileIndex{row, col}, g.Name, g.Limits)
	}
	return g.tile(row, col), nil
}

func (g *TileGrid) tile(row, col int) Tile {
	return Tile{
		Index:  TileIndex{row, col},
		CRS:    g.CRS,
		Bounds: g.tileBounds(row, col),
		Res:    g.Res,
		Size:   g.Size,
	}
}

// tileBounds computes the extent of tile (row, col) from the grid
// origin, so tile edges never drift however far the tile sits from UL.
func (g *TileGrid) tileBounds(row, col int) geom.Extent {
	spanX, spanY := g.tileSpan()
	return geom.Extent{
		g.UL[0] + float64(col)*spanX,   // minx
		g.UL[1] - float64(row+1)*spanY, // miny
		g.UL[0] + float64(col+1)*spanX, // maxx
		g.UL[1] - float64(row)*spanY,   // maxy
	}
}

// Indices returns every valid tile index in row-major order (rows
// ascending, then columns ascending). Each call returns a fresh slice.
func (g *TileGrid) Indices() []TileIndex {
	indices := make([]TileIndex, 0, g.Len())
	for row := g.Limits[0][0]; row < g.Limits[0][1]; row++ {
		for col := g.Limits[1][0]; col < g.Limits[1][1]; col++ {
			indices = append(indices, TileIndex{row, col})
		}
	}
	return indices
}

// PointToTile returns the tile whose bounds contain the given
// coordinate. A point on a tile's west or north edge belongs to that
// tile; a point on its east or south edge belongs to the neighbor.
// Returns ErrOutOfBounds when the matching index is outside the limits.
func (g *TileGrid) PointToTile(x, y float64) (Tile, error) {
	spanX, spanY := g.tileSpan()
	col := int(math.Floor((x - g.UL[0]) / spanX))
	row := int(math.Floor((g.UL[1] - y) / spanY))
	if !g.Contains(row, col) {
		return Tile{}, fmt.Errorf("%w: point (%v, %v) maps to tile %v outside of %q limits %v",
			ErrOutOfBounds, x, y, TileIndex{row, col}, g.Name, g.Limits)
	}
	return g.tile(row, col), nil
}

// BoundsToTiles returns the tiles whose extents overlap the given
// bounding box, in row-major order. Tiles that merely touch the box
// along an edge are not included, and candidates outside the grid
// limits are clipped, so a box disjoint from the grid yields an empty
// slice rather than an error.
func (g *TileGrid) BoundsToTiles(bounds geom.Extent) []Tile {
	rows, cols := g.frameBounds(bounds)
	var tiles []Tile
	for _, row := range rows {
		for _, col := range cols {
			tile := g.tile(row, col)
			if overlaps(tile.Bounds, bounds) {
				tiles = append(tiles, tile)
			}
		}
	}
	return tiles
}

// RoiToTiles returns the tiles intersecting an arbitrary polygonal
// region of interest, in row-major order. Candidates are enumerated
// from the region's bounding box and then filtered with an exact
// interiors-overlap test, so only tiles the region actually covers are
// returned.
func (g *TileGrid) RoiToTiles(roi geom.Polygon) ([]Tile, error) {
	bounds, err := geom.NewExtentFromGeometry(roi)
	if err != nil {
		return nil, fmt.Errorf("cannot frame region of interest: %w", err)
	}
	rows, cols := g.frameBounds(*bounds)
	log.Debug("filtering candidate tiles",
		zap.String("grid", g.Name),
		zap.Int("candidates", len(rows)*len(cols)),
		zap.String("roi", geomhelp.WktMustEncode(roi, 120)))

	var tiles []Tile
	for _, row := range rows {
		for _, col := range cols {
			tile := g.tile(row, col)
			if geomhelp.ExtentIntersectsPolygon(tile.Bounds, roi) {
				tiles = append(tiles, tile)
			}
		}
	}
	return tiles, nil
}

// frameBounds returns the row and column indices whose tiles could
// overlap the given box, clipped to the grid limits.
func (g *TileGrid) frameBounds(bounds geom.Extent) (rows, cols []int) {
	spanX, spanY := g.tileSpan()
	minCol := int(math.Floor((bounds.MinX() - g.UL[0]) / spanX))
	maxCol := int(math.Floor((bounds.MaxX() - g.UL[0]) / spanX))
	minRow := int(math.Floor((g.UL[1] - bounds.MaxY()) / spanY))
	maxRow := int(math.Floor((g.UL[1] - bounds.MinY()) / spanY))

	rows = clipSpan(minRow, maxRow, g.Limits[0])
	cols = clipSpan(minCol, maxCol, g.Limits[1])
	return rows, cols
}

// clipSpan intersects the inclusive candidate range [lo, hi] with a
// half-open limit range.
func clipSpan(lo, hi int, limit [2]int) []int {
	if lo < limit[0] {
		lo = limit[0]
	}
	if hi >= limit[1] {
		hi = limit[1] - 1
	}
	var indices []int
	for i := lo; i <= hi; i++ {
		indices = append(indices, i)
	}
	return indices
}

// overlaps reports whether two extents share interior, not just an edge.
func overlaps(a, b geom.Extent) bool {
	return a.MinX() < b.MaxX() && a.MaxX() > b.MinX() &&
		a.MinY() < b.MaxY() && a.MaxY() > b.MinY()
}
