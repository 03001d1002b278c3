package grids

import (
	"testing"

	"github.com/go-spatial/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const wktGEOG = `GEOGCS["WGS 84",DATUM["WGS_1984",SPHEROID["WGS 84",6378137,298.257223563,AUTHORITY["EPSG","7030"]],AUTHORITY["EPSG","6326"]],PRIMEM["Greenwich",0,AUTHORITY["EPSG","8901"]],UNIT["degree",0.0174532925199433,AUTHORITY["EPSG","9122"]],AUTHORITY["EPSG","4326"]]`

const wktAEA = `PROJCS["CONUS_WGS84_Albers_Equal_Area_Conic",GEOGCS["WGS 84",DATUM["WGS_1984",SPHEROID["WGS 84",6378137,298.257223563,AUTHORITY["EPSG","7030"]],AUTHORITY["EPSG","6326"]],PRIMEM["Greenwich",0,AUTHORITY["EPSG","8901"]],UNIT["degree",0.0174532925199433,AUTHORITY["EPSG","9122"]],AUTHORITY["EPSG","4326"]],PROJECTION["Albers_Conic_Equal_Area"],PARAMETER["standard_parallel_1",29.5],PARAMETER["standard_parallel_2",45.5],PARAMETER["latitude_of_center",23],PARAMETER["longitude_of_center",-96],PARAMETER["false_easting",0],PARAMETER["false_northing",0],UNIT["Meter",1]]`

// geogGrid is a 10x10 degree grid starting at -180,80, easy to test with.
func geogGrid(t *testing.T) *TileGrid {
	t.Helper()
	grid, err := NewTileGrid("GEOG", MustNewCRS(wktGEOG),
		[2]float64{-180.0, 80.0},
		[2]float64{0.00025, 0.00025},
		[2]int{40000, 40000},
		[2][2]int{{0, 14}, {0, 37}})
	require.NoError(t, err)
	return grid
}

func ardGrid(t *testing.T) *TileGrid {
	t.Helper()
	grid, err := NewTileGrid("Landsat ARD - CONUS", MustNewCRS(wktAEA),
		[2]float64{-2565585.0, 3314805.0},
		[2]float64{30.0, 30.0},
		[2]int{5000, 5000},
		[2][2]int{{0, 21}, {0, 32}})
	require.NoError(t, err)
	return grid
}

func TestNewTileGridInvalid(t *testing.T) {
	crs := MustNewCRS(wktGEOG)
	tests := []struct {
		name   string
		res    [2]float64
		size   [2]int
		limits [2][2]int
	}{
		{name: "zero x res", res: [2]float64{0, 10}, size: [2]int{10, 10}, limits: [2][2]int{{0, 1}, {0, 1}}},
		{name: "negative y res", res: [2]float64{10, -10}, size: [2]int{10, 10}, limits: [2][2]int{{0, 1}, {0, 1}}},
		{name: "zero size", res: [2]float64{10, 10}, size: [2]int{0, 10}, limits: [2][2]int{{0, 1}, {0, 1}}},
		{name: "inverted row limits", res: [2]float64{10, 10}, size: [2]int{10, 10}, limits: [2][2]int{{2, 0}, {0, 1}}},
		{name: "inverted col limits", res: [2]float64{10, 10}, size: [2]int{10, 10}, limits: [2][2]int{{0, 1}, {4, 2}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTileGrid("bad", crs, [2]float64{0, 100}, tt.res, tt.size, tt.limits)
			require.ErrorIs(t, err, ErrInvalidGrid)
		})
	}
}

func TestTileGridProps(t *testing.T) {
	grid, err := NewTileGrid("props", MustNewCRS(wktGEOG),
		[2]float64{0, 100}, [2]float64{5, 5}, [2]int{10, 10},
		[2][2]int{{0, 12}, {0, 8}})
	require.NoError(t, err)

	assert.Equal(t, 12, grid.NRow())
	assert.Equal(t, 8, grid.NCol())
	assert.Equal(t, 96, grid.Len())
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11}, grid.Rows())
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7}, grid.Cols())
	assert.Equal(t, Affine{5, 0, 0, 0, -5, 100}, grid.Transform())

	tile, err := grid.TileAt(0, 0)
	require.NoError(t, err)
	assert.Equal(t, grid.UL[0], tile.Bounds.MinX())
	assert.Equal(t, grid.UL[1], tile.Bounds.MaxY())
	assert.Equal(t, grid.CRS, tile.CRS)
	assert.Equal(t, grid.Size, tile.Size)

	_, err = grid.TileAt(11, 7)
	require.NoError(t, err)
	_, err = grid.TileAt(12, 8)
	require.ErrorIs(t, err, ErrTileIndex)
	_, err = grid.TileAt(0, -1)
	require.ErrorIs(t, err, ErrTileIndex)
}

func TestTileGridIndices(t *testing.T) {
	grid, err := NewTileGrid("iter", MustNewCRS(wktGEOG),
		[2]float64{0, 100}, [2]float64{5, 5}, [2]int{10, 10},
		[2][2]int{{0, 2}, {0, 3}})
	require.NoError(t, err)

	want := []TileIndex{{0, 0}, {0, 1}, {0, 2}, {1, 0}, {1, 1}, {1, 2}}
	assert.Equal(t, want, grid.Indices())
	// a fresh traversal each time
	assert.Equal(t, grid.Indices(), grid.Indices())
	assert.Len(t, grid.Indices(), grid.Len())
}

func TestPointToTile(t *testing.T) {
	grid := geogGrid(t)
	tests := []struct {
		name string
		x, y float64
		want TileIndex
	}{
		{name: "inside tile", x: -165.0, y: 30.00001, want: TileIndex{4, 1}},
		{name: "on top edge of next row", x: -165.0, y: 30.0, want: TileIndex{5, 1}},
		{name: "origin corner", x: -180.0, y: 80.0, want: TileIndex{0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tile, err := grid.PointToTile(tt.x, tt.y)
			require.NoError(t, err)
			assert.Equal(t, tt.want, tile.Index)
			assert.Equal(t, tt.want[0], tile.Vertical())
			assert.Equal(t, tt.want[1], tile.Horizontal())
		})
	}
}

func TestPointToTileLandsatARD(t *testing.T) {
	grid := ardGrid(t)

	tile, err := grid.PointToTile(-2565585.0+1, 3314805.0-1)
	require.NoError(t, err)
	assert.Equal(t, TileIndex{0, 0}, tile.Index)

	tile, err = grid.PointToTile(-2565585.0+5000*30*5+1, 3314805.0-1)
	require.NoError(t, err)
	assert.Equal(t, 5, tile.Horizontal())
	assert.Equal(t, 0, tile.Vertical())
}

func TestPointToTileOutOfBounds(t *testing.T) {
	grid := geogGrid(t)
	tests := []struct {
		name string
		x, y float64
	}{
		{name: "west of grid", x: -180.1, y: 50},
		{name: "north of grid", x: 0, y: 80.5},
		{name: "south of grid", x: 0, y: -60.5},
		{name: "east of grid", x: 190.5, y: 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := grid.PointToTile(tt.x, tt.y)
			require.ErrorIs(t, err, ErrOutOfBounds)
		})
	}
}

// Points on a tile edge belong to exactly one tile: the one south/east
// of the edge.
func TestPointToTileEdgeOwnership(t *testing.T) {
	grid := geogGrid(t)

	tile, err := grid.PointToTile(-170.0, 75.0) // on the col 0/1 edge
	require.NoError(t, err)
	assert.Equal(t, TileIndex{0, 1}, tile.Index)

	tile, err = grid.PointToTile(-175.0, 70.0) // on the row 0/1 edge
	require.NoError(t, err)
	assert.Equal(t, TileIndex{1, 0}, tile.Index)
}

// Any point strictly inside a tile's bounds must resolve to that tile.
func TestPointToTileContainment(t *testing.T) {
	grid := ardGrid(t)
	for _, index := range grid.Indices() {
		tile, err := grid.TileAt(index.Row(), index.Col())
		require.NoError(t, err)
		center := [2]float64{
			(tile.Bounds.MinX() + tile.Bounds.MaxX()) / 2,
			(tile.Bounds.MinY() + tile.Bounds.MaxY()) / 2,
		}
		got, err := grid.PointToTile(center[0], center[1])
		require.NoError(t, err)
		require.Equal(t, index, got.Index)
	}
}

// Tile bounds must match the grid transform exactly, however far the
// tile sits from the origin.
func TestTileBoundsMatchTransform(t *testing.T) {
	grid := ardGrid(t)
	transform := grid.Transform()
	for _, index := range grid.Indices() {
		tile, err := grid.TileAt(index.Row(), index.Col())
		require.NoError(t, err)
		wantX, wantY := transform.Apply(
			float64(index.Col()*grid.Size[0]),
			float64(index.Row()*grid.Size[1]))
		require.Equal(t, wantX, tile.Bounds.MinX(), "tile %v", index)
		require.Equal(t, wantY, tile.Bounds.MaxY(), "tile %v", index)
	}
}

func TestBoundsToTiles(t *testing.T) {
	grid := geogGrid(t)
	tests := []struct {
		name   string
		bounds geom.Extent
		want   []TileIndex
	}{
		{
			name:   "two tiles",
			bounds: geom.Extent{-74, 41, -69, 44},
			want:   []TileIndex{{3, 10}, {3, 11}},
		},
		{
			name:   "single tile interior",
			bounds: geom.Extent{-179, 71, -178, 72},
			want:   []TileIndex{{0, 0}},
		},
		{
			name:   "disjoint box",
			bounds: geom.Extent{200, 0, 210, 10},
			want:   nil,
		},
		{
			name: "aligned box excludes touching neighbors",
			// exactly tile (0, 1)
			bounds: geom.Extent{-170, 70, -160, 80},
			want:   []TileIndex{{0, 1}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tiles := grid.BoundsToTiles(tt.bounds)
			var got []TileIndex
			for _, tile := range tiles {
				got = append(got, tile.Index)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

// The full grid extent is covered by exactly NRow*NCol distinct tiles.
func TestBoundsToTilesCoverage(t *testing.T) {
	grid := geogGrid(t)
	full := geom.Extent{
		grid.UL[0],
		grid.UL[1] - float64(grid.NRow()*grid.Size[1])*grid.Res[1],
		grid.UL[0] + float64(grid.NCol()*grid.Size[0])*grid.Res[0],
		grid.UL[1],
	}
	tiles := grid.BoundsToTiles(full)
	require.Len(t, tiles, grid.Len())

	seen := make(map[TileIndex]struct{}, len(tiles))
	for _, tile := range tiles {
		_, dupe := seen[tile.Index]
		require.False(t, dupe, "tile %v returned twice", tile.Index)
		seen[tile.Index] = struct{}{}
	}
}

func TestRoiToTiles(t *testing.T) {
	grid := geogGrid(t)
	tests := []struct {
		name string
		roi  geom.Polygon
		want int
	}{
		{
			name: "box overlapping four tiles",
			roi:  geom.Polygon{{{0.5, 0.5}, {10.5, 0.5}, {10.5, 10.5}, {0.5, 10.5}}},
			want: 4,
		},
		{
			name: "exactly one tile",
			roi:  geom.Polygon{{{0, 0}, {10, 0}, {10, 10}, {0, 10}}},
			want: 1,
		},
		{
			name: "triangle inside one tile",
			roi:  geom.Polygon{{{1, 1}, {9, 1}, {5, 9}}},
			want: 1,
		},
		{
			name: "disjoint",
			roi:  geom.Polygon{{{300, 0}, {310, 0}, {310, 10}, {300, 10}}},
			want: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tiles, err := grid.RoiToTiles(tt.roi)
			require.NoError(t, err)
			assert.Len(t, tiles, tt.want)
		})
	}
}

// A tile swallowed by a hole of the roi is not covered by it, even when
// the hole boundary coincides with the tile edges.
func TestRoiToTilesWithHole(t *testing.T) {
	grid := geogGrid(t)
	// 3x3 tiles worth of roi with the center tile (1, 19) cut out
	roi := geom.Polygon{
		{{0, 50}, {30, 50}, {30, 80}, {0, 80}},
		{{10, 60}, {10, 70}, {20, 70}, {20, 60}},
	}
	tiles, err := grid.RoiToTiles(roi)
	require.NoError(t, err)

	var got []TileIndex
	for _, tile := range tiles {
		got = append(got, tile.Index)
	}
	assert.Equal(t, []TileIndex{
		{0, 18}, {0, 19}, {0, 20},
		{1, 18}, {1, 20},
		{2, 18}, {2, 19}, {2, 20},
	}, got)
}

// A hole smaller than a tile does not disqualify the tile around it.
func TestRoiToTilesWithSmallHole(t *testing.T) {
	grid := geogGrid(t)
	roi := geom.Polygon{
		{{1, 61}, {19, 61}, {19, 79}, {1, 79}},
		{{13, 63}, {13, 67}, {17, 67}, {17, 63}},
	}
	tiles, err := grid.RoiToTiles(roi)
	require.NoError(t, err)

	var got []TileIndex
	for _, tile := range tiles {
		got = append(got, tile.Index)
	}
	assert.Equal(t, []TileIndex{{0, 18}, {0, 19}, {1, 18}, {1, 19}}, got)
}

// A thin diagonal roi only intersects the tiles its edges pass through,
// not every tile of its bounding box.
func TestRoiToTilesFiltersBoundingBox(t *testing.T) {
	grid := geogGrid(t)
	// diagonal sliver from tile (7, 18) to tile (5, 20)
	roi := geom.Polygon{{{1, 1}, {29, 29}, {29, 28.5}, {1.5, 1}}}
	tiles, err := grid.RoiToTiles(roi)
	require.NoError(t, err)

	var got []TileIndex
	for _, tile := range tiles {
		got = append(got, tile.Index)
	}
	assert.Equal(t, []TileIndex{{5, 20}, {6, 19}, {6, 20}, {7, 18}, {7, 19}}, got)
}
