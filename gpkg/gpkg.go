// Package gpkg writes tile grids to GeoPackage files, one polygon
// feature per tile.
package gpkg

import (
	"fmt"

	"github.com/go-spatial/geom"
	"github.com/go-spatial/geom/encoding/gpkg"
	"go.uber.org/zap"

	"github.com/spatialgrid/gridtiles/grids"
	"github.com/spatialgrid/gridtiles/log"
)

const (
	tileTableName  = "tiles"
	geometryColumn = "geom"
)

// TargetGeopackage is a GeoPackage being written. Features are written
// in pages of pagesize rows per transaction.
type TargetGeopackage struct {
	pagesize int
	srsID    int
	handle   *gpkg.Handle
}

func NewTarget(file string, pagesize int) (*TargetGeopackage, error) {
	handle, err := gpkg.Open(file)
	if err != nil {
		return nil, fmt.Errorf("error opening GeoPackage: %w", err)
	}
	return &TargetGeopackage{pagesize: pagesize, handle: handle}, nil
}

func (t *TargetGeopackage) Close() {
	t.handle.Close()
}

// CreateTileTable registers the grid's spatial reference system and
// creates the tiles feature table.
func (t *TargetGeopackage) CreateTileTable(grid *grids.TileGrid) error {
	srs := spatialReferenceSystem(grid)
	t.srsID = srs.ID

	err := t.handle.UpdateSRS(srs)
	if err != nil {
		return fmt.Errorf("could not register srs %v: %w", srs.ID, err)
	}

	_, err = t.handle.Exec(createSQL(tileTableName))
	if err != nil {
		return fmt.Errorf("could not create table %v: %w", tileTableName, err)
	}

	err = t.handle.AddGeometryTable(gpkg.TableDescription{
		Name:          tileTableName,
		ShortName:     tileTableName,
		Description:   "tiles of grid " + grid.Name,
		GeometryField: geometryColumn,
		GeometryType:  gpkg.Polygon,
		SRS:           int32(srs.ID),
		//
		Z: gpkg.Prohibited,
		M: gpkg.Prohibited,
	})
	if err != nil {
		return fmt.Errorf("could not add geometry table %v: %w", tileTableName, err)
	}
	return nil
}

// WriteTiles writes the tiles as polygon features, pagesize per
// transaction, and updates the table extent when done.
func (t *TargetGeopackage) WriteTiles(tiles []grids.Tile) error {
	var ext *geom.Extent
	for offset := 0; offset < len(tiles); offset += t.pagesize {
		end := offset + t.pagesize
		if end > len(tiles) {
			end = len(tiles)
		}
		pageExt, err := t.writePage(tiles[offset:end])
		if err != nil {
			return err
		}
		if ext == nil {
			ext = pageExt
		} else {
			ext.Add(pageExt)
		}
	}
	log.Debug("wrote tile features", zap.Int("tiles", len(tiles)))

	// nothing written, leave the table extent empty
	if ext == nil {
		return nil
	}
	err := t.handle.UpdateGeometryExtent(tileTableName, ext)
	if err != nil {
		return fmt.Errorf("failed to update the %v extent: %w", tileTableName, err)
	}
	return nil
}

func (t *TargetGeopackage) writePage(tiles []grids.Tile) (*geom.Extent, error) {
	tx, err := t.handle.Begin()
	if err != nil {
		return nil, fmt.Errorf("could not start a transaction: %w", err)
	}
	// no-op once committed
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(insertSQL(tileTableName))
	if err != nil {
		return nil, fmt.Errorf("could not prepare a statement: %w", err)
	}
	defer stmt.Close()

	var ext *geom.Extent
	for _, tile := range tiles {
		bbox := tile.BBox()
		sb, err := gpkg.NewBinary(int32(t.srsID), bbox)
		if err != nil {
			return nil, fmt.Errorf("could not encode tile %v: %w", tile.Index, err)
		}
		_, err = stmt.Exec(tile.Vertical(), tile.Horizontal(), sb)
		if err != nil {
			return nil, fmt.Errorf("could not insert tile %v: %w", tile.Index, err)
		}
		if ext == nil {
			copied := tile.Bounds
			ext = &copied
		} else {
			ext.AddGeometry(bbox)
		}
	}
	return ext, tx.Commit()
}

// spatialReferenceSystem derives a gpkg srs entry from the grid CRS. A
// WKT without a root authority gets a private srs id.
func spatialReferenceSystem(grid *grids.TileGrid) gpkg.SpatialReferenceSystem {
	srs := gpkg.SpatialReferenceSystem{
		Name:         grid.Name,
		Organization: grid.CRS.AuthorityName(),
		Definition:   grid.CRS.WKT(),
	}
	if srid, ok := grid.CRS.SRID(); ok {
		srs.ID = int(srid)
		srs.OrganizationCoordsysID = int(srid)
	} else {
		srs.ID = 100000
		srs.Organization = "NONE"
		srs.OrganizationCoordsysID = 100000
	}
	return srs
}

// createSQL builds the CREATE statement for the tiles feature table.
func createSQL(table string) string {
	return `CREATE TABLE IF NOT EXISTS "` + table + `"` +
		`(fid INTEGER PRIMARY KEY AUTOINCREMENT, ` +
		`vertical INTEGER NOT NULL, horizontal INTEGER NOT NULL, ` +
		geometryColumn + ` POLYGON);`
}

// insertSQL builds the INSERT statement for one tile feature.
func insertSQL(table string) string {
	return `INSERT INTO "` + table + `"(vertical,horizontal,` + geometryColumn + `) VALUES(?,?,?)`
}
