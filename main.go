package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/carlmjohnson/versioninfo"
	"github.com/go-spatial/geom"
	"github.com/iancoleman/strcase"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"golang.org/x/exp/slices"

	"github.com/spatialgrid/gridtiles/gpkg"
	"github.com/spatialgrid/gridtiles/grids"
	"github.com/spatialgrid/gridtiles/log"
)

const CATALOG string = `catalog`
const GRIDNAME string = `grid`
const POINT string = `point`
const BOUNDS string = `bounds`
const TARGET string = `target`
const FORMAT string = `format`
const PAGESIZE string = `pagesize`
const DEBUG string = `debug`

const formatGeoJSON = `geojson`
const formatGPKG = `gpkg`

func main() {
	app := cli.NewApp()
	app.Name = "gridtiles"
	app.Usage = "Tile grid catalog lookups and exports"
	app.Version = versioninfo.Short()

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    CATALOG,
			Aliases: []string{"c"},
			Usage:   "Tile grid catalog YAML. Defaults to the built-in catalog",
			EnvVars: []string{strcase.ToScreamingSnake(CATALOG)},
		},
		&cli.BoolFlag{
			Name:    DEBUG,
			Usage:   "Enable debug logging",
			EnvVars: []string{strcase.ToScreamingSnake(DEBUG)},
		},
	}
	app.Before = func(c *cli.Context) error {
		log.Init(c.Bool(DEBUG))
		return nil
	}
	app.After = func(c *cli.Context) error {
		_ = log.Sync()
		return nil
	}

	gridFlag := &cli.StringFlag{
		Name:     GRIDNAME,
		Aliases:  []string{"g"},
		Usage:    "Name of a grid in the catalog. E.g.: LANDSAT_ARD_CU",
		Required: true,
		EnvVars:  []string{strcase.ToScreamingSnake(GRIDNAME)},
	}

	app.Commands = []*cli.Command{
		{
			Name:  "list",
			Usage: "List the grid names in the catalog",
			Action: func(c *cli.Context) error {
				catalog, err := grids.LoadGrids(c.String(CATALOG))
				if err != nil {
					return err
				}
				for _, name := range catalog.Names() {
					fmt.Println(name)
				}
				return nil
			},
		},
		{
			Name:  "describe",
			Usage: "Print a grid definition as JSON",
			Flags: []cli.Flag{gridFlag},
			Action: func(c *cli.Context) error {
				grid, err := loadGrid(c)
				if err != nil {
					return err
				}
				return printJSON(grid.ToDict())
			},
		},
		{
			Name:  "locate",
			Usage: "Find the tile containing a point",
			Flags: []cli.Flag{gridFlag,
				&cli.StringFlag{
					Name:     POINT,
					Aliases:  []string{"p"},
					Usage:    "Point as x,y in the grid CRS. E.g.: -2565584,3314804",
					Required: true,
					EnvVars:  []string{strcase.ToScreamingSnake(POINT)},
				},
			},
			Action: func(c *cli.Context) error {
				grid, err := loadGrid(c)
				if err != nil {
					return err
				}
				coords, err := parseFloats(c.String(POINT), 2)
				if err != nil {
					return fmt.Errorf("invalid %v: %w", POINT, err)
				}
				tile, err := grid.PointToTile(coords[0], coords[1])
				if err != nil {
					return err
				}
				return printJSON(tile.ToDict())
			},
		},
		{
			Name:  "cover",
			Usage: "List the tiles covering a bounding box",
			Flags: []cli.Flag{gridFlag,
				&cli.StringFlag{
					Name:     BOUNDS,
					Aliases:  []string{"b"},
					Usage:    "Bounding box as minx,miny,maxx,maxy in the grid CRS",
					Required: true,
					EnvVars:  []string{strcase.ToScreamingSnake(BOUNDS)},
				},
			},
			Action: func(c *cli.Context) error {
				grid, err := loadGrid(c)
				if err != nil {
					return err
				}
				coords, err := parseFloats(c.String(BOUNDS), 4)
				if err != nil {
					return fmt.Errorf("invalid %v: %w", BOUNDS, err)
				}
				tiles := grid.BoundsToTiles(geom.Extent{coords[0], coords[1], coords[2], coords[3]})
				for _, tile := range tiles {
					fmt.Println(tile.Index)
				}
				return nil
			},
		},
		{
			Name:  "export",
			Usage: "Write every tile of a grid to a GeoJSON or GeoPackage file",
			Flags: []cli.Flag{gridFlag,
				&cli.StringFlag{
					Name:     TARGET,
					Aliases:  []string{"t"},
					Usage:    "Target file",
					Required: true,
					EnvVars:  []string{strcase.ToScreamingSnake(TARGET)},
				},
				&cli.StringFlag{
					Name:    FORMAT,
					Aliases: []string{"f"},
					Usage:   "Target format: geojson or gpkg",
					Value:   formatGeoJSON,
					EnvVars: []string{strcase.ToScreamingSnake(FORMAT)},
				},
				&cli.IntFlag{
					Name:    PAGESIZE,
					Aliases: []string{"p"},
					Usage:   "How many tile features are written per transaction to a target GeoPackage",
					Value:   1000,
					EnvVars: []string{strcase.ToScreamingSnake(PAGESIZE)},
				},
			},
			Action: exportAction,
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal("run failed", zap.Error(err))
	}
}

func exportAction(c *cli.Context) error {
	format := c.String(FORMAT)
	if !slices.Contains([]string{formatGeoJSON, formatGPKG}, format) {
		return fmt.Errorf("unknown format %q", format)
	}
	grid, err := loadGrid(c)
	if err != nil {
		return err
	}
	log.Info("exporting grid",
		zap.String("grid", grid.Name),
		zap.Int("tiles", grid.Len()),
		zap.String("format", format))

	switch format {
	case formatGeoJSON:
		collection, err := grid.GeoJSON(grids.GeoJSONOptions{})
		if err != nil {
			return err
		}
		data, err := json.Marshal(collection)
		if err != nil {
			return err
		}
		return os.WriteFile(c.String(TARGET), data, 0o644)
	case formatGPKG:
		target, err := gpkg.NewTarget(c.String(TARGET), c.Int(PAGESIZE))
		if err != nil {
			return err
		}
		defer target.Close()
		if err := target.CreateTileTable(grid); err != nil {
			return err
		}
		tiles := make([]grids.Tile, 0, grid.Len())
		for _, index := range grid.Indices() {
			tile, err := grid.TileAt(index.Row(), index.Col())
			if err != nil {
				return err
			}
			tiles = append(tiles, tile)
		}
		return target.WriteTiles(tiles)
	}
	return nil
}

func loadGrid(c *cli.Context) (*grids.TileGrid, error) {
	catalog, err := grids.LoadGrids(c.String(CATALOG))
	if err != nil {
		return nil, err
	}
	name := c.String(GRIDNAME)
	grid, ok := catalog.Get(name)
	if !ok {
		return nil, fmt.Errorf("grid %q not found in catalog (have: %v)",
			name, strings.Join(catalog.Names(), ", "))
	}
	return grid, nil
}

func parseFloats(s string, want int) ([]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != want {
		return nil, fmt.Errorf("expected %d comma-separated numbers, got %d", want, len(parts))
	}
	floats := make([]float64, len(parts))
	for i, part := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, err
		}
		floats[i] = f
	}
	return floats, nil
}

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
