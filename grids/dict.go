package grids

import (
	"encoding/json"
	"fmt"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/go-spatial/geom"
	"github.com/perimeterx/marshmallow"
)

// DefaultGridName is used when a grid definition carries no name of its
// own and no catalog key to fall back to.
const DefaultGridName = "Grid"

// tileGridDef is the serialized shape of a TileGrid, shared by the YAML
// catalog format and the dict representation.
type tileGridDef struct {
	Name   string    `json:"name" yaml:"name" default:"Grid"`
	CRS    string    `json:"crs" yaml:"crs" validate:"required"`
	UL     []float64 `json:"ul" yaml:"ul" validate:"required,len=2"`
	Res    []float64 `json:"res" yaml:"res" validate:"required,len=2"`
	Size   []int     `json:"size" yaml:"size" validate:"required,len=2"`
	Limits [][]int   `json:"limits" yaml:"limits" validate:"required,len=2,dive,len=2"`
}

func (def *tileGridDef) toGrid() (*TileGrid, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(def); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidGrid, err)
	}
	crs, err := NewCRS(def.CRS)
	if err != nil {
		return nil, err
	}
	return NewTileGrid(
		def.Name,
		crs,
		[2]float64{def.UL[0], def.UL[1]},
		[2]float64{def.Res[0], def.Res[1]},
		[2]int{def.Size[0], def.Size[1]},
		[2][2]int{
			{def.Limits[0][0], def.Limits[0][1]},
			{def.Limits[1][0], def.Limits[1][1]},
		},
	)
}

// FromDict builds a TileGrid from its dict representation, the inverse
// of ToDict. A missing "name" defaults to DefaultGridName; all other
// keys are required. Unknown keys are ignored.
func FromDict(d map[string]interface{}) (*TileGrid, error) {
	var def tileGridDef
	if err := defaults.Set(&def); err != nil {
		return nil, err
	}
	if err := unmarshalDict(d, &def); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidGrid, err)
	}
	return def.toGrid()
}

// ToDict returns the grid as a keyed mapping that round-trips exactly
// with FromDict.
func (g *TileGrid) ToDict() map[string]interface{} {
	return map[string]interface{}{
		"name":   g.Name,
		"crs":    g.CRS.WKT(),
		"ul":     []float64{g.UL[0], g.UL[1]},
		"res":    []float64{g.Res[0], g.Res[1]},
		"size":   []int{g.Size[0], g.Size[1]},
		"limits": [][]int{{g.Limits[0][0], g.Limits[0][1]}, {g.Limits[1][0], g.Limits[1][1]}},
	}
}

type tileDef struct {
	Index  []int     `json:"index" validate:"required,len=2"`
	CRS    string    `json:"crs" validate:"required"`
	Bounds []float64 `json:"bounds" validate:"required,len=4"`
	Res    []float64 `json:"res" validate:"required,len=2"`
	Size   []int     `json:"size" validate:"required,len=2"`
}

// TileFromDict builds a Tile from its dict representation, the inverse
// of Tile.ToDict.
func TileFromDict(d map[string]interface{}) (Tile, error) {
	var def tileDef
	if err := unmarshalDict(d, &def); err != nil {
		return Tile{}, fmt.Errorf("%w: %v", ErrInvalidGrid, err)
	}
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(&def); err != nil {
		return Tile{}, fmt.Errorf("%w: %v", ErrInvalidGrid, err)
	}
	crs, err := NewCRS(def.CRS)
	if err != nil {
		return Tile{}, err
	}
	return Tile{
		Index:  TileIndex{def.Index[0], def.Index[1]},
		CRS:    crs,
		Bounds: geom.Extent{def.Bounds[0], def.Bounds[1], def.Bounds[2], def.Bounds[3]},
		Res:    [2]float64{def.Res[0], def.Res[1]},
		Size:   [2]int{def.Size[0], def.Size[1]},
	}, nil
}

// ToDict returns the tile as a keyed mapping (CRS as WKT, bounds as
// minx/miny/maxx/maxy) that round-trips with TileFromDict.
func (t Tile) ToDict() map[string]interface{} {
	return map[string]interface{}{
		"index":  []int{t.Index[0], t.Index[1]},
		"crs":    t.CRS.WKT(),
		"bounds": []float64{t.Bounds.MinX(), t.Bounds.MinY(), t.Bounds.MaxX(), t.Bounds.MaxY()},
		"res":    []float64{t.Res[0], t.Res[1]},
		"size":   []int{t.Size[0], t.Size[1]},
	}
}

// unmarshalDict decodes a dict into target, tolerating unknown keys and
// any numeric representation. The dict is normalized through JSON first
// so callers may pass native []int / []float64 values as well as
// generic []interface{} ones.
func unmarshalDict(d map[string]interface{}, target interface{}) error {
	data, err := json.Marshal(d)
	if err != nil {
		return err
	}
	_, err = marshmallow.Unmarshal(data, target, marshmallow.WithExcludeKnownFieldsFromMap(true))
	return err
}
