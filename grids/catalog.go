package grids

import (
	_ "embed"
	"fmt"
	"os"
	"sync"

	orderedmap "github.com/wk8/go-ordered-map/v2"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/spatialgrid/gridtiles/log"
)

//go:embed tilegrids.yml
var embeddedCatalogYAML []byte

var (
	embeddedCatalogOnce sync.Once
	embeddedCatalog     *Catalog
	embeddedCatalogErr  error
)

// Catalog is a read-only mapping from grid name to TileGrid, preserving
// the order of the source document. Load it once during initialization;
// afterwards it is safe for concurrent readers.
type Catalog struct {
	grids *orderedmap.OrderedMap[string, *TileGrid]
}

// LoadGrids reads a tile grid catalog from a YAML file. An empty path
// loads the catalog packaged with this module.
func LoadGrids(path string) (*Catalog, error) {
	if path == "" {
		return LoadEmbeddedGrids()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalog, err)
	}
	catalog, err := parseCatalog(data)
	if err != nil {
		return nil, err
	}
	log.Debug("loaded tile grid catalog",
		zap.String("source", path), zap.Int("grids", catalog.Len()))
	return catalog, nil
}

// LoadEmbeddedGrids returns the catalog packaged with this module. The
// catalog is parsed once and shared between callers.
func LoadEmbeddedGrids() (*Catalog, error) {
	embeddedCatalogOnce.Do(func() {
		embeddedCatalog, embeddedCatalogErr = parseCatalog(embeddedCatalogYAML)
	})
	return embeddedCatalog, embeddedCatalogErr
}

// parseCatalog decodes a catalog document: a top-level mapping from grid
// name to grid definition. Grid names must be unique; a duplicate fails
// the whole catalog rather than silently keeping one of the entries.
func parseCatalog(data []byte) (*Catalog, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalog, err)
	}
	if len(doc.Content) == 0 {
		return nil, fmt.Errorf("%w: empty catalog document", ErrCatalog)
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: top level should be a mapping of grid names", ErrCatalog)
	}

	grids := orderedmap.New[string, *TileGrid]()
	for i := 0; i+1 < len(root.Content); i += 2 {
		name := root.Content[i].Value
		if _, exists := grids.Get(name); exists {
			return nil, fmt.Errorf("%w: duplicate grid name %q", ErrCatalog, name)
		}
		var def tileGridDef
		if err := root.Content[i+1].Decode(&def); err != nil {
			return nil, fmt.Errorf("%w: grid %q: %v", ErrCatalog, name, err)
		}
		if def.Name == "" {
			def.Name = name
		}
		grid, err := def.toGrid()
		if err != nil {
			return nil, fmt.Errorf("%w: grid %q: %w", ErrCatalog, name, err)
		}
		grids.Set(name, grid)
	}
	return &Catalog{grids: grids}, nil
}

// Get returns the grid stored under the given catalog key.
func (c *Catalog) Get(name string) (*TileGrid, bool) {
	return c.grids.Get(name)
}

// Names returns the grid names in document order.
func (c *Catalog) Names() []string {
	names := make([]string, 0, c.grids.Len())
	for pair := c.grids.Oldest(); pair != nil; pair = pair.Next() {
		names = append(names, pair.Key)
	}
	return names
}

// Len returns the number of grids in the catalog.
func (c *Catalog) Len() int {
	return c.grids.Len()
}
