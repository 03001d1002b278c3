package grids

import "github.com/gdey/errors"

const (
	// ErrInvalidGrid is returned when a grid definition violates an
	// invariant: missing field, non-positive resolution or tile size,
	// or inverted limits.
	ErrInvalidGrid errors.String = "invalid tile grid definition"

	// ErrCatalog is returned when a catalog source cannot be read or
	// parsed, or contains duplicate grid names.
	ErrCatalog errors.String = "could not load tile grid catalog"

	// ErrOutOfBounds is returned by PointToTile when the matching tile
	// falls outside the grid limits.
	ErrOutOfBounds errors.String = "point outside grid limits"

	// ErrTileIndex is returned by TileAt for a row/col outside the grid
	// limits.
	ErrTileIndex errors.String = "tile index outside grid limits"
)
