// Package parallel runs independent units of work over a tile grid.
//
// A Grid divides a width x height surface into fixed-size tiles. The tile
// count is computed by ceiling division, so tiles on the right and bottom
// edges may extend past the surface; consumers skip those coordinates.
// Tiles never overlap, which lets executors run them in any order.
package parallel

import (
	"errors"
	"fmt"
	"image"
)

var (
	// ErrInvalidGrid is returned for non-positive surface or tile dimensions.
	ErrInvalidGrid = errors.New("parallel: invalid grid")

	// ErrDeviceUnavailable is returned when an executor cannot accept work.
	ErrDeviceUnavailable = errors.New("parallel: execution backend unavailable")

	// ErrTileFailed is returned when a unit of work panics.
	ErrTileFailed = errors.New("parallel: tile failed")
)

// Grid is a partition of a surface into equally sized tiles.
type Grid struct {
	Width      int
	Height     int
	TileWidth  int
	TileHeight int
	TilesX     int
	TilesY     int
}

// Tile is one cell of a Grid.
type Tile struct {
	// X and Y are the tile column and row.
	X, Y int

	// Bounds is the full tile rectangle in surface coordinates.
	// On the tail row or column it may exceed the surface.
	Bounds image.Rectangle
}

// NewGrid builds a grid covering width x height with tiles of tileW x tileH.
func NewGrid(width, height, tileW, tileH int) (Grid, error) {
	if width <= 0 || height <= 0 || tileW <= 0 || tileH <= 0 {
		return Grid{}, fmt.Errorf("%w: surface %dx%d, tile %dx%d",
			ErrInvalidGrid, width, height, tileW, tileH)
	}
	return Grid{
		Width:      width,
		Height:     height,
		TileWidth:  tileW,
		TileHeight: tileH,
		TilesX:     (width + tileW - 1) / tileW,
		TilesY:     (height + tileH - 1) / tileH,
	}, nil
}

// Len returns the number of tiles.
func (g Grid) Len() int {
	return g.TilesX * g.TilesY
}

// TileAt returns the tile at column tx and row ty.
func (g Grid) TileAt(tx, ty int) Tile {
	x0 := tx * g.TileWidth
	y0 := ty * g.TileHeight
	return Tile{
		X:      tx,
		Y:      ty,
		Bounds: image.Rect(x0, y0, x0+g.TileWidth, y0+g.TileHeight),
	}
}

// Tiles lists every tile in row-major order.
func (g Grid) Tiles() []Tile {
	tiles := make([]Tile, 0, g.Len())
	for ty := range g.TilesY {
		for tx := range g.TilesX {
			tiles = append(tiles, g.TileAt(tx, ty))
		}
	}
	return tiles
}

// Clip returns the part of t that lies inside the surface.
func (g Grid) Clip(t Tile) image.Rectangle {
	return t.Bounds.Intersect(image.Rect(0, 0, g.Width, g.Height))
}
