package parallel

import (
	"context"
	"fmt"
)

// Executor runs a function once for every tile of a grid.
//
// Dispatch returns only after every invocation has finished. Implementations
// may run tiles concurrently and in any order.
type Executor interface {
	Dispatch(ctx context.Context, grid Grid, fn func(Tile)) error
}

// Serial runs tiles one after another on the calling goroutine.
type Serial struct{}

var _ Executor = Serial{}

// Dispatch runs fn for every tile in row-major order.
func (Serial) Dispatch(ctx context.Context, grid Grid, fn func(Tile)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, t := range grid.Tiles() {
		if err := runTile(t, fn); err != nil {
			return err
		}
	}
	return nil
}

// runTile invokes fn and converts a panic into an ErrTileFailed error.
func runTile(t Tile, fn func(Tile)) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: tile %d,%d: %v", ErrTileFailed, t.X, t.Y, r)
		}
	}()
	fn(t)
	return nil
}
