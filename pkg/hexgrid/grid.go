// Package hexgrid provides a fixed-capacity array of cell values indexable by
// any hex coordinate.
package hexgrid

import (
	"errors"
	"fmt"

	"github.com/gravitas-games/chromio/pkg/hex"
)

// ErrOutOfRange is returned when a coordinate falls outside a grid.
var ErrOutOfRange = errors.New("hexgrid: coordinate out of range")

// Grid holds one value per cell for every cell within maxRadius of the
// origin, stored in spiral order. A new grid holds the zero value of T in
// every cell.
//
// A Grid is not safe for concurrent use.
type Grid[T any] struct {
	maxRadius int
	cells     []T
}

// New allocates a grid of the given radius. It panics if maxRadius is
// negative.
func New[T any](maxRadius int) *Grid[T] {
	if maxRadius < 0 {
		panic(fmt.Sprintf("hexgrid: negative radius %d", maxRadius))
	}
	return &Grid[T]{
		maxRadius: maxRadius,
		cells:     make([]T, hex.Capacity(maxRadius)),
	}
}

// MaxRadius returns the radius the grid was built with.
func (g *Grid[T]) MaxRadius() int { return g.maxRadius }

// Len returns the number of cells.
func (g *Grid[T]) Len() int { return len(g.cells) }

type validator interface{ Validate() error }

// Index normalizes c to a slot in the backing array. Malformed coordinates
// fail with hex.ErrInvalidCoordinate, valid ones off the grid with
// ErrOutOfRange.
func (g *Grid[T]) Index(c hex.Coord) (int, error) {
	if v, ok := c.(validator); ok {
		if err := v.Validate(); err != nil {
			return 0, err
		}
	}
	i := int(c.Spiral())
	if i < 0 || i >= len(g.cells) {
		return 0, fmt.Errorf("%w: index %d, capacity %d", ErrOutOfRange, i, len(g.cells))
	}
	return i, nil
}

// Contains reports whether c lies within the grid.
func (g *Grid[T]) Contains(c hex.Coord) bool {
	_, err := g.Index(c)
	return err == nil
}

// Get returns the value at c.
func (g *Grid[T]) Get(c hex.Coord) (T, error) {
	i, err := g.Index(c)
	if err != nil {
		var zero T
		return zero, err
	}
	return g.cells[i], nil
}

// Lookup returns the value at c and whether c lies within the grid.
func (g *Grid[T]) Lookup(c hex.Coord) (T, bool) {
	i, err := g.Index(c)
	if err != nil {
		var zero T
		return zero, false
	}
	return g.cells[i], true
}

// Set stores v at c.
func (g *Grid[T]) Set(c hex.Coord, v T) error {
	i, err := g.Index(c)
	if err != nil {
		return err
	}
	g.cells[i] = v
	return nil
}

// Fill overwrites every cell with v.
func (g *Grid[T]) Fill(v T) {
	for i := range g.cells {
		g.cells[i] = v
	}
}

// Each calls fn for every cell in spiral order.
func (g *Grid[T]) Each(fn func(at hex.Spiral, v T)) {
	for i, v := range g.cells {
		fn(hex.Spiral(i), v)
	}
}

// Values returns a copy of all cells in spiral order.
func (g *Grid[T]) Values() []T {
	out := make([]T, len(g.cells))
	copy(out, g.cells)
	return out
}

// Subgrid returns a new grid of the given radius whose cell i holds the value
// found at center + Spiral(i) in g, or def where that position is off g.
// center must be well formed.
func (g *Grid[T]) Subgrid(center hex.Coord, radius int, def T) *Grid[T] {
	out := New[T](radius)
	at := center.Skew()
	for i := range out.cells {
		src := at.Add(hex.Spiral(i).Skew())
		if v, ok := g.Lookup(src); ok {
			out.cells[i] = v
		} else {
			out.cells[i] = def
		}
	}
	return out
}
