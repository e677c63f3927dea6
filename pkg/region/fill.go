// Package region finds and recolours connected areas of equal cells.
package region

import (
	"github.com/gravitas-games/chromio/pkg/hex"
	"github.com/gravitas-games/chromio/pkg/hexgrid"
)

// Result describes the outcome of a Fill.
type Result struct {
	// Reassigned is the number of cells given the target value.
	Reassigned int
	// Uniform reports whether every cell of the grid now holds one value.
	Uniform bool
	// Cells lists the reassigned cells in visit order.
	Cells []hex.Spiral
}

// Find returns the cells connected to start that hold the same value as
// start, in breadth-first visit order. Positions off the grid are skipped.
func Find[T comparable](g *hexgrid.Grid[T], start hex.Coord) ([]hex.Spiral, error) {
	want, err := g.Get(start)
	if err != nil {
		return nil, err
	}
	first := start.Spiral()
	visited := map[hex.Spiral]bool{}
	var order []hex.Spiral
	q := []hex.Spiral{first}
	for len(q) > 0 {
		cur := q[0]
		q = q[1:]
		if visited[cur] {
			continue
		}
		visited[cur] = true
		order = append(order, cur)
		for _, nb := range cur.Polar().Neighbours() {
			v, ok := g.Lookup(nb)
			if !ok || v != want {
				continue // off the edge or a different value
			}
			if s := nb.Spiral(); !visited[s] {
				q = append(q, s)
			}
		}
	}
	return order, nil
}

// Fill assigns target to the region connected to start. It is a no-op when
// start already holds target.
func Fill[T comparable](g *hexgrid.Grid[T], start hex.Coord, target T) (Result, error) {
	current, err := g.Get(start)
	if err != nil {
		return Result{}, err
	}
	if current == target {
		return Result{Uniform: Uniform(g)}, nil
	}
	cells, err := Find(g, start)
	if err != nil {
		return Result{}, err
	}
	for _, c := range cells {
		if err := g.Set(c, target); err != nil {
			return Result{}, err
		}
	}
	return Result{
		Reassigned: len(cells),
		Uniform:    Uniform(g),
		Cells:      cells,
	}, nil
}

// FillOrigin is Fill starting at the centre cell.
func FillOrigin[T comparable](g *hexgrid.Grid[T], target T) (Result, error) {
	return Fill(g, hex.Origin, target)
}

// Uniform reports whether every cell of g holds the same value.
func Uniform[T comparable](g *hexgrid.Grid[T]) bool {
	first, ok := g.Lookup(hex.Origin)
	if !ok {
		return true
	}
	uniform := true
	g.Each(func(_ hex.Spiral, v T) {
		if v != first {
			uniform = false
		}
	})
	return uniform
}
