// Package hex provides three interconvertible coordinate systems for a grid of
// hexagonal cells centred on an origin cell.
//
// Polar (ring, sector, number): the origin is (0,0,0) and is the sole cell of
// ring 0. Ring R >= 1 has six sectors, each holding R cells numbered 0..R-1
// anticlockwise from the sector's corner.
//
//	      K J I
//	     L C B H
//	    M D @ A G
//	     N E F R
//	      O P Q
//
// Ring 1 is A..F, i.e. (1,0,0) .. (1,5,0).
//
// Spiral: the ordinal of a cell when all cells are enumerated anticlockwise
// outwards from the origin (index 0). It is suitable as an index into a flat
// array of cells.
//
//	k = 3r(r-1) + 1 + rs + n
//
// Skew (u, v): integer multiples of the basis vectors U = (1, 0) and
// V = (0.5, sin 60°).
package hex

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidCoordinate is returned for a polar triple that names no cell.
var ErrInvalidCoordinate = errors.New("hex: invalid coordinate")

// Sin60 is the height of one skew V step in planar units.
var Sin60 = math.Sin(math.Pi / 3)

// Coord is any cell position. Every representation converts to every other
// exactly.
type Coord interface {
	Spiral() Spiral
	Polar() Polar
	Skew() Skew
}

// Skew represents a cell as integer multiples of U = (1,0) and V = (0.5, sin60).
type Skew struct {
	U int `json:"u"`
	V int `json:"v"`
}

// Directions are the six unit steps to adjacent cells, anticlockwise from +U.
var Directions = [6]Skew{
	{+1, 0}, {0, +1}, {-1, +1}, {-1, 0}, {0, -1}, {+1, -1},
}

// Add returns a+b in skew space.
func (a Skew) Add(b Skew) Skew { return Skew{a.U + b.U, a.V + b.V} }

// Sub returns a-b in skew space.
func (a Skew) Sub(b Skew) Skew { return Skew{a.U - b.U, a.V - b.V} }

// Scale scales a skew vector by k.
func (a Skew) Scale(k int) Skew { return Skew{a.U * k, a.V * k} }

func (a Skew) Skew() Skew { return a }

// Validate reports whether a lies within MaxRing of the origin.
func (a Skew) Validate() error {
	if !withinRing(a.U) || !withinRing(a.V) || !withinRing(a.U+a.V) {
		return fmt.Errorf("%w: skew (%d,%d) beyond ring %d", ErrInvalidCoordinate, a.U, a.V, MaxRing)
	}
	return nil
}

// withinRing checks bounds without abs, which overflows for math.MinInt.
func withinRing(x int) bool { return x >= -MaxRing && x <= MaxRing }

// Spiral returns the spiral index of the cell. It panics if a fails
// Validate.
func (a Skew) Spiral() Spiral { return a.Polar().Spiral() }

// Polar returns the ring/sector/number form of the cell.
func (a Skew) Polar() Polar {
	u, v := a.U, a.V
	if u == 0 && v == 0 {
		return Origin
	}
	s := skewSector(u, v)
	k := inverseTable[s]
	return Polar{
		Ring:   k.ru*u + k.rv*v,
		Sector: s,
		Number: k.nu*u + k.nv*v,
	}
}

// Neighbours returns the six adjacent cells in Directions order.
func (a Skew) Neighbours() [6]Skew {
	var out [6]Skew
	for i, d := range Directions {
		out[i] = a.Add(d)
	}
	return out
}

// Distance returns the hex distance between two cells, which is the ring of
// b as seen from a.
func Distance(a, b Skew) int {
	d := a.Sub(b)
	du := abs(d.U)
	dv := abs(d.V)
	dw := abs(d.U + d.V)
	if du >= dv && du >= dw {
		return du
	}
	if dv >= dw {
		return dv
	}
	return dw
}

// Centre returns the planar centre of a cell. Adjacent centres are one unit
// apart.
func Centre(c Coord) (x, y float64) {
	s := c.Skew()
	v := float64(s.V)
	return float64(s.U) + 0.5*v, v * Sin60
}

// Nearest maps a planar point to a cell by rounding v first and then u.
// Rounding is math.Round (halves away from zero). This is the nearest lattice
// point along each skew axis in turn and is not guaranteed to be the closest
// centre by Euclidean distance near cell corners.
func Nearest(x, y float64) Skew {
	v := math.Round(y / Sin60)
	u := math.Round(x - 0.5*v)
	return Skew{U: int(u), V: int(v)}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
