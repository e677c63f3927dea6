package hex

import (
	"fmt"
	"math"
	"math/bits"
)

// MaxRing is the outermost ring whose cells convert between every
// representation without overflowing int.
const MaxRing = 1 << (bits.UintSize/2 - 2)

// MaxSpiral is the spiral index of the last cell of MaxRing.
const MaxSpiral = Spiral(3 * MaxRing * (MaxRing + 1))

// Spiral is the ordinal of a cell in the anticlockwise outward spiral.
// Only non-negative values denote cells.
type Spiral int

// Valid reports whether s denotes a cell within MaxRing.
func (s Spiral) Valid() bool { return s >= 0 && s <= MaxSpiral }

func (s Spiral) Spiral() Spiral { return s }

// Skew returns the skew vector of the cell.
func (s Spiral) Skew() Skew { return s.Polar().Skew() }

// Polar returns the ring/sector/number form of the cell. It panics if s is
// negative or beyond MaxSpiral.
func (s Spiral) Polar() Polar {
	if s < 0 {
		panic(fmt.Sprintf("hex: negative spiral index %d", int(s)))
	}
	if s > MaxSpiral {
		panic(fmt.Sprintf("hex: spiral index %d beyond ring %d", int(s), MaxRing))
	}
	if s == 0 {
		return Origin
	}
	i := int(s)
	r := ringOf(i)
	pos := i - int(RingStart(r))
	return Polar{Ring: r, Sector: pos / r, Number: pos % r}
}

// ringOf returns the largest r with 3r(r-1)+1 <= i for 1 <= i <= MaxSpiral.
// The float estimate is corrected in integer arithmetic so the result is
// exact.
func ringOf(i int) int {
	r := int((3 + math.Sqrt(12*float64(i)-3)) / 6)
	if r < 1 {
		r = 1
	}
	if r > MaxRing {
		r = MaxRing
	}
	for r > 1 && int(RingStart(r)) > i {
		r--
	}
	for r < MaxRing && int(RingStart(r+1)) <= i {
		r++
	}
	return r
}

// RingStart returns the spiral index of (r,0,0).
func RingStart(r int) Spiral {
	if r <= 0 {
		return 0
	}
	return Spiral(3*r*(r-1) + 1)
}

// RingSize returns the number of cells in ring r.
func RingSize(r int) int {
	if r == 0 {
		return 1
	}
	return 6 * r
}

// Capacity returns the number of cells within radius of the origin.
func Capacity(radius int) int {
	return 3*radius*(radius+1) + 1
}
