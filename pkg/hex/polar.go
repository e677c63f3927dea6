package hex

import "fmt"

// Polar represents a cell by ring, sector and number along the sector.
type Polar struct {
	Ring   int `json:"ring"`
	Sector int `json:"sector"`
	Number int `json:"number"`
}

// Origin is the sole cell of ring 0.
var Origin = Polar{}

// NewPolar validates and returns a polar coordinate.
func NewPolar(ring, sector, number int) (Polar, error) {
	p := Polar{Ring: ring, Sector: sector, Number: number}
	if err := p.Validate(); err != nil {
		return Polar{}, err
	}
	return p, nil
}

// Validate reports whether p names exactly one cell.
func (p Polar) Validate() error {
	switch {
	case p.Ring < 0:
		return fmt.Errorf("%w: ring %d must be >= 0", ErrInvalidCoordinate, p.Ring)
	case p.Ring > MaxRing:
		return fmt.Errorf("%w: ring %d beyond %d", ErrInvalidCoordinate, p.Ring, MaxRing)
	case p.Sector < 0 || p.Sector > 5:
		return fmt.Errorf("%w: sector %d not in 0..5", ErrInvalidCoordinate, p.Sector)
	case p.Ring == 0 && (p.Sector != 0 || p.Number != 0):
		return fmt.Errorf("%w: ring 0 requires sector 0 and number 0, got (%d,%d)", ErrInvalidCoordinate, p.Sector, p.Number)
	case p.Ring > 0 && (p.Number < 0 || p.Number >= p.Ring):
		return fmt.Errorf("%w: number %d not in 0..%d", ErrInvalidCoordinate, p.Number, p.Ring-1)
	}
	return nil
}

func (p Polar) Polar() Polar { return p }

// Spiral returns the spiral index of the cell. It panics if the ring is
// beyond MaxRing.
func (p Polar) Spiral() Spiral {
	if p.Ring == 0 {
		return 0
	}
	r := p.Ring
	if r > MaxRing {
		panic(fmt.Sprintf("hex: ring %d beyond %d", r, MaxRing))
	}
	return Spiral(r*(3*(r-1)+p.Sector) + p.Number + 1)
}

// Skew returns the skew vector of the cell. It panics if the sector is
// outside 0..5.
func (p Polar) Skew() Skew {
	k := forwardTable[p.Sector]
	r, n := p.Ring, p.Number
	return Skew{
		U: k.ur*r + k.un*n,
		V: k.vr*r + k.vn*n,
	}
}

// linear gives U and V as linear functions of ring and number.
type linear struct{ ur, un, vr, vn int }

// inverse gives ring and number as linear functions of U and V.
type inverse struct{ ru, rv, nu, nv int }

// Each sector is the previous one rotated 60° anticlockwise.
var forwardTable = [6]linear{
	{ur: 1, un: -1, vr: 0, vn: 1},  // (R-N, N)
	{ur: 0, un: -1, vr: 1, vn: 0},  // (-N, R)
	{ur: -1, un: 0, vr: 1, vn: -1}, // (-R, R-N)
	{ur: -1, un: 1, vr: 0, vn: -1}, // (N-R, -N)
	{ur: 0, un: 1, vr: -1, vn: 0},  // (N, -R)
	{ur: 1, un: 0, vr: -1, vn: 1},  // (R, N-R)
}

var inverseTable = [6]inverse{
	{ru: 1, rv: 1, nu: 0, nv: 1},
	{ru: 0, rv: 1, nu: -1, nv: 0},
	{ru: -1, rv: 0, nu: -1, nv: -1},
	{ru: -1, rv: -1, nu: 0, nv: -1},
	{ru: 0, rv: -1, nu: 1, nv: 0},
	{ru: 1, rv: 0, nu: 1, nv: 1},
}

// skewSector classifies a non-origin skew vector into the sector that owns it.
// Each sector includes its starting corner and excludes the next one.
func skewSector(u, v int) int {
	w := u + v
	switch {
	case u > 0 && v >= 0:
		return 0
	case u <= 0 && w > 0:
		return 1
	case u < 0 && v > 0:
		return 2
	case u < 0 && v <= 0:
		return 3
	case w < 0:
		return 4
	default:
		return 5
	}
}

// Neighbours returns the six adjacent cells. None of them is checked against
// any grid radius.
//
// For the origin they are ring 1, sectors 0..5. For a corner they are: the
// same corner one ring in, the same corner one ring out, anticlockwise,
// clockwise, anticlockwise and out, clockwise and out. For a side cell they
// are: clockwise, anticlockwise, clockwise and in, one ring in, one ring out,
// anticlockwise and out.
func (p Polar) Neighbours() [6]Polar {
	r, s, n := p.Ring, p.Sector, p.Number
	if r == 0 {
		var out [6]Polar
		for i := range out {
			out[i] = Polar{Ring: 1, Sector: i}
		}
		return out
	}
	prev := (s + 5) % 6
	next := (s + 1) % 6
	if n == 0 {
		// ring 1 corners have no inner sector and no side cells
		in := Polar{Ring: r - 1, Sector: s}
		anti := Polar{Ring: r, Sector: s, Number: 1}
		if r == 1 {
			in = Origin
			anti = Polar{Ring: 1, Sector: next}
		}
		return [6]Polar{
			in,
			{Ring: r + 1, Sector: s},
			anti,
			{Ring: r, Sector: prev, Number: r - 1},
			{Ring: r + 1, Sector: s, Number: 1},
			{Ring: r + 1, Sector: prev, Number: r},
		}
	}
	end := n+1 == r
	splus := s
	inner := Polar{Ring: r - 1, Sector: s, Number: n}
	if end {
		splus = next
		inner = Polar{Ring: r - 1, Sector: next}
	}
	return [6]Polar{
		{Ring: r, Sector: s, Number: n - 1},
		{Ring: r, Sector: splus, Number: (n + 1) % r},
		{Ring: r - 1, Sector: s, Number: n - 1},
		inner,
		{Ring: r + 1, Sector: s, Number: n},
		{Ring: r + 1, Sector: s, Number: n + 1},
	}
}

func (p Polar) String() string {
	return fmt.Sprintf("(%d,%d,%d)", p.Ring, p.Sector, p.Number)
}
