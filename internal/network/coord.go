package network

import (
	"fmt"

	"github.com/gravitas-games/chromio/pkg/hex"
)

// Coordinate systems accepted on the wire
const (
	SystemSpiral = "spiral"
	SystemPolar  = "polar"
	SystemSkew   = "skew"
)

// Coord is the wire form of a cell position. System selects which of the
// remaining fields are meaningful.
type Coord struct {
	System string `json:"system"`
	Index  int    `json:"index,omitempty"`
	Ring   int    `json:"ring,omitempty"`
	Sector int    `json:"sector,omitempty"`
	Number int    `json:"number,omitempty"`
	U      int    `json:"u,omitempty"`
	V      int    `json:"v,omitempty"`
}

// Hex converts the wire form into a validated coordinate.
func (c Coord) Hex() (hex.Coord, error) {
	switch c.System {
	case SystemSpiral:
		if c.Index < 0 {
			return nil, fmt.Errorf("%w: negative spiral index %d", hex.ErrInvalidCoordinate, c.Index)
		}
		if s := hex.Spiral(c.Index); !s.Valid() {
			return nil, fmt.Errorf("%w: spiral index %d beyond %d", hex.ErrInvalidCoordinate, c.Index, int(hex.MaxSpiral))
		}
		return hex.Spiral(c.Index), nil
	case SystemPolar:
		return hex.NewPolar(c.Ring, c.Sector, c.Number)
	case SystemSkew:
		s := hex.Skew{U: c.U, V: c.V}
		if err := s.Validate(); err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("%w: unknown coordinate system %q", hex.ErrInvalidCoordinate, c.System)
	}
}

// SpiralCoord encodes a spiral index.
func SpiralCoord(s hex.Spiral) Coord {
	return Coord{System: SystemSpiral, Index: int(s)}
}

// PolarCoord encodes a polar coordinate.
func PolarCoord(p hex.Polar) Coord {
	return Coord{System: SystemPolar, Ring: p.Ring, Sector: p.Sector, Number: p.Number}
}

// SkewCoord encodes a skew vector.
func SkewCoord(s hex.Skew) Coord {
	return Coord{System: SystemSkew, U: s.U, V: s.V}
}

// AllCoords gives c in every representation.
func AllCoords(c hex.Coord) CoordAllPayload {
	return CoordAllPayload{
		Spiral: SpiralCoord(c.Spiral()),
		Polar:  PolarCoord(c.Polar()),
		Skew:   SkewCoord(c.Skew()),
	}
}
