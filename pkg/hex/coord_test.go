package hex

import (
	"errors"
	"math"
	"testing"
)

func TestSkewRoundTrip(t *testing.T) {
	for u := -20; u <= 20; u++ {
		for v := -20; v <= 20; v++ {
			s := Skew{U: u, V: v}
			p := s.Polar()
			if err := p.Validate(); err != nil {
				t.Fatalf("skew %v gave invalid polar %v: %v", s, p, err)
			}
			if p.Skew() != s {
				t.Fatalf("skew %v -> %v -> %v", s, p, p.Skew())
			}
			if p.Ring != Distance(s, Skew{}) {
				t.Fatalf("ring of %v is %d, distance from origin is %d", s, p.Ring, Distance(s, Skew{}))
			}
			if s.Spiral().Skew() != s {
				t.Fatalf("skew %v does not survive spiral round trip", s)
			}
		}
	}
}

func TestSkewValidate(t *testing.T) {
	ok := []Skew{{}, {U: MaxRing}, {U: -MaxRing, V: MaxRing}, {V: -MaxRing}}
	for _, s := range ok {
		if err := s.Validate(); err != nil {
			t.Fatalf("unexpected error for %v: %v", s, err)
		}
		if got := s.Polar().Ring; got != MaxRing && s != (Skew{}) {
			t.Fatalf("expected %v on ring %d, got %d", s, MaxRing, got)
		}
	}
	bad := []Skew{
		{U: MaxRing + 1},
		{U: MaxRing, V: 1},
		{U: -MaxRing, V: -1},
		{U: math.MinInt},
		{U: math.MaxInt, V: math.MaxInt},
	}
	for _, s := range bad {
		if err := s.Validate(); !errors.Is(err, ErrInvalidCoordinate) {
			t.Fatalf("expected ErrInvalidCoordinate for %v, got %v", s, err)
		}
	}
}

func TestSkewSectorCorners(t *testing.T) {
	cases := []struct {
		skew Skew
		want Polar
	}{
		{Skew{0, 0}, Origin},
		{Skew{3, 0}, Polar{3, 0, 0}},
		{Skew{0, 3}, Polar{3, 1, 0}},
		{Skew{-3, 3}, Polar{3, 2, 0}},
		{Skew{-3, 0}, Polar{3, 3, 0}},
		{Skew{0, -3}, Polar{3, 4, 0}},
		{Skew{3, -3}, Polar{3, 5, 0}},
		{Skew{2, 1}, Polar{3, 0, 1}},
		{Skew{3, -1}, Polar{3, 5, 2}},
	}
	for _, tc := range cases {
		if got := tc.skew.Polar(); got != tc.want {
			t.Fatalf("expected %v for skew %v, got %v", tc.want, tc.skew, got)
		}
	}
}

func TestDistanceIsSymmetric(t *testing.T) {
	a := Skew{U: 4, V: -7}
	for u := -6; u <= 6; u++ {
		for v := -6; v <= 6; v++ {
			b := Skew{U: u, V: v}
			if Distance(a, b) != Distance(b, a) {
				t.Fatalf("distance between %v and %v is not symmetric", a, b)
			}
			if Distance(a, b) != b.Sub(a).Polar().Ring {
				t.Fatalf("distance %v-%v disagrees with ring of offset", a, b)
			}
		}
	}
}

func TestSkewNeighbours(t *testing.T) {
	at := Skew{U: 2, V: -1}
	for i, n := range at.Neighbours() {
		if Distance(at, n) != 1 {
			t.Fatalf("neighbour %d of %v at distance %d", i, at, Distance(at, n))
		}
		if n.Sub(at) != Directions[i] {
			t.Fatalf("neighbour %d of %v expected offset %v, got %v", i, at, Directions[i], n.Sub(at))
		}
	}
}

func TestCentre(t *testing.T) {
	x, y := Centre(Polar{Ring: 1, Sector: 0})
	if x != 1 || y != 0 {
		t.Fatalf("expected (1,0), got (%v,%v)", x, y)
	}
	x, y = Centre(Polar{Ring: 1, Sector: 1})
	if x != 0.5 || math.Abs(y-math.Sqrt(3)/2) > 1e-12 {
		t.Fatalf("expected (0.5,%v), got (%v,%v)", math.Sqrt(3)/2, x, y)
	}
	// every neighbour centre is one unit away
	for _, n := range Spiral(12).Polar().Neighbours() {
		cx, cy := Centre(Spiral(12))
		nx, ny := Centre(n)
		if d := math.Hypot(nx-cx, ny-cy); math.Abs(d-1) > 1e-9 {
			t.Fatalf("neighbour %v centre is %v away", n, d)
		}
	}
}

func TestNearestInvertsCentre(t *testing.T) {
	for i := 0; i < Capacity(10); i++ {
		want := Spiral(i).Skew()
		x, y := Centre(Spiral(i))
		if got := Nearest(x, y); got != want {
			t.Fatalf("nearest to centre of %v is %v", want, got)
		}
		if got := Nearest(x+0.2, y-0.1); got != want {
			t.Fatalf("nearest to offset centre of %v is %v", want, got)
		}
	}
}

func TestNearestRoundsHalvesAwayFromZero(t *testing.T) {
	if got := Nearest(0.5, 0); got != (Skew{U: 1, V: 0}) {
		t.Fatalf("expected (1,0), got %v", got)
	}
	if got := Nearest(-0.5, 0); got != (Skew{U: -1, V: 0}) {
		t.Fatalf("expected (-1,0), got %v", got)
	}
}

func TestDisk(t *testing.T) {
	center := Skew{U: -2, V: 5}
	cells := Disk(center, 3)
	if len(cells) != Capacity(3) {
		t.Fatalf("expected %d cells, got %d", Capacity(3), len(cells))
	}
	if cells[0] != center {
		t.Fatalf("expected disk to start at center, got %v", cells[0])
	}
	seen := make(map[Skew]bool)
	for _, c := range cells {
		if Distance(center, c) > 3 {
			t.Fatalf("cell %v outside radius", c)
		}
		if seen[c] {
			t.Fatalf("duplicate cell %v", c)
		}
		seen[c] = true
	}
}

func TestSideCells(t *testing.T) {
	side := Side(4, 2)
	if len(side) != 4 {
		t.Fatalf("expected 4 cells, got %d", len(side))
	}
	for n, p := range side {
		if p != (Polar{Ring: 4, Sector: 2, Number: n}) {
			t.Fatalf("unexpected cell %v at position %d", p, n)
		}
	}
}
