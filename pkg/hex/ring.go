package hex

// Ring returns the cells of ring r in spiral order, anticlockwise from (r,0,0).
// If r==0, returns [Origin].
func Ring(r int) []Polar {
	if r == 0 {
		return []Polar{Origin}
	}
	res := make([]Polar, 0, 6*r)
	for s := 0; s < 6; s++ {
		res = append(res, Side(r, s)...)
	}
	return res
}

// Side returns the r cells of ring r belonging to sector s, starting at the
// sector's corner.
func Side(r, s int) []Polar {
	if r <= 0 {
		return []Polar{Origin}
	}
	res := make([]Polar, r)
	for n := range res {
		res[n] = Polar{Ring: r, Sector: s, Number: n}
	}
	return res
}

// Disk returns all cells at distance <= radius from center, ordered by the
// spiral index of their offset from center.
func Disk(center Skew, radius int) []Skew {
	res := make([]Skew, Capacity(radius))
	for i := range res {
		res[i] = center.Add(Spiral(i).Skew())
	}
	return res
}
