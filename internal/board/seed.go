package board

import (
	"fmt"
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/gravitas-games/chromio/internal/config"
	"github.com/gravitas-games/chromio/pkg/hex"
	"github.com/gravitas-games/chromio/pkg/hexgrid"
)

// Seeder assigns a starting colour to every cell of a grid.
type Seeder interface {
	Seed(g *hexgrid.Grid[int], colours int)
}

// NewSeeder returns the seeder named by generator. A zero seed picks a random
// one.
func NewSeeder(generator string, seed int64, scale float64) (Seeder, error) {
	if seed == 0 {
		seed = rand.Int63()
	}
	switch generator {
	case config.GeneratorUniform:
		return &uniformSeeder{rng: rand.New(rand.NewSource(seed))}, nil
	case config.GeneratorNoise:
		return &noiseSeeder{noise: opensimplex.NewNormalized(seed), scale: scale}, nil
	default:
		return nil, fmt.Errorf("unknown generator %q", generator)
	}
}

// uniformSeeder picks every colour with equal probability.
type uniformSeeder struct {
	rng *rand.Rand
}

func (s *uniformSeeder) Seed(g *hexgrid.Grid[int], colours int) {
	for i := 0; i < g.Len(); i++ {
		g.Set(hex.Spiral(i), s.rng.Intn(colours))
	}
}

// noiseSeeder bands layered simplex noise sampled at each cell centre, which
// gives neighbouring cells correlated colours.
type noiseSeeder struct {
	noise opensimplex.Noise
	scale float64
}

func (s *noiseSeeder) Seed(g *hexgrid.Grid[int], colours int) {
	for i := 0; i < g.Len(); i++ {
		x, y := hex.Centre(hex.Spiral(i))
		n := octaveNoise(s.noise, x, y, 3, s.scale, 0.5)
		c := int(n * float64(colours))
		if c >= colours {
			c = colours - 1
		}
		if c < 0 {
			c = 0
		}
		g.Set(hex.Spiral(i), c)
	}
}

func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}
