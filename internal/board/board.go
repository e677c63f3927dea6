package board

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gravitas-games/chromio/internal/config"
	"github.com/gravitas-games/chromio/pkg/hex"
	"github.com/gravitas-games/chromio/pkg/hexgrid"
	"github.com/gravitas-games/chromio/pkg/region"
)

// ErrInvalidColour is returned for a colour outside the board's palette.
var ErrInvalidColour = errors.New("board: invalid colour")

// Board is a colour grid with a fixed palette size. All methods are safe for
// concurrent use; each call holds the board lock for its whole duration.
type Board struct {
	ID        string
	CreatedAt time.Time

	colours int
	grid    *hexgrid.Grid[int]
	mu      sync.Mutex
}

// Snapshot is a copy of a board's cells.
type Snapshot struct {
	ID      string
	Radius  int
	Colours int
	Cells   []int
	Uniform bool
}

// New creates a board and seeds every cell from settings.
func New(settings config.BoardConfig) (*Board, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	seeder, err := NewSeeder(settings.Generator, settings.Seed, settings.NoiseScale)
	if err != nil {
		return nil, err
	}

	b := &Board{
		ID:        uuid.New().String(),
		CreatedAt: time.Now(),
		colours:   settings.Colours,
		grid:      hexgrid.New[int](settings.Radius),
	}
	seeder.Seed(b.grid, b.colours)

	log.Printf("Board %s created with radius %d, %d colours (%s)", b.ID, settings.Radius, settings.Colours, settings.Generator)
	return b, nil
}

// Radius returns the board's grid radius.
func (b *Board) Radius() int { return b.grid.MaxRadius() }

// Colours returns the palette size.
func (b *Board) Colours() int { return b.colours }

func (b *Board) checkColour(c int) error {
	if c < 0 || c >= b.colours {
		return fmt.Errorf("%w: %d not in 0..%d", ErrInvalidColour, c, b.colours-1)
	}
	return nil
}

// Snapshot copies the board state.
func (b *Board) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.snapshot()
}

func (b *Board) snapshot() Snapshot {
	return Snapshot{
		ID:      b.ID,
		Radius:  b.grid.MaxRadius(),
		Colours: b.colours,
		Cells:   b.grid.Values(),
		Uniform: region.Uniform(b.grid),
	}
}

// Cell returns the colour at c and its spiral index.
func (b *Board) Cell(c hex.Coord) (hex.Spiral, int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	v, err := b.grid.Get(c)
	if err != nil {
		return 0, 0, err
	}
	return c.Spiral(), v, nil
}

// SetCell paints a single cell.
func (b *Board) SetCell(c hex.Coord, colour int) (Snapshot, error) {
	if err := b.checkColour(colour); err != nil {
		return Snapshot{}, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.grid.Set(c, colour); err != nil {
		return Snapshot{}, err
	}
	return b.snapshot(), nil
}

// Fill paints every cell.
func (b *Board) Fill(colour int) (Snapshot, error) {
	if err := b.checkColour(colour); err != nil {
		return Snapshot{}, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.grid.Fill(colour)
	return b.snapshot(), nil
}

// Flood recolours the region connected to the centre cell.
func (b *Board) Flood(colour int) (region.Result, Snapshot, error) {
	if err := b.checkColour(colour); err != nil {
		return region.Result{}, Snapshot{}, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	res, err := region.FillOrigin(b.grid, colour)
	if err != nil {
		return region.Result{}, Snapshot{}, err
	}
	return res, b.snapshot(), nil
}

// Subgrid returns the cells of a window of the given radius around center.
// Cells off the board are reported as def. center need not lie on the board.
func (b *Board) Subgrid(center hex.Coord, radius, def int) ([]int, error) {
	if radius < 0 || radius > config.MaxBoardRadius {
		return nil, fmt.Errorf("subgrid radius %d not in 0..%d", radius, config.MaxBoardRadius)
	}
	switch c := center.(type) {
	case hex.Spiral:
		if !c.Valid() {
			return nil, fmt.Errorf("%w: spiral %d", hexgrid.ErrOutOfRange, int(c))
		}
	case interface{ Validate() error }:
		if err := c.Validate(); err != nil {
			return nil, err
		}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.grid.Subgrid(center, radius, def).Values(), nil
}
