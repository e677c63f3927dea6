package board

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/gravitas-games/chromio/internal/config"
)

var (
	// ErrUnknownBoard is returned when no board has the requested id.
	ErrUnknownBoard = errors.New("board: unknown board")
	// ErrTooManyBoards is returned when the registry is full.
	ErrTooManyBoards = errors.New("board: too many boards")
)

// Registry tracks live boards by id.
type Registry struct {
	defaults config.BoardConfig
	boards   map[string]*Board
	mu       sync.RWMutex
}

// NewRegistry creates an empty registry. Boards created through it start
// from defaults.
func NewRegistry(defaults config.BoardConfig) *Registry {
	return &Registry{
		defaults: defaults,
		boards:   make(map[string]*Board),
	}
}

// Defaults returns the settings used for new boards.
func (r *Registry) Defaults() config.BoardConfig { return r.defaults }

// Create builds a board from settings and registers it.
func (r *Registry) Create(settings config.BoardConfig) (*Board, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.defaults.MaxBoards > 0 && len(r.boards) >= r.defaults.MaxBoards {
		return nil, fmt.Errorf("%w: limit %d", ErrTooManyBoards, r.defaults.MaxBoards)
	}
	b, err := New(settings)
	if err != nil {
		return nil, err
	}
	r.boards[b.ID] = b
	return b, nil
}

// Get retrieves a board by id.
func (r *Registry) Get(id string) (*Board, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.boards[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownBoard, id)
	}
	return b, nil
}

// Remove drops a board.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.boards[id]; ok {
		delete(r.boards, id)
		log.Printf("Board %s removed", id)
	}
}

// Len returns the number of live boards.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.boards)
}
