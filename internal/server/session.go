package server

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gravitas-games/chromio/internal/board"
	"github.com/gravitas-games/chromio/internal/config"
	"github.com/gravitas-games/chromio/internal/network"
	"github.com/gravitas-games/chromio/pkg/models"
)

// Session groups the connected players and the boards they share
type Session struct {
	ID        string
	CreatedAt time.Time

	boards     *board.Registry
	maxPlayers int

	// Player management
	connections map[*Connection]*models.Player
	subscribers map[string]map[*Connection]bool // boardID -> connections
	mu          sync.RWMutex
}

// SessionStatus represents the current state of the session
type SessionStatus struct {
	PlayerCount int   `json:"player_count"`
	MaxPlayers  int   `json:"max_players"`
	BoardCount  int   `json:"board_count"`
	Uptime      int64 `json:"uptime"` // seconds
}

// NewSession creates a new session
func NewSession(id string, cfg *config.Config) *Session {
	log.Printf("Creating session: %s", id)

	session := &Session{
		ID:          id,
		CreatedAt:   time.Now(),
		boards:      board.NewRegistry(cfg.Board),
		maxPlayers:  cfg.Session.MaxPlayers,
		connections: make(map[*Connection]*models.Player),
		subscribers: make(map[string]map[*Connection]bool),
	}

	log.Printf("Session %s created, board radius %d, %d colours", id, cfg.Board.Radius, cfg.Board.Colours)
	return session
}

// Boards returns the session's board registry
func (s *Session) Boards() *board.Registry { return s.boards }

// AddPlayer registers a connection and its player
func (s *Session) AddPlayer(player *models.Player, conn *Connection) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.maxPlayers > 0 && len(s.connections) >= s.maxPlayers {
		return fmt.Errorf("session %s is full (%d players)", s.ID, s.maxPlayers)
	}
	player.Connected = true
	player.ConnectedAt = time.Now()
	player.SessionID = s.ID
	s.connections[conn] = player

	log.Printf("Player %s (%s) joined session %s", player.Username, player.ID, s.ID)
	return nil
}

// RemovePlayer drops a connection and all of its board subscriptions
func (s *Session) RemovePlayer(conn *Connection) {
	s.mu.Lock()
	defer s.mu.Unlock()

	player, exists := s.connections[conn]
	if !exists {
		return
	}
	player.Connected = false
	delete(s.connections, conn)
	for id := range s.subscribers {
		s.unsubscribe(id, conn)
	}
	log.Printf("Player %s (%s) left session %s", player.Username, player.ID, s.ID)
}

// Subscribe makes conn receive state updates for a board
func (s *Session) Subscribe(boardID string, conn *Connection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribe(boardID, conn)
}

func (s *Session) subscribe(boardID string, conn *Connection) {
	subs, ok := s.subscribers[boardID]
	if !ok {
		subs = make(map[*Connection]bool)
		s.subscribers[boardID] = subs
	}
	subs[conn] = true
}

// CreateBoard registers a new board followed by conn
func (s *Session) CreateBoard(settings config.BoardConfig, conn *Connection) (*board.Board, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := s.boards.Create(settings)
	if err != nil {
		return nil, err
	}
	s.subscribe(b.ID, conn)
	return b, nil
}

// Join subscribes conn to an existing board and returns it
func (s *Session) Join(boardID string, conn *Connection) (*board.Board, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := s.boards.Get(boardID)
	if err != nil {
		return nil, err
	}
	s.subscribe(boardID, conn)
	return b, nil
}

// Unsubscribe stops updates for a board. A board nobody follows any more is
// removed from the registry.
func (s *Session) Unsubscribe(boardID string, conn *Connection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unsubscribe(boardID, conn)
}

func (s *Session) unsubscribe(boardID string, conn *Connection) {
	subs, ok := s.subscribers[boardID]
	if !ok || !subs[conn] {
		return
	}
	delete(subs, conn)
	if len(subs) == 0 {
		delete(s.subscribers, boardID)
		s.boards.Remove(boardID)
	}
}

// Subscribers returns how many connections follow a board
func (s *Session) Subscribers(boardID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subscribers[boardID])
}

// BroadcastBoard sends a message to every connection following a board
func (s *Session) BroadcastBoard(boardID string, msg *network.ServerMessage) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for conn := range s.subscribers[boardID] {
		conn.SendMessage(msg)
	}
}

// GetStatus returns the current session status
func (s *Session) GetStatus() SessionStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return SessionStatus{
		PlayerCount: len(s.connections),
		MaxPlayers:  s.maxPlayers,
		BoardCount:  s.boards.Len(),
		Uptime:      int64(time.Since(s.CreatedAt).Seconds()),
	}
}
