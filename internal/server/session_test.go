package server

import (
	"errors"
	"testing"

	"github.com/gravitas-games/chromio/internal/board"
	"github.com/gravitas-games/chromio/internal/config"
	"github.com/gravitas-games/chromio/internal/network"
	"github.com/gravitas-games/chromio/pkg/models"
)

func newTestConnection(t *testing.T, player *models.Player) *Connection {
	t.Helper()
	codec, err := network.CodecByName(network.CodecJSON)
	if err != nil {
		t.Fatalf("codec: %v", err)
	}
	return NewConnection(nil, nil, codec, player)
}

func TestSessionPlayerLimit(t *testing.T) {
	cfg := config.Default()
	cfg.Session.MaxPlayers = 2
	s := NewSession("test", cfg)

	for i, id := range []string{"a", "b"} {
		p := models.Guest(id)
		if err := s.AddPlayer(p, newTestConnection(t, p)); err != nil {
			t.Fatalf("player %d: unexpected error: %v", i, err)
		}
		if !p.Connected || p.SessionID != "test" {
			t.Fatalf("expected player marked connected, got %+v", p)
		}
	}
	p := models.Guest("c")
	if err := s.AddPlayer(p, newTestConnection(t, p)); err == nil {
		t.Fatalf("expected full session error")
	}
	if n := s.GetStatus().PlayerCount; n != 2 {
		t.Fatalf("expected 2 players, got %d", n)
	}
}

func TestSessionBroadcastReachesSubscribers(t *testing.T) {
	s := NewSession("test", config.Default())
	pa, pb := models.Guest("a"), models.Guest("b")
	a, b := newTestConnection(t, pa), newTestConnection(t, pb)
	s.AddPlayer(pa, a)
	s.AddPlayer(pb, b)

	s.Subscribe("board-1", a)
	s.Subscribe("board-1", a)
	s.Subscribe("board-2", b)
	if n := s.Subscribers("board-1"); n != 1 {
		t.Fatalf("expected 1 subscriber, got %d", n)
	}

	s.BroadcastBoard("board-1", &network.ServerMessage{Type: network.MsgTypePong})
	if len(a.send) != 1 || len(b.send) != 0 {
		t.Fatalf("expected only a to receive, got a=%d b=%d", len(a.send), len(b.send))
	}

	s.Unsubscribe("board-1", a)
	s.BroadcastBoard("board-1", &network.ServerMessage{Type: network.MsgTypePong})
	if len(a.send) != 1 {
		t.Fatalf("expected no delivery after unsubscribe, got %d", len(a.send))
	}
}

func TestSessionRemovePlayerDropsSubscriptions(t *testing.T) {
	s := NewSession("test", config.Default())
	p := models.Guest("a")
	conn := newTestConnection(t, p)
	s.AddPlayer(p, conn)
	s.Subscribe("board-1", conn)
	s.Subscribe("board-2", conn)

	s.RemovePlayer(conn)
	if p.Connected {
		t.Fatalf("expected player marked disconnected")
	}
	if s.Subscribers("board-1") != 0 || s.Subscribers("board-2") != 0 {
		t.Fatalf("expected subscriptions cleared")
	}
	if n := s.GetStatus().PlayerCount; n != 0 {
		t.Fatalf("expected empty session, got %d", n)
	}

	// Removing twice is harmless.
	s.RemovePlayer(conn)
}

func TestSessionDropsUnfollowedBoards(t *testing.T) {
	cfg := config.Default()
	cfg.Board.Radius = 1
	s := NewSession("test", cfg)
	pa, pb := models.Guest("a"), models.Guest("b")
	a, b := newTestConnection(t, pa), newTestConnection(t, pb)
	s.AddPlayer(pa, a)
	s.AddPlayer(pb, b)

	created, err := s.CreateBoard(s.Boards().Defaults(), a)
	if err != nil {
		t.Fatalf("unexpected create error: %v", err)
	}
	if _, err := s.Join(created.ID, b); err != nil {
		t.Fatalf("unexpected join error: %v", err)
	}

	s.Unsubscribe(created.ID, a)
	s.Unsubscribe(created.ID, a)
	if n := s.Boards().Len(); n != 1 {
		t.Fatalf("expected board kept while b follows it, got %d boards", n)
	}

	s.RemovePlayer(b)
	if n := s.Boards().Len(); n != 0 {
		t.Fatalf("expected board dropped with its last follower, got %d boards", n)
	}
	if _, err := s.Join(created.ID, a); !errors.Is(err, board.ErrUnknownBoard) {
		t.Fatalf("expected ErrUnknownBoard, got %v", err)
	}
	if s.Subscribers(created.ID) != 0 {
		t.Fatalf("expected failed join to leave no subscription")
	}
}

func TestSendAfterCloseIsDropped(t *testing.T) {
	s := &Server{session: NewSession("test", config.Default())}
	p := models.Guest("a")
	codec, _ := network.CodecByName(network.CodecJSON)
	conn := &Connection{server: s, codec: codec, player: p, send: make(chan []byte, 1)}

	conn.mu.Lock()
	conn.closed = true
	close(conn.send)
	conn.mu.Unlock()

	conn.SendMessage(&network.ServerMessage{Type: network.MsgTypePong})
}
