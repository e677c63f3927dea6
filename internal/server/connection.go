package server

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/gravitas-games/chromio/internal/board"
	"github.com/gravitas-games/chromio/internal/network"
	"github.com/gravitas-games/chromio/pkg/hex"
	"github.com/gravitas-games/chromio/pkg/hexgrid"
	"github.com/gravitas-games/chromio/pkg/models"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192
)

// Connection represents a WebSocket connection to a client
type Connection struct {
	ws     *websocket.Conn
	server *Server
	codec  network.Codec
	player *models.Player

	// Buffered channel for outbound messages
	send chan []byte

	mu     sync.Mutex
	closed bool
}

// NewConnection creates a new connection
func NewConnection(ws *websocket.Conn, server *Server, codec network.Codec, player *models.Player) *Connection {
	return &Connection{
		ws:     ws,
		server: server,
		codec:  codec,
		player: player,
		send:   make(chan []byte, 256),
	}
}

// Handle manages the connection lifecycle
func (c *Connection) Handle() {
	c.ws.SetReadLimit(maxMessageSize)
	c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		c.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	go c.writePump()
	c.readPump() // Blocking
}

// readPump pumps messages from the WebSocket connection to the server
func (c *Connection) readPump() {
	defer c.Close()

	for {
		_, message, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket read error: %v", err)
			}
			break
		}
		c.player.Touch(time.Now())

		env, err := c.codec.Unmarshal(message)
		if err != nil {
			log.Printf("Failed to parse client message: %v", err)
			c.SendError(network.ErrCodeInvalidMessage, "Failed to parse message")
			continue
		}

		c.handleMessage(env)
	}
}

// writePump pumps messages from the send channel to the WebSocket connection
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.ws.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Channel closed
				c.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.ws.WriteMessage(c.codec.FrameType(), message); err != nil {
				log.Printf("WebSocket write error: %v", err)
				return
			}

		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.server.ctx.Done():
			// Server shutting down
			return
		}
	}
}

// handleMessage routes messages to appropriate handlers
func (c *Connection) handleMessage(msg *network.Envelope) {
	switch msg.Type {
	case network.MsgTypeCreateBoard:
		c.handleCreateBoard(msg)
	case network.MsgTypeJoinBoard:
		c.handleJoinBoard(msg)
	case network.MsgTypeLeaveBoard:
		c.handleLeaveBoard(msg)
	case network.MsgTypeGetCell:
		c.handleGetCell(msg)
	case network.MsgTypeSetCell:
		c.handleSetCell(msg)
	case network.MsgTypeFillBoard:
		c.handleFillBoard(msg)
	case network.MsgTypeFlood:
		c.handleFlood(msg)
	case network.MsgTypeSubgrid:
		c.handleSubgrid(msg)
	case network.MsgTypeNeighbours:
		c.handleNeighbours(msg)
	case network.MsgTypeCentre:
		c.handleCentre(msg)
	case network.MsgTypeNearest:
		c.handleNearest(msg)
	case network.MsgTypePing:
		c.handlePing()
	default:
		log.Printf("Unknown message type: %s", msg.Type)
		c.SendError(network.ErrCodeUnknownMessageType, "Unknown message type")
	}
}

// bind decodes a payload, reporting failures to the client
func (c *Connection) bind(msg *network.Envelope, v interface{}) bool {
	if err := msg.Bind(v); err != nil {
		c.SendError(network.ErrCodeInvalidMessage, err.Error())
		return false
	}
	return true
}

func (c *Connection) lookupBoard(id string) (*board.Board, bool) {
	b, err := c.server.session.Boards().Get(id)
	if err != nil {
		c.sendFailure(err)
		return nil, false
	}
	return b, true
}

func (c *Connection) handleCreateBoard(msg *network.Envelope) {
	var req network.CreateBoardPayload
	if !c.bind(msg, &req) {
		return
	}

	settings := c.server.session.Boards().Defaults()
	if req.Radius != 0 {
		settings.Radius = req.Radius
	}
	if req.Colours != 0 {
		settings.Colours = req.Colours
	}
	if req.Seed != 0 {
		settings.Seed = req.Seed
	}
	if req.Generator != "" {
		settings.Generator = req.Generator
	}

	b, err := c.server.session.CreateBoard(settings, c)
	if err != nil {
		c.sendFailure(err)
		return
	}
	log.Printf("Player %s created board %s", c.player.Username, b.ID)
	c.SendMessage(boardStateMessage(b.Snapshot()))
}

func (c *Connection) handleJoinBoard(msg *network.Envelope) {
	var req network.BoardRef
	if !c.bind(msg, &req) {
		return
	}
	b, err := c.server.session.Join(req.BoardID, c)
	if err != nil {
		c.sendFailure(err)
		return
	}
	c.SendMessage(boardStateMessage(b.Snapshot()))
}

func (c *Connection) handleLeaveBoard(msg *network.Envelope) {
	var req network.BoardRef
	if !c.bind(msg, &req) {
		return
	}
	c.server.session.Unsubscribe(req.BoardID, c)
}

func (c *Connection) handleGetCell(msg *network.Envelope) {
	var req network.GetCellPayload
	if !c.bind(msg, &req) {
		return
	}
	at, ok := c.coord(req.Coord)
	if !ok {
		return
	}
	b, ok := c.lookupBoard(req.BoardID)
	if !ok {
		return
	}
	idx, v, err := b.Cell(at)
	if err != nil {
		c.sendFailure(err)
		return
	}
	c.SendMessage(&network.ServerMessage{
		Type:    network.MsgTypeCell,
		Payload: network.CellPayload{BoardID: b.ID, Index: int(idx), Value: v},
	})
}

func (c *Connection) handleSetCell(msg *network.Envelope) {
	var req network.SetCellPayload
	if !c.bind(msg, &req) {
		return
	}
	at, ok := c.coord(req.Coord)
	if !ok {
		return
	}
	b, ok := c.lookupBoard(req.BoardID)
	if !ok {
		return
	}
	snap, err := b.SetCell(at, req.Value)
	if err != nil {
		c.sendFailure(err)
		return
	}
	c.publish(snap)
}

func (c *Connection) handleFillBoard(msg *network.Envelope) {
	var req network.ColourPayload
	if !c.bind(msg, &req) {
		return
	}
	b, ok := c.lookupBoard(req.BoardID)
	if !ok {
		return
	}
	snap, err := b.Fill(req.Value)
	if err != nil {
		c.sendFailure(err)
		return
	}
	c.publish(snap)
}

func (c *Connection) handleFlood(msg *network.Envelope) {
	var req network.ColourPayload
	if !c.bind(msg, &req) {
		return
	}
	b, ok := c.lookupBoard(req.BoardID)
	if !ok {
		return
	}
	res, snap, err := b.Flood(req.Value)
	if err != nil {
		c.sendFailure(err)
		return
	}

	cells := make([]int, len(res.Cells))
	for i, s := range res.Cells {
		cells[i] = int(s)
	}
	c.SendMessage(&network.ServerMessage{
		Type: network.MsgTypeFlooded,
		Payload: network.FloodedPayload{
			BoardID:    b.ID,
			Value:      req.Value,
			Reassigned: res.Reassigned,
			Uniform:    res.Uniform,
			Cells:      cells,
		},
	})
	if res.Reassigned > 0 {
		c.publish(snap)
	}
}

func (c *Connection) handleSubgrid(msg *network.Envelope) {
	var req network.SubgridPayload
	if !c.bind(msg, &req) {
		return
	}
	center, ok := c.coord(req.Center)
	if !ok {
		return
	}
	b, ok := c.lookupBoard(req.BoardID)
	if !ok {
		return
	}
	cells, err := b.Subgrid(center, req.Radius, req.Default)
	if err != nil {
		c.sendFailure(err)
		return
	}
	c.SendMessage(&network.ServerMessage{
		Type: network.MsgTypeSubgridData,
		Payload: network.SubgridDataPayload{
			BoardID: b.ID,
			Center:  req.Center,
			Radius:  req.Radius,
			Cells:   cells,
		},
	})
}

func (c *Connection) handleNeighbours(msg *network.Envelope) {
	var req network.CoordPayload
	if !c.bind(msg, &req) {
		return
	}
	at, ok := c.coord(req.Coord)
	if !ok {
		return
	}
	nbrs := at.Polar().Neighbours()
	out := make([]network.Coord, len(nbrs))
	for i, n := range nbrs {
		out[i] = network.PolarCoord(n)
	}
	c.SendMessage(&network.ServerMessage{
		Type: network.MsgTypeNeighbourList,
		Payload: network.NeighbourListPayload{
			Coord:      network.PolarCoord(at.Polar()),
			Neighbours: out,
		},
	})
}

func (c *Connection) handleCentre(msg *network.Envelope) {
	var req network.CoordPayload
	if !c.bind(msg, &req) {
		return
	}
	at, ok := c.coord(req.Coord)
	if !ok {
		return
	}
	x, y := hex.Centre(at)
	c.SendMessage(&network.ServerMessage{
		Type:    network.MsgTypePoint,
		Payload: network.PointPayload{X: x, Y: y},
	})
}

func (c *Connection) handleNearest(msg *network.Envelope) {
	var req network.PointPayload
	if !c.bind(msg, &req) {
		return
	}
	at := hex.Nearest(req.X, req.Y)
	if err := at.Validate(); err != nil {
		c.sendFailure(err)
		return
	}
	c.SendMessage(&network.ServerMessage{
		Type:    network.MsgTypeCoord,
		Payload: network.AllCoords(at),
	})
}

// handlePing handles ping requests
func (c *Connection) handlePing() {
	c.SendMessage(&network.ServerMessage{
		Type:    network.MsgTypePong,
		Payload: map[string]interface{}{"timestamp": time.Now().Unix()},
	})
}

func (c *Connection) coord(wire network.Coord) (hex.Coord, bool) {
	at, err := wire.Hex()
	if err != nil {
		c.sendFailure(err)
		return nil, false
	}
	return at, true
}

// publish follows the board and pushes its new state to every follower
func (c *Connection) publish(snap board.Snapshot) {
	c.server.session.Subscribe(snap.ID, c)
	c.server.session.BroadcastBoard(snap.ID, boardStateMessage(snap))
}

func boardStateMessage(snap board.Snapshot) *network.ServerMessage {
	return &network.ServerMessage{
		Type: network.MsgTypeBoardState,
		Payload: network.BoardStatePayload{
			BoardID: snap.ID,
			Radius:  snap.Radius,
			Colours: snap.Colours,
			Cells:   snap.Cells,
			Uniform: snap.Uniform,
		},
	}
}

// errorCode maps domain errors onto wire error codes
func errorCode(err error) string {
	switch {
	case errors.Is(err, hex.ErrInvalidCoordinate):
		return network.ErrCodeInvalidCoordinate
	case errors.Is(err, hexgrid.ErrOutOfRange):
		return network.ErrCodeOutOfRange
	case errors.Is(err, board.ErrInvalidColour):
		return network.ErrCodeInvalidColour
	case errors.Is(err, board.ErrUnknownBoard):
		return network.ErrCodeUnknownBoard
	case errors.Is(err, board.ErrTooManyBoards):
		return network.ErrCodeBoardLimit
	default:
		return network.ErrCodeInvalidSettings
	}
}

func (c *Connection) sendFailure(err error) {
	c.SendError(errorCode(err), err.Error())
}

// SendMessage queues a message for the client. Messages to a closed or
// saturated connection are dropped.
func (c *Connection) SendMessage(msg *network.ServerMessage) {
	data, err := c.codec.Marshal(msg.Type, msg.Payload)
	if err != nil {
		log.Printf("Failed to marshal message: %v", err)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- data:
	default:
		log.Printf("Send buffer full, dropping message")
	}
}

// SendError sends an error message to the client
func (c *Connection) SendError(code, message string) {
	c.SendMessage(&network.ServerMessage{
		Type: network.MsgTypeError,
		Payload: network.ErrorPayload{
			Code:    code,
			Message: message,
		},
	})
}

// Close leaves the session and closes the connection. It is safe to call
// more than once.
func (c *Connection) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	c.mu.Unlock()

	c.server.session.RemovePlayer(c)
	c.ws.Close()
}
