package network

// Message types - Client → Server
const (
	MsgTypeCreateBoard = "create_board"
	MsgTypeJoinBoard   = "join_board"
	MsgTypeLeaveBoard  = "leave_board"
	MsgTypeGetCell     = "get_cell"
	MsgTypeSetCell     = "set_cell"
	MsgTypeFillBoard   = "fill_board"
	MsgTypeFlood       = "flood"
	MsgTypeSubgrid     = "subgrid"
	MsgTypeNeighbours  = "neighbours"
	MsgTypeCentre      = "centre"
	MsgTypeNearest     = "nearest"
	MsgTypePing        = "ping"
)

// Message types - Server → Client
const (
	MsgTypeWelcome       = "welcome"
	MsgTypeBoardState    = "board_state"
	MsgTypeCell          = "cell"
	MsgTypeFlooded       = "flooded"
	MsgTypeSubgridData   = "subgrid"
	MsgTypeNeighbourList = "neighbours"
	MsgTypePoint         = "point"
	MsgTypeCoord         = "coord"
	MsgTypeError         = "error"
	MsgTypePong          = "pong"
)

// Error codes carried by ErrorPayload
const (
	ErrCodeInvalidMessage     = "invalid_message"
	ErrCodeUnknownMessageType = "unknown_message_type"
	ErrCodeInvalidCoordinate  = "invalid_coordinate"
	ErrCodeOutOfRange         = "out_of_range"
	ErrCodeInvalidColour      = "invalid_colour"
	ErrCodeUnknownBoard       = "unknown_board"
	ErrCodeBoardLimit         = "board_limit"
	ErrCodeInvalidSettings    = "invalid_settings"
	ErrCodeNotAuthenticated   = "not_authenticated"
)

// ServerMessage represents any message from server to client
type ServerMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// --- Client Message Payloads ---

// CreateBoardPayload asks for a new board. Zero fields take the server
// defaults.
type CreateBoardPayload struct {
	Radius    int    `json:"radius,omitempty"`
	Colours   int    `json:"colours,omitempty"`
	Seed      int64  `json:"seed,omitempty"`
	Generator string `json:"generator,omitempty"`
}

// BoardRef names a board
type BoardRef struct {
	BoardID string `json:"board_id"`
}

// GetCellPayload reads one cell
type GetCellPayload struct {
	BoardID string `json:"board_id"`
	Coord   Coord  `json:"coord"`
}

// SetCellPayload paints one cell
type SetCellPayload struct {
	BoardID string `json:"board_id"`
	Coord   Coord  `json:"coord"`
	Value   int    `json:"value"`
}

// ColourPayload carries a colour for fill_board and flood
type ColourPayload struct {
	BoardID string `json:"board_id"`
	Value   int    `json:"value"`
}

// SubgridPayload requests a window of cells around Center
type SubgridPayload struct {
	BoardID string `json:"board_id"`
	Center  Coord  `json:"center"`
	Radius  int    `json:"radius"`
	Default int    `json:"default"`
}

// CoordPayload carries a single coordinate
type CoordPayload struct {
	Coord Coord `json:"coord"`
}

// PointPayload is a planar position
type PointPayload struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// --- Server Message Payloads ---

// WelcomePayload is sent to client after successful connection
type WelcomePayload struct {
	PlayerID  string `json:"player_id"`
	Username  string `json:"username"`
	SessionID string `json:"session_id"`
	Codec     string `json:"codec"`
}

// BoardStatePayload is a full copy of a board
type BoardStatePayload struct {
	BoardID string `json:"board_id"`
	Radius  int    `json:"radius"`
	Colours int    `json:"colours"`
	Cells   []int  `json:"cells"`
	Uniform bool   `json:"uniform"`
}

// CellPayload reports one cell
type CellPayload struct {
	BoardID string `json:"board_id"`
	Index   int    `json:"index"`
	Value   int    `json:"value"`
}

// FloodedPayload reports a flood result
type FloodedPayload struct {
	BoardID    string `json:"board_id"`
	Value      int    `json:"value"`
	Reassigned int    `json:"reassigned"`
	Uniform    bool   `json:"uniform"`
	Cells      []int  `json:"cells"`
}

// SubgridDataPayload holds a window in relative spiral order
type SubgridDataPayload struct {
	BoardID string `json:"board_id"`
	Center  Coord  `json:"center"`
	Radius  int    `json:"radius"`
	Cells   []int  `json:"cells"`
}

// NeighbourListPayload lists the six neighbours of a cell
type NeighbourListPayload struct {
	Coord      Coord   `json:"coord"`
	Neighbours []Coord `json:"neighbours"`
}

// CoordAllPayload gives a cell in every representation
type CoordAllPayload struct {
	Spiral Coord `json:"spiral"`
	Polar  Coord `json:"polar"`
	Skew   Coord `json:"skew"`
}

// ErrorPayload contains error information
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
