package models

import "time"

// Player represents a connected client
type Player struct {
	// From JWT claims
	ID          string `json:"id"`          // Converted from int64 user_id
	Username    string `json:"username"`    // JWT claim
	Email       string `json:"email"`       // JWT claim
	Permissions int64  `json:"permissions"` // JWT claim: bitwise permission flags
	Activated   int64  `json:"activated"`   // JWT claim: activation timestamp or ban status
	AuthMethod  string `json:"auth_method"` // JWT claim: "password", "oauth" or "guest"

	// Connection state
	Connected   bool      `json:"connected"`
	ConnectedAt time.Time `json:"connected_at"`
	LastSeen    time.Time `json:"last_seen"`

	// Session state
	SessionID string `json:"session_id"`
}

// Guest returns an activated player for servers running without
// authentication.
func Guest(id string) *Player {
	return &Player{
		ID:         id,
		Username:   "guest-" + shortID(id),
		Activated:  1,
		AuthMethod: "guest",
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// IsActive checks if the player account is activated and not banned
func (p *Player) IsActive() bool {
	// activated > 0 means activated
	// activated == 0 means not activated
	// activated == -1 means banned
	return p.Activated > 0
}

// IsBanned checks if the player is banned
func (p *Player) IsBanned() bool {
	return p.Activated == -1
}

// IsGuest reports whether the player did not authenticate
func (p *Player) IsGuest() bool {
	return p.AuthMethod == "guest"
}

// Touch records activity from the player
func (p *Player) Touch(now time.Time) {
	p.LastSeen = now
}
