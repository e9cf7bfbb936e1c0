package proto

import (
	"encoding/json"

	"ctchen222/tictactoe-engine/internal/game"
)

// Client message types
const (
	TypeMove     = "move"
	TypeNewRound = "new_round"
)

// Server message types
const (
	TypeState = "state"
	TypeEvent = "event"
	TypeError = "error"
)

// ClientToServerMessage represents a message from the client to the server.
type ClientToServerMessage struct {
	Type     string `json:"type" validate:"required,oneof=move new_round"`
	Position *int   `json:"position,omitempty" validate:"omitempty,min=0,max=8"`
}

// ServerToClientMessage represents a message from the server to the client.
type ServerToClientMessage struct {
	Type    string          `json:"type" validate:"required"`
	Event   string          `json:"event,omitempty"`
	Reason  string          `json:"reason,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
	State   *SessionState   `json:"state,omitempty"`
}

// Scores is the number of rounds won by each mark.
type Scores struct {
	X int `json:"X"`
	O int `json:"O"`
}

// SessionState is everything a presentation layer needs to draw a session.
type SessionState struct {
	ID         string          `json:"id"`
	Mode       string          `json:"mode"`
	Difficulty string          `json:"difficulty"`
	Round      int             `json:"round"`
	Board      game.Board      `json:"board"`
	Next       game.PlayerMark `json:"next"`
	Status     game.Status     `json:"status"`
	Winner     game.PlayerMark `json:"winner,omitempty"`
	Message    string          `json:"message"`
	Scores     Scores          `json:"scores"`
	Thinking   bool            `json:"thinking"`
}
