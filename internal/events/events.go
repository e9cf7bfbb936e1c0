package events

import (
	"encoding/json"
	"fmt"

	"ctchen222/tictactoe-engine/internal/game"
)

// Event types
const (
	TypeMovePlayed   = "move_played"
	TypeRoundStarted = "round_started"
	TypeRoundOver    = "round_over"
	TypeModeChanged  = "mode_changed"
)

// Event is published by a session to its subscribers whenever its state changes.
type Event struct {
	Type      string          `json:"event"`
	SessionID string          `json:"session_id"`
	Payload   json.RawMessage `json:"payload"`
}

// New marshals payload into an Event of the given type.
func New(eventType, sessionID string, payload any) (Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
	}
	return Event{Type: eventType, SessionID: sessionID, Payload: data}, nil
}

// MovePlayedPayload is the payload for the "move_played" event.
type MovePlayedPayload struct {
	Index    int             `json:"index"`
	Mark     game.PlayerMark `json:"mark"`
	Computer bool            `json:"computer"`
}

// RoundStartedPayload is the payload for the "round_started" event.
type RoundStartedPayload struct {
	Round int `json:"round"`
}

// RoundOverPayload is the payload for the "round_over" event.
type RoundOverPayload struct {
	Round  int             `json:"round"`
	Status game.Status     `json:"status"`
	Winner game.PlayerMark `json:"winner,omitempty"`
	ScoreX int             `json:"score_x"`
	ScoreO int             `json:"score_o"`
}

// ModeChangedPayload is the payload for the "mode_changed" event.
type ModeChangedPayload struct {
	Mode       string `json:"mode"`
	Difficulty string `json:"difficulty"`
}
