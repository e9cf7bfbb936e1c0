package session

import (
	"errors"
	"fmt"
	"strings"

	"ctchen222/tictactoe-engine/internal/game"
)

// Mode selects who plays O.
type Mode string

const (
	HumanVsHuman    Mode = "pvp"
	HumanVsComputer Mode = "pvc"
)

var ErrUnknownMode = errors.New("unknown mode")

// ParseMode converts user input such as "PVC" into a Mode.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case HumanVsHuman, HumanVsComputer:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// ScoreBoard counts rounds won by each mark. Draws are not counted.
type ScoreBoard struct {
	X int `json:"X"`
	O int `json:"O"`
}

// Record credits the winner of a finished round and reports whether a score changed.
func (s *ScoreBoard) Record(status game.Status, winner game.PlayerMark) bool {
	if status != game.Won {
		return false
	}
	switch winner {
	case game.PlayerX:
		s.X++
	case game.PlayerO:
		s.O++
	default:
		return false
	}
	return true
}
