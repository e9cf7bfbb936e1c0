package bot

import (
	"errors"
	"fmt"
	"strings"
)

// Difficulty controls how often the computer plays the optimal move.
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

var ErrUnknownDifficulty = errors.New("unknown difficulty")

// ParseDifficulty converts user input such as "Hard" into a Difficulty.
func ParseDifficulty(s string) (Difficulty, error) {
	switch d := Difficulty(strings.ToLower(strings.TrimSpace(s))); d {
	case Easy, Medium, Hard:
		return d, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownDifficulty, s)
	}
}

func (d Difficulty) String() string {
	return string(d)
}
