package game

import (
	"errors"
	"fmt"
)

// PlayerMark represents the mark of a player (X, O) or an empty cell.
type PlayerMark string

// Status is the termination state of a round.
type Status string

const (
	// Player marks
	Empty   PlayerMark = ""
	PlayerX PlayerMark = "X"
	PlayerO PlayerMark = "O"

	// Round statuses
	InProgress Status = "in_progress"
	Won        Status = "won"
	Drawn      Status = "drawn"

	// Board boundaries
	BorderMin = 0
	BorderMax = 8
)

var (
	ErrGameFinished = errors.New("game already finished")
	ErrInvalidMove  = errors.New("invalid move")
	ErrCellOccupied = errors.New("cell already occupied")
)

// Opponent returns the other player's mark. Empty has no opponent.
func (m PlayerMark) Opponent() PlayerMark {
	switch m {
	case PlayerX:
		return PlayerO
	case PlayerO:
		return PlayerX
	default:
		return Empty
	}
}

// Game is one round of tic-tac-toe. The zero value is not ready for use, call NewGame.
type Game struct {
	Board       Board      `json:"board"`
	CurrentTurn PlayerMark `json:"currentTurn"`
	Status      Status     `json:"status"`
	Winner      PlayerMark `json:"winner,omitempty"`
}

// NewGame returns a game with an empty board and X to move.
func NewGame() *Game {
	g := &Game{}
	g.StartNewRound()
	return g
}

// Move places the current player's mark at index and advances the game.
// The game is left untouched when an error is returned.
func (g *Game) Move(index int) error {
	if g.Status != InProgress {
		return ErrGameFinished
	}
	if index < BorderMin || index > BorderMax {
		return fmt.Errorf("%w: index %d is out of range [%d, %d]", ErrInvalidMove, index, BorderMin, BorderMax)
	}
	if g.Board[index] != Empty {
		return fmt.Errorf("%w: index %d", ErrCellOccupied, index)
	}

	g.Board[index] = g.CurrentTurn
	g.Status, g.Winner = Evaluate(g.Board)
	if g.Status == InProgress {
		g.CurrentTurn = g.CurrentTurn.Opponent()
	}
	return nil
}

// ApplyMove is Move without the rejection reason: an illegal move leaves the
// game unchanged. The resulting state is returned for rendering.
func (g *Game) ApplyMove(index int) Game {
	_ = g.Move(index)
	return g.Snapshot()
}

// StartNewRound clears the board and gives the first move to X.
func (g *Game) StartNewRound() Game {
	g.Board = Board{}
	g.CurrentTurn = PlayerX
	g.Status = InProgress
	g.Winner = Empty
	return g.Snapshot()
}

// Snapshot returns a copy of the game that shares nothing with g.
func (g *Game) Snapshot() Game {
	return *g
}

// IsOver reports whether the round has been won or drawn.
func (g *Game) IsOver() bool {
	return g.Status != InProgress
}

// Evaluate reports the termination state of b. A win is checked before a
// draw, so a full board with a completed line is Won.
func Evaluate(b Board) (Status, PlayerMark) {
	if winner := b.Winner(); winner != Empty {
		return Won, winner
	}
	if b.IsFull() {
		return Drawn, Empty
	}
	return InProgress, Empty
}
