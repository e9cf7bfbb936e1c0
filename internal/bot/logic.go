package bot

import (
	"ctchen222/tictactoe-engine/internal/dependencies/random"
	"ctchen222/tictactoe-engine/internal/game"
)

// NoMove is returned in place of a cell index when the board is full.
const NoMove = -1

// The computer always plays O, the human X.
const (
	ComputerMark = game.PlayerO
	HumanMark    = game.PlayerX
)

// MoveCalculator picks the computer's next move for a given difficulty.
type MoveCalculator struct {
	random random.Random
}

// NewMoveCalculator creates a MoveCalculator drawing its randomness from r.
func NewMoveCalculator(r random.Random) *MoveCalculator {
	return &MoveCalculator{random: r}
}

// CalculateNextMove determines the computer's next move based on the specified difficulty.
// It returns (NoMove, false) when the board has no empty cell.
func (c *MoveCalculator) CalculateNextMove(board game.Board, difficulty Difficulty) (int, bool) {
	if board.IsFull() {
		return NoMove, false
	}

	switch difficulty {
	case Easy:
		return c.easyMove(board), true
	case Medium:
		return c.mediumMove(board), true
	case Hard:
		return BestMove(board), true
	default:
		return BestMove(board), true
	}
}

// easyMove makes a completely random move.
func (c *MoveCalculator) easyMove(board game.Board) int {
	availableMoves := board.EmptyCells()
	return availableMoves[c.random.Intn(len(availableMoves))]
}

// mediumMove plays the optimal move half of the time and a random move otherwise.
func (c *MoveCalculator) mediumMove(board game.Board) int {
	if c.random.Intn(2) == 1 {
		return BestMove(board)
	}
	return c.easyMove(board)
}

// BestMove returns the cell that maximises O's minimax score, preferring the
// lowest index among equal scores. It returns NoMove on a full board.
func BestMove(board game.Board) int {
	bestScore := -2
	move := NoMove
	for i, cell := range board {
		if cell != game.Empty {
			continue
		}
		score := Minimax(board.Place(i, ComputerMark), false)
		if score > bestScore {
			bestScore = score
			move = i
		}
	}
	return move
}

// Minimax scores board from O's point of view: +1 if O wins, -1 if X wins,
// 0 for a draw. Every depth scores the same, and the full tree is searched.
func Minimax(board game.Board, maximizing bool) int {
	if score, done := terminalScore(board); done {
		return score
	}

	if maximizing {
		bestScore := -2
		for i, cell := range board {
			if cell == game.Empty {
				bestScore = max(bestScore, Minimax(board.Place(i, ComputerMark), false))
			}
		}
		return bestScore
	}

	bestScore := 2
	for i, cell := range board {
		if cell == game.Empty {
			bestScore = min(bestScore, Minimax(board.Place(i, HumanMark), true))
		}
	}
	return bestScore
}

func terminalScore(board game.Board) (int, bool) {
	switch board.Winner() {
	case ComputerMark:
		return 1, true
	case HumanMark:
		return -1, true
	}
	if board.IsFull() {
		return 0, true
	}
	return 0, false
}
