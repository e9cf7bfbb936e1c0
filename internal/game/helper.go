package game

import "strings"

// Board is a 3x3 grid in row-major order: Board[3*row + col].
type Board [9]PlayerMark

// WinLines are the index triples that win the game: rows, columns, diagonals.
var WinLines = [8][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	{0, 4, 8}, {2, 4, 6},
}

// Winner returns the mark holding a complete line, or Empty.
func (b Board) Winner() PlayerMark {
	for _, line := range WinLines {
		if b[line[0]] != Empty && b[line[0]] == b[line[1]] && b[line[1]] == b[line[2]] {
			return b[line[0]]
		}
	}
	return Empty
}

// IsFull reports whether no empty cell remains.
func (b Board) IsFull() bool {
	for _, cell := range b {
		if cell == Empty {
			return false
		}
	}
	return true
}

// EmptyCells returns the indices of empty cells in ascending order.
func (b Board) EmptyCells() []int {
	cells := make([]int, 0, len(b))
	for i, cell := range b {
		if cell == Empty {
			cells = append(cells, i)
		}
	}
	return cells
}

// Place returns a copy of b with mark at index. b is not modified.
func (b Board) Place(index int, mark PlayerMark) Board {
	b[index] = mark
	return b
}

// String renders the board the way the console game prints it:
//
//	X | O | X
//	---------
//	  | X |
//	---------
//	O |   |
func (b Board) String() string {
	return b.Render(plainCell)
}

// Render lays the board out like String, drawing each cell with cell.
func (b Board) Render(cell func(PlayerMark) string) string {
	var sb strings.Builder
	for row := 0; row < 3; row++ {
		cells := make([]string, 3)
		for col := 0; col < 3; col++ {
			cells[col] = cell(b[3*row+col])
		}
		sb.WriteString(strings.Join(cells, " | "))
		if row < 2 {
			sb.WriteString("\n")
			sb.WriteString(strings.Repeat("-", 9))
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func plainCell(m PlayerMark) string {
	if m == Empty {
		return " "
	}
	return string(m)
}
