package tictactoe

import (
	"slices"

	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
)

// WinCombos - every line of the standard board in detection order.
var WinCombos = Lines(entity.SideLength)

// Lines - returns the lines of a sideLength×sideLength board: rows, then columns,
// then the main diagonal, then the anti-diagonal.
func Lines(sideLength int) [][]int {
	lines := make([][]int, 0, 2*sideLength+2)

	for row := 0; row < sideLength; row++ {
		line := make([]int, 0, sideLength)
		for col := 0; col < sideLength; col++ {
			line = append(line, cellIndex(row, col, sideLength))
		}
		lines = append(lines, line)
	}

	for col := 0; col < sideLength; col++ {
		line := make([]int, 0, sideLength)
		for row := 0; row < sideLength; row++ {
			line = append(line, cellIndex(row, col, sideLength))
		}
		lines = append(lines, line)
	}

	diag := make([]int, 0, sideLength)
	antiDiag := make([]int, 0, sideLength)
	for row := 0; row < sideLength; row++ {
		diag = append(diag, cellIndex(row, row, sideLength))
		antiDiag = append(antiDiag, cellIndex(row, sideLength-1-row, sideLength))
	}

	return append(lines, diag, antiDiag)
}

// EvaluateBoard - rescans the whole board and returns its state.
//
// Every line is checked for X and then for O without stopping at the first hit,
// so when several lines are complete the last one found wins. The tie check runs
// after the scan and only applies when no line is complete.
func EvaluateBoard(cells []entity.Marker, sideLength int) entity.GameState {
	state := entity.InProgress()

	for _, marker := range []entity.Marker{entity.MarkX, entity.MarkO} {
		for _, line := range Lines(sideLength) {
			if isLineOf(cells, line, marker) {
				state = entity.Win(marker, line)
			}
		}
	}

	if state.IsInProgress() && !slices.Contains(cells, entity.EmptyCell) {
		state = entity.Tie()
	}

	return state
}

func isLineOf(cells []entity.Marker, line []int, marker entity.Marker) bool {
	for _, index := range line {
		if cells[index] != marker {
			return false
		}
	}
	return true
}

func cellIndex(row, col, sideLength int) int {
	return row*sideLength + col%sideLength
}
