package tictactoe

import (
	"github.com/rocketscienceinc/tictactoe-ai/internal/entity"
)

var WinCombos = [8][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// Evaluate returns the first completed line in WinCombos order, a draw for a full board,
// and false while the game can still go on.
func Evaluate(board entity.Board) (entity.Result, bool) {
	for _, combo := range WinCombos {
		a, b, c := board[combo[0]], board[combo[1]], board[combo[2]]
		if a != entity.EmptyCell && a == b && b == c {
			return entity.Result{
				Winner: a,
				Line:   []int{combo[0], combo[1], combo[2]},
			}, true
		}
	}

	// the game will continue until all the squares are full
	if !board.IsFull() {
		return entity.Result{}, false
	}

	return entity.Result{Winner: entity.Draw}, true
}
