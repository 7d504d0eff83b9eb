package view

import (
	"github.com/rocketscienceinc/tictactoe-ai/internal/entity"
)

const ThinkingText = "Thinking..."

// Cell is one square as the page and the terminal draw it.
type Cell struct {
	Index     int
	Mark      string
	Winning   bool
	Clickable bool
}

// Board is the render model of a game, shared by the HTML page and the terminal UI.
type Board struct {
	GameID   string
	Mode     string
	Cells    [entity.BoardSize]Cell
	Status   string
	Turn     string
	Winner   string
	Thinking bool
	Finished bool
	// Comment is empty outside AI mode.
	Comment string
}

func NewBoard(game *entity.Game) Board {
	locked := game.IsFinished() || game.Thinking

	board := Board{
		GameID:   game.ID,
		Mode:     game.Mode,
		Turn:     game.Turn,
		Winner:   game.Winner,
		Thinking: game.Thinking,
		Finished: game.IsFinished(),
		Status:   StatusText(game),
	}

	for i, mark := range game.Board {
		board.Cells[i] = Cell{
			Index:     i,
			Mark:      mark,
			Winning:   game.IsWinningCell(i),
			Clickable: !locked && mark == entity.EmptyCell,
		}
	}

	if game.IsWithAI() {
		board.Comment = game.Comment
	}

	return board
}

// StatusText is the headline above the grid.
func StatusText(game *entity.Game) string {
	switch {
	case game.IsFinished() && game.IsDraw():
		return "Draw!"
	case game.IsFinished():
		return game.Winner + " WINS!"
	default:
		return "Turn: " + game.Turn
	}
}

// Rows splits the cells into the three rows of the grid.
func (that Board) Rows() [][]Cell {
	rows := make([][]Cell, 0, 3)
	for i := 0; i < len(that.Cells); i += 3 {
		rows = append(rows, that.Cells[i:i+3])
	}

	return rows
}

func (that Board) IsWithAI() bool {
	return that.Mode == entity.ModeAI
}
