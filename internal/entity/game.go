package entity

import (
	"time"
)

const (
	StatusIdle     = "idle"
	StatusPlaying  = "playing"
	StatusFinished = "finished"

	PlayerX = "X"
	PlayerO = "O"
	Draw    = "draw"

	EmptyCell = ""
)

const (
	ModeAI  = "ai"
	ModePvP = "pvp"
)

const (
	GreetingNewSession = "I'm ready when you are."
	GreetingRematch    = "Let's go again!"
)

const BoardSize = 9

// Board holds the nine cells, row by row.
type Board [BoardSize]string

// EmptyCells returns indices of unoccupied cells in ascending order.
func (that Board) EmptyCells() []int {
	cells := make([]int, 0, len(that))
	for i, cell := range that {
		if cell == EmptyCell {
			cells = append(cells, i)
		}
	}

	return cells
}

// FirstEmpty returns the lowest unoccupied index or -1 for a full board.
func (that Board) FirstEmpty() int {
	for i, cell := range that {
		if cell == EmptyCell {
			return i
		}
	}

	return -1
}

func (that Board) IsFull() bool {
	return that.FirstEmpty() == -1
}

func (that Board) Marks() int {
	return len(that) - len(that.EmptyCells())
}

// Result is a terminal outcome: a winner with its line, or a draw.
type Result struct {
	Winner string `json:"winner"`
	Line   []int  `json:"line,omitempty"`
}

func (that Result) IsDraw() bool {
	return that.Winner == Draw
}

// MoveResult is what the move provider suggests for the AI turn.
type MoveResult struct {
	Index   int    `json:"move"`
	Comment string `json:"comment"`
}

type Game struct {
	ID          string    `json:"id"`
	Round       int       `json:"round"`
	Board       Board     `json:"board"`
	Turn        string    `json:"turn"`
	Status      string    `json:"status"`
	Mode        string    `json:"mode"`
	Winner      string    `json:"winner"`
	WinningLine []int     `json:"winning_line,omitempty"`
	Thinking    bool      `json:"thinking"`
	Comment     string    `json:"comment"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func NewGame(id string) *Game {
	return &Game{
		ID:      id,
		Board:   Board{},
		Turn:    PlayerX,
		Status:  StatusIdle,
		Mode:    ModeAI,
		Comment: GreetingNewSession,
	}
}

func (that *Game) IsFinished() bool {
	return that.Status == StatusFinished
}

func (that *Game) IsPlaying() bool {
	return that.Status == StatusPlaying
}

func (that *Game) IsIdle() bool {
	return that.Status == StatusIdle
}

func (that *Game) IsWithAI() bool {
	return that.Mode == ModeAI
}

func (that *Game) IsDraw() bool {
	return that.Winner == Draw
}

// IsWinningCell reports whether the cell belongs to the recorded winning line.
func (that *Game) IsWinningCell(cell int) bool {
	for _, idx := range that.WinningLine {
		if idx == cell {
			return true
		}
	}

	return false
}

func IsValidMode(mode string) bool {
	return mode == ModeAI || mode == ModePvP
}

func Opponent(mark string) string {
	if mark == PlayerX {
		return PlayerO
	}
	return PlayerX
}

// GameRecord is the stored summary of a finished game.
type GameRecord struct {
	ID          uint      `json:"-" gorm:"primaryKey"`
	GameID      string    `json:"game_id" gorm:"index;size:64"`
	Round       int       `json:"round"`
	Mode        string    `json:"mode" gorm:"size:8"`
	Winner      string    `json:"winner" gorm:"size:8"`
	WinningLine string    `json:"winning_line" gorm:"size:16"`
	Marks       int       `json:"marks"`
	FinishedAt  time.Time `json:"finished_at"`
}

// Tally counts outcomes for one mode.
type Tally struct {
	XWins int `json:"x_wins"`
	OWins int `json:"o_wins"`
	Draws int `json:"draws"`
}

type Stats struct {
	AI  Tally `json:"ai"`
	PvP Tally `json:"pvp"`
}
