package tictactoe

import (
	"context"
	"fmt"
	"time"

	"github.com/rocketscienceinc/tictactoe-ai/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-ai/internal/entity"
)

// AIMark is the mark the remote opponent plays in AI mode.
const AIMark = entity.PlayerO

type moveProvider interface {
	ChooseMove(ctx context.Context, board entity.Board, aiMark string) (entity.MoveResult, error)
}

// GameController owns every state transition of a single game.
// It keeps no state of its own, so one instance serves all sessions.
type GameController struct {
	provider moveProvider
	now      func() time.Time
}

func NewGameController(provider moveProvider) *GameController {
	return &GameController{
		provider: provider,
		now:      time.Now,
	}
}

// ApplyHumanMove places the current player's mark. A rejected move leaves the game untouched.
func (that *GameController) ApplyHumanMove(game *entity.Game, cell int) error {
	if err := validateHumanMove(game, cell); err != nil {
		return fmt.Errorf("invalid turn: %w", err)
	}

	game.Board[cell] = game.Turn
	game.Status = entity.StatusPlaying
	that.advance(game)

	return nil
}

// validateHumanMove - checks if the move is valid.
func validateHumanMove(game *entity.Game, cell int) error {
	if cell < 0 || cell >= len(game.Board) {
		return fmt.Errorf("%w: cell %d", apperror.ErrInvalidCell, cell)
	}

	if game.IsFinished() {
		return apperror.ErrGameFinished
	}

	if game.Thinking {
		return apperror.ErrAIThinking
	}

	if game.IsWithAI() && game.Turn == AIMark {
		return apperror.ErrNotYourTurn
	}

	if game.Board[cell] != entity.EmptyCell {
		return apperror.ErrCellOccupied
	}

	return nil
}

// NeedsAIMove reports whether the remote opponent should move now.
func (that *GameController) NeedsAIMove(game *entity.Game) bool {
	return game.IsWithAI() && game.Turn == AIMark && game.IsPlaying() && !game.Thinking
}

// BeginAIMove marks the game as waiting for the remote move.
func (that *GameController) BeginAIMove(game *entity.Game) bool {
	if !that.NeedsAIMove(game) {
		return false
	}

	game.Thinking = true
	game.UpdatedAt = that.now()

	return true
}

// ApplyAIMove places the AI mark from a provider result.
// An occupied or out-of-range suggestion lands on the first open cell instead.
func (that *GameController) ApplyAIMove(game *entity.Game, result entity.MoveResult) error {
	game.Thinking = false

	if game.IsFinished() {
		return apperror.ErrGameFinished
	}

	cell := result.Index
	if cell < 0 || cell >= len(game.Board) || game.Board[cell] != entity.EmptyCell {
		cell = game.Board.FirstEmpty()
	}

	if cell == -1 {
		return apperror.ErrGameFinished
	}

	game.Comment = result.Comment
	game.Board[cell] = AIMark
	that.advance(game)

	return nil
}

// TriggerAIMove runs a whole AI turn in place: begin, ask the provider, apply.
func (that *GameController) TriggerAIMove(ctx context.Context, game *entity.Game) error {
	if !that.BeginAIMove(game) {
		return nil
	}

	result, err := that.provider.ChooseMove(ctx, game.Board, AIMark)
	if err != nil {
		game.Thinking = false
		return fmt.Errorf("failed to choose AI move: %w", err)
	}

	return that.ApplyAIMove(game, result)
}

// ResetGame restores the initial board and greets according to the current mode.
func (that *GameController) ResetGame(game *entity.Game) {
	game.Board = entity.Board{}
	game.Turn = entity.PlayerX
	game.Status = entity.StatusIdle
	game.Winner = ""
	game.WinningLine = nil
	game.Thinking = false
	game.Round++
	game.UpdatedAt = that.now()

	if game.IsWithAI() {
		game.Comment = entity.GreetingRematch
	} else {
		game.Comment = ""
	}
}

// SelectMode switches the mode and starts over.
func (that *GameController) SelectMode(game *entity.Game, mode string) error {
	if !entity.IsValidMode(mode) {
		return fmt.Errorf("%w: %q", apperror.ErrInvalidMode, mode)
	}

	game.Mode = mode
	that.ResetGame(game)

	return nil
}

// EndGame records the terminal result.
func (that *GameController) EndGame(game *entity.Game, result entity.Result) {
	game.Status = entity.StatusFinished
	game.Winner = result.Winner
	game.Thinking = false

	if !result.IsDraw() {
		game.WinningLine = result.Line
	}
}

// advance evaluates the board after a placed mark and either ends the game or passes the turn.
func (that *GameController) advance(game *entity.Game) {
	game.UpdatedAt = that.now()

	if result, done := Evaluate(game.Board); done {
		that.EndGame(game, result)
		return
	}

	game.Turn = entity.Opponent(game.Turn)
}
