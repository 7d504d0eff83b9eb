package tictactoe

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-ai/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-ai/internal/entity"
)

var (
	fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	errNoMoves = errors.New("no available moves")
)

type mockMoveProvider struct {
	mock.Mock
}

func (that *mockMoveProvider) ChooseMove(ctx context.Context, board entity.Board, aiMark string) (entity.MoveResult, error) {
	args := that.Called(ctx, board, aiMark)
	return args.Get(0).(entity.MoveResult), args.Error(1)
}

func newTestController(t *testing.T) (*GameController, *mockMoveProvider) {
	t.Helper()

	provider := &mockMoveProvider{}
	t.Cleanup(func() { provider.AssertExpectations(t) })

	controller := NewGameController(provider)
	controller.now = func() time.Time { return fixedNow }

	return controller, provider
}

func TestGameController_ApplyHumanMove(t *testing.T) {
	t.Run("First move starts the game and passes the turn", func(t *testing.T) {
		// Given: a new game
		controller, _ := newTestController(t)
		game := entity.NewGame("123")

		// When: X plays the center
		err := controller.ApplyHumanMove(game, 4)
		require.NoError(t, err)

		// Then: the mark is placed, the game is playing and it's O's turn
		expectedGame := &entity.Game{
			ID:        "123",
			Board:     entity.Board{e, e, e, e, x, e, e, e, e},
			Turn:      o,
			Status:    entity.StatusPlaying,
			Mode:      entity.ModeAI,
			Comment:   entity.GreetingNewSession,
			UpdatedAt: fixedNow,
		}

		require.Equal(t, expectedGame, game)
	})

	t.Run("Occupied cell is a no-op", func(t *testing.T) {
		// Given: a PvP game where X already holds cell 0
		controller, _ := newTestController(t)
		game := entity.NewGame("123")
		game.Mode = entity.ModePvP
		require.NoError(t, controller.ApplyHumanMove(game, 0))
		before := *game

		// When: O tries the same cell
		err := controller.ApplyHumanMove(game, 0)

		// Then: ErrCellOccupied is returned and nothing changes
		require.ErrorIs(t, err, apperror.ErrCellOccupied)
		assert.Equal(t, before, *game)
	})

	t.Run("Finished game is a no-op", func(t *testing.T) {
		// Given: a game X has already won
		controller, _ := newTestController(t)
		game := entity.NewGame("123")
		game.Board = entity.Board{x, x, x, o, o, e, e, e, e}
		game.Status = entity.StatusFinished
		game.Winner = x
		before := *game

		// When: another move is attempted
		err := controller.ApplyHumanMove(game, 5)

		// Then: ErrGameFinished is returned and the board is unchanged
		require.ErrorIs(t, err, apperror.ErrGameFinished)
		assert.Equal(t, before, *game)
	})

	t.Run("Pending AI move rejects input", func(t *testing.T) {
		// Given: an AI game waiting on the remote move
		controller, _ := newTestController(t)
		game := entity.NewGame("123")
		require.NoError(t, controller.ApplyHumanMove(game, 0))
		require.True(t, controller.BeginAIMove(game))
		before := *game

		// When: the human clicks again
		err := controller.ApplyHumanMove(game, 1)

		// Then: ErrAIThinking is returned and the board is unchanged
		require.ErrorIs(t, err, apperror.ErrAIThinking)
		assert.Equal(t, before, *game)
	})

	t.Run("Human cannot play for the AI", func(t *testing.T) {
		// Given: an AI game where it's O's turn but the AI call has not started
		controller, _ := newTestController(t)
		game := entity.NewGame("123")
		require.NoError(t, controller.ApplyHumanMove(game, 0))

		// When: the human tries to place O
		err := controller.ApplyHumanMove(game, 1)

		// Then: ErrNotYourTurn is returned
		require.ErrorIs(t, err, apperror.ErrNotYourTurn)
		assert.Equal(t, e, game.Board[1])
	})

	t.Run("PvP alternates marks", func(t *testing.T) {
		// Given: a PvP game
		controller, _ := newTestController(t)
		game := entity.NewGame("123")
		require.NoError(t, controller.SelectMode(game, entity.ModePvP))

		// When: both players move
		require.NoError(t, controller.ApplyHumanMove(game, 0))
		require.NoError(t, controller.ApplyHumanMove(game, 4))

		// Then: X and O are placed and it's X's turn again
		assert.Equal(t, x, game.Board[0])
		assert.Equal(t, o, game.Board[4])
		assert.Equal(t, x, game.Turn)
	})

	t.Run("Winning move finishes the game", func(t *testing.T) {
		// Given: a PvP game where X has two in the top row
		controller, _ := newTestController(t)
		game := entity.NewGame("123")
		game.Mode = entity.ModePvP
		game.Status = entity.StatusPlaying
		game.Board = entity.Board{x, x, e, o, o, e, e, e, e}

		// When: X completes the row
		require.NoError(t, controller.ApplyHumanMove(game, 2))

		// Then: X wins with the top row and the turn stays with X
		assert.Equal(t, entity.StatusFinished, game.Status)
		assert.Equal(t, x, game.Winner)
		assert.Equal(t, []int{0, 1, 2}, game.WinningLine)
		assert.Equal(t, x, game.Turn)
	})

	t.Run("Last open cell without a line is a draw", func(t *testing.T) {
		// Given: a PvP game with one open cell
		controller, _ := newTestController(t)
		game := entity.NewGame("123")
		game.Mode = entity.ModePvP
		game.Status = entity.StatusPlaying
		game.Board = entity.Board{x, o, x, x, o, o, o, x, e}

		// When: X fills the last cell
		require.NoError(t, controller.ApplyHumanMove(game, 8))

		// Then: the game is a draw without a winning line
		assert.Equal(t, entity.StatusFinished, game.Status)
		assert.Equal(t, entity.Draw, game.Winner)
		assert.Nil(t, game.WinningLine)
	})

	t.Run("Invalid cell indices", func(t *testing.T) {
		controller, _ := newTestController(t)
		game := entity.NewGame("123")

		assert.ErrorIs(t, controller.ApplyHumanMove(game, 9), apperror.ErrInvalidCell)
		assert.ErrorIs(t, controller.ApplyHumanMove(game, -1), apperror.ErrInvalidCell)
		assert.Equal(t, entity.Board{}, game.Board)
	})
}

func TestGameController_NeedsAIMove(t *testing.T) {
	controller, _ := newTestController(t)

	t.Run("AI mode, O to move, playing", func(t *testing.T) {
		game := &entity.Game{Mode: entity.ModeAI, Turn: o, Status: entity.StatusPlaying}
		assert.True(t, controller.NeedsAIMove(game))
	})

	t.Run("Not while thinking", func(t *testing.T) {
		game := &entity.Game{Mode: entity.ModeAI, Turn: o, Status: entity.StatusPlaying, Thinking: true}
		assert.False(t, controller.NeedsAIMove(game))
	})

	t.Run("Not in PvP", func(t *testing.T) {
		game := &entity.Game{Mode: entity.ModePvP, Turn: o, Status: entity.StatusPlaying}
		assert.False(t, controller.NeedsAIMove(game))
	})

	t.Run("Not on X's turn", func(t *testing.T) {
		game := &entity.Game{Mode: entity.ModeAI, Turn: x, Status: entity.StatusPlaying}
		assert.False(t, controller.NeedsAIMove(game))
	})

	t.Run("Not when finished or idle", func(t *testing.T) {
		assert.False(t, controller.NeedsAIMove(&entity.Game{Mode: entity.ModeAI, Turn: o, Status: entity.StatusFinished}))
		assert.False(t, controller.NeedsAIMove(&entity.Game{Mode: entity.ModeAI, Turn: o, Status: entity.StatusIdle}))
	})
}

func TestGameController_TriggerAIMove(t *testing.T) {
	ctx := context.Background()

	t.Run("Applies the provider's move and comment", func(t *testing.T) {
		// Given: X has opened in the corner
		controller, provider := newTestController(t)
		game := entity.NewGame("123")
		require.NoError(t, controller.ApplyHumanMove(game, 0))

		provider.On("ChooseMove", ctx, game.Board, o).
			Return(entity.MoveResult{Index: 4, Comment: "Center is mine."}, nil).
			Once()

		// When: the AI turn runs
		err := controller.TriggerAIMove(ctx, game)

		// Then: O takes the center and it's X's turn
		require.NoError(t, err)
		assert.Equal(t, o, game.Board[4])
		assert.Equal(t, "Center is mine.", game.Comment)
		assert.Equal(t, x, game.Turn)
		assert.False(t, game.Thinking)
	})

	t.Run("Occupied suggestion falls back to the first open cell", func(t *testing.T) {
		// Given: X holds cell 0 and 1 is open
		controller, provider := newTestController(t)
		game := entity.NewGame("123")
		require.NoError(t, controller.ApplyHumanMove(game, 0))

		provider.On("ChooseMove", ctx, game.Board, o).
			Return(entity.MoveResult{Index: 0, Comment: "Oops."}, nil).
			Once()

		// When: the AI names the occupied cell
		require.NoError(t, controller.TriggerAIMove(ctx, game))

		// Then: O lands on cell 1
		assert.Equal(t, x, game.Board[0])
		assert.Equal(t, o, game.Board[1])
	})

	t.Run("AI winning move finishes the game", func(t *testing.T) {
		// Given: O has two in the middle column
		controller, provider := newTestController(t)
		game := entity.NewGame("123")
		game.Status = entity.StatusPlaying
		game.Turn = o
		game.Board = entity.Board{x, o, x, e, o, e, x, e, e}

		provider.On("ChooseMove", ctx, game.Board, o).
			Return(entity.MoveResult{Index: 7, Comment: "Too easy."}, nil).
			Once()

		// When: the AI turn runs
		require.NoError(t, controller.TriggerAIMove(ctx, game))

		// Then: O wins with the middle column
		assert.Equal(t, entity.StatusFinished, game.Status)
		assert.Equal(t, o, game.Winner)
		assert.Equal(t, []int{1, 4, 7}, game.WinningLine)
	})

	t.Run("Does nothing when it's not the AI's turn", func(t *testing.T) {
		// Given: an idle game
		controller, _ := newTestController(t)
		game := entity.NewGame("123")

		// When: the AI turn is triggered
		err := controller.TriggerAIMove(ctx, game)

		// Then: nothing happens and the provider is never called
		require.NoError(t, err)
		assert.Equal(t, entity.Board{}, game.Board)
	})

	t.Run("Provider error clears thinking", func(t *testing.T) {
		// Given: a provider that cannot move
		controller, provider := newTestController(t)
		game := entity.NewGame("123")
		require.NoError(t, controller.ApplyHumanMove(game, 0))

		provider.On("ChooseMove", ctx, game.Board, o).
			Return(entity.MoveResult{}, errNoMoves).
			Once()

		// When: the AI turn runs
		err := controller.TriggerAIMove(ctx, game)

		// Then: the error surfaces and input is accepted again
		require.ErrorIs(t, err, errNoMoves)
		assert.False(t, game.Thinking)
	})
}

func TestGameController_ResetGame(t *testing.T) {
	t.Run("Reset after a finished AI game", func(t *testing.T) {
		// Given: a finished AI game
		controller, _ := newTestController(t)
		game := entity.NewGame("123")
		game.Board = entity.Board{x, x, x, o, o, e, e, e, e}
		game.Status = entity.StatusFinished
		game.Winner = x
		game.WinningLine = []int{0, 1, 2}
		game.Comment = "Well played."

		// When: the game is reset
		controller.ResetGame(game)

		// Then: the board is empty, status idle, no winner, rematch greeting
		expectedGame := &entity.Game{
			ID:        "123",
			Round:     1,
			Board:     entity.Board{},
			Turn:      x,
			Status:    entity.StatusIdle,
			Mode:      entity.ModeAI,
			Comment:   entity.GreetingRematch,
			UpdatedAt: fixedNow,
		}

		require.Equal(t, expectedGame, game)
	})

	t.Run("Reset in PvP clears the comment", func(t *testing.T) {
		controller, _ := newTestController(t)
		game := entity.NewGame("123")
		game.Mode = entity.ModePvP

		controller.ResetGame(game)

		assert.Empty(t, game.Comment)
	})
}

func TestGameController_SelectMode(t *testing.T) {
	t.Run("Switching mode resets with the new mode's greeting", func(t *testing.T) {
		// Given: a PvP game in progress
		controller, _ := newTestController(t)
		game := entity.NewGame("123")
		game.Mode = entity.ModePvP
		require.NoError(t, controller.ApplyHumanMove(game, 0))

		// When: switching to AI mode
		require.NoError(t, controller.SelectMode(game, entity.ModeAI))

		// Then: the board is reset and the AI greets
		assert.Equal(t, entity.ModeAI, game.Mode)
		assert.Equal(t, entity.Board{}, game.Board)
		assert.Equal(t, entity.StatusIdle, game.Status)
		assert.Equal(t, entity.GreetingRematch, game.Comment)
	})

	t.Run("Unknown mode is rejected", func(t *testing.T) {
		controller, _ := newTestController(t)
		game := entity.NewGame("123")

		err := controller.SelectMode(game, "online")

		require.ErrorIs(t, err, apperror.ErrInvalidMode)
		assert.Equal(t, entity.ModeAI, game.Mode)
		assert.Equal(t, 0, game.Round)
	})
}
