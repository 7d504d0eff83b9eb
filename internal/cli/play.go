package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	app "github.com/rocketscienceinc/tictactoe-ai/internal"
	"github.com/rocketscienceinc/tictactoe-ai/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-ai/internal/config"
	"github.com/rocketscienceinc/tictactoe-ai/internal/entity"
	"github.com/rocketscienceinc/tictactoe-ai/internal/metrics"
	"github.com/rocketscienceinc/tictactoe-ai/internal/tictactoe"
	"github.com/rocketscienceinc/tictactoe-ai/internal/view"
)

func newPlayCmd(opts *options, conf func() *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := zap.NewNop()
			if opts.logFile != "" {
				var err error
				if logger, err = newLogger(conf().LogLevel, opts.logFile); err != nil {
					return err
				}
			}
			defer func() { _ = logger.Sync() }()

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			bot, err := app.NewBot(ctx, logger.Sugar(), conf(), metrics.New())
			if err != nil {
				return err
			}

			model := newPlayModel(ctx, tictactoe.NewGameController(bot), conf().Gemini.Timeout)
			if _, err = tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
				return fmt.Errorf("terminal ui failed: %w", err)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&opts.logFile, "log-file", "", "Write logs to this file; logs are discarded when empty")

	return cmd
}

// aiTurnMsg carries a finished AI turn computed on a copy of the game.
type aiTurnMsg struct {
	game *entity.Game
	err  error
}

type playModel struct {
	ctx        context.Context
	controller *tictactoe.GameController
	aiTimeout  time.Duration

	game   *entity.Game
	cursor int
	err    string
}

func newPlayModel(ctx context.Context, controller *tictactoe.GameController, aiTimeout time.Duration) playModel {
	return playModel{
		ctx:        ctx,
		controller: controller,
		aiTimeout:  aiTimeout,
		game:       entity.NewGame("terminal"),
		cursor:     4,
	}
}

func (that playModel) Init() tea.Cmd {
	return nil
}

func (that playModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case aiTurnMsg:
		return that.applyAITurn(msg), nil

	case tea.KeyMsg:
		return that.handleKey(msg)
	}

	return that, nil
}

func (that playModel) View() string {
	return view.RenderTerminal(view.NewBoard(that.game), that.cursor, that.err)
}

func (that playModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key := msg.String(); key {
	case "q", "ctrl+c", "esc":
		return that, tea.Quit

	case "up", "k":
		if that.cursor >= 3 {
			that.cursor -= 3
		}

	case "down", "j":
		if that.cursor < 6 {
			that.cursor += 3
		}

	case "left", "h":
		if that.cursor%3 > 0 {
			that.cursor--
		}

	case "right", "l":
		if that.cursor%3 < 2 {
			that.cursor++
		}

	case "enter", " ":
		return that.play(that.cursor)

	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		that.cursor = int(key[0] - '1')
		return that.play(that.cursor)

	case "r":
		that.game = cloneGame(that.game)
		that.controller.ResetGame(that.game)
		that.err = ""

	case "m":
		mode := entity.ModePvP
		if !that.game.IsWithAI() {
			mode = entity.ModeAI
		}

		that.game = cloneGame(that.game)
		if err := that.controller.SelectMode(that.game, mode); err != nil {
			that.err = err.Error()
		} else {
			that.err = ""
		}
	}

	return that, nil
}

// play applies the human move and starts the AI turn on a snapshot when it is due.
func (that playModel) play(cell int) (tea.Model, tea.Cmd) {
	game := cloneGame(that.game)

	if err := that.controller.ApplyHumanMove(game, cell); err != nil {
		that.err = errorText(err)
		return that, nil
	}

	that.err = ""
	that.game = game

	if !that.controller.NeedsAIMove(game) {
		return that, nil
	}

	pending := cloneGame(game)
	that.controller.BeginAIMove(that.game)

	return that, that.aiTurn(pending)
}

func (that playModel) aiTurn(pending *entity.Game) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(that.ctx, that.aiTimeout)
		defer cancel()

		err := that.controller.TriggerAIMove(ctx, pending)

		return aiTurnMsg{game: pending, err: err}
	}
}

// applyAITurn takes the AI result only if the board it was computed for is still on.
func (that playModel) applyAITurn(msg aiTurnMsg) playModel {
	if !that.game.Thinking || msg.game.Round != that.game.Round {
		return that
	}

	if msg.err != nil {
		that.game = cloneGame(that.game)
		that.game.Thinking = false
		that.err = msg.err.Error()
		return that
	}

	that.game = msg.game
	return that
}

func errorText(err error) string {
	for _, sentinel := range []error{
		apperror.ErrCellOccupied,
		apperror.ErrGameFinished,
		apperror.ErrAIThinking,
		apperror.ErrNotYourTurn,
		apperror.ErrInvalidCell,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}

	return err.Error()
}

func cloneGame(game *entity.Game) *entity.Game {
	clone := *game
	clone.WinningLine = append([]int(nil), game.WinningLine...)

	return &clone
}
