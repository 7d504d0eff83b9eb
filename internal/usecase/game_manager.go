package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rocketscienceinc/tictactoe-ai/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-ai/internal/entity"
	"github.com/rocketscienceinc/tictactoe-ai/internal/metrics"
	"github.com/rocketscienceinc/tictactoe-ai/internal/repository"
	"github.com/rocketscienceinc/tictactoe-ai/internal/tictactoe"
)

// staleTurnFactor times the AI timeout is how long a thinking flag may stay set before it is cleared on load.
const staleTurnFactor = 2

type gameRepo interface {
	CreateOrUpdate(ctx context.Context, game *entity.Game) error
	GetByID(ctx context.Context, id string) (*entity.Game, error)
	DeleteByID(ctx context.Context, id string) error
}

type resultRepo interface {
	Save(ctx context.Context, record *entity.GameRecord) error
	Stats(ctx context.Context) (*entity.Stats, error)
}

type moveProvider interface {
	ChooseMove(ctx context.Context, board entity.Board, aiMark string) (entity.MoveResult, error)
}

// publisher receives every saved state of a game.
type publisher interface {
	Publish(game *entity.Game)
}

type GameManager struct {
	logger     *zap.SugaredLogger
	gameRepo   gameRepo
	resultRepo resultRepo
	controller *tictactoe.GameController
	bot        moveProvider
	publisher  publisher
	metrics    *metrics.Metrics

	aiTimeout time.Duration
	locks     *gameLocks
	aiTurns   sync.WaitGroup
	now       func() time.Time
}

func NewGameManager(
	logger *zap.SugaredLogger,
	gameRepo gameRepo,
	resultRepo resultRepo,
	controller *tictactoe.GameController,
	bot moveProvider,
	publisher publisher,
	m *metrics.Metrics,
	aiTimeout time.Duration,
) *GameManager {
	return &GameManager{
		logger:     logger.With("component", "game_manager"),
		gameRepo:   gameRepo,
		resultRepo: resultRepo,
		controller: controller,
		bot:        bot,
		publisher:  publisher,
		metrics:    m,
		aiTimeout:  aiTimeout,
		locks:      newGameLocks(),
		now:        time.Now,
	}
}

// GetOrCreateGame returns the stored session or starts a new one when the id is empty or unknown.
func (that *GameManager) GetOrCreateGame(ctx context.Context, id string) (*entity.Game, error) {
	if id == "" {
		return that.createGame(ctx)
	}

	game, err := that.gameRepo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrGameNotFound) {
		return that.createGame(ctx)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	if that.isStaleTurn(game) {
		return that.releaseStaleTurn(ctx, id)
	}

	return game, nil
}

// MakeTurn applies a human move and, when the AI is due, starts its turn in the background.
// A rejected move returns the unchanged game together with the error.
func (that *GameManager) MakeTurn(ctx context.Context, id string, cell int) (*entity.Game, error) {
	unlock := that.locks.lock(id)
	defer unlock()

	game, err := that.getGameByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err = that.controller.ApplyHumanMove(game, cell); err != nil {
		that.metrics.MoveRejected(rejectReason(err))
		return game, err
	}

	if game.IsFinished() {
		that.recordResult(ctx, game)
	}

	aiTurn := that.controller.BeginAIMove(game)

	if err = that.saveGame(ctx, game); err != nil {
		return nil, err
	}

	if aiTurn {
		that.aiTurns.Add(1)
		go that.playAITurn(context.WithoutCancel(ctx), game.ID, game.Round, game.Board)
	}

	return game, nil
}

// ResetGame starts a new round in the current mode. A pending AI reply for the old round is dropped.
func (that *GameManager) ResetGame(ctx context.Context, id string) (*entity.Game, error) {
	unlock := that.locks.lock(id)
	defer unlock()

	game, err := that.getGameByID(ctx, id)
	if err != nil {
		return nil, err
	}

	that.controller.ResetGame(game)

	if err = that.saveGame(ctx, game); err != nil {
		return nil, err
	}

	return game, nil
}

func (that *GameManager) SelectMode(ctx context.Context, id, mode string) (*entity.Game, error) {
	unlock := that.locks.lock(id)
	defer unlock()

	game, err := that.getGameByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err = that.controller.SelectMode(game, mode); err != nil {
		return game, err
	}

	if err = that.saveGame(ctx, game); err != nil {
		return nil, err
	}

	return game, nil
}

func (that *GameManager) DeleteGame(ctx context.Context, id string) error {
	unlock := that.locks.lock(id)
	defer unlock()

	if err := that.gameRepo.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("failed to delete game: %w", err)
	}

	return nil
}

func (that *GameManager) Stats(ctx context.Context) (*entity.Stats, error) {
	stats, err := that.resultRepo.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}

	return stats, nil
}

// Wait blocks until every AI turn in flight has been applied or dropped.
func (that *GameManager) Wait() {
	that.aiTurns.Wait()
}

// playAITurn asks for the move outside the lock and applies it only if the round it was asked for is still on.
func (that *GameManager) playAITurn(ctx context.Context, id string, round int, board entity.Board) {
	defer that.aiTurns.Done()

	log := that.logger.With("method", "playAITurn", "game_id", id, "round", round)

	aiCtx, cancel := context.WithTimeout(ctx, that.aiTimeout)
	result, moveErr := that.bot.ChooseMove(aiCtx, board, tictactoe.AIMark)
	cancel()

	unlock := that.locks.lock(id)
	defer unlock()

	game, err := that.gameRepo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrGameNotFound) {
		log.Infow("game is gone, AI move dropped")
		return
	}

	if err != nil {
		log.Errorw("failed to reload game", "error", err)
		return
	}

	if game.Round != round || !game.Thinking {
		log.Infow("game moved on, AI move dropped", "current_round", game.Round)
		return
	}

	if moveErr != nil {
		log.Errorw("failed to choose AI move", "error", moveErr)
		game.Thinking = false
	} else if err = that.controller.ApplyAIMove(game, result); err != nil {
		log.Errorw("failed to apply AI move", "error", err)
	}

	if game.IsFinished() {
		that.recordResult(ctx, game)
	}

	if err = that.saveGame(ctx, game); err != nil {
		log.Errorw("failed to save game after AI move", "error", err)
	}
}

// isStaleTurn reports a thinking flag that no AI turn can still clear, as left by a crash mid-turn.
func (that *GameManager) isStaleTurn(game *entity.Game) bool {
	return game.Thinking && that.now().Sub(game.UpdatedAt) > staleTurnFactor*that.aiTimeout
}

func (that *GameManager) releaseStaleTurn(ctx context.Context, id string) (*entity.Game, error) {
	unlock := that.locks.lock(id)
	defer unlock()

	game, err := that.getGameByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !that.isStaleTurn(game) {
		return game, nil
	}

	that.logger.Warnw("releasing abandoned AI turn", "game_id", id, "round", game.Round, "updated_at", game.UpdatedAt)

	game.Thinking = false
	game.UpdatedAt = that.now()

	if err = that.saveGame(ctx, game); err != nil {
		return nil, err
	}

	return game, nil
}

func (that *GameManager) createGame(ctx context.Context) (*entity.Game, error) {
	game := entity.NewGame(uuid.NewString())
	game.UpdatedAt = that.now()

	if err := that.saveGame(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	return game, nil
}

func (that *GameManager) getGameByID(ctx context.Context, id string) (*entity.Game, error) {
	game, err := that.gameRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return game, nil
}

func (that *GameManager) saveGame(ctx context.Context, game *entity.Game) error {
	if err := that.gameRepo.CreateOrUpdate(ctx, game); err != nil {
		return fmt.Errorf("failed to update game: %w", err)
	}

	that.publisher.Publish(game)

	return nil
}

// recordResult stores the finished round. The caller only reaches it on the move that ended the game.
func (that *GameManager) recordResult(ctx context.Context, game *entity.Game) {
	log := that.logger.With("method", "recordResult", "game_id", game.ID)

	that.metrics.GameFinished(game.Mode, game.Winner)

	record := &entity.GameRecord{
		GameID:      game.ID,
		Round:       game.Round,
		Mode:        game.Mode,
		Winner:      game.Winner,
		WinningLine: joinLine(game.WinningLine),
		Marks:       game.Board.Marks(),
		FinishedAt:  that.now(),
	}

	if err := that.resultRepo.Save(ctx, record); err != nil {
		log.Errorw("failed to record game result", "error", err)
	}
}

func joinLine(line []int) string {
	parts := make([]string, len(line))
	for i, cell := range line {
		parts[i] = strconv.Itoa(cell)
	}

	return strings.Join(parts, ",")
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, apperror.ErrCellOccupied):
		return "occupied"
	case errors.Is(err, apperror.ErrGameFinished):
		return "finished"
	case errors.Is(err, apperror.ErrAIThinking):
		return "thinking"
	case errors.Is(err, apperror.ErrNotYourTurn):
		return "not_your_turn"
	case errors.Is(err, apperror.ErrInvalidCell):
		return "invalid_cell"
	default:
		return "other"
	}
}
