package service

import (
	"context"
	"errors"
	"math/rand"

	"go.uber.org/zap"

	"github.com/rocketscienceinc/tictactoe-ai/internal/entity"
	"github.com/rocketscienceinc/tictactoe-ai/internal/metrics"
)

const FallbackComment = "I'm having trouble thinking... random move!"

var (
	ErrNoAvailableMoves = errors.New("no available moves")
	ErrNoSuggester      = errors.New("remote move service is not configured")
)

type moveSuggester interface {
	SuggestMove(ctx context.Context, board entity.Board, aiMark string) (entity.MoveResult, error)
}

// BotService picks the AI move: the remote suggestion when it works, a random open cell otherwise.
type BotService struct {
	logger    *zap.SugaredLogger
	suggester moveSuggester
	metrics   *metrics.Metrics
	intn      func(n int) int
}

// NewBotService accepts a nil suggester; every move is then a random one.
func NewBotService(logger *zap.SugaredLogger, suggester moveSuggester, m *metrics.Metrics) *BotService {
	return &BotService{
		logger:    logger.With("component", "bot"),
		suggester: suggester,
		metrics:   m,
		intn:      rand.Intn, //nolint: gosec // it's ok
	}
}

func (that *BotService) ChooseMove(ctx context.Context, board entity.Board, aiMark string) (entity.MoveResult, error) {
	log := that.logger.With("method", "ChooseMove")

	availableCells := board.EmptyCells()
	if len(availableCells) == 0 {
		return entity.MoveResult{}, ErrNoAvailableMoves
	}

	result, err := that.suggest(ctx, board, aiMark)
	if err == nil {
		that.metrics.AIMove(metrics.SourceRemote)
		return result, nil
	}

	if errors.Is(err, ErrNoSuggester) {
		log.Debugw("no remote move service, playing a random cell")
	} else {
		log.Errorw("AI move failed, playing a random cell", "error", err)
	}
	that.metrics.AIMove(metrics.SourceFallback)

	return entity.MoveResult{
		Index:   availableCells[that.intn(len(availableCells))],
		Comment: FallbackComment,
	}, nil
}

func (that *BotService) suggest(ctx context.Context, board entity.Board, aiMark string) (entity.MoveResult, error) {
	if that.suggester == nil {
		return entity.MoveResult{}, ErrNoSuggester
	}

	return that.suggester.SuggestMove(ctx, board, aiMark)
}
