package application

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/rocketscienceinc/tictactoe-ai/internal/config"
	"github.com/rocketscienceinc/tictactoe-ai/internal/gemini"
	"github.com/rocketscienceinc/tictactoe-ai/internal/metrics"
	"github.com/rocketscienceinc/tictactoe-ai/internal/repository"
	"github.com/rocketscienceinc/tictactoe-ai/internal/repository/storage"
	"github.com/rocketscienceinc/tictactoe-ai/internal/repository/storage/sqlite"
	"github.com/rocketscienceinc/tictactoe-ai/internal/service"
	"github.com/rocketscienceinc/tictactoe-ai/internal/tictactoe"
	"github.com/rocketscienceinc/tictactoe-ai/internal/usecase"
	"github.com/rocketscienceinc/tictactoe-ai/transport/rest"
	"github.com/rocketscienceinc/tictactoe-ai/transport/websocket"
)

var ErrAddrNotFound = errors.New("redis address string is empty")

// RunApp - runs the application until SIGINT or SIGTERM.
func RunApp(logger *zap.SugaredLogger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Infow("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	if conf.Redis.Host == "" {
		return ErrAddrNotFound
	}

	redisStorage, err := storage.NewRedis(ctx, conf.Redis.GetRedisAddr())
	if err != nil {
		return fmt.Errorf("could not connect to redis storage: %w", err)
	}

	defer func() {
		if err = redisStorage.Close(); err != nil {
			log.Errorw("could not close redis storage", "error", err)
		}
	}()

	sqliteStorage, err := sqlite.New(conf.SQLiteStoragePath, logger.Desugar())
	if err != nil {
		return fmt.Errorf("could not open sqlite storage: %w", err)
	}

	defer func() {
		if err = sqliteStorage.Close(); err != nil {
			log.Errorw("could not close sqlite storage", "error", err)
		}
	}()

	if err = sqliteStorage.Init(ctx); err != nil {
		return fmt.Errorf("could not init sqlite storage: %w", err)
	}

	appMetrics := metrics.New()

	bot, err := NewBot(ctx, logger, conf, appMetrics)
	if err != nil {
		return err
	}

	hub := websocket.NewHub(logger)
	defer hub.Close()

	gameRepo := repository.NewGameRepository(redisStorage, conf.SessionTTL)
	resultRepo := repository.NewResultRepository(sqliteStorage.Connection)
	gameController := tictactoe.NewGameController(bot)
	gameUseCase := usecase.NewGameManager(
		logger, gameRepo, resultRepo, gameController, bot, hub, appMetrics, conf.Gemini.Timeout,
	)
	defer gameUseCase.Wait()

	server := rest.New(logger, gameUseCase, hub, appMetrics.Handler(), conf.SessionTTL, ModelName(conf))

	log.Infow("Starting HTTP server", "port", conf.HTTPPort)
	if err = server.Start(ctx, conf.HTTPPort); err != nil {
		return fmt.Errorf("HTTP server error: %w", err)
	}

	log.Infow("Application context canceled, shutting down")

	return nil
}

// NewBot wires the move provider. Without an API key every AI move is a random one.
func NewBot(ctx context.Context, logger *zap.SugaredLogger, conf *config.Config, m *metrics.Metrics) (*service.BotService, error) {
	if !conf.Gemini.Enabled() {
		logger.Warnw("API_KEY is not set, the AI will play random moves")
		return service.NewBotService(logger, nil, m), nil
	}

	client, err := gemini.New(ctx, conf.Gemini.APIKey, conf.Gemini.Model)
	if err != nil {
		return nil, fmt.Errorf("could not create gemini client: %w", err)
	}

	return service.NewBotService(logger, client, m), nil
}

// ModelName is what the page shows as the opponent.
func ModelName(conf *config.Config) string {
	if !conf.Gemini.Enabled() {
		return "random moves"
	}

	return conf.Gemini.Model
}
