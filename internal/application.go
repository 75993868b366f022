package application

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/rocketscienceinc/tictactoe-engine/internal/config"
	"github.com/rocketscienceinc/tictactoe-engine/internal/console"
	"github.com/rocketscienceinc/tictactoe-engine/internal/repository"
	"github.com/rocketscienceinc/tictactoe-engine/internal/repository/storage"
	"github.com/rocketscienceinc/tictactoe-engine/internal/tictactoe"
	"github.com/rocketscienceinc/tictactoe-engine/internal/usecase"
)

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)
	go func() {
		select {
		case sig := <-sigs:
			log.Info("Received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	sessionID := conf.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	var gameRepo repository.GameRepository
	if conf.Redis.Enabled {
		redisStorage, err := storage.NewRedisStorage(ctx, conf.Redis.GetRedisAddr())
		if err != nil {
			return fmt.Errorf("could not connect to redis storage: %w", err)
		}

		defer func() {
			if err = redisStorage.Close(); err != nil {
				log.Error("could not close redis storage", "error", err)
			}
		}()

		gameRepo = repository.NewGameRepository(redisStorage.Connection)
	}

	gameController := tictactoe.NewGameController(logger)
	session := usecase.NewGameSession(logger, sessionID, gameController, gameRepo)
	shell := console.New(logger, session, os.Stdin, os.Stdout, !conf.NoColor)

	if err := session.Start(ctx); err != nil {
		return fmt.Errorf("could not start session: %w", err)
	}

	log.Info("Session started", "session_id", sessionID, "persistent", gameRepo != nil)

	if err := shell.Run(ctx); err != nil {
		return fmt.Errorf("console error: %w", err)
	}

	return nil
}
