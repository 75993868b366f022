package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
)

type gameRepo interface {
	CreateOrUpdate(ctx context.Context, game *entity.Snapshot) error
	GetByID(ctx context.Context, id string) (*entity.Snapshot, error)
}

type gameEngine interface {
	Reset()
	MakeMove(index int) (entity.Marker, bool)
	Board() entity.Board
	GameState() entity.GameState
	OnGameStateChange(callback func(entity.GameState))
	Snapshot() entity.Snapshot
	Restore(snapshot entity.Snapshot) error
}

// GameSession - a game bound to a session ID. Every accepted move and every reset
// is stored, so the session can be resumed later. Without a repository the session
// lives in memory only.
type GameSession struct {
	logger *slog.Logger
	id     string

	engine   gameEngine
	gameRepo gameRepo
}

func NewGameSession(logger *slog.Logger, id string, engine gameEngine, gameRepo gameRepo) *GameSession {
	return &GameSession{
		logger: logger.With("component", "session", "session_id", id),
		id:     id,

		engine:   engine,
		gameRepo: gameRepo,
	}
}

func (that *GameSession) ID() string {
	return that.id
}

// Start - resumes the stored game of the session or starts a new one.
func (that *GameSession) Start(ctx context.Context) error {
	if that.gameRepo == nil {
		that.engine.Reset()
		return nil
	}

	game, err := that.gameRepo.GetByID(ctx, that.id)
	if errors.Is(err, apperror.ErrGameNotFound) {
		that.logger.Info("no stored game, starting a new one")
		return that.Reset(ctx)
	}

	if err != nil {
		return fmt.Errorf("failed get game by id: %w", err)
	}

	if err = that.engine.Restore(*game); err != nil {
		if !errors.Is(err, apperror.ErrInvalidSnapshot) {
			return fmt.Errorf("failed restore game: %w", err)
		}

		that.logger.Warn("stored game is invalid, starting a new one", "error", err)
		return that.Reset(ctx)
	}

	that.logger.Info("game resumed", "status", game.State.Status)

	return nil
}

// MakeMove - plays the cell for the current player. A rejected move returns false
// and stores nothing.
func (that *GameSession) MakeMove(ctx context.Context, index int) (entity.Marker, bool, error) {
	marker, ok := that.engine.MakeMove(index)
	if !ok {
		return entity.EmptyCell, false, nil
	}

	if err := that.save(ctx); err != nil {
		return marker, true, fmt.Errorf("failed save move: %w", err)
	}

	return marker, true, nil
}

func (that *GameSession) Reset(ctx context.Context) error {
	that.engine.Reset()

	if err := that.save(ctx); err != nil {
		return fmt.Errorf("failed save reset: %w", err)
	}

	return nil
}

func (that *GameSession) Board() entity.Board {
	return that.engine.Board()
}

func (that *GameSession) GameState() entity.GameState {
	return that.engine.GameState()
}

func (that *GameSession) OnGameStateChange(callback func(entity.GameState)) {
	that.engine.OnGameStateChange(callback)
}

func (that *GameSession) save(ctx context.Context) error {
	if that.gameRepo == nil {
		return nil
	}

	game := that.engine.Snapshot()
	game.ID = that.id

	if err := that.gameRepo.CreateOrUpdate(ctx, &game); err != nil {
		return fmt.Errorf("failed update game: %w", err)
	}

	return nil
}
