package tictactoe

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
)

// GameController - owns the board, the player to move and the game state.
//
// All methods are safe to call from several goroutines. The state change callback
// runs synchronously in the calling goroutine, after the controller lock is
// released, so it may read the controller back.
type GameController struct {
	logger *slog.Logger

	mu            sync.Mutex
	board         entity.Board
	currentPlayer entity.Player
	state         entity.GameState

	onGameStateChange func(entity.GameState)
}

func NewGameController(logger *slog.Logger) *GameController {
	controller := &GameController{
		logger: logger.With("component", "tictactoe"),
		state:  entity.InProgress(),
	}

	controller.Reset()

	return controller
}

// OnGameStateChange - registers the single state change subscriber, replacing any
// previous one. A nil callback unsubscribes.
func (that *GameController) OnGameStateChange(callback func(entity.GameState)) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.onGameStateChange = callback
}

// Reset - empties the board, sets the state to in progress and gives the turn to X.
func (that *GameController) Reset() {
	that.mu.Lock()

	for i := range that.board {
		that.board[i] = entity.EmptyCell
	}
	that.currentPlayer = entity.PlayerX
	changed := that.setState(entity.InProgress())

	that.unlockAndNotify(changed)
}

// MakeMove - places the current player's marker at index. It returns the placed
// marker and true, or EmptyCell and false when the move was rejected.
func (that *GameController) MakeMove(index int) (entity.Marker, bool) {
	that.mu.Lock()

	if err := that.validateMove(index); err != nil {
		player := that.currentPlayer
		that.mu.Unlock()

		that.logger.Debug("move rejected", "cell", index, "player", player, "error", err)
		return entity.EmptyCell, false
	}

	placed := that.currentPlayer.Marker()
	that.board[index] = placed

	changed := that.setState(EvaluateBoard(that.board[:], entity.SideLength))

	if that.state.IsInProgress() {
		that.currentPlayer = that.currentPlayer.Opponent()
	}

	that.unlockAndNotify(changed)

	return placed, true
}

// Board - returns a copy of the board.
func (that *GameController) Board() entity.Board {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.board
}

func (that *GameController) CurrentPlayer() entity.Player {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.currentPlayer
}

func (that *GameController) GameState() entity.GameState {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.state.Clone()
}

// Snapshot - returns the current game without an ID.
func (that *GameController) Snapshot() entity.Snapshot {
	that.mu.Lock()
	defer that.mu.Unlock()

	return entity.Snapshot{
		Board:         that.board,
		CurrentPlayer: that.currentPlayer,
		State:         that.state.Clone(),
	}
}

// Restore - replaces the current game with the snapshot. The snapshot must describe
// a position reachable by alternating moves from an empty board, otherwise
// apperror.ErrInvalidSnapshot is returned and nothing changes.
func (that *GameController) Restore(snapshot entity.Snapshot) error {
	state, err := validateSnapshot(snapshot)
	if err != nil {
		return fmt.Errorf("could not restore game: %w", err)
	}

	that.mu.Lock()

	that.board = snapshot.Board
	that.currentPlayer = snapshot.CurrentPlayer
	changed := that.setState(state)

	that.unlockAndNotify(changed)

	return nil
}

// validateMove - checks if the move is valid. Must be called with the lock held.
func (that *GameController) validateMove(cell int) error {
	if that.state.IsTerminal() {
		return apperror.ErrGameFinished
	}

	if cell < 0 || cell >= len(that.board) {
		return fmt.Errorf("%w: cell %d", apperror.ErrInvalidCell, cell)
	}

	if that.board[cell] != entity.EmptyCell {
		return fmt.Errorf("%w: cell %d", apperror.ErrCellOccupied, cell)
	}

	return nil
}

// setState - stores the new state and reports whether it differs from the old one.
// Must be called with the lock held.
func (that *GameController) setState(state entity.GameState) bool {
	if that.state.Equal(state) {
		return false
	}

	that.logger.Info("game state changed", "from", that.state.Status, "to", state.Status, "winning_cells", state.WinningCells)
	that.state = state

	return true
}

// unlockAndNotify - releases the lock and, if the state changed, hands the new
// state to the subscriber.
func (that *GameController) unlockAndNotify(changed bool) {
	state, callback := that.state.Clone(), that.onGameStateChange
	that.mu.Unlock()

	if changed && callback != nil {
		callback(state)
	}
}

func validateSnapshot(snapshot entity.Snapshot) (entity.GameState, error) {
	for i, cell := range snapshot.Board {
		if !cell.IsValid() {
			return entity.GameState{}, fmt.Errorf("%w: unknown marker %q at cell %d", apperror.ErrInvalidSnapshot, cell, i)
		}
	}

	if !snapshot.CurrentPlayer.IsValid() {
		return entity.GameState{}, fmt.Errorf("%w: unknown player %q", apperror.ErrInvalidSnapshot, snapshot.CurrentPlayer)
	}

	var toMove entity.Player
	switch xCount, oCount := snapshot.Board.Count(entity.MarkX), snapshot.Board.Count(entity.MarkO); xCount - oCount {
	case 0:
		toMove = entity.PlayerX
	case 1:
		toMove = entity.PlayerO
	default:
		return entity.GameState{}, fmt.Errorf("%w: %d X and %d O markers", apperror.ErrInvalidSnapshot, xCount, oCount)
	}

	state := EvaluateBoard(snapshot.Board[:], entity.SideLength)
	if !state.Equal(snapshot.State) {
		return entity.GameState{}, fmt.Errorf("%w: stored state %q does not match the board", apperror.ErrInvalidSnapshot, snapshot.State.Status)
	}

	// the player who ends the game keeps the turn
	expected := toMove
	if state.IsTerminal() {
		expected = toMove.Opponent()
	}

	if snapshot.CurrentPlayer != expected {
		return entity.GameState{}, fmt.Errorf("%w: expected %s to move, got %s", apperror.ErrInvalidSnapshot, expected, snapshot.CurrentPlayer)
	}

	return state, nil
}
