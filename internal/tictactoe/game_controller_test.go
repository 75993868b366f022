package tictactoe

import (
	"io"
	"log/slog"
	"testing"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestController(t *testing.T) *GameController {
	t.Helper()

	return NewGameController(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// play - makes the moves in order and fails the test if one is rejected.
func play(t *testing.T, controller *GameController, cells ...int) {
	t.Helper()

	for _, cell := range cells {
		_, ok := controller.MakeMove(cell)
		require.True(t, ok, "move to cell %d was rejected", cell)
	}
}

// recordStates - subscribes to state changes and returns the received states.
func recordStates(controller *GameController) *[]entity.GameState {
	states := &[]entity.GameState{}
	controller.OnGameStateChange(func(state entity.GameState) {
		*states = append(*states, state)
	})
	return states
}

func TestNewGameController(t *testing.T) {
	// When: a new controller is created
	controller := newTestController(t)

	// Then: the board is empty, the game is in progress and X moves first
	assert.Equal(t, entity.Board{}, controller.Board())
	assert.Equal(t, entity.InProgress(), controller.GameState())
	assert.Equal(t, entity.PlayerX, controller.CurrentPlayer())

	marker, ok := controller.MakeMove(4)
	require.True(t, ok)
	assert.Equal(t, entity.MarkX, marker)
}

func TestGameController_MakeMove(t *testing.T) {
	t.Run("Players alternate", func(t *testing.T) {
		// Given: a new game
		controller := newTestController(t)

		// When: four moves are made
		var placed []entity.Marker
		for _, cell := range []int{0, 4, 8, 2} {
			marker, ok := controller.MakeMove(cell)
			require.True(t, ok)
			placed = append(placed, marker)
		}

		// Then: the markers alternate starting with X
		assert.Equal(t, []entity.Marker{entity.MarkX, entity.MarkO, entity.MarkX, entity.MarkO}, placed)
		assert.Equal(t, entity.PlayerX, controller.CurrentPlayer())
		assert.Equal(t, entity.Board{
			entity.MarkX, "", entity.MarkO,
			"", entity.MarkO, "",
			"", "", entity.MarkX,
		}, controller.Board())
	})

	t.Run("Row win", func(t *testing.T) {
		// Given: a new game
		controller := newTestController(t)

		// When: X completes the first row
		play(t, controller, 0, 3, 1, 4, 2)

		// Then: X wins with cells 0, 1, 2
		assert.Equal(t, entity.Win(entity.MarkX, []int{0, 1, 2}), controller.GameState())
	})

	t.Run("Column win", func(t *testing.T) {
		// Given: a new game
		controller := newTestController(t)

		// When: X completes the first column
		play(t, controller, 0, 1, 3, 2, 6)

		// Then: X wins with cells 0, 3, 6
		assert.Equal(t, entity.Win(entity.MarkX, []int{0, 3, 6}), controller.GameState())
	})

	t.Run("Main diagonal win", func(t *testing.T) {
		// Given: a new game
		controller := newTestController(t)

		// When: X completes the main diagonal
		play(t, controller, 0, 1, 4, 2, 8)

		// Then: X wins with cells 0, 4, 8
		assert.Equal(t, entity.Win(entity.MarkX, []int{0, 4, 8}), controller.GameState())
	})

	t.Run("Anti-diagonal win", func(t *testing.T) {
		// Given: a new game
		controller := newTestController(t)

		// When: X completes the anti-diagonal
		play(t, controller, 2, 0, 4, 1, 6)

		// Then: X wins with cells 2, 4, 6
		assert.Equal(t, entity.Win(entity.MarkX, []int{2, 4, 6}), controller.GameState())
	})

	t.Run("O wins", func(t *testing.T) {
		// Given: a new game
		controller := newTestController(t)

		// When: O completes the middle row
		play(t, controller, 0, 3, 1, 4, 8, 5)

		// Then: O wins and keeps the turn
		assert.Equal(t, entity.Win(entity.MarkO, []int{3, 4, 5}), controller.GameState())
		assert.Equal(t, entity.PlayerO, controller.CurrentPlayer())
	})

	t.Run("Tie", func(t *testing.T) {
		// Given: a new game
		controller := newTestController(t)

		// When: the board is filled without a line
		play(t, controller, 0, 1, 2, 4, 3, 5, 7, 6, 8)

		// Then: the game is a tie
		assert.Equal(t, entity.Tie(), controller.GameState())
	})

	t.Run("Win on the last cell is not a tie", func(t *testing.T) {
		// Given: a new game
		controller := newTestController(t)

		// When: X completes the first column with the ninth move
		play(t, controller, 0, 1, 2, 4, 3, 5, 7, 8, 6)

		// Then: X wins
		assert.Equal(t, entity.Win(entity.MarkX, []int{0, 3, 6}), controller.GameState())
	})

	t.Run("Winning move does not switch the player", func(t *testing.T) {
		// Given: a new game
		controller := newTestController(t)

		// When: X wins
		play(t, controller, 0, 3, 1, 4)
		marker, ok := controller.MakeMove(2)

		// Then: the placed marker is returned and X keeps the turn
		require.True(t, ok)
		assert.Equal(t, entity.MarkX, marker)
		assert.Equal(t, entity.PlayerX, controller.CurrentPlayer())
	})
}

func TestGameController_MakeMoveRejected(t *testing.T) {
	t.Run("Occupied cell", func(t *testing.T) {
		// Given: X played cell 0
		controller := newTestController(t)
		play(t, controller, 0)
		before := controller.Snapshot()

		// When: O tries the same cell
		marker, ok := controller.MakeMove(0)

		// Then: no move is made and nothing changes
		assert.False(t, ok)
		assert.Equal(t, entity.EmptyCell, marker)
		assert.Equal(t, before, controller.Snapshot())
	})

	t.Run("After a win", func(t *testing.T) {
		// Given: X has won
		controller := newTestController(t)
		play(t, controller, 0, 3, 1, 4, 2)
		before := controller.Snapshot()

		// When: a move is made on a free cell
		marker, ok := controller.MakeMove(8)

		// Then: no move is made and nothing changes
		assert.False(t, ok)
		assert.Equal(t, entity.EmptyCell, marker)
		assert.Equal(t, before, controller.Snapshot())
	})

	t.Run("After a tie", func(t *testing.T) {
		// Given: the game is a tie
		controller := newTestController(t)
		play(t, controller, 0, 1, 2, 4, 3, 5, 7, 6, 8)

		// When: any cell is played
		_, ok := controller.MakeMove(4)

		// Then: no move is made
		assert.False(t, ok)
		assert.Equal(t, entity.Tie(), controller.GameState())
	})

	t.Run("Out of range cells", func(t *testing.T) {
		// Given: a new game
		controller := newTestController(t)
		before := controller.Snapshot()

		for _, cell := range []int{-1, entity.NumSquares, 20} {
			// When: a cell outside of the board is played
			_, ok := controller.MakeMove(cell)

			// Then: no move is made and nothing changes
			assert.False(t, ok, "cell %d", cell)
			assert.Equal(t, before, controller.Snapshot())
		}
	})
}

func TestGameController_Reset(t *testing.T) {
	// Given: a finished game
	controller := newTestController(t)
	play(t, controller, 0, 3, 1, 4, 2)

	// When: the game is reset
	controller.Reset()

	// Then: the game starts over with X
	assert.Equal(t, entity.Board{}, controller.Board())
	assert.Equal(t, entity.InProgress(), controller.GameState())
	assert.Equal(t, entity.PlayerX, controller.CurrentPlayer())

	marker, ok := controller.MakeMove(3)
	require.True(t, ok)
	assert.Equal(t, entity.MarkX, marker)
}

func TestGameController_OnGameStateChange(t *testing.T) {
	t.Run("Ordinary moves do not notify", func(t *testing.T) {
		// Given: a subscribed new game
		controller := newTestController(t)
		states := recordStates(controller)

		// When: moves that do not end the game are made
		play(t, controller, 0, 3, 1, 4)

		// Then: no notification is sent
		assert.Empty(t, *states)
	})

	t.Run("Winning move notifies once", func(t *testing.T) {
		// Given: a subscribed new game
		controller := newTestController(t)
		states := recordStates(controller)

		// When: X wins and a rejected move follows
		play(t, controller, 0, 3, 1, 4, 2)
		controller.MakeMove(8)

		// Then: exactly one notification with the win is sent
		assert.Equal(t, []entity.GameState{entity.Win(entity.MarkX, []int{0, 1, 2})}, *states)
	})

	t.Run("Tie notifies once", func(t *testing.T) {
		// Given: a subscribed new game
		controller := newTestController(t)
		states := recordStates(controller)

		// When: the game ends in a tie
		play(t, controller, 0, 1, 2, 4, 3, 5, 7, 6, 8)

		// Then: exactly one notification with the tie is sent
		assert.Equal(t, []entity.GameState{entity.Tie()}, *states)
	})

	t.Run("Reset notifies only when the state changes", func(t *testing.T) {
		// Given: a subscribed game in progress
		controller := newTestController(t)
		states := recordStates(controller)
		play(t, controller, 0)

		// When: the game in progress is reset
		controller.Reset()

		// Then: no notification is sent
		assert.Empty(t, *states)

		// When: a finished game is reset
		play(t, controller, 0, 3, 1, 4, 2)
		controller.Reset()

		// Then: the win and the return to in progress are notified
		assert.Equal(t, []entity.GameState{
			entity.Win(entity.MarkX, []int{0, 1, 2}),
			entity.InProgress(),
		}, *states)
	})

	t.Run("Subscriber can read the controller", func(t *testing.T) {
		// Given: a subscriber that reads the board back
		controller := newTestController(t)
		var board entity.Board
		var state entity.GameState
		controller.OnGameStateChange(func(entity.GameState) {
			board = controller.Board()
			state = controller.GameState()
		})

		// When: X wins
		play(t, controller, 0, 3, 1, 4, 2)

		// Then: the subscriber sees the final board
		assert.Equal(t, entity.MarkX, board[2])
		assert.Equal(t, entity.StatusXWin, state.Status)
	})

	t.Run("Only the last subscriber is notified", func(t *testing.T) {
		// Given: two subscriptions in a row
		controller := newTestController(t)
		first := recordStates(controller)
		second := recordStates(controller)

		// When: X wins
		play(t, controller, 0, 3, 1, 4, 2)

		// Then: only the second subscriber received the state
		assert.Empty(t, *first)
		assert.Len(t, *second, 1)
	})
}

func TestGameController_Board(t *testing.T) {
	// Given: a game with one move
	controller := newTestController(t)
	play(t, controller, 4)

	// When: the returned board is modified
	board := controller.Board()
	board[0] = entity.MarkO

	// Then: the game board is untouched
	assert.Equal(t, entity.EmptyCell, controller.Board()[0])
}

func TestGameController_Restore(t *testing.T) {
	t.Run("Restores a game in progress", func(t *testing.T) {
		// Given: a snapshot of a game in progress
		source := newTestController(t)
		play(t, source, 0, 4, 8)
		snapshot := source.Snapshot()

		// When: it is restored into a new controller
		controller := newTestController(t)
		err := controller.Restore(snapshot)

		// Then: the game continues with O
		require.NoError(t, err)
		assert.Equal(t, snapshot.Board, controller.Board())
		assert.Equal(t, entity.PlayerO, controller.CurrentPlayer())

		marker, ok := controller.MakeMove(2)
		require.True(t, ok)
		assert.Equal(t, entity.MarkO, marker)
	})

	t.Run("Restoring a finished game notifies", func(t *testing.T) {
		// Given: a snapshot of a game O has won
		source := newTestController(t)
		play(t, source, 0, 3, 1, 4, 8, 5)
		snapshot := source.Snapshot()

		controller := newTestController(t)
		states := recordStates(controller)

		// When: it is restored
		err := controller.Restore(snapshot)

		// Then: the win is notified and moves are rejected
		require.NoError(t, err)
		assert.Equal(t, []entity.GameState{entity.Win(entity.MarkO, []int{3, 4, 5})}, *states)

		_, ok := controller.MakeMove(2)
		assert.False(t, ok)
	})

	invalid := map[string]entity.Snapshot{
		"unknown marker": {
			Board:         entity.Board{"Z"},
			CurrentPlayer: entity.PlayerX,
			State:         entity.InProgress(),
		},
		"unknown player": {
			CurrentPlayer: "Z",
			State:         entity.InProgress(),
		},
		"too many X markers": {
			Board:         entity.Board{entity.MarkX, entity.MarkX},
			CurrentPlayer: entity.PlayerO,
			State:         entity.InProgress(),
		},
		"state does not match the board": {
			Board:         entity.Board{entity.MarkX},
			CurrentPlayer: entity.PlayerO,
			State:         entity.Tie(),
		},
		"wrong player to move": {
			Board:         entity.Board{entity.MarkX},
			CurrentPlayer: entity.PlayerX,
			State:         entity.InProgress(),
		},
	}

	for name, snapshot := range invalid {
		t.Run("Rejects "+name, func(t *testing.T) {
			// Given: a game in progress
			controller := newTestController(t)
			play(t, controller, 4)
			before := controller.Snapshot()

			// When: an invalid snapshot is restored
			err := controller.Restore(snapshot)

			// Then: ErrInvalidSnapshot is returned and nothing changes
			require.ErrorIs(t, err, apperror.ErrInvalidSnapshot)
			assert.Equal(t, before, controller.Snapshot())
		})
	}
}
