package entity

import "slices"

const (
	SideLength = 3
	NumSquares = SideLength * SideLength
)

// Marker - contents of a single board cell.
type Marker string

const (
	EmptyCell Marker = ""
	MarkX     Marker = "X"
	MarkO     Marker = "O"
)

func (that Marker) IsValid() bool {
	return that == EmptyCell || that == MarkX || that == MarkO
}

// Player - the participant whose turn it is.
type Player string

const (
	PlayerX Player = "X"
	PlayerO Player = "O"
)

func (that Player) IsValid() bool {
	return that == PlayerX || that == PlayerO
}

// Marker - returns the marker the player places.
func (that Player) Marker() Marker {
	if that == PlayerO {
		return MarkO
	}
	return MarkX
}

// Opponent - returns the other player.
func (that Player) Opponent() Player {
	if that == PlayerX {
		return PlayerO
	}
	return PlayerX
}

type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusTie        Status = "tie"
	StatusXWin       Status = "x_win"
	StatusOWin       Status = "o_win"
)

// GameState - one of in progress, tie, X win or O win. Win states carry the
// indices of the completed line.
type GameState struct {
	Status       Status `json:"status"`
	WinningCells []int  `json:"winning_cells,omitempty"`
}

func InProgress() GameState {
	return GameState{Status: StatusInProgress}
}

func Tie() GameState {
	return GameState{Status: StatusTie}
}

// Win - returns the win state of the given marker, cells are copied.
func Win(marker Marker, cells []int) GameState {
	status := StatusXWin
	if marker == MarkO {
		status = StatusOWin
	}

	return GameState{Status: status, WinningCells: slices.Clone(cells)}
}

func (that GameState) IsInProgress() bool {
	return that.Status == StatusInProgress
}

// IsTerminal - no more moves are accepted in a terminal state.
func (that GameState) IsTerminal() bool {
	return !that.IsInProgress()
}

// Winner - returns the winning marker or EmptyCell when nobody has won.
func (that GameState) Winner() Marker {
	switch that.Status {
	case StatusXWin:
		return MarkX
	case StatusOWin:
		return MarkO
	default:
		return EmptyCell
	}
}

// Equal - structural equality: same status and same winning cells in the same order.
func (that GameState) Equal(other GameState) bool {
	return that.Status == other.Status && slices.Equal(that.WinningCells, other.WinningCells)
}

func (that GameState) Clone() GameState {
	return GameState{Status: that.Status, WinningCells: slices.Clone(that.WinningCells)}
}

type Board [NumSquares]Marker

// Index - maps (row, col) to a linear board index.
func Index(row, col int) int {
	return row*SideLength + col%SideLength
}

// IsEmpty - reports whether no cell has been played.
func (that Board) IsEmpty() bool {
	for _, cell := range that {
		if cell != EmptyCell {
			return false
		}
	}
	return true
}

// Count - returns how many cells hold the marker.
func (that Board) Count(marker Marker) int {
	count := 0
	for _, cell := range that {
		if cell == marker {
			count++
		}
	}
	return count
}

// Snapshot - the current game of a session, as stored between runs.
type Snapshot struct {
	ID            string    `json:"id"`
	Board         Board     `json:"board"`
	CurrentPlayer Player    `json:"current_player"`
	State         GameState `json:"state"`
}
