package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/muesli/termenv"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
)

const (
	bannerInProgress = "GAME ON"
	bannerXWins      = "X WINS"
	bannerOWins      = "O WINS"
	bannerTie        = "TIE"
	resetAffordance  = "RESET?"
)

type game interface {
	MakeMove(ctx context.Context, index int) (entity.Marker, bool, error)
	Reset(ctx context.Context) error
	Board() entity.Board
	GameState() entity.GameState
	OnGameStateChange(callback func(entity.GameState))
}

// Console - renders the board in a terminal and forwards typed cells to the game.
type Console struct {
	logger *slog.Logger
	game   game

	in     io.Reader
	out    io.Writer
	output *termenv.Output
	color  bool

	banner    string
	winning   map[int]bool
	showReset bool
}

func New(logger *slog.Logger, game game, in io.Reader, out io.Writer, color bool) *Console {
	profile := termenv.Ascii
	if color {
		profile = termenv.ANSI
	}

	console := &Console{
		logger: logger.With("component", "console"),
		game:   game,

		in:     in,
		out:    out,
		output: termenv.NewOutput(out, termenv.WithProfile(profile)),
		color:  color,
	}

	console.applyState(game.GameState())
	game.OnGameStateChange(console.applyState)

	return console
}

// Run - reads commands until quit, end of input or context cancellation.
func (that *Console) Run(ctx context.Context) error {
	var scanErr error
	lines := make(chan string)

	go func() {
		defer close(lines)

		scanner := bufio.NewScanner(that.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr = scanner.Err()
	}()

	that.render()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				if scanErr != nil {
					return fmt.Errorf("failed to read input: %w", scanErr)
				}
				return nil
			}

			if quit := that.handle(ctx, line); quit {
				return nil
			}

			that.render()
		}
	}
}

// handle - runs a single command and reports whether the console should stop.
func (that *Console) handle(ctx context.Context, line string) bool {
	fields := strings.Fields(strings.ToLower(line))

	switch {
	case len(fields) == 0:
		return false
	case fields[0] == "quit" || fields[0] == "q" || fields[0] == "exit":
		return true
	case fields[0] == "reset" || fields[0] == "r":
		if err := that.game.Reset(ctx); err != nil {
			that.logger.Error("could not save reset", "error", err)
		}
		return false
	}

	index, err := parseCell(fields)
	if err != nil {
		fmt.Fprintf(that.out, "%v: enter a cell 0-%d, a row and a column, reset or quit\n", err, entity.NumSquares-1)
		return false
	}

	_, ok, err := that.game.MakeMove(ctx, index)
	if err != nil {
		that.logger.Error("could not save move", "cell", index, "error", err)
	}

	if !ok {
		fmt.Fprintf(that.out, "cell %d is not available\n", index)
	}

	return false
}

// applyState - updates the banner, the highlighted line and the reset affordance.
func (that *Console) applyState(state entity.GameState) {
	that.winning = make(map[int]bool, len(state.WinningCells))
	for _, cell := range state.WinningCells {
		that.winning[cell] = true
	}

	switch state.Status {
	case entity.StatusXWin:
		that.banner = bannerXWins
	case entity.StatusOWin:
		that.banner = bannerOWins
	case entity.StatusTie:
		that.banner = bannerTie
	default:
		that.banner = bannerInProgress
	}

	that.showReset = state.IsTerminal()
}

func (that *Console) render() {
	board := that.game.Board()

	var sb strings.Builder
	for row := 0; row < entity.SideLength; row++ {
		if row > 0 {
			sb.WriteString(strings.Repeat("---+", entity.SideLength-1) + "---\n")
		}

		cells := make([]string, 0, entity.SideLength)
		for col := 0; col < entity.SideLength; col++ {
			cells = append(cells, " "+that.cell(entity.Index(row, col), board)+" ")
		}
		sb.WriteString(strings.Join(cells, "|") + "\n")
	}

	sb.WriteString("\n" + that.style(that.banner, false) + "\n")
	if that.showReset {
		sb.WriteString(that.style(resetAffordance, false) + " type reset to play again\n")
	}
	sb.WriteString("> ")

	_, _ = io.WriteString(that.out, sb.String())
}

func (that *Console) cell(index int, board entity.Board) string {
	marker := board[index]
	if marker == entity.EmptyCell {
		if !that.color {
			return strconv.Itoa(index)
		}
		return that.output.String(strconv.Itoa(index)).Faint().String()
	}

	return that.style(string(marker), that.winning[index])
}

func (that *Console) style(text string, highlight bool) string {
	if !that.color {
		return text
	}

	styled := that.output.String(text).Bold()
	if highlight {
		styled = styled.Foreground(termenv.ANSIRed)
	}

	return styled.String()
}

// parseCell - accepts a cell index or a row and a column.
func parseCell(fields []string) (int, error) {
	numbers := make([]int, 0, len(fields))
	for _, field := range fields {
		number, err := strconv.Atoi(field)
		if err != nil {
			return 0, fmt.Errorf("unknown command %q", strings.Join(fields, " "))
		}
		numbers = append(numbers, number)
	}

	switch len(numbers) {
	case 1:
		return numbers[0], nil
	case 2:
		row, col := numbers[0], numbers[1]
		if row < 0 || row >= entity.SideLength || col < 0 || col >= entity.SideLength {
			return 0, fmt.Errorf("row and column must be between 0 and %d", entity.SideLength-1)
		}
		return entity.Index(row, col), nil
	default:
		return 0, fmt.Errorf("unknown command %q", strings.Join(fields, " "))
	}
}
