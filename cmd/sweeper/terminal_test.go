package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vancomm/sweeper/internal/clock"
	"github.com/vancomm/sweeper/internal/mines"
)

// newGame returns a 2x3 game with mines at (0, 0) and (1, 2).
func newGame(t *testing.T) (*mines.Game, *clock.Manual) {
	t.Helper()
	clk := clock.NewManual()
	game, err := mines.NewGame(
		mines.GameParams{Rows: 2, Columns: 3, MineCount: 2},
		mines.WithScheduler(clk),
		mines.WithMines(mines.Point{Row: 0, Column: 0}, mines.Point{Row: 1, Column: 2}),
	)
	require.NoError(t, err)
	t.Cleanup(game.Close)
	return game, clk
}

func play(t *testing.T, game *mines.Game, input string) string {
	t.Helper()
	var out bytes.Buffer
	err := newTerminal(strings.NewReader(input), &out, game).run(context.Background())
	require.NoError(t, err)
	return out.String()
}

func TestTerminalWin(t *testing.T) {
	game, clk := newGame(t)
	clk.Advance(2 * time.Second)

	out := play(t, game, "f 0 0\no 0 1\no 0 2\no 1 0\no 1 1\nq\n")

	assert.Equal(t, mines.Won, game.State())
	assert.Contains(t, out, "you won in 2s")
	assert.Contains(t, out, "mines left 1")
	assert.Contains(t, out, "   0 1 2\n0  * 2 1\n1  1 2 x\n")
}

func TestTerminalLoss(t *testing.T) {
	game, _ := newGame(t)

	out := play(t, game, "o 1 2\n")

	assert.Equal(t, mines.Lost, game.State())
	assert.Contains(t, out, "boom!")
	assert.Contains(t, out, "0  x . .\n1  . . X\n")
}

func TestTerminalChordAndReset(t *testing.T) {
	game, _ := newGame(t)

	play(t, game, "o 1 0\nf 0 0\nc 1 0\n")
	assert.True(t, game.Cell(0, 1).Revealed)
	assert.True(t, game.Cell(1, 1).Revealed)
	assert.False(t, game.Cell(0, 2).Revealed)
	assert.Equal(t, mines.Playing, game.State())

	play(t, game, "n\n")
	assert.Equal(t, 2, game.Round())
	assert.Zero(t, game.RevealedCount())
}

func TestTerminalErrors(t *testing.T) {
	game, _ := newGame(t)

	out := play(t, game, "z\no 1\no a 1\no 1 b\no 5 0\n\nq\no 0 1\n")

	assert.Contains(t, out, `error: unknown command "z"`)
	assert.Contains(t, out, "error: expected ROW COLUMN")
	assert.Contains(t, out, "error: row must be an int")
	assert.Contains(t, out, "error: column must be an int")
	assert.Contains(t, out, "error: cell (5, 0) is outside the 2x3(2) board")
	assert.Zero(t, game.RevealedCount(), "input after q is ignored")
}

func TestTerminalStopsWithContext(t *testing.T) {
	game, _ := newGame(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	in := blockingReader{}
	assert.NoError(t, newTerminal(in, &out, game).run(ctx))
}

type blockingReader struct{}

func (blockingReader) Read([]byte) (int, error) {
	select {}
}
