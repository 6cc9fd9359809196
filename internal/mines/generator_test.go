package mines

import (
	"errors"
	"io"
	"log/slog"
	"math"
	"math/rand/v2"
	"os"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	Log = slog.New(slog.NewTextHandler(io.Discard, nil))
	os.Exit(m.Run())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		params GameParams
		valid  bool
	}{
		{"1x1(0)", GameParams{Rows: 1, Columns: 1, MineCount: 0}, true},
		{"10x10(20)", GameParams{Rows: 10, Columns: 10, MineCount: 20}, true},
		{"3x3(8)", GameParams{Rows: 3, Columns: 3, MineCount: 8}, true},
		{"zero rows", GameParams{Rows: 0, Columns: 3, MineCount: 1}, false},
		{"negative columns", GameParams{Rows: 3, Columns: -1, MineCount: 1}, false},
		{"negative mines", GameParams{Rows: 3, Columns: 3, MineCount: -1}, false},
		{"mines fill board", GameParams{Rows: 3, Columns: 3, MineCount: 9}, false},
		{"too many mines", GameParams{Rows: 2, Columns: 2, MineCount: 10}, false},
		{"cell count overflows", GameParams{Rows: math.MaxInt/2 + 1, Columns: 2, MineCount: 0}, false},
		{"cell count wraps", GameParams{Rows: math.MaxInt, Columns: math.MaxInt, MineCount: 1}, false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := test.params.Validate()
			if test.valid {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidParams))
			var pe *ParamsError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, test.params, pe.Params)
			assert.Contains(t, err.Error(), test.params.Seed())
		})
	}
}

func TestNewGameRejectsInvalidParams(t *testing.T) {
	game, err := NewGame(GameParams{Rows: 2, Columns: 2, MineCount: 4})
	assert.Nil(t, game)
	assert.ErrorIs(t, err, ErrInvalidParams)
	assert.ErrorContains(t, err, "mine count must be less than 4 cells")
}

func TestNewBoardMineCount(t *testing.T) {
	t.Parallel()

	tests := []GameParams{
		{Rows: 1, Columns: 1, MineCount: 0},
		{Rows: 1, Columns: 2, MineCount: 1},
		{Rows: 3, Columns: 3, MineCount: 8},
		{Rows: 9, Columns: 9, MineCount: 10},
		{Rows: 16, Columns: 16, MineCount: 40},
		{Rows: 16, Columns: 30, MineCount: 99},
		{Rows: 16, Columns: 30, MineCount: 479},
	}

	for _, params := range tests {
		t.Run(params.String(), func(t *testing.T) {
			t.Parallel()
			r := rand.New(rand.NewPCG(1, 2))
			for range 20 {
				b := params.newBoard(r)
				assert.Equal(t, params.Rows, b.Rows())
				assert.Equal(t, params.Columns, b.Columns())
				assert.Equal(t, params.MineCount, b.MineCount())
				for _, c := range b.cells {
					assert.False(t, c.Revealed)
					assert.False(t, c.Flagged)
				}
			}
		})
	}
}

func TestNewBoardIsRandom(t *testing.T) {
	params := GameParams{Rows: 9, Columns: 9, MineCount: 10}
	r := rand.New(rand.NewPCG(1, 2))
	a, b := params.newBoard(r), params.newBoard(r)
	assert.False(t, slices.Equal(a.cells, b.cells))
}

func TestBoardWithMines(t *testing.T) {
	params := GameParams{Rows: 2, Columns: 3, MineCount: 2}

	b, err := params.boardWithMines([]Point{{0, 0}, {1, 2}})
	require.NoError(t, err)
	assert.True(t, b.Cell(0, 0).Mine)
	assert.True(t, b.Cell(1, 2).Mine)
	assert.Equal(t, 2, b.MineCount())

	var le *LayoutError

	_, err = params.boardWithMines([]Point{{0, 0}})
	assert.ErrorAs(t, err, &le)

	_, err = params.boardWithMines([]Point{{0, 0}, {2, 0}})
	assert.ErrorAs(t, err, &le)
	assert.ErrorContains(t, err, "out of bounds")

	_, err = params.boardWithMines([]Point{{1, 1}, {1, 1}})
	assert.ErrorAs(t, err, &le)
	assert.ErrorContains(t, err, "twice")
}

func TestParseSeed(t *testing.T) {
	params := GameParams{Rows: 16, Columns: 30, MineCount: 99}

	parsed, err := ParseSeed(params.Seed())
	require.NoError(t, err)
	assert.Equal(t, params, *parsed)

	_, err = ParseSeed("2:2:4")
	assert.ErrorIs(t, err, ErrInvalidParams)

	for _, seed := range []string{
		"", "16:30", "16:30:99:1", "3:3:1junk", "3 3 1", ":3:1", "3:x:1", " 3:3:1",
	} {
		_, err := ParseSeed(seed)
		assert.Error(t, err, seed)
		assert.NotErrorIs(t, err, ErrInvalidParams, seed)
	}
}

// A board whose cell count wraps around to a small positive number must not
// reach board allocation.
func TestNewGameRejectsOverflowingBoard(t *testing.T) {
	params := GameParams{Rows: math.MaxInt/2 + 2, Columns: 4, MineCount: 0}

	err := params.Validate()
	assert.ErrorIs(t, err, ErrInvalidParams)
	assert.ErrorContains(t, err, "too large")

	game, err := NewGame(params)
	assert.Nil(t, game)
	assert.ErrorIs(t, err, ErrInvalidParams)
}

func TestNeighbors(t *testing.T) {
	b := newEmptyBoard(3, 4)

	tests := []struct {
		p    Point
		want int
	}{
		{Point{0, 0}, 3},
		{Point{0, 3}, 3},
		{Point{2, 3}, 3},
		{Point{0, 1}, 5},
		{Point{1, 0}, 5},
		{Point{1, 1}, 8},
	}
	for _, test := range tests {
		var got []Point
		for q := range b.neighbors(test.p) {
			assert.NotEqual(t, test.p, q, "a cell is not its own neighbour")
			assert.True(t, 0 <= q.Row && q.Row < 3 && 0 <= q.Column && q.Column < 4)
			got = append(got, q)
		}
		assert.Len(t, got, test.want, "neighbours of %s", test.p)
	}

	assert.Empty(t, slices.Collect(newEmptyBoard(1, 1).neighbors(Point{0, 0})))
}

func TestAdjacentMines(t *testing.T) {
	params := GameParams{Rows: 3, Columns: 3, MineCount: 3}
	b, err := params.boardWithMines([]Point{{0, 0}, {0, 1}, {2, 2}})
	require.NoError(t, err)

	assert.Equal(t, 3, b.adjacentMines(Point{1, 1}))
	assert.Equal(t, 2, b.adjacentMines(Point{1, 0}))
	assert.Equal(t, 1, b.adjacentMines(Point{0, 2}))
	assert.Equal(t, 1, b.adjacentMines(Point{2, 1}))
	assert.Equal(t, 0, b.adjacentMines(Point{2, 0}))
}

func TestBoardString(t *testing.T) {
	b := newEmptyBoard(2, 2)
	b.at(Point{0, 0}).Flagged = true
	b.at(Point{0, 1}).Revealed = true
	b.at(Point{0, 1}).AdjacentMines = 2
	b.at(Point{1, 1}).Revealed = true
	b.at(Point{1, 1}).Mine = true

	assert.Equal(t, "* 2 \n  X \n", b.String())
}
