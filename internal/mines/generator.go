package mines

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"strconv"
	"strings"
)

type GameParams struct {
	Rows, Columns, MineCount int
}

func (p GameParams) Unpack() (rows int, columns int, mineCount int) {
	return p.Rows, p.Columns, p.MineCount
}

func (p GameParams) CellCount() int {
	return p.Rows * p.Columns
}

// SafeCount is the number of cells that have to be revealed to win.
func (p GameParams) SafeCount() int {
	return p.CellCount() - p.MineCount
}

func (p GameParams) Validate() error {
	switch {
	case p.Rows <= 0:
		return &ParamsError{p, fmt.Sprintf("row count must be positive, got %d", p.Rows)}
	case p.Columns <= 0:
		return &ParamsError{p, fmt.Sprintf("column count must be positive, got %d", p.Columns)}
	case p.Rows > math.MaxInt/p.Columns:
		return &ParamsError{p, fmt.Sprintf(
			"board of %d x %d cells is too large", p.Rows, p.Columns,
		)}
	case p.MineCount < 0:
		return &ParamsError{p, fmt.Sprintf("mine count must not be negative, got %d", p.MineCount)}
	case p.MineCount >= p.CellCount():
		return &ParamsError{p, fmt.Sprintf(
			"mine count must be less than %d cells, got %d", p.CellCount(), p.MineCount,
		)}
	}
	return nil
}

func (p GameParams) PointInBounds(row, column int) bool {
	return 0 <= row && row < p.Rows && 0 <= column && column < p.Columns
}

func (p GameParams) Seed() string {
	return fmt.Sprintf("%d:%d:%d", p.Rows, p.Columns, p.MineCount)
}

func (p GameParams) String() string {
	return fmt.Sprintf("%dx%d(%d)", p.Rows, p.Columns, p.MineCount)
}

// ParseSeed reads params in the rows:columns:mines form produced by
// [GameParams.Seed]. The result is validated.
func ParseSeed(seed string) (*GameParams, error) {
	parts := strings.Split(seed, ":")
	if len(parts) != 3 {
		return nil, fmt.Errorf(
			`invalid game params seed %q: want rows:columns:mines`, seed,
		)
	}

	values := make([]int, len(parts))
	for i, part := range parts {
		v, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf(
				`invalid game params seed %q: %w`, seed, errors.Unwrap(err),
			)
		}
		values[i] = v
	}

	p := &GameParams{Rows: values[0], Columns: values[1], MineCount: values[2]}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// newBoard places MineCount mines by rejection sampling: a drawn cell that
// already holds a mine is drawn again.
func (p GameParams) newBoard(r *rand.Rand) *Board {
	b := newEmptyBoard(p.Rows, p.Columns)
	for placed := 0; placed < p.MineCount; {
		c := b.at(Point{r.IntN(p.Rows), r.IntN(p.Columns)})
		if !c.Mine {
			c.Mine = true
			placed++
		}
	}
	return b
}

// boardWithMines builds a board from a fixed layout. The layout must hold
// exactly MineCount distinct points inside the board.
func (p GameParams) boardWithMines(layout []Point) (*Board, error) {
	if len(layout) != p.MineCount {
		return nil, &LayoutError{fmt.Sprintf(
			"layout has %d mines, params require %d", len(layout), p.MineCount,
		)}
	}
	b := newEmptyBoard(p.Rows, p.Columns)
	for _, pt := range layout {
		if !p.PointInBounds(pt.Row, pt.Column) {
			return nil, &LayoutError{fmt.Sprintf("mine %s is out of bounds", pt)}
		}
		c := b.at(pt)
		if c.Mine {
			return nil, &LayoutError{fmt.Sprintf("mine %s is listed twice", pt)}
		}
		c.Mine = true
	}
	return b, nil
}
