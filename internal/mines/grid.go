package mines

import (
	"fmt"
	"iter"
	"strconv"
	"strings"
)

type Point struct {
	Row    int `json:"row"`
	Column int `json:"column"`
}

func (p Point) String() string {
	return fmt.Sprintf("(%d, %d)", p.Row, p.Column)
}

type Cell struct {
	Mine          bool `json:"mine"`
	Revealed      bool `json:"revealed"`
	Flagged       bool `json:"flagged"`
	AdjacentMines int  `json:"adjacent_mines"`
}

func (c Cell) String() string {
	switch {
	case c.Revealed && c.Mine:
		return "X"
	case c.Revealed:
		return strconv.Itoa(c.AdjacentMines)
	case c.Flagged:
		return "*"
	default:
		return " "
	}
}

// Board is a rows x columns grid stored row-major.
type Board struct {
	rows, columns int
	cells         []Cell
}

func newEmptyBoard(rows, columns int) *Board {
	return &Board{
		rows:    rows,
		columns: columns,
		cells:   make([]Cell, rows*columns),
	}
}

func (b *Board) Rows() int    { return b.rows }
func (b *Board) Columns() int { return b.columns }

// index panics when p lies outside the board.
func (b *Board) index(p Point) int {
	if p.Row < 0 || p.Row >= b.rows || p.Column < 0 || p.Column >= b.columns {
		panic(fmt.Sprintf(
			"mines: cell %s out of bounds for %dx%d board", p, b.rows, b.columns,
		))
	}
	return p.Row*b.columns + p.Column
}

func (b *Board) at(p Point) *Cell {
	return &b.cells[b.index(p)]
}

func (b *Board) Cell(row, column int) Cell {
	return *b.at(Point{row, column})
}

// neighbors yields the up to 8 in-bounds points around p. Points past an edge
// are skipped, never clamped.
func (b *Board) neighbors(p Point) iter.Seq[Point] {
	return func(yield func(Point) bool) {
		for dr := -1; dr <= 1; dr++ {
			for dc := -1; dc <= 1; dc++ {
				if dr == 0 && dc == 0 {
					continue
				}
				r, c := p.Row+dr, p.Column+dc
				if r < 0 || r >= b.rows || c < 0 || c >= b.columns {
					continue
				}
				if !yield(Point{r, c}) {
					return
				}
			}
		}
	}
}

func (b *Board) adjacentMines(p Point) int {
	n := 0
	for q := range b.neighbors(p) {
		if b.at(q).Mine {
			n++
		}
	}
	return n
}

func (b *Board) MineCount() int {
	n := 0
	for _, c := range b.cells {
		if c.Mine {
			n++
		}
	}
	return n
}

func (b *Board) clone() *Board {
	cells := make([]Cell, len(b.cells))
	copy(cells, b.cells)
	return &Board{rows: b.rows, columns: b.columns, cells: cells}
}

func (b *Board) String() string {
	var sb strings.Builder
	for r := range b.rows {
		for c := range b.columns {
			fmt.Fprint(&sb, b.cells[r*b.columns+c].String()+" ")
		}
		fmt.Fprint(&sb, "\n")
	}
	return sb.String()
}
