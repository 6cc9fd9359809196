package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/vancomm/sweeper/internal/mines"
)

const help = `commands:
  o ROW COLUMN   open a cell
  f ROW COLUMN   flag or unflag a cell
  c ROW COLUMN   open the neighbours of a satisfied number
  n              new game
  q              quit`

type terminal struct {
	in   io.Reader
	out  io.Writer
	game *mines.Game
}

func newTerminal(in io.Reader, out io.Writer, game *mines.Game) *terminal {
	return &terminal{in: in, out: out, game: game}
}

// run renders the board after every command until q, end of input or ctx is
// done.
func (t *terminal) run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	errc := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(t.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		errc <- scanner.Err()
	}()

	fmt.Fprintln(t.out, help)
	t.render()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-errc:
			return err
		case line := <-lines:
			quit, err := t.execute(line)
			if err != nil {
				log.WithFields(logrus.Fields{"line": line}).WithError(err).Debug("bad command")
				fmt.Fprintf(t.out, "error: %v\n", err)
				continue
			}
			if quit {
				return nil
			}
			t.render()
		}
	}
}

func parsePoint(args []string, params mines.GameParams) (mines.Point, error) {
	var p mines.Point
	if len(args) != 2 {
		return p, fmt.Errorf("expected ROW COLUMN")
	}
	var err error
	if p.Row, err = strconv.Atoi(args[0]); err != nil {
		return p, fmt.Errorf("row must be an int")
	}
	if p.Column, err = strconv.Atoi(args[1]); err != nil {
		return p, fmt.Errorf("column must be an int")
	}
	if !params.PointInBounds(p.Row, p.Column) {
		return p, fmt.Errorf("cell %s is outside the %s board", p, params)
	}
	return p, nil
}

func (t *terminal) execute(line string) (quit bool, err error) {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return false, nil
	}

	switch parts[0] {
	case "q":
		return true, nil
	case "n":
		t.game.Reset()
		return false, nil
	case "o", "f", "c":
	default:
		return false, fmt.Errorf("unknown command %q", parts[0])
	}

	p, err := parsePoint(parts[1:], t.game.Params())
	if err != nil {
		return false, err
	}

	switch parts[0] {
	case "o":
		t.game.Reveal(p.Row, p.Column)
	case "f":
		t.game.ToggleFlag(p.Row, p.Column)
	case "c":
		t.game.Chord(p.Row, p.Column)
	}
	return false, nil
}

func cellSymbol(c mines.Cell, over bool) string {
	switch {
	case over && c.Mine && !c.Revealed && !c.Flagged:
		return "x"
	case !c.Revealed && !c.Flagged:
		return "."
	default:
		return c.String()
	}
}

func (t *terminal) render() {
	snap := t.game.Snapshot()
	over := snap.State.Over()

	fmt.Fprintf(
		t.out, "\nround %d   mines left %d   time %ds\n",
		snap.Round, snap.FlagsRemaining, snap.ElapsedSeconds,
	)

	width := len(strconv.Itoa(max(snap.Rows, snap.Columns) - 1))
	var sb strings.Builder
	fmt.Fprintf(&sb, "%*s ", width, "")
	for c := range snap.Columns {
		fmt.Fprintf(&sb, " %*d", width, c)
	}
	sb.WriteByte('\n')
	for r := range snap.Rows {
		fmt.Fprintf(&sb, "%*d ", width, r)
		for c := range snap.Columns {
			fmt.Fprintf(&sb, " %*s", width, cellSymbol(snap.Cell(r, c), over))
		}
		sb.WriteByte('\n')
	}
	fmt.Fprint(t.out, sb.String())

	switch snap.State {
	case mines.Won:
		fmt.Fprintf(t.out, "you won in %ds, n starts a new game\n", snap.ElapsedSeconds)
	case mines.Lost:
		fmt.Fprintf(t.out, "boom! you lost after %ds, n starts a new game\n", snap.ElapsedSeconds)
	}
}
