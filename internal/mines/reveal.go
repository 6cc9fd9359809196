package mines

import "github.com/gammazero/deque"

func (g *Game) reveal(p Point) {
	c := g.board.at(p)
	if g.state.Over() || c.Revealed || c.Flagged {
		return
	}

	if c.Mine {
		c.Revealed = true
		g.flagsRemaining--
		g.finish(Lost)
		return
	}

	g.floodFill(p)
}

// floodFill opens origin and keeps opening the neighbourhood of every opened
// cell that has no adjacent mines. A cell enters the queue at most once.
func (g *Game) floodFill(origin Point) {
	var (
		queue  deque.Deque[Point]
		queued = make([]bool, len(g.board.cells))
	)
	queue.PushBack(origin)
	queued[g.board.index(origin)] = true

	for queue.Len() > 0 {
		p := queue.PopFront()
		c := g.board.at(p)
		c.AdjacentMines = g.board.adjacentMines(p)
		c.Revealed = true
		g.revealed++

		if g.revealed == g.params.SafeCount() {
			g.finish(Won)
			return
		}
		if c.AdjacentMines != 0 {
			continue
		}

		for q := range g.board.neighbors(p) {
			i := g.board.index(q)
			n := &g.board.cells[i]
			if queued[i] || n.Revealed || n.Flagged {
				continue
			}
			queued[i] = true
			queue.PushBack(q)
		}
	}
}

func (g *Game) toggleFlag(p Point) {
	c := g.board.at(p)
	if c.Revealed {
		return
	}
	c.Flagged = !c.Flagged
	if c.Flagged {
		g.flagsRemaining--
	} else {
		g.flagsRemaining++
	}
}

func (g *Game) chord(p Point) {
	c := g.board.at(p)
	if g.state.Over() || !c.Revealed {
		return
	}

	flagged := 0
	hidden := make([]Point, 0, 8)
	for q := range g.board.neighbors(p) {
		n := g.board.at(q)
		if n.Flagged {
			flagged++
		} else if !n.Revealed {
			hidden = append(hidden, q)
		}
	}
	if flagged != c.AdjacentMines {
		return
	}

	for _, q := range hidden {
		g.reveal(q)
		if g.state.Over() {
			return
		}
	}
}
