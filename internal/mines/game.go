package mines

import (
	"context"
	"hash/maphash"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/vancomm/sweeper/internal/clock"
)

var Log *slog.Logger = slog.Default()

const TickInterval = time.Second

// Game is the aggregate root of a single game: the board, its state and the
// counters shown to the player. All methods are safe for concurrent use; the
// tick callback takes the same lock as player moves.
type Game struct {
	mu sync.Mutex

	params         GameParams
	board          *Board
	state          State
	round          int
	version        int
	revealed       int
	flagsRemaining int
	elapsed        int
	closed         bool

	rnd        *rand.Rand
	scheduler  clock.Scheduler
	cancelTick clock.CancelFunc
	notifier   Notifier

	layout    []Point
	hasLayout bool
}

type Option func(*Game)

// WithRand sets the source used for mine placement.
func WithRand(r *rand.Rand) Option {
	return func(g *Game) { g.rnd = r }
}

// WithScheduler sets the scheduler that drives the elapsed-time counter. The
// default is a [clock.Wall] ticking in real time.
func WithScheduler(s clock.Scheduler) Option {
	return func(g *Game) { g.scheduler = s }
}

func WithNotifier(n Notifier) Option {
	return func(g *Game) { g.notifier = n }
}

// WithMines fixes the mine layout of the first round. Rounds started by
// [Game.Reset] are always random.
func WithMines(layout ...Point) Option {
	return func(g *Game) {
		g.layout = layout
		g.hasLayout = true
	}
}

func createRand() *rand.Rand {
	return rand.New(rand.NewPCG(
		new(maphash.Hash).Sum64(), new(maphash.Hash).Sum64(),
	))
}

// NewGame validates params, generates a board and starts the elapsed-time
// counter. The returned game ticks until it is won, lost or closed.
func NewGame(params GameParams, opts ...Option) (*Game, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	g := &Game{params: params}
	for _, opt := range opts {
		opt(g)
	}
	if g.rnd == nil {
		g.rnd = createRand()
	}
	if g.scheduler == nil {
		g.scheduler = clock.NewWall(context.Background())
	}
	if g.notifier == nil {
		g.notifier = nopNotifier{}
	}

	var board *Board
	if g.hasLayout {
		var err error
		if board, err = params.boardWithMines(g.layout); err != nil {
			return nil, err
		}
		g.layout, g.hasLayout = nil, false
	} else {
		board = params.newBoard(g.rnd)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.start(board)

	return g, nil
}

// start replaces the board and begins a new round. g.mu must be held.
func (g *Game) start(board *Board) {
	g.stopClock()

	g.board = board
	g.state = Playing
	g.revealed = 0
	g.flagsRemaining = g.params.MineCount
	g.elapsed = 0
	g.round++

	if !g.closed {
		round := g.round
		g.cancelTick = g.scheduler.Every(TickInterval, func() { g.tick(round) })
	}
}

func (g *Game) stopClock() {
	if g.cancelTick != nil {
		g.cancelTick()
		g.cancelTick = nil
	}
}

func (g *Game) finish(s State) {
	g.state = s
	g.stopClock()
	Log.Debug(
		"game over",
		slog.String("state", s.String()),
		slog.String("params", g.params.String()),
		slog.Int("round", g.round),
		slog.Int("elapsed", g.elapsed),
	)
}

// update runs fn under the lock and notifies with the resulting snapshot once
// the lock is released.
func (g *Game) update(fn func() bool) {
	snap, changed := func() (Snapshot, bool) {
		g.mu.Lock()
		defer g.mu.Unlock()
		if !fn() {
			return Snapshot{}, false
		}
		g.version++
		return g.snapshot(), true
	}()
	if changed {
		g.notifier.Notify(snap)
	}
}

// Reveal opens the cell at (row, column). Opening a mine loses the game;
// opening a cell without adjacent mines opens its neighbours as well. Panics
// if the point is outside the board.
func (g *Game) Reveal(row, column int) {
	g.update(func() bool {
		g.reveal(Point{row, column})
		return true
	})
}

// ToggleFlag flags or unflags a hidden cell. Panics if the point is outside
// the board.
func (g *Game) ToggleFlag(row, column int) {
	g.update(func() bool {
		g.toggleFlag(Point{row, column})
		return true
	})
}

// Chord opens every unflagged hidden neighbour of a revealed cell whose
// adjacent mine count equals the number of flags around it.
func (g *Game) Chord(row, column int) {
	g.update(func() bool {
		g.chord(Point{row, column})
		return true
	})
}

// Reset deals a new random board and restarts the elapsed-time counter.
func (g *Game) Reset() {
	g.update(func() bool {
		g.start(g.params.newBoard(g.rnd))
		return true
	})
}

// Tick advances the elapsed-time counter by one second while the game is
// being played. It notifies only when the counter moved.
func (g *Game) Tick() {
	g.update(g.advance)
}

func (g *Game) tick(round int) {
	g.update(func() bool {
		return g.round == round && g.advance()
	})
}

func (g *Game) advance() bool {
	if g.state != Playing {
		return false
	}
	g.elapsed++
	return true
}

// Close stops the elapsed-time counter for good. Later rounds started with
// [Game.Reset] do not tick.
func (g *Game) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.closed = true
	g.stopClock()
}

func (g *Game) Params() GameParams {
	return g.params
}

func (g *Game) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

func (g *Game) Round() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.round
}

func (g *Game) RevealedCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.revealed
}

func (g *Game) FlagsRemaining() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.flagsRemaining
}

func (g *Game) ElapsedSeconds() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.elapsed
}

// Cell returns the unmasked cell at (row, column).
func (g *Game) Cell(row, column int) Cell {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.board.Cell(row, column)
}

// Board returns a copy of the current board.
func (g *Game) Board() *Board {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.board.clone()
}

func (g *Game) Snapshot() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.snapshot()
}

func (g *Game) snapshot() Snapshot {
	cells := make([]Cell, len(g.board.cells))
	copy(cells, g.board.cells)
	if g.state == Playing {
		for i := range cells {
			if !cells[i].Revealed {
				cells[i].Mine = false
			}
		}
	}
	return Snapshot{
		Rows:           g.params.Rows,
		Columns:        g.params.Columns,
		MineCount:      g.params.MineCount,
		State:          g.state,
		Round:          g.round,
		Version:        g.version,
		RevealedCount:  g.revealed,
		FlagsRemaining: g.flagsRemaining,
		ElapsedSeconds: g.elapsed,
		Cells:          cells,
	}
}
