package mines

// Snapshot is a copy of everything a renderer may observe about a [Game].
// While the game is being played hidden mines are masked out. Version grows
// with every change, so a receiver can drop snapshots that arrive late.
type Snapshot struct {
	Rows           int    `json:"rows"`
	Columns        int    `json:"columns"`
	MineCount      int    `json:"mine_count"`
	State          State  `json:"state"`
	Round          int    `json:"round"`
	Version        int    `json:"version"`
	RevealedCount  int    `json:"revealed_count"`
	FlagsRemaining int    `json:"flags_remaining"`
	ElapsedSeconds int    `json:"elapsed_seconds"`
	Cells          []Cell `json:"cells"`
}

func (s Snapshot) Params() GameParams {
	return GameParams{Rows: s.Rows, Columns: s.Columns, MineCount: s.MineCount}
}

func (s Snapshot) Cell(row, column int) Cell {
	return s.Cells[row*s.Columns+column]
}

// Notifier is told about every change of a [Game]. Notify is called after the
// game lock has been released, so it may call back into the game.
type Notifier interface {
	Notify(Snapshot)
}

type NotifierFunc func(Snapshot)

// [NotifierFunc] implements [Notifier]
func (f NotifierFunc) Notify(s Snapshot) {
	f(s)
}

type nopNotifier struct{}

func (nopNotifier) Notify(Snapshot) {}
