package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/vancomm/sweeper/internal/mines"
)

var DefaultGameParams = mines.GameParams{Rows: 10, Columns: 10, MineCount: 20}

// DefaultMaxCells caps the board a client may ask for.
const DefaultMaxCells = 10_000

func lookupInt(key string, fallback int) (int, error) {
	s, ok := os.LookupEnv(key)
	if !ok || s == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%s env variable must be an integer: %w", key, err)
	}
	return v, nil
}

// NewGameParams reads the default board from MINES_ROWS, MINES_COLUMNS and
// MINES_COUNT. Unset variables fall back to [DefaultGameParams].
func NewGameParams() (*mines.GameParams, error) {
	rows, err := lookupInt("MINES_ROWS", DefaultGameParams.Rows)
	if err != nil {
		return nil, err
	}

	columns, err := lookupInt("MINES_COLUMNS", DefaultGameParams.Columns)
	if err != nil {
		return nil, err
	}

	mineCount, err := lookupInt("MINES_COUNT", DefaultGameParams.MineCount)
	if err != nil {
		return nil, err
	}

	params := &mines.GameParams{Rows: rows, Columns: columns, MineCount: mineCount}
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("unable to use game params from env: %w", err)
	}

	return params, nil
}

// MaxCells reads the largest allowed board size from MINES_MAX_CELLS.
func MaxCells() (int, error) {
	n, err := lookupInt("MINES_MAX_CELLS", DefaultMaxCells)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, fmt.Errorf("MINES_MAX_CELLS env variable must be positive")
	}
	return n, nil
}
