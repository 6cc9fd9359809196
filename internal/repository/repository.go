package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var ErrInvalidRecord = errors.New("invalid record")

type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// RecordStore keeps the outcome of finished rounds.
type RecordStore interface {
	CreateRecord(ctx context.Context, params CreateRecordParams) (*Record, error)
	GetHighscores(ctx context.Context, filter HighscoreFilter) ([]Record, error)
}

var (
	_ RecordStore = (*Queries)(nil)
	_ RecordStore = (*Memory)(nil)
)

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}
