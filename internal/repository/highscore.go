package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vancomm/sweeper/internal/mines"
)

type Record struct {
	RecordId       string    `json:"record_id" db:"record_id"`
	Player         *string   `json:"player" db:"player"`
	Rows           int       `json:"rows" db:"row_count"`
	Columns        int       `json:"columns" db:"column_count"`
	MineCount      int       `json:"mine_count" db:"mine_count"`
	Won            bool      `json:"won" db:"won"`
	ElapsedSeconds int       `json:"elapsed_seconds" db:"elapsed_seconds"`
	FinishedAt     time.Time `json:"finished_at" db:"finished_at"`
}

type CreateRecordParams struct {
	Player         *string
	Params         mines.GameParams
	Won            bool
	ElapsedSeconds int
	FinishedAt     time.Time
}

func (p CreateRecordParams) validate() error {
	if err := p.Params.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}
	if p.ElapsedSeconds < 0 {
		return fmt.Errorf("%w: negative elapsed time", ErrInvalidRecord)
	}
	return nil
}

func newRecordId() string {
	return uuid.NewString()
}

type HighscoreFilter struct {
	Player *string
	Params *mines.GameParams
	Limit  int
}

func (f HighscoreFilter) WhereClause() (string, pgx.NamedArgs) {
	clauses := make([]string, 0)
	args := pgx.NamedArgs{}
	if f.Player != nil {
		clauses = append(clauses, "player = @player")
		args["player"] = *f.Player
	}
	if f.Params != nil {
		clauses = append(
			clauses,
			"row_count = @rows",
			"column_count = @columns",
			"mine_count = @mineCount",
		)
		args["rows"] = f.Params.Rows
		args["columns"] = f.Params.Columns
		args["mineCount"] = f.Params.MineCount
	}
	return strings.Join(clauses, " AND "), args
}

func (f HighscoreFilter) match(r Record) bool {
	if f.Player != nil && (r.Player == nil || *r.Player != *f.Player) {
		return false
	}
	if f.Params != nil && (r.Rows != f.Params.Rows ||
		r.Columns != f.Params.Columns ||
		r.MineCount != f.Params.MineCount) {
		return false
	}
	return true
}

func (q Queries) CreateRecord(
	ctx context.Context, params CreateRecordParams,
) (*Record, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}

	args := pgx.NamedArgs{
		"record_id":       newRecordId(),
		"player":          params.Player,
		"row_count":       params.Params.Rows,
		"column_count":    params.Params.Columns,
		"mine_count":      params.Params.MineCount,
		"won":             params.Won,
		"elapsed_seconds": params.ElapsedSeconds,
		"finished_at":     params.FinishedAt,
	}

	rows, _ := q.db.Query(
		ctx,
		`INSERT INTO record (
			record_id, player, row_count, column_count, mine_count, won, elapsed_seconds, finished_at
		)
		VALUES (
			@record_id, @player, @row_count, @column_count, @mine_count, @won, @elapsed_seconds, @finished_at
		)
		RETURNING *;`,
		args,
	)
	record, err := pgx.CollectExactlyOneRow(
		rows, pgx.RowToAddrOfStructByName[Record],
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) &&
		pgerrcode.IsIntegrityConstraintViolation(pgErr.Code) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRecord, pgErr.Message)
	}
	return record, err
}

func (q Queries) GetHighscores(
	ctx context.Context, filter HighscoreFilter,
) ([]Record, error) {
	query := `
	SELECT *
	FROM record
	WHERE won = true
	`

	whereClause, args := filter.WhereClause()
	if whereClause != "" {
		query += " AND " + whereClause
	}

	query += " ORDER BY elapsed_seconds, finished_at"

	if filter.Limit > 0 {
		query += " LIMIT @limit"
		args["limit"] = filter.Limit
	}

	rows, err := q.db.Query(ctx, query+";", args)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[Record])
}
