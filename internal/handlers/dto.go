package handlers

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/gorilla/schema"

	"github.com/vancomm/sweeper/internal/mines"
	"github.com/vancomm/sweeper/internal/session"
)

const maxPlayerLength = 64

var ErrInvalidPlayer = fmt.Errorf(
	"player name must be 1 to %d characters long", maxPlayerLength,
)

func newDecoder() *schema.Decoder {
	dec := schema.NewDecoder()
	dec.IgnoreUnknownKeys(true)
	return dec
}

var decoder = newDecoder()

func parsePlayer(player *string) (*string, error) {
	if player == nil {
		return nil, nil
	}
	name := strings.TrimSpace(*player)
	if name == "" || utf8.RuneCountInString(name) > maxPlayerLength {
		return nil, ErrInvalidPlayer
	}
	return &name, nil
}

// NewGameDTO holds the query of a new game request. Omitted numbers fall back
// to the server defaults.
type NewGameDTO struct {
	Rows      *int    `schema:"rows"`
	Columns   *int    `schema:"columns"`
	MineCount *int    `schema:"mine_count"`
	Player    *string `schema:"player"`
}

func ParseNewGameDTO(src map[string][]string) (NewGameDTO, error) {
	var dto NewGameDTO
	err := decoder.Decode(&dto, src)
	return dto, err
}

func (dto NewGameDTO) Params(defaults mines.GameParams) mines.GameParams {
	params := defaults
	if dto.Rows != nil {
		params.Rows = *dto.Rows
	}
	if dto.Columns != nil {
		params.Columns = *dto.Columns
	}
	if dto.MineCount != nil {
		params.MineCount = *dto.MineCount
	}
	return params
}

type Move string

const (
	Open  Move = "open"
	Flag  Move = "flag"
	Chord Move = "chord"
)

var ErrUnknownMove = errors.New(`move must be one of "open", "flag", "chord"`)

func ParseMove(s string) (Move, error) {
	switch m := Move(s); m {
	case Open, Flag, Chord:
		return m, nil
	default:
		return "", ErrUnknownMove
	}
}

type MoveDTO struct {
	Move   string `schema:"move,required"`
	Row    int    `schema:"row,required"`
	Column int    `schema:"column,required"`
}

func ParseMoveDTO(src map[string][]string) (MoveDTO, error) {
	var dto MoveDTO
	err := decoder.Decode(&dto, src)
	return dto, err
}

type HighscoresDTO struct {
	Rows      *int    `schema:"rows"`
	Columns   *int    `schema:"columns"`
	MineCount *int    `schema:"mine_count"`
	Player    *string `schema:"player"`
	Limit     int     `schema:"limit"`
}

func ParseHighscoresDTO(src map[string][]string) (HighscoresDTO, error) {
	var dto HighscoresDTO
	err := decoder.Decode(&dto, src)
	return dto, err
}

var ErrPartialParams = errors.New(
	"rows, columns and mine_count must be given together",
)

func (dto HighscoresDTO) Params() (*mines.GameParams, error) {
	switch {
	case dto.Rows == nil && dto.Columns == nil && dto.MineCount == nil:
		return nil, nil
	case dto.Rows == nil || dto.Columns == nil || dto.MineCount == nil:
		return nil, ErrPartialParams
	}
	return &mines.GameParams{
		Rows:      *dto.Rows,
		Columns:   *dto.Columns,
		MineCount: *dto.MineCount,
	}, nil
}

type SessionDTO struct {
	SessionId string         `json:"session_id"`
	Player    *string        `json:"player,omitempty"`
	StartedAt int64          `json:"started_at"`
	Game      mines.Snapshot `json:"game"`
}

func NewSessionDTO(s *session.Session) *SessionDTO {
	return &SessionDTO{
		SessionId: s.Id,
		Player:    s.Player,
		StartedAt: s.StartedAt.UnixMilli(),
		Game:      s.Snapshot(),
	}
}
