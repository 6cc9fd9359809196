package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/vancomm/sweeper/internal/config"
	"github.com/vancomm/sweeper/internal/mines"
	"github.com/vancomm/sweeper/internal/session"
)

var (
	ErrPointOutOfBounds = errors.New("cell position out of bounds")
	ErrBoardTooLarge    = errors.New("board is too large")
)

type GameHandler struct {
	logger   *slog.Logger
	sessions *session.Manager
	ws       *config.WebSocket
	defaults mines.GameParams
	maxCells int
}

func NewGameHandler(
	logger *slog.Logger,
	sessions *session.Manager,
	ws *config.WebSocket,
	defaults mines.GameParams,
	maxCells int,
) *GameHandler {
	return &GameHandler{
		logger:   logger,
		sessions: sessions,
		ws:       ws,
		defaults: defaults,
		maxCells: maxCells,
	}
}

// Mount registers the game routes on r.
func (g *GameHandler) Mount(r *mux.Router) {
	r.HandleFunc("/game", g.NewGame).Methods(http.MethodPost)
	r.HandleFunc("/game/{id}", g.Fetch).Methods(http.MethodGet)
	r.HandleFunc("/game/{id}", g.Delete).Methods(http.MethodDelete)
	r.HandleFunc("/game/{id}/move", g.MakeAMove).Methods(http.MethodPost)
	r.HandleFunc("/game/{id}/reset", g.Reset).Methods(http.MethodPost)
	r.HandleFunc("/game/{id}/connect", g.ConnectWS)
}

// lookup writes a 404 and returns nil when the session is unknown.
func (g *GameHandler) lookup(w http.ResponseWriter, r *http.Request) *session.Session {
	id := mux.Vars(r)["id"]
	s, err := g.sessions.Get(id)
	if errors.Is(err, session.ErrNotFound) {
		sendError(w, g.logger, http.StatusNotFound, err)
		return nil
	}
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		g.logger.Error("unable to fetch session", slog.Any("error", err))
		return nil
	}
	return s
}

func (g *GameHandler) NewGame(w http.ResponseWriter, r *http.Request) {
	dto, err := ParseNewGameDTO(r.URL.Query())
	if err != nil {
		sendError(w, g.logger, http.StatusBadRequest, err)
		return
	}

	player, err := parsePlayer(dto.Player)
	if err != nil {
		sendError(w, g.logger, http.StatusBadRequest, err)
		return
	}

	params := dto.Params(g.defaults)
	if err := params.Validate(); err != nil {
		sendError(w, g.logger, http.StatusBadRequest, err)
		return
	}
	if params.CellCount() > g.maxCells {
		sendError(w, g.logger, http.StatusBadRequest, fmt.Errorf(
			"%w: at most %d cells allowed", ErrBoardTooLarge, g.maxCells,
		))
		return
	}

	s, err := g.sessions.Create(params, player)
	if errors.Is(err, mines.ErrInvalidParams) {
		sendError(w, g.logger, http.StatusBadRequest, err)
		return
	}
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		g.logger.Error("unable to create a new game", slog.Any("error", err))
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/game/%s", s.Id))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	sendJSONOrLog(w, g.logger, NewSessionDTO(s))
}

func (g *GameHandler) Fetch(w http.ResponseWriter, r *http.Request) {
	s := g.lookup(w, r)
	if s == nil {
		return
	}
	sendJSONOrLog(w, g.logger, NewSessionDTO(s))
}

func (g *GameHandler) MakeAMove(w http.ResponseWriter, r *http.Request) {
	dto, err := ParseMoveDTO(r.URL.Query())
	if err != nil {
		sendError(w, g.logger, http.StatusBadRequest, err)
		return
	}

	move, err := ParseMove(dto.Move)
	if err != nil {
		sendError(w, g.logger, http.StatusBadRequest, err)
		return
	}

	s := g.lookup(w, r)
	if s == nil {
		return
	}

	if !s.Params().PointInBounds(dto.Row, dto.Column) {
		sendError(w, g.logger, http.StatusBadRequest, ErrPointOutOfBounds)
		return
	}

	switch move {
	case Open:
		s.Reveal(dto.Row, dto.Column)
	case Flag:
		s.ToggleFlag(dto.Row, dto.Column)
	case Chord:
		s.Chord(dto.Row, dto.Column)
	}

	sendJSONOrLog(w, g.logger, NewSessionDTO(s))
}

func (g *GameHandler) Reset(w http.ResponseWriter, r *http.Request) {
	s := g.lookup(w, r)
	if s == nil {
		return
	}
	s.Reset()
	sendJSONOrLog(w, g.logger, NewSessionDTO(s))
}

func (g *GameHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	err := g.sessions.Remove(id)
	if errors.Is(err, session.ErrNotFound) {
		sendError(w, g.logger, http.StatusNotFound, err)
		return
	}
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		g.logger.Error("unable to remove session", slog.Any("error", err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
