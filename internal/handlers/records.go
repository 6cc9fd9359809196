package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/vancomm/sweeper/internal/repository"
)

const maxHighscores = 100

var ErrInvalidLimit = errors.New("limit must be between 0 and 100")

type RecordsHandler struct {
	logger  *slog.Logger
	records repository.RecordStore
}

func NewRecordsHandler(logger *slog.Logger, records repository.RecordStore) *RecordsHandler {
	return &RecordsHandler{logger: logger, records: records}
}

func (h *RecordsHandler) Mount(r *mux.Router) {
	r.HandleFunc("/highscores", h.Highscores).Methods(http.MethodGet)
}

func (h *RecordsHandler) Highscores(w http.ResponseWriter, r *http.Request) {
	dto, err := ParseHighscoresDTO(r.URL.Query())
	if err != nil {
		sendError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	params, err := dto.Params()
	if err == nil && params != nil {
		err = params.Validate()
	}
	if err != nil {
		sendError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	if dto.Limit < 0 || dto.Limit > maxHighscores {
		sendError(w, h.logger, http.StatusBadRequest, ErrInvalidLimit)
		return
	}
	limit := dto.Limit
	if limit == 0 {
		limit = maxHighscores
	}

	player, err := parsePlayer(dto.Player)
	if err != nil {
		sendError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	records, err := h.records.GetHighscores(r.Context(), repository.HighscoreFilter{
		Player: player,
		Params: params,
		Limit:  limit,
	})
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		h.logger.Error("unable to fetch highscores", slog.Any("error", err))
		return
	}
	if records == nil {
		records = []repository.Record{}
	}

	sendJSONOrLog(w, h.logger, records)
}
