package app

import (
	"net/http"

	"github.com/vancomm/sweeper/internal/handlers"
)

func (a *App) loadRoutes() {
	router := a.router
	if a.cfg.BasePath != "" {
		router = a.router.PathPrefix(a.cfg.BasePath).Subrouter()
	}

	game := handlers.NewGameHandler(
		a.logger, a.sessions, a.cfg.WebSocket, a.cfg.Defaults, a.cfg.MaxCells,
	)
	game.Mount(router)

	records := handlers.NewRecordsHandler(a.logger, a.records)
	records.Mount(router)

	router.HandleFunc("/status", handlers.Status).Methods(http.MethodGet)
}
