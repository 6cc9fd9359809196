package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/sync/errgroup"

	"github.com/vancomm/sweeper/internal/clock"
	"github.com/vancomm/sweeper/internal/config"
	"github.com/vancomm/sweeper/internal/database"
	"github.com/vancomm/sweeper/internal/middleware"
	"github.com/vancomm/sweeper/internal/mines"
	"github.com/vancomm/sweeper/internal/repository"
	"github.com/vancomm/sweeper/internal/session"
)

const (
	shutdownTimeout = 15 * time.Second
	pruneInterval   = time.Minute
)

type Config struct {
	Port           string
	BasePath       string
	AllowedOrigins []string
	Defaults       mines.GameParams
	MaxCells       int
	IdleTimeout    time.Duration
	WebSocket      *config.WebSocket
}

// LoadConfig reads the server settings from the environment.
func LoadConfig() (*Config, error) {
	defaults, err := config.NewGameParams()
	if err != nil {
		return nil, err
	}

	maxCells, err := config.MaxCells()
	if err != nil {
		return nil, err
	}
	if defaults.CellCount() > maxCells {
		return nil, fmt.Errorf("default board exceeds MINES_MAX_CELLS=%d", maxCells)
	}

	ws, err := config.NewWebSocket()
	if err != nil {
		return nil, err
	}

	idle, err := config.SessionIdleTimeout()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:           config.Port(),
		BasePath:       config.BasePath(),
		AllowedOrigins: config.AllowedOrigins(),
		Defaults:       *defaults,
		MaxCells:       maxCells,
		IdleTimeout:    idle,
		WebSocket:      ws,
	}

	return cfg, nil
}

type App struct {
	logger   *slog.Logger
	cfg      *Config
	router   *mux.Router
	sessions *session.Manager
	records  repository.RecordStore
}

func New(logger *slog.Logger, cfg *Config) *App {
	app := &App{
		logger: logger,
		cfg:    cfg,
		router: mux.NewRouter(),
	}

	return app
}

// openRecords stores records in postgres when a database is configured and
// in memory otherwise. The returned func releases the store.
func (a *App) openRecords(ctx context.Context) (repository.RecordStore, func(), error) {
	if !config.DatabaseConfigured() {
		a.logger.Warn("no database configured, records are kept in memory")
		return repository.NewMemory(), func() {}, nil
	}

	db, migrator, err := database.ConnectAndMigrate(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to connect to db: %w", err)
	}

	if version, dirty, err := migrator.Version(); err == nil {
		a.logger.Info(
			"database ready",
			slog.Uint64("version", uint64(version)),
			slog.Bool("dirty", dirty),
		)
	}

	return repository.New(db), func() {
		migrator.Close()
		db.Close()
	}, nil
}

// mount wires the handlers to records and scheduler.
func (a *App) mount(records repository.RecordStore, scheduler clock.Scheduler) {
	a.records = records
	a.sessions = session.NewManager(a.logger, records, scheduler)
	a.loadRoutes()
}

func (a *App) Handler() http.Handler {
	return middleware.Wrap(
		a.router,
		middleware.Cors(a.cfg.AllowedOrigins...),
		middleware.Logging(a.logger),
	)
}

func (a *App) Start(ctx context.Context) error {
	records, closeRecords, err := a.openRecords(ctx)
	if err != nil {
		return err
	}
	defer closeRecords()

	wall := clock.NewWall(ctx)
	a.mount(records, wall)
	defer a.sessions.Close()

	if a.cfg.IdleTimeout > 0 {
		stop := wall.Every(pruneInterval, func() {
			a.sessions.Prune(a.cfg.IdleTimeout)
		})
		defer stop()
	}

	return a.serve(ctx)
}

func (a *App) serve(ctx context.Context) error {
	server := &http.Server{
		Addr:        a.cfg.Port,
		Handler:     a.Handler(),
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Info("server listening", slog.String("addr", a.cfg.Port))
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("unable to listen and serve: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(sctx); err != nil {
			return fmt.Errorf("unable to shut down: %w", err)
		}
		a.logger.Info("server stopped")
		return nil
	})

	return g.Wait()
}
