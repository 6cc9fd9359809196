package app

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vancomm/sweeper/internal/clock"
	"github.com/vancomm/sweeper/internal/config"
	"github.com/vancomm/sweeper/internal/mines"
	"github.com/vancomm/sweeper/internal/repository"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func testConfig(t *testing.T) *Config {
	t.Helper()
	ws, err := config.NewWebSocket()
	require.NoError(t, err)
	return &Config{
		Port:      "127.0.0.1:0",
		BasePath:  "/api",
		Defaults:  mines.GameParams{Rows: 9, Columns: 9, MineCount: 10},
		MaxCells:  config.DefaultMaxCells,
		WebSocket: ws,
	}
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("APP_PORT", ":9090")
	t.Setenv("APP_BASE_PATH", "/sweeper")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test")
	t.Setenv("MINES_ROWS", "16")
	t.Setenv("MINES_COLUMNS", "16")
	t.Setenv("MINES_COUNT", "40")
	t.Setenv("SESSION_IDLE_TIMEOUT", "5m")
	t.Setenv("WS_PING_PERIOD", "")
	t.Setenv("MINES_MAX_CELLS", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Port)
	assert.Equal(t, "/sweeper", cfg.BasePath)
	assert.Equal(t, []string{"http://a.test"}, cfg.AllowedOrigins)
	assert.Equal(t, mines.GameParams{Rows: 16, Columns: 16, MineCount: 40}, cfg.Defaults)
	assert.Equal(t, 5*time.Minute, cfg.IdleTimeout)
	assert.Equal(t, config.DefaultMaxCells, cfg.MaxCells)

	t.Setenv("MINES_MAX_CELLS", "100")
	_, err = LoadConfig()
	assert.ErrorContains(t, err, "MINES_MAX_CELLS")
	t.Setenv("MINES_MAX_CELLS", "")

	t.Setenv("MINES_COUNT", "256")
	_, err = LoadConfig()
	assert.ErrorIs(t, err, mines.ErrInvalidParams)
}

func TestRoutes(t *testing.T) {
	a := New(discard, testConfig(t))
	a.mount(repository.NewMemory(), clock.NewManual())
	defer a.sessions.Close()

	server := httptest.NewServer(a.Handler())
	defer server.Close()

	res, err := http.Get(server.URL + "/api/status")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.NotEmpty(t, res.Header.Get("X-Request-Id"))

	res, err = http.Post(server.URL+"/api/game", "", nil)
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusCreated, res.StatusCode)

	var body struct {
		Game mines.Snapshot `json:"game"`
	}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	assert.Equal(t, testConfig(t).Defaults, body.Game.Params())
	assert.Equal(t, 1, a.sessions.Len())

	res, err = http.Get(server.URL + "/status")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestServeStopsWithContext(t *testing.T) {
	a := New(discard, testConfig(t))
	a.mount(repository.NewMemory(), clock.NewManual())
	defer a.sessions.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.serve(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestStartWithoutDatabase(t *testing.T) {
	for _, key := range []string{"DATABASE_URL", "POSTGRES_HOST", "POSTGRES_DB"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	a := New(discard, testConfig(t))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Start(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop")
	}
	_, ok := a.records.(*repository.Memory)
	assert.True(t, ok)
}
