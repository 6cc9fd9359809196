package config

import (
	"fmt"
	"net/http"
	"os"
	"slices"
	"time"

	"github.com/gorilla/websocket"
)

type WebSocket struct {
	Upgrader   websocket.Upgrader
	WriteWait  time.Duration
	PingPeriod time.Duration
}

// PongWait is how long a connection may stay silent before it is dropped.
func (ws WebSocket) PongWait() time.Duration {
	return ws.PingPeriod * 10 / 9
}

// NewWebSocket accepts upgrades from [AllowedOrigins] and reads
// WS_PING_PERIOD (a [time.ParseDuration] string, 54s when unset).
func NewWebSocket() (*WebSocket, error) {
	checkOrigin := func(r *http.Request) bool {
		return true
	}
	if origins := AllowedOrigins(); len(origins) > 0 {
		checkOrigin = func(r *http.Request) bool {
			return slices.Contains(origins, r.Header.Get("Origin"))
		}
	}

	pingPeriod := 54 * time.Second
	if s, ok := os.LookupEnv("WS_PING_PERIOD"); ok && s != "" {
		d, err := time.ParseDuration(s)
		if err != nil {
			return nil, fmt.Errorf("unable to parse WS_PING_PERIOD: %w", err)
		}
		if d <= 0 {
			return nil, fmt.Errorf("WS_PING_PERIOD must be positive")
		}
		pingPeriod = d
	}

	ws := &WebSocket{
		Upgrader: websocket.Upgrader{
			CheckOrigin: checkOrigin,
		},
		WriteWait:  10 * time.Second,
		PingPeriod: pingPeriod,
	}

	return ws, nil
}
