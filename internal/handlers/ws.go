package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vancomm/sweeper/internal/mines"
	"github.com/vancomm/sweeper/internal/session"
)

type wsCommand string

const (
	wsState wsCommand = "g"
	wsOpen  wsCommand = "o"
	wsFlag  wsCommand = "f"
	wsChord wsCommand = "c"
	wsReset wsCommand = "n"
)

var commandNargs = map[wsCommand]int{
	wsState: 0,
	wsOpen:  2,
	wsFlag:  2,
	wsChord: 2,
	wsReset: 0,
}

func parsePoint(args []string) (p mines.Point, err error) {
	if p.Row, err = strconv.Atoi(args[0]); err != nil {
		err = fmt.Errorf("row must be an int")
		return
	}
	if p.Column, err = strconv.Atoi(args[1]); err != nil {
		err = fmt.Errorf("column must be an int")
		return
	}
	return
}

// gameExecutor applies text commands to a session.
type gameExecutor struct {
	*session.Session
}

// execute runs a single command line. It reports whether the client asked
// for the current state.
func (game gameExecutor) execute(line string) (bool, error) {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return false, nil
	}

	cmd := wsCommand(parts[0])
	nargs, ok := commandNargs[cmd]
	if !ok {
		return false, fmt.Errorf("unknown command %q", parts[0])
	}
	if nargs != len(parts)-1 {
		return false, fmt.Errorf("command %q takes %d arguments", cmd, nargs)
	}

	switch cmd {
	case wsState:
		return true, nil
	case wsReset:
		game.Reset()
		return false, nil
	}

	p, err := parsePoint(parts[1:])
	if err != nil {
		return false, err
	}
	if !game.Params().PointInBounds(p.Row, p.Column) {
		return false, fmt.Errorf("%w: %s", ErrPointOutOfBounds, p)
	}

	switch cmd {
	case wsOpen:
		game.Reveal(p.Row, p.Column)
	case wsFlag:
		game.ToggleFlag(p.Row, p.Column)
	case wsChord:
		game.Chord(p.Row, p.Column)
	}
	return false, nil
}

// ConnectWS streams the session's snapshots to a websocket client and applies
// the commands it sends back, one per line.
func (g *GameHandler) ConnectWS(w http.ResponseWriter, r *http.Request) {
	s := g.lookup(w, r)
	if s == nil {
		return
	}

	conn, err := g.ws.Upgrader.Upgrade(w, r, nil) // headers sent here
	if err != nil {
		g.logger.Error("unable to upgrade", slog.Any("error", err))
		return
	}
	defer conn.Close()

	logger := g.logger.With(slog.String("session", s.Id))
	logger.Debug("established ws connection")

	snaps, unsubscribe := s.Subscribe()
	outbox := make(chan any, 1)
	done := make(chan struct{})

	go func() {
		defer close(done)
		if err := g.wsWriteLoop(conn, snaps, outbox); err != nil {
			logger.Debug("ws write loop stopped", slog.Any("error", err))
		}
	}()

	err = g.wsReadLoop(conn, gameExecutor{s}, outbox, done, logger)
	if err != nil && websocket.IsUnexpectedCloseError(
		err, websocket.CloseNormalClosure, websocket.CloseGoingAway,
	) {
		logger.Warn("abnormal ws break", slog.Any("error", err))
	}

	unsubscribe()
	<-done
	logger.Debug("closed ws connection")
}

func (g *GameHandler) wsReadLoop(
	conn *websocket.Conn,
	game gameExecutor,
	outbox chan<- any,
	done <-chan struct{},
	logger *slog.Logger,
) error {
	pongWait := g.ws.PongWait()
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		mt, buf, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		if mt != websocket.TextMessage {
			return nil
		}

		message := strings.TrimSpace(string(buf))
		logger.Debug(fmt.Sprintf("\t> %s", message))

		for _, line := range strings.Split(message, "\n") {
			resend, err := game.execute(line)
			var reply any
			switch {
			case err != nil:
				reply = wrapError(err)
			case resend:
				reply = game.Snapshot()
			default:
				continue
			}
			select {
			case outbox <- reply:
			case <-done:
				return nil
			}
		}
	}
}

// wsWriteLoop is the only writer of conn. It returns when the subscription
// is closed or a write fails.
func (g *GameHandler) wsWriteLoop(
	conn *websocket.Conn, snaps <-chan mines.Snapshot, outbox <-chan any,
) error {
	ticker := time.NewTicker(g.ws.PingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	write := func(v any) error {
		conn.SetWriteDeadline(time.Now().Add(g.ws.WriteWait))
		return conn.WriteJSON(v)
	}

	for {
		select {
		case snap, ok := <-snaps:
			if !ok {
				conn.WriteControl(
					websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session closed"),
					time.Now().Add(g.ws.WriteWait),
				)
				return nil
			}
			if err := write(snap); err != nil {
				return err
			}
		case v := <-outbox:
			if err := write(v); err != nil {
				return err
			}
		case <-ticker.C:
			deadline := time.Now().Add(g.ws.WriteWait)
			if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				return err
			}
		}
	}
}
