package session

import (
	"context"
	"encoding/base64"
	"errors"
	"hash/maphash"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vancomm/sweeper/internal/clock"
	"github.com/vancomm/sweeper/internal/mines"
	"github.com/vancomm/sweeper/internal/repository"
)

var ErrNotFound = errors.New("session not found")

const recordTimeout = 5 * time.Second

// Manager owns the live sessions of a server.
type Manager struct {
	logger    *slog.Logger
	records   repository.RecordStore
	scheduler clock.Scheduler
	now       func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager returns a manager that runs every game on scheduler and stores
// finished rounds in records. records may be nil.
func NewManager(
	logger *slog.Logger,
	records repository.RecordStore,
	scheduler clock.Scheduler,
) *Manager {
	return &Manager{
		logger:    logger,
		records:   records,
		scheduler: scheduler,
		now:       time.Now,
		sessions:  make(map[string]*Session),
	}
}

func newSessionId() string {
	id := uuid.New()
	return base64.RawURLEncoding.EncodeToString(id[:])
}

func createRand() *rand.Rand {
	return rand.New(rand.NewPCG(
		new(maphash.Hash).Sum64(), new(maphash.Hash).Sum64(),
	))
}

// Create starts a new game. opts are applied after the manager's own
// options.
func (m *Manager) Create(
	params mines.GameParams, player *string, opts ...mines.Option,
) (*Session, error) {
	now := m.now()
	s := &Session{
		Id:         newSessionId(),
		StartedAt:  now.UTC(),
		manager:    m,
		subs:       make(map[*subscriber]struct{}),
		lastActive: now,
	}
	if player != nil {
		name := *player
		s.Player = &name
	}

	game, err := mines.NewGame(params, append([]mines.Option{
		mines.WithRand(createRand()),
		mines.WithScheduler(m.scheduler),
		mines.WithNotifier(s),
	}, opts...)...)
	if err != nil {
		return nil, err
	}
	s.game = game

	m.mu.Lock()
	m.sessions[s.Id] = s
	m.mu.Unlock()

	m.logger.Debug(
		"session created",
		slog.String("id", s.Id),
		slog.String("params", params.String()),
	)

	return s, nil
}

func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

// Remove stops the session's game and closes its subscriptions.
func (m *Manager) Remove(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if !ok {
		return ErrNotFound
	}
	s.close()
	m.logger.Debug("session removed", slog.String("id", id))
	return nil
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Prune removes sessions that have seen no move for longer than idle and
// have no subscribers. It returns the number of removed sessions.
func (m *Manager) Prune(idle time.Duration) int {
	deadline := m.now().Add(-idle)

	m.mu.Lock()
	var stale []*Session
	for id, s := range m.sessions {
		if s.idleSince().Before(deadline) && s.Subscribers() == 0 {
			stale = append(stale, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range stale {
		s.close()
	}
	if len(stale) > 0 {
		m.logger.Info("pruned idle sessions", slog.Int("count", len(stale)))
	}
	return len(stale)
}

func (m *Manager) Close() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		s.close()
	}
}

func (m *Manager) record(s *Session, snap mines.Snapshot) {
	if m.records == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()

	record, err := m.records.CreateRecord(ctx, repository.CreateRecordParams{
		Player:         s.Player,
		Params:         snap.Params(),
		Won:            snap.State == mines.Won,
		ElapsedSeconds: snap.ElapsedSeconds,
		FinishedAt:     m.now(),
	})
	if err != nil {
		m.logger.Error(
			"unable to store record",
			slog.String("session", s.Id),
			slog.Any("error", err),
		)
		return
	}
	m.logger.Debug(
		"record stored",
		slog.String("session", s.Id),
		slog.String("record", record.RecordId),
	)
}
