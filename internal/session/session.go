package session

import (
	"sync"
	"time"

	"github.com/vancomm/sweeper/internal/mines"
)

const subscriberBuffer = 8

type subscriber struct {
	ch      chan mines.Snapshot
	version int
}

// send never blocks: when the buffer is full the oldest pending snapshot is
// dropped. Snapshots older than the last one sent are skipped. Must be
// called with the session lock held.
func (sub *subscriber) send(snap mines.Snapshot) {
	if snap.Version < sub.version {
		return
	}
	sub.version = snap.Version
	for {
		select {
		case sub.ch <- snap:
			return
		default:
		}
		select {
		case <-sub.ch:
		default:
		}
	}
}

// Session is a game hosted by a [Manager]. It forwards every engine
// notification to its subscribers and stores a record when a round ends.
type Session struct {
	Id        string
	Player    *string
	StartedAt time.Time

	game    *mines.Game
	manager *Manager

	mu            sync.Mutex
	subs          map[*subscriber]struct{}
	recordedRound int
	lastActive    time.Time
	closed        bool
}

// Notify implements [mines.Notifier].
func (s *Session) Notify(snap mines.Snapshot) {
	s.mu.Lock()
	for sub := range s.subs {
		sub.send(snap)
	}
	record := snap.State.Over() && snap.Round != s.recordedRound
	if record {
		s.recordedRound = snap.Round
	}
	s.mu.Unlock()

	if record {
		s.manager.record(s, snap)
	}
}

// Subscribe returns a channel that first receives the current snapshot and
// then every later one. The channel is closed by the returned func or when
// the session is removed.
func (s *Session) Subscribe() (<-chan mines.Snapshot, func()) {
	sub := &subscriber{ch: make(chan mines.Snapshot, subscriberBuffer)}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		close(sub.ch)
		return sub.ch, func() {}
	}
	s.subs[sub] = struct{}{}
	sub.send(s.game.Snapshot())

	var once sync.Once
	return sub.ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if _, ok := s.subs[sub]; ok {
				delete(s.subs, sub)
				close(sub.ch)
			}
		})
	}
}

func (s *Session) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastActive = s.manager.now()
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

func (s *Session) Params() mines.GameParams {
	return s.game.Params()
}

func (s *Session) Snapshot() mines.Snapshot {
	return s.game.Snapshot()
}

// Reveal, ToggleFlag and Chord panic on points outside the board, like the
// game methods they wrap.
func (s *Session) Reveal(row, column int) {
	s.touch()
	s.game.Reveal(row, column)
}

func (s *Session) ToggleFlag(row, column int) {
	s.touch()
	s.game.ToggleFlag(row, column)
}

func (s *Session) Chord(row, column int) {
	s.touch()
	s.game.Chord(row, column)
}

func (s *Session) Reset() {
	s.touch()
	s.game.Reset()
}

func (s *Session) close() {
	s.game.Close()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for sub := range s.subs {
		close(sub.ch)
	}
	clear(s.subs)
}
