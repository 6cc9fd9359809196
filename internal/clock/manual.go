package clock

import (
	"maps"
	"slices"
	"sync"
	"time"
)

type job struct {
	interval time.Duration
	elapsed  time.Duration
	fn       func()
}

// Manual is a [Scheduler] driven by explicit calls to [Manual.Advance]. It is
// meant for tests and for replaying games at a controlled pace.
type Manual struct {
	mu   sync.Mutex
	next int
	jobs map[int]*job
}

func NewManual() *Manual {
	return &Manual{jobs: make(map[int]*job)}
}

// [*Manual] implements [Scheduler]
func (m *Manual) Every(interval time.Duration, fn func()) CancelFunc {
	if interval <= 0 {
		panic("clock: non-positive interval")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.next
	m.next++
	m.jobs[id] = &job{interval: interval, fn: fn}

	return func() {
		m.mu.Lock()
		delete(m.jobs, id)
		m.mu.Unlock()
	}
}

// Active reports how many schedules have not been cancelled yet.
func (m *Manual) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.jobs)
}

// Advance moves time forward by d and runs every callback that became due, in
// schedule creation order. Callbacks run without the scheduler lock held, so
// they may cancel schedules (their own included); a cancelled schedule does not
// fire again.
func (m *Manual) Advance(d time.Duration) {
	type due struct {
		id    int
		fires int
	}

	m.mu.Lock()
	var pending []due
	for _, id := range slices.Sorted(maps.Keys(m.jobs)) {
		j := m.jobs[id]
		before := j.elapsed / j.interval
		j.elapsed += d
		if n := int(j.elapsed/j.interval - before); n > 0 {
			pending = append(pending, due{id, n})
		}
	}
	m.mu.Unlock()

	for _, p := range pending {
		for range p.fires {
			m.mu.Lock()
			j, ok := m.jobs[p.id]
			m.mu.Unlock()
			if !ok {
				break
			}
			j.fn()
		}
	}
}
