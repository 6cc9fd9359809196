package clock

import (
	"context"
	"time"
)

// CancelFunc stops a schedule. Calling it more than once is allowed.
type CancelFunc func()

// Scheduler runs fn every interval until the returned [CancelFunc] is called.
type Scheduler interface {
	Every(interval time.Duration, fn func()) CancelFunc
}

type SchedulerFunc func(interval time.Duration, fn func()) CancelFunc

// [SchedulerFunc] implements [Scheduler]
func (f SchedulerFunc) Every(interval time.Duration, fn func()) CancelFunc {
	return f(interval, fn)
}

// Wall schedules callbacks on real time. Every schedule it creates is bound to
// the context given to [NewWall] and stops when that context is done.
type Wall struct {
	ctx context.Context
}

func NewWall(ctx context.Context) Wall {
	return Wall{ctx: ctx}
}

// [Wall] implements [Scheduler]
func (w Wall) Every(interval time.Duration, fn func()) CancelFunc {
	parent := w.ctx
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				// select picks randomly when both are ready
				if ctx.Err() != nil {
					return
				}
				fn()
			}
		}
	}()
	return CancelFunc(cancel)
}
