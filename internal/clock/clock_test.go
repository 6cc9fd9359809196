package clock

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestManualAdvance(t *testing.T) {
	m := NewManual()

	var fast, slow int
	m.Every(time.Second, func() { fast++ })
	m.Every(3*time.Second, func() { slow++ })

	m.Advance(500 * time.Millisecond)
	assert.Equal(t, 0, fast)

	m.Advance(500 * time.Millisecond)
	assert.Equal(t, 1, fast)
	assert.Equal(t, 0, slow)

	m.Advance(5 * time.Second)
	assert.Equal(t, 6, fast)
	assert.Equal(t, 2, slow)
}

func TestManualCancel(t *testing.T) {
	m := NewManual()

	var n int
	cancel := m.Every(time.Second, func() { n++ })
	assert.Equal(t, 1, m.Active())

	m.Advance(2 * time.Second)
	cancel()
	cancel()
	m.Advance(10 * time.Second)

	assert.Equal(t, 2, n)
	assert.Equal(t, 0, m.Active())
}

func TestManualSelfCancel(t *testing.T) {
	m := NewManual()

	var (
		n      int
		cancel CancelFunc
	)
	cancel = m.Every(time.Second, func() {
		n++
		if n == 3 {
			cancel()
		}
	})

	m.Advance(10 * time.Second)
	assert.Equal(t, 3, n)
	assert.Equal(t, 0, m.Active())
}

func TestManualNonPositiveInterval(t *testing.T) {
	assert.Panics(t, func() {
		NewManual().Every(0, func() {})
	})
}

func TestWallTicksUntilCancelled(t *testing.T) {
	var n atomic.Int32
	cancel := NewWall(context.Background()).Every(time.Millisecond, func() {
		n.Add(1)
	})

	assert.Eventually(t, func() bool { return n.Load() >= 3 },
		time.Second, time.Millisecond)

	cancel()
	time.Sleep(5 * time.Millisecond)
	stopped := n.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, stopped, n.Load())
}

func TestWallStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var n atomic.Int32
	NewWall(ctx).Every(time.Millisecond, func() { n.Add(1) })

	assert.Eventually(t, func() bool { return n.Load() >= 1 },
		time.Second, time.Millisecond)

	cancel()
	time.Sleep(5 * time.Millisecond)
	stopped := n.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, stopped, n.Load())
}
