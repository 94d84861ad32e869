// Package clock provides the millisecond tick counter used by the
// automation timers. The counter is 32 bits wide and wraps after ~49.7 days;
// all durations must be computed with Elapsed.
package clock

import (
	"sync"
	"time"
)

// Clock returns a monotonic millisecond counter.
type Clock interface {
	NowMs() uint32
}

// Elapsed returns the milliseconds from then to now using modular
// arithmetic, so it stays correct across a single counter wraparound.
func Elapsed(now, then uint32) uint32 {
	return now - then
}

// Millis converts a duration to counter units, saturating at the counter range.
func Millis(d time.Duration) uint32 {
	ms := d.Milliseconds()
	switch {
	case ms <= 0:
		return 0
	case ms > int64(^uint32(0)):
		return ^uint32(0)
	}
	return uint32(ms)
}

type monotonic struct {
	start time.Time
}

// New returns a Clock backed by the runtime monotonic clock, starting at zero.
func New() Clock {
	return &monotonic{start: time.Now()}
}

func (m *monotonic) NowMs() uint32 {
	return uint32(time.Since(m.start).Milliseconds())
}

// Manual is a Clock moved explicitly, used by tests and the simulator.
type Manual struct {
	mu  sync.Mutex
	now uint32
}

func NewManual(start uint32) *Manual {
	return &Manual{now: start}
}

func (m *Manual) NowMs() uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Advance moves the counter forward, wrapping like the hardware counter.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	m.now += uint32(d.Milliseconds())
	m.mu.Unlock()
}

func (m *Manual) Set(ms uint32) {
	m.mu.Lock()
	m.now = ms
	m.mu.Unlock()
}
