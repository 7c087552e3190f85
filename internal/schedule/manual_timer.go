package schedule

import (
	"sort"
	"sync"
	"time"
)

// ManualTimer is a Timer driven by explicit Advance calls. Callbacks run
// synchronously on the caller's goroutine.
type ManualTimer struct {
	mu      sync.Mutex
	now     time.Time
	seq     uint64
	handles []*manualHandle
}

type manualHandle struct {
	t       *ManualTimer
	at      time.Time
	seq     uint64
	fn      func()
	stopped bool
	fired   bool
}

// NewManualTimer creates a ManualTimer whose clock starts at now.
func NewManualTimer(now time.Time) *ManualTimer {
	return &ManualTimer{now: now}
}

func (m *ManualTimer) At(at time.Time, fn func()) (Handle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	h := &manualHandle{t: m, at: at, seq: m.seq, fn: fn}
	m.handles = append(m.handles, h)
	return h, nil
}

// Now returns the timer's current clock.
func (m *ManualTimer) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Advance moves the clock to `to` and runs every live callback due at or
// before it, earliest first. It returns the number of callbacks run.
func (m *ManualTimer) Advance(to time.Time) int {
	m.mu.Lock()
	if to.After(m.now) {
		m.now = to
	}
	var due []*manualHandle
	live := m.handles[:0]
	for _, h := range m.handles {
		switch {
		case h.stopped:
		case !h.at.After(m.now):
			h.fired = true
			due = append(due, h)
		default:
			live = append(live, h)
		}
	}
	m.handles = live
	m.mu.Unlock()

	sort.Slice(due, func(i, j int) bool {
		if due[i].at.Equal(due[j].at) {
			return due[i].seq < due[j].seq
		}
		return due[i].at.Before(due[j].at)
	})
	for _, h := range due {
		h.fn()
	}
	return len(due)
}

// Pending returns the number of armed callbacks that have neither fired nor
// been stopped.
func (m *ManualTimer) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, h := range m.handles {
		if !h.stopped && !h.fired {
			n++
		}
	}
	return n
}

func (h *manualHandle) Stop() {
	h.t.mu.Lock()
	defer h.t.mu.Unlock()
	if !h.fired {
		h.stopped = true
	}
}
