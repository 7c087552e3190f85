package schedule

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	robfigcron "github.com/robfig/cron/v3"

	"github.com/crystaldolphin/msgscheduler/internal/logx"
)

// CronTimer is a Timer backed by a robfig/cron scheduler. All callbacks are
// dispatched by the scheduler's single run loop in fire-time order.
type CronTimer struct {
	cron *robfigcron.Cron
}

// NewCronTimer creates a stopped CronTimer. A panicking callback is logged
// and recovered.
func NewCronTimer(log logx.Logger, loc *time.Location) *CronTimer {
	if loc == nil {
		loc = time.Local
	}
	cl := logx.CronLogger{L: log}
	return &CronTimer{
		cron: robfigcron.New(
			robfigcron.WithLocation(loc),
			robfigcron.WithLogger(cl),
			robfigcron.WithChain(robfigcron.Recover(cl)),
		),
	}
}

// Start runs the scheduler until ctx is cancelled, then waits for running
// callbacks to return.
func (t *CronTimer) Start(ctx context.Context) error {
	t.cron.Start()
	<-ctx.Done()
	<-t.cron.Stop().Done()
	return ctx.Err()
}

// At arms fn for a single run at at. The cron entry is dropped once fn
// returns or the handle is stopped.
func (t *CronTimer) At(at time.Time, fn func()) (Handle, error) {
	h := &cronHandle{cron: t.cron, ready: make(chan struct{})}
	h.id = t.cron.Schedule(&onceSchedule{at: at}, robfigcron.FuncJob(func() {
		defer h.Stop()
		fn()
	}))
	close(h.ready)
	return h, nil
}

// Len returns the number of entries still held by the scheduler.
func (t *CronTimer) Len() int { return len(t.cron.Entries()) }

type cronHandle struct {
	cron  *robfigcron.Cron
	id    robfigcron.EntryID
	ready chan struct{}
	once  sync.Once
}

func (h *cronHandle) Stop() {
	h.once.Do(func() {
		<-h.ready
		h.cron.Remove(h.id)
	})
}

// onceSchedule yields its fire time on the first Next call and the zero
// time afterwards, which robfig treats as "never again". robfig asks once
// when the entry is added (or at Start) and once after each run.
type onceSchedule struct {
	at   time.Time
	used atomic.Bool
}

func (s *onceSchedule) Next(now time.Time) time.Time {
	if s.used.Swap(true) {
		return time.Time{}
	}
	if s.at.After(now) {
		return s.at
	}
	return now
}
