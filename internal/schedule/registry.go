package schedule

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/crystaldolphin/msgscheduler/internal/logx"
)

// Sender delivers a text to a destination.
type Sender interface {
	Deliver(ctx context.Context, destination, text string) error
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the registry logger.
func WithLogger(l logx.Logger) Option { return func(r *Registry) { r.log = l } }

// WithLocation sets the zone used for fire times without an explicit offset.
func WithLocation(loc *time.Location) Option { return func(r *Registry) { r.loc = loc } }

// WithMetrics attaches prometheus collectors.
func WithMetrics(m *Metrics) Option { return func(r *Registry) { r.metrics = m } }

// WithClock overrides time.Now for CreatedAt stamps.
func WithClock(now func() time.Time) Option { return func(r *Registry) { r.now = now } }

// WithIDFunc overrides NewJobID.
func WithIDFunc(fn func(destination string) string) Option {
	return func(r *Registry) { r.newID = fn }
}

// Registry is the authoritative set of pending scheduled messages.
type Registry struct {
	sender  Sender
	timer   Timer
	log     logx.Logger
	loc     *time.Location
	metrics *Metrics
	now     func() time.Time
	newID   func(destination string) string

	// ctx is handed to the sender on fire; Close cancels it.
	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	entries map[string]*entry
	seq     uint64
	closed  bool
}

// NewRegistry creates an empty Registry delivering through sender when
// timer fires.
func NewRegistry(sender Sender, timer Timer, opts ...Option) *Registry {
	ctx, cancel := context.WithCancel(context.Background())
	r := &Registry{
		sender:  sender,
		timer:   timer,
		loc:     time.Local,
		now:     time.Now,
		newID:   NewJobID,
		ctx:     ctx,
		cancel:  cancel,
		entries: make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Schedule validates the request, registers a job and arms its timer.
// It returns the new job id.
func (r *Registry) Schedule(destination, text, fireAt string) (string, error) {
	destination = strings.TrimSpace(destination)
	if destination == "" {
		return "", fmt.Errorf("%w: chatId is required", ErrInvalidArgument)
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: message is required", ErrInvalidArgument)
	}
	at, err := ParseFireAt(fireAt, r.loc)
	if err != nil {
		return "", err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return "", ErrClosed
	}

	id := r.newID(destination)
	for {
		if _, taken := r.entries[id]; !taken {
			break
		}
		id = NewJobID(destination)
	}

	r.seq++
	e := &entry{
		job: Job{
			ID:          id,
			Destination: destination,
			Text:        text,
			FireAt:      fireAt,
			At:          at,
			CreatedAt:   r.now(),
		},
		seq: r.seq,
	}
	// Insert before arming: a past fire time may run the callback as soon as
	// the lock is released, and it must find the entry.
	r.entries[id] = e
	h, err := r.timer.At(at, func() { r.fire(id) })
	if err != nil {
		delete(r.entries, id)
		return "", fmt.Errorf("arm timer: %w", err)
	}
	e.handle = h

	r.metrics.recordScheduled()
	r.metrics.setPending(len(r.entries))
	r.log.Info("schedule: job added",
		logx.String("id", id),
		logx.String("destination", destination),
		logx.Time("fire_at", at),
	)
	return id, nil
}

// List returns every pending job in insertion order.
func (r *Registry) List() []Job {
	r.mu.Lock()
	all := make([]*entry, 0, len(r.entries))
	for _, e := range r.entries {
		all = append(all, e)
	}
	r.mu.Unlock()

	sort.Slice(all, func(i, j int) bool { return all[i].seq < all[j].seq })
	out := make([]Job, len(all))
	for i, e := range all {
		out[i] = e.job
	}
	return out
}

// Get returns the pending job with id.
func (r *Registry) Get(id string) (Job, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok {
		return Job{}, false
	}
	return e.job, true
}

// Len returns the number of pending jobs.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Cancel stops the job's timer and removes it. Unknown ids yield ErrNotFound.
func (r *Registry) Cancel(id string) error {
	r.mu.Lock()
	e, ok := r.entries[id]
	if ok {
		delete(r.entries, id)
		r.metrics.setPending(len(r.entries))
	}
	r.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	if e.handle != nil {
		e.handle.Stop()
	}
	r.metrics.recordCancelled()
	r.log.Info("schedule: job cancelled", logx.String("id", id))
	return nil
}

// Close stops every pending timer and empties the registry. In-flight
// deliveries see their context cancelled.
func (r *Registry) Close() {
	r.mu.Lock()
	r.closed = true
	pending := r.entries
	r.entries = make(map[string]*entry)
	r.metrics.setPending(0)
	r.mu.Unlock()

	for _, e := range pending {
		if e.handle != nil {
			e.handle.Stop()
		}
	}
	r.cancel()
	if len(pending) > 0 {
		r.log.Warn("schedule: discarded pending jobs on close", logx.Int("count", len(pending)))
	}
}

// fire runs on the timer's goroutine when a job is due. A delivery error is
// logged and dropped; the job is removed either way.
func (r *Registry) fire(id string) {
	r.mu.Lock()
	e, ok := r.entries[id]
	r.mu.Unlock()
	if !ok {
		r.log.Debug("schedule: fired job no longer registered", logx.String("id", id))
		return
	}

	start := time.Now()
	err := r.deliver(e.job)
	r.metrics.recordFired(err)
	if err != nil {
		r.log.Error("schedule: delivery failed",
			logx.String("id", id),
			logx.String("destination", e.job.Destination),
			logx.Err(err),
		)
	} else {
		r.log.Info("schedule: message delivered",
			logx.String("id", id),
			logx.String("destination", e.job.Destination),
			logx.Duration("took", time.Since(start)),
		)
	}

	r.remove(id)
}

func (r *Registry) deliver(job Job) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("sender panic: %v", p)
		}
	}()
	return r.sender.Deliver(r.ctx, job.Destination, job.Text)
}

// remove deletes id if still present. Removing an absent id is a no-op.
func (r *Registry) remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[id]; !ok {
		return false
	}
	delete(r.entries, id)
	r.metrics.setPending(len(r.entries))
	return true
}
