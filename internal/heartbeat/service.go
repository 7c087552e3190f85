// Package heartbeat provides a periodic background check that reports the
// scheduler's pending job count and whether the sender channel is connected.
package heartbeat

import (
	"context"
	"time"

	"github.com/crystaldolphin/msgscheduler/internal/logx"
)

// Status is one heartbeat sample.
type Status struct {
	Sender      string
	SenderReady bool
	Pending     int
}

// ProbeFunc samples the current status.
type ProbeFunc func() Status

// Service runs a periodic status check and logs sender connectivity
// transitions.
type Service struct {
	probe    ProbeFunc
	interval time.Duration
	log      logx.Logger

	// lastReady is nil until the first check.
	lastReady *bool
}

// NewService creates a heartbeat Service.
// interval defaults to 5 minutes if zero.
func NewService(probe ProbeFunc, interval time.Duration, log logx.Logger) *Service {
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	return &Service{
		probe:    probe,
		interval: interval,
		log:      log,
	}
}

// Start runs the heartbeat loop until ctx is cancelled.
func (s *Service) Start(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.log.Info("heartbeat: started", logx.Duration("interval", s.interval))

	for {
		select {
		case <-ticker.C:
			s.check()
		case <-ctx.Done():
			s.log.Info("heartbeat: stopped")
			return ctx.Err()
		}
	}
}

func (s *Service) check() Status {
	st := s.probe()
	fields := []logx.Field{
		logx.String("sender", st.Sender),
		logx.Bool("ready", st.SenderReady),
		logx.Int("pending", st.Pending),
	}

	switch {
	case !st.SenderReady && st.Pending > 0:
		s.log.Warn("heartbeat: sender not connected, pending messages may fail", fields...)
	case s.lastReady != nil && *s.lastReady != st.SenderReady:
		if st.SenderReady {
			s.log.Info("heartbeat: sender reconnected", fields...)
		} else {
			s.log.Warn("heartbeat: sender disconnected", fields...)
		}
	default:
		s.log.Debug("heartbeat: ok", fields...)
	}

	ready := st.SenderReady
	s.lastReady = &ready
	return st
}
