package channels

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/crystaldolphin/msgscheduler/internal/bus"
	"github.com/crystaldolphin/msgscheduler/internal/config"
	"github.com/crystaldolphin/msgscheduler/internal/logx"
	"github.com/crystaldolphin/msgscheduler/internal/schema"
)

// Manager owns all enabled channels and delivers messages through the
// configured sender channel.
type Manager struct {
	channels map[bus.Channel]schema.Channel
	sender   bus.Channel
	log      logx.Logger
}

// NewManager creates a Manager and initialises all enabled channels.
func NewManager(cfg *config.Config, log logx.Logger) *Manager {
	var chans []schema.Channel
	if cfg.Channels.Telegram.Enabled {
		chans = append(chans, NewTelegramChannel(&cfg.Channels.Telegram, log))
	}
	if cfg.Channels.Slack.Enabled {
		chans = append(chans, NewSlackChannel(&cfg.Channels.Slack, log))
	}
	if cfg.Channels.WhatsApp.Enabled {
		chans = append(chans, NewWhatsAppChannel(&cfg.Channels.WhatsApp, log))
	}
	return NewManagerWith(bus.Channel(cfg.Sender.Channel), log, chans...)
}

// NewManagerWith creates a Manager over explicit channels. sender names the
// channel Deliver uses.
func NewManagerWith(sender bus.Channel, log logx.Logger, chans ...schema.Channel) *Manager {
	m := &Manager{
		channels: make(map[bus.Channel]schema.Channel, len(chans)),
		sender:   sender,
		log:      log,
	}
	for _, ch := range chans {
		m.channels[bus.Channel(ch.Name())] = ch
		log.Info("channel enabled", logx.String("name", ch.Name()))
	}
	return m
}

// EnabledChannels returns the names of all enabled channels, sorted.
func (m *Manager) EnabledChannels() []string {
	names := make([]string, 0, len(m.channels))
	for n := range m.channels {
		names = append(names, string(n))
	}
	sort.Strings(names)
	return names
}

// SenderChannel returns the name of the channel Deliver uses.
func (m *Manager) SenderChannel() string { return string(m.sender) }

// StartAll starts all channels concurrently. Blocks until ctx is cancelled.
func (m *Manager) StartAll(ctx context.Context) error {
	for name, ch := range m.channels {
		go func(n bus.Channel, c schema.Channel) {
			m.log.Info("starting channel", logx.String("name", string(n)))
			if err := c.Start(ctx); err != nil && ctx.Err() == nil {
				m.log.Error("channel exited with error", logx.String("name", string(n)), logx.Err(err))
			}
		}(name, ch)
	}

	<-ctx.Done()
	return ctx.Err()
}

// Ready reports whether the sender channel is connected.
func (m *Manager) Ready() bool {
	ch, ok := m.channels[m.sender]
	return ok && ch.Ready()
}

// WaitReady polls until the sender channel is connected or ctx is done.
func (m *Manager) WaitReady(ctx context.Context) error {
	if _, ok := m.channels[m.sender]; !ok {
		return fmt.Errorf("%w: channel %q not enabled", ErrDelivery, m.sender)
	}
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for !m.Ready() {
		select {
		case <-ctx.Done():
			return fmt.Errorf("channel %s not ready: %w", m.sender, ctx.Err())
		case <-ticker.C:
		}
	}
	return nil
}

// Deliver sends text to destination through the sender channel. Every
// failure wraps ErrDelivery.
func (m *Manager) Deliver(ctx context.Context, destination, text string) error {
	ch, ok := m.channels[m.sender]
	if !ok {
		return fmt.Errorf("%w: channel %q not enabled", ErrDelivery, m.sender)
	}

	msg := bus.NewOutboundMessage(m.sender, destination, text)
	if err := ch.Send(ctx, msg); err != nil {
		return fmt.Errorf("%w: %w", ErrDelivery, err)
	}
	m.log.Debug("message sent",
		logx.String("channel", string(m.sender)),
		logx.String("destination", destination),
		logx.Duration("took", time.Since(msg.Created())),
	)
	return nil
}
