package channels

import (
	"context"
	"fmt"
	"sync"

	slackgo "github.com/slack-go/slack"

	"github.com/crystaldolphin/msgscheduler/internal/bus"
	"github.com/crystaldolphin/msgscheduler/internal/config/channel"
	"github.com/crystaldolphin/msgscheduler/internal/logx"
)

// SlackChannel delivers messages with a Slack bot token. Destinations are
// channel ids, user ids (DM) or #channel names.
type SlackChannel struct {
	Base
	cfg  *channel.SlackConfig
	opts []slackgo.Option

	mu        sync.RWMutex
	client    *slackgo.Client
	botUserID string
}

// NewSlackChannel creates a SlackChannel. opts are passed to the slack
// client (e.g. slackgo.OptionAPIURL).
func NewSlackChannel(cfg *channel.SlackConfig, log logx.Logger, opts ...slackgo.Option) *SlackChannel {
	return &SlackChannel{
		Base: NewBase(bus.ChannelSlack, log),
		cfg:  cfg,
		opts: opts,
	}
}

// Start verifies the token with auth.test and holds the client until ctx is
// cancelled.
func (s *SlackChannel) Start(ctx context.Context) error {
	if s.cfg.BotToken == "" {
		return fmt.Errorf("slack: bot token not configured")
	}

	client := slackgo.New(s.cfg.BotToken, s.opts...)
	resp, err := client.AuthTestContext(ctx)
	if err != nil {
		return fmt.Errorf("slack: auth test: %w", err)
	}

	s.mu.Lock()
	s.client = client
	s.botUserID = resp.UserID
	s.mu.Unlock()
	s.setReady(true)
	s.log.Info("slack: connected", logx.String("bot_user_id", resp.UserID), logx.String("team", resp.Team))

	<-ctx.Done()
	s.setReady(false)
	return ctx.Err()
}

// BotUserID returns the authenticated bot's user id, empty before Start.
func (s *SlackChannel) BotUserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.botUserID
}

func (s *SlackChannel) Send(ctx context.Context, msg bus.OutboundMessage) error {
	s.mu.RLock()
	client := s.client
	s.mu.RUnlock()
	if client == nil {
		return fmt.Errorf("slack: %w", ErrNotConnected)
	}

	// mrkdwn is Slack's default; escaping turns it off.
	_, _, err := client.PostMessageContext(ctx, msg.ChatId(),
		slackgo.MsgOptionText(msg.Content(), !s.cfg.Markdown))
	if err != nil {
		return fmt.Errorf("slack: post to %s: %w", msg.ChatId(), err)
	}
	return nil
}
