package channels

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/crystaldolphin/msgscheduler/internal/bus"
	"github.com/crystaldolphin/msgscheduler/internal/config/channel"
	"github.com/crystaldolphin/msgscheduler/internal/logx"
)

// telegramMaxLen stays under the Bot API's 4096-character message limit.
const telegramMaxLen = 4000

// TelegramChannel delivers messages through a Telegram bot.
type TelegramChannel struct {
	Base
	cfg *channel.TelegramConfig

	mu  sync.RWMutex
	bot *tgbotapi.BotAPI
}

// NewTelegramChannel creates a TelegramChannel.
func NewTelegramChannel(cfg *channel.TelegramConfig, log logx.Logger) *TelegramChannel {
	return &TelegramChannel{
		Base: NewBase(bus.ChannelTelegram, log),
		cfg:  cfg,
	}
}

// Start authenticates the bot token with getMe and holds the session until
// ctx is cancelled.
func (t *TelegramChannel) Start(ctx context.Context) error {
	if t.cfg.Token == "" {
		return fmt.Errorf("telegram: bot token not configured")
	}
	var (
		bot *tgbotapi.BotAPI
		err error
	)
	if t.cfg.APIEndpoint != "" {
		bot, err = tgbotapi.NewBotAPIWithAPIEndpoint(t.cfg.Token, t.cfg.APIEndpoint)
	} else {
		bot, err = tgbotapi.NewBotAPI(t.cfg.Token)
	}
	if err != nil {
		return fmt.Errorf("telegram: create bot: %w", err)
	}

	t.mu.Lock()
	t.bot = bot
	t.mu.Unlock()
	t.setReady(true)
	t.log.Info("telegram: connected", logx.String("username", bot.Self.UserName))

	<-ctx.Done()
	t.setReady(false)
	return ctx.Err()
}

func (t *TelegramChannel) botAPI() *tgbotapi.BotAPI {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.bot
}

// Send delivers msg, splitting long texts. With parseMarkdown enabled each
// chunk is sent as HTML first and resent as plain text if Telegram rejects
// the markup.
func (t *TelegramChannel) Send(_ context.Context, msg bus.OutboundMessage) error {
	bot := t.botAPI()
	if bot == nil {
		return fmt.Errorf("telegram: %w", ErrNotConnected)
	}
	if _, err := newTelegramMessage(msg.ChatId(), ""); err != nil {
		return err
	}

	for _, chunk := range splitMessage(msg.Content(), telegramMaxLen) {
		if err := t.sendChunk(bot, msg.ChatId(), chunk); err != nil {
			return err
		}
	}
	return nil
}

func (t *TelegramChannel) sendChunk(bot *tgbotapi.BotAPI, chatID, chunk string) error {
	if t.cfg.ParseMarkdown {
		m, _ := newTelegramMessage(chatID, markdownToTelegramHTML(chunk))
		m.ParseMode = tgbotapi.ModeHTML
		m.DisableWebPagePreview = t.cfg.DisablePreview
		_, err := bot.Send(m)
		if err == nil {
			return nil
		}
		t.log.Debug("telegram: html send rejected, retrying as plain text", logx.Err(err))
	}

	m, _ := newTelegramMessage(chatID, chunk)
	m.DisableWebPagePreview = t.cfg.DisablePreview
	if _, err := bot.Send(m); err != nil {
		return fmt.Errorf("telegram: send to %s: %w", chatID, err)
	}
	return nil
}

// newTelegramMessage addresses a numeric chat id or a public @channelusername.
func newTelegramMessage(chatID, text string) (tgbotapi.MessageConfig, error) {
	if strings.HasPrefix(chatID, "@") && len(chatID) > 1 {
		return tgbotapi.NewMessageToChannel(chatID, text), nil
	}
	id, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return tgbotapi.MessageConfig{}, fmt.Errorf("telegram: invalid chat id %q", chatID)
	}
	return tgbotapi.NewMessage(id, text), nil
}

// ---------------------------------------------------------------------------
// Markdown → Telegram HTML converter
// ---------------------------------------------------------------------------

var (
	reTGCodeBlock  = regexp.MustCompile("(?s)```[\\w]*\\n?([\\s\\S]*?)```")
	reTGInlineCode = regexp.MustCompile("`([^`]+)`")
	reTGHeader     = regexp.MustCompile(`(?m)^#{1,6}\s+(.+)$`)
	reTGBlockquote = regexp.MustCompile(`(?m)^>\s*(.*)$`)
	reTGLink       = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)
	reTGBold1      = regexp.MustCompile(`\*\*(.+?)\*\*`)
	reTGBold2      = regexp.MustCompile(`__(.+?)__`)
	reTGItalic     = regexp.MustCompile(`(?:^|[^a-zA-Z0-9])_([^_]+)_(?:[^a-zA-Z0-9]|$)`)
	reTGStrike     = regexp.MustCompile(`~~(.+?)~~`)
	reTGBullet     = regexp.MustCompile(`(?m)^[-*]\s+`)
)

func markdownToTelegramHTML(text string) string {
	if text == "" {
		return ""
	}

	// 1. Extract code blocks.
	var codeBlocks []string
	text = reTGCodeBlock.ReplaceAllStringFunc(text, func(m string) string {
		groups := reTGCodeBlock.FindStringSubmatch(m)
		codeBlocks = append(codeBlocks, groups[1])
		return fmt.Sprintf("\x00CB%d\x00", len(codeBlocks)-1)
	})

	// 2. Extract inline code.
	var inlineCodes []string
	text = reTGInlineCode.ReplaceAllStringFunc(text, func(m string) string {
		groups := reTGInlineCode.FindStringSubmatch(m)
		inlineCodes = append(inlineCodes, groups[1])
		return fmt.Sprintf("\x00IC%d\x00", len(inlineCodes)-1)
	})

	// 3. Strip headers.
	text = reTGHeader.ReplaceAllString(text, "$1")
	// 4. Strip blockquotes.
	text = reTGBlockquote.ReplaceAllString(text, "$1")

	// 5. HTML escape.
	text = strings.ReplaceAll(text, "&", "&amp;")
	text = strings.ReplaceAll(text, "<", "&lt;")
	text = strings.ReplaceAll(text, ">", "&gt;")

	// 6. Links.
	text = reTGLink.ReplaceAllString(text, `<a href="$2">$1</a>`)
	// 7. Bold.
	text = reTGBold1.ReplaceAllString(text, "<b>$1</b>")
	text = reTGBold2.ReplaceAllString(text, "<b>$1</b>")
	// 8. Italic.
	text = reTGItalic.ReplaceAllString(text, "<i>$1</i>")
	// 9. Strikethrough.
	text = reTGStrike.ReplaceAllString(text, "<s>$1</s>")
	// 10. Bullet lists.
	text = reTGBullet.ReplaceAllString(text, "• ")

	// 11. Restore inline code.
	for i, code := range inlineCodes {
		escaped := htmlEscape(code)
		text = strings.ReplaceAll(text, fmt.Sprintf("\x00IC%d\x00", i),
			"<code>"+escaped+"</code>")
	}
	// 12. Restore code blocks.
	for i, code := range codeBlocks {
		escaped := htmlEscape(code)
		text = strings.ReplaceAll(text, fmt.Sprintf("\x00CB%d\x00", i),
			"<pre><code>"+escaped+"</code></pre>")
	}
	return text
}

func htmlEscape(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}
