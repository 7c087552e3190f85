// Package channels provides the chat-platform adapters used to deliver
// messages, and the Manager that routes deliveries to the configured one.
package channels

import (
	"errors"
	"strings"
	"sync/atomic"
	"unicode/utf8"

	"github.com/crystaldolphin/msgscheduler/internal/bus"
	"github.com/crystaldolphin/msgscheduler/internal/logx"
)

// ErrDelivery wraps every failure to hand a message to the platform.
var ErrDelivery = errors.New("delivery failed")

// ErrNotConnected is returned by Send before Start has connected.
var ErrNotConnected = errors.New("channel not connected")

// Base holds common state and helper methods shared by all channels.
type Base struct {
	channelName bus.Channel
	log         logx.Logger
	ready       atomic.Bool
}

// NewBase creates a Base with the given channel name and a logger tagged
// with it.
func NewBase(name bus.Channel, log logx.Logger) Base {
	return Base{channelName: name, log: log.With(logx.String("channel", string(name)))}
}

func (b *Base) Name() string { return string(b.channelName) }

// Ready reports whether the channel is connected.
func (b *Base) Ready() bool { return b.ready.Load() }

func (b *Base) setReady(v bool) { b.ready.Store(v) }

// splitMessage splits content into chunks that fit within maxLen,
// preferring newline breaks, then space breaks, then hard cut.
func splitMessage(content string, maxLen int) []string {
	if len(content) <= maxLen {
		return []string{content}
	}
	var chunks []string
	for len(content) > 0 {
		if len(content) <= maxLen {
			chunks = append(chunks, content)
			break
		}
		cut := content[:maxLen]
		pos := strings.LastIndex(cut, "\n")
		if pos <= 0 {
			pos = strings.LastIndex(cut, " ")
		}
		// The break character itself is dropped; everything else is kept.
		next := pos + 1
		if pos <= 0 {
			pos = maxLen
			for pos > 1 && !utf8.RuneStart(content[pos]) {
				pos--
			}
			next = pos
		}
		chunks = append(chunks, content[:pos])
		content = content[next:]
	}
	return chunks
}
