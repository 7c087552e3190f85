package bus

import "time"

// OutboundMessage is a text to be delivered through a channel.
type OutboundMessage struct {
	channel Channel   // destination channel name
	chatId  string    // destination chat / channel / DM identifier
	content string    // text to send
	created time.Time // when the message was handed to the channel
}

func (m OutboundMessage) Channel() Channel   { return m.channel }
func (m OutboundMessage) ChatId() string     { return m.chatId }
func (m OutboundMessage) Content() string    { return m.content }
func (m OutboundMessage) Created() time.Time { return m.created }

func NewOutboundMessage(channel Channel, chatId, content string) OutboundMessage {
	return OutboundMessage{
		channel: channel,
		chatId:  chatId,
		content: content,
		created: time.Now(),
	}
}
