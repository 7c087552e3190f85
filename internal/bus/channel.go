// Package bus defines the message types handed from the scheduler and the
// HTTP surface to delivery channels.
package bus

type Channel string

const (
	ChannelTelegram Channel = "telegram"
	ChannelSlack    Channel = "slack"
	ChannelWhatsApp Channel = "whatsapp"
)

// Known reports whether c names a supported channel.
func (c Channel) Known() bool {
	switch c {
	case ChannelTelegram, ChannelSlack, ChannelWhatsApp:
		return true
	}
	return false
}
