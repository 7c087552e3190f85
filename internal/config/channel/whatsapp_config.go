package channel

// WhatsAppConfig configures the WhatsApp bridge connection.
type WhatsAppConfig struct {
	Enabled     bool   `json:"enabled" yaml:"enabled"`
	BridgeURL   string `json:"bridgeUrl" yaml:"bridgeUrl"`
	BridgeToken string `json:"bridgeToken" yaml:"bridgeToken"`
}

func DefaultWhatsAppConfig() WhatsAppConfig {
	return WhatsAppConfig{BridgeURL: "ws://localhost:3001"}
}
