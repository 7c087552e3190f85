package channels

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/crystaldolphin/msgscheduler/internal/bus"
	"github.com/crystaldolphin/msgscheduler/internal/config/channel"
	"github.com/crystaldolphin/msgscheduler/internal/logx"
)

const whatsappReconnectDelay = 5 * time.Second

// WhatsAppChannel delivers messages through a WhatsApp bridge reached over
// WebSocket.
type WhatsAppChannel struct {
	Base
	cfg            *channel.WhatsAppConfig
	reconnectDelay time.Duration

	// mu serialises writes; gorilla connections allow one concurrent writer.
	mu   sync.Mutex
	conn *websocket.Conn
}

func NewWhatsAppChannel(cfg *channel.WhatsAppConfig, log logx.Logger) *WhatsAppChannel {
	return &WhatsAppChannel{
		Base:           NewBase(bus.ChannelWhatsApp, log),
		cfg:            cfg,
		reconnectDelay: whatsappReconnectDelay,
	}
}

// Start keeps a bridge connection open, reconnecting after failures, until
// ctx is cancelled.
func (w *WhatsAppChannel) Start(ctx context.Context) error {
	bridgeURL := w.cfg.BridgeURL
	if bridgeURL == "" {
		bridgeURL = "ws://localhost:3001"
	}
	w.log.Info("whatsapp: connecting to bridge", logx.String("url", bridgeURL))

	for {
		if err := w.connectOnce(ctx, bridgeURL); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			w.log.Warn("whatsapp: connection lost, reconnecting",
				logx.Duration("delay", w.reconnectDelay), logx.Err(err))
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(w.reconnectDelay):
		}
	}
}

func (w *WhatsAppChannel) connectOnce(ctx context.Context, url string) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return err
	}
	// Unblock ReadMessage on shutdown.
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	w.mu.Lock()
	w.conn = conn
	if w.cfg.BridgeToken != "" {
		err = conn.WriteJSON(map[string]string{"type": "auth", "token": w.cfg.BridgeToken})
	}
	w.mu.Unlock()
	defer func() {
		w.setReady(false)
		w.mu.Lock()
		w.conn = nil
		w.mu.Unlock()
		_ = conn.Close()
	}()
	if err != nil {
		return fmt.Errorf("whatsapp: auth: %w", err)
	}

	w.setReady(true)
	w.log.Info("whatsapp: connected to bridge")

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		w.handleBridgeMessage(raw)
	}
}

// handleBridgeMessage tracks bridge status. Inbound chat messages are
// ignored; this service only sends.
func (w *WhatsAppChannel) handleBridgeMessage(raw []byte) {
	var data struct {
		Type   string `json:"type"`
		Status string `json:"status"`
		Error  string `json:"error"`
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return
	}
	switch data.Type {
	case "status":
		w.log.Info("whatsapp: status", logx.String("status", data.Status))
		w.setReady(data.Status == "connected")
	case "qr":
		w.log.Info("whatsapp: scan QR code in the bridge terminal")
	case "error":
		w.log.Error("whatsapp: bridge error", logx.String("error", data.Error))
	}
}

func (w *WhatsAppChannel) Send(_ context.Context, msg bus.OutboundMessage) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.conn == nil || !w.Ready() {
		return fmt.Errorf("whatsapp: %w", ErrNotConnected)
	}
	err := w.conn.WriteJSON(map[string]string{
		"type": "send",
		"to":   msg.ChatId(),
		"text": msg.Content(),
	})
	if err != nil {
		return fmt.Errorf("whatsapp: send to %s: %w", msg.ChatId(), err)
	}
	return nil
}
