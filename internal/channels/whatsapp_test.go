package channels

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crystaldolphin/msgscheduler/internal/bus"
	"github.com/crystaldolphin/msgscheduler/internal/config/channel"
	"github.com/crystaldolphin/msgscheduler/internal/logx"
)

// fakeBridge accepts one WebSocket client and forwards every frame it
// receives to frames.
type fakeBridge struct {
	frames chan map[string]string
	conns  chan *websocket.Conn
}

func newFakeBridge(t *testing.T) (*fakeBridge, string) {
	t.Helper()
	b := &fakeBridge{frames: make(chan map[string]string, 16), conns: make(chan *websocket.Conn, 4)}
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		b.conns <- conn
		for {
			var frame map[string]string
			if err := conn.ReadJSON(&frame); err != nil {
				return
			}
			b.frames <- frame
		}
	}))
	t.Cleanup(srv.Close)
	return b, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func (b *fakeBridge) next(t *testing.T) map[string]string {
	t.Helper()
	select {
	case f := <-b.frames:
		return f
	case <-time.After(2 * time.Second):
		t.Fatal("no frame from client")
		return nil
	}
}

func startWhatsApp(t *testing.T, url, token string) *WhatsAppChannel {
	t.Helper()
	ch := NewWhatsAppChannel(&channel.WhatsAppConfig{Enabled: true, BridgeURL: url, BridgeToken: token}, logx.Nop())
	ch.reconnectDelay = 20 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = ch.Start(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	require.Eventually(t, ch.Ready, 2*time.Second, 10*time.Millisecond)
	return ch
}

func TestWhatsApp_AuthAndSend(t *testing.T) {
	bridge, url := newFakeBridge(t)
	ch := startWhatsApp(t, url, "secret")

	assert.Equal(t, map[string]string{"type": "auth", "token": "secret"}, bridge.next(t))

	require.NoError(t, ch.Send(context.Background(), bus.NewOutboundMessage(bus.ChannelWhatsApp, "4912345@s.whatsapp.net", "hi")))
	assert.Equal(t, map[string]string{"type": "send", "to": "4912345@s.whatsapp.net", "text": "hi"}, bridge.next(t))
}

func TestWhatsApp_StatusDisconnectedBlocksSend(t *testing.T) {
	bridge, url := newFakeBridge(t)
	ch := startWhatsApp(t, url, "")

	conn := <-bridge.conns
	require.NoError(t, conn.WriteJSON(map[string]string{"type": "status", "status": "disconnected"}))
	require.Eventually(t, func() bool { return !ch.Ready() }, 2*time.Second, 10*time.Millisecond)

	err := ch.Send(context.Background(), bus.NewOutboundMessage(bus.ChannelWhatsApp, "1", "x"))
	assert.ErrorIs(t, err, ErrNotConnected)

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "status", "status": "connected"}))
	require.Eventually(t, ch.Ready, 2*time.Second, 10*time.Millisecond)
}

func TestWhatsApp_Reconnects(t *testing.T) {
	bridge, url := newFakeBridge(t)
	ch := startWhatsApp(t, url, "")

	first := <-bridge.conns
	_ = first.Close()

	select {
	case <-bridge.conns:
	case <-time.After(2 * time.Second):
		t.Fatal("client did not reconnect")
	}
	require.Eventually(t, ch.Ready, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, ch.Send(context.Background(), bus.NewOutboundMessage(bus.ChannelWhatsApp, "1", "again")))
	assert.Equal(t, "again", bridge.next(t)["text"])
}

func TestWhatsApp_SendBeforeConnect(t *testing.T) {
	ch := NewWhatsAppChannel(&channel.WhatsAppConfig{}, logx.Nop())
	err := ch.Send(context.Background(), bus.NewOutboundMessage(bus.ChannelWhatsApp, "1", "x"))
	assert.ErrorIs(t, err, ErrNotConnected)
}
