package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crystaldolphin/msgscheduler/internal/config/server"
	"github.com/crystaldolphin/msgscheduler/internal/logx"
	"github.com/crystaldolphin/msgscheduler/internal/schedule"
)

func init() { gin.SetMode(gin.TestMode) }

type fakeSender struct {
	mu   sync.Mutex
	sent [][2]string
	err  error
}

func (f *fakeSender) Deliver(_ context.Context, destination, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, [2]string{destination, text})
	return nil
}

func (f *fakeSender) Ready() bool           { return true }
func (f *fakeSender) SenderChannel() string { return "telegram" }

func (f *fakeSender) deliveries() [][2]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][2]string(nil), f.sent...)
}

type fixture struct {
	srv      *Server
	sender   *fakeSender
	timer    *schedule.ManualTimer
	registry *schedule.Registry
}

var now = time.Date(2029, 12, 31, 12, 0, 0, 0, time.UTC)

func newFixture(t *testing.T) *fixture {
	t.Helper()
	sender := &fakeSender{}
	timer := schedule.NewManualTimer(now)
	registry := schedule.NewRegistry(sender, timer,
		schedule.WithLocation(time.UTC),
		schedule.WithClock(func() time.Time { return now }),
	)
	t.Cleanup(registry.Close)

	promReg := prometheus.NewRegistry()
	srv := NewServer(server.DefaultServerConfig(), registry, sender, promReg, promReg, logx.Nop())
	return &fixture{srv: srv, sender: sender, timer: timer, registry: registry}
}

func (f *fixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	f.srv.Handler().ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), "body: %s", w.Body.String())
	return v
}

// ─── POST /send-message ────────────────────────────────────────────────────

func TestSendMessage_Success(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/send-message", `{"chatId":"user123","message":"hello"}`)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[map[string]string](t, w)
	assert.Equal(t, "success", resp["status"])
	assert.Equal(t, msgSent, resp["message"])
	assert.Equal(t, [][2]string{{"user123", "hello"}}, f.sender.deliveries())
}

func TestSendMessage_NumericChatID(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/send-message", `{"chatId":-100123456,"message":"hi"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, [][2]string{{"-100123456", "hi"}}, f.sender.deliveries())
}

func TestSendMessage_MissingFields(t *testing.T) {
	f := newFixture(t)

	for _, body := range []string{`{"chatId":"u"}`, `{"message":"m"}`, `{"chatId":"  ","message":"m"}`, `{}`} {
		w := f.do(t, http.MethodPost, "/send-message", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
		assert.Equal(t, msgSendRequired, decode[map[string]string](t, w)["error"])
	}
	assert.Empty(t, f.sender.deliveries())
}

func TestSendMessage_MalformedBody(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/send-message", `{"chatId":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, msgInvalidBody, decode[map[string]string](t, w)["error"])
}

func TestSendMessage_DeliveryFailure(t *testing.T) {
	f := newFixture(t)
	f.sender.err = errors.New("chat not found")

	w := f.do(t, http.MethodPost, "/send-message", `{"chatId":"u","message":"m"}`)
	require.Equal(t, http.StatusInternalServerError, w.Code)

	resp := decode[map[string]string](t, w)
	assert.Equal(t, msgSendFailed, resp["error"])
	assert.Equal(t, "chat not found", resp["details"])
}

// ─── POST /schedule-message ────────────────────────────────────────────────

func TestScheduleMessage_Success(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/schedule-message",
		`{"chatId":"user123","message":"hello","dateTime":"2030-01-01T00:00:00"}`)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[map[string]string](t, w)
	assert.Equal(t, "success", resp["status"])
	assert.Equal(t, msgScheduled, resp["message"])
	assert.True(t, strings.HasPrefix(resp["id"], "user123-"))

	jobs := f.registry.List()
	require.Len(t, jobs, 1)
	assert.Equal(t, resp["id"], jobs[0].ID)
	assert.Empty(t, f.sender.deliveries())
}

func TestScheduleMessage_MissingFields(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/schedule-message", `{"chatId":"u","message":"m"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, msgScheduleRequired, decode[map[string]string](t, w)["error"])
	assert.Zero(t, f.registry.Len())
}

func TestScheduleMessage_BadDate(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/schedule-message", `{"chatId":"u1","message":"m","dateTime":"not-a-date"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, msgInvalidDate, decode[map[string]string](t, w)["error"])
	assert.Zero(t, f.registry.Len())
}

type rejectingJobs struct{ err error }

func (j rejectingJobs) Schedule(string, string, string) (string, error) { return "", j.err }
func (rejectingJobs) List() []schedule.Job                              { return nil }
func (rejectingJobs) Cancel(string) error                               { return nil }
func (rejectingJobs) Len() int                                          { return 0 }

func TestScheduleMessage_OtherInvalidArgument(t *testing.T) {
	err := fmt.Errorf("%w: destination too long", schedule.ErrInvalidArgument)
	srv := NewServer(server.DefaultServerConfig(), rejectingJobs{err: err}, &fakeSender{}, nil, nil, logx.Nop())

	req := httptest.NewRequest(http.MethodPost, "/schedule-message",
		strings.NewReader(`{"chatId":"u","message":"m","dateTime":"2030-01-01T00:00:00"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	msg := decode[map[string]string](t, w)["error"]
	assert.NotEqual(t, msgInvalidDate, msg)
	assert.Contains(t, msg, "destination too long")
}

func TestScheduleMessage_AfterClose(t *testing.T) {
	f := newFixture(t)
	f.registry.Close()

	w := f.do(t, http.MethodPost, "/schedule-message", `{"chatId":"u","message":"m","dateTime":"2030-01-01T00:00:00"}`)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

// ─── GET/DELETE /scheduled-messages ────────────────────────────────────────

func TestListScheduled_EmptyIsArray(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/scheduled-messages", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestScheduleListCancelFlow(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/schedule-message",
		`{"chatId":"user123","message":"hello","dateTime":"2030-01-01T00:00:00"}`)
	require.Equal(t, http.StatusOK, w.Code)
	id := decode[map[string]string](t, w)["id"]

	w = f.do(t, http.MethodGet, "/scheduled-messages", "")
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[[]ScheduledMessage](t, w)
	require.Len(t, list, 1)
	assert.Equal(t, id, list[0].ID)
	assert.Equal(t, "user123", list[0].ChatID)
	assert.Equal(t, "hello", list[0].Message)
	assert.Equal(t, "2030-01-01T00:00:00", list[0].DateTime)
	assert.True(t, list[0].CreatedAt.Equal(now))

	w = f.do(t, http.MethodDelete, "/scheduled-messages/"+id, "")
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[map[string]string](t, w)
	assert.Equal(t, "success", resp["status"])
	assert.Equal(t, msgDeleted, resp["message"])

	w = f.do(t, http.MethodGet, "/scheduled-messages", "")
	assert.JSONEq(t, `[]`, w.Body.String())

	// Cancelled before its time: never delivered.
	f.timer.Advance(time.Date(2030, 1, 2, 0, 0, 0, 0, time.UTC))
	assert.Empty(t, f.sender.deliveries())
}

func TestCancelScheduled_NotFound(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodDelete, "/scheduled-messages/nonexistent", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, msgNotFound, decode[map[string]string](t, w)["error"])
}

func TestCancelScheduled_DestinationWithSlash(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/schedule-message",
		`{"chatId":"team/ops","message":"deploy","dateTime":"2030-01-01T00:00:00"}`)
	require.Equal(t, http.StatusOK, w.Code)
	id := decode[map[string]string](t, w)["id"]
	require.True(t, strings.HasPrefix(id, "team/ops-"), id)

	w = f.do(t, http.MethodDelete, "/scheduled-messages/"+url.PathEscape(id), "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, msgDeleted, decode[map[string]string](t, w)["message"])
	assert.Zero(t, f.registry.Len())
}

func TestFiredJobLeavesList(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/schedule-message",
		`{"chatId":"user123","message":"hello","dateTime":"2030-01-01T00:00:00"}`)
	require.Equal(t, http.StatusOK, w.Code)

	f.timer.Advance(time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, [][2]string{{"user123", "hello"}}, f.sender.deliveries())

	w = f.do(t, http.MethodGet, "/scheduled-messages", "")
	assert.JSONEq(t, `[]`, w.Body.String())
}

// ─── ambient routes ────────────────────────────────────────────────────────

func TestHealthz(t *testing.T) {
	f := newFixture(t)
	_, err := f.registry.Schedule("u", "m", "2030-01-01T00:00:00")
	require.NoError(t, err)

	w := f.do(t, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp healthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "telegram", resp.Sender)
	assert.True(t, resp.Ready)
	assert.Equal(t, 1, resp.Pending)
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture(t)
	f.do(t, http.MethodGet, "/scheduled-messages", "")

	w := f.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `msgscheduler_http_requests_total{method="GET",route="/scheduled-messages",status="200"} 1`)
}

func TestCORS(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodOptions, "/send-message", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	f.srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/scheduled-messages", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	f.srv.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	f := newFixture(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.srv.Serve(ctx, ln) }()

	var resp *http.Response
	require.Eventually(t, func() bool {
		resp, err = http.Get("http://" + ln.Addr().String() + "/healthz")
		return err == nil
	}, 2*time.Second, 20*time.Millisecond)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
