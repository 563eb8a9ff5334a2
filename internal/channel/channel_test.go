package channel

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sdkerrors "github.com/notchbar/notchbar-go/errors"
	"github.com/notchbar/notchbar-go/internal/probe"
	"github.com/notchbar/notchbar-go/wire"
)

// testHost is a minimal in-process host: one websocket endpoint, a scripted
// reply per request, and push injection for event tests. The handler receives
// the serving connection so a script can sever it mid-call.
type testHost struct {
	t      *testing.T
	srv    *httptest.Server
	handle func(*websocket.Conn, wire.Frame) *wire.Frame

	mu      sync.Mutex
	writeMu sync.Mutex
	conns   []*websocket.Conn
}

func newTestHost(t *testing.T, handle func(*websocket.Conn, wire.Frame) *wire.Frame) *testHost {
	h := &testHost{t: t, handle: handle}
	h.srv = httptest.NewServer(http.HandlerFunc(h.serve))
	t.Cleanup(h.srv.Close)
	return h
}

func (h *testHost) serve(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	h.mu.Lock()
	h.conns = append(h.conns, conn)
	h.mu.Unlock()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		frame, err := wire.DecodeFrame(data)
		if err != nil || h.handle == nil {
			continue
		}
		if reply := h.handle(conn, frame); reply != nil {
			h.write(conn, *reply)
		}
	}
}

func (h *testHost) write(conn *websocket.Conn, f wire.Frame) {
	data, err := wire.EncodeFrame(f)
	if err != nil {
		return
	}
	h.writeRaw(conn, data)
}

func (h *testHost) writeRaw(conn *websocket.Conn, data []byte) {
	h.writeMu.Lock()
	defer h.writeMu.Unlock()
	_ = conn.WriteMessage(websocket.BinaryMessage, data)
}

// push sends an event frame to every connected session.
func (h *testHost) push(event wire.Event, payload []byte) {
	frame := wire.NewEvent(event, payload)
	data, err := wire.EncodeFrame(frame)
	if err != nil {
		return
	}
	h.pushRaw(data)
}

func (h *testHost) pushRaw(data []byte) {
	h.mu.Lock()
	conns := append([]*websocket.Conn(nil), h.conns...)
	h.mu.Unlock()
	for _, conn := range conns {
		h.writeRaw(conn, data)
	}
}

func (h *testHost) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, conn := range h.conns {
		conn.Close()
	}
}

func (h *testHost) connCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

func (h *testHost) config() Config {
	return Config{
		Addr:             strings.TrimPrefix(h.srv.URL, "http://"),
		Path:             "/v1/channel",
		HandshakeTimeout: 2 * time.Second,
	}
}

func assumeInstalled() *probe.Prober {
	return probe.New(probe.Config{AssumeInstalled: true}, nil, nil)
}

// stateRecorder collects lifecycle transitions for assertion.
type stateRecorder struct {
	mu          sync.Mutex
	transitions []string
}

func (r *stateRecorder) observe(from, to State) {
	r.mu.Lock()
	r.transitions = append(r.transitions, from.String()+"->"+to.String())
	r.mu.Unlock()
}

func (r *stateRecorder) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.transitions...)
}

func echoHandler(_ *websocket.Conn, f wire.Frame) *wire.Frame {
	reply := wire.NewReply(f.ID, f.Payload)
	return &reply
}

func TestChannelCallRoundTrip(t *testing.T) {
	h := newTestHost(t, echoHandler)

	rec := &stateRecorder{}
	cfg := h.config()
	cfg.OnStateChange = rec.observe

	ch := New(cfg, Events{}, assumeInstalled(), nil, nil)
	defer ch.Close()

	require.Equal(t, StateUnconnected, ch.State())

	payload, err := wire.Marshal(wire.AuthRequest{BundleID: "com.example.app"})
	require.NoError(t, err)

	reply, err := ch.Call(context.Background(), wire.OpAuthorize, payload)
	require.NoError(t, err)
	assert.JSONEq(t, string(payload), string(reply))

	assert.Equal(t, StateConnected, ch.State())
	assert.Equal(t, []string{"unconnected->connecting", "connecting->connected"}, rec.list())

	// A second call rides the existing connection.
	_, err = ch.Call(context.Background(), wire.OpGetVersion, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, h.connCount())
}

func TestChannelHostErrors(t *testing.T) {
	tests := []struct {
		name      string
		body      *wire.ErrorBody
		wantKind  sdkerrors.Kind
		wantMsg   string
		wantLimit int
	}{
		{
			name:      "limit exceeded",
			body:      &wire.ErrorBody{Code: wire.CodeLimitExceeded, Message: "too many live activities", Limit: 3},
			wantKind:  sdkerrors.KindLimitExceeded,
			wantMsg:   "too many live activities",
			wantLimit: 3,
		},
		{
			name:      "limit exceeded without message",
			body:      &wire.ErrorBody{Code: wire.CodeLimitExceeded, Limit: 5},
			wantKind:  sdkerrors.KindLimitExceeded,
			wantMsg:   "host entity limit exceeded",
			wantLimit: 5,
		},
		{
			name:     "not authorized",
			body:     &wire.ErrorBody{Code: wire.CodeNotAuthorized, Message: "host message is ignored"},
			wantKind: sdkerrors.KindNotAuthorized,
			wantMsg:  "application is not authorized to present content",
		},
		{
			name:     "service unavailable",
			body:     &wire.ErrorBody{Code: wire.CodeServiceUnavailable, Message: "compositor offline"},
			wantKind: sdkerrors.KindServiceUnavailable,
			wantMsg:  "compositor offline",
		},
		{
			name:     "service unavailable without message",
			body:     &wire.ErrorBody{Code: wire.CodeServiceUnavailable},
			wantKind: sdkerrors.KindServiceUnavailable,
			wantMsg:  "host service is unavailable",
		},
		{
			name:     "unrecognized code with message",
			body:     &wire.ErrorBody{Code: "entity_conflict", Message: "already mirrored"},
			wantKind: sdkerrors.KindUnknown,
			wantMsg:  "entity_conflict: already mirrored",
		},
		{
			name:     "unrecognized code without message",
			body:     &wire.ErrorBody{Code: "entity_conflict"},
			wantKind: sdkerrors.KindUnknown,
			wantMsg:  "entity_conflict",
		},
		{
			name:     "failure without body",
			body:     nil,
			wantKind: sdkerrors.KindUnknown,
			wantMsg:  "operation failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHost(t, func(_ *websocket.Conn, f wire.Frame) *wire.Frame {
				if tt.body == nil {
					ok := false
					return &wire.Frame{ID: f.ID, Type: wire.FrameReply, OK: &ok}
				}
				reply := wire.NewErrorReply(f.ID, *tt.body)
				return &reply
			})

			ch := New(h.config(), Events{}, assumeInstalled(), nil, nil)
			defer ch.Close()

			_, err := ch.Call(context.Background(), wire.OpPresentLiveActivity, nil)
			require.Error(t, err)

			var se *sdkerrors.Error
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tt.wantKind, se.Kind)
			assert.Equal(t, string(wire.OpPresentLiveActivity), se.Op)
			assert.Equal(t, tt.wantMsg, se.Message)
			assert.Equal(t, tt.wantLimit, se.Limit)
		})
	}
}

func TestChannelProbeMiss(t *testing.T) {
	h := newTestHost(t, echoHandler)

	rec := &stateRecorder{}
	cfg := h.config()
	cfg.OnStateChange = rec.observe

	// A prober with nothing to scan never finds an installation.
	ch := New(cfg, Events{}, probe.New(probe.Config{}, nil, nil), nil, nil)
	defer ch.Close()

	_, err := ch.Call(context.Background(), wire.OpGetVersion, nil)
	require.Error(t, err)
	assert.True(t, sdkerrors.IsHostNotInstalled(err))

	// The miss happens before any dial, so the lifecycle never moves.
	assert.Equal(t, StateUnconnected, ch.State())
	assert.Empty(t, rec.list())
	assert.Zero(t, h.connCount())
}

func TestChannelContextCancellation(t *testing.T) {
	h := newTestHost(t, func(*websocket.Conn, wire.Frame) *wire.Frame {
		return nil // accept the request, never reply
	})

	ch := New(h.config(), Events{}, assumeInstalled(), nil, nil)
	defer ch.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := ch.Call(ctx, wire.OpGetVersion, nil)
	require.Error(t, err)
	assert.True(t, sdkerrors.IsConnectionFailed(err))
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// Cancellation abandons the call but leaves the connection up.
	assert.Equal(t, StateConnected, ch.State())
}

func TestChannelTeardownFailsPending(t *testing.T) {
	h := newTestHost(t, func(conn *websocket.Conn, _ wire.Frame) *wire.Frame {
		// Break the connection instead of replying.
		conn.Close()
		return nil
	})

	rec := &stateRecorder{}
	cfg := h.config()
	cfg.OnStateChange = rec.observe

	ch := New(cfg, Events{}, assumeInstalled(), nil, nil)
	defer ch.Close()

	_, err := ch.Call(context.Background(), wire.OpPresentLockWidget, nil)
	require.Error(t, err)
	assert.True(t, sdkerrors.IsConnectionFailed(err))
	assert.ErrorIs(t, err, ErrInterrupted)

	require.Equal(t, StateUnconnected, ch.State())
	assert.Equal(t, []string{
		"unconnected->connecting",
		"connecting->connected",
		"connected->interrupted",
		"interrupted->unconnected",
	}, rec.list())
}

func TestChannelRedialsAfterInterruption(t *testing.T) {
	h := newTestHost(t, echoHandler)

	ch := New(h.config(), Events{}, assumeInstalled(), nil, nil)
	defer ch.Close()

	_, err := ch.Call(context.Background(), wire.OpGetVersion, nil)
	require.NoError(t, err)

	h.closeAll()
	require.Eventually(t, func() bool {
		return ch.State() == StateUnconnected
	}, 2*time.Second, 10*time.Millisecond)

	// Nothing retries on its own; the next call dials fresh.
	_, err = ch.Call(context.Background(), wire.OpGetVersion, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, h.connCount())
}

func TestChannelClose(t *testing.T) {
	t.Run("invalidates an open connection", func(t *testing.T) {
		h := newTestHost(t, echoHandler)

		rec := &stateRecorder{}
		cfg := h.config()
		cfg.OnStateChange = rec.observe

		ch := New(cfg, Events{}, assumeInstalled(), nil, nil)

		_, err := ch.Call(context.Background(), wire.OpGetVersion, nil)
		require.NoError(t, err)

		require.NoError(t, ch.Close())
		require.Equal(t, StateUnconnected, ch.State())
		assert.Equal(t, []string{
			"unconnected->connecting",
			"connecting->connected",
			"connected->invalidated",
			"invalidated->unconnected",
		}, rec.list())

		_, err = ch.Call(context.Background(), wire.OpGetVersion, nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrClosed)
	})

	t.Run("idle close never dials", func(t *testing.T) {
		h := newTestHost(t, echoHandler)

		ch := New(h.config(), Events{}, assumeInstalled(), nil, nil)
		require.NoError(t, ch.Close())

		_, err := ch.Call(context.Background(), wire.OpGetVersion, nil)
		assert.ErrorIs(t, err, ErrClosed)
		assert.Zero(t, h.connCount())
	})

	t.Run("idempotent", func(t *testing.T) {
		h := newTestHost(t, echoHandler)

		ch := New(h.config(), Events{}, assumeInstalled(), nil, nil)
		require.NoError(t, ch.Close())
		require.NoError(t, ch.Close())
	})
}

func TestChannelEventDemux(t *testing.T) {
	h := newTestHost(t, echoHandler)

	authCh := make(chan wire.AuthorizationEvent, 1)
	activityCh := make(chan wire.DismissedEvent, 1)
	widgetCh := make(chan wire.DismissedEvent, 1)
	notchCh := make(chan wire.DismissedEvent, 1)

	events := Events{
		AuthorizationChanged:     func(e wire.AuthorizationEvent) { authCh <- e },
		LiveActivityDismissed:    func(e wire.DismissedEvent) { activityCh <- e },
		LockWidgetDismissed:      func(e wire.DismissedEvent) { widgetCh <- e },
		NotchExperienceDismissed: func(e wire.DismissedEvent) { notchCh <- e },
	}

	ch := New(h.config(), events, assumeInstalled(), nil, nil)
	defer ch.Close()

	// Events only flow over a live connection.
	_, err := ch.Call(context.Background(), wire.OpGetVersion, nil)
	require.NoError(t, err)

	// Noise the channel must shrug off before real events.
	h.pushRaw([]byte("}{"))
	rogue, err := wire.EncodeFrame(wire.NewReply("no-such-call", nil))
	require.NoError(t, err)
	h.pushRaw(rogue)
	h.push(wire.Event("unheard_of_event"), nil)

	authPayload, err := wire.Marshal(wire.AuthorizationEvent{Granted: true})
	require.NoError(t, err)
	h.push(wire.EventAuthorizationChanged, authPayload)

	select {
	case got := <-authCh:
		assert.True(t, got.Granted)
	case <-time.After(2 * time.Second):
		t.Fatal("authorization event never delivered")
	}

	dismissals := []struct {
		event wire.Event
		sink  chan wire.DismissedEvent
		id    string
	}{
		{wire.EventLiveActivityDismissed, activityCh, "upload-1"},
		{wire.EventLockWidgetDismissed, widgetCh, "cpu-widget"},
		{wire.EventNotchExperienceDismissed, notchCh, "controls"},
	}
	for _, d := range dismissals {
		payload, err := wire.Marshal(wire.DismissedEvent{ID: d.id, BundleID: "com.example.app"})
		require.NoError(t, err)
		h.push(d.event, payload)

		select {
		case got := <-d.sink:
			assert.Equal(t, d.id, got.ID)
			assert.Equal(t, "com.example.app", got.BundleID)
		case <-time.After(2 * time.Second):
			t.Fatalf("%s never delivered", d.event)
		}
	}

	// Each event landed only in its own slot.
	assert.Empty(t, authCh)
	assert.Empty(t, activityCh)
	assert.Empty(t, widgetCh)
	assert.Empty(t, notchCh)

	// The connection survived the noise and the pushes.
	_, err = ch.Call(context.Background(), wire.OpGetVersion, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, h.connCount())
}
