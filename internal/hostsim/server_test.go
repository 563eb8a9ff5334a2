package hostsim

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notchbar/notchbar-go/descriptor"
	"github.com/notchbar/notchbar-go/wire"
)

// newSimServer mounts a simulator on an httptest server.
func newSimServer(t *testing.T, mutate func(*Config)) (*Server, *httptest.Server) {
	cfg := DefaultConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	srv := New(cfg, nil)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return srv, ts
}

// simClient drives the channel endpoint with raw frames: requests go out on
// the test goroutine, a pump sorts incoming frames into replies and events.
type simClient struct {
	t       *testing.T
	conn    *websocket.Conn
	replies chan wire.Frame
	events  chan wire.Frame
}

func dialSim(t *testing.T, ts *httptest.Server, path string) *simClient {
	u := "ws" + strings.TrimPrefix(ts.URL, "http") + path
	conn, resp, err := websocket.DefaultDialer.Dial(u, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })

	c := &simClient{
		t:       t,
		conn:    conn,
		replies: make(chan wire.Frame, 16),
		events:  make(chan wire.Frame, 16),
	}
	go c.pump()
	return c
}

func (c *simClient) pump() {
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		f, err := wire.DecodeFrame(data)
		if err != nil {
			continue
		}
		switch f.Type {
		case wire.FrameReply:
			c.replies <- f
		case wire.FrameEvent:
			c.events <- f
		}
	}
}

func (c *simClient) send(data []byte) {
	c.t.Helper()
	require.NoError(c.t, c.conn.WriteMessage(websocket.BinaryMessage, data))
}

func (c *simClient) callRaw(op wire.Op, payload []byte) wire.Frame {
	c.t.Helper()
	id := uuid.New().String()
	data, err := wire.EncodeFrame(wire.NewRequest(id, op, payload))
	require.NoError(c.t, err)
	c.send(data)

	select {
	case f := <-c.replies:
		require.Equal(c.t, id, f.ID, "reply for the wrong request")
		return f
	case <-time.After(2 * time.Second):
		c.t.Fatalf("no reply to %s", op)
		return wire.Frame{}
	}
}

func (c *simClient) call(op wire.Op, payload any) wire.Frame {
	c.t.Helper()
	var raw []byte
	if payload != nil {
		var err error
		raw, err = wire.Marshal(payload)
		require.NoError(c.t, err)
	}
	return c.callRaw(op, raw)
}

// callOK asserts the reply succeeded and returns its payload.
func (c *simClient) callOK(op wire.Op, payload any) []byte {
	c.t.Helper()
	f := c.call(op, payload)
	require.True(c.t, f.Succeeded(), "op %s failed: %+v", op, f.Error)
	return f.Payload
}

// callFail asserts the reply failed and returns the error body.
func (c *simClient) callFail(op wire.Op, payload any) wire.ErrorBody {
	c.t.Helper()
	f := c.call(op, payload)
	require.False(c.t, f.Succeeded(), "op %s unexpectedly succeeded", op)
	require.NotNil(c.t, f.Error)
	return *f.Error
}

func (c *simClient) callOKRaw(op wire.Op, payload []byte) []byte {
	c.t.Helper()
	f := c.callRaw(op, payload)
	require.True(c.t, f.Succeeded(), "op %s failed: %+v", op, f.Error)
	return f.Payload
}

func (c *simClient) callFailRaw(op wire.Op, payload []byte) wire.ErrorBody {
	c.t.Helper()
	f := c.callRaw(op, payload)
	require.False(c.t, f.Succeeded(), "op %s unexpectedly succeeded", op)
	require.NotNil(c.t, f.Error)
	return *f.Error
}

func (c *simClient) waitEvent(event wire.Event) wire.Frame {
	c.t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case f := <-c.events:
			if f.Event == event {
				return f
			}
		case <-deadline:
			c.t.Fatalf("event %s never arrived", event)
			return wire.Frame{}
		}
	}
}

func (c *simClient) expectNoEvent(wait time.Duration) {
	c.t.Helper()
	select {
	case f := <-c.events:
		c.t.Fatalf("unexpected event %s", f.Event)
	case <-time.After(wait):
	}
}

func (c *simClient) authorize(bundleID string) bool {
	c.t.Helper()
	payload := c.callOK(wire.OpAuthorize, wire.AuthRequest{BundleID: bundleID})
	var reply wire.AuthReply
	require.NoError(c.t, wire.Unmarshal(payload, &reply))
	return reply.Granted
}

func activityPayload(t *testing.T, id string) []byte {
	t.Helper()
	a := descriptor.NewLiveActivity(id, testBundle, "Uploading")
	data, err := wire.EncodeLiveActivity(a)
	require.NoError(t, err)
	return data
}

func TestServerAuthorization(t *testing.T) {
	_, ts := newSimServer(t, nil)
	c := dialSim(t, ts, "/v1/channel")

	t.Run("auto grant", func(t *testing.T) {
		assert.True(t, c.authorize(testBundle))
	})

	t.Run("check reports the recorded decision", func(t *testing.T) {
		payload := c.callOK(wire.OpCheckAuthorization, wire.AuthRequest{BundleID: testBundle})
		var reply wire.AuthReply
		require.NoError(t, wire.Unmarshal(payload, &reply))
		assert.True(t, reply.Granted)
	})

	t.Run("check for a bundle that never asked", func(t *testing.T) {
		payload := c.callOK(wire.OpCheckAuthorization, wire.AuthRequest{BundleID: "com.never.asked"})
		var reply wire.AuthReply
		require.NoError(t, wire.Unmarshal(payload, &reply))
		assert.False(t, reply.Granted)
	})

	t.Run("denied list blocks", func(t *testing.T) {
		_, ts := newSimServer(t, func(cfg *Config) {
			cfg.Auth.Denied = []string{"com.spyware.app"}
		})
		c := dialSim(t, ts, "/v1/channel")
		assert.False(t, c.authorize("com.spyware.app"))
	})

	t.Run("missing bundle id is rejected", func(t *testing.T) {
		body := c.callFail(wire.OpAuthorize, wire.AuthRequest{})
		assert.Equal(t, codeInvalidDescriptor, body.Code)
	})
}

func TestServerGetVersion(t *testing.T) {
	_, ts := newSimServer(t, func(cfg *Config) { cfg.Version = "9.9.9" })
	c := dialSim(t, ts, "/v1/channel")

	payload := c.callOK(wire.OpGetVersion, nil)
	var reply wire.VersionReply
	require.NoError(t, wire.Unmarshal(payload, &reply))
	assert.Equal(t, "9.9.9", reply.Version)
}

func TestServerPresentLifecycle(t *testing.T) {
	_, ts := newSimServer(t, func(cfg *Config) {
		cfg.Limits.LiveActivities = 2
	})
	c := dialSim(t, ts, "/v1/channel")

	t.Run("present before authorization", func(t *testing.T) {
		body := c.callFail(wire.OpPresentLiveActivity, nil)
		// A nil payload decodes onto the defaults, which fail validation.
		assert.Equal(t, codeInvalidDescriptor, body.Code)

		body = c.callFailRaw(wire.OpPresentLiveActivity, activityPayload(t, "a1"))
		assert.Equal(t, wire.CodeNotAuthorized, body.Code)
	})

	require.True(t, c.authorize(testBundle))

	t.Run("present up to the limit", func(t *testing.T) {
		c.callOKRaw(wire.OpPresentLiveActivity, activityPayload(t, "a1"))
		c.callOKRaw(wire.OpPresentLiveActivity, activityPayload(t, "a2"))

		body := c.callFailRaw(wire.OpPresentLiveActivity, activityPayload(t, "a3"))
		assert.Equal(t, wire.CodeLimitExceeded, body.Code)
		assert.Equal(t, 2, body.Limit)
		assert.Contains(t, body.Message, "limit reached")
	})

	t.Run("replacement is free", func(t *testing.T) {
		c.callOKRaw(wire.OpPresentLiveActivity, activityPayload(t, "a1"))
	})

	t.Run("update a live entity", func(t *testing.T) {
		c.callOKRaw(wire.OpUpdateLiveActivity, activityPayload(t, "a1"))
	})

	t.Run("update an unknown id", func(t *testing.T) {
		body := c.callFailRaw(wire.OpUpdateLiveActivity, activityPayload(t, "ghost"))
		assert.Equal(t, wire.CodeUnknownEntity, body.Code)
		assert.Contains(t, body.Message, `no live_activity with id "ghost"`)
	})

	t.Run("dismiss pushes the event to the dismissing session too", func(t *testing.T) {
		c.callOK(wire.OpDismissLiveActivity, wire.DismissRequest{ID: "a1", BundleID: testBundle})

		f := c.waitEvent(wire.EventLiveActivityDismissed)
		var ev wire.DismissedEvent
		require.NoError(t, wire.Unmarshal(f.Payload, &ev))
		assert.Equal(t, "a1", ev.ID)
		assert.Equal(t, testBundle, ev.BundleID)
	})

	t.Run("update after dismissal", func(t *testing.T) {
		body := c.callFailRaw(wire.OpUpdateLiveActivity, activityPayload(t, "a1"))
		assert.Equal(t, wire.CodeUnknownEntity, body.Code)
		assert.Contains(t, body.Message, "was dismissed")
	})

	t.Run("dismissing an absent id is quiet", func(t *testing.T) {
		c.callOK(wire.OpDismissLiveActivity, wire.DismissRequest{ID: "never-there", BundleID: testBundle})
		c.expectNoEvent(150 * time.Millisecond)
	})

	t.Run("dismiss without an id is rejected", func(t *testing.T) {
		body := c.callFail(wire.OpDismissLiveActivity, wire.DismissRequest{BundleID: testBundle})
		assert.Equal(t, codeInvalidDescriptor, body.Code)
	})

	t.Run("invalid descriptor", func(t *testing.T) {
		a := descriptor.NewLiveActivity("a9", testBundle, "")
		payload, err := wire.EncodeLiveActivity(a)
		require.NoError(t, err)

		body := c.callFailRaw(wire.OpPresentLiveActivity, payload)
		assert.Equal(t, codeInvalidDescriptor, body.Code)
		assert.Contains(t, body.Message, "title")
	})

	t.Run("malformed payload", func(t *testing.T) {
		body := c.callFailRaw(wire.OpPresentLiveActivity, []byte(`{"id":`))
		assert.Equal(t, codeInvalidDescriptor, body.Code)
		assert.Contains(t, body.Message, "malformed live activity")
	})
}

func TestServerUpdateSkipsAuthorization(t *testing.T) {
	srv, ts := newSimServer(t, nil)
	c := dialSim(t, ts, "/v1/channel")

	require.True(t, c.authorize(testBundle))
	c.callOKRaw(wire.OpPresentLiveActivity, activityPayload(t, "a1"))

	// Authorization revoked mid-flight: the entity already on screen can
	// still be updated, but nothing new goes up.
	srv.policy.Flip(testBundle, false)

	c.callOKRaw(wire.OpUpdateLiveActivity, activityPayload(t, "a1"))

	body := c.callFailRaw(wire.OpPresentLiveActivity, activityPayload(t, "a2"))
	assert.Equal(t, wire.CodeNotAuthorized, body.Code)
}

func TestServerSanitizesStoredPayloads(t *testing.T) {
	srv, ts := newSimServer(t, nil)
	c := dialSim(t, ts, "/v1/channel")

	require.True(t, c.authorize(testBundle))

	web := descriptor.NewWebContent(`<p>ok</p><script>alert(1)</script>`, 120)
	w := descriptor.NewLockWidget("w1", testBundle, descriptor.LayoutCard,
		descriptor.WebElement(web))
	payload, err := wire.EncodeLockWidget(w)
	require.NoError(t, err)

	c.callOKRaw(wire.OpPresentLockWidget, payload)

	snap := srv.store.ByKind(KindLockWidget).snapshot()
	require.Len(t, snap, 1)
	assert.NotContains(t, string(snap[0].Payload), "script")
	assert.Contains(t, string(snap[0].Payload), "<p>ok</p>")
}

func TestServerBroadcast(t *testing.T) {
	_, ts := newSimServer(t, nil)
	a := dialSim(t, ts, "/v1/channel")
	b := dialSim(t, ts, "/v1/channel")

	require.True(t, a.authorize(testBundle))
	a.callOKRaw(wire.OpPresentNotchExperience, experiencePayload(t, "n1"))
	a.callOK(wire.OpDismissNotchExperience, wire.DismissRequest{ID: "n1", BundleID: testBundle})

	for _, c := range []*simClient{a, b} {
		f := c.waitEvent(wire.EventNotchExperienceDismissed)
		var ev wire.DismissedEvent
		require.NoError(t, wire.Unmarshal(f.Payload, &ev))
		assert.Equal(t, "n1", ev.ID)
	}
}

func TestServerUnsupportedOperation(t *testing.T) {
	_, ts := newSimServer(t, nil)
	c := dialSim(t, ts, "/v1/channel")

	body := c.callFail(wire.Op("reboot_host"), nil)
	assert.Equal(t, "unsupported_operation", body.Code)
	assert.Equal(t, "reboot_host", body.Message)
}

func TestServerSurvivesGarbage(t *testing.T) {
	_, ts := newSimServer(t, nil)
	c := dialSim(t, ts, "/v1/channel")

	// Undecodable bytes and non-request frames are dropped, not fatal.
	c.send([]byte("}{"))
	reply, err := wire.EncodeFrame(wire.NewReply("rogue", nil))
	require.NoError(t, err)
	c.send(reply)

	payload := c.callOK(wire.OpGetVersion, nil)
	var v wire.VersionReply
	require.NoError(t, wire.Unmarshal(payload, &v))
	assert.NotEmpty(t, v.Version)
}

func TestServerDebugSurface(t *testing.T) {
	srv, ts := newSimServer(t, func(cfg *Config) {
		cfg.Version = "1.4.2"
	})
	c := dialSim(t, ts, "/v1/channel")

	require.True(t, c.authorize(testBundle))
	c.callOKRaw(wire.OpPresentLiveActivity, activityPayload(t, "a1"))

	t.Run("health", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/health")
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]string
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "ok", body["status"])
		assert.Equal(t, "1.4.2", body["version"])
	})

	t.Run("state dump", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/debug/state")
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var state struct {
			Version       string            `json:"version"`
			Sessions      []string          `json:"sessions"`
			Authorization map[string]bool   `json:"authorization"`
			Entities      map[Kind][]Entity `json:"entities"`
			Dismissed     map[Kind][]string `json:"dismissed"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&state))
		assert.Equal(t, "1.4.2", state.Version)
		require.Len(t, state.Sessions, 1)
		assert.True(t, strings.HasPrefix(state.Sessions[0], "sess_"))
		assert.Equal(t, map[string]bool{testBundle: true}, state.Authorization)
		require.Len(t, state.Entities[KindLiveActivity], 1)
		assert.Equal(t, "a1", state.Entities[KindLiveActivity][0].ID)
	})

	t.Run("authorization flip pushes the change", func(t *testing.T) {
		resp := postJSON(t, ts.URL+"/debug/authorization",
			map[string]any{"bundle_id": testBundle, "granted": false})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		f := c.waitEvent(wire.EventAuthorizationChanged)
		var ev wire.AuthorizationEvent
		require.NoError(t, wire.Unmarshal(f.Payload, &ev))
		assert.False(t, ev.Granted)
		assert.False(t, srv.policy.Granted(testBundle))
	})

	t.Run("authorization flip requires a bundle id", func(t *testing.T) {
		resp := postJSON(t, ts.URL+"/debug/authorization", map[string]any{"granted": true})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("user dismiss pushes the event", func(t *testing.T) {
		resp := postJSON(t, ts.URL+"/debug/dismiss",
			map[string]any{"kind": "live_activity", "id": "a1", "bundle_id": testBundle})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		f := c.waitEvent(wire.EventLiveActivityDismissed)
		var ev wire.DismissedEvent
		require.NoError(t, wire.Unmarshal(f.Payload, &ev))
		assert.Equal(t, "a1", ev.ID)
	})

	t.Run("user dismiss of an absent entity", func(t *testing.T) {
		resp := postJSON(t, ts.URL+"/debug/dismiss",
			map[string]any{"kind": "live_activity", "id": "ghost", "bundle_id": testBundle})
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("user dismiss of an unknown kind", func(t *testing.T) {
		resp := postJSON(t, ts.URL+"/debug/dismiss",
			map[string]any{"kind": "hologram", "id": "a1"})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("metrics scrape", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/metrics")
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Contains(t, string(body), "notchbar_host_sessions_active")
		assert.Contains(t, string(body), "notchbar_host_frames_total")
	})
}

func TestServerDebugDisabled(t *testing.T) {
	_, ts := newSimServer(t, func(cfg *Config) {
		cfg.Debug.Enabled = false
	})

	resp, err := http.Get(ts.URL + "/debug/state")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func experiencePayload(t *testing.T, id string) []byte {
	t.Helper()
	x := descriptor.NewNotchExperience(id, testBundle).
		WithTab(descriptor.NewTabConfig("Controls"))
	data, err := wire.EncodeNotchExperience(x)
	require.NoError(t, err)
	return data
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}
