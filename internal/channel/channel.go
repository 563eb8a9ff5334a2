// Package channel maintains the single lazily dialed connection to the
// NotchBar host and multiplexes request/reply traffic and push events on it.
package channel

import (
	"context"
	"errors"
	"net"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	sdkerrors "github.com/notchbar/notchbar-go/errors"
	"github.com/notchbar/notchbar-go/internal/logging"
	"github.com/notchbar/notchbar-go/internal/metrics"
	"github.com/notchbar/notchbar-go/internal/probe"
	"github.com/notchbar/notchbar-go/wire"
)

var (
	// ErrClosed fails calls made after Close.
	ErrClosed = errors.New("channel is closed")
	// ErrInterrupted fails pending calls when the channel tears down.
	ErrInterrupted = errors.New("channel interrupted")
)

// Config controls how the channel reaches the host.
type Config struct {
	// Addr is the host endpoint. An addr containing a path separator is
	// dialed as a unix socket instead of TCP.
	Addr string
	// Path is the websocket endpoint path.
	Path string
	// HandshakeTimeout bounds the websocket handshake. It does not bound
	// calls; those run until reply, teardown, or ctx cancellation.
	HandshakeTimeout time.Duration
	// OnStateChange observes every lifecycle transition. It is called
	// synchronously with the channel lock held and must not call back into
	// the channel.
	OnStateChange func(from, to State)
}

// DefaultConfig returns the stock local host endpoint.
func DefaultConfig() Config {
	return Config{
		Addr:             "127.0.0.1:7749",
		Path:             "/v1/channel",
		HandshakeTimeout: 10 * time.Second,
	}
}

// Channel is the connection manager. It dials on first use, correlates
// replies to in-flight calls by id, demuxes push events into the handler
// slots, and fails every pending call when the connection dies. Nothing is
// queued across a teardown and nothing retries; the next Call re-dials.
type Channel struct {
	cfg    Config
	events Events
	prober *probe.Prober
	log    *logging.Logger
	mets   *metrics.Metrics

	dialMu sync.Mutex // serializes connection attempts

	mu      sync.Mutex
	state   State
	conn    *websocket.Conn
	pending map[string]chan wire.Frame
	closed  bool

	writeMu sync.Mutex // single writer on the socket
}

// New builds a channel. Nothing is dialed until the first Call.
func New(cfg Config, events Events, prober *probe.Prober, log *logging.Logger, mets *metrics.Metrics) *Channel {
	if log == nil {
		log = logging.Nop()
	}
	if mets == nil {
		mets = metrics.Shared()
	}
	return &Channel{
		cfg:     cfg,
		events:  events,
		prober:  prober,
		log:     log.Named("channel"),
		mets:    mets,
		pending: make(map[string]chan wire.Frame),
	}
}

// State reports the current lifecycle state.
func (c *Channel) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Call sends one request and blocks until its reply arrives, the channel
// tears down, or ctx is done. There is no default timeout and no retry; a
// failed call stays failed and the caller decides what happens next.
func (c *Channel) Call(ctx context.Context, op wire.Op, payload []byte) ([]byte, error) {
	timer := metrics.NewTimer(c.mets, string(op))
	reply, err := c.call(ctx, op, payload)
	if err != nil {
		timer.Stop("error")
		c.mets.RecordCallError(string(op), sdkerrors.KindOf(err).String())
		return nil, err
	}
	timer.Stop("ok")
	return reply, nil
}

func (c *Channel) call(ctx context.Context, op wire.Op, payload []byte) ([]byte, error) {
	opName := string(op)

	conn, err := c.ensureConnected(ctx, opName)
	if err != nil {
		return nil, err
	}

	id := uuid.New().String()
	data, err := wire.EncodeFrame(wire.NewRequest(id, op, payload))
	if err != nil {
		return nil, sdkerrors.ConnectionFailed(opName, err)
	}

	replyCh := make(chan wire.Frame, 1)
	c.mu.Lock()
	if c.conn != conn {
		// Torn down between ensureConnected and registration.
		c.mu.Unlock()
		return nil, sdkerrors.ConnectionFailed(opName, ErrInterrupted)
	}
	c.pending[id] = replyCh
	c.mu.Unlock()

	c.mets.IncPending()
	defer c.mets.DecPending()

	c.writeMu.Lock()
	err = conn.WriteMessage(websocket.BinaryMessage, data)
	c.writeMu.Unlock()
	if err != nil {
		c.forgetPending(id)
		c.teardown(conn, StateInterrupted, err)
		return nil, sdkerrors.ConnectionFailed(opName, err)
	}

	select {
	case reply, ok := <-replyCh:
		if !ok {
			return nil, sdkerrors.ConnectionFailed(opName, ErrInterrupted)
		}
		return replyResult(opName, reply)
	case <-ctx.Done():
		c.forgetPending(id)
		return nil, sdkerrors.ConnectionFailed(opName, ctx.Err())
	}
}

// ensureConnected returns the live connection, dialing first if necessary.
// The installation probe gates every dial and runs no host I/O; a probe miss
// fails the call without touching the state machine.
func (c *Channel) ensureConnected(ctx context.Context, op string) (*websocket.Conn, error) {
	c.dialMu.Lock()
	defer c.dialMu.Unlock()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, sdkerrors.ConnectionFailed(op, ErrClosed)
	}
	if c.state == StateConnected && c.conn != nil {
		conn := c.conn
		c.mu.Unlock()
		return conn, nil
	}
	c.mu.Unlock()

	if !c.prober.Installed() {
		return nil, sdkerrors.HostNotInstalled(op)
	}

	c.mu.Lock()
	c.setStateLocked(StateConnecting)
	c.mu.Unlock()

	conn, err := c.dial(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.setStateLocked(StateUnconnected)
		return nil, sdkerrors.ConnectionFailed(op, err)
	}
	if c.closed {
		// Close raced the dial; discard the fresh connection.
		c.setStateLocked(StateInvalidated)
		c.setStateLocked(StateUnconnected)
		conn.Close()
		return nil, sdkerrors.ConnectionFailed(op, ErrClosed)
	}
	c.conn = conn
	c.pending = make(map[string]chan wire.Frame)
	c.setStateLocked(StateConnected)
	go c.readPump(conn)
	return conn, nil
}

func (c *Channel) dial(ctx context.Context) (*websocket.Conn, error) {
	dialer := websocket.Dialer{HandshakeTimeout: c.cfg.HandshakeTimeout}
	u := url.URL{Scheme: "ws", Host: c.cfg.Addr, Path: c.cfg.Path}
	if strings.Contains(c.cfg.Addr, "/") {
		socket := c.cfg.Addr
		dialer.NetDialContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
			var d net.Dialer
			return d.DialContext(ctx, "unix", socket)
		}
		// The handshake still needs a nominal authority.
		u.Host = "notchbar"
	}

	c.log.Debug("dialing host", zap.String("url", u.String()))
	conn, _, err := dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// readPump owns all reads on conn. It exits on the first read error, tearing
// the channel down through Interrupted.
func (c *Channel) readPump(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			c.teardown(conn, StateInterrupted, err)
			return
		}
		frame, err := wire.DecodeFrame(data)
		if err != nil {
			c.log.Warn("dropping undecodable frame", zap.Error(err))
			continue
		}
		switch frame.Type {
		case wire.FrameReply:
			c.deliverReply(frame)
		case wire.FrameEvent:
			c.deliverEvent(frame)
		default:
			c.log.Warn("dropping unexpected frame", zap.String("type", string(frame.Type)))
		}
	}
}

func (c *Channel) deliverReply(f wire.Frame) {
	c.mu.Lock()
	ch, ok := c.pending[f.ID]
	if ok {
		delete(c.pending, f.ID)
	}
	c.mu.Unlock()
	if !ok {
		c.log.Debug("reply for unknown call", zap.String("id", f.ID))
		return
	}
	ch <- f
}

func (c *Channel) deliverEvent(f wire.Frame) {
	c.mets.RecordEvent(string(f.Event))
	switch f.Event {
	case wire.EventAuthorizationChanged:
		handler := c.events.AuthorizationChanged
		if handler == nil {
			return
		}
		var body wire.AuthorizationEvent
		if err := wire.Unmarshal(f.Payload, &body); err != nil {
			c.logMalformedEvent(f, err)
			return
		}
		handler(body)
	case wire.EventLiveActivityDismissed:
		c.deliverDismissed(f, c.events.LiveActivityDismissed)
	case wire.EventLockWidgetDismissed:
		c.deliverDismissed(f, c.events.LockWidgetDismissed)
	case wire.EventNotchExperienceDismissed:
		c.deliverDismissed(f, c.events.NotchExperienceDismissed)
	default:
		c.log.Warn("dropping unknown event kind", zap.String("event", string(f.Event)))
	}
}

func (c *Channel) deliverDismissed(f wire.Frame, handler func(wire.DismissedEvent)) {
	if handler == nil {
		return
	}
	var body wire.DismissedEvent
	if err := wire.Unmarshal(f.Payload, &body); err != nil {
		c.logMalformedEvent(f, err)
		return
	}
	handler(body)
}

func (c *Channel) logMalformedEvent(f wire.Frame, err error) {
	c.log.Warn("dropping malformed event",
		zap.String("event", string(f.Event)),
		zap.Error(err))
}

// replyResult maps a reply frame to its payload or to the error taxonomy.
func replyResult(op string, f wire.Frame) ([]byte, error) {
	if f.Succeeded() {
		return f.Payload, nil
	}
	body := f.Error
	if body == nil {
		return nil, sdkerrors.Unknown(op, "")
	}
	switch body.Code {
	case wire.CodeLimitExceeded:
		return nil, sdkerrors.LimitExceeded(op, body.Message, body.Limit)
	case wire.CodeNotAuthorized:
		return nil, sdkerrors.NotAuthorized(op)
	case wire.CodeServiceUnavailable:
		return nil, sdkerrors.ServiceUnavailable(op, body.Message)
	default:
		msg := body.Message
		switch {
		case body.Code != "" && msg != "":
			msg = body.Code + ": " + msg
		case body.Code != "":
			msg = body.Code
		}
		return nil, sdkerrors.Unknown(op, msg)
	}
}

func (c *Channel) forgetPending(id string) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

// teardown moves the channel through via back to Unconnected, clears the
// handle, and fails every pending call. The connection identity check makes
// it idempotent and ignores pumps of already replaced connections.
func (c *Channel) teardown(conn *websocket.Conn, via State, cause error) {
	c.mu.Lock()
	if conn == nil || c.conn != conn {
		c.mu.Unlock()
		return
	}
	c.conn = nil
	c.setStateLocked(via)
	for id, ch := range c.pending {
		delete(c.pending, id)
		close(ch)
	}
	c.setStateLocked(StateUnconnected)
	c.mu.Unlock()

	conn.Close()
	if cause != nil {
		c.log.Info("channel torn down", zap.String("via", via.String()), zap.Error(cause))
	} else {
		c.log.Info("channel torn down", zap.String("via", via.String()))
	}
}

// Close invalidates the channel. Pending calls fail with connection-failed
// and later calls are refused; Close is idempotent.
func (c *Channel) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	conn := c.conn
	c.mu.Unlock()

	if conn != nil {
		c.teardown(conn, StateInvalidated, nil)
	}
	return nil
}

// setState changes the lifecycle state and reports the transition.
func (c *Channel) setStateLocked(next State) {
	if c.state == next {
		return
	}
	prev := c.state
	c.state = next
	c.mets.RecordStateChange(prev.String(), next.String())
	c.log.Debug("state change",
		zap.String("from", prev.String()),
		zap.String("to", next.String()))
	if c.cfg.OnStateChange != nil {
		c.cfg.OnStateChange(prev, next)
	}
}
