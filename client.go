package notchbar

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/notchbar/notchbar-go/descriptor"
	sdkerrors "github.com/notchbar/notchbar-go/errors"
	"github.com/notchbar/notchbar-go/internal/channel"
	"github.com/notchbar/notchbar-go/internal/dispatch"
	"github.com/notchbar/notchbar-go/internal/logging"
	"github.com/notchbar/notchbar-go/internal/metrics"
	"github.com/notchbar/notchbar-go/internal/probe"
	"github.com/notchbar/notchbar-go/wire"
)

// host is the call surface the client needs from its connection manager.
// Tests install a recorder in its place.
type host interface {
	Call(ctx context.Context, op wire.Op, payload []byte) ([]byte, error)
	State() channel.State
	Close() error
}

// Client is the application-facing facade. It owns one lazily connected
// channel, the dismissal registries, the authorization observer list, a
// cached authorization flag, and the serialized queue every callback fires
// on. A Client is safe for concurrent use.
type Client struct {
	cfg  Config
	log  *logging.Logger
	mets *metrics.Metrics

	host  host
	queue *dispatch.Queue

	activityDismiss *dismissRegistry
	widgetDismiss   *dismissRegistry
	notchDismiss    *dismissRegistry
	authObservers   *observerList

	mu         sync.Mutex
	authorized bool
	closed     bool
}

// New builds a client from an explicit configuration. The configuration must
// carry a bundle id; nothing is dialed until the first host-touching call.
func New(cfg Config) (*Client, error) {
	if cfg.BundleID == "" {
		return nil, fmt.Errorf("notchbar: config requires a bundle id")
	}

	log := buildLogger(cfg.Logging)
	mets := metrics.Shared()

	c := &Client{
		cfg:             cfg,
		log:             log,
		mets:            mets,
		queue:           dispatch.NewQueue(),
		activityDismiss: newDismissRegistry(),
		widgetDismiss:   newDismissRegistry(),
		notchDismiss:    newDismissRegistry(),
		authObservers:   &observerList{},
	}

	events := channel.Events{
		AuthorizationChanged: c.onAuthorizationEvent,
		LiveActivityDismissed: func(e wire.DismissedEvent) {
			c.onDismissEvent(c.activityDismiss, "live_activity_dismiss", e)
		},
		LockWidgetDismissed: func(e wire.DismissedEvent) {
			c.onDismissEvent(c.widgetDismiss, "lock_widget_dismiss", e)
		},
		NotchExperienceDismissed: func(e wire.DismissedEvent) {
			c.onDismissEvent(c.notchDismiss, "notch_experience_dismiss", e)
		},
	}

	prober := probe.New(proberConfig(cfg.Probe), log, mets)
	c.host = channel.New(channelConfig(cfg.Host), events, prober, log, mets)

	c.log.Debug("client ready", zap.String("bundle_id", cfg.BundleID))
	return c, nil
}

// NewDefault builds a client from NOTCHBAR_* environment variables.
func NewDefault() (*Client, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}
	return New(cfg)
}

func buildLogger(cfg LogConfig) *logging.Logger {
	if !cfg.Enabled && !logging.DebugEnabled() {
		return logging.Nop()
	}
	if cfg.Development || logging.DebugEnabled() {
		return logging.NewDevelopment()
	}
	level := cfg.Level
	if level == "" {
		level = "info"
	}
	log, err := logging.New(logging.Config{Level: level, OutputPaths: []string{"stderr"}})
	if err != nil {
		return logging.Nop()
	}
	return log
}

func proberConfig(cfg ProbeConfig) probe.Config {
	pc := probe.DefaultConfig()
	pc.AssumeInstalled = cfg.AssumeInstalled
	return pc
}

func channelConfig(cfg HostConfig) channel.Config {
	cc := channel.DefaultConfig()
	if cfg.Addr != "" {
		cc.Addr = cfg.Addr
	}
	if cfg.Path != "" {
		cc.Path = cfg.Path
	}
	if cfg.HandshakeTimeout > 0 {
		cc.HandshakeTimeout = cfg.HandshakeTimeout
	}
	return cc
}

// RequestAuthorization asks the host to grant publishing authorization,
// prompting the user if host policy requires it. The cached authorization
// flag is updated with the reply.
func (c *Client) RequestAuthorization(ctx context.Context) (bool, error) {
	return c.authCall(ctx, wire.OpAuthorize)
}

// CheckAuthorization queries the current authorization state without
// prompting. The cached authorization flag is updated with the reply.
func (c *Client) CheckAuthorization(ctx context.Context) (bool, error) {
	return c.authCall(ctx, wire.OpCheckAuthorization)
}

func (c *Client) authCall(ctx context.Context, op wire.Op) (bool, error) {
	payload, err := wire.Marshal(wire.AuthRequest{BundleID: c.cfg.BundleID})
	if err != nil {
		return false, sdkerrors.ConnectionFailed(string(op), err)
	}
	reply, err := c.send(ctx, op, payload)
	if err != nil {
		return false, err
	}
	var body wire.AuthReply
	if err := wire.Unmarshal(reply, &body); err != nil {
		return false, sdkerrors.ConnectionFailed(string(op), err)
	}
	c.setAuthorized(body.Granted)
	return body.Granted, nil
}

// HostVersion returns the installed host's version string.
func (c *Client) HostVersion(ctx context.Context) (string, error) {
	reply, err := c.send(ctx, wire.OpGetVersion, nil)
	if err != nil {
		return "", err
	}
	var body wire.VersionReply
	if err := wire.Unmarshal(reply, &body); err != nil {
		return "", sdkerrors.ConnectionFailed(string(wire.OpGetVersion), err)
	}
	return body.Version, nil
}

// CheckCompatibility fetches the host version and fails with an
// incompatible-version error when it sorts below minimum. Versions compare
// per CompareVersions.
func (c *Client) CheckCompatibility(ctx context.Context, minimum string) error {
	installed, err := c.HostVersion(ctx)
	if err != nil {
		return err
	}
	if CompareVersions(installed, minimum) < 0 {
		return sdkerrors.IncompatibleVersion("check_compatibility", installed, minimum)
	}
	return nil
}

// PresentLiveActivity publishes an activity. Validation failures and missing
// authorization are local: neither touches the channel.
func (c *Client) PresentLiveActivity(ctx context.Context, a descriptor.LiveActivity) error {
	return c.present(ctx, wire.OpPresentLiveActivity, a.Validate, func() ([]byte, error) {
		return wire.EncodeLiveActivity(a)
	})
}

// UpdateLiveActivity replaces the content of a previously presented
// activity. Authorization is not re-checked; the host enforces it, and an id
// the host doesn't know comes back as the host-reported failure.
func (c *Client) UpdateLiveActivity(ctx context.Context, a descriptor.LiveActivity) error {
	return c.update(ctx, wire.OpUpdateLiveActivity, a.Validate, func() ([]byte, error) {
		return wire.EncodeLiveActivity(a)
	})
}

// DismissLiveActivity removes a previously presented activity. There is no
// validity check; only the id and bundle id travel.
func (c *Client) DismissLiveActivity(ctx context.Context, id string) error {
	return c.dismiss(ctx, wire.OpDismissLiveActivity, id)
}

// PresentLockWidget publishes a lock screen widget. Validation failures and
// missing authorization are local: neither touches the channel.
func (c *Client) PresentLockWidget(ctx context.Context, w descriptor.LockWidget) error {
	return c.present(ctx, wire.OpPresentLockWidget, w.Validate, func() ([]byte, error) {
		return wire.EncodeLockWidget(w)
	})
}

// UpdateLockWidget replaces the content of a previously presented widget
// without re-checking authorization.
func (c *Client) UpdateLockWidget(ctx context.Context, w descriptor.LockWidget) error {
	return c.update(ctx, wire.OpUpdateLockWidget, w.Validate, func() ([]byte, error) {
		return wire.EncodeLockWidget(w)
	})
}

// DismissLockWidget removes a previously presented widget.
func (c *Client) DismissLockWidget(ctx context.Context, id string) error {
	return c.dismiss(ctx, wire.OpDismissLockWidget, id)
}

// PresentNotchExperience publishes a notch experience. Validation failures
// and missing authorization are local: neither touches the channel.
func (c *Client) PresentNotchExperience(ctx context.Context, n descriptor.NotchExperience) error {
	return c.present(ctx, wire.OpPresentNotchExperience, n.Validate, func() ([]byte, error) {
		return wire.EncodeNotchExperience(n)
	})
}

// UpdateNotchExperience replaces the content of a previously presented
// experience without re-checking authorization.
func (c *Client) UpdateNotchExperience(ctx context.Context, n descriptor.NotchExperience) error {
	return c.update(ctx, wire.OpUpdateNotchExperience, n.Validate, func() ([]byte, error) {
		return wire.EncodeNotchExperience(n)
	})
}

// DismissNotchExperience removes a previously presented experience.
func (c *Client) DismissNotchExperience(ctx context.Context, id string) error {
	return c.dismiss(ctx, wire.OpDismissNotchExperience, id)
}

func (c *Client) present(ctx context.Context, op wire.Op, validate func() error, encode func() ([]byte, error)) error {
	if err := validate(); err != nil {
		return sdkerrors.InvalidDescriptor(string(op), err)
	}
	if !c.Authorized() {
		return sdkerrors.NotAuthorized(string(op))
	}
	payload, err := encode()
	if err != nil {
		return sdkerrors.ConnectionFailed(string(op), err)
	}
	_, err = c.send(ctx, op, payload)
	return err
}

func (c *Client) update(ctx context.Context, op wire.Op, validate func() error, encode func() ([]byte, error)) error {
	if err := validate(); err != nil {
		return sdkerrors.InvalidDescriptor(string(op), err)
	}
	payload, err := encode()
	if err != nil {
		return sdkerrors.ConnectionFailed(string(op), err)
	}
	_, err = c.send(ctx, op, payload)
	return err
}

func (c *Client) dismiss(ctx context.Context, op wire.Op, id string) error {
	payload, err := wire.Marshal(wire.DismissRequest{ID: id, BundleID: c.cfg.BundleID})
	if err != nil {
		return sdkerrors.ConnectionFailed(string(op), err)
	}
	_, err = c.send(ctx, op, payload)
	return err
}

// send runs one host call under the configured CallTimeout. A zero timeout
// means the call waits for reply, teardown, or ctx cancellation.
func (c *Client) send(ctx context.Context, op wire.Op, payload []byte) ([]byte, error) {
	if c.cfg.CallTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.CallTimeout)
		defer cancel()
	}
	return c.host.Call(ctx, op, payload)
}

// OnLiveActivityDismiss registers a one-shot handler fired when the given
// activity is dismissed, by the user or by this client. Registering again
// for the same id replaces the handler; it is consumed the moment a
// dismissal picks it up. Never blocks, safe from callback context.
func (c *Client) OnLiveActivityDismiss(id string, fn func()) {
	c.activityDismiss.set(id, fn)
}

// OnLockWidgetDismiss registers a one-shot dismissal handler for a widget id.
func (c *Client) OnLockWidgetDismiss(id string, fn func()) {
	c.widgetDismiss.set(id, fn)
}

// OnNotchExperienceDismiss registers a one-shot dismissal handler for an
// experience id.
func (c *Client) OnNotchExperienceDismiss(id string, fn func()) {
	c.notchDismiss.set(id, fn)
}

// OnAuthorizationChange appends an observer fired on every authorization
// change the host pushes. Observers cannot be removed; duplicates fire once
// each per change. Never blocks, safe from callback context.
func (c *Client) OnAuthorizationChange(fn func(granted bool)) {
	c.authObservers.add(fn)
}

// BundleID reports the configured bundle identifier. Descriptors presented
// through this client should carry the same one.
func (c *Client) BundleID() string {
	return c.cfg.BundleID
}

// Authorized reports the last authorization state the host communicated.
// It starts false and is updated by both auth calls and push events.
func (c *Client) Authorized() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.authorized
}

func (c *Client) setAuthorized(granted bool) {
	c.mu.Lock()
	c.authorized = granted
	c.mu.Unlock()
}

// ChannelState reports the connection manager's current state, for
// diagnostics and tests.
func (c *Client) ChannelState() string {
	return c.host.State().String()
}

// Close invalidates the channel and stops the callback queue. Pending calls
// fail with connection-failed; queued callbacks not yet running are dropped.
// Close is idempotent.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	err := c.host.Close()
	c.queue.Close()
	c.log.Debug("client closed", zap.String("bundle_id", c.cfg.BundleID))
	return err
}

// onAuthorizationEvent runs on the channel's read pump: update the cached
// flag first, then notify the observers registered at this moment on the
// callback queue.
func (c *Client) onAuthorizationEvent(e wire.AuthorizationEvent) {
	c.setAuthorized(e.Granted)
	observers := c.authObservers.snapshot()
	if len(observers) == 0 {
		return
	}
	c.queue.Submit(func() {
		for _, fn := range observers {
			c.mets.RecordCallback("authorization")
			fn(e.Granted)
		}
	})
}

// onDismissEvent runs on the channel's read pump: the lookup-and-remove is
// atomic with receipt, so a second push for the same id finds nothing even
// while the queue is still draining.
func (c *Client) onDismissEvent(reg *dismissRegistry, kind string, e wire.DismissedEvent) {
	fn := reg.take(e.ID)
	if fn == nil {
		return
	}
	c.queue.Submit(func() {
		c.mets.RecordCallback(kind)
		fn()
	})
}
