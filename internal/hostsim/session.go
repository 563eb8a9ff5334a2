package hostsim

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/notchbar/notchbar-go/internal/logging"
	"github.com/notchbar/notchbar-go/wire"
)

// codeInvalidDescriptor rejects a payload that failed validation or
// sanitization. The SDK surfaces it through the unknown-error kind with the
// code and message composed.
const codeInvalidDescriptor = "invalid_descriptor"

// session is one connected channel client. Frames are read sequentially and
// handled inline; writes from the read loop and from server broadcasts share
// the write mutex.
type session struct {
	id   string
	srv  *Server
	conn *websocket.Conn
	log  *logging.Logger

	writeMu sync.Mutex
}

// run reads frames until the connection drops. Only request frames are
// meaningful from a client; anything else is dropped.
func (s *session) run() {
	defer s.srv.dropSession(s)

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			s.log.Debug("session closed", zap.Error(err))
			return
		}
		frame, err := wire.DecodeFrame(data)
		if err != nil {
			s.log.Warn("dropping undecodable frame", zap.Error(err))
			continue
		}
		if frame.Type != wire.FrameRequest {
			s.log.Warn("dropping non-request frame", zap.String("type", string(frame.Type)))
			continue
		}
		s.handle(frame)
	}
}

func (s *session) handle(f wire.Frame) {
	switch f.Op {
	case wire.OpAuthorize:
		s.handleAuthorize(f)
	case wire.OpCheckAuthorization:
		s.handleCheckAuthorization(f)
	case wire.OpGetVersion:
		s.handleGetVersion(f)

	case wire.OpPresentLiveActivity:
		s.handlePresent(f, KindLiveActivity, s.prepareActivity)
	case wire.OpUpdateLiveActivity:
		s.handleUpdate(f, KindLiveActivity, s.prepareActivity)
	case wire.OpDismissLiveActivity:
		s.handleDismiss(f, KindLiveActivity, wire.EventLiveActivityDismissed)

	case wire.OpPresentLockWidget:
		s.handlePresent(f, KindLockWidget, s.prepareWidget)
	case wire.OpUpdateLockWidget:
		s.handleUpdate(f, KindLockWidget, s.prepareWidget)
	case wire.OpDismissLockWidget:
		s.handleDismiss(f, KindLockWidget, wire.EventLockWidgetDismissed)

	case wire.OpPresentNotchExperience:
		s.handlePresent(f, KindNotchExperience, s.prepareExperience)
	case wire.OpUpdateNotchExperience:
		s.handleUpdate(f, KindNotchExperience, s.prepareExperience)
	case wire.OpDismissNotchExperience:
		s.handleDismiss(f, KindNotchExperience, wire.EventNotchExperienceDismissed)

	default:
		s.replyError(f, wire.ErrorBody{
			Code:    "unsupported_operation",
			Message: string(f.Op),
		})
	}
}

func (s *session) handleAuthorize(f wire.Frame) {
	var req wire.AuthRequest
	if err := wire.Unmarshal(f.Payload, &req); err != nil || req.BundleID == "" {
		s.replyError(f, wire.ErrorBody{Code: codeInvalidDescriptor, Message: "authorization request requires a bundle id"})
		return
	}
	granted := s.srv.policy.Authorize(req.BundleID)
	s.log.Info("authorization decided",
		zap.String("bundle_id", req.BundleID),
		zap.Bool("granted", granted),
	)
	s.reply(f, wire.AuthReply{Granted: granted})
}

func (s *session) handleCheckAuthorization(f wire.Frame) {
	var req wire.AuthRequest
	if err := wire.Unmarshal(f.Payload, &req); err != nil || req.BundleID == "" {
		s.replyError(f, wire.ErrorBody{Code: codeInvalidDescriptor, Message: "authorization request requires a bundle id"})
		return
	}
	s.reply(f, wire.AuthReply{Granted: s.srv.policy.Granted(req.BundleID)})
}

func (s *session) handleGetVersion(f wire.Frame) {
	s.reply(f, wire.VersionReply{Version: s.srv.cfg.Version})
}

// prepare functions take a raw payload through decode, validate, sanitize and
// re-encode, returning the entity identity and the cleaned payload.
type prepareFunc func(payload []byte) (id, bundleID string, clean []byte, err error)

func (s *session) prepareActivity(payload []byte) (string, string, []byte, error) {
	a, err := wire.DecodeLiveActivity(payload)
	if err != nil {
		return "", "", nil, fmt.Errorf("malformed live activity: %w", err)
	}
	if err := a.Validate(); err != nil {
		return "", "", nil, err
	}
	a, err = s.srv.sanitizer.ScrubActivity(a)
	if err != nil {
		return "", "", nil, err
	}
	clean, err := wire.EncodeLiveActivity(a)
	if err != nil {
		return "", "", nil, err
	}
	return a.ID, a.BundleID, clean, nil
}

func (s *session) prepareWidget(payload []byte) (string, string, []byte, error) {
	w, err := wire.DecodeLockWidget(payload)
	if err != nil {
		return "", "", nil, fmt.Errorf("malformed lock widget: %w", err)
	}
	if err := w.Validate(); err != nil {
		return "", "", nil, err
	}
	w, err = s.srv.sanitizer.ScrubWidget(w)
	if err != nil {
		return "", "", nil, err
	}
	clean, err := wire.EncodeLockWidget(w)
	if err != nil {
		return "", "", nil, err
	}
	return w.ID, w.BundleID, clean, nil
}

func (s *session) prepareExperience(payload []byte) (string, string, []byte, error) {
	x, err := wire.DecodeNotchExperience(payload)
	if err != nil {
		return "", "", nil, fmt.Errorf("malformed notch experience: %w", err)
	}
	if err := x.Validate(); err != nil {
		return "", "", nil, err
	}
	x, err = s.srv.sanitizer.ScrubExperience(x)
	if err != nil {
		return "", "", nil, err
	}
	clean, err := wire.EncodeNotchExperience(x)
	if err != nil {
		return "", "", nil, err
	}
	return x.ID, x.BundleID, clean, nil
}

func (s *session) handlePresent(f wire.Frame, kind Kind, prepare prepareFunc) {
	id, bundleID, clean, err := prepare(f.Payload)
	if err != nil {
		s.replyError(f, wire.ErrorBody{Code: codeInvalidDescriptor, Message: err.Error()})
		return
	}
	if !s.srv.policy.Granted(bundleID) {
		s.replyError(f, wire.ErrorBody{Code: wire.CodeNotAuthorized, Message: "bundle is not authorized"})
		return
	}
	store := s.srv.store.ByKind(kind)
	if err := store.Present(bundleID, id, clean); err != nil {
		s.replyError(f, storeErrorBody(err))
		return
	}
	s.srv.mets.EntitiesActive.WithLabelValues(string(kind)).Set(float64(store.Total()))
	s.log.Debug("entity presented",
		zap.String("kind", string(kind)),
		zap.String("id", id),
		zap.String("bundle_id", bundleID),
	)
	s.reply(f, nil)
}

// handleUpdate skips the authorization check: an entity on screen proves the
// bundle was authorized when it was presented.
func (s *session) handleUpdate(f wire.Frame, kind Kind, prepare prepareFunc) {
	id, bundleID, clean, err := prepare(f.Payload)
	if err != nil {
		s.replyError(f, wire.ErrorBody{Code: codeInvalidDescriptor, Message: err.Error()})
		return
	}
	if err := s.srv.store.ByKind(kind).Update(bundleID, id, clean); err != nil {
		s.replyError(f, storeErrorBody(err))
		return
	}
	s.reply(f, nil)
}

// handleDismiss succeeds whether or not the id is live. Dismissing a live
// entity also pushes the dismissal event, so every observer sees the same
// teardown regardless of who initiated it.
func (s *session) handleDismiss(f wire.Frame, kind Kind, event wire.Event) {
	var req wire.DismissRequest
	if err := wire.Unmarshal(f.Payload, &req); err != nil || req.ID == "" {
		s.replyError(f, wire.ErrorBody{Code: codeInvalidDescriptor, Message: "dismiss request requires an id"})
		return
	}
	store := s.srv.store.ByKind(kind)
	if store.Dismiss(req.BundleID, req.ID) {
		s.srv.mets.EntitiesActive.WithLabelValues(string(kind)).Set(float64(store.Total()))
		s.srv.broadcast(event, wire.DismissedEvent{ID: req.ID, BundleID: req.BundleID})
	}
	s.reply(f, nil)
}

// storeErrorBody maps store errors onto wire error codes.
func storeErrorBody(err error) wire.ErrorBody {
	var limitErr *LimitError
	if errors.As(err, &limitErr) {
		return wire.ErrorBody{
			Code:    wire.CodeLimitExceeded,
			Message: limitErr.Error(),
			Limit:   limitErr.Limit,
		}
	}
	var unknownErr *UnknownEntityError
	if errors.As(err, &unknownErr) {
		return wire.ErrorBody{Code: wire.CodeUnknownEntity, Message: unknownErr.Error()}
	}
	return wire.ErrorBody{Code: "internal_error", Message: err.Error()}
}

func (s *session) reply(f wire.Frame, payload any) {
	var raw json.RawMessage
	if payload != nil {
		data, err := wire.Marshal(payload)
		if err != nil {
			s.log.Error("encoding reply payload", zap.String("op", string(f.Op)), zap.Error(err))
			return
		}
		raw = data
	}
	s.srv.mets.RecordFrame(string(f.Op), "ok")
	s.write(wire.NewReply(f.ID, raw))
}

func (s *session) replyError(f wire.Frame, body wire.ErrorBody) {
	s.srv.mets.RecordFrame(string(f.Op), body.Code)
	s.log.Debug("rejecting request",
		zap.String("op", string(f.Op)),
		zap.String("code", body.Code),
		zap.String("message", body.Message),
	)
	s.write(wire.NewErrorReply(f.ID, body))
}

// push sends an event frame. Used by server broadcasts.
func (s *session) push(event wire.Event, payload any) {
	raw, err := wire.Marshal(payload)
	if err != nil {
		s.log.Error("encoding event payload", zap.String("event", string(event)), zap.Error(err))
		return
	}
	s.write(wire.NewEvent(event, raw))
}

func (s *session) write(f wire.Frame) {
	data, err := wire.EncodeFrame(f)
	if err != nil {
		s.log.Error("encoding frame", zap.Error(err))
		return
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
		s.log.Debug("write failed", zap.Error(err))
	}
}
