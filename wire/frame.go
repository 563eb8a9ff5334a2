package wire

import (
	"encoding/json"
	"errors"
	"fmt"
)

// FrameType discriminates the three envelope shapes on the channel.
type FrameType string

const (
	FrameRequest FrameType = "request"
	FrameReply   FrameType = "reply"
	FrameEvent   FrameType = "event"
)

// Error codes a host reports in reply error bodies.
const (
	CodeLimitExceeded      = "limit_exceeded"
	CodeNotAuthorized      = "not_authorized"
	CodeServiceUnavailable = "service_unavailable"
	CodeUnknownEntity      = "unknown_entity"
)

// ErrorBody is the failure detail of an ok=false reply.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
	Limit   int    `json:"limit,omitempty"`
}

// Frame is the envelope exchanged with the host, one frame per binary channel
// message. Requests carry ID, Op and Payload; replies echo the request ID with
// OK and either Payload or Error; events carry Event and Payload and no ID.
// OK is a pointer so requests and events omit it entirely while replies state
// it explicitly.
type Frame struct {
	ID      string          `json:"id,omitempty"`
	Type    FrameType       `json:"type"`
	Op      Op              `json:"op,omitempty"`
	Event   Event           `json:"event,omitempty"`
	OK      *bool           `json:"ok,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Error   *ErrorBody      `json:"error,omitempty"`
}

// Succeeded reports whether the frame is a reply with ok=true.
func (f Frame) Succeeded() bool {
	return f.Type == FrameReply && f.OK != nil && *f.OK
}

// NewRequest builds a request frame around an already encoded payload.
func NewRequest(id string, op Op, payload []byte) Frame {
	return Frame{ID: id, Type: FrameRequest, Op: op, Payload: payload}
}

// NewReply builds a successful reply echoing the request id.
func NewReply(id string, payload []byte) Frame {
	ok := true
	return Frame{ID: id, Type: FrameReply, OK: &ok, Payload: payload}
}

// NewErrorReply builds a failed reply carrying the error body.
func NewErrorReply(id string, body ErrorBody) Frame {
	ok := false
	return Frame{ID: id, Type: FrameReply, OK: &ok, Error: &body}
}

// NewEvent builds a push event frame around an already encoded payload.
func NewEvent(event Event, payload []byte) Frame {
	return Frame{Type: FrameEvent, Event: event, Payload: payload}
}

// EncodeFrame serializes one frame for one binary channel message.
func EncodeFrame(f Frame) ([]byte, error) {
	data, err := std.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	return data, nil
}

// DecodeFrame parses one binary channel message.
func DecodeFrame(data []byte) (Frame, error) {
	var f Frame
	if err := std.Unmarshal(data, &f); err != nil {
		return Frame{}, fmt.Errorf("decode frame: %w", err)
	}
	switch f.Type {
	case FrameRequest, FrameReply, FrameEvent:
	case "":
		return Frame{}, errors.New("decode frame: missing type")
	default:
		return Frame{}, fmt.Errorf("decode frame: unknown type %q", f.Type)
	}
	return f, nil
}
