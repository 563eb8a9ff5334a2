package wire

import (
	"fmt"

	"github.com/bytedance/sonic"

	"github.com/notchbar/notchbar-go/descriptor"
)

// std is sonic pinned to encoding/json-compatible behavior so independently
// implemented host decoders can parse SDK traffic byte for byte.
var std = sonic.ConfigStd

// EncodeLiveActivity serializes a live activity payload. Every field is
// written as constructed; clamping already happened at construction.
func EncodeLiveActivity(a descriptor.LiveActivity) ([]byte, error) {
	data, err := std.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("encode live activity: %w", err)
	}
	return data, nil
}

// DecodeLiveActivity parses a live activity payload. Fields the peer omitted
// take their documented defaults, and numeric fields are re-clamped, so a
// hand-built or stale payload still decodes to a well-formed value.
func DecodeLiveActivity(data []byte) (descriptor.LiveActivity, error) {
	a := descriptor.DefaultLiveActivity()
	if err := std.Unmarshal(data, &a); err != nil {
		return descriptor.LiveActivity{}, fmt.Errorf("decode live activity: %w", err)
	}
	return a.Normalized(), nil
}

// EncodeLockWidget serializes a lock widget payload.
func EncodeLockWidget(w descriptor.LockWidget) ([]byte, error) {
	data, err := std.Marshal(w)
	if err != nil {
		return nil, fmt.Errorf("encode lock widget: %w", err)
	}
	return data, nil
}

// DecodeLockWidget parses a lock widget payload onto the documented-defaults
// template. An omitted size resolves to the layout default during
// normalization.
func DecodeLockWidget(data []byte) (descriptor.LockWidget, error) {
	w := descriptor.DefaultLockWidget()
	if err := std.Unmarshal(data, &w); err != nil {
		return descriptor.LockWidget{}, fmt.Errorf("decode lock widget: %w", err)
	}
	return w.Normalized(), nil
}

// EncodeNotchExperience serializes a notch experience payload.
func EncodeNotchExperience(n descriptor.NotchExperience) ([]byte, error) {
	data, err := std.Marshal(n)
	if err != nil {
		return nil, fmt.Errorf("encode notch experience: %w", err)
	}
	return data, nil
}

// DecodeNotchExperience parses a notch experience payload onto the
// documented-defaults template.
func DecodeNotchExperience(data []byte) (descriptor.NotchExperience, error) {
	n := descriptor.DefaultNotchExperience()
	if err := std.Unmarshal(data, &n); err != nil {
		return descriptor.NotchExperience{}, fmt.Errorf("decode notch experience: %w", err)
	}
	return n.Normalized(), nil
}

// Marshal encodes any payload body (auth, version, dismiss, events) with the
// same std-compatible configuration the descriptor codecs use.
func Marshal(v any) ([]byte, error) {
	return std.Marshal(v)
}

// Unmarshal decodes any payload body with the same std-compatible
// configuration the descriptor codecs use.
func Unmarshal(data []byte, v any) error {
	return std.Unmarshal(data, v)
}
