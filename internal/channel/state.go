package channel

// State identifies where the channel is in its connection lifecycle.
type State int

const (
	// StateUnconnected is the resting state; nothing is dialed.
	StateUnconnected State = iota
	// StateConnecting covers the dial and handshake.
	StateConnecting
	// StateConnected means calls can flow.
	StateConnected
	// StateInterrupted is passed through when either side breaks the
	// connection; the channel settles back at Unconnected.
	StateInterrupted
	// StateInvalidated is passed through when the owner closes the channel.
	StateInvalidated
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateUnconnected:
		return "unconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateInterrupted:
		return "interrupted"
	case StateInvalidated:
		return "invalidated"
	default:
		return "unknown"
	}
}
