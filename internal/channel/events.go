package channel

import "github.com/notchbar/notchbar-go/wire"

// Events holds the push-event handler slots, exactly one per event kind,
// installed at construction. The channel forwards payloads verbatim and keeps
// no per-id state. Handlers run on the read-pump goroutine; the client
// re-dispatches them onto its callback queue.
type Events struct {
	AuthorizationChanged     func(wire.AuthorizationEvent)
	LiveActivityDismissed    func(wire.DismissedEvent)
	LockWidgetDismissed      func(wire.DismissedEvent)
	NotchExperienceDismissed func(wire.DismissedEvent)
}
