package notchbar

import "sync"

// dismissRegistry holds at most one dismissal handler per descriptor id.
// Registering again for an id replaces the previous handler.
type dismissRegistry struct {
	mu       sync.Mutex
	handlers map[string]func()
}

func newDismissRegistry() *dismissRegistry {
	return &dismissRegistry{handlers: make(map[string]func())}
}

func (r *dismissRegistry) set(id string, fn func()) {
	r.mu.Lock()
	r.handlers[id] = fn
	r.mu.Unlock()
}

// take removes and returns the handler for id, nil when none is registered.
// Lookup and removal are one atomic step, so one dismissal fires at most one
// handler exactly once even when pushes race re-registration.
func (r *dismissRegistry) take(id string) func() {
	r.mu.Lock()
	fn := r.handlers[id]
	delete(r.handlers, id)
	r.mu.Unlock()
	return fn
}

// observerList is the unbounded, append-only authorization observer list.
// There is no removal and no dedup; every registered observer fires on every
// change.
type observerList struct {
	mu        sync.Mutex
	observers []func(bool)
}

func (l *observerList) add(fn func(bool)) {
	l.mu.Lock()
	l.observers = append(l.observers, fn)
	l.mu.Unlock()
}

// snapshot returns the observers registered at call time. Firing iterates
// the snapshot, so an observer added from inside a callback starts with the
// next change rather than the one being delivered.
func (l *observerList) snapshot() []func(bool) {
	l.mu.Lock()
	out := make([]func(bool), len(l.observers))
	copy(out, l.observers)
	l.mu.Unlock()
	return out
}
