package hostsim

import "sync"

// Policy tracks per-bundle authorization decisions. A bundle has no decision
// until it asks; Authorize evaluates the configured rules and records the
// outcome, Granted reports the recorded state without prompting, and Flip
// overrides the decision from the debug surface.
type Policy struct {
	mu        sync.RWMutex
	autoGrant bool
	denied    map[string]struct{}
	decisions map[string]bool
}

// NewPolicy builds a policy from the auth configuration.
func NewPolicy(cfg AuthConfig) *Policy {
	denied := make(map[string]struct{}, len(cfg.Denied))
	for _, id := range cfg.Denied {
		denied[id] = struct{}{}
	}
	return &Policy{
		autoGrant: cfg.AutoGrant,
		denied:    denied,
		decisions: make(map[string]bool),
	}
}

// Authorize evaluates and records a decision for the bundle. An earlier
// decision (including a debug flip) wins over the configured rules.
func (p *Policy) Authorize(bundleID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if granted, ok := p.decisions[bundleID]; ok {
		return granted
	}
	granted := p.autoGrant
	if _, deny := p.denied[bundleID]; deny {
		granted = false
	}
	p.decisions[bundleID] = granted
	return granted
}

// Granted reports the recorded decision. A bundle that never asked is not
// authorized.
func (p *Policy) Granted(bundleID string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.decisions[bundleID]
}

// Flip overrides the decision for a bundle.
func (p *Policy) Flip(bundleID string, granted bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.decisions[bundleID] = granted
}

// Snapshot copies the recorded decisions for state dumps.
func (p *Policy) Snapshot() map[string]bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make(map[string]bool, len(p.decisions))
	for id, granted := range p.decisions {
		out[id] = granted
	}
	return out
}
