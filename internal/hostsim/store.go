package hostsim

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Kind names an entity family.
type Kind string

const (
	KindLiveActivity    Kind = "live_activity"
	KindLockWidget      Kind = "lock_widget"
	KindNotchExperience Kind = "notch_experience"
)

// Entity is one presented descriptor. The accepted wire payload is retained
// for state dumps.
type Entity struct {
	ID        string          `json:"id"`
	BundleID  string          `json:"bundle_id"`
	Kind      Kind            `json:"kind"`
	UpdatedAt time.Time       `json:"updated_at"`
	Payload   json.RawMessage `json:"payload"`
}

// LimitError reports a per-bundle capacity rejection.
type LimitError struct {
	Kind  Kind
	Limit int
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("%s limit reached (%d per bundle)", e.Kind, e.Limit)
}

// UnknownEntityError reports an update against an id that is absent or was
// dismissed.
type UnknownEntityError struct {
	Kind      Kind
	ID        string
	Dismissed bool
}

func (e *UnknownEntityError) Error() string {
	if e.Dismissed {
		return fmt.Sprintf("%s %q was dismissed", e.Kind, e.ID)
	}
	return fmt.Sprintf("no %s with id %q", e.Kind, e.ID)
}

// kindStore holds one entity family: per-bundle live entities capped at the
// configured capacity, plus an LRU of recently dismissed ids. The tombstones
// let an update that races a dismissal be answered with unknown_entity
// instead of resurrecting the entity.
type kindStore struct {
	kind     Kind
	capacity int

	mu         sync.Mutex
	entities   map[string]map[string]*Entity
	tombstones *lru.Cache[string, time.Time]
}

func newKindStore(kind Kind, capacity, tombstones int) *kindStore {
	if capacity <= 0 {
		capacity = 1
	}
	if tombstones <= 0 {
		tombstones = 64
	}
	// Size is positive, so the constructor cannot fail.
	cache, _ := lru.New[string, time.Time](tombstones)
	return &kindStore{
		kind:       kind,
		capacity:   capacity,
		entities:   make(map[string]map[string]*Entity),
		tombstones: cache,
	}
}

func tombstoneKey(bundleID, id string) string {
	return bundleID + "/" + id
}

// Present inserts or replaces an entity. A replacement never counts against
// the capacity; a fresh insert over capacity is rejected. Presenting an id
// that was dismissed earlier clears its tombstone.
func (s *kindStore) Present(bundleID, id string, payload json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	byID := s.entities[bundleID]
	if byID == nil {
		byID = make(map[string]*Entity)
		s.entities[bundleID] = byID
	}
	if _, replaces := byID[id]; !replaces && len(byID) >= s.capacity {
		return &LimitError{Kind: s.kind, Limit: s.capacity}
	}
	s.tombstones.Remove(tombstoneKey(bundleID, id))
	byID[id] = &Entity{
		ID:        id,
		BundleID:  bundleID,
		Kind:      s.kind,
		UpdatedAt: time.Now(),
		Payload:   payload,
	}
	return nil
}

// Update replaces the payload of a live entity. Absent and tombstoned ids
// are unknown; the tombstone distinguishes a dismissed id in the message.
func (s *kindStore) Update(bundleID, id string, payload json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ent := s.entities[bundleID][id]
	if ent == nil {
		_, dismissed := s.tombstones.Get(tombstoneKey(bundleID, id))
		return &UnknownEntityError{Kind: s.kind, ID: id, Dismissed: dismissed}
	}
	ent.Payload = payload
	ent.UpdatedAt = time.Now()
	return nil
}

// Dismiss removes an entity and records a tombstone. It reports whether the
// entity was present; dismissing an absent id is a no-op, not an error.
func (s *kindStore) Dismiss(bundleID, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	byID := s.entities[bundleID]
	if _, ok := byID[id]; !ok {
		return false
	}
	delete(byID, id)
	if len(byID) == 0 {
		delete(s.entities, bundleID)
	}
	s.tombstones.Add(tombstoneKey(bundleID, id), time.Now())
	return true
}

// Count reports the live entities for a bundle.
func (s *kindStore) Count(bundleID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entities[bundleID])
}

// Total counts live entities across all bundles.
func (s *kindStore) Total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, byID := range s.entities {
		n += len(byID)
	}
	return n
}

// snapshot copies the live entities.
func (s *kindStore) snapshot() []Entity {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Entity
	for _, byID := range s.entities {
		for _, ent := range byID {
			out = append(out, *ent)
		}
	}
	return out
}

// dismissed lists the tombstoned keys, oldest first.
func (s *kindStore) dismissed() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tombstones.Keys()
}

// Store aggregates the three entity families.
type Store struct {
	activities  *kindStore
	widgets     *kindStore
	experiences *kindStore
}

// NewStore builds the per-kind stores from the configured limits.
func NewStore(cfg LimitsConfig) *Store {
	return &Store{
		activities:  newKindStore(KindLiveActivity, cfg.LiveActivities, cfg.Tombstones),
		widgets:     newKindStore(KindLockWidget, cfg.LockWidgets, cfg.Tombstones),
		experiences: newKindStore(KindNotchExperience, cfg.NotchExperiences, cfg.Tombstones),
	}
}

// ByKind returns the store for a kind, or nil for an unknown kind.
func (s *Store) ByKind(kind Kind) *kindStore {
	switch kind {
	case KindLiveActivity:
		return s.activities
	case KindLockWidget:
		return s.widgets
	case KindNotchExperience:
		return s.experiences
	}
	return nil
}

// Snapshot copies every live entity grouped by kind, for the debug state
// endpoint.
func (s *Store) Snapshot() map[Kind][]Entity {
	return map[Kind][]Entity{
		KindLiveActivity:    s.activities.snapshot(),
		KindLockWidget:      s.widgets.snapshot(),
		KindNotchExperience: s.experiences.snapshot(),
	}
}

// Dismissed lists recently dismissed ids grouped by kind.
func (s *Store) Dismissed() map[Kind][]string {
	return map[Kind][]string{
		KindLiveActivity:    s.activities.dismissed(),
		KindLockWidget:      s.widgets.dismissed(),
		KindNotchExperience: s.experiences.dismissed(),
	}
}
