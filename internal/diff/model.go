package diff

import "sync"

// ModelObserver is called after a new snapshot is published.
type ModelObserver func(snap *Snapshot)

// ModelSubscription represents an active observer registration on a Model.
type ModelSubscription struct {
	id    uint64
	model *Model
}

// Unsubscribe removes this subscription. Safe to call multiple times.
func (s *ModelSubscription) Unsubscribe() {
	if s.model != nil {
		s.model.unsubscribe(s.id)
	}
}

// Model holds the current published diff snapshot.
//
// A Model is created once, shared by reference with every reader, and
// mutated in place by Publish so all holders observe updates. Readers only
// call Get; writes are restricted to the recomputation owner by construction.
type Model struct {
	mu         sync.RWMutex
	snap       *Snapshot
	generation uint64

	observers map[uint64]ModelObserver
	nextObsID uint64
}

// NewModel creates a model holding the given initial snapshot.
func NewModel(initial *Snapshot) *Model {
	return &Model{
		snap:      initial,
		observers: make(map[uint64]ModelObserver),
	}
}

// Get returns the most recently published snapshot.
func (m *Model) Get() *Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snap
}

// Generation returns the number of publishes performed on the model.
// The initial snapshot counts as generation zero.
func (m *Model) Generation() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.generation
}

// Publish replaces the held snapshot atomically and notifies observers.
// A nil snapshot is ignored; readers never observe a partial update because
// the snapshot itself is immutable and swapped under the lock.
func (m *Model) Publish(snap *Snapshot) {
	if snap == nil {
		return
	}

	m.mu.Lock()
	m.snap = snap
	m.generation++
	observers := make([]ModelObserver, 0, len(m.observers))
	for _, obs := range m.observers {
		observers = append(observers, obs)
	}
	m.mu.Unlock()

	for _, obs := range observers {
		obs(snap)
	}
}

// Subscribe registers an observer called after every publish.
func (m *Model) Subscribe(observer ModelObserver) *ModelSubscription {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextObsID
	m.nextObsID++
	m.observers[id] = observer

	return &ModelSubscription{id: id, model: m}
}

// unsubscribe removes an observer by ID.
func (m *Model) unsubscribe(id uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.observers, id)
}
