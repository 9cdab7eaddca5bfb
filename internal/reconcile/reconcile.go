package reconcile

import "sync"

// Ticket identifies one lookup attempt for a key. It is issued by Begin and
// redeemed by Finish; a ticket older than the key's newest one is worthless.
type Ticket[K comparable] struct {
	Key K
	gen uint64
}

type slot[V any] struct {
	latest   uint64 // generation issued by the newest Begin
	settled  uint64 // generation of the newest current Finish
	value    V
	hasValue bool
	err      error
}

// Map reconciles asynchronous results for independently keyed slots.
// The zero value is not usable; call NewMap.
type Map[K comparable, V any] struct {
	mu    sync.Mutex
	next  uint64
	slots map[K]*slot[V]
}

// NewMap returns an empty reconciliation map.
func NewMap[K comparable, V any]() *Map[K, V] {
	return &Map[K, V]{slots: make(map[K]*slot[V])}
}

// Begin registers a new lookup attempt for key and returns its ticket.
// Any attempt started earlier for the same key is superseded from this
// moment: its eventual result will be discarded by Finish.
func (m *Map[K, V]) Begin(key K) Ticket[K] {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.next++
	s := m.slots[key]
	if s == nil {
		s = &slot[V]{}
		m.slots[key] = s
	}
	s.latest = m.next
	return Ticket[K]{Key: key, gen: m.next}
}

// Finish settles the attempt identified by t. The result is applied only
// when t is still the newest attempt for its key; it reports whether the
// slot changed. A current failure records err but keeps the previously
// applied value. Stale completions, success or failure, are dropped.
func (m *Map[K, V]) Finish(t Ticket[K], value V, err error) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.slots[t.Key]
	if s == nil || t.gen != s.latest {
		return false
	}
	s.settled = t.gen
	if err != nil {
		s.err = err
		return true
	}
	s.value = value
	s.hasValue = true
	s.err = nil
	return true
}

// Get returns the last applied value for key.
func (m *Map[K, V]) Get(key K) (V, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s := m.slots[key]; s != nil && s.hasValue {
		return s.value, true
	}
	var zero V
	return zero, false
}

// Err returns the error recorded by the key's most recent settled attempt,
// or nil after a success. A recorded error does not imply the value is gone;
// Get keeps serving the last known good result.
func (m *Map[K, V]) Err(key K) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s := m.slots[key]; s != nil {
		return s.err
	}
	return nil
}

// Loading reports whether the newest attempt for key has not settled yet.
func (m *Map[K, V]) Loading(key K) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.slots[key]
	return s != nil && s.latest != s.settled
}

// Idle reports whether no key has an attempt in flight. Views use it as the
// aggregate "everything loaded" signal after a fan-out; correctness of any
// single key never depends on it.
func (m *Map[K, V]) Idle() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, s := range m.slots {
		if s.latest != s.settled {
			return false
		}
	}
	return true
}

// Drop forgets the slot for key entirely. In-flight attempts for the key
// become stale: generations are never reused, so a later Finish cannot
// resurrect the slot with old data.
func (m *Map[K, V]) Drop(key K) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.slots, key)
}

// Len returns the number of live slots.
func (m *Map[K, V]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.slots)
}

// Slot is a Map with a single anonymous key, for the common case of one
// logical resource whose identity changes over time (for example "art for
// the currently selected card").
type Slot[V any] struct {
	m *Map[struct{}, V]
}

// NewSlot returns an empty single-resource slot.
func NewSlot[V any]() *Slot[V] {
	return &Slot[V]{m: NewMap[struct{}, V]()}
}

// Begin registers a new lookup attempt, superseding any earlier one.
func (s *Slot[V]) Begin() Ticket[struct{}] {
	return s.m.Begin(struct{}{})
}

// Finish settles an attempt; stale tickets are discarded.
func (s *Slot[V]) Finish(t Ticket[struct{}], value V, err error) bool {
	return s.m.Finish(t, value, err)
}

// Get returns the last applied value.
func (s *Slot[V]) Get() (V, bool) { return s.m.Get(struct{}{}) }

// Err returns the most recent settled attempt's error, nil after success.
func (s *Slot[V]) Err() error { return s.m.Err(struct{}{}) }

// Loading reports whether the newest attempt has not settled.
func (s *Slot[V]) Loading() bool { return s.m.Loading(struct{}{}) }

// Reset forgets the slot's value and invalidates in-flight attempts.
func (s *Slot[V]) Reset() { s.m.Drop(struct{}{}) }
