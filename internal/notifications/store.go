package notifications

import "sync"

// Store holds the deduplicated set of notifications for one session plus the
// derived unread count. It is the single source of truth for rendering: every
// mutation is total (operating on an unknown id is a no-op, never an error)
// and subscribers are told after each mutation that changed state.
type Store struct {
	mu        sync.RWMutex
	items     []Notification // most-recent-first
	index     map[string]int // id -> position in items
	unread    int
	connected bool

	nextSub int
	subs    map[int]func()
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		index: make(map[string]int),
		subs:  make(map[int]func()),
	}
}

// Subscribe registers fn to run after every effective mutation. The returned
// function removes the subscription.
func (s *Store) Subscribe(fn func()) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *Store) notifyLocked() []func() {
	fns := make([]func(), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	return fns
}

func runAll(fns []func()) {
	for _, fn := range fns {
		fn()
	}
}

// Add inserts n at the front iff no entry shares its id. A redelivered event
// with a known id is a no-op, so at-least-once transports collapse to
// at-most-once here. Entries without an id cannot be deduped and are dropped.
func (s *Store) Add(n Notification) bool {
	if n.ID == "" {
		return false
	}

	s.mu.Lock()
	if _, exists := s.index[n.ID]; exists {
		s.mu.Unlock()
		return false
	}
	s.items = append([]Notification{n}, s.items...)
	for id, pos := range s.index {
		s.index[id] = pos + 1
	}
	s.index[n.ID] = 0
	if !n.Read {
		s.unread++
	}
	fns := s.notifyLocked()
	s.mu.Unlock()

	runAll(fns)
	return true
}

// MarkRead flips the entry to read if it exists and is unread.
func (s *Store) MarkRead(id string) {
	s.mu.Lock()
	pos, ok := s.index[id]
	if !ok || s.items[pos].Read {
		s.mu.Unlock()
		return
	}
	s.items[pos].Read = true
	if s.unread > 0 {
		s.unread--
	}
	fns := s.notifyLocked()
	s.mu.Unlock()

	runAll(fns)
}

// MarkAllRead flips every entry to read and zeroes the unread count.
func (s *Store) MarkAllRead() {
	s.mu.Lock()
	changed := s.unread > 0
	for i := range s.items {
		s.items[i].Read = true
	}
	s.unread = 0
	var fns []func()
	if changed {
		fns = s.notifyLocked()
	}
	s.mu.Unlock()

	runAll(fns)
}

// Remove deletes the entry with the given id.
func (s *Store) Remove(id string) {
	s.mu.Lock()
	pos, ok := s.index[id]
	if !ok {
		s.mu.Unlock()
		return
	}
	if !s.items[pos].Read && s.unread > 0 {
		s.unread--
	}
	s.items = append(s.items[:pos], s.items[pos+1:]...)
	delete(s.index, id)
	for other, p := range s.index {
		if p > pos {
			s.index[other] = p - 1
		}
	}
	fns := s.notifyLocked()
	s.mu.Unlock()

	runAll(fns)
}

// ClearAll empties the store.
func (s *Store) ClearAll() {
	s.mu.Lock()
	changed := len(s.items) > 0
	s.items = nil
	s.index = make(map[string]int)
	s.unread = 0
	var fns []func()
	if changed {
		fns = s.notifyLocked()
	}
	s.mu.Unlock()

	runAll(fns)
}

// SetConnected records transport connectivity for UI display. Orthogonal to
// notification content.
func (s *Store) SetConnected(connected bool) {
	s.mu.Lock()
	changed := s.connected != connected
	s.connected = connected
	var fns []func()
	if changed {
		fns = s.notifyLocked()
	}
	s.mu.Unlock()

	runAll(fns)
}

// Connected reports the last recorded transport state.
func (s *Store) Connected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connected
}

// UnreadCount returns the derived unread count.
func (s *Store) UnreadCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.unread
}

// Len returns the number of stored notifications.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Snapshot returns a copy of the notifications, most recent first.
func (s *Store) Snapshot() []Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Notification, len(s.items))
	copy(out, s.items)
	return out
}

// Get returns the notification with the given id.
func (s *Store) Get(id string) (Notification, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pos, ok := s.index[id]
	if !ok {
		return Notification{}, false
	}
	return s.items[pos], true
}
