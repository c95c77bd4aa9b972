// Package store owns the in-memory item collections and the review and error
// logs, and mirrors them to persistence through a debounced writer.
package store

import (
	"sync"

	"github.com/benkyo-app/benkyo/internal/item"
)

// Snapshot is a point-in-time copy of everything the store holds. It is the
// unit of persistence: local saves and cloud pushes both take a full snapshot.
type Snapshot struct {
	Items        map[item.Category][]item.Item
	ReviewEvents []item.ReviewEvent
	ErrorLog     []item.ErrorLogEntry
}

// Store is the single owner of the item collections and logs. Items are
// treated as immutable records replaced by id; events and error log entries
// are append-only. A mutex guards access because the coalescing writer reads
// snapshots from a timer goroutine.
type Store struct {
	mu       sync.Mutex
	items    map[item.Category][]item.Item
	events   []item.ReviewEvent
	errorLog []item.ErrorLogEntry
	onChange func()
}

// New creates an empty store.
func New() *Store {
	return &Store{items: make(map[item.Category][]item.Item)}
}

// SetOnChange registers a hook invoked after every mutation. The coalescing
// writer uses it to reset its quiescence timer.
func (s *Store) SetOnChange(fn func()) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// LoadSnapshot replaces all in-memory state with the given snapshot without
// triggering the change hook: loading is not a mutation to persist.
func (s *Store) LoadSnapshot(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = make(map[item.Category][]item.Item, len(snap.Items))
	for category, items := range snap.Items {
		s.items[category] = append([]item.Item(nil), items...)
	}
	s.events = append([]item.ReviewEvent(nil), snap.ReviewEvents...)
	s.errorLog = append([]item.ErrorLogEntry(nil), snap.ErrorLog...)
}

// Snapshot copies the full store state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make(map[item.Category][]item.Item, len(s.items))
	for category, list := range s.items {
		items[category] = append([]item.Item(nil), list...)
	}
	return Snapshot{
		Items:        items,
		ReviewEvents: append([]item.ReviewEvent(nil), s.events...),
		ErrorLog:     append([]item.ErrorLogEntry(nil), s.errorLog...),
	}
}

// Items returns a copy of one category's items in insertion order.
func (s *Store) Items(category item.Category) []item.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]item.Item(nil), s.items[category]...)
}

// ItemsByCategory returns a copy of all items grouped by category.
func (s *Store) ItemsByCategory() map[item.Category][]item.Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make(map[item.Category][]item.Item, len(s.items))
	for category, list := range s.items {
		items[category] = append([]item.Item(nil), list...)
	}
	return items
}

// AllItems returns every item across categories in category display order.
func (s *Store) AllItems() []item.Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	var all []item.Item
	for _, category := range item.Categories() {
		all = append(all, s.items[category]...)
	}
	return all
}

// AddItems appends items to their categories.
func (s *Store) AddItems(items ...item.Item) {
	s.mu.Lock()
	for _, it := range items {
		s.items[it.Category()] = append(s.items[it.Category()], it)
	}
	s.mu.Unlock()
	s.notifyChange()
}

// ReplaceItem swaps an item by id within its category. Unknown ids are
// ignored: the scheduler only ever returns updates for items the store handed
// out.
func (s *Store) ReplaceItem(updated item.Item) {
	s.mu.Lock()
	list := s.items[updated.Category()]
	for i, existing := range list {
		if existing.Schedule().ID == updated.Schedule().ID {
			list[i] = updated
			break
		}
	}
	s.mu.Unlock()
	s.notifyChange()
}

// AppendReviewEvent appends one review event.
func (s *Store) AppendReviewEvent(ev item.ReviewEvent) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	s.mu.Unlock()
	s.notifyChange()
}

// AppendErrorLog appends one error log entry.
func (s *Store) AppendErrorLog(entry item.ErrorLogEntry) {
	s.mu.Lock()
	s.errorLog = append(s.errorLog, entry)
	s.mu.Unlock()
	s.notifyChange()
}

// ReviewEvents returns a copy of the review event log in append order.
func (s *Store) ReviewEvents() []item.ReviewEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]item.ReviewEvent(nil), s.events...)
}

// ErrorLog returns a copy of the error log in append order.
func (s *Store) ErrorLog() []item.ErrorLogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]item.ErrorLogEntry(nil), s.errorLog...)
}

// ClearAll empties every collection in one step.
func (s *Store) ClearAll() {
	s.mu.Lock()
	s.items = make(map[item.Category][]item.Item)
	s.events = nil
	s.errorLog = nil
	s.mu.Unlock()
	s.notifyChange()
}

func (s *Store) notifyChange() {
	s.mu.Lock()
	fn := s.onChange
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}
