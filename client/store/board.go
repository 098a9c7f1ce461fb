package store

import (
	"sync"

	"github.com/FordLabs/retroquest-sub000/board"
)

// Store is the normalized entity store for one team's board. All mutations go
// through its API so every path is traceable; UI layers read projections and
// never write here directly.
//
// Mutations are serialized by an internal lock. Correctness across the two
// writers (reconciled server events, optimistic local edits) rests on
// last-applied-wins whole-entity replacement plus idempotent upserts, not on
// who wins the lock first.
type Store struct {
	mu          sync.RWMutex
	rev         uint64
	thoughts    *collection[board.Thought]
	actionItems *collection[board.ActionItem]
	columns     *collection[board.Column]
	team        board.Team
	hasTeam     bool
	observers   []func()
}

func New() *Store {
	return &Store{
		thoughts:    newCollection(func(t board.Thought) int64 { return t.ID }),
		actionItems: newCollection(func(a board.ActionItem) int64 { return a.ID }),
		columns:     newCollection(func(c board.Column) int64 { return c.ID }),
	}
}

// Revision increases on every effective mutation. Derived views memoize
// against it; an ineffective write (replaying an identical entity) does not
// advance it.
func (s *Store) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rev
}

// OnChange registers a callback invoked after every effective mutation. The
// callback runs outside the store lock.
func (s *Store) OnChange(fn func()) {
	s.mu.Lock()
	s.observers = append(s.observers, fn)
	s.mu.Unlock()
}

// mutate runs fn under the write lock and, when fn reports an effective
// change, bumps the revision and notifies observers.
func (s *Store) mutate(fn func() bool) bool {
	s.mu.Lock()
	changed := fn()
	if changed {
		s.rev++
	}
	observers := s.observers
	s.mu.Unlock()
	if changed {
		for _, fn := range observers {
			fn()
		}
	}
	return changed
}

// Thoughts returns all thoughts in insertion order.
func (s *Store) Thoughts() []board.Thought {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.thoughts.all()
}

func (s *Store) ThoughtByID(id int64) (board.Thought, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.thoughts.byID(id)
}

// UpsertThought replaces the whole thought when the id is present, appends it
// otherwise. Applying the same thought twice is a no-op.
func (s *Store) UpsertThought(t board.Thought) {
	s.mutate(func() bool { return s.thoughts.upsert(t) })
}

// SwapThought replaces old with new only if the store still holds exactly
// old. It is the rollback primitive for optimistic mutations: a newer write
// to the same thought makes the swap fail instead of being clobbered.
func (s *Store) SwapThought(old, t board.Thought) bool {
	return s.mutate(func() bool { return s.thoughts.swap(old, t) })
}

// RemoveThought is a no-op when the id is absent.
func (s *Store) RemoveThought(id int64) {
	s.mutate(func() bool { return s.thoughts.remove(id) })
}

func (s *Store) ReplaceAllThoughts(ts []board.Thought) {
	s.mutate(func() bool { s.thoughts.replaceAll(ts); return true })
}

// ClearThoughts removes thoughts matching pred; nil clears all.
func (s *Store) ClearThoughts(pred func(board.Thought) bool) {
	s.mutate(func() bool { return s.thoughts.drop(pred) })
}

func (s *Store) ActionItems() []board.ActionItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.actionItems.all()
}

func (s *Store) ActionItemByID(id int64) (board.ActionItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.actionItems.byID(id)
}

func (s *Store) UpsertActionItem(a board.ActionItem) {
	s.mutate(func() bool { return s.actionItems.upsert(a) })
}

func (s *Store) SwapActionItem(old, a board.ActionItem) bool {
	return s.mutate(func() bool { return s.actionItems.swap(old, a) })
}

func (s *Store) RemoveActionItem(id int64) {
	s.mutate(func() bool { return s.actionItems.remove(id) })
}

func (s *Store) ReplaceAllActionItems(as []board.ActionItem) {
	s.mutate(func() bool { s.actionItems.replaceAll(as); return true })
}

// ClearActionItems removes items matching pred; nil clears all.
func (s *Store) ClearActionItems(pred func(board.ActionItem) bool) {
	s.mutate(func() bool { return s.actionItems.drop(pred) })
}

func (s *Store) Columns() []board.Column {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.columns.all()
}

func (s *Store) ColumnByID(id int64) (board.Column, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.columns.byID(id)
}

func (s *Store) ColumnByTopic(topic board.Topic) (board.Column, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.columns.items {
		if c.Topic == topic {
			return c, true
		}
	}
	return board.Column{}, false
}

func (s *Store) UpsertColumn(c board.Column) {
	s.mutate(func() bool { return s.columns.upsert(c) })
}

func (s *Store) SwapColumn(old, c board.Column) bool {
	return s.mutate(func() bool { return s.columns.swap(old, c) })
}

func (s *Store) ReplaceAllColumns(cs []board.Column) {
	s.mutate(func() bool { s.columns.replaceAll(cs); return true })
}

// Team returns the active team record, if one has been loaded.
func (s *Store) Team() (board.Team, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.team, s.hasTeam
}

// SetTeam replaces the team record wholesale.
func (s *Store) SetTeam(t board.Team) {
	s.mutate(func() bool {
		s.team = t
		s.hasTeam = true
		return true
	})
}
