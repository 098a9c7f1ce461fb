// Package view computes pure, memoized projections over the client store:
// per-topic groupings, the heart-sort/discussed-partition ordering, and the
// counts the board header renders. Nothing here mutates the store.
package view

import (
	"sort"
	"sync"

	"github.com/FordLabs/retroquest-sub000/board"
	"github.com/FordLabs/retroquest-sub000/client/store"
)

type sortKey struct {
	topic  board.Topic
	sorted bool
}

// Engine caches projections against the store revision. Repeated calls with
// an unchanged store return equal results without recomputing; any effective
// store mutation invalidates the whole cache.
type Engine struct {
	store *store.Store

	mu          sync.Mutex
	rev         uint64
	primed      bool
	byTopic     map[board.Topic][]board.Thought
	sortable    map[sortKey][]board.Thought
	activeCount map[board.Topic]int
}

func NewEngine(s *store.Store) *Engine {
	return &Engine{
		store:       s,
		byTopic:     make(map[board.Topic][]board.Thought),
		sortable:    make(map[sortKey][]board.Thought),
		activeCount: make(map[board.Topic]int),
	}
}

// refresh drops stale cache entries. Callers must hold e.mu.
func (e *Engine) refresh() {
	rev := e.store.Revision()
	if e.primed && rev == e.rev {
		return
	}
	e.rev = rev
	e.primed = true
	clear(e.byTopic)
	clear(e.sortable)
	clear(e.activeCount)
}

// ByTopic returns all thoughts whose topic equals topic, in store insertion
// order.
func (e *Engine) ByTopic(topic board.Topic) []board.Thought {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.byTopicLocked(topic)
}

func (e *Engine) byTopicLocked(topic board.Topic) []board.Thought {
	e.refresh()
	if ts, ok := e.byTopic[topic]; ok {
		return ts
	}
	var ts []board.Thought
	for _, t := range e.store.Thoughts() {
		if t.Topic == topic {
			ts = append(ts, t)
		}
	}
	e.byTopic[topic] = ts
	return ts
}

// SortableByTopic orders a topic's thoughts for display. When sorted is true
// it stable-sorts by descending hearts first; then, always, it stable-
// partitions undiscussed thoughts ahead of discussed ones. The two stages are
// deliberately separate: heart sorting must not disturb the discussed
// grouping, and turning sorted off restores the original relative order.
func (e *Engine) SortableByTopic(topic board.Topic, sorted bool) []board.Thought {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.refresh()

	key := sortKey{topic: topic, sorted: sorted}
	if ts, ok := e.sortable[key]; ok {
		return ts
	}

	base := e.byTopicLocked(topic)
	ts := make([]board.Thought, len(base))
	copy(ts, base)
	if sorted {
		sort.SliceStable(ts, func(i, j int) bool { return ts[i].Hearts > ts[j].Hearts })
	}

	ordered := make([]board.Thought, 0, len(ts))
	for _, t := range ts {
		if !t.Discussed {
			ordered = append(ordered, t)
		}
	}
	for _, t := range ts {
		if t.Discussed {
			ordered = append(ordered, t)
		}
	}

	e.sortable[key] = ordered
	return ordered
}

// ActiveCountByTopic counts the not-yet-discussed thoughts for a topic. This
// drives the column header counter.
func (e *Engine) ActiveCountByTopic(topic board.Topic) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.refresh()

	if n, ok := e.activeCount[topic]; ok {
		return n
	}
	n := 0
	for _, t := range e.byTopicLocked(topic) {
		if !t.Discussed {
			n++
		}
	}
	e.activeCount[topic] = n
	return n
}

// ActiveActionItems returns action items not yet completed, in insertion
// order.
func (e *Engine) ActiveActionItems() []board.ActionItem {
	return e.partitionActionItems(false)
}

// CompletedActionItems returns completed action items, in insertion order.
func (e *Engine) CompletedActionItems() []board.ActionItem {
	return e.partitionActionItems(true)
}

func (e *Engine) partitionActionItems(completed bool) []board.ActionItem {
	var out []board.ActionItem
	for _, a := range e.store.ActionItems() {
		if a.Completed == completed {
			out = append(out, a)
		}
	}
	return out
}
