package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FordLabs/retroquest-sub000/board"
)

func thought(id int64, topic board.Topic, message string) board.Thought {
	return board.Thought{ID: id, TeamID: 1, Topic: topic, Message: message}
}

func TestUpsertThought_AppendsInInsertionOrder(t *testing.T) {
	s := New()
	s.UpsertThought(thought(3, board.TopicHappy, "c"))
	s.UpsertThought(thought(1, board.TopicHappy, "a"))
	s.UpsertThought(thought(2, board.TopicHappy, "b"))

	got := s.Thoughts()
	require.Len(t, got, 3)
	assert.Equal(t, []int64{3, 1, 2}, []int64{got[0].ID, got[1].ID, got[2].ID},
		"insertion order, not id order")
}

func TestUpsertThought_ReplacesWholeEntityInPlace(t *testing.T) {
	s := New()
	s.UpsertThought(thought(1, board.TopicHappy, "a"))
	s.UpsertThought(thought(2, board.TopicHappy, "b"))

	edited := thought(1, board.TopicConfused, "a, revised")
	edited.Hearts = 4
	s.UpsertThought(edited)

	got := s.Thoughts()
	require.Len(t, got, 2)
	assert.Equal(t, edited, got[0], "replaced in place, position kept")

	byID, ok := s.ThoughtByID(1)
	require.True(t, ok)
	assert.Equal(t, edited, byID)
}

func TestUpsertThought_IdenticalReplayIsNoop(t *testing.T) {
	s := New()
	th := thought(1, board.TopicHappy, "a")
	s.UpsertThought(th)
	rev := s.Revision()

	s.UpsertThought(th)
	assert.Equal(t, rev, s.Revision(), "replaying the same entity must not advance the revision")
	assert.Len(t, s.Thoughts(), 1)
}

func TestRemoveThought_AbsentIDIsNoop(t *testing.T) {
	s := New()
	s.UpsertThought(thought(1, board.TopicHappy, "a"))
	rev := s.Revision()

	s.RemoveThought(99)
	assert.Equal(t, rev, s.Revision())
	assert.Len(t, s.Thoughts(), 1)
}

func TestRemoveThought_KeepsOrderAndIndex(t *testing.T) {
	s := New()
	for i := int64(1); i <= 4; i++ {
		s.UpsertThought(thought(i, board.TopicHappy, "m"))
	}

	s.RemoveThought(2)
	got := s.Thoughts()
	require.Len(t, got, 3)
	assert.Equal(t, []int64{1, 3, 4}, []int64{got[0].ID, got[1].ID, got[2].ID})

	// entities after the removed slot are still reachable by id
	th, ok := s.ThoughtByID(4)
	require.True(t, ok)
	assert.Equal(t, int64(4), th.ID)
}

func TestSwapThought_FailsWhenValueMovedOn(t *testing.T) {
	s := New()
	original := thought(1, board.TopicHappy, "a")
	s.UpsertThought(original)

	optimistic := original
	optimistic.Hearts = 1
	s.UpsertThought(optimistic)

	// a server event lands before the rollback
	serverCopy := original
	serverCopy.Hearts = 2
	s.UpsertThought(serverCopy)

	assert.False(t, s.SwapThought(optimistic, original),
		"rollback must not clobber a newer write")
	got, _ := s.ThoughtByID(1)
	assert.Equal(t, serverCopy, got)

	assert.True(t, s.SwapThought(serverCopy, original))
	got, _ = s.ThoughtByID(1)
	assert.Equal(t, original, got)
}

func TestClearThoughts_NilPredicateClearsAll(t *testing.T) {
	s := New()
	s.UpsertThought(thought(1, board.TopicHappy, "a"))
	s.UpsertThought(thought(2, board.TopicUnhappy, "b"))

	s.ClearThoughts(nil)
	assert.Empty(t, s.Thoughts())

	rev := s.Revision()
	s.ClearThoughts(nil)
	assert.Equal(t, rev, s.Revision(), "clearing an empty collection is a no-op")
}

func TestClearActionItems_PredicateKeepsRest(t *testing.T) {
	s := New()
	s.UpsertActionItem(board.ActionItem{ID: 1, Task: "keep"})
	s.UpsertActionItem(board.ActionItem{ID: 2, Task: "drop", Completed: true})
	s.UpsertActionItem(board.ActionItem{ID: 3, Task: "keep too"})

	s.ClearActionItems(func(a board.ActionItem) bool { return a.Completed })

	got := s.ActionItems()
	require.Len(t, got, 2)
	assert.Equal(t, []int64{1, 3}, []int64{got[0].ID, got[1].ID})

	_, ok := s.ActionItemByID(2)
	assert.False(t, ok)
}

func TestReplaceAllThoughts_ResetsCollection(t *testing.T) {
	s := New()
	s.UpsertThought(thought(1, board.TopicHappy, "old"))

	s.ReplaceAllThoughts([]board.Thought{
		thought(5, board.TopicUnhappy, "x"),
		thought(6, board.TopicConfused, "y"),
	})

	got := s.Thoughts()
	require.Len(t, got, 2)
	assert.Equal(t, int64(5), got[0].ID)
	_, ok := s.ThoughtByID(1)
	assert.False(t, ok)
}

func TestColumnByTopic(t *testing.T) {
	s := New()
	s.ReplaceAllColumns([]board.Column{
		{ID: 10, Topic: board.TopicHappy, Title: "Happy"},
		{ID: 11, Topic: board.TopicConfused, Title: "Confused"},
	})

	col, ok := s.ColumnByTopic(board.TopicConfused)
	require.True(t, ok)
	assert.Equal(t, int64(11), col.ID)

	_, ok = s.ColumnByTopic(board.TopicUnhappy)
	assert.False(t, ok)
}

func TestOnChange_FiresOnlyOnEffectiveMutation(t *testing.T) {
	s := New()
	var fired int
	s.OnChange(func() { fired++ })

	th := thought(1, board.TopicHappy, "a")
	s.UpsertThought(th)
	assert.Equal(t, 1, fired)

	s.UpsertThought(th) // identical replay
	assert.Equal(t, 1, fired)

	s.RemoveThought(1)
	assert.Equal(t, 2, fired)
}

func TestSetTeam_ReplacesWholesale(t *testing.T) {
	s := New()
	_, ok := s.Team()
	assert.False(t, ok)

	s.SetTeam(board.Team{ID: 1, Name: "alpha", ContactEmails: []string{"a@x"}})
	s.SetTeam(board.Team{ID: 1, Name: "alpha renamed"})

	team, ok := s.Team()
	require.True(t, ok)
	assert.Equal(t, "alpha renamed", team.Name)
	assert.Empty(t, team.ContactEmails, "whole-entity replace, no field merge")
}
