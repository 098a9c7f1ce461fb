package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/FordLabs/retroquest-sub000/board"
	"github.com/FordLabs/retroquest-sub000/client/store"
)

// ErrNotFound is returned when an optimistic mutation targets an entity the
// store no longer holds.
var ErrNotFound = errors.New("client: entity not found")

// Commands is the outbound half of an optimistic mutation: the remote call
// whose failure triggers rollback. Satisfied by api.Client.
type Commands interface {
	MoveThought(ctx context.Context, teamID, thoughtID int64, topic board.Topic) error
	HeartThought(ctx context.Context, teamID, thoughtID int64) error
	SetThoughtDiscussed(ctx context.Context, teamID, thoughtID int64, discussed bool) error
	EditThoughtMessage(ctx context.Context, teamID, thoughtID int64, message string) error
	UpdateActionItem(ctx context.Context, teamID int64, item board.ActionItem) error
	RenameColumn(ctx context.Context, teamID, columnID int64, title string) error
}

// MutationState tracks a pending optimistic mutation. There is no UI-visible
// pending state: the optimistic value is shown as if already final.
type MutationState int32

const (
	MutationApplied MutationState = iota
	MutationConfirmed
	MutationRolledBack
)

func (s MutationState) String() string {
	switch s {
	case MutationApplied:
		return "applied"
	case MutationConfirmed:
		return "confirmed"
	case MutationRolledBack:
		return "rolled_back"
	}
	return "unknown"
}

// Mutation is the handle for one in-flight optimistic edit. Done closes once
// the remote command has resolved either way.
type Mutation struct {
	ID    string
	state atomic.Int32
	done  chan struct{}
}

func (m *Mutation) Done() <-chan struct{} { return m.done }

func (m *Mutation) State() MutationState { return MutationState(m.state.Load()) }

// Coordinator applies a local edit immediately, issues the matching remote
// command, and rolls the edit back if the command fails. Rollback uses the
// store's swap primitive: it reverts only while the store still holds the
// exact optimistic value, so a newer local or reconciled write is never
// clobbered by a late failure.
type Coordinator struct {
	store    *store.Store
	commands Commands
	teamID   int64
	onError  func(error)
}

func NewCoordinator(s *store.Store, commands Commands, teamID int64, onError func(error)) *Coordinator {
	return &Coordinator{store: s, commands: commands, teamID: teamID, onError: onError}
}

// MoveThought is the drag-and-drop case: the thought shows up under the
// destination column before the server has agreed.
func (c *Coordinator) MoveThought(ctx context.Context, thoughtID int64, dest board.Column) (*Mutation, error) {
	if !board.ValidThoughtTopic(dest.Topic) {
		return nil, board.ErrInvalidTopic
	}
	prior, ok := c.store.ThoughtByID(thoughtID)
	if !ok {
		return nil, ErrNotFound
	}
	optimistic := prior
	optimistic.Topic = dest.Topic
	c.store.UpsertThought(optimistic)

	return c.launch(ctx, "move thought",
		func(ctx context.Context) error {
			return c.commands.MoveThought(ctx, c.teamID, thoughtID, dest.Topic)
		},
		func() bool { return c.store.SwapThought(optimistic, prior) },
	), nil
}

// HeartThought bumps the upvote count locally and confirms it remotely.
func (c *Coordinator) HeartThought(ctx context.Context, thoughtID int64) (*Mutation, error) {
	prior, ok := c.store.ThoughtByID(thoughtID)
	if !ok {
		return nil, ErrNotFound
	}
	optimistic := prior
	optimistic.Hearts++
	c.store.UpsertThought(optimistic)

	return c.launch(ctx, "heart thought",
		func(ctx context.Context) error {
			return c.commands.HeartThought(ctx, c.teamID, thoughtID)
		},
		func() bool { return c.store.SwapThought(optimistic, prior) },
	), nil
}

func (c *Coordinator) SetThoughtDiscussed(ctx context.Context, thoughtID int64, discussed bool) (*Mutation, error) {
	prior, ok := c.store.ThoughtByID(thoughtID)
	if !ok {
		return nil, ErrNotFound
	}
	optimistic := prior
	optimistic.Discussed = discussed
	c.store.UpsertThought(optimistic)

	return c.launch(ctx, "set discussed",
		func(ctx context.Context) error {
			return c.commands.SetThoughtDiscussed(ctx, c.teamID, thoughtID, discussed)
		},
		func() bool { return c.store.SwapThought(optimistic, prior) },
	), nil
}

func (c *Coordinator) EditThoughtMessage(ctx context.Context, thoughtID int64, message string) (*Mutation, error) {
	if message == "" {
		return nil, board.ErrEmptyMessage
	}
	if utf8.RuneCountInString(message) > board.MaxMessageLen {
		return nil, board.ErrMessageTooLong
	}
	prior, ok := c.store.ThoughtByID(thoughtID)
	if !ok {
		return nil, ErrNotFound
	}
	optimistic := prior
	optimistic.Message = message
	c.store.UpsertThought(optimistic)

	return c.launch(ctx, "edit thought",
		func(ctx context.Context) error {
			return c.commands.EditThoughtMessage(ctx, c.teamID, thoughtID, message)
		},
		func() bool { return c.store.SwapThought(optimistic, prior) },
	), nil
}

// UpdateActionItem edits task text, assignee, or the completed flag in one
// whole-entity write.
func (c *Coordinator) UpdateActionItem(ctx context.Context, item board.ActionItem) (*Mutation, error) {
	if item.Task == "" {
		return nil, board.ErrEmptyTask
	}
	if utf8.RuneCountInString(item.Task) > board.MaxTaskLen {
		return nil, board.ErrTaskTooLong
	}
	prior, ok := c.store.ActionItemByID(item.ID)
	if !ok {
		return nil, ErrNotFound
	}
	optimistic := item
	optimistic.TeamID = prior.TeamID
	c.store.UpsertActionItem(optimistic)

	return c.launch(ctx, "update action item",
		func(ctx context.Context) error {
			return c.commands.UpdateActionItem(ctx, c.teamID, optimistic)
		},
		func() bool { return c.store.SwapActionItem(optimistic, prior) },
	), nil
}

func (c *Coordinator) RenameColumn(ctx context.Context, columnID int64, title string) (*Mutation, error) {
	title, err := board.ValidateColumnTitle(title)
	if err != nil {
		return nil, err
	}
	prior, ok := c.store.ColumnByID(columnID)
	if !ok {
		return nil, ErrNotFound
	}
	optimistic := prior
	optimistic.Title = title
	c.store.UpsertColumn(optimistic)

	return c.launch(ctx, "rename column",
		func(ctx context.Context) error {
			return c.commands.RenameColumn(ctx, c.teamID, columnID, title)
		},
		func() bool { return c.store.SwapColumn(optimistic, prior) },
	), nil
}

// launch runs the remote command off the caller's goroutine and resolves the
// mutation. On success the optimistic state simply stands; the server echo
// that follows is absorbed by idempotent reconciliation.
func (c *Coordinator) launch(ctx context.Context, op string, send func(context.Context) error, rollback func() bool) *Mutation {
	m := &Mutation{ID: uuid.NewString(), done: make(chan struct{})}
	m.state.Store(int32(MutationApplied))

	go func() {
		defer close(m.done)
		if err := send(ctx); err != nil {
			reverted := rollback()
			m.state.Store(int32(MutationRolledBack))
			slog.Warn("optimistic mutation rolled back",
				"op", op, "mutation", m.ID, "reverted", reverted, "error", err)
			c.report(fmt.Errorf("%s: %w", op, err))
			return
		}
		m.state.Store(int32(MutationConfirmed))
	}()
	return m
}

func (c *Coordinator) report(err error) {
	if c.onError != nil {
		c.onError(err)
	}
}
