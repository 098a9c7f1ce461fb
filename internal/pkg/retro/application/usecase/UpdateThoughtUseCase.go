package usecase

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/FordLabs/retroquest-sub000/board"
	cacheport "github.com/FordLabs/retroquest-sub000/internal/infrastructure/cache/port"
	repository "github.com/FordLabs/retroquest-sub000/internal/pkg/retro/persistence/repository/port"
)

// UpdateThoughtInput names one edit to an existing thought. Exactly the set
// fields are applied; unset fields keep their stored value.
type UpdateThoughtInput struct {
	TeamID    int64
	ThoughtID int64

	Message   *string
	Discussed *bool
	Topic     *board.Topic
	Heart     bool // increment the heart count by one
}

// UpdateThoughtUseCase loads, mutates, and stores a thought, returning the
// full updated entity for broadcast.
type UpdateThoughtUseCase struct {
	Repo  repository.BoardRepository
	Cache cacheport.Cache
}

func NewUpdateThoughtUseCase(repo repository.BoardRepository, cache cacheport.Cache) *UpdateThoughtUseCase {
	return &UpdateThoughtUseCase{Repo: repo, Cache: cache}
}

func (uc *UpdateThoughtUseCase) Execute(ctx context.Context, in UpdateThoughtInput) (board.Thought, error) {
	t, err := uc.Repo.GetThought(ctx, in.TeamID, in.ThoughtID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return board.Thought{}, err
		}
		return board.Thought{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if in.Message != nil {
		msg := *in.Message
		if msg == "" {
			return board.Thought{}, board.ErrEmptyMessage
		}
		if utf8.RuneCountInString(msg) > board.MaxMessageLen {
			return board.Thought{}, board.ErrMessageTooLong
		}
		t.Message = msg
	}
	if in.Discussed != nil {
		t.Discussed = *in.Discussed
	}
	if in.Topic != nil {
		if !board.ValidThoughtTopic(*in.Topic) {
			return board.Thought{}, board.ErrInvalidTopic
		}
		t.Topic = *in.Topic
	}
	if in.Heart {
		t.Hearts++
	}

	if err := uc.Repo.UpdateThought(ctx, t); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return board.Thought{}, err
		}
		return board.Thought{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	invalidateSnapshot(ctx, uc.Cache, in.TeamID)
	return t, nil
}
