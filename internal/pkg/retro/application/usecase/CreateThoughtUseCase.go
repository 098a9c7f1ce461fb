package usecase

import (
	"context"
	"fmt"

	"github.com/FordLabs/retroquest-sub000/board"
	cacheport "github.com/FordLabs/retroquest-sub000/internal/infrastructure/cache/port"
	repository "github.com/FordLabs/retroquest-sub000/internal/pkg/retro/persistence/repository/port"
)

// CreateThoughtInput carries the data needed to submit a new thought.
type CreateThoughtInput struct {
	TeamID  int64
	Topic   board.Topic
	Message string
}

// CreateThoughtUseCase persists a new thought and returns it with the
// server-assigned id.
type CreateThoughtUseCase struct {
	Repo  repository.BoardRepository
	Cache cacheport.Cache
}

func NewCreateThoughtUseCase(repo repository.BoardRepository, cache cacheport.Cache) *CreateThoughtUseCase {
	return &CreateThoughtUseCase{Repo: repo, Cache: cache}
}

func (uc *CreateThoughtUseCase) Execute(ctx context.Context, in CreateThoughtInput) (board.Thought, error) {
	t, err := board.NewThought(in.TeamID, in.Topic, in.Message)
	if err != nil {
		return board.Thought{}, err
	}
	id, err := uc.Repo.CreateThought(ctx, t)
	if err != nil {
		return board.Thought{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	t.ID = id
	invalidateSnapshot(ctx, uc.Cache, in.TeamID)
	return t, nil
}
