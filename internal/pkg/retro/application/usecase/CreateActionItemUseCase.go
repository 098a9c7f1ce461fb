package usecase

import (
	"context"
	"fmt"

	"github.com/FordLabs/retroquest-sub000/board"
	cacheport "github.com/FordLabs/retroquest-sub000/internal/infrastructure/cache/port"
	repository "github.com/FordLabs/retroquest-sub000/internal/pkg/retro/persistence/repository/port"
)

type CreateActionItemInput struct {
	TeamID   int64
	Task     string
	Assignee string
}

type CreateActionItemUseCase struct {
	Repo  repository.BoardRepository
	Cache cacheport.Cache
}

func NewCreateActionItemUseCase(repo repository.BoardRepository, cache cacheport.Cache) *CreateActionItemUseCase {
	return &CreateActionItemUseCase{Repo: repo, Cache: cache}
}

func (uc *CreateActionItemUseCase) Execute(ctx context.Context, in CreateActionItemInput) (board.ActionItem, error) {
	a, err := board.NewActionItem(in.TeamID, in.Task, in.Assignee)
	if err != nil {
		return board.ActionItem{}, err
	}
	id, err := uc.Repo.CreateActionItem(ctx, a)
	if err != nil {
		return board.ActionItem{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	a.ID = id
	invalidateSnapshot(ctx, uc.Cache, in.TeamID)
	return a, nil
}
