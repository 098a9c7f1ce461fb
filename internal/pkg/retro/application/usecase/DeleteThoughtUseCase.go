package usecase

import (
	"context"
	"errors"
	"fmt"

	cacheport "github.com/FordLabs/retroquest-sub000/internal/infrastructure/cache/port"
	repository "github.com/FordLabs/retroquest-sub000/internal/pkg/retro/persistence/repository/port"
)

type DeleteThoughtUseCase struct {
	Repo  repository.BoardRepository
	Cache cacheport.Cache
}

func NewDeleteThoughtUseCase(repo repository.BoardRepository, cache cacheport.Cache) *DeleteThoughtUseCase {
	return &DeleteThoughtUseCase{Repo: repo, Cache: cache}
}

func (uc *DeleteThoughtUseCase) Execute(ctx context.Context, teamID, thoughtID int64) error {
	if err := uc.Repo.DeleteThought(ctx, teamID, thoughtID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	invalidateSnapshot(ctx, uc.Cache, teamID)
	return nil
}
