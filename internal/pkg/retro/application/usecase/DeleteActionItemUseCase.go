package usecase

import (
	"context"
	"errors"
	"fmt"

	cacheport "github.com/FordLabs/retroquest-sub000/internal/infrastructure/cache/port"
	repository "github.com/FordLabs/retroquest-sub000/internal/pkg/retro/persistence/repository/port"
)

type DeleteActionItemUseCase struct {
	Repo  repository.BoardRepository
	Cache cacheport.Cache
}

func NewDeleteActionItemUseCase(repo repository.BoardRepository, cache cacheport.Cache) *DeleteActionItemUseCase {
	return &DeleteActionItemUseCase{Repo: repo, Cache: cache}
}

func (uc *DeleteActionItemUseCase) Execute(ctx context.Context, teamID, itemID int64) error {
	if err := uc.Repo.DeleteActionItem(ctx, teamID, itemID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	invalidateSnapshot(ctx, uc.Cache, teamID)
	return nil
}
