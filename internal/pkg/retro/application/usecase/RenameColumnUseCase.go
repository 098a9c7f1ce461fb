package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/FordLabs/retroquest-sub000/board"
	cacheport "github.com/FordLabs/retroquest-sub000/internal/infrastructure/cache/port"
	repository "github.com/FordLabs/retroquest-sub000/internal/pkg/retro/persistence/repository/port"
)

// RenameColumnUseCase applies the one column edit clients are allowed: the
// title. Topic and ownership are fixed server-side.
type RenameColumnUseCase struct {
	Repo  repository.BoardRepository
	Cache cacheport.Cache
}

func NewRenameColumnUseCase(repo repository.BoardRepository, cache cacheport.Cache) *RenameColumnUseCase {
	return &RenameColumnUseCase{Repo: repo, Cache: cache}
}

func (uc *RenameColumnUseCase) Execute(ctx context.Context, teamID, columnID int64, title string) (board.Column, error) {
	title, err := board.ValidateColumnTitle(title)
	if err != nil {
		return board.Column{}, err
	}
	if err := uc.Repo.UpdateColumnTitle(ctx, teamID, columnID, title); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return board.Column{}, err
		}
		return board.Column{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	c, err := uc.Repo.GetColumn(ctx, teamID, columnID)
	if err != nil {
		return board.Column{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	invalidateSnapshot(ctx, uc.Cache, teamID)
	return c, nil
}
