package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/FordLabs/retroquest-sub000/board"
	cacheport "github.com/FordLabs/retroquest-sub000/internal/infrastructure/cache/port"
	repository "github.com/FordLabs/retroquest-sub000/internal/pkg/retro/persistence/repository/port"
)

// UpdateActionItemInput is a whole-entity edit: task, assignee, and completed
// flag replace the stored values together.
type UpdateActionItemInput struct {
	TeamID    int64
	ItemID    int64
	Task      string
	Assignee  string
	Completed bool
}

type UpdateActionItemUseCase struct {
	Repo  repository.BoardRepository
	Cache cacheport.Cache
}

func NewUpdateActionItemUseCase(repo repository.BoardRepository, cache cacheport.Cache) *UpdateActionItemUseCase {
	return &UpdateActionItemUseCase{Repo: repo, Cache: cache}
}

func (uc *UpdateActionItemUseCase) Execute(ctx context.Context, in UpdateActionItemInput) (board.ActionItem, error) {
	task := strings.TrimSpace(in.Task)
	if task == "" {
		return board.ActionItem{}, board.ErrEmptyTask
	}
	if utf8.RuneCountInString(task) > board.MaxTaskLen {
		return board.ActionItem{}, board.ErrTaskTooLong
	}

	a, err := uc.Repo.GetActionItem(ctx, in.TeamID, in.ItemID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return board.ActionItem{}, err
		}
		return board.ActionItem{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	a.Task = task
	a.Assignee = strings.TrimSpace(in.Assignee)
	a.Completed = in.Completed

	if err := uc.Repo.UpdateActionItem(ctx, a); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return board.ActionItem{}, err
		}
		return board.ActionItem{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	invalidateSnapshot(ctx, uc.Cache, in.TeamID)
	return a, nil
}
