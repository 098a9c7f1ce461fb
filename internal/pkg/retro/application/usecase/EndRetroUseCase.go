package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/FordLabs/retroquest-sub000/board"
	cacheport "github.com/FordLabs/retroquest-sub000/internal/infrastructure/cache/port"
	queueport "github.com/FordLabs/retroquest-sub000/internal/infrastructure/queue/port"
	"github.com/FordLabs/retroquest-sub000/internal/pkg/retro/application/task"
	repository "github.com/FordLabs/retroquest-sub000/internal/pkg/retro/persistence/repository/port"
)

// EndRetroUseCase wipes the board for the next retro. The summary snapshot is
// taken before the wipe so the mail can still name what was discussed.
type EndRetroUseCase struct {
	Repo  repository.BoardRepository
	Cache cacheport.Cache
	Queue queueport.Client
}

func NewEndRetroUseCase(repo repository.BoardRepository, cache cacheport.Cache, queue queueport.Client) *EndRetroUseCase {
	return &EndRetroUseCase{Repo: repo, Cache: cache, Queue: queue}
}

func (uc *EndRetroUseCase) Execute(ctx context.Context, teamID int64) error {
	team, err := uc.Repo.GetTeam(ctx, teamID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	var summary *task.RetroSummaryPayload
	if uc.Queue != nil && len(team.ContactEmails) > 0 {
		summary, err = uc.buildSummary(ctx, team)
		if err != nil {
			// summary mail is best-effort; the wipe must still happen
			slog.Warn("retro summary snapshot failed", "team", teamID, "error", err)
			summary = nil
		}
	}

	if err := uc.Repo.EndRetro(ctx, teamID); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	invalidateSnapshot(ctx, uc.Cache, teamID)

	if summary != nil {
		payload, err := json.Marshal(summary)
		if err == nil {
			_, err = uc.Queue.Enqueue(ctx, queueport.Task{Type: task.RetroSummaryTaskType, Payload: payload},
				queueport.EnqueueOption{Queue: "retro", MaxRetry: 3})
		}
		if err != nil {
			slog.Warn("retro summary enqueue failed", "team", teamID, "error", err)
		}
	}
	return nil
}

func (uc *EndRetroUseCase) buildSummary(ctx context.Context, team board.Team) (*task.RetroSummaryPayload, error) {
	thoughts, err := uc.Repo.GetThoughts(ctx, team.ID)
	if err != nil {
		return nil, err
	}
	items, err := uc.Repo.GetActionItems(ctx, team.ID)
	if err != nil {
		return nil, err
	}
	return task.NewRetroSummaryPayload(team, thoughts, items), nil
}
