package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/FordLabs/retroquest-sub000/board"
	cacheport "github.com/FordLabs/retroquest-sub000/internal/infrastructure/cache/port"
	repository "github.com/FordLabs/retroquest-sub000/internal/pkg/retro/persistence/repository/port"
)

// snapshotTTL bounds staleness if an invalidation is lost; mutating use cases
// drop the key eagerly.
const snapshotTTL = 30 * time.Second

// GetBoardUseCase assembles the bulk-fetch snapshot that seeds a client
// store, with a short-lived cache in front of the four queries.
type GetBoardUseCase struct {
	Repo  repository.BoardRepository
	Cache cacheport.Cache
}

func NewGetBoardUseCase(repo repository.BoardRepository, cache cacheport.Cache) *GetBoardUseCase {
	return &GetBoardUseCase{Repo: repo, Cache: cache}
}

func (uc *GetBoardUseCase) Execute(ctx context.Context, teamID int64) (board.Snapshot, error) {
	if uc.Cache != nil {
		raw, err := uc.Cache.Get(ctx, snapshotCacheKey(teamID))
		if err == nil {
			var snap board.Snapshot
			if err := json.Unmarshal(raw, &snap); err == nil {
				return snap, nil
			}
			// stale or corrupt entry: fall through to the repository
		} else if !errors.Is(err, cacheport.ErrMiss) {
			slog.Warn("board snapshot cache read failed", "team", teamID, "error", err)
		}
	}

	team, err := uc.Repo.GetTeam(ctx, teamID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return board.Snapshot{}, err
		}
		return board.Snapshot{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	columns, err := uc.Repo.GetColumns(ctx, teamID)
	if err != nil {
		return board.Snapshot{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	thoughts, err := uc.Repo.GetThoughts(ctx, teamID)
	if err != nil {
		return board.Snapshot{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	items, err := uc.Repo.GetActionItems(ctx, teamID)
	if err != nil {
		return board.Snapshot{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	snap := board.Snapshot{Team: team, Columns: columns, Thoughts: thoughts, ActionItems: items}

	if uc.Cache != nil {
		if raw, err := json.Marshal(snap); err == nil {
			if err := uc.Cache.Set(ctx, snapshotCacheKey(teamID), raw, snapshotTTL); err != nil {
				slog.Warn("board snapshot cache write failed", "team", teamID, "error", err)
			}
		}
	}
	return snap, nil
}
