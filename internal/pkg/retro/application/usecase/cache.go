package usecase

import (
	"context"
	"fmt"

	cacheport "github.com/FordLabs/retroquest-sub000/internal/infrastructure/cache/port"
)

// snapshotCacheKey names the cached bulk-fetch snapshot for a team.
func snapshotCacheKey(teamID int64) string {
	return fmt.Sprintf("retro:board:%d", teamID)
}

// invalidateSnapshot drops the team's cached snapshot after a mutation. The
// cache is optional and failures are non-fatal: the entry expires anyway.
func invalidateSnapshot(ctx context.Context, cache cacheport.Cache, teamID int64) {
	if cache == nil {
		return
	}
	_, _ = cache.Del(ctx, snapshotCacheKey(teamID))
}
