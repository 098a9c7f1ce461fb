package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	cacheport "github.com/FordLabs/retroquest-sub000/internal/infrastructure/cache/port"
	queueport "github.com/FordLabs/retroquest-sub000/internal/infrastructure/queue/port"
	"github.com/FordLabs/retroquest-sub000/internal/infrastructure/realtime"
	"github.com/FordLabs/retroquest-sub000/internal/pkg/retro/application/usecase"
	repoAdapter "github.com/FordLabs/retroquest-sub000/internal/pkg/retro/persistence/repository/adapter"
)

// RetroController handles end-retro: the transactional wipe plus the
// board-wide broadcast that clears every connected client.
type RetroController struct {
	hub   *realtime.Hub
	endUC *usecase.EndRetroUseCase
}

func NewRetroController(pool *pgxpool.Pool, cache cacheport.Cache, queue queueport.Client, hub *realtime.Hub) *RetroController {
	repo := repoAdapter.NewPgBoardRepository(pool)
	return &RetroController{
		hub:   hub,
		endUC: usecase.NewEndRetroUseCase(repo, cache, queue),
	}
}

func (ctl *RetroController) End() gin.HandlerFunc {
	return func(c *gin.Context) {
		teamID, ok := pathID(c, "teamId")
		if !ok {
			return
		}
		if err := ctl.endUC.Execute(c.Request.Context(), teamID); err != nil {
			replyError(c, err)
			return
		}
		broadcastEndRetro(ctl.hub, teamID)
		c.Status(http.StatusNoContent)
	}
}
