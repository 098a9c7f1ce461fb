package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/FordLabs/retroquest-sub000/board"
	cacheport "github.com/FordLabs/retroquest-sub000/internal/infrastructure/cache/port"
	"github.com/FordLabs/retroquest-sub000/internal/infrastructure/realtime"
	"github.com/FordLabs/retroquest-sub000/internal/pkg/retro/application/usecase"
	repoAdapter "github.com/FordLabs/retroquest-sub000/internal/pkg/retro/persistence/repository/adapter"
)

// ColumnController handles the single column edit clients may make: renaming.
type ColumnController struct {
	hub      *realtime.Hub
	renameUC *usecase.RenameColumnUseCase
}

func NewColumnController(pool *pgxpool.Pool, cache cacheport.Cache, hub *realtime.Hub) *ColumnController {
	repo := repoAdapter.NewPgBoardRepository(pool)
	return &ColumnController{
		hub:      hub,
		renameUC: usecase.NewRenameColumnUseCase(repo, cache),
	}
}

func (ctl *ColumnController) Rename() gin.HandlerFunc {
	return func(c *gin.Context) {
		teamID, ok := pathID(c, "teamId")
		if !ok {
			return
		}
		columnID, ok := pathID(c, "columnId")
		if !ok {
			return
		}
		var req struct {
			Title string `json:"title"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
			return
		}

		col, err := ctl.renameUC.Execute(c.Request.Context(), teamID, columnID, req.Title)
		if err != nil {
			replyError(c, err)
			return
		}
		// column envelopes carry only the client-mutable surface
		broadcastPut(ctl.hub, teamID, board.KindColumn, board.ColumnRename{
			ID: col.ID, Topic: col.Topic, Title: col.Title,
		})
		c.JSON(http.StatusOK, col)
	}
}
