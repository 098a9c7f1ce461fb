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

// ActionItemController handles the action item command endpoints.
type ActionItemController struct {
	hub      *realtime.Hub
	createUC *usecase.CreateActionItemUseCase
	updateUC *usecase.UpdateActionItemUseCase
	deleteUC *usecase.DeleteActionItemUseCase
}

func NewActionItemController(pool *pgxpool.Pool, cache cacheport.Cache, hub *realtime.Hub) *ActionItemController {
	repo := repoAdapter.NewPgBoardRepository(pool)
	return &ActionItemController{
		hub:      hub,
		createUC: usecase.NewCreateActionItemUseCase(repo, cache),
		updateUC: usecase.NewUpdateActionItemUseCase(repo, cache),
		deleteUC: usecase.NewDeleteActionItemUseCase(repo, cache),
	}
}

func (ctl *ActionItemController) Create() gin.HandlerFunc {
	return func(c *gin.Context) {
		teamID, ok := pathID(c, "teamId")
		if !ok {
			return
		}
		var req struct {
			Task     string `json:"task"`
			Assignee string `json:"assignee"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
			return
		}

		a, err := ctl.createUC.Execute(c.Request.Context(), usecase.CreateActionItemInput{
			TeamID: teamID, Task: req.Task, Assignee: req.Assignee,
		})
		if err != nil {
			replyError(c, err)
			return
		}
		broadcastPut(ctl.hub, teamID, board.KindActionItem, a)
		c.JSON(http.StatusCreated, a)
	}
}

func (ctl *ActionItemController) Update() gin.HandlerFunc {
	return func(c *gin.Context) {
		teamID, ok := pathID(c, "teamId")
		if !ok {
			return
		}
		itemID, ok := pathID(c, "itemId")
		if !ok {
			return
		}
		var req struct {
			Task      string `json:"task"`
			Assignee  string `json:"assignee"`
			Completed bool   `json:"completed"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
			return
		}

		a, err := ctl.updateUC.Execute(c.Request.Context(), usecase.UpdateActionItemInput{
			TeamID: teamID, ItemID: itemID,
			Task: req.Task, Assignee: req.Assignee, Completed: req.Completed,
		})
		if err != nil {
			replyError(c, err)
			return
		}
		broadcastPut(ctl.hub, teamID, board.KindActionItem, a)
		c.JSON(http.StatusOK, a)
	}
}

func (ctl *ActionItemController) Delete() gin.HandlerFunc {
	return func(c *gin.Context) {
		teamID, ok := pathID(c, "teamId")
		if !ok {
			return
		}
		itemID, ok := pathID(c, "itemId")
		if !ok {
			return
		}

		if err := ctl.deleteUC.Execute(c.Request.Context(), teamID, itemID); err != nil {
			replyError(c, err)
			return
		}
		broadcastDelete(ctl.hub, teamID, board.KindActionItem, itemID)
		c.Status(http.StatusNoContent)
	}
}
