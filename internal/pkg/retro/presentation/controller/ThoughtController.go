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

// ThoughtController handles the thought command endpoints. Every successful
// mutation is broadcast on the team's thought channel; the HTTP reply is the
// caller's ack, the envelope is everyone's truth.
type ThoughtController struct {
	hub      *realtime.Hub
	createUC *usecase.CreateThoughtUseCase
	updateUC *usecase.UpdateThoughtUseCase
	deleteUC *usecase.DeleteThoughtUseCase
}

func NewThoughtController(pool *pgxpool.Pool, cache cacheport.Cache, hub *realtime.Hub) *ThoughtController {
	repo := repoAdapter.NewPgBoardRepository(pool)
	return &ThoughtController{
		hub:      hub,
		createUC: usecase.NewCreateThoughtUseCase(repo, cache),
		updateUC: usecase.NewUpdateThoughtUseCase(repo, cache),
		deleteUC: usecase.NewDeleteThoughtUseCase(repo, cache),
	}
}

func (ctl *ThoughtController) Create() gin.HandlerFunc {
	return func(c *gin.Context) {
		teamID, ok := pathID(c, "teamId")
		if !ok {
			return
		}
		var req struct {
			Topic   board.Topic `json:"topic"`
			Message string      `json:"message"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
			return
		}

		t, err := ctl.createUC.Execute(c.Request.Context(), usecase.CreateThoughtInput{
			TeamID: teamID, Topic: req.Topic, Message: req.Message,
		})
		if err != nil {
			replyError(c, err)
			return
		}
		broadcastPut(ctl.hub, teamID, board.KindThought, t)
		c.JSON(http.StatusCreated, t)
	}
}

// EditMessage handles PUT /thought/:thoughtId/message.
func (ctl *ThoughtController) EditMessage() gin.HandlerFunc {
	return ctl.update(func(c *gin.Context, in *usecase.UpdateThoughtInput) bool {
		var req struct {
			Message string `json:"message"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
			return false
		}
		in.Message = &req.Message
		return true
	})
}

// Heart handles PUT /thought/:thoughtId/heart. No body: the increment is the
// message.
func (ctl *ThoughtController) Heart() gin.HandlerFunc {
	return ctl.update(func(c *gin.Context, in *usecase.UpdateThoughtInput) bool {
		in.Heart = true
		return true
	})
}

// SetDiscussed handles PUT /thought/:thoughtId/discussed.
func (ctl *ThoughtController) SetDiscussed() gin.HandlerFunc {
	return ctl.update(func(c *gin.Context, in *usecase.UpdateThoughtInput) bool {
		var req struct {
			Discussed bool `json:"discussed"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
			return false
		}
		in.Discussed = &req.Discussed
		return true
	})
}

// Move handles PUT /thought/:thoughtId/topic, the server half of a
// drag-and-drop column move.
func (ctl *ThoughtController) Move() gin.HandlerFunc {
	return ctl.update(func(c *gin.Context, in *usecase.UpdateThoughtInput) bool {
		var req struct {
			Topic board.Topic `json:"topic"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
			return false
		}
		in.Topic = &req.Topic
		return true
	})
}

func (ctl *ThoughtController) update(bind func(*gin.Context, *usecase.UpdateThoughtInput) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		teamID, ok := pathID(c, "teamId")
		if !ok {
			return
		}
		thoughtID, ok := pathID(c, "thoughtId")
		if !ok {
			return
		}

		in := usecase.UpdateThoughtInput{TeamID: teamID, ThoughtID: thoughtID}
		if !bind(c, &in) {
			return
		}

		t, err := ctl.updateUC.Execute(c.Request.Context(), in)
		if err != nil {
			replyError(c, err)
			return
		}
		broadcastPut(ctl.hub, teamID, board.KindThought, t)
		c.JSON(http.StatusOK, t)
	}
}

func (ctl *ThoughtController) Delete() gin.HandlerFunc {
	return func(c *gin.Context) {
		teamID, ok := pathID(c, "teamId")
		if !ok {
			return
		}
		thoughtID, ok := pathID(c, "thoughtId")
		if !ok {
			return
		}

		if err := ctl.deleteUC.Execute(c.Request.Context(), teamID, thoughtID); err != nil {
			replyError(c, err)
			return
		}
		broadcastDelete(ctl.hub, teamID, board.KindThought, thoughtID)
		c.Status(http.StatusNoContent)
	}
}
