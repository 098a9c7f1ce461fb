package controller

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/FordLabs/retroquest-sub000/board"
	"github.com/FordLabs/retroquest-sub000/internal/infrastructure/realtime"
	"github.com/FordLabs/retroquest-sub000/internal/pkg/retro/application/usecase"
	repository "github.com/FordLabs/retroquest-sub000/internal/pkg/retro/persistence/repository/port"
)

// pathID parses an int64 path parameter, replying 400 on garbage.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": name + " must be a positive integer"})
		return 0, false
	}
	return id, true
}

// replyError maps use case failures onto HTTP statuses.
func replyError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, usecase.ErrPersistence):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unexpected persistence error"})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}

// broadcastPut fans a whole-entity put envelope out on the team's channel for
// kind. Broadcast failures only mean a client will catch up on its next bulk
// fetch, so they are logged and swallowed.
func broadcastPut(hub *realtime.Hub, teamID int64, kind board.EntityKind, entity any) {
	payload, err := json.Marshal(entity)
	if err != nil {
		slog.Error("broadcast: encode put", "kind", kind, "error", err)
		return
	}
	send(hub, teamID, kind, board.Envelope{Type: board.ChangePut, Kind: kind, Payload: payload})
}

// broadcastDelete fans a delete envelope out on the team's channel for kind.
func broadcastDelete(hub *realtime.Hub, teamID int64, kind board.EntityKind, id int64) {
	payload, err := json.Marshal(board.Deletion{ID: id})
	if err != nil {
		slog.Error("broadcast: encode delete", "kind", kind, "error", err)
		return
	}
	send(hub, teamID, kind, board.Envelope{Type: board.ChangeDelete, Kind: kind, Payload: payload})
}

func send(hub *realtime.Hub, teamID int64, kind board.EntityKind, env board.Envelope) {
	raw, err := json.Marshal(env)
	if err != nil {
		slog.Error("broadcast: encode envelope", "kind", kind, "error", err)
		return
	}
	hub.Broadcast(teamID, kind, raw)
}

// broadcastEndRetro reaches every session on any of the team's channels.
func broadcastEndRetro(hub *realtime.Hub, teamID int64) {
	raw, err := json.Marshal(board.Envelope{Type: board.ChangeEndRetro})
	if err != nil {
		slog.Error("broadcast: encode end retro", "error", err)
		return
	}
	hub.BroadcastTeam(teamID, raw)
}
