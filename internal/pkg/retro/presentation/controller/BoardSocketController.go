package controller

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/FordLabs/retroquest-sub000/board"
	"github.com/FordLabs/retroquest-sub000/internal/infrastructure/realtime"
)

// BoardSocketController owns the websocket endpoint clients use for their
// sync channels. Inbound traffic is only channel management (join/leave);
// every board mutation goes through the REST surface and comes back out here
// as a broadcast envelope.
type BoardSocketController struct {
	hub *realtime.Hub
}

func NewBoardSocketController(hub *realtime.Hub) *BoardSocketController {
	return &BoardSocketController{hub: hub}
}

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins for now; plug a proper checker when auth is added.
		return true
	},
}

type inboundFrame struct {
	Type string           `json:"type"`
	Kind board.EntityKind `json:"kind,omitempty"`
}

type ackFrame struct {
	Type string           `json:"type"`
	Kind board.EntityKind `json:"kind,omitempty"`
}

type errorFrame struct {
	Type  string `json:"type"`
	Code  string `json:"code"`
	Error string `json:"error"`
}

const defaultReadTimeout = 60 * time.Second

// Handle upgrades the connection and processes join/leave frames until the
// client disconnects.
func (ctl *BoardSocketController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		teamID, ok := pathID(c, "teamId")
		if !ok {
			return
		}

		ws, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			// Upgrade already wrote the response; nothing more to do.
			return
		}

		conn := realtime.NewConnection(teamID, ws)
		ctl.hub.Attach(conn)
		conn.Start()
		defer func() {
			ctl.hub.Detach(conn)
			conn.Close(websocket.CloseNormalClosure, "session closed")
		}()

		ws.SetReadLimit(1 << 16)
		_ = ws.SetReadDeadline(time.Now().Add(defaultReadTimeout))
		ws.SetPongHandler(func(string) error {
			return ws.SetReadDeadline(time.Now().Add(defaultReadTimeout))
		})

		if payload, err := json.Marshal(ackFrame{Type: "connected"}); err == nil {
			_ = conn.Send(payload)
		}

		for {
			_, data, err := ws.ReadMessage()
			if err != nil {
				// normal closes and read errors both end the session
				return
			}
			_ = ws.SetReadDeadline(time.Now().Add(defaultReadTimeout))

			var frame inboundFrame
			if err := json.Unmarshal(data, &frame); err != nil {
				ctl.replyError(conn, "bad_request", "invalid payload")
				continue
			}

			switch frame.Type {
			case "join":
				ctl.handleJoin(conn, frame)
			case "leave":
				ctl.handleLeave(conn, frame)
			default:
				ctl.replyError(conn, "unsupported_type", "unknown frame type")
			}
		}
	}
}

func (ctl *BoardSocketController) handleJoin(conn *realtime.Connection, frame inboundFrame) {
	if !validKind(frame.Kind) {
		ctl.replyError(conn, "bad_request", "unknown entity kind")
		return
	}
	ctl.hub.Join(conn, frame.Kind)
	if payload, err := json.Marshal(ackFrame{Type: "joined", Kind: frame.Kind}); err == nil {
		_ = conn.Send(payload)
	}
}

func (ctl *BoardSocketController) handleLeave(conn *realtime.Connection, frame inboundFrame) {
	if !validKind(frame.Kind) {
		ctl.replyError(conn, "bad_request", "unknown entity kind")
		return
	}
	ctl.hub.Leave(conn, frame.Kind)
	if payload, err := json.Marshal(ackFrame{Type: "left", Kind: frame.Kind}); err == nil {
		_ = conn.Send(payload)
	}
}

func (ctl *BoardSocketController) replyError(conn *realtime.Connection, code, message string) {
	if payload, err := json.Marshal(errorFrame{Type: "error", Code: code, Error: message}); err == nil {
		_ = conn.Send(payload)
	}
}

func validKind(kind board.EntityKind) bool {
	for _, k := range board.SyncKinds() {
		if k == kind {
			return true
		}
	}
	return false
}
