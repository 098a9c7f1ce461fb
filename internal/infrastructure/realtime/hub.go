package realtime

import (
	"fmt"
	"sync"

	"github.com/FordLabs/retroquest-sub000/board"
)

// ChannelName builds the sync channel identifier for a (team, entity kind)
// pair. Envelopes broadcast on one channel reach clients in send order;
// nothing is promised between channels.
func ChannelName(teamID int64, kind board.EntityKind) string {
	return fmt.Sprintf("team:%d:%s", teamID, kind)
}

// Hub tracks websocket sessions and the sync channels each has joined, and
// fans change envelopes out to channel members. Unlike a chat room there is
// no per-user dedupe: every open tab is its own session.
type Hub struct {
	mu              sync.RWMutex
	sessions        map[string]*Connection            // session id -> connection
	channels        map[string]map[string]*Connection // channel -> session id -> connection
	sessionChannels map[string]map[string]struct{}    // session id -> joined channels
}

func NewHub() *Hub {
	return &Hub{
		sessions:        make(map[string]*Connection),
		channels:        make(map[string]map[string]*Connection),
		sessionChannels: make(map[string]map[string]struct{}),
	}
}

// Attach registers a session with the hub.
func (h *Hub) Attach(conn *Connection) {
	h.mu.Lock()
	h.sessions[conn.ID] = conn
	h.sessionChannels[conn.ID] = make(map[string]struct{})
	h.mu.Unlock()
}

// Detach removes a session and its channel memberships.
func (h *Hub) Detach(conn *Connection) {
	h.mu.Lock()
	h.detachLocked(conn.ID)
	h.mu.Unlock()
}

// Join subscribes the session to one entity kind's channel for its team.
func (h *Hub) Join(conn *Connection, kind board.EntityKind) {
	channel := ChannelName(conn.TeamID, kind)

	h.mu.Lock()
	if _, ok := h.sessions[conn.ID]; !ok {
		h.mu.Unlock()
		return
	}
	members := h.channels[channel]
	if members == nil {
		members = make(map[string]*Connection)
		h.channels[channel] = members
	}
	members[conn.ID] = conn
	h.sessionChannels[conn.ID][channel] = struct{}{}
	h.mu.Unlock()
}

// Leave unsubscribes the session from one entity kind's channel.
func (h *Hub) Leave(conn *Connection, kind board.EntityKind) {
	h.mu.Lock()
	h.leaveLocked(ChannelName(conn.TeamID, kind), conn.ID)
	h.mu.Unlock()
}

// Broadcast writes payload to every member of the team's channel for kind,
// the originating client included: the echo is what confirms an optimistic
// edit. Returns the number of sessions the payload was queued for.
func (h *Hub) Broadcast(teamID int64, kind board.EntityKind, payload []byte) int {
	channel := ChannelName(teamID, kind)

	h.mu.RLock()
	members := h.channels[channel]
	conns := make([]*Connection, 0, len(members))
	for _, conn := range members {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	delivered := 0
	for _, conn := range conns {
		if err := conn.Send(payload); err == nil {
			delivered++
		}
	}
	return delivered
}

// BroadcastTeam writes payload to every channel the team has, deduplicated
// per session. Used for board-wide events such as end-retro.
func (h *Hub) BroadcastTeam(teamID int64, payload []byte) int {
	h.mu.RLock()
	seen := make(map[string]*Connection)
	for _, kind := range board.SyncKinds() {
		for id, conn := range h.channels[ChannelName(teamID, kind)] {
			seen[id] = conn
		}
	}
	h.mu.RUnlock()

	delivered := 0
	for _, conn := range seen {
		if err := conn.Send(payload); err == nil {
			delivered++
		}
	}
	return delivered
}

// Close terminates all tracked sessions and clears hub state.
func (h *Hub) Close() {
	h.mu.Lock()
	sessions := make([]*Connection, 0, len(h.sessions))
	for _, conn := range h.sessions {
		sessions = append(sessions, conn)
	}
	h.sessions = make(map[string]*Connection)
	h.channels = make(map[string]map[string]*Connection)
	h.sessionChannels = make(map[string]map[string]struct{})
	h.mu.Unlock()

	for _, conn := range sessions {
		conn.Close(1001, "hub shutdown")
	}
}

func (h *Hub) detachLocked(sessionID string) {
	if _, ok := h.sessions[sessionID]; !ok {
		return
	}
	delete(h.sessions, sessionID)
	for channel := range h.sessionChannels[sessionID] {
		h.leaveLocked(channel, sessionID)
	}
	delete(h.sessionChannels, sessionID)
}

func (h *Hub) leaveLocked(channel, sessionID string) {
	members := h.channels[channel]
	if members == nil {
		return
	}
	delete(members, sessionID)
	if len(members) == 0 {
		delete(h.channels, channel)
	}
	if memberships := h.sessionChannels[sessionID]; memberships != nil {
		delete(memberships, channel)
	}
}
