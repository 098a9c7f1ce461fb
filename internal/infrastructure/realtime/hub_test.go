package realtime

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FordLabs/retroquest-sub000/board"
)

// sessions in these tests never start their write loop, so Send only queues
// and the hub logic can be exercised without sockets.
func testConn(teamID int64) *Connection {
	return NewConnection(teamID, nil)
}

func drain(c *Connection) [][]byte {
	var out [][]byte
	for {
		select {
		case msg := <-c.send:
			out = append(out, msg)
		default:
			return out
		}
	}
}

func TestChannelName(t *testing.T) {
	assert.Equal(t, "team:7:thought", ChannelName(7, board.KindThought))
	assert.Equal(t, "team:7:action_item", ChannelName(7, board.KindActionItem))
}

func TestBroadcast_ReachesOnlyChannelMembers(t *testing.T) {
	h := NewHub()
	joined := testConn(1)
	otherKind := testConn(1)
	otherTeam := testConn(2)
	for _, c := range []*Connection{joined, otherKind, otherTeam} {
		h.Attach(c)
	}
	h.Join(joined, board.KindThought)
	h.Join(otherKind, board.KindActionItem)
	h.Join(otherTeam, board.KindThought)

	delivered := h.Broadcast(1, board.KindThought, []byte("x"))

	assert.Equal(t, 1, delivered)
	assert.Len(t, drain(joined), 1)
	assert.Empty(t, drain(otherKind), "different kind, same team")
	assert.Empty(t, drain(otherTeam), "same kind, different team")
}

func TestBroadcast_IncludesEveryTabOfOneUser(t *testing.T) {
	h := NewHub()
	tabA := testConn(1)
	tabB := testConn(1)
	h.Attach(tabA)
	h.Attach(tabB)
	h.Join(tabA, board.KindThought)
	h.Join(tabB, board.KindThought)

	delivered := h.Broadcast(1, board.KindThought, []byte("x"))
	assert.Equal(t, 2, delivered, "no per-user dedupe, each session gets the echo")
}

func TestLeave_StopsDelivery(t *testing.T) {
	h := NewHub()
	c := testConn(1)
	h.Attach(c)
	h.Join(c, board.KindThought)
	h.Leave(c, board.KindThought)

	assert.Equal(t, 0, h.Broadcast(1, board.KindThought, []byte("x")))
	assert.Empty(t, drain(c))
}

func TestDetach_RemovesAllMemberships(t *testing.T) {
	h := NewHub()
	c := testConn(1)
	h.Attach(c)
	h.Join(c, board.KindThought)
	h.Join(c, board.KindColumn)

	h.Detach(c)

	assert.Equal(t, 0, h.Broadcast(1, board.KindThought, nil))
	assert.Equal(t, 0, h.Broadcast(1, board.KindColumn, nil))

	// channel maps are garbage-collected once empty
	h.mu.RLock()
	assert.Empty(t, h.channels)
	h.mu.RUnlock()
}

func TestJoin_UnattachedSessionIsIgnored(t *testing.T) {
	h := NewHub()
	c := testConn(1)
	h.Join(c, board.KindThought)
	assert.Equal(t, 0, h.Broadcast(1, board.KindThought, []byte("x")))
}

func TestBroadcastTeam_DedupesAcrossKinds(t *testing.T) {
	h := NewHub()
	c := testConn(1)
	h.Attach(c)
	for _, kind := range board.SyncKinds() {
		h.Join(c, kind)
	}
	bystander := testConn(3)
	h.Attach(bystander)
	h.Join(bystander, board.KindThought)

	delivered := h.BroadcastTeam(1, []byte("wipe"))

	assert.Equal(t, 1, delivered, "one session, one delivery, no matter how many channels")
	require.Len(t, drain(c), 1)
	assert.Empty(t, drain(bystander))
}

// newSocketDialer serves an echo-less websocket endpoint and returns a dial
// helper, so connection lifecycle tests run against real sockets.
func newSocketDialer(t *testing.T) func() *websocket.Conn {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer ws.Close()
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	return func() *websocket.Conn {
		ws, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
		require.NoError(t, err)
		return ws
	}
}

func TestSend_ConcurrentWithCloseDoesNotPanic(t *testing.T) {
	dial := newSocketDialer(t)
	for i := 0; i < 500; i++ {
		c := NewConnection(1, dial())
		c.Start()

		done := make(chan struct{})
		go func() {
			defer close(done)
			for j := 0; j < 32; j++ {
				_ = c.Send([]byte("x"))
			}
		}()
		c.Close(websocket.CloseNormalClosure, "bye")
		<-done

		assert.Error(t, c.Send([]byte("late")), "closed session rejects new sends")
	}
}
