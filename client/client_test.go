package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FordLabs/retroquest-sub000/board"
	"github.com/FordLabs/retroquest-sub000/client/api"
)

// boardService fakes the server side of a session: bulk fetch over REST plus
// a websocket the test pushes envelopes through.
type boardService struct {
	t        *testing.T
	snapshot board.Snapshot
	upgrader websocket.Upgrader

	ready chan *websocket.Conn
}

func newBoardService(t *testing.T, snap board.Snapshot) *boardService {
	return &boardService{
		t:        t,
		snapshot: snap,
		upgrader: websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
		ready:    make(chan *websocket.Conn, 1),
	}
}

func (svc *boardService) handler() http.Handler {
	mux := http.NewServeMux()
	// commands succeed silently; their effects arrive as pushed envelopes
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/api/v1/team/7/board", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(svc.snapshot)
	})
	mux.HandleFunc("/api/v1/team/7/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := svc.upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		joins := 0
		for joins < len(board.SyncKinds()) {
			var f struct {
				Type string           `json:"type"`
				Kind board.EntityKind `json:"kind"`
			}
			if err := conn.ReadJSON(&f); err != nil {
				return
			}
			if f.Type == "join" {
				joins++
			}
		}
		svc.ready <- conn
	})
	return mux
}

func (svc *boardService) push(conn *websocket.Conn, env board.Envelope) {
	raw, err := json.Marshal(env)
	require.NoError(svc.t, err)
	require.NoError(svc.t, conn.WriteMessage(websocket.TextMessage, raw))
}

func startBoard(t *testing.T, svc *boardService) (*Board, *websocket.Conn) {
	t.Helper()
	ts := httptest.NewServer(svc.handler())
	t.Cleanup(ts.Close)

	b, err := New(Config{
		TeamID:    7,
		API:       api.New(ts.URL),
		SocketURL: "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/v1/team/7/ws",
	})
	require.NoError(t, err)
	require.NoError(t, b.Start(context.Background()))
	t.Cleanup(b.Stop)

	select {
	case conn := <-svc.ready:
		return b, conn
	case <-time.After(3 * time.Second):
		t.Fatal("client never joined its channels")
		return nil, nil
	}
}

func waitForRevision(t *testing.T, b *Board, min uint64) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if b.Store().Revision() >= min {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("store revision stuck below %d", min)
}

func testSnapshot() board.Snapshot {
	return board.Snapshot{
		Team: board.Team{ID: 7, Name: "alpha"},
		Columns: []board.Column{
			{ID: 1, TeamID: 7, Topic: board.TopicHappy, Title: "Happy"},
			{ID: 2, TeamID: 7, Topic: board.TopicConfused, Title: "Confused"},
			{ID: 3, TeamID: 7, Topic: board.TopicUnhappy, Title: "Sad"},
		},
		Thoughts: []board.Thought{
			{ID: 10, TeamID: 7, Topic: board.TopicHappy, Message: "shipped", Hearts: 2},
		},
		ActionItems: []board.ActionItem{
			{ID: 20, TeamID: 7, Task: "fix ci", Completed: true},
			{ID: 21, TeamID: 7, Task: "write docs"},
		},
	}
}

func TestStart_SeedsStoreFromBulkFetch(t *testing.T) {
	b, _ := startBoard(t, newBoardService(t, testSnapshot()))

	assert.False(t, b.Loading())

	team, ok := b.Store().Team()
	require.True(t, ok)
	assert.Equal(t, "alpha", team.Name)
	assert.Len(t, b.Store().Columns(), 3)
	assert.Len(t, b.Store().Thoughts(), 1)
	assert.Len(t, b.Store().ActionItems(), 2)

	assert.Equal(t, 1, b.Views().ActiveCountByTopic(board.TopicHappy))
	assert.Len(t, b.Views().CompletedActionItems(), 1)
}

func TestPushedEnvelopesReachTheStore(t *testing.T) {
	svc := newBoardService(t, testSnapshot())
	b, conn := startBoard(t, svc)
	rev := b.Store().Revision()

	// the echo of a heart command on an existing thought
	payload, _ := json.Marshal(board.Thought{ID: 10, TeamID: 7, Topic: board.TopicHappy, Message: "shipped", Hearts: 3})
	svc.push(conn, board.Envelope{Type: board.ChangePut, Kind: board.KindThought, Payload: payload})
	waitForRevision(t, b, rev+1)

	th, ok := b.Store().ThoughtByID(10)
	require.True(t, ok)
	assert.Equal(t, 3, th.Hearts)

	// a teammate's delete
	del, _ := json.Marshal(board.Deletion{ID: 10})
	svc.push(conn, board.Envelope{Type: board.ChangeDelete, Kind: board.KindThought, Payload: del})
	waitForRevision(t, b, rev+2)

	_, ok = b.Store().ThoughtByID(10)
	assert.False(t, ok)
}

func TestEndRetroBroadcastClearsEveryClient(t *testing.T) {
	svc := newBoardService(t, testSnapshot())
	b, conn := startBoard(t, svc)
	rev := b.Store().Revision()

	svc.push(conn, board.Envelope{Type: board.ChangeEndRetro})
	waitForRevision(t, b, rev+1)

	assert.Empty(t, b.Store().Thoughts())
	items := b.Store().ActionItems()
	require.Len(t, items, 1)
	assert.Equal(t, "write docs", items[0].Task, "active action items carry over")
}

func TestCreateThought_ValidatesLocallyWithoutInsert(t *testing.T) {
	b, _ := startBoard(t, newBoardService(t, testSnapshot()))

	err := b.CreateThought(context.Background(), board.TopicAction, "nope")
	assert.ErrorIs(t, err, board.ErrInvalidTopic)

	require.NoError(t, b.CreateThought(context.Background(), board.TopicHappy, "new idea"))
	assert.Len(t, b.Store().Thoughts(), 1,
		"creation waits for the server echo; no speculative local insert")
}

func TestNew_RequiresTeamAndAPI(t *testing.T) {
	_, err := New(Config{API: api.New("http://localhost")})
	assert.Error(t, err)

	_, err = New(Config{TeamID: 7})
	assert.Error(t, err)
}
