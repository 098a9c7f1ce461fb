package realtime

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FordLabs/retroquest-sub000/board"
)

var testUpgrader = websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}

// syncServer is a minimal board-service stand-in: it records join frames and
// lets each test script what the connection does next.
type syncServer struct {
	t       *testing.T
	session func(conn *websocket.Conn, joined []board.EntityKind)

	mu    sync.Mutex
	dials int
}

func (srv *syncServer) Dials() int {
	srv.mu.Lock()
	defer srv.mu.Unlock()
	return srv.dials
}

func (srv *syncServer) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		srv.mu.Lock()
		srv.dials++
		srv.mu.Unlock()

		var joined []board.EntityKind
		for len(joined) < len(board.SyncKinds()) {
			var f frame
			if err := conn.ReadJSON(&f); err != nil {
				_ = conn.Close()
				return
			}
			if f.Type == "join" {
				joined = append(joined, f.Kind)
				_ = conn.WriteJSON(frame{Type: "joined", Kind: f.Kind})
			}
		}
		srv.session(conn, joined)
	}
}

func wsURL(ts *httptest.Server) string {
	return "ws" + strings.TrimPrefix(ts.URL, "http")
}

func envelopeJSON(t *testing.T, env board.Envelope) []byte {
	t.Helper()
	raw, err := json.Marshal(env)
	require.NoError(t, err)
	return raw
}

func TestSubscribe_JoinsEveryKindAndDeliversInOrder(t *testing.T) {
	var joinedMu sync.Mutex
	var joined []board.EntityKind

	srv := &syncServer{t: t, session: func(conn *websocket.Conn, kinds []board.EntityKind) {
		joinedMu.Lock()
		joined = kinds
		joinedMu.Unlock()

		for i := 1; i <= 3; i++ {
			payload, _ := json.Marshal(board.Thought{ID: int64(i), Topic: board.TopicHappy})
			_ = conn.WriteMessage(websocket.TextMessage, envelopeJSON(t, board.Envelope{
				Type: board.ChangePut, Kind: board.KindThought, Payload: payload,
			}))
		}
	}}
	ts := httptest.NewServer(srv.handler())
	defer ts.Close()

	received := make(chan board.Envelope, 8)
	sub, err := Subscribe(Config{
		URL:     wsURL(ts),
		Kinds:   board.SyncKinds(),
		Handler: func(env board.Envelope) { received <- env },
	})
	require.NoError(t, err)
	defer sub.Close()

	var got []int64
	for len(got) < 3 {
		select {
		case env := <-received:
			assert.Equal(t, board.ChangePut, env.Type)
			assert.Equal(t, board.KindThought, env.Kind)
			var th board.Thought
			require.NoError(t, json.Unmarshal(env.Payload, &th))
			got = append(got, th.ID)
		case <-time.After(3 * time.Second):
			t.Fatal("timed out waiting for envelopes")
		}
	}
	assert.Equal(t, []int64{1, 2, 3}, got, "envelopes for one kind arrive in server order")

	joinedMu.Lock()
	assert.ElementsMatch(t, board.SyncKinds(), joined)
	joinedMu.Unlock()
}

func TestSubscribe_IgnoresAcksAndReportsServerErrors(t *testing.T) {
	srv := &syncServer{t: t, session: func(conn *websocket.Conn, _ []board.EntityKind) {
		_ = conn.WriteJSON(frame{Type: "connected"})
		_ = conn.WriteJSON(frame{Type: "error", Code: "bad_request", Error: "unknown entity kind"})
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{broken`))
		payload, _ := json.Marshal(board.Deletion{ID: 9})
		_ = conn.WriteMessage(websocket.TextMessage, envelopeJSON(t, board.Envelope{
			Type: board.ChangeDelete, Kind: board.KindThought, Payload: payload,
		}))
	}}
	ts := httptest.NewServer(srv.handler())
	defer ts.Close()

	received := make(chan board.Envelope, 8)
	errored := make(chan error, 8)
	sub, err := Subscribe(Config{
		URL:     wsURL(ts),
		Kinds:   board.SyncKinds(),
		Handler: func(env board.Envelope) { received <- env },
		OnError: func(err error) { errored <- err },
	})
	require.NoError(t, err)
	defer sub.Close()

	select {
	case env := <-received:
		assert.Equal(t, board.ChangeDelete, env.Type, "only real changes reach the handler")
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for the delete envelope")
	}

	// both the server error frame and the malformed frame were reported
	reported := 0
	for reported < 2 {
		select {
		case <-errored:
			reported++
		case <-time.After(3 * time.Second):
			t.Fatalf("expected 2 reported errors, got %d", reported)
		}
	}
}

func TestSubscribe_ReconnectsAndSignalsResync(t *testing.T) {
	srv := &syncServer{t: t}
	srv.session = func(conn *websocket.Conn, _ []board.EntityKind) {
		if srv.Dials() == 1 {
			// first session dies immediately to force a redial
			_ = conn.Close()
			return
		}
		payload, _ := json.Marshal(board.Thought{ID: 42, Topic: board.TopicHappy})
		_ = conn.WriteMessage(websocket.TextMessage, envelopeJSON(t, board.Envelope{
			Type: board.ChangePut, Kind: board.KindThought, Payload: payload,
		}))
	}
	ts := httptest.NewServer(srv.handler())
	defer ts.Close()

	received := make(chan board.Envelope, 8)
	reconnected := make(chan struct{}, 1)
	sub, err := Subscribe(Config{
		URL:         wsURL(ts),
		Kinds:       board.SyncKinds(),
		Handler:     func(env board.Envelope) { received <- env },
		OnReconnect: func() { reconnected <- struct{}{} },
	})
	require.NoError(t, err)
	defer sub.Close()

	select {
	case <-reconnected:
	case <-time.After(10 * time.Second):
		t.Fatal("session was not re-established")
	}

	select {
	case env := <-received:
		assert.Equal(t, board.ChangePut, env.Type, "envelopes flow again on the new session")
	case <-time.After(3 * time.Second):
		t.Fatal("no envelope after reconnect")
	}
	assert.GreaterOrEqual(t, srv.Dials(), 2)
}

func TestClose_StopsRedialing(t *testing.T) {
	srv := &syncServer{t: t, session: func(conn *websocket.Conn, _ []board.EntityKind) {
		// hold the session open until the client closes it
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}}
	ts := httptest.NewServer(srv.handler())
	defer ts.Close()

	sub, err := Subscribe(Config{
		URL:   wsURL(ts),
		Kinds: board.SyncKinds(),
		Handler: func(board.Envelope) {
			t.Error("no envelope expected")
		},
	})
	require.NoError(t, err)

	sub.Close()
	sub.Close() // idempotent

	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, 1, srv.Dials(), "a closed subscription must not redial")
}

func TestClose_DuringRedialTearsDownFreshSession(t *testing.T) {
	sessionDone := make(chan struct{})
	srv := &syncServer{t: t}
	srv.session = func(conn *websocket.Conn, _ []board.EntityKind) {
		if srv.Dials() == 1 {
			// first session dies immediately to force a redial
			_ = conn.Close()
			return
		}
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				close(sessionDone)
				return
			}
		}
	}

	// stall the second upgrade so Close lands while the dial is in flight
	redialing := make(chan struct{}, 1)
	var hits atomic.Int32
	base := srv.handler()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 2 {
			redialing <- struct{}{}
			time.Sleep(300 * time.Millisecond)
		}
		base(w, r)
	}))
	defer ts.Close()

	reconnected := make(chan struct{}, 1)
	sub, err := Subscribe(Config{
		URL:         wsURL(ts),
		Kinds:       board.SyncKinds(),
		Handler:     func(board.Envelope) {},
		OnReconnect: func() { reconnected <- struct{}{} },
	})
	require.NoError(t, err)

	select {
	case <-redialing:
	case <-time.After(10 * time.Second):
		t.Fatal("redial never reached the server")
	}
	sub.Close()

	select {
	case <-sessionDone:
	case <-time.After(5 * time.Second):
		t.Fatal("fresh session left open after Close")
	}
	select {
	case <-reconnected:
		t.Fatal("resync signaled after Close")
	case <-time.After(500 * time.Millisecond):
	}
}
