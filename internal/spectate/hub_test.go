package spectate

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vovakirdan/mazehack/internal/events"
)

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { ws.Close() })
	return ws
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHealthz(t *testing.T) {
	h := NewHub(nil)
	srv := httptest.NewServer(h.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || string(body) != "ok" {
		t.Errorf("healthz = %d %q", resp.StatusCode, body)
	}
}

func TestBroadcastReachesSpectators(t *testing.T) {
	h := NewHub(nil)
	srv := httptest.NewServer(h.Handler())
	defer srv.Close()
	defer h.Close()

	a := dial(t, srv)
	b := dial(t, srv)
	waitFor(t, func() bool { return h.Count() == 2 })

	ev := events.Event{Type: events.TypeLevelAdvanced, Level: 2, LevelID: "lvl02", Ticks: 120}
	if err := h.Notify(context.Background(), ev); err != nil {
		t.Fatalf("Notify: %v", err)
	}

	for i, ws := range []*websocket.Conn{a, b} {
		ws.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, msg, err := ws.ReadMessage()
		if err != nil {
			t.Fatalf("client %d read: %v", i, err)
		}
		var got events.Event
		if err := json.Unmarshal(msg, &got); err != nil {
			t.Fatalf("client %d decode: %v", i, err)
		}
		if got.Type != ev.Type || got.LevelID != ev.LevelID || got.Ticks != ev.Ticks {
			t.Errorf("client %d got %+v", i, got)
		}
	}
}

func TestDisconnectUnregisters(t *testing.T) {
	h := NewHub(nil)
	srv := httptest.NewServer(h.Handler())
	defer srv.Close()

	ws := dial(t, srv)
	waitFor(t, func() bool { return h.Count() == 1 })

	ws.Close()
	waitFor(t, func() bool { return h.Count() == 0 })
}

func TestSlowSpectatorDropped(t *testing.T) {
	h := NewHub(nil)
	c := &client{id: "slow", send: make(chan []byte, 1)}
	h.clients[c.id] = c

	h.Broadcast([]byte("one"))
	if h.Count() != 1 {
		t.Fatal("first message should fit in the queue")
	}
	h.Broadcast([]byte("two"))
	if h.Count() != 0 {
		t.Error("a spectator with a full queue should be dropped")
	}

	if _, ok := <-c.send; !ok {
		t.Fatal("queued message should still be readable")
	}
	if _, ok := <-c.send; ok {
		t.Error("send channel should be closed after drop")
	}
}

func TestListenAndServeStopsOnCancel(t *testing.T) {
	h := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- h.ListenAndServe(ctx, "127.0.0.1:0") }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("ListenAndServe() = %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop")
	}
}
