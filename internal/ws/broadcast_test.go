package ws

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/stillpath/journey/internal/progress"
)

// dialPair creates a test HTTP server that upgrades to WebSocket and returns
// the server-side and client-side connections. Both are closed on cleanup.
func dialPair(t *testing.T) (server, client *websocket.Conn) {
	t.Helper()

	connCh := make(chan *websocket.Conn, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		connCh <- c
	}))
	t.Cleanup(srv.Close)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	clientConn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { clientConn.Close() })

	select {
	case serverConn := <-connCh:
		return serverConn, clientConn
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for server-side WebSocket connection")
		return nil, nil
	}
}

type rawMessage struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func readMessage(t *testing.T, conn *websocket.Conn) rawMessage {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg rawMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	return msg
}

func expectSilence(t *testing.T, conn *websocket.Conn, d time.Duration) {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(d))
	var msg rawMessage
	if err := conn.ReadJSON(&msg); err == nil {
		t.Fatalf("unexpected %s message: %s", msg.Type, msg.Payload)
	}
}

func TestAddClient_SendsSnapshot(t *testing.T) {
	b := NewBroadcaster(time.Hour, 0)
	defer b.Stop()
	b.QueueProgress(&progress.Progress{UserID: "u2", Level: 4})
	b.QueueProgress(&progress.Progress{UserID: "u1", Level: 2})

	serverConn, clientConn := dialPair(t)
	if _, err := b.AddClient(serverConn, ""); err != nil {
		t.Fatalf("AddClient: %v", err)
	}

	msg := readMessage(t, clientConn)
	if msg.Type != MsgSnapshot {
		t.Fatalf("first message = %s, want snapshot", msg.Type)
	}
	var snap SnapshotPayload
	if err := json.Unmarshal(msg.Payload, &snap); err != nil {
		t.Fatal(err)
	}
	if len(snap.Players) != 2 || snap.Players[0].UserID != "u1" || snap.Players[1].UserID != "u2" {
		t.Errorf("snapshot players = %+v, want u1 then u2", snap.Players)
	}
}

func TestSnapshot_FilteredByUser(t *testing.T) {
	b := NewBroadcaster(time.Hour, 0)
	defer b.Stop()
	b.QueueProgress(&progress.Progress{UserID: "u1"})
	b.QueueProgress(&progress.Progress{UserID: "u2"})

	if got := b.Snapshot("u2"); len(got) != 1 || got[0].UserID != "u2" {
		t.Errorf("Snapshot(u2) = %+v", got)
	}
	if got := b.Snapshot("nobody"); len(got) != 0 {
		t.Errorf("Snapshot(nobody) = %+v, want empty", got)
	}

	b.Forget("u2")
	if got := b.Snapshot(""); len(got) != 1 {
		t.Errorf("Snapshot after Forget = %d players, want 1", len(got))
	}
}

func TestQueueProgress_CoalescesPerPlayer(t *testing.T) {
	b := NewBroadcaster(20*time.Millisecond, 0)
	defer b.Stop()

	serverConn, clientConn := dialPair(t)
	if _, err := b.AddClient(serverConn, ""); err != nil {
		t.Fatalf("AddClient: %v", err)
	}
	readMessage(t, clientConn) // snapshot

	b.QueueProgress(&progress.Progress{UserID: "u1", Level: 2})
	b.QueueProgress(&progress.Progress{UserID: "u1", Level: 3})

	msg := readMessage(t, clientConn)
	if msg.Type != MsgProgress {
		t.Fatalf("message = %s, want progress", msg.Type)
	}
	var payload ProgressPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		t.Fatal(err)
	}
	if payload.Progress.Level != 3 {
		t.Errorf("Level = %d, want the newest state 3", payload.Progress.Level)
	}
	expectSilence(t, clientConn, 100*time.Millisecond)
}

func TestBroadcast_RespectsUserFilter(t *testing.T) {
	b := NewBroadcaster(time.Hour, 0)
	defer b.Stop()

	serverConn, clientConn := dialPair(t)
	if _, err := b.AddClient(serverConn, "u1"); err != nil {
		t.Fatalf("AddClient: %v", err)
	}
	readMessage(t, clientConn) // snapshot

	b.QueueLevelUp("u2", 1, 2, "Dawn Meadow")
	b.QueueLevelUp("u1", 4, 5, "Dawn Meadow")

	msg := readMessage(t, clientConn)
	if msg.Type != MsgLevelUp {
		t.Fatalf("message = %s, want level_up", msg.Type)
	}
	var payload LevelUpPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		t.Fatal(err)
	}
	if payload.UserID != "u1" || payload.From != 4 || payload.To != 5 {
		t.Errorf("payload = %+v, want u1 4->5", payload)
	}
}

func TestAddClient_MaxConnections(t *testing.T) {
	const maxConns = 2
	b := NewBroadcaster(100*time.Millisecond, maxConns)
	defer b.Stop()

	var counts []int
	b.OnClientCount(func(n int) { counts = append(counts, n) })

	// Fill up to the limit.
	var clients []*client
	for i := 0; i < maxConns; i++ {
		conn, _ := dialPair(t)
		c, err := b.AddClient(conn, "")
		if err != nil {
			t.Fatalf("AddClient[%d]: unexpected error: %v", i, err)
		}
		clients = append(clients, c)
	}

	if got := b.ClientCount(); got != maxConns {
		t.Fatalf("expected %d clients, got %d", maxConns, got)
	}

	// Next connection should be rejected.
	conn, _ := dialPair(t)
	if _, err := b.AddClient(conn, ""); !errors.Is(err, ErrTooManyConnections) {
		t.Fatalf("expected ErrTooManyConnections, got %v", err)
	}
	if got := b.ClientCount(); got != maxConns {
		t.Fatalf("expected %d clients after rejection, got %d", maxConns, got)
	}

	// Remove one client, then adding should succeed again.
	b.RemoveClient(clients[0])
	conn2, _ := dialPair(t)
	if _, err := b.AddClient(conn2, ""); err != nil {
		t.Fatalf("AddClient after removal: unexpected error: %v", err)
	}

	want := []int{1, 2, 1, 2}
	if len(counts) != len(want) {
		t.Fatalf("client counts = %v, want %v", counts, want)
	}
	for i := range want {
		if counts[i] != want[i] {
			t.Fatalf("client counts = %v, want %v", counts, want)
		}
	}
}

func TestAddClient_ZeroMaxConnections_Unlimited(t *testing.T) {
	b := NewBroadcaster(100*time.Millisecond, 0)
	defer b.Stop()

	for i := 0; i < 10; i++ {
		conn, _ := dialPair(t)
		if _, err := b.AddClient(conn, ""); err != nil {
			t.Fatalf("AddClient[%d]: unexpected error with maxConns=0: %v", i, err)
		}
	}

	if got := b.ClientCount(); got != 10 {
		t.Fatalf("expected 10 clients, got %d", got)
	}
}

// TestWritePump_RemovesClientOnWriteError verifies that when writePump
// encounters a write error it calls RemoveClient so the dead client is
// removed from the broadcaster's client map.
func TestWritePump_RemovesClientOnWriteError(t *testing.T) {
	serverConn, _ := dialPair(t)

	b := NewBroadcaster(time.Hour, 0)
	defer b.Stop()

	// Build a client directly so we control when writePump starts.
	c := &client{
		conn: serverConn,
		b:    b,
		send: make(chan []byte, 64),
	}
	b.mu.Lock()
	b.clients[c] = true
	b.mu.Unlock()

	// Close the connection so any write attempt will immediately fail.
	serverConn.Close()
	c.send <- []byte(`{"type":"test"}`)
	go c.writePump()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if b.ClientCount() == 0 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}

	t.Fatalf("client not removed after write error; ClientCount = %d", b.ClientCount())
}

func TestStop_DisconnectsClientsAndDropsPending(t *testing.T) {
	b := NewBroadcaster(time.Hour, 0)
	serverConn, clientConn := dialPair(t)
	if _, err := b.AddClient(serverConn, ""); err != nil {
		t.Fatalf("AddClient: %v", err)
	}
	readMessage(t, clientConn)

	b.QueueProgress(&progress.Progress{UserID: "u1"})
	b.Stop()

	if got := b.ClientCount(); got != 0 {
		t.Errorf("ClientCount after Stop = %d, want 0", got)
	}
	clientConn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := clientConn.ReadMessage(); err == nil {
		t.Error("expected the connection to be closed after Stop")
	}
	// Queueing after Stop must not schedule a flush.
	b.QueueProgress(&progress.Progress{UserID: "u2"})
	b.flushMu.Lock()
	timer := b.flushTimer
	b.flushMu.Unlock()
	if timer != nil {
		t.Error("flush scheduled after Stop")
	}
}
