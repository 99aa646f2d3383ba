package ws

import (
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/stillpath/journey/internal/progress"
)

// ErrTooManyConnections is returned by AddClient when the connection limit
// is reached.
var ErrTooManyConnections = errors.New("too many websocket connections")

const writeWait = 10 * time.Second

type client struct {
	conn *websocket.Conn
	b    *Broadcaster
	send chan []byte
	// userID restricts the client to one player's messages. Empty follows
	// every player.
	userID string
}

func (c *client) writePump() {
	defer c.conn.Close()
	for msg := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			c.b.RemoveClient(c)
			return
		}
	}
}

func (c *client) close() {
	close(c.send)
}

func (c *client) follows(userID string) bool {
	return c.userID == "" || c.userID == userID
}

// Broadcaster fans progress changes out to WebSocket clients. Progress
// updates are coalesced per player and flushed at most once per throttle
// interval; level-ups and test results go out immediately.
type Broadcaster struct {
	mu       sync.RWMutex
	clients  map[*client]bool
	maxConns int
	onCount  func(int)

	latestMu sync.RWMutex
	latest   map[string]*progress.Progress

	throttle   time.Duration
	pending    map[string]*progress.Progress
	flushTimer *time.Timer
	flushMu    sync.Mutex
	stopped    bool
}

// NewBroadcaster creates a Broadcaster. maxConns of zero means unlimited.
func NewBroadcaster(throttle time.Duration, maxConns int) *Broadcaster {
	return &Broadcaster{
		clients:  make(map[*client]bool),
		maxConns: maxConns,
		latest:   make(map[string]*progress.Progress),
		throttle: throttle,
		pending:  make(map[string]*progress.Progress),
	}
}

// OnClientCount registers a callback receiving the client count after each
// change. Must be called before clients connect.
func (b *Broadcaster) OnClientCount(fn func(int)) {
	b.onCount = fn
}

// AddClient registers conn and queues a snapshot of the players it follows.
func (b *Broadcaster) AddClient(conn *websocket.Conn, userID string) (*client, error) {
	c := &client{
		conn:   conn,
		b:      b,
		send:   make(chan []byte, 64),
		userID: userID,
	}

	snapshot, err := json.Marshal(WSMessage{
		Type:    MsgSnapshot,
		Payload: SnapshotPayload{Players: b.Snapshot(userID)},
	})
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	if b.maxConns > 0 && len(b.clients) >= b.maxConns {
		b.mu.Unlock()
		return nil, ErrTooManyConnections
	}
	b.clients[c] = true
	c.send <- snapshot
	n := len(b.clients)
	b.mu.Unlock()
	b.reportCount(n)

	go c.writePump()
	return c, nil
}

// RemoveClient unregisters c and closes its send queue. Removing a client
// twice is a no-op.
func (b *Broadcaster) RemoveClient(c *client) {
	b.mu.Lock()
	_, ok := b.clients[c]
	if ok {
		delete(b.clients, c)
		c.close()
	}
	n := len(b.clients)
	b.mu.Unlock()
	if ok {
		b.reportCount(n)
	}
}

func (b *Broadcaster) reportCount(n int) {
	if b.onCount != nil {
		b.onCount(n)
	}
}

// Snapshot returns the latest progress for userID, or for every known
// player ordered by ID when userID is empty.
func (b *Broadcaster) Snapshot(userID string) []*progress.Progress {
	b.latestMu.RLock()
	defer b.latestMu.RUnlock()
	out := []*progress.Progress{}
	if userID != "" {
		if p, ok := b.latest[userID]; ok {
			out = append(out, p)
		}
		return out
	}
	for _, p := range b.latest {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out
}

// QueueProgress records p as the player's latest state and schedules a
// throttled flush. Only the newest state per player is sent.
func (b *Broadcaster) QueueProgress(p *progress.Progress) {
	b.latestMu.Lock()
	b.latest[p.UserID] = p
	b.latestMu.Unlock()

	b.flushMu.Lock()
	defer b.flushMu.Unlock()
	if b.stopped {
		return
	}
	b.pending[p.UserID] = p
	if b.flushTimer == nil {
		b.flushTimer = time.AfterFunc(b.throttle, b.flush)
	}
}

// Forget drops a removed player from snapshots.
func (b *Broadcaster) Forget(userID string) {
	b.latestMu.Lock()
	delete(b.latest, userID)
	b.latestMu.Unlock()
}

func (b *Broadcaster) QueueLevelUp(userID string, from, to int, realmName string) {
	b.broadcast(userID, WSMessage{
		Type:    MsgLevelUp,
		Payload: LevelUpPayload{UserID: userID, From: from, To: to, RealmName: realmName},
	})
}

func (b *Broadcaster) QueueTestResult(p TestResultPayload) {
	b.broadcast(p.UserID, WSMessage{Type: MsgTestResult, Payload: p})
}

func (b *Broadcaster) flush() {
	b.flushMu.Lock()
	pending := b.pending
	b.pending = make(map[string]*progress.Progress)
	b.flushTimer = nil
	b.flushMu.Unlock()

	ids := make([]string, 0, len(pending))
	for id := range pending {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		b.broadcast(id, WSMessage{Type: MsgProgress, Payload: ProgressPayload{Progress: pending[id]}})
	}
}

func (b *Broadcaster) broadcast(userID string, msg WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		logrus.Errorf("broadcast marshal error: %v", err)
		return
	}

	// Sends happen under the read lock so RemoveClient cannot close a
	// channel mid-send.
	var slow []*client
	b.mu.RLock()
	for c := range b.clients {
		if !c.follows(userID) {
			continue
		}
		select {
		case c.send <- data:
		default:
			slow = append(slow, c)
		}
	}
	b.mu.RUnlock()

	for _, c := range slow {
		logrus.Warn("ws client too slow, disconnecting")
		b.RemoveClient(c)
	}
}

func (b *Broadcaster) ClientCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}

// Stop cancels any pending flush and disconnects every client.
func (b *Broadcaster) Stop() {
	b.flushMu.Lock()
	b.stopped = true
	if b.flushTimer != nil {
		b.flushTimer.Stop()
		b.flushTimer = nil
	}
	b.flushMu.Unlock()

	b.mu.Lock()
	for c := range b.clients {
		delete(b.clients, c)
		c.close()
	}
	b.mu.Unlock()
	b.reportCount(0)
}
