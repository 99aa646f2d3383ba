package client

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gorilla/websocket"
)

const (
	reconnectBaseDelay = 1 * time.Second
	reconnectMaxDelay  = 30 * time.Second
	writeTimeout       = 10 * time.Second
	pongTimeout        = 60 * time.Second
	pingInterval       = 30 * time.Second
)

// WSClient manages the WebSocket connection to the journey server.
type WSClient struct {
	url   string
	token string

	mu      sync.Mutex
	writeMu sync.Mutex // serialises conn writes
	conn    *websocket.Conn
	pingCtx context.CancelFunc
}

// NewWSClient creates a client for the given WebSocket URL. A non-empty
// userID restricts the stream to that player.
func NewWSClient(rawURL, token, userID string) *WSClient {
	return &WSClient{url: withUser(rawURL, userID), token: token}
}

func withUser(rawURL, userID string) string {
	if userID == "" {
		return rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := u.Query()
	q.Set("user", userID)
	u.RawQuery = q.Encode()
	return u.String()
}

// --- Bubble Tea messages ---

// WSConnectedMsg is sent when the WebSocket connects.
type WSConnectedMsg struct{}

// WSDisconnectedMsg is sent when the connection drops.
type WSDisconnectedMsg struct{ Err error }

// WSSnapshotMsg delivers the players known at connect time.
type WSSnapshotMsg struct{ Payload SnapshotPayload }

// WSProgressMsg delivers a player's updated progress.
type WSProgressMsg struct{ Payload ProgressPayload }

// WSLevelUpMsg is sent when a player gains levels.
type WSLevelUpMsg struct{ Payload LevelUpPayload }

// WSTestResultMsg is sent when a mastery test is graded.
type WSTestResultMsg struct{ Payload TestResultPayload }

// WSErrorMsg wraps a server-side error.
type WSErrorMsg struct{ Payload ErrorPayload }

// Listen returns a Bubble Tea command that connects, retrying with
// exponential backoff until it succeeds or ctx is cancelled.
func (c *WSClient) Listen(ctx context.Context) tea.Cmd {
	return func() tea.Msg {
		delay := reconnectBaseDelay
		for {
			select {
			case <-ctx.Done():
				return nil
			default:
			}

			header := http.Header{}
			if c.token != "" {
				header.Set("Authorization", "Bearer "+c.token)
			}
			conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.url, header)
			if err != nil {
				log.Printf("ws dial error: %v (retry in %v)", err, delay)
				select {
				case <-ctx.Done():
					return nil
				case <-time.After(delay):
				}
				delay = min(delay*2, reconnectMaxDelay)
				continue
			}

			c.mu.Lock()
			if c.pingCtx != nil {
				c.pingCtx()
			}
			pingCtx, pingCancel := context.WithCancel(ctx)
			c.conn = conn
			c.pingCtx = pingCancel
			c.mu.Unlock()

			go c.pingLoop(pingCtx, conn)

			return WSConnectedMsg{}
		}
	}
}

// ReadLoop returns a Bubble Tea command that reads until the next message
// the UI cares about. Start it after WSConnectedMsg and again after every
// message it delivers.
func (c *WSClient) ReadLoop(ctx context.Context) tea.Cmd {
	return func() tea.Msg {
		c.mu.Lock()
		conn := c.conn
		c.mu.Unlock()
		if conn == nil {
			return WSDisconnectedMsg{Err: fmt.Errorf("no connection")}
		}

		conn.SetPongHandler(func(string) error {
			conn.SetReadDeadline(time.Now().Add(pongTimeout))
			return nil
		})
		conn.SetReadDeadline(time.Now().Add(pongTimeout))

		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				c.mu.Lock()
				if c.conn == conn {
					c.conn = nil
				}
				c.mu.Unlock()
				conn.Close()
				return WSDisconnectedMsg{Err: err}
			}

			var msg WSMessage
			if err := json.Unmarshal(data, &msg); err != nil {
				continue
			}
			if teaMsg := Dispatch(msg); teaMsg != nil {
				return teaMsg
			}
		}
	}
}

// Close drops the current connection.
func (c *WSClient) Close() {
	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	if c.pingCtx != nil {
		c.pingCtx()
		c.pingCtx = nil
	}
	c.mu.Unlock()
	if conn != nil {
		conn.Close()
	}
}

// pingLoop sends periodic pings on conn until ctx is cancelled or the
// connection is replaced.
func (c *WSClient) pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.mu.Lock()
			cc := c.conn
			c.mu.Unlock()
			if cc != conn {
				return
			}
			c.writeMu.Lock()
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			err := conn.WriteMessage(websocket.PingMessage, nil)
			c.writeMu.Unlock()
			if err != nil {
				return
			}
		}
	}
}

// Dispatch converts an envelope into its Bubble Tea message. Unknown types
// and malformed payloads yield nil.
func Dispatch(msg WSMessage) tea.Msg {
	switch msg.Type {
	case MsgSnapshot:
		var p SnapshotPayload
		if json.Unmarshal(msg.Payload, &p) == nil {
			return WSSnapshotMsg{Payload: p}
		}
	case MsgProgress:
		var p ProgressPayload
		if json.Unmarshal(msg.Payload, &p) == nil && p.Progress != nil {
			return WSProgressMsg{Payload: p}
		}
	case MsgLevelUp:
		var p LevelUpPayload
		if json.Unmarshal(msg.Payload, &p) == nil {
			return WSLevelUpMsg{Payload: p}
		}
	case MsgTestResult:
		var p TestResultPayload
		if json.Unmarshal(msg.Payload, &p) == nil {
			return WSTestResultMsg{Payload: p}
		}
	case MsgError:
		var p ErrorPayload
		if json.Unmarshal(msg.Payload, &p) == nil {
			return WSErrorMsg{Payload: p}
		}
	}
	return nil
}
