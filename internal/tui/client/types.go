// Package client provides WebSocket and HTTP clients for the journey server.
// Domain values decode into the engine and progress types; only the
// envelope and broadcast payloads are declared here.
package client

import (
	"encoding/json"

	"github.com/stillpath/journey/internal/journey"
	"github.com/stillpath/journey/internal/progress"
)

// MessageType identifies the kind of WebSocket message.
type MessageType string

const (
	MsgSnapshot   MessageType = "snapshot"
	MsgProgress   MessageType = "progress"
	MsgLevelUp    MessageType = "level_up"
	MsgTestResult MessageType = "test_result"
	MsgError      MessageType = "error"
)

// WSMessage is the envelope for all WebSocket messages.
type WSMessage struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// SnapshotPayload is sent once when a client connects.
type SnapshotPayload struct {
	Players []*progress.Progress `json:"players"`
}

// ProgressPayload carries a player's latest progress.
type ProgressPayload struct {
	Progress *progress.Progress `json:"progress"`
}

// LevelUpPayload announces one or more levels gained.
type LevelUpPayload struct {
	UserID    string `json:"userId"`
	From      int    `json:"from"`
	To        int    `json:"to"`
	RealmName string `json:"realmName"`
}

// TestResultPayload announces a graded mastery test.
type TestResultPayload struct {
	UserID    string `json:"userId"`
	Level     int    `json:"level"`
	Score     int    `json:"score"`
	Passed    bool   `json:"passed"`
	XPAwarded int64  `json:"xpAwarded"`
}

// ErrorPayload is a server-side error.
type ErrorPayload struct {
	Message string `json:"message"`
}

// Standing is the progress endpoint's response: the stored record plus the
// player's position inside their current level.
type Standing struct {
	progress.Progress
	Standing journey.LevelProgress `json:"standing"`
}

// Policy is the /api/policy response.
type Policy struct {
	Policy   journey.Policy  `json:"policy"`
	XPCurve  journey.XPCurve `json:"xpCurve"`
	MaxLevel int             `json:"maxLevel"`
}
