package ws

import (
	"github.com/stillpath/journey/internal/progress"
)

type MessageType string

const (
	MsgSnapshot   MessageType = "snapshot"
	MsgProgress   MessageType = "progress"
	MsgLevelUp    MessageType = "level_up"
	MsgTestResult MessageType = "test_result"
	MsgError      MessageType = "error"
)

type WSMessage struct {
	Type    MessageType `json:"type"`
	Payload interface{} `json:"payload"`
}

// SnapshotPayload carries the latest known progress of every player the
// client follows.
type SnapshotPayload struct {
	Players []*progress.Progress `json:"players"`
}

type ProgressPayload struct {
	Progress *progress.Progress `json:"progress"`
}

type LevelUpPayload struct {
	UserID    string `json:"userId"`
	From      int    `json:"from"`
	To        int    `json:"to"`
	RealmName string `json:"realmName"`
}

type TestResultPayload struct {
	UserID    string `json:"userId"`
	Level     int    `json:"level"`
	Score     int    `json:"score"`
	Passed    bool   `json:"passed"`
	XPAwarded int64  `json:"xpAwarded"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}
