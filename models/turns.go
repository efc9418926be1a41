package models

import "time"

type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Turn is one displayed message of a conversation. Turns are never edited
// after they are appended to a transcript.
type Turn struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
	IsError   bool      `json:"isError,omitempty"`
}

// HistoryEntry is one model-visible exchange half. Unlike Turn it never
// carries error notices or the greeting.
type HistoryEntry struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}
