package models

import "time"

// Reply is the normalized result of a text-classified generation.
// For trend search, Text already includes the formatted sources block.
type Reply struct {
	Mode    Mode     `json:"mode"`
	Text    string   `json:"text"`
	Sources []Source `json:"sources,omitempty"`
}

// ConversationResponse is returned by the conversation API endpoints.
type ConversationResponse struct {
	ConversationID string    `json:"conversation_id"`
	Busy           bool      `json:"busy"`
	Turns          []Turn    `json:"turns"`
	CreatedAt      time.Time `json:"created_at"`
}

// SocketFrame is one server-to-client WebSocket message.
type SocketFrame struct {
	Type           string `json:"type"` // "turn", "busy", "error"
	ConversationID string `json:"conversation_id,omitempty"`
	Turn           *Turn  `json:"turn,omitempty"`
	Busy           *bool  `json:"busy,omitempty"`
	Error          string `json:"error,omitempty"`
}

type ImageResponse struct {
	Image *string `json:"image"` // data URL, null when the model returned no image
}

type VideoResponse struct {
	Video *VideoRef `json:"video"` // null means no demo available
}
