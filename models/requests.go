package models

// Mode is the classified intent of a request.
type Mode string

const (
	ModeChat          Mode = "chat"
	ModeTrendSearch   Mode = "trend-search"
	ModeImage         Mode = "image"
	ModeVideo         Mode = "video"
	ModeVideoAnalysis Mode = "video-analysis"
	ModeImageEdit     Mode = "image-edit"
)

// GenerationRequest lives from submission until it resolves into a Turn.
type GenerationRequest struct {
	Text string `json:"text"`
	Mode Mode   `json:"mode,omitempty"`
}

// SubmitRequest is the body of a conversation message post and of a
// WebSocket submit frame.
type SubmitRequest struct {
	Type string `json:"type,omitempty"` // "submit" over WebSocket
	Text string `json:"text"`
}

type MealImageRequest struct {
	Meal string `json:"meal" binding:"required"`
	Size string `json:"size,omitempty"` // 1K, 2K or 4K
}

type ImageEditRequest struct {
	Image       string `json:"image" binding:"required"` // base64 or data URL
	Instruction string `json:"instruction" binding:"required"`
}

type VideoRequest struct {
	Prompt   string `json:"prompt,omitempty"`
	Exercise string `json:"exercise,omitempty"`
}
