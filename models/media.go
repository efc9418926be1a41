package models

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// InlineImage is an image returned inline by the remote model.
type InlineImage struct {
	MIMEType string `json:"mimeType"`
	Data     []byte `json:"-"`
}

// DataURL renders the image as a data: URL suitable for an <img> src.
func (i *InlineImage) DataURL() string {
	mt := i.MIMEType
	if mt == "" {
		mt = "image/png"
	}
	return fmt.Sprintf("data:%s;base64,%s", mt, base64.StdEncoding.EncodeToString(i.Data))
}

// Media is a user-selected file submitted for analysis or editing.
type Media struct {
	MIMEType string
	Data     []byte
}

// NewMedia wraps raw bytes, sniffing the MIME type when none is given
// or the given one is the generic octet-stream.
func NewMedia(data []byte, mimeType string) Media {
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = mimetype.Detect(data).String()
	}
	return Media{MIMEType: mimeType, Data: data}
}

// ParseImageInput decodes a base64 image that may be wrapped in a data: URL.
// The MIME type comes from the data URL prefix when present, otherwise it is
// sniffed from the decoded bytes.
func ParseImageInput(input string) (Media, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return Media{}, fmt.Errorf("image data is required")
	}

	mediaType := ""
	if strings.HasPrefix(input, "data:") {
		parts := strings.SplitN(input, ",", 2)
		if len(parts) != 2 {
			return Media{}, fmt.Errorf("malformed data URL")
		}
		mediaType = strings.TrimSuffix(strings.TrimPrefix(parts[0], "data:"), ";base64")
		input = parts[1]
	}

	data, err := base64.StdEncoding.DecodeString(input)
	if err != nil {
		// Try URL-safe base64
		var err2 error
		if data, err2 = base64.URLEncoding.DecodeString(input); err2 != nil {
			return Media{}, fmt.Errorf("invalid base64 data: %w", err)
		}
	}
	return NewMedia(data, mediaType), nil
}

// VideoRef points at a generated video. PlaybackURL carries the API key so a
// browser can fetch the file directly.
type VideoRef struct {
	URI         string `json:"uri"`
	PlaybackURL string `json:"playbackUrl"`
}
