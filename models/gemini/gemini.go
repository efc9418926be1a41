package gemini

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// Backend is the genai-backed remote generation API. One Backend is bound to
// one API key; rebinding after a credential change means connecting anew.
type Backend struct {
	client *genai.Client
}

// Connect creates a Gemini API client for apiKey.
func Connect(ctx context.Context, apiKey string) (*Backend, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("gemini: API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &Backend{client: client}, nil
}

func (b *Backend) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	return b.client.Models.GenerateContent(ctx, model, contents, config)
}

func (b *Backend) GenerateVideos(ctx context.Context, model, prompt string, image *genai.Image, config *genai.GenerateVideosConfig) (*genai.GenerateVideosOperation, error) {
	return b.client.Models.GenerateVideos(ctx, model, prompt, image, config)
}

func (b *Backend) GetVideosOperation(ctx context.Context, op *genai.GenerateVideosOperation, config *genai.GetOperationConfig) (*genai.GenerateVideosOperation, error) {
	return b.client.Operations.GetVideosOperation(ctx, op, config)
}

// FirstInlineData returns the first inline blob of the first candidate, or nil.
func FirstInlineData(resp *genai.GenerateContentResponse) *genai.Blob {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && part.InlineData != nil && len(part.InlineData.Data) > 0 {
			return part.InlineData
		}
	}
	return nil
}

// GroundingChunks returns the grounding chunks of the first candidate.
func GroundingChunks(resp *genai.GenerateContentResponse) []*genai.GroundingChunk {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].GroundingMetadata == nil {
		return nil
	}
	return resp.Candidates[0].GroundingMetadata.GroundingChunks
}

// IsCredentialError reports whether err is the API's answer to an invalid or
// expired key.
func IsCredentialError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), CredentialErrorMessage)
}
