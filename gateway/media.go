package gateway

import (
	"context"
	"strings"

	"github.com/Desarso/fitcoach/models"
	"github.com/Desarso/fitcoach/models/gemini"
	"google.golang.org/genai"
)

// ImageSizes are the accepted meal image resolutions.
var ImageSizes = []string{"1K", "2K", "4K"}

// ParseImageSize validates size; empty defaults to 1K.
func ParseImageSize(size string) (string, error) {
	if size == "" {
		return ImageSizes[0], nil
	}
	s := strings.ToUpper(size)
	for _, allowed := range ImageSizes {
		if s == allowed {
			return s, nil
		}
	}
	return "", invalidInput("image size %q (want 1K, 2K or 4K)", size)
}

// MealImage renders a square food photograph of meal. It returns nil when
// the model answered without an image.
func (g *Gateway) MealImage(ctx context.Context, meal, size string) (*models.InlineImage, error) {
	meal = strings.TrimSpace(meal)
	if meal == "" {
		return nil, invalidInput("meal name is required")
	}
	size, err := ParseImageSize(size)
	if err != nil {
		return nil, err
	}

	config := &genai.GenerateContentConfig{
		ImageConfig: &genai.ImageConfig{
			ImageSize:   size,
			AspectRatio: "1:1",
		},
	}
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{genai.NewPartFromText(mealImagePrompt(meal))}, genai.RoleUser),
	}

	var img *models.InlineImage
	err = g.call(ctx, "meal_image", models.ModeImage, g.models.MealImage, map[string]any{"size": size}, func(b Backend) error {
		resp, err := b.GenerateContent(ctx, g.models.MealImage, contents, config)
		if err != nil {
			return err
		}
		img = inlineImage(resp)
		return nil
	})
	return img, err
}

// EditImage applies instruction to src and returns the edited image, or nil
// when the model answered without one.
func (g *Gateway) EditImage(ctx context.Context, src models.Media, instruction string) (*models.InlineImage, error) {
	if len(src.Data) == 0 {
		return nil, invalidInput("image data is required")
	}
	if strings.TrimSpace(instruction) == "" {
		return nil, invalidInput("edit instruction is required")
	}
	mimeType := src.MIMEType
	if mimeType == "" {
		mimeType = "image/png"
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(src.Data, mimeType),
			genai.NewPartFromText(instruction),
		}, genai.RoleUser),
	}

	var img *models.InlineImage
	err := g.call(ctx, "image_edit", models.ModeImageEdit, g.models.ImageEdit, nil, func(b Backend) error {
		resp, err := b.GenerateContent(ctx, g.models.ImageEdit, contents, nil)
		if err != nil {
			return err
		}
		img = inlineImage(resp)
		return nil
	})
	return img, err
}

// AnalyzeMedia critiques the exercise form in a workout video or image.
func (g *Gateway) AnalyzeMedia(ctx context.Context, media models.Media) (string, error) {
	if len(media.Data) == 0 {
		return "", invalidInput("media data is required")
	}
	mt := strings.ToLower(media.MIMEType)
	if !strings.HasPrefix(mt, "video/") && !strings.HasPrefix(mt, "image/") {
		return "", invalidInput("unsupported media type %q", media.MIMEType)
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(media.Data, media.MIMEType),
			genai.NewPartFromText(analysisPrompt),
		}, genai.RoleUser),
	}

	var text string
	details := map[string]any{"mime_type": media.MIMEType, "bytes": len(media.Data)}
	err := g.call(ctx, "analysis", models.ModeVideoAnalysis, g.models.Analysis, details, func(b Backend) error {
		resp, err := b.GenerateContent(ctx, g.models.Analysis, contents, nil)
		if err != nil {
			return err
		}
		text = responseText(resp)
		return nil
	})
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return FallbackAnalysis, nil
	}
	return text, nil
}

func inlineImage(resp *genai.GenerateContentResponse) *models.InlineImage {
	blob := gemini.FirstInlineData(resp)
	if blob == nil {
		return nil
	}
	return &models.InlineImage{MIMEType: blob.MIMEType, Data: blob.Data}
}
