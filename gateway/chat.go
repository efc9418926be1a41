package gateway

import (
	"context"
	"fmt"
	"strings"

	"github.com/Desarso/fitcoach/models"
	"github.com/Desarso/fitcoach/models/gemini"
	"github.com/Desarso/fitcoach/stores"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

// Dispatch classifies a conversation request and runs it as chat or trend
// search. req.Mode, when set, overrides classification.
func (g *Gateway) Dispatch(ctx context.Context, req models.GenerationRequest, history []models.HistoryEntry, profile *models.Profile) (models.Reply, error) {
	mode := req.Mode
	if mode == "" {
		mode = Classify(req.Text)
	}

	switch mode {
	case models.ModeTrendSearch:
		text, sources, err := g.TrendSearch(ctx, req.Text)
		if err != nil {
			return models.Reply{}, err
		}
		return models.Reply{Mode: mode, Text: FormatSources(text, sources), Sources: sources}, nil

	case models.ModeChat:
		text, err := g.Chat(ctx, history, req.Text, profile)
		if err != nil {
			return models.Reply{}, err
		}
		return models.Reply{Mode: mode, Text: text}, nil
	}

	return models.Reply{}, &GenerationError{
		Op:   "dispatch",
		Mode: mode,
		Err:  invalidInput("mode %q is not a conversation mode", mode),
	}
}

// Chat sends text with the coach framing and the running history as context.
func (g *Gateway) Chat(ctx context.Context, history []models.HistoryEntry, text string, profile *models.Profile) (string, error) {
	if profile == nil {
		return "", &GenerationError{Op: "chat", Mode: models.ModeChat, Err: invalidInput("profile is required")}
	}

	clean := stores.SanitizeHistory(history, g.maxHistory)
	if dropped := len(history) - len(clean); dropped > 0 {
		g.logger.Debug("Trimmed chat history", zap.Int("dropped", dropped), zap.Strings("issues", stores.DetectCorruptedHistory(history)))
	}

	contents := make([]*genai.Content, 0, len(clean)+1)
	for _, e := range clean {
		contents = append(contents, genai.NewContentFromText(e.Content, genai.Role(e.Role)))
	}
	contents = append(contents, genai.NewContentFromText(text, genai.RoleUser))

	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(SystemFraming(profile), genai.RoleUser),
	}

	var reply string
	details := map[string]any{"history": len(clean)}
	err := g.call(ctx, "chat", models.ModeChat, g.models.Chat, details, func(b Backend) error {
		resp, err := b.GenerateContent(ctx, g.models.Chat, contents, config)
		if err != nil {
			return err
		}
		reply = responseText(resp)
		if strings.TrimSpace(reply) == "" {
			return ErrEmptyResponse
		}
		return nil
	})
	return reply, err
}

// TrendSearch answers query with Google Search grounding and returns the web
// sources the answer cites.
func (g *Gateway) TrendSearch(ctx context.Context, query string) (string, []models.Source, error) {
	config := &genai.GenerateContentConfig{
		Tools: []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}},
	}

	var (
		text    string
		sources []models.Source
	)
	err := g.call(ctx, "trend_search", models.ModeTrendSearch, g.models.Fast, nil, func(b Backend) error {
		resp, err := b.GenerateContent(ctx, g.models.Fast, genai.Text(query), config)
		if err != nil {
			return err
		}
		text = responseText(resp)
		for _, c := range gemini.GroundingChunks(resp) {
			if c == nil || c.Web == nil {
				continue
			}
			sources = append(sources, models.Source{Title: c.Web.Title, URI: c.Web.URI})
		}
		if strings.TrimSpace(text) == "" && len(sources) == 0 {
			return ErrEmptyResponse
		}
		return nil
	})
	if err != nil {
		return "", nil, err
	}
	return text, sources, nil
}

// FormatSources appends a "Sources:" block listing each source as
// "- title: uri". Text is returned unchanged when there are no sources.
func FormatSources(text string, sources []models.Source) string {
	if len(sources) == 0 {
		return text
	}
	var b strings.Builder
	b.WriteString(text)
	b.WriteString("\n\nSources:\n")
	for i, s := range sources {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "- %s: %s", s.Title, s.URI)
	}
	return b.String()
}

// QuickTip returns a one-sentence tip for profile.
func (g *Gateway) QuickTip(ctx context.Context, profile *models.Profile) (string, error) {
	if profile == nil {
		return "", invalidInput("profile is required")
	}
	return g.simpleText(ctx, "quick_tip", quickTipPrompt(profile), FallbackTip)
}

// RecoveryPlan returns a short plan for getting back on track after a missed day.
func (g *Gateway) RecoveryPlan(ctx context.Context, profile *models.Profile) (string, error) {
	if profile == nil {
		return "", invalidInput("profile is required")
	}
	return g.simpleText(ctx, "recovery_plan", recoveryPrompt(profile), FallbackRecovery)
}

func (g *Gateway) simpleText(ctx context.Context, op, prompt, fallback string) (string, error) {
	var text string
	err := g.call(ctx, op, "", g.models.Fast, nil, func(b Backend) error {
		resp, err := b.GenerateContent(ctx, g.models.Fast, genai.Text(prompt), nil)
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
		return fallback, nil
	}
	return text, nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	return resp.Text()
}
