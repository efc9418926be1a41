package gateway

import (
	"context"
	"errors"
	"testing"

	"github.com/Desarso/fitcoach/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestChatSendsFramingAndHistory(t *testing.T) {
	b := &fakeBackend{content: func(contentCall) (*genai.GenerateContentResponse, error) {
		return textResponse("Try 3x8 goblet squats."), nil
	}}
	g, _ := newTestGateway(t, b)

	p := testProfile()
	p.Language = models.LanguageArabic
	history := []models.HistoryEntry{
		{Role: models.RoleUser, Content: "hello"},
		{Role: models.RoleModel, Content: "hi there"},
	}

	reply, err := g.Chat(context.Background(), history, "leg day ideas?", p)
	require.NoError(t, err)
	assert.Equal(t, "Try 3x8 goblet squats.", reply)

	call := b.lastCall(t)
	assert.Equal(t, DefaultModels().Chat, call.Model)
	require.Len(t, call.Contents, 3)
	assert.Equal(t, "user", call.Contents[0].Role)
	assert.Equal(t, "model", call.Contents[1].Role)
	assert.Equal(t, "leg day ideas?", call.Contents[2].Parts[0].Text)

	framing := call.Config.SystemInstruction.Parts[0].Text
	assert.Equal(t,
		"You are an elite fitness coach. Language: Arabic. User: 31y, 82.5kg, Goal: lose_weight. Preference: home. Be encouraging, precise, and data-driven.",
		framing)
}

func TestChatCapsHistory(t *testing.T) {
	b := &fakeBackend{content: func(contentCall) (*genai.GenerateContentResponse, error) {
		return textResponse("ok"), nil
	}}
	g, _ := newTestGateway(t, b, func(o *Options) { o.MaxHistoryExchanges = 1 })

	history := []models.HistoryEntry{
		{Role: models.RoleUser, Content: "1"}, {Role: models.RoleModel, Content: "1"},
		{Role: models.RoleUser, Content: "2"}, {Role: models.RoleModel, Content: "2"},
	}
	_, err := g.Chat(context.Background(), history, "3", testProfile())
	require.NoError(t, err)

	call := b.lastCall(t)
	require.Len(t, call.Contents, 3)
	assert.Equal(t, "2", call.Contents[0].Parts[0].Text)
}

func TestChatFailures(t *testing.T) {
	remote := errors.New("connection reset")
	b := &fakeBackend{content: func(contentCall) (*genai.GenerateContentResponse, error) {
		return nil, remote
	}}
	g, _ := newTestGateway(t, b)

	_, err := g.Chat(context.Background(), nil, "hi", testProfile())
	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, models.ModeChat, genErr.Mode)
	assert.ErrorIs(t, err, remote)

	b.content = func(contentCall) (*genai.GenerateContentResponse, error) { return textResponse("  "), nil }
	_, err = g.Chat(context.Background(), nil, "hi", testProfile())
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestDispatchTrendSearch(t *testing.T) {
	b := &fakeBackend{content: func(contentCall) (*genai.GenerateContentResponse, error) {
		resp := textResponse("Zone 2 training is popular.")
		resp.Candidates[0].GroundingMetadata = &genai.GroundingMetadata{
			GroundingChunks: []*genai.GroundingChunk{
				{Web: &genai.GroundingChunkWeb{Title: "Runner's World", URI: "https://rw.example/z2"}},
				{Maps: &genai.GroundingChunkMaps{Title: "Gym", URI: "https://maps.example/1"}},
				{Web: &genai.GroundingChunkWeb{Title: "PubMed", URI: "https://pubmed.example/123"}},
			},
		}
		return resp, nil
	}}
	g, _ := newTestGateway(t, b)

	reply, err := g.Dispatch(context.Background(), models.GenerationRequest{Text: "latest cardio trends"}, nil, testProfile())
	require.NoError(t, err)

	assert.Equal(t, models.ModeTrendSearch, reply.Mode)
	assert.Equal(t,
		"Zone 2 training is popular.\n\nSources:\n- Runner's World: https://rw.example/z2\n- PubMed: https://pubmed.example/123",
		reply.Text)
	assert.Len(t, reply.Sources, 2)

	call := b.lastCall(t)
	assert.Equal(t, DefaultModels().Fast, call.Model)
	require.Len(t, call.Config.Tools, 1)
	assert.NotNil(t, call.Config.Tools[0].GoogleSearch)
}

func TestDispatchChatAndUnknownMode(t *testing.T) {
	b := &fakeBackend{content: func(contentCall) (*genai.GenerateContentResponse, error) {
		return textResponse("Sure."), nil
	}}
	g, _ := newTestGateway(t, b)

	reply, err := g.Dispatch(context.Background(), models.GenerationRequest{Text: "plan my week"}, nil, testProfile())
	require.NoError(t, err)
	assert.Equal(t, models.Reply{Mode: models.ModeChat, Text: "Sure."}, reply)

	_, err = g.Dispatch(context.Background(), models.GenerationRequest{Text: "x", Mode: models.ModeVideo}, nil, testProfile())
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestFormatSources(t *testing.T) {
	assert.Equal(t, "plain", FormatSources("plain", nil))
	assert.Equal(t, "a\n\nSources:\n- T: u", FormatSources("a", []models.Source{{Title: "T", URI: "u"}}))
}

func TestQuickTip(t *testing.T) {
	b := &fakeBackend{}
	g, _ := newTestGateway(t, b)

	p := testProfile()
	p.Language = models.LanguageArabic
	tip, err := g.QuickTip(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, FallbackTip, tip, "empty answer falls back")

	prompt := b.lastCall(t).Contents[0].Parts[0].Text
	assert.Equal(t, "Give me a 1-sentence personalized fitness tip for a 31 year old who wants to lose weight. Respond in Arabic.", prompt)
}

func TestRecoveryPlanFallback(t *testing.T) {
	b := &fakeBackend{}
	g, _ := newTestGateway(t, b)

	plan, err := g.RecoveryPlan(context.Background(), testProfile())
	require.NoError(t, err)
	assert.Equal(t, FallbackRecovery, plan)
	assert.Contains(t, b.lastCall(t).Contents[0].Parts[0].Text, "User: Omar, Goal: lose weight. Language: English.")

	_, err = g.RecoveryPlan(context.Background(), nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
}
