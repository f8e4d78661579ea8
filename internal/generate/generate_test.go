// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package generate

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlexLyubovenko/ai-blog-generator/internal/failure"
	"github.com/AlexLyubovenko/ai-blog-generator/pkg/types"
)

// fakeBackend answers each call from a queue and records the requests.
type fakeBackend struct {
	mu        sync.Mutex
	responses []Completion
	errs      []error
	requests  []CompletionRequest
	pingErr   error
}

func (f *fakeBackend) Complete(_ context.Context, req CompletionRequest) (Completion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := len(f.requests)
	f.requests = append(f.requests, req)
	if i < len(f.errs) && f.errs[i] != nil {
		return Completion{}, f.errs[i]
	}
	if i < len(f.responses) {
		return f.responses[i], nil
	}
	return Completion{Text: "default"}, nil
}

func (f *fakeBackend) Ping(context.Context) error { return f.pingErr }

func testConfig() types.GenerationConfig {
	return types.GenerationConfig{
		OutputLanguage: "English",
		Title:          types.StageProfile{MaxTokens: 60, Temperature: 0.7, Stop: []string{"\n"}},
		Meta:           types.StageProfile{MaxTokens: 100, Temperature: 0.5},
		Content:        types.StageProfile{MaxTokens: 1500, Temperature: 0.7, PresencePenalty: 0.6, FrequencyPenalty: 0.6},
	}
}

var fixedTime = time.Date(2026, 3, 14, 9, 26, 53, 0, time.FixedZone("X", 3*3600))

func newTestGenerator(b Backend) *Generator {
	g := New(b, testConfig(), zerolog.Nop())
	g.now = func() time.Time { return fixedTime }
	return g
}

func threeStage() *fakeBackend {
	return &fakeBackend{responses: []Completion{
		{Text: "  AI Reshapes Modern Healthcare Delivery  ", TotalTokens: 40},
		{Text: "How AI is changing diagnosis.\n", TotalTokens: 60},
		{Text: "## Intro\n\nBody text.", TotalTokens: 900},
	}}
}

func TestGenerateSequencesThreeStages(t *testing.T) {
	fb := threeStage()
	g := newTestGenerator(fb)

	articles := []types.NewsArticle{
		{Title: "First", Description: "One"},
		{Title: "Second", Description: types.NoDescription},
	}
	post, err := g.Generate(context.Background(), "AI in healthcare", articles, types.StyleTechnical)
	require.NoError(t, err)

	assert.Equal(t, "AI in healthcare", post.Topic)
	assert.Equal(t, "AI Reshapes Modern Healthcare Delivery", post.Title)
	assert.Equal(t, "How AI is changing diagnosis.", post.MetaDescription)
	assert.Equal(t, "## Intro\n\nBody text.", post.Content)
	assert.Equal(t, []string{"First", "Second"}, post.NewsUsed)
	assert.Equal(t, 1000, post.TokensUsed)
	assert.Equal(t, types.StyleTechnical, post.WritingStyle)
	assert.Equal(t, fixedTime.UTC(), post.GeneratedAt)
	assert.Equal(t, time.UTC, post.GeneratedAt.Location())

	require.Len(t, fb.requests, 3)
	title, meta, content := fb.requests[0], fb.requests[1], fb.requests[2]

	assert.Equal(t, titleSystemPrompt, title.System)
	assert.Contains(t, title.Prompt, `"AI in healthcare"`)
	assert.Contains(t, title.Prompt, titleInstructions[types.StyleTechnical])
	assert.Contains(t, title.Prompt, "• First\n  One\n")
	assert.Contains(t, title.Prompt, "Written in English")
	assert.Equal(t, 60, title.Profile.MaxTokens)
	assert.Equal(t, []string{"\n"}, title.Profile.Stop)

	assert.Equal(t, metaSystemPrompt, meta.System)
	assert.Contains(t, meta.Prompt, `"AI Reshapes Modern Healthcare Delivery"`, "meta prompt uses the trimmed title")
	assert.Contains(t, meta.Prompt, "Style: technical")
	assert.NotContains(t, meta.Prompt, "First", "meta prompt carries no news context")
	assert.Equal(t, 100, meta.Profile.MaxTokens)
	assert.InDelta(t, 0.5, meta.Profile.Temperature, 1e-6)

	assert.Equal(t, contentSystemPrompt, content.System)
	assert.Contains(t, content.Prompt, `titled "AI Reshapes Modern Healthcare Delivery"`)
	assert.Contains(t, content.Prompt, contentTones[types.StyleTechnical])
	assert.Contains(t, content.Prompt, "500-800 words")
	assert.Contains(t, content.Prompt, "• Second\n\n")
	assert.InDelta(t, 0.6, content.Profile.PresencePenalty, 1e-6)
	assert.InDelta(t, 0.6, content.Profile.FrequencyPenalty, 1e-6)
}

func TestGenerateWithoutNewsUsesPlaceholder(t *testing.T) {
	fb := threeStage()
	g := newTestGenerator(fb)

	post, err := g.Generate(context.Background(), "Quantum computing", nil, types.StyleProfessional)
	require.NoError(t, err)

	assert.Empty(t, post.NewsUsed)
	assert.NotNil(t, post.NewsUsed, "news_used serializes as an empty list")
	assert.Contains(t, fb.requests[0].Prompt, NoNewsContext)
	assert.Contains(t, fb.requests[2].Prompt, NoNewsContext)
}

func TestGenerateUnknownStyleFallsBack(t *testing.T) {
	fb := threeStage()
	g := newTestGenerator(fb)

	post, err := g.Generate(context.Background(), "Gardening", nil, "poetic")
	require.NoError(t, err)

	assert.Equal(t, types.WritingStyle("poetic"), post.WritingStyle)
	assert.True(t, strings.HasPrefix(fb.requests[0].Prompt, defaultTitleInstruction+" for an article"))
	assert.Contains(t, fb.requests[1].Prompt, "Style: poetic")
	for _, tone := range contentTones {
		assert.NotContains(t, fb.requests[2].Prompt, tone)
	}
}

func TestGenerateEmptyStyleDefaults(t *testing.T) {
	g := newTestGenerator(threeStage())

	post, err := g.Generate(context.Background(), "Gardening", nil, "")
	require.NoError(t, err)
	assert.Equal(t, types.DefaultStyle, post.WritingStyle)
}

func TestGenerateFailureAtEachStage(t *testing.T) {
	authErr := failure.New(failure.Unauthorized, "invalid key")
	tests := []struct {
		name  string
		errs  []error
		calls int
	}{
		{"title", []error{authErr}, 1},
		{"meta", []error{nil, authErr}, 2},
		{"content", []error{nil, nil, authErr}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fb := threeStage()
			fb.errs = tt.errs
			g := newTestGenerator(fb)

			post, err := g.Generate(context.Background(), "topic", nil, types.StyleCasual)
			require.Error(t, err)
			assert.Nil(t, post)
			assert.Equal(t, failure.Unauthorized, failure.KindOf(err))
			assert.Len(t, fb.requests, tt.calls, "later stages are not attempted")
		})
	}
}

func TestGenerateEmptyCompletionIsServiceUnavailable(t *testing.T) {
	fb := &fakeBackend{responses: []Completion{{Text: "Title"}, {Text: "   \n"}}}
	g := newTestGenerator(fb)

	post, err := g.Generate(context.Background(), "topic", nil, types.StyleCasual)
	require.Error(t, err)
	assert.Nil(t, post)
	assert.Equal(t, failure.ServiceUnavailable, failure.KindOf(err))
	assert.Contains(t, failure.DetailOf(err), StageMeta)
}

func TestGenerateEstimatesTokensWhenUnreported(t *testing.T) {
	fb := &fakeBackend{responses: []Completion{
		{Text: "Title"},
		{Text: "Meta", TotalTokens: 10},
		{Text: "Body"},
	}}
	g := newTestGenerator(fb)

	post, err := g.Generate(context.Background(), "topic", nil, types.StyleCasual)
	require.NoError(t, err)

	want := 10 +
		estimateTokens(fb.requests[0].System, fb.requests[0].Prompt, "Title") +
		estimateTokens(fb.requests[2].System, fb.requests[2].Prompt, "Body")
	assert.Equal(t, want, post.TokensUsed)
}

func TestEstimateTokens(t *testing.T) {
	assert.Equal(t, 1, estimateTokens(""))
	assert.Equal(t, 1, estimateTokens("abc"))
	assert.Equal(t, 2, estimateTokens("abcd", "efgh"))
	assert.Equal(t, 1, estimateTokens("ёжик"), "counts characters, not bytes")
}

func TestCheckHealth(t *testing.T) {
	assert.True(t, newTestGenerator(&fakeBackend{}).CheckHealth(context.Background()))
	assert.False(t, newTestGenerator(&fakeBackend{pingErr: failure.New(failure.Unauthorized, "no")}).CheckHealth(context.Background()))
}

func TestConfigured(t *testing.T) {
	assert.True(t, newTestGenerator(&fakeBackend{}).Configured())

	b, err := NewBackend(context.Background(), types.AIConfig{Provider: types.ProviderOpenAI}, nil)
	require.NoError(t, err)
	g := newTestGenerator(b)
	assert.False(t, g.Configured())

	_, err = g.Generate(context.Background(), "topic", nil, types.StyleCasual)
	assert.Equal(t, failure.Unauthorized, failure.KindOf(err))
	assert.False(t, g.CheckHealth(context.Background()))
}

func TestNewBackend(t *testing.T) {
	b, err := NewBackend(context.Background(), types.AIConfig{Provider: types.ProviderOpenAI, APIKey: "sk", Model: "m"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &OpenAIBackend{}, b)

	b, err = NewBackend(context.Background(), types.AIConfig{Provider: types.ProviderGemini}, nil)
	require.NoError(t, err)
	assert.IsType(t, unconfiguredBackend{}, b)

	_, err = NewBackend(context.Background(), types.AIConfig{Provider: "llama"}, nil)
	assert.Error(t, err)
}
