// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package generate turns a topic and a list of news articles into a blog
// post by driving a language model through three dependent calls: title,
// meta description, and body. The model is reached through the Backend
// interface so providers can be swapped and tests can supply a fake.
package generate

import (
	"context"
	"strings"
	"text/template"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/AlexLyubovenko/ai-blog-generator/internal/failure"
	"github.com/AlexLyubovenko/ai-blog-generator/pkg/types"
)

// Backend abstracts a chat-completion provider. Implementations classify
// their failures as *failure.Error values.
type Backend interface {
	// Complete runs one completion and returns the generated text.
	Complete(ctx context.Context, req CompletionRequest) (Completion, error)

	// Ping performs a lightweight authenticated call, such as listing models.
	Ping(ctx context.Context) error
}

// CompletionRequest is one system+user prompt pair with its sampling profile.
type CompletionRequest struct {
	System  string
	Prompt  string
	Profile types.StageProfile
}

// Completion is the result of one model call. TotalTokens is zero when the
// provider does not report usage.
type Completion struct {
	Text        string
	TotalTokens int
}

// Stage names used in logs and failure details.
const (
	StageTitle   = "title"
	StageMeta    = "meta description"
	StageContent = "content"
)

// Generator produces posts. It holds no per-run state and is safe for
// concurrent use.
type Generator struct {
	backend Backend
	cfg     types.GenerationConfig
	log     zerolog.Logger
	now     func() time.Time
}

// New returns a Generator that calls backend with the stage profiles in cfg.
func New(backend Backend, cfg types.GenerationConfig, log zerolog.Logger) *Generator {
	if cfg.OutputLanguage == "" {
		cfg.OutputLanguage = "English"
	}
	return &Generator{
		backend: backend,
		cfg:     cfg,
		log:     log.With().Str("component", "generate").Logger(),
		now:     time.Now,
	}
}

// Configured reports whether the backend has credentials.
func (g *Generator) Configured() bool {
	_, missing := g.backend.(unconfiguredBackend)
	return !missing
}

// Generate builds the news context, then generates the title, the meta
// description from the title, and the body from the title and context, in
// that order. Any failure aborts the run and no post is returned.
func (g *Generator) Generate(ctx context.Context, topic string, articles []types.NewsArticle, style types.WritingStyle) (*types.GeneratedPost, error) {
	if style == "" {
		style = types.DefaultStyle
	}
	newsContext := BuildNewsContext(articles)
	data := promptData{
		Topic:       topic,
		NewsContext: newsContext,
		Style:       style,
		Instruction: TitleInstruction(style),
		Tone:        ContentTone(style),
		Language:    g.cfg.OutputLanguage,
	}

	log := g.log.With().Str("topic", topic).Str("style", string(style)).Logger()
	log.Info().Int("articles", len(articles)).Msg("generating post")

	var tokens int

	title, n, err := g.stage(ctx, log, StageTitle, titleSystemPrompt, titlePromptTmpl, data, g.cfg.Title)
	if err != nil {
		return nil, err
	}
	tokens += n
	data.Title = title

	meta, n, err := g.stage(ctx, log, StageMeta, metaSystemPrompt, metaPromptTmpl, data, g.cfg.Meta)
	if err != nil {
		return nil, err
	}
	tokens += n

	content, n, err := g.stage(ctx, log, StageContent, contentSystemPrompt, contentPromptTmpl, data, g.cfg.Content)
	if err != nil {
		return nil, err
	}
	tokens += n

	newsUsed := make([]string, 0, len(articles))
	for _, a := range articles {
		newsUsed = append(newsUsed, a.Title)
	}

	post := &types.GeneratedPost{
		Topic:           topic,
		Title:           title,
		Content:         content,
		MetaDescription: meta,
		NewsUsed:        newsUsed,
		GeneratedAt:     g.now().UTC(),
		TokensUsed:      tokens,
		WritingStyle:    style,
	}
	log.Info().Str("title", title).Int("tokens_used", tokens).Msg("post generated")
	return post, nil
}

// stage renders one prompt, calls the backend, and returns the trimmed
// completion text with its token count.
func (g *Generator) stage(ctx context.Context, log zerolog.Logger, name, system string, tmpl *template.Template, data promptData, profile types.StageProfile) (string, int, error) {
	prompt, err := render(tmpl, data)
	if err != nil {
		return "", 0, failure.Wrap(failure.Internal, err, "building %s prompt", name)
	}

	start := time.Now()
	c, err := g.backend.Complete(ctx, CompletionRequest{System: system, Prompt: prompt, Profile: profile})
	if err != nil {
		log.Error().Err(err).Str("stage", name).Str("error_type", failure.KindOf(err).String()).Msg("generation failed")
		return "", 0, err
	}

	text := strings.TrimSpace(c.Text)
	if text == "" {
		log.Error().Str("stage", name).Msg("model returned no text")
		return "", 0, failure.New(failure.ServiceUnavailable, "model returned an empty %s", name)
	}

	tokens := c.TotalTokens
	if tokens <= 0 {
		tokens = estimateTokens(system, prompt, c.Text)
	}
	log.Debug().Str("stage", name).Int("tokens", tokens).Dur("elapsed", time.Since(start)).Msg("stage complete")
	return text, tokens, nil
}

// estimateTokens approximates usage at four characters per token for
// providers that do not report it.
func estimateTokens(parts ...string) int {
	var chars int
	for _, p := range parts {
		chars += utf8.RuneCountInString(p)
	}
	if n := chars / 4; n > 0 {
		return n
	}
	return 1
}

// CheckHealth reports whether the backend answers an authenticated call.
// It never returns an error.
func (g *Generator) CheckHealth(ctx context.Context) bool {
	if err := g.backend.Ping(ctx); err != nil {
		g.log.Debug().Err(err).Msg("model health check failed")
		return false
	}
	return true
}
