// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs one post generation end to end: optional news
// lookup, three-stage generation, and optional notification.
package pipeline

import (
	"context"
	"html"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/AlexLyubovenko/ai-blog-generator/internal/failure"
	"github.com/AlexLyubovenko/ai-blog-generator/internal/news"
	"github.com/AlexLyubovenko/ai-blog-generator/pkg/types"
)

// NewsSearcher finds articles for a topic.
type NewsSearcher interface {
	Search(ctx context.Context, q news.Query) ([]types.NewsArticle, error)
	TestConnection(ctx context.Context) bool
	Configured() bool
}

// PostGenerator produces a post from a topic and its news.
type PostGenerator interface {
	Generate(ctx context.Context, topic string, articles []types.NewsArticle, style types.WritingStyle) (*types.GeneratedPost, error)
	CheckHealth(ctx context.Context) bool
	Configured() bool
}

// Notifier delivers a message to the configured channel.
type Notifier interface {
	SendMessage(ctx context.Context, text, title string) error
	TestConnection(ctx context.Context) bool
	Configured() bool
}

// Service names used in health reports.
const (
	ServiceNews     = "currents_api"
	ServiceModel    = "ai_api"
	ServiceTelegram = "telegram"
)

// Result is the outcome of a successful run. NotifyError is set when a
// requested notification failed; the post is still returned.
type Result struct {
	RunID       string               `json:"run_id" yaml:"run_id"`
	Post        *types.GeneratedPost `json:"post" yaml:"post"`
	Notified    bool                 `json:"notified" yaml:"notified"`
	NotifyError string               `json:"notify_error,omitempty" yaml:"notify_error,omitempty"`
}

// Pipeline wires the three clients together. It holds no per-run state.
type Pipeline struct {
	news      NewsSearcher
	generator PostGenerator
	notifier  Notifier
	log       zerolog.Logger
	now       func() time.Time
}

// New returns a Pipeline. notifier may be nil when notifications are not used.
func New(n NewsSearcher, g PostGenerator, notifier Notifier, log zerolog.Logger) *Pipeline {
	return &Pipeline{
		news:      n,
		generator: g,
		notifier:  notifier,
		log:       log.With().Str("component", "pipeline").Logger(),
		now:       time.Now,
	}
}

// Run validates req, fetches news when requested, generates the post, and
// sends a notification when req.Notify is set. A news failure is logged and
// the run continues without news. A generation failure aborts the run.
func (p *Pipeline) Run(ctx context.Context, req types.TopicRequest) (*Result, error) {
	req = req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, failure.New(failure.BadRequest, "%v", err)
	}

	runID := uuid.NewString()
	log := p.log.With().Str("run_id", runID).Str("topic", req.Topic).Logger()
	ctx = log.WithContext(ctx)
	start := p.now()

	log.Info().
		Bool("include_news", req.IncludeNews).
		Int("max_news_articles", req.MaxNewsArticles).
		Str("style", string(req.WritingStyle)).
		Msg("run started")

	var articles []types.NewsArticle
	if req.IncludeNews {
		articles = p.fetchNews(ctx, log, req)
	}

	post, err := p.generator.Generate(ctx, req.Topic, articles, req.WritingStyle)
	if err != nil {
		log.Error().Err(err).Str("error_type", failure.KindOf(err).String()).Msg("run failed")
		return nil, err
	}

	res := &Result{RunID: runID, Post: post}
	if req.Notify {
		p.notify(ctx, log, res)
	}

	log.Info().
		Int("news_used", len(post.NewsUsed)).
		Int("tokens_used", post.TokensUsed).
		Bool("notified", res.Notified).
		Dur("elapsed", p.now().Sub(start)).
		Msg("run finished")
	return res, nil
}

func (p *Pipeline) fetchNews(ctx context.Context, log zerolog.Logger, req types.TopicRequest) []types.NewsArticle {
	articles, err := p.news.Search(ctx, news.Query{
		Keywords:   req.Topic,
		Language:   req.Language,
		MaxResults: req.MaxNewsArticles,
	})
	if err != nil {
		log.Warn().Err(err).Str("error_type", failure.KindOf(err).String()).Msg("news lookup failed, generating without news")
		return nil
	}
	if len(articles) > req.MaxNewsArticles {
		articles = articles[:req.MaxNewsArticles]
	}
	return articles
}

func (p *Pipeline) notify(ctx context.Context, log zerolog.Logger, res *Result) {
	if p.notifier == nil {
		res.NotifyError = failure.New(failure.Internal, "notifier not configured").Detail
		log.Warn().Msg("notification requested but no notifier is set")
		return
	}
	if err := p.notifier.SendMessage(ctx, NotificationText(res.Post), res.Post.Title); err != nil {
		res.NotifyError = failure.DetailOf(err)
		log.Warn().Err(err).Msg("notification failed, post kept")
		return
	}
	res.Notified = true
}

// maxNotificationRunes keeps the message body under the Bot API's
// 4096-character limit once the title header is added.
const maxNotificationRunes = 3800

// NotificationText is the message body sent for a post: its meta
// description followed by the article body, HTML-escaped and truncated to
// fit one message.
func NotificationText(post *types.GeneratedPost) string {
	parts := make([]string, 0, 2)
	if s := strings.TrimSpace(post.MetaDescription); s != "" {
		parts = append(parts, s)
	}
	if s := strings.TrimSpace(post.Content); s != "" {
		parts = append(parts, s)
	}
	text := []rune(strings.Join(parts, "\n\n"))
	if len(text) > maxNotificationRunes {
		text = append(text[:maxNotificationRunes-1], '…')
	}
	return html.EscapeString(string(text))
}

// Health probes every service and reports "healthy" when each configured
// service answers. Unconfigured services are reported but do not degrade
// the status, except for the model, which every run needs.
func (p *Pipeline) Health(ctx context.Context) types.HealthReport {
	report := types.HealthReport{
		Status:    types.HealthHealthy,
		Timestamp: p.now().UTC(),
		Services:  map[string]string{},
	}

	probe := func(name string, configured bool, required bool, check func(context.Context) bool) {
		switch {
		case !configured:
			report.Services[name] = types.StatusNotConfigured
			if required {
				report.Status = types.HealthDegraded
			}
		case check(ctx):
			report.Services[name] = types.StatusOK
		default:
			report.Services[name] = types.StatusUnavailable
			report.Status = types.HealthDegraded
		}
	}

	probe(ServiceModel, p.generator.Configured(), true, p.generator.CheckHealth)
	probe(ServiceNews, p.news.Configured(), false, p.news.TestConnection)
	if p.notifier != nil {
		probe(ServiceTelegram, p.notifier.Configured(), false, p.notifier.TestConnection)
	} else {
		report.Services[ServiceTelegram] = types.StatusNotConfigured
	}

	p.log.Debug().Str("status", report.Status).Interface("services", report.Services).Msg("health checked")
	return report
}
