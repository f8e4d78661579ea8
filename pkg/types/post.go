// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the blog-generator pipeline:
// topic requests, normalized news articles, generated posts, and the
// configuration groups handed to each stage at construction time.
package types

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// WritingStyle names a tone and structure preset used to select prompt phrasing.
// Values outside the known set are accepted and fall back to generic phrasing.
type WritingStyle string

const (
	StyleProfessional WritingStyle = "professional"
	StyleCasual       WritingStyle = "casual"
	StyleCreative     WritingStyle = "creative"
	StyleTechnical    WritingStyle = "technical"
)

// KnownStyles lists the styles that have dedicated prompt phrasing.
var KnownStyles = []WritingStyle{StyleProfessional, StyleCasual, StyleCreative, StyleTechnical}

// Limits on incoming requests.
const (
	MinTopicLength       = 2
	MaxTopicLength       = 100
	MinNewsArticles      = 1
	MaxNewsArticles      = 10
	MaxNewsSearchResults = 20

	DefaultLanguage     = "en"
	DefaultNewsArticles = 5
	DefaultStyle        = StyleProfessional
)

// Placeholders applied when a news provider omits a field.
const (
	NoTitle         = "No title"
	NoDescription   = "No description"
	DefaultCategory = "general"
)

// TopicRequest asks the pipeline to generate one blog post.
type TopicRequest struct {
	// Topic is the subject of the post (2-100 characters).
	Topic string `json:"topic" yaml:"topic"`

	// Language is the news search language (default "en").
	Language string `json:"language" yaml:"language"`

	// IncludeNews controls whether recent news is fetched for context.
	IncludeNews bool `json:"include_news" yaml:"include_news"`

	// MaxNewsArticles caps the number of articles used as context (1-10).
	MaxNewsArticles int `json:"max_news_articles" yaml:"max_news_articles"`

	// WritingStyle selects prompt phrasing (default "professional").
	WritingStyle WritingStyle `json:"writing_style" yaml:"writing_style"`

	// Notify sends the finished post to the configured messaging channel.
	Notify bool `json:"notify" yaml:"notify"`
}

// NewTopicRequest returns a request for topic with every other field at its default.
func NewTopicRequest(topic string) TopicRequest {
	return TopicRequest{
		Topic:           topic,
		Language:        DefaultLanguage,
		IncludeNews:     true,
		MaxNewsArticles: DefaultNewsArticles,
		WritingStyle:    DefaultStyle,
	}
}

// Normalize trims the topic and fills a blank language or style with its
// default. MaxNewsArticles is left as given so an explicit zero fails
// Validate; start from NewTopicRequest for defaults.
func (r TopicRequest) Normalize() TopicRequest {
	r.Topic = strings.TrimSpace(r.Topic)
	if strings.TrimSpace(r.Language) == "" {
		r.Language = DefaultLanguage
	}
	if strings.TrimSpace(string(r.WritingStyle)) == "" {
		r.WritingStyle = DefaultStyle
	}
	return r
}

// Validate checks the request bounds. Call Normalize first.
func (r TopicRequest) Validate() error {
	n := utf8.RuneCountInString(r.Topic)
	if n < MinTopicLength || n > MaxTopicLength {
		return fmt.Errorf("topic must be between %d and %d characters, got %d", MinTopicLength, MaxTopicLength, n)
	}
	if r.MaxNewsArticles < MinNewsArticles || r.MaxNewsArticles > MaxNewsArticles {
		return fmt.Errorf("max_news_articles must be between %d and %d, got %d", MinNewsArticles, MaxNewsArticles, r.MaxNewsArticles)
	}
	return nil
}

// NewsSearchRequest is a direct news lookup, independent of post generation.
type NewsSearchRequest struct {
	Keywords   string `json:"keywords" yaml:"keywords"`
	Language   string `json:"language" yaml:"language"`
	Category   string `json:"category,omitempty" yaml:"category,omitempty"`
	MaxResults int    `json:"max_results" yaml:"max_results"`
}

// NewNewsSearchRequest returns a search for keywords with every other field
// at its default.
func NewNewsSearchRequest(keywords string) NewsSearchRequest {
	return NewsSearchRequest{
		Keywords:   keywords,
		Language:   DefaultLanguage,
		MaxResults: DefaultNewsArticles,
	}
}

// Normalize trims the keywords and fills a blank language with its default.
// MaxResults is left as given so an explicit zero fails Validate.
func (r NewsSearchRequest) Normalize() NewsSearchRequest {
	r.Keywords = strings.TrimSpace(r.Keywords)
	if strings.TrimSpace(r.Language) == "" {
		r.Language = DefaultLanguage
	}
	return r
}

// Validate checks the request bounds. Call Normalize first.
func (r NewsSearchRequest) Validate() error {
	if r.Keywords == "" {
		return fmt.Errorf("keywords are required")
	}
	if r.MaxResults < 1 || r.MaxResults > MaxNewsSearchResults {
		return fmt.Errorf("max_results must be between 1 and %d, got %d", MaxNewsSearchResults, r.MaxResults)
	}
	return nil
}

// NewsArticle is a news item normalized from a provider record. Every field
// is populated; missing provider fields carry the placeholder defaults.
type NewsArticle struct {
	Title       string   `json:"title" yaml:"title"`
	Description string   `json:"description" yaml:"description"`
	URL         string   `json:"url" yaml:"url"`
	Published   string   `json:"published" yaml:"published"`
	Category    []string `json:"category" yaml:"category"`
}

// HasDescription reports whether the article carries a real description
// rather than the placeholder.
func (a NewsArticle) HasDescription() bool {
	return a.Description != "" && a.Description != NoDescription
}

// GeneratedPost is the output of one pipeline run.
type GeneratedPost struct {
	Topic           string       `json:"topic" yaml:"topic"`
	Title           string       `json:"title" yaml:"title"`
	Content         string       `json:"content" yaml:"content"`
	MetaDescription string       `json:"meta_description" yaml:"meta_description"`
	NewsUsed        []string     `json:"news_used" yaml:"news_used"`
	GeneratedAt     time.Time    `json:"generated_at" yaml:"generated_at"`
	TokensUsed      int          `json:"tokens_used" yaml:"tokens_used"`
	WritingStyle    WritingStyle `json:"writing_style" yaml:"writing_style"`
}

// Markdown renders the post as a Markdown document with the meta
// description as a leading blockquote.
func (p GeneratedPost) Markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", p.Title)
	if p.MetaDescription != "" {
		fmt.Fprintf(&b, "> %s\n\n", p.MetaDescription)
	}
	b.WriteString(p.Content)
	b.WriteString("\n")
	if len(p.NewsUsed) > 0 {
		b.WriteString("\n---\n\nSources:\n\n")
		for _, t := range p.NewsUsed {
			fmt.Fprintf(&b, "- %s\n", t)
		}
	}
	return b.String()
}

// Service status values reported by health checks.
const (
	StatusOK            = "ok"
	StatusUnavailable   = "unavailable"
	StatusNotConfigured = "not_configured"

	HealthHealthy  = "healthy"
	HealthDegraded = "degraded"
)

// HealthReport summarizes the reachability of each external service.
type HealthReport struct {
	Status    string            `json:"status" yaml:"status"`
	Timestamp time.Time         `json:"timestamp" yaml:"timestamp"`
	Services  map[string]string `json:"services" yaml:"services"`
}

// ErrorResponse is the structured error body returned by the API surface.
type ErrorResponse struct {
	Detail    string    `json:"detail" yaml:"detail"`
	ErrorType string    `json:"error_type" yaml:"error_type"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
}
