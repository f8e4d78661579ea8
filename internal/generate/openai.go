// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package generate

import (
	"context"
	"errors"
	"net/http"

	openai "github.com/sashabaranov/go-openai"

	"github.com/AlexLyubovenko/ai-blog-generator/internal/failure"
	"github.com/AlexLyubovenko/ai-blog-generator/pkg/types"
)

// OpenAIBackend calls the OpenAI chat completions API.
type OpenAIBackend struct {
	client *openai.Client
	model  string
}

// NewOpenAIBackend returns a backend for cfg.Model. cfg.BaseURL, when set,
// replaces the default API root.
func NewOpenAIBackend(cfg types.AIConfig, httpClient *http.Client) *OpenAIBackend {
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	if httpClient != nil {
		oc.HTTPClient = httpClient
	}
	return &OpenAIBackend{
		client: openai.NewClientWithConfig(oc),
		model:  cfg.Model,
	}
}

// Complete sends one system+user chat completion.
func (b *OpenAIBackend) Complete(ctx context.Context, req CompletionRequest) (Completion, error) {
	resp, err := b.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: b.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.System},
			{Role: openai.ChatMessageRoleUser, Content: req.Prompt},
		},
		MaxTokens:        req.Profile.MaxTokens,
		Temperature:      req.Profile.Temperature,
		Stop:             req.Profile.Stop,
		PresencePenalty:  req.Profile.PresencePenalty,
		FrequencyPenalty: req.Profile.FrequencyPenalty,
	})
	if err != nil {
		return Completion{}, classifyOpenAI(err)
	}
	if len(resp.Choices) == 0 {
		return Completion{TotalTokens: resp.Usage.TotalTokens}, nil
	}
	return Completion{
		Text:        resp.Choices[0].Message.Content,
		TotalTokens: resp.Usage.TotalTokens,
	}, nil
}

// Ping lists the available models.
func (b *OpenAIBackend) Ping(ctx context.Context) error {
	if _, err := b.client.ListModels(ctx); err != nil {
		return classifyOpenAI(err)
	}
	return nil
}

// classifyOpenAI maps go-openai errors onto the failure taxonomy.
func classifyOpenAI(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return failure.Wrap(kindForStatus(apiErr.HTTPStatusCode), err, "OpenAI API error: %s", apiErr.Message)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return failure.Wrap(kindForStatus(reqErr.HTTPStatusCode), err, "OpenAI API returned HTTP %d", reqErr.HTTPStatusCode)
	}
	return classifyTransport("OpenAI", err)
}
