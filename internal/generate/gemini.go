// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package generate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/AlexLyubovenko/ai-blog-generator/internal/failure"
	"github.com/AlexLyubovenko/ai-blog-generator/pkg/types"
)

// GeminiBackend calls the Google Gemini generateContent API. Presence and
// frequency penalties are not forwarded.
type GeminiBackend struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

// NewGeminiBackend creates a Gemini client authenticated with cfg.GeminiAPIKey.
// cfg.BaseURL, when set, replaces the default API root. Requests go through
// httpClient's transport; nil uses http.DefaultTransport. Call Close when done.
func NewGeminiBackend(ctx context.Context, cfg types.AIConfig, httpClient *http.Client) (*GeminiBackend, error) {
	hc := &http.Client{Transport: &geminiTransport{base: http.DefaultTransport, apiKey: cfg.GeminiAPIKey}}
	if httpClient != nil {
		hc.Timeout = httpClient.Timeout
		if httpClient.Transport != nil {
			hc.Transport = &geminiTransport{base: httpClient.Transport, apiKey: cfg.GeminiAPIKey}
		}
	}

	// The key is also passed as an option for the cache client, which is
	// built without the HTTP client.
	opts := []option.ClientOption{option.WithAPIKey(cfg.GeminiAPIKey), option.WithHTTPClient(hc)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithEndpoint(cfg.BaseURL))
	}
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	return &GeminiBackend{client: client, model: cfg.Model, timeout: cfg.Timeout}, nil
}

// Close releases the underlying client.
func (b *GeminiBackend) Close() error {
	return b.client.Close()
}

// Complete runs one generateContent call with the system prompt as the
// model's system instruction.
func (b *GeminiBackend) Complete(ctx context.Context, req CompletionRequest) (Completion, error) {
	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}

	model := b.client.GenerativeModel(b.model)
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(req.System)}}
	model.SetMaxOutputTokens(int32(req.Profile.MaxTokens))
	model.SetTemperature(req.Profile.Temperature)
	if len(req.Profile.Stop) > 0 {
		model.StopSequences = req.Profile.Stop
	}

	resp, err := model.GenerateContent(ctx, genai.Text(req.Prompt))
	if err != nil {
		return Completion{}, classifyGemini(err)
	}

	var c Completion
	if resp.UsageMetadata != nil {
		c.TotalTokens = int(resp.UsageMetadata.TotalTokenCount)
	}
	c.Text = responseText(resp)
	return c, nil
}

// Ping fetches the first entry of the model listing.
func (b *GeminiBackend) Ping(ctx context.Context) error {
	it := b.client.ListModels(ctx)
	if _, err := it.Next(); err != nil && !errors.Is(err, iterator.Done) {
		return classifyGemini(err)
	}
	return nil
}

// responseText concatenates the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return b.String()
}

// geminiStatusError is a non-2xx response from the Gemini API.
type geminiStatusError struct {
	Code    int
	Message string
}

func (e *geminiStatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("gemini: HTTP %d", e.Code)
	}
	return fmt.Sprintf("gemini: HTTP %d: %s", e.Code, e.Message)
}

// geminiTransport sets the API key header and turns every non-2xx response
// into a *geminiStatusError. The generated REST client only retries
// *googleapi.Error values, so each call stays a single round trip.
type geminiTransport struct {
	base   http.RoundTripper
	apiKey string
}

func (t *geminiTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	r = r.Clone(r.Context())
	r.Header.Set("x-goog-api-key", t.apiKey)

	resp, err := t.base.RoundTrip(r)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var eb struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	se := &geminiStatusError{Code: resp.StatusCode}
	if json.Unmarshal(body, &eb) == nil {
		se.Message = eb.Error.Message
	}
	return nil, se
}

// classifyGemini maps genai and Gemini API errors onto the failure taxonomy.
func classifyGemini(err error) error {
	var blocked *genai.BlockedError
	if errors.As(err, &blocked) {
		return failure.Wrap(failure.BadRequest, err, "Gemini blocked the request")
	}
	var se *geminiStatusError
	if errors.As(err, &se) {
		return failure.Wrap(kindForStatus(se.Code), err, "%s", geminiDetail(se.Code, se.Message))
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return failure.Wrap(kindForStatus(gerr.Code), err, "%s", geminiDetail(gerr.Code, gerr.Message))
	}
	return classifyTransport("Gemini", err)
}

func geminiDetail(code int, message string) string {
	if message == "" {
		return fmt.Sprintf("Gemini API returned HTTP %d", code)
	}
	return "Gemini API error: " + message
}
