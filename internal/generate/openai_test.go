// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package generate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlexLyubovenko/ai-blog-generator/internal/failure"
	"github.com/AlexLyubovenko/ai-blog-generator/pkg/types"
)

func openAIServer(t *testing.T, handler http.HandlerFunc) *OpenAIBackend {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	return NewOpenAIBackend(types.AIConfig{
		APIKey:  "sk-test",
		Model:   "gpt-test",
		BaseURL: ts.URL + "/v1",
	}, ts.Client())
}

const completionBody = `{
	"id": "chatcmpl-1",
	"object": "chat.completion",
	"model": "gpt-test",
	"choices": [{"index": 0, "message": {"role": "assistant", "content": "Generated text"}, "finish_reason": "stop"}],
	"usage": {"prompt_tokens": 20, "completion_tokens": 5, "total_tokens": 25}
}`

func TestOpenAIComplete(t *testing.T) {
	var body map[string]any
	var auth, path string
	b := openAIServer(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		auth = r.Header.Get("Authorization")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, completionBody)
	})

	c, err := b.Complete(context.Background(), CompletionRequest{
		System: "sys",
		Prompt: "user",
		Profile: types.StageProfile{
			MaxTokens: 1500, Temperature: 0.7, Stop: []string{"\n"},
			PresencePenalty: 0.6, FrequencyPenalty: 0.6,
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "Generated text", c.Text)
	assert.Equal(t, 25, c.TotalTokens)

	assert.Equal(t, "/v1/chat/completions", path)
	assert.Equal(t, "Bearer sk-test", auth)
	assert.Equal(t, "gpt-test", body["model"])
	assert.EqualValues(t, 1500, body["max_tokens"])
	assert.InDelta(t, 0.7, body["temperature"], 1e-6)
	assert.InDelta(t, 0.6, body["presence_penalty"], 1e-6)
	assert.InDelta(t, 0.6, body["frequency_penalty"], 1e-6)
	assert.Equal(t, []any{"\n"}, body["stop"])

	msgs, ok := body["messages"].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].(map[string]any)["role"])
	assert.Equal(t, "sys", msgs[0].(map[string]any)["content"])
	assert.Equal(t, "user", msgs[1].(map[string]any)["role"])
	assert.Equal(t, "user", msgs[1].(map[string]any)["content"])
}

func TestOpenAICompleteNoChoices(t *testing.T) {
	b := openAIServer(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"choices": [], "usage": {"total_tokens": 3}}`)
	})

	c, err := b.Complete(context.Background(), CompletionRequest{Prompt: "x"})
	require.NoError(t, err)
	assert.Equal(t, "", c.Text)
}

func TestOpenAIErrorMapping(t *testing.T) {
	tests := []struct {
		status int
		want   failure.Kind
	}{
		{http.StatusUnauthorized, failure.Unauthorized},
		{http.StatusForbidden, failure.Unauthorized},
		{http.StatusTooManyRequests, failure.RateLimited},
		{http.StatusBadRequest, failure.BadRequest},
		{http.StatusNotFound, failure.BadRequest},
		{http.StatusInternalServerError, failure.ServiceUnavailable},
		{http.StatusServiceUnavailable, failure.ServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			b := openAIServer(t, func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				fmt.Fprint(w, `{"error": {"message": "provider says no", "type": "error", "code": "x"}}`)
			})

			_, err := b.Complete(context.Background(), CompletionRequest{Prompt: "x"})
			require.Error(t, err)
			assert.Equal(t, tt.want, failure.KindOf(err))
			assert.Contains(t, failure.DetailOf(err), "provider says no")
		})
	}
}

func TestOpenAIUnparseableErrorBody(t *testing.T) {
	b := openAIServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		fmt.Fprint(w, "<html>bad gateway</html>")
	})

	_, err := b.Complete(context.Background(), CompletionRequest{Prompt: "x"})
	require.Error(t, err)
	assert.Equal(t, failure.ServiceUnavailable, failure.KindOf(err))
}

func TestOpenAITimeout(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer ts.Close()

	b := NewOpenAIBackend(types.AIConfig{APIKey: "k", BaseURL: ts.URL + "/v1"}, &http.Client{Timeout: 30 * time.Millisecond})
	_, err := b.Complete(context.Background(), CompletionRequest{Prompt: "x"})
	require.Error(t, err)
	assert.Equal(t, failure.GatewayTimeout, failure.KindOf(err))
}

func TestOpenAIConnectionRefused(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	base := ts.URL
	ts.Close()

	b := NewOpenAIBackend(types.AIConfig{APIKey: "k", BaseURL: base + "/v1"}, &http.Client{Timeout: time.Second})
	_, err := b.Complete(context.Background(), CompletionRequest{Prompt: "x"})
	require.Error(t, err)
	assert.Equal(t, failure.ServiceUnavailable, failure.KindOf(err))
}

func TestOpenAIPing(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		var path string
		b := openAIServer(t, func(w http.ResponseWriter, r *http.Request) {
			path = r.URL.Path
			fmt.Fprint(w, `{"object": "list", "data": [{"id": "gpt-test", "object": "model"}]}`)
		})
		require.NoError(t, b.Ping(context.Background()))
		assert.Equal(t, "/v1/models", path)
	})

	t.Run("unauthorized", func(t *testing.T) {
		b := openAIServer(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"error": {"message": "bad key"}}`)
		})
		err := b.Ping(context.Background())
		require.Error(t, err)
		assert.Equal(t, failure.Unauthorized, failure.KindOf(err))
	})
}

func TestKindForStatus(t *testing.T) {
	assert.Equal(t, failure.GatewayTimeout, kindForStatus(http.StatusGatewayTimeout))
	assert.Equal(t, failure.BadRequest, kindForStatus(http.StatusUnprocessableEntity))
	assert.Equal(t, failure.Internal, kindForStatus(http.StatusTeapot))
}
