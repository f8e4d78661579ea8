// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package generate

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/AlexLyubovenko/ai-blog-generator/internal/failure"
	"github.com/AlexLyubovenko/ai-blog-generator/internal/httputil"
	"github.com/AlexLyubovenko/ai-blog-generator/pkg/types"
)

// NewBackend returns the backend selected by cfg.Provider. When the
// provider's API key is empty the returned backend fails every call with
// failure.Unauthorized and the Generator reports itself unconfigured.
// A nil httpClient is built from cfg.Timeout.
func NewBackend(ctx context.Context, cfg types.AIConfig, httpClient *http.Client) (Backend, error) {
	if httpClient == nil {
		httpClient = httputil.NewClient(types.HTTPConfig{Timeout: cfg.Timeout})
	}
	switch cfg.Provider {
	case types.ProviderOpenAI, "":
		if cfg.APIKey == "" {
			return unconfiguredBackend{provider: types.ProviderOpenAI}, nil
		}
		return NewOpenAIBackend(cfg, httpClient), nil
	case types.ProviderGemini:
		if cfg.GeminiAPIKey == "" {
			return unconfiguredBackend{provider: types.ProviderGemini}, nil
		}
		return NewGeminiBackend(ctx, cfg, httpClient)
	default:
		return nil, fmt.Errorf("unknown ai provider %q", cfg.Provider)
	}
}

// unconfiguredBackend stands in for a provider without credentials.
type unconfiguredBackend struct {
	provider types.AIProvider
}

func (b unconfiguredBackend) Complete(context.Context, CompletionRequest) (Completion, error) {
	return Completion{}, failure.New(failure.Unauthorized, "%s API key is not configured", b.provider)
}

func (b unconfiguredBackend) Ping(context.Context) error {
	return failure.New(failure.Unauthorized, "%s API key is not configured", b.provider)
}

// kindForStatus maps a provider HTTP status onto the failure taxonomy.
func kindForStatus(code int) failure.Kind {
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return failure.Unauthorized
	case code == http.StatusTooManyRequests:
		return failure.RateLimited
	case code == http.StatusBadRequest || code == http.StatusNotFound || code == http.StatusUnprocessableEntity:
		return failure.BadRequest
	case code == http.StatusGatewayTimeout:
		return failure.GatewayTimeout
	case code >= 500:
		return failure.ServiceUnavailable
	default:
		return failure.Internal
	}
}

// classifyTransport maps a failure that carries no provider status.
func classifyTransport(provider string, err error) *failure.Error {
	if httputil.IsTimeout(err) {
		return failure.Wrap(failure.GatewayTimeout, err, "%s request timed out", provider)
	}
	var ue *url.Error
	if errors.As(err, &ue) {
		return failure.Wrap(failure.ServiceUnavailable, err, "could not connect to %s", provider)
	}
	return failure.Wrap(failure.Internal, err, "%s request failed", provider)
}
