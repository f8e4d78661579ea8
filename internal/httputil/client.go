// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/AlexLyubovenko/ai-blog-generator/pkg/types"
)

// NewClient returns an *http.Client with the configured timeout that stamps
// every request with the configured User-Agent.
func NewClient(cfg types.HTTPConfig) *http.Client {
	var rt http.RoundTripper = http.DefaultTransport
	if cfg.UserAgent != "" {
		rt = &userAgentTransport{base: rt, userAgent: cfg.UserAgent}
	}
	return &http.Client{
		Timeout:   cfg.Timeout,
		Transport: rt,
	}
}

type userAgentTransport struct {
	base      http.RoundTripper
	userAgent string
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") != "" {
		return t.base.RoundTrip(req)
	}
	r := req.Clone(req.Context())
	r.Header.Set("User-Agent", t.userAgent)
	return t.base.RoundTrip(r)
}

// IsTimeout reports whether err stems from a client timeout or an expired
// context deadline.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
