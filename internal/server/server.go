// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes the pipeline over HTTP with JSON request and
// response bodies. Failures are written as types.ErrorResponse with the
// status code of their failure kind.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/AlexLyubovenko/ai-blog-generator/internal/news"
	"github.com/AlexLyubovenko/ai-blog-generator/internal/pipeline"
	"github.com/AlexLyubovenko/ai-blog-generator/pkg/types"
)

// Runner generates posts and reports service health.
type Runner interface {
	Run(ctx context.Context, req types.TopicRequest) (*pipeline.Result, error)
	Health(ctx context.Context) types.HealthReport
}

// NewsSource answers direct news lookups.
type NewsSource interface {
	Search(ctx context.Context, q news.Query) ([]types.NewsArticle, error)
	Categories() []string
}

// Messenger sends messages to the configured channel.
type Messenger interface {
	SendMessage(ctx context.Context, text, title string) error
	TestConnection(ctx context.Context) bool
}

const (
	readHeaderTimeout = 5 * time.Second
	readTimeout       = 10 * time.Second
	idleTimeout       = 120 * time.Second
	shutdownTimeout   = 30 * time.Second
	maxBodyBytes      = 1 << 20

	// defaultRequestTimeout applies when the config sets none.
	defaultRequestTimeout = 4 * time.Minute

	// writeGrace is the room left after a run's deadline to write the
	// error response before the connection's write deadline.
	writeGrace = 30 * time.Second
)

// Server holds the HTTP handlers and their dependencies.
type Server struct {
	runner    Runner
	news      NewsSource
	messenger Messenger
	cfg       types.ServerConfig
	version   string
	log       zerolog.Logger
	defaults  types.TopicRequest

	requestTimeout time.Duration
}

// Option configures a Server.
type Option func(*Server)

// WithRequestDefaults sets the language and article count applied when a
// /generate-post body omits them.
func WithRequestDefaults(language string, maxArticles int) Option {
	return func(s *Server) {
		if language != "" {
			s.defaults.Language = language
		}
		if maxArticles > 0 {
			s.defaults.MaxNewsArticles = maxArticles
		}
	}
}

// New returns a Server. version is reported by the root endpoint.
func New(runner Runner, ns NewsSource, m Messenger, cfg types.ServerConfig, version string, log zerolog.Logger, opts ...Option) *Server {
	s := &Server{
		runner:    runner,
		news:      ns,
		messenger: m,
		cfg:       cfg,
		version:   version,
		log:       log.With().Str("service", "blog-generator-api").Logger(),
		defaults:  types.NewTopicRequest(""),

		requestTimeout: cfg.RequestTimeout,
	}
	if s.requestTimeout <= 0 {
		s.requestTimeout = defaultRequestTimeout
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the routed handler wrapped in the logging and
// authentication middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /generate-post", s.handleGeneratePost)
	mux.HandleFunc("POST /news/search", s.handleNewsSearch)
	mux.HandleFunc("GET /news/categories", s.handleNewsCategories)
	mux.HandleFunc("POST /telegram/send", s.handleTelegramSend)
	mux.HandleFunc("GET /telegram/test", s.handleTelegramTest)

	var h http.Handler = mux
	if s.cfg.APIKey != "" {
		h = apiKeyMiddleware(s.cfg.APIKey)(h)
		s.log.Info().Msg("API key authentication enabled")
	}

	h = hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("HTTP request")
	})(h)
	h = hlog.RequestIDHandler("req_id", "Request-Id")(h)
	h = hlog.UserAgentHandler("user_agent")(h)
	h = hlog.RemoteAddrHandler("remote_addr")(h)
	h = hlog.URLHandler("url")(h)
	h = hlog.MethodHandler("method")(h)
	h = hlog.NewHandler(s.log)(h)
	return h
}

// WriteTimeout is the connection write deadline. It exceeds the run
// deadline so a timed-out run still gets its error response.
func (s *Server) WriteTimeout() time.Duration {
	return s.requestTimeout + writeGrace
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.Addr(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      s.WriteTimeout(),
		IdleTimeout:       idleTimeout,
		BaseContext:       func(net.Listener) context.Context { return s.log.WithContext(context.Background()) },
	}

	serverErr := make(chan error, 1)
	go func() {
		s.log.Info().Str("address", httpServer.Addr).Dur("request_timeout", s.requestTimeout).Msg("API server starting")
		err := httpServer.ListenAndServe()
		if !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
		s.log.Info().Msg("shutdown requested")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		s.log.Error().Err(err).Msg("HTTP server shutdown error")
		if err := httpServer.Close(); err != nil {
			s.log.Error().Err(err).Msg("HTTP server force close error")
		}
	}
	if err := <-serverErr; err != nil {
		return err
	}
	s.log.Info().Msg("server stopped")
	return nil
}

// apiKeyMiddleware requires the X-API-Key header on every route except the
// health check.
func apiKeyMiddleware(apiKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/health" {
				next.ServeHTTP(w, r)
				return
			}
			switch r.Header.Get("X-API-Key") {
			case "":
				writeUnauthorized(w, "API key required")
			case apiKey:
				next.ServeHTTP(w, r)
			default:
				writeUnauthorized(w, "Invalid API key")
			}
		})
	}
}
