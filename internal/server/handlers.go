// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/AlexLyubovenko/ai-blog-generator/internal/failure"
	"github.com/AlexLyubovenko/ai-blog-generator/internal/news"
	"github.com/AlexLyubovenko/ai-blog-generator/pkg/types"
)

// Notification status header set on /generate-post when notify was requested.
const notificationHeader = "X-Notification-Status"

type rootResponse struct {
	Message   string   `json:"message"`
	Version   string   `json:"version"`
	Endpoints []string `json:"endpoints"`
}

type articlesResponse struct {
	Articles []types.NewsArticle `json:"articles"`
	Count    int                 `json:"count"`
}

type categoriesResponse struct {
	Categories []string `json:"categories"`
}

type sendRequest struct {
	Text  string `json:"text"`
	Title string `json:"title"`
}

type sendResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type telegramTestResponse struct {
	TelegramConnected bool `json:"telegram_connected"`
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, rootResponse{
		Message: "AI Blog Generator API",
		Version: s.version,
		Endpoints: []string{
			"POST /generate-post",
			"POST /news/search",
			"GET /news/categories",
			"POST /telegram/send",
			"GET /telegram/test",
			"GET /health",
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.runner.Health(r.Context()))
}

func (s *Server) handleGeneratePost(w http.ResponseWriter, r *http.Request) {
	req := s.defaults
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.requestTimeout)
	defer cancel()

	res, err := s.runner.Run(ctx, req)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) && failure.KindOf(err) != failure.GatewayTimeout {
			err = failure.Wrap(failure.GatewayTimeout, err, "post generation exceeded %s", s.requestTimeout)
		}
		writeError(w, r, err)
		return
	}

	if req.Notify {
		status := "sent"
		if !res.Notified {
			status = "failed"
		}
		w.Header().Set(notificationHeader, status)
	}
	hlog.FromRequest(r).Info().Str("run_id", res.RunID).Str("title", res.Post.Title).Msg("post generated")
	writeJSON(w, r, http.StatusOK, res.Post)
}

func (s *Server) handleNewsSearch(w http.ResponseWriter, r *http.Request) {
	req := types.NewNewsSearchRequest("")
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	req = req.Normalize()
	if err := req.Validate(); err != nil {
		writeError(w, r, failure.New(failure.BadRequest, "%v", err))
		return
	}

	articles, err := s.news.Search(r.Context(), news.Query{
		Keywords:   req.Keywords,
		Language:   req.Language,
		Category:   req.Category,
		MaxResults: req.MaxResults,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, articlesResponse{Articles: articles, Count: len(articles)})
}

func (s *Server) handleNewsCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, categoriesResponse{Categories: s.news.Categories()})
}

func (s *Server) handleTelegramSend(w http.ResponseWriter, r *http.Request) {
	var req sendRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, r, failure.New(failure.BadRequest, "text is required"))
		return
	}

	if err := s.messenger.SendMessage(r.Context(), req.Text, req.Title); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, sendResponse{Status: "success", Message: "message sent to Telegram"})
}

func (s *Server) handleTelegramTest(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, telegramTestResponse{TelegramConnected: s.messenger.TestConnection(r.Context())})
}

// decodeBody reads a JSON body into v. Fields absent from the body keep
// the values already in v.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return failure.Wrap(failure.BadRequest, err, "request body exceeds %d bytes", maxBodyBytes)
		}
		return failure.Wrap(failure.BadRequest, err, "invalid JSON body")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("writing response")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := failure.KindOf(err)
	status := kind.HTTPStatus()
	level := zerolog.WarnLevel
	if status >= http.StatusInternalServerError {
		level = zerolog.ErrorLevel
	}
	hlog.FromRequest(r).WithLevel(level).Err(err).Str("error_type", kind.String()).Int("status", status).Msg("request failed")

	writeJSON(w, r, status, types.ErrorResponse{
		Detail:    failure.DetailOf(err),
		ErrorType: kind.String(),
		Timestamp: time.Now().UTC(),
	})
}

func writeUnauthorized(w http.ResponseWriter, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(types.ErrorResponse{
		Detail:    detail,
		ErrorType: failure.Unauthorized.String(),
		Timestamp: time.Now().UTC(),
	})
}
