// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API keys and credentials from a directory of plain-text files.
// Each file in the directory represents one secret: the filename is the key name and the
// file contents (trimmed) are the value.
//
// Recognized key files are listed in Keys. Secrets act as fallbacks: a value
// already present in configuration or the environment wins.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// Key file names.
const (
	OpenAIAPIKey     = "openai-api-key"
	GeminiAPIKey     = "gemini-api-key"
	CurrentsAPIKey   = "currents-api-key"
	TelegramBotToken = "telegram-bot-token"
	TelegramChatID   = "telegram-chat-id"
	ServerAPIKey     = "server-api-key"
)

// Keys maps each recognized key file to the configuration key it fills.
var Keys = map[string]string{
	OpenAIAPIKey:     "ai.api_key",
	GeminiAPIKey:     "ai.gemini_api_key",
	CurrentsAPIKey:   "news.api_key",
	TelegramBotToken: "notify.bot_token",
	TelegramChatID:   "notify.chat_id",
	ServerAPIKey:     "server.api_key",
}

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory or missing files are not errors; Load returns an empty map.
// Unreadable files are logged as warnings but do not abort.
func Load(dir string, log zerolog.Logger) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			log.Warn().Err(err).Str("secret", name).Msg("could not read secret")
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// Lookup returns fallback when it is non-empty, otherwise the secret stored
// under key.
func Lookup(secrets map[string]string, key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	return secrets[key]
}
