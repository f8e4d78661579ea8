// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package config builds the process-wide types.Config from viper state
// (config file, BLOG_GENERATOR_* environment, legacy environment names) and
// the secrets directory. The result is constructed once at startup and
// handed to each component by value.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/AlexLyubovenko/ai-blog-generator/internal/secrets"
	"github.com/AlexLyubovenko/ai-blog-generator/pkg/types"
)

// EnvPrefix is prepended to every configuration key when read from the environment.
const EnvPrefix = "BLOG_GENERATOR"

// Default values.
const (
	DefaultUserAgent      = "blog-generator/0.1"
	DefaultHTTPTimeout    = 30 * time.Second
	DefaultNewsBaseURL    = "https://api.currentsapi.services/v1"
	DefaultNewsTimeout    = 15 * time.Second
	DefaultNewsRetries    = 2
	DefaultModel          = "gpt-4-1106-preview"
	DefaultGeminiModel    = "gemini-2.0-flash"
	DefaultAITimeout      = 120 * time.Second
	DefaultOutputLanguage = "English"
	DefaultHost           = "0.0.0.0"
	DefaultPort           = 8000
	DefaultLogLevel       = "info"
)

// legacyEnv maps configuration keys to the unprefixed environment variable
// names used by earlier deployments.
var legacyEnv = map[string]string{
	"ai.api_key":        "OPENAI_API_KEY",
	"ai.gemini_api_key": "GEMINI_API_KEY",
	"ai.model":          "DEFAULT_OPENAI_MODEL",
	"news.api_key":      "CURRENTS_API_KEY",
	"news.max_articles": "MAX_NEWS_ARTICLES",
	"news.language":     "DEFAULT_LANGUAGE",
	"notify.bot_token":  "TELEGRAM_BOT_TOKEN",
	"notify.chat_id":    "TELEGRAM_CHAT_ID",
	"server.host":       "HOST",
	"server.port":       "PORT",
	"log.debug":         "DEBUG",
}

// defaults lists every configuration key so viper can resolve it from the
// environment during Unmarshal.
var defaults = map[string]any{
	"http.timeout":    DefaultHTTPTimeout,
	"http.user_agent": DefaultUserAgent,

	"news.api_key":      "",
	"news.base_url":     DefaultNewsBaseURL,
	"news.timeout":      DefaultNewsTimeout,
	"news.user_agent":   "",
	"news.max_retries":  DefaultNewsRetries,
	"news.max_articles": types.DefaultNewsArticles,
	"news.language":     types.DefaultLanguage,

	"ai.provider":       string(types.ProviderOpenAI),
	"ai.model":          "",
	"ai.api_key":        "",
	"ai.gemini_api_key": "",
	"ai.base_url":       "",
	"ai.timeout":        DefaultAITimeout,

	"generation.output_language":           DefaultOutputLanguage,
	"generation.title.max_tokens":          60,
	"generation.title.temperature":         0.7,
	"generation.title.stop":                []string{"\n"},
	"generation.meta.max_tokens":           100,
	"generation.meta.temperature":          0.5,
	"generation.content.max_tokens":        1500,
	"generation.content.temperature":       0.7,
	"generation.content.presence_penalty":  0.6,
	"generation.content.frequency_penalty": 0.6,

	"notify.bot_token":    "",
	"notify.chat_id":      "",
	"notify.api_endpoint": "",

	"server.host":            DefaultHost,
	"server.port":            DefaultPort,
	"server.api_key":         "",
	"server.request_timeout": time.Duration(0),

	"log.level": DefaultLogLevel,
	"log.debug": false,
}

// Bind registers defaults and environment bindings on v. Call it before
// reading the config file so file values override defaults and environment
// values override both.
func Bind(v *viper.Viper) error {
	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, legacy := range legacyEnv {
		prefixed := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, legacy); err != nil {
			return fmt.Errorf("binding %s: %w", key, err)
		}
	}
	return nil
}

// Load resolves the configuration from v, filling empty credentials from
// secrets, and validates it.
func Load(v *viper.Viper, s map[string]string) (types.Config, error) {
	for file, key := range secrets.Keys {
		if v.GetString(key) == "" {
			if val := secrets.Lookup(s, file, ""); val != "" {
				v.Set(key, val)
			}
		}
	}

	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("decoding configuration: %w", err)
	}

	applyDefaults(&cfg)

	if err := Validate(cfg); err != nil {
		return types.Config{}, err
	}
	return cfg, nil
}

// applyDefaults fills derived values that depend on other settings.
func applyDefaults(cfg *types.Config) {
	if cfg.News.Timeout == 0 {
		cfg.News.Timeout = cfg.HTTP.Timeout
	}
	if cfg.News.UserAgent == "" {
		cfg.News.UserAgent = cfg.HTTP.UserAgent
	}
	if cfg.AI.Model == "" {
		if cfg.AI.Provider == types.ProviderGemini {
			cfg.AI.Model = DefaultGeminiModel
		} else {
			cfg.AI.Model = DefaultModel
		}
	}
	if cfg.Server.RequestTimeout <= 0 {
		cfg.Server.RequestTimeout = RunBudget(*cfg)
	}
	if cfg.Log.Debug {
		cfg.Log.Level = zerolog.DebugLevel.String()
	}
}

// Validate checks value ranges. Missing credentials are not errors: each
// component reports its own unconfigured state.
func Validate(cfg types.Config) error {
	switch cfg.AI.Provider {
	case types.ProviderOpenAI, types.ProviderGemini:
	default:
		return fmt.Errorf("ai.provider must be %q or %q, got %q", types.ProviderOpenAI, types.ProviderGemini, cfg.AI.Provider)
	}
	if cfg.News.MaxArticles < types.MinNewsArticles || cfg.News.MaxArticles > types.MaxNewsArticles {
		return fmt.Errorf("news.max_articles must be between %d and %d, got %d", types.MinNewsArticles, types.MaxNewsArticles, cfg.News.MaxArticles)
	}
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", cfg.Server.Port)
	}
	if _, err := zerolog.ParseLevel(cfg.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	for name, p := range map[string]types.StageProfile{
		"title":   cfg.Generation.Title,
		"meta":    cfg.Generation.Meta,
		"content": cfg.Generation.Content,
	} {
		if p.MaxTokens <= 0 {
			return fmt.Errorf("generation.%s.max_tokens must be positive", name)
		}
		if p.Temperature < 0 || p.Temperature > 2 {
			return fmt.Errorf("generation.%s.temperature must be within [0,2]", name)
		}
	}
	return nil
}

// RunBudget is the longest a single generation run can take with cfg: the
// news lookup with its retries followed by three model calls.
func RunBudget(cfg types.Config) time.Duration {
	newsTimeout := cfg.News.Timeout
	if newsTimeout <= 0 {
		newsTimeout = cfg.HTTP.Timeout
	}
	retries := max(cfg.News.MaxRetries, 0)
	return newsTimeout*time.Duration(retries+1) + 3*cfg.AI.Timeout
}

const redacted = "********"

// Redacted returns a copy of cfg with every credential masked.
func Redacted(cfg types.Config) types.Config {
	mask := func(s string) string {
		if s == "" {
			return ""
		}
		return redacted
	}
	cfg.News.APIKey = mask(cfg.News.APIKey)
	cfg.AI.APIKey = mask(cfg.AI.APIKey)
	cfg.AI.GeminiAPIKey = mask(cfg.AI.GeminiAPIKey)
	cfg.Notify.BotToken = mask(cfg.Notify.BotToken)
	cfg.Server.APIKey = mask(cfg.Server.APIKey)
	return cfg
}
