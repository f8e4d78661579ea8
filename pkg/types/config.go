// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by clients that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "blog-generator/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// NewsConfig holds settings for the news search client.
type NewsConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// APIKey authenticates against the Currents API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// BaseURL is the Currents API root (default "https://api.currentsapi.services/v1").
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`

	// MaxRetries bounds retries on HTTP 429 (default 2).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`

	// MaxArticles is the default article count for generation requests (default 5).
	MaxArticles int `json:"max_articles" yaml:"max_articles" mapstructure:"max_articles"`

	// Language is the default news search language (default "en").
	Language string `json:"language" yaml:"language" mapstructure:"language"`
}

// AIProvider identifies the language-model backend.
type AIProvider string

const (
	ProviderOpenAI AIProvider = "openai"
	ProviderGemini AIProvider = "gemini"
)

// AIConfig holds settings for the language-model backend.
type AIConfig struct {
	// Provider selects the backend: openai or gemini.
	Provider AIProvider `json:"provider" yaml:"provider" mapstructure:"provider"`

	// Model is the model identifier (e.g. "gpt-4-1106-preview").
	Model string `json:"model" yaml:"model" mapstructure:"model"`

	// APIKey is the OpenAI key.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// GeminiAPIKey is the Google AI Studio key, used when Provider is gemini.
	GeminiAPIKey string `json:"gemini_api_key,omitempty" yaml:"gemini_api_key,omitempty" mapstructure:"gemini_api_key"`

	// BaseURL overrides the provider's API root (empty uses the library default).
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty" mapstructure:"base_url"`

	// Timeout bounds each model call.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
}

// StageProfile holds the sampling parameters for one generation call.
type StageProfile struct {
	MaxTokens        int      `json:"max_tokens" yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature      float32  `json:"temperature" yaml:"temperature" mapstructure:"temperature"`
	Stop             []string `json:"stop,omitempty" yaml:"stop,omitempty" mapstructure:"stop"`
	PresencePenalty  float32  `json:"presence_penalty,omitempty" yaml:"presence_penalty,omitempty" mapstructure:"presence_penalty"`
	FrequencyPenalty float32  `json:"frequency_penalty,omitempty" yaml:"frequency_penalty,omitempty" mapstructure:"frequency_penalty"`
}

// GenerationConfig holds settings for the three-stage post generator.
type GenerationConfig struct {
	// OutputLanguage is the language the model is told to write in (default "English").
	OutputLanguage string `json:"output_language" yaml:"output_language" mapstructure:"output_language"`

	// Title, Meta, and Content are the per-stage sampling profiles.
	Title   StageProfile `json:"title" yaml:"title" mapstructure:"title"`
	Meta    StageProfile `json:"meta" yaml:"meta" mapstructure:"meta"`
	Content StageProfile `json:"content" yaml:"content" mapstructure:"content"`
}

// NotifyConfig holds settings for the Telegram notifier.
type NotifyConfig struct {
	// BotToken authenticates the Telegram bot.
	BotToken string `json:"bot_token,omitempty" yaml:"bot_token,omitempty" mapstructure:"bot_token"`

	// ChatID is a numeric chat id or an @channel username.
	ChatID string `json:"chat_id" yaml:"chat_id" mapstructure:"chat_id"`

	// APIEndpoint is the Bot API URL format (default tgbotapi.APIEndpoint).
	APIEndpoint string `json:"api_endpoint,omitempty" yaml:"api_endpoint,omitempty" mapstructure:"api_endpoint"`
}

// Configured reports whether both the token and the chat target are set.
func (c NotifyConfig) Configured() bool {
	return c.BotToken != "" && c.ChatID != ""
}

// ServerConfig holds settings for the HTTP API surface.
type ServerConfig struct {
	Host string `json:"host" yaml:"host" mapstructure:"host"`
	Port int    `json:"port" yaml:"port" mapstructure:"port"`

	// APIKey, when set, is required in the X-API-Key header.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// RequestTimeout bounds one /generate-post run. Zero derives it from
	// the news and model timeouts.
	RequestTimeout time.Duration `json:"request_timeout" yaml:"request_timeout" mapstructure:"request_timeout"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	// Level is a zerolog level name (default "info").
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Debug forces debug level.
	Debug bool `json:"debug" yaml:"debug" mapstructure:"debug"`
}

// Config groups all stage configurations. It is built once at process start
// and passed by value into each component constructor.
type Config struct {
	HTTP       HTTPConfig       `json:"http" yaml:"http" mapstructure:"http"`
	News       NewsConfig       `json:"news" yaml:"news" mapstructure:"news"`
	AI         AIConfig         `json:"ai" yaml:"ai" mapstructure:"ai"`
	Generation GenerationConfig `json:"generation" yaml:"generation" mapstructure:"generation"`
	Notify     NotifyConfig     `json:"notify" yaml:"notify" mapstructure:"notify"`
	Server     ServerConfig     `json:"server" yaml:"server" mapstructure:"server"`
	Log        LogConfig        `json:"log" yaml:"log" mapstructure:"log"`
}
