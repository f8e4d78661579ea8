// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package notify delivers finished posts to a Telegram chat through the Bot
// API. The bot handle is created on first use, since creating it performs a
// getMe round trip, and is reused afterwards.
package notify

import (
	"context"
	"errors"
	"html"
	"net/http"
	"strconv"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/AlexLyubovenko/ai-blog-generator/internal/failure"
	"github.com/AlexLyubovenko/ai-blog-generator/pkg/types"
)

// Notifier sends messages to one configured chat. It is safe for concurrent use.
type Notifier struct {
	cfg    types.NotifyConfig
	client *http.Client
	log    zerolog.Logger

	mu  sync.Mutex
	bot *tgbotapi.BotAPI
}

// New returns a Notifier for cfg. A nil httpClient uses http.DefaultClient.
func New(cfg types.NotifyConfig, httpClient *http.Client, log zerolog.Logger) *Notifier {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if cfg.APIEndpoint == "" {
		cfg.APIEndpoint = tgbotapi.APIEndpoint
	}
	return &Notifier{
		cfg:    cfg,
		client: httpClient,
		log:    log.With().Str("component", "notify").Logger(),
	}
}

// Configured reports whether both a bot token and a chat target are set.
func (n *Notifier) Configured() bool { return n.cfg.Configured() }

// FormatMessage prefixes text with a bold, HTML-escaped title when title is
// non-empty.
func FormatMessage(text, title string) string {
	if title == "" {
		return text
	}
	return "<b>" + html.EscapeString(title) + "</b>\n\n" + text
}

// SendMessage sends one HTML-formatted message to the configured chat.
// Every failure is classified as failure.Internal.
func (n *Notifier) SendMessage(ctx context.Context, text, title string) error {
	if !n.Configured() {
		return failure.New(failure.Internal, "notifier not configured")
	}
	if err := ctx.Err(); err != nil {
		return failure.Wrap(failure.Internal, err, "sending telegram message")
	}

	bot, err := n.botAPI()
	if err != nil {
		return classify(err)
	}

	msg := n.newMessage(FormatMessage(text, title))
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := bot.Send(msg); err != nil {
		n.log.Error().Err(err).Str("title", title).Msg("telegram send failed")
		return classify(err)
	}

	n.log.Info().Str("title", title).Str("chat", n.cfg.ChatID).Msg("message sent to telegram")
	return nil
}

// TestConnection resolves the bot identity and the configured chat. It
// returns true only when both succeed and never returns an error.
func (n *Notifier) TestConnection(ctx context.Context) bool {
	if !n.Configured() || ctx.Err() != nil {
		return false
	}
	bot, err := n.botAPI()
	if err != nil {
		n.log.Debug().Err(err).Msg("telegram connection test failed")
		return false
	}
	if _, err := bot.GetMe(); err != nil {
		n.log.Debug().Err(err).Msg("telegram getMe failed")
		return false
	}
	if _, err := bot.GetChat(tgbotapi.ChatInfoConfig{ChatConfig: n.chatConfig()}); err != nil {
		n.log.Debug().Err(err).Msg("telegram getChat failed")
		return false
	}
	return true
}

func (n *Notifier) botAPI() (*tgbotapi.BotAPI, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.bot != nil {
		return n.bot, nil
	}
	bot, err := tgbotapi.NewBotAPIWithClient(n.cfg.BotToken, n.cfg.APIEndpoint, n.client)
	if err != nil {
		return nil, err
	}
	n.bot = bot
	return bot, nil
}

// newMessage addresses text to a numeric chat id or a channel username.
func (n *Notifier) newMessage(text string) tgbotapi.MessageConfig {
	if id, ok := n.chatID(); ok {
		return tgbotapi.NewMessage(id, text)
	}
	return tgbotapi.NewMessageToChannel(n.channelName(), text)
}

func (n *Notifier) chatConfig() tgbotapi.ChatConfig {
	if id, ok := n.chatID(); ok {
		return tgbotapi.ChatConfig{ChatID: id}
	}
	return tgbotapi.ChatConfig{SuperGroupUsername: n.channelName()}
}

func (n *Notifier) chatID() (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(n.cfg.ChatID), 10, 64)
	return id, err == nil
}

func (n *Notifier) channelName() string {
	name := strings.TrimSpace(n.cfg.ChatID)
	if !strings.HasPrefix(name, "@") {
		name = "@" + name
	}
	return name
}

// classify maps a Bot API failure onto failure.Internal, keeping the
// provider's description as the detail.
func classify(err error) error {
	var tgErr *tgbotapi.Error
	if errors.As(err, &tgErr) {
		return failure.Wrap(failure.Internal, err, "telegram error: %s", tgErr.Message)
	}
	return failure.Wrap(failure.Internal, err, "sending telegram message")
}
