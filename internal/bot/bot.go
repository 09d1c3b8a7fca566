// Package bot runs the companion Telegram bot: it opens the mini-app, saves
// links sent to it and delivers renewal reminders.
package bot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/MrSnakeDoc/yodda/internal/domain"
	"github.com/MrSnakeDoc/yodda/internal/logger"
	"github.com/MrSnakeDoc/yodda/internal/store"
)

// pollTimeout is the long-polling timeout in seconds.
const pollTimeout = 60

// ErrNoNotifyChat is returned by Notify when no chat is configured.
var ErrNoNotifyChat = errors.New("no notification chat configured")

// API is the part of *tgbotapi.BotAPI the bot uses.
type API interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	MakeRequest(endpoint string, params tgbotapi.Params) (*tgbotapi.APIResponse, error)
}

// LinkEnricher queues background previews for saved links.
type LinkEnricher interface {
	Schedule(linkID, url string)
}

type Options struct {
	WebAppURL    string
	NotifyChatID int64
}

type Bot struct {
	api          API
	links        *store.LinkStore
	enricher     LinkEnricher
	webAppURL    string
	notifyChatID int64
	logger       logger.Logger
}

// New authenticates against the Bot API with token.
func New(token string, opts Options, links *store.LinkStore, enricher LinkEnricher, log logger.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to authenticate telegram bot: %w", err)
	}
	log.Info("telegram bot authenticated", logger.String("username", api.Self.UserName))
	return NewWithAPI(api, opts, links, enricher, log), nil
}

// NewWithAPI builds a bot over an existing API client. enricher may be nil.
func NewWithAPI(api API, opts Options, links *store.LinkStore, enricher LinkEnricher, log logger.Logger) *Bot {
	return &Bot{
		api:          api,
		links:        links,
		enricher:     enricher,
		webAppURL:    opts.WebAppURL,
		notifyChatID: opts.NotifyChatID,
		logger:       log.With(logger.String("component", "bot")),
	}
}

// Run long-polls for updates until ctx is cancelled. Handling errors are
// logged and never stop the loop.
func (b *Bot) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = pollTimeout
	updates := b.api.GetUpdatesChan(u)

	b.logger.Info("bot polling started")
	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.logger.Info("bot polling stopped")
			return
		case update, ok := <-updates:
			if !ok {
				b.logger.Warn("bot update channel closed")
				return
			}
			b.handle(update)
		}
	}
}

func (b *Bot) handle(update tgbotapi.Update) {
	msg := update.Message
	if msg == nil {
		return
	}

	var err error
	switch {
	case msg.IsCommand() && msg.Command() == "start":
		err = b.sendWebAppButton(msg.Chat.ID, "Welcome! Open the app to manage your links and subscriptions.")
	case msg.IsCommand() && msg.Command() == "help":
		err = b.reply(msg.Chat.ID, "Send me a link to save it, or use /start to open the app.")
	case msg.IsCommand():
		err = b.reply(msg.Chat.ID, "Unknown command. Try /start.")
	default:
		err = b.handleText(msg)
	}

	if err != nil {
		b.logger.Error("failed to handle telegram update",
			logger.Int("update_id", update.UpdateID),
			logger.Int64("chat_id", msg.Chat.ID),
			logger.Error(err))
	}
}

// handleText saves the first link found in the message into the default folder.
func (b *Bot) handleText(msg *tgbotapi.Message) error {
	raw := ExtractURL(msg.Text, msg.Entities)
	if raw == "" {
		b.logger.Debug("message without link ignored", logger.Int64("chat_id", msg.Chat.ID))
		return nil
	}

	url, err := domain.NormalizeURL(raw)
	if err != nil {
		return b.reply(msg.Chat.ID, "That does not look like a web link.")
	}
	if b.links.HasURL(url) {
		return b.reply(msg.Chat.ID, "Already saved: "+url)
	}

	l := b.links.AddLink(domain.LinkInput{
		FolderID: domain.DefaultFolderID,
		URL:      url,
		Title:    domain.Hostname(url),
	})
	if b.enricher != nil {
		b.enricher.Schedule(l.ID, l.URL)
	}

	b.logger.Info("link saved from telegram",
		logger.String("link_id", l.ID),
		logger.String("url", l.URL))
	return b.reply(msg.Chat.ID, fmt.Sprintf("Saved to %s: %s", domain.DefaultFolderName, l.URL))
}

// Notify sends a plain message to the configured notification chat.
func (b *Bot) Notify(_ context.Context, text string) error {
	if b.notifyChatID == 0 {
		return ErrNoNotifyChat
	}
	return b.reply(b.notifyChatID, text)
}

func (b *Bot) reply(chatID int64, text string) error {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

// webAppMarkup is an inline keyboard with a single web_app button.
type webAppMarkup struct {
	InlineKeyboard [][]webAppButton `json:"inline_keyboard"`
}

type webAppButton struct {
	Text   string     `json:"text"`
	WebApp webAppInfo `json:"web_app"`
}

type webAppInfo struct {
	URL string `json:"url"`
}

// sendWebAppButton goes through MakeRequest because the library's keyboard
// types have no web_app button.
func (b *Bot) sendWebAppButton(chatID int64, text string) error {
	if b.webAppURL == "" {
		return b.reply(chatID, text)
	}

	markup, err := json.Marshal(webAppMarkup{
		InlineKeyboard: [][]webAppButton{{
			{Text: "Open Mini App", WebApp: webAppInfo{URL: b.webAppURL}},
		}},
	})
	if err != nil {
		return fmt.Errorf("failed to encode keyboard: %w", err)
	}

	params := tgbotapi.Params{}
	params["chat_id"] = strconv.FormatInt(chatID, 10)
	params["text"] = text
	params["reply_markup"] = string(markup)

	resp, err := b.api.MakeRequest("sendMessage", params)
	if err != nil {
		return fmt.Errorf("failed to send web app button: %w", err)
	}
	if !resp.Ok {
		return fmt.Errorf("telegram refused web app button: %s", resp.Description)
	}
	return nil
}

// ExtractURL returns the first link of a message: a text_link entity target,
// else the text of the first url entity (Telegram marks bare domains too),
// else the first word starting with http://, https:// or www.
func ExtractURL(text string, entities []tgbotapi.MessageEntity) string {
	for _, e := range entities {
		if e.Type == "text_link" && e.URL != "" {
			return e.URL
		}
	}
	for _, e := range entities {
		if e.Type == "url" {
			if u := entityText(text, e); u != "" {
				return u
			}
		}
	}
	for _, word := range strings.Fields(text) {
		w := strings.TrimRight(word, ".,;:!?)")
		lower := strings.ToLower(w)
		if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") || strings.HasPrefix(lower, "www.") {
			return w
		}
	}
	return ""
}

// entityText returns the span of text an entity covers. Entity offsets and
// lengths count UTF-16 code units.
func entityText(text string, e tgbotapi.MessageEntity) string {
	units := utf16.Encode([]rune(text))
	end := e.Offset + e.Length
	if e.Offset < 0 || e.Length <= 0 || end > len(units) {
		return ""
	}
	return string(utf16.Decode(units[e.Offset:end]))
}
