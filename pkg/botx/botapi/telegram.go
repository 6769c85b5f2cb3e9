// Package botapi adapts messenger APIs to the botx interfaces.
package botapi

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/Semior001/aidhub/pkg/botx"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/exp/slog"
)

// Telegram pumps telegram updates into a botx request channel.
type Telegram struct {
	log     *slog.Logger
	api     *tgbotapi.BotAPI
	updates chan botx.Request
}

// NewTelegram authorizes the bot and prepares the update pump. Buffer
// tells how many requests may queue up before the pump blocks.
func NewTelegram(lg *slog.Logger, token string, buffer int) (*Telegram, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("authorize bot: %w", err)
	}

	// the library logs through a stdlib logger
	if err = tgbotapi.SetLogger(slog.NewLogLogger(lg.Handler(), slog.LevelWarn)); err != nil {
		return nil, fmt.Errorf("set library logger: %w", err)
	}

	return &Telegram{
		log:     lg,
		api:     api,
		updates: make(chan botx.Request, buffer),
	}, nil
}

// Run pumps updates until Stop is called.
func (t *Telegram) Run() {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 60

	for upd := range t.api.GetUpdatesChan(cfg) {
		if upd.Message == nil || upd.Message.Chat == nil || upd.Message.Text == "" {
			t.log.Debug("skipping non-text update", slog.Int("update_id", upd.UpdateID))
			continue
		}

		t.updates <- botx.Request{
			Chat: botx.Chat{
				ID:       strconv.FormatInt(upd.Message.Chat.ID, 10),
				Username: upd.Message.Chat.UserName,
			},
			Text: strings.TrimSpace(upd.Message.Text),
		}
	}
}

// Stop stops the listener and closes the updates channel.
func (t *Telegram) Stop() {
	t.api.StopReceivingUpdates()
	close(t.updates)
}

// Updates returns the request channel.
func (t *Telegram) Updates() <-chan botx.Request { return t.updates }

// SendMessage sends a markdown-formatted message to the chat.
func (t *Telegram) SendMessage(ctx context.Context, resp botx.Response) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	chatID, err := strconv.ParseInt(resp.ChatID, 10, 64)
	if err != nil {
		return fmt.Errorf("parse chat id %q: %w", resp.ChatID, err)
	}

	msg := tgbotapi.NewMessage(chatID, resp.Text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.DisableWebPagePreview = true

	if resp.ReplyToMessageID != "" {
		if msg.ReplyToMessageID, err = strconv.Atoi(resp.ReplyToMessageID); err != nil {
			return fmt.Errorf("parse reply message id %q: %w", resp.ReplyToMessageID, err)
		}
	}

	if _, err = t.api.Send(msg); err != nil {
		return fmt.Errorf("send to chat %d: %w", chatID, err)
	}

	return nil
}
