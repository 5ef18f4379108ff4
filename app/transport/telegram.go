package transport

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Telegram enforces a per-chat rate limit of roughly one message per second.
const messagePause = time.Second

// Telegram delivers digest messages over the Telegram Bot API. Recipient
// external IDs are Telegram chat IDs in decimal form.
type Telegram struct {
	bot *tgbotapi.BotAPI
}

func NewTelegram(token string) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telegram bot: %w", err)
	}

	slog.Info("Telegram transport initialized", "bot", bot.Self.UserName)

	return &Telegram{bot: bot}, nil
}

func (t *Telegram) SendBatch(ctx context.Context, externalID string, messages []string) error {
	chatID, err := strconv.ParseInt(externalID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid chat id %q: %w", externalID, err)
	}

	for i, text := range messages {
		if err := ctx.Err(); err != nil {
			return err
		}

		msg := tgbotapi.NewMessage(chatID, text)
		msg.DisableWebPagePreview = true

		if _, err := t.bot.Send(msg); err != nil {
			return fmt.Errorf("failed to send message %d/%d: %w", i+1, len(messages), err)
		}

		if i < len(messages)-1 {
			select {
			case <-time.After(messagePause):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	return nil
}
