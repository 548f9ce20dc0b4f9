package notify

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// MessageSender is the part of *bot.Bot the notifier uses.
type MessageSender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
}

// Telegram mirrors alerts to a chat. It ignores the job destination.
type Telegram struct {
	Bot    MessageSender
	ChatID int64
}

// NewTelegram returns nil when token or chat are missing.
func NewTelegram(token string, chatID int64) (Notifier, error) {
	if token == "" || chatID == 0 {
		return nil, nil
	}
	b, err := bot.New(token, bot.WithSkipGetMe())
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	return &Telegram{Bot: b, ChatID: chatID}, nil
}

func (t *Telegram) Channel() string { return ChannelTelegram }

func (t *Telegram) Notify(ctx context.Context, _ string, a Alert) error {
	_, err := t.Bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: t.ChatID,
		Text:   FormatTelegram(a),
	})
	if err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}

// FormatTelegram renders the chat message for an alert.
func FormatTelegram(a Alert) string {
	head := "🚨 DOWN"
	if a.Severity == SeveritySuccess {
		head = "✅ UP"
	}
	body := a.Message
	if a.Detail != "" {
		body += "\n" + a.Detail
	}
	return fmt.Sprintf("%s: %s\n%s\nAt: %s",
		head,
		a.TargetURL,
		body,
		a.At.UTC().Format("2006-01-02 15:04 MST"),
	)
}
