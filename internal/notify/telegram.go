package notify

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// sender is the part of the bot API the notifier needs
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram posts events to a single chat
type Telegram struct {
	api    sender
	chatID int64
	logger *zap.Logger
}

// NewTelegram creates a Telegram notifier for the given chat
func NewTelegram(token string, chatID int64, logger *zap.Logger) (*Telegram, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		logger.Error("Failed to create bot API", zap.Error(err))
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	logger.Info("Telegram notifier created",
		zap.String("bot_username", api.Self.UserName),
		zap.Int64("chat_id", chatID),
	)

	return newTelegram(api, chatID, logger), nil
}

func newTelegram(api sender, chatID int64, logger *zap.Logger) *Telegram {
	return &Telegram{
		api:    api,
		chatID: chatID,
		logger: logger,
	}
}

// Notify sends the event text to the configured chat
func (t *Telegram) Notify(ctx context.Context, event Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(t.chatID, event.Text())
	if _, err := t.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}

	t.logger.Debug("Notification sent",
		zap.String("kind", string(event.Kind)),
		zap.String("book_id", event.Book.ID),
		zap.Int64("chat_id", t.chatID),
	)
	return nil
}
