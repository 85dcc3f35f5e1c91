// Package notify sends best-effort chat notifications through the bot API.
// Failures are logged, never surfaced: a dead bot must not break a request.
package notify

import (
	"context"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramNotifier messages users through the same bot whose token signs the
// session payloads. A nil *TelegramNotifier is a valid no-op.
type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	logger *slog.Logger
}

// New connects to the bot API with the given token.
func New(botToken string, logger *slog.Logger) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("connect bot api: %w", err)
	}
	logger.Info("telegram notifier connected", slog.String("bot", bot.Self.UserName))
	return &TelegramNotifier{bot: bot, logger: logger}, nil
}

// ItemReserved tells the wishlist owner that someone claimed an item.
// The reserver's identity is deliberately not revealed.
func (n *TelegramNotifier) ItemReserved(ctx context.Context, ownerChatID int64, itemTitle string) {
	if n == nil {
		return
	}

	text := "Кто-то зарезервировал подарок из вашего списка 🎁"
	if itemTitle != "" {
		text = fmt.Sprintf("Кто-то зарезервировал «%s» из вашего списка 🎁", itemTitle)
	}

	msg := tgbotapi.NewMessage(ownerChatID, text)
	if _, err := n.bot.Send(msg); err != nil {
		n.logger.WarnContext(ctx, "reservation notification failed",
			slog.Int64("chat_id", ownerChatID),
			slog.String("error", err.Error()),
		)
	}
}
