// Package notify pushes booking events to a manager chat.
package notify

import (
	"context"
	"encoding/json"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"loungebook/internal/config"
	"loungebook/internal/events"
	"loungebook/internal/models"
)

// TelegramNotifier sends booking event messages to a single chat,
// rate-limited to stay under the Telegram API ceiling.
type TelegramNotifier struct {
	bot     *tgbotapi.BotAPI
	chatID  int64
	limiter *rate.Limiter
	logger  zerolog.Logger
}

// NewTelegramNotifier connects the bot and returns a notifier.
func NewTelegramNotifier(cfg config.TelegramConfig, logger zerolog.Logger) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}

	return &TelegramNotifier{
		bot:     bot,
		chatID:  cfg.ChatID,
		limiter: rate.NewLimiter(rate.Limit(20), 30),
		logger:  logger.With().Str("component", "notify").Logger(),
	}, nil
}

// Register subscribes the notifier to booking events on the bus.
func (n *TelegramNotifier) Register(bus *events.Bus) {
	bus.Subscribe(events.BookingCreated, n.handle)
	bus.Subscribe(events.BookingCancelled, n.handle)
}

func (n *TelegramNotifier) handle(event events.Event) error {
	var booking models.Booking
	if err := json.Unmarshal(event.Payload, &booking); err != nil {
		return fmt.Errorf("decode booking event: %w", err)
	}

	var text string
	switch event.Type {
	case events.BookingCreated:
		text = fmt.Sprintf("New booking: %s on %s (%s)", booking.UserEmail, booking.Date, booking.TimeSlot)
	case events.BookingCancelled:
		text = fmt.Sprintf("Booking cancelled: %s on %s (%s)", booking.UserEmail, booking.Date, booking.TimeSlot)
	default:
		return nil
	}

	if err := n.limiter.Wait(context.Background()); err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(n.chatID, text)
	if _, err := n.bot.Send(msg); err != nil {
		n.logger.Error().Err(err).Str("event", event.Type).Msg("failed to send notification")
		return err
	}

	n.logger.Debug().Str("event", event.Type).Str("booking_id", booking.ID).Msg("notification sent")
	return nil
}
