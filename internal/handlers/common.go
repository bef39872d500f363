package handlers

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Kerhoff/NochesTranquilas/internal/models"
	"github.com/Kerhoff/NochesTranquilas/internal/service"
	"github.com/Kerhoff/NochesTranquilas/internal/telegram"
)

const (
	msgNotLinked = "🔗 Primero vincula tu cuenta en un chat privado:\n/vincular <usuario> <contraseña>"
	msgNoBaby    = "👶 No hay un bebé registrado en tu cuenta. Contacta al administrador."
	msgSuspended = "⛔ Tu cuenta está suspendida. Contacta al administrador para reactivarla."
)

// send delivers a plain-text reply. Event tags contain underscores, so no
// parse mode is used.
func send(bot telegram.Sender, chatID int64, text string) error {
	if _, err := bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

// linkedUser returns the parent linked to the sender of message. It replies
// with linking instructions and returns nil when there is none.
func linkedUser(ctx context.Context, svc *service.Service, bot telegram.Sender, message *tgbotapi.Message) (*models.User, error) {
	if message.From == nil {
		return nil, nil
	}

	user, err := svc.UserByTelegramID(ctx, message.From.ID)
	if errors.Is(err, service.ErrNotFound) {
		return nil, send(bot, message.Chat.ID, msgNotLinked)
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// replyServiceError answers the caller for the expected service errors and
// returns any other error to the router.
func replyServiceError(bot telegram.Sender, chatID int64, err error) error {
	switch {
	case errors.Is(err, service.ErrForbidden):
		return send(bot, chatID, msgSuspended)
	case errors.Is(err, service.ErrNotFound):
		return send(bot, chatID, msgNoBaby)
	default:
		return err
	}
}

func eventLine(e *models.SleepEvent, svc *service.Service) string {
	info := e.Type.Info()
	label := info.Label
	if info.Sublabel != "" {
		label += " (" + info.Sublabel + ")"
	}
	line := fmt.Sprintf("%s %s %s", e.Time.In(svc.Location()).Format("15:04"), info.Emoji, label)
	if e.Comments != "" {
		line += " - " + e.Comments
	}
	return line
}
