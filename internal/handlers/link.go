package handlers

import (
	"context"
	"errors"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/NochesTranquilas/internal/service"
	"github.com/Kerhoff/NochesTranquilas/internal/telegram"
)

// LinkHandler handles /vincular <usuario> <contraseña>
type LinkHandler struct {
	svc    *service.Service
	logger *logrus.Logger
}

// NewLinkHandler creates a new LinkHandler
func NewLinkHandler(svc *service.Service, logger *logrus.Logger) *LinkHandler {
	return &LinkHandler{svc: svc, logger: logger}
}

// Handle processes the /vincular command. Credentials are only accepted in
// private chats.
func (h *LinkHandler) Handle(ctx context.Context, bot telegram.Sender, message *tgbotapi.Message, args []string) error {
	chatID := message.Chat.ID
	if !message.Chat.IsPrivate() {
		return send(bot, chatID, "🔒 Por seguridad, vincula tu cuenta en un chat privado con el bot.")
	}
	if len(args) != 2 || message.From == nil {
		return send(bot, chatID, "Uso: /vincular <usuario> <contraseña>")
	}

	user, err := h.svc.LinkTelegram(ctx, message.From.ID, args[0], args[1])
	switch {
	case errors.Is(err, service.ErrUnauthorized):
		return send(bot, chatID, "❌ Usuario o contraseña incorrectos.")
	case errors.Is(err, service.ErrConflict):
		return send(bot, chatID, "❌ Esta cuenta de Telegram ya está vinculada a otro usuario.")
	case err != nil:
		return err
	}

	h.logger.WithFields(logrus.Fields{
		"user_id":     user.ID,
		"telegram_id": message.From.ID,
	}).Info("Telegram account linked")

	return send(bot, chatID, "✅ Cuenta vinculada. ¡Hola, "+user.DisplayName()+"! Usa /help para ver los comandos.")
}
