package handlers

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/NochesTranquilas/internal/telegram"
)

const welcomeText = `🌙 ¡Bienvenido a Noches Tranquilas!

Aquí puedes registrar la rutina de sueño de tu bebé y recibir el resumen de cada día.

Para empezar, vincula tu cuenta en este chat privado:
/vincular <usuario> <contraseña>

Después usa /help para ver todos los comandos.`

const helpText = `📚 Comandos disponibles

Cuenta:
• /vincular <usuario> <contraseña> - Vincular tu cuenta

Rutina:
• /inicio - Iniciar la rutina nocturna
• /fin - Despertar definitivo y resumen del día
• /evento <tipo> [comentario] - Registrar un evento
• /tipos - Ver los tipos de evento
• /hoy - Ver los eventos de hoy`

// StartHandler handles the /start command
type StartHandler struct {
	logger *logrus.Logger
}

// NewStartHandler creates a new start command handler
func NewStartHandler(logger *logrus.Logger) *StartHandler {
	return &StartHandler{logger: logger}
}

// Handle processes the /start command
func (h *StartHandler) Handle(_ context.Context, bot telegram.Sender, message *tgbotapi.Message, _ []string) error {
	if err := send(bot, message.Chat.ID, welcomeText); err != nil {
		return err
	}

	h.logger.WithField("chat_id", message.Chat.ID).Info("Sent start message")
	return nil
}

// HelpHandler handles the /help command
type HelpHandler struct{}

// NewHelpHandler creates a new help command handler
func NewHelpHandler() *HelpHandler {
	return &HelpHandler{}
}

// Handle processes the /help command
func (h *HelpHandler) Handle(_ context.Context, bot telegram.Sender, message *tgbotapi.Message, _ []string) error {
	return send(bot, message.Chat.ID, helpText)
}
