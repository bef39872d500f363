package handlers

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/NochesTranquilas/internal/models"
	"github.com/Kerhoff/NochesTranquilas/internal/service"
	"github.com/Kerhoff/NochesTranquilas/internal/telegram"
)

// ---------------------------------------------------------------------------
// EventHandler – /evento <tipo> [comentario]
// ---------------------------------------------------------------------------

// EventHandler registers a single event for the caller's baby
type EventHandler struct {
	svc    *service.Service
	logger *logrus.Logger
}

// NewEventHandler creates a new EventHandler
func NewEventHandler(svc *service.Service, logger *logrus.Logger) *EventHandler {
	return &EventHandler{svc: svc, logger: logger}
}

// Handle processes the /evento command
func (h *EventHandler) Handle(ctx context.Context, bot telegram.Sender, message *tgbotapi.Message, args []string) error {
	chatID := message.Chat.ID
	if len(args) == 0 {
		return send(bot, chatID, "Uso: /evento <tipo> [comentario]\nUsa /tipos para ver los tipos disponibles.")
	}

	eventType, err := models.ParseEventType(args[0])
	if err != nil {
		return send(bot, chatID, fmt.Sprintf("❓ Tipo de evento desconocido: %s\nUsa /tipos para ver los tipos disponibles.", args[0]))
	}

	user, err := linkedUser(ctx, h.svc, bot, message)
	if err != nil || user == nil {
		return err
	}

	event, err := h.svc.RegisterEvent(ctx, user.ID, service.RegisterEventInput{
		Type:     eventType,
		Comments: strings.Join(args[1:], " "),
	})
	if err != nil {
		return replyServiceError(bot, chatID, err)
	}

	h.logger.WithFields(logrus.Fields{
		"user_id":    user.ID,
		"event_type": event.Type,
	}).Debug("Event registered from Telegram")

	return send(bot, chatID, fmt.Sprintf("✅ Registrado (Día %d)\n%s", event.DayNumber, eventLine(event, h.svc)))
}

// ---------------------------------------------------------------------------
// TypesHandler – /tipos
// ---------------------------------------------------------------------------

// TypesHandler lists the accepted event types
type TypesHandler struct{}

// NewTypesHandler creates a new TypesHandler
func NewTypesHandler() *TypesHandler {
	return &TypesHandler{}
}

var phaseTitles = []struct {
	phase models.EventPhase
	title string
}{
	{models.PhaseDay, "☀️ Día"},
	{models.PhaseNight, "🌙 Noche"},
	{models.PhaseRoutine, "🔁 Rutina"},
}

// Handle processes the /tipos command
func (h *TypesHandler) Handle(_ context.Context, bot telegram.Sender, message *tgbotapi.Message, _ []string) error {
	var sb strings.Builder
	sb.WriteString("📋 Tipos de evento\n")

	types := models.EventTypes()
	for _, group := range phaseTitles {
		sb.WriteString("\n" + group.title + "\n")
		for _, info := range types {
			if info.Phase != group.phase {
				continue
			}
			label := info.Label
			if info.Sublabel != "" {
				label += " (" + info.Sublabel + ")"
			}
			fmt.Fprintf(&sb, "%s %s: %s\n", info.Emoji, label, info.Type)
		}
	}

	return send(bot, message.Chat.ID, strings.TrimRight(sb.String(), "\n"))
}
