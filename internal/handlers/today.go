package handlers

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/NochesTranquilas/internal/service"
	"github.com/Kerhoff/NochesTranquilas/internal/telegram"
)

// TodayHandler handles /hoy
type TodayHandler struct {
	svc    *service.Service
	logger *logrus.Logger
}

// NewTodayHandler creates a new TodayHandler
func NewTodayHandler(svc *service.Service, logger *logrus.Logger) *TodayHandler {
	return &TodayHandler{svc: svc, logger: logger}
}

// Handle processes the /hoy command. Events are listed oldest first.
func (h *TodayHandler) Handle(ctx context.Context, bot telegram.Sender, message *tgbotapi.Message, _ []string) error {
	user, err := linkedUser(ctx, h.svc, bot, message)
	if err != nil || user == nil {
		return err
	}

	events, err := h.svc.TodayEvents(ctx, user.ID)
	if err != nil {
		return replyServiceError(bot, message.Chat.ID, err)
	}
	if len(events) == 0 {
		return send(bot, message.Chat.ID, "📭 Aún no hay eventos registrados hoy.")
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "📅 Hoy - Día %d (%d eventos)\n", events[0].DayNumber, len(events))
	for i := len(events) - 1; i >= 0; i-- {
		sb.WriteString("\n" + eventLine(events[i], h.svc))
	}

	return send(bot, message.Chat.ID, sb.String())
}
