package handlers

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/NochesTranquilas/internal/service"
	"github.com/Kerhoff/NochesTranquilas/internal/telegram"
)

// RoutineStartHandler handles /inicio
type RoutineStartHandler struct {
	svc    *service.Service
	logger *logrus.Logger
}

// NewRoutineStartHandler creates a new RoutineStartHandler
func NewRoutineStartHandler(svc *service.Service, logger *logrus.Logger) *RoutineStartHandler {
	return &RoutineStartHandler{svc: svc, logger: logger}
}

// Handle processes the /inicio command
func (h *RoutineStartHandler) Handle(ctx context.Context, bot telegram.Sender, message *tgbotapi.Message, _ []string) error {
	user, err := linkedUser(ctx, h.svc, bot, message)
	if err != nil || user == nil {
		return err
	}

	event, err := h.svc.StartRoutine(ctx, user.ID)
	if err != nil {
		return replyServiceError(bot, message.Chat.ID, err)
	}

	return send(bot, message.Chat.ID, "🌙 Rutina iniciada a las "+event.Time.In(h.svc.Location()).Format("15:04")+". ¡Dulces sueños!")
}

// RoutineEndHandler handles /fin
type RoutineEndHandler struct {
	svc    *service.Service
	logger *logrus.Logger
}

// NewRoutineEndHandler creates a new RoutineEndHandler
func NewRoutineEndHandler(svc *service.Service, logger *logrus.Logger) *RoutineEndHandler {
	return &RoutineEndHandler{svc: svc, logger: logger}
}

// Handle processes the /fin command
func (h *RoutineEndHandler) Handle(ctx context.Context, bot telegram.Sender, message *tgbotapi.Message, _ []string) error {
	user, err := linkedUser(ctx, h.svc, bot, message)
	if err != nil || user == nil {
		return err
	}

	res, err := h.svc.EndRoutine(ctx, user.ID)
	if err != nil {
		return replyServiceError(bot, message.Chat.ID, err)
	}

	h.logger.WithFields(logrus.Fields{
		"user_id":    user.ID,
		"summary_id": res.Summary.ID,
	}).Info("Routine ended from Telegram")

	return send(bot, message.Chat.ID, "☀️ Rutina finalizada\n\n"+res.Summary.SimpleSummary)
}
