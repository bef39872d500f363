package service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/NochesTranquilas/internal/models"
	"github.com/Kerhoff/NochesTranquilas/internal/routine"
)

const (
	routineStartedComment  = "Rutina iniciada"
	routineFinishedComment = "Rutina finalizada - despertar definitivo"
)

// StartRoutine records bedtime for the caller's baby
func (s *Service) StartRoutine(ctx context.Context, userID string) (*models.SleepEvent, error) {
	return s.RegisterEvent(ctx, userID, RegisterEventInput{
		Type:     models.EventNightStart,
		Comments: routineStartedComment,
	})
}

// EndRoutineResult is returned by EndRoutine
type EndRoutineResult struct {
	Event   *models.SleepEvent   `json:"event"`
	Summary *models.DailySummary `json:"summary"`
}

// EndRoutine records the final wake-up, closes the current day into a
// DailySummary, files an admin notification and notifies the owner.
//
// The steps are not transactional. A noche_fin that was stored stays stored
// when a later step fails.
func (s *Service) EndRoutine(ctx context.Context, userID string) (*EndRoutineResult, error) {
	baby, err := s.CurrentBaby(ctx, userID)
	if err != nil {
		return nil, err
	}

	event, err := s.registerEvent(ctx, baby, RegisterEventInput{
		Type:     models.EventNightEnd,
		Comments: routineFinishedComment,
	})
	if err != nil {
		return nil, err
	}

	stored, err := s.todayEvents(ctx, baby.ID)
	if err != nil {
		return nil, err
	}
	events := make([]models.SleepEvent, 0, len(stored))
	for _, e := range stored {
		events = append(events, *e)
	}

	summary := routine.Summarize(event.DayNumber, events, event.Time, s.loc)
	record, err := summary.DailySummary(baby.ID, event.Time)
	if err != nil {
		return nil, err
	}
	record, err = s.Summaries.Create(ctx, record)
	if err != nil {
		return nil, fmt.Errorf("failed to create daily summary: %w", err)
	}

	if _, err := s.Notifications.Create(ctx, &models.AdminNotification{
		BabyID:   baby.ID,
		BabyName: baby.Name,
		Type:     models.NotificationRoutineFinalized,
		Message:  fmt.Sprintf("Rutina finalizada para %s - Día %d", baby.Name, summary.DayNumber),
	}); err != nil {
		return nil, fmt.Errorf("failed to create admin notification: %w", err)
	}

	if err := s.notifier.Notify(ctx, "Rutina finalizada - "+baby.Name, summary.Simple); err != nil {
		s.logger.WithError(err).WithField("baby_id", baby.ID).Warn("Failed to notify owner")
	}
	s.metrics.RoutineFinished()

	s.logger.WithFields(logrus.Fields{
		"baby_id":    baby.ID,
		"day_number": summary.DayNumber,
		"naps":       summary.Stats.TotalNaps,
		"wakeups":    summary.Stats.NightWakeups,
	}).Info("Routine finished")

	return &EndRoutineResult{Event: event, Summary: record}, nil
}
