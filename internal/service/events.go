package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/NochesTranquilas/internal/models"
	"github.com/Kerhoff/NochesTranquilas/internal/routine"
)

// RegisterEventInput is a single event reported by a parent. A nil Time means
// "now".
type RegisterEventInput struct {
	Type            models.EventType
	Time            *time.Time
	Comments        string
	WakeReason      string
	FoodType        string
	FoodAmount      string
	DurationMinutes *int
}

// RegisterEvent records an event for the caller's baby. It is the ingestion
// gate: suspended accounts, including those whose trial just ran out, are
// refused with ErrForbidden.
func (s *Service) RegisterEvent(ctx context.Context, userID string, in RegisterEventInput) (*models.SleepEvent, error) {
	baby, err := s.CurrentBaby(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.registerEvent(ctx, baby, in)
}

func (s *Service) registerEvent(ctx context.Context, baby *models.Baby, in RegisterEventInput) (*models.SleepEvent, error) {
	if baby.IsSuspended() {
		return nil, ErrForbidden
	}
	if !in.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown event type %q", ErrInvalidInput, in.Type)
	}

	eventTime := s.now()
	if in.Time != nil {
		eventTime = *in.Time
	}

	epoch, isFirst := routine.ResolveEpoch(baby.FirstEventAt, eventTime)
	if isFirst {
		// another request may have stored the epoch since the baby was read
		stored, err := s.Babies.SetFirstEventAt(ctx, baby.ID, epoch)
		if err != nil {
			return nil, fmt.Errorf("failed to set first event time of baby %s: %w", baby.ID, err)
		}
		epoch = stored
		baby.FirstEventAt = &epoch
	}

	event, err := s.Events.Create(ctx, &models.SleepEvent{
		BabyID:          baby.ID,
		Type:            in.Type,
		Time:            eventTime,
		Comments:        strings.TrimSpace(in.Comments),
		DayNumber:       routine.DayNumber(epoch, eventTime),
		WakeReason:      in.WakeReason,
		FoodType:        in.FoodType,
		FoodAmount:      in.FoodAmount,
		DurationMinutes: in.DurationMinutes,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	s.metrics.EventRegistered(event.Type)

	s.logger.WithFields(logrus.Fields{
		"baby_id":    baby.ID,
		"event_type": event.Type,
		"day_number": event.DayNumber,
	}).Debug("Registered event")

	return event, nil
}

// TodayEvents returns the caller's events of the current local day, newest
// first. A parent without a baby gets an empty list.
func (s *Service) TodayEvents(ctx context.Context, userID string) ([]*models.SleepEvent, error) {
	baby, err := s.Babies.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to lookup baby (user_id=%s): %w", userID, err)
	}
	if baby == nil {
		return []*models.SleepEvent{}, nil
	}

	events, err := s.todayEvents(ctx, baby.ID)
	if err != nil {
		return nil, err
	}

	newestFirst := make([]*models.SleepEvent, 0, len(events))
	for i := len(events) - 1; i >= 0; i-- {
		newestFirst = append(newestFirst, events[i])
	}
	return newestFirst, nil
}

// todayEvents returns the events of the current local day, oldest first.
func (s *Service) todayEvents(ctx context.Context, babyID string) ([]*models.SleepEvent, error) {
	from, to := s.dayBounds(s.now())
	events, err := s.Events.GetBetween(ctx, babyID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to get today's events of baby %s: %w", babyID, err)
	}
	return events, nil
}

// EventsByBaby returns every event of a baby, newest first
func (s *Service) EventsByBaby(ctx context.Context, babyID string) ([]*models.SleepEvent, error) {
	events, err := s.Events.GetByBabyID(ctx, babyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get events of baby %s: %w", babyID, err)
	}
	return events, nil
}

// EventsByDay returns the events of a baby stored with the given day number
func (s *Service) EventsByDay(ctx context.Context, babyID string, dayNumber int) ([]*models.SleepEvent, error) {
	if dayNumber < 1 {
		return nil, fmt.Errorf("%w: day number must be positive", ErrInvalidInput)
	}
	events, err := s.Events.GetByBabyAndDay(ctx, babyID, dayNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to get events of baby %s day %d: %w", babyID, dayNumber, err)
	}
	return events, nil
}
