package api

import (
	"net/http"
	"time"

	"github.com/Kerhoff/NochesTranquilas/internal/models"
	"github.com/Kerhoff/NochesTranquilas/internal/routine"
	"github.com/Kerhoff/NochesTranquilas/internal/service"
)

// ---------------------------------------------------------------------------
// Baby and events (parent)
// ---------------------------------------------------------------------------

type currentBabyResponse struct {
	Baby          *models.Baby `json:"baby"`
	TrialDaysLeft int          `json:"trial_days_left"`
}

func (s *Server) handleEventTypes(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, models.EventTypes())
}

func (s *Server) handleCurrentBaby(w http.ResponseWriter, r *http.Request) {
	baby, err := s.svc.CurrentBaby(r.Context(), claimsFrom(r.Context()).UserID)
	if err != nil {
		s.respondServiceError(w, r, err, "get baby")
		return
	}

	s.respondJSON(w, http.StatusOK, currentBabyResponse{
		Baby:          baby,
		TrialDaysLeft: routine.TrialDaysLeft(baby, s.svc.Now()),
	})
}

type registerEventRequest struct {
	EventType       string     `json:"event_type" validate:"required,eventtype"`
	EventTime       *time.Time `json:"event_time"`
	Comments        string     `json:"comments" validate:"max=1000"`
	WakeReason      string     `json:"wake_reason" validate:"max=255"`
	FoodType        string     `json:"food_type" validate:"max=100"`
	FoodAmount      string     `json:"food_amount" validate:"max=100"`
	DurationMinutes *int       `json:"duration_minutes" validate:"omitempty,gte=0"`
}

func (s *Server) handleRegisterEvent(w http.ResponseWriter, r *http.Request) {
	var req registerEventRequest
	if ok, msg := s.decodeJSON(r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}

	event, err := s.svc.RegisterEvent(r.Context(), claimsFrom(r.Context()).UserID, service.RegisterEventInput{
		Type:            models.EventType(req.EventType),
		Time:            req.EventTime,
		Comments:        req.Comments,
		WakeReason:      req.WakeReason,
		FoodType:        req.FoodType,
		FoodAmount:      req.FoodAmount,
		DurationMinutes: req.DurationMinutes,
	})
	if err != nil {
		s.respondServiceError(w, r, err, "register event")
		return
	}

	s.respondJSON(w, http.StatusCreated, event)
}

func (s *Server) handleTodayEvents(w http.ResponseWriter, r *http.Request) {
	events, err := s.svc.TodayEvents(r.Context(), claimsFrom(r.Context()).UserID)
	if err != nil {
		s.respondServiceError(w, r, err, "get today's events")
		return
	}
	s.respondJSON(w, http.StatusOK, events)
}

// ---------------------------------------------------------------------------
// Routine
// ---------------------------------------------------------------------------

func (s *Server) handleStartRoutine(w http.ResponseWriter, r *http.Request) {
	event, err := s.svc.StartRoutine(r.Context(), claimsFrom(r.Context()).UserID)
	if err != nil {
		s.respondServiceError(w, r, err, "start routine")
		return
	}
	s.respondJSON(w, http.StatusCreated, map[string]any{"success": true, "event": event})
}

func (s *Server) handleEndRoutine(w http.ResponseWriter, r *http.Request) {
	res, err := s.svc.EndRoutine(r.Context(), claimsFrom(r.Context()).UserID)
	if err != nil {
		s.respondServiceError(w, r, err, "end routine")
		return
	}
	s.respondJSON(w, http.StatusOK, res)
}
