package api

import (
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/Kerhoff/NochesTranquilas/internal/models"
	"github.com/Kerhoff/NochesTranquilas/internal/service"
)

const dateLayout = "2006-01-02"

// ---------------------------------------------------------------------------
// Babies (admin)
// ---------------------------------------------------------------------------

type createBabyRequest struct {
	ParentUsername   string `json:"parent_username" validate:"required,min=3,max=64"`
	ParentPassword   string `json:"parent_password" validate:"required,min=4,max=128"`
	Name             string `json:"name" validate:"required,max=255"`
	BirthDate        string `json:"birth_date" validate:"omitempty,datetime=2006-01-02"`
	AgeMonths        *int   `json:"age_months" validate:"omitempty,gte=0,lte=60"`
	WeightGrams      *int   `json:"weight_grams" validate:"omitempty,gt=0"`
	HeightCm         *int   `json:"height_cm" validate:"omitempty,gt=0"`
	InitialRoutine   string `json:"initial_routine"`
	RoutineStartTime string `json:"routine_start_time" validate:"omitempty,datetime=15:04"`
}

type updateBabyRequest struct {
	Name             *string `json:"name" validate:"omitempty,min=1,max=255"`
	BirthDate        *string `json:"birth_date" validate:"omitempty,datetime=2006-01-02"`
	AgeMonths        *int    `json:"age_months" validate:"omitempty,gte=0,lte=60"`
	WeightGrams      *int    `json:"weight_grams" validate:"omitempty,gt=0"`
	HeightCm         *int    `json:"height_cm" validate:"omitempty,gt=0"`
	InitialRoutine   *string `json:"initial_routine"`
	RoutineStartTime *string `json:"routine_start_time" validate:"omitempty,datetime=15:04"`
	AccountStatus    *string `json:"account_status" validate:"omitempty,accountstatus"`
}

func parseDate(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil
	}
	return &t
}

func (s *Server) handleListBabies(w http.ResponseWriter, r *http.Request) {
	babies, err := s.svc.ListBabies(r.Context())
	if err != nil {
		s.respondServiceError(w, r, err, "list babies")
		return
	}
	s.respondJSON(w, http.StatusOK, babies)
}

func (s *Server) handleCreateBaby(w http.ResponseWriter, r *http.Request) {
	var req createBabyRequest
	if ok, msg := s.decodeJSON(r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}

	res, err := s.svc.CreateBaby(r.Context(), service.CreateBabyInput{
		ParentUsername:   req.ParentUsername,
		ParentPassword:   req.ParentPassword,
		Name:             req.Name,
		BirthDate:        parseDate(req.BirthDate),
		AgeMonths:        req.AgeMonths,
		WeightGrams:      req.WeightGrams,
		HeightCm:         req.HeightCm,
		InitialRoutine:   req.InitialRoutine,
		RoutineStartTime: req.RoutineStartTime,
	})
	if err != nil {
		s.respondServiceError(w, r, err, "create baby")
		return
	}

	s.respondJSON(w, http.StatusCreated, res)
}

func (s *Server) handleGetBaby(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid baby id")
		return
	}

	baby, err := s.svc.GetBaby(r.Context(), id)
	if err != nil {
		s.respondServiceError(w, r, err, "get baby")
		return
	}
	s.respondJSON(w, http.StatusOK, baby)
}

func (s *Server) handleUpdateBaby(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid baby id")
		return
	}

	var req updateBabyRequest
	if ok, msg := s.decodeJSON(r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}

	in := service.UpdateBabyInput{
		Name:             req.Name,
		AgeMonths:        req.AgeMonths,
		WeightGrams:      req.WeightGrams,
		HeightCm:         req.HeightCm,
		InitialRoutine:   req.InitialRoutine,
		RoutineStartTime: req.RoutineStartTime,
	}
	if req.BirthDate != nil {
		in.BirthDate = parseDate(*req.BirthDate)
	}
	if req.AccountStatus != nil {
		status := models.AccountStatus(*req.AccountStatus)
		in.AccountStatus = &status
	}

	baby, err := s.svc.UpdateBaby(r.Context(), id, in)
	if err != nil {
		s.respondServiceError(w, r, err, "update baby")
		return
	}
	s.respondJSON(w, http.StatusOK, baby)
}

func (s *Server) handleToggleSuspension(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid baby id")
		return
	}

	status, err := s.svc.ToggleSuspension(r.Context(), id)
	if err != nil {
		s.respondServiceError(w, r, err, "toggle suspension")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"success": true, "new_status": status})
}

// ---------------------------------------------------------------------------
// Events, summaries and exports (admin)
// ---------------------------------------------------------------------------

func (s *Server) handleBabyEvents(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid baby id")
		return
	}

	var events []*models.SleepEvent
	if raw := r.URL.Query().Get("day"); raw != "" {
		day, convErr := strconv.Atoi(raw)
		if convErr != nil {
			s.respondError(w, http.StatusBadRequest, "day must be an integer")
			return
		}
		events, err = s.svc.EventsByDay(r.Context(), id, day)
	} else {
		events, err = s.svc.EventsByBaby(r.Context(), id)
	}
	if err != nil {
		s.respondServiceError(w, r, err, "get events")
		return
	}
	s.respondJSON(w, http.StatusOK, events)
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid baby id")
		return
	}

	export, err := s.svc.ExportEventsCSV(r.Context(), id)
	if err != nil {
		s.respondServiceError(w, r, err, "export events")
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": export.Filename}))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(export.Content)); err != nil {
		s.logger.WithError(err).Error("failed to write CSV response")
	}
}

func (s *Server) handleSummaries(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid baby id")
		return
	}

	summaries, err := s.svc.ListSummaries(r.Context(), id)
	if err != nil {
		s.respondServiceError(w, r, err, "get summaries")
		return
	}
	s.respondJSON(w, http.StatusOK, summaries)
}

func (s *Server) handleExportData(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid baby id")
		return
	}

	data, err := s.svc.ExportData(r.Context(), id)
	if err != nil {
		s.respondServiceError(w, r, err, "export data")
		return
	}
	s.respondJSON(w, http.StatusOK, data)
}

// ---------------------------------------------------------------------------
// Notifications (admin)
// ---------------------------------------------------------------------------

func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	unreadOnly := q.Get("unread") == "true"
	limit := 50
	if raw := q.Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			limit = v
		}
	}

	items, err := s.svc.ListNotifications(r.Context(), unreadOnly, limit)
	if err != nil {
		s.respondServiceError(w, r, err, "list notifications")
		return
	}
	s.respondJSON(w, http.StatusOK, items)
}

func (s *Server) handleMarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid notification id")
		return
	}

	if err := s.svc.MarkNotificationRead(r.Context(), id); err != nil {
		s.respondServiceError(w, r, err, "mark notification as read")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}
