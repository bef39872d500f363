package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/NochesTranquilas/internal/metrics"
	"github.com/Kerhoff/NochesTranquilas/internal/models"
	"github.com/Kerhoff/NochesTranquilas/internal/service"
	"github.com/Kerhoff/NochesTranquilas/pkg/jwt"
)

// Server provides the JSON API used by the parent and admin web clients.
type Server struct {
	svc      *service.Service
	tokens   *jwt.TokenManager
	metrics  *metrics.Metrics
	logger   *logrus.Logger
	validate *validator.Validate
	mux      *http.ServeMux
	secure   bool
}

// Option customises a Server
type Option func(*Server)

// WithMetrics records request counts and latency
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// WithSecureCookies marks the session cookie as HTTPS only
func WithSecureCookies(secure bool) Option {
	return func(s *Server) { s.secure = secure }
}

// NewServer creates a Server, registers all routes, and returns it.
func NewServer(svc *service.Service, tokens *jwt.TokenManager, logger *logrus.Logger, opts ...Option) *Server {
	s := &Server{
		svc:      svc,
		tokens:   tokens,
		logger:   logger,
		validate: newValidator(),
		mux:      http.NewServeMux(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.routes()
	return s
}

// Handler returns the http.Handler that can be passed to http.Server.
func (s *Server) Handler() http.Handler {
	return s.metrics.Middleware(s.mux)
}

// ---------------------------------------------------------------------------
// Routes
// ---------------------------------------------------------------------------

func (s *Server) routes() {
	// Auth
	s.mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	s.mux.HandleFunc("POST /api/auth/logout", s.handleLogout)
	s.mux.HandleFunc("GET /api/auth/me", s.requireAuth(s.handleMe))

	// Parent
	s.mux.HandleFunc("GET /api/event-types", s.handleEventTypes)
	s.mux.HandleFunc("GET /api/baby", s.requireAuth(s.handleCurrentBaby))
	s.mux.HandleFunc("POST /api/events", s.requireAuth(s.handleRegisterEvent))
	s.mux.HandleFunc("GET /api/events/today", s.requireAuth(s.handleTodayEvents))
	s.mux.HandleFunc("POST /api/routine/start", s.requireAuth(s.handleStartRoutine))
	s.mux.HandleFunc("POST /api/routine/end", s.requireAuth(s.handleEndRoutine))

	// Admin – babies
	s.mux.HandleFunc("GET /api/admin/babies", s.requireAdmin(s.handleListBabies))
	s.mux.HandleFunc("POST /api/admin/babies", s.requireAdmin(s.handleCreateBaby))
	s.mux.HandleFunc("GET /api/admin/babies/{id}", s.requireAdmin(s.handleGetBaby))
	s.mux.HandleFunc("PATCH /api/admin/babies/{id}", s.requireAdmin(s.handleUpdateBaby))
	s.mux.HandleFunc("POST /api/admin/babies/{id}/toggle-suspension", s.requireAdmin(s.handleToggleSuspension))
	s.mux.HandleFunc("GET /api/admin/babies/{id}/events", s.requireAdmin(s.handleBabyEvents))
	s.mux.HandleFunc("GET /api/admin/babies/{id}/events.csv", s.requireAdmin(s.handleExportCSV))
	s.mux.HandleFunc("GET /api/admin/babies/{id}/summaries", s.requireAdmin(s.handleSummaries))
	s.mux.HandleFunc("GET /api/admin/babies/{id}/export", s.requireAdmin(s.handleExportData))

	// Admin – notifications
	s.mux.HandleFunc("GET /api/admin/notifications", s.requireAdmin(s.handleNotifications))
	s.mux.HandleFunc("POST /api/admin/notifications/{id}/read", s.requireAdmin(s.handleMarkNotificationRead))
}

// ---------------------------------------------------------------------------
// JSON helpers
// ---------------------------------------------------------------------------

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			s.logger.WithError(err).Error("failed to encode JSON response")
		}
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError maps service errors onto HTTP status codes. Unknown
// errors are logged and reported as 500 without details.
func (s *Server) respondServiceError(w http.ResponseWriter, r *http.Request, err error, action string) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		s.respondError(w, http.StatusNotFound, "not found")
	case errors.Is(err, service.ErrForbidden):
		s.respondError(w, http.StatusForbidden, "account suspended")
	case errors.Is(err, service.ErrUnauthorized):
		s.respondError(w, http.StatusUnauthorized, "invalid username or password")
	case errors.Is(err, service.ErrInvalidInput):
		s.respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrConflict):
		s.respondError(w, http.StatusConflict, err.Error())
	default:
		s.logger.WithError(err).WithFields(logrus.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
		}).Error("failed to " + action)
		s.respondError(w, http.StatusInternalServerError, "failed to "+action)
	}
}

// decodeJSON reads the request body into dst and validates it. The caller
// should return immediately when ok == false.
func (s *Server) decodeJSON(r *http.Request, dst any) (ok bool, errMsg string) {
	if r.Body == nil || r.Body == http.NoBody {
		return false, "request body is empty"
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return false, fmt.Sprintf("invalid JSON: %v", err)
	}
	if err := s.validate.Struct(dst); err != nil {
		return false, validationMessage(err)
	}
	return true, ""
}

// pathID extracts the {id} path value.
func pathID(r *http.Request) (string, error) {
	raw := strings.TrimSpace(r.PathValue("id"))
	if raw == "" {
		return "", fmt.Errorf("missing id in path")
	}
	return raw, nil
}

// ---------------------------------------------------------------------------
// Validation
// ---------------------------------------------------------------------------

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("eventtype", func(fl validator.FieldLevel) bool {
		return models.EventType(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("accountstatus", func(fl validator.FieldLevel) bool {
		return models.AccountStatus(fl.Field().String()).Valid()
	})
	return v
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s failed on %s", strings.ToLower(fe.Field()), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}
