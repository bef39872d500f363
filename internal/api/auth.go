package api

import (
	"context"
	"net/http"
	"time"

	"github.com/Kerhoff/NochesTranquilas/internal/models"
	"github.com/Kerhoff/NochesTranquilas/pkg/jwt"
)

// SessionCookie is the name of the cookie carrying the session token
const SessionCookie = "nt_session"

type ctxKey struct{}

func claimsFrom(ctx context.Context) *jwt.Claims {
	claims, _ := ctx.Value(ctxKey{}).(*jwt.Claims)
	return claims
}

// requireAuth rejects requests without a valid session cookie
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(SessionCookie)
		if err != nil || cookie.Value == "" {
			s.respondError(w, http.StatusUnauthorized, "login required")
			return
		}

		claims, err := s.tokens.Validate(cookie.Value)
		if err != nil {
			s.logger.WithError(err).Debug("rejected session token")
			s.respondError(w, http.StatusUnauthorized, "login required")
			return
		}

		next(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, claims)))
	}
}

// requireAdmin is requireAuth restricted to administrators
func (s *Server) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return s.requireAuth(func(w http.ResponseWriter, r *http.Request) {
		if claimsFrom(r.Context()).Role != string(models.UserRoleAdmin) {
			s.respondError(w, http.StatusForbidden, "admin access required")
			return
		}
		next(w, r)
	})
}

func (s *Server) setSessionCookie(w http.ResponseWriter, token string, expiresAt time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		MaxAge:   int(s.tokens.TTL().Seconds()),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ---------------------------------------------------------------------------
// Auth handlers
// ---------------------------------------------------------------------------

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type sessionResponse struct {
	User      *models.User `json:"user"`
	ExpiresAt time.Time    `json:"expires_at"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if ok, msg := s.decodeJSON(r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}

	user, err := s.svc.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		s.respondServiceError(w, r, err, "login")
		return
	}

	token, expiresAt, err := s.tokens.Generate(user.ID, string(user.Role), user.DisplayName())
	if err != nil {
		s.respondServiceError(w, r, err, "create session")
		return
	}

	s.setSessionCookie(w, token, expiresAt)
	s.respondJSON(w, http.StatusOK, sessionResponse{User: user, ExpiresAt: expiresAt})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.clearSessionCookie(w)
	s.respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user, err := s.svc.GetUser(r.Context(), claimsFrom(r.Context()).UserID)
	if err != nil {
		s.respondServiceError(w, r, err, "get user")
		return
	}
	s.respondJSON(w, http.StatusOK, user)
}
