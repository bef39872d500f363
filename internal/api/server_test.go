package api

import (
	"bytes"
	"context"
	"encoding/json"
	"mime"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Kerhoff/NochesTranquilas/internal/metrics"
	"github.com/Kerhoff/NochesTranquilas/internal/models"
	"github.com/Kerhoff/NochesTranquilas/internal/repository/memory"
	"github.com/Kerhoff/NochesTranquilas/internal/service"
	"github.com/Kerhoff/NochesTranquilas/pkg/jwt"
	"github.com/Kerhoff/NochesTranquilas/pkg/logger"
)

type testEnv struct {
	handler http.Handler
	svc     *service.Service
	metrics *metrics.Metrics
	babyID  string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	m := metrics.New()
	store := memory.NewStore()
	now := time.Date(2026, time.March, 5, 12, 0, 0, 0, time.UTC)
	svc := service.New(logger.Discard(), service.Repositories{
		Users:         store.Users(),
		Credentials:   store.Credentials(),
		Babies:        store.Babies(),
		Events:        store.Events(),
		Summaries:     store.Summaries(),
		Notifications: store.Notifications(),
	},
		service.WithClock(func() time.Time { return now }),
		service.WithLocation(time.UTC),
		service.WithPasswordCost(bcrypt.MinCost),
		service.WithMetrics(m),
	)

	ctx := context.Background()
	_, err := svc.EnsureAdmin(ctx, "admin", "admin-pass")
	require.NoError(t, err)
	res, err := svc.CreateBaby(ctx, service.CreateBabyInput{
		ParentUsername: "papa",
		ParentPassword: "clave",
		Name:           "Sol",
	})
	require.NoError(t, err)

	tokens := jwt.NewTokenManager("test-secret", time.Hour, "noches-tranquilas")
	srv := NewServer(svc, tokens, logger.Discard(), WithMetrics(m))

	return &testEnv{handler: srv.Handler(), svc: svc, metrics: m, babyID: res.Baby.ID}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) login(t *testing.T, username, password string) *http.Cookie {
	t.Helper()

	rec := e.do(t, http.MethodPost, "/api/auth/login", map[string]string{
		"username": username,
		"password": password,
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	for _, c := range rec.Result().Cookies() {
		if c.Name == SessionCookie {
			return c
		}
	}
	t.Fatal("session cookie not set")
	return nil
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/auth/login", map[string]string{"username": "papa", "password": "nope"}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/auth/login", map[string]string{"username": "papa"}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	cookie := env.login(t, "papa", "clave")
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, int(time.Hour.Seconds()), cookie.MaxAge)

	rec = env.do(t, http.MethodGet, "/api/auth/me", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	me := decode[models.User](t, rec)
	assert.Equal(t, "papa", me.Name)
	assert.Equal(t, models.UserRoleUser, me.Role)

	rec = env.do(t, http.MethodPost, "/api/auth/logout", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	cleared := rec.Result().Cookies()
	require.Len(t, cleared, 1)
	assert.Equal(t, SessionCookie, cleared[0].Name)
	assert.Less(t, cleared[0].MaxAge, 0)
}

func TestAuthRequired(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/baby", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/baby", nil, &http.Cookie{Name: SessionCookie, Value: "garbage"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	parent := env.login(t, "papa", "clave")
	rec = env.do(t, http.MethodGet, "/api/admin/babies", nil, parent)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestEventTypes(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/event-types", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	types := decode[[]models.EventTypeInfo](t, rec)
	assert.Len(t, types, len(models.EventTypes()))
}

func TestParentFlow(t *testing.T) {
	env := newTestEnv(t)
	parent := env.login(t, "papa", "clave")

	rec := env.do(t, http.MethodGet, "/api/baby", nil, parent)
	require.Equal(t, http.StatusOK, rec.Code)
	current := decode[currentBabyResponse](t, rec)
	assert.Equal(t, env.babyID, current.Baby.ID)
	assert.Equal(t, 9, current.TrialDaysLeft)

	rec = env.do(t, http.MethodPost, "/api/events", map[string]string{"event_type": "bailar"}, parent)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/events", map[string]string{
		"event_type": "alimento",
		"comments":   "pecho",
	}, parent)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	event := decode[models.SleepEvent](t, rec)
	assert.Equal(t, models.EventFeeding, event.Type)
	assert.Equal(t, 1, event.DayNumber)

	rec = env.do(t, http.MethodPost, "/api/routine/start", nil, parent)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/events/today", nil, parent)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.SleepEvent](t, rec), 2)

	rec = env.do(t, http.MethodPost, "/api/routine/end", nil, parent)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	ended := decode[service.EndRoutineResult](t, rec)
	require.NotNil(t, ended.Summary)
	assert.Equal(t, 1, ended.Summary.DayNumber)
	assert.Equal(t, "12:00", ended.Summary.FinalWakeupTime)

	scrape := httptest.NewRecorder()
	env.metrics.Handler().ServeHTTP(scrape, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := scrape.Body.String()
	assert.Contains(t, body, `nochesbot_events_registered_total{type="alimento"} 1`)
	assert.Contains(t, body, `nochesbot_routines_finished_total 1`)
	assert.Contains(t, body, `nochesbot_http_requests_total{code="201",method="POST"} 2`)
}

func TestSuspendedParentIsForbidden(t *testing.T) {
	env := newTestEnv(t)
	admin := env.login(t, "admin", "admin-pass")
	parent := env.login(t, "papa", "clave")

	rec := env.do(t, http.MethodPost, "/api/admin/babies/"+env.babyID+"/toggle-suspension", nil, admin)
	require.Equal(t, http.StatusOK, rec.Code)
	toggled := decode[map[string]any](t, rec)
	assert.Equal(t, "suspended", toggled["new_status"])

	rec = env.do(t, http.MethodPost, "/api/events", map[string]string{"event_type": "despertar"}, parent)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/routine/end", nil, parent)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAdminBabies(t *testing.T) {
	env := newTestEnv(t)
	admin := env.login(t, "admin", "admin-pass")

	rec := env.do(t, http.MethodPost, "/api/admin/babies", map[string]any{
		"parent_username":    "mama.mar",
		"parent_password":    "segura",
		"name":               "Mar",
		"birth_date":         "2025-11-02",
		"weight_grams":       5400,
		"routine_start_time": "19:30",
	}, admin)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[service.CreateBabyResult](t, rec)
	assert.Equal(t, "Mar", created.Baby.Name)
	require.NotNil(t, created.Baby.BirthDate)
	assert.Equal(t, "2025-11-02", created.Baby.BirthDate.Format(dateLayout))

	rec = env.do(t, http.MethodPost, "/api/admin/babies", map[string]any{
		"parent_username": "mama.mar",
		"parent_password": "segura",
		"name":            "Otra",
	}, admin)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/admin/babies", map[string]any{
		"parent_username": "abuela",
		"parent_password": "segura",
		"name":            "Rio",
		"birth_date":      "02/11/2025",
	}, admin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/admin/babies", nil, admin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.Baby](t, rec), 2)

	rec = env.do(t, http.MethodPatch, "/api/admin/babies/"+env.babyID, map[string]any{
		"height_cm":      60,
		"account_status": "suspended",
	}, admin)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[models.Baby](t, rec)
	require.NotNil(t, updated.HeightCm)
	assert.Equal(t, 60, *updated.HeightCm)
	assert.Equal(t, models.AccountStatusSuspended, updated.AccountStatus)

	rec = env.do(t, http.MethodPatch, "/api/admin/babies/"+env.babyID, map[string]any{"account_status": "paused"}, admin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/admin/babies/missing", nil, admin)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminEventsAndExports(t *testing.T) {
	env := newTestEnv(t)
	admin := env.login(t, "admin", "admin-pass")
	parent := env.login(t, "papa", "clave")

	for _, typ := range []string{"siesta_inicio", "siesta_fin"} {
		rec := env.do(t, http.MethodPost, "/api/events", map[string]string{"event_type": typ}, parent)
		require.Equal(t, http.StatusCreated, rec.Code)
	}
	rec := env.do(t, http.MethodPost, "/api/routine/end", nil, parent)
	require.Equal(t, http.StatusOK, rec.Code)

	base := "/api/admin/babies/" + env.babyID

	rec = env.do(t, http.MethodGet, base+"/events?day=1", nil, admin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.SleepEvent](t, rec), 3)

	rec = env.do(t, http.MethodGet, base+"/events?day=abc", nil, admin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodGet, base+"/events.csv", nil, admin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "eventos_Sol_2026-03-05.csv")
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Fecha,Hora,Tipo de Evento,Día,Comentarios", lines[0])

	rec = env.do(t, http.MethodGet, base+"/summaries", nil, admin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.DailySummary](t, rec), 1)

	rec = env.do(t, http.MethodGet, base+"/export", nil, admin)
	require.Equal(t, http.StatusOK, rec.Code)
	export := decode[service.DataExport](t, rec)
	assert.Len(t, export.Events, 3)
	require.Len(t, export.Summaries, 1)
	assert.Equal(t, 1, export.Summaries[0].Siestas)
}

func TestExportCSVFilenameWithQuotes(t *testing.T) {
	env := newTestEnv(t)
	admin := env.login(t, "admin", "admin-pass")

	res, err := env.svc.CreateBaby(context.Background(), service.CreateBabyInput{
		ParentUsername: "mama.luz",
		ParentPassword: "clave",
		Name:           `Luz "La Nena"`,
	})
	require.NoError(t, err)

	rec := env.do(t, http.MethodGet, "/api/admin/babies/"+res.Baby.ID+"/events.csv", nil, admin)
	require.Equal(t, http.StatusOK, rec.Code)

	disposition, params, err := mime.ParseMediaType(rec.Header().Get("Content-Disposition"))
	require.NoError(t, err)
	assert.Equal(t, "attachment", disposition)
	assert.Equal(t, `eventos_Luz "La Nena"_2026-03-05.csv`, params["filename"])
}

func TestAdminNotifications(t *testing.T) {
	env := newTestEnv(t)
	admin := env.login(t, "admin", "admin-pass")

	rec := env.do(t, http.MethodGet, "/api/admin/notifications?unread=true", nil, admin)
	require.Equal(t, http.StatusOK, rec.Code)
	items := decode[[]models.AdminNotification](t, rec)
	require.Len(t, items, 1)
	assert.Equal(t, models.NotificationAccountCreated, items[0].Type)

	rec = env.do(t, http.MethodPost, "/api/admin/notifications/"+items[0].ID+"/read", nil, admin)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/admin/notifications?unread=true", nil, admin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]models.AdminNotification](t, rec))

	rec = env.do(t, http.MethodPost, "/api/admin/notifications/missing/read", nil, admin)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
