package handlers

import (
	"context"
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Kerhoff/NochesTranquilas/internal/models"
	"github.com/Kerhoff/NochesTranquilas/internal/repository/memory"
	"github.com/Kerhoff/NochesTranquilas/internal/service"
	"github.com/Kerhoff/NochesTranquilas/internal/telegram"
	"github.com/Kerhoff/NochesTranquilas/pkg/logger"
)

const telegramUserID = 777

type fakeSender struct {
	sent []string
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, msg.Text)
	}
	return tgbotapi.Message{}, nil
}

func (f *fakeSender) last() string {
	if len(f.sent) == 0 {
		return ""
	}
	return f.sent[len(f.sent)-1]
}

type botEnv struct {
	svc    *service.Service
	router *telegram.Router
	sender *fakeSender
	babyID string
}

func newBotEnv(t *testing.T) *botEnv {
	t.Helper()

	store := memory.NewStore()
	now := time.Date(2026, time.March, 5, 20, 15, 0, 0, time.UTC)
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
	)

	res, err := svc.CreateBaby(context.Background(), service.CreateBabyInput{
		ParentUsername: "mama",
		ParentPassword: "clave",
		Name:           "Luna",
	})
	require.NoError(t, err)

	l := logger.Discard()
	router := telegram.NewRouter(l)
	router.RegisterCommand("start", NewStartHandler(l))
	router.RegisterCommand("help", NewHelpHandler())
	router.RegisterCommand("vincular", NewLinkHandler(svc, l))
	router.RegisterCommand("evento", NewEventHandler(svc, l))
	router.RegisterCommand("tipos", NewTypesHandler())
	router.RegisterCommand("inicio", NewRoutineStartHandler(svc, l))
	router.RegisterCommand("fin", NewRoutineEndHandler(svc, l))
	router.RegisterCommand("hoy", NewTodayHandler(svc, l))

	return &botEnv{svc: svc, router: router, sender: &fakeSender{}, babyID: res.Baby.ID}
}

func commandMessage(text, chatType string) *tgbotapi.Message {
	cmdLen := strings.IndexByte(text, ' ')
	if cmdLen < 0 {
		cmdLen = len(text)
	}
	return &tgbotapi.Message{
		MessageID: 1,
		From:      &tgbotapi.User{ID: telegramUserID, FirstName: "Ana"},
		Chat:      &tgbotapi.Chat{ID: 100, Type: chatType},
		Text:      text,
		Entities:  []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: cmdLen}},
	}
}

func (e *botEnv) send(text string) string {
	e.router.HandleMessage(context.Background(), e.sender, commandMessage(text, "private"))
	return e.sender.last()
}

func (e *botEnv) link(t *testing.T) {
	t.Helper()
	require.Contains(t, e.send("/vincular mama clave"), "Cuenta vinculada")
}

func TestStartAndHelp(t *testing.T) {
	env := newBotEnv(t)

	assert.Contains(t, env.send("/start"), "Noches Tranquilas")
	assert.Contains(t, env.send("/help"), "/evento <tipo> [comentario]")
}

func TestLinkHandler(t *testing.T) {
	env := newBotEnv(t)

	env.router.HandleMessage(context.Background(), env.sender, commandMessage("/vincular mama clave", "group"))
	assert.Contains(t, env.sender.last(), "chat privado")

	assert.Contains(t, env.send("/vincular mama"), "Uso: /vincular")
	assert.Contains(t, env.send("/vincular mama otra"), "incorrectos")

	env.link(t)

	user, err := env.svc.UserByTelegramID(context.Background(), telegramUserID)
	require.NoError(t, err)
	assert.Equal(t, "mama", user.Name)
}

func TestCommandsRequireLink(t *testing.T) {
	env := newBotEnv(t)

	for _, cmd := range []string{"/evento alimento", "/inicio", "/fin", "/hoy"} {
		assert.Equal(t, msgNotLinked, env.send(cmd), cmd)
	}
}

func TestEventHandler(t *testing.T) {
	env := newBotEnv(t)
	env.link(t)

	assert.Contains(t, env.send("/evento"), "Uso: /evento")
	assert.Contains(t, env.send("/evento bailar"), "desconocido")

	reply := env.send("/evento ALIMENTO biberón de 120 ml")
	assert.Contains(t, reply, "Registrado (Día 1)")
	assert.Contains(t, reply, "20:15 🍼 Comida - biberón de 120 ml")

	events, err := env.svc.EventsByBaby(context.Background(), env.babyID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, models.EventFeeding, events[0].Type)
	assert.Equal(t, "biberón de 120 ml", events[0].Comments)
}

func TestTypesHandler(t *testing.T) {
	env := newBotEnv(t)

	reply := env.send("/tipos")
	for _, info := range models.EventTypes() {
		assert.Contains(t, reply, string(info.Type))
	}
}

func TestRoutineCommands(t *testing.T) {
	env := newBotEnv(t)
	env.link(t)

	assert.Equal(t, "📭 Aún no hay eventos registrados hoy.", env.send("/hoy"))

	assert.Contains(t, env.send("/inicio"), "Rutina iniciada a las 20:15")

	today := env.send("/hoy")
	assert.Contains(t, today, "Día 1 (1 eventos)")
	assert.Contains(t, today, "🌙 Rutina Iniciada - Rutina iniciada")

	reply := env.send("/fin")
	assert.Contains(t, reply, "Rutina finalizada")
	assert.Contains(t, reply, "Día 1: 0 siesta(s), 0 min totales.")
	assert.Contains(t, reply, "Despertar final: 20:15")
}

func TestSuspendedAccount(t *testing.T) {
	env := newBotEnv(t)
	env.link(t)

	_, err := env.svc.ToggleSuspension(context.Background(), env.babyID)
	require.NoError(t, err)

	assert.Equal(t, msgSuspended, env.send("/evento llanto"))
	assert.Equal(t, msgSuspended, env.send("/inicio"))
	assert.Equal(t, msgSuspended, env.send("/fin"))
}
