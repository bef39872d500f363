package telegram

import (
	"context"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kerhoff/NochesTranquilas/pkg/logger"
)

type fakeAPI struct {
	mu       sync.Mutex
	updates  chan tgbotapi.Update
	requests []tgbotapi.Chattable
	sent     []tgbotapi.MessageConfig
	stopped  bool
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{updates: make(chan tgbotapi.Update)}
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, msg)
	}
	return tgbotapi.Message{}, nil
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return f.updates
}

func (f *fakeAPI) StopReceivingUpdates() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = true
}

func TestBotStartDispatchesUntilCancelled(t *testing.T) {
	api := newFakeAPI()
	b := newBot(api, logger.Discard())

	handled := make(chan []string, 2)
	b.RegisterCommand("evento", "Registrar un evento", handlerFunc(func(_ context.Context, _ Sender, _ *tgbotapi.Message, args []string) error {
		handled <- args
		return nil
	}))
	b.RegisterCommand("oculto", "", handlerFunc(func(context.Context, Sender, *tgbotapi.Message, []string) error {
		return nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- b.Start(ctx) }()

	fromBot := message("/evento alimento")
	fromBot.From.IsBot = true
	api.updates <- tgbotapi.Update{Message: fromBot}
	api.updates <- tgbotapi.Update{Message: message("/evento siesta_inicio")}

	select {
	case args := <-handled:
		assert.Equal(t, []string{"siesta_inicio"}, args)
	case <-time.After(time.Second):
		t.Fatal("command was not handled")
	}

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("bot did not stop")
	}
	assert.Empty(t, handled)

	api.mu.Lock()
	defer api.mu.Unlock()
	assert.True(t, api.stopped)
	require.Len(t, api.requests, 2)
	assert.IsType(t, tgbotapi.DeleteWebhookConfig{}, api.requests[0])
	menu, ok := api.requests[1].(tgbotapi.SetMyCommandsConfig)
	require.True(t, ok)
	assert.Equal(t, []tgbotapi.BotCommand{{Command: "evento", Description: "Registrar un evento"}}, menu.Commands)
}

func TestBotStartFailsWhenUpdatesStop(t *testing.T) {
	api := newFakeAPI()
	close(api.updates)

	err := newBot(api, logger.Discard()).Start(context.Background())
	assert.EqualError(t, err, "updates channel closed")
}

func TestBotSendMessageUsesMarkdown(t *testing.T) {
	api := newFakeAPI()
	b := newBot(api, logger.Discard())

	require.NoError(t, b.SendMessage(7, "*Rutina finalizada*"))
	require.Len(t, api.sent, 1)
	assert.Equal(t, int64(7), api.sent[0].ChatID)
	assert.Equal(t, tgbotapi.ModeMarkdown, api.sent[0].ParseMode)
	assert.Equal(t, "*Rutina finalizada*", api.sent[0].Text)
}
