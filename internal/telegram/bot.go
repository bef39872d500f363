package telegram

import (
	"context"
	"errors"
	"fmt"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

// pollTimeout is the long polling timeout in seconds
const pollTimeout = 60

// Sender is the part of the Bot API used by command handlers
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// botAPI is the part of *tgbotapi.BotAPI the bot drives
type botAPI interface {
	Sender
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Bot serves the parents' commands over long polling and sends owner
// notifications.
type Bot struct {
	api      botAPI
	logger   *logrus.Logger
	router   *Router
	menu     []tgbotapi.BotCommand
	inflight sync.WaitGroup
}

// NewBot connects to the Bot API with token
func NewBot(token string, logger *logrus.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot API: %w", err)
	}

	logger.Infof("Authorized on account %s", api.Self.UserName)
	return newBot(api, logger), nil
}

func newBot(api botAPI, logger *logrus.Logger) *Bot {
	return &Bot{
		api:    api,
		logger: logger,
		router: NewRouter(logger),
	}
}

// RegisterCommand routes command to handler. A non-empty description also
// lists the command in the chat menu.
func (b *Bot) RegisterCommand(command, description string, handler CommandHandler) {
	b.router.RegisterCommand(command, handler)
	if description != "" {
		b.menu = append(b.menu, tgbotapi.BotCommand{Command: command, Description: description})
	}
}

// Start publishes the command menu and long-polls for updates until ctx is
// done. Commands still running are waited for before it returns.
func (b *Bot) Start(ctx context.Context) error {
	if _, err := b.api.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		return fmt.Errorf("failed to delete webhook: %w", err)
	}
	if len(b.menu) > 0 {
		if _, err := b.api.Request(tgbotapi.NewSetMyCommands(b.menu...)); err != nil {
			b.logger.WithError(err).Warn("Failed to publish command menu")
		}
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = pollTimeout
	updates := b.api.GetUpdatesChan(u)

	b.logger.WithField("commands", len(b.menu)).Info("Bot started with long polling")
	defer b.inflight.Wait()

	for {
		select {
		case <-ctx.Done():
			b.logger.Info("Stopping bot...")
			b.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return errors.New("updates channel closed")
			}
			b.inflight.Add(1)
			go func() {
				defer b.inflight.Done()
				b.handleUpdate(ctx, update)
			}()
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.WithField("update_id", update.UpdateID).Errorf("Panic in update handler: %v", r)
		}
	}()

	message := update.Message
	if message == nil || message.Chat == nil {
		return
	}
	if message.From != nil && message.From.IsBot {
		return
	}
	b.router.HandleMessage(ctx, b.api, message)
}

// SendMessage sends a Markdown message to chatID. It is the owner
// notification channel.
func (b *Bot) SendMessage(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown

	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send message to chat %d: %w", chatID, err)
	}
	return nil
}
