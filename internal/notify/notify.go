// Package notify delivers short messages to the owner of the service when
// something noteworthy happens, such as a parent finishing a routine.
package notify

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// Notifier sends a titled message to the owner. Callers treat delivery as
// best effort.
type Notifier interface {
	Notify(ctx context.Context, title, text string) error
}

// MessageSender is the subset of the Telegram bot used for notifications
type MessageSender interface {
	SendMessage(chatID int64, text string) error
}

// TelegramNotifier posts notifications into the owner's Telegram chat
type TelegramNotifier struct {
	sender MessageSender
	chatID int64
}

// NewTelegramNotifier creates a notifier that writes to chatID
func NewTelegramNotifier(sender MessageSender, chatID int64) *TelegramNotifier {
	return &TelegramNotifier{sender: sender, chatID: chatID}
}

// Notify sends the message as "*title*\ntext"
func (n *TelegramNotifier) Notify(ctx context.Context, title, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := n.sender.SendMessage(n.chatID, fmt.Sprintf("*%s*\n%s", escapeMarkdown(title), escapeMarkdown(text))); err != nil {
		return fmt.Errorf("failed to notify owner: %w", err)
	}
	return nil
}

// LogNotifier writes notifications to the log. It is used when no Telegram
// owner chat is configured.
type LogNotifier struct {
	logger *logrus.Logger
}

// NewLogNotifier creates a LogNotifier
func NewLogNotifier(logger *logrus.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs the notification at info level
func (n *LogNotifier) Notify(_ context.Context, title, text string) error {
	n.logger.WithFields(logrus.Fields{
		"title": title,
	}).Info(text)
	return nil
}

// escapeMarkdown escapes the characters legacy Telegram Markdown treats as markup.
func escapeMarkdown(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch r {
		case '_', '*', '`', '[':
			out = append(out, '\\')
		}
		out = append(out, r)
	}
	return string(out)
}
