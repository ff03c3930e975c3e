// Package telegram forwards emails that need human attention to a
// Telegram support chat.
package telegram

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/nguyencaobach123/automated-email-esi/internal/core/domain"
	"github.com/nguyencaobach123/automated-email-esi/internal/core/ports/driven"
	"github.com/nguyencaobach123/automated-email-esi/internal/logger"
)

var _ driven.Notifier = (*Notifier)(nil)

// previewLimit caps the body excerpt included in the chat message.
const previewLimit = 1000

// sender sends a prepared chat message. Satisfied by *tgbotapi.BotAPI.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Config holds Telegram notifier configuration.
type Config struct {
	// BotToken is the bot API token from BotFather.
	BotToken string
	// ChatID is the support chat the bot posts into.
	ChatID int64
}

// Configured reports whether the notifier can send.
func (c Config) Configured() bool {
	return c.BotToken != "" && c.ChatID != 0
}

// Notifier posts email summaries into a Telegram chat.
type Notifier struct {
	bot    sender
	chatID int64
}

// NewNotifier authenticates the bot and prepares the notifier.
func NewNotifier(config Config) (*Notifier, error) {
	if !config.Configured() {
		return nil, fmt.Errorf("telegram notifier: %w: bot token and chat ID required", domain.ErrNotConfigured)
	}

	bot, err := tgbotapi.NewBotAPI(config.BotToken)
	if err != nil {
		return nil, fmt.Errorf("authenticate telegram bot: %w", err)
	}
	logger.Info("telegram bot authorised as @%s", bot.Self.UserName)

	return &Notifier{bot: bot, chatID: config.ChatID}, nil
}

// ForwardForReview posts a Markdown summary of the email, with a deep
// link back to the Gmail thread for the support agent.
func (n *Notifier) ForwardForReview(ctx context.Context, email *domain.Email) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(n.chatID, formatSummary(email))
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.DisableWebPagePreview = true

	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("send telegram notification: %w", err)
	}
	logger.Info("forwarded message %s to telegram for review", email.ID)
	return nil
}

// formatSummary renders the chat message. Markdown metacharacters in
// header values are escaped so a hostile subject cannot break the
// formatting.
func formatSummary(email *domain.Email) string {
	var b strings.Builder
	b.WriteString("🆘 *Manual Support Needed*\n\n")
	fmt.Fprintf(&b, "*From:* %s\n", escapeMarkdown(email.Sender))
	fmt.Fprintf(&b, "*Subject:* %s\n", escapeMarkdown(email.Subject))
	fmt.Fprintf(&b, "*Gmail Msg ID:* `%s`\n\n", email.ID)
	fmt.Fprintf(&b, "*Content Preview:*\n%s\n\n", escapeMarkdown(preview(email.Body)))
	fmt.Fprintf(&b, "*Reply to:* %s\n", escapeMarkdown(email.SenderAddress()))
	if email.ThreadID != "" {
		fmt.Fprintf(&b, "[Open in Gmail](https://mail.google.com/mail/u/0/#inbox/%s)", email.ThreadID)
	}
	return b.String()
}

func preview(body string) string {
	body = strings.TrimSpace(body)
	if body == "" {
		return "(no text content)"
	}
	runes := []rune(body)
	if len(runes) <= previewLimit {
		return body
	}
	return string(runes[:previewLimit]) + "..."
}

var markdownEscaper = strings.NewReplacer(
	"*", "\\*",
	"_", "\\_",
	"`", "\\`",
	"[", "\\[",
)

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
