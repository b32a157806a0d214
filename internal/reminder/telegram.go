package reminder

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// Sender is the part of *tele.Bot the notifier uses.
type Sender interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
}

// TelegramNotifier sends the digest to the user's linked chat.
type TelegramNotifier struct {
	bot    Sender
	logger *zap.Logger
}

func NewTelegramNotifier(bot Sender, logger *zap.Logger) *TelegramNotifier {
	return &TelegramNotifier{bot: bot, logger: logger}
}

// NewTelegramBot builds an offline bot used only for sending.
func NewTelegramBot(token string) (*tele.Bot, error) {
	b, err := tele.NewBot(tele.Settings{Token: token, Offline: true})
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}
	return b, nil
}

func (n *TelegramNotifier) Reachable(r Recipient) bool {
	return r.TelegramChatID != nil && *r.TelegramChatID != 0
}

func (n *TelegramNotifier) Send(ctx context.Context, r Recipient, m Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	chat := tele.ChatID(*r.TelegramChatID)
	if _, err := n.bot.Send(chat, FormatTelegram(r.Username, m), tele.ModeMarkdownV2); err != nil {
		return fmt.Errorf("send telegram digest: %w", err)
	}

	n.logger.Debug("digest telegram message sent", zap.Int64("user_id", r.UserID))
	return nil
}

// FormatTelegram renders the digest as MarkdownV2.
func FormatTelegram(username string, m Message) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("🔔 *%s*\n\n", EscapeMarkdown(m.Subject)))
	sb.WriteString(fmt.Sprintf("Hello %s\\!\n", EscapeMarkdown(username)))

	if len(m.Applications) > 0 {
		sb.WriteString("\n*Applications:*\n")
		for _, a := range m.Applications {
			sb.WriteString(EscapeMarkdown(applicationLine(a)) + "\n")
		}
	}

	if len(m.FollowUps) > 0 {
		sb.WriteString("\n*Follow\\-up items:*\n")
		for _, f := range m.FollowUps {
			sb.WriteString(EscapeMarkdown(followUpLine(f)) + "\n")
		}
	}

	return sb.String()
}

// EscapeMarkdown escapes the MarkdownV2 special characters.
func EscapeMarkdown(text string) string {
	// _ * [ ] ( ) ~ ` > # + - = | { } . !
	replacer := strings.NewReplacer(
		"\\", "\\\\",
		"_", "\\_",
		"*", "\\*",
		"[", "\\[",
		"]", "\\]",
		"(", "\\(",
		")", "\\)",
		"~", "\\~",
		"`", "\\`",
		">", "\\>",
		"#", "\\#",
		"+", "\\+",
		"-", "\\-",
		"=", "\\=",
		"|", "\\|",
		"{", "\\{",
		"}", "\\}",
		".", "\\.",
		"!", "\\!",
	)

	return replacer.Replace(text)
}
